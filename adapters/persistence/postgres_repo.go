package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/internal/domain/profile"
	"github.com/khoahotran/devfolio/internal/domain/tag"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// ChangePublisher announces committed writes.
type ChangePublisher interface {
	PublishChange(ctx context.Context, ev portfolio.ChangeEvent) error
}

// ChangeSource streams change events until ctx is done.
type ChangeSource interface {
	Changes(ctx context.Context, fn func(portfolio.ChangeEvent)) error
}

// PostgresRepository stores each collection in its own owner-scoped table.
type PostgresRepository struct {
	db        *pgxpool.Pool
	ownerID   string
	publisher ChangePublisher
	source    ChangeSource
	logger    logger.Logger
	now       func() time.Time
}

// NewPostgresRepository builds the remote strategy. publisher and source may be nil, in which
// case writes are not announced and Subscribe returns immediately.
func NewPostgresRepository(db *pgxpool.Pool, ownerID string, publisher ChangePublisher, source ChangeSource, logger logger.Logger) *PostgresRepository {
	return &PostgresRepository{
		db:        db,
		ownerID:   ownerID,
		publisher: publisher,
		source:    source,
		logger:    logger,
		now:       time.Now,
	}
}

func (r *PostgresRepository) Load(ctx context.Context) (portfolio.Data, bool, error) {
	var data portfolio.Data

	p, found, err := r.loadProfile(ctx)
	if err != nil {
		return data, false, err
	}
	if found {
		data.Profile = p
	}
	if data.Posts, err = r.listProjects(ctx); err != nil {
		return data, false, err
	}
	if data.BlogPosts, err = r.listBlogPosts(ctx); err != nil {
		return data, false, err
	}
	return data, found || len(data.Posts) > 0 || len(data.BlogPosts) > 0, nil
}

func (r *PostgresRepository) loadProfile(ctx context.Context) (profile.Profile, bool, error) {
	query, args, err := psql.Select("doc").From("profiles").Where(sq.Eq{"owner_id": r.ownerID}).ToSql()
	if err != nil {
		return profile.Profile{}, false, apperror.NewInternal("failed to build profile query", err)
	}
	var doc []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, apperror.NewIO("failed to query profile", err)
	}
	var p profile.Profile
	if err := json.Unmarshal(doc, &p); err != nil {
		r.logger.Warn("Failed to unmarshal profile doc", zap.String("owner_id", r.ownerID), zap.Error(err))
		return profile.Profile{}, false, nil
	}
	return p, true, nil
}

func (r *PostgresRepository) listProjects(ctx context.Context) ([]post.Post, error) {
	query, args, err := psql.
		Select("id", "title", "description", "image_url", "tags", "created_at").
		From("projects").
		Where(sq.Eq{"owner_id": r.ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build projects query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewIO("failed to query projects", err)
	}
	defer rows.Close()

	posts := make([]post.Post, 0)
	for rows.Next() {
		var p post.Post
		var tags []string
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.ImageURL, &tags, &p.CreatedAt); err != nil {
			return nil, apperror.NewIO("failed to scan project row", err)
		}
		p.Tags = tag.Normalize(tags)
		p.CreatedAt = p.CreatedAt.UTC()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewIO("error iterating project rows", err)
	}
	return posts, nil
}

func (r *PostgresRepository) listBlogPosts(ctx context.Context) ([]blog.Post, error) {
	query, args, err := psql.
		Select("id", "title", "excerpt", "content", "cover_url", "tags", "published", "created_at").
		From("blog_posts").
		Where(sq.Eq{"owner_id": r.ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, apperror.NewInternal("failed to build blog query", err)
	}
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, apperror.NewIO("failed to query blog posts", err)
	}
	defer rows.Close()

	posts := make([]blog.Post, 0)
	for rows.Next() {
		var p blog.Post
		var tags []string
		if err := rows.Scan(&p.ID, &p.Title, &p.Excerpt, &p.Content, &p.CoverURL, &tags, &p.Published, &p.CreatedAt); err != nil {
			return nil, apperror.NewIO("failed to scan blog row", err)
		}
		p.Tags = tag.Normalize(tags)
		p.CreatedAt = p.CreatedAt.UTC()
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperror.NewIO("error iterating blog rows", err)
	}
	return posts, nil
}

func (r *PostgresRepository) Apply(ctx context.Context, m portfolio.Mutation) (string, error) {
	var (
		id  string
		err error
	)
	switch m.Collection {
	case portfolio.CollectionProfile:
		id, err = r.upsertProfile(ctx, m)
	case portfolio.CollectionProjects:
		id, err = r.applyProject(ctx, m)
	case portfolio.CollectionBlogPosts:
		id, err = r.applyBlogPost(ctx, m)
	default:
		return "", apperror.NewInvalidInput(string(m.Collection), portfolio.ErrUnknownCollection)
	}
	if err != nil {
		return "", err
	}
	r.announce(ctx, m, id)
	return id, nil
}

// announce is best effort: the row is already committed, and the next change event or a
// restart will bring other instances up to date.
func (r *PostgresRepository) announce(ctx context.Context, m portfolio.Mutation, id string) {
	if r.publisher == nil {
		return
	}
	ev := portfolio.ChangeEvent{
		Collection: m.Collection,
		Op:         m.Op,
		ID:         id,
		OwnerID:    r.ownerID,
		At:         r.now().UTC(),
	}
	if err := r.publisher.PublishChange(ctx, ev); err != nil {
		r.logger.Error("Failed to publish change event", err,
			zap.String("collection", string(m.Collection)), zap.String("id", id))
	}
}

func (r *PostgresRepository) upsertProfile(ctx context.Context, m portfolio.Mutation) (string, error) {
	if m.Profile == nil {
		return "", apperror.NewInvalidInput("profile mutation without a profile", nil)
	}
	doc, err := json.Marshal(m.Profile)
	if err != nil {
		return "", apperror.NewInternal("failed to marshal profile", err)
	}
	query, args, err := psql.Insert("profiles").
		Columns("owner_id", "doc", "updated_at").
		Values(r.ownerID, doc, sq.Expr("NOW()")).
		Suffix("ON CONFLICT (owner_id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = NOW()").
		ToSql()
	if err != nil {
		return "", apperror.NewInternal("failed to build profile upsert", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return "", apperror.NewIO("failed to upsert profile", err)
	}
	return m.Profile.ID, nil
}

func (r *PostgresRepository) applyProject(ctx context.Context, m portfolio.Mutation) (string, error) {
	switch m.Op {
	case portfolio.OpAdd:
		if m.Post == nil {
			return "", apperror.NewInvalidInput("project mutation without a project", nil)
		}
		p := m.Post
		return r.insertReturningID(ctx, psql.Insert("projects").
			Columns("id", "owner_id", "title", "description", "image_url", "tags", "created_at").
			Values(idOrGenerated(p.ID), r.ownerID, p.Title, p.Description, p.ImageURL, []string(tag.Normalize(p.Tags)), p.CreatedAt.UTC()),
			"project")
	case portfolio.OpReplace:
		if m.Post == nil {
			return "", apperror.NewInvalidInput("project mutation without a project", nil)
		}
		p := m.Post
		return p.ID, r.execAffecting(ctx, psql.Update("projects").
			Set("title", p.Title).
			Set("description", p.Description).
			Set("image_url", p.ImageURL).
			Set("tags", []string(tag.Normalize(p.Tags))).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": p.ID, "owner_id": r.ownerID}),
			"project", p.ID)
	case portfolio.OpDelete:
		return m.ID, r.deleteRow(ctx, "projects", m.ID)
	}
	return "", apperror.NewInvalidInput("unsupported project operation "+string(m.Op), nil)
}

func (r *PostgresRepository) applyBlogPost(ctx context.Context, m portfolio.Mutation) (string, error) {
	switch m.Op {
	case portfolio.OpAdd:
		if m.BlogPost == nil {
			return "", apperror.NewInvalidInput("blog mutation without a post", nil)
		}
		p := m.BlogPost
		return r.insertReturningID(ctx, psql.Insert("blog_posts").
			Columns("id", "owner_id", "title", "excerpt", "content", "cover_url", "tags", "published", "created_at").
			Values(idOrGenerated(p.ID), r.ownerID, p.Title, p.Excerpt, p.Content, p.CoverURL, []string(tag.Normalize(p.Tags)), p.Published, p.CreatedAt.UTC()),
			"blog post")
	case portfolio.OpReplace:
		if m.BlogPost == nil {
			return "", apperror.NewInvalidInput("blog mutation without a post", nil)
		}
		p := m.BlogPost
		return p.ID, r.execAffecting(ctx, psql.Update("blog_posts").
			Set("title", p.Title).
			Set("excerpt", p.Excerpt).
			Set("content", p.Content).
			Set("cover_url", p.CoverURL).
			Set("tags", []string(tag.Normalize(p.Tags))).
			Set("published", p.Published).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": p.ID, "owner_id": r.ownerID}),
			"blog post", p.ID)
	case portfolio.OpDelete:
		return m.ID, r.deleteRow(ctx, "blog_posts", m.ID)
	}
	return "", apperror.NewInvalidInput("unsupported blog operation "+string(m.Op), nil)
}

// idOrGenerated lets the database assign an id when the caller did not.
func idOrGenerated(id string) interface{} {
	if id == "" {
		return sq.Expr("gen_random_uuid()::text")
	}
	return id
}

func (r *PostgresRepository) insertReturningID(ctx context.Context, b sq.InsertBuilder, what string) (string, error) {
	query, args, err := b.Suffix("RETURNING id").ToSql()
	if err != nil {
		return "", apperror.NewInternal("failed to build "+what+" insert", err)
	}
	var id string
	if err := r.db.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		return "", apperror.NewIO("failed to insert "+what, err)
	}
	return id, nil
}

func (r *PostgresRepository) execAffecting(ctx context.Context, b sq.UpdateBuilder, what, id string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build "+what+" update", err)
	}
	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return apperror.NewIO("failed to update "+what, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperror.NewNotFound(what, id)
	}
	return nil
}

// deleteRow is idempotent: deleting a missing row is not an error.
func (r *PostgresRepository) deleteRow(ctx context.Context, table, id string) error {
	query, args, err := psql.Delete(table).Where(sq.Eq{"id": id, "owner_id": r.ownerID}).ToSql()
	if err != nil {
		return apperror.NewInternal("failed to build delete", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return apperror.NewIO(fmt.Sprintf("failed to delete from %s", table), err)
	}
	return nil
}

// Subscribe re-reads the affected collection for every change event of this owner.
func (r *PostgresRepository) Subscribe(ctx context.Context, fn func(portfolio.Snapshot)) error {
	if r.source == nil {
		return nil
	}
	return r.source.Changes(ctx, func(ev portfolio.ChangeEvent) {
		if ev.OwnerID != r.ownerID {
			return
		}
		snap, err := r.readCollection(ctx, ev.Collection)
		if err != nil {
			r.logger.Error("Failed to refresh collection after change", err,
				zap.String("collection", string(ev.Collection)))
			return
		}
		fn(snap)
	})
}

func (r *PostgresRepository) readCollection(ctx context.Context, c portfolio.Collection) (portfolio.Snapshot, error) {
	snap := portfolio.Snapshot{Collection: c}
	var err error
	switch c {
	case portfolio.CollectionProfile:
		p, found, perr := r.loadProfile(ctx)
		if found {
			snap.Profile = &p
		}
		err = perr
	case portfolio.CollectionProjects:
		snap.Posts, err = r.listProjects(ctx)
	case portfolio.CollectionBlogPosts:
		snap.BlogPosts, err = r.listBlogPosts(ctx)
	default:
		err = portfolio.ErrUnknownCollection
	}
	return snap, err
}

// Close releases the change feed. The pool belongs to the caller.
func (r *PostgresRepository) Close() error {
	var errs []error
	if c, ok := r.publisher.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if c, ok := r.source.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
