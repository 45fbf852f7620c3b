// Package store keeps the in-memory portfolio that every read is served from and pushes changes
// to the configured backend in the background.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/domain/avatar"
	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/internal/domain/portfolio"
	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/internal/domain/profile"
	"github.com/khoahotran/devfolio/internal/domain/tag"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// ErrClosed is returned for mutations issued after Close.
var ErrClosed = errors.New("portfolio store is closed")

// ErrNotLoaded fails writes queued by a store that was closed before its initial load succeeded.
var ErrNotLoaded = errors.New("portfolio was never loaded from the backend")

var tracer = otel.Tracer("github.com/khoahotran/devfolio/internal/application/store")

type job struct {
	m       portfolio.Mutation
	pending *Pending
}

// replayEntry is a mutation made before the initial load finished.
type replayEntry struct {
	apply func(d *portfolio.Data)
	job   *job
}

// PortfolioStore serves the portfolio from memory and persists every mutation in order.
type PortfolioStore struct {
	repo         portfolio.Repository
	log          logger.Logger
	notifier     Notifier
	now          func() time.Time
	newID        func() string
	writeTimeout time.Duration
	retryBase    time.Duration
	retryMax     time.Duration
	seed         portfolio.Data

	mu        sync.RWMutex
	data      portfolio.Data
	loading   bool
	unloaded  bool
	replay    []replayEntry
	inflight  map[portfolio.Collection]int
	cancelSub context.CancelFunc

	initOnce sync.Once
	ready    chan struct{}
	subDone  chan struct{}

	qmu        sync.Mutex
	qcond      *sync.Cond
	queue      []*job
	closed     bool
	writerDone chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func New(repo portfolio.Repository, opts ...Option) *PortfolioStore {
	s := &PortfolioStore{
		repo:         repo,
		log:          logger.NewNop(),
		now:          time.Now,
		newID:        defaultIDGenerator,
		writeTimeout: 15 * time.Second,
		retryBase:    500 * time.Millisecond,
		retryMax:     30 * time.Second,
		seed:         emptyData(),
		loading:      true,
		inflight:     make(map[portfolio.Collection]int),
		ready:        make(chan struct{}),
		subDone:      make(chan struct{}),
		writerDone:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.notifier == nil {
		s.notifier = logNotifier{log: s.log}
	}
	s.data = withDefaults(s.seed.Clone())
	portfolio.SortNewestFirst(&s.data)
	s.qcond = sync.NewCond(&s.qmu)

	go s.writeLoop()
	return s
}

func emptyData() portfolio.Data {
	return withDefaults(portfolio.Data{})
}

func withDefaults(d portfolio.Data) portfolio.Data {
	if d.Profile.Avatar == nil {
		d.Profile.Avatar = avatar.NoImage{}
	}
	if d.Profile.Skills == nil {
		d.Profile.Skills = tag.Set{}
	}
	if d.Posts == nil {
		d.Posts = []post.Post{}
	}
	if d.BlogPosts == nil {
		d.BlogPosts = []blog.Post{}
	}
	return d
}

// Init starts the initial load and, once it is done, the live subscription. Only the first call
// has any effect; it does not block. ctx bounds the subscription's lifetime.
func (s *PortfolioStore) Init(ctx context.Context) {
	s.initOnce.Do(func() {
		subCtx, cancel := context.WithCancel(ctx)
		s.mu.Lock()
		s.cancelSub = cancel
		s.mu.Unlock()

		go func() {
			defer close(s.subDone)
			s.load(subCtx)
			if subCtx.Err() != nil {
				return
			}
			if err := s.repo.Subscribe(subCtx, s.applySnapshot); err != nil && subCtx.Err() == nil {
				s.notifier.Notify(apperror.NewIO("live subscription stopped", err))
			}
		}()
	})
}

// load reads the stored aggregate, retrying with backoff until it succeeds or ctx is done. The
// store stays loading meanwhile, so queued writes never reach a backend that was not read.
func (s *PortfolioStore) load(ctx context.Context) {
	for attempt := 1; ; attempt++ {
		data, found, err := s.loadOnce(ctx)
		if err == nil {
			if !found {
				s.log.Info("no stored portfolio, serving seed content")
				s.finishLoad(nil)
				return
			}
			s.finishLoad(&data)
			return
		}
		if ctx.Err() != nil {
			s.abortLoad()
			return
		}

		wait := s.loadBackoff(attempt)
		s.notifier.Notify(apperror.NewIO(fmt.Sprintf("failed to load portfolio (attempt %d), retrying in %s", attempt, wait), err))
		t := time.NewTimer(wait)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			s.abortLoad()
			return
		}
	}
}

func (s *PortfolioStore) loadOnce(ctx context.Context) (portfolio.Data, bool, error) {
	ctx, span := tracer.Start(ctx, "PortfolioStore.load")
	defer span.End()

	data, found, err := s.repo.Load(ctx)
	if err != nil {
		span.RecordError(err)
		return portfolio.Data{}, false, err
	}
	span.SetAttributes(attribute.Bool("portfolio.found", found))
	return data, found, nil
}

// loadBackoff doubles from the initial delay up to the cap.
func (s *PortfolioStore) loadBackoff(attempt int) time.Duration {
	d := s.retryBase
	for i := 1; i < attempt && d < s.retryMax; i++ {
		d *= 2
	}
	if d > s.retryMax {
		d = s.retryMax
	}
	return d
}

// abortLoad ends loading without data. Writes still queued are failed instead of persisted,
// since a whole-aggregate backend would overwrite what it holds with seed content.
func (s *PortfolioStore) abortLoad() {
	s.mu.Lock()
	if s.loading {
		s.unloaded = true
	}
	s.mu.Unlock()
	s.finishLoad(nil)
}

// finishLoad installs the loaded aggregate and replays everything mutated in the meantime on top
// of it. Jobs still queued from that window get their snapshots rebuilt against the loaded base.
func (s *PortfolioStore) finishLoad(loaded *portfolio.Data) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loading {
		return
	}
	if loaded != nil {
		base := withDefaults(*loaded)
		portfolio.SortNewestFirst(&base)
		for _, r := range s.replay {
			r.apply(&base)
			portfolio.SortNewestFirst(&base)
			r.job.m.Snapshot = base.Clone()
		}
		s.data = base
		s.log.Info("portfolio loaded",
			zap.Int("posts", len(base.Posts)),
			zap.Int("blog_posts", len(base.BlogPosts)),
			zap.Int("replayed", len(s.replay)))
	}
	s.replay = nil
	s.loading = false
	close(s.ready)
}

func (s *PortfolioStore) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Ready is closed when the initial load has finished.
func (s *PortfolioStore) Ready() <-chan struct{} {
	return s.ready
}

func (s *PortfolioStore) Snapshot() portfolio.Data {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Clone()
}

func (s *PortfolioStore) Profile() profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.Profile.Clone()
}

func (s *PortfolioStore) Posts() []post.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return post.CloneAll(s.data.Posts)
}

func (s *PortfolioStore) BlogPosts() []blog.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return blog.CloneAll(s.data.BlogPosts)
}

// PublishedBlogPosts is the public view of the blog: drafts are left out.
func (s *PortfolioStore) PublishedBlogPosts() []blog.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return blog.Published(s.data.BlogPosts)
}

func (s *PortfolioStore) Post(id string) (post.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.data.Posts {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return post.Post{}, false
}

func (s *PortfolioStore) BlogPost(id string) (blog.Post, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.data.BlogPosts {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return blog.Post{}, false
}

// UpdateProfile replaces the profile. An empty ID keeps the current one.
func (s *PortfolioStore) UpdateProfile(p profile.Profile) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return refused(p.ID, ErrClosed)
	}
	if p.ID == "" {
		p.ID = s.data.Profile.ID
	}
	p = withDefaults(portfolio.Data{Profile: p.Clone()}).Profile
	record := p.Clone()
	return s.commitLocked(portfolio.Mutation{
		Op:         portfolio.OpSet,
		Collection: portfolio.CollectionProfile,
		ID:         p.ID,
		Profile:    &record,
	}, func(d *portfolio.Data) {
		d.Profile = p.Clone()
	})
}

// AddPost stores a new project. It gets a fresh id when none is set and CreatedAt is stamped
// when zero. The stored post is returned. A supplied id already in use is rejected with a
// conflict and nothing changes.
func (s *PortfolioStore) AddPost(p post.Post) (post.Post, *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return p, refused(p.ID, ErrClosed)
	}
	if p.ID == "" {
		p.ID = s.newID()
	} else if indexOf(s.data.Posts, p.ID, func(p post.Post) string { return p.ID }) >= 0 {
		return p, refused(p.ID, apperror.NewConflict("project", "id", p.ID))
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.Normalize()
	record := p.Clone()
	pending := s.commitLocked(portfolio.Mutation{
		Op:         portfolio.OpAdd,
		Collection: portfolio.CollectionProjects,
		ID:         p.ID,
		Post:       &record,
	}, func(d *portfolio.Data) {
		d.Posts = append([]post.Post{p.Clone()}, d.Posts...)
	})
	return p.Clone(), pending
}

func (s *PortfolioStore) AddBlogPost(p blog.Post) (blog.Post, *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return p, refused(p.ID, ErrClosed)
	}
	if p.ID == "" {
		p.ID = s.newID()
	} else if indexOf(s.data.BlogPosts, p.ID, func(p blog.Post) string { return p.ID }) >= 0 {
		return p, refused(p.ID, apperror.NewConflict("blog post", "id", p.ID))
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	p.Normalize()
	record := p.Clone()
	pending := s.commitLocked(portfolio.Mutation{
		Op:         portfolio.OpAdd,
		Collection: portfolio.CollectionBlogPosts,
		ID:         p.ID,
		BlogPost:   &record,
	}, func(d *portfolio.Data) {
		d.BlogPosts = append([]blog.Post{p.Clone()}, d.BlogPosts...)
	})
	return p.Clone(), pending
}

// UpdatePost replaces the project with p.ID. It reports false and does nothing when no such
// project exists. CreatedAt always keeps its stored value.
func (s *PortfolioStore) UpdatePost(p post.Post) (bool, *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return false, refused(p.ID, ErrClosed)
	}
	i := indexOf(s.data.Posts, p.ID, func(p post.Post) string { return p.ID })
	if i < 0 {
		return false, completed(p.ID, nil)
	}
	p.CreatedAt = s.data.Posts[i].CreatedAt
	p.Normalize()
	record := p.Clone()
	return true, s.commitLocked(portfolio.Mutation{
		Op:         portfolio.OpReplace,
		Collection: portfolio.CollectionProjects,
		ID:         p.ID,
		Post:       &record,
	}, func(d *portfolio.Data) {
		if j := indexOf(d.Posts, p.ID, func(p post.Post) string { return p.ID }); j >= 0 {
			p.CreatedAt = d.Posts[j].CreatedAt
			d.Posts[j] = p.Clone()
		}
	})
}

func (s *PortfolioStore) UpdateBlogPost(p blog.Post) (bool, *Pending) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return false, refused(p.ID, ErrClosed)
	}
	i := indexOf(s.data.BlogPosts, p.ID, func(p blog.Post) string { return p.ID })
	if i < 0 {
		return false, completed(p.ID, nil)
	}
	p.CreatedAt = s.data.BlogPosts[i].CreatedAt
	p.Normalize()
	record := p.Clone()
	return true, s.commitLocked(portfolio.Mutation{
		Op:         portfolio.OpReplace,
		Collection: portfolio.CollectionBlogPosts,
		ID:         p.ID,
		BlogPost:   &record,
	}, func(d *portfolio.Data) {
		if j := indexOf(d.BlogPosts, p.ID, func(p blog.Post) string { return p.ID }); j >= 0 {
			p.CreatedAt = d.BlogPosts[j].CreatedAt
			d.BlogPosts[j] = p.Clone()
		}
	})
}

// DeletePost removes a project. Deleting an unknown id is a no-op.
func (s *PortfolioStore) DeletePost(id string) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return refused(id, ErrClosed)
	}
	if indexOf(s.data.Posts, id, func(p post.Post) string { return p.ID }) < 0 {
		return completed(id, nil)
	}
	return s.commitLocked(portfolio.Mutation{
		Op:         portfolio.OpDelete,
		Collection: portfolio.CollectionProjects,
		ID:         id,
	}, func(d *portfolio.Data) {
		if j := indexOf(d.Posts, id, func(p post.Post) string { return p.ID }); j >= 0 {
			d.Posts = append(d.Posts[:j:j], d.Posts[j+1:]...)
		}
	})
}

func (s *PortfolioStore) DeleteBlogPost(id string) *Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.isClosed() {
		return refused(id, ErrClosed)
	}
	if indexOf(s.data.BlogPosts, id, func(p blog.Post) string { return p.ID }) < 0 {
		return completed(id, nil)
	}
	return s.commitLocked(portfolio.Mutation{
		Op:         portfolio.OpDelete,
		Collection: portfolio.CollectionBlogPosts,
		ID:         id,
	}, func(d *portfolio.Data) {
		if j := indexOf(d.BlogPosts, id, func(p blog.Post) string { return p.ID }); j >= 0 {
			d.BlogPosts = append(d.BlogPosts[:j:j], d.BlogPosts[j+1:]...)
		}
	})
}

func indexOf[T any](items []T, id string, key func(T) string) int {
	for i, it := range items {
		if key(it) == id {
			return i
		}
	}
	return -1
}

// commitLocked applies a mutation to memory and queues its write. s.mu must be held.
func (s *PortfolioStore) commitLocked(m portfolio.Mutation, apply func(d *portfolio.Data)) *Pending {
	apply(&s.data)
	portfolio.SortNewestFirst(&s.data)
	m.Snapshot = s.data.Clone()

	j := &job{m: m, pending: newPending(m.ID)}
	if s.loading {
		s.replay = append(s.replay, replayEntry{apply: apply, job: j})
	}
	if !s.enqueue(j) {
		j.pending.rejected = true
		j.pending.complete(ErrClosed)
		return j.pending
	}
	s.inflight[m.Collection]++
	return j.pending
}

// applySnapshot installs a server-side view of one collection.
func (s *PortfolioStore) applySnapshot(snap portfolio.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return
	}
	if n := s.inflight[snap.Collection]; n > 0 {
		s.log.Debug("skipping snapshot, local writes in flight",
			zap.String("collection", string(snap.Collection)), zap.Int("in_flight", n))
		return
	}
	switch snap.Collection {
	case portfolio.CollectionProfile:
		if snap.Profile != nil {
			s.data.Profile = withDefaults(portfolio.Data{Profile: snap.Profile.Clone()}).Profile
		}
	case portfolio.CollectionProjects:
		posts := post.CloneAll(snap.Posts)
		portfolio.SortPosts(posts)
		s.data.Posts = posts
	case portfolio.CollectionBlogPosts:
		posts := blog.CloneAll(snap.BlogPosts)
		portfolio.SortBlogPosts(posts)
		s.data.BlogPosts = posts
	default:
		s.log.Warn("ignoring snapshot for unknown collection", zap.String("collection", string(snap.Collection)))
	}
}

func (s *PortfolioStore) isClosed() bool {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	return s.closed
}

func (s *PortfolioStore) enqueue(j *job) bool {
	s.qmu.Lock()
	defer s.qmu.Unlock()
	if s.closed {
		return false
	}
	s.queue = append(s.queue, j)
	s.qcond.Signal()
	return true
}

// writeLoop is the single writer: jobs reach the backend in the order they were committed.
func (s *PortfolioStore) writeLoop() {
	defer close(s.writerDone)
	for {
		s.qmu.Lock()
		for len(s.queue) == 0 && !s.closed {
			s.qcond.Wait()
		}
		if len(s.queue) == 0 {
			s.qmu.Unlock()
			return
		}
		j := s.queue[0]
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.qmu.Unlock()

		<-s.ready
		s.write(j)
	}
}

func (s *PortfolioStore) write(j *job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	s.mu.RLock()
	unloaded := s.unloaded
	s.mu.RUnlock()

	var err error
	if unloaded {
		err = ErrNotLoaded
	} else {
		_, err = s.repo.Apply(ctx, j.m)
	}
	if err != nil {
		err = apperror.NewIO(fmt.Sprintf("failed to %s %s %s", j.m.Op, j.m.Collection, j.m.ID), err)
		s.notifier.Notify(err)
	} else {
		s.log.Debug("portfolio write persisted",
			zap.String("op", string(j.m.Op)),
			zap.String("collection", string(j.m.Collection)),
			zap.String("id", j.m.ID))
	}

	s.mu.Lock()
	s.inflight[j.m.Collection]--
	s.mu.Unlock()
	j.pending.complete(err)
}

// Close stops accepting mutations, waits for queued writes to finish and closes the backend.
func (s *PortfolioStore) Close() error {
	s.closeOnce.Do(func() {
		s.qmu.Lock()
		s.closed = true
		s.qcond.Broadcast()
		s.qmu.Unlock()

		// a store that was never initialised has nothing to load
		s.initOnce.Do(func() {
			close(s.subDone)
			s.finishLoad(nil)
		})
		s.mu.RLock()
		cancel := s.cancelSub
		s.mu.RUnlock()
		if cancel != nil {
			cancel()
		}
		<-s.subDone
		<-s.writerDone
		s.closeErr = s.repo.Close()
	})
	return s.closeErr
}
