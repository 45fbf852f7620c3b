// Package portfolio defines the aggregate the site is built from and the storage contract for it.
package portfolio

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/internal/domain/profile"
)

// Collection names a part of the aggregate. The values double as the wire/topic names.
type Collection string

const (
	CollectionProfile   Collection = "profile"
	CollectionProjects  Collection = "projects"
	CollectionBlogPosts Collection = "blogPosts"
)

type Op string

const (
	OpSet     Op = "set" // profile only
	OpAdd     Op = "add"
	OpReplace Op = "replace"
	OpDelete  Op = "delete"
)

var ErrUnknownCollection = errors.New("unknown collection")

type Data struct {
	Profile   profile.Profile `json:"profile"`
	Posts     []post.Post     `json:"posts"`
	BlogPosts []blog.Post     `json:"blogPosts"`
}

func (d Data) Clone() Data {
	return Data{
		Profile:   d.Profile.Clone(),
		Posts:     post.CloneAll(d.Posts),
		BlogPosts: blog.CloneAll(d.BlogPosts),
	}
}

// Mutation is one persistence write. Snapshot is the whole aggregate as it stood right after the
// mutation was applied in memory; document stores write it as is, row stores use the record.
type Mutation struct {
	Op         Op
	Collection Collection
	ID         string
	Profile    *profile.Profile
	Post       *post.Post
	BlogPost   *blog.Post
	Snapshot   Data
}

// Snapshot is a full server-side view of one collection, pushed by a live subscription.
type Snapshot struct {
	Collection Collection
	Profile    *profile.Profile
	Posts      []post.Post
	BlogPosts  []blog.Post
}

// Repository is a persistence strategy for the aggregate.
type Repository interface {
	// Load returns the stored aggregate. found is false when nothing has been stored yet.
	Load(ctx context.Context) (data Data, found bool, err error)
	// Apply persists one mutation and returns the id the record was stored under.
	Apply(ctx context.Context, m Mutation) (string, error)
	// Subscribe blocks, calling fn for every server-side change until ctx is done.
	// Strategies without a change feed return nil immediately.
	Subscribe(ctx context.Context, fn func(Snapshot)) error
	Close() error
}

// SortNewestFirst orders both collections by CreatedAt descending. Ties are broken by ID
// descending so the order is total.
func SortNewestFirst(d *Data) {
	SortPosts(d.Posts)
	SortBlogPosts(d.BlogPosts)
}

func SortPosts(posts []post.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return newer(posts[i].CreatedAt, posts[i].ID, posts[j].CreatedAt, posts[j].ID)
	})
}

func SortBlogPosts(posts []blog.Post) {
	sort.SliceStable(posts, func(i, j int) bool {
		return newer(posts[i].CreatedAt, posts[i].ID, posts[j].CreatedAt, posts[j].ID)
	})
}

func newer(a time.Time, aID string, b time.Time, bID string) bool {
	if !a.Equal(b) {
		return a.After(b)
	}
	return aID > bID
}

// ChangeEvent announces a committed backend write so other instances can refresh.
type ChangeEvent struct {
	Collection Collection `json:"collection"`
	Op         Op         `json:"op"`
	ID         string     `json:"id"`
	OwnerID    string     `json:"owner_id"`
	At         time.Time  `json:"at"`
}
