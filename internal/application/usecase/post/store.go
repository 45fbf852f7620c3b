package post

import (
	"github.com/khoahotran/devfolio/internal/application/store"
	"github.com/khoahotran/devfolio/internal/domain/post"
)

// ProjectStore is the part of the portfolio store the project use cases need.
type ProjectStore interface {
	IsLoading() bool
	Posts() []post.Post
	Post(id string) (post.Post, bool)
	AddPost(p post.Post) (post.Post, *store.Pending)
	UpdatePost(p post.Post) (bool, *store.Pending)
	DeletePost(id string) *store.Pending
}
