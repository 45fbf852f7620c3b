package blog

import (
	"github.com/khoahotran/devfolio/internal/application/store"
	"github.com/khoahotran/devfolio/internal/domain/blog"
)

// BlogStore is the part of the portfolio store the blog use cases need.
type BlogStore interface {
	IsLoading() bool
	BlogPosts() []blog.Post
	PublishedBlogPosts() []blog.Post
	BlogPost(id string) (blog.Post, bool)
	AddBlogPost(p blog.Post) (blog.Post, *store.Pending)
	UpdateBlogPost(p blog.Post) (bool, *store.Pending)
	DeleteBlogPost(id string) *store.Pending
}
