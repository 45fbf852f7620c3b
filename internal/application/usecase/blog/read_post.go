package blog

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
	"github.com/khoahotran/devfolio/pkg/markdown"
)

type ListBlogPostsUseCase struct {
	store BlogStore
}

func NewListBlogPostsUseCase(s BlogStore) *ListBlogPostsUseCase {
	return &ListBlogPostsUseCase{store: s}
}

type ListBlogPostsInput struct {
	// IncludeDrafts is only set for the admin list.
	IncludeDrafts bool
}

type ListBlogPostsOutput struct {
	Posts   []blog.Post
	Loading bool
}

func (uc *ListBlogPostsUseCase) Execute(_ context.Context, input ListBlogPostsInput) (*ListBlogPostsOutput, error) {
	posts := uc.store.PublishedBlogPosts()
	if input.IncludeDrafts {
		posts = uc.store.BlogPosts()
	}
	return &ListBlogPostsOutput{Posts: posts, Loading: uc.store.IsLoading()}, nil
}

type GetBlogPostUseCase struct {
	store  BlogStore
	logger logger.Logger
}

func NewGetBlogPostUseCase(s BlogStore, log logger.Logger) *GetBlogPostUseCase {
	return &GetBlogPostUseCase{store: s, logger: log}
}

type GetBlogPostInput struct {
	PostID        string
	IncludeDrafts bool
}

type GetBlogPostOutput struct {
	Post blog.Post
	// Cover is the post's cover or the placeholder image.
	Cover string
	HTML  string
}

// Execute hides drafts from the public reader: they are reported as not found.
func (uc *GetBlogPostUseCase) Execute(_ context.Context, input GetBlogPostInput) (*GetBlogPostOutput, error) {
	p, ok := uc.store.BlogPost(input.PostID)
	if !ok || (!p.Published && !input.IncludeDrafts) {
		return nil, apperror.NewNotFound("blog post", input.PostID)
	}

	html, err := markdown.Render(p.Content)
	if err != nil {
		uc.logger.Warn("Failed to render blog post markdown", zap.String("blog_post_id", p.ID), zap.Error(err))
	}

	return &GetBlogPostOutput{Post: p, Cover: p.Cover(), HTML: html}, nil
}
