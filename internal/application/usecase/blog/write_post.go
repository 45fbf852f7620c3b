package blog

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/adapters/media_storage"
	"github.com/khoahotran/devfolio/internal/application/usecase/media"
	"github.com/khoahotran/devfolio/internal/domain/blog"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

// PostInput carries the editable fields of a blog post.
type PostInput struct {
	Title    string
	Excerpt  string
	Content  string
	CoverURL string
	Tags     []string
	// Published defaults to true when nil.
	Published *bool
	Wait      bool
}

type CreateBlogPostUseCase struct {
	store  BlogStore
	images *media.ResolveImageUseCase
	logger logger.Logger
}

func NewCreateBlogPostUseCase(s BlogStore, images *media.ResolveImageUseCase, log logger.Logger) *CreateBlogPostUseCase {
	return &CreateBlogPostUseCase{store: s, images: images, logger: log}
}

type CreateBlogPostInput struct {
	ID string
	PostInput
}

func (uc *CreateBlogPostUseCase) Execute(ctx context.Context, input CreateBlogPostInput) (*blog.Post, error) {
	cover, err := uc.images.Execute(ctx, media.ResolveImageInput{
		Field:  "coverUrl",
		Source: input.CoverURL,
		Folder: media_storage.FolderBlog,
	})
	if err != nil {
		return nil, err
	}

	p := blog.Post{
		ID:        strings.TrimSpace(input.ID),
		Title:     input.Title,
		Excerpt:   input.Excerpt,
		Content:   input.Content,
		CoverURL:  cover,
		Tags:      input.Tags,
		Published: input.Published == nil || *input.Published,
	}
	if err := p.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	stored, pending := uc.store.AddBlogPost(p)
	if err := pending.WaitIf(ctx, input.Wait); err != nil {
		return nil, err
	}
	uc.logger.Info("Blog post created", zap.String("blog_post_id", stored.ID), zap.Bool("published", stored.Published))
	return &stored, nil
}

type UpdateBlogPostUseCase struct {
	store  BlogStore
	images *media.ResolveImageUseCase
	logger logger.Logger
}

func NewUpdateBlogPostUseCase(s BlogStore, images *media.ResolveImageUseCase, log logger.Logger) *UpdateBlogPostUseCase {
	return &UpdateBlogPostUseCase{store: s, images: images, logger: log}
}

type UpdateBlogPostInput struct {
	PostID string
	PostInput
}

// Execute replaces the editable fields. A nil Published keeps the current state.
func (uc *UpdateBlogPostUseCase) Execute(ctx context.Context, input UpdateBlogPostInput) (*blog.Post, error) {
	existing, ok := uc.store.BlogPost(input.PostID)
	if !ok {
		return nil, apperror.NewNotFound("blog post", input.PostID)
	}

	cover, err := uc.images.Execute(ctx, media.ResolveImageInput{
		Field:  "coverUrl",
		Source: input.CoverURL,
		Folder: media_storage.FolderBlog,
	})
	if err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Excerpt = input.Excerpt
	existing.Content = input.Content
	existing.CoverURL = cover
	existing.Tags = input.Tags
	if input.Published != nil {
		existing.Published = *input.Published
	}
	if err := existing.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	updated, pending := uc.store.UpdateBlogPost(existing)
	if !updated {
		return nil, apperror.NewNotFound("blog post", input.PostID)
	}
	if err := pending.WaitIf(ctx, input.Wait); err != nil {
		return nil, err
	}
	uc.logger.Info("Blog post updated", zap.String("blog_post_id", existing.ID))

	stored, _ := uc.store.BlogPost(existing.ID)
	return &stored, nil
}

type DeleteBlogPostUseCase struct {
	store  BlogStore
	logger logger.Logger
}

func NewDeleteBlogPostUseCase(s BlogStore, log logger.Logger) *DeleteBlogPostUseCase {
	return &DeleteBlogPostUseCase{store: s, logger: log}
}

func (uc *DeleteBlogPostUseCase) Execute(ctx context.Context, postID string, wait bool) error {
	if err := uc.store.DeleteBlogPost(postID).WaitIf(ctx, wait); err != nil {
		return err
	}
	uc.logger.Info("Blog post deleted", zap.String("blog_post_id", postID))
	return nil
}
