package post

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/adapters/media_storage"
	"github.com/khoahotran/devfolio/internal/application/usecase/media"
	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type CreatePostUseCase struct {
	store  ProjectStore
	images *media.ResolveImageUseCase
	logger logger.Logger
}

func NewCreatePostUseCase(s ProjectStore, images *media.ResolveImageUseCase, log logger.Logger) *CreatePostUseCase {
	return &CreatePostUseCase{store: s, images: images, logger: log}
}

type CreatePostInput struct {
	ID          string
	Title       string
	Description string
	ImageURL    string
	Tags        []string
	// Wait blocks until the backend write finishes.
	Wait bool
}

type CreatePostOutput struct {
	Post post.Post
}

func (uc *CreatePostUseCase) Execute(ctx context.Context, input CreatePostInput) (*CreatePostOutput, error) {
	imageURL, err := uc.images.Execute(ctx, media.ResolveImageInput{
		Field:  "imageUrl",
		Source: input.ImageURL,
		Folder: media_storage.FolderProjects,
	})
	if err != nil {
		return nil, err
	}

	newPost := post.Post{
		ID:          strings.TrimSpace(input.ID),
		Title:       input.Title,
		Description: input.Description,
		ImageURL:    imageURL,
		Tags:        input.Tags,
	}
	if err := newPost.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	stored, pending := uc.store.AddPost(newPost)
	if err := pending.WaitIf(ctx, input.Wait); err != nil {
		return nil, err
	}
	uc.logger.Info("Project created", zap.String("post_id", stored.ID))

	return &CreatePostOutput{Post: stored}, nil
}
