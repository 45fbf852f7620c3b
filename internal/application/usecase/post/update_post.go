package post

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/adapters/media_storage"
	"github.com/khoahotran/devfolio/internal/application/usecase/media"
	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type UpdatePostUseCase struct {
	store  ProjectStore
	images *media.ResolveImageUseCase
	logger logger.Logger
}

func NewUpdatePostUseCase(s ProjectStore, images *media.ResolveImageUseCase, log logger.Logger) *UpdatePostUseCase {
	return &UpdatePostUseCase{store: s, images: images, logger: log}
}

type UpdatePostInput struct {
	PostID      string
	Title       string
	Description string
	ImageURL    string
	Tags        []string
	Wait        bool
}

type UpdatePostOutput struct {
	Post post.Post
}

func (uc *UpdatePostUseCase) Execute(ctx context.Context, input UpdatePostInput) (*UpdatePostOutput, error) {
	existing, ok := uc.store.Post(input.PostID)
	if !ok {
		return nil, apperror.NewNotFound("project", input.PostID)
	}

	imageURL, err := uc.images.Execute(ctx, media.ResolveImageInput{
		Field:  "imageUrl",
		Source: input.ImageURL,
		Folder: media_storage.FolderProjects,
	})
	if err != nil {
		return nil, err
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.ImageURL = imageURL
	existing.Tags = input.Tags
	if err := existing.Validate(); err != nil {
		return nil, apperror.NewInvalidInput("validation failed", err)
	}

	updated, pending := uc.store.UpdatePost(existing)
	if !updated {
		// deleted between the read and the write
		return nil, apperror.NewNotFound("project", input.PostID)
	}
	if err := pending.WaitIf(ctx, input.Wait); err != nil {
		return nil, err
	}
	uc.logger.Info("Project updated", zap.String("post_id", existing.ID))

	stored, _ := uc.store.Post(existing.ID)
	return &UpdatePostOutput{Post: stored}, nil
}
