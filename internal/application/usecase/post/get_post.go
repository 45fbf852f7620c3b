package post

import (
	"context"

	"github.com/khoahotran/devfolio/internal/domain/post"
	"github.com/khoahotran/devfolio/pkg/apperror"
)

type GetPostUseCase struct {
	store ProjectStore
}

func NewGetPostUseCase(s ProjectStore) *GetPostUseCase {
	return &GetPostUseCase{store: s}
}

func (uc *GetPostUseCase) Execute(_ context.Context, postID string) (*post.Post, error) {
	p, ok := uc.store.Post(postID)
	if !ok {
		return nil, apperror.NewNotFound("project", postID)
	}
	return &p, nil
}
