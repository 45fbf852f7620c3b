package post

import (
	"context"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/pkg/logger"
)

type DeletePostUseCase struct {
	store  ProjectStore
	logger logger.Logger
}

func NewDeletePostUseCase(s ProjectStore, log logger.Logger) *DeletePostUseCase {
	return &DeletePostUseCase{store: s, logger: log}
}

type DeletePostInput struct {
	PostID string
	Wait   bool
}

// Execute removes the project. Unknown ids succeed without touching the backend.
func (uc *DeletePostUseCase) Execute(ctx context.Context, input DeletePostInput) error {
	if err := uc.store.DeletePost(input.PostID).WaitIf(ctx, input.Wait); err != nil {
		return err
	}
	uc.logger.Info("Project deleted", zap.String("post_id", input.PostID))
	return nil
}
