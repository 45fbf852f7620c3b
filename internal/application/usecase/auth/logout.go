package auth

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/logger"
)

type LogoutUseCase struct {
	denylist service.TokenDenylist
	logger   logger.Logger
}

func NewLogoutUseCase(denylist service.TokenDenylist, log logger.Logger) *LogoutUseCase {
	return &LogoutUseCase{denylist: denylist, logger: log}
}

// Execute revokes the session's token until it would have expired anyway.
func (uc *LogoutUseCase) Execute(ctx context.Context, s *Session) error {
	if s == nil || s.TokenID == "" {
		return apperror.NewUnauthorized("no active session", nil)
	}
	until := s.ExpiresAt
	if until.IsZero() {
		until = time.Now().Add(24 * time.Hour)
	}
	if err := uc.denylist.Revoke(ctx, s.TokenID, until); err != nil {
		return apperror.NewIO("failed to revoke token", err)
	}
	uc.logger.Info("Signed out", zap.String("owner_id", s.OwnerID), zap.String("provider", s.Provider))
	return nil
}
