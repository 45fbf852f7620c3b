package auth

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/auth"
	"github.com/khoahotran/devfolio/pkg/logger"
)

const ProviderPassword = "password"

var ErrInvalidCredentials = errors.New("email or password is incorrect")

type LoginUseCase struct {
	owner  Owner
	jwtSvc *auth.JWTService
	logger logger.Logger
}

func NewLoginUseCase(owner Owner, jwtSvc *auth.JWTService, log logger.Logger) *LoginUseCase {
	return &LoginUseCase{
		owner:  owner,
		jwtSvc: jwtSvc,
		logger: log,
	}
}

type LoginInput struct {
	Email    string
	Password string
}

func (uc *LoginUseCase) Execute(ctx context.Context, input LoginInput) (*Session, error) {
	_, span := tracer.Start(ctx, "Login.Execute")
	defer span.End()

	if !uc.owner.matches(input.Email) || uc.owner.PasswordHash == "" ||
		!auth.CheckPasswordHash(input.Password, uc.owner.PasswordHash) {
		err := apperror.NewUnauthorized("email or password is incorrect", ErrInvalidCredentials)
		span.RecordError(err)
		uc.logger.Warn("Rejected sign-in attempt", zap.String("email", input.Email))
		return nil, err
	}

	token, claims, err := uc.jwtSvc.GenerateToken(uc.owner.ID, uc.owner.Email, ProviderPassword)
	if err != nil {
		uc.logger.Error("Failed to generate token", err, zap.String("owner_id", uc.owner.ID))
		err = apperror.NewInternal("failed to generate token", err)
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("owner_id", uc.owner.ID))
	return sessionFrom(token, claims), nil
}
