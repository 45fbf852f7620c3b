package auth

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/khoahotran/devfolio/internal/application/service"
	"github.com/khoahotran/devfolio/pkg/apperror"
	"github.com/khoahotran/devfolio/pkg/auth"
)

var tracer = otel.Tracer("auth_usecase")

// Owner is the only account allowed into the admin area.
type Owner struct {
	ID           string
	Email        string
	PasswordHash string
}

func (o Owner) matches(email string) bool {
	return o.Email != "" && strings.EqualFold(strings.TrimSpace(email), o.Email)
}

// Session is a signed-in owner.
type Session struct {
	AccessToken string
	TokenID     string
	OwnerID     string
	Email       string
	Provider    string
	ExpiresAt   time.Time
}

func sessionFrom(token string, c *auth.CustomClaims) *Session {
	s := &Session{
		AccessToken: token,
		TokenID:     c.ID,
		OwnerID:     c.OwnerID,
		Email:       c.Email,
		Provider:    c.Provider,
	}
	if c.ExpiresAt != nil {
		s.ExpiresAt = c.ExpiresAt.Time
	}
	return s
}

type SessionUseCase struct {
	jwtSvc   *auth.JWTService
	denylist service.TokenDenylist
}

func NewSessionUseCase(jwtSvc *auth.JWTService, denylist service.TokenDenylist) *SessionUseCase {
	return &SessionUseCase{jwtSvc: jwtSvc, denylist: denylist}
}

// Execute resolves a bearer token into the session it stands for. Signed-out tokens are rejected.
func (uc *SessionUseCase) Execute(ctx context.Context, token string) (*Session, error) {
	claims, err := uc.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid or expired token", err)
	}
	revoked, err := uc.denylist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, apperror.NewIO("failed to check token revocation", err)
	}
	if revoked {
		return nil, apperror.NewUnauthorized("token has been signed out", nil)
	}
	return sessionFrom(token, claims), nil
}
