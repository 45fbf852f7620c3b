package service

import (
	"context"
	"time"
)

// TokenDenylist remembers signed-out session tokens by their jti until they would have expired.
type TokenDenylist interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}
