package ports

import (
	"context"
	"time"

	"github.com/99minutos/member-system/internal/core/domain"
)

// ParsedToken is the verified content of a bearer token.
type ParsedToken struct {
	Identity  domain.Identity
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies signed identity tokens.
type TokenService interface {
	Issue(identity domain.Identity) (string, error)
	// Parse fails with domain.ErrTokenExpired or domain.ErrTokenInvalid.
	Parse(token string) (*ParsedToken, error)
}

// TokenRevoker tracks members whose outstanding tokens must no longer be honoured.
type TokenRevoker interface {
	RevokeMember(ctx context.Context, memberID string, at time.Time) error
	// RevokedAt reports when memberID was revoked; ok is false if it never was.
	RevokedAt(ctx context.Context, memberID string) (at time.Time, ok bool, err error)
}
