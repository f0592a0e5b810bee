package model

import "context"

// TokenStore keeps at most one CSRF token for the lifetime of a tab.
// Get returns ErrNotFound when no token is cached.
type TokenStore interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}
