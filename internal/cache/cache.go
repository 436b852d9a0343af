package cache

import (
	"context"
	"errors"

	"github.com/ctgpost/MarketingWebTools/internal/domain"
)

// SessionCache keeps the latest snapshot of each live session so another
// instance can pick the session up while it is still active.
type SessionCache interface {
	Get(ctx context.Context, sessionID string) (*domain.SessionSnapshot, error)
	Set(ctx context.Context, sessionID string, snapshot *domain.SessionSnapshot) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")
