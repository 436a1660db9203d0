package contract

import (
	"context"

	"disaster-locator-bot/internal/entity"
)

// SessionRepository persists one conversation record per chat identity.
// Implementations must be safe for concurrent use by different users.
type SessionRepository interface {
	// FindByUserId returns nil, nil when the user has no session.
	FindByUserId(ctx context.Context, userId string) (*entity.Session, error)
	// CreateIfAbsent creates an unarmed session; an existing one is returned untouched.
	CreateIfAbsent(ctx context.Context, userId string) (session *entity.Session, created bool, err error)
	Upsert(ctx context.Context, userId string, strategy entity.ArmedStrategy) (*entity.Session, error)
	Count(ctx context.Context) (int64, error)
}
