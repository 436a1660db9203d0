package memory

import (
	"context"
	"sync"
	"time"

	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/repository/contract"

	"github.com/patrickmn/go-cache"
)

// SessionRepository keeps sessions in process memory. Used when no database
// is configured (local runs, the console simulator, tests).
type SessionRepository struct {
	cache *cache.Cache
	// Serialises read-modify-write; go-cache only locks single calls.
	mu sync.Mutex
}

var _ contract.SessionRepository = (*SessionRepository)(nil)

// NewSessionRepository keeps idle sessions for ttl; zero keeps them forever.
func NewSessionRepository(ttl time.Duration) *SessionRepository {
	expiration := cache.NoExpiration
	cleanup := time.Duration(0)
	if ttl > 0 {
		expiration = ttl
		cleanup = 10 * time.Minute
	}
	return &SessionRepository{
		cache: cache.New(expiration, cleanup),
	}
}

func (r *SessionRepository) get(userId string) (*entity.Session, bool) {
	if x, found := r.cache.Get(userId); found {
		s := x.(entity.Session)
		return &s, true
	}
	return nil, false
}

func (r *SessionRepository) FindByUserId(ctx context.Context, userId string) (*entity.Session, error) {
	s, _ := r.get(userId)
	return s, nil
}

func (r *SessionRepository) CreateIfAbsent(ctx context.Context, userId string) (*entity.Session, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, found := r.get(userId); found {
		return s, false, nil
	}
	now := time.Now()
	s := entity.Session{UserId: userId, ArmedStrategy: entity.StrategyNone, CreatedAt: now, UpdatedAt: &now}
	r.cache.Set(userId, s, cache.DefaultExpiration)
	return &s, true, nil
}

func (r *SessionRepository) Upsert(ctx context.Context, userId string, strategy entity.ArmedStrategy) (*entity.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	s := entity.Session{UserId: userId, CreatedAt: now}
	if existing, found := r.get(userId); found {
		s = *existing
	}
	s.ArmedStrategy = strategy
	s.UpdatedAt = &now
	r.cache.Set(userId, s, cache.DefaultExpiration)
	return &s, nil
}

func (r *SessionRepository) Count(ctx context.Context) (int64, error) {
	return int64(r.cache.ItemCount()), nil
}
