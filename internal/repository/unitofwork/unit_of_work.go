package unitofwork

import (
	"context"

	"disaster-locator-bot/internal/repository/contract"
)

// UnitOfWork hands out repositories bound to one transaction.
// Rollback after Commit is a no-op, so callers can always defer it.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	SessionRepository() contract.SessionRepository
	ResourceRepository() contract.ResourceRepository
}

type RepositoryFactory interface {
	NewUnitOfWork(ctx context.Context) UnitOfWork
}

// Run executes fn inside a fresh unit of work and commits when fn succeeds.
func Run(ctx context.Context, factory RepositoryFactory, fn func(uow UnitOfWork) error) error {
	uow := factory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}
	return uow.Commit()
}
