package unitofwork

import (
	"context"
	"errors"

	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/internal/repository/implementation"

	"gorm.io/gorm"
)

var errTxActive = errors.New("unitofwork: transaction already started")

type gormFactory struct {
	db *gorm.DB
}

func NewRepositoryFactory(db *gorm.DB) RepositoryFactory {
	return &gormFactory{db: db}
}

// NewUnitOfWork is short lived, one per import or request.
func (f *gormFactory) NewUnitOfWork(ctx context.Context) UnitOfWork {
	return &gormUnitOfWork{db: f.db.WithContext(ctx)}
}

type gormUnitOfWork struct {
	db *gorm.DB
	tx *gorm.DB
}

// conn is the open transaction, or the plain handle before Begin.
func (u *gormUnitOfWork) conn() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *gormUnitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return errTxActive
	}
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}
	u.tx = tx
	return nil
}

func (u *gormUnitOfWork) Commit() error {
	if u.tx == nil {
		return gorm.ErrInvalidTransaction
	}
	tx := u.tx
	u.tx = nil
	return tx.Commit().Error
}

func (u *gormUnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	tx := u.tx
	u.tx = nil
	return tx.Rollback().Error
}

func (u *gormUnitOfWork) SessionRepository() contract.SessionRepository {
	return implementation.NewChatSessionRepository(u.conn())
}

func (u *gormUnitOfWork) ResourceRepository() contract.ResourceRepository {
	return implementation.NewResourceRepository(u.conn())
}
