package implementation

import (
	"context"
	"errors"

	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/mapper"
	"disaster-locator-bot/internal/model"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/internal/repository/specification"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ChatSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SessionMapper
}

func NewChatSessionRepository(db *gorm.DB) contract.SessionRepository {
	return &ChatSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewSessionMapper(),
	}
}

func (r *ChatSessionRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Session, error) {
	var m model.ChatSession
	query := specification.Apply(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChatSessionRepositoryImpl) FindByUserId(ctx context.Context, userId string) (*entity.Session, error) {
	return r.findOne(ctx, specification.ByUserId(userId))
}

func (r *ChatSessionRepositoryImpl) CreateIfAbsent(ctx context.Context, userId string) (*entity.Session, bool, error) {
	m := &model.ChatSession{UserId: userId, ArmedStrategy: string(entity.StrategyNone)}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Create(m)
	if res.Error != nil {
		return nil, false, res.Error
	}
	if res.RowsAffected == 1 {
		return r.mapper.ToEntity(m), true, nil
	}

	existing, err := r.FindByUserId(ctx, userId)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *ChatSessionRepositoryImpl) Upsert(ctx context.Context, userId string, strategy entity.ArmedStrategy) (*entity.Session, error) {
	m := &model.ChatSession{UserId: userId, ArmedStrategy: string(strategy)}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"armed_strategy", "updated_at"}),
		}).
		Create(m).Error
	if err != nil {
		return nil, err
	}
	return r.FindByUserId(ctx, userId)
}

func (r *ChatSessionRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.ChatSession{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
