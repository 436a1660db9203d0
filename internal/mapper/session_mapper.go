package mapper

import (
	"time"

	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/model"
)

type SessionMapper struct{}

func NewSessionMapper() *SessionMapper {
	return &SessionMapper{}
}

func (m *SessionMapper) ToEntity(s *model.ChatSession) *entity.Session {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	strategy := entity.ArmedStrategy(s.ArmedStrategy)
	if !strategy.IsValid() {
		strategy = entity.StrategyNone
	}

	return &entity.Session{
		UserId:        s.UserId,
		ArmedStrategy: strategy,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}

func (m *SessionMapper) ToModel(s *entity.Session) *model.ChatSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.ChatSession{
		UserId:        s.UserId,
		ArmedStrategy: string(s.ArmedStrategy),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     updatedAt,
	}
}
