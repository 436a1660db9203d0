package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/entity"
	"disaster-locator-bot/internal/mapper"
	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/pkg/privacy"
	"disaster-locator-bot/internal/repository/contract"
	"disaster-locator-bot/pkg/geo"

	"github.com/google/uuid"
)

// ActionKind tags what a single inbound event asks the router to do.
type ActionKind int

const (
	ActionText ActionKind = iota + 1
	ActionSelect
	ActionLocation
)

func (k ActionKind) String() string {
	switch k {
	case ActionText:
		return "text"
	case ActionSelect:
		return "select"
	case ActionLocation:
		return "location"
	}
	return "unknown"
}

type Action struct {
	Kind     ActionKind
	Text     string
	OptionId int
	Location geo.Point
}

// Classify splits an inbound event into the actions it carries, in the order
// they must run: text first, then menu selection, then location. Selections
// outside the catalog and invalid coordinates produce no action.
func Classify(ev dto.InboundEvent) []Action {
	actions := make([]Action, 0, 3)

	if ev.Text != nil && strings.TrimSpace(*ev.Text) != "" {
		actions = append(actions, Action{Kind: ActionText, Text: strings.TrimSpace(*ev.Text)})
	}

	if ev.SelectedOptionId != nil {
		if id, ok := entity.ParseOptionId(*ev.SelectedOptionId); ok {
			if _, known := constant.MenuOptionById(id); known {
				actions = append(actions, Action{Kind: ActionSelect, OptionId: id})
			}
		}
	}

	if ev.Location != nil {
		if p, err := geo.NewPoint(ev.Location.Latitude, ev.Location.Longitude); err == nil {
			actions = append(actions, Action{Kind: ActionLocation, Location: p})
		}
	}

	return actions
}

type IConversationService interface {
	// HandleEvent runs one event to completion. Resolution failures are
	// answered in chat; only delivery failures are returned.
	HandleEvent(ctx context.Context, ev dto.InboundEvent) error
}

type ConversationConfig struct {
	ClosingDelay time.Duration
}

type conversationService struct {
	sessions   contract.SessionRepository
	strategies map[entity.ArmedStrategy]IResolutionStrategy
	sender     IMessageSender
	replies    *mapper.ReplyMapper
	cfg        ConversationConfig
	logger     logger.ILogger
	sleep      func(ctx context.Context, d time.Duration)
}

func NewConversationService(
	sessions contract.SessionRepository,
	strategies map[entity.ArmedStrategy]IResolutionStrategy,
	sender IMessageSender,
	cfg ConversationConfig,
	log logger.ILogger,
) IConversationService {
	return &conversationService{
		sessions:   sessions,
		strategies: strategies,
		sender:     sender,
		replies:    mapper.NewReplyMapper(),
		cfg:        cfg,
		logger:     log,
		sleep:      sleepContext,
	}
}

func (s *conversationService) HandleEvent(ctx context.Context, ev dto.InboundEvent) error {
	actions := Classify(ev)
	if len(actions) == 0 {
		s.logger.Debug("ConversationService", "Ignoring event without actions", map[string]interface{}{
			"user": privacy.HashUserID(ev.SenderId),
		})
		return nil
	}

	var errs []error
	for _, action := range actions {
		if err := s.transition(ctx, ev.SenderId, action); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", action.Kind, err))
		}
	}
	return errors.Join(errs...)
}

func (s *conversationService) transition(ctx context.Context, userId string, action Action) error {
	switch action.Kind {
	case ActionText:
		return s.onText(ctx, userId)
	case ActionSelect:
		return s.onSelect(ctx, userId, action.OptionId)
	case ActionLocation:
		return s.onLocation(ctx, userId, action.Location)
	}
	return nil
}

// onText greets and shows the menu. A new user gets an unarmed session; an
// existing session keeps its strategy.
func (s *conversationService) onText(ctx context.Context, userId string) error {
	_, created, err := s.sessions.CreateIfAbsent(ctx, userId)
	if err != nil {
		s.logger.Error("ConversationService", "Failed to create session", map[string]interface{}{
			"user":  privacy.HashUserID(userId),
			"error": err.Error(),
		})
		return s.sendText(ctx, userId, constant.GenericErrorText)
	}
	if created {
		s.logger.Info("ConversationService", "Session created", map[string]interface{}{"user": privacy.HashUserID(userId)})
	}

	if err := s.sendText(ctx, userId, constant.GreetingText); err != nil {
		return err
	}
	return s.send(ctx, userId, s.replies.Menu(constant.MenuOptions))
}

func (s *conversationService) onSelect(ctx context.Context, userId string, optionId int) error {
	option, ok := constant.MenuOptionById(optionId)
	if !ok {
		return nil
	}

	if _, err := s.sessions.Upsert(ctx, userId, option.Strategy); err != nil {
		s.logger.Error("ConversationService", "Failed to arm strategy", map[string]interface{}{
			"user":     privacy.HashUserID(userId),
			"strategy": option.Strategy,
			"error":    err.Error(),
		})
		return s.sendText(ctx, userId, constant.GenericErrorText)
	}

	s.logger.Info("ConversationService", "Strategy armed", map[string]interface{}{
		"user":     privacy.HashUserID(userId),
		"strategy": option.Strategy,
	})
	return s.sendText(ctx, userId, constant.LocationPromptText)
}

// onLocation resolves against the armed strategy. The strategy stays armed
// afterwards so the user can send another location.
func (s *conversationService) onLocation(ctx context.Context, userId string, origin geo.Point) error {
	session, err := s.sessions.FindByUserId(ctx, userId)
	if err != nil {
		s.logger.Error("ConversationService", "Failed to load session", map[string]interface{}{
			"user":  privacy.HashUserID(userId),
			"error": err.Error(),
		})
		return s.sendText(ctx, userId, constant.GenericErrorText)
	}
	if entity.StateOf(session) != entity.StateAwaitingLocation {
		return s.sendText(ctx, userId, apperror.UserMessage(apperror.ErrSessionNotFound))
	}

	strategy, ok := s.strategies[session.ArmedStrategy]
	if !ok {
		s.logger.Error("ConversationService", "No resolver for armed strategy", map[string]interface{}{
			"strategy": session.ArmedStrategy,
		})
		return s.sendText(ctx, userId, constant.GenericErrorText)
	}

	started := time.Now()
	entries, err := strategy.Resolve(ctx, origin)
	if err != nil {
		s.logger.Warn("ConversationService", "Resolution failed", map[string]interface{}{
			"user":     privacy.HashUserID(userId),
			"strategy": session.ArmedStrategy,
			"error":    err.Error(),
		})
		return s.sendText(ctx, userId, apperror.UserMessage(err))
	}

	s.logger.Info("ConversationService", "Resolution succeeded", map[string]interface{}{
		"user":        privacy.HashUserID(userId),
		"strategy":    session.ArmedStrategy,
		"results":     len(entries),
		"duration_ms": time.Since(started).Milliseconds(),
	})

	// Pins go out one by one so the client renders them in rank order.
	for _, msg := range s.replies.Entries(entries) {
		if err := s.send(ctx, userId, msg); err != nil {
			return err
		}
	}

	s.sleep(ctx, s.cfg.ClosingDelay)
	return s.sendText(ctx, userId, constant.ClosingText)
}

func (s *conversationService) sendText(ctx context.Context, userId, text string) error {
	return s.send(ctx, userId, s.replies.Text(text))
}

func (s *conversationService) send(ctx context.Context, userId string, msg dto.OutboundMessage) error {
	if msg.Id == "" {
		msg.Id = uuid.NewString()
	}
	if err := s.sender.Send(ctx, userId, msg); err != nil {
		s.logger.Error("ConversationService", "Failed to deliver message", map[string]interface{}{
			"user":  privacy.HashUserID(userId),
			"kind":  msg.Kind,
			"error": err.Error(),
		})
		return err
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
