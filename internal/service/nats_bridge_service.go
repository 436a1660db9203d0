package service

import (
	"context"
	"fmt"
	"time"

	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/pkg/privacy"
	"disaster-locator-bot/internal/pkg/serverutils"
	"disaster-locator-bot/pkg/events"
	pktNats "disaster-locator-bot/pkg/nats"
)

// EventPublisher is the outbound side of the NATS bus.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventSubscriber is the inbound side of the NATS bus.
type EventSubscriber interface {
	Subscribe(ctx context.Context, subject string, durableName string, handler pktNats.EventHandler) error
}

// IntakeService feeds chat gateway events arriving over NATS into the
// inbound topic. Malformed events are dropped; a failed handoff is retried
// by the bus.
type IntakeService struct {
	subscriber EventSubscriber
	publisher  IPublisherService
	logger     logger.ILogger
}

func NewIntakeService(sub EventSubscriber, publisher IPublisherService, log logger.ILogger) *IntakeService {
	return &IntakeService{
		subscriber: sub,
		publisher:  publisher,
		logger:     log,
	}
}

// Start registers the durable consumer and returns.
func (s *IntakeService) Start(ctx context.Context) error {
	subject := pktNats.Subject(constant.InboundEventType)
	if err := s.subscriber.Subscribe(ctx, subject, constant.InboundDurableName, s.handleEvent); err != nil {
		s.logger.Error("IntakeService", "Failed to start inbound subscriber", map[string]interface{}{"error": err.Error()})
		return err
	}
	s.logger.Info("IntakeService", "Listening for inbound messages", map[string]interface{}{"subject": subject})
	return nil
}

func (s *IntakeService) handleEvent(ctx context.Context, event events.Event) error {
	var ev dto.InboundEvent
	if err := events.Decode(event, &ev); err != nil {
		s.logger.Warn("IntakeService", "Dropping undecodable inbound event", map[string]interface{}{"error": err.Error()})
		return nil
	}
	if err := serverutils.ValidateRequest(ev); err != nil {
		s.logger.Warn("IntakeService", "Dropping invalid inbound event", map[string]interface{}{
			"event_id": ev.EventId,
			"error":    err.Error(),
		})
		return nil
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = event.Timestamp()
	}

	id, err := s.publisher.PublishInbound(ctx, ev)
	if err != nil {
		return fmt.Errorf("queue inbound event: %w", err)
	}
	s.logger.Debug("IntakeService", "Inbound event queued", map[string]interface{}{
		"event_id": id,
		"user":     privacy.HashUserID(ev.SenderId),
	})
	return nil
}

// NatsDeliveryService hands outbound messages back to the chat gateway.
type NatsDeliveryService struct {
	publisher EventPublisher
	logger    logger.ILogger
}

var _ IMessageSender = (*NatsDeliveryService)(nil)

func NewNatsDeliveryService(pub EventPublisher, log logger.ILogger) *NatsDeliveryService {
	return &NatsDeliveryService{publisher: pub, logger: log}
}

func (s *NatsDeliveryService) Send(ctx context.Context, recipientId string, msg dto.OutboundMessage) error {
	event, err := events.NewJSONEvent(constant.OutboundEventType, dto.OutboundEnvelope{
		RecipientId: recipientId,
		Message:     msg,
		SentAt:      time.Now(),
	})
	if err != nil {
		return err
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("NatsDeliveryService", "Failed to publish outbound message", map[string]interface{}{
			"user":  privacy.HashUserID(recipientId),
			"error": err.Error(),
		})
		return err
	}
	return nil
}
