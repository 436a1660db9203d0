package service

import (
	"context"
	"encoding/json"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/pkg/privacy"
	"disaster-locator-bot/internal/pkg/serverutils"
	"disaster-locator-bot/internal/tracer"
	"disaster-locator-bot/pkg/lock"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// IConsumerService drains the inbound topic into the conversation router.
type IConsumerService interface {
	Consume(ctx context.Context) error
	// Wait blocks until every worker has finished after the topic closed or
	// the consume context was cancelled.
	Wait()
}

type ConsumerConfig struct {
	Workers int
	// EventTimeout bounds one event including the per-user lock wait.
	EventTimeout time.Duration
}

// consumerService shards events by sender so that events of one user are
// handled one at a time and in arrival order, while different users run in
// parallel. The redis lock extends that guarantee across instances.
type consumerService struct {
	subscriber   message.Subscriber
	topicName    string
	conversation IConversationService
	locker       lock.Locker
	cfg          ConsumerConfig
	logger       logger.ILogger

	shards []chan dto.InboundEvent
	wg     sync.WaitGroup
}

func NewConsumerService(
	subscriber message.Subscriber,
	topicName string,
	conversation IConversationService,
	locker lock.Locker,
	cfg ConsumerConfig,
	log logger.ILogger,
) IConsumerService {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.EventTimeout <= 0 {
		cfg.EventTimeout = 90 * time.Second
	}
	if locker == nil {
		locker = lock.NoopLocker{}
	}
	return &consumerService{
		subscriber:   subscriber,
		topicName:    topicName,
		conversation: conversation,
		locker:       locker,
		cfg:          cfg,
		logger:       log,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.subscriber.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	cs.shards = make([]chan dto.InboundEvent, cs.cfg.Workers)
	for i := range cs.shards {
		cs.shards[i] = make(chan dto.InboundEvent, 64)
		cs.wg.Add(1)
		go cs.work(ctx, cs.shards[i])
	}

	cs.wg.Add(1)
	go func() {
		defer cs.wg.Done()
		defer func() {
			for _, shard := range cs.shards {
				close(shard)
			}
		}()
		for msg := range messages {
			cs.dispatch(ctx, msg)
		}
	}()

	cs.logger.Info("ConsumerService", "Dispatcher started", map[string]interface{}{
		"topic":   cs.topicName,
		"workers": cs.cfg.Workers,
	})
	return nil
}

func (cs *consumerService) Wait() {
	cs.wg.Wait()
}

// dispatch hands the event to its shard and acks. The topic delivers the
// next message only after the ack, so acking on handoff keeps users parallel.
func (cs *consumerService) dispatch(ctx context.Context, msg *message.Message) {
	var ev dto.InboundEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		cs.logger.Warn("ConsumerService", "Dropping undecodable event", map[string]interface{}{
			"message_id": msg.UUID,
			"error":      err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}
	if err := serverutils.ValidateRequest(ev); err != nil {
		cs.logger.Warn("ConsumerService", "Dropping invalid event", map[string]interface{}{
			"event_id": ev.EventId,
			"error":    err.Error(),
		})
		msg.Ack()
		return
	}

	select {
	case cs.shards[ShardOf(ev.SenderId, len(cs.shards))] <- ev:
		msg.Ack()
	case <-ctx.Done():
		msg.Nack()
	}
}

func (cs *consumerService) work(ctx context.Context, events <-chan dto.InboundEvent) {
	defer cs.wg.Done()
	for ev := range events {
		if ctx.Err() != nil {
			continue
		}
		cs.handle(ctx, ev)
	}
}

func (cs *consumerService) handle(ctx context.Context, ev dto.InboundEvent) {
	ctx, cancel := context.WithTimeout(ctx, cs.cfg.EventTimeout)
	defer cancel()

	ctx, span := tracer.Start(ctx, "conversation.handle_event",
		attribute.String("event.id", ev.EventId),
		attribute.String("user.hash", privacy.HashUserID(ev.SenderId)),
	)
	defer span.End()

	release, err := cs.locker.Acquire(ctx, constant.UserLockKeyPrefix+ev.SenderId)
	if err != nil {
		// The shard still serialises this instance, so carry on.
		cs.logger.Warn("ConsumerService", "Per-user lock unavailable", map[string]interface{}{
			"user":        privacy.HashUserID(ev.SenderId),
			"event_id":    ev.EventId,
			"not_granted": errors.Is(err, lock.ErrNotAcquired),
			"error":       err.Error(),
		})
		release = func() {}
	}
	defer release()

	if err := cs.conversation.HandleEvent(ctx, ev); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
		cs.logger.Error("ConsumerService", "Event handled with delivery errors", map[string]interface{}{
			"user":     privacy.HashUserID(ev.SenderId),
			"event_id": ev.EventId,
			"error":    err.Error(),
		})
		return
	}
	cs.logger.Debug("ConsumerService", "Event handled", map[string]interface{}{
		"user":     privacy.HashUserID(ev.SenderId),
		"event_id": ev.EventId,
	})
}

// ShardOf maps a sender onto one of n workers.
func ShardOf(senderId string, n int) int {
	if n <= 1 {
		return 0
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(senderId))
	return int(h.Sum32() % uint32(n))
}
