package service

import (
	"context"
	"encoding/json"
	"time"

	"disaster-locator-bot/internal/dto"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

type IPublisherService interface {
	// PublishInbound queues an inbound event for the dispatcher and returns
	// its event id.
	PublishInbound(ctx context.Context, ev dto.InboundEvent) (string, error)
}

type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (ps *publisherService) PublishInbound(ctx context.Context, ev dto.InboundEvent) (string, error) {
	if ev.EventId == "" {
		ev.EventId = uuid.NewString()
	}
	if ev.ReceivedAt.IsZero() {
		ev.ReceivedAt = time.Now()
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return "", err
	}

	msg := message.NewMessage(ev.EventId, payload)
	if err := ps.pubSub.Publish(ps.topicName, msg); err != nil {
		return "", err
	}
	return ev.EventId, nil
}
