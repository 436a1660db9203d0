package service

import (
	"context"
	"errors"

	"disaster-locator-bot/internal/dto"
)

// IMessageSender is the outbound side of the chat transport.
type IMessageSender interface {
	Send(ctx context.Context, recipientId string, msg dto.OutboundMessage) error
}

type multiSender struct {
	senders []IMessageSender
}

// NewMultiSender delivers every message through all senders in order. All
// senders are attempted; the errors are joined.
func NewMultiSender(senders ...IMessageSender) IMessageSender {
	active := make([]IMessageSender, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			active = append(active, s)
		}
	}
	return &multiSender{senders: active}
}

func (m *multiSender) Send(ctx context.Context, recipientId string, msg dto.OutboundMessage) error {
	var errs []error
	for _, s := range m.senders {
		if err := s.Send(ctx, recipientId, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
