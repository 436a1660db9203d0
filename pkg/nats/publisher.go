package nats

import (
	"context"
	"fmt"

	"disaster-locator-bot/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher handles sending events to the NATS bus.
type Publisher struct {
	nc *nats.Conn
	js jetstream.JetStream
}

func NewPublisher(nc *nats.Conn, js jetstream.JetStream) *Publisher {
	return &Publisher{nc: nc, js: js}
}

// Publish sends an event to NATS and waits for the stream ack.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	subject := Subject(event.EventType())

	_, err := p.js.Publish(ctx, subject, event.Payload())
	if err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
