package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/logger"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingConversation struct {
	mu     sync.Mutex
	byUser map[string][]string
	active map[string]int
	// set when two events of one user overlapped
	overlap bool
}

func newRecordingConversation() *recordingConversation {
	return &recordingConversation{byUser: map[string][]string{}, active: map[string]int{}}
}

func (c *recordingConversation) HandleEvent(ctx context.Context, ev dto.InboundEvent) error {
	c.mu.Lock()
	c.active[ev.SenderId]++
	if c.active[ev.SenderId] > 1 {
		c.overlap = true
	}
	c.mu.Unlock()

	time.Sleep(time.Millisecond)

	c.mu.Lock()
	c.active[ev.SenderId]--
	c.byUser[ev.SenderId] = append(c.byUser[ev.SenderId], *ev.Text)
	c.mu.Unlock()
	return nil
}

func (c *recordingConversation) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, texts := range c.byUser {
		n += len(texts)
	}
	return n
}

func TestConsumerPreservesPerUserOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	conv := newRecordingConversation()
	consumer := NewConsumerService(pubSub, constant.InboundTopic, conv, nil, ConsumerConfig{Workers: 4}, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	publisher := NewPublisherService(constant.InboundTopic, pubSub)
	users := []string{"alice", "bob", "carol", "dave", "erin"}
	const perUser = 20
	for i := 0; i < perUser; i++ {
		for _, u := range users {
			id, err := publisher.PublishInbound(ctx, textEvent(u, fmt.Sprintf("%d", i)))
			require.NoError(t, err)
			assert.NotEmpty(t, id)
		}
	}

	require.Eventually(t, func() bool { return conv.total() == perUser*len(users) }, 5*time.Second, 10*time.Millisecond)

	conv.mu.Lock()
	defer conv.mu.Unlock()
	assert.False(t, conv.overlap, "events of one user must not overlap")
	for _, u := range users {
		require.Len(t, conv.byUser[u], perUser)
		for i, text := range conv.byUser[u] {
			assert.Equal(t, fmt.Sprintf("%d", i), text, u)
		}
	}
}

func TestConsumerDropsMalformedEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	conv := newRecordingConversation()
	consumer := NewConsumerService(pubSub, constant.InboundTopic, conv, nil, ConsumerConfig{Workers: 2}, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))

	require.NoError(t, pubSub.Publish(constant.InboundTopic, message.NewMessage(watermill.NewUUID(), []byte("{not json"))))
	require.NoError(t, pubSub.Publish(constant.InboundTopic, message.NewMessage(watermill.NewUUID(), []byte(`{"sender_id":""}`))))

	publisher := NewPublisherService(constant.InboundTopic, pubSub)
	_, err := publisher.PublishInbound(ctx, textEvent("alice", "after"))
	require.NoError(t, err)

	require.Eventually(t, func() bool { return conv.total() == 1 }, 5*time.Second, 10*time.Millisecond)
	conv.mu.Lock()
	defer conv.mu.Unlock()
	assert.Equal(t, []string{"after"}, conv.byUser["alice"])
}

func TestConsumerStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pubSub := gochannel.NewGoChannel(gochannel.Config{BlockPublishUntilSubscriberAck: true}, watermill.NopLogger{})
	defer pubSub.Close()

	consumer := NewConsumerService(pubSub, constant.InboundTopic, newRecordingConversation(), nil, ConsumerConfig{Workers: 3}, logger.NewNopLogger())
	require.NoError(t, consumer.Consume(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		consumer.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("workers did not stop after cancel")
	}
}

func TestShardOf(t *testing.T) {
	assert.Equal(t, 0, ShardOf("anyone", 1))
	assert.Equal(t, ShardOf("905551112233", 8), ShardOf("905551112233", 8))
	for _, u := range []string{"a", "b", "c", "d"} {
		s := ShardOf(u, 8)
		assert.GreaterOrEqual(t, s, 0)
		assert.Less(t, s, 8)
	}
}
