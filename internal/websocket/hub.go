package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"disaster-locator-bot/internal/constant"
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/pkg/privacy"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// clusterEnvelope is what travels on the redis channel. Origin lets an
// instance skip what it already delivered locally.
type clusterEnvelope struct {
	Origin      string          `json:"origin"`
	RecipientId string          `json:"recipient_id"`
	Message     json.RawMessage `json:"message"`
}

type Hub struct {
	// Registered clients: chat user id -> connections (multi-device)
	clients map[string][]*Client

	register   chan *Client
	unregister chan *Client

	mu sync.RWMutex

	// Redis connection for cross-instance delivery, optional
	rdb        *redis.Client
	instanceId string

	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		instanceId: uuid.NewString(),
		logger:     log,
	}
}

func (h *Hub) InstanceId() string {
	return h.instanceId
}

// Run owns registration until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	if h.rdb != nil {
		go h.subscribeToRedis(ctx)
	}

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserId] = append(h.clients[client.UserId], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"user": privacy.HashUserID(client.UserId)})

		case client := <-h.unregister:
			h.mu.Lock()
			clients := h.clients[client.UserId]
			for i, c := range clients {
				if c == client {
					h.clients[client.UserId] = append(clients[:i], clients[i+1:]...)
					close(client.send)
					break
				}
			}
			if len(h.clients[client.UserId]) == 0 {
				delete(h.clients, client.UserId)
				h.logger.Info("Hub", "Client completely unregistered", map[string]interface{}{"user": privacy.HashUserID(client.UserId)})
			}
			h.mu.Unlock()
		}
	}
}

// Connected reports how many local connections a user has.
func (h *Hub) Connected(userId string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userId])
}

// Send delivers to local connections and publishes to the other instances.
// A user with no connection anywhere is not an error: the message may have
// been routed to another transport.
func (h *Hub) Send(ctx context.Context, recipientId string, msg dto.OutboundMessage) error {
	data, err := json.Marshal(dto.OutboundEnvelope{
		RecipientId: recipientId,
		Message:     msg,
		SentAt:      time.Now(),
	})
	if err != nil {
		return err
	}

	h.deliverLocal(recipientId, data)

	if h.rdb != nil {
		payload, _ := json.Marshal(clusterEnvelope{
			Origin:      h.instanceId,
			RecipientId: recipientId,
			Message:     data,
		})
		if err := h.rdb.Publish(ctx, constant.ClusterEventsChannel, payload).Err(); err != nil {
			h.logger.Warn("Hub", "Failed to publish to cluster", map[string]interface{}{
				"user":  privacy.HashUserID(recipientId),
				"error": err.Error(),
			})
		}
	}
	return nil
}

func (h *Hub) deliverLocal(recipientId string, data []byte) {
	// Held while sending: unregister closes channels under the write lock.
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.clients[recipientId] {
		select {
		case client.send <- data:
		default:
			h.logger.Warn("Hub", "Client send buffer full, dropping connection", map[string]interface{}{
				"user": privacy.HashUserID(recipientId),
			})
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}

func (h *Hub) subscribeToRedis(ctx context.Context) {
	pubsub := h.rdb.Subscribe(ctx, constant.ClusterEventsChannel)
	defer pubsub.Close()

	for msg := range pubsub.Channel() {
		var env clusterEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			h.logger.Warn("Hub", "Cluster message parse error", map[string]interface{}{"error": err.Error()})
			continue
		}
		if env.Origin == h.instanceId {
			continue
		}
		h.deliverLocal(env.RecipientId, env.Message)
	}
}
