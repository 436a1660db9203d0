package handler

import (
	"context"
	"time"

	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/logger"
	"disaster-locator-bot/internal/pkg/privacy"
	"disaster-locator-bot/internal/pkg/serverutils"
	"disaster-locator-bot/internal/service"
	internalWS "disaster-locator-bot/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// ChatHandler is the websocket chat transport: frames in, outbound
// envelopes out through the hub.
type ChatHandler struct {
	publisher service.IPublisherService
	hub       *internalWS.Hub
	jwtSecret string
	logger    logger.ILogger
}

func NewChatHandler(publisher service.IPublisherService, hub *internalWS.Hub, jwtSecret string, log logger.ILogger) *ChatHandler {
	return &ChatHandler{
		publisher: publisher,
		hub:       hub,
		jwtSecret: jwtSecret,
		logger:    log,
	}
}

func (h *ChatHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/ws", h.ServeWs)
}

// ServeWs authenticates the handshake and upgrades. The chat identity is the
// token's user_id claim.
func (h *ChatHandler) ServeWs(c *fiber.Ctx) error {
	// Query param first (browsers cannot set headers on the handshake)
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Missing token (Query 'token' or Header 'Authorization')"))
	}

	claims, err := serverutils.ParseToken(tokenStr, h.jwtSecret)
	if err != nil {
		h.logger.Warn("ChatHandler", "Invalid token in WS handshake", map[string]interface{}{"error": err.Error()})
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token"))
	}

	userId, ok := claims["user_id"].(string)
	if !ok || userId == "" || len(userId) > 256 {
		return c.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Token missing user_id"))
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("ChatHandler", "Starting chat session", map[string]interface{}{"user": privacy.HashUserID(userId)})
			internalWS.ServeWs(h.hub, conn, userId, h.onFrame)
			h.logger.Info("ChatHandler", "Chat session ended", map[string]interface{}{"user": privacy.HashUserID(userId)})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *ChatHandler) onFrame(userId string, frame dto.ChatFrame) {
	ev := h.ToEvent(userId, frame)
	if err := serverutils.ValidateRequest(ev); err != nil {
		h.logger.Warn("ChatHandler", "Dropping invalid frame", map[string]interface{}{
			"user":  privacy.HashUserID(userId),
			"error": err.Error(),
		})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := h.publisher.PublishInbound(ctx, ev); err != nil {
		h.logger.Error("ChatHandler", "Failed to queue frame", map[string]interface{}{
			"user":  privacy.HashUserID(userId),
			"error": err.Error(),
		})
	}
}

// ToEvent binds a frame to the connection's identity.
func (h *ChatHandler) ToEvent(userId string, frame dto.ChatFrame) dto.InboundEvent {
	return dto.InboundEvent{
		SenderId:         userId,
		Text:             frame.Text,
		SelectedOptionId: frame.SelectedOptionId,
		Location:         frame.Location,
		ReceivedAt:       time.Now(),
	}
}
