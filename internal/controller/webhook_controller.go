package controller

import (
	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/serverutils"
	"disaster-locator-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IWebhookController interface {
	RegisterRoutes(r fiber.Router)
	ReceiveMessage(ctx *fiber.Ctx) error
}

type webhookController struct {
	publisher service.IPublisherService
	jwtSecret string
}

func NewWebhookController(publisher service.IPublisherService, jwtSecret string) IWebhookController {
	return &webhookController{publisher: publisher, jwtSecret: jwtSecret}
}

// RegisterRoutes exposes the intake for chat gateway bridges. Only tokens
// with the bridge role may post on behalf of chat users.
func (c *webhookController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/webhook", serverutils.NewJwtMiddleware(c.jwtSecret, serverutils.RoleBridge))
	h.Post("/messages", c.ReceiveMessage)
}

func (c *webhookController) ReceiveMessage(ctx *fiber.Ctx) error {
	var req dto.InboundEvent
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	// Queued only; replies travel back over the outbound transports.
	eventId, err := c.publisher.PublishInbound(ctx.UserContext(), req)
	if err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, "Message could not be queued"))
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Message accepted", dto.WebhookAcceptedResponse{
		EventId: eventId,
	}))
}
