package controller

import (
	"errors"

	"disaster-locator-bot/internal/dto"
	"disaster-locator-bot/internal/pkg/apperror"
	"disaster-locator-bot/internal/pkg/serverutils"
	"disaster-locator-bot/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IResourceController interface {
	RegisterRoutes(r fiber.Router)
	Nearest(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type resourceController struct {
	service   service.IResourceService
	health    service.IHealthService
	jwtSecret string
}

func NewResourceController(service service.IResourceService, health service.IHealthService, jwtSecret string) IResourceController {
	return &resourceController{service: service, health: health, jwtSecret: jwtSecret}
}

func (c *resourceController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)

	h := r.Group("/resources", serverutils.NewJwtMiddleware(c.jwtSecret, "admin", serverutils.RoleBridge))
	h.Get("/nearest", c.Nearest)
}

func (c *resourceController) Nearest(ctx *fiber.Ctx) error {
	var req dto.NearestResourceRequest
	if err := ctx.QueryParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query parameters"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.service.Nearest(ctx.UserContext(), req)
	if err != nil {
		if errors.Is(err, apperror.ErrResourceStoreUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, "Resource store unavailable"))
		}
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Nearest resources", res))
}

func (c *resourceController) Health(ctx *fiber.Ctx) error {
	res := c.health.Check(ctx.UserContext())
	status := fiber.StatusOK
	if res.Status != "ok" {
		status = fiber.StatusServiceUnavailable
	}
	return ctx.Status(status).JSON(res)
}
