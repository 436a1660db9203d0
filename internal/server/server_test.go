package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"disaster-locator-bot/internal/bootstrap"
	"disaster-locator-bot/internal/config"
	"disaster-locator-bot/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Load()
	dir := t.TempDir()
	cfg.App.LogFilePath = filepath.Join(dir, "bot.log")
	cfg.App.GatewayLogFilePath = filepath.Join(dir, "gateway.log")
	cfg.App.JwtSecret = "server-test"
	cfg.App.RedisURL = ""
	cfg.App.NatsURL = ""

	container := bootstrap.NewContainer(nil, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, container.ConsumerService.Consume(ctx))
	t.Cleanup(func() {
		cancel()
		container.ConsumerService.Wait()
		container.Close()
	})
	return New(cfg, container)
}

func TestServerRoutes(t *testing.T) {
	app := newTestServer(t).GetApp()

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/messages", strings.NewReader(`{"sender_id":"u"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/chat/ws", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestServerAcceptsSignedWebhook(t *testing.T) {
	app := newTestServer(t).GetApp()

	token, err := serverutils.SignToken("server-test", jwt.MapClaims{"user_id": "bridge", "role": serverutils.RoleBridge})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/webhook/messages", strings.NewReader(`{"sender_id":"905551112233","text":"merhaba"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)
}
