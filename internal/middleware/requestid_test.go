package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletrace/internal/logging"
)

func TestRequestIDPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	var fromCtx, fromLocals string
	app.Get("/", func(c *fiber.Ctx) error {
		fromCtx = logging.RequestID(c.UserContext())
		fromLocals = RequestIDFrom(c)
		return c.SendStatus(fiber.StatusNoContent)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if got := resp.Header.Get(requestIDHeader); got != "req-42" {
		t.Fatalf("expected echoed id, got %q", got)
	}
	if fromCtx != "req-42" || fromLocals != "req-42" {
		t.Fatalf("expected id in context and locals, got %q / %q", fromCtx, fromLocals)
	}

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/", nil))
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	if resp.Header.Get(requestIDHeader) == "" || fromCtx == "req-42" {
		t.Fatalf("expected a generated id, got %q", resp.Header.Get(requestIDHeader))
	}
}
