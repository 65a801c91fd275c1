package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletrace/internal/logging"
)

func TestPaymentsRateLimit(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Post("/payments", PaymentsRateLimit(cache, 2, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	want := []int{fiber.StatusOK, fiber.StatusOK, fiber.StatusTooManyRequests}
	for i, status := range want {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/payments", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != status {
			t.Fatalf("request %d: expected %d got %d", i, status, resp.StatusCode)
		}
	}

	keys := mr.Keys()
	if len(keys) != 1 || !strings.HasPrefix(keys[0], paymentsRateLimitPrefix) {
		t.Fatalf("expected one rate limit counter, got %v", keys)
	}
	ttl := mr.TTL(keys[0])
	if ttl <= 0 {
		t.Fatalf("expected counter to expire, ttl %s", ttl)
	}

	mr.FastForward(ttl)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/payments", nil))
	if err != nil {
		t.Fatalf("request after window: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("expected window to reset, got %d", resp.StatusCode)
	}
}

func TestPaymentsRateLimitWithoutRedis(t *testing.T) {
	app := fiber.New()
	app.Post("/payments", PaymentsRateLimit(nil, 1, logging.Discard()), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	for i := 0; i < 3; i++ {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/payments", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("request %d: expected 200 got %d", i, resp.StatusCode)
		}
	}
}
