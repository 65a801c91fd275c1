package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/walletrace/internal/config"
	"github.com/congo-pay/walletrace/internal/infra"
	"github.com/congo-pay/walletrace/internal/middleware"
	"github.com/congo-pay/walletrace/internal/wallet"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Broker *infra.Broker
	Bank   *wallet.Bank
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if d.Bank == nil {
		return fmt.Errorf("wallet bank is required")
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	// Enforce storage outside of dev, even though config also checks.
	if !d.Cfg.IsDevelopment() && d.DB == nil && d.Cache == nil {
		return fmt.Errorf("postgres or redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	// Plain text access log: [HH:MM:SS] 200 -  145ms METHOD /path
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Cfg.IdempotencyRequired, d.Logger))
	}

	RegisterHealthRoutes(app, d)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	walletHandler := wallet.NewHandler(d.Bank, d.Logger)
	paymentsLimit := middleware.PaymentsRateLimit(d.Cache, d.Cfg.PaymentsPerMinute, d.Logger)
	RegisterWalletRoutes(api, walletHandler, paymentsLimit)

	return nil
}
