package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletrace/internal/wallet"
)

// RegisterWalletRoutes wires wallet-related endpoints.
func RegisterWalletRoutes(r fiber.Router, h *wallet.Handler, paymentsLimit fiber.Handler) {
	r.Get("/wallets", h.List)
	r.Post("/wallets/reset", h.Reset)
	r.Get("/wallets/:variant", h.Get)
	r.Post("/wallets/:variant/deposit", h.Deposit)
	r.Post("/wallets/:variant/withdraw", h.Withdraw)
	r.Post("/wallets/:variant/refresh", h.Refresh)
	r.Post("/wallets/:variant/payments", paymentsLimit, h.Payments)
}
