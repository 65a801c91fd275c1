package wallet

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/congo-pay/walletrace/internal/driver"
	"github.com/congo-pay/walletrace/internal/logging"
)

// Handler exposes wallet HTTP endpoints.
type Handler struct {
	bank   *Bank
	logger *slog.Logger
}

// NewHandler builds a wallet HTTP handler.
func NewHandler(bank *Bank, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{bank: bank, logger: logger}
}

type amountRequest struct {
	Amount int64 `json:"amount"`
}

// List returns the snapshot of every variant.
func (h *Handler) List(c *fiber.Ctx) error {
	snaps, err := h.bank.Snapshots(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"wallets": snaps})
}

// Get returns the snapshot of one variant.
func (h *Handler) Get(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := s.Snapshot(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// Deposit adds to a wallet. With ?init=true a wallet without balance is
// fetched first.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	s, amount, err := h.amountCall(c)
	if err != nil {
		return h.fail(c, err)
	}
	op := s.Deposit
	if c.QueryBool("init") {
		op = s.DepositOrInit
	}
	snap, err := op(c.UserContext(), amount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// Withdraw subtracts from a wallet.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	s, amount, err := h.amountCall(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := s.Withdraw(c.UserContext(), amount)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// Refresh fetches the wallet balance from upstream.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	snap, err := s.Refresh(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(snap)
}

// Payments runs a burst of concurrent calls against a wallet.
func (h *Handler) Payments(c *fiber.Ctx) error {
	s, err := h.session(c)
	if err != nil {
		return h.fail(c, err)
	}
	var plan driver.Plan
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&plan); err != nil {
			return fiber.NewError(http.StatusBadRequest, err.Error())
		}
	}
	res, err := s.Burst(c.UserContext(), plan)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(res)
}

// Reset resets every variant that supports it.
func (h *Handler) Reset(c *fiber.Ctx) error {
	snaps, err := h.bank.ResetAll(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"wallets": snaps})
}

func (h *Handler) session(c *fiber.Ctx) (*Session, error) {
	v, err := ParseVariant(c.Params("variant"))
	if err != nil {
		return nil, err
	}
	return h.bank.Session(v)
}

func (h *Handler) amountCall(c *fiber.Ctx) (*Session, int64, error) {
	s, err := h.session(c)
	if err != nil {
		return nil, 0, err
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, 0, fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.Amount <= 0 {
		return nil, 0, ErrInvalidAmount
	}
	return s, req.Amount, nil
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		ctx := c.UserContext()
		h.logger.ErrorContext(ctx, "wallet request failed", append(logging.Attrs(ctx), slog.String("path", c.Path()), slog.Any("error", err))...)
	}
	return fiber.NewError(status, err.Error())
}

func statusFor(err error) int {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Code
	case errors.Is(err, ErrUnknownVariant):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, driver.ErrInvalidPlan):
		return http.StatusBadRequest
	case errors.Is(err, ErrNoWallet):
		return http.StatusConflict
	case errors.Is(err, ErrResetUnsupported):
		return http.StatusMethodNotAllowed
	case errors.Is(err, ErrFetchFailed):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
