package handler

import (
	"strconv"

	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/middleware"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type FinanceHandler struct {
	service service.FinanceService
}

func NewFinanceHandler(s service.FinanceService) *FinanceHandler {
	return &FinanceHandler{service: s}
}

type SettingsRequest struct {
	CashOpeningBalance *decimal.Decimal `json:"cashOpeningBalance"`
}

// GetAppData returns the whole snapshot
func (h *FinanceHandler) GetAppData(c *fiber.Ctx) error {
	data, err := h.service.Snapshot(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

func (h *FinanceHandler) GetMeta(c *fiber.Ctx) error {
	return c.JSON(h.service.Meta())
}

func (h *FinanceHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summary)
}

// GetMonthly returns trailing-month series
// Query params: months (default from config), kind (filters stockNet)
func (h *FinanceHandler) GetMonthly(c *fiber.Ctx) error {
	months := 0
	if raw := c.Query("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, composer.Invalid("months", "months must be a number"))
		}
		if n < 1 {
			return respondError(c, composer.Invalid("months", "months must be at least 1"))
		}
		months = n
	}

	data, err := h.service.Monthly(c.UserContext(), months, model.ProductKind(c.Query("kind")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(data)
}

func (h *FinanceHandler) GetDashboard(c *fiber.Ctx) error {
	d, err := h.service.Dashboard(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(d)
}

func (h *FinanceHandler) GetSettings(c *fiber.Ctx) error {
	s, err := h.service.Settings(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(s)
}

func (h *FinanceHandler) UpdateSettings(c *fiber.Ctx) error {
	var req SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidJSON(c)
	}
	if req.CashOpeningBalance == nil {
		return respondError(c, composer.Invalid("cashOpeningBalance", "cashOpeningBalance is required"))
	}

	s, err := h.service.SetCashOpeningBalance(c.UserContext(), *req.CashOpeningBalance, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Settings updated", "data": s})
}
