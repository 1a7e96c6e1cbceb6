package handler

import (
	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/middleware"
	"walldecor-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type TradingHandler struct {
	service service.TradingService
}

func NewTradingHandler(s service.TradingService) *TradingHandler {
	return &TradingHandler{service: s}
}

func (h *TradingHandler) GetTransactions(c *fiber.Ctx) error {
	txs, err := h.service.ListTransactions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(txs)
}

// CreateTransaction records a purchase or sale. With items the amount is derived from them.
func (h *TradingHandler) CreateTransaction(c *fiber.Ctx) error {
	var in composer.TransactionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}

	tx, err := h.service.RecordTransaction(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Transaction recorded", tx)
}

func (h *TradingHandler) DeleteTransaction(c *fiber.Ctx) error {
	if err := h.service.RemoveTransaction(c.UserContext(), c.Params("id"), middleware.ActorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Transaction deleted"})
}

func (h *TradingHandler) GetProductions(c *fiber.Ctx) error {
	productions, err := h.service.ListProductions(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(productions)
}

func (h *TradingHandler) CreateProduction(c *fiber.Ctx) error {
	var in composer.ProductionInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}

	p, err := h.service.RecordProduction(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Production recorded", p)
}

func (h *TradingHandler) DeleteProduction(c *fiber.Ctx) error {
	if err := h.service.RemoveProduction(c.UserContext(), c.Params("id"), middleware.ActorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Production deleted"})
}
