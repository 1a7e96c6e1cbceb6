package handler

import (
	"walldecor-admin/internal/composer"
	"walldecor-admin/internal/middleware"
	"walldecor-admin/internal/model"
	"walldecor-admin/internal/service"

	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	service service.InventoryService
}

func NewInventoryHandler(s service.InventoryService) *InventoryHandler {
	return &InventoryHandler{service: s}
}

func (h *InventoryHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(products)
}

func (h *InventoryHandler) CreateProduct(c *fiber.Ctx) error {
	var in composer.ProductInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}

	product, err := h.service.CreateProduct(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Product created", product)
}

func (h *InventoryHandler) UpdateProduct(c *fiber.Ctx) error {
	var patch model.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		return invalidJSON(c)
	}

	updated, err := h.service.UpdateProduct(c.UserContext(), c.Params("id"), patch, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product updated", "data": updated})
}

// DeleteProduct also removes every movement of the product
func (h *InventoryHandler) DeleteProduct(c *fiber.Ctx) error {
	if err := h.service.RemoveProduct(c.UserContext(), c.Params("id"), middleware.ActorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GetStock returns ledger rows
// Query params: kind (FINISHED, RAW_MATERIAL, OTHER; empty for all)
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	rows, err := h.service.Stock(c.UserContext(), model.ProductKind(c.Query("kind")))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(rows)
}

func (h *InventoryHandler) GetMovements(c *fiber.Ctx) error {
	movements, err := h.service.ListMovements(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(movements)
}

func (h *InventoryHandler) CreateMovement(c *fiber.Ctx) error {
	var in composer.MovementInput
	if err := c.BodyParser(&in); err != nil {
		return invalidJSON(c)
	}

	movement, err := h.service.RecordMovement(c.UserContext(), in, middleware.ActorFrom(c))
	if err != nil {
		return respondError(c, err)
	}
	return created(c, "Stock movement recorded", movement)
}

func (h *InventoryHandler) DeleteMovement(c *fiber.Ctx) error {
	if err := h.service.RemoveMovement(c.UserContext(), c.Params("id"), middleware.ActorFrom(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Stock movement deleted"})
}
