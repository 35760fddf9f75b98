package handler

import (
	"fmt"

	"go-inventory-po/internal/model"
	"go-inventory-po/internal/service"

	"github.com/gofiber/fiber/v2"
)

type PurchaseOrderHandler struct {
	service service.PurchaseOrderService
}

func NewPurchaseOrderHandler(s service.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{service: s}
}

func (h *PurchaseOrderHandler) GetPurchaseOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListPurchaseOrders(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}

	resp := make([]model.PurchaseOrderResponse, len(orders))
	for i := range orders {
		resp[i] = orders[i].ToResponse()
	}
	return c.JSON(resp)
}

// GetPurchaseOrder returns the header, items and computed totals.
// GET /api/v1/purchase-orders/:id
func (h *PurchaseOrderHandler) GetPurchaseOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}

	po, err := h.service.GetPurchaseOrder(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(po.ToResponse())
}

func (h *PurchaseOrderHandler) CreatePurchaseOrder(c *fiber.Ctx) error {
	var req model.CreatePurchaseOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	po, err := h.service.CreatePurchaseOrder(c.UserContext(), &req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(201).JSON(fiber.Map{
		"message": fmt.Sprintf("PO #%s saved as draft.", po.ID),
		"data":    po.ToResponse(),
	})
}

// ConfirmPurchaseOrder increases stock from the order's line items.
// POST /api/v1/purchase-orders/:id/confirm
func (h *PurchaseOrderHandler) ConfirmPurchaseOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}

	result, err := h.service.ConfirmPurchaseOrder(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("PO #%s confirmed. Stock updated", result.OrderID),
		"data":    result,
	})
}

func (h *PurchaseOrderHandler) DeletePurchaseOrder(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid purchase order ID"})
	}

	if err := h.service.DeletePurchaseOrder(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("PO #%s deleted", id)})
}
