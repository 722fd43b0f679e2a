package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/application/restock"
	"github.com/tu-usuario/pharma-pos/internal/domain"
)

// RestockHandler maneja las peticiones HTTP de reabastecimiento (protegido).
type RestockHandler struct {
	uc *restock.UseCase
}

// NewRestockHandler construye el handler.
func NewRestockHandler(uc *restock.UseCase) *RestockHandler {
	return &RestockHandler{uc: uc}
}

// Create crea una orden en borrador (sin efecto en stock).
// POST /api/restock
func (h *RestockHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateRestockRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	order, err := h.uc.CreateOrder(c.Context(), in)
	if err != nil {
		return h.restockError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(order)
}

// Confirm aplica la orden al inventario (draft -> confirmed).
// POST /api/restock/:id/confirm
func (h *RestockHandler) Confirm(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	order, err := h.uc.ConfirmOrder(c.Context(), id)
	if err != nil {
		return h.restockError(c, err)
	}
	return c.JSON(order)
}

// Receive marca la orden como recibida (confirmed -> received).
// POST /api/restock/:id/receive
func (h *RestockHandler) Receive(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	order, err := h.uc.MarkReceived(c.Context(), id)
	if err != nil {
		return h.restockError(c, err)
	}
	return c.JSON(order)
}

// Cancel cancela la orden; si ya estaba aplicada, revierte el stock.
// POST /api/restock/:id/cancel
func (h *RestockHandler) Cancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	order, err := h.uc.CancelOrder(c.Context(), id)
	if err != nil {
		return h.restockError(c, err)
	}
	return c.JSON(order)
}

// GetByID obtiene la orden completa.
// GET /api/restock/:id
func (h *RestockHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	order, err := h.uc.GetOrder(c.Context(), id)
	if err != nil {
		return h.restockError(c, err)
	}
	return c.JSON(order)
}

// List lista órdenes paginadas.
// GET /api/restock
func (h *RestockHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	orders, err := h.uc.ListOrders(c.Context(), page)
	if err != nil {
		return h.restockError(c, err)
	}
	return c.JSON(orders)
}

// LowStock lista los medicamentos bajo umbral, insumo para la próxima orden.
// GET /api/restock/low-stock
func (h *RestockHandler) LowStock(c *fiber.Ctx) error {
	meds, err := h.uc.LowStock(c.Context())
	if err != nil {
		return h.restockError(c, err)
	}
	return c.JSON(meds)
}

func (h *RestockHandler) restockError(c *fiber.Ctx, err error) error {
	var stateErr *domain.StateError
	switch {
	case errors.As(err, &stateErr):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: stateErr.Error()})
	case errors.Is(err, domain.ErrAlreadyCancelled):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "ALREADY_CANCELLED", Message: "la orden ya está cancelada"})
	case errors.Is(err, domain.ErrInvalidState):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INVALID_STATE", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
