package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/application/usecase"
	"github.com/tu-usuario/pharma-pos/internal/domain"
)

// MedicineHandler maneja las peticiones HTTP del catálogo (protegido).
type MedicineHandler struct {
	uc *usecase.MedicineUseCase
}

// NewMedicineHandler construye el handler.
func NewMedicineHandler(uc *usecase.MedicineUseCase) *MedicineHandler {
	return &MedicineHandler{uc: uc}
}

// Create da de alta un medicamento.
// POST /api/medicines
func (h *MedicineHandler) Create(c *fiber.Ctx) error {
	var in dto.MedicineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	med, err := h.uc.Create(c.Context(), in)
	if err != nil {
		return catalogError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(med)
}

// Update edita un medicamento (la jerarquía se recalcula siempre).
// PUT /api/medicines/:id
func (h *MedicineHandler) Update(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	var in dto.MedicineRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	med, err := h.uc.Update(c.Context(), id, in)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(med)
}

// GetByID obtiene un medicamento.
// GET /api/medicines/:id
func (h *MedicineHandler) GetByID(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "id requerido"})
	}
	med, err := h.uc.GetByID(c.Context(), id)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(med)
}

// List lista el catálogo paginado.
// GET /api/medicines
func (h *MedicineHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "paginación inválida"})
	}
	meds, err := h.uc.List(c.Context(), page)
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(meds)
}

// LowStock lista medicamentos en o bajo su umbral de alerta.
// GET /api/medicines/low-stock
func (h *MedicineHandler) LowStock(c *fiber.Ctx) error {
	meds, err := h.uc.LowStock(c.Context())
	if err != nil {
		return catalogError(c, err)
	}
	return c.JSON(meds)
}

// catalogError mapeo de errores común a catálogo, clientes y proveedores.
func catalogError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrDuplicate):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
