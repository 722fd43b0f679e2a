package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrInvalidState      = errors.New("estado inválido para la operación")
	ErrAlreadyCancelled  = errors.New("ya está cancelado")
	ErrCustomer          = errors.New("error de cliente")
)

// StockError detalla un faltante de stock: qué medicamento, cuántas unidades base
// se requieren y cuántas hay disponibles (con su equivalente en cajas).
// Unwrap retorna ErrInsufficientStock para que errors.Is siga funcionando.
type StockError struct {
	MedicineID     string
	MedicineName   string
	Required       decimal.Decimal // unidades base requeridas
	Available      decimal.Decimal // unidades base disponibles
	AvailableBoxes decimal.Decimal // equivalente en cajas
}

func (e *StockError) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: requiere %s unidades, disponible %s unidades (%s cajas)",
		e.MedicineName, e.Required.StringFixed(0), e.Available.StringFixed(0), e.AvailableBoxes.StringFixed(1))
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }

// StateError detalla una transición de estado ilegal (ej. confirmar una orden no-draft).
// Unwrap retorna ErrInvalidState.
type StateError struct {
	Entity   string // "sale" | "restock_order"
	ID       string
	Current  string
	Expected string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s %s en estado %q, se esperaba %q", e.Entity, e.ID, e.Current, e.Expected)
}

func (e *StateError) Unwrap() error { return ErrInvalidState }
