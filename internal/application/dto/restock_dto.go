package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RestockItemRequest línea de una orden de reabastecimiento.
// Quantity está en unidades base (ver entity.RestockItem).
type RestockItemRequest struct {
	MedicineID string          `json:"medicine_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	PriceBuy   decimal.Decimal `json:"price_buy"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
}

// CreateRestockRequest entrada para crear una orden en borrador.
type CreateRestockRequest struct {
	SupplierID string               `json:"supplier_id"`
	Date       *time.Time           `json:"date,omitempty"`
	Items      []RestockItemRequest `json:"items"`
}

// RestockItemResponse línea de orden en respuestas.
type RestockItemResponse struct {
	ID           string          `json:"id"`
	MedicineID   string          `json:"medicine_id"`
	MedicineName string          `json:"medicine_name,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	PriceBuy     decimal.Decimal `json:"price_buy"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
}

// RestockOrderResponse orden completa.
type RestockOrderResponse struct {
	ID          string                `json:"id"`
	SupplierID  string                `json:"supplier_id"`
	Status      string                `json:"status"`
	Date        time.Time             `json:"date"`
	TotalAmount decimal.Decimal       `json:"total_amount"`
	Items       []RestockItemResponse `json:"items"`
}
