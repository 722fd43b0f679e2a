package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest línea solicitada en el checkout.
// Quantity está en unidades del SaleType elegido (cajas, plaquettes, etc.).
type SaleItemRequest struct {
	MedicineID      string          `json:"medicine_id"`
	Quantity        int64           `json:"quantity"`
	SaleType        string          `json:"sale_type"` // carton | packaging | blister | unit
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// CreateSaleRequest entrada del checkout POS.
// Cliente: por CustomerID, o por CustomerPhone (+nombres para auto-registro), o ninguno.
type CreateSaleRequest struct {
	Items             []SaleItemRequest `json:"items"`
	PaymentMethod     string            `json:"payment_method"`
	CustomerID        string            `json:"customer_id"`
	CustomerPhone     string            `json:"customer_phone"`
	CustomerFirstName string            `json:"customer_first_name"`
	CustomerLastName  string            `json:"customer_last_name"`
	DiscountPercent   decimal.Decimal   `json:"discount_percent"` // descuento de cabecera sobre el subtotal
	InsuranceProvider string            `json:"insurance_provider,omitempty"`
	InsuranceCardID   string            `json:"insurance_card_id,omitempty"`
	CoveragePercent   decimal.Decimal   `json:"coverage_percent,omitempty"`
}

// SaleItemResponse línea de venta en respuestas.
type SaleItemResponse struct {
	ID              string          `json:"id"`
	MedicineID      string          `json:"medicine_id"`
	MedicineName    string          `json:"medicine_name,omitempty"`
	Quantity        int64           `json:"quantity"`
	SaleType        string          `json:"sale_type"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
	TotalPrice      decimal.Decimal `json:"total_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	BaseUnits       decimal.Decimal `json:"base_units"`
}

// SaleCustomerResponse datos del cliente en el recibo.
type SaleCustomerResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	TotalPoints int64  `json:"total_points"`
}

// SaleResponse venta completa (recibo).
type SaleResponse struct {
	ID            string                `json:"id"`
	Code          string                `json:"code"`
	TotalAmount   decimal.Decimal       `json:"total_amount"`
	PaymentMethod string                `json:"payment_method"`
	Date          time.Time             `json:"date"`
	UserID        string                `json:"user_id"`
	Status        string                `json:"status"`
	CancelledAt   *time.Time            `json:"cancelled_at,omitempty"`
	CancelledBy   string                `json:"cancelled_by,omitempty"`
	BonusEarned   int64                 `json:"bonus_earned"`
	Customer      *SaleCustomerResponse `json:"customer,omitempty"`
	Items         []SaleItemResponse    `json:"items"`
}

// SaleHistoryRequest filtros del historial de ventas.
type SaleHistoryRequest struct {
	PageRequest
	StartDate string `query:"start_date"` // YYYY-MM-DD
	EndDate   string `query:"end_date"`   // YYYY-MM-DD
	UserID    string `query:"user_id"`
	Status    string `query:"status"` // completed | cancelled
	MinAmount string `query:"min_amount"`
	MaxAmount string `query:"max_amount"`
}

// SaleHistoryResponse página del historial.
type SaleHistoryResponse struct {
	PageResponse
	Items []SaleResponse `json:"items"`
}
