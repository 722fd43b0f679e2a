package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleType es la granularidad a la que se vendió una línea.
// Tipo cerrado: toda aritmética hace switch sobre estos valores y un valor
// desconocido cae explícitamente al comportamiento de packaging.
type SaleType string

const (
	SaleTypeCarton    SaleType = "carton"    // carton de cajas
	SaleTypePackaging SaleType = "packaging" // caja (referencia de precio)
	SaleTypeBlister   SaleType = "blister"   // plaquette
	SaleTypeUnit      SaleType = "unit"      // comprimido / unidad base
)

// Estados de una venta. La cancelación es terminal y de una sola vía.
const (
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
)

// Métodos de pago aceptados en el POS.
const (
	PaymentCash          = "cash"
	PaymentCard          = "card"
	PaymentMobileMoney   = "mobile_money"
	PaymentCredit        = "credit"
	PaymentInsuranceCard = "insurance_card"
)

// ValidPaymentMethod indica si el método de pago es uno de los aceptados.
func ValidPaymentMethod(s string) bool {
	switch s {
	case PaymentCash, PaymentCard, PaymentMobileMoney, PaymentCredit, PaymentInsuranceCard:
		return true
	}
	return false
}

// Sale representa la cabecera de una venta (transacción POS).
// Code es único y creciente por año calendario (INV-YYYY-NNNN).
type Sale struct {
	ID            string
	Code          string
	TotalAmount   decimal.Decimal // total tras descuentos de línea y de cabecera
	PaymentMethod string
	Date          time.Time
	UserID        string // vendedor (actor autenticado)
	CustomerID    string // vacío si venta sin cliente

	Status      string // completed | cancelled
	CancelledAt *time.Time
	CancelledBy string

	// Datos de aseguradora (sin efecto en el ledger).
	InsuranceProvider string
	InsuranceCardID   string
	CoveragePercent   decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SaleItem representa una línea de venta.
//
// Quantity está en unidades del SaleType elegido (no en unidades base).
// UnitPrice es el precio por unidad de SaleType, congelado al momento de la
// venta con el descuento de línea ya aplicado. BaseUnits es la cantidad de
// unidades base descontada del stock al crear la venta; la cancelación
// acredita exactamente ese valor aunque la jerarquía del medicamento haya
// cambiado después.
type SaleItem struct {
	ID              string
	SaleID          string
	MedicineID      string
	Quantity        int64
	UnitPrice       decimal.Decimal
	TotalPrice      decimal.Decimal
	SaleType        SaleType
	DiscountPercent decimal.Decimal // 0..100, solo esta línea
	BaseUnits       decimal.Decimal // congelado: lo descontado del stock
}
