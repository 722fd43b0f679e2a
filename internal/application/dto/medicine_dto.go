package dto

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
)

// MedicineRequest alta/edición de un medicamento del catálogo.
// Los campos derivados (units_per_box, units_per_carton) no se aceptan como
// entrada: siempre se recalculan desde la jerarquía.
type MedicineRequest struct {
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Family          string          `json:"family"`
	DosageForm      string          `json:"dosage_form"`
	Packaging       string          `json:"packaging"`
	CartonType      string          `json:"carton_type"`
	Quantity        decimal.Decimal `json:"quantity"` // unidades base
	PriceBuy        decimal.Decimal `json:"price_buy"`
	PriceSell       decimal.Decimal `json:"price_sell"`
	UnitsPerBlister int             `json:"units_per_blister"`
	BlistersPerBox  int             `json:"blisters_per_box"`
	BoxesPerCarton  int             `json:"boxes_per_carton"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	MinStockAlert   int             `json:"min_stock_alert"`
	ExpiryAlertDays int             `json:"expiry_alert_days"`
}

// MedicineResponse medicamento con derivados calculados.
type MedicineResponse struct {
	ID              string          `json:"id"`
	Code            string          `json:"code"`
	Name            string          `json:"name"`
	Family          string          `json:"family,omitempty"`
	DosageForm      string          `json:"dosage_form,omitempty"`
	Packaging       string          `json:"packaging,omitempty"`
	CartonType      string          `json:"carton_type,omitempty"`
	Quantity        decimal.Decimal `json:"quantity"`
	PriceBuy        decimal.Decimal `json:"price_buy"`
	PriceSell       decimal.Decimal `json:"price_sell"`
	UnitsPerBlister int             `json:"units_per_blister"`
	BlistersPerBox  int             `json:"blisters_per_box"`
	BoxesPerCarton  int             `json:"boxes_per_carton"`
	UnitsPerBox     int             `json:"units_per_box"`
	UnitsPerCarton  int             `json:"units_per_carton"`
	ExpiryDate      *time.Time      `json:"expiry_date,omitempty"`
	MinStockAlert   int             `json:"min_stock_alert"`
	ExpiryAlertDays int             `json:"expiry_alert_days"`
	IsActive        bool            `json:"is_active"`
	LowStock        bool            `json:"low_stock"`
}

// ToMedicineResponse mapea la entidad a su representación de API.
func ToMedicineResponse(m *entity.Medicine) MedicineResponse {
	return MedicineResponse{
		ID:              m.ID,
		Code:            m.Code,
		Name:            m.Name,
		Family:          m.Family,
		DosageForm:      m.DosageForm,
		Packaging:       m.Packaging,
		CartonType:      m.CartonType,
		Quantity:        m.Quantity,
		PriceBuy:        m.PriceBuy,
		PriceSell:       m.PriceSell,
		UnitsPerBlister: m.UnitsPerBlister,
		BlistersPerBox:  m.BlistersPerBox,
		BoxesPerCarton:  m.BoxesPerCarton,
		UnitsPerBox:     m.UnitsPerBox,
		UnitsPerCarton:  m.UnitsPerCarton,
		ExpiryDate:      m.ExpiryDate,
		MinStockAlert:   m.MinStockAlert,
		ExpiryAlertDays: m.ExpiryAlertDays,
		IsActive:        m.IsActive,
		LowStock:        m.IsLowStock(),
	}
}
