package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medicine representa un medicamento del catálogo (SKU).
//
// Quantity es el stock disponible en UNIDADES BASE (comprimidos) y es la única
// fuente de verdad de disponibilidad. PriceBuy y PriceSell están denominados
// por caja (packaging). UnitsPerBox y UnitsPerCarton son derivados y se
// recomputan con NormalizeHierarchy cada vez que cambia la jerarquía; nunca se
// editan de forma independiente.
type Medicine struct {
	ID         string
	Code       string // código único de producto
	Name       string
	Family     string // ej. Antibiotiques, Antidouleurs
	DosageForm string // ej. Comprimé, Sirop
	Packaging  string // ej. Boîte
	CartonType string // nombre del contenedor de nivel superior

	Quantity  decimal.Decimal // stock en unidades base
	PriceBuy  decimal.Decimal // precio de compra por caja
	PriceSell decimal.Decimal // precio de venta por caja

	// Jerarquía: carton -> box -> blister -> unidad base. Todos >= 1.
	UnitsPerBlister int
	BlistersPerBox  int
	BoxesPerCarton  int

	// Derivados (recomputados, nunca editados a mano).
	UnitsPerBox    int
	UnitsPerCarton int

	ExpiryDate      *time.Time
	MinStockAlert   int
	ExpiryAlertDays int // alerta X días antes del vencimiento
	IsActive        bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizeHierarchy fuerza los campos de jerarquía a >= 1 y recalcula los derivados.
// Debe invocarse antes de persistir cualquier cambio de jerarquía.
func (m *Medicine) NormalizeHierarchy() {
	if m.UnitsPerBlister < 1 {
		m.UnitsPerBlister = 1
	}
	if m.BlistersPerBox < 1 {
		m.BlistersPerBox = 1
	}
	if m.BoxesPerCarton < 1 {
		m.BoxesPerCarton = 1
	}
	m.UnitsPerBox = m.BlistersPerBox * m.UnitsPerBlister
	m.UnitsPerCarton = m.BoxesPerCarton * m.UnitsPerBox
}

// IsLowStock indica si el stock está en o por debajo del umbral de alerta.
func (m *Medicine) IsLowStock() bool {
	return m.Quantity.LessThanOrEqual(decimal.NewFromInt(int64(m.MinStockAlert)))
}
