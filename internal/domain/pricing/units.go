// Package pricing implementa el resolver de jerarquía de unidades: conversión
// de cantidades entre carton / caja / plaquette / unidad base y derivación del
// precio por nivel a partir del precio de venta por caja (servicio de dominio,
// sin efectos secundarios).
package pricing

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
)

var oneHundred = decimal.NewFromInt(100)

// atLeastOne protege la aritmética contra jerarquías sin inicializar (0 o negativas).
func atLeastOne(n int) int64 {
	if n < 1 {
		return 1
	}
	return int64(n)
}

// unitsPerBox unidades base por caja, siempre >= 1.
func unitsPerBox(m *entity.Medicine) int64 {
	return atLeastOne(m.BlistersPerBox) * atLeastOne(m.UnitsPerBlister)
}

// BaseUnits convierte una cantidad en unidades del saleType a unidades base.
//   - packaging: qty × units_per_box
//   - blister:   qty × units_per_blister
//   - unit:      qty
//   - carton:    qty × boxes_per_carton × units_per_box
//
// Un saleType desconocido se trata como packaging (default de compatibilidad).
func BaseUnits(m *entity.Medicine, saleType entity.SaleType, qty int64) decimal.Decimal {
	q := decimal.NewFromInt(qty)
	switch saleType {
	case entity.SaleTypePackaging:
		return q.Mul(decimal.NewFromInt(unitsPerBox(m)))
	case entity.SaleTypeBlister:
		return q.Mul(decimal.NewFromInt(atLeastOne(m.UnitsPerBlister)))
	case entity.SaleTypeUnit:
		return q
	case entity.SaleTypeCarton:
		return q.Mul(decimal.NewFromInt(atLeastOne(m.BoxesPerCarton))).
			Mul(decimal.NewFromInt(unitsPerBox(m)))
	default:
		return q.Mul(decimal.NewFromInt(unitsPerBox(m)))
	}
}

// UnitPrice deriva el precio por unidad del saleType desde PriceSell (precio por caja).
//   - packaging: price_sell
//   - blister:   (price_sell / units_per_box) × units_per_blister
//   - unit:      price_sell / units_per_box
//   - carton:    price_sell × boxes_per_carton
//
// El descuento NO se aplica aquí: ver ApplyDiscount.
func UnitPrice(m *entity.Medicine, saleType entity.SaleType) decimal.Decimal {
	boxPrice := m.PriceSell
	switch saleType {
	case entity.SaleTypePackaging:
		return boxPrice
	case entity.SaleTypeBlister:
		perUnit := boxPrice.Div(decimal.NewFromInt(unitsPerBox(m)))
		return perUnit.Mul(decimal.NewFromInt(atLeastOne(m.UnitsPerBlister)))
	case entity.SaleTypeUnit:
		return boxPrice.Div(decimal.NewFromInt(unitsPerBox(m)))
	case entity.SaleTypeCarton:
		return boxPrice.Mul(decimal.NewFromInt(atLeastOne(m.BoxesPerCarton)))
	default:
		return boxPrice
	}
}

// BoxEquivalent expresa una cantidad de unidades base en cajas (para mensajes
// de error de stock: "disponible N unidades (X cajas)").
func BoxEquivalent(m *entity.Medicine, baseUnits decimal.Decimal) decimal.Decimal {
	return baseUnits.Div(decimal.NewFromInt(unitsPerBox(m)))
}

// ApplyDiscount aplica un descuento porcentual (0..100) sobre un precio ya
// resuelto: price × (1 − percent/100). Se aplica estrictamente después de
// resolver el precio por saleType, nunca antes.
func ApplyDiscount(price, percent decimal.Decimal) decimal.Decimal {
	if percent.IsZero() {
		return price
	}
	factor := decimal.NewFromInt(1).Sub(percent.Div(oneHundred))
	return price.Mul(factor)
}

// ValidDiscount indica si un porcentaje de descuento está en [0,100].
func ValidDiscount(percent decimal.Decimal) bool {
	return !percent.IsNegative() && percent.LessThanOrEqual(oneHundred)
}
