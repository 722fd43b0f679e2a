package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una orden de reabastecimiento.
// draft -> confirmed -> received; cancelled es terminal y alcanzable desde
// cualquier estado no-cancelado. received tiene el mismo efecto de stock que
// confirmed (es solo un estado de presentación).
const (
	RestockStatusDraft     = "draft"
	RestockStatusConfirmed = "confirmed"
	RestockStatusReceived  = "received"
	RestockStatusCancelled = "cancelled"
)

// RestockOrder representa una orden de compra a proveedor.
// El stock solo se afecta al confirmar (incremento) o al cancelar una orden
// ya confirmada (decremento simétrico).
type RestockOrder struct {
	ID          string
	SupplierID  string
	Status      string
	Date        time.Time
	TotalAmount decimal.Decimal // Σ quantity × price_buy
	Items       []*RestockItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RestockItem representa una línea de orden de reabastecimiento.
//
// Quantity se aplica tal cual sobre Medicine.Quantity al confirmar/cancelar:
// está denominada en UNIDADES BASE ya convertidas, no en cajas ni cartones.
// PriceBuy es el precio de compra por caja pactado con el proveedor.
type RestockItem struct {
	ID         string
	OrderID    string
	MedicineID string
	Quantity   decimal.Decimal // unidades base
	PriceBuy   decimal.Decimal
	ExpiryDate *time.Time // vencimiento del lote; al confirmar sobrescribe el del medicamento
}
