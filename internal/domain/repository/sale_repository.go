package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
)

// SaleFilter filtros del historial de ventas.
type SaleFilter struct {
	From      *time.Time
	To        *time.Time
	UserID    string
	Status    string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// SaleRepository persistencia de ventas y sus líneas.
// MaxCodeNumber lee el consecutivo más alto del año; debe invocarse dentro de
// la misma transacción que el insert para que el código sea único bajo
// checkouts concurrentes (una violación de unicidad en code es reintentable).
type SaleRepository interface {
	Create(sale *entity.Sale) error
	CreateItem(item *entity.SaleItem) error
	GetByID(id string) (*entity.Sale, error)
	GetByIDForUpdate(id string) (*entity.Sale, error)
	GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error)
	MaxCodeNumber(year int) (int, error)
	// MarkCancelled persiste la transición completed -> cancelled.
	MarkCancelled(sale *entity.Sale) error
	List(filter SaleFilter, limit, offset int) ([]*entity.Sale, int, error)
}
