package repository

import (
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
)

// MedicineRepository acceso al catálogo y al stock de medicamentos.
// GetByIDForUpdate bloquea la fila (SELECT FOR UPDATE) y solo tiene sentido
// dentro de una transacción; es la base de la serialización por fila del ledger.
type MedicineRepository interface {
	Create(m *entity.Medicine) error
	Update(m *entity.Medicine) error
	GetByID(id string) (*entity.Medicine, error)
	GetByIDForUpdate(id string) (*entity.Medicine, error)
	GetByCode(code string) (*entity.Medicine, error)
	List(limit, offset int) ([]*entity.Medicine, error)
	ListLowStock() ([]*entity.Medicine, error)
	// UpdateQuantity escribe el stock en unidades base (fila previamente bloqueada).
	UpdateQuantity(id string, quantity decimal.Decimal) error
}
