package restock

import (
	"context"

	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD con los
// repositorios atados a esa tx. Toda transición de estado con efecto de stock
// (confirmar, cancelar una confirmada) corre completa dentro de fn.
type TxRunner interface {
	RunRestock(ctx context.Context, fn func(
		medRepo repository.MedicineRepository,
		restockRepo repository.RestockRepository,
	) error) error
}
