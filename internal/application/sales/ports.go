package sales

import (
	"context"

	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. La validación de stock y toda mutación de la
// venta ocurren dentro del mismo fn: nunca validar, soltar y mutar después.
type TxRunner interface {
	RunSale(ctx context.Context, fn func(
		medRepo repository.MedicineRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error) error
}
