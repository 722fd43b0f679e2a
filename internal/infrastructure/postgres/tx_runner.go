package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/pharma-pos/internal/application/restock"
	"github.com/tu-usuario/pharma-pos/internal/application/sales"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

// Ensure TxRunner implements sales.TxRunner and restock.TxRunner.
var _ sales.TxRunner = (*TxRunner)(nil)
var _ restock.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunSale inicia una transacción y ejecuta fn con los repos del checkout
// atados a la tx. Commit solo si fn retorna nil; cualquier error hace Rollback.
func (r *TxRunner) RunSale(ctx context.Context, fn func(
	medRepo repository.MedicineRepository,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	medRepo := NewMedicineRepository(tx)
	saleRepo := NewSaleRepository(tx)
	customerRepo := NewCustomerRepository(tx)

	if err := fn(medRepo, saleRepo, customerRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RunRestock inicia una transacción con los repos de reabastecimiento.
func (r *TxRunner) RunRestock(ctx context.Context, fn func(
	medRepo repository.MedicineRepository,
	restockRepo repository.RestockRepository,
) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	medRepo := NewMedicineRepository(tx)
	restockRepo := NewRestockRepository(tx)

	if err := fn(medRepo, restockRepo); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
