package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

var _ repository.RestockRepository = (*RestockRepo)(nil)

const restockOrderColumns = `id, supplier_id, status, date, total_amount, created_at, updated_at`

// RestockRepo implementación de RestockRepository sobre PostgreSQL (usable con pool o tx).
type RestockRepo struct {
	q Querier
}

// NewRestockRepository construye el adaptador de órdenes de reabastecimiento.
func NewRestockRepository(q Querier) *RestockRepo {
	return &RestockRepo{q: q}
}

// CreateOrder inserta cabecera y líneas de la orden.
func (r *RestockRepo) CreateOrder(order *entity.RestockOrder) error {
	ctx := context.Background()
	query := `
		INSERT INTO restock_orders (` + restockOrderColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`
	_, err := r.q.Exec(ctx, query,
		order.ID, order.SupplierID, order.Status, order.Date, order.TotalAmount,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create restock order: %w", err)
	}

	itemQuery := `
		INSERT INTO restock_items (id, order_id, medicine_id, quantity, price_buy, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6)`
	for _, it := range order.Items {
		if _, err := r.q.Exec(ctx, itemQuery,
			it.ID, it.OrderID, it.MedicineID, it.Quantity, it.PriceBuy, it.ExpiryDate,
		); err != nil {
			return fmt.Errorf("create restock item: %w", err)
		}
	}
	return nil
}

func (r *RestockRepo) GetOrderByID(id string) (*entity.RestockOrder, error) {
	query := `SELECT ` + restockOrderColumns + ` FROM restock_orders WHERE id = $1`
	return r.scanOrder(query, id)
}

// GetOrderByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE) para que la
// transición de estado y sus efectos de stock sean atómicos.
func (r *RestockRepo) GetOrderByIDForUpdate(id string) (*entity.RestockOrder, error) {
	query := `SELECT ` + restockOrderColumns + ` FROM restock_orders WHERE id = $1 FOR UPDATE`
	return r.scanOrder(query, id)
}

func (r *RestockRepo) UpdateStatus(order *entity.RestockOrder) error {
	query := `UPDATE restock_orders SET status = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, order.ID, order.Status, order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update restock status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update restock status: orden %s no existe", order.ID)
	}
	return nil
}

func (r *RestockRepo) ListOrders(limit, offset int) ([]*entity.RestockOrder, error) {
	query := `SELECT ` + restockOrderColumns + ` FROM restock_orders ORDER BY date DESC LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list restock orders: %w", err)
	}
	defer rows.Close()

	var out []*entity.RestockOrder
	for rows.Next() {
		var o entity.RestockOrder
		if err := rows.Scan(&o.ID, &o.SupplierID, &o.Status, &o.Date, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan restock order: %w", err)
		}
		out = append(out, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, o := range out {
		items, err := r.itemsByOrderID(o.ID)
		if err != nil {
			return nil, err
		}
		o.Items = items
	}
	return out, nil
}

func (r *RestockRepo) scanOrder(query string, args ...any) (*entity.RestockOrder, error) {
	var o entity.RestockOrder
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&o.ID, &o.SupplierID, &o.Status, &o.Date, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get restock order: %w", err)
	}

	items, err := r.itemsByOrderID(o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (r *RestockRepo) itemsByOrderID(orderID string) ([]*entity.RestockItem, error) {
	query := `
		SELECT id, order_id, medicine_id, quantity, price_buy, expiry_date
		FROM restock_items WHERE order_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get restock items: %w", err)
	}
	defer rows.Close()

	var out []*entity.RestockItem
	for rows.Next() {
		var it entity.RestockItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.MedicineID, &it.Quantity, &it.PriceBuy, &it.ExpiryDate); err != nil {
			return nil, fmt.Errorf("scan restock item: %w", err)
		}
		out = append(out, &it)
	}
	return out, rows.Err()
}
