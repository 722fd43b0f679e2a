package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `
	id, code, total_amount, payment_method, date, user_id,
	COALESCE(customer_id, ''), status, cancelled_at, COALESCE(cancelled_by, ''),
	COALESCE(insurance_provider, ''), COALESCE(insurance_card_id, ''), coverage_percent,
	created_at, updated_at`

// SaleRepo implementación de SaleRepository sobre PostgreSQL (usable con pool o tx).
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador de ventas. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta la cabecera. Una violación del índice único sobre code
// (dos checkouts tomaron el mismo consecutivo) se reporta como ErrConflict,
// reintentable por el llamador.
func (r *SaleRepo) Create(sale *entity.Sale) error {
	query := `
		INSERT INTO sales (
			id, code, total_amount, payment_method, date, user_id,
			customer_id, status, cancelled_at, cancelled_by,
			insurance_provider, insurance_card_id, coverage_percent,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			NULLIF($7, ''), $8, $9, NULLIF($10, ''),
			NULLIF($11, ''), NULLIF($12, ''), $13,
			$14, $15
		)`
	_, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Code, sale.TotalAmount, sale.PaymentMethod, sale.Date, sale.UserID,
		sale.CustomerID, sale.Status, sale.CancelledAt, sale.CancelledBy,
		sale.InsuranceProvider, sale.InsuranceCardID, sale.CoveragePercent,
		sale.CreatedAt, sale.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: código de factura %s ya usado", domain.ErrConflict, sale.Code)
		}
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

func (r *SaleRepo) CreateItem(item *entity.SaleItem) error {
	query := `
		INSERT INTO sale_items (
			id, sale_id, medicine_id, quantity, unit_price, total_price,
			sale_type, discount_percent, base_units
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`
	_, err := r.q.Exec(context.Background(), query,
		item.ID, item.SaleID, item.MedicineID, item.Quantity, item.UnitPrice, item.TotalPrice,
		string(item.SaleType), item.DiscountPercent, item.BaseUnits,
	)
	if err != nil {
		return fmt.Errorf("create sale item: %w", err)
	}
	return nil
}

func (r *SaleRepo) GetByID(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByIDForUpdate bloquea la cabecera (SELECT FOR UPDATE); serializa
// cancelaciones concurrentes de la misma venta.
func (r *SaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

func (r *SaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	query := `
		SELECT id, sale_id, medicine_id, quantity, unit_price, total_price,
		       sale_type, discount_percent, base_units
		FROM sale_items WHERE sale_id = $1
		ORDER BY id`
	rows, err := r.q.Query(context.Background(), query, saleID)
	if err != nil {
		return nil, fmt.Errorf("get sale items: %w", err)
	}
	defer rows.Close()

	var out []*entity.SaleItem
	for rows.Next() {
		var it entity.SaleItem
		var saleType string
		if err := rows.Scan(
			&it.ID, &it.SaleID, &it.MedicineID, &it.Quantity, &it.UnitPrice, &it.TotalPrice,
			&saleType, &it.DiscountPercent, &it.BaseUnits,
		); err != nil {
			return nil, fmt.Errorf("scan sale item: %w", err)
		}
		it.SaleType = entity.SaleType(saleType)
		out = append(out, &it)
	}
	return out, rows.Err()
}

// MaxCodeNumber lee el consecutivo más alto emitido en el año. Debe correr en
// la misma transacción que el insert de la venta.
func (r *SaleRepo) MaxCodeNumber(year int) (int, error) {
	query := `
		SELECT COALESCE(MAX((split_part(code, '-', 3))::int), 0)
		FROM sales WHERE code LIKE $1`
	var max int
	pattern := fmt.Sprintf("INV-%d-%%", year)
	if err := r.q.QueryRow(context.Background(), query, pattern).Scan(&max); err != nil {
		return 0, fmt.Errorf("max code number: %w", err)
	}
	return max, nil
}

func (r *SaleRepo) MarkCancelled(sale *entity.Sale) error {
	query := `
		UPDATE sales SET status = $2, cancelled_at = $3, cancelled_by = NULLIF($4, ''), updated_at = $5
		WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query,
		sale.ID, sale.Status, sale.CancelledAt, sale.CancelledBy, sale.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("mark cancelled: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark cancelled: venta %s no existe", sale.ID)
	}
	return nil
}

// List filtra el historial. Retorna además el total sin paginar para la
// respuesta de página.
func (r *SaleRepo) List(filter repository.SaleFilter, limit, offset int) ([]*entity.Sale, int, error) {
	var conds []string
	var args []any

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.From != nil {
		add("date >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("date <= $%d", *filter.To)
	}
	if filter.UserID != "" {
		add("user_id = $%d", filter.UserID)
	}
	if filter.Status != "" {
		add("status = $%d", filter.Status)
	}
	if filter.MinAmount != nil {
		add("total_amount >= $%d", *filter.MinAmount)
	}
	if filter.MaxAmount != nil {
		add("total_amount <= $%d", *filter.MaxAmount)
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	countQuery := `SELECT count(*) FROM sales` + where
	if err := r.q.QueryRow(context.Background(), countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sales: %w", err)
	}

	query := `SELECT ` + saleColumns + ` FROM sales` + where +
		fmt.Sprintf(` ORDER BY date DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.q.Query(context.Background(), query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var out []*entity.Sale
	for rows.Next() {
		var s entity.Sale
		if err := rows.Scan(
			&s.ID, &s.Code, &s.TotalAmount, &s.PaymentMethod, &s.Date, &s.UserID,
			&s.CustomerID, &s.Status, &s.CancelledAt, &s.CancelledBy,
			&s.InsuranceProvider, &s.InsuranceCardID, &s.CoveragePercent,
			&s.CreatedAt, &s.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan sale: %w", err)
		}
		out = append(out, &s)
	}
	return out, total, rows.Err()
}

func (r *SaleRepo) scanOne(query string, args ...any) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&s.ID, &s.Code, &s.TotalAmount, &s.PaymentMethod, &s.Date, &s.UserID,
		&s.CustomerID, &s.Status, &s.CancelledAt, &s.CancelledBy,
		&s.InsuranceProvider, &s.InsuranceCardID, &s.CoveragePercent,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}
	return &s, nil
}
