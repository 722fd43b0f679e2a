package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

var _ repository.MedicineRepository = (*MedicineRepo)(nil)

const medicineColumns = `
	id, code, name, family, dosage_form, packaging, carton_type,
	quantity, price_buy, price_sell,
	units_per_blister, blisters_per_box, boxes_per_carton,
	units_per_box, units_per_carton,
	expiry_date, min_stock_alert, expiry_alert_days, is_active,
	created_at, updated_at`

// MedicineRepo implementación de MedicineRepository sobre PostgreSQL (usable con pool o tx).
type MedicineRepo struct {
	q Querier
}

// NewMedicineRepository construye el adaptador de medicamentos. Pasar pool o tx (Querier).
func NewMedicineRepository(q Querier) *MedicineRepo {
	return &MedicineRepo{q: q}
}

func (r *MedicineRepo) Create(m *entity.Medicine) error {
	query := `
		INSERT INTO medicines (` + medicineColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Code, m.Name, m.Family, m.DosageForm, m.Packaging, m.CartonType,
		m.Quantity, m.PriceBuy, m.PriceSell,
		m.UnitsPerBlister, m.BlistersPerBox, m.BoxesPerCarton,
		m.UnitsPerBox, m.UnitsPerCarton,
		m.ExpiryDate, m.MinStockAlert, m.ExpiryAlertDays, m.IsActive,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("create medicine: código duplicado %s", m.Code)
		}
		return fmt.Errorf("create medicine: %w", err)
	}
	return nil
}

func (r *MedicineRepo) Update(m *entity.Medicine) error {
	query := `
		UPDATE medicines SET
			code = $2, name = $3, family = $4, dosage_form = $5, packaging = $6,
			carton_type = $7, quantity = $8, price_buy = $9, price_sell = $10,
			units_per_blister = $11, blisters_per_box = $12, boxes_per_carton = $13,
			units_per_box = $14, units_per_carton = $15,
			expiry_date = $16, min_stock_alert = $17, expiry_alert_days = $18,
			is_active = $19, updated_at = $20
		WHERE id = $1`
	_, err := r.q.Exec(context.Background(), query,
		m.ID, m.Code, m.Name, m.Family, m.DosageForm, m.Packaging, m.CartonType,
		m.Quantity, m.PriceBuy, m.PriceSell,
		m.UnitsPerBlister, m.BlistersPerBox, m.BoxesPerCarton,
		m.UnitsPerBox, m.UnitsPerCarton,
		m.ExpiryDate, m.MinStockAlert, m.ExpiryAlertDays, m.IsActive, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update medicine: %w", err)
	}
	return nil
}

func (r *MedicineRepo) GetByID(id string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1`
	return r.scanOne(query, id)
}

// GetByIDForUpdate bloquea la fila del medicamento (SELECT FOR UPDATE).
// Solo tiene sentido dentro de una transacción.
func (r *MedicineRepo) GetByIDForUpdate(id string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE id = $1 FOR UPDATE`
	return r.scanOne(query, id)
}

func (r *MedicineRepo) GetByCode(code string) (*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines WHERE code = $1`
	return r.scanOne(query, code)
}

func (r *MedicineRepo) List(limit, offset int) ([]*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + ` FROM medicines ORDER BY name LIMIT $1 OFFSET $2`
	rows, err := r.q.Query(context.Background(), query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	defer rows.Close()
	return scanMedicines(rows)
}

func (r *MedicineRepo) ListLowStock() ([]*entity.Medicine, error) {
	query := `SELECT ` + medicineColumns + `
		FROM medicines
		WHERE is_active AND quantity <= min_stock_alert
		ORDER BY quantity ASC`
	rows, err := r.q.Query(context.Background(), query)
	if err != nil {
		return nil, fmt.Errorf("list low stock: %w", err)
	}
	defer rows.Close()
	return scanMedicines(rows)
}

// UpdateQuantity escribe el stock en unidades base. La fila debe haberse
// bloqueado antes con GetByIDForUpdate en la misma transacción.
func (r *MedicineRepo) UpdateQuantity(id string, quantity decimal.Decimal) error {
	query := `UPDATE medicines SET quantity = $2, updated_at = now() WHERE id = $1`
	tag, err := r.q.Exec(context.Background(), query, id, quantity)
	if err != nil {
		return fmt.Errorf("update quantity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update quantity: medicamento %s no existe", id)
	}
	return nil
}

func (r *MedicineRepo) scanOne(query string, args ...any) (*entity.Medicine, error) {
	var m entity.Medicine
	err := r.q.QueryRow(context.Background(), query, args...).Scan(
		&m.ID, &m.Code, &m.Name, &m.Family, &m.DosageForm, &m.Packaging, &m.CartonType,
		&m.Quantity, &m.PriceBuy, &m.PriceSell,
		&m.UnitsPerBlister, &m.BlistersPerBox, &m.BoxesPerCarton,
		&m.UnitsPerBox, &m.UnitsPerCarton,
		&m.ExpiryDate, &m.MinStockAlert, &m.ExpiryAlertDays, &m.IsActive,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get medicine: %w", err)
	}
	return &m, nil
}

func scanMedicines(rows pgx.Rows) ([]*entity.Medicine, error) {
	var out []*entity.Medicine
	for rows.Next() {
		var m entity.Medicine
		if err := rows.Scan(
			&m.ID, &m.Code, &m.Name, &m.Family, &m.DosageForm, &m.Packaging, &m.CartonType,
			&m.Quantity, &m.PriceBuy, &m.PriceSell,
			&m.UnitsPerBlister, &m.BlistersPerBox, &m.BoxesPerCarton,
			&m.UnitsPerBox, &m.UnitsPerCarton,
			&m.ExpiryDate, &m.MinStockAlert, &m.ExpiryAlertDays, &m.IsActive,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan medicine: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
