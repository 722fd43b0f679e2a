package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
)

type memMedicineRepo struct {
	meds map[string]*entity.Medicine
}

func newMemMedicineRepo() *memMedicineRepo {
	return &memMedicineRepo{meds: make(map[string]*entity.Medicine)}
}

func (r *memMedicineRepo) Create(m *entity.Medicine) error { r.meds[m.ID] = m; return nil }
func (r *memMedicineRepo) Update(m *entity.Medicine) error { r.meds[m.ID] = m; return nil }

func (r *memMedicineRepo) GetByID(id string) (*entity.Medicine, error) {
	m, ok := r.meds[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *memMedicineRepo) GetByIDForUpdate(id string) (*entity.Medicine, error) {
	return r.GetByID(id)
}

func (r *memMedicineRepo) GetByCode(code string) (*entity.Medicine, error) {
	for _, m := range r.meds {
		if m.Code == code {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memMedicineRepo) List(limit, offset int) ([]*entity.Medicine, error) {
	out := make([]*entity.Medicine, 0, len(r.meds))
	for _, m := range r.meds {
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memMedicineRepo) ListLowStock() ([]*entity.Medicine, error) {
	var out []*entity.Medicine
	for _, m := range r.meds {
		if m.IsLowStock() {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMedicineRepo) UpdateQuantity(id string, quantity decimal.Decimal) error {
	r.meds[id].Quantity = quantity
	return nil
}

func TestMedicineCreate_RecomputesDerived(t *testing.T) {
	uc := NewMedicineUseCase(newMemMedicineRepo())

	resp, err := uc.Create(context.Background(), dto.MedicineRequest{
		Code:            "PARA-500",
		Name:            "Paracetamol 500mg",
		Quantity:        decimal.NewFromInt(300),
		PriceSell:       decimal.NewFromInt(200),
		UnitsPerBlister: 6,
		BlistersPerBox:  10,
		BoxesPerCarton:  8,
	})
	require.NoError(t, err)

	assert.Equal(t, 60, resp.UnitsPerBox)
	assert.Equal(t, 480, resp.UnitsPerCarton)
	assert.True(t, resp.IsActive)
}

func TestMedicineCreate_HierarchyClampedToOne(t *testing.T) {
	uc := NewMedicineUseCase(newMemMedicineRepo())

	// Jerarquía sin informar: todo cae a 1 (caja = unidad)
	resp, err := uc.Create(context.Background(), dto.MedicineRequest{
		Code: "SIROP-1",
		Name: "Sirop antitussif",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.UnitsPerBlister)
	assert.Equal(t, 1, resp.BlistersPerBox)
	assert.Equal(t, 1, resp.BoxesPerCarton)
	assert.Equal(t, 1, resp.UnitsPerBox)
	assert.Equal(t, 1, resp.UnitsPerCarton)
}

func TestMedicineCreate_DuplicateCode(t *testing.T) {
	uc := NewMedicineUseCase(newMemMedicineRepo())

	_, err := uc.Create(context.Background(), dto.MedicineRequest{Code: "PARA-500", Name: "A"})
	require.NoError(t, err)

	_, err = uc.Create(context.Background(), dto.MedicineRequest{Code: "PARA-500", Name: "B"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestMedicineUpdate_HierarchyChangeRecomputes(t *testing.T) {
	uc := NewMedicineUseCase(newMemMedicineRepo())

	created, err := uc.Create(context.Background(), dto.MedicineRequest{
		Code:            "PARA-500",
		Name:            "Paracetamol 500mg",
		UnitsPerBlister: 6,
		BlistersPerBox:  10,
		BoxesPerCarton:  8,
	})
	require.NoError(t, err)

	updated, err := uc.Update(context.Background(), created.ID, dto.MedicineRequest{
		Name:            "Paracetamol 500mg",
		UnitsPerBlister: 4,
		BlistersPerBox:  6,
		BoxesPerCarton:  10,
	})
	require.NoError(t, err)

	assert.Equal(t, 24, updated.UnitsPerBox)
	assert.Equal(t, 240, updated.UnitsPerCarton)
}

func TestMedicineGetByID_NotFound(t *testing.T) {
	uc := NewMedicineUseCase(newMemMedicineRepo())
	_, err := uc.GetByID(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
