package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

// MedicineUseCase gestiona el catálogo de medicamentos.
// La jerarquía de unidades siempre pasa por NormalizeHierarchy antes de
// persistirse: los derivados nunca llegan de la API.
type MedicineUseCase struct {
	repo repository.MedicineRepository
}

func NewMedicineUseCase(repo repository.MedicineRepository) *MedicineUseCase {
	return &MedicineUseCase{repo: repo}
}

func (uc *MedicineUseCase) Create(ctx context.Context, in dto.MedicineRequest) (*dto.MedicineResponse, error) {
	if in.Code == "" || in.Name == "" {
		return nil, fmt.Errorf("%w: code y name son obligatorios", domain.ErrInvalidInput)
	}
	if in.Quantity.IsNegative() || in.PriceBuy.IsNegative() || in.PriceSell.IsNegative() {
		return nil, fmt.Errorf("%w: cantidad y precios no pueden ser negativos", domain.ErrInvalidInput)
	}

	existing, err := uc.repo.GetByCode(in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: código %s", domain.ErrDuplicate, in.Code)
	}

	now := time.Now()
	m := &entity.Medicine{
		ID:              uuid.New().String(),
		Code:            in.Code,
		Name:            in.Name,
		Family:          in.Family,
		DosageForm:      in.DosageForm,
		Packaging:       in.Packaging,
		CartonType:      in.CartonType,
		Quantity:        in.Quantity,
		PriceBuy:        in.PriceBuy,
		PriceSell:       in.PriceSell,
		UnitsPerBlister: in.UnitsPerBlister,
		BlistersPerBox:  in.BlistersPerBox,
		BoxesPerCarton:  in.BoxesPerCarton,
		ExpiryDate:      in.ExpiryDate,
		MinStockAlert:   in.MinStockAlert,
		ExpiryAlertDays: in.ExpiryAlertDays,
		IsActive:        true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	m.NormalizeHierarchy()

	if err := uc.repo.Create(m); err != nil {
		return nil, err
	}
	resp := dto.ToMedicineResponse(m)
	return &resp, nil
}

func (uc *MedicineUseCase) Update(ctx context.Context, id string, in dto.MedicineRequest) (*dto.MedicineResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	m, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: medicamento %s", domain.ErrNotFound, id)
	}

	if in.Code != "" && in.Code != m.Code {
		existing, err := uc.repo.GetByCode(in.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, fmt.Errorf("%w: código %s", domain.ErrDuplicate, in.Code)
		}
		m.Code = in.Code
	}
	if in.Name != "" {
		m.Name = in.Name
	}
	m.Family = in.Family
	m.DosageForm = in.DosageForm
	m.Packaging = in.Packaging
	m.CartonType = in.CartonType
	if !in.PriceBuy.IsNegative() {
		m.PriceBuy = in.PriceBuy
	}
	if !in.PriceSell.IsNegative() {
		m.PriceSell = in.PriceSell
	}
	m.UnitsPerBlister = in.UnitsPerBlister
	m.BlistersPerBox = in.BlistersPerBox
	m.BoxesPerCarton = in.BoxesPerCarton
	m.ExpiryDate = in.ExpiryDate
	m.MinStockAlert = in.MinStockAlert
	m.ExpiryAlertDays = in.ExpiryAlertDays
	m.UpdatedAt = time.Now()
	m.NormalizeHierarchy()

	if err := uc.repo.Update(m); err != nil {
		return nil, err
	}
	resp := dto.ToMedicineResponse(m)
	return &resp, nil
}

func (uc *MedicineUseCase) GetByID(ctx context.Context, id string) (*dto.MedicineResponse, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	m, err := uc.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: medicamento %s", domain.ErrNotFound, id)
	}
	resp := dto.ToMedicineResponse(m)
	return &resp, nil
}

func (uc *MedicineUseCase) List(ctx context.Context, page dto.PageRequest) ([]dto.MedicineResponse, error) {
	page.DefaultPage()
	meds, err := uc.repo.List(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MedicineResponse, 0, len(meds))
	for _, m := range meds {
		out = append(out, dto.ToMedicineResponse(m))
	}
	return out, nil
}

// LowStock lista los medicamentos en o bajo su umbral de alerta.
func (uc *MedicineUseCase) LowStock(ctx context.Context) ([]dto.MedicineResponse, error) {
	meds, err := uc.repo.ListLowStock()
	if err != nil {
		return nil, err
	}
	out := make([]dto.MedicineResponse, 0, len(meds))
	for _, m := range meds {
		out = append(out, dto.ToMedicineResponse(m))
	}
	return out, nil
}
