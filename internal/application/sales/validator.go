package sales

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/pricing"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

// validatedLine es una línea resuelta y verificada: medicamento bloqueado,
// unidades base requeridas y precio congelado con el descuento de línea aplicado.
type validatedLine struct {
	medicine  *entity.Medicine
	req       dto.SaleItemRequest
	baseUnits decimal.Decimal
	unitPrice decimal.Decimal
	lineTotal decimal.Decimal
}

// validatedBatch resultado de la validación: líneas en orden de entrada más el
// total de unidades base requerido por medicamento (varias líneas pueden
// apuntar al mismo medicamento con distinta granularidad).
type validatedBatch struct {
	lines    []validatedLine
	byMed    map[string]*entity.Medicine
	required map[string]decimal.Decimal // id -> Σ unidades base del lote
	medOrder []string
}

// validateStock valida disponibilidad para TODAS las líneas sin mutar nada.
// Bloquea cada fila de medicamento una sola vez (SELECT FOR UPDATE) para que
// la verificación siga siendo válida hasta el commit; el faltante se evalúa
// contra el ACUMULADO del lote, no línea a línea. El primer faltante o
// medicamento desconocido aborta el lote completo: nunca hay resultado parcial.
func validateStock(medRepo repository.MedicineRepository, items []dto.SaleItemRequest) (*validatedBatch, error) {
	batch := &validatedBatch{
		byMed:    make(map[string]*entity.Medicine),
		required: make(map[string]decimal.Decimal),
	}
	for _, it := range items {
		if it.MedicineID == "" || it.Quantity < 1 {
			return nil, fmt.Errorf("%w: línea con medicamento vacío o cantidad < 1", domain.ErrInvalidInput)
		}
		if !pricing.ValidDiscount(it.DiscountPercent) {
			return nil, fmt.Errorf("%w: descuento de línea fuera de [0,100]", domain.ErrInvalidInput)
		}

		med, ok := batch.byMed[it.MedicineID]
		if !ok {
			var err error
			med, err = medRepo.GetByIDForUpdate(it.MedicineID)
			if err != nil {
				return nil, err
			}
			if med == nil {
				return nil, fmt.Errorf("%w: medicamento %s", domain.ErrNotFound, it.MedicineID)
			}
			batch.byMed[med.ID] = med
			batch.required[med.ID] = decimal.Zero
			batch.medOrder = append(batch.medOrder, med.ID)
		}

		saleType := entity.SaleType(it.SaleType)
		lineUnits := pricing.BaseUnits(med, saleType, it.Quantity)
		cumulative := batch.required[med.ID].Add(lineUnits)
		if med.Quantity.LessThan(cumulative) {
			return nil, &domain.StockError{
				MedicineID:     med.ID,
				MedicineName:   med.Name,
				Required:       cumulative,
				Available:      med.Quantity,
				AvailableBoxes: pricing.BoxEquivalent(med, med.Quantity),
			}
		}
		batch.required[med.ID] = cumulative

		unitPrice := pricing.ApplyDiscount(pricing.UnitPrice(med, saleType), it.DiscountPercent).Round(2)
		batch.lines = append(batch.lines, validatedLine{
			medicine:  med,
			req:       it,
			baseUnits: lineUnits,
			unitPrice: unitPrice,
			lineTotal: unitPrice.Mul(decimal.NewFromInt(it.Quantity)),
		})
	}
	return batch, nil
}
