package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

// CancelSale revierte una venta completada en UNA transacción: acredita a cada
// medicamento exactamente las unidades base congeladas en la línea al momento
// de la venta (nunca re-derivadas de la jerarquía actual) y marca la venta
// como cancelada. La cancelación es de una sola vía: un segundo intento
// retorna ErrAlreadyCancelled y no toca el stock.
//
// Los puntos ya acreditados NO se revierten (política de producto explícita).
func (uc *UseCase) CancelSale(ctx context.Context, saleID, userID string) (*dto.SaleResponse, error) {
	if saleID == "" || userID == "" {
		return nil, domain.ErrInvalidInput
	}

	now := time.Now()
	var resp *dto.SaleResponse

	err := uc.txRunner.RunSale(ctx, func(
		medRepo repository.MedicineRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error {
		// Bloquear la cabecera: dos cancelaciones concurrentes se serializan aquí
		sale, err := saleRepo.GetByIDForUpdate(saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		if sale.Status == entity.SaleStatusCancelled {
			return fmt.Errorf("%w: venta %s", domain.ErrAlreadyCancelled, saleID)
		}

		items, err := saleRepo.GetItemsBySaleID(sale.ID)
		if err != nil {
			return err
		}

		// Acreditar las unidades base congeladas de cada línea
		for _, item := range items {
			med, err := medRepo.GetByIDForUpdate(item.MedicineID)
			if err != nil {
				return err
			}
			if med == nil {
				// El medicamento ya no existe en el catálogo: no hay fila que acreditar
				uc.log.Warn().
					Str("sale_id", sale.ID).
					Str("medicine_id", item.MedicineID).
					Msg("cancelación de venta: medicamento inexistente, línea sin acreditar")
				continue
			}
			if err := medRepo.UpdateQuantity(med.ID, med.Quantity.Add(item.BaseUnits)); err != nil {
				return err
			}
		}

		sale.Status = entity.SaleStatusCancelled
		sale.CancelledAt = &now
		sale.CancelledBy = userID
		sale.UpdatedAt = now
		if err := saleRepo.MarkCancelled(sale); err != nil {
			return err
		}

		var customer *entity.Customer
		if sale.CustomerID != "" {
			customer, _ = customerRepo.GetByID(sale.CustomerID)
		}
		resp = uc.toResponse(sale, items, customer, 0)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
