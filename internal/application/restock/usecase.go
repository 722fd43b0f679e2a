package restock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
	"github.com/tu-usuario/pharma-pos/pkg/logger"
)

// UseCase gestiona el ciclo de vida de las órdenes de reabastecimiento:
// draft -> confirmed -> received, con cancelled alcanzable desde cualquier
// estado no-cancelado. Solo confirmar y cancelar-una-confirmada tocan stock.
type UseCase struct {
	txRunner     TxRunner
	restockRepo  repository.RestockRepository
	supplierRepo repository.SupplierRepository
	medicineRepo repository.MedicineRepository
	log          *logger.Logger
}

func NewUseCase(
	txRunner TxRunner,
	restockRepo repository.RestockRepository,
	supplierRepo repository.SupplierRepository,
	medicineRepo repository.MedicineRepository,
	log *logger.Logger,
) *UseCase {
	return &UseCase{
		txRunner:     txRunner,
		restockRepo:  restockRepo,
		supplierRepo: supplierRepo,
		medicineRepo: medicineRepo,
		log:          log,
	}
}

// CreateOrder crea una orden en borrador. Valida proveedor y medicamentos
// pero no toca stock: un borrador es editable y descartable sin efectos.
func (uc *UseCase) CreateOrder(ctx context.Context, in dto.CreateRestockRequest) (*dto.RestockOrderResponse, error) {
	if in.SupplierID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}

	supplier, err := uc.supplierRepo.GetByID(in.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, in.SupplierID)
	}

	now := time.Now()
	date := now
	if in.Date != nil {
		date = *in.Date
	}

	order := &entity.RestockOrder{
		ID:         uuid.New().String(),
		SupplierID: in.SupplierID,
		Status:     entity.RestockStatusDraft,
		Date:       date,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	total := decimal.Zero
	for _, it := range in.Items {
		if it.MedicineID == "" || it.Quantity.LessThanOrEqual(decimal.Zero) {
			return nil, fmt.Errorf("%w: línea con medicamento vacío o cantidad <= 0", domain.ErrInvalidInput)
		}
		if it.PriceBuy.IsNegative() {
			return nil, fmt.Errorf("%w: precio de compra negativo", domain.ErrInvalidInput)
		}
		med, err := uc.medicineRepo.GetByID(it.MedicineID)
		if err != nil {
			return nil, err
		}
		if med == nil {
			return nil, fmt.Errorf("%w: medicamento %s", domain.ErrNotFound, it.MedicineID)
		}

		order.Items = append(order.Items, &entity.RestockItem{
			ID:         uuid.New().String(),
			OrderID:    order.ID,
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			PriceBuy:   it.PriceBuy,
			ExpiryDate: it.ExpiryDate,
		})
		total = total.Add(it.Quantity.Mul(it.PriceBuy))
	}
	order.TotalAmount = total.Round(2)

	if err := uc.restockRepo.CreateOrder(order); err != nil {
		return nil, err
	}
	return uc.toResponse(order), nil
}

// ConfirmOrder aplica la orden al inventario en UNA transacción: solo desde
// draft, incrementa el stock de cada línea en sus unidades base, actualiza el
// precio de compra si la línea trae uno positivo y sobrescribe el vencimiento
// si la línea trae lote.
func (uc *UseCase) ConfirmOrder(ctx context.Context, orderID string) (*dto.RestockOrderResponse, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}

	var resp *dto.RestockOrderResponse
	err := uc.txRunner.RunRestock(ctx, func(
		medRepo repository.MedicineRepository,
		restockRepo repository.RestockRepository,
	) error {
		order, err := lockOrder(restockRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status != entity.RestockStatusDraft {
			return &domain.StateError{
				Entity:   "restock_order",
				ID:       order.ID,
				Current:  order.Status,
				Expected: entity.RestockStatusDraft,
			}
		}

		for _, item := range order.Items {
			med, err := medRepo.GetByIDForUpdate(item.MedicineID)
			if err != nil {
				return err
			}
			if med == nil {
				return fmt.Errorf("%w: medicamento %s", domain.ErrNotFound, item.MedicineID)
			}

			// Mutar la copia en memoria ANTES de persistir: el Update de fila
			// completa de abajo debe llevar la cantidad ya incrementada.
			med.Quantity = med.Quantity.Add(item.Quantity)
			if err := medRepo.UpdateQuantity(med.ID, med.Quantity); err != nil {
				return err
			}

			changed := false
			if item.PriceBuy.IsPositive() {
				med.PriceBuy = item.PriceBuy
				changed = true
			}
			if item.ExpiryDate != nil {
				med.ExpiryDate = item.ExpiryDate
				changed = true
			}
			if changed {
				med.UpdatedAt = time.Now()
				if err := medRepo.Update(med); err != nil {
					return err
				}
			}
		}

		order.Status = entity.RestockStatusConfirmed
		order.UpdatedAt = time.Now()
		if err := restockRepo.UpdateStatus(order); err != nil {
			return err
		}
		resp = uc.toResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// MarkReceived marca como recibida una orden confirmada. No toca stock: la
// mercancía ya entró al confirmar; received solo registra la llegada física.
func (uc *UseCase) MarkReceived(ctx context.Context, orderID string) (*dto.RestockOrderResponse, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}

	var resp *dto.RestockOrderResponse
	err := uc.txRunner.RunRestock(ctx, func(
		medRepo repository.MedicineRepository,
		restockRepo repository.RestockRepository,
	) error {
		order, err := lockOrder(restockRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status != entity.RestockStatusConfirmed {
			return &domain.StateError{
				Entity:   "restock_order",
				ID:       order.ID,
				Current:  order.Status,
				Expected: entity.RestockStatusConfirmed,
			}
		}

		order.Status = entity.RestockStatusReceived
		order.UpdatedAt = time.Now()
		if err := restockRepo.UpdateStatus(order); err != nil {
			return err
		}
		resp = uc.toResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// CancelOrder cancela cualquier orden no-cancelada. Si la orden ya había
// aplicado stock (confirmed o received) lo revierte línea a línea; si el stock
// actual no alcanza (hubo ventas intermedias) se fija en cero y se deja un
// warning de integridad con el faltante.
func (uc *UseCase) CancelOrder(ctx context.Context, orderID string) (*dto.RestockOrderResponse, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}

	var resp *dto.RestockOrderResponse
	err := uc.txRunner.RunRestock(ctx, func(
		medRepo repository.MedicineRepository,
		restockRepo repository.RestockRepository,
	) error {
		order, err := lockOrder(restockRepo, orderID)
		if err != nil {
			return err
		}
		if order.Status == entity.RestockStatusCancelled {
			return fmt.Errorf("%w: orden %s", domain.ErrAlreadyCancelled, order.ID)
		}

		applied := order.Status == entity.RestockStatusConfirmed ||
			order.Status == entity.RestockStatusReceived

		if applied {
			for _, item := range order.Items {
				med, err := medRepo.GetByIDForUpdate(item.MedicineID)
				if err != nil {
					return err
				}
				if med == nil {
					uc.log.Warn().
						Str("order_id", order.ID).
						Str("medicine_id", item.MedicineID).
						Msg("cancelación de orden: medicamento inexistente, línea sin revertir")
					continue
				}

				newQty := med.Quantity.Sub(item.Quantity)
				if newQty.IsNegative() {
					uc.log.Warn().
						Str("order_id", order.ID).
						Str("medicine_id", item.MedicineID).
						Str("faltante", newQty.Neg().String()).
						Msg("cancelación de orden: stock insuficiente para revertir, se fija en cero")
					newQty = decimal.Zero
				}
				if err := medRepo.UpdateQuantity(med.ID, newQty); err != nil {
					return err
				}
			}
		}

		order.Status = entity.RestockStatusCancelled
		order.UpdatedAt = time.Now()
		if err := restockRepo.UpdateStatus(order); err != nil {
			return err
		}
		resp = uc.toResponse(order)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// GetOrder retorna la orden completa con nombres de medicamento.
func (uc *UseCase) GetOrder(ctx context.Context, orderID string) (*dto.RestockOrderResponse, error) {
	if orderID == "" {
		return nil, domain.ErrInvalidInput
	}
	order, err := uc.restockRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}

	resp := uc.toResponse(order)
	for i := range resp.Items {
		med, err := uc.medicineRepo.GetByID(resp.Items[i].MedicineID)
		if err != nil || med == nil {
			continue
		}
		resp.Items[i].MedicineName = med.Name
	}
	return resp, nil
}

// ListOrders lista órdenes paginadas (cabeceras con líneas).
func (uc *UseCase) ListOrders(ctx context.Context, page dto.PageRequest) ([]dto.RestockOrderResponse, error) {
	page.DefaultPage()
	orders, err := uc.restockRepo.ListOrders(page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RestockOrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, *uc.toResponse(o))
	}
	return out, nil
}

// LowStock lista los medicamentos en o bajo su umbral de alerta, insumo para
// armar la próxima orden.
func (uc *UseCase) LowStock(ctx context.Context) ([]dto.MedicineResponse, error) {
	meds, err := uc.medicineRepo.ListLowStock()
	if err != nil {
		return nil, err
	}
	out := make([]dto.MedicineResponse, 0, len(meds))
	for _, m := range meds {
		out = append(out, dto.ToMedicineResponse(m))
	}
	return out, nil
}

func lockOrder(restockRepo repository.RestockRepository, orderID string) (*entity.RestockOrder, error) {
	order, err := restockRepo.GetOrderByIDForUpdate(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	return order, nil
}

func (uc *UseCase) toResponse(order *entity.RestockOrder) *dto.RestockOrderResponse {
	resp := &dto.RestockOrderResponse{
		ID:          order.ID,
		SupplierID:  order.SupplierID,
		Status:      order.Status,
		Date:        order.Date,
		TotalAmount: order.TotalAmount,
		Items:       make([]dto.RestockItemResponse, 0, len(order.Items)),
	}
	for _, it := range order.Items {
		resp.Items = append(resp.Items, dto.RestockItemResponse{
			ID:         it.ID,
			MedicineID: it.MedicineID,
			Quantity:   it.Quantity,
			PriceBuy:   it.PriceBuy,
			ExpiryDate: it.ExpiryDate,
		})
	}
	return resp
}
