package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
)

// GetSale retorna la venta completa (cabecera, líneas y cliente) para el
// recibo. Lectura simple fuera de transacción.
func (uc *UseCase) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	if saleID == "" {
		return nil, domain.ErrInvalidInput
	}
	sale, err := uc.saleRepo.GetByID(saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}

	items, err := uc.saleRepo.GetItemsBySaleID(sale.ID)
	if err != nil {
		return nil, err
	}

	var customer *entity.Customer
	if sale.CustomerID != "" {
		customer, err = uc.customerRepo.GetByID(sale.CustomerID)
		if err != nil {
			return nil, err
		}
	}

	resp := uc.toResponse(sale, items, customer, uc.earnedPoints(sale, customer))
	uc.fillMedicineNames(resp)
	return resp, nil
}

// History lista ventas con filtros de fecha, vendedor, estado y monto.
func (uc *UseCase) History(ctx context.Context, in dto.SaleHistoryRequest) (*dto.SaleHistoryResponse, error) {
	in.DefaultPage()
	filter, err := parseHistoryFilter(in)
	if err != nil {
		return nil, err
	}

	sales, total, err := uc.saleRepo.List(filter, in.Limit, in.Offset)
	if err != nil {
		return nil, err
	}

	resp := &dto.SaleHistoryResponse{
		PageResponse: dto.PageResponse{Limit: in.Limit, Offset: in.Offset, Total: total},
		Items:        make([]dto.SaleResponse, 0, len(sales)),
	}
	for _, s := range sales {
		// Historial sin líneas ni cliente: el detalle se pide por id
		resp.Items = append(resp.Items, dto.SaleResponse{
			ID:            s.ID,
			Code:          s.Code,
			TotalAmount:   s.TotalAmount,
			PaymentMethod: s.PaymentMethod,
			Date:          s.Date,
			UserID:        s.UserID,
			Status:        s.Status,
			CancelledAt:   s.CancelledAt,
			CancelledBy:   s.CancelledBy,
			Items:         []dto.SaleItemResponse{},
		})
	}
	return resp, nil
}

// earnedPoints recalcula los puntos que acreditó una venta completada con
// cliente. Una venta cancelada los conserva, pero el recibo ya no los reporta.
func (uc *UseCase) earnedPoints(sale *entity.Sale, customer *entity.Customer) int64 {
	if customer == nil || sale.Status != entity.SaleStatusCompleted {
		return 0
	}
	return sale.TotalAmount.Mul(uc.bonusRate).Floor().IntPart()
}

// fillMedicineNames completa el nombre de medicamento de cada línea.
// Un medicamento borrado del catálogo deja el nombre vacío, no falla el recibo.
func (uc *UseCase) fillMedicineNames(resp *dto.SaleResponse) {
	for i := range resp.Items {
		med, err := uc.medicineRepo.GetByID(resp.Items[i].MedicineID)
		if err != nil || med == nil {
			continue
		}
		resp.Items[i].MedicineName = med.Name
	}
}

func parseHistoryFilter(in dto.SaleHistoryRequest) (repository.SaleFilter, error) {
	var f repository.SaleFilter

	if in.StartDate != "" {
		t, err := time.Parse("2006-01-02", in.StartDate)
		if err != nil {
			return f, fmt.Errorf("%w: start_date inválida %q", domain.ErrInvalidInput, in.StartDate)
		}
		f.From = &t
	}
	if in.EndDate != "" {
		t, err := time.Parse("2006-01-02", in.EndDate)
		if err != nil {
			return f, fmt.Errorf("%w: end_date inválida %q", domain.ErrInvalidInput, in.EndDate)
		}
		// Fin de día inclusivo
		end := t.Add(24*time.Hour - time.Nanosecond)
		f.To = &end
	}
	if in.Status != "" {
		if in.Status != entity.SaleStatusCompleted && in.Status != entity.SaleStatusCancelled {
			return f, fmt.Errorf("%w: status %q", domain.ErrInvalidInput, in.Status)
		}
		f.Status = in.Status
	}
	if in.MinAmount != "" {
		d, err := decimal.NewFromString(in.MinAmount)
		if err != nil {
			return f, fmt.Errorf("%w: min_amount inválido %q", domain.ErrInvalidInput, in.MinAmount)
		}
		f.MinAmount = &d
	}
	if in.MaxAmount != "" {
		d, err := decimal.NewFromString(in.MaxAmount)
		if err != nil {
			return f, fmt.Errorf("%w: max_amount inválido %q", domain.ErrInvalidInput, in.MaxAmount)
		}
		f.MaxAmount = &d
	}
	f.UserID = in.UserID
	return f, nil
}
