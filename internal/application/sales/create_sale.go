package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/pricing"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
	"github.com/tu-usuario/pharma-pos/pkg/logger"
)

// DefaultBonusRate tasa de puntos por defecto: 5% del total facturado.
const DefaultBonusRate = 0.05

// UseCase orquesta el ledger de ventas: checkout atómico, cancelación,
// numeración de facturas y acreditación de puntos.
type UseCase struct {
	txRunner     TxRunner
	saleRepo     repository.SaleRepository     // lecturas fuera de tx
	medicineRepo repository.MedicineRepository // lecturas fuera de tx
	customerRepo repository.CustomerRepository // lecturas fuera de tx
	bonusRate    decimal.Decimal
	log          *logger.Logger
}

// NewUseCase construye el caso de uso. bonusRate en fracción (0.05 = 5%);
// valores fuera de (0,1] caen al default.
func NewUseCase(
	txRunner TxRunner,
	saleRepo repository.SaleRepository,
	medicineRepo repository.MedicineRepository,
	customerRepo repository.CustomerRepository,
	bonusRate float64,
	log *logger.Logger,
) *UseCase {
	if bonusRate <= 0 || bonusRate > 1 {
		bonusRate = DefaultBonusRate
	}
	return &UseCase{
		txRunner:     txRunner,
		saleRepo:     saleRepo,
		medicineRepo: medicineRepo,
		customerRepo: customerRepo,
		bonusRate:    decimal.NewFromFloat(bonusRate),
		log:          log,
	}
}

// CreateSale ejecuta el checkout completo en UNA transacción:
//  1. validar stock de todas las líneas (bloquea filas, sin mutar)
//  2. resolver o auto-registrar el cliente
//  3. precios por línea (descuento de línea) -> subtotal -> descuento de cabecera
//  4. consecutivo de factura del año
//  5. persistir cabecera y líneas con precio y unidades base congelados
//  6. descontar stock usando las unidades base del paso 1 (no recalculadas)
//  7. acreditar puntos si hay cliente
//
// Cualquier error revierte todo: una venta parcial nunca es observable.
func (uc *UseCase) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if userID == "" || len(in.Items) == 0 {
		return nil, domain.ErrInvalidInput
	}
	if !pricing.ValidDiscount(in.DiscountPercent) {
		return nil, fmt.Errorf("%w: descuento de cabecera fuera de [0,100]", domain.ErrInvalidInput)
	}
	payment := in.PaymentMethod
	if payment == "" {
		payment = entity.PaymentCash
	}
	if !entity.ValidPaymentMethod(payment) {
		return nil, fmt.Errorf("%w: método de pago %q", domain.ErrInvalidInput, in.PaymentMethod)
	}

	now := time.Now()
	var resp *dto.SaleResponse

	err := uc.txRunner.RunSale(ctx, func(
		medRepo repository.MedicineRepository,
		saleRepo repository.SaleRepository,
		customerRepo repository.CustomerRepository,
	) error {
		// 1) Validar stock de TODAS las líneas antes de tocar nada
		batch, err := validateStock(medRepo, in.Items)
		if err != nil {
			return err
		}

		// 2) Resolver cliente (por id, o por teléfono con auto-registro)
		customer, err := resolveCustomer(customerRepo, in, now)
		if err != nil {
			return err
		}

		// 3) Totales: subtotal de líneas, luego descuento de cabecera
		subtotal := decimal.Zero
		for _, l := range batch.lines {
			subtotal = subtotal.Add(l.lineTotal)
		}
		total := pricing.ApplyDiscount(subtotal, in.DiscountPercent).Round(2)

		// 4) Consecutivo del año, dentro de la misma tx que el insert
		code, err := nextInvoiceCode(saleRepo, now.Year())
		if err != nil {
			return err
		}

		// 5) Cabecera y líneas con valores congelados
		sale := &entity.Sale{
			ID:                uuid.New().String(),
			Code:              code,
			TotalAmount:       total,
			PaymentMethod:     payment,
			Date:              now,
			UserID:            userID,
			Status:            entity.SaleStatusCompleted,
			InsuranceProvider: in.InsuranceProvider,
			InsuranceCardID:   in.InsuranceCardID,
			CoveragePercent:   in.CoveragePercent,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if customer != nil {
			sale.CustomerID = customer.ID
		}
		if err := saleRepo.Create(sale); err != nil {
			return err
		}

		items := make([]*entity.SaleItem, 0, len(batch.lines))
		for _, l := range batch.lines {
			item := &entity.SaleItem{
				ID:              uuid.New().String(),
				SaleID:          sale.ID,
				MedicineID:      l.medicine.ID,
				Quantity:        l.req.Quantity,
				UnitPrice:       l.unitPrice,
				TotalPrice:      l.lineTotal,
				SaleType:        entity.SaleType(l.req.SaleType),
				DiscountPercent: l.req.DiscountPercent,
				BaseUnits:       l.baseUnits,
			}
			if err := saleRepo.CreateItem(item); err != nil {
				return err
			}
			items = append(items, item)
		}

		// 6) Descontar stock con las unidades base calculadas en la validación.
		// Un solo UPDATE por medicamento con el acumulado del lote.
		for _, medID := range batch.medOrder {
			med := batch.byMed[medID]
			newQty := med.Quantity.Sub(batch.required[medID])
			if err := medRepo.UpdateQuantity(medID, newQty); err != nil {
				return err
			}
			med.Quantity = newQty
		}

		// 7) Puntos: floor(total × tasa), solo con cliente
		var points int64
		if customer != nil {
			points = total.Mul(uc.bonusRate).Floor().IntPart()
			if points > 0 {
				if err := customerRepo.AddPoints(customer.ID, points); err != nil {
					return err
				}
				customer.TotalPoints += points
			}
		}

		resp = uc.toResponse(sale, items, customer, points)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// resolveCustomer aplica la política de cliente del POS:
// CustomerID existente > teléfono existente > auto-registro por teléfono+nombres.
// Venta sin cliente es válida (sin puntos). Un id que no resuelve o un
// auto-registro sin nombres fallan como ErrCustomer.
func resolveCustomer(customerRepo repository.CustomerRepository, in dto.CreateSaleRequest, now time.Time) (*entity.Customer, error) {
	switch {
	case in.CustomerID != "":
		customer, err := customerRepo.GetByID(in.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, fmt.Errorf("%w: cliente %s no existe", domain.ErrCustomer, in.CustomerID)
		}
		return customer, nil

	case in.CustomerPhone != "":
		customer, err := customerRepo.GetByPhone(in.CustomerPhone)
		if err != nil {
			return nil, err
		}
		if customer != nil {
			return customer, nil
		}
		if in.CustomerFirstName == "" || in.CustomerLastName == "" {
			return nil, fmt.Errorf("%w: teléfono no registrado y faltan nombres para auto-registro", domain.ErrCustomer)
		}
		customer = &entity.Customer{
			ID:        uuid.New().String(),
			FirstName: in.CustomerFirstName,
			LastName:  in.CustomerLastName,
			Phone:     in.CustomerPhone,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := customerRepo.Create(customer); err != nil {
			return nil, err
		}
		return customer, nil

	default:
		return nil, nil // venta sin cliente
	}
}

func (uc *UseCase) toResponse(sale *entity.Sale, items []*entity.SaleItem, customer *entity.Customer, points int64) *dto.SaleResponse {
	resp := &dto.SaleResponse{
		ID:            sale.ID,
		Code:          sale.Code,
		TotalAmount:   sale.TotalAmount,
		PaymentMethod: sale.PaymentMethod,
		Date:          sale.Date,
		UserID:        sale.UserID,
		Status:        sale.Status,
		CancelledAt:   sale.CancelledAt,
		CancelledBy:   sale.CancelledBy,
		BonusEarned:   points,
		Items:         make([]dto.SaleItemResponse, 0, len(items)),
	}
	if customer != nil {
		resp.Customer = &dto.SaleCustomerResponse{
			ID:          customer.ID,
			Name:        customer.FullName(),
			Phone:       customer.Phone,
			TotalPoints: customer.TotalPoints,
		}
	}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.SaleItemResponse{
			ID:              it.ID,
			MedicineID:      it.MedicineID,
			Quantity:        it.Quantity,
			SaleType:        string(it.SaleType),
			UnitPrice:       it.UnitPrice,
			TotalPrice:      it.TotalPrice,
			DiscountPercent: it.DiscountPercent,
			BaseUnits:       it.BaseUnits,
		})
	}
	return resp
}
