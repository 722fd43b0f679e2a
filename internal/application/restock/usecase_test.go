package restock

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tu-usuario/pharma-pos/internal/application/dto"
	"github.com/tu-usuario/pharma-pos/internal/domain"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
	"github.com/tu-usuario/pharma-pos/pkg/logger"
)

// ──────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────

type fakeMedicineRepo struct {
	meds map[string]*entity.Medicine
}

func (r *fakeMedicineRepo) Create(m *entity.Medicine) error { r.meds[m.ID] = m; return nil }
func (r *fakeMedicineRepo) Update(m *entity.Medicine) error { r.meds[m.ID] = m; return nil }

func (r *fakeMedicineRepo) GetByID(id string) (*entity.Medicine, error) {
	m, ok := r.meds[id]
	if !ok {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMedicineRepo) GetByIDForUpdate(id string) (*entity.Medicine, error) {
	return r.GetByID(id)
}

func (r *fakeMedicineRepo) GetByCode(code string) (*entity.Medicine, error) { return nil, nil }

func (r *fakeMedicineRepo) List(limit, offset int) ([]*entity.Medicine, error) { return nil, nil }

func (r *fakeMedicineRepo) ListLowStock() ([]*entity.Medicine, error) {
	var out []*entity.Medicine
	for _, m := range r.meds {
		if m.IsLowStock() {
			cp := *m
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMedicineRepo) UpdateQuantity(id string, quantity decimal.Decimal) error {
	m, ok := r.meds[id]
	if !ok {
		return fmt.Errorf("medicamento %s no existe", id)
	}
	m.Quantity = quantity
	return nil
}

func (r *fakeMedicineRepo) stock(id string) decimal.Decimal { return r.meds[id].Quantity }

type fakeRestockRepo struct {
	orders map[string]*entity.RestockOrder
}

func (r *fakeRestockRepo) CreateOrder(order *entity.RestockOrder) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeRestockRepo) GetOrderByID(id string) (*entity.RestockOrder, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (r *fakeRestockRepo) GetOrderByIDForUpdate(id string) (*entity.RestockOrder, error) {
	return r.GetOrderByID(id)
}

func (r *fakeRestockRepo) UpdateStatus(order *entity.RestockOrder) error {
	stored, ok := r.orders[order.ID]
	if !ok {
		return fmt.Errorf("orden %s no existe", order.ID)
	}
	stored.Status = order.Status
	stored.UpdatedAt = order.UpdatedAt
	return nil
}

func (r *fakeRestockRepo) ListOrders(limit, offset int) ([]*entity.RestockOrder, error) {
	var out []*entity.RestockOrder
	for _, o := range r.orders {
		cp := *o
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

type fakeSupplierRepo struct {
	suppliers map[string]*entity.Supplier
}

func (r *fakeSupplierRepo) Create(s *entity.Supplier) error { r.suppliers[s.ID] = s; return nil }

func (r *fakeSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSupplierRepo) List(limit, offset int) ([]*entity.Supplier, error) { return nil, nil }

type fakeTxRunner struct {
	medRepo     *fakeMedicineRepo
	restockRepo *fakeRestockRepo
}

func (f *fakeTxRunner) RunRestock(ctx context.Context, fn func(
	medRepo repository.MedicineRepository,
	restockRepo repository.RestockRepository,
) error) error {
	return fn(f.medRepo, f.restockRepo)
}

func newTestUseCase(meds ...*entity.Medicine) (*UseCase, *fakeMedicineRepo) {
	medRepo := &fakeMedicineRepo{meds: make(map[string]*entity.Medicine)}
	for _, m := range meds {
		medRepo.meds[m.ID] = m
	}
	restockRepo := &fakeRestockRepo{orders: make(map[string]*entity.RestockOrder)}
	supplierRepo := &fakeSupplierRepo{suppliers: map[string]*entity.Supplier{
		"sup-1": {ID: "sup-1", Name: "Laborex"},
	}}
	tx := &fakeTxRunner{medRepo: medRepo, restockRepo: restockRepo}
	log := logger.New(logger.Config{Env: "production", Level: "error"})
	return NewUseCase(tx, restockRepo, supplierRepo, medRepo, log), medRepo
}

func testMedicine(id string, baseUnits int64) *entity.Medicine {
	m := &entity.Medicine{
		ID:              id,
		Code:            "MED-" + id,
		Name:            "Medicamento " + id,
		Quantity:        decimal.NewFromInt(baseUnits),
		PriceBuy:        decimal.NewFromInt(120),
		PriceSell:       decimal.NewFromInt(200),
		UnitsPerBlister: 6,
		BlistersPerBox:  10,
		BoxesPerCarton:  8,
		MinStockAlert:   50,
		IsActive:        true,
	}
	m.NormalizeHierarchy()
	return m
}

func draftOrder(t *testing.T, uc *UseCase, items ...dto.RestockItemRequest) *dto.RestockOrderResponse {
	t.Helper()
	order, err := uc.CreateOrder(context.Background(), dto.CreateRestockRequest{
		SupplierID: "sup-1",
		Items:      items,
	})
	require.NoError(t, err)
	return order
}

// ──────────────────────────────────────────────
// Creación
// ──────────────────────────────────────────────

func TestCreateOrder_Draft(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1",
		Quantity:   decimal.NewFromInt(600),
		PriceBuy:   decimal.NewFromFloat(1.5),
	})

	assert.Equal(t, entity.RestockStatusDraft, order.Status)
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(900)),
		"total esperado 900, fue %s", order.TotalAmount)

	// Un borrador no toca stock
	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(100)))
}

func TestCreateOrder_Validation(t *testing.T) {
	uc, _ := newTestUseCase(testMedicine("m1", 100))
	ctx := context.Background()

	_, err := uc.CreateOrder(ctx, dto.CreateRestockRequest{SupplierID: "sup-1"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "sin líneas")

	_, err = uc.CreateOrder(ctx, dto.CreateRestockRequest{
		SupplierID: "fantasma",
		Items:      []dto.RestockItemRequest{{MedicineID: "m1", Quantity: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "proveedor inexistente")

	_, err = uc.CreateOrder(ctx, dto.CreateRestockRequest{
		SupplierID: "sup-1",
		Items:      []dto.RestockItemRequest{{MedicineID: "m1", Quantity: decimal.NewFromInt(-5)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "cantidad negativa")

	_, err = uc.CreateOrder(ctx, dto.CreateRestockRequest{
		SupplierID: "sup-1",
		Items:      []dto.RestockItemRequest{{MedicineID: "fantasma", Quantity: decimal.NewFromInt(10)}},
	})
	assert.ErrorIs(t, err, domain.ErrNotFound, "medicamento inexistente")
}

// ──────────────────────────────────────────────
// Confirmación
// ──────────────────────────────────────────────

func TestConfirmOrder_AppliesStockPriceAndExpiry(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))
	expiry := time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC)

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1",
		Quantity:   decimal.NewFromInt(600),
		PriceBuy:   decimal.NewFromInt(130),
		ExpiryDate: &expiry,
	})

	confirmed, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RestockStatusConfirmed, confirmed.Status)

	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(700)))
	med := medRepo.meds["m1"]
	assert.True(t, med.PriceBuy.Equal(decimal.NewFromInt(130)))
	require.NotNil(t, med.ExpiryDate)
	assert.True(t, med.ExpiryDate.Equal(expiry))
}

func TestConfirmOrder_ZeroPriceKeepsCurrent(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1",
		Quantity:   decimal.NewFromInt(60),
		// PriceBuy cero: conserva el precio actual
	})

	_, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.True(t, medRepo.meds["m1"].PriceBuy.Equal(decimal.NewFromInt(120)))
	assert.Nil(t, medRepo.meds["m1"].ExpiryDate)
}

func TestConfirmOrder_PriceUpdateKeepsIncrement(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100), testMedicine("m2", 50))
	expiry := time.Date(2028, 1, 15, 0, 0, 0, 0, time.UTC)

	// Toda línea con precio o lote termina en una escritura de fila completa;
	// esa escritura debe llevar la cantidad ya incrementada, no la previa.
	order := draftOrder(t, uc,
		dto.RestockItemRequest{
			MedicineID: "m1", Quantity: decimal.NewFromInt(600),
			PriceBuy: decimal.NewFromInt(130),
		},
		dto.RestockItemRequest{
			MedicineID: "m2", Quantity: decimal.NewFromInt(240),
			PriceBuy: decimal.NewFromInt(90), ExpiryDate: &expiry,
		},
	)

	_, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(700)),
		"stock m1 esperado 700, fue %s", medRepo.stock("m1"))
	assert.True(t, medRepo.stock("m2").Equal(decimal.NewFromInt(290)),
		"stock m2 esperado 290, fue %s", medRepo.stock("m2"))
	assert.True(t, medRepo.meds["m1"].PriceBuy.Equal(decimal.NewFromInt(130)))
	assert.True(t, medRepo.meds["m2"].PriceBuy.Equal(decimal.NewFromInt(90)))
}

func TestConfirmOrder_OnlyFromDraft(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(60), PriceBuy: decimal.NewFromInt(100),
	})
	_, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	// Segunda confirmación: transición ilegal y sin doble aplicación
	_, err = uc.ConfirmOrder(context.Background(), order.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	var stateErr *domain.StateError
	require.ErrorAs(t, err, &stateErr)
	assert.Equal(t, entity.RestockStatusConfirmed, stateErr.Current)
	assert.Equal(t, entity.RestockStatusDraft, stateErr.Expected)

	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(160)))
}

// ──────────────────────────────────────────────
// Recepción
// ──────────────────────────────────────────────

func TestMarkReceived(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(60),
	})

	// draft -> received es ilegal
	_, err := uc.MarkReceived(context.Background(), order.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	_, err = uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	received, err := uc.MarkReceived(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RestockStatusReceived, received.Status)

	// received no vuelve a tocar stock
	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(160)))
}

// ──────────────────────────────────────────────
// Cancelación
// ──────────────────────────────────────────────

func TestCancelOrder_DraftHasNoStockEffect(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(600),
	})

	cancelled, err := uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.RestockStatusCancelled, cancelled.Status)
	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(100)))
}

func TestCancelOrder_ConfirmedRevertsExactly(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(600),
	})
	_, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(700)))

	_, err = uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)

	// confirmar + cancelar deja el stock exactamente como estaba
	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(100)))
}

func TestCancelOrder_ReceivedAlsoReverts(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(60),
	})
	_, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)
	_, err = uc.MarkReceived(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(100)))
}

func TestCancelOrder_ClampsAtZero(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 0))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(600),
	})
	_, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)

	// Ventas intermedias consumen parte de lo recibido
	require.NoError(t, medRepo.UpdateQuantity("m1", decimal.NewFromInt(200)))

	_, err = uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)

	// 200 - 600 se fija en cero, no queda negativo
	assert.True(t, medRepo.stock("m1").Equal(decimal.Zero),
		"stock esperado 0, fue %s", medRepo.stock("m1"))
}

func TestCancelOrder_TwiceFails(t *testing.T) {
	uc, medRepo := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(600),
	})
	_, err := uc.ConfirmOrder(context.Background(), order.ID)
	require.NoError(t, err)
	_, err = uc.CancelOrder(context.Background(), order.ID)
	require.NoError(t, err)

	_, err = uc.CancelOrder(context.Background(), order.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	// Sin doble reversión
	assert.True(t, medRepo.stock("m1").Equal(decimal.NewFromInt(100)))
}

// ──────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────

func TestGetOrder_FillsMedicineNames(t *testing.T) {
	uc, _ := newTestUseCase(testMedicine("m1", 100))

	order := draftOrder(t, uc, dto.RestockItemRequest{
		MedicineID: "m1", Quantity: decimal.NewFromInt(60),
	})

	got, err := uc.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "Medicamento m1", got.Items[0].MedicineName)
}

func TestGetOrder_NotFound(t *testing.T) {
	uc, _ := newTestUseCase()
	_, err := uc.GetOrder(context.Background(), "fantasma")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLowStock(t *testing.T) {
	low := testMedicine("m1", 10) // umbral 50
	ok := testMedicine("m2", 500)
	uc, _ := newTestUseCase(low, ok)

	meds, err := uc.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, meds, 1)
	assert.Equal(t, "m1", meds[0].ID)
	assert.True(t, meds[0].LowStock)
}
