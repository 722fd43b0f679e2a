package sales

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/tu-usuario/pharma-pos/internal/domain/entity"
	"github.com/tu-usuario/pharma-pos/internal/domain/repository"
	"github.com/tu-usuario/pharma-pos/pkg/logger"
)

// Fakes en memoria para los casos de uso de ventas. Devuelven copias en las
// lecturas para imitar el escaneo de filas del adaptador real.

type fakeMedicineRepo struct {
	meds map[string]*entity.Medicine
}

func newFakeMedicineRepo(meds ...*entity.Medicine) *fakeMedicineRepo {
	r := &fakeMedicineRepo{meds: make(map[string]*entity.Medicine)}
	for _, m := range meds {
		r.meds[m.ID] = m
	}
	return r
}

func (r *fakeMedicineRepo) Create(m *entity.Medicine) error {
	r.meds[m.ID] = m
	return nil
}

func (r *fakeMedicineRepo) Update(m *entity.Medicine) error {
	r.meds[m.ID] = m
	return nil
}

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

func (r *fakeMedicineRepo) GetByCode(code string) (*entity.Medicine, error) {
	for _, m := range r.meds {
		if m.Code == code {
			cp := *m
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeMedicineRepo) List(limit, offset int) ([]*entity.Medicine, error) {
	out := make([]*entity.Medicine, 0, len(r.meds))
	for _, m := range r.meds {
		cp := *m
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeMedicineRepo) ListLowStock() ([]*entity.Medicine, error) {
	var out []*entity.Medicine
	for _, m := range r.meds {
		if m.IsLowStock() {
			cp := *m
			out = append(out, &cp)
		}
	}
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

func (r *fakeMedicineRepo) stock(id string) decimal.Decimal {
	return r.meds[id].Quantity
}

type fakeSaleRepo struct {
	sales     map[string]*entity.Sale
	items     map[string][]*entity.SaleItem
	maxByYear map[int]int
}

func newFakeSaleRepo() *fakeSaleRepo {
	return &fakeSaleRepo{
		sales:     make(map[string]*entity.Sale),
		items:     make(map[string][]*entity.SaleItem),
		maxByYear: make(map[int]int),
	}
}

func (r *fakeSaleRepo) Create(sale *entity.Sale) error {
	cp := *sale
	r.sales[sale.ID] = &cp

	var year, n int
	if _, err := fmt.Sscanf(sale.Code, "INV-%d-%d", &year, &n); err == nil {
		if n > r.maxByYear[year] {
			r.maxByYear[year] = n
		}
	}
	return nil
}

func (r *fakeSaleRepo) CreateItem(item *entity.SaleItem) error {
	cp := *item
	r.items[item.SaleID] = append(r.items[item.SaleID], &cp)
	return nil
}

func (r *fakeSaleRepo) GetByID(id string) (*entity.Sale, error) {
	s, ok := r.sales[id]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSaleRepo) GetByIDForUpdate(id string) (*entity.Sale, error) {
	return r.GetByID(id)
}

func (r *fakeSaleRepo) GetItemsBySaleID(saleID string) ([]*entity.SaleItem, error) {
	out := make([]*entity.SaleItem, 0, len(r.items[saleID]))
	for _, it := range r.items[saleID] {
		cp := *it
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeSaleRepo) MaxCodeNumber(year int) (int, error) {
	return r.maxByYear[year], nil
}

func (r *fakeSaleRepo) MarkCancelled(sale *entity.Sale) error {
	cp := *sale
	r.sales[sale.ID] = &cp
	return nil
}

func (r *fakeSaleRepo) List(filter repository.SaleFilter, limit, offset int) ([]*entity.Sale, int, error) {
	var all []*entity.Sale
	for _, s := range r.sales {
		if filter.Status != "" && s.Status != filter.Status {
			continue
		}
		if filter.UserID != "" && s.UserID != filter.UserID {
			continue
		}
		if filter.From != nil && s.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && s.Date.After(*filter.To) {
			continue
		}
		if filter.MinAmount != nil && s.TotalAmount.LessThan(*filter.MinAmount) {
			continue
		}
		if filter.MaxAmount != nil && s.TotalAmount.GreaterThan(*filter.MaxAmount) {
			continue
		}
		cp := *s
		all = append(all, &cp)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

type fakeCustomerRepo struct {
	customers map[string]*entity.Customer
}

func newFakeCustomerRepo(customers ...*entity.Customer) *fakeCustomerRepo {
	r := &fakeCustomerRepo{customers: make(map[string]*entity.Customer)}
	for _, c := range customers {
		r.customers[c.ID] = c
	}
	return r
}

func (r *fakeCustomerRepo) Create(c *entity.Customer) error {
	cp := *c
	r.customers[c.ID] = &cp
	return nil
}

func (r *fakeCustomerRepo) GetByID(id string) (*entity.Customer, error) {
	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *fakeCustomerRepo) GetByPhone(phone string) (*entity.Customer, error) {
	for _, c := range r.customers {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeCustomerRepo) List(limit, offset int) ([]*entity.Customer, error) {
	out := make([]*entity.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeCustomerRepo) AddPoints(id string, points int64) error {
	c, ok := r.customers[id]
	if !ok {
		return fmt.Errorf("cliente %s no existe", id)
	}
	c.TotalPoints += points
	return nil
}

func (r *fakeCustomerRepo) points(id string) int64 {
	return r.customers[id].TotalPoints
}

// fakeTxRunner invoca fn directamente con los mismos repos. Los tests de
// atomicidad verifican el contrato validar-todo-antes-de-mutar, no el rollback
// de Postgres.
type fakeTxRunner struct {
	medRepo      *fakeMedicineRepo
	saleRepo     *fakeSaleRepo
	customerRepo *fakeCustomerRepo
}

func (f *fakeTxRunner) RunSale(ctx context.Context, fn func(
	medRepo repository.MedicineRepository,
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
) error) error {
	return fn(f.medRepo, f.saleRepo, f.customerRepo)
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Env: "production", Level: "error"})
}

// newTestUseCase arma el caso de uso completo sobre fakes.
func newTestUseCase(meds []*entity.Medicine, customers []*entity.Customer) (*UseCase, *fakeMedicineRepo, *fakeSaleRepo, *fakeCustomerRepo) {
	medRepo := newFakeMedicineRepo(meds...)
	saleRepo := newFakeSaleRepo()
	customerRepo := newFakeCustomerRepo(customers...)
	tx := &fakeTxRunner{medRepo: medRepo, saleRepo: saleRepo, customerRepo: customerRepo}
	uc := NewUseCase(tx, saleRepo, medRepo, customerRepo, DefaultBonusRate, testLogger())
	return uc, medRepo, saleRepo, customerRepo
}
