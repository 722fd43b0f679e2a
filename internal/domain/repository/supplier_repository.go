package repository

import "github.com/tu-usuario/pharma-pos/internal/domain/entity"

// SupplierRepository persistencia de proveedores.
type SupplierRepository interface {
	Create(s *entity.Supplier) error
	GetByID(id string) (*entity.Supplier, error)
	List(limit, offset int) ([]*entity.Supplier, error)
}
