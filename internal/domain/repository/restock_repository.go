package repository

import "github.com/tu-usuario/pharma-pos/internal/domain/entity"

// RestockRepository persistencia de órdenes de reabastecimiento.
// GetOrderByIDForUpdate bloquea la cabecera para que la transición de estado
// y sus efectos de stock sean atómicos frente a confirmaciones concurrentes.
type RestockRepository interface {
	CreateOrder(order *entity.RestockOrder) error
	GetOrderByID(id string) (*entity.RestockOrder, error)
	GetOrderByIDForUpdate(id string) (*entity.RestockOrder, error)
	UpdateStatus(order *entity.RestockOrder) error
	ListOrders(limit, offset int) ([]*entity.RestockOrder, error)
}
