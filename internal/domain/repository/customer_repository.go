package repository

import "github.com/tu-usuario/pharma-pos/internal/domain/entity"

// CustomerRepository persistencia de clientes y su saldo de puntos.
type CustomerRepository interface {
	Create(c *entity.Customer) error
	GetByID(id string) (*entity.Customer, error)
	GetByPhone(phone string) (*entity.Customer, error)
	List(limit, offset int) ([]*entity.Customer, error)
	// AddPoints incrementa total_points de forma atómica (UPDATE ... SET total_points = total_points + n).
	AddPoints(id string, points int64) error
}
