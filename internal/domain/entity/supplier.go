package entity

import "time"

// Supplier representa un proveedor de medicamentos.
type Supplier struct {
	ID        string
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}
