package entity

import "time"

// Customer representa un cliente del programa de puntos.
// TotalPoints solo crece: las ventas completadas con cliente acreditan puntos
// y la cancelación de una venta no los revierte (política explícita).
type Customer struct {
	ID          string
	FirstName   string
	LastName    string
	Phone       string // único; clave de auto-registro en el POS
	TotalPoints int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// FullName nombre completo para mostrar en recibos.
func (c *Customer) FullName() string {
	if c.FirstName == "" {
		return c.LastName
	}
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
