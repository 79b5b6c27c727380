package models

import "time"

// Pizza represents a pizza with its properties.
// Toppings are free-form names; they are not normalized to a topping entity.
type Pizza struct {
	ID          int       `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null"`
	Description string    `json:"description"`
	BaseID      int       `json:"base_id"`
	Toppings    []string  `json:"toppings" gorm:"serializer:json"`
	Price       float64   `json:"price"`
	CreatedBy   uint      `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Clone returns a copy of the pizza that does not share its toppings slice
func (p Pizza) Clone() Pizza {
	c := p
	if p.Toppings != nil {
		c.Toppings = append([]string(nil), p.Toppings...)
	}
	return c
}
