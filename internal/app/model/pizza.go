package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PizzaType string

const (
	PizzaTypeVeg    PizzaType = "veg"
	PizzaTypeNonVeg PizzaType = "non-veg"
)

func (t PizzaType) Valid() bool {
	return t == PizzaTypeVeg || t == PizzaTypeNonVeg
}

type Pizza struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	Name        string          `gorm:"type:varchar(100);not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	Type        PizzaType       `gorm:"type:varchar(10);not null;index" json:"type"`
	IsAvailable bool            `gorm:"not null;default:true" json:"is_available"`
	ImageURL    string          `json:"image_url"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (Pizza) TableName() string {
	return "pizzas"
}
