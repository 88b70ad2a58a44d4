package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	User  User       `gorm:"foreignKey:UserID" json:"-"`
	Items []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Cart) TableName() string {
	return "carts"
}

// Total sums price × quantity over lines whose pizza is loaded.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type CartItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CartID    uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_pizza" json:"cart_id"`
	PizzaID   uint      `gorm:"not null;uniqueIndex:idx_cart_items_cart_pizza;index" json:"pizza_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Pizza Pizza `gorm:"foreignKey:PizzaID" json:"pizza,omitempty"`
}

func (CartItem) TableName() string {
	return "cart_items"
}

func (i *CartItem) LineTotal() decimal.Decimal {
	return i.Pizza.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
