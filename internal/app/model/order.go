package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string
type PaymentMode string
type PaymentStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusPreparing      OrderStatus = "preparing"
	OrderStatusOutForDelivery OrderStatus = "out_for_delivery"
	OrderStatusDelivered      OrderStatus = "delivered"
	OrderStatusCancelled      OrderStatus = "cancelled"

	PaymentModeCOD    PaymentMode = "cod"
	PaymentModeOnline PaymentMode = "online"

	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPreparing, OrderStatusOutForDelivery,
		OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

type Order struct {
	ID                uint            `gorm:"primarykey" json:"id"`
	UserID            uint            `gorm:"not null;index" json:"user_id"`
	DeliveryPartnerID *uint           `gorm:"index" json:"delivery_partner_id"`
	Status            OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	TotalPrice        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_price"`
	PaymentMode       PaymentMode     `gorm:"type:varchar(10);not null" json:"payment_mode"`
	PaymentStatus     PaymentStatus   `gorm:"type:varchar(10);not null;default:'pending'" json:"payment_status"`
	DeliveryComment   string          `gorm:"type:text" json:"delivery_comment"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`

	User            User        `gorm:"foreignKey:UserID" json:"-"`
	DeliveryPartner *User       `gorm:"foreignKey:DeliveryPartnerID;constraint:OnDelete:SET NULL" json:"-"`
	Items           []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// IsVisibleTo reports whether userID is the buyer or the assigned partner.
func (o *Order) IsVisibleTo(userID uint) bool {
	if o.UserID == userID {
		return true
	}
	return o.DeliveryPartnerID != nil && *o.DeliveryPartnerID == userID
}

type OrderItem struct {
	ID        uint            `gorm:"primarykey" json:"id"`
	OrderID   uint            `gorm:"not null;index" json:"order_id"`
	PizzaID   uint            `gorm:"not null;index" json:"pizza_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"unit_price"` // price at checkout
	CreatedAt time.Time       `json:"created_at"`

	Pizza Pizza `gorm:"foreignKey:PizzaID" json:"pizza,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// DeliveryComment is an append-only note left by the assigned partner.
type DeliveryComment struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	OrderID   uint      `gorm:"not null;index" json:"order_id"`
	PartnerID uint      `gorm:"not null;index" json:"partner_id"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	Order   Order `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	Partner User  `gorm:"foreignKey:PartnerID" json:"-"`
}

func (DeliveryComment) TableName() string {
	return "delivery_comments"
}
