package model

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Rating struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PizzaID   uint      `gorm:"not null;index" json:"pizza_id"`
	Rating    int       `gorm:"not null" json:"rating"`
	Comment   string    `gorm:"type:text" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	User  User  `gorm:"foreignKey:UserID" json:"-"`
	Pizza Pizza `gorm:"foreignKey:PizzaID" json:"-"`
}

func (Rating) TableName() string {
	return "ratings"
}
