package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const OrderStatusPending = "待處理"

type Order struct {
	gorm.Model
	UserID     uint `gorm:"index;not null"`
	User       User `json:"-"`
	OrderItems []OrderItem
	Total      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Name       string          `gorm:"not null"`
	Address    string          `gorm:"not null"`
	Phone      string          `gorm:"not null"`
	Status     string          `gorm:"not null"`
}
