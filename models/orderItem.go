package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 下單當下的商品資料，商品之後改價不影響訂單
type OrderItem struct {
	gorm.Model
	OrderID   uint            `gorm:"index;not null"`
	ProductID string          `gorm:"not null"`
	Name      string          `gorm:"not null"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	ImageURL  string
	Quantity  int `gorm:"not null"`
}

func (i OrderItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
