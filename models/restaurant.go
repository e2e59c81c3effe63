package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Restaurant struct {
	gorm.Model
	Name         string          `gorm:"not null"`
	ImageURL     string
	Cuisine      string          `gorm:"index"`
	Rating       decimal.Decimal `gorm:"type:decimal(2,1)"`
	DeliveryTime string
	Products     []Product
}
