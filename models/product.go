package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// 營養資訊
type NutritionalInfo struct {
	Calories int    `json:"calories"`
	Protein  string `json:"protein"`
	Carbs    string `json:"carbs"`
	Fat      string `json:"fat"`
}

type Product struct {
	gorm.Model
	RestaurantID    uint            `gorm:"index"`
	Name            string          `gorm:"not null"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Description     string
	ImageURL        string
	Ingredients     []string        `gorm:"serializer:json"`
	NutritionalInfo NutritionalInfo `gorm:"serializer:json"`
	Categories      []Category      `gorm:"many2many:category_products;"`
}
