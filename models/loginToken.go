package models

import (
	"gorm.io/gorm"
	"time"
)

// 已簽發的登入Token，登出時刪除使其失效
type LoginToken struct {
	gorm.Model
	Token          string `gorm:"type:text;not null"`
	ExpirationTime time.Time
	UserID         uint `gorm:"index"`
	Role           string
}

func (t LoginToken) Expired(now time.Time) bool {
	return !t.ExpirationTime.After(now)
}
