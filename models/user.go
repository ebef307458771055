package models

import "time"

// User is a wheel player. Players are identified by email or phone: a
// registration matching either one resolves to the existing row.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:100;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone        string    `gorm:"size:20;uniqueIndex;not null" json:"phone"`
	Address      string    `gorm:"size:500" json:"address"`
	CodeShop     string    `gorm:"size:50;not null;default:'SHOP_DEFAULT'" json:"code_shop"`
	SpinsToday   int       `gorm:"not null;default:0" json:"spins_today"`
	LastSpinDate time.Time `gorm:"not null" json:"last_spin_date"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}
