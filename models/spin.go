package models

import "time"

// Spin is one ledger entry: exactly one row per spin attempt, written once
// and never updated. PrizeID is null when the draw landed on the implicit
// "no win" outcome (or was degraded to it after losing a stock race).
type Spin struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index:idx_spins_user_created" json:"user_id"`
	PrizeID   *uint     `gorm:"index" json:"prize_id"`
	IsWin     bool      `gorm:"not null;default:false" json:"is_win"`
	CreatedAt time.Time `gorm:"index;index:idx_spins_user_created" json:"created_at"`

	User  *User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Prize *Prize `gorm:"foreignKey:PrizeID" json:"prize,omitempty"`
}

func (Spin) TableName() string {
	return "spins"
}
