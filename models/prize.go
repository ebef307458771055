package models

import "time"

// Prize is one slice of the wheel. Probability is a percentage of a single
// spin; the active probabilities may sum to at most 100 and the leftover mass
// is the implicit "no win" outcome. A prize with IsRealPrize=false is a
// consolation slice ("better luck next time") that can be drawn but must not
// be fulfilled.
type Prize struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Name              string    `gorm:"size:100;not null" json:"name"`
	Description       string    `gorm:"size:500" json:"description"`
	ImageURL          string    `gorm:"size:255" json:"image_url"`
	Probability       float64   `gorm:"type:decimal(5,2);not null" json:"probability"`
	OriginalQuantity  int       `gorm:"not null" json:"original_quantity"`
	RemainingQuantity int       `gorm:"not null" json:"remaining_quantity"`
	Active            bool      `gorm:"not null;default:true" json:"active"`
	IsRealPrize       bool      `gorm:"not null;default:true" json:"is_real_prize"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"-"`
}

func (Prize) TableName() string {
	return "prizes"
}
