package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

// StartOfDay truncates t to local midnight. Day comparisons throughout the
// quota path go through this so multi-day gaps roll over the same as
// yesterday-to-today.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// PrizeStore reads prize inventory from MySQL.
type PrizeStore struct {
	db *gorm.DB
}

func NewPrizeStore(db *gorm.DB) *PrizeStore {
	return &PrizeStore{db: db}
}

// Eligible returns the active, in-stock prizes in store order. Every spin
// attempt reads a fresh snapshot; stale stock is caught later by the
// conditional decrement.
func (s *PrizeStore) Eligible(ctx context.Context) ([]models.Prize, error) {
	var prizes []models.Prize
	err := s.db.WithContext(ctx).
		Where("active = ? AND remaining_quantity > 0", true).
		Order("id ASC").
		Find(&prizes).Error
	return prizes, err
}

// UserStore enforces the per-user daily quota with guarded single-statement
// updates, the same shape as `WHERE spin_ticket > 0` conditional decrements:
// concurrent requests race on the WHERE clause, not on a stale read.
type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

// Reserve consumes one spin slot for the user.
//
// A first attempt past midnight takes the rollover branch: reset-and-consume
// in one statement guarded by `last_spin_date < midnight`, so two concurrent
// rollovers cannot both reset. The loser of that race falls through to the
// ordinary increment guarded by `spins_today < limit`.
func (s *UserStore) Reserve(ctx context.Context, userID uint, now time.Time) (int, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	midnight := StartOfDay(now)
	if user.LastSpinDate.Before(midnight) {
		res := s.db.WithContext(ctx).Model(&models.User{}).
			Where("id = ? AND last_spin_date < ?", userID, midnight).
			Updates(map[string]interface{}{
				"spins_today":    1,
				"last_spin_date": now,
			})
		if res.Error != nil {
			return 0, res.Error
		}
		if res.RowsAffected == 1 {
			return DailySpinLimit - 1, nil
		}
		// Another request rolled the day over first; consume normally.
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND spins_today < ?", userID, DailySpinLimit).
		Updates(map[string]interface{}{
			"spins_today":    gorm.Expr("spins_today + 1"),
			"last_spin_date": now,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, ErrQuotaExceeded
	}

	if err := s.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return 0, err
	}
	return DailySpinLimit - user.SpinsToday, nil
}

// RemainingSpins reports the user's remaining quota without consuming any,
// applying the same rollover read as Reserve so a new day never shows a
// stale zero.
func (s *UserStore) RemainingSpins(user *models.User, now time.Time) int {
	if user.LastSpinDate.Before(StartOfDay(now)) {
		return DailySpinLimit
	}
	remaining := DailySpinLimit - user.SpinsToday
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SpinStore is the append-only ledger.
type SpinStore struct {
	db *gorm.DB
}

func NewSpinStore(db *gorm.DB) *SpinStore {
	return &SpinStore{db: db}
}

// Commit writes one ledger row. For a prize outcome the conditional stock
// decrement and the insert share one transaction, so a crash cannot leave a
// decrement without its record. RowsAffected == 0 on the decrement means the
// last unit went to someone else: ErrStockExhausted, transaction rolled back.
func (s *SpinStore) Commit(ctx context.Context, spin *models.Spin) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if spin.PrizeID != nil {
			res := tx.Model(&models.Prize{}).
				Where("id = ? AND remaining_quantity > 0", *spin.PrizeID).
				UpdateColumn("remaining_quantity", gorm.Expr("remaining_quantity - 1"))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrStockExhausted
			}
		}
		return tx.Create(spin).Error
	})
}

// WinningSpinsSince returns the user's winning real-prize spins recorded at
// or after the given time, prize preloaded. Used to compose the quota-reached
// notification.
func (s *SpinStore) WinningSpinsSince(ctx context.Context, userID uint, since time.Time) ([]models.Spin, error) {
	var spins []models.Spin
	err := s.db.WithContext(ctx).
		Preload("Prize").
		Where("user_id = ? AND is_win = ? AND created_at >= ?", userID, true, since).
		Order("created_at ASC").
		Find(&spins).Error
	return spins, err
}
