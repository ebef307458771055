package services

import (
	"context"
	"errors"
	"time"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

// DailySpinLimit is the per-user spin ceiling within one calendar day.
const DailySpinLimit = 5

var (
	// ErrQuotaExceeded means the user has no spins left today.
	ErrQuotaExceeded = errors.New("daily spin quota exceeded")
	// ErrStockExhausted means a prize ran out between the draw and the
	// commit. It never reaches a caller: the orchestrator degrades the
	// outcome to a loss instead.
	ErrStockExhausted = errors.New("prize stock exhausted")
	// ErrUserNotFound means the spin referenced an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// Inventory supplies the eligible-prize snapshot for a draw. Implementations
// must read fresh per call, never cache across requests.
type Inventory interface {
	Eligible(ctx context.Context) ([]models.Prize, error)
}

// Quota enforces the daily spin ceiling. Reserve consumes one slot as a
// single conditional step, rolling the counter over on the first attempt
// after local midnight, and returns the slots left after this one.
type Quota interface {
	Reserve(ctx context.Context, userID uint, now time.Time) (remaining int, err error)
}

// Ledger persists spin outcomes. For a prize outcome the stock decrement and
// the ledger insert must commit together; a lost race on the last unit is
// reported as ErrStockExhausted with nothing written.
type Ledger interface {
	Commit(ctx context.Context, spin *models.Spin) error
}

// Notifier is told when a user consumes their last spin of the day. Calls
// must not block the spin transaction.
type Notifier interface {
	QuotaReached(userID uint)
}

// SpinService runs the whole spin transaction: quota reserve, weighted draw
// over a fresh inventory snapshot, stock commit and ledger record.
type SpinService struct {
	inventory Inventory
	quota     Quota
	ledger    Ledger
	notifier  Notifier

	now     func() time.Time
	randPct func() float64
}

func NewSpinService(inventory Inventory, quota Quota, ledger Ledger, notifier Notifier) *SpinService {
	return &SpinService{
		inventory: inventory,
		quota:     quota,
		ledger:    ledger,
		notifier:  notifier,
		now:       time.Now,
		randPct:   randPercent,
	}
}

// SpinResult is what the entry point returns to the player.
type SpinResult struct {
	Spin           *models.Spin
	Prize          *models.Prize
	IsWin          bool
	RemainingSpins int
}

// Spin performs one spin for the user.
//
// Quota failure is the only caller-facing rejection. When the drawn prize
// loses the race for its last unit, the outcome is degraded in place to a
// loss and recorded as such: the user keeps the consumed attempt and sees an
// ordinary "no win", never an error and never a second draw.
func (s *SpinService) Spin(ctx context.Context, userID uint) (*SpinResult, error) {
	remaining, err := s.quota.Reserve(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	prizes, err := s.inventory.Eligible(ctx)
	if err != nil {
		return nil, err
	}

	outcome := DrawOutcome(prizes, s.randPct())

	spin := &models.Spin{UserID: userID, IsWin: outcome.IsWin, CreatedAt: s.now()}
	if outcome.Prize != nil {
		prizeID := outcome.Prize.ID
		spin.PrizeID = &prizeID
	}

	err = s.ledger.Commit(ctx, spin)
	if errors.Is(err, ErrStockExhausted) {
		outcome = Outcome{}
		spin = &models.Spin{UserID: userID, CreatedAt: s.now()}
		err = s.ledger.Commit(ctx, spin)
	}
	if err != nil {
		return nil, err
	}

	if remaining == 0 && s.notifier != nil {
		s.notifier.QuotaReached(userID)
	}

	return &SpinResult{
		Spin:           spin,
		Prize:          outcome.Prize,
		IsWin:          outcome.IsWin,
		RemainingSpins: remaining,
	}, nil
}
