package services

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

// Outcome is the result of one draw: a prize slice of the wheel, or the
// implicit "no win" remainder when Prize is nil. IsWin is only true for a
// prize that is a real, fulfillable reward; consolation slices
// (IsRealPrize=false) draw like prizes but never count as wins.
type Outcome struct {
	Prize *models.Prize
	IsWin bool
}

// TotalProbability sums the configured probabilities of the given prizes.
// Non-positive weights contribute nothing.
func TotalProbability(prizes []models.Prize) float64 {
	total := 0.0
	for _, p := range prizes {
		if p.Probability > 0 {
			total += p.Probability
		}
	}
	return total
}

// DrawOutcome walks the eligible prizes in store order, accumulating
// probability mass, and selects the first entry whose cumulative weight
// exceeds r. Whatever mass is left under 100 belongs to the implicit
// "no win" entry, so r at or beyond the allocated total is a loss.
//
// The comparison is strict (r < cumulative): a zero-weight entry never moves
// the cumulative total and therefore can never be selected, and when the
// probabilities sum to exactly 100 the no-win remainder is unreachable for
// any r in [0,100).
func DrawOutcome(prizes []models.Prize, r float64) Outcome {
	cumulative := 0.0
	for i := range prizes {
		if prizes[i].Probability <= 0 {
			continue
		}
		cumulative += prizes[i].Probability
		if r < cumulative {
			return Outcome{Prize: &prizes[i], IsWin: prizes[i].IsRealPrize}
		}
	}
	return Outcome{}
}

var (
	randMu     sync.Mutex
	seededRand = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// randPercent returns a uniform value in [0, 100).
func randPercent() float64 {
	randMu.Lock()
	defer randMu.Unlock()
	return seededRand.Float64() * 100
}
