package services

import (
	"testing"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

func testPrizes(probs ...float64) []models.Prize {
	prizes := make([]models.Prize, len(probs))
	for i, p := range probs {
		prizes[i] = models.Prize{
			ID:                uint(i + 1),
			Name:              "prize",
			Probability:       p,
			RemainingQuantity: 10,
			OriginalQuantity:  10,
			Active:            true,
			IsRealPrize:       true,
		}
	}
	return prizes
}

func TestDrawOutcomeBoundaries(t *testing.T) {
	prizes := testPrizes(30, 20)

	cases := []struct {
		name   string
		r      float64
		wantID uint // 0 means no win
	}{
		{"zero lands on first", 0, 1},
		{"just under first boundary", 29.999, 1},
		{"exactly first boundary goes to second", 30, 2},
		{"just under second boundary", 49.999, 2},
		{"exactly allocated mass is a loss", 50.0, 0},
		{"deep in the remainder", 99.9, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := DrawOutcome(prizes, tc.r)
			if tc.wantID == 0 {
				if out.Prize != nil {
					t.Fatalf("r=%v: expected no win, got prize %d", tc.r, out.Prize.ID)
				}
				if out.IsWin {
					t.Fatalf("r=%v: no-win outcome flagged as win", tc.r)
				}
				return
			}
			if out.Prize == nil {
				t.Fatalf("r=%v: expected prize %d, got no win", tc.r, tc.wantID)
			}
			if out.Prize.ID != tc.wantID {
				t.Fatalf("r=%v: expected prize %d, got %d", tc.r, tc.wantID, out.Prize.ID)
			}
		})
	}
}

func TestDrawOutcomeFullAllocationNeverLoses(t *testing.T) {
	prizes := testPrizes(60, 40)
	for r := 0.0; r < 100; r += 0.5 {
		if out := DrawOutcome(prizes, r); out.Prize == nil {
			t.Fatalf("r=%v: drew no-win although probabilities sum to 100", r)
		}
	}
	if out := DrawOutcome(prizes, 99.999); out.Prize == nil {
		t.Fatal("r=99.999: drew no-win although probabilities sum to 100")
	}
}

func TestDrawOutcomeZeroWeightUnselectable(t *testing.T) {
	prizes := testPrizes(50, 0, 50)
	for r := 0.0; r < 100; r += 0.25 {
		if out := DrawOutcome(prizes, r); out.Prize != nil && out.Prize.ID == 2 {
			t.Fatalf("r=%v: selected zero-weight prize", r)
		}
	}
}

func TestDrawOutcomeEmptyPoolAlwaysLoses(t *testing.T) {
	for _, r := range []float64{0, 12.5, 99.999} {
		if out := DrawOutcome(nil, r); out.Prize != nil || out.IsWin {
			t.Fatalf("r=%v: empty pool must always lose", r)
		}
	}
}

func TestDrawOutcomeConsolationPrizeIsNotAWin(t *testing.T) {
	prizes := testPrizes(100)
	prizes[0].IsRealPrize = false

	out := DrawOutcome(prizes, 42)
	if out.Prize == nil {
		t.Fatal("expected the consolation prize to be drawn")
	}
	if out.IsWin {
		t.Fatal("consolation prize must not count as a win")
	}
}

func TestTotalProbabilityIgnoresNonPositive(t *testing.T) {
	prizes := testPrizes(30, 0, 20)
	prizes[1].Probability = -5
	if got := TotalProbability(prizes); got != 50 {
		t.Fatalf("expected total 50, got %v", got)
	}
}
