package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ducnguyen0213/lucky-wheel-all/models"
)

// memStore implements Inventory, Quota and Ledger with the same conditional
// semantics as the SQL stores, guarded by one mutex so goroutine storms
// exercise the orchestrator's invariants without a database.
type memStore struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	prizes map[uint]*models.Prize
	order  []uint
	ledger []models.Spin

	quotaCalls chan uint
}

func newMemStore() *memStore {
	return &memStore{
		users:      make(map[uint]*models.User),
		prizes:     make(map[uint]*models.Prize),
		quotaCalls: make(chan uint, 64),
	}
}

func (m *memStore) addUser(id uint, spinsToday int, lastSpin time.Time) {
	m.users[id] = &models.User{ID: id, SpinsToday: spinsToday, LastSpinDate: lastSpin}
}

func (m *memStore) addPrize(p models.Prize) {
	cp := p
	m.prizes[p.ID] = &cp
	m.order = append(m.order, p.ID)
}

func (m *memStore) Eligible(ctx context.Context) ([]models.Prize, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Prize
	for _, id := range m.order {
		p := m.prizes[id]
		if p.Active && p.RemainingQuantity > 0 {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memStore) Reserve(ctx context.Context, userID uint, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}
	if user.LastSpinDate.Before(StartOfDay(now)) {
		user.SpinsToday = 1
		user.LastSpinDate = now
		return DailySpinLimit - 1, nil
	}
	if user.SpinsToday >= DailySpinLimit {
		return 0, ErrQuotaExceeded
	}
	user.SpinsToday++
	user.LastSpinDate = now
	return DailySpinLimit - user.SpinsToday, nil
}

func (m *memStore) Commit(ctx context.Context, spin *models.Spin) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if spin.PrizeID != nil {
		p, ok := m.prizes[*spin.PrizeID]
		if !ok || p.RemainingQuantity <= 0 {
			return ErrStockExhausted
		}
		p.RemainingQuantity--
	}
	spin.ID = uint(len(m.ledger) + 1)
	m.ledger = append(m.ledger, *spin)
	return nil
}

func (m *memStore) QuotaReached(userID uint) {
	m.quotaCalls <- userID
}

func (m *memStore) spinCount(userID uint) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, s := range m.ledger {
		if s.UserID == userID {
			n++
		}
	}
	return n
}

func newTestService(store *memStore, r float64) *SpinService {
	svc := NewSpinService(store, store, store, store)
	svc.randPct = func() float64 { return r }
	return svc
}

func TestSpinEndToEndWin(t *testing.T) {
	store := newMemStore()
	store.addUser(1, 4, time.Now())
	store.addPrize(models.Prize{ID: 7, Name: "Voucher", Probability: 100, OriginalQuantity: 5, RemainingQuantity: 5, Active: true, IsRealPrize: true})

	svc := newTestService(store, 50)

	res, err := svc.Spin(context.Background(), 1)
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}
	if !res.IsWin || res.Prize == nil || res.Prize.ID != 7 {
		t.Fatalf("expected a win on prize 7, got %+v", res)
	}
	if res.RemainingSpins != 0 {
		t.Fatalf("expected 0 remaining spins, got %d", res.RemainingSpins)
	}
	if store.prizes[7].RemainingQuantity != 4 {
		t.Fatalf("expected stock 4, got %d", store.prizes[7].RemainingQuantity)
	}

	select {
	case uid := <-store.quotaCalls:
		if uid != 1 {
			t.Fatalf("quota notification for wrong user: %d", uid)
		}
	default:
		t.Fatal("expected quota-reached notification")
	}

	// Sixth spin the same day must be rejected with no further writes.
	if _, err := svc.Spin(context.Background(), 1); err != ErrQuotaExceeded {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	if got := store.spinCount(1); got != 1 {
		t.Fatalf("expected 1 ledger row, got %d", got)
	}
	if store.prizes[7].RemainingQuantity != 4 {
		t.Fatalf("rejected spin mutated stock: %d", store.prizes[7].RemainingQuantity)
	}
}

func TestSpinNoEligiblePrizes(t *testing.T) {
	store := newMemStore()
	store.addUser(1, 0, time.Now())
	store.addPrize(models.Prize{ID: 1, Probability: 100, RemainingQuantity: 0, Active: true, IsRealPrize: true})
	store.addPrize(models.Prize{ID: 2, Probability: 100, RemainingQuantity: 3, Active: false, IsRealPrize: true})

	svc := newTestService(store, 0)

	res, err := svc.Spin(context.Background(), 1)
	if err != nil {
		t.Fatalf("spin failed: %v", err)
	}
	if res.IsWin || res.Prize != nil {
		t.Fatalf("expected a loss with no prize, got %+v", res)
	}
	if store.prizes[1].RemainingQuantity != 0 || store.prizes[2].RemainingQuantity != 3 {
		t.Fatal("spin against empty pool mutated prize stock")
	}
	if got := store.spinCount(1); got != 1 {
		t.Fatalf("expected the loss to be recorded, got %d rows", got)
	}
}

func TestSpinUnknownUser(t *testing.T) {
	store := newMemStore()
	svc := newTestService(store, 0)
	if _, err := svc.Spin(context.Background(), 99); err != ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestSpinDegradesOnExhaustedStock(t *testing.T) {
	store := newMemStore()
	store.addUser(1, 0, time.Now())
	store.addPrize(models.Prize{ID: 3, Probability: 100, RemainingQuantity: 1, Active: true, IsRealPrize: true})

	svc := newTestService(store, 10)
	// Simulate losing the race: the snapshot sees stock, the commit does not.
	svc.inventory = staleInventory{store}
	store.prizes[3].RemainingQuantity = 0

	res, err := svc.Spin(context.Background(), 1)
	if err != nil {
		t.Fatalf("degraded spin must not error: %v", err)
	}
	if res.IsWin || res.Prize != nil {
		t.Fatalf("expected degraded no-win, got %+v", res)
	}
	if store.prizes[3].RemainingQuantity != 0 {
		t.Fatalf("stock went negative or was restored: %d", store.prizes[3].RemainingQuantity)
	}
	if got := store.spinCount(1); got != 1 {
		t.Fatalf("expected exactly one ledger row, got %d", got)
	}
	if store.ledger[0].PrizeID != nil || store.ledger[0].IsWin {
		t.Fatalf("degraded spin recorded as a win: %+v", store.ledger[0])
	}
}

// staleInventory returns the prize pool as if stock were still available.
type staleInventory struct {
	store *memStore
}

func (s staleInventory) Eligible(ctx context.Context) ([]models.Prize, error) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	var out []models.Prize
	for _, id := range s.store.order {
		p := *s.store.prizes[id]
		p.RemainingQuantity = 1
		out = append(out, p)
	}
	return out, nil
}

func TestConcurrentSpinsNeverOversellLastUnit(t *testing.T) {
	store := newMemStore()
	store.addPrize(models.Prize{ID: 1, Name: "TV", Probability: 100, OriginalQuantity: 1, RemainingQuantity: 1, Active: true, IsRealPrize: true})

	const players = 20
	for i := uint(1); i <= players; i++ {
		store.addUser(i, 0, time.Now())
	}

	svc := newTestService(store, 50)

	var wg sync.WaitGroup
	results := make(chan *SpinResult, players)
	wg.Add(players)
	for i := uint(1); i <= players; i++ {
		go func(userID uint) {
			defer wg.Done()
			res, err := svc.Spin(context.Background(), userID)
			if err != nil {
				t.Errorf("user %d: %v", userID, err)
				return
			}
			results <- res
		}(i)
	}
	wg.Wait()
	close(results)

	wins := 0
	for res := range results {
		if res.IsWin {
			wins++
		}
	}
	if wins != 1 {
		t.Fatalf("expected exactly 1 win for 1 unit of stock, got %d", wins)
	}
	if store.prizes[1].RemainingQuantity != 0 {
		t.Fatalf("stock ended at %d, want 0", store.prizes[1].RemainingQuantity)
	}
	if len(store.ledger) != players {
		t.Fatalf("expected %d ledger rows, got %d", players, len(store.ledger))
	}
}

func TestConcurrentSpinsRespectDailyQuota(t *testing.T) {
	store := newMemStore()
	store.addUser(1, 0, time.Now())

	svc := newTestService(store, 99)

	const attempts = 25
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := 0; i < attempts; i++ {
		go func() {
			defer wg.Done()
			_, err := svc.Spin(context.Background(), 1)
			if err != nil && err != ErrQuotaExceeded {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := store.users[1].SpinsToday; got != DailySpinLimit {
		t.Fatalf("spins_today ended at %d, want %d", got, DailySpinLimit)
	}
	if got := store.spinCount(1); got != DailySpinLimit {
		t.Fatalf("expected %d ledger rows, got %d", DailySpinLimit, got)
	}
}

func TestQuotaRolloverHappensOnce(t *testing.T) {
	store := newMemStore()
	yesterday := time.Now().AddDate(0, 0, -1)
	store.addUser(1, DailySpinLimit, yesterday)

	svc := newTestService(store, 99)

	res, err := svc.Spin(context.Background(), 1)
	if err != nil {
		t.Fatalf("first spin after rollover failed: %v", err)
	}
	if res.RemainingSpins != DailySpinLimit-1 {
		t.Fatalf("expected %d remaining after rollover, got %d", DailySpinLimit-1, res.RemainingSpins)
	}
	if store.users[1].SpinsToday != 1 {
		t.Fatalf("spins_today after rollover = %d, want 1", store.users[1].SpinsToday)
	}

	res, err = svc.Spin(context.Background(), 1)
	if err != nil {
		t.Fatalf("second spin failed: %v", err)
	}
	if store.users[1].SpinsToday != 2 {
		t.Fatalf("second spin double-reset the counter: spins_today = %d", store.users[1].SpinsToday)
	}
	if res.RemainingSpins != DailySpinLimit-2 {
		t.Fatalf("expected %d remaining, got %d", DailySpinLimit-2, res.RemainingSpins)
	}

	// A multi-day gap rolls over the same way as a single day.
	store.users[1].SpinsToday = DailySpinLimit
	store.users[1].LastSpinDate = time.Now().AddDate(0, 0, -10)
	res, err = svc.Spin(context.Background(), 1)
	if err != nil {
		t.Fatalf("spin after long gap failed: %v", err)
	}
	if store.users[1].SpinsToday != 1 {
		t.Fatalf("long-gap rollover left spins_today = %d", store.users[1].SpinsToday)
	}
}

func TestRemainingSpinsReadSideRollover(t *testing.T) {
	store := NewUserStore(nil)
	now := time.Now()

	user := &models.User{SpinsToday: DailySpinLimit, LastSpinDate: now.AddDate(0, 0, -1)}
	if got := store.RemainingSpins(user, now); got != DailySpinLimit {
		t.Fatalf("stale counter leaked through the read path: %d", got)
	}

	user = &models.User{SpinsToday: 3, LastSpinDate: now}
	if got := store.RemainingSpins(user, now); got != DailySpinLimit-3 {
		t.Fatalf("expected %d remaining, got %d", DailySpinLimit-3, got)
	}
}
