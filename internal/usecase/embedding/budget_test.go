package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/talentgrid/matchengine/internal/domain"
)

// --- Mock store ---

type mockBudgetStore struct {
	values    map[string]int64
	getErr    error
	incrErr   error
	incrCalls int
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{values: map[string]int64{}}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.incrCalls++
	if m.incrErr != nil {
		return m.incrErr
	}
	m.values[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.values[key], nil
}

// --- Check tests ---

func TestCheck_UnderBudget(t *testing.T) {
	b := NewBudgetTracker("test", 1000, 10000, BudgetActionReject, zap.NewNop())
	b.Record(500)

	if err := b.Check(context.Background()); err != nil {
		t.Errorf("unexpected error under budget: %v", err)
	}
}

func TestCheck_DailyExceeded_Reject(t *testing.T) {
	b := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())
	b.Record(100)

	err := b.Check(context.Background())
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Errorf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
}

func TestCheck_MonthlyExceeded_Reject(t *testing.T) {
	b := NewBudgetTracker("test", 0, 100, BudgetActionReject, zap.NewNop())
	b.Record(150)

	err := b.Check(context.Background())
	if !errors.Is(err, domain.ErrEmbeddingQuotaExceeded) {
		t.Errorf("expected ErrEmbeddingQuotaExceeded, got %v", err)
	}
}

func TestCheck_Exceeded_WarnAllows(t *testing.T) {
	b := NewBudgetTracker("test", 100, 0, BudgetActionWarn, zap.NewNop())
	b.Record(200)

	if err := b.Check(context.Background()); err != nil {
		t.Errorf("warn action should allow the request, got %v", err)
	}
}

func TestCheck_ZeroLimitsUnlimited(t *testing.T) {
	b := NewBudgetTracker("test", 0, 0, BudgetActionReject, zap.NewNop())
	b.Record(1 << 40)

	if err := b.Check(context.Background()); err != nil {
		t.Errorf("zero limits mean unlimited, got %v", err)
	}
}

// --- Remaining tests ---

func TestRemaining(t *testing.T) {
	b := NewBudgetTracker("test", 1000, 5000, BudgetActionReject, zap.NewNop())
	b.Record(300)

	if got := b.RemainingDaily(); got != 700 {
		t.Errorf("RemainingDaily() = %d, want 700", got)
	}
	if got := b.RemainingMonthly(); got != 4700 {
		t.Errorf("RemainingMonthly() = %d, want 4700", got)
	}
}

func TestRemaining_Unlimited(t *testing.T) {
	b := NewBudgetTracker("test", 0, 0, BudgetActionWarn, zap.NewNop())

	if got := b.RemainingDaily(); got != -1 {
		t.Errorf("RemainingDaily() = %d, want -1", got)
	}
	if got := b.RemainingMonthly(); got != -1 {
		t.Errorf("RemainingMonthly() = %d, want -1", got)
	}
}

func TestRemaining_ClampedAtZero(t *testing.T) {
	b := NewBudgetTracker("test", 100, 0, BudgetActionWarn, zap.NewNop())
	b.Record(500)

	if got := b.RemainingDaily(); got != 0 {
		t.Errorf("RemainingDaily() = %d, want 0", got)
	}
}

// --- Rollover tests ---

func TestRollover_DailyResets(t *testing.T) {
	b := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())
	b.Record(100)

	// Pretend the last reset happened yesterday.
	b.mu.Lock()
	b.lastDayReset = b.lastDayReset.AddDate(0, 0, -1)
	b.mu.Unlock()

	if err := b.Check(context.Background()); err != nil {
		t.Errorf("day rollover should reset the daily counter, got %v", err)
	}
	if got := b.RemainingDaily(); got != 100 {
		t.Errorf("RemainingDaily() = %d, want 100 after rollover", got)
	}
}

func TestRollover_MonthlySurvivesDailyReset(t *testing.T) {
	b := NewBudgetTracker("test", 0, 1000, BudgetActionReject, zap.NewNop())
	b.Record(400)

	b.mu.Lock()
	b.lastDayReset = b.lastDayReset.AddDate(0, 0, -1)
	b.mu.Unlock()

	if got := b.RemainingMonthly(); got != 600 {
		t.Errorf("RemainingMonthly() = %d, want 600; daily rollover must not touch it", got)
	}
}

func TestRollover_MonthlyResets(t *testing.T) {
	b := NewBudgetTracker("test", 0, 1000, BudgetActionReject, zap.NewNop())
	b.Record(1000)

	b.mu.Lock()
	b.lastMonthReset = b.lastMonthReset.AddDate(0, -1, 0)
	b.mu.Unlock()

	if err := b.Check(context.Background()); err != nil {
		t.Errorf("month rollover should reset the monthly counter, got %v", err)
	}
}

// --- Store tests ---

func TestWithStore_LoadsCounters(t *testing.T) {
	store := newMockBudgetStore()
	now := time.Now().UTC()
	store.values["matchengine:budget:test:daily:"+now.Format("2006-01-02")] = 250
	store.values["matchengine:budget:test:monthly:"+now.Format("2006-01")] = 900

	b := NewBudgetTracker("test", 1000, 5000, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)

	if got := b.RemainingDaily(); got != 750 {
		t.Errorf("RemainingDaily() = %d, want 750", got)
	}
	if got := b.RemainingMonthly(); got != 4100 {
		t.Errorf("RemainingMonthly() = %d, want 4100", got)
	}
}

func TestWithStore_LoadFailureKeepsZero(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("store down")

	b := NewBudgetTracker("test", 1000, 0, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)

	if got := b.RemainingDaily(); got != 1000 {
		t.Errorf("RemainingDaily() = %d, want 1000 when load fails", got)
	}
}

func TestRecord_PersistsWriteBehind(t *testing.T) {
	store := newMockBudgetStore()
	b := NewBudgetTracker("test", 1000, 0, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)

	b.Record(42)

	if store.incrCalls != 2 {
		t.Errorf("expected 2 IncrBy calls (daily + monthly), got %d", store.incrCalls)
	}
	for key, val := range store.values {
		if val != 42 {
			t.Errorf("store[%q] = %d, want 42", key, val)
		}
		if !strings.HasPrefix(key, "matchengine:budget:test:") {
			t.Errorf("unexpected key %q", key)
		}
	}
}

func TestRecord_StoreFailureDoesNotAffectMemory(t *testing.T) {
	store := newMockBudgetStore()
	store.incrErr = errors.New("store down")

	b := NewBudgetTracker("test", 1000, 0, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)
	b.Record(100)

	if got := b.RemainingDaily(); got != 900 {
		t.Errorf("RemainingDaily() = %d, want 900; store failure must not lose in-memory count", got)
	}
}
