package application

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"compass/contexts/people-ops/stakeholder-service/adapters/memory"
	domainerrors "compass/contexts/people-ops/stakeholder-service/domain/errors"
)

const testTenant = "tenant-1"

func newFixture() (Service, *memory.Store) {
	store := memory.NewStore()
	return Service{Repo: store, Clock: store}, store
}

func register(t *testing.T, service Service, personID string) {
	t.Helper()
	_, err := service.Register(context.Background(), RegisterStakeholderInput{
		TenantID: testTenant,
		PersonID: personID,
	})
	if err != nil {
		t.Fatalf("register %s: %v", personID, err)
	}
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	service, _ := newFixture()
	register(t, service, "person-a")

	_, err := service.Register(context.Background(), RegisterStakeholderInput{
		TenantID: testTenant,
		PersonID: "person-a",
	})
	if !errors.Is(err, domainerrors.ErrStakeholderExists) {
		t.Fatalf("err = %v, want ErrStakeholderExists", err)
	}
}

func TestCountersFollowLifecycleCallbacks(t *testing.T) {
	service, _ := newFixture()
	register(t, service, "person-a")
	ctx := context.Background()

	if err := service.OnAssigned(ctx, testTenant, "person-a"); err != nil {
		t.Fatalf("onAssigned: %v", err)
	}
	if err := service.OnAssigned(ctx, testTenant, "person-a"); err != nil {
		t.Fatalf("onAssigned: %v", err)
	}
	if err := service.OnEscalated(ctx, testTenant, "person-a"); err != nil {
		t.Fatalf("onEscalated: %v", err)
	}

	stakeholder, err := service.Get(ctx, testTenant, "person-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stakeholder.DecisionsPending != 2 || stakeholder.DecisionsEscalated != 1 {
		t.Fatalf("pending=%d escalated=%d, want 2/1", stakeholder.DecisionsPending, stakeholder.DecisionsEscalated)
	}
	if stakeholder.DecisionsCompleted != 0 || stakeholder.AvgResponseTimeHours != nil {
		t.Fatalf("completed=%d avg=%v, want 0/nil before any completion",
			stakeholder.DecisionsCompleted, stakeholder.AvgResponseTimeHours)
	}
}

func TestCompletionFloorsPendingAtZero(t *testing.T) {
	service, _ := newFixture()
	register(t, service, "person-a")
	ctx := context.Background()

	decidedAt := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	if err := service.OnCompleted(ctx, testTenant, "person-a", decidedAt, 3); err != nil {
		t.Fatalf("onCompleted: %v", err)
	}

	stakeholder, err := service.Get(ctx, testTenant, "person-a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stakeholder.DecisionsPending != 0 {
		t.Fatalf("pending = %d, want 0 (floored)", stakeholder.DecisionsPending)
	}
	if stakeholder.DecisionsCompleted != 1 {
		t.Fatalf("completed = %d, want 1", stakeholder.DecisionsCompleted)
	}
	if stakeholder.LastDecisionAt == nil || !stakeholder.LastDecisionAt.Equal(decidedAt) {
		t.Fatalf("lastDecisionAt = %v, want %s", stakeholder.LastDecisionAt, decidedAt)
	}
}

func TestIncrementalMeanMatchesArithmeticMean(t *testing.T) {
	service, _ := newFixture()
	register(t, service, "person-a")
	ctx := context.Background()

	responseTimes := []float64{4, 8, 15, 16, 23, 42, 0.5, 100.25}
	decidedAt := time.Date(2026, time.March, 2, 12, 0, 0, 0, time.UTC)
	var sum float64
	for i, hours := range responseTimes {
		if err := service.OnCompleted(ctx, testTenant, "person-a", decidedAt.Add(time.Duration(i)*time.Hour), hours); err != nil {
			t.Fatalf("onCompleted #%d: %v", i+1, err)
		}
		sum += hours

		stakeholder, err := service.Get(ctx, testTenant, "person-a")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		want := sum / float64(i+1)
		if stakeholder.AvgResponseTimeHours == nil {
			t.Fatalf("avg nil after %d completions", i+1)
		}
		if math.Abs(*stakeholder.AvgResponseTimeHours-want) > 1e-9 {
			t.Fatalf("avg after %d completions = %f, want %f", i+1, *stakeholder.AvgResponseTimeHours, want)
		}
	}
}

func TestFastestRespondersExcludesUncompleted(t *testing.T) {
	service, _ := newFixture()
	register(t, service, "person-a")
	register(t, service, "person-b")
	register(t, service, "person-c")
	ctx := context.Background()

	decidedAt := time.Now().UTC()
	if err := service.OnCompleted(ctx, testTenant, "person-a", decidedAt, 10); err != nil {
		t.Fatalf("onCompleted: %v", err)
	}
	if err := service.OnCompleted(ctx, testTenant, "person-b", decidedAt, 2); err != nil {
		t.Fatalf("onCompleted: %v", err)
	}

	board, err := service.FastestResponders(ctx, testTenant, 0)
	if err != nil {
		t.Fatalf("fastestResponders: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("len = %d, want 2 (person-c has no completions)", len(board))
	}
	if board[0].PersonID != "person-b" || board[1].PersonID != "person-a" {
		t.Fatalf("order = [%s %s], want [person-b person-a]", board[0].PersonID, board[1].PersonID)
	}
}

func TestNeedingAttentionOrdersByPendingThenEscalated(t *testing.T) {
	service, _ := newFixture()
	register(t, service, "person-a")
	register(t, service, "person-b")
	register(t, service, "person-c")
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := service.OnAssigned(ctx, testTenant, "person-a"); err != nil {
			t.Fatalf("onAssigned: %v", err)
		}
	}
	for i := 0; i < 3; i++ {
		if err := service.OnAssigned(ctx, testTenant, "person-b"); err != nil {
			t.Fatalf("onAssigned: %v", err)
		}
	}
	if err := service.OnEscalated(ctx, testTenant, "person-b"); err != nil {
		t.Fatalf("onEscalated: %v", err)
	}

	board, err := service.NeedingAttention(ctx, testTenant, 0)
	if err != nil {
		t.Fatalf("needingAttention: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("len = %d, want 2 (person-c has no load)", len(board))
	}
	if board[0].PersonID != "person-b" || board[1].PersonID != "person-a" {
		t.Fatalf("order = [%s %s], want [person-b person-a]", board[0].PersonID, board[1].PersonID)
	}
}

func TestLeaderboardLimitClamp(t *testing.T) {
	service, _ := newFixture()
	ctx := context.Background()
	for _, personID := range []string{"person-a", "person-b", "person-c"} {
		register(t, service, personID)
		if err := service.OnCompleted(ctx, testTenant, personID, time.Now().UTC(), 1); err != nil {
			t.Fatalf("onCompleted: %v", err)
		}
	}

	board, err := service.MostActive(ctx, testTenant, 2)
	if err != nil {
		t.Fatalf("mostActive: %v", err)
	}
	if len(board) != 2 {
		t.Fatalf("len = %d, want 2", len(board))
	}

	board, err = service.MostActive(ctx, testTenant, 500)
	if err != nil {
		t.Fatalf("mostActive: %v", err)
	}
	if len(board) != 3 {
		t.Fatalf("len = %d, want all 3 under the clamped cap", len(board))
	}
}

func TestCallbacksRequireRegisteredStakeholder(t *testing.T) {
	service, _ := newFixture()

	err := service.OnAssigned(context.Background(), testTenant, "person-missing")
	if !errors.Is(err, domainerrors.ErrStakeholderNotFound) {
		t.Fatalf("err = %v, want ErrStakeholderNotFound", err)
	}
}
