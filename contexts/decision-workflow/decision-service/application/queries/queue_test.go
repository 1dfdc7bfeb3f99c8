package queries

import (
	"context"
	"testing"
	"time"

	"compass/contexts/decision-workflow/decision-service/adapters/memory"
	"compass/contexts/decision-workflow/decision-service/domain/entities"
)

const testTenant = "tenant-1"

func seedDecision(id string, priority entities.Priority, createdAt time.Time, mutate func(*entities.Decision)) entities.Decision {
	decision := entities.Decision{
		DecisionID: id,
		TenantID:   testTenant,
		Title:      id,
		Status:     entities.StatusNeedsInput,
		Priority:   priority,
		Version:    1,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	if mutate != nil {
		mutate(&decision)
	}
	return decision
}

func TestPendingQueueOrdersByPriorityThenAge(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Decision{
		seedDecision("d-low", entities.PriorityLow, base, nil),
		seedDecision("d-blocking", entities.PriorityBlocking, base.Add(time.Minute), nil),
		seedDecision("d-normal", entities.PriorityNormal, base.Add(2*time.Minute), nil),
		seedDecision("d-high", entities.PriorityHigh, base.Add(3*time.Minute), nil),
	})
	store.FixedNow = base.Add(time.Hour)
	uc := QueueUseCase{Repo: store, Clock: store}

	queue, err := uc.PendingQueue(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("pending queue: %v", err)
	}
	want := []string{"d-blocking", "d-high", "d-normal", "d-low"}
	if len(queue) != len(want) {
		t.Fatalf("expected %d items, got %d", len(want), len(queue))
	}
	for i, id := range want {
		if queue[i].DecisionID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, queue[i].DecisionID)
		}
	}
}

func TestPendingQueueFIFOWithinTier(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Decision{
		seedDecision("d-newer", entities.PriorityBlocking, base.Add(time.Hour), nil),
		seedDecision("d-older", entities.PriorityBlocking, base, nil),
	})
	uc := QueueUseCase{Repo: store, Clock: store}

	queue, err := uc.PendingQueue(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("pending queue: %v", err)
	}
	if queue[0].DecisionID != "d-older" || queue[1].DecisionID != "d-newer" {
		t.Fatalf("expected oldest first within a tier, got %s then %s", queue[0].DecisionID, queue[1].DecisionID)
	}
}

func TestQueueExcludesClosedStatuses(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	store := memory.NewStore([]entities.Decision{
		seedDecision("d-open", entities.PriorityNormal, base, nil),
		seedDecision("d-decided", entities.PriorityNormal, base, func(d *entities.Decision) {
			d.Status = entities.StatusDecided
		}),
		seedDecision("d-deferred", entities.PriorityNormal, base, func(d *entities.Decision) {
			d.Status = entities.StatusDeferred
		}),
	})
	uc := QueueUseCase{Repo: store, Clock: store}

	queue, err := uc.PendingQueue(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("pending queue: %v", err)
	}
	if len(queue) != 1 || queue[0].DecisionID != "d-open" {
		t.Fatalf("expected only d-open, got %+v", queue)
	}
}

func TestOverdueFiltersByDeadline(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	pastDue := base.Add(-time.Hour)
	futureDue := base.Add(time.Hour)
	store := memory.NewStore([]entities.Decision{
		seedDecision("d-late", entities.PriorityNormal, base.Add(-25*time.Hour), func(d *entities.Decision) {
			d.DueAt = &pastDue
		}),
		seedDecision("d-on-track", entities.PriorityNormal, base.Add(-time.Hour), func(d *entities.Decision) {
			d.DueAt = &futureDue
		}),
		seedDecision("d-no-deadline", entities.PriorityNormal, base, nil),
	})
	store.FixedNow = base
	uc := QueueUseCase{Repo: store, Clock: store}

	overdue, err := uc.Overdue(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(overdue) != 1 || overdue[0].DecisionID != "d-late" {
		t.Fatalf("expected only d-late, got %+v", overdue)
	}
}

func TestEscalationCandidatesRequireZeroEscalations(t *testing.T) {
	base := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	pastDue := base.Add(-time.Hour)
	store := memory.NewStore([]entities.Decision{
		seedDecision("d-fresh", entities.PriorityHigh, base.Add(-10*time.Hour), func(d *entities.Decision) {
			d.DueAt = &pastDue
		}),
		seedDecision("d-already-escalated", entities.PriorityHigh, base.Add(-10*time.Hour), func(d *entities.Decision) {
			d.DueAt = &pastDue
			d.EscalationLevel = 1
		}),
	})
	store.FixedNow = base
	uc := QueueUseCase{Repo: store, Clock: store}

	candidates, err := uc.EscalationCandidates(context.Background(), testTenant)
	if err != nil {
		t.Fatalf("escalation candidates: %v", err)
	}
	if len(candidates) != 1 || candidates[0].DecisionID != "d-fresh" {
		t.Fatalf("expected only d-fresh, got %+v", candidates)
	}
}
