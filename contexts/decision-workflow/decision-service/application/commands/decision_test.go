package commands

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"compass/contexts/decision-workflow/decision-service/adapters/memory"
	"compass/contexts/decision-workflow/decision-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/decision-service/domain/errors"
	"compass/contexts/decision-workflow/decision-service/ports"
	"compass/internal/platform/workflow"
	"compass/internal/shared/events"
)

const testTenant = "tenant-1"

func newFixture(t *testing.T, now time.Time) (DecisionUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore(nil)
	store.FixedNow = now
	store.SetPerson(ports.Person{PersonID: "person-a", TenantID: testTenant, DisplayName: "Ada"})
	store.SetPerson(ports.Person{PersonID: "person-b", TenantID: testTenant, DisplayName: "Bram"})
	useCase := DecisionUseCase{
		UoW:     store,
		Persons: store,
		Clock:   store,
		IDGen:   store,
	}
	return useCase, store
}

func mustCreate(t *testing.T, uc DecisionUseCase, cmd CreateDecisionCommand) entities.Decision {
	t.Helper()
	if cmd.TenantID == "" {
		cmd.TenantID = testTenant
	}
	if cmd.Title == "" {
		cmd.Title = "approve rollout"
	}
	if cmd.Priority == "" {
		cmd.Priority = entities.PriorityNormal
	}
	decision, err := uc.Create(context.Background(), cmd)
	if err != nil {
		t.Fatalf("create decision: %v", err)
	}
	return decision
}

func TestCreateAppliesSLATablePerPriority(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	expected := map[entities.Priority]int{
		entities.PriorityBlocking: 4,
		entities.PriorityHigh:     8,
		entities.PriorityNormal:   24,
		entities.PriorityLow:      72,
	}
	for priority, hours := range expected {
		uc, _ := newFixture(t, now)
		decision := mustCreate(t, uc, CreateDecisionCommand{Priority: priority})
		if decision.SLAHours != hours {
			t.Fatalf("priority %s: expected sla %d, got %d", priority, hours, decision.SLAHours)
		}
		want := now.Add(time.Duration(hours) * time.Hour)
		if decision.DueAt == nil || !decision.DueAt.Equal(want) {
			t.Fatalf("priority %s: expected dueAt %v, got %v", priority, want, decision.DueAt)
		}
	}
}

func TestCreateHonorsSLAOverride(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{
		Priority:         entities.PriorityBlocking,
		SLAHoursOverride: 48,
	})
	if decision.SLAHours != 48 {
		t.Fatalf("expected override sla 48, got %d", decision.SLAHours)
	}
}

func TestCreateWithAssigneeIncrementsPending(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, now)
	store.SetStakeholder(ports.StakeholderSnapshot{PersonID: "person-a", TenantID: testTenant})

	mustCreate(t, uc, CreateDecisionCommand{AssigneeID: "person-a"})

	snapshot, ok := store.Stakeholder(testTenant, "person-a")
	if !ok || snapshot.DecisionsPending != 1 {
		t.Fatalf("expected pending 1, got %+v", snapshot)
	}
}

func TestCreateRejectsUnknownAssignee(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newFixture(t, now)
	_, err := uc.Create(context.Background(), CreateDecisionCommand{
		TenantID:   testTenant,
		Title:      "t",
		Priority:   entities.PriorityLow,
		AssigneeID: "ghost",
	})
	if !errors.Is(err, domainerrors.ErrPersonNotFound) {
		t.Fatalf("expected ErrPersonNotFound, got %v", err)
	}
}

func TestIllegalTransitionsLeaveStateUnchanged(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{})

	// NEEDS_INPUT -> IMPLEMENTED is not in the table.
	_, err := uc.Implement(context.Background(), testTenant, decision.DecisionID)
	if !errors.Is(err, workflow.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
	stored, err := store.GetDecision(context.Background(), testTenant, decision.DecisionID)
	if err != nil {
		t.Fatalf("get decision: %v", err)
	}
	if stored.Status != entities.StatusNeedsInput {
		t.Fatalf("status must be unchanged, got %s", stored.Status)
	}
	if stored.Version != decision.Version {
		t.Fatalf("version must be unchanged on rejected transition")
	}
}

func TestResolveIsNotReentrant(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{})

	resolve := ResolveDecisionCommand{
		TenantID:    testTenant,
		DecisionID:  decision.DecisionID,
		DecidedByID: "person-a",
		Rationale:   "approved",
	}
	if _, err := uc.Resolve(context.Background(), resolve); err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	_, err := uc.Resolve(context.Background(), resolve)
	if !errors.Is(err, workflow.ErrIllegalTransition) {
		t.Fatalf("second resolve must fail with illegal transition, got %v", err)
	}
}

func TestResolveRequiresRationale(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{})

	_, err := uc.Resolve(context.Background(), ResolveDecisionCommand{
		TenantID:    testTenant,
		DecisionID:  decision.DecisionID,
		DecidedByID: "person-a",
	})
	if !errors.Is(err, domainerrors.ErrRationaleRequired) {
		t.Fatalf("expected ErrRationaleRequired, got %v", err)
	}
}

func TestResolveCascadeUnblocksOnlyBlockedHypotheses(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, now)
	store.SetHypothesis(ports.HypothesisSnapshot{
		HypothesisID:  "hyp-1",
		TenantID:      testTenant,
		Status:        ports.HypothesisStatusBlocked,
		BlockedReason: "waiting on pricing decision",
	})
	store.SetHypothesis(ports.HypothesisSnapshot{
		HypothesisID: "hyp-2",
		TenantID:     testTenant,
		Status:       "ready",
	})

	decision := mustCreate(t, uc, CreateDecisionCommand{
		BlockedItems: []entities.BlockedItem{
			{ItemType: entities.BlockedItemTypeHypothesis, ItemID: "hyp-1"},
			{ItemType: entities.BlockedItemTypeHypothesis, ItemID: "hyp-2"},
		},
	})

	result, err := uc.Resolve(context.Background(), ResolveDecisionCommand{
		TenantID:    testTenant,
		DecisionID:  decision.DecisionID,
		DecidedByID: "person-a",
		Rationale:   "go",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(result.UnblockedHypothesisIDs) != 1 || result.UnblockedHypothesisIDs[0] != "hyp-1" {
		t.Fatalf("expected only hyp-1 unblocked, got %v", result.UnblockedHypothesisIDs)
	}

	h1, _ := store.Hypothesis("hyp-1")
	if h1.Status != "ready" || h1.BlockedReason != "" {
		t.Fatalf("hyp-1 must be ready with cleared reason, got %+v", h1)
	}
	h2, _ := store.Hypothesis("hyp-2")
	if h2.Status != "ready" {
		t.Fatalf("hyp-2 must be untouched, got %+v", h2)
	}
}

func TestResolveUpdatesStakeholderAggregates(t *testing.T) {
	createdAt := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, createdAt)
	store.SetStakeholder(ports.StakeholderSnapshot{PersonID: "person-a", TenantID: testTenant})

	decision := mustCreate(t, uc, CreateDecisionCommand{AssigneeID: "person-a"})

	decidedAt := createdAt.Add(6 * time.Hour)
	store.FixedNow = decidedAt

	if _, err := uc.Resolve(context.Background(), ResolveDecisionCommand{
		TenantID:    testTenant,
		DecisionID:  decision.DecisionID,
		DecidedByID: "person-a",
		Rationale:   "approved",
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	snapshot, _ := store.Stakeholder(testTenant, "person-a")
	if snapshot.DecisionsPending != 0 {
		t.Fatalf("expected pending decremented to 0, got %d", snapshot.DecisionsPending)
	}
	if snapshot.DecisionsCompleted != 1 {
		t.Fatalf("expected completed 1, got %d", snapshot.DecisionsCompleted)
	}
	if snapshot.AvgResponseTimeHours == nil || math.Abs(*snapshot.AvgResponseTimeHours-6) > 1e-9 {
		t.Fatalf("expected avg 6h, got %v", snapshot.AvgResponseTimeHours)
	}
	if snapshot.LastDecisionAt == nil || !snapshot.LastDecisionAt.Equal(decidedAt) {
		t.Fatalf("expected lastDecisionAt %v, got %v", decidedAt, snapshot.LastDecisionAt)
	}
}

func TestEscalateReassignsAndCountsPreviousAssignee(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, now)
	store.SetStakeholder(ports.StakeholderSnapshot{PersonID: "person-a", TenantID: testTenant})

	decision := mustCreate(t, uc, CreateDecisionCommand{AssigneeID: "person-a"})

	escalated, err := uc.Escalate(context.Background(), EscalateDecisionCommand{
		TenantID:       testTenant,
		DecisionID:     decision.DecisionID,
		TargetPersonID: "person-b",
		Reason:         "sla breach",
	})
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if escalated.EscalationLevel != 1 {
		t.Fatalf("expected escalation level 1, got %d", escalated.EscalationLevel)
	}
	if escalated.AssigneeID != "person-b" || escalated.EscalatedToID != "person-b" {
		t.Fatalf("expected atomic reassignment to person-b, got %+v", escalated)
	}
	if escalated.EscalatedAt == nil || !escalated.EscalatedAt.Equal(now) {
		t.Fatalf("expected escalatedAt stamped")
	}

	snapshot, _ := store.Stakeholder(testTenant, "person-a")
	if snapshot.DecisionsEscalated != 1 {
		t.Fatalf("previous assignee escalated counter must be 1, got %d", snapshot.DecisionsEscalated)
	}
	// The decision is still open, merely reassigned: pending stays put.
	if snapshot.DecisionsPending != 1 {
		t.Fatalf("previous assignee pending must stay 1, got %d", snapshot.DecisionsPending)
	}
}

func TestEscalateRejectedOnceDecided(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{})

	if _, err := uc.Resolve(context.Background(), ResolveDecisionCommand{
		TenantID:    testTenant,
		DecisionID:  decision.DecisionID,
		DecidedByID: "person-a",
		Rationale:   "done",
	}); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	_, err := uc.Escalate(context.Background(), EscalateDecisionCommand{
		TenantID:       testTenant,
		DecisionID:     decision.DecisionID,
		TargetPersonID: "person-b",
	})
	if !errors.Is(err, domainerrors.ErrDecisionNotOpen) {
		t.Fatalf("expected ErrDecisionNotOpen, got %v", err)
	}
}

func TestReassignAppendsAuditNoteToContext(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{
		Context:    "budget sign-off",
		AssigneeID: "person-a",
	})

	updated, err := uc.Reassign(context.Background(), testTenant, decision.DecisionID, "person-b", "vacation coverage")
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	want := "budget sign-off\n[Reassigned from person-a to person-b] vacation coverage"
	if updated.Context != want {
		t.Fatalf("expected context %q, got %q", want, updated.Context)
	}
	if updated.AssigneeID != "person-b" {
		t.Fatalf("expected assignee person-b, got %s", updated.AssigneeID)
	}
}

func TestReopenResetsRationaleEscalationAndDeadline(t *testing.T) {
	createdAt := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, createdAt)
	decision := mustCreate(t, uc, CreateDecisionCommand{Priority: entities.PriorityHigh})

	if _, err := uc.Escalate(context.Background(), EscalateDecisionCommand{
		TenantID:       testTenant,
		DecisionID:     decision.DecisionID,
		TargetPersonID: "person-b",
	}); err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if _, err := uc.Defer(context.Background(), testTenant, decision.DecisionID, "waiting on budget"); err != nil {
		t.Fatalf("defer: %v", err)
	}

	reopenedAt := createdAt.Add(30 * time.Hour)
	store.FixedNow = reopenedAt

	reopened, err := uc.Reopen(context.Background(), testTenant, decision.DecisionID)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if reopened.Status != entities.StatusNeedsInput {
		t.Fatalf("expected NEEDS_INPUT, got %s", reopened.Status)
	}
	if reopened.DecisionRationale != "" {
		t.Fatalf("rationale must be cleared, got %q", reopened.DecisionRationale)
	}
	if reopened.EscalationLevel != 0 {
		t.Fatalf("escalation level must reset on reopen, got %d", reopened.EscalationLevel)
	}
	want := reopenedAt.Add(8 * time.Hour)
	if reopened.DueAt == nil || !reopened.DueAt.Equal(want) {
		t.Fatalf("expected dueAt recomputed to %v, got %v", want, reopened.DueAt)
	}
}

func TestIsOverdueExcludesResolvedStatusesButNotDeferred(t *testing.T) {
	createdAt := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	past := createdAt.Add(-2 * time.Hour)
	later := createdAt.Add(time.Hour)

	cases := []struct {
		status  entities.Status
		overdue bool
	}{
		{entities.StatusNeedsInput, true},
		{entities.StatusUnderDiscussion, true},
		{entities.StatusDeferred, true},
		{entities.StatusDecided, false},
		{entities.StatusImplemented, false},
		{entities.StatusCancelled, false},
	}
	for _, tc := range cases {
		decision := entities.Decision{Status: tc.status, DueAt: &past, CreatedAt: createdAt}
		if got := decision.IsOverdue(later); got != tc.overdue {
			t.Fatalf("status %s: expected overdue=%v, got %v", tc.status, tc.overdue, got)
		}
	}
}

func TestWaitTimeHoursZeroWithoutCreation(t *testing.T) {
	var decision entities.Decision
	if got := decision.WaitTimeHours(time.Now()); got != 0 {
		t.Fatalf("expected 0 wait time, got %v", got)
	}
}

func TestEndToEndHighPriorityLifecycle(t *testing.T) {
	t0 := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, t0)
	store.SetStakeholder(ports.StakeholderSnapshot{PersonID: "person-a", TenantID: testTenant})
	store.SetStakeholder(ports.StakeholderSnapshot{PersonID: "person-b", TenantID: testTenant})

	decision := mustCreate(t, uc, CreateDecisionCommand{
		Priority:   entities.PriorityHigh,
		AssigneeID: "person-a",
	})
	wantDue := t0.Add(8 * time.Hour)
	if decision.DueAt == nil || !decision.DueAt.Equal(wantDue) {
		t.Fatalf("expected dueAt %v, got %v", wantDue, decision.DueAt)
	}

	nineHours := t0.Add(9 * time.Hour)
	store.FixedNow = nineHours
	stored, err := store.GetDecision(context.Background(), testTenant, decision.DecisionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !stored.IsOverdue(nineHours) {
		t.Fatal("expected decision overdue at T0+9h")
	}

	escalated, err := uc.Escalate(context.Background(), EscalateDecisionCommand{
		TenantID:       testTenant,
		DecisionID:     decision.DecisionID,
		TargetPersonID: "person-b",
		Reason:         "sla breach",
	})
	if err != nil {
		t.Fatalf("escalate: %v", err)
	}
	if escalated.EscalationLevel != 1 || escalated.AssigneeID != "person-b" {
		t.Fatalf("unexpected escalation state %+v", escalated)
	}
	prev, _ := store.Stakeholder(testTenant, "person-a")
	if prev.DecisionsEscalated != 1 {
		t.Fatalf("expected previous assignee escalated counter 1, got %d", prev.DecisionsEscalated)
	}

	tenHours := t0.Add(10 * time.Hour)
	store.FixedNow = tenHours
	result, err := uc.Resolve(context.Background(), ResolveDecisionCommand{
		TenantID:    testTenant,
		DecisionID:  decision.DecisionID,
		DecidedByID: "person-b",
		Rationale:   "approved",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if result.Decision.Status != entities.StatusDecided || result.Decision.DecidedAt == nil {
		t.Fatalf("expected decided decision, got %+v", result.Decision)
	}

	assignee, _ := store.Stakeholder(testTenant, "person-b")
	if assignee.DecisionsCompleted != 1 {
		t.Fatalf("expected assignee completed 1, got %d", assignee.DecisionsCompleted)
	}
	if assignee.DecisionsPending != 0 {
		t.Fatalf("pending must floor at 0, got %d", assignee.DecisionsPending)
	}
	if assignee.AvgResponseTimeHours == nil || math.Abs(*assignee.AvgResponseTimeHours-10) > 1e-9 {
		t.Fatalf("expected avg response 10h, got %v", assignee.AvgResponseTimeHours)
	}
}

func TestTenantIsolation(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, _ := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{})

	_, err := uc.StartDiscussion(context.Background(), "other-tenant", decision.DecisionID)
	if !errors.Is(err, domainerrors.ErrDecisionNotFound) {
		t.Fatalf("cross-tenant lookup must fail as not found, got %v", err)
	}
}

type recordingPublisher struct {
	published []events.Envelope
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event events.Envelope) error {
	p.published = append(p.published, event)
	return nil
}

// failingCommitUoW runs the unit of work, then fails as if the commit
// itself had been rejected.
type failingCommitUoW struct {
	inner ports.UnitOfWork
}

func (u failingCommitUoW) Transact(ctx context.Context, fn func(tx ports.TxRepository) error) error {
	if err := u.inner.Transact(ctx, fn); err != nil {
		return err
	}
	return errors.New("commit rejected")
}

func TestStatusChangeEventWaitsForCommit(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	uc, store := newFixture(t, now)
	decision := mustCreate(t, uc, CreateDecisionCommand{})

	publisher := &recordingPublisher{}
	uc.Events = publisher

	uc.UoW = failingCommitUoW{inner: store}
	if _, err := uc.StartDiscussion(context.Background(), testTenant, decision.DecisionID); err == nil {
		t.Fatal("expected commit failure to surface")
	}
	for _, event := range publisher.published {
		if event.EventType == "decision.status_changed" {
			t.Fatalf("status_changed published despite failed commit: %+v", event)
		}
	}

	uc.UoW = store
	committed := mustCreate(t, uc, CreateDecisionCommand{})
	if _, err := uc.StartDiscussion(context.Background(), testTenant, committed.DecisionID); err != nil {
		t.Fatalf("start discussion: %v", err)
	}
	var changed int
	for _, event := range publisher.published {
		if event.EventType == "decision.status_changed" {
			changed++
		}
	}
	if changed != 1 {
		t.Fatalf("status_changed count = %d, want 1", changed)
	}
}
