package queries

import (
	"context"
	"sort"
	"strings"
	"time"

	"compass/contexts/decision-workflow/decision-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/decision-service/domain/errors"
	"compass/contexts/decision-workflow/decision-service/ports"
)

// openStatuses is the queue-side status filter: only decisions still
// accepting input appear in queue and overdue views.
var openStatuses = []entities.Status{
	entities.StatusNeedsInput,
	entities.StatusUnderDiscussion,
}

// QueueUseCase serves the pure read-side views over decision snapshots:
// priority queue ordering, overdue detection and escalation candidates.
type QueueUseCase struct {
	Repo  ports.ReadRepository
	Clock ports.Clock
}

func (uc QueueUseCase) GetDecision(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	tenantID = strings.TrimSpace(tenantID)
	decisionID = strings.TrimSpace(decisionID)
	if tenantID == "" || decisionID == "" {
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}
	return uc.Repo.GetDecision(ctx, tenantID, decisionID)
}

// PendingQueue returns open decisions ordered by priority rank, FIFO
// within a tier.
func (uc QueueUseCase) PendingQueue(ctx context.Context, tenantID string) ([]entities.Decision, error) {
	decisions, err := uc.listOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	sortQueue(decisions)
	return decisions, nil
}

// Overdue returns open decisions whose SLA deadline has passed, in queue
// order.
func (uc QueueUseCase) Overdue(ctx context.Context, tenantID string) ([]entities.Decision, error) {
	decisions, err := uc.listOpen(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	overdue := decisions[:0]
	for _, decision := range decisions {
		if decision.DueAt != nil && now.After(*decision.DueAt) {
			overdue = append(overdue, decision)
		}
	}
	sortQueue(overdue)
	return overdue, nil
}

// EscalationCandidates returns overdue decisions that have never been
// escalated. Automatic escalation only ever fires once; later escalations
// are manual.
func (uc QueueUseCase) EscalationCandidates(ctx context.Context, tenantID string) ([]entities.Decision, error) {
	overdue, err := uc.Overdue(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	candidates := overdue[:0]
	for _, decision := range overdue {
		if decision.EscalationLevel == 0 {
			candidates = append(candidates, decision)
		}
	}
	return candidates, nil
}

func (uc QueueUseCase) listOpen(ctx context.Context, tenantID string) ([]entities.Decision, error) {
	tenantID = strings.TrimSpace(tenantID)
	if tenantID == "" {
		return nil, domainerrors.ErrInvalidDecisionInput
	}
	return uc.Repo.ListDecisionsByStatus(ctx, tenantID, openStatuses)
}

func (uc QueueUseCase) now() time.Time {
	if uc.Clock != nil {
		return uc.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func sortQueue(decisions []entities.Decision) {
	sort.SliceStable(decisions, func(i, j int) bool {
		ri := entities.PriorityRank(decisions[i].Priority)
		rj := entities.PriorityRank(decisions[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return decisions[i].CreatedAt.Before(decisions[j].CreatedAt)
	})
}
