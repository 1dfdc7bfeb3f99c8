package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"compass/contexts/people-ops/stakeholder-service/domain/entities"
	domainerrors "compass/contexts/people-ops/stakeholder-service/domain/errors"
	"compass/contexts/people-ops/stakeholder-service/ports"
)

const (
	defaultBoardLimit = 50
	maxBoardLimit     = 100
)

type RegisterStakeholderInput struct {
	TenantID    string
	PersonID    string
	DisplayName string
	Role        string
}

type Service struct {
	Repo   ports.Repository
	Clock  ports.Clock
	Logger *slog.Logger
}

func (s Service) Register(ctx context.Context, input RegisterStakeholderInput) (entities.Stakeholder, error) {
	tenantID := strings.TrimSpace(input.TenantID)
	personID := strings.TrimSpace(input.PersonID)
	if tenantID == "" || personID == "" {
		return entities.Stakeholder{}, domainerrors.ErrInvalidStakeholderInput
	}

	now := s.now()
	stakeholder := entities.Stakeholder{
		PersonID:    personID,
		TenantID:    tenantID,
		DisplayName: strings.TrimSpace(input.DisplayName),
		Role:        strings.TrimSpace(input.Role),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.InsertStakeholder(ctx, stakeholder); err != nil {
		return entities.Stakeholder{}, err
	}
	resolveLogger(s.Logger).Info("stakeholder registered",
		"event", "stakeholder_registered",
		"module", "people-ops/stakeholder-service",
		"layer", "application",
		"tenant_id", tenantID,
		"person_id", personID,
	)
	return stakeholder, nil
}

func (s Service) Get(ctx context.Context, tenantID string, personID string) (entities.Stakeholder, error) {
	tenantID = strings.TrimSpace(tenantID)
	personID = strings.TrimSpace(personID)
	if tenantID == "" || personID == "" {
		return entities.Stakeholder{}, domainerrors.ErrInvalidStakeholderInput
	}
	return s.Repo.GetStakeholder(ctx, tenantID, personID)
}

// OnAssigned, OnCompleted and OnEscalated are the decision lifecycle
// callbacks. The counter arithmetic lives in the repository so the
// mutation is a single atomic expression per call.

func (s Service) OnAssigned(ctx context.Context, tenantID string, personID string) error {
	return s.Repo.RecordAssignment(ctx, strings.TrimSpace(tenantID), strings.TrimSpace(personID))
}

func (s Service) OnCompleted(ctx context.Context, tenantID string, personID string, decidedAt time.Time, responseTimeHours float64) error {
	return s.Repo.RecordCompletion(ctx, strings.TrimSpace(tenantID), strings.TrimSpace(personID), decidedAt, responseTimeHours)
}

func (s Service) OnEscalated(ctx context.Context, tenantID string, personID string) error {
	return s.Repo.RecordEscalation(ctx, strings.TrimSpace(tenantID), strings.TrimSpace(personID))
}

// FastestResponders orders completed responders by mean response time
// ascending; stakeholders with no completions are excluded.
func (s Service) FastestResponders(ctx context.Context, tenantID string, limit int) ([]entities.Stakeholder, error) {
	stakeholders, err := s.Repo.ListStakeholders(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return nil, err
	}
	ranked := make([]entities.Stakeholder, 0, len(stakeholders))
	for _, stakeholder := range stakeholders {
		if stakeholder.AvgResponseTimeHours != nil {
			ranked = append(ranked, stakeholder)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return *ranked[i].AvgResponseTimeHours < *ranked[j].AvgResponseTimeHours
	})
	return clampBoard(ranked, limit), nil
}

// MostActive orders by completed count descending.
func (s Service) MostActive(ctx context.Context, tenantID string, limit int) ([]entities.Stakeholder, error) {
	stakeholders, err := s.Repo.ListStakeholders(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(stakeholders, func(i, j int) bool {
		return stakeholders[i].DecisionsCompleted > stakeholders[j].DecisionsCompleted
	})
	return clampBoard(stakeholders, limit), nil
}

// NeedingAttention surfaces the heaviest open workload: pending count
// descending, escalated count as tie-breaker.
func (s Service) NeedingAttention(ctx context.Context, tenantID string, limit int) ([]entities.Stakeholder, error) {
	stakeholders, err := s.Repo.ListStakeholders(ctx, strings.TrimSpace(tenantID))
	if err != nil {
		return nil, err
	}
	loaded := make([]entities.Stakeholder, 0, len(stakeholders))
	for _, stakeholder := range stakeholders {
		if stakeholder.DecisionsPending > 0 || stakeholder.DecisionsEscalated > 0 {
			loaded = append(loaded, stakeholder)
		}
	}
	sort.SliceStable(loaded, func(i, j int) bool {
		if loaded[i].DecisionsPending != loaded[j].DecisionsPending {
			return loaded[i].DecisionsPending > loaded[j].DecisionsPending
		}
		return loaded[i].DecisionsEscalated > loaded[j].DecisionsEscalated
	})
	return clampBoard(loaded, limit), nil
}

func clampBoard(stakeholders []entities.Stakeholder, limit int) []entities.Stakeholder {
	if limit <= 0 {
		limit = defaultBoardLimit
	}
	if limit > maxBoardLimit {
		limit = maxBoardLimit
	}
	if len(stakeholders) > limit {
		stakeholders = stakeholders[:limit]
	}
	return stakeholders
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
