package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/experiment-tracking/hypothesis-service/domain/entities"
	domainerrors "compass/contexts/experiment-tracking/hypothesis-service/domain/errors"
	"compass/contexts/experiment-tracking/hypothesis-service/ports"
	"compass/internal/platform/workflow"
	"compass/internal/shared/events"
)

const eventTopic = "experiment-tracking"

// CreateHypothesisInput is the write-model input for hypothesis creation.
type CreateHypothesisInput struct {
	TenantID    string
	Title       string
	Description string
	OwnerID     string
	OutcomeID   string
}

// ConcludeHypothesisInput carries the terminal conclusion.
type ConcludeHypothesisInput struct {
	TenantID          string
	HypothesisID      string
	Target            entities.Status
	ConcludedByID     string
	ConclusionNotes   string
	ExperimentResults map[string]any
}

// Service orchestrates the hypothesis lifecycle: guarded transitions,
// blocking with reasons, the cascade-facing unblock and conclusion.
type Service struct {
	Repo   ports.Repository
	Events ports.EventPublisher
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Logger *slog.Logger
}

func (s Service) Create(ctx context.Context, input CreateHypothesisInput) (entities.Hypothesis, error) {
	tenantID := strings.TrimSpace(input.TenantID)
	title := strings.TrimSpace(input.Title)
	if tenantID == "" || title == "" {
		return entities.Hypothesis{}, domainerrors.ErrInvalidHypothesisInput
	}

	now := s.now()
	hypothesisID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Hypothesis{}, err
	}
	hypothesis := entities.Hypothesis{
		HypothesisID: hypothesisID,
		TenantID:     tenantID,
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		OwnerID:      strings.TrimSpace(input.OwnerID),
		OutcomeID:    strings.TrimSpace(input.OutcomeID),
		Status:       entities.StatusDraft,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.InsertHypothesis(ctx, hypothesis); err != nil {
		return entities.Hypothesis{}, err
	}

	s.publish(ctx, "hypothesis.created", hypothesis.HypothesisID, map[string]any{
		"hypothesis_id": hypothesis.HypothesisID,
		"tenant_id":     hypothesis.TenantID,
		"outcome_id":    hypothesis.OutcomeID,
	})
	resolveLogger(s.Logger).Info("hypothesis created",
		"event", "hypothesis_created",
		"module", "experiment-tracking/hypothesis-service",
		"layer", "application",
		"tenant_id", tenantID,
		"hypothesis_id", hypothesis.HypothesisID,
	)
	return hypothesis, nil
}

func (s Service) Get(ctx context.Context, tenantID string, hypothesisID string) (entities.Hypothesis, error) {
	tenantID = strings.TrimSpace(tenantID)
	hypothesisID = strings.TrimSpace(hypothesisID)
	if tenantID == "" || hypothesisID == "" {
		return entities.Hypothesis{}, domainerrors.ErrInvalidHypothesisInput
	}
	return s.Repo.GetHypothesis(ctx, tenantID, hypothesisID)
}

func (s Service) ListByOutcome(ctx context.Context, tenantID string, outcomeID string) ([]entities.Hypothesis, error) {
	tenantID = strings.TrimSpace(tenantID)
	outcomeID = strings.TrimSpace(outcomeID)
	if tenantID == "" || outcomeID == "" {
		return nil, domainerrors.ErrInvalidHypothesisInput
	}
	return s.Repo.ListHypothesesByOutcome(ctx, tenantID, outcomeID)
}

// Transition performs a guarded move to an active lifecycle state.
// BLOCKED and the conclusion targets have dedicated operations carrying
// their required inputs.
func (s Service) Transition(ctx context.Context, tenantID string, hypothesisID string, target entities.Status) (entities.Hypothesis, error) {
	switch target {
	case entities.StatusBlocked:
		return entities.Hypothesis{}, domainerrors.ErrBlockedReasonRequired
	case entities.StatusValidated, entities.StatusInvalidated:
		return entities.Hypothesis{}, domainerrors.ErrInvalidHypothesisInput
	}
	return s.apply(ctx, tenantID, hypothesisID, target, "", nil)
}

// Block gates the hypothesis, recording why.
func (s Service) Block(ctx context.Context, tenantID string, hypothesisID string, reason string) (entities.Hypothesis, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return entities.Hypothesis{}, domainerrors.ErrBlockedReasonRequired
	}
	return s.apply(ctx, tenantID, hypothesisID, entities.StatusBlocked, "", func(h *entities.Hypothesis) {
		h.BlockedReason = reason
	})
}

// SetReady is the cascade-facing unblock: only valid from BLOCKED, and
// always clears the blocked reason. Draft promotion goes through
// Transition, never through here.
func (s Service) SetReady(ctx context.Context, tenantID string, hypothesisID string) (entities.Hypothesis, error) {
	return s.apply(ctx, tenantID, hypothesisID, entities.StatusReady, entities.StatusBlocked, nil)
}

// Abandon terminates the hypothesis from any non-terminal state.
func (s Service) Abandon(ctx context.Context, tenantID string, hypothesisID string) (entities.Hypothesis, error) {
	return s.apply(ctx, tenantID, hypothesisID, entities.StatusAbandoned, "", nil)
}

// Conclude records the terminal outcome with notes and experiment
// results. The target itself must satisfy the transition guard.
func (s Service) Conclude(ctx context.Context, input ConcludeHypothesisInput) (entities.Hypothesis, error) {
	if !entities.IsConclusionTarget(input.Target) {
		return entities.Hypothesis{}, domainerrors.ErrInvalidConclusionTarget
	}
	concludedBy := strings.TrimSpace(input.ConcludedByID)
	if concludedBy == "" {
		return entities.Hypothesis{}, domainerrors.ErrInvalidHypothesisInput
	}
	now := s.now()
	return s.apply(ctx, input.TenantID, input.HypothesisID, input.Target, "", func(h *entities.Hypothesis) {
		h.ConcludedAt = &now
		h.ConcludedByID = concludedBy
		h.ConclusionNotes = strings.TrimSpace(input.ConclusionNotes)
		h.ExperimentResults = input.ExperimentResults
	})
}

// apply loads, guards and persists one status change. A non-empty
// requireFrom narrows the operation to a single source status beyond
// what the edge table allows.
func (s Service) apply(
	ctx context.Context,
	tenantID string,
	hypothesisID string,
	target entities.Status,
	requireFrom entities.Status,
	mutate func(*entities.Hypothesis),
) (entities.Hypothesis, error) {
	tenantID = strings.TrimSpace(tenantID)
	hypothesisID = strings.TrimSpace(hypothesisID)
	if tenantID == "" || hypothesisID == "" {
		return entities.Hypothesis{}, domainerrors.ErrInvalidHypothesisInput
	}

	hypothesis, err := s.Repo.GetHypothesis(ctx, tenantID, hypothesisID)
	if err != nil {
		return entities.Hypothesis{}, err
	}
	if requireFrom != "" && hypothesis.Status != requireFrom {
		return entities.Hypothesis{}, &workflow.TransitionError{
			Entity: "hypothesis",
			From:   string(hypothesis.Status),
			To:     string(target),
		}
	}
	previous := hypothesis.Status
	now := s.now()
	if err := hypothesis.Apply(target, now); err != nil {
		return entities.Hypothesis{}, err
	}
	if mutate != nil {
		mutate(&hypothesis)
	}
	hypothesis.Version++
	if err := s.Repo.UpdateHypothesis(ctx, hypothesis); err != nil {
		return entities.Hypothesis{}, err
	}

	s.publish(ctx, "hypothesis.status_changed", hypothesis.HypothesisID, map[string]any{
		"hypothesis_id": hypothesis.HypothesisID,
		"tenant_id":     hypothesis.TenantID,
		"from":          string(previous),
		"to":            string(target),
	})
	resolveLogger(s.Logger).Info("hypothesis status changed",
		"event", "hypothesis_status_changed",
		"module", "experiment-tracking/hypothesis-service",
		"layer", "application",
		"tenant_id", tenantID,
		"hypothesis_id", hypothesisID,
		"from", string(previous),
		"to", string(target),
	)
	return hypothesis, nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

// publish is best-effort: failures are logged and dropped.
func (s Service) publish(ctx context.Context, eventType string, key string, payload map[string]any) {
	if s.Events == nil {
		return
	}
	logger := resolveLogger(s.Logger)
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("event id generation failed; event dropped",
			"event", "hypothesis_event_dropped",
			"module", "experiment-tracking/hypothesis-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	envelope := events.Envelope{
		EventID:    eventID,
		EventType:  eventType,
		Key:        key,
		OccurredAt: s.now(),
		Payload:    payload,
	}
	if err := s.Events.Publish(ctx, eventTopic, envelope); err != nil {
		logger.Warn("event publish failed; event dropped",
			"event", "hypothesis_event_dropped",
			"module", "experiment-tracking/hypothesis-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
