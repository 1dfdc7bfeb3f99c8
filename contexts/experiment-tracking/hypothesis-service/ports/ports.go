package ports

import (
	"context"
	"time"

	"compass/contexts/experiment-tracking/hypothesis-service/domain/entities"
	"compass/internal/shared/events"
)

type Repository interface {
	GetHypothesis(ctx context.Context, tenantID string, hypothesisID string) (entities.Hypothesis, error)
	InsertHypothesis(ctx context.Context, hypothesis entities.Hypothesis) error
	// UpdateHypothesis persists hypothesis with Version already bumped by
	// the caller; it must fail with ErrHypothesisConflict when the stored
	// row no longer matches Version-1.
	UpdateHypothesis(ctx context.Context, hypothesis entities.Hypothesis) error
	ListHypothesesByOutcome(ctx context.Context, tenantID string, outcomeID string) ([]entities.Hypothesis, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventPublisher is the best-effort notification boundary shared with the
// decision workflow.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
