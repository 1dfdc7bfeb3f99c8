package ports

import (
	"context"
	"time"

	"compass/contexts/people-ops/stakeholder-service/domain/entities"
)

// Repository owns the stakeholders table. The counter mutations are
// atomic at the storage layer: RecordCompletion in particular must fold
// the response time into the running mean as one read-modify-write
// expression, never as separate read and write steps.
type Repository interface {
	GetStakeholder(ctx context.Context, tenantID string, personID string) (entities.Stakeholder, error)
	InsertStakeholder(ctx context.Context, stakeholder entities.Stakeholder) error
	ListStakeholders(ctx context.Context, tenantID string) ([]entities.Stakeholder, error)

	RecordAssignment(ctx context.Context, tenantID string, personID string) error
	RecordCompletion(ctx context.Context, tenantID string, personID string, decidedAt time.Time, responseTimeHours float64) error
	RecordEscalation(ctx context.Context, tenantID string, personID string) error
}

type Clock interface {
	Now() time.Time
}
