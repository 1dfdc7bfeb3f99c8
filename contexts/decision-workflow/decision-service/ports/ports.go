package ports

import (
	"context"
	"time"

	"compass/contexts/decision-workflow/decision-service/domain/entities"
	"compass/internal/shared/events"
)

// Person is the directory projection consumed for assignee/decider
// validation. The directory is tenant-scoped; a mismatched tenant is the
// same as absent.
type Person struct {
	PersonID    string
	TenantID    string
	DisplayName string
	Email       string
}

type PersonDirectory interface {
	GetPerson(ctx context.Context, tenantID string, personID string) (Person, error)
}

// HypothesisSnapshot is the minimal cross-module projection the resolve
// cascade needs before deciding to unblock.
type HypothesisSnapshot struct {
	HypothesisID  string
	TenantID      string
	Status        string
	BlockedReason string
}

// HypothesisStatusBlocked mirrors the blocked status value owned by the
// experiment-tracking context.
const HypothesisStatusBlocked = "blocked"

// StakeholderSnapshot is the read projection of a person's performance row.
type StakeholderSnapshot struct {
	PersonID             string
	TenantID             string
	DecisionsPending     int
	DecisionsCompleted   int
	DecisionsEscalated   int
	AvgResponseTimeHours *float64
	LastDecisionAt       *time.Time
}

// TxRepository is the storage surface available inside one unit of work.
// Decision writes carry the optimistic version check; the stakeholder
// mutations are single storage-level expressions, never read-then-write.
type TxRepository interface {
	GetDecision(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error)
	InsertDecision(ctx context.Context, decision entities.Decision) error
	// UpdateDecision persists decision with Version already bumped by the
	// caller; it must fail with ErrDecisionConflict when the stored row no
	// longer matches Version-1.
	UpdateDecision(ctx context.Context, decision entities.Decision) error

	GetHypothesisSnapshot(ctx context.Context, tenantID string, hypothesisID string) (HypothesisSnapshot, error)
	// MarkHypothesisReady transitions BLOCKED -> READY and clears the
	// blocked reason. It reports false without error when the hypothesis
	// was not blocked at write time.
	MarkHypothesisReady(ctx context.Context, tenantID string, hypothesisID string) (bool, error)

	GetStakeholderByPerson(ctx context.Context, tenantID string, personID string) (StakeholderSnapshot, bool, error)
	// ApplyStakeholderAssignment increments the pending counter. False
	// means no stakeholder row exists for the person.
	ApplyStakeholderAssignment(ctx context.Context, tenantID string, personID string) (bool, error)
	// ApplyStakeholderCompletion decrements pending (floored at zero),
	// increments completed, stamps lastDecisionAt and folds
	// responseTimeHours into the running mean, all as one atomic
	// storage-level update.
	ApplyStakeholderCompletion(ctx context.Context, tenantID string, personID string, decidedAt time.Time, responseTimeHours float64) (bool, error)
	// ApplyStakeholderEscalation increments the escalated counter only;
	// the decision stays pending for the previous assignee.
	ApplyStakeholderEscalation(ctx context.Context, tenantID string, personID string) (bool, error)
}

// UnitOfWork runs fn against a transactional repository; everything fn
// touches commits together or not at all.
type UnitOfWork interface {
	Transact(ctx context.Context, fn func(tx TxRepository) error) error
}

// ReadRepository serves the queue-side snapshot reads.
type ReadRepository interface {
	GetDecision(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error)
	ListDecisionsByStatus(ctx context.Context, tenantID string, statuses []entities.Status) ([]entities.Decision, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// EventPublisher is the best-effort notification boundary. Publish errors
// are logged and dropped by callers; delivery is at-most-once.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event events.Envelope) error
}
