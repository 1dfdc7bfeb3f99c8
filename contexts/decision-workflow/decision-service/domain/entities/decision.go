package entities

import (
	"time"

	"compass/internal/platform/workflow"
)

type Status string

const (
	StatusNeedsInput      Status = "needs_input"
	StatusUnderDiscussion Status = "under_discussion"
	StatusDecided         Status = "decided"
	StatusImplemented     Status = "implemented"
	StatusDeferred        Status = "deferred"
	StatusCancelled       Status = "cancelled"
)

type Priority string

const (
	PriorityBlocking Priority = "blocking"
	PriorityHigh     Priority = "high"
	PriorityNormal   Priority = "normal"
	PriorityLow      Priority = "low"
)

// Transitions is the closed edge table for decision statuses. Reopen is the
// only path out of DEFERRED/CANCELLED and always lands on NEEDS_INPUT.
var Transitions = workflow.NewMachine("decision", map[Status][]Status{
	StatusNeedsInput:      {StatusUnderDiscussion, StatusDecided, StatusDeferred, StatusCancelled},
	StatusUnderDiscussion: {StatusDecided, StatusDeferred, StatusCancelled},
	StatusDecided:         {StatusImplemented, StatusCancelled},
	StatusDeferred:        {StatusNeedsInput, StatusCancelled},
	StatusCancelled:       {StatusNeedsInput},
})

// slaHoursByPriority is the default SLA table applied when create carries
// no explicit override.
var slaHoursByPriority = map[Priority]int{
	PriorityBlocking: 4,
	PriorityHigh:     8,
	PriorityNormal:   24,
	PriorityLow:      72,
}

func IsValidPriority(priority Priority) bool {
	_, ok := slaHoursByPriority[priority]
	return ok
}

func DefaultSLAHours(priority Priority) int {
	return slaHoursByPriority[priority]
}

// PriorityRank orders priorities for queue views, most urgent first.
func PriorityRank(priority Priority) int {
	switch priority {
	case PriorityBlocking:
		return 0
	case PriorityHigh:
		return 1
	case PriorityNormal:
		return 2
	case PriorityLow:
		return 3
	default:
		return 4
	}
}

// Option is one labeled choice a decision can be resolved to. Opaque until
// resolution selects one by id.
type Option struct {
	OptionID string
	Label    string
}

// BlockedItem references an entity gated by this decision. ItemType is
// "hypothesis" today; resolution ignores types it does not know.
type BlockedItem struct {
	ItemType string
	ItemID   string
}

const BlockedItemTypeHypothesis = "hypothesis"

type Decision struct {
	DecisionID  string
	TenantID    string
	Title       string
	Description string
	Context     string
	Options     []Option

	Status   Status
	Priority Priority
	Type     string

	OwnerID       string
	AssigneeID    string
	EscalatedToID string
	DecidedByID   string

	OutcomeID    string
	HypothesisID string
	TeamID       string

	SLAHours        int
	DueAt           *time.Time
	EscalationLevel int
	EscalatedAt     *time.Time

	DecidedAt         *time.Time
	DecisionRationale string
	SelectedOption    string

	BlockedItems []BlockedItem
	ExternalRefs map[string]string
	Tags         []string

	// Version backs the per-row optimistic concurrency check; every
	// persisted write must match and bump it.
	Version int64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOverdue reports SLA breach. DEFERRED decisions with a past deadline
// still count as overdue; only resolution-side statuses are excluded.
func (d Decision) IsOverdue(now time.Time) bool {
	if d.DueAt == nil {
		return false
	}
	switch d.Status {
	case StatusDecided, StatusImplemented, StatusCancelled:
		return false
	}
	return now.After(*d.DueAt)
}

// WaitTimeHours is the elapsed open time in fractional hours.
func (d Decision) WaitTimeHours(now time.Time) float64 {
	if d.CreatedAt.IsZero() {
		return 0
	}
	return now.Sub(d.CreatedAt).Hours()
}

// Open reports whether the decision still accepts input.
func (d Decision) Open() bool {
	return d.Status == StatusNeedsInput || d.Status == StatusUnderDiscussion
}

// HasOption reports whether optionID names one of the declared choices.
// Decisions without declared options accept any selected option label.
func (d Decision) HasOption(optionID string) bool {
	if len(d.Options) == 0 {
		return true
	}
	for _, option := range d.Options {
		if option.OptionID == optionID {
			return true
		}
	}
	return false
}
