package entities

import (
	"time"

	"compass/internal/platform/workflow"
)

type Status string

const (
	StatusDraft       Status = "draft"
	StatusReady       Status = "ready"
	StatusBuilding    Status = "building"
	StatusDeployed    Status = "deployed"
	StatusMeasuring   Status = "measuring"
	StatusValidated   Status = "validated"
	StatusInvalidated Status = "invalidated"
	StatusBlocked     Status = "blocked"
	StatusAbandoned   Status = "abandoned"
)

// Transitions is the closed edge table for hypothesis statuses. BLOCKED
// is reachable from every active state and returns only to READY;
// VALIDATED, INVALIDATED and ABANDONED are terminal.
var Transitions = workflow.NewMachine("hypothesis", map[Status][]Status{
	StatusDraft:     {StatusReady, StatusAbandoned},
	StatusReady:     {StatusBuilding, StatusBlocked, StatusAbandoned},
	StatusBuilding:  {StatusDeployed, StatusBlocked, StatusAbandoned},
	StatusDeployed:  {StatusMeasuring, StatusBlocked, StatusAbandoned},
	StatusMeasuring: {StatusValidated, StatusInvalidated, StatusBlocked, StatusAbandoned},
	StatusBlocked:   {StatusReady, StatusAbandoned},
})

func IsConclusionTarget(status Status) bool {
	return status == StatusValidated || status == StatusInvalidated
}

type Hypothesis struct {
	HypothesisID string
	TenantID     string
	Title        string
	Description  string
	OwnerID      string
	OutcomeID    string

	Status Status
	// BlockedReason is set iff Status == BLOCKED; every exit from
	// BLOCKED clears it.
	BlockedReason string

	StartedAt          *time.Time
	DeployedAt         *time.Time
	MeasuringStartedAt *time.Time
	ConcludedAt        *time.Time

	ConcludedByID     string
	ConclusionNotes   string
	ExperimentResults map[string]any

	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Apply moves the hypothesis to target after the guard passes, stamping
// lifecycle timestamps and clearing the blocked reason on any exit from
// BLOCKED.
func (h *Hypothesis) Apply(target Status, now time.Time) error {
	if err := Transitions.Validate(h.Status, target); err != nil {
		return err
	}
	if h.Status == StatusBlocked {
		h.BlockedReason = ""
	}
	h.Status = target
	switch target {
	case StatusBuilding:
		h.StartedAt = &now
	case StatusDeployed:
		h.DeployedAt = &now
	case StatusMeasuring:
		h.MeasuringStartedAt = &now
	}
	h.UpdatedAt = now
	return nil
}
