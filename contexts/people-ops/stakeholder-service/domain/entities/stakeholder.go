package entities

import "time"

type Stakeholder struct {
	PersonID    string
	TenantID    string
	DisplayName string
	Role        string

	DecisionsPending   int
	DecisionsCompleted int
	DecisionsEscalated int

	// AvgResponseTimeHours is nil until the first completion.
	AvgResponseTimeHours *float64
	LastDecisionAt       *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
