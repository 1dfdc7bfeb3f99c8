package http

// DTOs for the decision-service HTTP surface. Transport shapes only; the
// application layer owns validation.

type OptionPayload struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type BlockedItemPayload struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type CreateDecisionRequest struct {
	Title        string               `json:"title"`
	Description  string               `json:"description,omitempty"`
	Context      string               `json:"context,omitempty"`
	Type         string               `json:"type,omitempty"`
	Priority     string               `json:"priority"`
	SLAHours     int                  `json:"sla_hours,omitempty"`
	OwnerID      string               `json:"owner_id,omitempty"`
	AssigneeID   string               `json:"assignee_id,omitempty"`
	Options      []OptionPayload      `json:"options,omitempty"`
	BlockedItems []BlockedItemPayload `json:"blocked_items,omitempty"`
	OutcomeID    string               `json:"outcome_id,omitempty"`
	HypothesisID string               `json:"hypothesis_id,omitempty"`
	TeamID       string               `json:"team_id,omitempty"`
	ExternalRefs map[string]string    `json:"external_refs,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
}

type ReasonRequest struct {
	Reason string `json:"reason"`
}

type AssignRequest struct {
	PersonID string `json:"person_id"`
	Reason   string `json:"reason,omitempty"`
}

type EscalateRequest struct {
	TargetPersonID string `json:"target_person_id"`
	Reason         string `json:"reason,omitempty"`
}

type ResolveRequest struct {
	Rationale      string `json:"rationale"`
	SelectedOption string `json:"selected_option,omitempty"`
}

type DecisionResponse struct {
	DecisionID        string               `json:"decision_id"`
	TenantID          string               `json:"tenant_id"`
	Title             string               `json:"title"`
	Description       string               `json:"description,omitempty"`
	Context           string               `json:"context,omitempty"`
	Options           []OptionPayload      `json:"options,omitempty"`
	Status            string               `json:"status"`
	Priority          string               `json:"priority"`
	Type              string               `json:"type,omitempty"`
	OwnerID           string               `json:"owner_id,omitempty"`
	AssigneeID        string               `json:"assignee_id,omitempty"`
	EscalatedToID     string               `json:"escalated_to_id,omitempty"`
	DecidedByID       string               `json:"decided_by_id,omitempty"`
	SLAHours          int                  `json:"sla_hours"`
	DueAt             string               `json:"due_at,omitempty"`
	EscalationLevel   int                  `json:"escalation_level"`
	EscalatedAt       string               `json:"escalated_at,omitempty"`
	DecidedAt         string               `json:"decided_at,omitempty"`
	DecisionRationale string               `json:"decision_rationale,omitempty"`
	SelectedOption    string               `json:"selected_option,omitempty"`
	BlockedItems      []BlockedItemPayload `json:"blocked_items,omitempty"`
	ExternalRefs      map[string]string    `json:"external_refs,omitempty"`
	Tags              []string             `json:"tags,omitempty"`
	Overdue           bool                 `json:"overdue"`
	WaitTimeHours     float64              `json:"wait_time_hours"`
	CreatedAt         string               `json:"created_at"`
	UpdatedAt         string               `json:"updated_at"`
}

type ResolveResponse struct {
	Decision               DecisionResponse `json:"decision"`
	UnblockedHypothesisIDs []string         `json:"unblocked_hypothesis_ids"`
	CycleTimeHours         float64          `json:"cycle_time_hours"`
}

type QueueResponse struct {
	Items []DecisionResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
