package http

// DTOs for the stakeholder-service HTTP surface.

type RegisterStakeholderRequest struct {
	PersonID    string `json:"person_id"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role,omitempty"`
}

type StakeholderResponse struct {
	PersonID             string   `json:"person_id"`
	TenantID             string   `json:"tenant_id"`
	DisplayName          string   `json:"display_name,omitempty"`
	Role                 string   `json:"role,omitempty"`
	DecisionsPending     int      `json:"decisions_pending"`
	DecisionsCompleted   int      `json:"decisions_completed"`
	DecisionsEscalated   int      `json:"decisions_escalated"`
	AvgResponseTimeHours *float64 `json:"avg_response_time_hours,omitempty"`
	LastDecisionAt       string   `json:"last_decision_at,omitempty"`
	CreatedAt            string   `json:"created_at"`
	UpdatedAt            string   `json:"updated_at"`
}

type LeaderboardResponse struct {
	Items []StakeholderResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
