package http

// DTOs for the hypothesis-service HTTP surface.

type CreateHypothesisRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty"`
	OutcomeID   string `json:"outcome_id,omitempty"`
}

type TransitionRequest struct {
	Target string `json:"target"`
}

type BlockRequest struct {
	Reason string `json:"reason"`
}

type ConcludeRequest struct {
	Target            string         `json:"target"`
	ConclusionNotes   string         `json:"conclusion_notes,omitempty"`
	ExperimentResults map[string]any `json:"experiment_results,omitempty"`
}

type HypothesisResponse struct {
	HypothesisID       string         `json:"hypothesis_id"`
	TenantID           string         `json:"tenant_id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	OwnerID            string         `json:"owner_id,omitempty"`
	OutcomeID          string         `json:"outcome_id,omitempty"`
	Status             string         `json:"status"`
	BlockedReason      string         `json:"blocked_reason,omitempty"`
	StartedAt          string         `json:"started_at,omitempty"`
	DeployedAt         string         `json:"deployed_at,omitempty"`
	MeasuringStartedAt string         `json:"measuring_started_at,omitempty"`
	ConcludedAt        string         `json:"concluded_at,omitempty"`
	ConcludedByID      string         `json:"concluded_by_id,omitempty"`
	ConclusionNotes    string         `json:"conclusion_notes,omitempty"`
	ExperimentResults  map[string]any `json:"experiment_results,omitempty"`
	CreatedAt          string         `json:"created_at"`
	UpdatedAt          string         `json:"updated_at"`
}

type HypothesisListResponse struct {
	Items []HypothesisResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
