package http

// DTOs for the vote-service HTTP surface.

type CastVoteRequest struct {
	Vote    string `json:"vote"`
	Comment string `json:"comment,omitempty"`
}

type VoteResponse struct {
	VoteID     string `json:"vote_id"`
	TenantID   string `json:"tenant_id"`
	DecisionID string `json:"decision_id"`
	PersonID   string `json:"person_id"`
	Vote       string `json:"vote"`
	Comment    string `json:"comment,omitempty"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

type VoteListResponse struct {
	Items []VoteResponse `json:"items"`
}

type SummaryResponse struct {
	DecisionID string         `json:"decision_id"`
	Counts     map[string]int `json:"counts"`
	Total      int            `json:"total"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
