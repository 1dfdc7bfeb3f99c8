package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	voteerrors "compass/contexts/decision-workflow/vote-service/domain/errors"
	votehttp "compass/contexts/decision-workflow/vote-service/transport/http"
)

func writeVoteError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, votehttp.ErrorResponse{Code: code, Message: message})
}

func writeVoteDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, voteerrors.ErrDecisionNotFound):
		writeVoteError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, voteerrors.ErrUnknownVoteOption),
		errors.Is(err, voteerrors.ErrInvalidVoteInput):
		writeVoteError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeVoteError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireVoteTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := resolveTenantID(r)
	if tenantID == "" {
		writeVoteError(w, http.StatusBadRequest, "missing_tenant", "X-Tenant-Id header is required")
		return "", false
	}
	return tenantID, true
}

func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireVoteTenant(w, r)
	if !ok {
		return
	}
	actorID := resolveActorID(r)
	if actorID == "" {
		writeVoteError(w, http.StatusBadRequest, "missing_person", "X-Person-Id header is required")
		return
	}
	var req votehttp.CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeVoteError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.votes.Handler.CastVoteHandler(r.Context(), tenantID, r.PathValue("decision_id"), actorID, req)
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListVotes(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireVoteTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.votes.Handler.ListVotesHandler(r.Context(), tenantID, r.PathValue("decision_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleVoteSummary(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireVoteTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.votes.Handler.SummaryHandler(r.Context(), tenantID, r.PathValue("decision_id"))
	if err != nil {
		writeVoteDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
