package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	hypothesiserrors "compass/contexts/experiment-tracking/hypothesis-service/domain/errors"
	hypothesishttp "compass/contexts/experiment-tracking/hypothesis-service/transport/http"
	"compass/internal/platform/workflow"
)

func writeHypothesisError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, hypothesishttp.ErrorResponse{Code: code, Message: message})
}

func writeHypothesisDomainError(w http.ResponseWriter, err error) {
	var transitionErr *workflow.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		writeHypothesisError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, hypothesiserrors.ErrHypothesisNotFound):
		writeHypothesisError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, hypothesiserrors.ErrHypothesisConflict):
		writeHypothesisError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, hypothesiserrors.ErrInvalidConclusionTarget):
		writeHypothesisError(w, http.StatusUnprocessableEntity, "invalid_conclusion_target", err.Error())
	case errors.Is(err, hypothesiserrors.ErrBlockedReasonRequired),
		errors.Is(err, hypothesiserrors.ErrInvalidHypothesisInput):
		writeHypothesisError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeHypothesisError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireHypothesisTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := resolveTenantID(r)
	if tenantID == "" {
		writeHypothesisError(w, http.StatusBadRequest, "missing_tenant", "X-Tenant-Id header is required")
		return "", false
	}
	return tenantID, true
}

func (s *Server) handleCreateHypothesis(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	var req hypothesishttp.CreateHypothesisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeHypothesisError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.hypotheses.Handler.CreateHypothesisHandler(r.Context(), tenantID, req)
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListHypotheses(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	outcomeID := strings.TrimSpace(r.URL.Query().Get("outcome_id"))
	resp, err := s.hypotheses.Handler.ListByOutcomeHandler(r.Context(), tenantID, outcomeID)
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetHypothesis(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.hypotheses.Handler.GetHypothesisHandler(r.Context(), tenantID, r.PathValue("hypothesis_id"))
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleTransitionHypothesis(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	var req hypothesishttp.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeHypothesisError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.hypotheses.Handler.TransitionHandler(r.Context(), tenantID, r.PathValue("hypothesis_id"), req)
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBlockHypothesis(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	var req hypothesishttp.BlockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeHypothesisError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.hypotheses.Handler.BlockHandler(r.Context(), tenantID, r.PathValue("hypothesis_id"), req)
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReadyHypothesis(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.hypotheses.Handler.UnblockHandler(r.Context(), tenantID, r.PathValue("hypothesis_id"))
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAbandonHypothesis(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.hypotheses.Handler.AbandonHandler(r.Context(), tenantID, r.PathValue("hypothesis_id"))
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleConcludeHypothesis(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireHypothesisTenant(w, r)
	if !ok {
		return
	}
	actorID := resolveActorID(r)
	if actorID == "" {
		writeHypothesisError(w, http.StatusBadRequest, "missing_person", "X-Person-Id header is required")
		return
	}
	var req hypothesishttp.ConcludeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeHypothesisError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.hypotheses.Handler.ConcludeHandler(r.Context(), tenantID, r.PathValue("hypothesis_id"), actorID, req)
	if err != nil {
		writeHypothesisDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
