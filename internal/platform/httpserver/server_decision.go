package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	decisionerrors "compass/contexts/decision-workflow/decision-service/domain/errors"
	decisionhttp "compass/contexts/decision-workflow/decision-service/transport/http"
	"compass/internal/platform/workflow"
)

func writeDecisionError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, decisionhttp.ErrorResponse{Code: code, Message: message})
}

func writeDecisionDomainError(w http.ResponseWriter, err error) {
	var transitionErr *workflow.TransitionError
	switch {
	case errors.As(err, &transitionErr):
		writeDecisionError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, decisionerrors.ErrDecisionNotFound),
		errors.Is(err, decisionerrors.ErrPersonNotFound),
		errors.Is(err, decisionerrors.ErrHypothesisNotFound):
		writeDecisionError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, decisionerrors.ErrDecisionConflict):
		writeDecisionError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, decisionerrors.ErrDecisionNotOpen):
		writeDecisionError(w, http.StatusConflict, "decision_not_open", err.Error())
	case errors.Is(err, decisionerrors.ErrRationaleRequired),
		errors.Is(err, decisionerrors.ErrReasonRequired),
		errors.Is(err, decisionerrors.ErrUnknownOption),
		errors.Is(err, decisionerrors.ErrInvalidDecisionInput):
		writeDecisionError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeDecisionError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := resolveTenantID(r)
	if tenantID == "" {
		writeDecisionError(w, http.StatusBadRequest, "missing_tenant", "X-Tenant-Id header is required")
		return "", false
	}
	return tenantID, true
}

func (s *Server) handleCreateDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	var req decisionhttp.CreateDecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecisionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.decisions.Handler.CreateDecisionHandler(r.Context(), tenantID, req)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.decisions.Handler.GetDecisionHandler(r.Context(), tenantID, r.PathValue("decision_id"))
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStartDiscussion(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.decisions.Handler.StartDiscussionHandler(r.Context(), tenantID, r.PathValue("decision_id"))
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeferDecision(w http.ResponseWriter, r *http.Request) {
	s.handleReasonedTransition(w, r, s.decisions.Handler.DeferDecisionHandler)
}

func (s *Server) handleCancelDecision(w http.ResponseWriter, r *http.Request) {
	s.handleReasonedTransition(w, r, s.decisions.Handler.CancelDecisionHandler)
}

func (s *Server) handleReasonedTransition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, tenantID string, decisionID string, req decisionhttp.ReasonRequest) (decisionhttp.DecisionResponse, error),
) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	var req decisionhttp.ReasonRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecisionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := apply(r.Context(), tenantID, r.PathValue("decision_id"), req)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReopenDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.decisions.Handler.ReopenDecisionHandler(r.Context(), tenantID, r.PathValue("decision_id"))
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleImplementDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.decisions.Handler.ImplementDecisionHandler(r.Context(), tenantID, r.PathValue("decision_id"))
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAssignDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	var req decisionhttp.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecisionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.decisions.Handler.AssignDecisionHandler(r.Context(), tenantID, r.PathValue("decision_id"), req)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReassignDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	var req decisionhttp.AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecisionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.decisions.Handler.ReassignDecisionHandler(r.Context(), tenantID, r.PathValue("decision_id"), req)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEscalateDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	var req decisionhttp.EscalateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecisionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.decisions.Handler.EscalateDecisionHandler(r.Context(), tenantID, r.PathValue("decision_id"), req)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResolveDecision(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	actorID := resolveActorID(r)
	if actorID == "" {
		writeDecisionError(w, http.StatusBadRequest, "missing_person", "X-Person-Id header is required")
		return
	}
	var req decisionhttp.ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeDecisionError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.decisions.Handler.ResolveDecisionHandler(r.Context(), tenantID, r.PathValue("decision_id"), actorID, req)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQueue(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.decisions.Handler.QueueHandler(r.Context(), tenantID)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOverdue(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.decisions.Handler.OverdueHandler(r.Context(), tenantID)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEscalationCandidates(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.decisions.Handler.EscalationCandidatesHandler(r.Context(), tenantID)
	if err != nil {
		writeDecisionDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
