package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	stakeholdererrors "compass/contexts/people-ops/stakeholder-service/domain/errors"
	stakeholderhttp "compass/contexts/people-ops/stakeholder-service/transport/http"
)

func writeStakeholderError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, stakeholderhttp.ErrorResponse{Code: code, Message: message})
}

func writeStakeholderDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, stakeholdererrors.ErrStakeholderNotFound):
		writeStakeholderError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, stakeholdererrors.ErrStakeholderExists):
		writeStakeholderError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, stakeholdererrors.ErrInvalidStakeholderInput):
		writeStakeholderError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeStakeholderError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireStakeholderTenant(w http.ResponseWriter, r *http.Request) (string, bool) {
	tenantID := resolveTenantID(r)
	if tenantID == "" {
		writeStakeholderError(w, http.StatusBadRequest, "missing_tenant", "X-Tenant-Id header is required")
		return "", false
	}
	return tenantID, true
}

func (s *Server) handleRegisterStakeholder(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireStakeholderTenant(w, r)
	if !ok {
		return
	}
	var req stakeholderhttp.RegisterStakeholderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeStakeholderError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.stakeholders.Handler.RegisterStakeholderHandler(r.Context(), tenantID, req)
	if err != nil {
		writeStakeholderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetStakeholder(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireStakeholderTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.stakeholders.Handler.GetStakeholderHandler(r.Context(), tenantID, r.PathValue("person_id"))
	if err != nil {
		writeStakeholderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleFastestResponders(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireStakeholderTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.stakeholders.Handler.FastestRespondersHandler(r.Context(), tenantID, resolveLimit(r))
	if err != nil {
		writeStakeholderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMostActive(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireStakeholderTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.stakeholders.Handler.MostActiveHandler(r.Context(), tenantID, resolveLimit(r))
	if err != nil {
		writeStakeholderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleNeedingAttention(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := requireStakeholderTenant(w, r)
	if !ok {
		return
	}
	resp, err := s.stakeholders.Handler.NeedingAttentionHandler(r.Context(), tenantID, resolveLimit(r))
	if err != nil {
		writeStakeholderDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
