package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	commenterrors "compass/contexts/decision-workflow/comment-service/domain/errors"
	commenthttp "compass/contexts/decision-workflow/comment-service/transport/http"
)

func writeCommentError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, commenthttp.ErrorResponse{Code: code, Message: message})
}

func writeCommentDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, commenterrors.ErrNotCommentAuthor):
		writeCommentError(w, http.StatusForbidden, "forbidden", err.Error())
	case errors.Is(err, commenterrors.ErrCommentNotFound),
		errors.Is(err, commenterrors.ErrDecisionNotFound),
		errors.Is(err, commenterrors.ErrParentNotFound):
		writeCommentError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, commenterrors.ErrNestedReply),
		errors.Is(err, commenterrors.ErrInvalidCommentInput):
		writeCommentError(w, http.StatusBadRequest, "invalid_request", err.Error())
	default:
		writeCommentError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func requireCommentActor(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	tenantID := resolveTenantID(r)
	if tenantID == "" {
		writeCommentError(w, http.StatusBadRequest, "missing_tenant", "X-Tenant-Id header is required")
		return "", "", false
	}
	actorID := resolveActorID(r)
	if actorID == "" {
		writeCommentError(w, http.StatusBadRequest, "missing_person", "X-Person-Id header is required")
		return "", "", false
	}
	return tenantID, actorID, true
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	tenantID, actorID, ok := requireCommentActor(w, r)
	if !ok {
		return
	}
	var req commenthttp.CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCommentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.comments.Handler.CreateCommentHandler(r.Context(), tenantID, r.PathValue("decision_id"), actorID, req)
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	tenantID := resolveTenantID(r)
	if tenantID == "" {
		writeCommentError(w, http.StatusBadRequest, "missing_tenant", "X-Tenant-Id header is required")
		return
	}
	resp, err := s.comments.Handler.ListThreadsHandler(r.Context(), tenantID, r.PathValue("decision_id"))
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleEditComment(w http.ResponseWriter, r *http.Request) {
	tenantID, actorID, ok := requireCommentActor(w, r)
	if !ok {
		return
	}
	var req commenthttp.EditCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeCommentError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := s.comments.Handler.EditCommentHandler(r.Context(), tenantID, r.PathValue("comment_id"), actorID, req)
	if err != nil {
		writeCommentDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	tenantID, actorID, ok := requireCommentActor(w, r)
	if !ok {
		return
	}
	if err := s.comments.Handler.DeleteCommentHandler(r.Context(), tenantID, r.PathValue("comment_id"), actorID); err != nil {
		writeCommentDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
