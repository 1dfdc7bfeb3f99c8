package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	commentservice "compass/contexts/decision-workflow/comment-service"
	decisionservice "compass/contexts/decision-workflow/decision-service"
	voteservice "compass/contexts/decision-workflow/vote-service"
	hypothesisservice "compass/contexts/experiment-tracking/hypothesis-service"
	stakeholderservice "compass/contexts/people-ops/stakeholder-service"

	httpSwagger "github.com/swaggo/http-swagger"
	_ "compass/internal/platform/httpserver/docs"
)

// Features toggles optional route groups at registration time. A
// disabled group is simply never routed and answers 404.
type Features struct {
	EscalationQueries  bool
	StakeholderBoards  bool
	DecisionDiscussion bool
}

// AllFeatures enables every optional route group.
func AllFeatures() Features {
	return Features{
		EscalationQueries:  true,
		StakeholderBoards:  true,
		DecisionDiscussion: true,
	}
}

type Server struct {
	mux          *http.ServeMux
	logger       *slog.Logger
	addr         string
	features     Features
	decisions    decisionservice.Module
	hypotheses   hypothesisservice.Module
	stakeholders stakeholderservice.Module
	votes        voteservice.Module
	comments     commentservice.Module
}

func New(
	decisions decisionservice.Module,
	hypotheses hypothesisservice.Module,
	stakeholders stakeholderservice.Module,
	votes voteservice.Module,
	comments commentservice.Module,
	logger *slog.Logger,
	addr string,
	features Features,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:          http.NewServeMux(),
		logger:       logger,
		addr:         addr,
		features:     features,
		decisions:    decisions,
		hypotheses:   hypotheses,
		stakeholders: stakeholders,
		votes:        votes,
		comments:     comments,
	}
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.mux)
}

// Handler exposes the routing table for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("POST /api/decisions/v1/decisions", s.handleCreateDecision)
	s.mux.HandleFunc("GET /api/decisions/v1/decisions/{decision_id}", s.handleGetDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/start-discussion", s.handleStartDiscussion)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/defer", s.handleDeferDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/cancel", s.handleCancelDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/reopen", s.handleReopenDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/implement", s.handleImplementDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/assign", s.handleAssignDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/reassign", s.handleReassignDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/escalate", s.handleEscalateDecision)
	s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/resolve", s.handleResolveDecision)
	s.mux.HandleFunc("GET /api/decisions/v1/queue", s.handleQueue)
	if s.features.EscalationQueries {
		s.mux.HandleFunc("GET /api/decisions/v1/queue/overdue", s.handleOverdue)
		s.mux.HandleFunc("GET /api/decisions/v1/queue/escalation-candidates", s.handleEscalationCandidates)
	}

	if s.features.DecisionDiscussion {
		s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/votes", s.handleCastVote)
		s.mux.HandleFunc("GET /api/decisions/v1/decisions/{decision_id}/votes", s.handleListVotes)
		s.mux.HandleFunc("GET /api/decisions/v1/decisions/{decision_id}/votes/summary", s.handleVoteSummary)

		s.mux.HandleFunc("POST /api/decisions/v1/decisions/{decision_id}/comments", s.handleCreateComment)
		s.mux.HandleFunc("GET /api/decisions/v1/decisions/{decision_id}/comments", s.handleListComments)
		s.mux.HandleFunc("PATCH /api/decisions/v1/comments/{comment_id}", s.handleEditComment)
		s.mux.HandleFunc("DELETE /api/decisions/v1/comments/{comment_id}", s.handleDeleteComment)
	}

	s.mux.HandleFunc("POST /api/experiments/v1/hypotheses", s.handleCreateHypothesis)
	s.mux.HandleFunc("GET /api/experiments/v1/hypotheses", s.handleListHypotheses)
	s.mux.HandleFunc("GET /api/experiments/v1/hypotheses/{hypothesis_id}", s.handleGetHypothesis)
	s.mux.HandleFunc("POST /api/experiments/v1/hypotheses/{hypothesis_id}/transition", s.handleTransitionHypothesis)
	s.mux.HandleFunc("POST /api/experiments/v1/hypotheses/{hypothesis_id}/block", s.handleBlockHypothesis)
	s.mux.HandleFunc("POST /api/experiments/v1/hypotheses/{hypothesis_id}/ready", s.handleReadyHypothesis)
	s.mux.HandleFunc("POST /api/experiments/v1/hypotheses/{hypothesis_id}/abandon", s.handleAbandonHypothesis)
	s.mux.HandleFunc("POST /api/experiments/v1/hypotheses/{hypothesis_id}/conclude", s.handleConcludeHypothesis)

	s.mux.HandleFunc("POST /api/stakeholders/v1/stakeholders", s.handleRegisterStakeholder)
	s.mux.HandleFunc("GET /api/stakeholders/v1/stakeholders/{person_id}", s.handleGetStakeholder)
	if s.features.StakeholderBoards {
		s.mux.HandleFunc("GET /api/stakeholders/v1/leaderboards/fastest", s.handleFastestResponders)
		s.mux.HandleFunc("GET /api/stakeholders/v1/leaderboards/most-active", s.handleMostActive)
		s.mux.HandleFunc("GET /api/stakeholders/v1/leaderboards/needing-attention", s.handleNeedingAttention)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func resolveTenantID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Tenant-Id"))
}

func resolveActorID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get("X-Person-Id"))
}

func resolveLimit(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return limit
}
