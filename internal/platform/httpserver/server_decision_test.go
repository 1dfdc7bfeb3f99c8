package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	commentservice "compass/contexts/decision-workflow/comment-service"
	decisionservice "compass/contexts/decision-workflow/decision-service"
	voteservice "compass/contexts/decision-workflow/vote-service"
	hypothesisservice "compass/contexts/experiment-tracking/hypothesis-service"
	stakeholderservice "compass/contexts/people-ops/stakeholder-service"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return newTestServerWithFeatures(t, AllFeatures())
}

func newTestServerWithFeatures(t *testing.T, features Features) *Server {
	t.Helper()
	decisions := decisionservice.NewInMemoryModule(nil, nil, nil)
	hypotheses := hypothesisservice.NewInMemoryModule(nil, nil)
	stakeholders := stakeholderservice.NewInMemoryModule(nil)
	votes := voteservice.NewInMemoryModule(nil)
	comments := commentservice.NewInMemoryModule(nil)
	return New(decisions, hypotheses, stakeholders, votes, comments, nil, "", features)
}

func TestCreateDecisionRequiresTenantHeader(t *testing.T) {
	server := newTestServer(t)

	body := strings.NewReader(`{"title":"pick a vendor","priority":"normal"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/decisions/v1/decisions", body)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestDecisionCreateAndGetRoundTrip(t *testing.T) {
	server := newTestServer(t)

	body := strings.NewReader(`{"title":"pick a vendor","priority":"normal"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/decisions/v1/decisions", body)
	req.Header.Set("X-Tenant-Id", "tenant-1")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, want %d: %s", rec.Code, http.StatusCreated, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"status":"needs_input"`) {
		t.Fatalf("create body missing initial status: %s", rec.Body.String())
	}

	queueReq := httptest.NewRequest(http.MethodGet, "/api/decisions/v1/queue", nil)
	queueReq.Header.Set("X-Tenant-Id", "tenant-1")
	queueRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(queueRec, queueReq)

	if queueRec.Code != http.StatusOK {
		t.Fatalf("queue status = %d, want %d", queueRec.Code, http.StatusOK)
	}
	if !strings.Contains(queueRec.Body.String(), "pick a vendor") {
		t.Fatalf("queue body missing created decision: %s", queueRec.Body.String())
	}
}

func TestUnknownDecisionMapsToNotFound(t *testing.T) {
	server := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/decisions/v1/decisions/decision-missing", nil)
	req.Header.Set("X-Tenant-Id", "tenant-1")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestIllegalTransitionMapsToConflict(t *testing.T) {
	server := newTestServer(t)

	body := strings.NewReader(`{"title":"pick a vendor","priority":"normal"}`)
	createReq := httptest.NewRequest(http.MethodPost, "/api/decisions/v1/decisions", body)
	createReq.Header.Set("X-Tenant-Id", "tenant-1")
	createRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(createRec, createReq)
	if createRec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", createRec.Code, createRec.Body.String())
	}
	created := createRec.Body.String()
	idStart := strings.Index(created, `"decision_id":"`) + len(`"decision_id":"`)
	decisionID := created[idStart : idStart+strings.Index(created[idStart:], `"`)]

	implReq := httptest.NewRequest(http.MethodPost, "/api/decisions/v1/decisions/"+decisionID+"/implement", nil)
	implReq.Header.Set("X-Tenant-Id", "tenant-1")
	implRec := httptest.NewRecorder()
	server.Handler().ServeHTTP(implRec, implReq)

	if implRec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d: %s", implRec.Code, http.StatusConflict, implRec.Body.String())
	}
}

func TestDisabledFeatureGroupsAreNotRouted(t *testing.T) {
	server := newTestServerWithFeatures(t, Features{})

	paths := []string{
		"/api/decisions/v1/queue/overdue",
		"/api/decisions/v1/queue/escalation-candidates",
		"/api/decisions/v1/decisions/d-1/votes",
		"/api/decisions/v1/decisions/d-1/comments",
		"/api/stakeholders/v1/leaderboards/fastest",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("X-Tenant-Id", "tenant-1")
		rec := httptest.NewRecorder()
		server.Handler().ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: status = %d, want %d", path, rec.Code, http.StatusNotFound)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/decisions/v1/queue", nil)
	req.Header.Set("X-Tenant-Id", "tenant-1")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("queue must stay routed, status = %d", rec.Code)
	}
}
