// Package memory provides the in-memory vote store used by tests and by
// API deployments running without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"compass/contexts/decision-workflow/vote-service/domain/entities"
)

type Store struct {
	mu    sync.Mutex
	votes map[string]entities.Vote

	// Decisions backs the decision directory; tests seed it directly.
	Decisions map[string]bool

	// FixedNow pins the clock for deterministic tests; zero means wall time.
	FixedNow time.Time
}

func NewStore() *Store {
	return &Store{
		votes:     map[string]entities.Vote{},
		Decisions: map[string]bool{},
	}
}

func (s *Store) SetDecision(tenantID string, decisionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Decisions[tenantID+"/"+decisionID] = true
}

func voteKey(tenantID string, decisionID string, personID string) string {
	return tenantID + "/" + decisionID + "/" + personID
}

func (s *Store) UpsertVote(_ context.Context, vote entities.Vote) (entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := voteKey(vote.TenantID, vote.DecisionID, vote.PersonID)
	if existing, ok := s.votes[k]; ok {
		existing.Vote = vote.Vote
		existing.Comment = vote.Comment
		existing.UpdatedAt = vote.UpdatedAt
		s.votes[k] = existing
		return existing, nil
	}
	s.votes[k] = vote
	return vote, nil
}

func (s *Store) ListVotesByDecision(_ context.Context, tenantID string, decisionID string) ([]entities.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Vote, 0)
	for _, vote := range s.votes {
		if vote.TenantID == tenantID && vote.DecisionID == decisionID {
			out = append(out, vote)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) DecisionExists(_ context.Context, tenantID string, decisionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Decisions[tenantID+"/"+decisionID], nil
}

func (s *Store) Now() time.Time {
	if !s.FixedNow.IsZero() {
		return s.FixedNow
	}
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
