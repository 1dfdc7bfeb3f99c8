// Package memory provides the in-memory hypothesis store used by tests
// and by API deployments running without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"compass/contexts/experiment-tracking/hypothesis-service/domain/entities"
	domainerrors "compass/contexts/experiment-tracking/hypothesis-service/domain/errors"
)

type Store struct {
	mu         sync.Mutex
	hypotheses map[string]entities.Hypothesis

	// FixedNow pins the clock for deterministic tests; zero means wall time.
	FixedNow time.Time
}

func NewStore() *Store {
	return &Store{hypotheses: map[string]entities.Hypothesis{}}
}

func (s *Store) GetHypothesis(_ context.Context, tenantID string, hypothesisID string) (entities.Hypothesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hypothesis, ok := s.hypotheses[hypothesisID]
	if !ok || hypothesis.TenantID != tenantID {
		return entities.Hypothesis{}, domainerrors.ErrHypothesisNotFound
	}
	return hypothesis, nil
}

func (s *Store) InsertHypothesis(_ context.Context, hypothesis entities.Hypothesis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hypotheses[hypothesis.HypothesisID]; ok {
		return domainerrors.ErrHypothesisConflict
	}
	s.hypotheses[hypothesis.HypothesisID] = hypothesis
	return nil
}

func (s *Store) UpdateHypothesis(_ context.Context, hypothesis entities.Hypothesis) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.hypotheses[hypothesis.HypothesisID]
	if !ok || stored.TenantID != hypothesis.TenantID {
		return domainerrors.ErrHypothesisNotFound
	}
	if stored.Version != hypothesis.Version-1 {
		return domainerrors.ErrHypothesisConflict
	}
	s.hypotheses[hypothesis.HypothesisID] = hypothesis
	return nil
}

func (s *Store) ListHypothesesByOutcome(_ context.Context, tenantID string, outcomeID string) ([]entities.Hypothesis, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := make([]entities.Hypothesis, 0)
	for _, hypothesis := range s.hypotheses {
		if hypothesis.TenantID == tenantID && hypothesis.OutcomeID == outcomeID {
			matched = append(matched, hypothesis)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})
	return matched, nil
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
