// Package memory provides the in-memory stakeholder store used by tests
// and by API deployments running without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"compass/contexts/people-ops/stakeholder-service/domain/entities"
	domainerrors "compass/contexts/people-ops/stakeholder-service/domain/errors"
)

type Store struct {
	mu           sync.Mutex
	stakeholders map[string]entities.Stakeholder

	// FixedNow pins the clock for deterministic tests; zero means wall time.
	FixedNow time.Time
}

func NewStore() *Store {
	return &Store{stakeholders: map[string]entities.Stakeholder{}}
}

func key(tenantID string, personID string) string {
	return tenantID + "/" + personID
}

func (s *Store) GetStakeholder(_ context.Context, tenantID string, personID string) (entities.Stakeholder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stakeholder, ok := s.stakeholders[key(tenantID, personID)]
	if !ok {
		return entities.Stakeholder{}, domainerrors.ErrStakeholderNotFound
	}
	return stakeholder, nil
}

func (s *Store) InsertStakeholder(_ context.Context, stakeholder entities.Stakeholder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(stakeholder.TenantID, stakeholder.PersonID)
	if _, ok := s.stakeholders[k]; ok {
		return domainerrors.ErrStakeholderExists
	}
	s.stakeholders[k] = stakeholder
	return nil
}

func (s *Store) ListStakeholders(_ context.Context, tenantID string) ([]entities.Stakeholder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Stakeholder, 0)
	for _, stakeholder := range s.stakeholders {
		if stakeholder.TenantID == tenantID {
			out = append(out, stakeholder)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PersonID < out[j].PersonID
	})
	return out, nil
}

func (s *Store) RecordAssignment(_ context.Context, tenantID string, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(tenantID, personID)
	stakeholder, ok := s.stakeholders[k]
	if !ok {
		return domainerrors.ErrStakeholderNotFound
	}
	stakeholder.DecisionsPending++
	stakeholder.UpdatedAt = s.nowLocked()
	s.stakeholders[k] = stakeholder
	return nil
}

// RecordCompletion applies the whole counter-and-mean update under the
// store lock so concurrent completions never read the same pre-update
// average.
func (s *Store) RecordCompletion(_ context.Context, tenantID string, personID string, decidedAt time.Time, responseTimeHours float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(tenantID, personID)
	stakeholder, ok := s.stakeholders[k]
	if !ok {
		return domainerrors.ErrStakeholderNotFound
	}
	if stakeholder.DecisionsPending > 0 {
		stakeholder.DecisionsPending--
	}
	if stakeholder.AvgResponseTimeHours == nil {
		avg := responseTimeHours
		stakeholder.AvgResponseTimeHours = &avg
	} else {
		avg := (*stakeholder.AvgResponseTimeHours*float64(stakeholder.DecisionsCompleted) + responseTimeHours) /
			float64(stakeholder.DecisionsCompleted+1)
		stakeholder.AvgResponseTimeHours = &avg
	}
	stakeholder.DecisionsCompleted++
	at := decidedAt
	stakeholder.LastDecisionAt = &at
	stakeholder.UpdatedAt = s.nowLocked()
	s.stakeholders[k] = stakeholder
	return nil
}

func (s *Store) RecordEscalation(_ context.Context, tenantID string, personID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(tenantID, personID)
	stakeholder, ok := s.stakeholders[k]
	if !ok {
		return domainerrors.ErrStakeholderNotFound
	}
	stakeholder.DecisionsEscalated++
	stakeholder.UpdatedAt = s.nowLocked()
	s.stakeholders[k] = stakeholder
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nowLocked()
}

func (s *Store) nowLocked() time.Time {
	if !s.FixedNow.IsZero() {
		return s.FixedNow
	}
	return time.Now().UTC()
}
