package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"compass/contexts/decision-workflow/decision-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/decision-service/domain/errors"
	"compass/contexts/decision-workflow/decision-service/ports"

	"github.com/google/uuid"
)

// Store is the in-memory adapter backing tests and DSN-less startup. One
// store implements the unit of work, both repositories, the person
// directory, the clock and the id generator; cross-module rows
// (hypotheses, stakeholders) live here as seeded projections, mirroring
// how the postgres adapter reads the shared tables.
type Store struct {
	mu sync.Mutex

	decisions    map[string]entities.Decision
	hypotheses   map[string]ports.HypothesisSnapshot
	stakeholders map[string]ports.StakeholderSnapshot
	persons      map[string]ports.Person

	// Bridge, when set, routes the cross-module operations to live
	// module stores instead of the seeded shadow maps. Bridged writes
	// happen outside the transactional backup: a failed unit of work
	// does not undo them.
	Bridge CascadeBridge

	// FixedNow pins the clock for tests; zero means wall clock.
	FixedNow time.Time
}

// CascadeBridge is the cross-module slice of ports.TxRepository. The
// composition root implements it over the hypothesis and stakeholder
// stores when every module runs in one process without postgres.
type CascadeBridge interface {
	GetHypothesisSnapshot(ctx context.Context, tenantID string, hypothesisID string) (ports.HypothesisSnapshot, error)
	MarkHypothesisReady(ctx context.Context, tenantID string, hypothesisID string) (bool, error)
	GetStakeholderByPerson(ctx context.Context, tenantID string, personID string) (ports.StakeholderSnapshot, bool, error)
	ApplyStakeholderAssignment(ctx context.Context, tenantID string, personID string) (bool, error)
	ApplyStakeholderCompletion(ctx context.Context, tenantID string, personID string, decidedAt time.Time, responseTimeHours float64) (bool, error)
	ApplyStakeholderEscalation(ctx context.Context, tenantID string, personID string) (bool, error)
}

func NewStore(seed []entities.Decision) *Store {
	decisions := make(map[string]entities.Decision, len(seed))
	for _, decision := range seed {
		decisions[decision.DecisionID] = decision
	}
	return &Store{
		decisions:    decisions,
		hypotheses:   make(map[string]ports.HypothesisSnapshot),
		stakeholders: make(map[string]ports.StakeholderSnapshot),
		persons:      make(map[string]ports.Person),
	}
}

func (s *Store) SetPerson(person ports.Person) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persons[strings.TrimSpace(person.PersonID)] = person
}

func (s *Store) SetHypothesis(snapshot ports.HypothesisSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hypotheses[strings.TrimSpace(snapshot.HypothesisID)] = snapshot
}

func (s *Store) SetStakeholder(snapshot ports.StakeholderSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stakeholders[stakeholderKey(snapshot.TenantID, snapshot.PersonID)] = snapshot
}

// Hypothesis exposes the stored snapshot for assertions.
func (s *Store) Hypothesis(hypothesisID string) (ports.HypothesisSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.hypotheses[strings.TrimSpace(hypothesisID)]
	return snapshot, ok
}

// Stakeholder exposes the stored snapshot for assertions.
func (s *Store) Stakeholder(tenantID string, personID string) (ports.StakeholderSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot, ok := s.stakeholders[stakeholderKey(tenantID, personID)]
	return snapshot, ok
}

// Transact serializes units of work behind the store mutex and restores
// the previous state when fn fails.
func (s *Store) Transact(ctx context.Context, fn func(tx ports.TxRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	decisionsBackup := copyMap(s.decisions)
	hypothesesBackup := copyMap(s.hypotheses)
	stakeholdersBackup := copyMap(s.stakeholders)

	if err := fn(txView{store: s}); err != nil {
		s.decisions = decisionsBackup
		s.hypotheses = hypothesesBackup
		s.stakeholders = stakeholdersBackup
		return err
	}
	return nil
}

func (s *Store) GetDecision(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getDecisionLocked(tenantID, decisionID)
}

func (s *Store) ListDecisionsByStatus(ctx context.Context, tenantID string, statuses []entities.Status) ([]entities.Decision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	wanted := make(map[entities.Status]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}
	var out []entities.Decision
	for _, decision := range s.decisions {
		if decision.TenantID != strings.TrimSpace(tenantID) {
			continue
		}
		if len(wanted) > 0 && !wanted[decision.Status] {
			continue
		}
		out = append(out, decision)
	}
	return out, nil
}

func (s *Store) GetPerson(ctx context.Context, tenantID string, personID string) (ports.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	person, ok := s.persons[strings.TrimSpace(personID)]
	if !ok || person.TenantID != strings.TrimSpace(tenantID) {
		return ports.Person{}, domainerrors.ErrPersonNotFound
	}
	return person, nil
}

func (s *Store) Now() time.Time {
	if !s.FixedNow.IsZero() {
		return s.FixedNow
	}
	return time.Now().UTC()
}

func (s *Store) NewID(ctx context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (s *Store) getDecisionLocked(tenantID string, decisionID string) (entities.Decision, error) {
	decision, ok := s.decisions[strings.TrimSpace(decisionID)]
	if !ok || decision.TenantID != strings.TrimSpace(tenantID) {
		return entities.Decision{}, domainerrors.ErrDecisionNotFound
	}
	return decision, nil
}

// txView runs against the store while Transact holds the mutex.
type txView struct {
	store *Store
}

func (t txView) GetDecision(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	return t.store.getDecisionLocked(tenantID, decisionID)
}

func (t txView) InsertDecision(ctx context.Context, decision entities.Decision) error {
	if _, exists := t.store.decisions[decision.DecisionID]; exists {
		return domainerrors.ErrDecisionConflict
	}
	t.store.decisions[decision.DecisionID] = decision
	return nil
}

func (t txView) UpdateDecision(ctx context.Context, decision entities.Decision) error {
	stored, ok := t.store.decisions[decision.DecisionID]
	if !ok || stored.TenantID != decision.TenantID {
		return domainerrors.ErrDecisionNotFound
	}
	if stored.Version != decision.Version-1 {
		return domainerrors.ErrDecisionConflict
	}
	t.store.decisions[decision.DecisionID] = decision
	return nil
}

func (t txView) GetHypothesisSnapshot(ctx context.Context, tenantID string, hypothesisID string) (ports.HypothesisSnapshot, error) {
	if t.store.Bridge != nil {
		return t.store.Bridge.GetHypothesisSnapshot(ctx, tenantID, hypothesisID)
	}
	snapshot, ok := t.store.hypotheses[strings.TrimSpace(hypothesisID)]
	if !ok || snapshot.TenantID != strings.TrimSpace(tenantID) {
		return ports.HypothesisSnapshot{}, domainerrors.ErrHypothesisNotFound
	}
	return snapshot, nil
}

func (t txView) MarkHypothesisReady(ctx context.Context, tenantID string, hypothesisID string) (bool, error) {
	if t.store.Bridge != nil {
		return t.store.Bridge.MarkHypothesisReady(ctx, tenantID, hypothesisID)
	}
	snapshot, ok := t.store.hypotheses[strings.TrimSpace(hypothesisID)]
	if !ok || snapshot.TenantID != strings.TrimSpace(tenantID) {
		return false, domainerrors.ErrHypothesisNotFound
	}
	if snapshot.Status != ports.HypothesisStatusBlocked {
		return false, nil
	}
	snapshot.Status = "ready"
	snapshot.BlockedReason = ""
	t.store.hypotheses[strings.TrimSpace(hypothesisID)] = snapshot
	return true, nil
}

func (t txView) GetStakeholderByPerson(ctx context.Context, tenantID string, personID string) (ports.StakeholderSnapshot, bool, error) {
	if t.store.Bridge != nil {
		return t.store.Bridge.GetStakeholderByPerson(ctx, tenantID, personID)
	}
	snapshot, ok := t.store.stakeholders[stakeholderKey(tenantID, personID)]
	if !ok {
		return ports.StakeholderSnapshot{}, false, nil
	}
	return snapshot, true, nil
}

func (t txView) ApplyStakeholderAssignment(ctx context.Context, tenantID string, personID string) (bool, error) {
	if t.store.Bridge != nil {
		return t.store.Bridge.ApplyStakeholderAssignment(ctx, tenantID, personID)
	}
	key := stakeholderKey(tenantID, personID)
	snapshot, ok := t.store.stakeholders[key]
	if !ok {
		return false, nil
	}
	snapshot.DecisionsPending++
	t.store.stakeholders[key] = snapshot
	return true, nil
}

func (t txView) ApplyStakeholderCompletion(
	ctx context.Context,
	tenantID string,
	personID string,
	decidedAt time.Time,
	responseTimeHours float64,
) (bool, error) {
	if t.store.Bridge != nil {
		return t.store.Bridge.ApplyStakeholderCompletion(ctx, tenantID, personID, decidedAt, responseTimeHours)
	}
	key := stakeholderKey(tenantID, personID)
	snapshot, ok := t.store.stakeholders[key]
	if !ok {
		return false, nil
	}
	if snapshot.DecisionsPending > 0 {
		snapshot.DecisionsPending--
	}
	previousCompleted := snapshot.DecisionsCompleted
	snapshot.DecisionsCompleted++
	snapshot.LastDecisionAt = &decidedAt
	if snapshot.AvgResponseTimeHours == nil {
		avg := responseTimeHours
		snapshot.AvgResponseTimeHours = &avg
	} else {
		avg := (*snapshot.AvgResponseTimeHours*float64(previousCompleted) + responseTimeHours) / float64(previousCompleted+1)
		snapshot.AvgResponseTimeHours = &avg
	}
	t.store.stakeholders[key] = snapshot
	return true, nil
}

func (t txView) ApplyStakeholderEscalation(ctx context.Context, tenantID string, personID string) (bool, error) {
	if t.store.Bridge != nil {
		return t.store.Bridge.ApplyStakeholderEscalation(ctx, tenantID, personID)
	}
	key := stakeholderKey(tenantID, personID)
	snapshot, ok := t.store.stakeholders[key]
	if !ok {
		return false, nil
	}
	snapshot.DecisionsEscalated++
	t.store.stakeholders[key] = snapshot
	return true, nil
}

func stakeholderKey(tenantID string, personID string) string {
	return strings.TrimSpace(tenantID) + "/" + strings.TrimSpace(personID)
}

func copyMap[K comparable, V any](src map[K]V) map[K]V {
	dst := make(map[K]V, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
