// Package memory provides the in-memory comment store used by tests and
// by API deployments running without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"compass/contexts/decision-workflow/comment-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/comment-service/domain/errors"
)

type Store struct {
	mu       sync.Mutex
	comments map[string]entities.Comment

	// Decisions backs the decision directory; tests seed it directly.
	Decisions map[string]bool

	// FixedNow pins the clock for deterministic tests; zero means wall time.
	FixedNow time.Time
}

func NewStore() *Store {
	return &Store{
		comments:  map[string]entities.Comment{},
		Decisions: map[string]bool{},
	}
}

func (s *Store) SetDecision(tenantID string, decisionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Decisions[tenantID+"/"+decisionID] = true
}

func (s *Store) GetComment(_ context.Context, tenantID string, commentID string) (entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	comment, ok := s.comments[commentID]
	if !ok || comment.TenantID != tenantID {
		return entities.Comment{}, domainerrors.ErrCommentNotFound
	}
	return comment, nil
}

func (s *Store) InsertComment(_ context.Context, comment entities.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.comments[comment.CommentID] = comment
	return nil
}

func (s *Store) UpdateComment(_ context.Context, comment entities.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.comments[comment.CommentID]
	if !ok || stored.TenantID != comment.TenantID {
		return domainerrors.ErrCommentNotFound
	}
	s.comments[comment.CommentID] = comment
	return nil
}

func (s *Store) DeleteComment(_ context.Context, tenantID string, commentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.comments[commentID]
	if !ok || stored.TenantID != tenantID {
		return domainerrors.ErrCommentNotFound
	}
	delete(s.comments, commentID)
	return nil
}

func (s *Store) ListCommentsByDecision(_ context.Context, tenantID string, decisionID string) ([]entities.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]entities.Comment, 0)
	for _, comment := range s.comments {
		if comment.TenantID == tenantID && comment.DecisionID == decisionID {
			out = append(out, comment)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CommentID < out[j].CommentID
		}
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
