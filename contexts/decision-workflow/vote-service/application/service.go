package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/decision-workflow/vote-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/vote-service/domain/errors"
	"compass/contexts/decision-workflow/vote-service/ports"
)

type CastVoteInput struct {
	TenantID   string
	DecisionID string
	PersonID   string
	Vote       entities.VoteOption
	Comment    string
}

type Service struct {
	Repo      ports.Repository
	Decisions ports.DecisionDirectory
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (s Service) Cast(ctx context.Context, input CastVoteInput) (entities.Vote, error) {
	tenantID := strings.TrimSpace(input.TenantID)
	decisionID := strings.TrimSpace(input.DecisionID)
	personID := strings.TrimSpace(input.PersonID)
	if tenantID == "" || decisionID == "" || personID == "" {
		return entities.Vote{}, domainerrors.ErrInvalidVoteInput
	}
	if !entities.IsValidVoteOption(input.Vote) {
		return entities.Vote{}, domainerrors.ErrUnknownVoteOption
	}

	exists, err := s.Decisions.DecisionExists(ctx, tenantID, decisionID)
	if err != nil {
		return entities.Vote{}, err
	}
	if !exists {
		return entities.Vote{}, domainerrors.ErrDecisionNotFound
	}

	now := s.now()
	voteID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Vote{}, err
	}
	vote, err := s.Repo.UpsertVote(ctx, entities.Vote{
		VoteID:     voteID,
		TenantID:   tenantID,
		DecisionID: decisionID,
		PersonID:   personID,
		Vote:       input.Vote,
		Comment:    strings.TrimSpace(input.Comment),
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return entities.Vote{}, err
	}
	resolveLogger(s.Logger).Info("vote cast",
		"event", "vote_cast",
		"module", "decision-workflow/vote-service",
		"layer", "application",
		"tenant_id", tenantID,
		"decision_id", decisionID,
		"person_id", personID,
		"vote", string(input.Vote),
	)
	return vote, nil
}

func (s Service) ListByDecision(ctx context.Context, tenantID string, decisionID string) ([]entities.Vote, error) {
	tenantID = strings.TrimSpace(tenantID)
	decisionID = strings.TrimSpace(decisionID)
	if tenantID == "" || decisionID == "" {
		return nil, domainerrors.ErrInvalidVoteInput
	}
	return s.Repo.ListVotesByDecision(ctx, tenantID, decisionID)
}

// Summarize counts votes per option with every declared option
// zero-filled even when unused.
func (s Service) Summarize(ctx context.Context, tenantID string, decisionID string) (entities.Summary, error) {
	votes, err := s.ListByDecision(ctx, tenantID, decisionID)
	if err != nil {
		return entities.Summary{}, err
	}
	counts := make(map[entities.VoteOption]int, len(entities.VoteOptions))
	for _, option := range entities.VoteOptions {
		counts[option] = 0
	}
	for _, vote := range votes {
		counts[vote.Vote]++
	}
	return entities.Summary{
		DecisionID: strings.TrimSpace(decisionID),
		Counts:     counts,
		Total:      len(votes),
	}, nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func resolveLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}
