package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"compass/contexts/decision-workflow/vote-service/application"
	"compass/contexts/decision-workflow/vote-service/domain/entities"
	httptransport "compass/contexts/decision-workflow/vote-service/transport/http"
)

type Handler struct {
	Votes  application.Service
	Logger *slog.Logger
}

func (h Handler) CastVoteHandler(ctx context.Context, tenantID string, decisionID string, actorID string, req httptransport.CastVoteRequest) (httptransport.VoteResponse, error) {
	vote, err := h.Votes.Cast(ctx, application.CastVoteInput{
		TenantID:   tenantID,
		DecisionID: decisionID,
		PersonID:   actorID,
		Vote:       entities.VoteOption(req.Vote),
		Comment:    req.Comment,
	})
	if err != nil {
		return httptransport.VoteResponse{}, err
	}
	return toResponse(vote), nil
}

func (h Handler) ListVotesHandler(ctx context.Context, tenantID string, decisionID string) (httptransport.VoteListResponse, error) {
	votes, err := h.Votes.ListByDecision(ctx, tenantID, decisionID)
	if err != nil {
		return httptransport.VoteListResponse{}, err
	}
	items := make([]httptransport.VoteResponse, 0, len(votes))
	for _, vote := range votes {
		items = append(items, toResponse(vote))
	}
	return httptransport.VoteListResponse{Items: items}, nil
}

func (h Handler) SummaryHandler(ctx context.Context, tenantID string, decisionID string) (httptransport.SummaryResponse, error) {
	summary, err := h.Votes.Summarize(ctx, tenantID, decisionID)
	if err != nil {
		return httptransport.SummaryResponse{}, err
	}
	counts := make(map[string]int, len(summary.Counts))
	for option, count := range summary.Counts {
		counts[string(option)] = count
	}
	return httptransport.SummaryResponse{
		DecisionID: summary.DecisionID,
		Counts:     counts,
		Total:      summary.Total,
	}, nil
}

func toResponse(vote entities.Vote) httptransport.VoteResponse {
	return httptransport.VoteResponse{
		VoteID:     vote.VoteID,
		TenantID:   vote.TenantID,
		DecisionID: vote.DecisionID,
		PersonID:   vote.PersonID,
		Vote:       string(vote.Vote),
		Comment:    vote.Comment,
		CreatedAt:  vote.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  vote.UpdatedAt.Format(time.RFC3339),
	}
}
