package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"compass/contexts/experiment-tracking/hypothesis-service/application"
	"compass/contexts/experiment-tracking/hypothesis-service/domain/entities"
	httptransport "compass/contexts/experiment-tracking/hypothesis-service/transport/http"
)

type Handler struct {
	Hypotheses application.Service
	Logger     *slog.Logger
}

func (h Handler) CreateHypothesisHandler(ctx context.Context, tenantID string, req httptransport.CreateHypothesisRequest) (httptransport.HypothesisResponse, error) {
	hypothesis, err := h.Hypotheses.Create(ctx, application.CreateHypothesisInput{
		TenantID:    tenantID,
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     req.OwnerID,
		OutcomeID:   req.OutcomeID,
	})
	if err != nil {
		return httptransport.HypothesisResponse{}, err
	}
	return toResponse(hypothesis), nil
}

func (h Handler) GetHypothesisHandler(ctx context.Context, tenantID string, hypothesisID string) (httptransport.HypothesisResponse, error) {
	hypothesis, err := h.Hypotheses.Get(ctx, tenantID, hypothesisID)
	if err != nil {
		return httptransport.HypothesisResponse{}, err
	}
	return toResponse(hypothesis), nil
}

func (h Handler) ListByOutcomeHandler(ctx context.Context, tenantID string, outcomeID string) (httptransport.HypothesisListResponse, error) {
	hypotheses, err := h.Hypotheses.ListByOutcome(ctx, tenantID, outcomeID)
	if err != nil {
		return httptransport.HypothesisListResponse{}, err
	}
	items := make([]httptransport.HypothesisResponse, 0, len(hypotheses))
	for _, hypothesis := range hypotheses {
		items = append(items, toResponse(hypothesis))
	}
	return httptransport.HypothesisListResponse{Items: items}, nil
}

func (h Handler) TransitionHandler(ctx context.Context, tenantID string, hypothesisID string, req httptransport.TransitionRequest) (httptransport.HypothesisResponse, error) {
	hypothesis, err := h.Hypotheses.Transition(ctx, tenantID, hypothesisID, entities.Status(req.Target))
	if err != nil {
		return httptransport.HypothesisResponse{}, err
	}
	return toResponse(hypothesis), nil
}

func (h Handler) BlockHandler(ctx context.Context, tenantID string, hypothesisID string, req httptransport.BlockRequest) (httptransport.HypothesisResponse, error) {
	hypothesis, err := h.Hypotheses.Block(ctx, tenantID, hypothesisID, req.Reason)
	if err != nil {
		return httptransport.HypothesisResponse{}, err
	}
	return toResponse(hypothesis), nil
}

func (h Handler) UnblockHandler(ctx context.Context, tenantID string, hypothesisID string) (httptransport.HypothesisResponse, error) {
	hypothesis, err := h.Hypotheses.SetReady(ctx, tenantID, hypothesisID)
	if err != nil {
		return httptransport.HypothesisResponse{}, err
	}
	return toResponse(hypothesis), nil
}

func (h Handler) AbandonHandler(ctx context.Context, tenantID string, hypothesisID string) (httptransport.HypothesisResponse, error) {
	hypothesis, err := h.Hypotheses.Abandon(ctx, tenantID, hypothesisID)
	if err != nil {
		return httptransport.HypothesisResponse{}, err
	}
	return toResponse(hypothesis), nil
}

func (h Handler) ConcludeHandler(ctx context.Context, tenantID string, hypothesisID string, actorID string, req httptransport.ConcludeRequest) (httptransport.HypothesisResponse, error) {
	hypothesis, err := h.Hypotheses.Conclude(ctx, application.ConcludeHypothesisInput{
		TenantID:          tenantID,
		HypothesisID:      hypothesisID,
		Target:            entities.Status(req.Target),
		ConcludedByID:     actorID,
		ConclusionNotes:   req.ConclusionNotes,
		ExperimentResults: req.ExperimentResults,
	})
	if err != nil {
		return httptransport.HypothesisResponse{}, err
	}
	return toResponse(hypothesis), nil
}

func toResponse(hypothesis entities.Hypothesis) httptransport.HypothesisResponse {
	return httptransport.HypothesisResponse{
		HypothesisID:       hypothesis.HypothesisID,
		TenantID:           hypothesis.TenantID,
		Title:              hypothesis.Title,
		Description:        hypothesis.Description,
		OwnerID:            hypothesis.OwnerID,
		OutcomeID:          hypothesis.OutcomeID,
		Status:             string(hypothesis.Status),
		BlockedReason:      hypothesis.BlockedReason,
		StartedAt:          formatTime(hypothesis.StartedAt),
		DeployedAt:         formatTime(hypothesis.DeployedAt),
		MeasuringStartedAt: formatTime(hypothesis.MeasuringStartedAt),
		ConcludedAt:        formatTime(hypothesis.ConcludedAt),
		ConcludedByID:      hypothesis.ConcludedByID,
		ConclusionNotes:    hypothesis.ConclusionNotes,
		ExperimentResults:  hypothesis.ExperimentResults,
		CreatedAt:          hypothesis.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          hypothesis.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
