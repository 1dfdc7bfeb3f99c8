package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"compass/contexts/people-ops/stakeholder-service/application"
	"compass/contexts/people-ops/stakeholder-service/domain/entities"
	httptransport "compass/contexts/people-ops/stakeholder-service/transport/http"
)

type Handler struct {
	Stakeholders application.Service
	Logger       *slog.Logger
}

func (h Handler) RegisterStakeholderHandler(ctx context.Context, tenantID string, req httptransport.RegisterStakeholderRequest) (httptransport.StakeholderResponse, error) {
	stakeholder, err := h.Stakeholders.Register(ctx, application.RegisterStakeholderInput{
		TenantID:    tenantID,
		PersonID:    req.PersonID,
		DisplayName: req.DisplayName,
		Role:        req.Role,
	})
	if err != nil {
		return httptransport.StakeholderResponse{}, err
	}
	return toResponse(stakeholder), nil
}

func (h Handler) GetStakeholderHandler(ctx context.Context, tenantID string, personID string) (httptransport.StakeholderResponse, error) {
	stakeholder, err := h.Stakeholders.Get(ctx, tenantID, personID)
	if err != nil {
		return httptransport.StakeholderResponse{}, err
	}
	return toResponse(stakeholder), nil
}

func (h Handler) FastestRespondersHandler(ctx context.Context, tenantID string, limit int) (httptransport.LeaderboardResponse, error) {
	stakeholders, err := h.Stakeholders.FastestResponders(ctx, tenantID, limit)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	return toLeaderboard(stakeholders), nil
}

func (h Handler) MostActiveHandler(ctx context.Context, tenantID string, limit int) (httptransport.LeaderboardResponse, error) {
	stakeholders, err := h.Stakeholders.MostActive(ctx, tenantID, limit)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	return toLeaderboard(stakeholders), nil
}

func (h Handler) NeedingAttentionHandler(ctx context.Context, tenantID string, limit int) (httptransport.LeaderboardResponse, error) {
	stakeholders, err := h.Stakeholders.NeedingAttention(ctx, tenantID, limit)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	return toLeaderboard(stakeholders), nil
}

func toLeaderboard(stakeholders []entities.Stakeholder) httptransport.LeaderboardResponse {
	items := make([]httptransport.StakeholderResponse, 0, len(stakeholders))
	for _, stakeholder := range stakeholders {
		items = append(items, toResponse(stakeholder))
	}
	return httptransport.LeaderboardResponse{Items: items}
}

func toResponse(stakeholder entities.Stakeholder) httptransport.StakeholderResponse {
	return httptransport.StakeholderResponse{
		PersonID:             stakeholder.PersonID,
		TenantID:             stakeholder.TenantID,
		DisplayName:          stakeholder.DisplayName,
		Role:                 stakeholder.Role,
		DecisionsPending:     stakeholder.DecisionsPending,
		DecisionsCompleted:   stakeholder.DecisionsCompleted,
		DecisionsEscalated:   stakeholder.DecisionsEscalated,
		AvgResponseTimeHours: stakeholder.AvgResponseTimeHours,
		LastDecisionAt:       formatTime(stakeholder.LastDecisionAt),
		CreatedAt:            stakeholder.CreatedAt.Format(time.RFC3339),
		UpdatedAt:            stakeholder.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
