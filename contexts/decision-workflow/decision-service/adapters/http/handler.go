package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"compass/contexts/decision-workflow/decision-service/application/commands"
	"compass/contexts/decision-workflow/decision-service/application/queries"
	"compass/contexts/decision-workflow/decision-service/domain/entities"
	httptransport "compass/contexts/decision-workflow/decision-service/transport/http"
)

type Handler struct {
	Decisions commands.DecisionUseCase
	Queue     queries.QueueUseCase
	Logger    *slog.Logger
}

func (h Handler) CreateDecisionHandler(ctx context.Context, tenantID string, req httptransport.CreateDecisionRequest) (httptransport.DecisionResponse, error) {
	options := make([]entities.Option, 0, len(req.Options))
	for _, option := range req.Options {
		options = append(options, entities.Option{OptionID: option.ID, Label: option.Label})
	}
	blocked := make([]entities.BlockedItem, 0, len(req.BlockedItems))
	for _, item := range req.BlockedItems {
		blocked = append(blocked, entities.BlockedItem{ItemType: item.Type, ItemID: item.ID})
	}

	decision, err := h.Decisions.Create(ctx, commands.CreateDecisionCommand{
		TenantID:         tenantID,
		Title:            req.Title,
		Description:      req.Description,
		Context:          req.Context,
		Type:             req.Type,
		Priority:         entities.Priority(req.Priority),
		SLAHoursOverride: req.SLAHours,
		OwnerID:          req.OwnerID,
		AssigneeID:       req.AssigneeID,
		Options:          options,
		BlockedItems:     blocked,
		OutcomeID:        req.OutcomeID,
		HypothesisID:     req.HypothesisID,
		TeamID:           req.TeamID,
		ExternalRefs:     req.ExternalRefs,
		Tags:             req.Tags,
	})
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) GetDecisionHandler(ctx context.Context, tenantID string, decisionID string) (httptransport.DecisionResponse, error) {
	decision, err := h.Queue.GetDecision(ctx, tenantID, decisionID)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) StartDiscussionHandler(ctx context.Context, tenantID string, decisionID string) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.StartDiscussion(ctx, tenantID, decisionID)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) DeferDecisionHandler(ctx context.Context, tenantID string, decisionID string, req httptransport.ReasonRequest) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.Defer(ctx, tenantID, decisionID, req.Reason)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) CancelDecisionHandler(ctx context.Context, tenantID string, decisionID string, req httptransport.ReasonRequest) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.Cancel(ctx, tenantID, decisionID, req.Reason)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) ReopenDecisionHandler(ctx context.Context, tenantID string, decisionID string) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.Reopen(ctx, tenantID, decisionID)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) ImplementDecisionHandler(ctx context.Context, tenantID string, decisionID string) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.Implement(ctx, tenantID, decisionID)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) AssignDecisionHandler(ctx context.Context, tenantID string, decisionID string, req httptransport.AssignRequest) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.Assign(ctx, tenantID, decisionID, req.PersonID)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) ReassignDecisionHandler(ctx context.Context, tenantID string, decisionID string, req httptransport.AssignRequest) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.Reassign(ctx, tenantID, decisionID, req.PersonID, req.Reason)
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) EscalateDecisionHandler(ctx context.Context, tenantID string, decisionID string, req httptransport.EscalateRequest) (httptransport.DecisionResponse, error) {
	decision, err := h.Decisions.Escalate(ctx, commands.EscalateDecisionCommand{
		TenantID:       tenantID,
		DecisionID:     decisionID,
		TargetPersonID: req.TargetPersonID,
		Reason:         req.Reason,
	})
	if err != nil {
		return httptransport.DecisionResponse{}, err
	}
	return h.toResponse(decision), nil
}

func (h Handler) ResolveDecisionHandler(ctx context.Context, tenantID string, decisionID string, actorID string, req httptransport.ResolveRequest) (httptransport.ResolveResponse, error) {
	result, err := h.Decisions.Resolve(ctx, commands.ResolveDecisionCommand{
		TenantID:       tenantID,
		DecisionID:     decisionID,
		DecidedByID:    actorID,
		Rationale:      req.Rationale,
		SelectedOption: req.SelectedOption,
	})
	if err != nil {
		return httptransport.ResolveResponse{}, err
	}
	unblocked := result.UnblockedHypothesisIDs
	if unblocked == nil {
		unblocked = []string{}
	}
	return httptransport.ResolveResponse{
		Decision:               h.toResponse(result.Decision),
		UnblockedHypothesisIDs: unblocked,
		CycleTimeHours:         result.CycleTimeHours,
	}, nil
}

func (h Handler) QueueHandler(ctx context.Context, tenantID string) (httptransport.QueueResponse, error) {
	decisions, err := h.Queue.PendingQueue(ctx, tenantID)
	if err != nil {
		return httptransport.QueueResponse{}, err
	}
	return h.toQueueResponse(decisions), nil
}

func (h Handler) OverdueHandler(ctx context.Context, tenantID string) (httptransport.QueueResponse, error) {
	decisions, err := h.Queue.Overdue(ctx, tenantID)
	if err != nil {
		return httptransport.QueueResponse{}, err
	}
	return h.toQueueResponse(decisions), nil
}

func (h Handler) EscalationCandidatesHandler(ctx context.Context, tenantID string) (httptransport.QueueResponse, error) {
	decisions, err := h.Queue.EscalationCandidates(ctx, tenantID)
	if err != nil {
		return httptransport.QueueResponse{}, err
	}
	return h.toQueueResponse(decisions), nil
}

func (h Handler) toQueueResponse(decisions []entities.Decision) httptransport.QueueResponse {
	items := make([]httptransport.DecisionResponse, 0, len(decisions))
	for _, decision := range decisions {
		items = append(items, h.toResponse(decision))
	}
	return httptransport.QueueResponse{Items: items}
}

func (h Handler) toResponse(decision entities.Decision) httptransport.DecisionResponse {
	now := time.Now().UTC()
	if h.Queue.Clock != nil {
		now = h.Queue.Clock.Now().UTC()
	}

	options := make([]httptransport.OptionPayload, 0, len(decision.Options))
	for _, option := range decision.Options {
		options = append(options, httptransport.OptionPayload{ID: option.OptionID, Label: option.Label})
	}
	blocked := make([]httptransport.BlockedItemPayload, 0, len(decision.BlockedItems))
	for _, item := range decision.BlockedItems {
		blocked = append(blocked, httptransport.BlockedItemPayload{Type: item.ItemType, ID: item.ItemID})
	}

	return httptransport.DecisionResponse{
		DecisionID:        decision.DecisionID,
		TenantID:          decision.TenantID,
		Title:             decision.Title,
		Description:       decision.Description,
		Context:           decision.Context,
		Options:           options,
		Status:            string(decision.Status),
		Priority:          string(decision.Priority),
		Type:              decision.Type,
		OwnerID:           decision.OwnerID,
		AssigneeID:        decision.AssigneeID,
		EscalatedToID:     decision.EscalatedToID,
		DecidedByID:       decision.DecidedByID,
		SLAHours:          decision.SLAHours,
		DueAt:             formatTime(decision.DueAt),
		EscalationLevel:   decision.EscalationLevel,
		EscalatedAt:       formatTime(decision.EscalatedAt),
		DecidedAt:         formatTime(decision.DecidedAt),
		DecisionRationale: decision.DecisionRationale,
		SelectedOption:    decision.SelectedOption,
		BlockedItems:      blocked,
		ExternalRefs:      decision.ExternalRefs,
		Tags:              decision.Tags,
		Overdue:           decision.IsOverdue(now),
		WaitTimeHours:     decision.WaitTimeHours(now),
		CreatedAt:         decision.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         decision.UpdatedAt.Format(time.RFC3339),
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
