package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "compass/contexts/decision-workflow/decision-service/application"
	"compass/contexts/decision-workflow/decision-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/decision-service/domain/errors"
	"compass/contexts/decision-workflow/decision-service/ports"
	"compass/internal/shared/events"
)

const eventTopic = "decision-workflow"

// CreateDecisionCommand is the write-model input for decision creation.
type CreateDecisionCommand struct {
	TenantID    string
	Title       string
	Description string
	Context     string
	Type        string
	Priority    entities.Priority
	// SLAHoursOverride replaces the priority-derived SLA when positive.
	SLAHoursOverride int
	OwnerID          string
	AssigneeID       string
	Options          []entities.Option
	BlockedItems     []entities.BlockedItem
	OutcomeID        string
	HypothesisID     string
	TeamID           string
	ExternalRefs     map[string]string
	Tags             []string
}

// EscalateDecisionCommand reassigns an open decision to a new accountable
// person and bumps the escalation level.
type EscalateDecisionCommand struct {
	TenantID       string
	DecisionID     string
	TargetPersonID string
	Reason         string
}

// ResolveDecisionCommand records the terminal resolution and triggers the
// cascade into blocked hypotheses and stakeholder aggregates.
type ResolveDecisionCommand struct {
	TenantID       string
	DecisionID     string
	DecidedByID    string
	Rationale      string
	SelectedOption string
}

// ResolveDecisionResult reports the resolved decision plus the hypothesis
// ids the cascade actually unblocked.
type ResolveDecisionResult struct {
	Decision               entities.Decision
	UnblockedHypothesisIDs []string
	CycleTimeHours         float64
}

// DecisionUseCase orchestrates the decision lifecycle: guarded status
// transitions, SLA deadline computation, escalation and the atomic
// resolution cascade.
type DecisionUseCase struct {
	UoW     ports.UnitOfWork
	Persons ports.PersonDirectory
	Events  ports.EventPublisher
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	Logger  *slog.Logger
}

// Create stores a new decision in NEEDS_INPUT with its SLA deadline and,
// when an assignee is set, increments that person's pending counter in the
// same unit of work.
func (uc DecisionUseCase) Create(ctx context.Context, cmd CreateDecisionCommand) (entities.Decision, error) {
	logger := application.ResolveLogger(uc.Logger)
	tenantID := strings.TrimSpace(cmd.TenantID)
	title := strings.TrimSpace(cmd.Title)
	if tenantID == "" || title == "" || !entities.IsValidPriority(cmd.Priority) {
		logger.Warn("decision create validation failed",
			"event", "decision_create_validation_failed",
			"module", "decision-workflow/decision-service",
			"layer", "application",
			"tenant_id", tenantID,
			"priority", string(cmd.Priority),
		)
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}
	if cmd.SLAHoursOverride < 0 {
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}
	for _, item := range cmd.BlockedItems {
		if strings.TrimSpace(item.ItemType) == "" || strings.TrimSpace(item.ItemID) == "" {
			return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
		}
	}

	assigneeID := strings.TrimSpace(cmd.AssigneeID)
	if assigneeID != "" {
		if _, err := uc.Persons.GetPerson(ctx, tenantID, assigneeID); err != nil {
			return entities.Decision{}, err
		}
	}
	ownerID := strings.TrimSpace(cmd.OwnerID)
	if ownerID != "" {
		if _, err := uc.Persons.GetPerson(ctx, tenantID, ownerID); err != nil {
			return entities.Decision{}, err
		}
	}

	now := uc.now()
	decisionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Decision{}, err
	}

	slaHours := cmd.SLAHoursOverride
	if slaHours == 0 {
		slaHours = entities.DefaultSLAHours(cmd.Priority)
	}
	dueAt := now.Add(time.Duration(slaHours) * time.Hour)

	decision := entities.Decision{
		DecisionID:   decisionID,
		TenantID:     tenantID,
		Title:        title,
		Description:  strings.TrimSpace(cmd.Description),
		Context:      strings.TrimSpace(cmd.Context),
		Options:      append([]entities.Option(nil), cmd.Options...),
		Status:       entities.StatusNeedsInput,
		Priority:     cmd.Priority,
		Type:         strings.TrimSpace(cmd.Type),
		OwnerID:      ownerID,
		AssigneeID:   assigneeID,
		OutcomeID:    strings.TrimSpace(cmd.OutcomeID),
		HypothesisID: strings.TrimSpace(cmd.HypothesisID),
		TeamID:       strings.TrimSpace(cmd.TeamID),
		SLAHours:     slaHours,
		DueAt:        &dueAt,
		BlockedItems: append([]entities.BlockedItem(nil), cmd.BlockedItems...),
		ExternalRefs: cmd.ExternalRefs,
		Tags:         append([]string(nil), cmd.Tags...),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.UoW.Transact(ctx, func(tx ports.TxRepository) error {
		if err := tx.InsertDecision(ctx, decision); err != nil {
			return err
		}
		if assigneeID == "" {
			return nil
		}
		applied, err := tx.ApplyStakeholderAssignment(ctx, tenantID, assigneeID)
		if err != nil {
			return err
		}
		if !applied {
			logger.Info("assignee has no stakeholder record; pending counter skipped",
				"event", "decision_create_stakeholder_missing",
				"module", "decision-workflow/decision-service",
				"layer", "application",
				"tenant_id", tenantID,
				"person_id", assigneeID,
			)
		}
		return nil
	})
	if err != nil {
		return entities.Decision{}, err
	}

	uc.publish(ctx, "decision.created", decision.DecisionID, map[string]any{
		"decision_id": decision.DecisionID,
		"tenant_id":   decision.TenantID,
		"priority":    string(decision.Priority),
		"sla_hours":   decision.SLAHours,
		"due_at":      dueAt.Format(time.RFC3339),
		"assignee_id": assigneeID,
	})

	logger.Info("decision created",
		"event", "decision_created",
		"module", "decision-workflow/decision-service",
		"layer", "application",
		"tenant_id", tenantID,
		"decision_id", decision.DecisionID,
		"priority", string(decision.Priority),
		"sla_hours", slaHours,
	)
	return decision, nil
}

// StartDiscussion moves NEEDS_INPUT to UNDER_DISCUSSION.
func (uc DecisionUseCase) StartDiscussion(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	return uc.transition(ctx, tenantID, decisionID, entities.StatusUnderDiscussion, nil)
}

// Defer parks an open decision; the reason is stored as the rationale.
func (uc DecisionUseCase) Defer(ctx context.Context, tenantID string, decisionID string, reason string) (entities.Decision, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return entities.Decision{}, domainerrors.ErrReasonRequired
	}
	return uc.transition(ctx, tenantID, decisionID, entities.StatusDeferred, func(d *entities.Decision) error {
		d.DecisionRationale = reason
		return nil
	})
}

// Cancel closes any non-terminal decision with a mandatory reason.
func (uc DecisionUseCase) Cancel(ctx context.Context, tenantID string, decisionID string, reason string) (entities.Decision, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return entities.Decision{}, domainerrors.ErrReasonRequired
	}
	return uc.transition(ctx, tenantID, decisionID, entities.StatusCancelled, func(d *entities.Decision) error {
		d.DecisionRationale = reason
		return nil
	})
}

// Reopen returns a deferred or cancelled decision to NEEDS_INPUT, clears
// the recorded rationale and resolution fields, resets the escalation
// level and restarts the SLA clock from now.
func (uc DecisionUseCase) Reopen(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	now := uc.now()
	return uc.transition(ctx, tenantID, decisionID, entities.StatusNeedsInput, func(d *entities.Decision) error {
		d.DecisionRationale = ""
		d.DecidedAt = nil
		d.DecidedByID = ""
		d.SelectedOption = ""
		d.EscalationLevel = 0
		dueAt := now.Add(time.Duration(d.SLAHours) * time.Hour)
		d.DueAt = &dueAt
		return nil
	})
}

// Implement marks a decided decision as carried out.
func (uc DecisionUseCase) Implement(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	return uc.transition(ctx, tenantID, decisionID, entities.StatusImplemented, nil)
}

// Assign sets the assignee directly, with no status guard.
func (uc DecisionUseCase) Assign(ctx context.Context, tenantID string, decisionID string, personID string) (entities.Decision, error) {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}
	if _, err := uc.Persons.GetPerson(ctx, strings.TrimSpace(tenantID), personID); err != nil {
		return entities.Decision{}, err
	}
	return uc.update(ctx, tenantID, decisionID, func(d *entities.Decision) error {
		d.AssigneeID = personID
		return nil
	})
}

// Reassign replaces the assignee and appends a human-readable audit note
// to the decision context, preserving any prior content.
func (uc DecisionUseCase) Reassign(ctx context.Context, tenantID string, decisionID string, personID string, reason string) (entities.Decision, error) {
	personID = strings.TrimSpace(personID)
	if personID == "" {
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}
	if _, err := uc.Persons.GetPerson(ctx, strings.TrimSpace(tenantID), personID); err != nil {
		return entities.Decision{}, err
	}
	reason = strings.TrimSpace(reason)
	return uc.update(ctx, tenantID, decisionID, func(d *entities.Decision) error {
		note := fmt.Sprintf("[Reassigned from %s to %s] %s", d.AssigneeID, personID, reason)
		if d.Context == "" {
			d.Context = note
		} else {
			d.Context = d.Context + "\n" + note
		}
		d.AssigneeID = personID
		return nil
	})
}

// Escalate bumps the escalation level and reassigns the decision to the
// target person in one write. The previous assignee keeps the decision in
// their pending count; only their escalated counter moves.
func (uc DecisionUseCase) Escalate(ctx context.Context, cmd EscalateDecisionCommand) (entities.Decision, error) {
	logger := application.ResolveLogger(uc.Logger)
	tenantID := strings.TrimSpace(cmd.TenantID)
	targetID := strings.TrimSpace(cmd.TargetPersonID)
	if tenantID == "" || strings.TrimSpace(cmd.DecisionID) == "" || targetID == "" {
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}
	if _, err := uc.Persons.GetPerson(ctx, tenantID, targetID); err != nil {
		return entities.Decision{}, err
	}

	now := uc.now()
	var escalated entities.Decision
	err := uc.UoW.Transact(ctx, func(tx ports.TxRepository) error {
		decision, err := tx.GetDecision(ctx, tenantID, strings.TrimSpace(cmd.DecisionID))
		if err != nil {
			return err
		}
		if !decision.Open() {
			return domainerrors.ErrDecisionNotOpen
		}
		previousAssignee := decision.AssigneeID

		decision.EscalationLevel++
		decision.EscalatedAt = &now
		decision.EscalatedToID = targetID
		decision.AssigneeID = targetID
		decision.UpdatedAt = now
		decision.Version++
		if err := tx.UpdateDecision(ctx, decision); err != nil {
			return err
		}

		if previousAssignee != "" && previousAssignee != targetID {
			if _, err := tx.ApplyStakeholderEscalation(ctx, tenantID, previousAssignee); err != nil {
				return err
			}
		}
		escalated = decision
		return nil
	})
	if err != nil {
		return entities.Decision{}, err
	}

	uc.publish(ctx, "decision.escalated", escalated.DecisionID, map[string]any{
		"decision_id":      escalated.DecisionID,
		"tenant_id":        escalated.TenantID,
		"escalation_level": escalated.EscalationLevel,
		"escalated_to":     targetID,
		"reason":           strings.TrimSpace(cmd.Reason),
	})

	logger.Info("decision escalated",
		"event", "decision_escalated",
		"module", "decision-workflow/decision-service",
		"layer", "application",
		"tenant_id", tenantID,
		"decision_id", escalated.DecisionID,
		"escalation_level", escalated.EscalationLevel,
		"escalated_to", targetID,
	)
	return escalated, nil
}

// Resolve records the terminal decision and runs the cascade atomically:
// every blocked hypothesis referenced by the decision is moved to READY,
// and the assignee's stakeholder aggregates fold in the response time.
func (uc DecisionUseCase) Resolve(ctx context.Context, cmd ResolveDecisionCommand) (ResolveDecisionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	tenantID := strings.TrimSpace(cmd.TenantID)
	decidedByID := strings.TrimSpace(cmd.DecidedByID)
	rationale := strings.TrimSpace(cmd.Rationale)
	if tenantID == "" || strings.TrimSpace(cmd.DecisionID) == "" || decidedByID == "" {
		return ResolveDecisionResult{}, domainerrors.ErrInvalidDecisionInput
	}
	if rationale == "" {
		return ResolveDecisionResult{}, domainerrors.ErrRationaleRequired
	}
	if _, err := uc.Persons.GetPerson(ctx, tenantID, decidedByID); err != nil {
		return ResolveDecisionResult{}, err
	}

	now := uc.now()
	var result ResolveDecisionResult
	err := uc.UoW.Transact(ctx, func(tx ports.TxRepository) error {
		decision, err := tx.GetDecision(ctx, tenantID, strings.TrimSpace(cmd.DecisionID))
		if err != nil {
			return err
		}
		if err := entities.Transitions.Validate(decision.Status, entities.StatusDecided); err != nil {
			return err
		}
		selected := strings.TrimSpace(cmd.SelectedOption)
		if selected != "" && !decision.HasOption(selected) {
			return domainerrors.ErrUnknownOption
		}

		decision.Status = entities.StatusDecided
		decision.DecidedAt = &now
		decision.DecidedByID = decidedByID
		decision.DecisionRationale = rationale
		decision.SelectedOption = selected
		decision.UpdatedAt = now
		decision.Version++
		if err := tx.UpdateDecision(ctx, decision); err != nil {
			return err
		}

		var unblocked []string
		for _, item := range decision.BlockedItems {
			if item.ItemType != entities.BlockedItemTypeHypothesis {
				continue
			}
			snapshot, err := tx.GetHypothesisSnapshot(ctx, tenantID, item.ItemID)
			if err != nil {
				if errors.Is(err, domainerrors.ErrHypothesisNotFound) {
					logger.Warn("blocked item references missing hypothesis",
						"event", "decision_resolve_blocked_item_missing",
						"module", "decision-workflow/decision-service",
						"layer", "application",
						"tenant_id", tenantID,
						"decision_id", decision.DecisionID,
						"hypothesis_id", item.ItemID,
					)
					continue
				}
				return err
			}
			if snapshot.Status != ports.HypothesisStatusBlocked {
				continue
			}
			ready, err := tx.MarkHypothesisReady(ctx, tenantID, item.ItemID)
			if err != nil {
				return err
			}
			if ready {
				unblocked = append(unblocked, item.ItemID)
			}
		}

		if decision.AssigneeID != "" {
			_, found, err := tx.GetStakeholderByPerson(ctx, tenantID, decision.AssigneeID)
			if err != nil {
				return err
			}
			if found {
				responseTime := decision.WaitTimeHours(now)
				if _, err := tx.ApplyStakeholderCompletion(ctx, tenantID, decision.AssigneeID, now, responseTime); err != nil {
					return err
				}
			}
		}

		result = ResolveDecisionResult{
			Decision:               decision,
			UnblockedHypothesisIDs: unblocked,
			CycleTimeHours:         decision.WaitTimeHours(now),
		}
		return nil
	})
	if err != nil {
		return ResolveDecisionResult{}, err
	}

	uc.publish(ctx, "decision.resolved", result.Decision.DecisionID, map[string]any{
		"decision_id":              result.Decision.DecisionID,
		"tenant_id":                result.Decision.TenantID,
		"decided_by":               decidedByID,
		"selected_option":          result.Decision.SelectedOption,
		"cycle_time_hours":         result.CycleTimeHours,
		"escalated":                result.Decision.EscalationLevel > 0,
		"unblocked_hypothesis_ids": result.UnblockedHypothesisIDs,
	})

	logger.Info("decision resolved",
		"event", "decision_resolved",
		"module", "decision-workflow/decision-service",
		"layer", "application",
		"tenant_id", tenantID,
		"decision_id", result.Decision.DecisionID,
		"decided_by", decidedByID,
		"unblocked_count", len(result.UnblockedHypothesisIDs),
	)
	return result, nil
}

// transition runs a guarded status change in one unit of work. mutate runs
// after the guard passes and before the write.
func (uc DecisionUseCase) transition(
	ctx context.Context,
	tenantID string,
	decisionID string,
	target entities.Status,
	mutate func(*entities.Decision) error,
) (entities.Decision, error) {
	tenantID = strings.TrimSpace(tenantID)
	decisionID = strings.TrimSpace(decisionID)
	if tenantID == "" || decisionID == "" {
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}

	now := uc.now()
	var (
		updated  entities.Decision
		previous entities.Status
	)
	err := uc.UoW.Transact(ctx, func(tx ports.TxRepository) error {
		decision, err := tx.GetDecision(ctx, tenantID, decisionID)
		if err != nil {
			return err
		}
		if err := entities.Transitions.Validate(decision.Status, target); err != nil {
			return err
		}
		previous = decision.Status
		decision.Status = target
		if mutate != nil {
			if err := mutate(&decision); err != nil {
				return err
			}
		}
		decision.UpdatedAt = now
		decision.Version++
		if err := tx.UpdateDecision(ctx, decision); err != nil {
			return err
		}
		updated = decision
		return nil
	})
	if err != nil {
		return entities.Decision{}, err
	}

	// Publish only after the unit of work commits.
	uc.publish(ctx, "decision.status_changed", updated.DecisionID, map[string]any{
		"decision_id": updated.DecisionID,
		"tenant_id":   updated.TenantID,
		"from":        string(previous),
		"to":          string(target),
	})
	return updated, nil
}

// update runs an unguarded field change in one unit of work.
func (uc DecisionUseCase) update(
	ctx context.Context,
	tenantID string,
	decisionID string,
	mutate func(*entities.Decision) error,
) (entities.Decision, error) {
	tenantID = strings.TrimSpace(tenantID)
	decisionID = strings.TrimSpace(decisionID)
	if tenantID == "" || decisionID == "" {
		return entities.Decision{}, domainerrors.ErrInvalidDecisionInput
	}

	now := uc.now()
	var updated entities.Decision
	err := uc.UoW.Transact(ctx, func(tx ports.TxRepository) error {
		decision, err := tx.GetDecision(ctx, tenantID, decisionID)
		if err != nil {
			return err
		}
		if err := mutate(&decision); err != nil {
			return err
		}
		decision.UpdatedAt = now
		decision.Version++
		if err := tx.UpdateDecision(ctx, decision); err != nil {
			return err
		}
		updated = decision
		return nil
	})
	if err != nil {
		return entities.Decision{}, err
	}
	return updated, nil
}

func (uc DecisionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

// publish is best-effort: failures are logged and dropped so the primary
// operation never depends on event delivery.
func (uc DecisionUseCase) publish(ctx context.Context, eventType string, key string, payload map[string]any) {
	if uc.Events == nil {
		return
	}
	logger := application.ResolveLogger(uc.Logger)
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		logger.Warn("event id generation failed; event dropped",
			"event", "decision_event_dropped",
			"module", "decision-workflow/decision-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
		return
	}
	envelope := events.Envelope{
		EventID:    eventID,
		EventType:  eventType,
		Key:        key,
		OccurredAt: uc.now(),
		Payload:    payload,
	}
	if err := uc.Events.Publish(ctx, eventTopic, envelope); err != nil {
		logger.Warn("event publish failed; event dropped",
			"event", "decision_event_dropped",
			"module", "decision-workflow/decision-service",
			"layer", "application",
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}
