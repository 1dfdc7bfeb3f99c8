package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"time"

	commentservice "compass/contexts/decision-workflow/comment-service"
	commentmemory "compass/contexts/decision-workflow/comment-service/adapters/memory"
	decisionservice "compass/contexts/decision-workflow/decision-service"
	decisionmemory "compass/contexts/decision-workflow/decision-service/adapters/memory"
	decisionerrors "compass/contexts/decision-workflow/decision-service/domain/errors"
	decisionports "compass/contexts/decision-workflow/decision-service/ports"
	voteservice "compass/contexts/decision-workflow/vote-service"
	votememory "compass/contexts/decision-workflow/vote-service/adapters/memory"
	hypothesisservice "compass/contexts/experiment-tracking/hypothesis-service"
	hypothesismemory "compass/contexts/experiment-tracking/hypothesis-service/adapters/memory"
	hypothesisentities "compass/contexts/experiment-tracking/hypothesis-service/domain/entities"
	hypothesiserrors "compass/contexts/experiment-tracking/hypothesis-service/domain/errors"
	hypothesisports "compass/contexts/experiment-tracking/hypothesis-service/ports"
	stakeholderservice "compass/contexts/people-ops/stakeholder-service"
	stakeholdermemory "compass/contexts/people-ops/stakeholder-service/adapters/memory"
	stakeholdererrors "compass/contexts/people-ops/stakeholder-service/domain/errors"
)

// memoryModules is the DSN-less composition: every module on its own
// in-memory store, with the decision module's cascade and the vote and
// comment directories bridged to the live stores so resolve unblocks,
// stakeholder counters and decision-existence checks behave like the
// shared-database deployment.
type memoryModules struct {
	Decisions    decisionservice.Module
	Hypotheses   hypothesisservice.Module
	Stakeholders stakeholderservice.Module
	Votes        voteservice.Module
	Comments     commentservice.Module

	DecisionStore    *decisionmemory.Store
	HypothesisStore  *hypothesismemory.Store
	StakeholderStore *stakeholdermemory.Store
}

func newMemoryModules(bus hypothesisports.EventPublisher, logger *slog.Logger) memoryModules {
	decisionStore := decisionmemory.NewStore(nil)
	hypothesisStore := hypothesismemory.NewStore()
	stakeholderStore := stakeholdermemory.NewStore()
	voteStore := votememory.NewStore()
	commentStore := commentmemory.NewStore()

	decisionStore.Bridge = memoryCascade{
		hypotheses:   hypothesisStore,
		stakeholders: stakeholderStore,
	}
	directory := memoryDecisionDirectory{decisions: decisionStore}

	decisions := decisionservice.NewModule(decisionservice.Dependencies{
		UoW:     decisionStore,
		Reads:   decisionStore,
		Persons: decisionStore,
		Events:  bus,
		Clock:   decisionStore,
		IDGen:   decisionStore,
		Logger:  logger,
	})
	decisions.Store = decisionStore

	hypotheses := hypothesisservice.NewModule(hypothesisservice.Dependencies{
		Repo:   hypothesisStore,
		Events: bus,
		Clock:  hypothesisStore,
		IDGen:  hypothesisStore,
		Logger: logger,
	})
	hypotheses.Store = hypothesisStore

	stakeholders := stakeholderservice.NewModule(stakeholderservice.Dependencies{
		Repo:   stakeholderStore,
		Clock:  stakeholderStore,
		Logger: logger,
	})
	stakeholders.Store = stakeholderStore

	votes := voteservice.NewModule(voteservice.Dependencies{
		Repo:      voteStore,
		Decisions: directory,
		Clock:     voteStore,
		IDGen:     voteStore,
		Logger:    logger,
	})
	votes.Store = voteStore

	comments := commentservice.NewModule(commentservice.Dependencies{
		Repo:      commentStore,
		Decisions: directory,
		Clock:     commentStore,
		IDGen:     commentStore,
		Logger:    logger,
	})
	comments.Store = commentStore

	return memoryModules{
		Decisions:        decisions,
		Hypotheses:       hypotheses,
		Stakeholders:     stakeholders,
		Votes:            votes,
		Comments:         comments,
		DecisionStore:    decisionStore,
		HypothesisStore:  hypothesisStore,
		StakeholderStore: stakeholderStore,
	}
}

// memoryCascade implements the decision store's cross-module operations
// against the live hypothesis and stakeholder stores, mirroring the
// direct row updates the postgres adapter performs on the shared tables.
type memoryCascade struct {
	hypotheses   *hypothesismemory.Store
	stakeholders *stakeholdermemory.Store
}

func (c memoryCascade) GetHypothesisSnapshot(ctx context.Context, tenantID string, hypothesisID string) (decisionports.HypothesisSnapshot, error) {
	hypothesis, err := c.hypotheses.GetHypothesis(ctx, tenantID, hypothesisID)
	if errors.Is(err, hypothesiserrors.ErrHypothesisNotFound) {
		return decisionports.HypothesisSnapshot{}, decisionerrors.ErrHypothesisNotFound
	}
	if err != nil {
		return decisionports.HypothesisSnapshot{}, err
	}
	return decisionports.HypothesisSnapshot{
		HypothesisID:  hypothesis.HypothesisID,
		TenantID:      hypothesis.TenantID,
		Status:        string(hypothesis.Status),
		BlockedReason: hypothesis.BlockedReason,
	}, nil
}

func (c memoryCascade) MarkHypothesisReady(ctx context.Context, tenantID string, hypothesisID string) (bool, error) {
	hypothesis, err := c.hypotheses.GetHypothesis(ctx, tenantID, hypothesisID)
	if errors.Is(err, hypothesiserrors.ErrHypothesisNotFound) {
		return false, decisionerrors.ErrHypothesisNotFound
	}
	if err != nil {
		return false, err
	}
	if hypothesis.Status != hypothesisentities.StatusBlocked {
		return false, nil
	}
	if err := hypothesis.Apply(hypothesisentities.StatusReady, c.hypotheses.Now()); err != nil {
		return false, err
	}
	hypothesis.Version++
	if err := c.hypotheses.UpdateHypothesis(ctx, hypothesis); err != nil {
		return false, err
	}
	return true, nil
}

func (c memoryCascade) GetStakeholderByPerson(ctx context.Context, tenantID string, personID string) (decisionports.StakeholderSnapshot, bool, error) {
	stakeholder, err := c.stakeholders.GetStakeholder(ctx, tenantID, personID)
	if errors.Is(err, stakeholdererrors.ErrStakeholderNotFound) {
		return decisionports.StakeholderSnapshot{}, false, nil
	}
	if err != nil {
		return decisionports.StakeholderSnapshot{}, false, err
	}
	return decisionports.StakeholderSnapshot{
		PersonID:             stakeholder.PersonID,
		TenantID:             stakeholder.TenantID,
		DecisionsPending:     stakeholder.DecisionsPending,
		DecisionsCompleted:   stakeholder.DecisionsCompleted,
		DecisionsEscalated:   stakeholder.DecisionsEscalated,
		AvgResponseTimeHours: stakeholder.AvgResponseTimeHours,
		LastDecisionAt:       stakeholder.LastDecisionAt,
	}, true, nil
}

func (c memoryCascade) ApplyStakeholderAssignment(ctx context.Context, tenantID string, personID string) (bool, error) {
	return c.applyStakeholder(c.stakeholders.RecordAssignment(ctx, tenantID, personID))
}

func (c memoryCascade) ApplyStakeholderCompletion(ctx context.Context, tenantID string, personID string, decidedAt time.Time, responseTimeHours float64) (bool, error) {
	return c.applyStakeholder(c.stakeholders.RecordCompletion(ctx, tenantID, personID, decidedAt, responseTimeHours))
}

func (c memoryCascade) ApplyStakeholderEscalation(ctx context.Context, tenantID string, personID string) (bool, error) {
	return c.applyStakeholder(c.stakeholders.RecordEscalation(ctx, tenantID, personID))
}

func (c memoryCascade) applyStakeholder(err error) (bool, error) {
	if errors.Is(err, stakeholdererrors.ErrStakeholderNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// memoryDecisionDirectory answers vote and comment existence checks from
// the decision module's live store.
type memoryDecisionDirectory struct {
	decisions *decisionmemory.Store
}

func (d memoryDecisionDirectory) DecisionExists(ctx context.Context, tenantID string, decisionID string) (bool, error) {
	_, err := d.decisions.GetDecision(ctx, tenantID, decisionID)
	if errors.Is(err, decisionerrors.ErrDecisionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
