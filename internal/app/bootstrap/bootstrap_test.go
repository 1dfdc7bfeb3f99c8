package bootstrap

import (
	"context"
	"math"
	"testing"
	"time"

	decisioncommands "compass/contexts/decision-workflow/decision-service/application/commands"
	decisionentities "compass/contexts/decision-workflow/decision-service/domain/entities"
	decisionports "compass/contexts/decision-workflow/decision-service/ports"
	voteapplication "compass/contexts/decision-workflow/vote-service/application"
	voteentities "compass/contexts/decision-workflow/vote-service/domain/entities"
	hypothesisapplication "compass/contexts/experiment-tracking/hypothesis-service/application"
	hypothesisentities "compass/contexts/experiment-tracking/hypothesis-service/domain/entities"
	stakeholderapplication "compass/contexts/people-ops/stakeholder-service/application"
)

const testTenant = "tenant-1"

func TestMemoryModulesResolveCascadeReachesLiveStores(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	ctx := context.Background()

	modules := newMemoryModules(nil, nil)
	modules.DecisionStore.FixedNow = now
	modules.HypothesisStore.FixedNow = now
	modules.StakeholderStore.FixedNow = now
	modules.DecisionStore.SetPerson(decisionports.Person{PersonID: "person-a", TenantID: testTenant, DisplayName: "Ada"})

	hypothesisSvc := modules.Hypotheses.Handler.Hypotheses
	hypothesis, err := hypothesisSvc.Create(ctx, hypothesisapplication.CreateHypothesisInput{
		TenantID: testTenant,
		Title:    "self-serve onboarding lifts activation",
	})
	if err != nil {
		t.Fatalf("create hypothesis: %v", err)
	}
	if _, err := hypothesisSvc.Transition(ctx, testTenant, hypothesis.HypothesisID, hypothesisentities.StatusReady); err != nil {
		t.Fatalf("transition to ready: %v", err)
	}
	if _, err := hypothesisSvc.Block(ctx, testTenant, hypothesis.HypothesisID, "waiting on vendor decision"); err != nil {
		t.Fatalf("block: %v", err)
	}

	stakeholderSvc := modules.Stakeholders.Handler.Stakeholders
	if _, err := stakeholderSvc.Register(ctx, stakeholderapplication.RegisterStakeholderInput{
		TenantID:    testTenant,
		PersonID:    "person-a",
		DisplayName: "Ada",
	}); err != nil {
		t.Fatalf("register stakeholder: %v", err)
	}

	decisionUC := modules.Decisions.Handler.Decisions
	decision, err := decisionUC.Create(ctx, decisioncommands.CreateDecisionCommand{
		TenantID:   testTenant,
		Title:      "pick onboarding vendor",
		Priority:   decisionentities.PriorityNormal,
		AssigneeID: "person-a",
		BlockedItems: []decisionentities.BlockedItem{
			{ItemType: decisionentities.BlockedItemTypeHypothesis, ItemID: hypothesis.HypothesisID},
		},
	})
	if err != nil {
		t.Fatalf("create decision: %v", err)
	}

	assigned, err := stakeholderSvc.Get(ctx, testTenant, "person-a")
	if err != nil {
		t.Fatalf("get stakeholder: %v", err)
	}
	if assigned.DecisionsPending != 1 {
		t.Fatalf("pending = %d, want 1 after bridged assignment", assigned.DecisionsPending)
	}

	if _, err := decisionUC.StartDiscussion(ctx, testTenant, decision.DecisionID); err != nil {
		t.Fatalf("start discussion: %v", err)
	}

	modules.DecisionStore.FixedNow = now.Add(10 * time.Hour)
	result, err := decisionUC.Resolve(ctx, decisioncommands.ResolveDecisionCommand{
		TenantID:    testTenant,
		DecisionID:  decision.DecisionID,
		DecidedByID: "person-a",
		Rationale:   "vendor b covers sso",
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(result.UnblockedHypothesisIDs) != 1 || result.UnblockedHypothesisIDs[0] != hypothesis.HypothesisID {
		t.Fatalf("unblocked = %v, want [%s]", result.UnblockedHypothesisIDs, hypothesis.HypothesisID)
	}

	unblocked, err := hypothesisSvc.Get(ctx, testTenant, hypothesis.HypothesisID)
	if err != nil {
		t.Fatalf("get hypothesis: %v", err)
	}
	if unblocked.Status != hypothesisentities.StatusReady {
		t.Fatalf("hypothesis status = %s, want %s after cascade", unblocked.Status, hypothesisentities.StatusReady)
	}
	if unblocked.BlockedReason != "" {
		t.Fatalf("blockedReason = %q, want cleared", unblocked.BlockedReason)
	}

	completed, err := stakeholderSvc.Get(ctx, testTenant, "person-a")
	if err != nil {
		t.Fatalf("get stakeholder: %v", err)
	}
	if completed.DecisionsPending != 0 || completed.DecisionsCompleted != 1 {
		t.Fatalf("counters = pending %d completed %d, want 0/1", completed.DecisionsPending, completed.DecisionsCompleted)
	}
	if completed.AvgResponseTimeHours == nil || math.Abs(*completed.AvgResponseTimeHours-10) > 1e-9 {
		t.Fatalf("avg = %v, want 10h", completed.AvgResponseTimeHours)
	}
}

func TestMemoryModulesVoteDirectorySeesLiveDecisions(t *testing.T) {
	ctx := context.Background()
	modules := newMemoryModules(nil, nil)
	modules.DecisionStore.SetPerson(decisionports.Person{PersonID: "person-a", TenantID: testTenant, DisplayName: "Ada"})

	decision, err := modules.Decisions.Handler.Decisions.Create(ctx, decisioncommands.CreateDecisionCommand{
		TenantID: testTenant,
		Title:    "pick onboarding vendor",
		Priority: decisionentities.PriorityNormal,
	})
	if err != nil {
		t.Fatalf("create decision: %v", err)
	}

	vote, err := modules.Votes.Handler.Votes.Cast(ctx, voteapplication.CastVoteInput{
		TenantID:   testTenant,
		DecisionID: decision.DecisionID,
		PersonID:   "person-a",
		Vote:       voteentities.VoteApprove,
	})
	if err != nil {
		t.Fatalf("cast vote against live decision: %v", err)
	}
	if vote.DecisionID != decision.DecisionID {
		t.Fatalf("vote decision = %s, want %s", vote.DecisionID, decision.DecisionID)
	}
}
