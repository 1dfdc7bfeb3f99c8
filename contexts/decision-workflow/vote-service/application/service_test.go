package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"compass/contexts/decision-workflow/vote-service/adapters/memory"
	"compass/contexts/decision-workflow/vote-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/vote-service/domain/errors"
)

const (
	testTenant   = "tenant-1"
	testDecision = "decision-1"
)

func newFixture(now time.Time) (Service, *memory.Store) {
	store := memory.NewStore()
	store.FixedNow = now
	store.SetDecision(testTenant, testDecision)
	return Service{Repo: store, Decisions: store, Clock: store, IDGen: store}, store
}

func TestCastRejectsUnknownOption(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())

	_, err := service.Cast(context.Background(), CastVoteInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		PersonID:   "person-a",
		Vote:       "maybe",
	})
	if !errors.Is(err, domainerrors.ErrUnknownVoteOption) {
		t.Fatalf("err = %v, want ErrUnknownVoteOption", err)
	}
}

func TestCastRequiresExistingDecision(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())

	_, err := service.Cast(context.Background(), CastVoteInput{
		TenantID:   testTenant,
		DecisionID: "decision-missing",
		PersonID:   "person-a",
		Vote:       entities.VoteApprove,
	})
	if !errors.Is(err, domainerrors.ErrDecisionNotFound) {
		t.Fatalf("err = %v, want ErrDecisionNotFound", err)
	}
}

func TestSecondCastOverwritesInPlace(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	service, store := newFixture(now)
	ctx := context.Background()

	first, err := service.Cast(ctx, CastVoteInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		PersonID:   "person-a",
		Vote:       entities.VoteApprove,
		Comment:    "looks right",
	})
	if err != nil {
		t.Fatalf("first cast: %v", err)
	}

	store.FixedNow = now.Add(time.Hour)
	second, err := service.Cast(ctx, CastVoteInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		PersonID:   "person-a",
		Vote:       entities.VoteReject,
		Comment:    "changed my mind",
	})
	if err != nil {
		t.Fatalf("second cast: %v", err)
	}

	if second.Vote != entities.VoteReject || second.Comment != "changed my mind" {
		t.Fatalf("overwrite = %s/%q", second.Vote, second.Comment)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("createdAt changed on overwrite: %s vs %s", second.CreatedAt, first.CreatedAt)
	}

	votes, err := service.ListByDecision(ctx, testTenant, testDecision)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(votes) != 1 {
		t.Fatalf("len = %d, want 1 (no duplicate row)", len(votes))
	}
}

func TestSummaryZeroFillsEveryOption(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())
	ctx := context.Background()

	for _, cast := range []struct {
		person string
		vote   entities.VoteOption
	}{
		{"person-a", entities.VoteApprove},
		{"person-b", entities.VoteApprove},
		{"person-c", entities.VoteReject},
	} {
		if _, err := service.Cast(ctx, CastVoteInput{
			TenantID:   testTenant,
			DecisionID: testDecision,
			PersonID:   cast.person,
			Vote:       cast.vote,
		}); err != nil {
			t.Fatalf("cast %s: %v", cast.person, err)
		}
	}

	summary, err := service.Summarize(ctx, testTenant, testDecision)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if summary.Total != 3 {
		t.Fatalf("total = %d, want 3", summary.Total)
	}
	want := map[entities.VoteOption]int{
		entities.VoteApprove:       2,
		entities.VoteReject:        1,
		entities.VoteAbstain:       0,
		entities.VoteNeedsMoreInfo: 0,
	}
	for option, count := range want {
		got, ok := summary.Counts[option]
		if !ok {
			t.Fatalf("option %s missing from summary", option)
		}
		if got != count {
			t.Fatalf("counts[%s] = %d, want %d", option, got, count)
		}
	}
}
