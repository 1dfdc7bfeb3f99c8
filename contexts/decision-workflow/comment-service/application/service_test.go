package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"compass/contexts/decision-workflow/comment-service/adapters/memory"
	domainerrors "compass/contexts/decision-workflow/comment-service/domain/errors"
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

func TestCreateRequiresExistingDecision(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())

	_, err := service.Create(context.Background(), CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: "decision-missing",
		AuthorID:   "person-a",
		Content:    "thoughts?",
	})
	if !errors.Is(err, domainerrors.ErrDecisionNotFound) {
		t.Fatalf("err = %v, want ErrDecisionNotFound", err)
	}
}

func TestReplyRequiresExistingParentOnSameDecision(t *testing.T) {
	service, store := newFixture(time.Now().UTC())
	ctx := context.Background()

	_, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-a",
		Content:    "reply",
		ParentID:   "comment-missing",
	})
	if !errors.Is(err, domainerrors.ErrParentNotFound) {
		t.Fatalf("err = %v, want ErrParentNotFound", err)
	}

	store.SetDecision(testTenant, "decision-2")
	other, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: "decision-2",
		AuthorID:   "person-a",
		Content:    "elsewhere",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-a",
		Content:    "cross-decision reply",
		ParentID:   other.CommentID,
	})
	if !errors.Is(err, domainerrors.ErrParentNotFound) {
		t.Fatalf("err = %v, want ErrParentNotFound for cross-decision parent", err)
	}
}

func TestRepliesCannotNest(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())
	ctx := context.Background()

	top, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-a",
		Content:    "top",
	})
	if err != nil {
		t.Fatalf("create top: %v", err)
	}
	reply, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-b",
		Content:    "reply",
		ParentID:   top.CommentID,
	})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}

	_, err = service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-c",
		Content:    "reply to reply",
		ParentID:   reply.CommentID,
	})
	if !errors.Is(err, domainerrors.ErrNestedReply) {
		t.Fatalf("err = %v, want ErrNestedReply", err)
	}
}

func TestEditIsAuthorOnlyAndSetsEdited(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())
	ctx := context.Background()

	comment, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-a",
		Content:    "original",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := service.Edit(ctx, testTenant, comment.CommentID, "person-b", "hijacked"); !errors.Is(err, domainerrors.ErrNotCommentAuthor) {
		t.Fatalf("err = %v, want ErrNotCommentAuthor", err)
	}

	edited, err := service.Edit(ctx, testTenant, comment.CommentID, "person-a", "revised")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if !edited.Edited || edited.Content != "revised" {
		t.Fatalf("edited = %v content = %q", edited.Edited, edited.Content)
	}
}

func TestDeleteIsAuthorOnly(t *testing.T) {
	service, _ := newFixture(time.Now().UTC())
	ctx := context.Background()

	comment, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-a",
		Content:    "to delete",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := service.Delete(ctx, testTenant, comment.CommentID, "person-b"); !errors.Is(err, domainerrors.ErrNotCommentAuthor) {
		t.Fatalf("err = %v, want ErrNotCommentAuthor", err)
	}
	if err := service.Delete(ctx, testTenant, comment.CommentID, "person-a"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	threads, err := service.ListByDecision(ctx, testTenant, testDecision)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(threads) != 0 {
		t.Fatalf("len = %d, want 0 after delete", len(threads))
	}
}

func TestListGroupsRepliesUnderTopLevel(t *testing.T) {
	now := time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)
	service, store := newFixture(now)
	ctx := context.Background()

	first, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-a",
		Content:    "first",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.FixedNow = now.Add(time.Minute)
	second, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-b",
		Content:    "second",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.FixedNow = now.Add(2 * time.Minute)
	reply, err := service.Create(ctx, CreateCommentInput{
		TenantID:   testTenant,
		DecisionID: testDecision,
		AuthorID:   "person-c",
		Content:    "reply to first",
		ParentID:   first.CommentID,
	})
	if err != nil {
		t.Fatalf("create reply: %v", err)
	}

	threads, err := service.ListByDecision(ctx, testTenant, testDecision)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("len = %d, want 2 top-level threads", len(threads))
	}
	if threads[0].Comment.CommentID != first.CommentID || threads[1].Comment.CommentID != second.CommentID {
		t.Fatalf("thread order = [%s %s]", threads[0].Comment.CommentID, threads[1].Comment.CommentID)
	}
	if len(threads[0].Replies) != 1 || threads[0].Replies[0].CommentID != reply.CommentID {
		t.Fatalf("replies under first = %v", threads[0].Replies)
	}
	if len(threads[1].Replies) != 0 {
		t.Fatalf("second thread should have no replies")
	}
}
