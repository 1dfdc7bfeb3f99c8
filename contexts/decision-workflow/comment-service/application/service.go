package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/decision-workflow/comment-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/comment-service/domain/errors"
	"compass/contexts/decision-workflow/comment-service/ports"
)

type CreateCommentInput struct {
	TenantID   string
	DecisionID string
	AuthorID   string
	Content    string
	OptionID   string
	ParentID   string
}

type Service struct {
	Repo      ports.Repository
	Decisions ports.DecisionDirectory
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Logger    *slog.Logger
}

func (s Service) Create(ctx context.Context, input CreateCommentInput) (entities.Comment, error) {
	tenantID := strings.TrimSpace(input.TenantID)
	decisionID := strings.TrimSpace(input.DecisionID)
	authorID := strings.TrimSpace(input.AuthorID)
	content := strings.TrimSpace(input.Content)
	if tenantID == "" || decisionID == "" || authorID == "" || content == "" {
		return entities.Comment{}, domainerrors.ErrInvalidCommentInput
	}

	exists, err := s.Decisions.DecisionExists(ctx, tenantID, decisionID)
	if err != nil {
		return entities.Comment{}, err
	}
	if !exists {
		return entities.Comment{}, domainerrors.ErrDecisionNotFound
	}

	parentID := strings.TrimSpace(input.ParentID)
	if parentID != "" {
		parent, err := s.Repo.GetComment(ctx, tenantID, parentID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrCommentNotFound) {
				return entities.Comment{}, domainerrors.ErrParentNotFound
			}
			return entities.Comment{}, err
		}
		if parent.DecisionID != decisionID {
			return entities.Comment{}, domainerrors.ErrParentNotFound
		}
		if parent.ParentID != "" {
			return entities.Comment{}, domainerrors.ErrNestedReply
		}
	}

	now := s.now()
	commentID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.Comment{}, err
	}
	comment := entities.Comment{
		CommentID:  commentID,
		TenantID:   tenantID,
		DecisionID: decisionID,
		AuthorID:   authorID,
		Content:    content,
		OptionID:   strings.TrimSpace(input.OptionID),
		ParentID:   parentID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.InsertComment(ctx, comment); err != nil {
		return entities.Comment{}, err
	}
	resolveLogger(s.Logger).Info("comment created",
		"event", "comment_created",
		"module", "decision-workflow/comment-service",
		"layer", "application",
		"tenant_id", tenantID,
		"decision_id", decisionID,
		"comment_id", commentID,
	)
	return comment, nil
}

// Edit replaces the content and marks the comment edited. Only the
// author may edit.
func (s Service) Edit(ctx context.Context, tenantID string, commentID string, actorID string, content string) (entities.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return entities.Comment{}, domainerrors.ErrInvalidCommentInput
	}
	comment, err := s.authored(ctx, tenantID, commentID, actorID)
	if err != nil {
		return entities.Comment{}, err
	}
	comment.Content = content
	comment.Edited = true
	comment.UpdatedAt = s.now()
	if err := s.Repo.UpdateComment(ctx, comment); err != nil {
		return entities.Comment{}, err
	}
	return comment, nil
}

// Delete removes the comment. Only the author may delete.
func (s Service) Delete(ctx context.Context, tenantID string, commentID string, actorID string) error {
	comment, err := s.authored(ctx, tenantID, commentID, actorID)
	if err != nil {
		return err
	}
	return s.Repo.DeleteComment(ctx, comment.TenantID, comment.CommentID)
}

// ListByDecision returns the decision's discussion as threads: top-level
// comments in creation order, each with its replies in creation order.
func (s Service) ListByDecision(ctx context.Context, tenantID string, decisionID string) ([]entities.Thread, error) {
	tenantID = strings.TrimSpace(tenantID)
	decisionID = strings.TrimSpace(decisionID)
	if tenantID == "" || decisionID == "" {
		return nil, domainerrors.ErrInvalidCommentInput
	}
	comments, err := s.Repo.ListCommentsByDecision(ctx, tenantID, decisionID)
	if err != nil {
		return nil, err
	}

	replies := map[string][]entities.Comment{}
	threads := make([]entities.Thread, 0, len(comments))
	for _, comment := range comments {
		if comment.ParentID != "" {
			replies[comment.ParentID] = append(replies[comment.ParentID], comment)
		}
	}
	for _, comment := range comments {
		if comment.ParentID == "" {
			threads = append(threads, entities.Thread{
				Comment: comment,
				Replies: replies[comment.CommentID],
			})
		}
	}
	return threads, nil
}

func (s Service) authored(ctx context.Context, tenantID string, commentID string, actorID string) (entities.Comment, error) {
	tenantID = strings.TrimSpace(tenantID)
	commentID = strings.TrimSpace(commentID)
	actorID = strings.TrimSpace(actorID)
	if tenantID == "" || commentID == "" || actorID == "" {
		return entities.Comment{}, domainerrors.ErrInvalidCommentInput
	}
	comment, err := s.Repo.GetComment(ctx, tenantID, commentID)
	if err != nil {
		return entities.Comment{}, err
	}
	if comment.AuthorID != actorID {
		return entities.Comment{}, domainerrors.ErrNotCommentAuthor
	}
	return comment, nil
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
