package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"compass/contexts/decision-workflow/comment-service/application"
	"compass/contexts/decision-workflow/comment-service/domain/entities"
	httptransport "compass/contexts/decision-workflow/comment-service/transport/http"
)

type Handler struct {
	Comments application.Service
	Logger   *slog.Logger
}

func (h Handler) CreateCommentHandler(ctx context.Context, tenantID string, decisionID string, actorID string, req httptransport.CreateCommentRequest) (httptransport.CommentResponse, error) {
	comment, err := h.Comments.Create(ctx, application.CreateCommentInput{
		TenantID:   tenantID,
		DecisionID: decisionID,
		AuthorID:   actorID,
		Content:    req.Content,
		OptionID:   req.OptionID,
		ParentID:   req.ParentID,
	})
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return toResponse(comment), nil
}

func (h Handler) EditCommentHandler(ctx context.Context, tenantID string, commentID string, actorID string, req httptransport.EditCommentRequest) (httptransport.CommentResponse, error) {
	comment, err := h.Comments.Edit(ctx, tenantID, commentID, actorID, req.Content)
	if err != nil {
		return httptransport.CommentResponse{}, err
	}
	return toResponse(comment), nil
}

func (h Handler) DeleteCommentHandler(ctx context.Context, tenantID string, commentID string, actorID string) error {
	return h.Comments.Delete(ctx, tenantID, commentID, actorID)
}

func (h Handler) ListThreadsHandler(ctx context.Context, tenantID string, decisionID string) (httptransport.ThreadListResponse, error) {
	threads, err := h.Comments.ListByDecision(ctx, tenantID, decisionID)
	if err != nil {
		return httptransport.ThreadListResponse{}, err
	}
	items := make([]httptransport.ThreadResponse, 0, len(threads))
	for _, thread := range threads {
		replies := make([]httptransport.CommentResponse, 0, len(thread.Replies))
		for _, reply := range thread.Replies {
			replies = append(replies, toResponse(reply))
		}
		items = append(items, httptransport.ThreadResponse{
			Comment: toResponse(thread.Comment),
			Replies: replies,
		})
	}
	return httptransport.ThreadListResponse{Items: items}, nil
}

func toResponse(comment entities.Comment) httptransport.CommentResponse {
	return httptransport.CommentResponse{
		CommentID:  comment.CommentID,
		TenantID:   comment.TenantID,
		DecisionID: comment.DecisionID,
		AuthorID:   comment.AuthorID,
		Content:    comment.Content,
		OptionID:   comment.OptionID,
		ParentID:   comment.ParentID,
		Edited:     comment.Edited,
		CreatedAt:  comment.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  comment.UpdatedAt.Format(time.RFC3339),
	}
}
