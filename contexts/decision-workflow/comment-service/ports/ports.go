package ports

import (
	"context"
	"time"

	"compass/contexts/decision-workflow/comment-service/domain/entities"
)

type Repository interface {
	GetComment(ctx context.Context, tenantID string, commentID string) (entities.Comment, error)
	InsertComment(ctx context.Context, comment entities.Comment) error
	UpdateComment(ctx context.Context, comment entities.Comment) error
	DeleteComment(ctx context.Context, tenantID string, commentID string) error
	ListCommentsByDecision(ctx context.Context, tenantID string, decisionID string) ([]entities.Comment, error)
}

// DecisionDirectory verifies the commented-on decision exists within the
// tenant. Backed by the decision-service read side.
type DecisionDirectory interface {
	DecisionExists(ctx context.Context, tenantID string, decisionID string) (bool, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
