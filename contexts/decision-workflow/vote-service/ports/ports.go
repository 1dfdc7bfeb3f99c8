package ports

import (
	"context"
	"time"

	"compass/contexts/decision-workflow/vote-service/domain/entities"
)

type Repository interface {
	// UpsertVote inserts or overwrites the (tenant, decision, person)
	// row. On overwrite the original CreatedAt is preserved.
	UpsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, error)
	ListVotesByDecision(ctx context.Context, tenantID string, decisionID string) ([]entities.Vote, error)
}

// DecisionDirectory verifies the voted-on decision exists within the
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
