// Package postgresadapter persists votes in the decision_votes table
// with a unique (tenant_id, decision_id, person_id) key.
package postgresadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/decision-workflow/vote-service/domain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// UpsertVote relies on the unique key: conflicting casts overwrite the
// vote and comment in place, leaving created_at untouched.
func (r *Repository) UpsertVote(ctx context.Context, vote entities.Vote) (entities.Vote, error) {
	row := voteModelFromEntity(vote)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "tenant_id"}, {Name: "decision_id"}, {Name: "person_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"vote", "comment", "updated_at"}),
		}).
		Create(&row).
		Error
	if err != nil {
		return entities.Vote{}, r.logError("vote_repo_upsert_failed", err,
			"decision_id", row.DecisionID,
		)
	}

	var stored voteModel
	err = r.db.WithContext(ctx).
		Where("tenant_id = ? AND decision_id = ? AND person_id = ?", row.TenantID, row.DecisionID, row.PersonID).
		First(&stored).
		Error
	if err != nil {
		return entities.Vote{}, r.logError("vote_repo_upsert_readback_failed", err,
			"decision_id", row.DecisionID,
		)
	}
	return stored.toEntity(), nil
}

func (r *Repository) ListVotesByDecision(ctx context.Context, tenantID string, decisionID string) ([]entities.Vote, error) {
	var rows []voteModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND decision_id = ?", strings.TrimSpace(tenantID), strings.TrimSpace(decisionID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("vote_repo_list_failed", err,
			"decision_id", strings.TrimSpace(decisionID),
		)
	}
	out := make([]entities.Vote, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// DecisionExists reads the decisions table owned by the decision-service.
func (r *Repository) DecisionExists(ctx context.Context, tenantID string, decisionID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("decisions").
		Where("id = ? AND tenant_id = ?", strings.TrimSpace(decisionID), strings.TrimSpace(tenantID)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("vote_repo_decision_lookup_failed", err,
			"decision_id", strings.TrimSpace(decisionID),
		)
	}
	return count > 0, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "decision-workflow/vote-service",
		"layer", "adapter/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("vote repository operation failed", fields...)
	return err
}

type voteModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	TenantID   string    `gorm:"column:tenant_id"`
	DecisionID string    `gorm:"column:decision_id"`
	PersonID   string    `gorm:"column:person_id"`
	Vote       string    `gorm:"column:vote"`
	Comment    string    `gorm:"column:comment"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "decision_votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		ID:         strings.TrimSpace(vote.VoteID),
		TenantID:   strings.TrimSpace(vote.TenantID),
		DecisionID: strings.TrimSpace(vote.DecisionID),
		PersonID:   strings.TrimSpace(vote.PersonID),
		Vote:       string(vote.Vote),
		Comment:    vote.Comment,
		CreatedAt:  vote.CreatedAt,
		UpdatedAt:  vote.UpdatedAt,
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		VoteID:     m.ID,
		TenantID:   m.TenantID,
		DecisionID: m.DecisionID,
		PersonID:   m.PersonID,
		Vote:       entities.VoteOption(m.Vote),
		Comment:    m.Comment,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
