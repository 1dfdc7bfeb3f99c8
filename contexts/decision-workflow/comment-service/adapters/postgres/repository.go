// Package postgresadapter persists comments in the decision_comments
// table.
package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/decision-workflow/comment-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/comment-service/domain/errors"

	"gorm.io/gorm"
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

func (r *Repository) GetComment(ctx context.Context, tenantID string, commentID string) (entities.Comment, error) {
	var row commentModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", strings.TrimSpace(commentID), strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Comment{}, domainerrors.ErrCommentNotFound
		}
		return entities.Comment{}, r.logError("comment_repo_get_failed", err,
			"comment_id", strings.TrimSpace(commentID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) InsertComment(ctx context.Context, comment entities.Comment) error {
	row := commentModelFromEntity(comment)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("comment_repo_insert_failed", err,
			"comment_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) UpdateComment(ctx context.Context, comment entities.Comment) error {
	row := commentModelFromEntity(comment)
	result := r.db.WithContext(ctx).Model(&commentModel{}).
		Where("id = ? AND tenant_id = ?", row.ID, row.TenantID).
		Updates(map[string]any{
			"content":    row.Content,
			"edited":     row.Edited,
			"updated_at": row.UpdatedAt,
		})
	if result.Error != nil {
		return r.logError("comment_repo_update_failed", result.Error,
			"comment_id", row.ID,
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) DeleteComment(ctx context.Context, tenantID string, commentID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", strings.TrimSpace(commentID), strings.TrimSpace(tenantID)).
		Delete(&commentModel{})
	if result.Error != nil {
		return r.logError("comment_repo_delete_failed", result.Error,
			"comment_id", strings.TrimSpace(commentID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCommentNotFound
	}
	return nil
}

func (r *Repository) ListCommentsByDecision(ctx context.Context, tenantID string, decisionID string) ([]entities.Comment, error) {
	var rows []commentModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND decision_id = ?", strings.TrimSpace(tenantID), strings.TrimSpace(decisionID)).
		Order("created_at ASC, id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("comment_repo_list_failed", err,
			"decision_id", strings.TrimSpace(decisionID),
		)
	}
	out := make([]entities.Comment, 0, len(rows))
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
		return false, r.logError("comment_repo_decision_lookup_failed", err,
			"decision_id", strings.TrimSpace(decisionID),
		)
	}
	return count > 0, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "decision-workflow/comment-service",
		"layer", "adapter/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("comment repository operation failed", fields...)
	return err
}

type commentModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	TenantID   string    `gorm:"column:tenant_id"`
	DecisionID string    `gorm:"column:decision_id"`
	AuthorID   string    `gorm:"column:author_id"`
	Content    string    `gorm:"column:content"`
	OptionID   *string   `gorm:"column:option_id"`
	ParentID   *string   `gorm:"column:parent_id"`
	Edited     bool      `gorm:"column:edited"`
	CreatedAt  time.Time `gorm:"column:created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at"`
}

func (commentModel) TableName() string {
	return "decision_comments"
}

func commentModelFromEntity(comment entities.Comment) commentModel {
	return commentModel{
		ID:         strings.TrimSpace(comment.CommentID),
		TenantID:   strings.TrimSpace(comment.TenantID),
		DecisionID: strings.TrimSpace(comment.DecisionID),
		AuthorID:   strings.TrimSpace(comment.AuthorID),
		Content:    comment.Content,
		OptionID:   nullable(comment.OptionID),
		ParentID:   nullable(comment.ParentID),
		Edited:     comment.Edited,
		CreatedAt:  comment.CreatedAt,
		UpdatedAt:  comment.UpdatedAt,
	}
}

func (m commentModel) toEntity() entities.Comment {
	return entities.Comment{
		CommentID:  m.ID,
		TenantID:   m.TenantID,
		DecisionID: m.DecisionID,
		AuthorID:   m.AuthorID,
		Content:    m.Content,
		OptionID:   deref(m.OptionID),
		ParentID:   deref(m.ParentID),
		Edited:     m.Edited,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func nullable(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
