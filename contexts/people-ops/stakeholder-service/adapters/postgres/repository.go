// Package postgresadapter persists stakeholder aggregates in the
// stakeholders table owned by the people-ops context.
package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/people-ops/stakeholder-service/domain/entities"
	domainerrors "compass/contexts/people-ops/stakeholder-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
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

func (r *Repository) GetStakeholder(ctx context.Context, tenantID string, personID string) (entities.Stakeholder, error) {
	var row stakeholderModel
	err := r.db.WithContext(ctx).
		Where("person_id = ? AND tenant_id = ?", strings.TrimSpace(personID), strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Stakeholder{}, domainerrors.ErrStakeholderNotFound
		}
		return entities.Stakeholder{}, r.logError("stakeholder_repo_get_failed", err,
			"person_id", strings.TrimSpace(personID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) InsertStakeholder(ctx context.Context, stakeholder entities.Stakeholder) error {
	row := stakeholderModelFromEntity(stakeholder)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrStakeholderExists
		}
		return r.logError("stakeholder_repo_insert_failed", err,
			"person_id", row.PersonID,
		)
	}
	return nil
}

func (r *Repository) ListStakeholders(ctx context.Context, tenantID string) ([]entities.Stakeholder, error) {
	var rows []stakeholderModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", strings.TrimSpace(tenantID)).
		Order("person_id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("stakeholder_repo_list_failed", err,
			"tenant_id", strings.TrimSpace(tenantID),
		)
	}
	out := make([]entities.Stakeholder, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *Repository) RecordAssignment(ctx context.Context, tenantID string, personID string) error {
	return r.applyCounter(ctx, tenantID, personID, map[string]any{
		"decisions_pending": gorm.Expr("decisions_pending + 1"),
		"updated_at":        time.Now().UTC(),
	})
}

// RecordCompletion folds the response time into the running mean as one
// UPDATE expression; all right-hand sides read the pre-update row, so
// concurrent completions cannot observe each other's half-applied state.
func (r *Repository) RecordCompletion(ctx context.Context, tenantID string, personID string, decidedAt time.Time, responseTimeHours float64) error {
	return r.applyCounter(ctx, tenantID, personID, map[string]any{
		"decisions_pending":   gorm.Expr("GREATEST(decisions_pending - 1, 0)"),
		"decisions_completed": gorm.Expr("decisions_completed + 1"),
		"last_decision_at":    decidedAt,
		"avg_response_time_hours": gorm.Expr(
			"CASE WHEN avg_response_time_hours IS NULL THEN ? ELSE (avg_response_time_hours * decisions_completed + ?) / (decisions_completed + 1) END",
			responseTimeHours, responseTimeHours,
		),
		"updated_at": decidedAt,
	})
}

func (r *Repository) RecordEscalation(ctx context.Context, tenantID string, personID string) error {
	return r.applyCounter(ctx, tenantID, personID, map[string]any{
		"decisions_escalated": gorm.Expr("decisions_escalated + 1"),
		"updated_at":          time.Now().UTC(),
	})
}

func (r *Repository) applyCounter(ctx context.Context, tenantID string, personID string, updates map[string]any) error {
	result := r.db.WithContext(ctx).Model(&stakeholderModel{}).
		Where("person_id = ? AND tenant_id = ?", strings.TrimSpace(personID), strings.TrimSpace(tenantID)).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrStakeholderNotFound
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "people-ops/stakeholder-service",
		"layer", "adapter/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("stakeholder repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type stakeholderModel struct {
	PersonID             string     `gorm:"column:person_id;primaryKey"`
	TenantID             string     `gorm:"column:tenant_id;primaryKey"`
	DisplayName          string     `gorm:"column:display_name"`
	Role                 string     `gorm:"column:role"`
	DecisionsPending     int        `gorm:"column:decisions_pending"`
	DecisionsCompleted   int        `gorm:"column:decisions_completed"`
	DecisionsEscalated   int        `gorm:"column:decisions_escalated"`
	AvgResponseTimeHours *float64   `gorm:"column:avg_response_time_hours"`
	LastDecisionAt       *time.Time `gorm:"column:last_decision_at"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (stakeholderModel) TableName() string {
	return "stakeholders"
}

func stakeholderModelFromEntity(stakeholder entities.Stakeholder) stakeholderModel {
	return stakeholderModel{
		PersonID:             strings.TrimSpace(stakeholder.PersonID),
		TenantID:             strings.TrimSpace(stakeholder.TenantID),
		DisplayName:          stakeholder.DisplayName,
		Role:                 stakeholder.Role,
		DecisionsPending:     stakeholder.DecisionsPending,
		DecisionsCompleted:   stakeholder.DecisionsCompleted,
		DecisionsEscalated:   stakeholder.DecisionsEscalated,
		AvgResponseTimeHours: stakeholder.AvgResponseTimeHours,
		LastDecisionAt:       stakeholder.LastDecisionAt,
		CreatedAt:            stakeholder.CreatedAt,
		UpdatedAt:            stakeholder.UpdatedAt,
	}
}

func (m stakeholderModel) toEntity() entities.Stakeholder {
	return entities.Stakeholder{
		PersonID:             m.PersonID,
		TenantID:             m.TenantID,
		DisplayName:          m.DisplayName,
		Role:                 m.Role,
		DecisionsPending:     m.DecisionsPending,
		DecisionsCompleted:   m.DecisionsCompleted,
		DecisionsEscalated:   m.DecisionsEscalated,
		AvgResponseTimeHours: m.AvgResponseTimeHours,
		LastDecisionAt:       m.LastDecisionAt,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
	}
}
