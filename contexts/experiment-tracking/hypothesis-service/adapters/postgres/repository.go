// Package postgresadapter persists hypotheses in the hypotheses table
// owned by the experiment-tracking context.
package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/experiment-tracking/hypothesis-service/domain/entities"
	domainerrors "compass/contexts/experiment-tracking/hypothesis-service/domain/errors"

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

func (r *Repository) GetHypothesis(ctx context.Context, tenantID string, hypothesisID string) (entities.Hypothesis, error) {
	var row hypothesisModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", strings.TrimSpace(hypothesisID), strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Hypothesis{}, domainerrors.ErrHypothesisNotFound
		}
		return entities.Hypothesis{}, r.logError("hypothesis_repo_get_failed", err,
			"hypothesis_id", strings.TrimSpace(hypothesisID),
		)
	}
	return row.toEntity()
}

func (r *Repository) InsertHypothesis(ctx context.Context, hypothesis entities.Hypothesis) error {
	row, err := hypothesisModelFromEntity(hypothesis)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrHypothesisConflict
		}
		return r.logError("hypothesis_repo_insert_failed", err,
			"hypothesis_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) UpdateHypothesis(ctx context.Context, hypothesis entities.Hypothesis) error {
	row, err := hypothesisModelFromEntity(hypothesis)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Model(&hypothesisModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", row.ID, row.TenantID, hypothesis.Version-1).
		Updates(map[string]any{
			"title":                row.Title,
			"description":          row.Description,
			"owner_id":             row.OwnerID,
			"outcome_id":           row.OutcomeID,
			"status":               row.Status,
			"blocked_reason":       row.BlockedReason,
			"started_at":           row.StartedAt,
			"deployed_at":          row.DeployedAt,
			"measuring_started_at": row.MeasuringStartedAt,
			"concluded_at":         row.ConcludedAt,
			"concluded_by_id":      row.ConcludedByID,
			"conclusion_notes":     row.ConclusionNotes,
			"experiment_results":   row.ExperimentResults,
			"version":              row.Version,
			"updated_at":           row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).Model(&hypothesisModel{}).
			Where("id = ? AND tenant_id = ?", row.ID, row.TenantID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrHypothesisNotFound
		}
		return domainerrors.ErrHypothesisConflict
	}
	return nil
}

func (r *Repository) ListHypothesesByOutcome(ctx context.Context, tenantID string, outcomeID string) ([]entities.Hypothesis, error) {
	var rows []hypothesisModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND outcome_id = ?", strings.TrimSpace(tenantID), strings.TrimSpace(outcomeID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("hypothesis_repo_list_by_outcome_failed", err,
			"outcome_id", strings.TrimSpace(outcomeID),
		)
	}
	out := make([]entities.Hypothesis, 0, len(rows))
	for _, row := range rows {
		hypothesis, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, hypothesis)
	}
	return out, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "experiment-tracking/hypothesis-service",
		"layer", "adapter/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("hypothesis repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type hypothesisModel struct {
	ID                 string     `gorm:"column:id;primaryKey"`
	TenantID           string     `gorm:"column:tenant_id"`
	Title              string     `gorm:"column:title"`
	Description        string     `gorm:"column:description"`
	OwnerID            *string    `gorm:"column:owner_id"`
	OutcomeID          *string    `gorm:"column:outcome_id"`
	Status             string     `gorm:"column:status"`
	BlockedReason      *string    `gorm:"column:blocked_reason"`
	StartedAt          *time.Time `gorm:"column:started_at"`
	DeployedAt         *time.Time `gorm:"column:deployed_at"`
	MeasuringStartedAt *time.Time `gorm:"column:measuring_started_at"`
	ConcludedAt        *time.Time `gorm:"column:concluded_at"`
	ConcludedByID      *string    `gorm:"column:concluded_by_id"`
	ConclusionNotes    string     `gorm:"column:conclusion_notes"`
	ExperimentResults  []byte     `gorm:"column:experiment_results;type:jsonb"`
	Version            int64      `gorm:"column:version"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
}

func (hypothesisModel) TableName() string {
	return "hypotheses"
}

func hypothesisModelFromEntity(hypothesis entities.Hypothesis) (hypothesisModel, error) {
	results := hypothesis.ExperimentResults
	if results == nil {
		results = map[string]any{}
	}
	resultsRaw, err := json.Marshal(results)
	if err != nil {
		return hypothesisModel{}, err
	}
	return hypothesisModel{
		ID:                 strings.TrimSpace(hypothesis.HypothesisID),
		TenantID:           strings.TrimSpace(hypothesis.TenantID),
		Title:              hypothesis.Title,
		Description:        hypothesis.Description,
		OwnerID:            nullable(hypothesis.OwnerID),
		OutcomeID:          nullable(hypothesis.OutcomeID),
		Status:             string(hypothesis.Status),
		BlockedReason:      nullable(hypothesis.BlockedReason),
		StartedAt:          hypothesis.StartedAt,
		DeployedAt:         hypothesis.DeployedAt,
		MeasuringStartedAt: hypothesis.MeasuringStartedAt,
		ConcludedAt:        hypothesis.ConcludedAt,
		ConcludedByID:      nullable(hypothesis.ConcludedByID),
		ConclusionNotes:    hypothesis.ConclusionNotes,
		ExperimentResults:  resultsRaw,
		Version:            hypothesis.Version,
		CreatedAt:          hypothesis.CreatedAt,
		UpdatedAt:          hypothesis.UpdatedAt,
	}, nil
}

func (m hypothesisModel) toEntity() (entities.Hypothesis, error) {
	results := map[string]any{}
	if len(m.ExperimentResults) > 0 {
		if err := json.Unmarshal(m.ExperimentResults, &results); err != nil {
			return entities.Hypothesis{}, err
		}
	}
	return entities.Hypothesis{
		HypothesisID:       m.ID,
		TenantID:           m.TenantID,
		Title:              m.Title,
		Description:        m.Description,
		OwnerID:            deref(m.OwnerID),
		OutcomeID:          deref(m.OutcomeID),
		Status:             entities.Status(m.Status),
		BlockedReason:      deref(m.BlockedReason),
		StartedAt:          m.StartedAt,
		DeployedAt:         m.DeployedAt,
		MeasuringStartedAt: m.MeasuringStartedAt,
		ConcludedAt:        m.ConcludedAt,
		ConcludedByID:      deref(m.ConcludedByID),
		ConclusionNotes:    m.ConclusionNotes,
		ExperimentResults:  results,
		Version:            m.Version,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}, nil
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
