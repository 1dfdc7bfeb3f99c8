package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"compass/contexts/decision-workflow/decision-service/domain/entities"
	domainerrors "compass/contexts/decision-workflow/decision-service/domain/errors"
	"compass/contexts/decision-workflow/decision-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository implements the read repository, the unit of work and the
// person directory over the shared postgres schema. Cross-module rows
// (hypotheses, stakeholders) are reached through the same transaction so
// the resolve cascade commits atomically with the decision write.
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

func (r *Repository) Transact(ctx context.Context, fn func(tx ports.TxRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txRepository{db: tx, logger: r.logger})
	})
}

func (r *Repository) GetDecision(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	return getDecision(ctx, r.db, r.logger, tenantID, decisionID)
}

func (r *Repository) ListDecisionsByStatus(ctx context.Context, tenantID string, statuses []entities.Status) ([]entities.Decision, error) {
	tx := r.db.WithContext(ctx).Model(&decisionModel{}).
		Where("tenant_id = ?", strings.TrimSpace(tenantID))
	if len(statuses) > 0 {
		values := make([]string, 0, len(statuses))
		for _, status := range statuses {
			values = append(values, string(status))
		}
		tx = tx.Where("status IN ?", values)
	}
	var rows []decisionModel
	if err := tx.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("decision_repo_list_by_status_failed", err,
			"tenant_id", strings.TrimSpace(tenantID),
		)
	}
	out := make([]entities.Decision, 0, len(rows))
	for _, row := range rows {
		decision, err := row.toEntity()
		if err != nil {
			return nil, err
		}
		out = append(out, decision)
	}
	return out, nil
}

func (r *Repository) GetPerson(ctx context.Context, tenantID string, personID string) (ports.Person, error) {
	var row personModel
	err := r.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", strings.TrimSpace(personID), strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.Person{}, domainerrors.ErrPersonNotFound
		}
		return ports.Person{}, r.logError("decision_repo_get_person_failed", err,
			"person_id", strings.TrimSpace(personID),
		)
	}
	return ports.Person{
		PersonID:    row.ID,
		TenantID:    row.TenantID,
		DisplayName: row.DisplayName,
		Email:       row.Email,
	}, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "decision-workflow/decision-service",
		"layer", "adapter/postgres",
		"error", err.Error(),
	}, args...)
	r.logger.Error("decision repository operation failed", fields...)
	return err
}

type txRepository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func (t *txRepository) GetDecision(ctx context.Context, tenantID string, decisionID string) (entities.Decision, error) {
	return getDecision(ctx, t.db, t.logger, tenantID, decisionID)
}

func (t *txRepository) InsertDecision(ctx context.Context, decision entities.Decision) error {
	row, err := decisionModelFromEntity(decision)
	if err != nil {
		return err
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrDecisionConflict
		}
		return err
	}
	return nil
}

func (t *txRepository) UpdateDecision(ctx context.Context, decision entities.Decision) error {
	row, err := decisionModelFromEntity(decision)
	if err != nil {
		return err
	}
	result := t.db.WithContext(ctx).Model(&decisionModel{}).
		Where("id = ? AND tenant_id = ? AND version = ?", row.ID, row.TenantID, decision.Version-1).
		Updates(map[string]any{
			"title":              row.Title,
			"description":        row.Description,
			"context":            row.Context,
			"options":            row.Options,
			"status":             row.Status,
			"priority":           row.Priority,
			"decision_type":      row.DecisionType,
			"owner_id":           row.OwnerID,
			"assignee_id":        row.AssigneeID,
			"escalated_to_id":    row.EscalatedToID,
			"decided_by_id":      row.DecidedByID,
			"outcome_id":         row.OutcomeID,
			"hypothesis_id":      row.HypothesisID,
			"team_id":            row.TeamID,
			"sla_hours":          row.SLAHours,
			"due_at":             row.DueAt,
			"escalation_level":   row.EscalationLevel,
			"escalated_at":       row.EscalatedAt,
			"decided_at":         row.DecidedAt,
			"decision_rationale": row.DecisionRationale,
			"selected_option":    row.SelectedOption,
			"blocked_items":      row.BlockedItems,
			"external_refs":      row.ExternalRefs,
			"tags":               row.Tags,
			"version":            row.Version,
			"updated_at":         row.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := t.db.WithContext(ctx).Model(&decisionModel{}).
			Where("id = ? AND tenant_id = ?", row.ID, row.TenantID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domainerrors.ErrDecisionNotFound
		}
		return domainerrors.ErrDecisionConflict
	}
	return nil
}

func (t *txRepository) GetHypothesisSnapshot(ctx context.Context, tenantID string, hypothesisID string) (ports.HypothesisSnapshot, error) {
	var row hypothesisRowModel
	err := t.db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", strings.TrimSpace(hypothesisID), strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.HypothesisSnapshot{}, domainerrors.ErrHypothesisNotFound
		}
		return ports.HypothesisSnapshot{}, err
	}
	snapshot := ports.HypothesisSnapshot{
		HypothesisID: row.ID,
		TenantID:     row.TenantID,
		Status:       row.Status,
	}
	if row.BlockedReason != nil {
		snapshot.BlockedReason = *row.BlockedReason
	}
	return snapshot, nil
}

func (t *txRepository) MarkHypothesisReady(ctx context.Context, tenantID string, hypothesisID string) (bool, error) {
	result := t.db.WithContext(ctx).Model(&hypothesisRowModel{}).
		Where("id = ? AND tenant_id = ? AND status = ?",
			strings.TrimSpace(hypothesisID), strings.TrimSpace(tenantID), ports.HypothesisStatusBlocked).
		Updates(map[string]any{
			"status":         "ready",
			"blocked_reason": nil,
			"version":        gorm.Expr("version + 1"),
			"updated_at":     time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (t *txRepository) GetStakeholderByPerson(ctx context.Context, tenantID string, personID string) (ports.StakeholderSnapshot, bool, error) {
	var row stakeholderRowModel
	err := t.db.WithContext(ctx).
		Where("person_id = ? AND tenant_id = ?", strings.TrimSpace(personID), strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.StakeholderSnapshot{}, false, nil
		}
		return ports.StakeholderSnapshot{}, false, err
	}
	return ports.StakeholderSnapshot{
		PersonID:             row.PersonID,
		TenantID:             row.TenantID,
		DecisionsPending:     row.DecisionsPending,
		DecisionsCompleted:   row.DecisionsCompleted,
		DecisionsEscalated:   row.DecisionsEscalated,
		AvgResponseTimeHours: row.AvgResponseTimeHours,
		LastDecisionAt:       row.LastDecisionAt,
	}, true, nil
}

func (t *txRepository) ApplyStakeholderAssignment(ctx context.Context, tenantID string, personID string) (bool, error) {
	result := t.db.WithContext(ctx).Model(&stakeholderRowModel{}).
		Where("person_id = ? AND tenant_id = ?", strings.TrimSpace(personID), strings.TrimSpace(tenantID)).
		Updates(map[string]any{
			"decisions_pending": gorm.Expr("decisions_pending + 1"),
			"updated_at":        time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ApplyStakeholderCompletion folds the response time into the running mean
// as one UPDATE expression; all right-hand sides read the pre-update row,
// so concurrent completions cannot observe each other's half-applied
// state.
func (t *txRepository) ApplyStakeholderCompletion(
	ctx context.Context,
	tenantID string,
	personID string,
	decidedAt time.Time,
	responseTimeHours float64,
) (bool, error) {
	result := t.db.WithContext(ctx).Model(&stakeholderRowModel{}).
		Where("person_id = ? AND tenant_id = ?", strings.TrimSpace(personID), strings.TrimSpace(tenantID)).
		Updates(map[string]any{
			"decisions_pending":   gorm.Expr("GREATEST(decisions_pending - 1, 0)"),
			"decisions_completed": gorm.Expr("decisions_completed + 1"),
			"last_decision_at":    decidedAt,
			"avg_response_time_hours": gorm.Expr(
				"CASE WHEN avg_response_time_hours IS NULL THEN ? ELSE (avg_response_time_hours * decisions_completed + ?) / (decisions_completed + 1) END",
				responseTimeHours, responseTimeHours,
			),
			"updated_at": decidedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (t *txRepository) ApplyStakeholderEscalation(ctx context.Context, tenantID string, personID string) (bool, error) {
	result := t.db.WithContext(ctx).Model(&stakeholderRowModel{}).
		Where("person_id = ? AND tenant_id = ?", strings.TrimSpace(personID), strings.TrimSpace(tenantID)).
		Updates(map[string]any{
			"decisions_escalated": gorm.Expr("decisions_escalated + 1"),
			"updated_at":          time.Now().UTC(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func getDecision(ctx context.Context, db *gorm.DB, logger *slog.Logger, tenantID string, decisionID string) (entities.Decision, error) {
	var row decisionModel
	err := db.WithContext(ctx).
		Where("id = ? AND tenant_id = ?", strings.TrimSpace(decisionID), strings.TrimSpace(tenantID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Decision{}, domainerrors.ErrDecisionNotFound
		}
		if logger != nil {
			logger.Error("decision repository operation failed",
				"event", "decision_repo_get_failed",
				"module", "decision-workflow/decision-service",
				"layer", "adapter/postgres",
				"decision_id", strings.TrimSpace(decisionID),
				"error", err.Error(),
			)
		}
		return entities.Decision{}, err
	}
	return row.toEntity()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type decisionModel struct {
	ID                string     `gorm:"column:id;primaryKey"`
	TenantID          string     `gorm:"column:tenant_id"`
	Title             string     `gorm:"column:title"`
	Description       string     `gorm:"column:description"`
	Context           string     `gorm:"column:context"`
	Options           []byte     `gorm:"column:options;type:jsonb"`
	Status            string     `gorm:"column:status"`
	Priority          string     `gorm:"column:priority"`
	DecisionType      string     `gorm:"column:decision_type"`
	OwnerID           *string    `gorm:"column:owner_id"`
	AssigneeID        *string    `gorm:"column:assignee_id"`
	EscalatedToID     *string    `gorm:"column:escalated_to_id"`
	DecidedByID       *string    `gorm:"column:decided_by_id"`
	OutcomeID         *string    `gorm:"column:outcome_id"`
	HypothesisID      *string    `gorm:"column:hypothesis_id"`
	TeamID            *string    `gorm:"column:team_id"`
	SLAHours          int        `gorm:"column:sla_hours"`
	DueAt             *time.Time `gorm:"column:due_at"`
	EscalationLevel   int        `gorm:"column:escalation_level"`
	EscalatedAt       *time.Time `gorm:"column:escalated_at"`
	DecidedAt         *time.Time `gorm:"column:decided_at"`
	DecisionRationale string     `gorm:"column:decision_rationale"`
	SelectedOption    string     `gorm:"column:selected_option"`
	BlockedItems      []byte     `gorm:"column:blocked_items;type:jsonb"`
	ExternalRefs      []byte     `gorm:"column:external_refs;type:jsonb"`
	Tags              []byte     `gorm:"column:tags;type:jsonb"`
	Version           int64      `gorm:"column:version"`
	CreatedAt         time.Time  `gorm:"column:created_at"`
	UpdatedAt         time.Time  `gorm:"column:updated_at"`
}

func (decisionModel) TableName() string {
	return "decisions"
}

// optionDoc / blockedItemDoc are the single (de)serialization boundary for
// the structured decision fields.
type optionDoc struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type blockedItemDoc struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

func decisionModelFromEntity(decision entities.Decision) (decisionModel, error) {
	options := make([]optionDoc, 0, len(decision.Options))
	for _, option := range decision.Options {
		options = append(options, optionDoc{ID: option.OptionID, Label: option.Label})
	}
	optionsRaw, err := json.Marshal(options)
	if err != nil {
		return decisionModel{}, err
	}

	blocked := make([]blockedItemDoc, 0, len(decision.BlockedItems))
	for _, item := range decision.BlockedItems {
		blocked = append(blocked, blockedItemDoc{Type: item.ItemType, ID: item.ItemID})
	}
	blockedRaw, err := json.Marshal(blocked)
	if err != nil {
		return decisionModel{}, err
	}

	refs := decision.ExternalRefs
	if refs == nil {
		refs = map[string]string{}
	}
	refsRaw, err := json.Marshal(refs)
	if err != nil {
		return decisionModel{}, err
	}

	tags := decision.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsRaw, err := json.Marshal(tags)
	if err != nil {
		return decisionModel{}, err
	}

	return decisionModel{
		ID:                strings.TrimSpace(decision.DecisionID),
		TenantID:          strings.TrimSpace(decision.TenantID),
		Title:             decision.Title,
		Description:       decision.Description,
		Context:           decision.Context,
		Options:           optionsRaw,
		Status:            string(decision.Status),
		Priority:          string(decision.Priority),
		DecisionType:      decision.Type,
		OwnerID:           nullable(decision.OwnerID),
		AssigneeID:        nullable(decision.AssigneeID),
		EscalatedToID:     nullable(decision.EscalatedToID),
		DecidedByID:       nullable(decision.DecidedByID),
		OutcomeID:         nullable(decision.OutcomeID),
		HypothesisID:      nullable(decision.HypothesisID),
		TeamID:            nullable(decision.TeamID),
		SLAHours:          decision.SLAHours,
		DueAt:             decision.DueAt,
		EscalationLevel:   decision.EscalationLevel,
		EscalatedAt:       decision.EscalatedAt,
		DecidedAt:         decision.DecidedAt,
		DecisionRationale: decision.DecisionRationale,
		SelectedOption:    decision.SelectedOption,
		BlockedItems:      blockedRaw,
		ExternalRefs:      refsRaw,
		Tags:              tagsRaw,
		Version:           decision.Version,
		CreatedAt:         decision.CreatedAt,
		UpdatedAt:         decision.UpdatedAt,
	}, nil
}

func (m decisionModel) toEntity() (entities.Decision, error) {
	var optionDocs []optionDoc
	if len(m.Options) > 0 {
		if err := json.Unmarshal(m.Options, &optionDocs); err != nil {
			return entities.Decision{}, err
		}
	}
	options := make([]entities.Option, 0, len(optionDocs))
	for _, doc := range optionDocs {
		options = append(options, entities.Option{OptionID: doc.ID, Label: doc.Label})
	}

	var blockedDocs []blockedItemDoc
	if len(m.BlockedItems) > 0 {
		if err := json.Unmarshal(m.BlockedItems, &blockedDocs); err != nil {
			return entities.Decision{}, err
		}
	}
	blocked := make([]entities.BlockedItem, 0, len(blockedDocs))
	for _, doc := range blockedDocs {
		blocked = append(blocked, entities.BlockedItem{ItemType: doc.Type, ItemID: doc.ID})
	}

	refs := map[string]string{}
	if len(m.ExternalRefs) > 0 {
		if err := json.Unmarshal(m.ExternalRefs, &refs); err != nil {
			return entities.Decision{}, err
		}
	}
	var tags []string
	if len(m.Tags) > 0 {
		if err := json.Unmarshal(m.Tags, &tags); err != nil {
			return entities.Decision{}, err
		}
	}

	return entities.Decision{
		DecisionID:        m.ID,
		TenantID:          m.TenantID,
		Title:             m.Title,
		Description:       m.Description,
		Context:           m.Context,
		Options:           options,
		Status:            entities.Status(m.Status),
		Priority:          entities.Priority(m.Priority),
		Type:              m.DecisionType,
		OwnerID:           deref(m.OwnerID),
		AssigneeID:        deref(m.AssigneeID),
		EscalatedToID:     deref(m.EscalatedToID),
		DecidedByID:       deref(m.DecidedByID),
		OutcomeID:         deref(m.OutcomeID),
		HypothesisID:      deref(m.HypothesisID),
		TeamID:            deref(m.TeamID),
		SLAHours:          m.SLAHours,
		DueAt:             m.DueAt,
		EscalationLevel:   m.EscalationLevel,
		EscalatedAt:       m.EscalatedAt,
		DecidedAt:         m.DecidedAt,
		DecisionRationale: m.DecisionRationale,
		SelectedOption:    m.SelectedOption,
		BlockedItems:      blocked,
		ExternalRefs:      refs,
		Tags:              tags,
		Version:           m.Version,
		CreatedAt:         m.CreatedAt,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}

// hypothesisRowModel is the cross-module projection of the hypotheses
// table owned by the experiment-tracking context.
type hypothesisRowModel struct {
	ID            string  `gorm:"column:id;primaryKey"`
	TenantID      string  `gorm:"column:tenant_id"`
	Status        string  `gorm:"column:status"`
	BlockedReason *string `gorm:"column:blocked_reason"`
}

func (hypothesisRowModel) TableName() string {
	return "hypotheses"
}

// stakeholderRowModel is the cross-module projection of the stakeholders
// table owned by the people-ops context.
type stakeholderRowModel struct {
	PersonID             string     `gorm:"column:person_id;primaryKey"`
	TenantID             string     `gorm:"column:tenant_id"`
	DecisionsPending     int        `gorm:"column:decisions_pending"`
	DecisionsCompleted   int        `gorm:"column:decisions_completed"`
	DecisionsEscalated   int        `gorm:"column:decisions_escalated"`
	AvgResponseTimeHours *float64   `gorm:"column:avg_response_time_hours"`
	LastDecisionAt       *time.Time `gorm:"column:last_decision_at"`
}

func (stakeholderRowModel) TableName() string {
	return "stakeholders"
}

type personModel struct {
	ID          string `gorm:"column:id;primaryKey"`
	TenantID    string `gorm:"column:tenant_id"`
	DisplayName string `gorm:"column:display_name"`
	Email       string `gorm:"column:email"`
}

func (personModel) TableName() string {
	return "persons"
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
