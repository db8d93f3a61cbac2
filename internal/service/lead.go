package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/pkg/database"
	"crm-service/pkg/pagination"
	"crm-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// LeadFilter narrows a lead listing. Zero values mean no filter.
type LeadFilter struct {
	Search          string
	Status          string
	PipelineID      string
	StageID         string
	ResponsibleUUID string
	Origin          string
	Tags            []string
	CreatedFrom     *time.Time
	CreatedTo       *time.Time
}

// LeadInput is the payload of a lead creation
type LeadInput struct {
	PipelineID      string   `json:"pipeline_id" validate:"required"`
	StageID         string   `json:"stage_id" validate:"required"`
	Name            string   `json:"name" validate:"required,min=1,max=200"`
	Company         *string  `json:"company" validate:"omitnil,max=200"`
	Value           *float64 `json:"value" validate:"omitnil,gte=0"`
	Phone           *string  `json:"phone" validate:"omitnil,max=20"`
	Email           *string  `json:"email" validate:"omitnil,email"`
	Origin          *string  `json:"origin" validate:"omitnil,max=100"`
	Status          *string  `json:"status"`
	Tags            []string `json:"tags"`
	Notes           *string  `json:"notes"`
	ResponsibleUUID *string  `json:"responsible_uuid"`
}

// LeadUpdate is a partial lead update; nil fields are left untouched
type LeadUpdate struct {
	Name             *string    `json:"name" validate:"omitnil,min=1,max=200"`
	Company          *string    `json:"company" validate:"omitnil,max=200"`
	Value            *float64   `json:"value" validate:"omitnil,gte=0"`
	Phone            *string    `json:"phone" validate:"omitnil,max=20"`
	Email            *string    `json:"email" validate:"omitnil,email"`
	Origin           *string    `json:"origin" validate:"omitnil,max=100"`
	Status           *string    `json:"status"`
	Tags             *[]string  `json:"tags"`
	Notes            *string    `json:"notes"`
	ResponsibleUUID  *string    `json:"responsible_uuid"`
	LastContactAt    *time.Time `json:"last_contact_at"`
	EstimatedCloseAt *time.Time `json:"estimated_close_at"`
}

// MoveStageInput moves a lead to another stage
type MoveStageInput struct {
	StageID string  `json:"stage_id" validate:"required"`
	Notes   *string `json:"notes"`
}

// MarkLostInput closes a lead as lost
type MarkLostInput struct {
	LossReasonCategory string  `json:"loss_reason_category" validate:"required"`
	LossReasonNotes    *string `json:"loss_reason_notes"`
}

// MarkSoldInput closes a lead as sold. SoldAt defaults to now.
type MarkSoldInput struct {
	SoldValue *float64   `json:"sold_value" validate:"required,gte=0"`
	SaleNotes *string    `json:"sale_notes"`
	SoldAt    *time.Time `json:"sold_at"`
}

const reactivateNotes = "Lead reativado via API"

// LeadService manages leads and their pipeline history
type LeadService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewLeadService(db *gorm.DB, log *zap.Logger) *LeadService {
	return &LeadService{db: db, log: log}
}

// NormalizePhone keeps the digits of phone and prefixes the Brazilian country
// code to 10 and 11 digit numbers. Other lengths are returned as bare digits.
func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 10 || len(digits) == 11 {
		return "55" + digits
	}
	return digits
}

func withLeadRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Pipeline", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name") }).
		Preload("Stage", func(db *gorm.DB) *gorm.DB { return db.Select("id", "name", "color") })
}

func leadFilters(f LeadFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.Search != "" {
			op := "LIKE"
			if database.IsPostgres(db) {
				op = "ILIKE"
			}
			pattern := "%" + f.Search + "%"
			db = db.Where(fmt.Sprintf("(name %[1]s ? OR company %[1]s ? OR email %[1]s ? OR phone %[1]s ?)", op),
				pattern, pattern, pattern, pattern)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.PipelineID != "" {
			db = db.Where("pipeline_id = ?", f.PipelineID)
		}
		if f.StageID != "" {
			db = db.Where("stage_id = ?", f.StageID)
		}
		if f.ResponsibleUUID != "" {
			db = db.Where("responsible_uuid = ?", f.ResponsibleUUID)
		}
		if f.Origin != "" {
			db = db.Where("origin = ?", f.Origin)
		}
		if len(f.Tags) > 0 {
			db = tagsContain(db, f.Tags)
		}
		if f.CreatedFrom != nil {
			db = db.Where("created_at >= ?", *f.CreatedFrom)
		}
		if f.CreatedTo != nil {
			db = db.Where("created_at <= ?", *f.CreatedTo)
		}
		return db
	}
}

// tagsContain keeps rows whose tags hold every one of tags
func tagsContain(db *gorm.DB, tags []string) *gorm.DB {
	if database.IsPostgres(db) {
		raw, _ := json.Marshal(tags)
		return db.Where("tags @> ?::jsonb", string(raw))
	}
	for _, tag := range tags {
		db = db.Where("EXISTS (SELECT 1 FROM json_each(tags) WHERE json_each.value = ?)", tag)
	}
	return db
}

// List returns one page of the tenant's leads, newest first
func (s *LeadService) List(ctx context.Context, tenantID string, f LeadFilter, p pagination.Params) (*pagination.Page[model.Lead], error) {
	defer prometheus.TrackDBOperation("lead_list")()

	q := s.db.WithContext(ctx).Model(&model.Lead{}).Scopes(byTenant(tenantID), leadFilters(f))
	page, err := listPage[model.Lead](q, p, func(db *gorm.DB) *gorm.DB {
		return withLeadRelations(db).Order("created_at DESC").Order("id")
	})
	if err != nil {
		return nil, fmt.Errorf("listing leads: %w", err)
	}
	return page, nil
}

// Get returns one lead with its pipeline and stage summaries
func (s *LeadService) Get(ctx context.Context, tenantID, leadID string) (*model.Lead, error) {
	var lead model.Lead
	err := withLeadRelations(s.db.WithContext(ctx)).
		Where("id = ? AND empresa_id = ?", leadID, tenantID).
		First(&lead).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Lead '%s' não encontrado", leadID)
		}
		return nil, fmt.Errorf("getting lead: %w", err)
	}
	return &lead, nil
}

// Create inserts a lead after checking its pipeline belongs to the tenant and
// its stage belongs to that pipeline
func (s *LeadService) Create(ctx context.Context, tenantID string, in LeadInput) (*model.Lead, error) {
	if err := s.validatePipelineStage(ctx, tenantID, in.PipelineID, in.StageID); err != nil {
		return nil, err
	}

	lead := model.Lead{
		TenantID:        tenantID,
		PipelineID:      in.PipelineID,
		StageID:         in.StageID,
		ResponsibleUUID: in.ResponsibleUUID,
		Name:            in.Name,
		Company:         in.Company,
		Value:           in.Value,
		Email:           in.Email,
		Origin:          in.Origin,
		Notes:           in.Notes,
	}
	status := stringOr(in.Status, model.LeadStatusNew)
	lead.Status = &status
	if in.Phone != nil && *in.Phone != "" {
		phone := NormalizePhone(*in.Phone)
		lead.Phone = &phone
	}
	if in.Tags != nil {
		lead.Tags = datatypes.JSONSlice[string](in.Tags)
	}

	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		return nil, fmt.Errorf("creating lead: %w", err)
	}
	prometheus.RecordDomainOperation("lead", "create")

	return s.Get(ctx, tenantID, lead.ID)
}

// Update applies the non-nil fields of in to a lead
func (s *LeadService) Update(ctx context.Context, tenantID, leadID string, in LeadUpdate) (*model.Lead, error) {
	if _, err := s.Get(ctx, tenantID, leadID); err != nil {
		return nil, err
	}

	u := updates{}
	setIf(u, "name", in.Name)
	setIf(u, "company", in.Company)
	setIf(u, "value", in.Value)
	if in.Phone != nil && *in.Phone != "" {
		u["phone"] = NormalizePhone(*in.Phone)
	}
	setIf(u, "email", in.Email)
	setIf(u, "origin", in.Origin)
	setIf(u, "status", in.Status)
	setTagsIf(u, "tags", in.Tags)
	setIf(u, "notes", in.Notes)
	setIf(u, "responsible_uuid", in.ResponsibleUUID)
	setIf(u, "last_contact_at", in.LastContactAt)
	setIf(u, "estimated_close_at", in.EstimatedCloseAt)

	if len(u) == 0 {
		return s.Get(ctx, tenantID, leadID)
	}

	if err := s.apply(ctx, tenantID, leadID, u); err != nil {
		return nil, err
	}
	prometheus.RecordDomainOperation("lead", "update")

	return s.Get(ctx, tenantID, leadID)
}

// Delete removes a lead
func (s *LeadService) Delete(ctx context.Context, tenantID, leadID string) error {
	if _, err := s.Get(ctx, tenantID, leadID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("id = ? AND empresa_id = ?", leadID, tenantID).
		Delete(&model.Lead{}).Error
	if err != nil {
		return fmt.Errorf("deleting lead: %w", err)
	}
	prometheus.RecordDomainOperation("lead", "delete")
	return nil
}

// MoveStage puts a lead on another stage and records the move. The target
// stage is trusted to belong to the lead's pipeline.
func (s *LeadService) MoveStage(ctx context.Context, tenantID, leadID string, in MoveStageInput) (*model.Lead, error) {
	current, err := s.Get(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	var stage model.Stage
	if err := s.db.WithContext(ctx).Select("id", "pipeline_id").Where("id = ?", in.StageID).First(&stage).Error; err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Stage '%s' não encontrado", in.StageID)
		}
		return nil, fmt.Errorf("getting stage: %w", err)
	}

	if err := s.apply(ctx, tenantID, leadID, updates{"stage_id": in.StageID}); err != nil {
		return nil, err
	}

	entry := s.historyFrom(current, model.ChangeStageChanged, in.Notes)
	entry.StageID = &in.StageID
	if err := s.appendHistory(ctx, entry); err != nil {
		return nil, err
	}

	s.log.Debug("Lead moved",
		zap.String("lead_id", leadID),
		zap.String("from_stage", current.StageID),
		zap.String("to_stage", in.StageID))
	return s.Get(ctx, tenantID, leadID)
}

// MarkLost sets the lead to perdido with its loss reason
func (s *LeadService) MarkLost(ctx context.Context, tenantID, leadID string, in MarkLostInput) (*model.Lead, error) {
	current, err := s.Get(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	u := updates{
		"status":               model.LeadStatusLost,
		"loss_reason_category": in.LossReasonCategory,
		"loss_reason_notes":    in.LossReasonNotes,
		"lost_at":              now(),
	}
	if err := s.apply(ctx, tenantID, leadID, u); err != nil {
		return nil, err
	}

	if err := s.appendHistory(ctx, s.historyFrom(current, model.ChangeMarkedLost, in.LossReasonNotes)); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, leadID)
}

// MarkSold sets the lead to vendido with the final sale value
func (s *LeadService) MarkSold(ctx context.Context, tenantID, leadID string, in MarkSoldInput) (*model.Lead, error) {
	current, err := s.Get(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	soldAt := now()
	if in.SoldAt != nil {
		soldAt = in.SoldAt.UTC()
	}

	u := updates{
		"status":     model.LeadStatusSold,
		"sold_at":    soldAt,
		"sold_value": *in.SoldValue,
		"sale_notes": in.SaleNotes,
	}
	if err := s.apply(ctx, tenantID, leadID, u); err != nil {
		return nil, err
	}

	if err := s.appendHistory(ctx, s.historyFrom(current, model.ChangeMarkedSold, in.SaleNotes)); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, leadID)
}

// Reactivate sets the lead to morno and clears every loss and sale field
func (s *LeadService) Reactivate(ctx context.Context, tenantID, leadID string) (*model.Lead, error) {
	current, err := s.Get(ctx, tenantID, leadID)
	if err != nil {
		return nil, err
	}

	u := updates{
		"status":               model.LeadStatusReactivate,
		"loss_reason_category": nil,
		"loss_reason_notes":    nil,
		"lost_at":              nil,
		"sold_at":              nil,
		"sold_value":           nil,
		"sale_notes":           nil,
	}
	if err := s.apply(ctx, tenantID, leadID, u); err != nil {
		return nil, err
	}

	notes := reactivateNotes
	if err := s.appendHistory(ctx, s.historyFrom(current, model.ChangeReactivated, &notes)); err != nil {
		return nil, err
	}
	return s.Get(ctx, tenantID, leadID)
}

// History returns the lead's history entries, newest first
func (s *LeadService) History(ctx context.Context, tenantID, leadID string) ([]model.LeadHistory, error) {
	if _, err := s.Get(ctx, tenantID, leadID); err != nil {
		return nil, err
	}

	entries := make([]model.LeadHistory, 0)
	err := s.db.WithContext(ctx).
		Where("lead_id = ? AND empresa_id = ?", leadID, tenantID).
		Order("changed_at DESC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("listing lead history: %w", err)
	}
	return entries, nil
}

// Tags returns the sorted distinct tags used on the tenant's leads
func (s *LeadService) Tags(ctx context.Context, tenantID string) ([]string, error) {
	var rows []datatypes.JSONSlice[string]
	err := s.db.WithContext(ctx).
		Model(&model.Lead{}).
		Scopes(byTenant(tenantID)).
		Where("tags IS NOT NULL").
		Pluck("tags", &rows).Error
	if err != nil {
		return nil, fmt.Errorf("listing lead tags: %w", err)
	}

	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, row := range rows {
		for _, tag := range row {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			tags = append(tags, tag)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

// Origins returns the sorted distinct non-empty origins of the tenant's leads
func (s *LeadService) Origins(ctx context.Context, tenantID string) ([]string, error) {
	origins := make([]string, 0)
	err := s.db.WithContext(ctx).
		Model(&model.Lead{}).
		Scopes(byTenant(tenantID)).
		Where("origin IS NOT NULL AND origin <> ''").
		Distinct().
		Order("origin").
		Pluck("origin", &origins).Error
	if err != nil {
		return nil, fmt.Errorf("listing lead origins: %w", err)
	}
	return origins, nil
}

func (s *LeadService) validatePipelineStage(ctx context.Context, tenantID, pipelineID, stageID string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Pipeline{}).
		Where("id = ? AND empresa_id = ?", pipelineID, tenantID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("checking pipeline: %w", err)
	}
	if count == 0 {
		return apperror.Validation("Pipeline '%s' não encontrado", pipelineID)
	}

	err = s.db.WithContext(ctx).Model(&model.Stage{}).
		Where("id = ? AND pipeline_id = ?", stageID, pipelineID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("checking stage: %w", err)
	}
	if count == 0 {
		return apperror.Validation("Stage '%s' não encontrado no pipeline '%s'", stageID, pipelineID)
	}
	return nil
}

func (s *LeadService) apply(ctx context.Context, tenantID, leadID string, u updates) error {
	err := s.db.WithContext(ctx).
		Model(&model.Lead{}).
		Where("id = ? AND empresa_id = ?", leadID, tenantID).
		Updates(map[string]interface{}(u)).Error
	if err != nil {
		return fmt.Errorf("updating lead: %w", err)
	}
	return nil
}

// historyFrom builds an entry that keeps the lead on its current pipeline and stage
func (s *LeadService) historyFrom(current *model.Lead, changeType string, notes *string) *model.LeadHistory {
	pipelineID, stageID := current.PipelineID, current.StageID
	prevPipelineID, prevStageID := current.PipelineID, current.StageID
	return &model.LeadHistory{
		TenantID:           current.TenantID,
		LeadID:             current.ID,
		PipelineID:         &pipelineID,
		StageID:            &stageID,
		PreviousPipelineID: &prevPipelineID,
		PreviousStageID:    &prevStageID,
		ChangedAt:          now(),
		ChangeType:         changeType,
		Notes:              notes,
	}
}

func (s *LeadService) appendHistory(ctx context.Context, entry *model.LeadHistory) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("appending lead history: %w", err)
	}
	prometheus.RecordDomainOperation("lead", entry.ChangeType)
	return nil
}
