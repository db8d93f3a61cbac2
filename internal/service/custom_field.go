package service

import (
	"context"
	"fmt"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/prometheus"

	"gorm.io/gorm"
)

// CustomValueInput sets the value of one custom field
type CustomValueInput struct {
	FieldID string  `json:"field_id" validate:"required"`
	Value   *string `json:"value"`
}

// CustomFieldService reads field definitions and reads or writes lead values
type CustomFieldService struct {
	db *gorm.DB
}

func NewCustomFieldService(db *gorm.DB) *CustomFieldService {
	return &CustomFieldService{db: db}
}

// ListFields returns the global fields, plus those scoped to pipelineID when given
func (s *CustomFieldService) ListFields(ctx context.Context, tenantID, pipelineID string) ([]model.CustomField, error) {
	q := s.db.WithContext(ctx).Scopes(byTenant(tenantID))
	if pipelineID != "" {
		q = q.Where("(pipeline_id IS NULL OR pipeline_id = ?)", pipelineID)
	} else {
		q = q.Where("pipeline_id IS NULL")
	}

	fields := make([]model.CustomField, 0)
	if err := q.Order("position").Find(&fields).Error; err != nil {
		return nil, fmt.Errorf("listing custom fields: %w", err)
	}
	return fields, nil
}

// GetValues returns the custom values stored for one of the tenant's leads
func (s *CustomFieldService) GetValues(ctx context.Context, tenantID, leadID string) ([]model.CustomValue, error) {
	if err := s.ensureLead(ctx, tenantID, leadID); err != nil {
		return nil, err
	}

	values := make([]model.CustomValue, 0)
	if err := s.db.WithContext(ctx).Where("lead_id = ?", leadID).Find(&values).Error; err != nil {
		return nil, fmt.Errorf("listing custom values: %w", err)
	}
	return values, nil
}

// SetValues updates the fields that already hold a value and inserts the rest.
// Pairs are written one by one; a failure leaves earlier pairs applied.
func (s *CustomFieldService) SetValues(ctx context.Context, tenantID, leadID string, values []CustomValueInput) ([]model.CustomValue, error) {
	if err := s.ensureLead(ctx, tenantID, leadID); err != nil {
		return nil, err
	}

	var existing []model.CustomValue
	if err := s.db.WithContext(ctx).Select("id", "field_id").Where("lead_id = ?", leadID).Find(&existing).Error; err != nil {
		return nil, fmt.Errorf("listing custom values: %w", err)
	}
	byField := make(map[string]string, len(existing))
	for _, v := range existing {
		byField[v.FieldID] = v.ID
	}

	for _, item := range values {
		if id, ok := byField[item.FieldID]; ok {
			err := s.db.WithContext(ctx).Model(&model.CustomValue{}).
				Where("id = ?", id).
				Update("value", item.Value).Error
			if err != nil {
				return nil, fmt.Errorf("updating custom value: %w", err)
			}
			continue
		}

		row := model.CustomValue{LeadID: leadID, FieldID: item.FieldID, Value: item.Value}
		if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
			return nil, fmt.Errorf("inserting custom value: %w", err)
		}
		byField[item.FieldID] = row.ID
	}
	prometheus.RecordDomainOperation("custom_value", "set")

	return s.GetValues(ctx, tenantID, leadID)
}

func (s *CustomFieldService) ensureLead(ctx context.Context, tenantID, leadID string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Lead{}).
		Where("id = ? AND empresa_id = ?", leadID, tenantID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("checking lead: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("Lead '%s' não encontrado", leadID)
	}
	return nil
}
