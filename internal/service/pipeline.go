package service

import (
	"context"
	"fmt"
	"sort"

	"crm-service/internal/apperror"
	"crm-service/internal/model"

	"gorm.io/gorm"
)

// PipelineService reads pipelines and their stages
type PipelineService struct {
	db *gorm.DB
}

func NewPipelineService(db *gorm.DB) *PipelineService {
	return &PipelineService{db: db}
}

// List returns the tenant's active pipelines by display order, optionally with stages
func (s *PipelineService) List(ctx context.Context, tenantID string, includeStages bool) ([]model.Pipeline, error) {
	q := s.db.WithContext(ctx).Scopes(byTenant(tenantID)).Where("active = ?", true)
	if includeStages {
		q = q.Preload("Stages")
	}

	pipelines := make([]model.Pipeline, 0)
	if err := q.Order("display_order").Find(&pipelines).Error; err != nil {
		return nil, fmt.Errorf("listing pipelines: %w", err)
	}

	if includeStages {
		for i := range pipelines {
			sortStages(pipelines[i].Stages)
		}
	}
	return pipelines, nil
}

// Get returns one pipeline with its stages in position order
func (s *PipelineService) Get(ctx context.Context, tenantID, pipelineID string) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	err := s.db.WithContext(ctx).
		Preload("Stages").
		Where("id = ? AND empresa_id = ?", pipelineID, tenantID).
		First(&pipeline).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Pipeline '%s' não encontrado", pipelineID)
		}
		return nil, fmt.Errorf("getting pipeline: %w", err)
	}

	sortStages(pipeline.Stages)
	return &pipeline, nil
}

// ListStages returns the stages of one of the tenant's pipelines
func (s *PipelineService) ListStages(ctx context.Context, tenantID, pipelineID string) ([]model.Stage, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Pipeline{}).
		Where("id = ? AND empresa_id = ?", pipelineID, tenantID).
		Count(&count).Error
	if err != nil {
		return nil, fmt.Errorf("checking pipeline: %w", err)
	}
	if count == 0 {
		return nil, apperror.NotFound("Pipeline '%s' não encontrado", pipelineID)
	}

	stages := make([]model.Stage, 0)
	if err := s.db.WithContext(ctx).Where("pipeline_id = ?", pipelineID).Order("position").Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("listing stages: %w", err)
	}
	return stages, nil
}

// preloaded rows come back in no particular order
func sortStages(stages []model.Stage) {
	sort.SliceStable(stages, func(i, j int) bool {
		return stages[i].Position < stages[j].Position
	})
}
