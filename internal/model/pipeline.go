package model

import (
	"time"

	"gorm.io/gorm"
)

// Pipeline is an ordered sales funnel
type Pipeline struct {
	ID           string    `json:"id" gorm:"primaryKey"`
	TenantID     string    `json:"-" gorm:"column:empresa_id;index;not null"`
	Name         string    `json:"name" gorm:"not null"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
	DisplayOrder *int      `json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	Stages       []Stage   `json:"stages" gorm:"foreignKey:PipelineID"`
}

func (Pipeline) TableName() string { return "pipelines" }

func (p *Pipeline) BeforeCreate(tx *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// Stage is a step of a pipeline. It carries no tenant column and is only
// reached through its pipeline.
type Stage struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	PipelineID string    `json:"pipeline_id" gorm:"index;not null"`
	Name       string    `json:"name" gorm:"not null"`
	Color      string    `json:"color"`
	Position   int       `json:"position"`
	IsInicial  *bool     `json:"is_inicial"`
	CreatedAt  time.Time `json:"created_at"`
}

func (Stage) TableName() string { return "stages" }

func (s *Stage) BeforeCreate(tx *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
