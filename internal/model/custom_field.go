package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CustomField is a tenant defined lead attribute. A nil PipelineID makes it global.
type CustomField struct {
	ID         string         `json:"id" gorm:"primaryKey"`
	TenantID   string         `json:"-" gorm:"column:empresa_id;index;not null"`
	PipelineID *string        `json:"pipeline_id" gorm:"index"`
	Name       string         `json:"name" gorm:"not null"`
	Type       string         `json:"type" gorm:"not null"`
	Options    datatypes.JSON `json:"options"`
	Required   bool           `json:"required"`
	Position   int            `json:"position"`
	CreatedAt  time.Time      `json:"created_at"`
}

func (CustomField) TableName() string { return "lead_custom_fields" }

func (f *CustomField) BeforeCreate(tx *gorm.DB) error {
	ensureID(&f.ID)
	return nil
}

// CustomValue holds one lead's value for a custom field
type CustomValue struct {
	ID      string  `json:"id" gorm:"primaryKey"`
	LeadID  string  `json:"lead_id" gorm:"index;not null"`
	FieldID string  `json:"field_id" gorm:"not null"`
	Value   *string `json:"value"`
}

func (CustomValue) TableName() string { return "lead_custom_values" }

func (v *CustomValue) BeforeCreate(tx *gorm.DB) error {
	ensureID(&v.ID)
	return nil
}
