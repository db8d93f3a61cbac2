package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Lead statuses set by the dedicated transitions. Any other value can still be
// written through a plain update.
const (
	LeadStatusNew        = "novo"
	LeadStatusLost       = "perdido"
	LeadStatusSold       = "vendido"
	LeadStatusReactivate = "morno"
)

// History change types
const (
	ChangeStageChanged = "stage_changed"
	ChangeMarkedLost   = "marked_as_lost"
	ChangeMarkedSold   = "marked_as_sold"
	ChangeReactivated  = "reactivated"
)

// Lead is a sales opportunity sitting on a pipeline stage
type Lead struct {
	ID                 string                      `json:"id" gorm:"primaryKey"`
	TenantID           string                      `json:"-" gorm:"column:empresa_id;index;not null"`
	PipelineID         string                      `json:"pipeline_id" gorm:"index;not null"`
	StageID            string                      `json:"stage_id" gorm:"index;not null"`
	ResponsibleUUID    *string                     `json:"responsible_uuid" gorm:"column:responsible_uuid"`
	Name               string                      `json:"name" gorm:"not null"`
	Company            *string                     `json:"company"`
	Value              *float64                    `json:"value"`
	Phone              *string                     `json:"phone"`
	Email              *string                     `json:"email"`
	Origin             *string                     `json:"origin"`
	Status             *string                     `json:"status"`
	LastContactAt      *time.Time                  `json:"last_contact_at"`
	EstimatedCloseAt   *time.Time                  `json:"estimated_close_at"`
	Tags               datatypes.JSONSlice[string] `json:"tags"`
	Notes              *string                     `json:"notes"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"-"`
	LossReasonCategory *string                     `json:"loss_reason_category"`
	LossReasonNotes    *string                     `json:"loss_reason_notes"`
	LostAt             *time.Time                  `json:"lost_at"`
	SoldAt             *time.Time                  `json:"sold_at"`
	SoldValue          *float64                    `json:"sold_value"`
	SaleNotes          *string                     `json:"sale_notes"`

	Pipeline *LeadPipeline `json:"pipeline" gorm:"foreignKey:PipelineID;-:migration"`
	Stage    *LeadStage    `json:"stage" gorm:"foreignKey:StageID;-:migration"`
}

func (Lead) TableName() string { return "leads" }

func (l *Lead) BeforeCreate(tx *gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// LeadPipeline is the pipeline summary embedded in lead responses
type LeadPipeline struct {
	ID   string `json:"-"`
	Name string `json:"name"`
}

func (LeadPipeline) TableName() string { return "pipelines" }

// LeadStage is the stage summary embedded in lead responses
type LeadStage struct {
	ID    string `json:"-"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func (LeadStage) TableName() string { return "stages" }

// LeadHistory is an append-only audit entry of a lead transition
type LeadHistory struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	TenantID           string    `json:"-" gorm:"column:empresa_id;index;not null"`
	LeadID             string    `json:"lead_id" gorm:"index;not null"`
	PipelineID         *string   `json:"pipeline_id"`
	StageID            *string   `json:"stage_id"`
	PreviousPipelineID *string   `json:"previous_pipeline_id"`
	PreviousStageID    *string   `json:"previous_stage_id"`
	ChangedAt          time.Time `json:"changed_at"`
	ChangedBy          *string   `json:"changed_by"`
	ChangeType         string    `json:"change_type" gorm:"not null"`
	Notes              *string   `json:"notes"`
	CreatedAt          time.Time `json:"created_at"`
}

func (LeadHistory) TableName() string { return "lead_pipeline_history" }

func (h *LeadHistory) BeforeCreate(tx *gorm.DB) error {
	ensureID(&h.ID)
	return nil
}
