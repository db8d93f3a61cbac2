package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	TaskStatusPending   = "pendente"
	TaskStatusCompleted = "concluida"

	TaskPriorityMedium = "media"

	CommentTypeComment = "comment"
)

// TaskType is a tenant configured task category
type TaskType struct {
	ID       string  `json:"id" gorm:"primaryKey"`
	TenantID string  `json:"-" gorm:"column:empresa_id;index;not null"`
	Name     string  `json:"name" gorm:"not null"`
	Color    string  `json:"color"`
	Icon     *string `json:"icon"`
	Active   bool    `json:"active"`
}

func (TaskType) TableName() string { return "task_types" }

func (t *TaskType) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// Task is a to-do item optionally attached to a lead or pipeline
type Task struct {
	ID             string                      `json:"id" gorm:"primaryKey"`
	Title          string                      `json:"title" gorm:"not null"`
	Description    *string                     `json:"description"`
	TenantID       string                      `json:"empresa_id" gorm:"column:empresa_id;index;not null"`
	AssignedTo     *string                     `json:"assigned_to"`
	CreatedBy      string                      `json:"created_by" gorm:"not null"`
	LeadID         *string                     `json:"lead_id"`
	PipelineID     *string                     `json:"pipeline_id"`
	TaskTypeID     *string                     `json:"task_type_id"`
	Status         string                      `json:"status" gorm:"not null"`
	Priority       string                      `json:"priority" gorm:"not null"`
	DueDate        *string                     `json:"due_date"`
	DueTime        *string                     `json:"due_time"`
	CompletedAt    *time.Time                  `json:"completed_at"`
	StartedAt      *time.Time                  `json:"started_at"`
	Tags           datatypes.JSONSlice[string] `json:"tags"`
	EstimatedHours *float64                    `json:"estimated_hours"`
	ActualHours    *float64                    `json:"actual_hours"`
	CreatedAt      time.Time                   `json:"created_at"`
	UpdatedAt      time.Time                   `json:"updated_at"`

	TaskType *TaskType `json:"task_types" gorm:"foreignKey:TaskTypeID;-:migration"`
}

func (Task) TableName() string { return "tasks" }

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// TaskComment is a note left on a task
type TaskComment struct {
	ID        string         `json:"id" gorm:"primaryKey"`
	TaskID    string         `json:"task_id" gorm:"index;not null"`
	UserID    string         `json:"user_id" gorm:"not null"`
	Comment   string         `json:"comment" gorm:"not null"`
	Type      string         `json:"type"`
	Metadata  datatypes.JSON `json:"metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

func (TaskComment) TableName() string { return "task_comments" }

func (c *TaskComment) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}
