package model

import (
	"time"

	"gorm.io/gorm"
)

// APIToken is a tenant credential issued from the CRM panel
type APIToken struct {
	ID         string     `json:"id" gorm:"primaryKey"`
	TenantID   string     `json:"empresa_id" gorm:"column:empresa_id;index;not null"`
	Name       string     `json:"name"`
	Token      string     `json:"-" gorm:"uniqueIndex;not null"` // never expose the secret
	IsActive   bool       `json:"is_active"`
	LastUsedAt *time.Time `json:"last_used_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (APIToken) TableName() string { return "api_tokens" }

// BeforeCreate hook will be called before creating a new APIToken record
func (t *APIToken) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}
