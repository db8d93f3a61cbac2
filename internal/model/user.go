package model

// User is the public part of a CRM profile, used to pick assignees
type User struct {
	UUID     string  `json:"uuid" gorm:"column:uuid;primaryKey"`
	TenantID string  `json:"-" gorm:"column:empresa_id;index;not null"`
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
}

func (User) TableName() string { return "profiles" }
