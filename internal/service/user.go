package service

import (
	"context"
	"fmt"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

// UserService lists the tenant's users
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// List returns the public profile of every user, by name
func (s *UserService) List(ctx context.Context, tenantID string) ([]model.User, error) {
	users := make([]model.User, 0)
	if err := s.db.WithContext(ctx).Scopes(byTenant(tenantID)).Order("full_name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	return users, nil
}
