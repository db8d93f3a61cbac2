package service

import (
	"context"
	"fmt"
	"sort"

	"crm-service/internal/model"

	"gorm.io/gorm"
)

// VehicleService reads the tenant's vehicle stock
type VehicleService struct {
	db *gorm.DB
}

func NewVehicleService(db *gorm.DB) *VehicleService {
	return &VehicleService{db: db}
}

// List returns every vehicle, newest first, with images in position order
func (s *VehicleService) List(ctx context.Context, tenantID string) ([]model.Vehicle, error) {
	vehicles := make([]model.Vehicle, 0)
	err := s.db.WithContext(ctx).
		Scopes(byTenant(tenantID)).
		Preload("Images").
		Order("created_at DESC").
		Find(&vehicles).Error
	if err != nil {
		return nil, fmt.Errorf("listing vehicles: %w", err)
	}

	for i := range vehicles {
		images := vehicles[i].Images
		if images == nil {
			images = []model.VehicleImage{}
		}
		sort.SliceStable(images, func(a, b int) bool {
			return images[a].Position < images[b].Position
		})
		vehicles[i].Images = images
	}
	return vehicles, nil
}
