// Package service holds the tenant scoped domain operations. Every method takes
// the request context and the resolved tenant id, and every query against a
// table with an empresa_id column filters on it.
package service

import (
	"context"
	"errors"
	"time"

	"crm-service/pkg/pagination"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ServiceManager groups the services sharing one datastore handle
type ServiceManager struct {
	Tokens       *TokenService
	Leads        *LeadService
	Pipelines    *PipelineService
	CustomFields *CustomFieldService
	Tasks        *TaskService
	Bookings     *BookingService
	Chat         *ChatService
	Vehicles     *VehicleService
	Users        *UserService

	db *gorm.DB
}

// NewServiceManager wires every service to db
func NewServiceManager(db *gorm.DB, log *zap.Logger, touchTimeout time.Duration) *ServiceManager {
	return &ServiceManager{
		Tokens:       NewTokenService(db, log, touchTimeout),
		Leads:        NewLeadService(db, log),
		Pipelines:    NewPipelineService(db),
		CustomFields: NewCustomFieldService(db),
		Tasks:        NewTaskService(db, log),
		Bookings:     NewBookingService(db, log),
		Chat:         NewChatService(db, log),
		Vehicles:     NewVehicleService(db),
		Users:        NewUserService(db),
		db:           db,
	}
}

// Ping checks that the datastore answers
func (sm *ServiceManager) Ping(ctx context.Context) error {
	sqlDB, err := sm.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// byTenant restricts a query to rows of one tenant
func byTenant(tenantID string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("empresa_id = ?", tenantID)
	}
}

// listPage counts the rows matched by q, then loads one page of them.
// load adds ordering and preloads, which must not reach the count query.
func listPage[T any](q *gorm.DB, p pagination.Params, load func(*gorm.DB) *gorm.DB) (*pagination.Page[T], error) {
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}

	rows := make([]T, 0)
	if err := load(q.Session(&gorm.Session{})).Scopes(pagination.Paginate(p)).Find(&rows).Error; err != nil {
		return nil, err
	}

	page := pagination.New(rows, total, p)
	return &page, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// updates collects the columns of a partial update, skipping absent fields
type updates map[string]interface{}

func setIf[T any](u updates, column string, v *T) {
	if v != nil {
		u[column] = *v
	}
}

func setTagsIf(u updates, column string, tags *[]string) {
	if tags != nil {
		u[column] = datatypes.JSONSlice[string](*tags)
	}
}

func now() time.Time {
	return time.Now().UTC()
}

func stringOr(v *string, fallback string) string {
	if v == nil {
		return fallback
	}
	return *v
}
