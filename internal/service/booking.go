package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"crm-service/internal/apperror"
	"crm-service/internal/model"
	"crm-service/pkg/pagination"
	"crm-service/prometheus"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BookingFilter narrows a booking listing. Zero values mean no filter.
type BookingFilter struct {
	CalendarID string
	Status     string
	AssignedTo string
	LeadID     string
	DateFrom   *time.Time
	DateTo     *time.Time
}

// BookingInput is the payload of a booking creation
type BookingInput struct {
	CalendarID    string    `json:"calendar_id" validate:"required"`
	BookingTypeID string    `json:"booking_type_id" validate:"required"`
	AssignedTo    string    `json:"assigned_to" validate:"required"`
	CreatedBy     string    `json:"created_by" validate:"required"`
	LeadID        *string   `json:"lead_id"`
	ClientName    *string   `json:"client_name" validate:"omitnil,max=200"`
	ClientPhone   *string   `json:"client_phone" validate:"omitnil,max=20"`
	ClientEmail   *string   `json:"client_email"`
	StartDatetime time.Time `json:"start_datetime" validate:"required"`
	EndDatetime   time.Time `json:"end_datetime" validate:"required"`
	Status        *string   `json:"status" validate:"omitnil,oneof=confirmed pending cancelled"`
	Notes         *string   `json:"notes"`
}

// BookingUpdate is a partial booking update; nil fields are left untouched
type BookingUpdate struct {
	AssignedTo    *string    `json:"assigned_to"`
	LeadID        *string    `json:"lead_id"`
	ClientName    *string    `json:"client_name" validate:"omitnil,max=200"`
	ClientPhone   *string    `json:"client_phone" validate:"omitnil,max=20"`
	ClientEmail   *string    `json:"client_email"`
	StartDatetime *time.Time `json:"start_datetime"`
	EndDatetime   *time.Time `json:"end_datetime"`
	Status        *string    `json:"status" validate:"omitnil,oneof=confirmed pending cancelled"`
	Notes         *string    `json:"notes"`
}

// BookingService reads calendars and manages bookings
type BookingService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewBookingService(db *gorm.DB, log *zap.Logger) *BookingService {
	return &BookingService{db: db, log: log}
}

// ListCalendars returns the tenant's active calendars by name
func (s *BookingService) ListCalendars(ctx context.Context, tenantID string) ([]model.Calendar, error) {
	calendars := make([]model.Calendar, 0)
	err := s.db.WithContext(ctx).
		Scopes(byTenant(tenantID)).
		Where("is_active = ?", true).
		Order("name").
		Find(&calendars).Error
	if err != nil {
		return nil, fmt.Errorf("listing calendars: %w", err)
	}
	return calendars, nil
}

// GetCalendar returns a calendar with availability, types and owners sorted
func (s *BookingService) GetCalendar(ctx context.Context, tenantID, calendarID string) (*model.Calendar, error) {
	var calendar model.Calendar
	err := s.db.WithContext(ctx).
		Preload("Availability").
		Preload("Types").
		Preload("Owners").
		Where("id = ? AND empresa_id = ?", calendarID, tenantID).
		First(&calendar).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Agenda '%s' não encontrada", calendarID)
		}
		return nil, fmt.Errorf("getting calendar: %w", err)
	}

	sort.SliceStable(calendar.Availability, func(i, j int) bool {
		a, b := calendar.Availability[i], calendar.Availability[j]
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek < b.DayOfWeek
		}
		return a.StartTime < b.StartTime
	})
	sort.SliceStable(calendar.Types, func(i, j int) bool {
		return calendar.Types[i].Position < calendar.Types[j].Position
	})
	sort.SliceStable(calendar.Owners, func(i, j int) bool {
		return calendar.Owners[i].Position < calendar.Owners[j].Position
	})
	return &calendar, nil
}

// ListAvailability returns a calendar's active windows by day and start time
func (s *BookingService) ListAvailability(ctx context.Context, tenantID, calendarID string) ([]model.BookingAvailability, error) {
	if err := s.ensureCalendar(ctx, tenantID, calendarID); err != nil {
		return nil, err
	}

	windows := make([]model.BookingAvailability, 0)
	err := s.db.WithContext(ctx).
		Where("calendar_id = ? AND is_active = ?", calendarID, true).
		Order("day_of_week").
		Order("start_time").
		Find(&windows).Error
	if err != nil {
		return nil, fmt.Errorf("listing availability: %w", err)
	}
	return windows, nil
}

// ListBookingTypes returns a calendar's active booking types by position
func (s *BookingService) ListBookingTypes(ctx context.Context, tenantID, calendarID string) ([]model.BookingType, error) {
	if err := s.ensureCalendar(ctx, tenantID, calendarID); err != nil {
		return nil, err
	}

	types := make([]model.BookingType, 0)
	err := s.db.WithContext(ctx).
		Where("calendar_id = ? AND is_active = ?", calendarID, true).
		Order("position").
		Find(&types).Error
	if err != nil {
		return nil, fmt.Errorf("listing booking types: %w", err)
	}
	return types, nil
}

// ListBlocks returns a calendar's blocked periods, optionally from dateFrom on
func (s *BookingService) ListBlocks(ctx context.Context, tenantID, calendarID string, dateFrom *time.Time) ([]model.BookingBlock, error) {
	if err := s.ensureCalendar(ctx, tenantID, calendarID); err != nil {
		return nil, err
	}

	q := s.db.WithContext(ctx).Where("calendar_id = ?", calendarID)
	if dateFrom != nil {
		q = q.Where("start_datetime >= ?", *dateFrom)
	}

	blocks := make([]model.BookingBlock, 0)
	if err := q.Order("start_datetime").Find(&blocks).Error; err != nil {
		return nil, fmt.Errorf("listing booking blocks: %w", err)
	}
	return blocks, nil
}

func bookingFilters(f BookingFilter) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if f.CalendarID != "" {
			db = db.Where("calendar_id = ?", f.CalendarID)
		}
		if f.Status != "" {
			db = db.Where("status = ?", f.Status)
		}
		if f.AssignedTo != "" {
			db = db.Where("assigned_to = ?", f.AssignedTo)
		}
		if f.LeadID != "" {
			db = db.Where("lead_id = ?", f.LeadID)
		}
		if f.DateFrom != nil {
			db = db.Where("start_datetime >= ?", *f.DateFrom)
		}
		if f.DateTo != nil {
			db = db.Where("start_datetime <= ?", *f.DateTo)
		}
		return db
	}
}

// List returns one page of bookings by start time
func (s *BookingService) List(ctx context.Context, tenantID string, f BookingFilter, p pagination.Params) (*pagination.Page[model.Booking], error) {
	defer prometheus.TrackDBOperation("booking_list")()

	q := s.db.WithContext(ctx).Model(&model.Booking{}).Scopes(byTenant(tenantID), bookingFilters(f))
	page, err := listPage[model.Booking](q, p, func(db *gorm.DB) *gorm.DB {
		return db.Preload("BookingType").Order("start_datetime ASC").Order("id")
	})
	if err != nil {
		return nil, fmt.Errorf("listing bookings: %w", err)
	}
	return page, nil
}

// Get returns one booking with its booking type
func (s *BookingService) Get(ctx context.Context, tenantID, bookingID string) (*model.Booking, error) {
	var booking model.Booking
	err := s.db.WithContext(ctx).
		Preload("BookingType").
		Where("id = ? AND empresa_id = ?", bookingID, tenantID).
		First(&booking).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("Agendamento '%s' não encontrado", bookingID)
		}
		return nil, fmt.Errorf("getting booking: %w", err)
	}
	return &booking, nil
}

// Create inserts a booking, confirmed unless given otherwise
func (s *BookingService) Create(ctx context.Context, tenantID string, in BookingInput) (*model.Booking, error) {
	booking := model.Booking{
		TenantID:      tenantID,
		CalendarID:    in.CalendarID,
		BookingTypeID: in.BookingTypeID,
		AssignedTo:    in.AssignedTo,
		LeadID:        in.LeadID,
		ClientName:    in.ClientName,
		ClientPhone:   in.ClientPhone,
		ClientEmail:   in.ClientEmail,
		StartDatetime: in.StartDatetime.UTC(),
		EndDatetime:   in.EndDatetime.UTC(),
		Status:        stringOr(in.Status, model.BookingStatusConfirmed),
		Notes:         in.Notes,
		CreatedBy:     in.CreatedBy,
	}

	if err := s.db.WithContext(ctx).Create(&booking).Error; err != nil {
		return nil, fmt.Errorf("creating booking: %w", err)
	}
	prometheus.RecordDomainOperation("booking", "create")

	return s.Get(ctx, tenantID, booking.ID)
}

// Update applies the non-nil fields of in to a booking
func (s *BookingService) Update(ctx context.Context, tenantID, bookingID string, in BookingUpdate) (*model.Booking, error) {
	if _, err := s.Get(ctx, tenantID, bookingID); err != nil {
		return nil, err
	}

	u := updates{}
	setIf(u, "assigned_to", in.AssignedTo)
	setIf(u, "lead_id", in.LeadID)
	setIf(u, "client_name", in.ClientName)
	setIf(u, "client_phone", in.ClientPhone)
	setIf(u, "client_email", in.ClientEmail)
	if in.StartDatetime != nil {
		u["start_datetime"] = in.StartDatetime.UTC()
	}
	if in.EndDatetime != nil {
		u["end_datetime"] = in.EndDatetime.UTC()
	}
	setIf(u, "status", in.Status)
	setIf(u, "notes", in.Notes)

	if len(u) == 0 {
		return s.Get(ctx, tenantID, bookingID)
	}
	return s.apply(ctx, tenantID, bookingID, "update", u)
}

// Cancel sets a booking to cancelled. Cancelling twice is allowed.
func (s *BookingService) Cancel(ctx context.Context, tenantID, bookingID string) (*model.Booking, error) {
	if _, err := s.Get(ctx, tenantID, bookingID); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, bookingID, "cancel", updates{"status": model.BookingStatusCancelled})
}

// Confirm sets a booking to confirmed
func (s *BookingService) Confirm(ctx context.Context, tenantID, bookingID string) (*model.Booking, error) {
	if _, err := s.Get(ctx, tenantID, bookingID); err != nil {
		return nil, err
	}
	return s.apply(ctx, tenantID, bookingID, "confirm", updates{"status": model.BookingStatusConfirmed})
}

// Delete removes a booking
func (s *BookingService) Delete(ctx context.Context, tenantID, bookingID string) error {
	if _, err := s.Get(ctx, tenantID, bookingID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).
		Where("id = ? AND empresa_id = ?", bookingID, tenantID).
		Delete(&model.Booking{}).Error
	if err != nil {
		return fmt.Errorf("deleting booking: %w", err)
	}
	prometheus.RecordDomainOperation("booking", "delete")
	return nil
}

func (s *BookingService) ensureCalendar(ctx context.Context, tenantID, calendarID string) error {
	var count int64
	err := s.db.WithContext(ctx).Model(&model.Calendar{}).
		Where("id = ? AND empresa_id = ?", calendarID, tenantID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("checking calendar: %w", err)
	}
	if count == 0 {
		return apperror.NotFound("Agenda '%s' não encontrada", calendarID)
	}
	return nil
}

// apply writes u with a fresh updated_at and returns the re-read booking
func (s *BookingService) apply(ctx context.Context, tenantID, bookingID, operation string, u updates) (*model.Booking, error) {
	u["updated_at"] = now()
	err := s.db.WithContext(ctx).
		Model(&model.Booking{}).
		Where("id = ? AND empresa_id = ?", bookingID, tenantID).
		Updates(map[string]interface{}(u)).Error
	if err != nil {
		return nil, fmt.Errorf("updating booking: %w", err)
	}
	prometheus.RecordDomainOperation("booking", operation)

	s.log.Debug("Booking updated", zap.String("booking_id", bookingID), zap.String("operation", operation))
	return s.Get(ctx, tenantID, bookingID)
}
