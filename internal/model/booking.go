package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	BookingStatusConfirmed = "confirmed"
	BookingStatusPending   = "pending"
	BookingStatusCancelled = "cancelled"
)

// Calendar is a schedulable resource. Its nested collections are only loaded
// by the detail read.
type Calendar struct {
	ID              string                `json:"id" gorm:"primaryKey"`
	TenantID        string                `json:"empresa_id" gorm:"column:empresa_id;index;not null"`
	Name            string                `json:"name" gorm:"not null"`
	Description     *string               `json:"description"`
	Color           *string               `json:"color"`
	Timezone        *string               `json:"timezone" gorm:"default:America/Sao_Paulo"`
	IsActive        bool                  `json:"is_active"`
	IsPublic        bool                  `json:"is_public"`
	PublicSlug      *string               `json:"public_slug"`
	MinAdvanceHours *int                  `json:"min_advance_hours"`
	MaxAdvanceDays  *int                  `json:"max_advance_days"`
	CreatedAt       time.Time             `json:"created_at"`
	UpdatedAt       time.Time             `json:"updated_at"`
	Availability    []BookingAvailability `json:"booking_availability" gorm:"foreignKey:CalendarID"`
	Types           []BookingType         `json:"booking_types" gorm:"foreignKey:CalendarID"`
	Owners          []CalendarOwner       `json:"booking_calendar_owners" gorm:"foreignKey:CalendarID"`
}

func (Calendar) TableName() string { return "booking_calendars" }

func (c *Calendar) BeforeCreate(tx *gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

// BookingAvailability is a weekly opening window, times formatted HH:MM
type BookingAvailability struct {
	ID         string `json:"id" gorm:"primaryKey"`
	CalendarID string `json:"calendar_id" gorm:"index;not null"`
	DayOfWeek  int    `json:"day_of_week"`
	StartTime  string `json:"start_time"`
	EndTime    string `json:"end_time"`
	IsActive   bool   `json:"is_active"`
}

func (BookingAvailability) TableName() string { return "booking_availability" }

func (a *BookingAvailability) BeforeCreate(tx *gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

// BookingType is a kind of appointment offered by a calendar
type BookingType struct {
	ID                  string   `json:"id" gorm:"primaryKey"`
	CalendarID          string   `json:"calendar_id" gorm:"index;not null"`
	Name                string   `json:"name" gorm:"not null"`
	Description         *string  `json:"description"`
	DurationMinutes     int      `json:"duration_minutes"`
	BufferBeforeMinutes *int     `json:"buffer_before_minutes"`
	BufferAfterMinutes  *int     `json:"buffer_after_minutes"`
	Color               *string  `json:"color"`
	Price               *float64 `json:"price"`
	MaxPerDay           *int     `json:"max_per_day"`
	MinAdvanceHours     *int     `json:"min_advance_hours"`
	IsActive            bool     `json:"is_active"`
	Position            int      `json:"position"`
}

func (BookingType) TableName() string { return "booking_types" }

func (t *BookingType) BeforeCreate(tx *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// CalendarOwner assigns a user to a calendar
type CalendarOwner struct {
	ID                 string  `json:"id" gorm:"primaryKey"`
	CalendarID         string  `json:"calendar_id" gorm:"index;not null"`
	UserID             string  `json:"user_id" gorm:"not null"`
	Role               *string `json:"role"`
	CanReceiveBookings *bool   `json:"can_receive_bookings"`
	BookingWeight      *int    `json:"booking_weight"`
	Position           int     `json:"position"`
}

func (CalendarOwner) TableName() string { return "booking_calendar_owners" }

func (o *CalendarOwner) BeforeCreate(tx *gorm.DB) error {
	ensureID(&o.ID)
	return nil
}

// BookingBlock is a period during which a calendar takes no bookings
type BookingBlock struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	CalendarID    string    `json:"calendar_id" gorm:"index;not null"`
	StartDatetime time.Time `json:"start_datetime"`
	EndDatetime   time.Time `json:"end_datetime"`
	Reason        *string   `json:"reason"`
}

func (BookingBlock) TableName() string { return "booking_blocks" }

func (b *BookingBlock) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// Booking is a scheduled appointment
type Booking struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	TenantID      string    `json:"empresa_id" gorm:"column:empresa_id;index;not null"`
	CalendarID    string    `json:"calendar_id" gorm:"index;not null"`
	BookingTypeID string    `json:"booking_type_id" gorm:"not null"`
	AssignedTo    string    `json:"assigned_to" gorm:"not null"`
	LeadID        *string   `json:"lead_id"`
	ClientName    *string   `json:"client_name"`
	ClientPhone   *string   `json:"client_phone"`
	ClientEmail   *string   `json:"client_email"`
	StartDatetime time.Time `json:"start_datetime" gorm:"index"`
	EndDatetime   time.Time `json:"end_datetime"`
	Status        string    `json:"status"`
	Notes         *string   `json:"notes"`
	EventID       *string   `json:"event_id"`
	CreatedBy     string    `json:"created_by" gorm:"not null"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	BookingType *BookingType `json:"booking_types" gorm:"foreignKey:BookingTypeID;-:migration"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	ensureID(&b.ID)
	return nil
}
