package model

import (
	"github.com/google/uuid"
)

// ensureID fills an empty primary key with a random UUID
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}

// AllModels lists every table the API reads or writes, in dependency order
func AllModels() []interface{} {
	return []interface{}{
		&APIToken{},
		&Pipeline{},
		&Stage{},
		&Lead{},
		&LeadHistory{},
		&CustomField{},
		&CustomValue{},
		&TaskType{},
		&Task{},
		&TaskComment{},
		&Calendar{},
		&BookingAvailability{},
		&BookingType{},
		&CalendarOwner{},
		&BookingBlock{},
		&Booking{},
		&WhatsappInstance{},
		&Conversation{},
		&Message{},
		&Vehicle{},
		&VehicleImage{},
		&User{},
	}
}
