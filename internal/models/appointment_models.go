package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Appointment statuses.
const (
	AppointmentStatusScheduled = "scheduled"
	AppointmentStatusActive    = "active"
	AppointmentStatusCompleted = "completed"
	AppointmentStatusCancelled = "cancelled"
)

// IsValidAppointmentStatus checks if the provided status string is a valid
// appointment status.
func IsValidAppointmentStatus(status string) bool {
	switch status {
	case AppointmentStatusScheduled, AppointmentStatusActive,
		AppointmentStatusCompleted, AppointmentStatusCancelled:
		return true
	default:
		return false
	}
}

// Appointment is a pre-booked room slot. AppointmentDate is YYYY-MM-DD and
// AppointmentTime is HH:MM; overlap checks work on the half-open interval
// [start, start+duration).
type Appointment struct {
	ID              int64           `json:"id" db:"id"`
	RoomID          int64           `json:"room_id" db:"room_id" binding:"required"`
	CustomerName    string          `json:"customer_name" db:"customer_name"`
	AppointmentDate string          `json:"appointment_date" db:"appointment_date"`
	AppointmentTime string          `json:"appointment_time" db:"appointment_time"`
	DurationHours   decimal.Decimal `json:"duration_hours" db:"duration_hours"`
	Status          string          `json:"status" db:"status"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Room            *Room           `json:"room,omitempty"`
}

// StartsAt parses the appointment's date and time into a single timestamp.
func (a *Appointment) StartsAt() (time.Time, error) {
	return time.Parse("2006-01-02 15:04", a.AppointmentDate+" "+a.AppointmentTime)
}

// AppointmentFilters defines the available filters for querying appointments.
type AppointmentFilters struct {
	RoomID   *int64  `form:"room_id"`
	Date     *string `form:"date"` // Expected format YYYY-MM-DD
	Status   *string `form:"status"`
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}
