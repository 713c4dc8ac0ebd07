package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Appointments ---
var (
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrAppointmentConflict     = errors.New("appointment overlaps an existing appointment for this room")
	ErrAppointmentStatusChange = errors.New("invalid appointment status transition")
	ErrRoomForAppointment      = errors.New("room specified for appointment not found")
)

// --- Appointment DTOs ---

type CreateAppointmentRequest struct {
	RoomID          int64           `json:"room_id" binding:"required"`
	CustomerName    string          `json:"customer_name" binding:"required"`
	AppointmentDate string          `json:"appointment_date" binding:"required"` // YYYY-MM-DD
	AppointmentTime string          `json:"appointment_time" binding:"required"` // HH:MM
	DurationHours   decimal.Decimal `json:"duration_hours" binding:"required"`
}

type UpdateAppointmentRequest struct {
	CustomerName    *string          `json:"customer_name"`
	AppointmentDate *string          `json:"appointment_date"`
	AppointmentTime *string          `json:"appointment_time"`
	DurationHours   *decimal.Decimal `json:"duration_hours"`
}

// --- AppointmentService Interface ---

// AppointmentService manages pre-booked room slots and refuses bookings that
// overlap another non-cancelled appointment for the same room and date.
// It deliberately does not consult live room occupancy.
type AppointmentService interface {
	CreateAppointment(req CreateAppointmentRequest) (*models.Appointment, error)
	GetAppointmentByID(id int64) (*models.Appointment, error)
	GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error)
	UpdateAppointment(id int64, req UpdateAppointmentRequest) (*models.Appointment, error)
	UpdateAppointmentStatus(id int64, status string) (*models.Appointment, error)
	DeleteAppointment(id int64) error
}

// --- appointmentService Implementation ---
type appointmentService struct {
	appointmentRepo repositories.AppointmentRepository
	roomRepo        repositories.RoomRepository
	db              *sql.DB
}

// NewAppointmentService creates a new instance of AppointmentService.
func NewAppointmentService(
	ar repositories.AppointmentRepository,
	rr repositories.RoomRepository,
	db *sql.DB,
) AppointmentService {
	return &appointmentService{
		appointmentRepo: ar,
		roomRepo:        rr,
		db:              db,
	}
}

// HasConflict reports whether the candidate appointment overlaps any of the
// given appointments. Intervals are half-open [start, start+duration), so an
// appointment ending exactly when another starts does not conflict.
// Cancelled appointments never conflict; excludeID skips one appointment for
// edit-in-place checks.
func HasConflict(candidate *models.Appointment, existing []models.Appointment, excludeID *int64) (bool, error) {
	candStart, err := candidate.StartsAt()
	if err != nil {
		return false, fmt.Errorf("%w: invalid appointment date/time: %v", ErrValidation, err)
	}
	candEnd := candStart.Add(durationFromHours(candidate.DurationHours))

	for _, appt := range existing {
		if excludeID != nil && appt.ID == *excludeID {
			continue
		}
		if appt.Status == models.AppointmentStatusCancelled {
			continue
		}
		if appt.RoomID != candidate.RoomID || appt.AppointmentDate != candidate.AppointmentDate {
			continue
		}
		existingStart, parseErr := appt.StartsAt()
		if parseErr != nil {
			return false, fmt.Errorf("%w: stored appointment %d has invalid date/time: %v", ErrValidation, appt.ID, parseErr)
		}
		existingEnd := existingStart.Add(durationFromHours(appt.DurationHours))

		if candStart.Before(existingEnd) && candEnd.After(existingStart) {
			return true, nil
		}
	}
	return false, nil
}

func durationFromHours(hours decimal.Decimal) time.Duration {
	ms := hours.Mul(millisPerHour).IntPart()
	return time.Duration(ms) * time.Millisecond
}

func validateAppointmentFields(customerName, date, timeOfDay string, durationHours decimal.Decimal) error {
	if strings.TrimSpace(customerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		return fmt.Errorf("%w: appointment_date must be YYYY-MM-DD", ErrValidation)
	}
	if _, err := time.Parse("15:04", timeOfDay); err != nil {
		return fmt.Errorf("%w: appointment_time must be HH:MM", ErrValidation)
	}
	if !durationHours.IsPositive() {
		return fmt.Errorf("%w: duration_hours must be positive", ErrValidation)
	}
	return nil
}

// checkRoomConflicts loads the room's non-cancelled appointments for the date
// and runs the overlap test.
func (s *appointmentService) checkRoomConflicts(candidate *models.Appointment, excludeID *int64) error {
	existing, err := s.appointmentRepo.GetAppointmentsForRoomDate(candidate.RoomID, candidate.AppointmentDate)
	if err != nil {
		return fmt.Errorf("failed to fetch appointments for conflict check: %w", err)
	}
	conflict, err := HasConflict(candidate, existing, excludeID)
	if err != nil {
		return err
	}
	if conflict {
		return ErrAppointmentConflict
	}
	return nil
}

func (s *appointmentService) CreateAppointment(req CreateAppointmentRequest) (*models.Appointment, error) {
	if err := validateAppointmentFields(req.CustomerName, req.AppointmentDate, req.AppointmentTime, req.DurationHours); err != nil {
		return nil, err
	}

	if _, err := s.roomRepo.GetRoomByID(req.RoomID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID %d", ErrRoomForAppointment, req.RoomID)
		}
		return nil, fmt.Errorf("failed to validate room for appointment: %w", err)
	}

	appointment := &models.Appointment{
		RoomID:          req.RoomID,
		CustomerName:    req.CustomerName,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		DurationHours:   req.DurationHours,
		Status:          models.AppointmentStatusScheduled,
	}

	if err := s.checkRoomConflicts(appointment, nil); err != nil {
		return nil, err
	}

	created, err := s.appointmentRepo.CreateAppointment(s.db, appointment)
	if err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}
	return created, nil
}

func (s *appointmentService) GetAppointmentByID(id int64) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to get appointment by ID: %w", err)
	}
	return appointment, nil
}

func (s *appointmentService) GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}

	appointments, totalCount, err := s.appointmentRepo.GetAppointments(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get appointments: %w", err)
	}
	return appointments, totalCount, nil
}

func (s *appointmentService) UpdateAppointment(id int64, req UpdateAppointmentRequest) (*models.Appointment, error) {
	appointment, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to find appointment for update: %w", err)
	}

	if appointment.Status == models.AppointmentStatusCompleted || appointment.Status == models.AppointmentStatusCancelled {
		return nil, fmt.Errorf("%w: cannot update an appointment that is already '%s'", ErrValidation, appointment.Status)
	}

	if req.CustomerName != nil {
		appointment.CustomerName = *req.CustomerName
	}
	if req.AppointmentDate != nil {
		appointment.AppointmentDate = *req.AppointmentDate
	}
	if req.AppointmentTime != nil {
		appointment.AppointmentTime = *req.AppointmentTime
	}
	if req.DurationHours != nil {
		appointment.DurationHours = *req.DurationHours
	}
	if err = validateAppointmentFields(appointment.CustomerName, appointment.AppointmentDate, appointment.AppointmentTime, appointment.DurationHours); err != nil {
		return nil, err
	}

	// Edit-in-place: the appointment being moved must not count against itself.
	if err = s.checkRoomConflicts(appointment, &id); err != nil {
		return nil, err
	}

	updated, err := s.appointmentRepo.UpdateAppointment(s.db, appointment)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}
	return updated, nil
}

func (s *appointmentService) UpdateAppointmentStatus(id int64, status string) (*models.Appointment, error) {
	if !models.IsValidAppointmentStatus(status) {
		return nil, fmt.Errorf("%w: invalid status '%s'", ErrValidation, status)
	}

	appointment, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("failed to find appointment for status update: %w", err)
	}

	if appointment.Status == models.AppointmentStatusCompleted && status != models.AppointmentStatusCompleted {
		return nil, fmt.Errorf("%w: cannot change status of a completed appointment", ErrAppointmentStatusChange)
	}
	if appointment.Status == models.AppointmentStatusCancelled && status != models.AppointmentStatusCancelled {
		return nil, fmt.Errorf("%w: cannot change status of a cancelled appointment", ErrAppointmentStatusChange)
	}

	if err = s.appointmentRepo.UpdateAppointmentStatus(s.db, id, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrAppointmentStatusChange, err)
	}
	return s.appointmentRepo.GetAppointmentByID(id)
}

func (s *appointmentService) DeleteAppointment(id int64) error {
	_, err := s.appointmentRepo.GetAppointmentByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to find appointment for deletion: %w", err)
	}
	if err = s.appointmentRepo.DeleteAppointment(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrAppointmentNotFound
		}
		return fmt.Errorf("failed to delete appointment: %w", err)
	}
	return nil
}
