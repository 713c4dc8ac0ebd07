package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamezone_pos_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// AppointmentRepository defines the interface for appointment-related database operations.
type AppointmentRepository interface {
	CreateAppointment(executor SQLExecutor, appointment *models.Appointment) (*models.Appointment, error)
	GetAppointmentByID(id int64) (*models.Appointment, error)
	GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error)
	// GetAppointmentsForRoomDate returns all non-cancelled appointments of a
	// room on a date; the conflict checker runs its overlap test over these.
	GetAppointmentsForRoomDate(roomID int64, date string) ([]models.Appointment, error)
	UpdateAppointment(executor SQLExecutor, appointment *models.Appointment) (*models.Appointment, error)
	UpdateAppointmentStatus(executor SQLExecutor, id int64, status string) error
	DeleteAppointment(executor SQLExecutor, id int64) error
}

type appointmentRepository struct {
	db *sql.DB
}

// NewAppointmentRepository creates a new instance of AppointmentRepository.
func NewAppointmentRepository(db *sql.DB) AppointmentRepository {
	return &appointmentRepository{db: db}
}

const selectAppointmentFields = `
	id, room_id, customer_name, to_char(appointment_date, 'YYYY-MM-DD'),
	to_char(appointment_time, 'HH24:MI'), duration_hours, status, created_at, updated_at
`

func scanAppointmentRow(row scanner, extraDest ...interface{}) (*models.Appointment, error) {
	var appt models.Appointment
	dest := []interface{}{
		&appt.ID, &appt.RoomID, &appt.CustomerName, &appt.AppointmentDate,
		&appt.AppointmentTime, &appt.DurationHours, &appt.Status,
		&appt.CreatedAt, &appt.UpdatedAt,
	}
	dest = append(dest, extraDest...)

	err := row.Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning appointment: %v", ErrDatabaseError, err)
	}
	return &appt, nil
}

func (r *appointmentRepository) CreateAppointment(executor SQLExecutor, appointment *models.Appointment) (*models.Appointment, error) {
	query := `INSERT INTO appointments
	            (room_id, customer_name, appointment_date, appointment_time, duration_hours, status, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	appointment.CreatedAt = currentTime
	appointment.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		appointment.RoomID, appointment.CustomerName,
		appointment.AppointmentDate, appointment.AppointmentTime,
		appointment.DurationHours, appointment.Status,
		appointment.CreatedAt, appointment.UpdatedAt,
	).Scan(&appointment.ID, &appointment.CreatedAt, &appointment.UpdatedAt)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, fmt.Errorf("%w: creating appointment (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return nil, fmt.Errorf("%w: creating appointment: %v", ErrDatabaseError, err)
	}
	return appointment, nil
}

func (r *appointmentRepository) GetAppointmentByID(id int64) (*models.Appointment, error) {
	query := "SELECT " + selectAppointmentFields + " FROM appointments WHERE id = $1"
	return scanAppointmentRow(r.db.QueryRow(query, id))
}

func (r *appointmentRepository) GetAppointments(filters models.AppointmentFilters) ([]models.Appointment, int, error) {
	appointments := []models.Appointment{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectAppointmentFields + ", COUNT(*) OVER() as total_count FROM appointments")

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.RoomID != nil {
		conditions = append(conditions, fmt.Sprintf("room_id = $%d", argCount))
		args = append(args, *filters.RoomID)
		argCount++
	}
	if filters.Date != nil && *filters.Date != "" {
		conditions = append(conditions, fmt.Sprintf("appointment_date = $%d", argCount))
		args = append(args, *filters.Date)
		argCount++
	}
	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY appointment_date DESC, appointment_time")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying appointments: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		appt, scanErr := scanAppointmentRow(rows, &totalCount)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		appointments = append(appointments, *appt)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appointments, totalCount, nil
}

func (r *appointmentRepository) GetAppointmentsForRoomDate(roomID int64, date string) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	query := "SELECT " + selectAppointmentFields + ` FROM appointments
	          WHERE room_id = $1 AND appointment_date = $2 AND status != $3
	          ORDER BY appointment_time`

	rows, err := r.db.Query(query, roomID, date, models.AppointmentStatusCancelled)
	if err != nil {
		return nil, fmt.Errorf("%w: querying appointments for room %d on %s: %v", ErrDatabaseError, roomID, date, err)
	}
	defer rows.Close()

	for rows.Next() {
		appt, scanErr := scanAppointmentRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		appointments = append(appointments, *appt)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating appointment rows: %v", ErrDatabaseError, err)
	}
	return appointments, nil
}

func (r *appointmentRepository) UpdateAppointment(executor SQLExecutor, appointment *models.Appointment) (*models.Appointment, error) {
	query := `UPDATE appointments SET
	            room_id = $1, customer_name = $2, appointment_date = $3,
	            appointment_time = $4, duration_hours = $5, status = $6, updated_at = $7
	          WHERE id = $8
	          RETURNING updated_at`
	appointment.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		appointment.RoomID, appointment.CustomerName,
		appointment.AppointmentDate, appointment.AppointmentTime,
		appointment.DurationHours, appointment.Status,
		appointment.UpdatedAt, appointment.ID,
	).Scan(&appointment.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating appointment ID %d: %v", ErrDatabaseError, appointment.ID, err)
	}
	return appointment, nil
}

func (r *appointmentRepository) UpdateAppointmentStatus(executor SQLExecutor, id int64, status string) error {
	query := `UPDATE appointments SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("%w: updating appointment status for ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepository) DeleteAppointment(executor SQLExecutor, id int64) error {
	query := `DELETE FROM appointments WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting appointment ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
