package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamezone_pos_backend/internal/models"

	"github.com/shopspring/decimal"
)

// RoomRepository defines the interface for room-related database operations.
type RoomRepository interface {
	CreateRoom(executor SQLExecutor, room *models.Room) (*models.Room, error)
	GetRoomByID(id int64) (*models.Room, error)
	GetRooms(filters models.RoomFilters) ([]models.Room, error)
	UpdateRoom(executor SQLExecutor, room *models.Room) (*models.Room, error)
	// UpdateRoomSession writes status and all current_session_* fields in one
	// statement so a room never exposes a half-updated session.
	UpdateRoomSession(executor SQLExecutor, room *models.Room) error
	// ClearRoomSession returns the room to "available", nulls the session
	// fields and records the finalized room cost of the last session.
	ClearRoomSession(executor SQLExecutor, roomID int64, finalCost decimal.Decimal) error
	UpdateRoomStatus(executor SQLExecutor, roomID int64, status string) error
	DeleteRoom(executor SQLExecutor, id int64) error
}

type roomRepository struct {
	db *sql.DB
}

// NewRoomRepository creates a new instance of RoomRepository.
func NewRoomRepository(db *sql.DB) RoomRepository {
	return &roomRepository{db: db}
}

const selectRoomFields = `
	id, name, console_type, status, pricing_single, pricing_multiplayer,
	current_customer_name, current_mode, current_session_start, current_session_end,
	current_total_cost, created_at, updated_at
`

// scanRoomRow scans a single room row, converting nullable session fields.
func scanRoomRow(row scanner) (*models.Room, error) {
	var room models.Room
	var customerName, mode sql.NullString
	var sessionStart, sessionEnd sql.NullTime
	var totalCost decimal.NullDecimal

	err := row.Scan(
		&room.ID, &room.Name, &room.ConsoleType, &room.Status,
		&room.PricingSingle, &room.PricingMultiplayer,
		&customerName, &mode, &sessionStart, &sessionEnd,
		&totalCost, &room.CreatedAt, &room.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning room: %v", ErrDatabaseError, err)
	}

	if customerName.Valid {
		room.CurrentCustomerName = &customerName.String
	}
	if mode.Valid {
		room.CurrentMode = &mode.String
	}
	if sessionStart.Valid {
		t := sessionStart.Time
		room.CurrentSessionStart = &t
	}
	if sessionEnd.Valid {
		t := sessionEnd.Time
		room.CurrentSessionEnd = &t
	}
	if totalCost.Valid {
		room.CurrentTotalCost = &totalCost.Decimal
	}
	return &room, nil
}

func (r *roomRepository) CreateRoom(executor SQLExecutor, room *models.Room) (*models.Room, error) {
	query := `INSERT INTO rooms
	            (name, console_type, status, pricing_single, pricing_multiplayer, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	room.CreatedAt = currentTime
	room.UpdatedAt = currentTime
	if room.Status == "" {
		room.Status = models.RoomStatusAvailable
	}

	err := executor.QueryRow(query,
		room.Name, room.ConsoleType, room.Status,
		room.PricingSingle, room.PricingMultiplayer,
		room.CreatedAt, room.UpdatedAt,
	).Scan(&room.ID, &room.CreatedAt, &room.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating room: %v", ErrDatabaseError, err)
	}
	return room, nil
}

func (r *roomRepository) GetRoomByID(id int64) (*models.Room, error) {
	query := "SELECT " + selectRoomFields + " FROM rooms WHERE id = $1"
	return scanRoomRow(r.db.QueryRow(query, id))
}

func (r *roomRepository) GetRooms(filters models.RoomFilters) ([]models.Room, error) {
	rooms := []models.Room{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectRoomFields + " FROM rooms")

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.ConsoleType != nil && *filters.ConsoleType != "" {
		conditions = append(conditions, fmt.Sprintf("console_type = $%d", argCount))
		args = append(args, *filters.ConsoleType)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying rooms: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		room, scanErr := scanRoomRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		rooms = append(rooms, *room)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating room rows: %v", ErrDatabaseError, err)
	}
	return rooms, nil
}

func (r *roomRepository) UpdateRoom(executor SQLExecutor, room *models.Room) (*models.Room, error) {
	query := `UPDATE rooms SET
	            name = $1, console_type = $2, pricing_single = $3, pricing_multiplayer = $4, updated_at = $5
	          WHERE id = $6
	          RETURNING updated_at`
	room.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		room.Name, room.ConsoleType, room.PricingSingle, room.PricingMultiplayer,
		room.UpdatedAt, room.ID,
	).Scan(&room.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating room ID %d: %v", ErrDatabaseError, room.ID, err)
	}
	return room, nil
}

func (r *roomRepository) UpdateRoomSession(executor SQLExecutor, room *models.Room) error {
	query := `UPDATE rooms SET
	            status = $1, current_customer_name = $2, current_mode = $3,
	            current_session_start = $4, current_session_end = $5,
	            current_total_cost = $6, updated_at = $7
	          WHERE id = $8`

	var totalCost decimal.NullDecimal
	if room.CurrentTotalCost != nil {
		totalCost = decimal.NullDecimal{Decimal: *room.CurrentTotalCost, Valid: true}
	}

	result, err := executor.Exec(query,
		room.Status, room.CurrentCustomerName, room.CurrentMode,
		room.CurrentSessionStart, room.CurrentSessionEnd,
		totalCost, time.Now(), room.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating session for room ID %d: %v", ErrDatabaseError, room.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roomRepository) ClearRoomSession(executor SQLExecutor, roomID int64, finalCost decimal.Decimal) error {
	query := `UPDATE rooms SET
	            status = $1, current_customer_name = NULL, current_mode = NULL,
	            current_session_start = NULL, current_session_end = NULL,
	            current_total_cost = $2, updated_at = $3
	          WHERE id = $4`

	result, err := executor.Exec(query, models.RoomStatusAvailable, finalCost, time.Now(), roomID)
	if err != nil {
		return fmt.Errorf("%w: clearing session for room ID %d: %v", ErrDatabaseError, roomID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roomRepository) UpdateRoomStatus(executor SQLExecutor, roomID int64, status string) error {
	query := `UPDATE rooms SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, status, time.Now(), roomID)
	if err != nil {
		return fmt.Errorf("%w: updating status for room ID %d: %v", ErrDatabaseError, roomID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *roomRepository) DeleteRoom(executor SQLExecutor, id int64) error {
	query := `DELETE FROM rooms WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting room ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
