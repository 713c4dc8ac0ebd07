package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Rooms ---
var (
	ErrRoomDuplicate = errors.New("a room with this name already exists")
	ErrRoomOccupied  = errors.New("room has a running session")
)

// --- Room DTOs ---

type CreateRoomRequest struct {
	Name               string          `json:"name" binding:"required"`
	ConsoleType        string          `json:"console_type" binding:"required"`
	PricingSingle      decimal.Decimal `json:"pricing_single" binding:"required"`
	PricingMultiplayer decimal.Decimal `json:"pricing_multiplayer" binding:"required"`
}

type UpdateRoomRequest struct {
	Name               *string          `json:"name"`
	ConsoleType        *string          `json:"console_type"`
	PricingSingle      *decimal.Decimal `json:"pricing_single"`
	PricingMultiplayer *decimal.Decimal `json:"pricing_multiplayer"`
}

// --- RoomService Interface ---
type RoomService interface {
	CreateRoom(req CreateRoomRequest) (*models.Room, error)
	GetRoomByID(id int64) (*models.Room, error)
	GetRooms(filters models.RoomFilters) ([]models.Room, error)
	UpdateRoom(id int64, req UpdateRoomRequest) (*models.Room, error)
	// SetRoomStatus moves a room between the non-session statuses
	// (available, cleaning, maintenance). Occupancy is owned by the
	// session engine and cannot be set by hand.
	SetRoomStatus(id int64, status string) (*models.Room, error)
	DeleteRoom(id int64) error
}

// --- roomService Implementation ---
type roomService struct {
	roomRepo repositories.RoomRepository
	db       *sql.DB
}

// NewRoomService creates a new instance of RoomService.
func NewRoomService(rr repositories.RoomRepository, db *sql.DB) RoomService {
	return &roomService{roomRepo: rr, db: db}
}

func validateRoomFields(name, consoleType string, single, multi decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: room name is required", ErrValidation)
	}
	if !models.IsValidConsoleType(consoleType) {
		return fmt.Errorf("%w: invalid console type '%s'", ErrValidation, consoleType)
	}
	if !single.IsPositive() || !multi.IsPositive() {
		return fmt.Errorf("%w: hourly rates must be positive", ErrValidation)
	}
	return nil
}

func (s *roomService) CreateRoom(req CreateRoomRequest) (*models.Room, error) {
	if err := validateRoomFields(req.Name, req.ConsoleType, req.PricingSingle, req.PricingMultiplayer); err != nil {
		return nil, err
	}

	room := &models.Room{
		Name:               req.Name,
		ConsoleType:        req.ConsoleType,
		Status:             models.RoomStatusAvailable,
		PricingSingle:      req.PricingSingle,
		PricingMultiplayer: req.PricingMultiplayer,
	}
	created, err := s.roomRepo.CreateRoom(s.db, room)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrRoomDuplicate
		}
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return created, nil
}

func (s *roomService) GetRoomByID(id int64) (*models.Room, error) {
	room, err := s.roomRepo.GetRoomByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room by ID: %w", err)
	}
	return room, nil
}

func (s *roomService) GetRooms(filters models.RoomFilters) ([]models.Room, error) {
	rooms, err := s.roomRepo.GetRooms(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get rooms: %w", err)
	}
	return rooms, nil
}

func (s *roomService) UpdateRoom(id int64, req UpdateRoomRequest) (*models.Room, error) {
	room, err := s.roomRepo.GetRoomByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room for update: %w", err)
	}

	if req.Name != nil {
		room.Name = *req.Name
	}
	if req.ConsoleType != nil {
		room.ConsoleType = *req.ConsoleType
	}
	if req.PricingSingle != nil {
		room.PricingSingle = *req.PricingSingle
	}
	if req.PricingMultiplayer != nil {
		room.PricingMultiplayer = *req.PricingMultiplayer
	}
	if err = validateRoomFields(room.Name, room.ConsoleType, room.PricingSingle, room.PricingMultiplayer); err != nil {
		return nil, err
	}

	updated, err := s.roomRepo.UpdateRoom(s.db, room)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to update room: %w", err)
	}
	return updated, nil
}

func (s *roomService) SetRoomStatus(id int64, status string) (*models.Room, error) {
	if status != models.RoomStatusAvailable && status != models.RoomStatusCleaning && status != models.RoomStatusMaintenance {
		return nil, fmt.Errorf("%w: status must be one of available, cleaning, maintenance", ErrValidation)
	}

	room, err := s.roomRepo.GetRoomByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find room for status change: %w", err)
	}
	if room.Status == models.RoomStatusOccupied {
		return nil, fmt.Errorf("%w: stop the session on room '%s' first", ErrRoomOccupied, room.Name)
	}

	if err = s.roomRepo.UpdateRoomStatus(s.db, id, status); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to update room status: %w", err)
	}
	return s.roomRepo.GetRoomByID(id)
}

func (s *roomService) DeleteRoom(id int64) error {
	room, err := s.roomRepo.GetRoomByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to find room for deletion: %w", err)
	}
	if room.Status == models.RoomStatusOccupied {
		return fmt.Errorf("%w: stop the session on room '%s' first", ErrRoomOccupied, room.Name)
	}
	if err = s.roomRepo.DeleteRoom(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrRoomNotFound
		}
		return fmt.Errorf("failed to delete room: %w", err)
	}
	return nil
}
