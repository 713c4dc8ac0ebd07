package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Console types supported by the club.
const (
	ConsoleTypePS5  = "PS5"
	ConsoleTypeXbox = "Xbox"
)

// Room statuses.
const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusCleaning    = "cleaning"
	RoomStatusMaintenance = "maintenance"
)

// Session modes.
const (
	SessionModeSingle      = "single"
	SessionModeMultiplayer = "multiplayer"
)

// IsValidConsoleType checks if the provided console type is supported.
func IsValidConsoleType(consoleType string) bool {
	switch consoleType {
	case ConsoleTypePS5, ConsoleTypeXbox:
		return true
	default:
		return false
	}
}

// IsValidRoomStatus checks if the provided status string is a valid room status.
func IsValidRoomStatus(status string) bool {
	switch status {
	case RoomStatusAvailable, RoomStatusOccupied, RoomStatusCleaning, RoomStatusMaintenance:
		return true
	default:
		return false
	}
}

// IsValidSessionMode checks if the provided mode is a valid session mode.
func IsValidSessionMode(mode string) bool {
	switch mode {
	case SessionModeSingle, SessionModeMultiplayer:
		return true
	default:
		return false
	}
}

// Room represents a gaming room with a console, billed hourly.
// The Current* fields describe the running session and are only set while
// Status is "occupied"; CurrentSessionEnd stays nil for open-time sessions.
type Room struct {
	ID                  int64            `json:"id" db:"id"`
	Name                string           `json:"name" db:"name" binding:"required"`
	ConsoleType         string           `json:"console_type" db:"console_type"`
	Status              string           `json:"status" db:"status"`
	PricingSingle       decimal.Decimal  `json:"pricing_single" db:"pricing_single"`
	PricingMultiplayer  decimal.Decimal  `json:"pricing_multiplayer" db:"pricing_multiplayer"`
	CurrentCustomerName *string          `json:"current_customer_name,omitempty" db:"current_customer_name"`
	CurrentMode         *string          `json:"current_mode,omitempty" db:"current_mode"`
	CurrentSessionStart *time.Time       `json:"current_session_start,omitempty" db:"current_session_start"`
	CurrentSessionEnd   *time.Time       `json:"current_session_end,omitempty" db:"current_session_end"`
	CurrentTotalCost    *decimal.Decimal `json:"current_total_cost,omitempty" db:"current_total_cost"`
	CreatedAt           time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at" db:"updated_at"`
}

// HourlyRate returns the room's rate for the given session mode.
func (r *Room) HourlyRate(mode string) decimal.Decimal {
	if mode == SessionModeMultiplayer {
		return r.PricingMultiplayer
	}
	return r.PricingSingle
}

// RoomFilters defines the available filters for querying rooms.
type RoomFilters struct {
	Status      *string `form:"status"`
	ConsoleType *string `form:"console_type"`
}
