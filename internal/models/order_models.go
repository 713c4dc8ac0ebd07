package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order types.
const (
	OrderTypeRoomReservation = "room_reservation"
	OrderTypeCafeOrder       = "cafe_order"
	OrderTypeCombo           = "combo"
)

// Order statuses.
const (
	OrderStatusActive    = "active"
	OrderStatusPaused    = "paused"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order item types.
const (
	ItemTypeRoomTime    = "room_time"
	ItemTypeCafeProduct = "cafe_product"
)

// IsValidOrderType checks if the provided order type is valid.
func IsValidOrderType(orderType string) bool {
	switch orderType {
	case OrderTypeRoomReservation, OrderTypeCafeOrder, OrderTypeCombo:
		return true
	default:
		return false
	}
}

// IsValidOrderStatus checks if the provided status string is a valid order status.
func IsValidOrderStatus(status string) bool {
	switch status {
	case OrderStatusActive, OrderStatusPaused, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// Order represents a sale: room time, cafe items, or a combination.
// IsOpenTime marks a metered room session whose cost is only finalized when
// the session is stopped; DurationHours is nil for such orders.
type Order struct {
	ID            int64            `json:"id" db:"id"`
	CustomerName  string           `json:"customer_name" db:"customer_name"`
	OrderType     string           `json:"order_type" db:"order_type"`
	RoomID        *int64           `json:"room_id,omitempty" db:"room_id"`
	TotalAmount   decimal.Decimal  `json:"total_amount" db:"total_amount"`
	Status        string           `json:"status" db:"status"`
	StartTime     time.Time        `json:"start_time" db:"start_time"`
	EndTime       *time.Time       `json:"end_time,omitempty" db:"end_time"`
	Mode          *string          `json:"mode,omitempty" db:"mode"`
	IsOpenTime    bool             `json:"is_open_time" db:"is_open_time"`
	DurationHours *decimal.Decimal `json:"duration_hours,omitempty" db:"duration_hours"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
	Room          *Room            `json:"room,omitempty"`
	OrderItems    []OrderItem      `json:"order_items,omitempty"`
}

// OrderItem is a single line on an order. Quantity is decimal because
// room-time lines carry fractional hours (and 0 for open-time placeholders).
type OrderItem struct {
	ID         int64           `json:"id" db:"id"`
	OrderID    int64           `json:"order_id" db:"order_id"`
	ItemType   string          `json:"item_type" db:"item_type"`
	ItemName   string          `json:"item_name" db:"item_name"`
	Quantity   decimal.Decimal `json:"quantity" db:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price" db:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price" db:"total_price"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// OrderFilters defines the available filters for querying orders.
type OrderFilters struct {
	Status   *string `form:"status"`
	RoomID   *int64  `form:"room_id"`
	Date     *string `form:"date"` // Expected format YYYY-MM-DD
	Page     int     `form:"page"`
	PageSize int     `form:"page_size"`
}

// NewNullString is a helper for string pointers, returning nil if s is empty.
func NewNullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
