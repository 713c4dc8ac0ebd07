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

// --- Custom Service Errors for Sessions ---
var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrRoomNotAvailable     = errors.New("room is not available")
	ErrRoomNotOccupied      = errors.New("room is not occupied")
	ErrSessionOrderNotFound = errors.New("no active order found for the room's session")
	ErrOrderNotPaused       = errors.New("order is not paused")
	ErrOrderNotAdjustable   = errors.New("order cannot be adjusted in its current state")
	ErrOrderNotPayable      = errors.New("order is not in a payable state")
	ErrOpenTimeAdjustment   = errors.New("open time sessions have no fixed duration to adjust")
	ErrEndBeforeStart       = errors.New("adjustment would move the session end before its start")
)

var millisPerHour = decimal.NewFromInt(3_600_000)

// --- Session DTOs ---

type StartSessionRequest struct {
	CustomerName  string           `json:"customer_name" binding:"required"`
	Mode          string           `json:"mode" binding:"required"`
	OpenTime      bool             `json:"open_time"`
	DurationHours *decimal.Decimal `json:"duration_hours"`
}

type StopSessionRequest struct {
	ForceComplete bool   `json:"force_complete"`
	PaymentMethod string `json:"payment_method"` // defaults to cash when the stop completes the order
}

type ReactivateSessionRequest struct {
	OpenTime      bool             `json:"open_time"`
	DurationHours *decimal.Decimal `json:"duration_hours"`
}

type AdjustTimeRequest struct {
	DeltaHours decimal.Decimal `json:"delta_hours" binding:"required"`
}

type CompletePaymentRequest struct {
	PaymentMethod string `json:"payment_method" binding:"required"`
}

// ActiveSessionView is the read-only projection the terminal polls: each
// occupied room with its order and the cost accrued so far.
type ActiveSessionView struct {
	Room         models.Room     `json:"room"`
	Order        *models.Order   `json:"order,omitempty"`
	ElapsedHours decimal.Decimal `json:"elapsed_hours"`
	AccruedCost  decimal.Decimal `json:"accrued_cost"`
	Expired      bool            `json:"expired"`
}

// --- SessionService Interface ---

// SessionService owns the occupancy state machine of a room and its paired
// order: available -> occupied -> paused/completed, with reactivation from
// paused. Every mutating operation verifies its precondition and performs all
// Room/Order/OrderItem/Transaction writes inside one database transaction.
type SessionService interface {
	StartSession(roomID int64, req StartSessionRequest) (*models.Order, error)
	StopSession(roomID int64, req StopSessionRequest) (*models.Order, error)
	ReactivateSession(orderID int64, req ReactivateSessionRequest) (*models.Order, error)
	AdjustTime(roomID int64, req AdjustTimeRequest) (*models.Order, error)
	ExtendTime(orderID int64, req AdjustTimeRequest) (*models.Order, error)
	CompletePayment(orderID int64, req CompletePaymentRequest) (*models.Order, error)
	ActiveSessions() ([]ActiveSessionView, error)
}

// --- sessionService Implementation ---
type sessionService struct {
	roomRepo  repositories.RoomRepository
	orderRepo repositories.OrderRepository
	txnRepo   repositories.TransactionRepository
	db        *sql.DB
	now       func() time.Time
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(
	rr repositories.RoomRepository,
	or repositories.OrderRepository,
	tr repositories.TransactionRepository,
	db *sql.DB,
) SessionService {
	return &sessionService{
		roomRepo:  rr,
		orderRepo: or,
		txnRepo:   tr,
		db:        db,
		now:       time.Now,
	}
}

// elapsedHours converts a time span into fractional hours: millisecond delta
// over 3,600,000, unrounded, so billing stays proportional to actual usage.
func elapsedHours(start, end time.Time) decimal.Decimal {
	ms := end.Sub(start).Milliseconds()
	return decimal.NewFromInt(ms).Div(millisPerHour)
}

// hoursToDuration converts fractional hours to a time.Duration.
func hoursToDuration(hours decimal.Decimal) time.Duration {
	ms := hours.Mul(millisPerHour).IntPart()
	return time.Duration(ms) * time.Millisecond
}

// roomTimeItemName builds the line label for a room-time item.
func roomTimeItemName(roomName, mode string, openTime bool, hours decimal.Decimal) string {
	if openTime {
		return fmt.Sprintf("%s - %s - open time", roomName, mode)
	}
	return fmt.Sprintf("%s - %s - %sh", roomName, mode, hours.String())
}

// validateSessionTerms checks the customer/mode/duration triple shared by
// StartSession and ReactivateSession.
func validateSessionTerms(customerName, mode string, openTime bool, durationHours *decimal.Decimal) error {
	if strings.TrimSpace(customerName) == "" {
		return fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if !models.IsValidSessionMode(mode) {
		return fmt.Errorf("%w: invalid session mode '%s'", ErrValidation, mode)
	}
	if !openTime {
		if durationHours == nil || !durationHours.IsPositive() {
			return fmt.Errorf("%w: duration_hours must be positive for a fixed-duration session", ErrValidation)
		}
	}
	return nil
}

func (s *sessionService) StartSession(roomID int64, req StartSessionRequest) (*models.Order, error) {
	if err := validateSessionTerms(req.CustomerName, req.Mode, req.OpenTime, req.DurationHours); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetRoomByID(roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to fetch room for session start: %w", err)
	}
	if room.Status != models.RoomStatusAvailable {
		return nil, fmt.Errorf("%w: room '%s' is %s", ErrRoomNotAvailable, room.Name, room.Status)
	}

	// One active order per room. A leftover active order means the store and
	// the room row disagree; refuse rather than double-book.
	_, err = s.orderRepo.GetOrderByRoomAndStatus(roomID, models.OrderStatusActive)
	if err == nil {
		return nil, fmt.Errorf("%w: room '%s' already has an active order", ErrRoomNotAvailable, room.Name)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for existing active order: %w", err)
	}

	startTime := s.now()
	rate := room.HourlyRate(req.Mode)

	var endTime *time.Time
	var durationHours *decimal.Decimal
	quantity := decimal.Zero
	total := decimal.Zero
	if !req.OpenTime {
		dur := *req.DurationHours
		end := startTime.Add(hoursToDuration(dur))
		endTime = &end
		durationHours = &dur
		quantity = dur
		total = dur.Mul(rate).Round(2)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order := &models.Order{
		CustomerName:  req.CustomerName,
		OrderType:     models.OrderTypeRoomReservation,
		RoomID:        &roomID,
		TotalAmount:   total,
		Status:        models.OrderStatusActive,
		StartTime:     startTime,
		EndTime:       endTime,
		Mode:          &req.Mode,
		IsOpenTime:    req.OpenTime,
		DurationHours: durationHours,
	}
	orderID, err := s.orderRepo.CreateOrder(tx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create session order: %w", err)
	}

	item := models.OrderItem{
		OrderID:    orderID,
		ItemType:   models.ItemTypeRoomTime,
		ItemName:   roomTimeItemName(room.Name, req.Mode, req.OpenTime, quantity),
		Quantity:   quantity,
		UnitPrice:  rate,
		TotalPrice: total,
	}
	if _, err = s.orderRepo.CreateOrderItem(tx, &item); err != nil {
		return nil, fmt.Errorf("failed to create room time item: %w", err)
	}

	room.Status = models.RoomStatusOccupied
	room.CurrentCustomerName = &req.CustomerName
	room.CurrentMode = &req.Mode
	room.CurrentSessionStart = &startTime
	room.CurrentSessionEnd = endTime
	if req.OpenTime {
		room.CurrentTotalCost = nil // cost not fixed until the session stops
	} else {
		room.CurrentTotalCost = &total
	}
	if err = s.roomRepo.UpdateRoomSession(tx, room); err != nil {
		return nil, fmt.Errorf("failed to mark room occupied: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session start: %w", err)
	}
	return s.getOrderWithItems(orderID)
}

func (s *sessionService) StopSession(roomID int64, req StopSessionRequest) (*models.Order, error) {
	room, err := s.roomRepo.GetRoomByID(roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to fetch room for session stop: %w", err)
	}
	if room.Status != models.RoomStatusOccupied {
		return nil, fmt.Errorf("%w: room '%s' is %s", ErrRoomNotOccupied, room.Name, room.Status)
	}

	order, err := s.orderRepo.GetOrderByRoomAndStatus(roomID, models.OrderStatusActive)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch session order: %w", err)
	}

	paymentMethod := req.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = models.PaymentMethodCash
	}
	if !models.IsValidPaymentMethod(paymentMethod) {
		return nil, fmt.Errorf("%w: invalid payment method '%s'", ErrValidation, paymentMethod)
	}

	sessionStart := order.StartTime
	if room.CurrentSessionStart != nil {
		sessionStart = *room.CurrentSessionStart
	}
	stopTime := s.now()

	items, err := s.orderRepo.GetOrderItemsByOrderID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order items for session stop: %w", err)
	}
	cafeCost := decimal.Zero
	for _, item := range items {
		if item.ItemType == models.ItemTypeCafeProduct {
			cafeCost = cafeCost.Add(item.TotalPrice)
		}
	}

	mode := models.SessionModeSingle
	if order.Mode != nil {
		mode = *order.Mode
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	var roomCost decimal.Decimal
	if order.IsOpenTime {
		// Finalize the open-time placeholder with the elapsed fractional hours.
		elapsed := elapsedHours(sessionStart, stopTime)
		rate := room.HourlyRate(mode)
		roomCost = rate.Mul(elapsed).Round(2)

		placeholder, itemErr := s.orderRepo.GetLatestRoomTimeItem(order.ID)
		if itemErr != nil {
			return nil, fmt.Errorf("failed to fetch open time item for finalization: %w", itemErr)
		}
		placeholder.Quantity = elapsed.Round(4)
		placeholder.TotalPrice = roomCost
		if itemErr = s.orderRepo.UpdateOrderItem(tx, placeholder); itemErr != nil {
			return nil, fmt.Errorf("failed to finalize open time item: %w", itemErr)
		}

		total, sumErr := s.orderRepo.SumOrderItems(tx, order.ID)
		if sumErr != nil {
			return nil, fmt.Errorf("failed to recompute order total: %w", sumErr)
		}
		order.TotalAmount = total
	} else {
		// Fixed-duration sessions are not re-priced on stop, only via explicit
		// adjustment; the committed room cost is the total minus cafe items.
		roomCost = order.TotalAmount.Sub(cafeCost)
	}

	newStatus := models.OrderStatusPaused
	if req.ForceComplete || order.IsOpenTime {
		newStatus = models.OrderStatusCompleted
	}
	order.Status = newStatus
	order.EndTime = &stopTime
	if err = s.orderRepo.UpdateOrder(tx, order); err != nil {
		return nil, fmt.Errorf("failed to update session order: %w", err)
	}

	// The room's own ledger field records the room cost only, cafe items
	// are settled through the order.
	if err = s.roomRepo.ClearRoomSession(tx, roomID, roomCost); err != nil {
		return nil, fmt.Errorf("failed to release room: %w", err)
	}

	if newStatus == models.OrderStatusCompleted {
		txn := models.Transaction{
			OrderID:         order.ID,
			TransactionType: models.TransactionTypePayment,
			Amount:          order.TotalAmount,
			PaymentMethod:   paymentMethod,
			Description:     models.NewNullString(fmt.Sprintf("Session settled for room '%s'", room.Name)),
			CreatedAt:       stopTime,
		}
		if _, err = s.txnRepo.CreateTransaction(tx, &txn); err != nil {
			return nil, fmt.Errorf("failed to record payment transaction: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session stop: %w", err)
	}
	return s.getOrderWithItems(order.ID)
}

func (s *sessionService) ReactivateSession(orderID int64, req ReactivateSessionRequest) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for reactivation: %w", err)
	}
	if order.Status != models.OrderStatusPaused {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotPaused, orderID, order.Status)
	}
	if order.RoomID == nil || order.Mode == nil {
		return nil, fmt.Errorf("%w: order %d has no room session to reactivate", ErrValidation, orderID)
	}
	if err = validateSessionTerms(order.CustomerName, *order.Mode, req.OpenTime, req.DurationHours); err != nil {
		return nil, err
	}

	room, err := s.roomRepo.GetRoomByID(*order.RoomID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to fetch room for reactivation: %w", err)
	}
	if room.Status != models.RoomStatusAvailable {
		return nil, fmt.Errorf("%w: room '%s' is %s, not available for reactivation", ErrRoomNotAvailable, room.Name, room.Status)
	}

	startTime := s.now()
	rate := room.HourlyRate(*order.Mode)

	var endTime *time.Time
	var durationHours *decimal.Decimal
	quantity := decimal.Zero
	blockCost := decimal.Zero
	if !req.OpenTime {
		dur := *req.DurationHours
		end := startTime.Add(hoursToDuration(dur))
		endTime = &end
		durationHours = &dur
		quantity = dur
		blockCost = dur.Mul(rate).Round(2)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	// The new block gets its own room-time line on top of the paused balance.
	item := models.OrderItem{
		OrderID:    order.ID,
		ItemType:   models.ItemTypeRoomTime,
		ItemName:   roomTimeItemName(room.Name, *order.Mode, req.OpenTime, quantity),
		Quantity:   quantity,
		UnitPrice:  rate,
		TotalPrice: blockCost,
	}
	if _, err = s.orderRepo.CreateOrderItem(tx, &item); err != nil {
		return nil, fmt.Errorf("failed to create room time item for reactivation: %w", err)
	}

	total, err := s.orderRepo.SumOrderItems(tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute order total: %w", err)
	}

	order.Status = models.OrderStatusActive
	order.StartTime = startTime
	order.EndTime = endTime
	order.IsOpenTime = req.OpenTime
	order.DurationHours = durationHours
	order.TotalAmount = total
	if err = s.orderRepo.UpdateOrder(tx, order); err != nil {
		return nil, fmt.Errorf("failed to update order for reactivation: %w", err)
	}

	room.Status = models.RoomStatusOccupied
	room.CurrentCustomerName = &order.CustomerName
	room.CurrentMode = order.Mode
	room.CurrentSessionStart = &startTime
	room.CurrentSessionEnd = endTime
	if req.OpenTime {
		room.CurrentTotalCost = nil
	} else {
		room.CurrentTotalCost = &blockCost
	}
	if err = s.roomRepo.UpdateRoomSession(tx, room); err != nil {
		return nil, fmt.Errorf("failed to re-occupy room: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit session reactivation: %w", err)
	}
	return s.getOrderWithItems(order.ID)
}

func (s *sessionService) AdjustTime(roomID int64, req AdjustTimeRequest) (*models.Order, error) {
	if req.DeltaHours.IsZero() {
		return nil, fmt.Errorf("%w: delta_hours must be non-zero", ErrValidation)
	}

	room, err := s.roomRepo.GetRoomByID(roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to fetch room for time adjustment: %w", err)
	}
	if room.Status != models.RoomStatusOccupied {
		return nil, fmt.Errorf("%w: room '%s' is %s", ErrRoomNotOccupied, room.Name, room.Status)
	}

	order, err := s.orderRepo.GetOrderByRoomAndStatus(roomID, models.OrderStatusActive)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch session order: %w", err)
	}
	if order.IsOpenTime {
		return nil, ErrOpenTimeAdjustment
	}
	if room.CurrentSessionStart == nil || room.CurrentSessionEnd == nil {
		return nil, ErrSessionOrderNotFound
	}

	newEnd := room.CurrentSessionEnd.Add(hoursToDuration(req.DeltaHours))
	if !newEnd.After(*room.CurrentSessionStart) {
		return nil, ErrEndBeforeStart
	}

	updatedOrder, err := s.applyDurationDelta(order, room, req.DeltaHours, &newEnd)
	if err != nil {
		return nil, err
	}
	return updatedOrder, nil
}

func (s *sessionService) ExtendTime(orderID int64, req AdjustTimeRequest) (*models.Order, error) {
	if req.DeltaHours.IsZero() {
		return nil, fmt.Errorf("%w: delta_hours must be non-zero", ErrValidation)
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for time extension: %w", err)
	}
	if order.Status != models.OrderStatusActive && order.Status != models.OrderStatusPaused {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotAdjustable, orderID, order.Status)
	}
	if order.IsOpenTime {
		return nil, ErrOpenTimeAdjustment
	}
	if order.RoomID == nil || order.EndTime == nil {
		return nil, fmt.Errorf("%w: order %d carries no room time to extend", ErrValidation, orderID)
	}

	newEnd := order.EndTime.Add(hoursToDuration(req.DeltaHours))
	if !newEnd.After(order.StartTime) {
		return nil, ErrEndBeforeStart
	}

	// When the order's room is live, its displayed end-time moves together
	// with the order's. A paused order only moves its own record.
	var room *models.Room
	if order.Status == models.OrderStatusActive {
		room, err = s.roomRepo.GetRoomByID(*order.RoomID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrRoomNotFound
			}
			return nil, fmt.Errorf("failed to fetch room for time extension: %w", err)
		}
		if room.Status != models.RoomStatusOccupied {
			room = nil
		}
	}

	return s.applyDurationDelta(order, room, req.DeltaHours, &newEnd)
}

// applyDurationDelta shifts a fixed-duration order by deltaHours: the latest
// room-time line absorbs the delta, the total is recomputed from items, and
// the room's live end-time follows when a room row is supplied.
func (s *sessionService) applyDurationDelta(order *models.Order, room *models.Room, deltaHours decimal.Decimal, newEnd *time.Time) (*models.Order, error) {
	item, err := s.orderRepo.GetLatestRoomTimeItem(order.ID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("%w: order %d has no room time item", ErrValidation, order.ID)
		}
		return nil, fmt.Errorf("failed to fetch room time item: %w", err)
	}

	newQuantity := item.Quantity.Add(deltaHours)
	if newQuantity.IsNegative() {
		return nil, ErrEndBeforeStart
	}

	mode := models.SessionModeSingle
	if order.Mode != nil {
		mode = *order.Mode
	}
	roomName := ""
	if room != nil {
		roomName = room.Name
	} else if idx := strings.Index(item.ItemName, " - "); idx > 0 {
		roomName = item.ItemName[:idx]
	}

	item.Quantity = newQuantity
	item.TotalPrice = newQuantity.Mul(item.UnitPrice).Round(2)
	item.ItemName = roomTimeItemName(roomName, mode, false, newQuantity)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if err = s.orderRepo.UpdateOrderItem(tx, item); err != nil {
		return nil, fmt.Errorf("failed to update room time item: %w", err)
	}

	total, err := s.orderRepo.SumOrderItems(tx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute order total: %w", err)
	}

	order.TotalAmount = total
	order.EndTime = newEnd
	if order.DurationHours != nil {
		newDuration := order.DurationHours.Add(deltaHours)
		order.DurationHours = &newDuration
	}
	if err = s.orderRepo.UpdateOrder(tx, order); err != nil {
		return nil, fmt.Errorf("failed to update order duration: %w", err)
	}

	if room != nil {
		room.CurrentSessionEnd = newEnd
		room.CurrentTotalCost = &item.TotalPrice
		if err = s.roomRepo.UpdateRoomSession(tx, room); err != nil {
			return nil, fmt.Errorf("failed to update room session end: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit time adjustment: %w", err)
	}
	return s.getOrderWithItems(order.ID)
}

func (s *sessionService) CompletePayment(orderID int64, req CompletePaymentRequest) (*models.Order, error) {
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: invalid payment method '%s'", ErrValidation, req.PaymentMethod)
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for payment: %w", err)
	}
	if order.Status != models.OrderStatusActive && order.Status != models.OrderStatusPaused {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotPayable, orderID, order.Status)
	}
	// A live open-time order has no final total yet; the session must be
	// stopped first, which settles it.
	if order.Status == models.OrderStatusActive && order.IsOpenTime {
		return nil, fmt.Errorf("%w: open time session must be stopped before payment", ErrOrderNotPayable)
	}

	paymentTime := s.now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order.Status = models.OrderStatusCompleted
	if order.EndTime == nil {
		order.EndTime = &paymentTime
	}
	if err = s.orderRepo.UpdateOrder(tx, order); err != nil {
		return nil, fmt.Errorf("failed to complete order: %w", err)
	}

	txn := models.Transaction{
		OrderID:         order.ID,
		TransactionType: models.TransactionTypePayment,
		Amount:          order.TotalAmount,
		PaymentMethod:   req.PaymentMethod,
		Description:     models.NewNullString(fmt.Sprintf("Payment for order %d", order.ID)),
		CreatedAt:       paymentTime,
	}
	if _, err = s.txnRepo.CreateTransaction(tx, &txn); err != nil {
		return nil, fmt.Errorf("failed to record payment transaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit payment: %w", err)
	}
	return s.getOrderWithItems(order.ID)
}

func (s *sessionService) ActiveSessions() ([]ActiveSessionView, error) {
	occupied := models.RoomStatusOccupied
	rooms, err := s.roomRepo.GetRooms(models.RoomFilters{Status: &occupied})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch occupied rooms: %w", err)
	}

	currentTime := s.now()
	views := make([]ActiveSessionView, 0, len(rooms))
	for _, room := range rooms {
		view := ActiveSessionView{Room: room}

		if room.CurrentSessionStart != nil {
			view.ElapsedHours = elapsedHours(*room.CurrentSessionStart, currentTime).Round(4)
		}
		if room.CurrentSessionEnd != nil {
			view.Expired = currentTime.After(*room.CurrentSessionEnd)
		}

		order, orderErr := s.orderRepo.GetOrderByRoomAndStatus(room.ID, models.OrderStatusActive)
		if orderErr != nil {
			if !errors.Is(orderErr, repositories.ErrNotFound) {
				return nil, fmt.Errorf("failed to fetch active order for room %d: %w", room.ID, orderErr)
			}
		} else {
			view.Order = order
			if order.IsOpenTime && room.CurrentSessionStart != nil && room.CurrentMode != nil {
				rate := room.HourlyRate(*room.CurrentMode)
				view.AccruedCost = rate.Mul(elapsedHours(*room.CurrentSessionStart, currentTime)).Round(2)
			} else {
				view.AccruedCost = order.TotalAmount
			}
		}
		views = append(views, view)
	}
	return views, nil
}

// getOrderWithItems fetches an order together with its line items.
func (s *sessionService) getOrderWithItems(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to re-fetch order %d: %w", orderID, err)
	}
	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch items for order %d: %w", orderID, err)
	}
	order.OrderItems = items
	return order, nil
}
