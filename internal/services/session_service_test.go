package services

import (
	"testing"
	"time"

	"gamezone_pos_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sessionTestEnv struct {
	svc    *sessionService
	rooms  *fakeRoomRepo
	orders *fakeOrderRepo
	txns   *fakeTransactionRepo
	mock   sqlmock.Sqlmock
	clock  time.Time
}

func newSessionEnv(t *testing.T) *sessionTestEnv {
	t.Helper()
	db, mock := newMockDB(t)
	env := &sessionTestEnv{
		rooms:  newFakeRoomRepo(),
		orders: newFakeOrderRepo(),
		txns:   newFakeTransactionRepo(),
		mock:   mock,
		clock:  time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC),
	}
	env.svc = &sessionService{
		roomRepo:  env.rooms,
		orderRepo: env.orders,
		txnRepo:   env.txns,
		db:        db,
		now:       func() time.Time { return env.clock },
	}
	return env
}

func (e *sessionTestEnv) advance(d time.Duration) {
	e.clock = e.clock.Add(d)
}

func (e *sessionTestEnv) addAvailableRoom(id int64, name string, singleRate int64) *models.Room {
	return e.rooms.addRoom(models.Room{
		ID:                 id,
		Name:               name,
		ConsoleType:        models.ConsoleTypePS5,
		Status:             models.RoomStatusAvailable,
		PricingSingle:      decimal.NewFromInt(singleRate),
		PricingMultiplayer: decimal.NewFromInt(singleRate * 2),
	})
}

func decEqual(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, actual.Equal(decimal.RequireFromString(expected)),
		"expected %s, got %s", expected, actual)
}

func fixedDuration(hours string) *decimal.Decimal {
	d := decimal.RequireFromString(hours)
	return &d
}

func TestStartSessionFixedDuration(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)

	order, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName:  "Aibek",
		Mode:          models.SessionModeSingle,
		DurationHours: fixedDuration("1"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusActive, order.Status)
	assert.Equal(t, models.OrderTypeRoomReservation, order.OrderType)
	assert.False(t, order.IsOpenTime)
	decEqual(t, "25", order.TotalAmount)
	require.NotNil(t, order.EndTime)
	assert.Equal(t, env.clock.Add(time.Hour), *order.EndTime)

	require.Len(t, order.OrderItems, 1)
	item := order.OrderItems[0]
	assert.Equal(t, models.ItemTypeRoomTime, item.ItemType)
	decEqual(t, "1", item.Quantity)
	decEqual(t, "25", item.UnitPrice)
	decEqual(t, "25", item.TotalPrice)

	room, err := env.rooms.GetRoomByID(1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, room.Status)
	require.NotNil(t, room.CurrentTotalCost)
	decEqual(t, "25", *room.CurrentTotalCost)
	require.NotNil(t, room.CurrentSessionEnd)
	assert.Equal(t, env.clock.Add(time.Hour), *room.CurrentSessionEnd)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestStartSessionOpenTimeHasNoFixedCost(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)

	order, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName: "Dana",
		Mode:         models.SessionModeSingle,
		OpenTime:     true,
	})
	require.NoError(t, err)

	assert.True(t, order.IsOpenTime)
	assert.Nil(t, order.EndTime)
	decEqual(t, "0", order.TotalAmount)
	require.Len(t, order.OrderItems, 1)
	decEqual(t, "0", order.OrderItems[0].Quantity)

	room, err := env.rooms.GetRoomByID(1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, room.Status)
	assert.Nil(t, room.CurrentTotalCost)
	assert.Nil(t, room.CurrentSessionEnd)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestStartSessionRefusesNonAvailableRoom(t *testing.T) {
	env := newSessionEnv(t)
	room := env.addAvailableRoom(1, "Room 1", 25)
	room.Status = models.RoomStatusCleaning

	_, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName:  "Aibek",
		Mode:          models.SessionModeSingle,
		DurationHours: fixedDuration("1"),
	})
	assert.ErrorIs(t, err, ErrRoomNotAvailable)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestStartSessionRequiresPositiveDuration(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)

	_, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName: "Aibek",
		Mode:         models.SessionModeSingle,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

// An open-time session billed for its elapsed time plus attached cafe items:
// 90 minutes at 25/hour is 37.50, plus a 30.00 cafe line, settles at 67.50.
func TestStopSessionOpenTimeSettlesElapsedPlusCafe(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock) // start
	expectTx(env.mock) // stop

	started, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName: "Dana",
		Mode:         models.SessionModeSingle,
		OpenTime:     true,
	})
	require.NoError(t, err)

	_, err = env.orders.CreateOrderItem(nil, &models.OrderItem{
		OrderID:    started.ID,
		ItemType:   models.ItemTypeCafeProduct,
		ItemName:   "Cola",
		Quantity:   decimal.NewFromInt(2),
		UnitPrice:  decimal.NewFromInt(15),
		TotalPrice: decimal.NewFromInt(30),
	})
	require.NoError(t, err)

	env.advance(90 * time.Minute)

	order, err := env.svc.StopSession(1, StopSessionRequest{})
	require.NoError(t, err)

	// Open-time stops always settle the order.
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	decEqual(t, "67.50", order.TotalAmount)

	require.Len(t, order.OrderItems, 2)
	roomLine := order.OrderItems[0]
	assert.Equal(t, models.ItemTypeRoomTime, roomLine.ItemType)
	decEqual(t, "1.5", roomLine.Quantity)
	decEqual(t, "37.50", roomLine.TotalPrice)

	room, err := env.rooms.GetRoomByID(1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)
	require.NotNil(t, room.CurrentTotalCost)
	decEqual(t, "37.50", *room.CurrentTotalCost) // room time only, cafe settles via the order

	require.Len(t, env.txns.transactions, 1)
	payment := env.txns.transactions[0]
	assert.Equal(t, models.TransactionTypePayment, payment.TransactionType)
	assert.Equal(t, models.PaymentMethodCash, payment.PaymentMethod)
	decEqual(t, "67.50", payment.Amount)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

// A fixed-duration session is priced by its booked duration, not the wall
// clock: adjusting +0.5h reprices to 37.50, and a plain stop pauses the
// order with that total untouched.
func TestStopSessionFixedDurationPausesWithoutRepricing(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock) // start
	expectTx(env.mock) // adjust
	expectTx(env.mock) // stop

	_, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName:  "Aibek",
		Mode:          models.SessionModeSingle,
		DurationHours: fixedDuration("1"),
	})
	require.NoError(t, err)

	adjusted, err := env.svc.AdjustTime(1, AdjustTimeRequest{
		DeltaHours: decimal.RequireFromString("0.5"),
	})
	require.NoError(t, err)
	decEqual(t, "37.50", adjusted.TotalAmount)
	require.NotNil(t, adjusted.DurationHours)
	decEqual(t, "1.5", *adjusted.DurationHours)
	require.Len(t, adjusted.OrderItems, 1)
	decEqual(t, "1.5", adjusted.OrderItems[0].Quantity)

	// Stopping two hours in changes nothing about the booked price.
	env.advance(2 * time.Hour)
	order, err := env.svc.StopSession(1, StopSessionRequest{})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPaused, order.Status)
	decEqual(t, "37.50", order.TotalAmount)
	assert.Empty(t, env.txns.transactions)

	room, err := env.rooms.GetRoomByID(1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)
	require.NotNil(t, room.CurrentTotalCost)
	decEqual(t, "37.50", *room.CurrentTotalCost)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestStopSessionForceCompleteRecordsPayment(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)
	expectTx(env.mock)

	_, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName:  "Aibek",
		Mode:          models.SessionModeSingle,
		DurationHours: fixedDuration("1"),
	})
	require.NoError(t, err)

	order, err := env.svc.StopSession(1, StopSessionRequest{
		ForceComplete: true,
		PaymentMethod: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	require.Len(t, env.txns.transactions, 1)
	assert.Equal(t, models.PaymentMethodCard, env.txns.transactions[0].PaymentMethod)
	decEqual(t, "25", env.txns.transactions[0].Amount)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestAdjustTimeRefusesOpenTime(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)

	_, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName: "Dana",
		Mode:         models.SessionModeSingle,
		OpenTime:     true,
	})
	require.NoError(t, err)

	_, err = env.svc.AdjustTime(1, AdjustTimeRequest{DeltaHours: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, ErrOpenTimeAdjustment)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestAdjustTimeRefusesEndBeforeStart(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)

	_, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName:  "Aibek",
		Mode:          models.SessionModeSingle,
		DurationHours: fixedDuration("1"),
	})
	require.NoError(t, err)

	_, err = env.svc.AdjustTime(1, AdjustTimeRequest{DeltaHours: decimal.NewFromInt(-2)})
	assert.ErrorIs(t, err, ErrEndBeforeStart)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

// pausedRoomOrder seeds a paused session order with one priced room-time line.
func (e *sessionTestEnv) pausedRoomOrder(t *testing.T, roomID int64) *models.Order {
	t.Helper()
	mode := models.SessionModeSingle
	order := &models.Order{
		CustomerName: "Aibek",
		OrderType:    models.OrderTypeRoomReservation,
		RoomID:       &roomID,
		TotalAmount:  decimal.RequireFromString("37.50"),
		Status:       models.OrderStatusPaused,
		StartTime:    e.clock.Add(-3 * time.Hour),
		Mode:         &mode,
	}
	_, err := e.orders.CreateOrder(nil, order)
	require.NoError(t, err)
	_, err = e.orders.CreateOrderItem(nil, &models.OrderItem{
		OrderID:    order.ID,
		ItemType:   models.ItemTypeRoomTime,
		ItemName:   "Room 1 - single - 1.5h",
		Quantity:   decimal.RequireFromString("1.5"),
		UnitPrice:  decimal.NewFromInt(25),
		TotalPrice: decimal.RequireFromString("37.50"),
	})
	require.NoError(t, err)
	return order
}

func TestReactivateSessionAppendsNewRoomTimeLine(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	order := env.pausedRoomOrder(t, 1)
	expectTx(env.mock)

	reactivated, err := env.svc.ReactivateSession(order.ID, ReactivateSessionRequest{
		DurationHours: fixedDuration("1"),
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusActive, reactivated.Status)
	decEqual(t, "62.50", reactivated.TotalAmount) // 37.50 paused balance + 25.00 new block
	require.Len(t, reactivated.OrderItems, 2)
	decEqual(t, "25", reactivated.OrderItems[1].TotalPrice)

	room, err := env.rooms.GetRoomByID(1)
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, room.Status)
	require.NotNil(t, room.CurrentTotalCost)
	decEqual(t, "25", *room.CurrentTotalCost)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

// Reactivating into a room someone else occupies must leave everything as it
// was: paused order, no new lines, no writes.
func TestReactivateSessionRefusesOccupiedRoom(t *testing.T) {
	env := newSessionEnv(t)
	room := env.addAvailableRoom(1, "Room 1", 25)
	order := env.pausedRoomOrder(t, 1)
	room.Status = models.RoomStatusOccupied

	_, err := env.svc.ReactivateSession(order.ID, ReactivateSessionRequest{
		DurationHours: fixedDuration("1"),
	})
	assert.ErrorIs(t, err, ErrRoomNotAvailable)

	stored, err := env.orders.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPaused, stored.Status)
	decEqual(t, "37.50", stored.TotalAmount)
	items, err := env.orders.GetOrderItemsByOrderID(order.ID)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCompletePaymentSettlesPausedOrder(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	order := env.pausedRoomOrder(t, 1)
	expectTx(env.mock)

	completed, err := env.svc.CompletePayment(order.ID, CompletePaymentRequest{
		PaymentMethod: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusCompleted, completed.Status)
	require.Len(t, env.txns.transactions, 1)
	assert.Equal(t, models.PaymentMethodCard, env.txns.transactions[0].PaymentMethod)
	decEqual(t, "37.50", env.txns.transactions[0].Amount)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCompletePaymentRefusesLiveOpenTime(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)

	order, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName: "Dana",
		Mode:         models.SessionModeSingle,
		OpenTime:     true,
	})
	require.NoError(t, err)

	_, err = env.svc.CompletePayment(order.ID, CompletePaymentRequest{
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrOrderNotPayable)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestActiveSessionsAccruesOpenTimeCost(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)

	_, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName: "Dana",
		Mode:         models.SessionModeSingle,
		OpenTime:     true,
	})
	require.NoError(t, err)

	env.advance(40 * time.Minute)

	views, err := env.svc.ActiveSessions()
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	assert.Equal(t, models.RoomStatusOccupied, view.Room.Status)
	require.NotNil(t, view.Order)
	decEqual(t, "0.6667", view.ElapsedHours)
	decEqual(t, "16.67", view.AccruedCost)
	assert.False(t, view.Expired)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestActiveSessionsFlagsExpiredFixedSession(t *testing.T) {
	env := newSessionEnv(t)
	env.addAvailableRoom(1, "Room 1", 25)
	expectTx(env.mock)

	order, err := env.svc.StartSession(1, StartSessionRequest{
		CustomerName:  "Aibek",
		Mode:          models.SessionModeSingle,
		DurationHours: fixedDuration("1"),
	})
	require.NoError(t, err)

	env.advance(90 * time.Minute)

	views, err := env.svc.ActiveSessions()
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.True(t, views[0].Expired)
	decEqual(t, "25", views[0].AccruedCost) // fixed sessions show the booked total
	assert.Equal(t, order.ID, views[0].Order.ID)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}
