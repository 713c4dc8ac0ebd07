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

type orderTestEnv struct {
	svc    OrderService
	orders *fakeOrderRepo
	cafe   *fakeCafeProductRepo
	txns   *fakeTransactionRepo
	mock   sqlmock.Sqlmock
}

func newOrderEnv(t *testing.T) *orderTestEnv {
	t.Helper()
	db, mock := newMockDB(t)
	env := &orderTestEnv{
		orders: newFakeOrderRepo(),
		cafe:   newFakeCafeProductRepo(),
		txns:   newFakeTransactionRepo(),
		mock:   mock,
	}
	env.svc = NewOrderService(env.orders, env.cafe, env.txns, db)
	return env
}

func (e *orderTestEnv) addProduct(id int64, name string, price string, active bool) *models.CafeProduct {
	return e.cafe.addProduct(models.CafeProduct{
		ID:       id,
		Name:     name,
		Category: models.CafeCategorySnacks,
		Price:    decimal.RequireFromString(price),
		Stock:    50,
		Active:   active,
	})
}

func TestCreateCafeOrderSettlesImmediately(t *testing.T) {
	env := newOrderEnv(t)
	env.addProduct(1, "Cola", "4.50", true)
	env.addProduct(2, "Nachos", "12.00", true)
	expectTx(env.mock)

	order, err := env.svc.CreateCafeOrder(CreateCafeOrderRequest{
		CustomerName:  "Walk-in",
		PaymentMethod: models.PaymentMethodCash,
		Selections: []CafeSelection{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderTypeCafeOrder, order.OrderType)
	assert.Equal(t, models.OrderStatusCompleted, order.Status)
	decEqual(t, "21", order.TotalAmount) // 2x4.50 + 12.00
	require.NotNil(t, order.EndTime)
	assert.Equal(t, order.StartTime, *order.EndTime)

	require.Len(t, order.OrderItems, 2)
	assert.Equal(t, models.ItemTypeCafeProduct, order.OrderItems[0].ItemType)
	decEqual(t, "9", order.OrderItems[0].TotalPrice)

	require.Len(t, env.txns.transactions, 1)
	payment := env.txns.transactions[0]
	assert.Equal(t, models.TransactionTypePayment, payment.TransactionType)
	decEqual(t, "21", payment.Amount)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateCafeOrderRefusesDisabledProduct(t *testing.T) {
	env := newOrderEnv(t)
	env.addProduct(1, "Old stock", "4.50", false)

	_, err := env.svc.CreateCafeOrder(CreateCafeOrderRequest{
		CustomerName:  "Walk-in",
		PaymentMethod: models.PaymentMethodCash,
		Selections:    []CafeSelection{{ProductID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrCafeProductNotFound)
	assert.Empty(t, env.txns.transactions)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCreateCafeOrderRequiresSelections(t *testing.T) {
	env := newOrderEnv(t)

	_, err := env.svc.CreateCafeOrder(CreateCafeOrderRequest{
		CustomerName:  "Walk-in",
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

// roomOrder seeds an order carrying a priced room-time line.
func (e *orderTestEnv) roomOrder(t *testing.T, status string) *models.Order {
	t.Helper()
	roomID := int64(1)
	mode := models.SessionModeSingle
	order := &models.Order{
		CustomerName: "Aibek",
		OrderType:    models.OrderTypeRoomReservation,
		RoomID:       &roomID,
		TotalAmount:  decimal.NewFromInt(25),
		Status:       status,
		StartTime:    time.Now().Add(-time.Hour),
		Mode:         &mode,
	}
	_, err := e.orders.CreateOrder(nil, order)
	require.NoError(t, err)
	_, err = e.orders.CreateOrderItem(nil, &models.OrderItem{
		OrderID:    order.ID,
		ItemType:   models.ItemTypeRoomTime,
		ItemName:   "Room 1 - single - 1h",
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.NewFromInt(25),
		TotalPrice: decimal.NewFromInt(25),
	})
	require.NoError(t, err)
	return order
}

func TestAttachCafeItemsPromotesRoomOrderToCombo(t *testing.T) {
	env := newOrderEnv(t)
	env.addProduct(1, "Cola", "4.50", true)
	order := env.roomOrder(t, models.OrderStatusActive)
	expectTx(env.mock)

	updated, err := env.svc.AttachCafeItems(order.ID, AttachItemsRequest{
		Selections: []CafeSelection{{ProductID: 1, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderTypeCombo, updated.OrderType)
	decEqual(t, "34", updated.TotalAmount) // 25.00 room + 9.00 cafe
	require.Len(t, updated.OrderItems, 2)
	assert.Equal(t, models.ItemTypeCafeProduct, updated.OrderItems[1].ItemType)

	// Attachment settles with the session, never on its own.
	assert.Empty(t, env.txns.transactions)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestAttachCafeItemsRefusesCompletedOrder(t *testing.T) {
	env := newOrderEnv(t)
	env.addProduct(1, "Cola", "4.50", true)
	order := env.roomOrder(t, models.OrderStatusCompleted)

	_, err := env.svc.AttachCafeItems(order.ID, AttachItemsRequest{
		Selections: []CafeSelection{{ProductID: 1, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrOrderNotEditable)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRecalculateTotalMatchesItemSum(t *testing.T) {
	env := newOrderEnv(t)
	order := env.roomOrder(t, models.OrderStatusActive)

	// Drift the stored total away from its items.
	require.NoError(t, env.orders.UpdateOrderTotal(nil, order.ID, decimal.NewFromInt(99)))

	fixed, err := env.svc.RecalculateTotal(order.ID)
	require.NoError(t, err)
	decEqual(t, "25", fixed.TotalAmount)

	// A second pass finds nothing to change.
	again, err := env.svc.RecalculateTotal(order.ID)
	require.NoError(t, err)
	decEqual(t, "25", again.TotalAmount)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCancelOrderRefusesLiveRoomSession(t *testing.T) {
	env := newOrderEnv(t)
	order := env.roomOrder(t, models.OrderStatusActive)

	_, err := env.svc.CancelOrder(order.ID)
	assert.ErrorIs(t, err, ErrOrderNotEditable)

	stored, err := env.orders.GetOrderByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusActive, stored.Status)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestCancelOrderCancelsPausedOrder(t *testing.T) {
	env := newOrderEnv(t)
	order := env.roomOrder(t, models.OrderStatusPaused)

	cancelled, err := env.svc.CancelOrder(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, cancelled.Status)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteOrderRemovesItemsToo(t *testing.T) {
	env := newOrderEnv(t)
	order := env.roomOrder(t, models.OrderStatusCancelled)
	expectTx(env.mock)

	require.NoError(t, env.svc.DeleteOrder(order.ID))

	_, err := env.orders.GetOrderByID(order.ID)
	assert.Error(t, err)
	items, err := env.orders.GetOrderItemsByOrderID(order.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestDeleteOrderNotFound(t *testing.T) {
	env := newOrderEnv(t)
	assert.ErrorIs(t, env.svc.DeleteOrder(42), ErrOrderNotFound)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
