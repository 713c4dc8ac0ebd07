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

type transactionTestEnv struct {
	svc    TransactionService
	orders *fakeOrderRepo
	txns   *fakeTransactionRepo
	mock   sqlmock.Sqlmock
}

func newTransactionEnv(t *testing.T) *transactionTestEnv {
	t.Helper()
	db, mock := newMockDB(t)
	env := &transactionTestEnv{
		orders: newFakeOrderRepo(),
		txns:   newFakeTransactionRepo(),
		mock:   mock,
	}
	env.svc = NewTransactionService(env.txns, env.orders, db)
	return env
}

// paidOrder seeds a completed order with a single cash payment.
func (e *transactionTestEnv) paidOrder(t *testing.T, amount string) *models.Order {
	t.Helper()
	order := &models.Order{
		CustomerName: "Aibek",
		OrderType:    models.OrderTypeCafeOrder,
		TotalAmount:  decimal.RequireFromString(amount),
		Status:       models.OrderStatusCompleted,
		StartTime:    time.Now().Add(-time.Hour),
	}
	_, err := e.orders.CreateOrder(nil, order)
	require.NoError(t, err)
	_, err = e.txns.CreateTransaction(nil, &models.Transaction{
		OrderID:         order.ID,
		TransactionType: models.TransactionTypePayment,
		Amount:          decimal.RequireFromString(amount),
		PaymentMethod:   models.PaymentMethodCash,
	})
	require.NoError(t, err)
	return order
}

func TestRefundOrderRecordsRefundRow(t *testing.T) {
	env := newTransactionEnv(t)
	order := env.paidOrder(t, "67.50")
	expectTx(env.mock)

	refund, err := env.svc.RefundOrder(order.ID, RefundRequest{
		Amount:        decimal.RequireFromString("20.00"),
		PaymentMethod: models.PaymentMethodCash,
		Reason:        "Console controller failed mid-session",
	})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionTypeRefund, refund.TransactionType)
	decEqual(t, "20.00", refund.Amount)
	require.NotNil(t, refund.Description)
	assert.Equal(t, "Console controller failed mid-session", *refund.Description)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRefundOrderCapsAtRemainingBalance(t *testing.T) {
	env := newTransactionEnv(t)
	order := env.paidOrder(t, "50")
	expectTx(env.mock)

	_, err := env.svc.RefundOrder(order.ID, RefundRequest{
		Amount:        decimal.NewFromInt(30),
		PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	// 20 remains after the first refund, so 25 must be refused.
	_, err = env.svc.RefundOrder(order.ID, RefundRequest{
		Amount:        decimal.NewFromInt(25),
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrRefundExceedsPaid)

	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRefundOrderRefusesNonCompletedOrder(t *testing.T) {
	env := newTransactionEnv(t)
	order := &models.Order{
		CustomerName: "Aibek",
		OrderType:    models.OrderTypeRoomReservation,
		TotalAmount:  decimal.NewFromInt(25),
		Status:       models.OrderStatusActive,
		StartTime:    time.Now(),
	}
	_, err := env.orders.CreateOrder(nil, order)
	require.NoError(t, err)

	_, err = env.svc.RefundOrder(order.ID, RefundRequest{
		Amount:        decimal.NewFromInt(10),
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrOrderNotRefundable)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestRefundOrderRequiresPositiveAmount(t *testing.T) {
	env := newTransactionEnv(t)
	order := env.paidOrder(t, "50")

	_, err := env.svc.RefundOrder(order.ID, RefundRequest{
		Amount:        decimal.NewFromInt(-5),
		PaymentMethod: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, ErrValidation)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}

func TestGetTransactionsByOrderIDUnknownOrder(t *testing.T) {
	env := newTransactionEnv(t)

	_, err := env.svc.GetTransactionsByOrderID(42)
	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.NoError(t, env.mock.ExpectationsWereMet())
}
