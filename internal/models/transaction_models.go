package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction types.
const (
	TransactionTypePayment = "payment"
	TransactionTypeRefund  = "refund"
)

// Payment methods.
const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

// IsValidPaymentMethod checks if the provided payment method is valid.
func IsValidPaymentMethod(method string) bool {
	switch method {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer:
		return true
	default:
		return false
	}
}

// Transaction is an immutable record of money movement for an order.
// Rows are only ever inserted, never updated; a refund is a new row.
type Transaction struct {
	ID              int64           `json:"id" db:"id"`
	OrderID         int64           `json:"order_id" db:"order_id"`
	TransactionType string          `json:"transaction_type" db:"transaction_type"`
	Amount          decimal.Decimal `json:"amount" db:"amount"`
	PaymentMethod   string          `json:"payment_method" db:"payment_method"`
	Description     *string         `json:"description,omitempty" db:"description"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	Order           *Order          `json:"order,omitempty"`
}

// TransactionFilters defines the available filters for querying transactions.
type TransactionFilters struct {
	OrderID  *int64     `form:"order_id"`
	Type     *string    `form:"type"`
	DateFrom *time.Time `form:"date_from"`
	DateTo   *time.Time `form:"date_to"`
	Page     int        `form:"page"`
	PageSize int        `form:"page_size"`
}
