package services

import (
	"database/sql"
	"errors"
	"fmt"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Transactions ---
var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrRefundExceedsPaid   = errors.New("refund amount exceeds the remaining paid balance")
	ErrOrderNotRefundable  = errors.New("only completed orders can be refunded")
)

// --- Transaction DTOs ---

type RefundRequest struct {
	Amount        decimal.Decimal `json:"amount" binding:"required"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
	Reason        string          `json:"reason"`
}

// --- TransactionService Interface ---
type TransactionService interface {
	GetTransactionByID(id int64) (*models.Transaction, error)
	GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error)
	GetTransactionsByOrderID(orderID int64) ([]models.Transaction, error)
	// RefundOrder records a refund row against a completed order. The
	// original payment rows are never touched.
	RefundOrder(orderID int64, req RefundRequest) (*models.Transaction, error)
}

// --- transactionService Implementation ---
type transactionService struct {
	txnRepo   repositories.TransactionRepository
	orderRepo repositories.OrderRepository
	db        *sql.DB
}

// NewTransactionService creates a new instance of TransactionService.
func NewTransactionService(tr repositories.TransactionRepository, or repositories.OrderRepository, db *sql.DB) TransactionService {
	return &transactionService{txnRepo: tr, orderRepo: or, db: db}
}

func (s *transactionService) GetTransactionByID(id int64) (*models.Transaction, error) {
	txn, err := s.txnRepo.GetTransactionByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction by ID: %w", err)
	}
	return txn, nil
}

func (s *transactionService) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	txns, total, err := s.txnRepo.GetTransactions(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get transactions: %w", err)
	}
	return txns, total, nil
}

func (s *transactionService) GetTransactionsByOrderID(orderID int64) ([]models.Transaction, error) {
	if _, err := s.orderRepo.GetOrderByID(orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}
	txns, err := s.txnRepo.GetTransactionsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for order: %w", err)
	}
	return txns, nil
}

func (s *transactionService) RefundOrder(orderID int64, req RefundRequest) (*models.Transaction, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: refund amount must be positive", ErrValidation)
	}
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: invalid payment method '%s'", ErrValidation, req.PaymentMethod)
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order for refund: %w", err)
	}
	if order.Status != models.OrderStatusCompleted {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotRefundable, orderID, order.Status)
	}

	existing, err := s.txnRepo.GetTransactionsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction history: %w", err)
	}
	balance := decimal.Zero
	for _, t := range existing {
		switch t.TransactionType {
		case models.TransactionTypePayment:
			balance = balance.Add(t.Amount)
		case models.TransactionTypeRefund:
			balance = balance.Sub(t.Amount)
		}
	}
	if req.Amount.GreaterThan(balance) {
		return nil, fmt.Errorf("%w: %s remaining, %s requested", ErrRefundExceedsPaid, balance.StringFixed(2), req.Amount.StringFixed(2))
	}

	refund := &models.Transaction{
		OrderID:         orderID,
		TransactionType: models.TransactionTypeRefund,
		Amount:          req.Amount.Round(2),
		PaymentMethod:   req.PaymentMethod,
	}
	if req.Reason != "" {
		refund.Description = models.NewNullString(req.Reason)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction for refund: %w", err)
	}
	defer tx.Rollback()

	refundID, err := s.txnRepo.CreateTransaction(tx, refund)
	if err != nil {
		return nil, fmt.Errorf("failed to record refund: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit refund: %w", err)
	}

	return s.txnRepo.GetTransactionByID(refundID)
}
