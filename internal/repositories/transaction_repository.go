package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamezone_pos_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
)

// TransactionRepository defines the interface for payment transaction
// database operations. Transactions are append-only: there is no update.
type TransactionRepository interface {
	CreateTransaction(executor SQLExecutor, transaction *models.Transaction) (int64, error)
	GetTransactionByID(id int64) (*models.Transaction, error)
	GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error)
	GetTransactionsByOrderID(orderID int64) ([]models.Transaction, error)
}

type transactionRepository struct {
	db *sql.DB
}

// NewTransactionRepository creates a new instance of TransactionRepository.
func NewTransactionRepository(db *sql.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

const selectTransactionFields = `
	id, order_id, transaction_type, amount, payment_method, description, created_at
`

func scanTransactionRow(row scanner, extraDest ...interface{}) (*models.Transaction, error) {
	var txn models.Transaction
	var description sql.NullString

	dest := []interface{}{
		&txn.ID, &txn.OrderID, &txn.TransactionType, &txn.Amount,
		&txn.PaymentMethod, &description, &txn.CreatedAt,
	}
	dest = append(dest, extraDest...)

	err := row.Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning transaction: %v", ErrDatabaseError, err)
	}

	if description.Valid {
		txn.Description = &description.String
	}
	return &txn, nil
}

func (r *transactionRepository) CreateTransaction(executor SQLExecutor, transaction *models.Transaction) (int64, error) {
	query := `INSERT INTO transactions
	            (order_id, transaction_type, amount, payment_method, description, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          RETURNING id`
	if transaction.CreatedAt.IsZero() {
		transaction.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		transaction.OrderID, transaction.TransactionType, transaction.Amount,
		transaction.PaymentMethod, transaction.Description, transaction.CreatedAt,
	).Scan(&transaction.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating transaction (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating transaction: %v", ErrDatabaseError, err)
	}
	return transaction.ID, nil
}

func (r *transactionRepository) GetTransactionByID(id int64) (*models.Transaction, error) {
	query := "SELECT " + selectTransactionFields + " FROM transactions WHERE id = $1"
	return scanTransactionRow(r.db.QueryRow(query, id))
}

func (r *transactionRepository) GetTransactions(filters models.TransactionFilters) ([]models.Transaction, int, error) {
	transactions := []models.Transaction{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectTransactionFields + ", COUNT(*) OVER() as total_count FROM transactions")

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.OrderID != nil {
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", argCount))
		args = append(args, *filters.OrderID)
		argCount++
	}
	if filters.Type != nil && *filters.Type != "" {
		conditions = append(conditions, fmt.Sprintf("transaction_type = $%d", argCount))
		args = append(args, *filters.Type)
		argCount++
	}
	if filters.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("created_at >= $%d", argCount))
		args = append(args, *filters.DateFrom)
		argCount++
	}
	if filters.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("created_at <= $%d", argCount))
		args = append(args, *filters.DateTo)
		argCount++
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCount))
		args = append(args, filters.PageSize)
		argCount++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCount))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying transactions: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		txn, scanErr := scanTransactionRow(rows, &totalCount)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		transactions = append(transactions, *txn)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating transaction rows: %v", ErrDatabaseError, err)
	}
	return transactions, totalCount, nil
}

func (r *transactionRepository) GetTransactionsByOrderID(orderID int64) ([]models.Transaction, error) {
	transactions := []models.Transaction{}
	query := "SELECT " + selectTransactionFields + " FROM transactions WHERE order_id = $1 ORDER BY created_at"

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying transactions for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		txn, scanErr := scanTransactionRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		transactions = append(transactions, *txn)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating transaction rows: %v", ErrDatabaseError, err)
	}
	return transactions, nil
}
