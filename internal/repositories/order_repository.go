package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamezone_pos_backend/internal/models"

	"github.com/lib/pq" // For pq.Error
	"github.com/shopspring/decimal"
)

// OrderRepository defines the interface for order-related database operations.
type OrderRepository interface {
	// Order methods
	CreateOrder(executor SQLExecutor, order *models.Order) (int64, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error) // orders, total count, error
	// GetOrderByRoomAndStatus returns the single order in the given status for
	// a room, or ErrNotFound. The session engine relies on there being at most
	// one active order per occupied room.
	GetOrderByRoomAndStatus(roomID int64, status string) (*models.Order, error)
	UpdateOrder(executor SQLExecutor, order *models.Order) error
	UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error
	UpdateOrderTotal(executor SQLExecutor, orderID int64, total decimal.Decimal) error
	DeleteOrder(executor SQLExecutor, orderID int64) (int64, error)

	// OrderItem methods
	CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error)
	GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error)
	// GetLatestRoomTimeItem returns the most recent room_time line of an
	// order; the session engine mutates it in place for open-time
	// finalization and duration adjustments.
	GetLatestRoomTimeItem(orderID int64) (*models.OrderItem, error)
	UpdateOrderItem(executor SQLExecutor, item *models.OrderItem) error
	// SumOrderItems recomputes the order total from its items in the store,
	// so mid-transaction callers never trust an incrementally tracked figure.
	SumOrderItems(executor SQLExecutor, orderID int64) (decimal.Decimal, error)
	DeleteOrderItemsByOrderID(executor SQLExecutor, orderID int64) (int64, error)
}

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a new instance of OrderRepository.
func NewOrderRepository(db *sql.DB) OrderRepository {
	return &orderRepository{db: db}
}

// --- Order Methods ---

const selectOrderFields = `
	id, customer_name, order_type, room_id, total_amount, status,
	start_time, end_time, mode, is_open_time, duration_hours, created_at, updated_at
`

func scanOrderRow(row scanner, extraDest ...interface{}) (*models.Order, error) {
	var order models.Order
	var roomID sql.NullInt64
	var endTime sql.NullTime
	var mode sql.NullString
	var durationHours decimal.NullDecimal

	dest := []interface{}{
		&order.ID, &order.CustomerName, &order.OrderType, &roomID,
		&order.TotalAmount, &order.Status, &order.StartTime, &endTime,
		&mode, &order.IsOpenTime, &durationHours,
		&order.CreatedAt, &order.UpdatedAt,
	}
	dest = append(dest, extraDest...)

	err := row.Scan(dest...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning order: %v", ErrDatabaseError, err)
	}

	if roomID.Valid {
		order.RoomID = &roomID.Int64
	}
	if endTime.Valid {
		t := endTime.Time
		order.EndTime = &t
	}
	if mode.Valid {
		order.Mode = &mode.String
	}
	if durationHours.Valid {
		order.DurationHours = &durationHours.Decimal
	}
	return &order, nil
}

func (r *orderRepository) CreateOrder(executor SQLExecutor, order *models.Order) (int64, error) {
	query := `INSERT INTO orders
	            (customer_name, order_type, room_id, total_amount, status,
	             start_time, end_time, mode, is_open_time, duration_hours,
	             created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	          RETURNING id`

	if order.StartTime.IsZero() {
		order.StartTime = time.Now()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now()
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = time.Now()
	}

	var durationHours decimal.NullDecimal
	if order.DurationHours != nil {
		durationHours = decimal.NullDecimal{Decimal: *order.DurationHours, Valid: true}
	}

	err := executor.QueryRow(query,
		order.CustomerName, order.OrderType, order.RoomID, order.TotalAmount, order.Status,
		order.StartTime, order.EndTime, order.Mode, order.IsOpenTime, durationHours,
		order.CreatedAt, order.UpdatedAt,
	).Scan(&order.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order: %v", ErrDatabaseError, err)
	}
	return order.ID, nil
}

func (r *orderRepository) GetOrderByID(orderID int64) (*models.Order, error) {
	query := "SELECT " + selectOrderFields + " FROM orders WHERE id = $1"
	order, err := scanOrderRow(r.db.QueryRow(query, orderID))
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetOrderByRoomAndStatus(roomID int64, status string) (*models.Order, error) {
	query := "SELECT " + selectOrderFields + ` FROM orders
	          WHERE room_id = $1 AND status = $2
	          ORDER BY start_time DESC
	          LIMIT 1`
	return scanOrderRow(r.db.QueryRow(query, roomID, status))
}

func (r *orderRepository) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	orders := []models.Order{}
	totalCount := 0

	var queryBuilder strings.Builder
	queryBuilder.WriteString(`
        SELECT
            o.id, o.customer_name, o.order_type, o.room_id, o.total_amount, o.status,
            o.start_time, o.end_time, o.mode, o.is_open_time, o.duration_hours,
            o.created_at, o.updated_at,
            rm.name as room_name,
            COUNT(*) OVER() as total_count
        FROM orders o
        LEFT JOIN rooms rm ON o.room_id = rm.id
    `)

	var conditions []string
	var args []interface{}
	argCounter := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("o.status = $%d", argCounter))
		args = append(args, *filters.Status)
		argCounter++
	}
	if filters.RoomID != nil {
		conditions = append(conditions, fmt.Sprintf("o.room_id = $%d", argCounter))
		args = append(args, *filters.RoomID)
		argCounter++
	}
	if filters.Date != nil && *filters.Date != "" {
		parsedDate, err := time.Parse("2006-01-02", *filters.Date)
		if err == nil {
			startOfDay := time.Date(parsedDate.Year(), parsedDate.Month(), parsedDate.Day(), 0, 0, 0, 0, parsedDate.Location())
			endOfDay := startOfDay.AddDate(0, 0, 1).Add(-time.Nanosecond)
			conditions = append(conditions, fmt.Sprintf("o.start_time BETWEEN $%d AND $%d", argCounter, argCounter+1))
			args = append(args, startOfDay, endOfDay)
			argCounter += 2
		}
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY o.start_time DESC")

	if filters.PageSize > 0 {
		queryBuilder.WriteString(fmt.Sprintf(" LIMIT $%d", argCounter))
		args = append(args, filters.PageSize)
		argCounter++
		if filters.Page > 0 {
			offset := (filters.Page - 1) * filters.PageSize
			queryBuilder.WriteString(fmt.Sprintf(" OFFSET $%d", argCounter))
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying orders: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		var roomName sql.NullString
		order, scanErr := scanOrderRow(rows, &roomName, &totalCount)
		if scanErr != nil {
			return nil, 0, scanErr
		}
		if order.RoomID != nil && roomName.Valid {
			order.Room = &models.Room{ID: *order.RoomID, Name: roomName.String}
		}
		orders = append(orders, *order)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating order rows: %v", ErrDatabaseError, err)
	}
	return orders, totalCount, nil
}

func (r *orderRepository) UpdateOrder(executor SQLExecutor, order *models.Order) error {
	query := `UPDATE orders SET
	            customer_name = $1, order_type = $2, room_id = $3, total_amount = $4,
	            status = $5, start_time = $6, end_time = $7, mode = $8,
	            is_open_time = $9, duration_hours = $10, updated_at = $11
	          WHERE id = $12`

	var durationHours decimal.NullDecimal
	if order.DurationHours != nil {
		durationHours = decimal.NullDecimal{Decimal: *order.DurationHours, Valid: true}
	}
	order.UpdatedAt = time.Now()

	result, err := executor.Exec(query,
		order.CustomerName, order.OrderType, order.RoomID, order.TotalAmount,
		order.Status, order.StartTime, order.EndTime, order.Mode,
		order.IsOpenTime, durationHours, order.UpdatedAt, order.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating order ID %d: %v", ErrDatabaseError, order.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateOrderStatus(executor SQLExecutor, orderID int64, newStatus string, updatedAt time.Time) error {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, newStatus, updatedAt, orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order status for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: getting rows affected for order status update ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) UpdateOrderTotal(executor SQLExecutor, orderID int64, total decimal.Decimal) error {
	query := `UPDATE orders SET total_amount = $1, updated_at = $2 WHERE id = $3`
	result, err := executor.Exec(query, total, time.Now(), orderID)
	if err != nil {
		return fmt.Errorf("%w: updating order total for ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) DeleteOrder(executor SQLExecutor, orderID int64) (int64, error) {
	query := `DELETE FROM orders WHERE id = $1`
	result, err := executor.Exec(query, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	if rowsAffected == 0 {
		return 0, ErrNotFound
	}
	return rowsAffected, nil
}

// --- OrderItem Methods ---

const selectOrderItemFields = `
	id, order_id, item_type, item_name, quantity, unit_price, total_price, created_at
`

func scanOrderItemRow(row scanner) (*models.OrderItem, error) {
	var item models.OrderItem
	err := row.Scan(
		&item.ID, &item.OrderID, &item.ItemType, &item.ItemName,
		&item.Quantity, &item.UnitPrice, &item.TotalPrice, &item.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning order item: %v", ErrDatabaseError, err)
	}
	return &item, nil
}

func (r *orderRepository) CreateOrderItem(executor SQLExecutor, item *models.OrderItem) (int64, error) {
	query := `INSERT INTO order_items
	            (order_id, item_type, item_name, quantity, unit_price, total_price, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}

	err := executor.QueryRow(query,
		item.OrderID, item.ItemType, item.ItemName,
		item.Quantity, item.UnitPrice, item.TotalPrice, item.CreatedAt,
	).Scan(&item.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return 0, fmt.Errorf("%w: creating order item (constraint: %s): %v", ErrDatabaseError, pqErr.Constraint, err)
		}
		return 0, fmt.Errorf("%w: creating order item: %v", ErrDatabaseError, err)
	}
	return item.ID, nil
}

func (r *orderRepository) GetOrderItemsByOrderID(orderID int64) ([]models.OrderItem, error) {
	items := []models.OrderItem{}
	query := "SELECT " + selectOrderItemFields + " FROM order_items WHERE order_id = $1 ORDER BY id"

	rows, err := r.db.Query(query, orderID)
	if err != nil {
		return nil, fmt.Errorf("%w: querying order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	defer rows.Close()

	for rows.Next() {
		item, scanErr := scanOrderItemRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		items = append(items, *item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating order item rows for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return items, nil
}

func (r *orderRepository) GetLatestRoomTimeItem(orderID int64) (*models.OrderItem, error) {
	query := "SELECT " + selectOrderItemFields + ` FROM order_items
	          WHERE order_id = $1 AND item_type = $2
	          ORDER BY id DESC
	          LIMIT 1`
	return scanOrderItemRow(r.db.QueryRow(query, orderID, models.ItemTypeRoomTime))
}

func (r *orderRepository) UpdateOrderItem(executor SQLExecutor, item *models.OrderItem) error {
	query := `UPDATE order_items SET
	            item_name = $1, quantity = $2, unit_price = $3, total_price = $4
	          WHERE id = $5`
	result, err := executor.Exec(query,
		item.ItemName, item.Quantity, item.UnitPrice, item.TotalPrice, item.ID,
	)
	if err != nil {
		return fmt.Errorf("%w: updating order item ID %d: %v", ErrDatabaseError, item.ID, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *orderRepository) SumOrderItems(executor SQLExecutor, orderID int64) (decimal.Decimal, error) {
	var total decimal.Decimal
	query := `SELECT COALESCE(SUM(total_price), 0) FROM order_items WHERE order_id = $1`
	err := executor.QueryRow(query, orderID).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: summing order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return total, nil
}

func (r *orderRepository) DeleteOrderItemsByOrderID(executor SQLExecutor, orderID int64) (int64, error) {
	query := `DELETE FROM order_items WHERE order_id = $1`
	result, err := executor.Exec(query, orderID)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: getting rows affected for deleting order items for order ID %d: %v", ErrDatabaseError, orderID, err)
	}
	return rowsAffected, nil
}
