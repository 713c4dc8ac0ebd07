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

// --- Custom Service Errors for Orders ---
var (
	ErrValidation          = errors.New("validation error")
	ErrOrderNotFound       = errors.New("order not found")
	ErrOrderNotEditable    = errors.New("order cannot be modified in its current state")
	ErrCafeProductNotFound = errors.New("cafe product not found or not available")
)

// --- Order DTOs ---

// CafeSelection is one product pick from the cafe screen.
type CafeSelection struct {
	ProductID int64 `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

type CreateCafeOrderRequest struct {
	CustomerName  string          `json:"customer_name" binding:"required"`
	Selections    []CafeSelection `json:"selections" binding:"required,dive"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
}

type AttachItemsRequest struct {
	Selections []CafeSelection `json:"selections" binding:"required,dive"`
}

// --- OrderService Interface ---

// OrderService composes orders out of cafe-product line items and keeps
// totals consistent: the total is always recomputed from the items, never
// trusted incrementally.
type OrderService interface {
	// CreateCafeOrder creates a counter sale: order, items and the payment
	// transaction in one step.
	CreateCafeOrder(req CreateCafeOrderRequest) (*models.Order, error)
	// AttachCafeItems appends cafe items to an existing active or paused
	// order; the order's eventual payment covers the addition, so no
	// transaction is emitted here.
	AttachCafeItems(orderID int64, req AttachItemsRequest) (*models.Order, error)
	RecalculateTotal(orderID int64) (*models.Order, error)
	GetOrders(filters models.OrderFilters) ([]models.Order, int, error)
	GetOrderByID(orderID int64) (*models.Order, error)
	CancelOrder(orderID int64) (*models.Order, error)
	DeleteOrder(orderID int64) error
}

// --- orderService Implementation ---
type orderService struct {
	orderRepo repositories.OrderRepository
	cafeRepo  repositories.CafeProductRepository
	txnRepo   repositories.TransactionRepository
	db        *sql.DB
}

// NewOrderService creates a new instance of OrderService.
func NewOrderService(
	or repositories.OrderRepository,
	cr repositories.CafeProductRepository,
	tr repositories.TransactionRepository,
	db *sql.DB,
) OrderService {
	return &orderService{
		orderRepo: or,
		cafeRepo:  cr,
		txnRepo:   tr,
		db:        db,
	}
}

// buildCafeItems resolves selections against the catalog and prices each
// line at the product's current price. Stock is not decremented by sales;
// inventory reconciliation is a manual admin operation.
func (s *orderService) buildCafeItems(selections []CafeSelection) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(selections))
	for _, sel := range selections {
		if sel.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for product ID %d must be positive", ErrValidation, sel.ProductID)
		}
		product, err := s.cafeRepo.GetProductByID(sel.ProductID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, fmt.Errorf("%w: product ID %d", ErrCafeProductNotFound, sel.ProductID)
			}
			return nil, fmt.Errorf("failed to fetch cafe product %d: %w", sel.ProductID, err)
		}
		if !product.Active {
			return nil, fmt.Errorf("%w: product '%s' is disabled", ErrCafeProductNotFound, product.Name)
		}

		quantity := decimal.NewFromInt(int64(sel.Quantity))
		items = append(items, models.OrderItem{
			ItemType:   models.ItemTypeCafeProduct,
			ItemName:   product.Name,
			Quantity:   quantity,
			UnitPrice:  product.Price,
			TotalPrice: product.Price.Mul(quantity).Round(2),
		})
	}
	return items, nil
}

func (s *orderService) CreateCafeOrder(req CreateCafeOrderRequest) (*models.Order, error) {
	if strings.TrimSpace(req.CustomerName) == "" {
		return nil, fmt.Errorf("%w: customer name is required", ErrValidation)
	}
	if !models.IsValidPaymentMethod(req.PaymentMethod) {
		return nil, fmt.Errorf("%w: invalid payment method '%s'", ErrValidation, req.PaymentMethod)
	}
	if len(req.Selections) == 0 {
		return nil, fmt.Errorf("%w: at least one selection is required", ErrValidation)
	}

	items, err := s.buildCafeItems(req.Selections)
	if err != nil {
		return nil, err
	}

	totalAmount := decimal.Zero
	for _, item := range items {
		totalAmount = totalAmount.Add(item.TotalPrice)
	}

	orderTime := time.Now()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	order := &models.Order{
		CustomerName: req.CustomerName,
		OrderType:    models.OrderTypeCafeOrder,
		TotalAmount:  totalAmount,
		Status:       models.OrderStatusCompleted,
		StartTime:    orderTime,
		EndTime:      &orderTime,
	}
	orderID, err := s.orderRepo.CreateOrder(tx, order)
	if err != nil {
		return nil, fmt.Errorf("failed to create cafe order: %w", err)
	}

	for i := range items {
		items[i].OrderID = orderID
		if _, err = s.orderRepo.CreateOrderItem(tx, &items[i]); err != nil {
			return nil, fmt.Errorf("failed to create order item '%s': %w", items[i].ItemName, err)
		}
	}

	txn := models.Transaction{
		OrderID:         orderID,
		TransactionType: models.TransactionTypePayment,
		Amount:          totalAmount,
		PaymentMethod:   req.PaymentMethod,
		Description:     models.NewNullString("Cafe counter sale"),
		CreatedAt:       orderTime,
	}
	if _, err = s.txnRepo.CreateTransaction(tx, &txn); err != nil {
		return nil, fmt.Errorf("failed to record payment transaction: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit cafe order: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) AttachCafeItems(orderID int64, req AttachItemsRequest) (*models.Order, error) {
	if len(req.Selections) == 0 {
		return nil, fmt.Errorf("%w: at least one selection is required", ErrValidation)
	}

	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for item attachment: %w", err)
	}
	if order.Status != models.OrderStatusActive && order.Status != models.OrderStatusPaused {
		return nil, fmt.Errorf("%w: order %d is %s", ErrOrderNotEditable, orderID, order.Status)
	}

	items, err := s.buildCafeItems(req.Selections)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range items {
		items[i].OrderID = orderID
		if _, err = s.orderRepo.CreateOrderItem(tx, &items[i]); err != nil {
			return nil, fmt.Errorf("failed to create order item '%s': %w", items[i].ItemName, err)
		}
	}

	total, err := s.orderRepo.SumOrderItems(tx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to recompute order total: %w", err)
	}
	order.TotalAmount = total
	// A room order that picks up cafe items becomes a combo.
	if order.OrderType == models.OrderTypeRoomReservation {
		order.OrderType = models.OrderTypeCombo
	}
	if err = s.orderRepo.UpdateOrder(tx, order); err != nil {
		return nil, fmt.Errorf("failed to update order after item attachment: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit item attachment: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) RecalculateTotal(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for total recalculation: %w", err)
	}

	total, err := s.orderRepo.SumOrderItems(s.db, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum order items: %w", err)
	}
	if !total.Equal(order.TotalAmount) {
		if err = s.orderRepo.UpdateOrderTotal(s.db, orderID, total); err != nil {
			return nil, fmt.Errorf("failed to store recalculated total: %w", err)
		}
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) GetOrders(filters models.OrderFilters) ([]models.Order, int, error) {
	if filters.Page <= 0 {
		filters.Page = 1
	}
	if filters.PageSize <= 0 {
		filters.PageSize = 10
	}

	orders, totalCount, err := s.orderRepo.GetOrders(filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get orders: %w", err)
	}
	return orders, totalCount, nil
}

func (s *orderService) GetOrderByID(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to get order by ID: %w", err)
	}

	items, err := s.orderRepo.GetOrderItemsByOrderID(orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get order items for order ID %d: %w", orderID, err)
	}
	order.OrderItems = items
	return order, nil
}

func (s *orderService) CancelOrder(orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order for cancellation: %w", err)
	}
	if order.Status == models.OrderStatusCompleted || order.Status == models.OrderStatusCancelled {
		return nil, fmt.Errorf("%w: order %d is already %s", ErrOrderNotEditable, orderID, order.Status)
	}
	// A live room session must be stopped first so the room is released.
	if order.Status == models.OrderStatusActive && order.RoomID != nil {
		return nil, fmt.Errorf("%w: stop the room session before cancelling order %d", ErrOrderNotEditable, orderID)
	}

	if err = s.orderRepo.UpdateOrderStatus(s.db, orderID, models.OrderStatusCancelled, time.Now()); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	return s.GetOrderByID(orderID)
}

func (s *orderService) DeleteOrder(orderID int64) error {
	_, err := s.orderRepo.GetOrderByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to fetch order for deletion: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start database transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = s.orderRepo.DeleteOrderItemsByOrderID(tx, orderID); err != nil {
		return fmt.Errorf("failed to delete order items: %w", err)
	}
	if _, err = s.orderRepo.DeleteOrder(tx, orderID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return tx.Commit()
}
