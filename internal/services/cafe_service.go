package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Cafe Catalog ---
var (
	ErrProductNotFound  = errors.New("cafe product not found")
	ErrProductDuplicate = errors.New("a cafe product with this name already exists")
	ErrStockUnderflow   = errors.New("stock adjustment would make stock negative")
)

// --- Cafe DTOs ---

type CreateCafeProductRequest struct {
	Name     string          `json:"name" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Stock    int             `json:"stock"`
}

type UpdateCafeProductRequest struct {
	Name     *string          `json:"name"`
	Category *string          `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock"`
	Active   *bool            `json:"active"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta" binding:"required"`
	Reason string `json:"reason"`
}

// --- CafeService Interface ---

// CafeService manages the cafe catalog. Sales do not touch stock; the only
// stock mutation path is the explicit AdjustStock operation.
type CafeService interface {
	CreateProduct(req CreateCafeProductRequest) (*models.CafeProduct, error)
	GetProductByID(id int64) (*models.CafeProduct, error)
	GetProducts(filters models.CafeProductFilters) ([]models.CafeProduct, error)
	UpdateProduct(id int64, req UpdateCafeProductRequest) (*models.CafeProduct, error)
	AdjustStock(id int64, req AdjustStockRequest) (*models.CafeProduct, error)
	DeleteProduct(id int64) error
}

// --- cafeService Implementation ---
type cafeService struct {
	cafeRepo repositories.CafeProductRepository
	db       *sql.DB
}

// NewCafeService creates a new instance of CafeService.
func NewCafeService(cr repositories.CafeProductRepository, db *sql.DB) CafeService {
	return &cafeService{cafeRepo: cr, db: db}
}

func validateProductFields(name, category string, price decimal.Decimal) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name is required", ErrValidation)
	}
	if !models.IsValidCafeCategory(category) {
		return fmt.Errorf("%w: invalid category '%s'", ErrValidation, category)
	}
	if price.IsNegative() || price.IsZero() {
		return fmt.Errorf("%w: price must be positive", ErrValidation)
	}
	return nil
}

func (s *cafeService) CreateProduct(req CreateCafeProductRequest) (*models.CafeProduct, error) {
	if err := validateProductFields(req.Name, req.Category, req.Price); err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
	}

	product := &models.CafeProduct{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		Stock:    req.Stock,
		Active:   true,
	}
	created, err := s.cafeRepo.CreateProduct(s.db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrProductDuplicate
		}
		return nil, fmt.Errorf("failed to create cafe product: %w", err)
	}
	return created, nil
}

func (s *cafeService) GetProductByID(id int64) (*models.CafeProduct, error) {
	product, err := s.cafeRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get cafe product: %w", err)
	}
	return product, nil
}

func (s *cafeService) GetProducts(filters models.CafeProductFilters) ([]models.CafeProduct, error) {
	products, err := s.cafeRepo.GetProducts(filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get cafe products: %w", err)
	}
	return products, nil
}

func (s *cafeService) UpdateProduct(id int64, req UpdateCafeProductRequest) (*models.CafeProduct, error) {
	product, err := s.cafeRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find cafe product for update: %w", err)
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return nil, fmt.Errorf("%w: stock cannot be negative", ErrValidation)
		}
		product.Stock = *req.Stock
	}
	if req.Active != nil {
		product.Active = *req.Active
	}
	if err = validateProductFields(product.Name, product.Category, product.Price); err != nil {
		return nil, err
	}

	updated, err := s.cafeRepo.UpdateProduct(s.db, product)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to update cafe product: %w", err)
	}
	return updated, nil
}

func (s *cafeService) AdjustStock(id int64, req AdjustStockRequest) (*models.CafeProduct, error) {
	if req.Delta == 0 {
		return nil, fmt.Errorf("%w: delta must be non-zero", ErrValidation)
	}

	product, err := s.cafeRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find cafe product for stock adjustment: %w", err)
	}
	if product.Stock+req.Delta < 0 {
		return nil, fmt.Errorf("%w: product '%s' has %d in stock", ErrStockUnderflow, product.Name, product.Stock)
	}

	newStock, err := s.cafeRepo.AdjustStock(s.db, id, req.Delta)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// The guarded update refused; either deleted meanwhile or underflow.
			return nil, ErrStockUnderflow
		}
		return nil, fmt.Errorf("failed to adjust stock: %w", err)
	}
	product.Stock = newStock
	return product, nil
}

func (s *cafeService) DeleteProduct(id int64) error {
	_, err := s.cafeRepo.GetProductByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to find cafe product for deletion: %w", err)
	}
	if err = s.cafeRepo.DeleteProduct(s.db, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrProductNotFound
		}
		return fmt.Errorf("failed to delete cafe product: %w", err)
	}
	return nil
}
