package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamezone_pos_backend/internal/models"
)

// CafeProductRepository defines the interface for cafe catalog database operations.
type CafeProductRepository interface {
	CreateProduct(executor SQLExecutor, product *models.CafeProduct) (*models.CafeProduct, error)
	GetProductByID(id int64) (*models.CafeProduct, error)
	GetProducts(filters models.CafeProductFilters) ([]models.CafeProduct, error)
	UpdateProduct(executor SQLExecutor, product *models.CafeProduct) (*models.CafeProduct, error)
	// AdjustStock applies a delta and returns the new stock level. The guard
	// in the query keeps stock from going negative.
	AdjustStock(executor SQLExecutor, productID int64, delta int) (int, error)
	DeleteProduct(executor SQLExecutor, id int64) error
}

type cafeProductRepository struct {
	db *sql.DB
}

// NewCafeProductRepository creates a new instance of CafeProductRepository.
func NewCafeProductRepository(db *sql.DB) CafeProductRepository {
	return &cafeProductRepository{db: db}
}

const selectCafeProductFields = `
	id, name, category, price, stock, active, created_at, updated_at
`

func scanCafeProductRow(row scanner) (*models.CafeProduct, error) {
	var product models.CafeProduct
	err := row.Scan(
		&product.ID, &product.Name, &product.Category, &product.Price,
		&product.Stock, &product.Active, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: scanning cafe product: %v", ErrDatabaseError, err)
	}
	return &product, nil
}

func (r *cafeProductRepository) CreateProduct(executor SQLExecutor, product *models.CafeProduct) (*models.CafeProduct, error) {
	query := `INSERT INTO cafe_products
	            (name, category, price, stock, active, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id, created_at, updated_at`

	currentTime := time.Now()
	product.CreatedAt = currentTime
	product.UpdatedAt = currentTime

	err := executor.QueryRow(query,
		product.Name, product.Category, product.Price, product.Stock, product.Active,
		product.CreatedAt, product.UpdatedAt,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)

	if err != nil {
		if strings.Contains(err.Error(), "unique") {
			return nil, ErrDuplicateKey
		}
		return nil, fmt.Errorf("%w: creating cafe product: %v", ErrDatabaseError, err)
	}
	return product, nil
}

func (r *cafeProductRepository) GetProductByID(id int64) (*models.CafeProduct, error) {
	query := "SELECT " + selectCafeProductFields + " FROM cafe_products WHERE id = $1"
	return scanCafeProductRow(r.db.QueryRow(query, id))
}

func (r *cafeProductRepository) GetProducts(filters models.CafeProductFilters) ([]models.CafeProduct, error) {
	products := []models.CafeProduct{}

	var queryBuilder strings.Builder
	queryBuilder.WriteString("SELECT " + selectCafeProductFields + " FROM cafe_products")

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Category != nil && *filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argCount))
		args = append(args, *filters.Category)
		argCount++
	}
	if filters.ActiveOnly {
		conditions = append(conditions, "active = TRUE")
	}

	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY category, name")

	rows, err := r.db.Query(queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying cafe products: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	for rows.Next() {
		product, scanErr := scanCafeProductRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		products = append(products, *product)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating cafe product rows: %v", ErrDatabaseError, err)
	}
	return products, nil
}

func (r *cafeProductRepository) UpdateProduct(executor SQLExecutor, product *models.CafeProduct) (*models.CafeProduct, error) {
	query := `UPDATE cafe_products SET
	            name = $1, category = $2, price = $3, stock = $4, active = $5, updated_at = $6
	          WHERE id = $7
	          RETURNING updated_at`
	product.UpdatedAt = time.Now()

	err := executor.QueryRow(query,
		product.Name, product.Category, product.Price, product.Stock, product.Active,
		product.UpdatedAt, product.ID,
	).Scan(&product.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: updating cafe product ID %d: %v", ErrDatabaseError, product.ID, err)
	}
	return product, nil
}

func (r *cafeProductRepository) AdjustStock(executor SQLExecutor, productID int64, delta int) (int, error) {
	query := `UPDATE cafe_products
	          SET stock = stock + $1, updated_at = $2
	          WHERE id = $3 AND stock + $1 >= 0
	          RETURNING stock`

	var newStock int
	err := executor.QueryRow(query, delta, time.Now(), productID).Scan(&newStock)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either the product does not exist or the delta would go negative.
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("%w: adjusting stock for cafe product ID %d: %v", ErrDatabaseError, productID, err)
	}
	return newStock, nil
}

func (r *cafeProductRepository) DeleteProduct(executor SQLExecutor, id int64) error {
	query := `DELETE FROM cafe_products WHERE id = $1`
	result, err := executor.Exec(query, id)
	if err != nil {
		return fmt.Errorf("%w: deleting cafe product ID %d: %v", ErrDatabaseError, id, err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
