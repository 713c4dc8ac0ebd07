package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cafe product categories.
const (
	CafeCategoryDrinks = "drinks"
	CafeCategorySnacks = "snacks"
	CafeCategoryMeals  = "meals"
)

// IsValidCafeCategory checks if the provided category string is valid.
func IsValidCafeCategory(category string) bool {
	switch category {
	case CafeCategoryDrinks, CafeCategorySnacks, CafeCategoryMeals:
		return true
	default:
		return false
	}
}

// CafeProduct is an item sold at the cafe counter. Stock moves only through
// explicit admin adjustments, not through sales (manual reconciliation).
type CafeProduct struct {
	ID        int64           `json:"id" db:"id"`
	Name      string          `json:"name" db:"name" binding:"required"`
	Category  string          `json:"category" db:"category"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Stock     int             `json:"stock" db:"stock"`
	Active    bool            `json:"active" db:"active"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

// CafeProductFilters defines the available filters for querying cafe products.
type CafeProductFilters struct {
	Category   *string `form:"category"`
	ActiveOnly bool    `form:"active_only"`
}
