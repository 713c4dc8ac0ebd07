package handlers

import (
	"errors"
	"net/http"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/services"
	"gamezone_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// CafeProductHandler holds the cafe catalog service.
type CafeProductHandler struct {
	cafeService services.CafeService
}

// NewCafeProductHandler creates a new CafeProductHandler.
func NewCafeProductHandler(cs services.CafeService) *CafeProductHandler {
	return &CafeProductHandler{cafeService: cs}
}

// CreateCafeProduct handles adding a product to the cafe catalog.
func (h *CafeProductHandler) CreateCafeProduct(c *gin.Context) {
	var req services.CreateCafeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCafeProduct: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.cafeService.CreateProduct(req)
	if err != nil {
		utils.LogError(err, "CreateCafeProduct: Error from cafeService.CreateProduct")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrProductDuplicate) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create cafe product.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetCafeProducts handles fetching the cafe catalog.
func (h *CafeProductHandler) GetCafeProducts(c *gin.Context) {
	var filters models.CafeProductFilters
	if categoryStr := c.Query("category"); categoryStr != "" {
		if !models.IsValidCafeCategory(categoryStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid category value.", "category: "+categoryStr))
			return
		}
		filters.Category = &categoryStr
	}
	if c.Query("active_only") == "true" {
		filters.ActiveOnly = true
	}

	products, err := h.cafeService.GetProducts(filters)
	if err != nil {
		utils.LogError(err, "GetCafeProducts: Error from cafeService.GetProducts")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch cafe products.", "Internal error"))
		return
	}
	if products == nil {
		products = []models.CafeProduct{}
	}
	c.JSON(http.StatusOK, gin.H{"data": products})
}

// GetCafeProductByID handles fetching a single cafe product.
func (h *CafeProductHandler) GetCafeProductByID(c *gin.Context) {
	idStr := c.Param("id")
	productID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	product, err := h.cafeService.GetProductByID(productID)
	if err != nil {
		utils.LogError(err, "GetCafeProductByID: Error from cafeService.GetProductByID for ID "+idStr)
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cafe product not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch cafe product.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

// UpdateCafeProduct handles editing a cafe product.
func (h *CafeProductHandler) UpdateCafeProduct(c *gin.Context) {
	idStr := c.Param("id")
	productID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	var req services.UpdateCafeProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateCafeProduct: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.cafeService.UpdateProduct(productID, req)
	if err != nil {
		utils.LogError(err, "UpdateCafeProduct: Error from cafeService.UpdateProduct for ID "+idStr)
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cafe product not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrProductDuplicate) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update cafe product.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

// AdjustCafeProductStock handles manual stock corrections and restocks.
func (h *CafeProductHandler) AdjustCafeProductStock(c *gin.Context) {
	idStr := c.Param("id")
	productID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	var req services.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	product, err := h.cafeService.AdjustStock(productID, req)
	if err != nil {
		utils.LogError(err, "AdjustCafeProductStock: Error from cafeService.AdjustStock for ID "+idStr)
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cafe product not found.", err.Error()))
		} else if errors.Is(err, services.ErrStockUnderflow) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to adjust stock.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

// DeleteCafeProduct handles removing a product from the catalog.
func (h *CafeProductHandler) DeleteCafeProduct(c *gin.Context) {
	idStr := c.Param("id")
	productID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid product ID format.", err.Error()))
		return
	}

	err = h.cafeService.DeleteProduct(productID)
	if err != nil {
		utils.LogError(err, "DeleteCafeProduct: Error from cafeService.DeleteProduct for ID "+idStr)
		if errors.Is(err, services.ErrProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Cafe product not found to delete.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete cafe product.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cafe product deleted successfully"})
}
