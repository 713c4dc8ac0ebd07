package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/services"
	"gamezone_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TransactionHandler holds the transaction service.
type TransactionHandler struct {
	transactionService services.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ts services.TransactionService) *TransactionHandler {
	return &TransactionHandler{transactionService: ts}
}

// GetTransactions handles fetching the payment ledger with filters.
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var filters models.TransactionFilters
	filters.Page = page
	filters.PageSize = pageSize

	if orderIDStr := c.Query("order_id"); orderIDStr != "" {
		id, err := utils.StrToInt64(orderIDStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order_id format.", err.Error()))
			return
		}
		filters.OrderID = &id
	}
	if typeStr := c.Query("type"); typeStr != "" {
		if typeStr != models.TransactionTypePayment && typeStr != models.TransactionTypeRefund {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid type value.", "type: "+typeStr))
			return
		}
		filters.Type = &typeStr
	}
	if dateFromStr := c.Query("date_from"); dateFromStr != "" {
		t, err := time.Parse("2006-01-02", dateFromStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_from format. Use YYYY-MM-DD.", err.Error()))
			return
		}
		filters.DateFrom = &t
	}
	if dateToStr := c.Query("date_to"); dateToStr != "" {
		t, err := time.Parse("2006-01-02", dateToStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid date_to format. Use YYYY-MM-DD.", err.Error()))
			return
		}
		t = t.Add(23*time.Hour + 59*time.Minute + 59*time.Second) // End of day
		filters.DateTo = &t
	}

	transactions, totalCount, err := h.transactionService.GetTransactions(filters)
	if err != nil {
		utils.LogError(err, "GetTransactions: Error from transactionService.GetTransactions")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transactions.", "Internal error"))
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      transactions,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetTransactionByID handles fetching a single transaction record.
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	idStr := c.Param("id")
	transactionID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid transaction ID format.", err.Error()))
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(transactionID)
	if err != nil {
		utils.LogError(err, "GetTransactionByID: Error from transactionService.GetTransactionByID for ID "+idStr)
		if errors.Is(err, services.ErrTransactionNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Transaction not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch transaction.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, transaction)
}

// GetOrderTransactions handles GET /orders/:id/transactions.
func (h *TransactionHandler) GetOrderTransactions(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	transactions, err := h.transactionService.GetTransactionsByOrderID(orderID)
	if err != nil {
		utils.LogError(err, "GetOrderTransactions: Error from transactionService.GetTransactionsByOrderID for order "+idStr)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order transactions.", "Internal error"))
		}
		return
	}
	if transactions == nil {
		transactions = []models.Transaction{}
	}
	c.JSON(http.StatusOK, gin.H{"data": transactions})
}

// RefundOrder handles POST /orders/:id/refund.
func (h *TransactionHandler) RefundOrder(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	var req services.RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "RefundOrder: Failed to bind JSON for order "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	refund, err := h.transactionService.RefundOrder(orderID, req)
	if err != nil {
		utils.LogError(err, "RefundOrder: Error from transactionService.RefundOrder for order "+idStr)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else if errors.Is(err, services.ErrOrderNotRefundable) || errors.Is(err, services.ErrRefundExceedsPaid) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to record refund.", "Please refresh and verify the current order state."))
		}
		return
	}
	c.JSON(http.StatusCreated, refund)
}
