package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/services"
	"gamezone_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrderHandler holds the order service.
type OrderHandler struct {
	orderService services.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(os services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: os}
}

// CreateCafeOrder handles the creation of a standalone cafe order.
func (h *OrderHandler) CreateCafeOrder(c *gin.Context) {
	var req services.CreateCafeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateCafeOrder: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.CreateCafeOrder(req)
	if err != nil {
		utils.LogError(err, "CreateCafeOrder: Error from orderService.CreateCafeOrder")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrCafeProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create cafe order.", "Please refresh and verify the current order state."))
		}
		return
	}
	c.JSON(http.StatusCreated, order)
}

// AttachCafeItems handles adding cafe items to an existing active order.
func (h *OrderHandler) AttachCafeItems(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	var req services.AttachItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "AttachCafeItems: Failed to bind JSON for order "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.orderService.AttachCafeItems(orderID, req)
	if err != nil {
		utils.LogError(err, "AttachCafeItems: Error from orderService.AttachCafeItems for order "+idStr)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else if errors.Is(err, services.ErrOrderNotEditable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrValidation) || errors.Is(err, services.ErrCafeProductNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to add items to order.", "Please refresh and verify the current order state."))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// RecalculateTotal re-derives an order's total from its items.
func (h *OrderHandler) RecalculateTotal(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	order, err := h.orderService.RecalculateTotal(orderID)
	if err != nil {
		utils.LogError(err, "RecalculateTotal: Error from orderService.RecalculateTotal for order "+idStr)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to recalculate order total.", "Please refresh and verify the current order state."))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrders handles fetching orders with pagination and filters.
func (h *OrderHandler) GetOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var filters models.OrderFilters
	filters.Page = page
	filters.PageSize = pageSize

	if statusStr := c.Query("status"); statusStr != "" {
		if !models.IsValidOrderStatus(statusStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid status value.", "status: "+statusStr))
			return
		}
		filters.Status = &statusStr
	}
	if roomIDStr := c.Query("room_id"); roomIDStr != "" {
		id, err := utils.StrToInt64(roomIDStr)
		if err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room_id format.", err.Error()))
			return
		}
		filters.RoomID = &id
	}
	if dateStr := c.Query("date"); dateStr != "" {
		filters.Date = &dateStr
	}

	orders, totalCount, err := h.orderService.GetOrders(filters)
	if err != nil {
		utils.LogError(err, "GetOrders: Error from orderService.GetOrders")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch orders.", "Internal error"))
		return
	}
	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      orders,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetOrderByID handles fetching a single order with its items.
func (h *OrderHandler) GetOrderByID(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	order, err := h.orderService.GetOrderByID(orderID)
	if err != nil {
		utils.LogError(err, "GetOrderByID: Error from orderService.GetOrderByID for ID "+idStr)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// CancelOrder handles cancelling an order that never ran or was abandoned.
func (h *OrderHandler) CancelOrder(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	order, err := h.orderService.CancelOrder(orderID)
	if err != nil {
		utils.LogError(err, "CancelOrder: Error from orderService.CancelOrder for ID "+idStr)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found to cancel.", err.Error()))
		} else if errors.Is(err, services.ErrOrderNotEditable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to cancel order.", "Please refresh and verify the current order state."))
		}
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder handles hard-deleting an order and its items.
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	err = h.orderService.DeleteOrder(orderID)
	if err != nil {
		utils.LogError(err, "DeleteOrder: Error from orderService.DeleteOrder for ID "+idStr)
		if errors.Is(err, services.ErrOrderNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Order not found to delete.", err.Error()))
		} else if errors.Is(err, services.ErrOrderNotEditable) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete order.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Order deleted successfully"})
}
