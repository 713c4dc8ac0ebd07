package handlers

import (
	"errors"
	"net/http"

	"gamezone_pos_backend/internal/services"
	"gamezone_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// SessionHandler exposes the room session lifecycle over HTTP.
type SessionHandler struct {
	sessionService services.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ss services.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: ss}
}

// respondSessionError maps session service errors onto API errors.
func respondSessionError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrRoomNotFound),
		errors.Is(err, services.ErrSessionOrderNotFound),
		errors.Is(err, services.ErrOrderNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, err.Error(), err.Error()))
	case errors.Is(err, services.ErrRoomNotAvailable),
		errors.Is(err, services.ErrRoomNotOccupied),
		errors.Is(err, services.ErrOrderNotPaused),
		errors.Is(err, services.ErrOrderNotAdjustable),
		errors.Is(err, services.ErrOrderNotPayable):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
	case errors.Is(err, services.ErrValidation),
		errors.Is(err, services.ErrOpenTimeAdjustment),
		errors.Is(err, services.ErrEndBeforeStart):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Please refresh and verify the current room state."))
	}
}

// StartSession handles POST /rooms/:id/start-session.
func (h *SessionHandler) StartSession(c *gin.Context) {
	idStr := c.Param("id")
	roomID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room ID format.", err.Error()))
		return
	}

	var req services.StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "StartSession: Failed to bind JSON for room "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.sessionService.StartSession(roomID, req)
	if err != nil {
		utils.LogError(err, "StartSession: Error from sessionService.StartSession for room "+idStr)
		respondSessionError(c, err, "Failed to start session.")
		return
	}
	c.JSON(http.StatusCreated, order)
}

// StopSession handles POST /rooms/:id/stop-session.
func (h *SessionHandler) StopSession(c *gin.Context) {
	idStr := c.Param("id")
	roomID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room ID format.", err.Error()))
		return
	}

	var req services.StopSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
			return
		}
	}

	order, err := h.sessionService.StopSession(roomID, req)
	if err != nil {
		utils.LogError(err, "StopSession: Error from sessionService.StopSession for room "+idStr)
		respondSessionError(c, err, "Failed to stop session.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// AdjustTime handles POST /rooms/:id/adjust-time for fixed-duration sessions.
func (h *SessionHandler) AdjustTime(c *gin.Context) {
	idStr := c.Param("id")
	roomID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room ID format.", err.Error()))
		return
	}

	var req services.AdjustTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.sessionService.AdjustTime(roomID, req)
	if err != nil {
		utils.LogError(err, "AdjustTime: Error from sessionService.AdjustTime for room "+idStr)
		respondSessionError(c, err, "Failed to adjust session time.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// ReactivateSession handles POST /orders/:id/reactivate for paused orders.
func (h *SessionHandler) ReactivateSession(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	var req services.ReactivateSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
			return
		}
	}

	order, err := h.sessionService.ReactivateSession(orderID, req)
	if err != nil {
		utils.LogError(err, "ReactivateSession: Error from sessionService.ReactivateSession for order "+idStr)
		respondSessionError(c, err, "Failed to reactivate session.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// ExtendTime handles POST /orders/:id/extend-time.
func (h *SessionHandler) ExtendTime(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	var req services.AdjustTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	order, err := h.sessionService.ExtendTime(orderID, req)
	if err != nil {
		utils.LogError(err, "ExtendTime: Error from sessionService.ExtendTime for order "+idStr)
		respondSessionError(c, err, "Failed to extend session time.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// CompletePayment handles POST /orders/:id/complete-payment on a paused order.
func (h *SessionHandler) CompletePayment(c *gin.Context) {
	idStr := c.Param("id")
	orderID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid order ID format.", err.Error()))
		return
	}

	var req services.CompletePaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
			return
		}
	}

	order, err := h.sessionService.CompletePayment(orderID, req)
	if err != nil {
		utils.LogError(err, "CompletePayment: Error from sessionService.CompletePayment for order "+idStr)
		respondSessionError(c, err, "Failed to complete payment.")
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetActiveSessions handles GET /sessions/active with live running costs.
func (h *SessionHandler) GetActiveSessions(c *gin.Context) {
	sessions, err := h.sessionService.ActiveSessions()
	if err != nil {
		utils.LogError(err, "GetActiveSessions: Error from sessionService.ActiveSessions")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch active sessions.", "Internal error"))
		return
	}
	if sessions == nil {
		sessions = []services.ActiveSessionView{}
	}
	c.JSON(http.StatusOK, gin.H{"data": sessions})
}
