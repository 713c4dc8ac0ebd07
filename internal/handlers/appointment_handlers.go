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

// AppointmentHandler holds the appointment service.
type AppointmentHandler struct {
	appointmentService services.AppointmentService
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(as services.AppointmentService) *AppointmentHandler {
	return &AppointmentHandler{appointmentService: as}
}

func respondAppointmentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrAppointmentNotFound):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Appointment not found.", err.Error()))
	case errors.Is(err, services.ErrAppointmentConflict), errors.Is(err, services.ErrAppointmentStatusChange):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
	case errors.Is(err, services.ErrValidation), errors.Is(err, services.ErrRoomForAppointment):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
	default:
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, fallback, "Internal error"))
	}
}

// CreateAppointment handles scheduling a new appointment.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req services.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateAppointment: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	appointment, err := h.appointmentService.CreateAppointment(req)
	if err != nil {
		utils.LogError(err, "CreateAppointment: Error from appointmentService.CreateAppointment")
		respondAppointmentError(c, err, "Failed to create appointment.")
		return
	}
	c.JSON(http.StatusCreated, appointment)
}

// GetAppointments handles fetching appointments with pagination and filters.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 10
	}

	var filters models.AppointmentFilters
	filters.Page = page
	filters.PageSize = pageSize

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
	if statusStr := c.Query("status"); statusStr != "" {
		if !models.IsValidAppointmentStatus(statusStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid status value.", "status: "+statusStr))
			return
		}
		filters.Status = &statusStr
	}

	appointments, totalCount, err := h.appointmentService.GetAppointments(filters)
	if err != nil {
		utils.LogError(err, "GetAppointments: Error from appointmentService.GetAppointments")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch appointments.", "Internal error"))
		return
	}
	if appointments == nil {
		appointments = []models.Appointment{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      appointments,
		"total":     totalCount,
		"page":      page,
		"page_size": pageSize,
	})
}

// GetAppointmentByID handles fetching a single appointment by ID.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	idStr := c.Param("id")
	appointmentID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid appointment ID format.", err.Error()))
		return
	}

	appointment, err := h.appointmentService.GetAppointmentByID(appointmentID)
	if err != nil {
		utils.LogError(err, "GetAppointmentByID: Error from appointmentService.GetAppointmentByID for ID "+idStr)
		respondAppointmentError(c, err, "Failed to fetch appointment.")
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointment handles rescheduling or editing an appointment.
func (h *AppointmentHandler) UpdateAppointment(c *gin.Context) {
	idStr := c.Param("id")
	appointmentID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid appointment ID format.", err.Error()))
		return
	}

	var req services.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateAppointment: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	appointment, err := h.appointmentService.UpdateAppointment(appointmentID, req)
	if err != nil {
		utils.LogError(err, "UpdateAppointment: Error from appointmentService.UpdateAppointment for ID "+idStr)
		respondAppointmentError(c, err, "Failed to update appointment.")
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// UpdateAppointmentStatus handles confirming, cancelling, or completing an appointment.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	idStr := c.Param("id")
	appointmentID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid appointment ID format.", err.Error()))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	appointment, err := h.appointmentService.UpdateAppointmentStatus(appointmentID, req.Status)
	if err != nil {
		utils.LogError(err, "UpdateAppointmentStatus: Error from appointmentService.UpdateAppointmentStatus for ID "+idStr)
		respondAppointmentError(c, err, "Failed to update appointment status.")
		return
	}
	c.JSON(http.StatusOK, appointment)
}

// DeleteAppointment handles deleting an appointment.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	idStr := c.Param("id")
	appointmentID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid appointment ID format.", err.Error()))
		return
	}

	err = h.appointmentService.DeleteAppointment(appointmentID)
	if err != nil {
		utils.LogError(err, "DeleteAppointment: Error from appointmentService.DeleteAppointment for ID "+idStr)
		respondAppointmentError(c, err, "Failed to delete appointment.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}
