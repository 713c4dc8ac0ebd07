package handlers

import (
	"errors"
	"net/http"

	"gamezone_pos_backend/internal/models"
	"gamezone_pos_backend/internal/services"
	"gamezone_pos_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// RoomHandler holds the room service.
type RoomHandler struct {
	roomService services.RoomService
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(rs services.RoomService) *RoomHandler {
	return &RoomHandler{roomService: rs}
}

// CreateRoom handles the creation of a new gaming room.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req services.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "CreateRoom: Failed to bind JSON")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	room, err := h.roomService.CreateRoom(req)
	if err != nil {
		utils.LogError(err, "CreateRoom: Error from roomService.CreateRoom")
		if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrRoomDuplicate) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to create room.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusCreated, room)
}

// GetRooms handles fetching all rooms with optional status/console filters.
func (h *RoomHandler) GetRooms(c *gin.Context) {
	var filters models.RoomFilters
	if statusStr := c.Query("status"); statusStr != "" {
		if !models.IsValidRoomStatus(statusStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid status value.", "status: "+statusStr))
			return
		}
		filters.Status = &statusStr
	}
	if consoleStr := c.Query("console_type"); consoleStr != "" {
		if !models.IsValidConsoleType(consoleStr) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid console_type value.", "console_type: "+consoleStr))
			return
		}
		filters.ConsoleType = &consoleStr
	}

	rooms, err := h.roomService.GetRooms(filters)
	if err != nil {
		utils.LogError(err, "GetRooms: Error from roomService.GetRooms")
		utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch rooms.", "Internal error"))
		return
	}
	if rooms == nil {
		rooms = []models.Room{}
	}
	c.JSON(http.StatusOK, gin.H{"data": rooms})
}

// GetRoomByID handles fetching a single room by ID.
func (h *RoomHandler) GetRoomByID(c *gin.Context) {
	idStr := c.Param("id")
	roomID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room ID format.", err.Error()))
		return
	}

	room, err := h.roomService.GetRoomByID(roomID)
	if err != nil {
		utils.LogError(err, "GetRoomByID: Error from roomService.GetRoomByID for ID "+idStr)
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Room not found.", err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to fetch room.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, room)
}

// UpdateRoom handles updating room name, console type, and pricing.
func (h *RoomHandler) UpdateRoom(c *gin.Context) {
	idStr := c.Param("id")
	roomID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room ID format.", err.Error()))
		return
	}

	var req services.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.LogError(err, "UpdateRoom: Failed to bind JSON for ID "+idStr)
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	room, err := h.roomService.UpdateRoom(roomID, req)
	if err != nil {
		utils.LogError(err, "UpdateRoom: Error from roomService.UpdateRoom for ID "+idStr)
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Room not found to update.", err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update room.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, room)
}

// SetRoomStatus handles manual status changes (available, cleaning, maintenance).
func (h *RoomHandler) SetRoomStatus(c *gin.Context) {
	idStr := c.Param("id")
	roomID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room ID format.", err.Error()))
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid request payload: "+err.Error(), err.Error()))
		return
	}

	room, err := h.roomService.SetRoomStatus(roomID, req.Status)
	if err != nil {
		utils.LogError(err, "SetRoomStatus: Error from roomService.SetRoomStatus for ID "+idStr)
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Room not found.", err.Error()))
		} else if errors.Is(err, services.ErrRoomOccupied) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else if errors.Is(err, services.ErrValidation) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to update room status.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, room)
}

// DeleteRoom handles deleting a room.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	idStr := c.Param("id")
	roomID, err := utils.StrToInt64(idStr)
	if err != nil {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeValidationFailed, "Invalid room ID format.", err.Error()))
		return
	}

	err = h.roomService.DeleteRoom(roomID)
	if err != nil {
		utils.LogError(err, "DeleteRoom: Error from roomService.DeleteRoom for ID "+idStr)
		if errors.Is(err, services.ErrRoomNotFound) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusNotFound, utils.ErrCodeNotFound, "Room not found to delete.", err.Error()))
		} else if errors.Is(err, services.ErrRoomOccupied) {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, err.Error(), err.Error()))
		} else {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusInternalServerError, utils.ErrCodeInternalServerError, "Failed to delete room.", "Internal error"))
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Room deleted successfully"})
}
