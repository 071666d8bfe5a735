package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"classroom-booking/models"
	"classroom-booking/services"
	"classroom-booking/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ---------------------------
// Payload / DTOs
// ---------------------------

type CreateRoomPayload struct {
	Building string `json:"building" binding:"required"`
	Number   string `json:"number" binding:"required"`
	// Capacity accepts a JSON integer or a numeric string; anything else is stored as 0.
	Capacity json.RawMessage `json:"capacity"`
}

type HoursPayload struct {
	Hours string `json:"hours" binding:"required"`
}

type createRoomResponse struct {
	Room            models.Room `json:"room"`
	CapacityCoerced bool        `json:"capacityCoerced"`
	Message         string      `json:"message,omitempty"`
}

type hoursResponse struct {
	Room    models.Room `json:"room"`
	Hours   []int       `json:"hours"`
	Message string      `json:"message,omitempty"`
}

// ---------------------------
// Controller
// ---------------------------

type RoomController struct {
	RoomSvc *services.RoomService
	Logger  *zap.Logger
}

func NewRoomController(svc *services.RoomService, logger *zap.Logger) *RoomController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoomController{RoomSvc: svc, Logger: logger}
}

// ----------------------------------------------------
// GET /api/rooms?building=&min_capacity=&free_at=
// ----------------------------------------------------

func (rc *RoomController) GetRooms(c *gin.Context) {
	var filter services.RoomFilter

	if raw := strings.TrimSpace(c.Query("building")); raw != "" {
		code, ok := models.NormalizeBuilding(raw)
		if !ok {
			utils.JSONError(c, http.StatusBadRequest, "Invalid building. Valid options: "+models.BuildingList())
			return
		}
		filter.Building = code
	}
	if raw := strings.TrimSpace(c.Query("min_capacity")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			utils.JSONError(c, http.StatusBadRequest, "Invalid capacity filter.")
			return
		}
		filter.MinCapacity = &n
	}
	if raw := strings.TrimSpace(c.Query("free_at")); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || !utils.ValidHour(h) {
			utils.JSONError(c, http.StatusBadRequest, "Hour must be 0-23.")
			return
		}
		filter.FreeAtHour = &h
	}

	utils.JSONSuccess(c, http.StatusOK, rc.RoomSvc.Query(filter))
}

// ----------------------------------------------------
// POST /api/rooms
// ----------------------------------------------------

func (rc *RoomController) CreateRoom(c *gin.Context) {
	var payload CreateRoomPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	capacity, parsed := parseCapacity(payload.Capacity)
	room, coerced, err := rc.RoomSvc.Create(c.Request.Context(), payload.Building, payload.Number, capacity)
	if err != nil {
		rc.writeError(c, err)
		return
	}

	resp := createRoomResponse{Room: room, CapacityCoerced: coerced || !parsed}
	switch {
	case !parsed:
		resp.Message = "Invalid capacity input. Setting to 0."
	case coerced:
		resp.Message = "Capacity cannot be negative. Setting to 0."
	}
	utils.JSONSuccess(c, http.StatusCreated, resp)
}

// parseCapacity reports false when raw is neither an integer nor a numeric string.
// A missing capacity is 0.
func parseCapacity(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, true
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
			return n, true
		}
	}
	return 0, false
}

// ----------------------------------------------------
// GET /api/rooms/:id
// ----------------------------------------------------

func (rc *RoomController) GetRoom(c *gin.Context) {
	room, err := rc.RoomSvc.Find(c.Param("id"))
	if err != nil {
		rc.writeError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, room)
}

// ----------------------------------------------------
// POST /api/rooms/:id/book and /api/rooms/:id/unbook
// ----------------------------------------------------

func (rc *RoomController) BookRoom(c *gin.Context) {
	rc.changeHours(c, rc.RoomSvc.Book)
}

func (rc *RoomController) UnbookRoom(c *gin.Context) {
	rc.changeHours(c, rc.RoomSvc.Unbook)
}

func (rc *RoomController) changeHours(c *gin.Context, op func(ctx context.Context, id, spec string) (models.Room, []int, error)) {
	var payload HoursPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	room, hours, err := op(c.Request.Context(), c.Param("id"), payload.Hours)
	if errors.Is(err, services.ErrNoValidHours) {
		utils.JSONSuccess(c, http.StatusOK, hoursResponse{Room: room, Hours: []int{}, Message: "No valid hours entered."})
		return
	}
	if err != nil {
		rc.writeError(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hoursResponse{Room: room, Hours: hours})
}

// ----------------------------------------------------
// GET /api/rooms/export
// ----------------------------------------------------

func (rc *RoomController) ExportRooms(c *gin.Context) {
	data, err := utils.GenerateRoomsExport(rc.RoomSvc.ListAll())
	if err != nil {
		rc.Logger.Error("export failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Failed to build export.")
		return
	}
	utils.XLSXAttachment(c, http.StatusOK, "rooms.xlsx", data)
}

func (rc *RoomController) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrRoomNotFound):
		utils.JSONError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrRoomAlreadyExists),
		errors.Is(err, services.ErrTimeslotAlreadyBooked),
		errors.Is(err, services.ErrTimeslotNotBooked):
		utils.JSONError(c, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidBuilding),
		errors.Is(err, services.ErrInvalidRoomNumber):
		utils.JSONError(c, http.StatusBadRequest, err.Error())
	default:
		rc.Logger.Error("request failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
