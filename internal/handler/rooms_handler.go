package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/middleware"
	"github.com/octobees/rentroom/api/internal/response"
	"github.com/octobees/rentroom/api/internal/service"
)

// RoomsHandler exposes the /api/rooms endpoints.
type RoomsHandler struct {
	rooms *service.RoomService
	log   *zap.Logger
}

// NewRoomsHandler constructs a RoomsHandler.
func NewRoomsHandler(rooms *service.RoomService, log *zap.Logger) *RoomsHandler {
	return &RoomsHandler{rooms: rooms, log: log}
}

// List handles GET /api/rooms.
func (h *RoomsHandler) List(c echo.Context) error {
	page, err := h.rooms.List(c.Request().Context(), listRequest(c))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Paginated(c, "Get all rooms successfully", page, mapAll(page.Items, roomResponse))
}

// Find handles GET /api/rooms/:id.
func (h *RoomsHandler) Find(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	room, err := h.rooms.Find(c.Request().Context(), id)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Get a room detail successfully", roomResponse(*room))
}

// Create handles POST /api/rooms.
func (h *RoomsHandler) Create(c echo.Context) error {
	var req dto.RoomRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)

	room, err := h.rooms.Create(c.Request().Context(), actor, req)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusCreated, "Room created successfully", roomResponse(*room))
}

// Update handles PUT /api/rooms/:id.
func (h *RoomsHandler) Update(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	var req dto.RoomRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)

	room, err := h.rooms.Update(c.Request().Context(), actor, id, req)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Room updated successfully", roomResponse(*room))
}

// Delete handles DELETE /api/rooms/:id.
func (h *RoomsHandler) Delete(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	if err := h.rooms.Delete(c.Request().Context(), id); err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Room deleted successfully", nil)
}

// BulkDelete handles POST /api/rooms/bulk-delete.
func (h *RoomsHandler) BulkDelete(c echo.Context) error {
	var req dto.BulkDeleteRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if _, err := h.rooms.BulkDelete(c.Request().Context(), req.IDs); err != nil {
		if errors.Is(err, apperror.ErrNothingDeleted) {
			return response.Fail(c, http.StatusNotFound, "No Rooms found to delete")
		}
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Rooms deleted successfully", nil)
}
