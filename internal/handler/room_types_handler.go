package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/response"
	"github.com/octobees/rentroom/api/internal/service"
)

// RoomTypesHandler exposes the /api/room-types endpoints.
type RoomTypesHandler struct {
	types *service.RoomTypeService
	log   *zap.Logger
}

// NewRoomTypesHandler constructs a RoomTypesHandler.
func NewRoomTypesHandler(types *service.RoomTypeService, log *zap.Logger) *RoomTypesHandler {
	return &RoomTypesHandler{types: types, log: log}
}

func (h *RoomTypesHandler) List(c echo.Context) error {
	page, err := h.types.List(c.Request().Context(), listRequest(c))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Paginated(c, "Get all room types successfully", page, mapAll(page.Items, roomTypeResponse))
}

func (h *RoomTypesHandler) Find(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	rt, err := h.types.Find(c.Request().Context(), id)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Get room type successfully", roomTypeResponse(*rt))
}

func (h *RoomTypesHandler) Create(c echo.Context) error {
	var req dto.RoomTypeRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	rt, err := h.types.Create(c.Request().Context(), req)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusCreated, "Room type created successfully", roomTypeResponse(*rt))
}

func (h *RoomTypesHandler) Update(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	var req dto.RoomTypeRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	rt, err := h.types.Update(c.Request().Context(), id, req)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Room type updated successfully", roomTypeResponse(*rt))
}

func (h *RoomTypesHandler) Delete(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	if err := h.types.Delete(c.Request().Context(), id); err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Room type deleted successfully", nil)
}

func (h *RoomTypesHandler) BulkDelete(c echo.Context) error {
	var req dto.BulkDeleteRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	if _, err := h.types.BulkDelete(c.Request().Context(), req.IDs); err != nil {
		if errors.Is(err, apperror.ErrNothingDeleted) {
			return response.Fail(c, http.StatusNotFound, "No Room types found to delete")
		}
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Deleted Multiple Room types successfully", nil)
}
