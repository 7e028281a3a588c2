package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/response"
	"github.com/octobees/rentroom/api/internal/service"
)

// UserAdminHandler exposes administrative user management endpoints.
type UserAdminHandler struct {
	users *service.UserService
	log   *zap.Logger
}

// NewUserAdminHandler constructs a handler instance.
func NewUserAdminHandler(users *service.UserService, log *zap.Logger) *UserAdminHandler {
	return &UserAdminHandler{users: users, log: log}
}

// List returns all users.
func (h *UserAdminHandler) List(c echo.Context) error {
	records, err := h.users.ListUsers(c.Request().Context())
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Get all users successfully", records)
}

// Create provisions a new user.
func (h *UserAdminHandler) Create(c echo.Context) error {
	var req dto.CreateUserRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	user, err := h.users.CreateUser(c.Request().Context(), req)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusCreated, "User created successfully", user)
}

// Update modifies an existing user.
func (h *UserAdminHandler) Update(c echo.Context) error {
	var req dto.UpdateUserRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	user, err := h.users.UpdateUser(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidUserID) {
			return response.Fail(c, http.StatusBadRequest, "Invalid user id.")
		}
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "User updated successfully", user)
}

// Delete removes a user.
func (h *UserAdminHandler) Delete(c echo.Context) error {
	if err := h.users.DeleteUser(c.Request().Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrInvalidUserID) {
			return response.Fail(c, http.StatusBadRequest, "Invalid user id.")
		}
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "User deleted successfully", nil)
}
