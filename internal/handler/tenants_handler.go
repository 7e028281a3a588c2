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

// TenantsHandler exposes the /api/tenants endpoints.
type TenantsHandler struct {
	tenants *service.TenantService
	log     *zap.Logger
}

// NewTenantsHandler constructs a TenantsHandler.
func NewTenantsHandler(tenants *service.TenantService, log *zap.Logger) *TenantsHandler {
	return &TenantsHandler{tenants: tenants, log: log}
}

// List handles GET /api/tenants.
func (h *TenantsHandler) List(c echo.Context) error {
	page, err := h.tenants.List(c.Request().Context(), listRequest(c))
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Paginated(c, "Get all tenants successfully", page, mapAll(page.Items, tenantResponse))
}

// Find handles GET /api/tenants/:id.
func (h *TenantsHandler) Find(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	tenant, err := h.tenants.Find(c.Request().Context(), id)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Get a tenant detail successfully", tenantResponse(*tenant))
}

// Create handles POST /api/tenants.
func (h *TenantsHandler) Create(c echo.Context) error {
	var req dto.TenantRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)

	tenant, err := h.tenants.Create(c.Request().Context(), actor, req)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusCreated, "Tenant created successfully", tenantResponse(*tenant))
}

// Update handles PUT /api/tenants/:id.
func (h *TenantsHandler) Update(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	var req dto.TenantRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	tenant, err := h.tenants.Update(c.Request().Context(), id, req)
	if err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Tenant updated successfully", tenantResponse(*tenant))
}

// Delete handles DELETE /api/tenants/:id.
func (h *TenantsHandler) Delete(c echo.Context) error {
	id, ok, err := pathID(c)
	if !ok {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)

	if err := h.tenants.Delete(c.Request().Context(), actor, id); err != nil {
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Tenant deleted successfully", nil)
}

// BulkDelete handles POST /api/tenants/bulk-delete.
func (h *TenantsHandler) BulkDelete(c echo.Context) error {
	var req dto.BulkDeleteRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}
	actor, _ := middleware.IdentityFrom(c)

	if _, err := h.tenants.BulkDelete(c.Request().Context(), actor, req.IDs); err != nil {
		if errors.Is(err, apperror.ErrNothingDeleted) {
			return response.Fail(c, http.StatusNotFound, "No Tenants found to delete")
		}
		return RespondError(c, h.log, err)
	}
	return response.Success(c, http.StatusOK, "Tenants deleted successfully", nil)
}
