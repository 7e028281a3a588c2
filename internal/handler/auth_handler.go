package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/apperror"
	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/dto"
	"github.com/octobees/rentroom/api/internal/middleware"
	"github.com/octobees/rentroom/api/internal/response"
	"github.com/octobees/rentroom/api/internal/service"
)

// AuthHandler exposes authentication endpoints.
type AuthHandler struct {
	authService *service.AuthService
	tokenTTL    int64
	log         *zap.Logger
}

// NewAuthHandler constructs an AuthHandler. jwtManager only supplies the
// token lifetime reported to clients.
func NewAuthHandler(authService *service.AuthService, jwtManager *auth.JWTManager, log *zap.Logger) *AuthHandler {
	h := &AuthHandler{authService: authService, log: log}
	if jwtManager != nil {
		h.tokenTTL = int64(jwtManager.TTL().Seconds())
	}
	return h
}

// Login handles POST /api/auth/login requests.
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if ok, err := bindJSON(c, &req); !ok {
		return err
	}

	req.Email = strings.TrimSpace(req.Email)
	errs := apperror.FieldErrors{}
	if req.Email == "" {
		errs.Add("email", "The email field is required.")
	}
	if req.Password == "" {
		errs.Add("password", "The password field is required.")
	}
	if len(errs) > 0 {
		return response.Invalid(c, errs.Error(), errs)
	}

	token, identity, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return RespondError(c, h.log, err)
	}

	return response.Success(c, http.StatusOK, "Login successfully", dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   h.tokenTTL,
		User:        identityView(identity),
	})
}

// Me handles GET /api/auth/me and echoes the identity carried by the token.
func (h *AuthHandler) Me(c echo.Context) error {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return response.Fail(c, http.StatusUnauthorized, response.MessageUnauthorized)
	}
	return response.Success(c, http.StatusOK, "Get current user successfully", identityView(identity))
}

func identityView(id auth.Identity) dto.IdentityView {
	view := dto.IdentityView{
		ID:          id.Subject,
		Email:       id.Email,
		Roles:       id.Roles,
		Permissions: id.Permissions,
	}
	if view.Roles == nil {
		view.Roles = []string{}
	}
	if view.Permissions == nil {
		view.Permissions = []string{}
	}
	return view
}
