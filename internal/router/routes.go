package router

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/config"
	"github.com/octobees/rentroom/api/internal/entity"
	"github.com/octobees/rentroom/api/internal/handler"
	middlewarepkg "github.com/octobees/rentroom/api/internal/middleware"
	"github.com/octobees/rentroom/api/internal/response"
)

// Pinger reports whether a backing dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth          *handler.AuthHandler
	Users         *handler.UserAdminHandler
	Rooms         *handler.RoomsHandler
	RoomTypes     *handler.RoomTypesHandler
	Tenants       *handler.TenantsHandler
	Notifications *handler.NotificationsHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, db Pinger, metrics *middlewarepkg.Metrics, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		if db != nil {
			if err := db.Ping(c.Request().Context()); err != nil {
				return response.Fail(c, http.StatusServiceUnavailable, "database unavailable")
			}
		}
		return response.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})
	if metrics != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
	}

	api := e.Group("/api")
	api.POST("/auth/login", handlers.Auth.Login, middlewarepkg.RateLimit(cfg.RateLimitLogin, middlewarepkg.ByIP))

	secured := api.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))
	secured.GET("/auth/me", handlers.Auth.Me)

	writeLimit := middlewarepkg.RateLimit(cfg.RateLimitWrite, middlewarepkg.ByIdentity)
	manageRooms := middlewarepkg.RequirePermission(entity.PermManageRooms)
	manageTenants := middlewarepkg.RequirePermission(entity.PermManageTenants)

	rooms := secured.Group("/rooms")
	rooms.GET("", handlers.Rooms.List)
	rooms.GET("/:id", handlers.Rooms.Find)
	rooms.POST("", handlers.Rooms.Create, manageRooms, writeLimit)
	rooms.PUT("/:id", handlers.Rooms.Update, manageRooms, writeLimit)
	rooms.DELETE("/:id", handlers.Rooms.Delete, manageRooms, writeLimit)
	rooms.POST("/bulk-delete", handlers.Rooms.BulkDelete, manageRooms, writeLimit)

	roomTypes := secured.Group("/room-types")
	roomTypes.GET("", handlers.RoomTypes.List)
	roomTypes.GET("/:id", handlers.RoomTypes.Find)
	roomTypes.POST("", handlers.RoomTypes.Create, manageRooms, writeLimit)
	roomTypes.PUT("/:id", handlers.RoomTypes.Update, manageRooms, writeLimit)
	roomTypes.DELETE("/:id", handlers.RoomTypes.Delete, manageRooms, writeLimit)
	roomTypes.POST("/bulk-delete", handlers.RoomTypes.BulkDelete, manageRooms, writeLimit)

	tenants := secured.Group("/tenants")
	tenants.GET("", handlers.Tenants.List)
	tenants.GET("/:id", handlers.Tenants.Find)
	tenants.POST("", handlers.Tenants.Create, manageTenants, writeLimit)
	tenants.PUT("/:id", handlers.Tenants.Update, manageTenants, writeLimit)
	tenants.DELETE("/:id", handlers.Tenants.Delete, manageTenants, writeLimit)
	tenants.POST("/bulk-delete", handlers.Tenants.BulkDelete, manageTenants, writeLimit)

	notifications := secured.Group("/notifications")
	notifications.GET("", handlers.Notifications.List)
	notifications.GET("/unread", handlers.Notifications.Unread)
	notifications.POST("/read-all", handlers.Notifications.MarkAllRead)
	notifications.PATCH("/:id/read", handlers.Notifications.MarkRead)
	notifications.DELETE("/:id", handlers.Notifications.Delete)

	if handlers.Users != nil {
		users := secured.Group("/users", middlewarepkg.RequirePermission(entity.PermManageUsers))
		users.GET("", handlers.Users.List)
		users.POST("", handlers.Users.Create, writeLimit)
		users.PUT("/:id", handlers.Users.Update, writeLimit)
		users.DELETE("/:id", handlers.Users.Delete, writeLimit)
	}
}
