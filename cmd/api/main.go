package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/octobees/rentroom/api/internal/auth"
	"github.com/octobees/rentroom/api/internal/config"
	"github.com/octobees/rentroom/api/internal/database"
	"github.com/octobees/rentroom/api/internal/handler"
	"github.com/octobees/rentroom/api/internal/logger"
	middlewarepkg "github.com/octobees/rentroom/api/internal/middleware"
	"github.com/octobees/rentroom/api/internal/notify"
	"github.com/octobees/rentroom/api/internal/repository"
	"github.com/octobees/rentroom/api/internal/router"
	"github.com/octobees/rentroom/api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, "rentroom-api")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync() //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, database.PoolConfig{
		DSN:      cfg.DatabaseURL,
		MaxConns: cfg.DBMaxConns,
		MinConns: cfg.DBMinConns,
	})
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer pool.Close()

	if cfg.SeedOnStart {
		if err := database.Migrate(ctx, pool); err != nil {
			log.Fatal("failed to migrate database", zap.Error(err))
		}
		if err := database.Seed(ctx, pool, cfg.SeedPassword); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
		log.Info("database migrated and seeded")
	}

	broadcaster, closeBroadcaster, err := newBroadcaster(ctx, cfg.Notify)
	if err != nil {
		log.Fatal("failed to set up notifications", zap.String("driver", cfg.Notify.Driver), zap.Error(err))
	}
	defer closeBroadcaster()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	roomsRepo := repository.NewPGXRoomsRepository(pool)
	roomTypesRepo := repository.NewPGXRoomTypesRepository(pool)
	tenantsRepo := repository.NewPGXTenantsRepository(pool)
	notificationsRepo := repository.NewPGXNotificationsRepository(pool)
	lookup := repository.NewPGXLookup(pool)

	notificationService := service.NewNotificationService(notificationsRepo, broadcaster, log.Named("notifications"))
	authService := service.NewAuthService(usersRepo, jwtManager, notificationService)
	userService := service.NewUserService(usersRepo)
	roomService := service.NewRoomService(roomsRepo, lookup, notificationService)
	roomTypeService := service.NewRoomTypeService(roomTypesRepo, lookup)
	tenantService := service.NewTenantService(tenantsRepo, lookup, notificationService, cfg.PhoneRegion)

	httpLog := log.Named("http")
	handlers := router.Handlers{
		Auth:          handler.NewAuthHandler(authService, jwtManager, httpLog),
		Users:         handler.NewUserAdminHandler(userService, httpLog),
		Rooms:         handler.NewRoomsHandler(roomService, httpLog),
		RoomTypes:     handler.NewRoomTypesHandler(roomTypeService, httpLog),
		Tenants:       handler.NewTenantsHandler(tenantService, httpLog),
		Notifications: handler.NewNotificationsHandler(notificationService, httpLog),
	}

	metrics := middlewarepkg.NewMetrics()

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(httpLog))
	e.Use(metrics.Middleware())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{
		AllowOrigins: cfg.AllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderXRequestID},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
	}))

	router.Register(e, cfg, jwtManager, pool, metrics, handlers)

	serverErr := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("port", cfg.Port), zap.String("notify_driver", cfg.Notify.Driver))
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", zap.Error(err))
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// newBroadcaster picks the realtime push channel for stored notifications.
func newBroadcaster(ctx context.Context, cfg config.NotifyConfig) (notify.Broadcaster, func(), error) {
	switch cfg.Driver {
	case config.NotifyDriverRedis:
		b, err := notify.NewRedisBroadcaster(cfg.RedisURL, cfg.ChannelPrefix)
		if err != nil {
			return nil, nil, err
		}
		if err := b.Ping(ctx); err != nil {
			_ = b.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return b, func() { _ = b.Close() }, nil
	case config.NotifyDriverWebhook:
		b, err := notify.NewWebhookBroadcaster(nil, cfg.WebhookURL)
		if err != nil {
			return nil, nil, err
		}
		return b, func() {}, nil
	default:
		return notify.Noop{}, func() {}, nil
	}
}
