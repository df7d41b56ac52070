package pkg

import (
	"context"
	"errors"
	"net/http"
	"time"

	"FoodExpiryTracker/internal/apperr"
	"FoodExpiryTracker/internal/auth"
	"FoodExpiryTracker/internal/config"
	"FoodExpiryTracker/internal/food"
	"FoodExpiryTracker/internal/notification"
	"FoodExpiryTracker/pkg/middleware"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var EchoModules = fx.Module("echo",
	fx.Provide(config.NewLogConfig),
	fx.Provide(config.NewLogger),
	fx.Provide(config.NewServerConfig),
	fx.Provide(config.NewAuthConfig),
	fx.Provide(config.NewMailConfig),
	fx.Provide(config.NewNotifyConfig),
	fx.Provide(config.NewMongoDBConfig),
	fx.Provide(config.NewMongoDBClient),
	fx.Provide(config.NewEmailService),
	fx.Provide(NewEchoServer),

	fx.Provide(auth.NewUserRepository),
	fx.Provide(auth.NewJWTManager),
	fx.Provide(auth.NewUserService),
	fx.Provide(auth.NewAuthHandler),

	fx.Provide(fx.Annotate(food.NewRepository, fx.As(fx.Self()), fx.As(new(food.Store)), fx.As(new(notification.ItemStore)))),
	fx.Provide(food.NewService),
	fx.Provide(food.NewHandler),

	fx.Provide(fx.Annotate(notification.NewEmailMailer, fx.As(new(notification.Mailer)))),
	fx.Provide(notification.NewLedgerRepository),
	fx.Provide(notification.NewLedger),
	fx.Provide(notification.NewService),
	fx.Provide(notification.NewScheduler),
	fx.Provide(notification.NewHandler),

	fx.Invoke(config.SyncLoggerOnStop),
	fx.Invoke(EnsureIndexes),
	fx.Invoke(RegisterRoutes),
	fx.Invoke(notification.RegisterScheduler),
)

func NewEchoServer(lc fx.Lifecycle, cfg *config.ServerConfig, logger *zap.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	middleware.SetupMiddleware(e, cfg, logger)

	addr := cfg.Address()
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("server running", zap.String("addr", addr))
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("failed to start the server", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

// EnsureIndexes creates the indexes every repository relies on before the server
// accepts requests.
func EnsureIndexes(lc fx.Lifecycle, users *auth.UserRepository, items *food.Repository, ledger *notification.LedgerRepository, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := users.EnsureIndexes(ctx, logger); err != nil {
				return err
			}
			if err := items.EnsureIndexes(ctx, logger); err != nil {
				return err
			}
			return ledger.EnsureIndexes(ctx, logger)
		},
	})
}

func RegisterRoutes(
	e *echo.Echo,
	db *config.MongoDBClient,
	tokens *auth.JWTManager,
	authHandler *auth.AuthHandler,
	foodHandler *food.Handler,
	notificationHandler *notification.Handler,
	logger *zap.Logger,
) {
	jwt := middleware.JWTMiddleware(tokens, logger)

	e.GET("/api/health", healthCheck(db))

	a := e.Group("/api/auth")
	a.POST("/register", authHandler.Register)
	a.POST("/login", authHandler.Login)
	a.GET("/profile", authHandler.Profile, jwt)

	items := e.Group("/api/food", jwt)
	items.GET("", foodHandler.GetAllItems)
	items.GET("/:id", foodHandler.GetItem)
	items.POST("", foodHandler.AddItem)
	items.PUT("/:id", foodHandler.UpdateItem)
	items.DELETE("/:id", foodHandler.DeleteItem)

	e.GET("/api/run-daily-expiry-check", notificationHandler.RunDailyExpiryCheck)
	e.GET("/api/notifications/status", notificationHandler.Status)
	e.POST("/api/sendEmail", notificationHandler.SendEmail, jwt)
	e.POST("/api/notifications/run-at", notificationHandler.ScheduleRun, jwt)
}

type pinger interface {
	Ping(ctx context.Context) error
}

func healthCheck(db pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, apperr.ErrorResponse{Error: "database unavailable"})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	}
}
