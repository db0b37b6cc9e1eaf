package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/teamflow/auth-service/internal/config"
	"github.com/teamflow/auth-service/internal/handler"
	"github.com/teamflow/auth-service/internal/repository"
	"github.com/teamflow/auth-service/internal/service"
	"github.com/teamflow/auth-service/internal/store"
	"github.com/teamflow/auth-service/pkg/observability"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	infra  Infrastructure
	config *config.Config
	router *gin.Engine
	server *http.Server
}

func NewApp(infra Infrastructure, cfg *config.Config) *App {
	logger := infra.Logger()
	repos := repository.NewRepositories(infra.Postgres())

	// A nil state store keeps signup/login/logout working while the
	// stateful guards quietly stand down.
	var stateStore store.StateStore
	events := service.NewNoopEventSink()
	if infra.Redis() != nil {
		stateStore = store.NewRedisStore(infra.Redis())
		events = service.NewRedisEventSink(infra.Redis(), logger)
	}

	metrics, err := service.NewAuthMetrics()
	if err != nil {
		logger.Warn("Failed to register auth metrics", zap.Error(err))
	}

	tokens := service.NewTokenService(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.Expiry.Duration,
		stateStore,
		logger,
	)
	lockout := service.NewLockoutGuard(
		stateStore,
		cfg.Security.LockoutThreshold,
		cfg.Security.LockoutWindow.Duration,
		logger,
	)
	resets := service.NewPasswordResetFlow(stateStore, repos.User, cfg.Security.BCryptCost, logger)
	resolver := service.NewOAuthResolver(repos.User, logger)
	verifier := service.NewProviderVerifier(logger)
	rateLimiter := service.NewRateLimiter(infra.Redis())
	healthChecker := NewHealthChecker(infra)

	authService := service.NewAuthService(
		repos.User,
		repos.EmailVerification,
		tokens,
		lockout,
		resets,
		resolver,
		events,
		metrics,
		cfg.Security.BCryptCost,
		logger,
	)

	authHandler := handler.NewAuthHandler(authService, verifier)

	router := gin.Default()
	router.Use(otelgin.Middleware("auth-service"))
	router.Use(handler.LoggerMiddleware(logger))
	router.Use(handler.CORSMiddleware(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))

	setupRoutes(router, cfg, authHandler, authService, rateLimiter, healthChecker, infra.MetricsHandler())

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Duration,
		WriteTimeout: cfg.Server.WriteTimeout.Duration,
	}

	return &App{
		infra:  infra,
		config: cfg,
		router: router,
		server: srv,
	}
}

func (a *App) Router() *gin.Engine {
	return a.router
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	authService service.AuthService,
	rateLimiter *service.RateLimiter,
	healthChecker *HealthChecker,
	metricsHandler http.Handler,
) {
	router.GET("/metrics", observability.PrometheusHandler(metricsHandler))
	router.GET("/health", healthChecker.Handler)

	rateLimit := handler.RateLimitMiddleware(
		rateLimiter,
		cfg.Security.RateLimitRequests,
		cfg.Security.RateLimitWindow.Duration,
		handler.IPBasedKey,
	)

	api := router.Group("/api/v1")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", rateLimit, authHandler.Signup)
			auth.POST("/login", rateLimit, authHandler.Login)
			auth.POST("/google", rateLimit, authHandler.GoogleLogin)
			auth.POST("/microsoft", rateLimit, authHandler.MicrosoftLogin)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/verify-email", authHandler.VerifyEmail)
			auth.POST("/forgot-password", rateLimit, authHandler.ForgotPassword)
			auth.POST("/reset-password", authHandler.ResetPassword)
			auth.GET("/me", handler.AuthMiddleware(authService), authHandler.GetMe)
			auth.PUT("/me/locale", handler.AuthMiddleware(authService), authHandler.UpdateLocale)
		}
	}
}

func (a *App) Run(ctx context.Context) error {
	errChan := make(chan error, 1)

	go func() {
		a.infra.Logger().Info("Application starting",
			zap.String("host", a.config.Server.Host),
			zap.String("port", a.config.Server.Port),
		)

		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.infra.Logger().Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case err := <-errChan:
		a.infra.Logger().Error("Application failed to start", zap.Error(err))
		serverErr = err
	case <-ctx.Done():
		a.infra.Logger().Info("Application stopped by context")
	}

	if err := a.Shutdown(); err != nil {
		a.infra.Logger().Error("Shutdown error", zap.Error(err))
		if serverErr != nil {
			return errors.Join(serverErr, err)
		}
		return err
	}

	return serverErr
}

func (a *App) Shutdown() error {
	a.infra.Logger().Info("Application shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	errs := make(chan error, 2)

	go func() {
		errs <- a.server.Shutdown(ctx)
	}()

	go func() {
		errs <- a.infra.Shutdown(ctx)
	}()

	err := errors.Join(<-errs, <-errs)
	if err != nil {
		a.infra.Logger().Error("Shutdown failed", zap.Error(err))
		return err
	}

	a.infra.Logger().Info("Application exited successfully")
	return nil
}
