package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/murdoch-its/complaints-api/api/swagger"
	"github.com/murdoch-its/complaints-api/internal/handler"
	"github.com/murdoch-its/complaints-api/internal/mailer"
	"github.com/murdoch-its/complaints-api/internal/middleware"
	"github.com/murdoch-its/complaints-api/internal/models"
	"github.com/murdoch-its/complaints-api/internal/otp"
	"github.com/murdoch-its/complaints-api/internal/repository"
	"github.com/murdoch-its/complaints-api/internal/service"
	"github.com/murdoch-its/complaints-api/pkg/cache"
	"github.com/murdoch-its/complaints-api/pkg/config"
	"github.com/murdoch-its/complaints-api/pkg/database"
	"github.com/murdoch-its/complaints-api/pkg/logger"
	corsmiddleware "github.com/murdoch-its/complaints-api/pkg/middleware/cors"
	reqidmiddleware "github.com/murdoch-its/complaints-api/pkg/middleware/requestid"
	"github.com/murdoch-its/complaints-api/pkg/storage"
)

// @title Murdoch Complaints API
// @version 1.0.0
// @description Complaint ticket portal backend for Murdoch University ITS
// @BasePath /v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	// Redis is preferred for OTP storage so codes survive restarts and are
	// shared across replicas; a single-process deployment falls back to the
	// in-memory store.
	var codes otp.Store
	if redisClient, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Sugar().Warnw("redis unavailable, using in-memory otp store", "error", err)
		codes = otp.NewMemoryStore(cfg.OTP.TTL)
	} else {
		defer redisClient.Close() //nolint:errcheck
		codes = otp.NewRedisStore(redisClient, cfg.OTP.TTL)
	}

	uploads, err := storage.NewLocalStorage(cfg.Uploads.Dir)
	if err != nil {
		logr.Sugar().Fatalw("failed to prepare uploads storage", "error", err)
	}

	notifier := mailer.NewAsyncNotifier(mailer.NewSMTPMailer(cfg.SMTP), cfg.Mailer, logr)
	notifier.Start(context.Background())
	defer notifier.Stop()

	validate := validator.New()

	accountRepo := repository.NewAccountRepository(db)
	complainantRepo := repository.NewComplainantRepository(db)
	ticketRepo := repository.NewTicketRepository(db)

	metricsSvc := service.NewMetricsService()
	accountSvc := service.NewAccountService(accountRepo, validate, logr)
	complainantSvc := service.NewComplainantService(complainantRepo, validate, logr)
	ticketSvc := service.NewTicketService(ticketRepo, uploads, notifier, validate, logr)
	authSvc := service.NewAuthService(accountRepo, codes, notifier, cfg.JWT, validate, logr)

	accountHandler := handler.NewAccountHandler(accountSvc)
	complainantHandler := handler.NewComplainantHandler(complainantSvc)
	ticketHandler := handler.NewTicketHandler(ticketSvc, metricsSvc, cfg.Uploads.MaxFileSizeBytes)
	authHandler := handler.NewAuthHandler(authSvc, metricsSvc)
	statusHandler := handler.NewStatusHandler()
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(cfg.APIPrefix)
	registerRoutes(v1, authSvc, accountHandler, complainantHandler, ticketHandler, authHandler, statusHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}

func registerRoutes(
	v1 *gin.RouterGroup,
	authSvc *service.AuthService,
	accounts *handler.AccountHandler,
	complainants *handler.ComplainantHandler,
	tickets *handler.TicketHandler,
	auth *handler.AuthHandler,
	status *handler.StatusHandler,
) {
	requireAuth := middleware.JWT(authSvc)
	optionalAuth := middleware.OptionalJWT(authSvc)
	adminOnly := middleware.RequireRoles(models.RoleAdmin)
	staffOnly := middleware.RequireRoles(models.RoleAdmin, models.RoleInvestigator)

	v1.GET("/status", status.Status)

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/login/confirm", auth.Confirm)
	}

	accountGroup := v1.Group("/accounts", requireAuth)
	{
		accountGroup.GET("", accounts.List)
		accountGroup.GET("/:id", accounts.Get)
		accountGroup.POST("", adminOnly, accounts.Create)
		accountGroup.PUT("/:id", accounts.Replace)
		accountGroup.PATCH("/:id", accounts.Update)
		accountGroup.DELETE("/:id", adminOnly, accounts.Delete)
	}

	complainantGroup := v1.Group("/complainants")
	{
		complainantGroup.POST("", optionalAuth, complainants.Create)
		complainantGroup.GET("", requireAuth, complainants.List)
		complainantGroup.GET("/:id", requireAuth, complainants.Get)
		complainantGroup.PUT("/:id", requireAuth, complainants.Replace)
		complainantGroup.PATCH("/:id", requireAuth, complainants.Update)
		complainantGroup.DELETE("/:id", requireAuth, complainants.Delete)
	}

	ticketGroup := v1.Group("/tickets")
	{
		ticketGroup.POST("", optionalAuth, tickets.Create)
		ticketGroup.POST("/upload/:ticketID", optionalAuth, tickets.Upload)
		ticketGroup.GET("/upload/:filename", requireAuth, tickets.Download)
		ticketGroup.GET("/export", requireAuth, staffOnly, tickets.Export)
		ticketGroup.GET("", requireAuth, tickets.List)
		ticketGroup.GET("/:id", requireAuth, tickets.Get)
		ticketGroup.PUT("/:id", requireAuth, tickets.Replace)
		ticketGroup.PATCH("/:id", requireAuth, tickets.Update)
		ticketGroup.DELETE("/:id", requireAuth, tickets.Delete)
	}
}
