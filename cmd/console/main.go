package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/magnet-school/marks-console/api/swagger"
	"github.com/magnet-school/marks-console/internal/handler"
	"github.com/magnet-school/marks-console/internal/middleware"
	"github.com/magnet-school/marks-console/internal/repository"
	"github.com/magnet-school/marks-console/internal/service"
	"github.com/magnet-school/marks-console/internal/upstream"
	"github.com/magnet-school/marks-console/pkg/cache"
	"github.com/magnet-school/marks-console/pkg/config"
	"github.com/magnet-school/marks-console/pkg/database"
	"github.com/magnet-school/marks-console/pkg/logger"
	corsmiddleware "github.com/magnet-school/marks-console/pkg/middleware/cors"
	reqidmiddleware "github.com/magnet-school/marks-console/pkg/middleware/requestid"
)

// @title Marks Console API
// @version 1.0.0
// @description Server-side admin console for the school marks grid
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	// Sessions live in Redis, so the console cannot start without it.
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect redis", "error", err)
	}

	metrics := service.NewMetricsService()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.MarksTTL, logr, true)
	sessionRepo := repository.NewSessionRepository(redisClient, cfg.Grid.SessionTTL)

	var auditRecorder service.AuditRecorder
	var auditReader service.AuditReader
	if cfg.Database.Enabled {
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			logr.Sugar().Fatalw("failed to connect audit database", "error", err)
		}
		auditRepo := repository.NewAuditRepository(db)
		auditRecorder = auditRepo
		auditReader = auditRepo
	}

	backend := upstream.New(cfg.Upstream, logr)

	authSvc := service.NewAuthService(backend, sessionRepo, auditRecorder, nil, logr, cfg.JWT)
	filterSvc := service.NewFilterService(backend, cacheSvc, metrics, cfg.Cache.FiltersTTL, logr)
	marksSvc := service.NewMarksService(backend, cacheSvc, metrics, cfg.Cache.MarksTTL, logr)
	gridSvc := service.NewGridService(marksSvc, auditRecorder, cfg.Grid, logr)
	exportSvc := service.NewExportService(marksSvc, cfg.Export, logr)
	auditSvc := service.NewAuditService(auditReader)

	authHandler := handler.NewAuthHandler(authSvc, gridSvc)
	filterHandler := handler.NewFilterHandler(filterSvc)
	gridHandler := handler.NewGridHandler(gridSvc)
	editHandler := handler.NewEditHandler(gridSvc)
	settingsHandler := handler.NewSettingsHandler(authSvc, gridSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	auditHandler := handler.NewAuditHandler(auditSvc)
	metricsHandler := handler.NewMetricsHandler(metrics)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc), middleware.Session(authSvc))
	{
		authed.POST("/logout", authHandler.Logout)

		authed.GET("/filters", filterHandler.Metadata)

		authed.GET("/grid", gridHandler.View)
		authed.PUT("/grid/filters/:name", gridHandler.SetFilter)
		authed.DELETE("/grid/filters", gridHandler.ResetFilters)
		authed.PUT("/grid/page", gridHandler.SetPage)
		authed.PUT("/grid/page-size", gridHandler.SetPageSize)

		authed.POST("/grid/edit/:slno", editHandler.StartEdit)
		authed.PUT("/grid/edit/value", editHandler.SetEditValue)
		authed.POST("/grid/edit/save", editHandler.SaveEdit)
		authed.DELETE("/grid/edit", editHandler.CancelEdit)

		authed.PUT("/grid/bulk/:slno", editHandler.SetBulkInput)
		authed.POST("/grid/bulk/save", editHandler.BulkSave)
		authed.DELETE("/grid/bulk", editHandler.BulkReset)

		authed.GET("/settings/edit-mode", settingsHandler.GetEditMode)
		authed.PUT("/settings/edit-mode", settingsHandler.SetEditMode)

		authed.GET("/marks/export", exportHandler.Export)
		authed.GET("/audit/marks", auditHandler.Recent)
		authed.GET("/metrics/snapshot", metricsHandler.Snapshot)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
