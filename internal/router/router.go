// Package router wires handlers and middleware into the Gin engine.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "worklog/internal/docs" // Import swagger docs
	"worklog/internal/handlers"
	"worklog/internal/logger"
	"worklog/internal/metrics"
	"worklog/internal/middleware"
	"worklog/internal/services"
)

// Pinger reports database reachability for the health check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Logs           services.DailyLogServicer
	Aggregation    services.AggregationServicer
	Reports        services.ReportServicer
	Audit          services.AuditServicer
	DB             Pinger
	MetricsEnabled bool
	MetricsAPIKey  string
}

// New builds the engine with every route mounted.
func New(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/api/health", health(deps.DB))
	if deps.MetricsEnabled {
		router.GET("/metrics", middleware.APIKeyAuth(deps.MetricsAPIKey), gin.WrapH(metrics.Handler()))
	}

	logHandler := handlers.NewLogHandler(deps.Logs, deps.Aggregation)
	reportHandler := handlers.NewReportHandler(deps.Reports)
	auditHandler := handlers.NewAuditHandler(deps.Audit)

	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware())

	logs := v1.Group("/logs")
	logs.POST("", logHandler.UpsertLog)
	logs.GET("", logHandler.ListLogs)
	logs.POST("/daily", logHandler.UpsertDailyLog)
	logs.GET("/daily", logHandler.CurrentWeekLogs)
	logs.GET("/aggregate", logHandler.AggregateLogs)
	logs.PUT("/:id", logHandler.UpdateLog)

	reports := v1.Group("/reports")
	reports.POST("", reportHandler.CreateReport)
	reports.GET("", reportHandler.ListReports)
	reports.PUT("", reportHandler.UpdateReport)
	reports.POST("/submit-weekly", reportHandler.SubmitWeekly)
	reports.GET("/export", reportHandler.ExportReports)
	reports.GET("/:id", reportHandler.GetReport)

	v1.GET("/audit-logs", auditHandler.ListAuditLogs)

	return router
}

func health(db Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.Get().Warnw("health check failed", "error", err)
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
