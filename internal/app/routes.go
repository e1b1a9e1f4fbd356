package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"

	"github.com/RomanPilyushin/Privatbank/internal/config"
	"github.com/RomanPilyushin/Privatbank/internal/feed"
	"github.com/RomanPilyushin/Privatbank/internal/handlers"
	"github.com/RomanPilyushin/Privatbank/internal/service"
	"github.com/RomanPilyushin/Privatbank/internal/storage"
)

// Setup registers all routes on the given engine.
func Setup(r *gin.Engine, cfg config.Config, store *storage.Store) {
	r.GET("/", rootHandler(cfg))
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(302, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	api := r.Group("/api")

	// The accumulator lives as long as the process; its contents are gone on
	// restart.
	feedAcc := feed.NewAccumulator()
	taskSvc := service.NewTaskService(store.Tasks, feedAcc)
	taskHandler := handlers.NewTaskHandler(taskSvc, feedAcc)
	registerTaskRoutes(api, taskHandler)
}

func rootHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "Task Manager API",
			"version": cfg.App.Version,
			"env":     cfg.App.Env,
			"docs":    "/swagger/index.html",
			"spec":    "/swagger-doc.json",
			"health":  "/health",
			"api":     "/api",
		})
	}
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(500, gin.H{"error": err.Error()})
			return
		}
		c.Data(200, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerTaskRoutes(api *gin.RouterGroup, h *handlers.TaskHandler) {
	api.POST("/tasks", h.Create)
	api.GET("/tasks", h.List)
	api.GET("/tasks/rss", h.RSS)
	api.DELETE("/tasks/:id", h.Delete)
	api.PUT("/tasks/:id/status", h.UpdateStatus)
	api.PATCH("/tasks/:id", h.UpdateFields)
}
