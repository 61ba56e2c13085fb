// Package routes wires the HTTP API.
package routes

import (
	"net/http"

	"ai-config-console/internal/api/handlers"
	"ai-config-console/internal/api/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handlers collects the handler set the router mounts.
type Handlers struct {
	Provider   *handlers.ProviderHandler
	Model      *handlers.ModelHandler
	Prompt     *handlers.PromptHandler
	Playground *handlers.PlaygroundHandler
	Dashboard  *handlers.DashboardHandler
}

// Setup builds the gin engine with all routes and middleware mounted.
func Setup(h Handlers, corsOrigins []string, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.NewRecoveryMiddleware(logger).Recover())
	router.Use(middleware.NewLoggingMiddleware(logger).Log())
	router.Use(middleware.NewCORSMiddleware(corsOrigins).Handle())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")
	{
		providers := v1.Group("/providers")
		{
			providers.GET("", h.Provider.List)
			providers.POST("", h.Provider.Create)
			providers.PUT("/:id", h.Provider.Update)
			providers.PUT("/:id/credential", h.Provider.SetCredential)
			providers.DELETE("/:id", h.Provider.Delete)
		}

		models := v1.Group("/models")
		{
			models.GET("", h.Model.List)
			models.POST("", h.Model.Create)
			models.PUT("/reorder", h.Model.Reorder)
			models.PUT("/:id/priority", h.Model.SetPriority)
			models.POST("/:id/move", h.Model.Move)
		}

		prompts := v1.Group("/prompts")
		{
			prompts.GET("", h.Prompt.List)
			prompts.POST("", h.Prompt.Create)
			prompts.GET("/diff", h.Prompt.Diff)
			prompts.GET("/:id", h.Prompt.Get)
			prompts.PUT("/:id", h.Prompt.Update)
			prompts.DELETE("/:id", h.Prompt.Delete)
			prompts.POST("/:id/activate", h.Prompt.Activate)
			prompts.POST("/:id/deactivate", h.Prompt.Deactivate)
			prompts.POST("/:id/archive", h.Prompt.Archive)
			prompts.POST("/:id/clone", h.Prompt.Clone)
		}

		playground := v1.Group("/playground")
		{
			playground.POST("/execute", h.Playground.Execute)
			playground.POST("/compare", h.Playground.Compare)
		}

		dashboard := v1.Group("/dashboard")
		{
			dashboard.GET("/summary", h.Dashboard.Summary)
			dashboard.GET("/daily", h.Dashboard.Daily)
			dashboard.GET("/by-model", h.Dashboard.ByModel)
		}
	}

	return router
}
