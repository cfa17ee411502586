package server

import (
	"net/http"
	"time"

	"github.com/carelens-health/carelens/backend/internal/server/middleware"
	"github.com/carelens-health/carelens/backend/internal/server/routes"

	"github.com/labstack/echo/v4"
)

const apiVersion = "1.0.0"

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":    "healthy",
			"version":   apiVersion,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	apiRoutes := e.Group("/api/v1", middleware.AuthMiddleware)

	// Analysis routes
	apiRoutes.POST("/query", routes.QueryHandler)

	// Dataset routes
	apiRoutes.GET("/datasets", routes.GetDatasetsHandler)
	apiRoutes.POST("/datasets", routes.CreateDatasetHandler)
	apiRoutes.GET("/datasets/:id", routes.GetDatasetHandler)
	apiRoutes.DELETE("/datasets/:id", routes.DeleteDatasetHandler)

	// Facility routes
	apiRoutes.GET("/facilities", routes.GetFacilitiesHandler)
	apiRoutes.GET("/facilities/:id", routes.GetFacilityHandler)
}
