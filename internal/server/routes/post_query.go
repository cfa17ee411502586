package routes

import (
	"net/http"
	"time"

	"github.com/carelens-health/carelens/backend/internal/server/middleware"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// QueryHandler answers one analysis question through the engine
func QueryHandler(c echo.Context) error {
	type queryRequest struct {
		Query string `json:"query" validate:"required"`
	}

	type queryResponse struct {
		QueryID          string            `json:"query_id"`
		Query            string            `json:"query"`
		Answer           string            `json:"answer"`
		Citations        []common.Citation `json:"citations,omitempty"`
		Errors           []string          `json:"errors,omitempty"`
		ProcessingTimeMs float64           `json:"processing_time_ms"`
		Timestamp        string            `json:"timestamp"`
	}

	data := new(queryRequest)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid request body"})
	}

	queryID, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	ctx := c.Request().Context()
	eng := c.(*middleware.AppContext).App.Engine

	start := time.Now()
	result, err := eng.Run(ctx, data.Query)
	if err != nil {
		logger.Error("[Query] engine error", "query_id", queryID, "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": err.Error()})
	}

	return c.JSON(http.StatusOK, queryResponse{
		QueryID:          queryID,
		Query:            data.Query,
		Answer:           result.Answer,
		Citations:        result.Citations,
		Errors:           result.Errors,
		ProcessingTimeMs: float64(time.Since(start).Microseconds()) / 1000.0,
		Timestamp:        start.UTC().Format(time.RFC3339),
	})
}
