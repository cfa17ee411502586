package routes

import (
	"errors"
	"net/http"

	"github.com/carelens-health/carelens/backend/internal/server/middleware"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

func GetDatasetsHandler(c echo.Context) error {
	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	datasets, err := st.ListDatasets(ctx)
	if err != nil {
		logger.Error("Failed to list datasets", "err", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Internal server error"})
	}

	return c.JSON(http.StatusOK, datasets)
}

func GetDatasetHandler(c echo.Context) error {
	type getDatasetParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type getDatasetResponse struct {
		Message string         `json:"message"`
		Dataset *store.Dataset `json:"dataset,omitempty"`
	}

	params := new(getDatasetParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDatasetResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, getDatasetResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	dataset, err := st.GetDataset(ctx, params.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, getDatasetResponse{
				Message: "Dataset not found",
			})
		}
		logger.Error("Failed to get dataset", "dataset_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, getDatasetResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, getDatasetResponse{
		Message: "Dataset found",
		Dataset: dataset,
	})
}
