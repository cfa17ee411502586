package routes

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/carelens-health/carelens/backend/internal/queue"
	"github.com/carelens-health/carelens/backend/internal/server/middleware"
	"github.com/carelens-health/carelens/backend/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
)

// DeleteDatasetHandler queues the purge of a dataset. The worker owns
// the actual deletes so the request returns without waiting on S3.
func DeleteDatasetHandler(c echo.Context) error {
	type deleteDatasetParams struct {
		ID int64 `param:"id" validate:"required,numeric"`
	}

	type deleteDatasetResponse struct {
		Message string `json:"message"`
	}

	params := new(deleteDatasetParams)
	if err := c.Bind(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteDatasetResponse{
			Message: "Invalid request params",
		})
	}
	if err := c.Validate(params); err != nil {
		return c.JSON(http.StatusBadRequest, deleteDatasetResponse{
			Message: "Invalid request params",
		})
	}

	ctx := c.Request().Context()
	st := c.(*middleware.AppContext).App.Store

	dataset, err := st.GetDataset(ctx, params.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return c.JSON(http.StatusNotFound, deleteDatasetResponse{
				Message: "Dataset not found",
			})
		}
		logger.Error("Failed to get dataset", "dataset_id", params.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDatasetResponse{
			Message: "Internal server error",
		})
	}

	queueData := queue.DatasetPurgeMsg{
		Message:   "Dataset deletion requested",
		DatasetID: dataset.ID,
		ObjectKey: dataset.ObjectKey,
	}
	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		logger.Error("Failed to marshal purge message", "dataset_id", dataset.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDatasetResponse{
			Message: "Internal server error",
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	if err := queue.PublishFIFO(ch, queue.QueueDatasetPurge, msgBytes); err != nil {
		logger.Error("Failed to publish to dataset_purge", "dataset_id", dataset.ID, "err", err)
		return c.JSON(http.StatusInternalServerError, deleteDatasetResponse{
			Message: "Internal server error",
		})
	}

	return c.JSON(http.StatusOK, deleteDatasetResponse{
		Message: "Dataset deletion queued",
	})
}
