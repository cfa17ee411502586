package routes

import (
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/carelens-health/carelens/backend/internal/queue"
	"github.com/carelens-health/carelens/backend/internal/server/middleware"
	"github.com/carelens-health/carelens/backend/internal/storage"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"

	"github.com/labstack/echo/v4"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// CreateDatasetHandler accepts a facility CSV from multipart/form-data,
// stores it and queues the ingest
func CreateDatasetHandler(c echo.Context) error {
	type createDatasetResponse struct {
		Message string         `json:"message"`
		Dataset *store.Dataset `json:"dataset,omitempty"`
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, createDatasetResponse{
			Message: "Invalid request body",
		})
	}
	uploads := form.File["file"]
	if len(uploads) == 0 {
		return c.JSON(http.StatusBadRequest, createDatasetResponse{
			Message: "No file provided",
		})
	}
	file := uploads[0]

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(file.Filename), "."))
	if ext != "csv" {
		return c.JSON(http.StatusBadRequest, createDatasetResponse{
			Message: "Only CSV datasets are supported",
		})
	}

	name := c.FormValue("name")
	if name == "" {
		name = file.Filename
	}

	src, err := file.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, createDatasetResponse{
			Message: "Could not open file",
		})
	}
	defer src.Close()

	ctx := c.Request().Context()
	s3Client := c.(*middleware.AppContext).App.S3

	uid, err := gonanoid.New()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, createDatasetResponse{
			Message: "Internal server error",
		})
	}
	key, err := storage.PutFile(
		ctx,
		s3Client,
		fmt.Sprintf("datasets/%s", uid),
		file.Filename,
		"data",
		src,
	)
	if err != nil {
		logger.Error("Failed to upload dataset file", "err", err)
		return c.JSON(http.StatusInternalServerError, createDatasetResponse{
			Message: "Internal server error",
		})
	}

	st := c.(*middleware.AppContext).App.Store
	dataset, err := st.CreateDataset(ctx, name, key)
	if err != nil {
		logger.Error("Failed to create dataset", "err", err)
		return c.JSON(http.StatusInternalServerError, createDatasetResponse{
			Message: "Internal server error",
		})
	}

	queueData := queue.DatasetIngestMsg{
		Message:   "Dataset uploaded",
		DatasetID: dataset.ID,
		ObjectKey: dataset.ObjectKey,
	}
	msgBytes, err := json.Marshal(queueData)
	if err != nil {
		logger.Error("Failed to marshal ingest message", "dataset_id", dataset.ID, "err", err)
		return c.JSON(http.StatusOK, createDatasetResponse{
			Message: "Dataset created, ingest not queued",
			Dataset: dataset,
		})
	}

	ch := c.(*middleware.AppContext).App.Queue
	err = queue.PublishFIFO(ch, queue.QueueFacilityIngest, msgBytes)
	if err != nil {
		logger.Error("Failed to publish to facility_ingest", "dataset_id", dataset.ID, "err", err)
	}

	return c.JSON(http.StatusOK, createDatasetResponse{
		Message: "Dataset created successfully",
		Dataset: dataset,
	})
}
