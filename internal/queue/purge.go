package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/carelens-health/carelens/backend/internal/storage"
	"github.com/carelens-health/carelens/backend/pkg/leaselock"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	pgxstore "github.com/carelens-health/carelens/backend/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DatasetPurgeMsg asks the worker to remove a dataset, its facilities
// and its uploaded files.
type DatasetPurgeMsg struct {
	Message   string `json:"message"`
	DatasetID int64  `json:"dataset_id"`
	ObjectKey string `json:"object_key"`
}

func ProcessDatasetPurge(
	ctx context.Context,
	s3Client *awss3.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	var data DatasetPurgeMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	st := pgxstore.NewFacilityStorage(conn)

	start := time.Now()
	lockClient := leaselock.New(conn)
	lease, err := lockClient.Acquire(ctx, fmt.Sprintf("dataset:%d", data.DatasetID), leaselock.Options{
		TTL:         10 * time.Minute,
		RenewEvery:  4 * time.Minute,
		Wait:        true,
		TokenPrefix: fmt.Sprintf("purge/%d/", data.DatasetID),
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	ctx = lease.Context

	if err := st.DeleteFacilitiesByDataset(ctx, data.DatasetID); err != nil {
		return err
	}
	if err := st.DeleteDataset(ctx, data.DatasetID); err != nil {
		return err
	}

	if data.ObjectKey != "" {
		folder := path.Dir(data.ObjectKey)
		if err := storage.DeleteFolder(ctx, s3Client, folder); err != nil {
			logger.Warn("[Queue] Failed to delete dataset files from S3", "dataset_id", data.DatasetID, "folder", folder, "err", err)
		}
	}

	logger.Info("[Queue] Dataset purge completed", "dataset_id", data.DatasetID, "duration_sec", time.Since(start).Seconds())

	return nil
}
