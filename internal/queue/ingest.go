package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carelens-health/carelens/backend/internal/util"
	"github.com/carelens-health/carelens/backend/pkg/leaselock"
	"github.com/carelens-health/carelens/backend/pkg/loader"
	"github.com/carelens-health/carelens/backend/pkg/loader/csv"
	"github.com/carelens-health/carelens/backend/pkg/loader/s3"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
	pgxstore "github.com/carelens-health/carelens/backend/pkg/store/pgx"

	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"
)

// DatasetIngestMsg asks the worker to load one uploaded CSV into the
// facilities table.
type DatasetIngestMsg struct {
	Message   string `json:"message"`
	DatasetID int64  `json:"dataset_id"`
	ObjectKey string `json:"object_key"`
}

// Facilities per facility_embed message.
const embedBatchSize = 50

func ProcessDatasetIngest(
	ctx context.Context,
	s3Client *awss3.Client,
	ch *amqp091.Channel,
	conn *pgxpool.Pool,
	msg string,
) (err error) {
	var data DatasetIngestMsg
	if err = json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	st := pgxstore.NewFacilityStorage(conn)
	defer func() {
		if err == nil {
			return
		}
		updateCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if updateErr := st.UpdateDatasetStatus(updateCtx, data.DatasetID, store.DatasetStatusFailed, 0); updateErr != nil {
			logger.Warn("[Queue] Failed to mark dataset as failed", "dataset_id", data.DatasetID, "err", updateErr)
		}
	}()

	lockClient := leaselock.New(conn)
	lease, err := lockClient.Acquire(ctx, fmt.Sprintf("dataset:%d", data.DatasetID), leaselock.Options{
		TTL:         10 * time.Minute,
		RenewEvery:  4 * time.Minute,
		TokenPrefix: fmt.Sprintf("ingest/%d/", data.DatasetID),
	})
	if err != nil {
		if errors.Is(err, leaselock.ErrBusy) {
			logger.Info("[Queue] Skipping dataset ingest: already claimed", "dataset_id", data.DatasetID)
			return nil
		}
		return err
	}
	defer func() {
		_ = lease.Release(context.Background())
	}()
	ctx = lease.Context

	start := time.Now()

	s3Bucket := util.GetEnvString("AWS_BUCKET", "carelens")
	s3L := s3.NewS3FileLoaderWithClient(s3Bucket, s3Client)
	file := loader.DatasetFile{
		ID:     fmt.Sprintf("%d", data.DatasetID),
		Path:   data.ObjectKey,
		Loader: s3L,
	}

	raw, err := file.GetBytes(ctx)
	if err != nil {
		return fmt.Errorf("failed to download dataset file: %w", err)
	}

	records, err := csv.ParseFacilities(raw)
	if err != nil {
		return err
	}
	for i := range records {
		records[i].Name = util.SanitizePostgresText(records[i].Name)
		records[i].Description = util.SanitizePostgresText(records[i].Description)
	}

	if err = st.UpsertFacilities(ctx, data.DatasetID, records); err != nil {
		return err
	}

	if err = st.UpdateDatasetStatus(ctx, data.DatasetID, store.DatasetStatusIngested, len(records)); err != nil {
		return err
	}

	facilityIDs := make([]string, 0, len(records))
	for _, rec := range records {
		facilityIDs = append(facilityIDs, rec.ID)
	}

	err = store.ChunkRange(len(facilityIDs), embedBatchSize, func(chunkStart, chunkEnd int) error {
		embedMsg := FacilityEmbedMsg{
			Message:     "Embed ingested facilities",
			DatasetID:   data.DatasetID,
			FacilityIDs: facilityIDs[chunkStart:chunkEnd],
		}
		msgBytes, marshalErr := json.Marshal(embedMsg)
		if marshalErr != nil {
			return marshalErr
		}
		return PublishFIFO(ch, QueueFacilityEmbed, msgBytes)
	})
	if err != nil {
		return fmt.Errorf("failed to publish embed jobs: %w", err)
	}

	logger.Info("[Queue] Dataset ingest completed", "dataset_id", data.DatasetID, "facilities", len(records), "duration_sec", time.Since(start).Seconds())

	return nil
}
