package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/carelens-health/carelens/backend/pkg/ai"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
	pgxstore "github.com/carelens-health/carelens/backend/pkg/store/pgx"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FacilityEmbedMsg asks the worker to embed the documents of a batch
// of already ingested facilities.
type FacilityEmbedMsg struct {
	Message     string   `json:"message"`
	DatasetID   int64    `json:"dataset_id"`
	FacilityIDs []string `json:"facility_ids"`
}

func ProcessFacilityEmbed(
	ctx context.Context,
	aiClient ai.Client,
	conn *pgxpool.Pool,
	msg string,
) error {
	var data FacilityEmbedMsg
	if err := json.Unmarshal([]byte(msg), &data); err != nil {
		return err
	}

	st := pgxstore.NewFacilityStorage(conn)

	records := make([]*common.FacilityRecord, 0, len(data.FacilityIDs))
	for _, id := range data.FacilityIDs {
		rec, err := st.GetFacility(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				logger.Warn("[Queue] Skipping embed for missing facility", "facility_id", id, "dataset_id", data.DatasetID)
				continue
			}
			return err
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil
	}

	start := time.Now()

	documents := make([]string, len(records))
	inputs := make([][]byte, len(records))
	for i, rec := range records {
		documents[i] = store.BuildFacilityDocument(*rec)
		inputs[i] = []byte(documents[i])
	}

	embeddings, err := store.GenerateEmbeddings(ctx, aiClient, inputs)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}

	for i, rec := range records {
		if err := st.UpdateFacilityEmbedding(ctx, rec.ID, documents[i], embeddings[i]); err != nil {
			return err
		}
	}

	logger.Info("[Queue] Facility embed completed", "dataset_id", data.DatasetID, "facilities", len(records), "duration_sec", time.Since(start).Seconds())

	return nil
}
