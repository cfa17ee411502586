package pgx

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"

	"github.com/pgvector/pgvector-go"
)

const recordColumns = "facility_id, name, city, region, facility_type, capabilities, equipment, description, latitude, longitude"

// ListFacilities returns facility records matching the filter.
// Zero-value filter fields do not constrain the listing.
func (s *FacilityStorage) ListFacilities(
	ctx context.Context,
	filter store.FacilityFilter,
) ([]common.FacilityRecord, error) {
	var conds []string
	var args []any

	if filter.Region != "" {
		args = append(args, filter.Region)
		conds = append(conds, fmt.Sprintf("region = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, strings.ToLower(filter.City))
		conds = append(conds, fmt.Sprintf("LOWER(city) = $%d", len(args)))
	}
	if filter.FacilityType != "" {
		args = append(args, filter.FacilityType)
		conds = append(conds, fmt.Sprintf("facility_type = $%d", len(args)))
	}
	if filter.DatasetID != 0 {
		args = append(args, filter.DatasetID)
		conds = append(conds, fmt.Sprintf("dataset_id = $%d", len(args)))
	}

	sql := "SELECT " + recordColumns + " FROM facilities"
	if len(conds) > 0 {
		sql += " WHERE " + strings.Join(conds, " AND ")
	}
	sql += " ORDER BY region, name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	defer rows.Close()

	var records []common.FacilityRecord
	for rows.Next() {
		var rec common.FacilityRecord
		if err := rows.Scan(
			&rec.ID, &rec.Name, &rec.City, &rec.Region, &rec.FacilityType,
			&rec.Capabilities, &rec.Equipment, &rec.Description,
			&rec.Latitude, &rec.Longitude,
		); err != nil {
			return nil, fmt.Errorf("failed to scan facility: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetFacility loads one facility by its public identifier. A missing
// facility surfaces as pgx.ErrNoRows for callers to translate.
func (s *FacilityStorage) GetFacility(ctx context.Context, id string) (*common.FacilityRecord, error) {
	sql := "SELECT " + recordColumns + " FROM facilities WHERE facility_id = $1"

	var rec common.FacilityRecord
	err := s.conn.QueryRow(ctx, sql, id).Scan(
		&rec.ID, &rec.Name, &rec.City, &rec.Region, &rec.FacilityType,
		&rec.Capabilities, &rec.Equipment, &rec.Description,
		&rec.Latitude, &rec.Longitude,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// UpsertFacilities writes a batch of facility records in chunked
// transactions keyed on facility_id, so re-ingesting a dataset is
// idempotent. Embeddings are not touched here; the embed jobs refresh
// them after the rows exist.
func (s *FacilityStorage) UpsertFacilities(
	ctx context.Context,
	datasetID int64,
	facilities []common.FacilityRecord,
) error {
	if len(facilities) == 0 {
		return nil
	}

	const upsert = `
		INSERT INTO facilities (
			facility_id, dataset_id, name, city, region, facility_type,
			capabilities, equipment, description, latitude, longitude
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (facility_id) DO UPDATE SET
			dataset_id = EXCLUDED.dataset_id,
			name = EXCLUDED.name,
			city = EXCLUDED.city,
			region = EXCLUDED.region,
			facility_type = EXCLUDED.facility_type,
			capabilities = EXCLUDED.capabilities,
			equipment = EXCLUDED.equipment,
			description = EXCLUDED.description,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			updated_at = now()
	`

	chunkSize := 250
	return store.ChunkRange(len(facilities), chunkSize, func(start, end int) error {
		logger.Debug("[Store] Upserting facility chunk", "facilities", end-start)

		tx, err := s.conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		for _, rec := range facilities[start:end] {
			if rec.ID == "" {
				return fmt.Errorf("facility_id is empty for %q", rec.Name)
			}
			if _, err := tx.Exec(ctx, upsert,
				rec.ID, datasetID, rec.Name, rec.City, rec.Region, rec.FacilityType,
				store.DedupeStrings(rec.Capabilities), store.DedupeStrings(rec.Equipment),
				rec.Description, rec.Latitude, rec.Longitude,
			); err != nil {
				return fmt.Errorf("failed to upsert facility %s: %w", rec.ID, err)
			}
		}

		return tx.Commit(ctx)
	})
}

// UpdateFacilityEmbedding stores the rendered document and its vector
// for one facility.
func (s *FacilityStorage) UpdateFacilityEmbedding(
	ctx context.Context,
	facilityID string,
	document string,
	embedding []float32,
) error {
	const sql = `
		UPDATE facilities
		SET document = $2, embedding = $3, updated_at = now()
		WHERE facility_id = $1
	`
	tag, err := s.conn.Exec(ctx, sql, facilityID, document, pgvector.NewVector(embedding))
	if err != nil {
		return fmt.Errorf("failed to update facility embedding: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("facility not found: %s", facilityID)
	}
	return nil
}

// DeleteFacilitiesByDataset removes every facility row belonging to a
// dataset.
func (s *FacilityStorage) DeleteFacilitiesByDataset(ctx context.Context, datasetID int64) error {
	tag, err := s.conn.Exec(ctx, "DELETE FROM facilities WHERE dataset_id = $1", datasetID)
	if err != nil {
		return fmt.Errorf("failed to delete facilities: %w", err)
	}
	logger.Debug("[Store] Deleted dataset facilities", "dataset_id", datasetID, "facilities", tag.RowsAffected())
	return nil
}
