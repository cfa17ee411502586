package pgx

import (
	"context"
	"fmt"

	"github.com/carelens-health/carelens/backend/pkg/store"
)

const datasetColumns = "id, name, object_key, status, facility_count, created_at, updated_at"

// CreateDataset records an uploaded dataset in pending state and
// returns the stored row.
func (s *FacilityStorage) CreateDataset(ctx context.Context, name string, objectKey string) (*store.Dataset, error) {
	const sql = `
		INSERT INTO datasets (name, object_key, status)
		VALUES ($1, $2, $3)
		RETURNING ` + datasetColumns

	var d store.Dataset
	err := s.conn.QueryRow(ctx, sql, name, objectKey, store.DatasetStatusPending).Scan(
		&d.ID, &d.Name, &d.ObjectKey, &d.Status, &d.FacilityCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}
	return &d, nil
}

// GetDataset loads one dataset. A missing dataset surfaces as
// pgx.ErrNoRows for callers to translate.
func (s *FacilityStorage) GetDataset(ctx context.Context, id int64) (*store.Dataset, error) {
	sql := "SELECT " + datasetColumns + " FROM datasets WHERE id = $1"

	var d store.Dataset
	err := s.conn.QueryRow(ctx, sql, id).Scan(
		&d.ID, &d.Name, &d.ObjectKey, &d.Status, &d.FacilityCount, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *FacilityStorage) ListDatasets(ctx context.Context) ([]store.Dataset, error) {
	sql := "SELECT " + datasetColumns + " FROM datasets ORDER BY created_at DESC, id DESC"

	rows, err := s.conn.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}
	defer rows.Close()

	var datasets []store.Dataset
	for rows.Next() {
		var d store.Dataset
		if err := rows.Scan(
			&d.ID, &d.Name, &d.ObjectKey, &d.Status, &d.FacilityCount, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}
		datasets = append(datasets, d)
	}
	return datasets, rows.Err()
}

// UpdateDatasetStatus moves a dataset through the ingest lifecycle and
// records how many facilities it contributed.
func (s *FacilityStorage) UpdateDatasetStatus(ctx context.Context, id int64, status string, facilityCount int) error {
	const sql = `
		UPDATE datasets
		SET status = $2, facility_count = $3, updated_at = now()
		WHERE id = $1
	`
	tag, err := s.conn.Exec(ctx, sql, id, status, facilityCount)
	if err != nil {
		return fmt.Errorf("failed to update dataset status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("dataset not found: %d", id)
	}
	return nil
}

// DeleteDataset removes the dataset row; facility rows cascade via the
// dataset_id foreign key.
func (s *FacilityStorage) DeleteDataset(ctx context.Context, id int64) error {
	if _, err := s.conn.Exec(ctx, "DELETE FROM datasets WHERE id = $1", id); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	return nil
}
