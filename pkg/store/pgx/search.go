package pgx

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/store"

	"github.com/pgvector/pgvector-go"
)

// SearchFacilityDocuments runs a cosine-distance search over embedded
// facility documents. Rows without an embedding are skipped; smaller
// distances rank first.
func (s *FacilityStorage) SearchFacilityDocuments(
	ctx context.Context,
	embedding []float32,
	filter store.SimilarityFilter,
	limit int,
) ([]common.SimilarityHit, error) {
	if limit <= 0 {
		limit = 5
	}

	args := []any{pgvector.NewVector(embedding)}
	conds := []string{"embedding IS NOT NULL"}

	if filter.FacilityType != "" {
		args = append(args, filter.FacilityType)
		conds = append(conds, fmt.Sprintf("facility_type = $%d", len(args)))
	}
	if filter.City != "" {
		args = append(args, strings.ToLower(filter.City))
		conds = append(conds, fmt.Sprintf("LOWER(city) = $%d", len(args)))
	}
	if filter.Region != "" {
		args = append(args, filter.Region)
		conds = append(conds, fmt.Sprintf("region = $%d", len(args)))
	}

	args = append(args, limit)
	sql := fmt.Sprintf(`
		SELECT facility_id, name, city, region, facility_type, document,
			embedding <=> $1 AS distance
		FROM facilities
		WHERE %s
		ORDER BY embedding <=> $1
		LIMIT $%d
	`, strings.Join(conds, " AND "), len(args))

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search facility documents: %w", err)
	}
	defer rows.Close()

	var hits []common.SimilarityHit
	for rows.Next() {
		var hit common.SimilarityHit
		if err := rows.Scan(
			&hit.Metadata.FacilityID, &hit.Metadata.Name, &hit.Metadata.City,
			&hit.Metadata.Region, &hit.Metadata.FacilityType,
			&hit.Document, &hit.Distance,
		); err != nil {
			return nil, fmt.Errorf("failed to scan similarity hit: %w", err)
		}
		hits = append(hits, hit)
	}
	return hits, rows.Err()
}
