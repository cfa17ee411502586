package pgx

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
)

const defaultQueryLimit = 100

var facilityColumns = []string{
	"facility_id", "name", "city", "region", "facility_type", "capabilities",
}

var countColumns = []string{"region", "facility_count"}

// QueryFacilities answers a structured query with deterministic SQL.
// The filter values arrive already normalized (2-letter region codes,
// dataset specialty names); they are bound as parameters, never
// interpolated.
func (s *FacilityStorage) QueryFacilities(
	ctx context.Context,
	query store.FacilityQuery,
) (store.StructuredRows, error) {
	sql, args := buildFacilityQuery(query)
	logger.Debug("[Store] Structured query", "sql", sql, "args", len(args))

	rows, err := s.conn.Query(ctx, sql, args...)
	if err != nil {
		return store.StructuredRows{}, fmt.Errorf("failed to query facilities: %w", err)
	}
	defer rows.Close()

	result := store.StructuredRows{SQL: sql}
	if query.CountOnly {
		result.Columns = countColumns
		for rows.Next() {
			var region string
			var count int64
			if err := rows.Scan(&region, &count); err != nil {
				return store.StructuredRows{}, fmt.Errorf("failed to scan count row: %w", err)
			}
			result.Rows = append(result.Rows, map[string]any{
				"region":         region,
				"facility_count": count,
			})
		}
		return result, rows.Err()
	}

	result.Columns = facilityColumns
	for rows.Next() {
		var facilityID, name, city, region, facilityType string
		var capabilities []string
		if err := rows.Scan(&facilityID, &name, &city, &region, &facilityType, &capabilities); err != nil {
			return store.StructuredRows{}, fmt.Errorf("failed to scan facility row: %w", err)
		}
		result.Rows = append(result.Rows, map[string]any{
			"facility_id":   facilityID,
			"name":          name,
			"city":          city,
			"region":        region,
			"facility_type": facilityType,
			"capabilities":  strings.Join(capabilities, ", "),
		})
	}
	return result, rows.Err()
}

// buildFacilityQuery renders a FacilityQuery into SQL and bind args.
// Specialties match against the capability array and the description
// because facility rows carry no dedicated specialty column; the
// dataset folds specialty coverage into those two fields.
func buildFacilityQuery(query store.FacilityQuery) (string, []any) {
	var conds []string
	var args []any

	if len(query.States) > 0 {
		args = append(args, query.States)
		conds = append(conds, fmt.Sprintf("region = ANY($%d)", len(args)))
	}
	if len(query.Cities) > 0 {
		lowered := make([]string, 0, len(query.Cities))
		for _, city := range query.Cities {
			lowered = append(lowered, strings.ToLower(city))
		}
		args = append(args, lowered)
		conds = append(conds, fmt.Sprintf("LOWER(city) = ANY($%d)", len(args)))
	}
	if len(query.Specialties) > 0 {
		parts := make([]string, 0, len(query.Specialties))
		for _, specialty := range query.Specialties {
			args = append(args, "%"+specialty+"%")
			n := len(args)
			parts = append(parts, fmt.Sprintf(
				"(array_to_string(capabilities, ' ') ILIKE $%d OR description ILIKE $%d)", n, n))
		}
		conds = append(conds, "("+strings.Join(parts, " OR ")+")")
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	if query.CountOnly {
		sql := "SELECT region, COUNT(DISTINCT facility_id) AS facility_count FROM facilities" +
			where + " GROUP BY region ORDER BY facility_count DESC, region"
		return sql, args
	}

	limit := query.Limit
	if limit <= 0 {
		limit = defaultQueryLimit
	}
	args = append(args, limit)
	sql := "SELECT " + strings.Join(facilityColumns, ", ") + " FROM facilities" +
		where + fmt.Sprintf(" ORDER BY region, name LIMIT $%d", len(args))
	return sql, args
}
