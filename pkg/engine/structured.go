package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
)

const structuredSource = "US Gov Dataset"

// structuredQuery runs the normalized constraints against the facility
// store. A store failure is recorded and the workflow continues; a
// query that finds nothing is a valid, zero-row result.
func (e *Engine) structuredQuery(ctx context.Context, c AnalysisContext) (Partial, error) {
	query := store.FacilityQuery{}
	if c.Normalized != nil {
		query.States = c.Normalized.Query.Geography.States
		query.Cities = c.Normalized.Query.Geography.Cities
		query.Specialties = c.Normalized.Query.Medical.Specialties
	}
	lower := strings.ToLower(c.Query)
	query.CountOnly = strings.Contains(lower, "how many") || strings.Contains(lower, "count")

	rows, err := e.store.QueryFacilities(ctx, query)
	if err != nil {
		logger.Warn("[Engine] Structured query failed", "error", err)
		return Partial{
			Structured: &common.StructuredQueryResult{Success: false, Error: err.Error()},
			Errors:     []string{fmt.Sprintf("SQL Error: %v", err)},
		}, nil
	}

	result := &common.StructuredQueryResult{
		Success:  true,
		SQL:      rows.SQL,
		Rows:     rows.Rows,
		RowCount: len(rows.Rows),
		Columns:  rows.Columns,
	}
	logger.Info("[Engine] Structured query done", "rows", result.RowCount)

	partial := Partial{Structured: result}
	if result.RowCount > 0 {
		partial.Citations = []common.Citation{{
			Agent:             "StructuredQueryAgent",
			Source:            structuredSource,
			Query:             result.SQL,
			RowsAnalyzed:      result.RowCount,
			NormalizationUsed: true,
		}}
	}
	return partial, nil
}
