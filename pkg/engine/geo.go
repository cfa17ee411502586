package engine

import (
	"context"
	"fmt"

	"github.com/carelens-health/carelens/backend/pkg/analytics"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
)

// geographic analyzes facility geography in the mode the question asks
// for. While a counterfactual simulation is active its simulated
// facilities are analyzed alongside the real ones, so the answer
// describes the what-if world.
func (e *Engine) geographic(ctx context.Context, c AnalysisContext) (Partial, error) {
	facilities, err := e.store.ListFacilities(ctx, store.FacilityFilter{})
	if err != nil {
		logger.Warn("[Engine] Loading facilities failed", "error", err)
		return Partial{
			Geo:    &common.GeoAnalysis{Success: false, Error: err.Error()},
			Errors: []string{fmt.Sprintf("Geo Analysis Error: %v", err)},
		}, nil
	}

	if c.Counterfactual != nil && c.Counterfactual.IsActive {
		facilities = append(facilities, c.Counterfactual.SimulatedFacilities...)
		logger.Info("[Engine] Including simulated facilities",
			"simulated", len(c.Counterfactual.SimulatedFacilities))
	}

	analysis := analytics.AnalyzeGeography(c.Query, facilities)
	logger.Info("[Engine] Geographic analysis done",
		"type", analysis.AnalysisType, "locations", analysis.LocationsAnalyzed)

	partial := Partial{Geo: &analysis}
	if analysis.Success {
		partial.Citations = []common.Citation{{
			Agent:             "GeoAgent",
			Source:            structuredSource,
			LocationsAnalyzed: analysis.LocationsAnalyzed,
			AnalysisType:      analysis.AnalysisType,
		}}
	}
	return partial, nil
}
