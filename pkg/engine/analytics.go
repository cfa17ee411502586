package engine

import (
	"context"
	"fmt"

	"github.com/carelens-health/carelens/backend/pkg/analytics"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
)

// detectMismatches validates every facility's claimed capabilities
// against the equipment knowledge base. Missing facility data is not
// an error; the stage reports it and the workflow continues.
func (e *Engine) detectMismatches(ctx context.Context, c AnalysisContext) (Partial, error) {
	facilities, err := e.store.ListFacilities(ctx, store.FacilityFilter{})
	if err != nil {
		logger.Warn("[Engine] Loading facilities failed", "error", err)
		return Partial{
			Mismatches: &common.MismatchAnalysis{
				Mismatches:         []common.Mismatch{},
				VerificationNeeded: []common.VerificationClaim{},
				Summary:            "No facility data available",
			},
			Errors: []string{fmt.Sprintf("Mismatch Detection Error: %v", err)},
		}, nil
	}
	if len(facilities) == 0 {
		return Partial{
			Mismatches: &common.MismatchAnalysis{
				Mismatches:         []common.Mismatch{},
				VerificationNeeded: []common.VerificationClaim{},
				Summary:            "No facility data available",
			},
		}, nil
	}

	analysis := analytics.DetectMismatches(facilities, analytics.DetectorOptions{IncludeMinor: e.includeMinor})
	logger.Info("[Engine] Mismatch detection done", "summary", analysis.Summary)

	partial := Partial{Mismatches: &analysis}
	if len(analysis.Mismatches) > 0 {
		critical := 0
		for _, mismatch := range analysis.Mismatches {
			if mismatch.Severity == common.SeverityCritical {
				critical++
			}
		}
		partial.Citations = []common.Citation{{
			Agent:              "MismatchAgent",
			FacilitiesAnalyzed: analysis.FacilitiesAnalyzed,
			MismatchesFound:    len(analysis.Mismatches),
			CriticalMismatches: critical,
		}}
	}
	return partial, nil
}

// clusterContradictions groups mismatches that share a contradiction
// label into connected components and flags the systemic ones.
func (e *Engine) clusterContradictions(_ context.Context, c AnalysisContext) (Partial, error) {
	var mismatches []common.Mismatch
	if c.Mismatches != nil {
		mismatches = c.Mismatches.Mismatches
	}

	analysis := analytics.BuildContradictions(mismatches, e.clusterThreshold)
	logger.Info("[Engine] Contradiction clustering done", "summary", analysis.Summary)

	partial := Partial{Contradictions: &analysis}
	if len(mismatches) > 0 {
		partial.Citations = []common.Citation{{
			Agent:            "ContradictionAgent",
			NodesAnalyzed:    len(analysis.Nodes),
			SystemicPatterns: len(analysis.SystemicPatterns),
		}}
	}
	return partial, nil
}

// scoreReachability grades how reachable the asked-about capability is
// from each analyzed location.
func (e *Engine) scoreReachability(_ context.Context, c AnalysisContext) (Partial, error) {
	var mismatches []common.Mismatch
	if c.Mismatches != nil {
		mismatches = c.Mismatches.Mismatches
	}

	analysis := analytics.ScoreReachability(c.Query, c.Geo, mismatches, e.weights)
	logger.Info("[Engine] Reachability scoring done", "summary", analysis.Summary)

	partial := Partial{Reachability: &analysis}
	if len(analysis.Scores) > 0 {
		average, _ := reachabilityStats(analysis.Scores)
		partial.Citations = []common.Citation{{
			Agent:             "ReachabilityAgent",
			LocationsAnalyzed: len(analysis.Scores),
			AverageScore:      round1(average),
		}}
	}
	return partial, nil
}

// classifyDeserts marks underserved regions and the axes along which
// they are underserved.
func (e *Engine) classifyDeserts(_ context.Context, c AnalysisContext) (Partial, error) {
	var scores []common.ReachabilityScore
	if c.Reachability != nil {
		scores = c.Reachability.Scores
	}

	analysis := analytics.ClassifyDeserts(c.Query, c.Geo, scores)
	logger.Info("[Engine] Desert classification done", "summary", analysis.Summary)

	partial := Partial{Deserts: &analysis}
	if len(analysis.Classifications) > 0 {
		severe := 0
		for _, classification := range analysis.Classifications {
			if classification.Severity == "severe" {
				severe++
			}
		}
		partial.Citations = []common.Citation{{
			Agent:             "DesertAgent",
			DesertsClassified: len(analysis.Classifications),
			SevereDeserts:     severe,
		}}
	}
	return partial, nil
}
