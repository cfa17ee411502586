package engine

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
)

// sampleRowLimit caps how many structured-query rows the compiled data
// shows the model.
const sampleRowLimit = 10

// synthesize compiles every stage's results into one data block, asks
// the model for the final answer and appends the citation block. A
// model failure falls back to the compiled data itself, so the caller
// always gets whatever the stages found.
func (e *Engine) synthesize(ctx context.Context, c AnalysisContext) (Partial, error) {
	compiled := compileResults(c)
	citationBlock := formatCitations(c.Citations)

	answer, err := e.ai.GenerateCompletion(ctx,
		fmt.Sprintf(synthesisPrompt, c.Query, compiled, citationBlock))
	if err != nil {
		logger.Warn("[Engine] Answer synthesis failed", "error", err)
		fallback := compiled
		if citationBlock != "" {
			fallback += "\n\n" + citationBlock
		}
		return Partial{
			Answer: fallback,
			Errors: []string{fmt.Sprintf("Error generating response: %v", err)},
		}, nil
	}

	answer = strings.TrimSpace(answer)
	if citationBlock != "" {
		answer += "\n\n" + citationBlock
	}
	logger.Info("[Engine] Response synthesized", "length", len(answer))
	return Partial{Answer: answer}, nil
}

// compileResults renders every stage result the context holds into the
// fixed-order data block the synthesis prompt consumes.
func compileResults(c AnalysisContext) string {
	parts := []string{}

	if c.Structured != nil && c.Structured.Success {
		parts = append(parts, fmt.Sprintf("SQL Analysis: %d records found", c.Structured.RowCount))
		if len(c.Structured.Rows) > 0 {
			parts = append(parts, "Sample data:\n"+renderRows(c.Structured.Columns, c.Structured.Rows, sampleRowLimit))
		}
	}

	if c.Similarity != nil && c.Similarity.Success {
		parts = append(parts, fmt.Sprintf("\nSemantic Search: %d relevant facilities", c.Similarity.Count))
	}

	if c.Geo != nil && c.Geo.Success {
		parts = append(parts, fmt.Sprintf("\nGeographic Analysis: %d locations analyzed", c.Geo.LocationsAnalyzed))
	}

	if c.Mismatches != nil {
		critical := 0
		for _, mismatch := range c.Mismatches.Mismatches {
			if mismatch.Severity == common.SeverityCritical {
				critical++
			}
		}
		parts = append(parts, "\nData Quality Issues:")
		parts = append(parts, fmt.Sprintf("  • %d mismatches detected", len(c.Mismatches.Mismatches)))
		parts = append(parts, fmt.Sprintf("  • %d critical cases", critical))
	}

	if c.Reachability != nil {
		average, low := reachabilityStats(c.Reachability.Scores)
		parts = append(parts, "\nAccessibility Analysis:")
		parts = append(parts, fmt.Sprintf("  • Average reachability: %v/100", round1(average)))
		parts = append(parts, fmt.Sprintf("  • Low access areas: %d", low))
	}

	if c.Contradictions != nil {
		systemic := 0
		for _, cluster := range c.Contradictions.Clusters {
			if cluster.IsSystemic {
				systemic++
			}
		}
		parts = append(parts, "\nContradiction Analysis:")
		parts = append(parts, fmt.Sprintf("  • %d systemic patterns", systemic))
		parts = append(parts, fmt.Sprintf("  • %d isolated cases", len(c.Contradictions.Clusters)-systemic))
	}

	if c.Deserts != nil && len(c.Deserts.Classifications) > 0 {
		parts = append(parts, "\nMedical Deserts Identified:")
		for _, desert := range c.Deserts.Classifications {
			parts = append(parts, fmt.Sprintf("  • %s: %s desert (%s)",
				desert.Region, strings.Join(desert.DesertTypes, ", "), desert.Severity))
		}
	}

	if c.Verification != nil && len(c.Verification.Results) > 0 {
		parts = append(parts, "\nExternal Verification Results:")
		for _, claimID := range sortedClaimIDs(c.Verification.Results) {
			verdict := c.Verification.Results[claimID]
			switch {
			case verdict.Verified != nil && *verdict.Verified:
				parts = append(parts, "  VERIFIED: "+evidenceOr(verdict.Evidence, "No details"))
			case verdict.Verified != nil:
				parts = append(parts, "  REFUTED: "+evidenceOr(verdict.Evidence, "No details"))
			default:
				parts = append(parts, "  INCONCLUSIVE: "+evidenceOr(verdict.Evidence, "Insufficient evidence"))
			}
		}
	}

	if c.Counterfactual != nil && c.Counterfactual.IsActive {
		parts = append(parts, "\nCounterfactual Simulation:")
		parts = append(parts, "  Scenario: "+c.Counterfactual.Summary)
		if c.Geo != nil && c.Geo.Success {
			parts = append(parts, fmt.Sprintf("  Impact: %d facilities in the simulated world (baseline %d)",
				c.Geo.LocationsAnalyzed, c.Counterfactual.BaselineFacilityCount))
		}
	}

	if len(parts) == 0 {
		return "No data available"
	}
	return strings.Join(parts, "\n")
}

// formatCitations renders the per-stage citation bullets behind a data
// sources divider. Stages without a known bullet format contribute
// nothing.
func formatCitations(citations []common.Citation) string {
	if len(citations) == 0 {
		return ""
	}

	parts := []string{"---", "Data Sources:"}
	for _, cite := range citations {
		switch cite.Agent {
		case "StructuredQueryAgent":
			parts = append(parts, fmt.Sprintf("• SQL analysis of %d facilities", cite.RowsAnalyzed))
		case "VectorAgent":
			parts = append(parts, fmt.Sprintf("• Semantic search over facility documents (%d matches)", cite.DocumentsFound))
		case "MismatchAgent":
			parts = append(parts, fmt.Sprintf("• Infrastructure mismatch detection (%d facilities)", cite.FacilitiesAnalyzed))
		case "ReachabilityAgent":
			parts = append(parts, fmt.Sprintf("• Reachability scoring (%d locations)", cite.LocationsAnalyzed))
		case "ContradictionAgent":
			parts = append(parts, fmt.Sprintf("• Contradiction pattern analysis (%d cases)", cite.NodesAnalyzed))
		case "DesertAgent":
			parts = append(parts, fmt.Sprintf("• Medical desert classification (%d regions)", cite.DesertsClassified))
		case "GeoAgent":
			parts = append(parts, fmt.Sprintf("• Geospatial analysis (%d locations)", cite.LocationsAnalyzed))
		case "ExternalVerificationAgent":
			sources := "web search"
			if len(cite.Sources) > 0 {
				sources = strings.Join(cite.Sources, ", ")
			}
			parts = append(parts, fmt.Sprintf("• External verification via %s (%d claims)", sources, cite.ClaimsVerified))
		}
	}
	return strings.Join(parts, "\n")
}

// renderRows renders up to limit rows as a pipe-separated table in the
// column order the query produced.
func renderRows(columns []string, rows []map[string]any, limit int) string {
	if len(rows) < limit {
		limit = len(rows)
	}

	lines := make([]string, 0, limit+1)
	lines = append(lines, strings.Join(columns, " | "))
	for _, row := range rows[:limit] {
		values := make([]string, 0, len(columns))
		for _, column := range columns {
			values = append(values, formatCell(row[column]))
		}
		lines = append(lines, strings.Join(values, " | "))
	}
	return strings.Join(lines, "\n")
}

func formatCell(value any) string {
	if value == nil {
		return ""
	}
	return fmt.Sprintf("%v", value)
}

func evidenceOr(evidence, fallback string) string {
	if evidence == "" {
		return fallback
	}
	return evidence
}

func sortedClaimIDs(verdicts common.Verdicts) []string {
	ids := make([]string, 0, len(verdicts))
	for id := range verdicts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// reachabilityStats recomputes the mean combined score and the low
// reachability count (<50) from the raw scores.
func reachabilityStats(scores []common.ReachabilityScore) (float64, int) {
	if len(scores) == 0 {
		return 0, 0
	}
	total := 0.0
	low := 0
	for _, score := range scores {
		total += score.CombinedScore
		if score.CombinedScore < 50 {
			low++
		}
	}
	return total / float64(len(scores)), low
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
