package engine

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

func fullContextFixture() AnalysisContext {
	confirmed := true
	denied := false

	return AnalysisContext{
		Query: "full picture please",
		Structured: &common.StructuredQueryResult{
			Success:  true,
			RowCount: 2,
			Columns:  []string{"name", "region"},
			Rows: []map[string]any{
				{"name": "Mercy General", "region": "CA"},
				{"name": "St. Luke", "region": "OR"},
			},
		},
		Similarity: &common.SimilarityResult{Success: true, Count: 3},
		Geo:        &common.GeoAnalysis{Success: true, LocationsAnalyzed: 4},
		Mismatches: &common.MismatchAnalysis{
			Mismatches: []common.Mismatch{
				{FacilityID: "F1", Severity: common.SeverityCritical},
				{FacilityID: "F2", Severity: common.SeverityModerate},
			},
		},
		Reachability: &common.ReachabilityAnalysis{
			Scores: []common.ReachabilityScore{
				{Location: "CA", CombinedScore: 80},
				{Location: "MT", CombinedScore: 40},
			},
		},
		Contradictions: &common.ContradictionAnalysis{
			Clusters: []common.ContradictionCluster{
				{ID: "cluster_0", IsSystemic: true},
				{ID: "cluster_1", IsSystemic: false},
			},
		},
		Deserts: &common.DesertAnalysis{
			Classifications: []common.DesertClassification{
				{Region: "MT", DesertTypes: []string{"geographic", "capability"}, Severity: "severe"},
			},
		},
		Verification: &common.VerificationResult{
			Results: common.Verdicts{
				"verify_A": {Verified: &confirmed, Evidence: "NIH confirms the ICU requirement"},
				"verify_B": {Verified: &denied},
				"verify_C": {},
			},
		},
		Counterfactual: &common.CounterfactualState{
			IsActive:              true,
			Summary:               "add 2 dialysis facilities in MT",
			BaselineFacilityCount: 3,
		},
	}
}

func TestCompileResults(t *testing.T) {
	want := `SQL Analysis: 2 records found
Sample data:
name | region
Mercy General | CA
St. Luke | OR

Semantic Search: 3 relevant facilities

Geographic Analysis: 4 locations analyzed

Data Quality Issues:
  • 2 mismatches detected
  • 1 critical cases

Accessibility Analysis:
  • Average reachability: 60/100
  • Low access areas: 1

Contradiction Analysis:
  • 1 systemic patterns
  • 1 isolated cases

Medical Deserts Identified:
  • MT: geographic, capability desert (severe)

External Verification Results:
  VERIFIED: NIH confirms the ICU requirement
  REFUTED: No details
  INCONCLUSIVE: Insufficient evidence

Counterfactual Simulation:
  Scenario: add 2 dialysis facilities in MT
  Impact: 4 facilities in the simulated world (baseline 3)`

	got := compileResults(fullContextFixture())
	if got != want {
		t.Fatalf("compileResults() =\n%s\nwant:\n%s", got, want)
	}
}

func TestCompileResultsEmpty(t *testing.T) {
	got := compileResults(newAnalysisContext("anything"))
	if got != "No data available" {
		t.Fatalf("compileResults() = %q, want %q", got, "No data available")
	}
}

func TestCompileResultsSkipsFailedStages(t *testing.T) {
	c := AnalysisContext{
		Structured: &common.StructuredQueryResult{Success: false, Error: "db down"},
		Similarity: &common.SimilarityResult{Success: false, Error: "embed down"},
		Geo:        &common.GeoAnalysis{Success: false, Error: "no data"},
	}

	got := compileResults(c)
	if got != "No data available" {
		t.Fatalf("compileResults() = %q, want %q", got, "No data available")
	}
}

func TestFormatCitations(t *testing.T) {
	citations := []common.Citation{
		{Agent: "StructuredQueryAgent", RowsAnalyzed: 12},
		{Agent: "VectorAgent", DocumentsFound: 5},
		{Agent: "GeoAgent", LocationsAnalyzed: 7},
		{Agent: "MismatchAgent", FacilitiesAnalyzed: 20},
		{Agent: "ReachabilityAgent", LocationsAnalyzed: 6},
		{Agent: "ContradictionAgent", NodesAnalyzed: 9},
		{Agent: "DesertAgent", DesertsClassified: 2},
		{Agent: "ExternalVerificationAgent", ClaimsVerified: 3, Sources: []string{"SERP API"}},
		{Agent: "UnknownAgent"},
	}

	want := `---
Data Sources:
• SQL analysis of 12 facilities
• Semantic search over facility documents (5 matches)
• Geospatial analysis (7 locations)
• Infrastructure mismatch detection (20 facilities)
• Reachability scoring (6 locations)
• Contradiction pattern analysis (9 cases)
• Medical desert classification (2 regions)
• External verification via SERP API (3 claims)`

	got := formatCitations(citations)
	if got != want {
		t.Fatalf("formatCitations() =\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatCitationsEmpty(t *testing.T) {
	if got := formatCitations(nil); got != "" {
		t.Fatalf("formatCitations(nil) = %q, want empty", got)
	}
}

func TestRenderRows(t *testing.T) {
	columns := []string{"name", "count"}
	rows := []map[string]any{
		{"name": "A", "count": 1},
		{"name": "B"},
		{"name": "C", "count": 3},
	}

	want := "name | count\nA | 1\nB | "
	if got := renderRows(columns, rows, 2); got != want {
		t.Fatalf("renderRows() = %q, want %q", got, want)
	}
}

func TestSynthesizeFallsBackOnModelFailure(t *testing.T) {
	client := &fakeAI{
		completion: func(string) (string, error) {
			return "", errors.New("model unavailable")
		},
	}
	e := newTestEngine(t, Params{AI: client})

	c := newAnalysisContext("how many hospitals?")
	c.Structured = &common.StructuredQueryResult{Success: true, RowCount: 5}
	c.Citations = []common.Citation{{Agent: "StructuredQueryAgent", RowsAnalyzed: 5}}

	partial, err := e.synthesize(context.Background(), c)
	if err != nil {
		t.Fatalf("synthesize() error = %v, want nil", err)
	}
	if !strings.HasPrefix(partial.Answer, "SQL Analysis: 5 records found") {
		t.Fatalf("Answer = %q, want compiled data fallback", partial.Answer)
	}
	if !strings.Contains(partial.Answer, "• SQL analysis of 5 facilities") {
		t.Fatalf("Answer = %q, want citation block appended", partial.Answer)
	}
	if len(partial.Errors) != 1 || !strings.Contains(partial.Errors[0], "Error generating response") {
		t.Fatalf("Errors = %v, want response generation error", partial.Errors)
	}
}
