package analytics

import (
	"reflect"
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []common.Stage
	}{
		{
			name:  "no analytic keywords defaults to mismatch",
			query: "How many facilities are in California?",
			want:  []common.Stage{common.StageMismatch},
		},
		{
			name:  "mismatch keywords",
			query: "Which facilities claim neurosurgery without ICU?",
			want:  []common.Stage{common.StageMismatch},
		},
		{
			name:  "reachability pulls in geographic first",
			query: "How accessible is dialysis in rural areas?",
			want: []common.Stage{
				common.StageGeographic,
				common.StageReachability,
			},
		},
		{
			name:  "contradiction pulls in mismatch first",
			query: "Are there systemic data quality patterns?",
			want: []common.Stage{
				common.StageMismatch,
				common.StageContradiction,
			},
		},
		{
			name:  "desert pulls in geographic and reachability",
			query: "Identify medical deserts in the dataset",
			want: []common.Stage{
				common.StageGeographic,
				common.StageReachability,
				common.StageDesert,
			},
		},
		{
			name:  "overlapping keywords do not duplicate dependencies",
			query: "Where are the medical deserts and coverage gaps?",
			want: []common.Stage{
				common.StageGeographic,
				common.StageReachability,
				common.StageDesert,
			},
		},
		{
			name:  "all analytic families combine in stable order",
			query: "Find mismatches, check access coverage for underserved regions, and flag systemic patterns",
			want: []common.Stage{
				common.StageMismatch,
				common.StageGeographic,
				common.StageReachability,
				common.StageContradiction,
				common.StageDesert,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Plan(tt.query)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Plan(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestPlanDeterministic(t *testing.T) {
	query := "Check coverage gaps and systemic equipment mismatches"

	first := Plan(query)
	for range 10 {
		if got := Plan(query); !reflect.DeepEqual(got, first) {
			t.Fatalf("plan changed between runs: %v vs %v", got, first)
		}
	}
}

func TestPlanNoDuplicates(t *testing.T) {
	queries := []string{
		"mismatch mismatch mismatch",
		"access to underserved coverage gaps with missing equipment and systemic patterns",
		"reachability of care in cold spot regions",
	}

	for _, query := range queries {
		plan := Plan(query)
		seen := map[common.Stage]bool{}
		for _, stage := range plan {
			if seen[stage] {
				t.Fatalf("Plan(%q) repeats stage %s: %v", query, stage, plan)
			}
			seen[stage] = true
		}
	}
}
