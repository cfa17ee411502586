// Package analytics holds the data-quality transforms the workflow engine
// schedules: mismatch detection, contradiction clustering, reachability
// scoring, desert classification and the geographic analysis feeding them.
// Every function here is a pure transform over in-memory records; stage
// wiring, persistence and LLM calls stay in the engine.
package analytics

import (
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

var (
	mismatchKeywords = []string{
		"claim", "without", "lack", "missing", "mismatch",
		"infrastructure", "equipment", "capability",
	}
	reachabilityKeywords = []string{
		"access", "reachable", "reachability", "coverage",
		"how accessible", "can people reach",
	}
	contradictionKeywords = []string{
		"contradiction", "inconsistent", "pattern", "systemic",
		"data quality", "widespread", "common issue",
	}
	desertKeywords = []string{
		"desert", "underserved", "gap", "cold spot",
		"no access", "no coverage", "poorest coverage",
	}
)

// Plan inspects the question text and produces the ordered list of
// analytic stages relevant to it. Stages a later stage depends on are
// inserted ahead of it; the default plan is mismatch detection alone.
// Output is deduplicated keeping first occurrences and fully
// deterministic for a given query.
func Plan(query string) []common.Stage {
	q := strings.ToLower(query)

	var plan []common.Stage

	if containsAny(q, mismatchKeywords) {
		plan = append(plan, common.StageMismatch)
	}

	if containsAny(q, reachabilityKeywords) {
		if !planned(plan, common.StageGeographic) {
			plan = append(plan, common.StageGeographic)
		}
		plan = append(plan, common.StageReachability)
	}

	if containsAny(q, contradictionKeywords) {
		if !planned(plan, common.StageMismatch) {
			plan = append(plan, common.StageMismatch)
		}
		plan = append(plan, common.StageContradiction)
	}

	if containsAny(q, desertKeywords) {
		if !planned(plan, common.StageGeographic) {
			plan = append(plan, common.StageGeographic)
		}
		if !planned(plan, common.StageReachability) {
			plan = append(plan, common.StageReachability)
		}
		plan = append(plan, common.StageDesert)
	}

	if len(plan) == 0 {
		plan = []common.Stage{common.StageMismatch}
	}

	return dedupeStages(plan)
}

func containsAny(q string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}

func planned(plan []common.Stage, stage common.Stage) bool {
	for _, s := range plan {
		if s == stage {
			return true
		}
	}
	return false
}

func dedupeStages(plan []common.Stage) []common.Stage {
	seen := make(map[common.Stage]struct{}, len(plan))
	out := plan[:0]
	for _, s := range plan {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
