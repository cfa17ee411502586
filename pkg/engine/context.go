package engine

import (
	"github.com/carelens-health/carelens/backend/pkg/common"
)

// Intent labels what kind of answer a question needs. The classifier
// emits exactly one of these; unknown labels collapse to IntentSQL.
type Intent string

const (
	IntentSQL            Intent = "SQL_QUERY"
	IntentVector         Intent = "VECTOR_QUERY"
	IntentGeo            Intent = "GEO_QUERY"
	IntentAnalytics      Intent = "ANALYTICS_QUERY"
	IntentCounterfactual Intent = "COUNTERFACTUAL_QUERY"
	IntentHybrid         Intent = "HYBRID_QUERY"
)

// AnalysisContext is the accumulated state of one query's workflow run.
// The driver treats it as an immutable value: stages never write to it
// directly, they return a Partial and the driver merges. Result fields
// are nil until their stage ran.
type AnalysisContext struct {
	Query    string
	Intent   Intent
	Plan     []common.Stage
	Executed map[common.Stage]struct{}

	Normalized     *common.NormalizedConstraints
	Structured     *common.StructuredQueryResult
	Similarity     *common.SimilarityResult
	Geo            *common.GeoAnalysis
	Mismatches     *common.MismatchAnalysis
	Contradictions *common.ContradictionAnalysis
	Reachability   *common.ReachabilityAnalysis
	Deserts        *common.DesertAnalysis
	Verification   *common.VerificationResult
	Counterfactual *common.CounterfactualState

	Citations []common.Citation
	Errors    []string
	Answer    string
}

// Partial is one stage's contribution to the context. Stage names the
// stage that produced it and is always marked executed on merge; every
// other field is merged only when set.
type Partial struct {
	Stage common.Stage

	Intent Intent
	Plan   []common.Stage

	Normalized     *common.NormalizedConstraints
	Structured     *common.StructuredQueryResult
	Similarity     *common.SimilarityResult
	Geo            *common.GeoAnalysis
	Mismatches     *common.MismatchAnalysis
	Contradictions *common.ContradictionAnalysis
	Reachability   *common.ReachabilityAnalysis
	Deserts        *common.DesertAnalysis
	Verification   *common.VerificationResult
	Counterfactual *common.CounterfactualState

	Citations []common.Citation
	Errors    []string
	Answer    string
}

// FinalResult is what Run hands back to callers.
type FinalResult struct {
	Answer    string            `json:"answer"`
	Citations []common.Citation `json:"citations,omitempty"`
	Errors    []string          `json:"errors,omitempty"`
}

func newAnalysisContext(query string) AnalysisContext {
	return AnalysisContext{
		Query:    query,
		Executed: map[common.Stage]struct{}{},
	}
}

// done reports whether a stage already ran in this workflow.
func (c AnalysisContext) done(stage common.Stage) bool {
	_, ok := c.Executed[stage]
	return ok
}

// verificationNeeded reports whether mismatch detection queued claims
// for external evidence gathering.
func (c AnalysisContext) verificationNeeded() bool {
	return c.Mismatches != nil && len(c.Mismatches.VerificationNeeded) > 0
}

// merge folds a stage's partial into the context and returns the new
// value. Merging is append-only: the executed set only grows, result
// fields are set once and never cleared, citations and errors
// accumulate. The old context is left untouched.
func merge(old AnalysisContext, partial Partial) AnalysisContext {
	next := old

	executed := make(map[common.Stage]struct{}, len(old.Executed)+1)
	for stage := range old.Executed {
		executed[stage] = struct{}{}
	}
	if partial.Stage != "" {
		executed[partial.Stage] = struct{}{}
	}
	next.Executed = executed

	if partial.Intent != "" {
		next.Intent = partial.Intent
	}
	if partial.Plan != nil {
		next.Plan = partial.Plan
	}
	if partial.Normalized != nil {
		next.Normalized = partial.Normalized
	}
	if partial.Structured != nil {
		next.Structured = partial.Structured
	}
	if partial.Similarity != nil {
		next.Similarity = partial.Similarity
	}
	if partial.Geo != nil {
		next.Geo = partial.Geo
	}
	if partial.Mismatches != nil {
		next.Mismatches = partial.Mismatches
	}
	if partial.Contradictions != nil {
		next.Contradictions = partial.Contradictions
	}
	if partial.Reachability != nil {
		next.Reachability = partial.Reachability
	}
	if partial.Deserts != nil {
		next.Deserts = partial.Deserts
	}
	if partial.Verification != nil {
		next.Verification = partial.Verification
	}
	if partial.Counterfactual != nil {
		next.Counterfactual = partial.Counterfactual
	}
	if len(partial.Citations) > 0 {
		next.Citations = append(old.Citations[:len(old.Citations):len(old.Citations)], partial.Citations...)
	}
	if len(partial.Errors) > 0 {
		next.Errors = append(old.Errors[:len(old.Errors):len(old.Errors)], partial.Errors...)
	}
	if partial.Answer != "" {
		next.Answer = partial.Answer
	}
	return next
}
