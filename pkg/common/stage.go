package common

// Stage identifies one workflow stage. The set is closed so the router can
// be exhaustive and the executed-set statically checkable; free-form stage
// strings never enter the context.
type Stage string

const (
	StageClassify        Stage = "intent_classification"
	StageNormalize       Stage = "query_normalization"
	StageStructuredQuery Stage = "structured_query"
	StageSimilarity      Stage = "similarity_search"
	StageGeographic      Stage = "geographic_analysis"
	StageMismatch        Stage = "mismatch_detection"
	StageContradiction   Stage = "contradiction_clustering"
	StageReachability    Stage = "reachability_scoring"
	StageDesert          Stage = "desert_classification"
	StageVerify          Stage = "external_verification"
	StageCounterfactual  Stage = "counterfactual_simulation"
	StageSynthesize      Stage = "response_synthesis"
)
