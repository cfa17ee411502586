package common

// NormalizedConstraints is the normalizer's verdict on a question: exact
// dataset values for whatever geography and medical terms the question
// used. It must pass structural validation before any dataset access.
type NormalizedConstraints struct {
	Query      NormalizedQuery `json:"normalized_query" validate:"required"`
	Warnings   []string        `json:"warnings"`
	Confidence string          `json:"confidence" validate:"required,oneof=high medium low"`
}

// NormalizedQuery groups the translated constraint sets.
type NormalizedQuery struct {
	Geography      GeographyFilter `json:"geography"`
	Medical        MedicalFilter   `json:"medical"`
	SearchStrategy SearchStrategy  `json:"search_strategy"`
	SQLHints       SQLHints        `json:"sql_hints"`
}

// GeographyFilter holds normalized geography. States are 2-letter USPS
// codes, never full names.
type GeographyFilter struct {
	States     []string `json:"states" validate:"omitempty,dive,len=2,alpha"`
	Cities     []string `json:"cities"`
	RegionName string   `json:"region_name"`
}

// MedicalFilter holds medical terms mapped to exact dataset values.
type MedicalFilter struct {
	Specialties   []string `json:"specialties"`
	Departments   []string `json:"departments"`
	Capabilities  []string `json:"capabilities"`
	Procedures    []string `json:"procedures"`
	OriginalTerms []string `json:"original_terms"`
}

// SearchStrategy advises downstream stages which columns to filter on.
type SearchStrategy struct {
	UseSpecialtyColumn  bool `json:"use_specialty_column"`
	UseDepartmentColumn bool `json:"use_department_column"`
	UseCapabilityText   bool `json:"use_capability_text"`
	FuzzyMatchingNeeded bool `json:"fuzzy_matching_needed"`
}

// SQLHints carries pre-built filter fragments for the structured query
// stage.
type SQLHints struct {
	StateFilter     string   `json:"state_filter"`
	SpecialtyFilter string   `json:"specialty_filter"`
	SuggestedJoins  []string `json:"suggested_joins"`
}

// StructuredQueryResult is the structured query stage output. Failures
// surface as Success=false with Error set; they never abort the workflow.
type StructuredQueryResult struct {
	Success  bool             `json:"success"`
	Error    string           `json:"error,omitempty"`
	SQL      string           `json:"sql,omitempty"`
	Rows     []map[string]any `json:"data,omitempty"`
	RowCount int              `json:"row_count"`
	Columns  []string         `json:"columns,omitempty"`
}

// SimilarityHit is one ranked similarity-search result.
type SimilarityHit struct {
	Document string           `json:"document"`
	Metadata FacilityMetadata `json:"metadata"`
	Distance float64          `json:"distance"`
}

// FacilityMetadata identifies the facility behind a similarity hit.
type FacilityMetadata struct {
	FacilityID   string `json:"facility_id"`
	Name         string `json:"name"`
	City         string `json:"city"`
	Region       string `json:"region"`
	FacilityType string `json:"facility_type,omitempty"`
}

// SimilarityResult is the similarity stage output.
type SimilarityResult struct {
	Success bool            `json:"success"`
	Error   string          `json:"error,omitempty"`
	Query   string          `json:"query"`
	Results []SimilarityHit `json:"results,omitempty"`
	Count   int             `json:"count"`
}

// GeoFacility is a facility as seen by the geographic stage, with the
// distance from the query center when coordinates allow computing one.
type GeoFacility struct {
	FacilityRecord
	DistanceKm *float64 `json:"distance_km,omitempty"`
}

// ColdSpot marks a region whose facility count falls below half the
// median count across regions.
type ColdSpot struct {
	Region        string `json:"region"`
	RegionName    string `json:"region_name"`
	FacilityCount int    `json:"facility_count"`
	Severity      string `json:"severity"`
}

// GeoAnalysis is the geographic stage output. AnalysisType is one of
// proximity, cold_spots or distribution; the matching field set is
// populated.
type GeoAnalysis struct {
	Success           bool           `json:"success"`
	Error             string         `json:"error,omitempty"`
	AnalysisType      string         `json:"analysis_type"`
	Center            string         `json:"center,omitempty"`
	Facilities        []GeoFacility  `json:"facilities,omitempty"`
	ColdSpots         []ColdSpot     `json:"cold_spots,omitempty"`
	Distribution      map[string]int `json:"state_distribution,omitempty"`
	LocationsAnalyzed int            `json:"locations_analyzed"`
}

// VerificationClaim is one falsifiable statement extracted from a critical
// mismatch, queued for external evidence gathering.
type VerificationClaim struct {
	ID                    string   `json:"id"`
	Procedure             string   `json:"procedure"`
	MissingInfrastructure []string `json:"missing_infra"`
	Uncertainty           string   `json:"uncertainty"`
}

// VerificationVerdict is the external-evidence outcome for one claim.
// Verified is nil when the evidence was inconclusive.
type VerificationVerdict struct {
	Verified   *bool  `json:"verified"`
	Confidence string `json:"confidence"`
	Evidence   string `json:"evidence"`
	Reasoning  string `json:"reasoning,omitempty"`
	Source     string `json:"source,omitempty"`
}

// VerificationResult is the external verification stage output, keyed by
// claim id.
type VerificationResult struct {
	Results Verdicts `json:"verification_results"`
	Summary string   `json:"summary"`
	Sources []string `json:"sources,omitempty"`
}

// Verdicts maps claim ids to their verdicts.
type Verdicts map[string]VerificationVerdict

// CounterfactualScenario is the parsed what-if request.
type CounterfactualScenario struct {
	Action     string `json:"action" jsonschema_description:"One of add, upgrade or remove." jsonschema:"enum=add,enum=upgrade,enum=remove"`
	Capability string `json:"capability" jsonschema_description:"The medical capability the scenario concerns."`
	Location   string `json:"location" jsonschema_description:"City, region code or region name the scenario targets."`
	Count      int    `json:"count" jsonschema_description:"How many facilities the scenario adds or changes. Defaults to 1."`
}

// CounterfactualState carries a simulated what-if world through the
// workflow. Downstream geographic analysis sees the simulated facilities
// alongside the real ones while IsActive is true.
type CounterfactualState struct {
	ScenarioID            string                 `json:"scenario_id"`
	Scenario              CounterfactualScenario `json:"scenario"`
	SimulatedFacilities   []FacilityRecord       `json:"simulated_facilities"`
	BaselineFacilityCount int                    `json:"baseline_facility_count"`
	IsActive              bool                   `json:"is_active"`
	Summary               string                 `json:"summary"`
}
