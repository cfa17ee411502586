package common

// ContradictionNode is one vertex in the contradiction graph. Exactly one
// node exists per mismatch; a facility with several mismatches contributes
// several nodes.
type ContradictionNode struct {
	FacilityID string   `json:"facility_id"`
	Type       string   `json:"contradiction_type"`
	Severity   Severity `json:"severity"`
}

// ContradictionEdge connects two nodes that share an identical
// contradiction-type label. Edges are undirected; Weight is 0.5 plus a 0.5
// bonus when both severities match.
type ContradictionEdge struct {
	SourceFacility      string  `json:"source_facility"`
	TargetFacility      string  `json:"target_facility"`
	SharedContradiction string  `json:"shared_contradiction"`
	Weight              float64 `json:"edge_weight"`
}

// ContradictionCluster is a maximal connected component of the
// contradiction graph. FacilityIDs are distinct members in first-seen
// order. IsSystemic marks clusters large or regionally dominant enough to
// indicate a structural issue rather than isolated data errors.
type ContradictionCluster struct {
	ID          string   `json:"cluster_id"`
	Pattern     string   `json:"pattern"`
	FacilityIDs []string `json:"facility_ids"`
	IsSystemic  bool     `json:"is_systemic"`
}

// ContradictionAnalysis is the contradiction stage output.
type ContradictionAnalysis struct {
	Nodes            []ContradictionNode    `json:"nodes"`
	Edges            []ContradictionEdge    `json:"edges"`
	Clusters         []ContradictionCluster `json:"clusters"`
	SystemicPatterns []string               `json:"systemic_patterns"`
	Summary          string                 `json:"summary"`
}

// ReachabilityScore grades how reachable one capability is from one
// location. Geographic and capability scores are each on [0,100]; Combined
// is their weighted sum. All three are rounded to one decimal.
type ReachabilityScore struct {
	Location           string   `json:"location"`
	Capability         string   `json:"capability"`
	GeographicScore    float64  `json:"geographic_score"`
	CapabilityScore    float64  `json:"capability_score"`
	CombinedScore      float64  `json:"combined_score"`
	NearestVerified    string   `json:"nearest_verified_facility,omitempty"`
	DistanceKm         *float64 `json:"distance_km,omitempty"`
	InfrastructureGaps []string `json:"infrastructure_gaps"`
}

// ReachabilityAnalysis is the reachability stage output. Scores are ordered
// deterministically (by location key).
type ReachabilityAnalysis struct {
	Scores  []ReachabilityScore `json:"reachability_scores"`
	Summary string              `json:"summary"`
}

// Desert type labels. A region can be a desert along several axes at once.
const (
	DesertGeographic = "geographic"
	DesertCapability = "capability"
	DesertSkill      = "skill"
)

// DesertClassification marks one region as underserved for one capability.
type DesertClassification struct {
	Region                   string   `json:"region"`
	Capability               string   `json:"capability"`
	DesertTypes              []string `json:"desert_types"`
	Severity                 string   `json:"severity"`
	EstimatedPopulation      int      `json:"estimated_affected_population"`
	PrimaryGaps              []string `json:"primary_gaps"`
	RecommendedInterventions []string `json:"recommended_interventions"`
}

// DesertAnalysis is the desert classification stage output.
type DesertAnalysis struct {
	Classifications []DesertClassification `json:"desert_classifications"`
	Summary         string                 `json:"summary"`
}

// MismatchAnalysis is the mismatch detection stage output.
// VerificationNeeded lists the critical findings that external evidence
// could corroborate.
type MismatchAnalysis struct {
	Mismatches         []Mismatch          `json:"mismatches"`
	VerificationNeeded []VerificationClaim `json:"verification_needed"`
	FacilitiesAnalyzed int                 `json:"facilities_analyzed"`
	Summary            string              `json:"summary"`
}
