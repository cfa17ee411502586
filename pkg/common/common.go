package common

// FacilityRecord is an immutable snapshot of one healthcare facility.
//
// The identifier is authoritative and unique per facility; the display name
// is not unique and must never be used as a join or grouping key. Claimed
// capabilities and available equipment are unordered sets of free-text
// labels taken from the source dataset. A capability missing from the
// equipment list never implies the capability itself is absent.
type FacilityRecord struct {
	ID           string   `json:"facility_id"`
	Name         string   `json:"name"`
	City         string   `json:"city"`
	Region       string   `json:"region"`
	FacilityType string   `json:"facility_type,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Equipment    []string `json:"equipment,omitempty"`
	Description  string   `json:"description,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// Location is the city/region pair carried on analysis records. Region is a
// normalized 2-letter code.
type Location struct {
	City   string `json:"city"`
	Region string `json:"region"`
}

// Severity grades how badly a claimed capability is contradicted by the
// available equipment.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityModerate Severity = "moderate"
	SeverityMinor    Severity = "minor"
	SeverityNone     Severity = "none"
	SeverityUnknown  Severity = "unknown"
)

// Mismatch records one detected gap between a claimed capability and the
// infrastructure required for it. Mismatches are immutable once emitted.
type Mismatch struct {
	FacilityID            string   `json:"facility_id"`
	FacilityName          string   `json:"facility_name"`
	ClaimedCapability     string   `json:"claimed_capability"`
	MissingInfrastructure []string `json:"missing_infrastructure"`
	Severity              Severity `json:"severity"`
	Justification         string   `json:"medical_justification"`
	Location              Location `json:"location"`
}

// Citation points a synthesized answer back at the stage output it was
// grounded on. Fields beyond Agent and Source are populated per stage.
type Citation struct {
	Agent              string   `json:"agent"`
	Source             string   `json:"source,omitempty"`
	Query              string   `json:"query,omitempty"`
	RowsAnalyzed       int      `json:"rows_analyzed,omitempty"`
	DocumentsFound     int      `json:"documents_found,omitempty"`
	LocationsAnalyzed  int      `json:"locations_analyzed,omitempty"`
	AnalysisType       string   `json:"analysis_type,omitempty"`
	FacilitiesAnalyzed int      `json:"facilities_analyzed,omitempty"`
	MismatchesFound    int      `json:"mismatches_found,omitempty"`
	CriticalMismatches int      `json:"critical_mismatches,omitempty"`
	NodesAnalyzed      int      `json:"nodes_analyzed,omitempty"`
	SystemicPatterns   int      `json:"systemic_patterns,omitempty"`
	AverageScore       float64  `json:"average_score,omitempty"`
	DesertsClassified  int      `json:"deserts_classified,omitempty"`
	SevereDeserts      int      `json:"severe_deserts,omitempty"`
	ClaimsVerified     int      `json:"claims_verified,omitempty"`
	NormalizationUsed  bool     `json:"normalization_used,omitempty"`
	Sources            []string `json:"sources,omitempty"`
}
