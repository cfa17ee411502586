package analytics

import (
	"reflect"
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

func TestClassifyDesertsInsufficientData(t *testing.T) {
	analysis := ClassifyDeserts("cardiology deserts", nil, nil)

	if len(analysis.Classifications) != 0 {
		t.Fatalf("classifications = %d, want 0", len(analysis.Classifications))
	}
	if analysis.Summary != "Insufficient data for desert classification" {
		t.Fatalf("summary = %q, want insufficient-data summary", analysis.Summary)
	}
}

func TestClassifyDesertsSkipsReachableRegions(t *testing.T) {
	scores := []common.ReachabilityScore{
		{Location: "CA", CombinedScore: 82.5},
		{Location: "NY", CombinedScore: 50},
	}

	analysis := ClassifyDeserts("cardiology deserts", &common.GeoAnalysis{Success: true}, scores)

	if len(analysis.Classifications) != 0 {
		t.Fatalf("classifications = %v, want none at combined >= 50", analysis.Classifications)
	}
	if analysis.Summary != "Classified 0 medical deserts (0 severe)" {
		t.Fatalf("summary = %q", analysis.Summary)
	}
}

func TestClassifyDesertsAxes(t *testing.T) {
	scores := []common.ReachabilityScore{{
		Location:        "MT",
		Capability:      "cardiology",
		GeographicScore: 20,
		CapabilityScore: 30,
		CombinedScore:   25,
		DistanceKm:      float64Ptr(48.3),
	}}

	analysis := ClassifyDeserts("cardiology deserts", nil, scores)

	if len(analysis.Classifications) != 1 {
		t.Fatalf("classifications = %d, want 1", len(analysis.Classifications))
	}
	c := analysis.Classifications[0]

	if c.Region != "MT" || c.Capability != "cardiology" {
		t.Fatalf("region/capability = %q/%q, want MT/cardiology", c.Region, c.Capability)
	}
	wantTypes := []string{common.DesertGeographic, common.DesertCapability}
	if !reflect.DeepEqual(c.DesertTypes, wantTypes) {
		t.Fatalf("desert types = %v, want %v", c.DesertTypes, wantTypes)
	}
	// Two axes at combined 25: 2*20 + 75 = 115.
	if c.Severity != DesertSevere {
		t.Fatalf("severity = %q, want %q", c.Severity, DesertSevere)
	}
	wantGaps := []string{
		"Nearest facility 48.3km away",
		"Limited cardiology facilities available",
	}
	if !reflect.DeepEqual(c.PrimaryGaps, wantGaps) {
		t.Fatalf("primary gaps = %v, want %v", c.PrimaryGaps, wantGaps)
	}
	wantInterventions := []string{
		"Establish cardiology center in MT",
		"Improve transportation infrastructure",
		"Mobile health services for remote areas",
		"Upgrade existing facilities to offer cardiology",
		"Train local healthcare workers",
	}
	if !reflect.DeepEqual(c.RecommendedInterventions, wantInterventions) {
		t.Fatalf("interventions = %v, want %v", c.RecommendedInterventions, wantInterventions)
	}
	if c.EstimatedPopulation != defaultPopulation {
		t.Fatalf("population = %d, want default %d", c.EstimatedPopulation, defaultPopulation)
	}

	if analysis.Summary != "Classified 1 medical deserts (1 severe)" {
		t.Fatalf("summary = %q", analysis.Summary)
	}
}

func TestClassifyDesertsAbsentCapability(t *testing.T) {
	scores := []common.ReachabilityScore{{
		Location:        "WY",
		Capability:      "dialysis",
		GeographicScore: 45,
		CapabilityScore: 0,
		CombinedScore:   22.5,
		InfrastructureGaps: []string{
			"No facilities with dialysis found",
			"dialysis machine",
			"water purification system",
		},
	}}

	analysis := ClassifyDeserts("dialysis deserts", nil, scores)

	c := analysis.Classifications[0]
	wantTypes := []string{common.DesertCapability, common.DesertSkill}
	if !reflect.DeepEqual(c.DesertTypes, wantTypes) {
		t.Fatalf("desert types = %v, want %v", c.DesertTypes, wantTypes)
	}
	// Capability score 0 means nothing offers it; skill gaps keep the two
	// highest-priority reachability gaps.
	wantGaps := []string{
		"No facilities offering dialysis",
		"No facilities with dialysis found",
		"dialysis machine",
	}
	if !reflect.DeepEqual(c.PrimaryGaps, wantGaps) {
		t.Fatalf("primary gaps = %v, want %v", c.PrimaryGaps, wantGaps)
	}
}

func TestClassifyDesertsDefaultType(t *testing.T) {
	// Geographic 40 and capability 100 trip no axis; the region still
	// classifies because the combined score is low.
	scores := []common.ReachabilityScore{{
		Location:        "NV",
		Capability:      "maternity",
		GeographicScore: 40,
		CapabilityScore: 100,
		CombinedScore:   49.9,
	}}

	analysis := ClassifyDeserts("maternity deserts", nil, scores)

	c := analysis.Classifications[0]
	if !reflect.DeepEqual(c.DesertTypes, []string{common.DesertCapability}) {
		t.Fatalf("desert types = %v, want default capability", c.DesertTypes)
	}
	if c.Severity != DesertModerate {
		t.Fatalf("severity = %q, want %q", c.Severity, DesertModerate)
	}
	// The default type is applied after intervention selection, so only
	// the generic recommendation remains.
	if !reflect.DeepEqual(c.RecommendedInterventions, []string{"Telemedicine consultation services"}) {
		t.Fatalf("interventions = %v", c.RecommendedInterventions)
	}
}

func TestDesertSeverity(t *testing.T) {
	tests := []struct {
		name     string
		types    []string
		combined float64
		want     string
	}{
		{"two axes low score", []string{common.DesertGeographic, common.DesertCapability}, 25, DesertSevere},
		{"one axis mid score", []string{common.DesertGeographic}, 45, DesertSevere},
		{"no axes mid score", nil, 55, DesertModerate},
		{"no axes high score", nil, 65, DesertMild},
		// Three axes at combined 90 lands exactly on the severe boundary.
		{"severe boundary is exclusive", []string{common.DesertGeographic, common.DesertCapability, common.DesertSkill}, 90, DesertModerate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := desertSeverity(tt.types, tt.combined); got != tt.want {
				t.Fatalf("desertSeverity(%v, %v) = %q, want %q", tt.types, tt.combined, got, tt.want)
			}
		})
	}
}

func TestClassifyDesertsColdSpotOverwrite(t *testing.T) {
	geo := &common.GeoAnalysis{
		Success:      true,
		AnalysisType: GeoColdSpots,
		ColdSpots: []common.ColdSpot{
			{Region: "MT", RegionName: "Montana", FacilityCount: 1, Severity: "high"},
		},
	}
	scores := []common.ReachabilityScore{
		{Location: "MT", Capability: "cardiology", GeographicScore: 40, CapabilityScore: 30, CombinedScore: 35},
		{Location: "NV", Capability: "cardiology", GeographicScore: 20, CapabilityScore: 30, CombinedScore: 25},
	}

	analysis := ClassifyDeserts("cardiology deserts", geo, scores)

	if len(analysis.Classifications) != 2 {
		t.Fatalf("classifications = %d, want 2", len(analysis.Classifications))
	}

	// The cold spot replaces the score-derived entry but keeps its
	// original position.
	mt := analysis.Classifications[0]
	if mt.Region != "MT" {
		t.Fatalf("first region = %q, want MT", mt.Region)
	}
	if mt.Severity != DesertSevere {
		t.Fatalf("cold spot severity = %q, want %q", mt.Severity, DesertSevere)
	}
	if !reflect.DeepEqual(mt.DesertTypes, []string{common.DesertGeographic}) {
		t.Fatalf("cold spot types = %v, want geographic only", mt.DesertTypes)
	}
	wantGaps := []string{
		"No cardiology facilities within 50km",
		"Limited transportation infrastructure",
	}
	if !reflect.DeepEqual(mt.PrimaryGaps, wantGaps) {
		t.Fatalf("cold spot gaps = %v, want %v", mt.PrimaryGaps, wantGaps)
	}
	wantInterventions := []string{
		"Establish cardiology center in regional capital",
		"Mobile health units for rural areas",
		"Telemedicine infrastructure",
	}
	if !reflect.DeepEqual(mt.RecommendedInterventions, wantInterventions) {
		t.Fatalf("cold spot interventions = %v, want %v", mt.RecommendedInterventions, wantInterventions)
	}

	if analysis.Classifications[1].Region != "NV" {
		t.Fatalf("second region = %q, want NV", analysis.Classifications[1].Region)
	}

	if analysis.Summary != "Classified 2 medical deserts (2 severe)" {
		t.Fatalf("summary = %q", analysis.Summary)
	}
}

func TestEstimatePopulation(t *testing.T) {
	tests := []struct {
		region string
		want   int
	}{
		{"Texas", 4800000},
		{"Northern Region", 2500000},
		{"East", 2600000},
		{"Upper East Side", 1050000},
		{"MT", defaultPopulation},
		{"", 4000000},
	}

	for _, tt := range tests {
		t.Run(tt.region, func(t *testing.T) {
			if got := estimatePopulation(tt.region); got != tt.want {
				t.Fatalf("estimatePopulation(%q) = %d, want %d", tt.region, got, tt.want)
			}
		})
	}
}
