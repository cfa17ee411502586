package analytics

import (
	"math"
	"reflect"
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

func facilityAt(id, city, region string, lat, lon float64) common.FacilityRecord {
	return common.FacilityRecord{
		ID:        id,
		Name:      "Facility " + id,
		City:      city,
		Region:    region,
		Latitude:  float64Ptr(lat),
		Longitude: float64Ptr(lon),
	}
}

func TestAnalyzeGeographyModes(t *testing.T) {
	facilities := []common.FacilityRecord{
		facilityAt("fac_a", "Dallas", "TX", 32.78, -96.80),
		facilityAt("fac_b", "Houston", "TX", 29.76, -95.37),
	}

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{"distance query", "facilities within 50km of Dallas", GeoProximity},
		{"miles work too", "clinics within 20 miles of Houston", GeoProximity},
		{"cold spots", "show me cold spots in coverage", GeoColdSpots},
		{"underserved", "which regions are underserved?", GeoColdSpots},
		{"coverage gaps", "where are the coverage gaps?", GeoColdSpots},
		{"fallback", "how are facilities distributed across states?", GeoDistribution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analysis := AnalyzeGeography(tt.query, facilities)
			if !analysis.Success {
				t.Fatalf("analysis failed: %s", analysis.Error)
			}
			if analysis.AnalysisType != tt.want {
				t.Fatalf("analysis type = %q, want %q", analysis.AnalysisType, tt.want)
			}
		})
	}
}

func TestAnalyzeGeographyNoData(t *testing.T) {
	analysis := AnalyzeGeography("facilities within 50km of Dallas", nil)

	if analysis.Success {
		t.Fatal("expected failure without facility data")
	}
	if analysis.Error != "No facility data" {
		t.Fatalf("error = %q, want %q", analysis.Error, "No facility data")
	}
}

func TestProximityFiltersByState(t *testing.T) {
	facilities := []common.FacilityRecord{
		facilityAt("fac_a", "Dallas", "TX", 32.0, -96.80),
		facilityAt("fac_b", "Fort Worth", "TX", 33.0, -96.80),
		facilityAt("fac_c", "Los Angeles", "CA", 34.05, -118.24),
	}

	analysis := AnalyzeGeography("hospitals within 100 km across TX", facilities)

	if len(analysis.Facilities) != 2 {
		t.Fatalf("facility count = %d, want 2 after TX filter", len(analysis.Facilities))
	}
	if analysis.Center != "Texas" {
		t.Fatalf("center = %q, want %q", analysis.Center, "Texas")
	}
	if analysis.LocationsAnalyzed != 2 {
		t.Fatalf("locations analyzed = %d, want 2", analysis.LocationsAnalyzed)
	}

	// One degree of latitude apart, centroid in the middle: both ~55.6km.
	for _, facility := range analysis.Facilities {
		if facility.DistanceKm == nil {
			t.Fatalf("facility %s has no distance", facility.ID)
		}
		if *facility.DistanceKm != 55.6 {
			t.Fatalf("distance = %v, want 55.6", *facility.DistanceKm)
		}
	}
}

func TestProximityCenterPrefersCity(t *testing.T) {
	facilities := []common.FacilityRecord{
		facilityAt("fac_a", "Dallas", "TX", 32.78, -96.80),
		facilityAt("fac_b", "Houston", "TX", 29.76, -95.37),
	}

	// TX narrows the set; the city is still the better label.
	analysis := AnalyzeGeography("facilities within 50km of Dallas TX", facilities)

	if analysis.Center != "Dallas" {
		t.Fatalf("center = %q, want %q", analysis.Center, "Dallas")
	}
	if len(analysis.Facilities) != 2 {
		t.Fatalf("facility count = %d, want 2; the state filter wins", len(analysis.Facilities))
	}
}

func TestProximityFiltersByCity(t *testing.T) {
	facilities := []common.FacilityRecord{
		facilityAt("fac_a", "Boston", "MA", 42.36, -71.06),
		facilityAt("fac_b", "East Boston", "MA", 42.37, -71.04),
		facilityAt("fac_c", "Worcester", "MA", 42.26, -71.80),
	}

	analysis := AnalyzeGeography("clinics within 20 miles of Boston", facilities)

	if len(analysis.Facilities) != 2 {
		t.Fatalf("facility count = %d, want 2 city substring matches", len(analysis.Facilities))
	}
	if analysis.Center != "Boston" {
		t.Fatalf("center = %q, want %q", analysis.Center, "Boston")
	}
}

func TestProximityWithoutCoordinates(t *testing.T) {
	facilities := []common.FacilityRecord{
		{ID: "fac_a", Name: "Facility A", City: "Dallas", Region: "TX"},
		{ID: "fac_b", Name: "Facility B", City: "Dallas", Region: "TX"},
	}

	analysis := AnalyzeGeography("facilities within 50km of Dallas", facilities)

	if !analysis.Success {
		t.Fatalf("analysis failed: %s", analysis.Error)
	}
	for _, facility := range analysis.Facilities {
		if facility.DistanceKm != nil {
			t.Fatalf("facility %s has distance %v, want none without coordinates", facility.ID, *facility.DistanceKm)
		}
	}
}

func TestColdSpotAnalysis(t *testing.T) {
	var facilities []common.FacilityRecord
	add := func(region string, n int) {
		for range n {
			facilities = append(facilities, common.FacilityRecord{
				ID:     region,
				Region: region,
			})
		}
	}
	add("TX", 8)
	add("CA", 8)
	add("MT", 1)
	add("WY", 3)
	facilities = append(facilities, common.FacilityRecord{ID: "fac_x"}) // no region, ignored

	analysis := AnalyzeGeography("underserved areas", facilities)

	if analysis.AnalysisType != GeoColdSpots {
		t.Fatalf("analysis type = %q, want %q", analysis.AnalysisType, GeoColdSpots)
	}
	// Median count is (3+8)/2 = 5.5, threshold 2.75: MT qualifies, WY
	// does not. MT at 1 is below half the threshold, so high severity.
	want := []common.ColdSpot{
		{Region: "MT", RegionName: "Montana", FacilityCount: 1, Severity: "high"},
	}
	if !reflect.DeepEqual(analysis.ColdSpots, want) {
		t.Fatalf("cold spots = %+v, want %+v", analysis.ColdSpots, want)
	}
	if analysis.LocationsAnalyzed != 1 {
		t.Fatalf("locations analyzed = %d, want 1", analysis.LocationsAnalyzed)
	}
}

func TestColdSpotSeverityAndOrder(t *testing.T) {
	var facilities []common.FacilityRecord
	add := func(region string, n int) {
		for range n {
			facilities = append(facilities, common.FacilityRecord{Region: region})
		}
	}
	add("TX", 10)
	add("CA", 10)
	add("NY", 10)
	add("WY", 4)
	add("MT", 1)

	analysis := AnalyzeGeography("coverage gap analysis", facilities)

	// Median 10, threshold 5; worst spot first.
	if len(analysis.ColdSpots) != 2 {
		t.Fatalf("cold spot count = %d, want 2", len(analysis.ColdSpots))
	}
	if analysis.ColdSpots[0].Region != "MT" || analysis.ColdSpots[0].Severity != "high" {
		t.Fatalf("first spot = %+v, want MT/high", analysis.ColdSpots[0])
	}
	if analysis.ColdSpots[1].Region != "WY" || analysis.ColdSpots[1].Severity != "moderate" {
		t.Fatalf("second spot = %+v, want WY/moderate", analysis.ColdSpots[1])
	}
}

func TestDistributionAnalysis(t *testing.T) {
	facilities := []common.FacilityRecord{
		facilityAt("fac_a", "Dallas", "TX", 32.78, -96.80),
		facilityAt("fac_b", "Houston", "TX", 29.76, -95.37),
		facilityAt("fac_c", "Miami", "FL", 25.76, -80.19),
		{ID: "fac_d", Name: "Unmapped"},
	}

	analysis := AnalyzeGeography("how many facilities per state?", facilities)

	want := map[string]int{"Texas": 2, "Florida": 1}
	if !reflect.DeepEqual(analysis.Distribution, want) {
		t.Fatalf("distribution = %v, want %v", analysis.Distribution, want)
	}
	if analysis.LocationsAnalyzed != 4 {
		t.Fatalf("locations analyzed = %d, want all 4", analysis.LocationsAnalyzed)
	}
	if len(analysis.Facilities) != 4 {
		t.Fatalf("sample = %d facilities, want 4", len(analysis.Facilities))
	}
}

func TestHaversine(t *testing.T) {
	// New York to Los Angeles, great-circle ~3936km.
	d := Haversine(40.7128, -74.0060, 34.0522, -118.2437)
	if math.Abs(d-3936) > 5 {
		t.Fatalf("NYC-LA distance = %v, want ~3936", d)
	}

	if got := Haversine(51.5, -0.12, 51.5, -0.12); got != 0 {
		t.Fatalf("zero distance = %v, want 0", got)
	}
}

func TestExtractRegionCode(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"facilities in CA", "CA"},
		{"Dallas, TX, within 50km", "TX"},
		{"California hospitals", "CA"},
		{"Arkansas facilities", "AR"},
		{"Kansas facilities", "KS"},
		{"no state mentioned here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := ExtractRegionCode(tt.query); got != tt.want {
				t.Fatalf("ExtractRegionCode(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestExtractCity(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"hospitals near san francisco", "San Francisco"},
		{"Chicago dialysis centers", "Chicago"},
		{"rural facilities", ""},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			if got := ExtractCity(tt.query); got != tt.want {
				t.Fatalf("ExtractCity(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestRegionName(t *testing.T) {
	if got := RegionName("WI"); got != "Wisconsin" {
		t.Fatalf("RegionName(WI) = %q, want Wisconsin", got)
	}
	if got := RegionName("ZZ"); got != "ZZ" {
		t.Fatalf("RegionName(ZZ) = %q, want the code back", got)
	}
}

func TestMedianCount(t *testing.T) {
	tests := []struct {
		name   string
		counts map[string]int
		want   float64
	}{
		{"empty", map[string]int{}, 0},
		{"single", map[string]int{"TX": 7}, 7},
		{"odd", map[string]int{"TX": 1, "CA": 5, "NY": 9}, 5},
		{"even", map[string]int{"TX": 1, "CA": 3, "NY": 5, "FL": 11}, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := medianCount(tt.counts); got != tt.want {
				t.Fatalf("medianCount(%v) = %v, want %v", tt.counts, got, tt.want)
			}
		})
	}
}
