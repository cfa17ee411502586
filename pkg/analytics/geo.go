package analytics

import (
	"math"
	"sort"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

// Geographic analysis modes.
const (
	GeoProximity    = "proximity"
	GeoColdSpots    = "cold_spots"
	GeoDistribution = "distribution"
)

// usStateCodes orders the state table for deterministic query parsing.
var usStateCodes = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA", "HI",
	"ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD", "MA", "MI",
	"MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ", "NM", "NY", "NC",
	"ND", "OH", "OK", "OR", "PA", "RI", "SC", "SD", "TN", "TX", "UT",
	"VT", "VA", "WA", "WV", "WI", "WY", "DC",
}

var usStates = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut",
	"DE": "Delaware", "FL": "Florida", "GA": "Georgia", "HI": "Hawaii",
	"ID": "Idaho", "IL": "Illinois", "IN": "Indiana", "IA": "Iowa",
	"KS": "Kansas", "KY": "Kentucky", "LA": "Louisiana", "ME": "Maine",
	"MD": "Maryland", "MA": "Massachusetts", "MI": "Michigan",
	"MN": "Minnesota", "MS": "Mississippi", "MO": "Missouri",
	"MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico",
	"NY": "New York", "NC": "North Carolina", "ND": "North Dakota",
	"OH": "Ohio", "OK": "Oklahoma", "OR": "Oregon", "PA": "Pennsylvania",
	"RI": "Rhode Island", "SC": "South Carolina", "SD": "South Dakota",
	"TN": "Tennessee", "TX": "Texas", "UT": "Utah", "VT": "Vermont",
	"VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// usCities are the city names the proximity parser recognizes.
var usCities = []string{
	"New York", "Los Angeles", "Chicago", "Houston", "Phoenix",
	"Philadelphia", "San Antonio", "San Diego", "Dallas", "San Jose",
	"Austin", "Jacksonville", "San Francisco", "Seattle", "Denver",
	"Boston", "Portland", "Las Vegas", "Miami", "Atlanta",
}

// AnalyzeGeography runs the geographic analysis mode the question asks
// for: proximity around a named place, cold-spot detection, or the
// overall regional distribution.
func AnalyzeGeography(query string, facilities []common.FacilityRecord) common.GeoAnalysis {
	if len(facilities) == 0 {
		return common.GeoAnalysis{Success: false, Error: "No facility data"}
	}

	q := strings.ToLower(query)
	switch {
	case strings.Contains(q, "within") && (strings.Contains(q, "km") || strings.Contains(q, "miles")):
		return proximityAnalysis(q, facilities)
	case strings.Contains(q, "cold spot") || strings.Contains(q, "gap") || strings.Contains(q, "underserved"):
		return coldSpotAnalysis(facilities)
	default:
		return distributionAnalysis(facilities)
	}
}

// proximityAnalysis narrows the facility set to the place the question
// names. The state filter takes precedence over the city filter, but the
// center label prefers the city because it is the more specific term.
func proximityAnalysis(query string, facilities []common.FacilityRecord) common.GeoAnalysis {
	regionCode := ExtractRegionCode(query)
	city := ExtractCity(query)

	var matched []common.FacilityRecord
	switch {
	case regionCode != "":
		for _, facility := range facilities {
			if facility.Region == regionCode {
				matched = append(matched, facility)
			}
		}
	case city != "":
		needle := strings.ToLower(city)
		for _, facility := range facilities {
			if strings.Contains(strings.ToLower(facility.City), needle) {
				matched = append(matched, facility)
			}
		}
	default:
		matched = facilities
		if len(matched) > 50 {
			matched = matched[:50]
		}
	}

	located := withDistances(matched)
	if len(located) > 20 {
		located = located[:20]
	}

	center := "specified location"
	if city != "" {
		center = city
	} else if regionCode != "" {
		center = RegionName(regionCode)
	}

	return common.GeoAnalysis{
		Success:           true,
		AnalysisType:      GeoProximity,
		Center:            center,
		Facilities:        located,
		LocationsAnalyzed: len(located),
	}
}

// coldSpotAnalysis flags regions whose facility count falls below half
// the median count across regions; below a quarter of the median the
// spot is high severity.
func coldSpotAnalysis(facilities []common.FacilityRecord) common.GeoAnalysis {
	counts := map[string]int{}
	for _, facility := range facilities {
		if facility.Region == "" {
			continue
		}
		counts[facility.Region]++
	}

	threshold := medianCount(counts) * 0.5

	spots := []common.ColdSpot{}
	for _, region := range regionsByCount(counts) {
		count := counts[region]
		if float64(count) >= threshold {
			continue
		}
		severity := "moderate"
		if float64(count) < threshold*0.5 {
			severity = "high"
		}
		spots = append(spots, common.ColdSpot{
			Region:        region,
			RegionName:    RegionName(region),
			FacilityCount: count,
			Severity:      severity,
		})
	}

	return common.GeoAnalysis{
		Success:           true,
		AnalysisType:      GeoColdSpots,
		ColdSpots:         spots,
		LocationsAnalyzed: len(spots),
	}
}

func distributionAnalysis(facilities []common.FacilityRecord) common.GeoAnalysis {
	distribution := map[string]int{}
	for _, facility := range facilities {
		if facility.Region == "" {
			continue
		}
		distribution[RegionName(facility.Region)]++
	}

	sample := facilities
	if len(sample) > 20 {
		sample = sample[:20]
	}
	geoFacilities := make([]common.GeoFacility, 0, len(sample))
	for _, facility := range sample {
		geoFacilities = append(geoFacilities, common.GeoFacility{FacilityRecord: facility})
	}

	return common.GeoAnalysis{
		Success:           true,
		AnalysisType:      GeoDistribution,
		Facilities:        geoFacilities,
		Distribution:      distribution,
		LocationsAnalyzed: len(facilities),
	}
}

// withDistances computes each facility's haversine distance from the
// centroid of the group's known coordinates. Facilities without
// coordinates stay distance-less; a group without any coordinates is
// returned unchanged.
func withDistances(facilities []common.FacilityRecord) []common.GeoFacility {
	var sumLat, sumLon float64
	located := 0
	for _, facility := range facilities {
		if facility.Latitude != nil && facility.Longitude != nil {
			sumLat += *facility.Latitude
			sumLon += *facility.Longitude
			located++
		}
	}

	out := make([]common.GeoFacility, 0, len(facilities))
	if located == 0 {
		for _, facility := range facilities {
			out = append(out, common.GeoFacility{FacilityRecord: facility})
		}
		return out
	}

	centerLat := sumLat / float64(located)
	centerLon := sumLon / float64(located)
	for _, facility := range facilities {
		gf := common.GeoFacility{FacilityRecord: facility}
		if facility.Latitude != nil && facility.Longitude != nil {
			d := round1(Haversine(centerLat, centerLon, *facility.Latitude, *facility.Longitude))
			gf.DistanceKm = &d
		}
		out = append(out, gf)
	}
	return out
}

// Haversine returns the great-circle distance between two coordinates in
// kilometers.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

// ExtractRegionCode finds a US state in the question, by 2-letter code
// (word-boundary checked) or by full name, and returns its USPS code.
func ExtractRegionCode(query string) string {
	padded := " " + strings.ToUpper(query) + " "
	for _, code := range usStateCodes {
		if strings.Contains(padded, " "+code+" ") || strings.Contains(padded, " "+code+",") {
			return code
		}
	}

	lower := strings.ToLower(query)
	for _, code := range usStateCodes {
		if strings.Contains(lower, strings.ToLower(usStates[code])) {
			return code
		}
	}
	return ""
}

// ExtractCity finds one of the recognized city names in the question.
func ExtractCity(query string) string {
	lower := strings.ToLower(query)
	for _, city := range usCities {
		if strings.Contains(lower, strings.ToLower(city)) {
			return city
		}
	}
	return ""
}

// RegionName resolves a USPS code to the full state name, falling back
// to the code itself.
func RegionName(code string) string {
	if name, ok := usStates[code]; ok {
		return name
	}
	return code
}

// regionsByCount orders regions by ascending facility count so the worst
// cold spots come first, breaking ties by code.
func regionsByCount(counts map[string]int) []string {
	regions := make([]string, 0, len(counts))
	for region := range counts {
		regions = append(regions, region)
	}
	sort.Slice(regions, func(i, j int) bool {
		if counts[regions[i]] != counts[regions[j]] {
			return counts[regions[i]] < counts[regions[j]]
		}
		return regions[i] < regions[j]
	})
	return regions
}

func medianCount(counts map[string]int) float64 {
	if len(counts) == 0 {
		return 0
	}
	values := make([]int, 0, len(counts))
	for _, v := range counts {
		values = append(values, v)
	}
	sort.Ints(values)

	mid := len(values) / 2
	if len(values)%2 == 1 {
		return float64(values[mid])
	}
	return float64(values[mid-1]+values[mid]) / 2
}
