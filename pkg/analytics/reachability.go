package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

// Weights blend the geographic and capability sub-scores into the
// combined reachability score. They conventionally sum to 1 but are not
// required to.
type Weights struct {
	Geographic float64
	Capability float64
}

// DefaultWeights returns the even 0.5/0.5 split.
func DefaultWeights() Weights {
	return Weights{Geographic: 0.5, Capability: 0.5}
}

// capabilityKeywords selects the target capability from the question
// text. Compound terms precede their generic substrings so "cardiac
// surgery" wins over "surgery".
var capabilityKeywords = []string{
	"neurosurgery", "cardiac surgery", "cataract surgery",
	"orthopedic surgery", "cardiology", "dialysis", "ophthalmology",
	"maternity", "emergency care", "intensive care", "surgery", "icu",
}

// ExtractCapability picks the medical capability a question asks about,
// falling back to "general medical services" when no keyword matches.
func ExtractCapability(query string) string {
	q := strings.ToLower(query)
	for _, capability := range capabilityKeywords {
		if strings.Contains(q, capability) {
			return capability
		}
	}
	return "general medical services"
}

// ScoreReachability grades how reachable the question's target capability
// is from every location the geographic analysis covered.
//
// Proximity results yield one score keyed by the query center; cold-spot
// results yield one all-zero score per spot; anything else groups the
// facilities by region and scores each region. Missing geographic data
// degrades to an empty score set instead of failing.
func ScoreReachability(query string, geo *common.GeoAnalysis, mismatches []common.Mismatch, weights Weights) common.ReachabilityAnalysis {
	if geo == nil || !geo.Success {
		return common.ReachabilityAnalysis{
			Scores:  []common.ReachabilityScore{},
			Summary: "No geographic data available for reachability analysis",
		}
	}

	capability := ExtractCapability(query)
	scores := []common.ReachabilityScore{}

	switch geo.AnalysisType {
	case "proximity":
		if len(geo.Facilities) > 0 {
			center := geo.Center
			if center == "" {
				center = "Unknown"
			}
			scores = append(scores, scoreLocation(center, geo.Facilities, capability, mismatches, weights))
		}
	case "cold_spots":
		for _, spot := range geo.ColdSpots {
			scores = append(scores, common.ReachabilityScore{
				Location:           spot.Region,
				Capability:         capability,
				InfrastructureGaps: []string{"No facilities within reasonable distance"},
			})
		}
	default:
		byRegion := map[string][]common.GeoFacility{}
		for _, facility := range geo.Facilities {
			region := facility.Region
			if region == "" {
				region = "Unknown"
			}
			byRegion[region] = append(byRegion[region], facility)
		}
		regions := make([]string, 0, len(byRegion))
		for region := range byRegion {
			regions = append(regions, region)
		}
		sort.Strings(regions)
		for _, region := range regions {
			scores = append(scores, scoreLocation(region, byRegion[region], capability, mismatches, weights))
		}
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].Location < scores[j].Location
	})

	var total float64
	low := 0
	for _, score := range scores {
		total += score.CombinedScore
		if score.CombinedScore < 50 {
			low++
		}
	}
	avg := 0.0
	if len(scores) > 0 {
		avg = total / float64(len(scores))
	}

	return common.ReachabilityAnalysis{
		Scores: scores,
		Summary: fmt.Sprintf("Computed reachability for %d locations. Average score: %.1f/100. %d locations with low reachability (<50).",
			len(scores), avg, low),
	}
}

// scoreLocation grades one location group. The geographic sub-score
// decays exponentially with the distance to the nearest facility; the
// capability sub-score is 100 for a verified claimant, 30 when every
// claimant carries a critical mismatch, 0 when nothing claims the
// capability.
func scoreLocation(location string, facilities []common.GeoFacility, capability string, mismatches []common.Mismatch, weights Weights) common.ReachabilityScore {
	nearest := math.Inf(1)
	for _, facility := range facilities {
		if facility.DistanceKm != nil && *facility.DistanceKm < nearest {
			nearest = *facility.DistanceKm
		}
	}

	geographic := 0.0
	var distance *float64
	if !math.IsInf(nearest, 1) {
		geographic = 100 * math.Exp(-nearest/30)
		d := round1(nearest)
		distance = &d
	}

	var claimants []common.GeoFacility
	for _, facility := range facilities {
		if claimsCapability(facility.FacilityRecord, capability) {
			claimants = append(claimants, facility)
		}
	}

	capabilityScore := 0.0
	nearestVerified := ""
	gaps := []string{}

	if len(claimants) > 0 {
		var verified []common.GeoFacility
		for _, claimant := range claimants {
			criticals := criticalMismatches(claimant.ID, mismatches)
			if len(criticals) == 0 {
				verified = append(verified, claimant)
				continue
			}
			for _, m := range criticals {
				gaps = append(gaps, m.MissingInfrastructure...)
			}
		}

		if len(verified) > 0 {
			capabilityScore = 100
			nearestVerified = verified[0].Name
		} else {
			capabilityScore = 30
			gaps = dedupeStrings(gaps)
		}
	} else {
		gaps = []string{fmt.Sprintf("No facilities with %s found", capability)}
	}

	if len(gaps) > 5 {
		gaps = gaps[:5]
	}

	combined := weights.Geographic*geographic + weights.Capability*capabilityScore

	return common.ReachabilityScore{
		Location:           location,
		Capability:         capability,
		GeographicScore:    round1(geographic),
		CapabilityScore:    round1(capabilityScore),
		CombinedScore:      round1(combined),
		NearestVerified:    nearestVerified,
		DistanceKm:         distance,
		InfrastructureGaps: gaps,
	}
}

// claimsCapability reports whether the facility's claim-bearing text
// mentions the capability.
func claimsCapability(facility common.FacilityRecord, capability string) bool {
	needle := strings.ToLower(capability)
	for _, claimed := range facility.Capabilities {
		if strings.Contains(strings.ToLower(claimed), needle) {
			return true
		}
	}
	return strings.Contains(strings.ToLower(facility.Description), needle)
}

// criticalMismatches returns the critical findings recorded against one
// facility. Any critical mismatch disqualifies the facility from counting
// as verified, regardless of which capability it concerns.
func criticalMismatches(facilityID string, mismatches []common.Mismatch) []common.Mismatch {
	var criticals []common.Mismatch
	for _, m := range mismatches {
		if m.FacilityID == facilityID && m.Severity == common.SeverityCritical {
			criticals = append(criticals, m)
		}
	}
	return criticals
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func dedupeStrings(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := items[:0]
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
