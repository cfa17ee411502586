package analytics

import (
	"fmt"
	"slices"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

// Desert severities, ordered worst-first.
const (
	DesertSevere   = "severe"
	DesertModerate = "moderate"
	DesertMild     = "mild"
)

type regionPopulation struct {
	name       string
	population int
}

// regionPopulations estimates how many people an underserved region
// affects. Matching is bidirectional substring in table order; unknown
// regions fall back to defaultPopulation.
var regionPopulations = []regionPopulation{
	{"Greater major cities", 4000000},
	{"Texas", 4800000},
	{"Eastern", 2600000},
	{"Central", 2200000},
	{"Western", 2400000},
	{"Northern", 2500000},
	{"Upper East", 1050000},
	{"Upper West", 700000},
	{"Volta", 2100000},
	{"Brong Ahafo", 2300000},
}

const defaultPopulation = 500000

// ClassifyDeserts marks regions as medical deserts along up to three axes
// (geographic, capability, skill) based on their reachability scores and
// geographic cold spots.
//
// Every low-reachability location (combined < 50) is classified; cold
// spots are always severe geographic deserts and overwrite a
// classification the score pass produced for the same region. Without
// either input the analysis degrades to an empty set.
func ClassifyDeserts(query string, geo *common.GeoAnalysis, scores []common.ReachabilityScore) common.DesertAnalysis {
	if geo == nil && len(scores) == 0 {
		return common.DesertAnalysis{
			Classifications: []common.DesertClassification{},
			Summary:         "Insufficient data for desert classification",
		}
	}

	capability := ExtractCapability(query)

	byKey := map[string]common.DesertClassification{}
	var order []string

	for _, score := range scores {
		if score.CombinedScore >= 50 {
			continue
		}
		key := score.Location + "_" + capability
		if _, ok := byKey[key]; !ok {
			order = append(order, key)
		}
		byKey[key] = classifyRegion(score.Location, capability, score)
	}

	if geo != nil && geo.AnalysisType == "cold_spots" {
		for _, spot := range geo.ColdSpots {
			key := spot.Region + "_" + capability
			if _, ok := byKey[key]; !ok {
				order = append(order, key)
			}
			byKey[key] = common.DesertClassification{
				Region:              spot.Region,
				Capability:          capability,
				DesertTypes:         []string{common.DesertGeographic},
				Severity:            DesertSevere,
				EstimatedPopulation: estimatePopulation(spot.Region),
				PrimaryGaps: []string{
					fmt.Sprintf("No %s facilities within 50km", capability),
					"Limited transportation infrastructure",
				},
				RecommendedInterventions: []string{
					fmt.Sprintf("Establish %s center in regional capital", capability),
					"Mobile health units for rural areas",
					"Telemedicine infrastructure",
				},
			}
		}
	}

	classifications := make([]common.DesertClassification, 0, len(order))
	severe := 0
	for _, key := range order {
		classification := byKey[key]
		classifications = append(classifications, classification)
		if classification.Severity == DesertSevere {
			severe++
		}
	}

	return common.DesertAnalysis{
		Classifications: classifications,
		Summary:         fmt.Sprintf("Classified %d medical deserts (%d severe)", len(classifications), severe),
	}
}

// classifyRegion derives the desert axes for one low-reachability
// location. Severity and interventions are computed before the
// default-type fallback applies, so a region that triggers no axis is a
// mild capability desert with only the generic intervention.
func classifyRegion(region, capability string, score common.ReachabilityScore) common.DesertClassification {
	var types []string
	var gaps []string

	if score.GeographicScore < 30 {
		types = append(types, common.DesertGeographic)
		if score.DistanceKm != nil && *score.DistanceKm > 0 {
			gaps = append(gaps, fmt.Sprintf("Nearest facility %.1fkm away", *score.DistanceKm))
		}
	}

	if score.CapabilityScore < 50 {
		types = append(types, common.DesertCapability)
		if score.CapabilityScore == 0 {
			gaps = append(gaps, fmt.Sprintf("No facilities offering %s", capability))
		} else {
			gaps = append(gaps, fmt.Sprintf("Limited %s facilities available", capability))
		}
	}

	if len(score.InfrastructureGaps) > 0 {
		types = append(types, common.DesertSkill)
		top := score.InfrastructureGaps
		if len(top) > 2 {
			top = top[:2]
		}
		gaps = append(gaps, top...)
	}

	severity := desertSeverity(types, score.CombinedScore)
	interventions := recommendInterventions(region, capability, types)

	if len(types) == 0 {
		types = []string{common.DesertCapability}
	}

	return common.DesertClassification{
		Region:                   region,
		Capability:               capability,
		DesertTypes:              types,
		Severity:                 severity,
		EstimatedPopulation:      estimatePopulation(region),
		PrimaryGaps:              gaps,
		RecommendedInterventions: interventions,
	}
}

// desertSeverity grades a desert: each axis adds 20 and low reachability
// adds the remaining distance to 100.
func desertSeverity(types []string, combined float64) string {
	score := float64(len(types))*20 + (100 - combined)
	switch {
	case score > 70:
		return DesertSevere
	case score > 40:
		return DesertModerate
	default:
		return DesertMild
	}
}

func recommendInterventions(region, capability string, types []string) []string {
	var recommendations []string

	if slices.Contains(types, common.DesertGeographic) {
		recommendations = append(recommendations,
			fmt.Sprintf("Establish %s center in %s", capability, region),
			"Improve transportation infrastructure",
			"Mobile health services for remote areas",
		)
	}
	if slices.Contains(types, common.DesertCapability) {
		recommendations = append(recommendations,
			fmt.Sprintf("Upgrade existing facilities to offer %s", capability),
			"Train local healthcare workers",
			"Equipment procurement program",
		)
	}
	if slices.Contains(types, common.DesertSkill) {
		recommendations = append(recommendations,
			"Infrastructure quality assurance program",
			"Equipment maintenance training",
			"Medical licensing verification",
		)
	}

	recommendations = append(recommendations, "Telemedicine consultation services")

	if len(recommendations) > 5 {
		recommendations = recommendations[:5]
	}
	return recommendations
}

func estimatePopulation(region string) int {
	r := strings.ToLower(region)
	for _, entry := range regionPopulations {
		name := strings.ToLower(entry.name)
		if strings.Contains(r, name) || strings.Contains(name, r) {
			return entry.population
		}
	}
	return defaultPopulation
}
