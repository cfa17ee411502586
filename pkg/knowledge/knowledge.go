// Package knowledge maps claimed medical capabilities to the equipment
// they require. The requirement tiers, procedure aliases and synonym
// groups are declarative tables; all matching logic lives in this file so
// the tables stay independently testable.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

// Verdict is the outcome of validating one claimed capability against the
// equipment a facility lists. Valid is nil when no validation rules exist
// for the capability.
type Verdict struct {
	Valid              *bool           `json:"valid"`
	Severity           common.Severity `json:"severity"`
	MissingCritical    []string        `json:"missing_critical"`
	MissingRequired    []string        `json:"missing_required"`
	MissingRecommended []string        `json:"missing_recommended"`
	Justification      string          `json:"justification"`
}

// Lookup resolves a capability, specialty or procedure name to its
// equipment requirement tiers. Resolution order: exact capability name,
// procedure alias, then bidirectional substring over capability names.
// The second return is false when nothing matched.
func Lookup(capability string) (Requirements, bool) {
	name := strings.ToLower(strings.TrimSpace(capability))

	if reqs, ok := capabilityRequirements[name]; ok {
		return reqs, true
	}

	if specialty, ok := procedureSpecialty[name]; ok {
		if reqs, ok := capabilityRequirements[specialty]; ok {
			return reqs, true
		}
	}

	for _, known := range capabilityNames {
		if strings.Contains(name, known) || strings.Contains(known, name) {
			return capabilityRequirements[known], true
		}
	}

	return Requirements{}, false
}

// Validate checks the equipment a facility lists against the requirement
// tiers for one claimed capability.
//
// Outcomes: any critical item missing is a critical verdict; two or more
// required items missing is moderate; exactly one required item missing is
// minor but still valid; otherwise the claim passes clean. Capabilities
// without rules (or with an empty critical tier) return Valid=nil so
// callers can distinguish "cannot validate" from "validated fine".
func Validate(capability string, equipment []string) Verdict {
	reqs, ok := Lookup(capability)
	if !ok || len(reqs.Critical) == 0 {
		return Verdict{
			Valid:              nil,
			Severity:           common.SeverityUnknown,
			MissingCritical:    []string{},
			MissingRequired:    []string{},
			MissingRecommended: []string{},
			Justification:      fmt.Sprintf("No validation rules available for '%s'", capability),
		}
	}

	available := make(map[string]struct{}, len(equipment))
	for _, item := range equipment {
		available[strings.ToLower(strings.TrimSpace(item))] = struct{}{}
	}

	missingCritical := missingItems(reqs.Critical, available)
	missingRequired := missingItems(reqs.Required, available)
	missingRecommended := missingItems(reqs.Recommended, available)

	verdict := Verdict{
		MissingCritical:    missingCritical,
		MissingRequired:    missingRequired,
		MissingRecommended: missingRecommended,
	}

	switch {
	case len(missingCritical) > 0:
		verdict.Valid = boolPtr(false)
		verdict.Severity = common.SeverityCritical
		verdict.Justification = fmt.Sprintf("%s requires critical equipment: %s", capability, strings.Join(missingCritical, ", "))
	case len(missingRequired) >= 2:
		verdict.Valid = boolPtr(false)
		verdict.Severity = common.SeverityModerate
		verdict.Justification = fmt.Sprintf("%s missing multiple required items: %s", capability, strings.Join(missingRequired, ", "))
	case len(missingRequired) == 1:
		verdict.Valid = boolPtr(true)
		verdict.Severity = common.SeverityMinor
		verdict.Justification = fmt.Sprintf("%s missing some required equipment but may be operational", capability)
	default:
		verdict.Valid = boolPtr(true)
		verdict.Severity = common.SeverityNone
		verdict.Justification = fmt.Sprintf("%s has all critical and required equipment", capability)
	}

	return verdict
}

func missingItems(tier []string, available map[string]struct{}) []string {
	missing := []string{}
	for _, item := range tier {
		if !equipmentAvailable(item, available) {
			missing = append(missing, item)
		}
	}
	return missing
}

// equipmentAvailable fuzzy-matches one required item against the
// facility's equipment set: exact match, bidirectional substring, then the
// synonym table. Substring checks are skipped for tokens of one or two
// characters; "or" (operating room) would otherwise match nearly
// everything.
func equipmentAvailable(item string, available map[string]struct{}) bool {
	want := strings.ToLower(strings.TrimSpace(item))

	if _, ok := available[want]; ok {
		return true
	}

	if len(want) > 2 {
		for have := range available {
			if len(have) <= 2 {
				continue
			}
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return true
			}
		}
	}

	for _, synonym := range equipmentSynonyms[want] {
		if _, ok := available[synonym]; ok {
			return true
		}
		if len(synonym) <= 2 {
			continue
		}
		for have := range available {
			if strings.Contains(have, synonym) {
				return true
			}
		}
	}

	return false
}

func boolPtr(v bool) *bool {
	return &v
}
