package store

import (
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

// BuildFacilityDocument renders one facility as the text that gets
// embedded for similarity search. Empty fields are left out so sparse
// records do not embed a wall of empty labels.
func BuildFacilityDocument(rec common.FacilityRecord) string {
	parts := make([]string, 0, 6)

	if rec.Name != "" {
		parts = append(parts, "Facility: "+rec.Name)
	}
	if rec.FacilityType != "" {
		parts = append(parts, "Type: "+rec.FacilityType)
	}

	location := make([]string, 0, 2)
	if rec.City != "" {
		location = append(location, rec.City)
	}
	if rec.Region != "" {
		location = append(location, rec.Region)
	}
	if len(location) > 0 {
		parts = append(parts, "Location: "+strings.Join(location, ", "))
	}

	if len(rec.Capabilities) > 0 {
		parts = append(parts, "Capabilities: "+strings.Join(rec.Capabilities, ", "))
	}
	if len(rec.Equipment) > 0 {
		parts = append(parts, "Equipment: "+strings.Join(rec.Equipment, ", "))
	}
	if rec.Description != "" {
		parts = append(parts, "Description: "+rec.Description)
	}

	return strings.Join(parts, "\n")
}
