package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
)

// specialtyTerms maps common user language to the exact specialty
// values the dataset stores. Scanned in order; every matching term
// contributes, and the last match wins the SQL hint.
var specialtyTerms = []struct {
	Term  string
	Value string
}{
	{"gynecologist", "Obstetrics & Gynecology"},
	{"gynecology", "Obstetrics & Gynecology"},
	{"ob/gyn", "Obstetrics & Gynecology"},
	{"obgyn", "Obstetrics & Gynecology"},
	{"women's health", "Obstetrics & Gynecology"},
	{"cardiologist", "Cardiology"},
	{"heart doctor", "Cardiology"},
	{"cardiac", "Cardiology"},
	{"neurologist", "Psychiatry & Neurology"},
	{"brain doctor", "Psychiatry & Neurology"},
	{"eye doctor", "Ophthalmology"},
	{"ophthalmologist", "Ophthalmology"},
	{"surgeon", "Surgery"},
	{"emergency", "Emergency Medicine"},
	{"emergency room", "Emergency Medicine"},
	{"er doctor", "Emergency Medicine"},
	{"family doctor", "Family Medicine"},
	{"general practice", "General Practice"},
	{"pediatrician", "Pediatrics"},
	{"child doctor", "Pediatrics"},
	{"psychiatrist", "Psychiatry & Neurology"},
	{"mental health", "Psychiatry & Neurology"},
	{"anesthesiologist", "Anesthesiology"},
	{"radiologist", "Radiology"},
	{"pathologist", "Pathology"},
	{"dermatologist", "Dermatology"},
	{"skin doctor", "Dermatology"},
}

// regionStates maps colloquial US region names to their USPS state
// code lists. Scanned in order, first match wins.
var regionStates = []struct {
	Name   string
	States []string
}{
	{"northern_us", []string{"WA", "OR", "ID", "MT", "WY", "ND", "SD", "MN",
		"WI", "MI", "IL", "IN", "OH", "PA", "NY", "VT", "NH", "ME", "MA", "CT", "RI"}},
	{"northern_america", []string{"WA", "OR", "ID", "MT", "WY", "ND", "SD", "MN",
		"WI", "MI", "IL", "IN", "OH", "PA", "NY", "VT", "NH", "ME", "MA", "CT", "RI"}},
	{"southern_us", []string{"TX", "OK", "AR", "LA", "MS", "AL", "TN", "KY",
		"WV", "VA", "NC", "SC", "GA", "FL"}},
	{"western_us", []string{"WA", "OR", "CA", "NV", "ID", "MT", "WY", "UT",
		"CO", "AZ", "NM"}},
	{"eastern_us", []string{"ME", "NH", "VT", "MA", "RI", "CT", "NY", "PA",
		"NJ", "DE", "MD", "VA", "WV", "NC", "SC", "GA", "FL"}},
	{"midwest", []string{"OH", "IN", "IL", "MI", "WI", "MN", "IA", "MO",
		"ND", "SD", "NE", "KS"}},
	{"northeast", []string{"ME", "NH", "VT", "MA", "RI", "CT", "NY", "PA", "NJ"}},
	{"southeast", []string{"VA", "WV", "NC", "SC", "GA", "FL", "KY", "TN",
		"AL", "MS", "AR", "LA"}},
	{"southwest", []string{"TX", "OK", "NM", "AZ"}},
	{"pacific", []string{"WA", "OR", "CA", "AK", "HI"}},
}

// stateNames are the state names the rule-based pass recognizes.
// A state match overrides any region match's state list.
var stateNames = []struct {
	Name string
	Code string
}{
	{"california", "CA"},
	{"texas", "TX"},
	{"new york", "NY"},
	{"florida", "FL"},
	{"illinois", "IL"},
	{"pennsylvania", "PA"},
	{"ohio", "OH"},
	{"georgia", "GA"},
	{"michigan", "MI"},
	{"north carolina", "NC"},
	{"washington", "WA"},
}

// datasetSpecialties are the exact specialty values present in the
// dataset, listed in the normalization prompt.
var datasetSpecialties = []string{
	"Allergy & Immunology", "Anesthesiology", "Cardiology", "Critical Care",
	"Dermatology", "Emergency Medicine", "Endocrinology", "Family Medicine",
	"Gastroenterology", "General Practice", "Hematology", "Infectious Disease",
	"Internal Medicine", "Nephrology", "Neurology", "Nuclear Medicine",
	"Obstetrics & Gynecology", "Ophthalmology", "Orthopedic Surgery",
	"Pain Management", "Pathology", "Pediatrics",
	"Physical Medicine & Rehabilitation", "Preventive Medicine", "Psychiatry",
	"Psychiatry & Neurology", "Radiology", "Rheumatology", "Sports Medicine",
	"Surgery", "Urology",
}

// datasetDepartments are the exact department values present in the
// dataset.
var datasetDepartments = []string{
	"Anesthesiology", "Cardiology", "Critical Care", "Dermatology",
	"Emergency Medicine", "Endocrinology", "Family Medicine",
	"Gastroenterology", "General Practice", "Hematology", "Infectious Disease",
	"Internal Medicine", "Nephrology", "Neurology", "Nuclear Medicine",
	"Obstetrics & Gynecology", "Ophthalmology", "Orthopedic Surgery",
	"Pain Management", "Pathology", "Pediatrics",
	"Physical Medicine & Rehabilitation", "Preventive Medicine", "Psychiatry",
	"Radiology", "Rheumatology", "Sports Medicine", "Surgery", "Urology",
}

// normalize translates the question into exact dataset constraints:
// rule-based when the question names a known region, state or
// specialty, via the model otherwise. A model transport failure falls
// back to the rule-based constraints with the error recorded; model
// output that fails validation is fatal, since dataset access never
// runs on unvalidated constraints.
func (e *Engine) normalize(ctx context.Context, c AnalysisContext) (Partial, error) {
	quick := quickNormalize(c.Query)
	if quick.Confidence == "high" {
		logger.Info("[Engine] Query normalized by rules",
			"states", len(quick.Query.Geography.States),
			"specialties", len(quick.Query.Medical.Specialties))
		return Partial{Normalized: quick}, nil
	}

	prompt := fmt.Sprintf(normalizePrompt,
		indentList(datasetSpecialties),
		indentList(datasetDepartments),
		indentList([]string{"Hospital", "Clinic", "Medical Center"}),
		regionStateList("northern_america"),
		regionStateList("southern_us"),
		regionStateList("western_us"),
		regionStateList("eastern_us"),
		regionStateList("midwest"),
		c.Query,
	)

	var normalized common.NormalizedConstraints
	if err := e.ai.GenerateCompletionWithFormat(ctx, "normalize_query",
		"Translate a healthcare question into exact dataset constraints.",
		prompt, &normalized); err != nil {
		logger.Warn("[Engine] Query normalization failed, keeping rule-based constraints", "error", err)
		quick.Warnings = append(quick.Warnings, "model normalization unavailable")
		return Partial{
			Normalized: quick,
			Errors:     []string{fmt.Sprintf("Normalization error: %v", err)},
		}, nil
	}
	if err := e.validate.Struct(normalized); err != nil {
		return Partial{}, fmt.Errorf("normalizer output failed validation: %w", err)
	}

	logger.Info("[Engine] Query normalized by model", "confidence", normalized.Confidence)
	return Partial{Normalized: &normalized}, nil
}

// quickNormalize is the rule-based fast path. Confidence is high as
// soon as any table matched; callers fall through to the model
// otherwise.
func quickNormalize(query string) *common.NormalizedConstraints {
	lower := strings.ToLower(query)
	result := &common.NormalizedConstraints{
		Warnings:   []string{},
		Confidence: "low",
	}

	for _, region := range regionStates {
		if strings.Contains(lower, strings.ReplaceAll(region.Name, "_", " ")) {
			result.Query.Geography.States = region.States
			result.Query.Geography.RegionName = region.Name
			result.Query.SQLHints.StateFilter = stateInFilter(region.States)
			result.Confidence = "high"
			break
		}
	}

	for _, state := range stateNames {
		if strings.Contains(lower, state.Name) {
			result.Query.Geography.States = []string{state.Code}
			result.Query.SQLHints.StateFilter = fmt.Sprintf("region = '%s'", state.Code)
			result.Confidence = "high"
			break
		}
	}

	for _, specialty := range specialtyTerms {
		if !strings.Contains(lower, specialty.Term) {
			continue
		}
		result.Query.Medical.Specialties = append(result.Query.Medical.Specialties, specialty.Value)
		result.Query.Medical.OriginalTerms = append(result.Query.Medical.OriginalTerms, specialty.Term)
		result.Query.SearchStrategy.UseSpecialtyColumn = true
		result.Query.SQLHints.SpecialtyFilter = fmt.Sprintf(
			"LOWER(specialty) LIKE '%%%s%%'", strings.ToLower(specialty.Value))
		result.Confidence = "high"
	}

	return result
}

func stateInFilter(states []string) string {
	quoted := make([]string, 0, len(states))
	for _, code := range states {
		quoted = append(quoted, "'"+code+"'")
	}
	return fmt.Sprintf("region IN (%s)", strings.Join(quoted, ","))
}

func indentList(values []string) string {
	lines := make([]string, 0, len(values))
	for _, value := range values {
		lines = append(lines, "  - "+value)
	}
	return strings.Join(lines, "\n")
}

func regionStateList(name string) string {
	for _, region := range regionStates {
		if region.Name == name {
			return strings.Join(region.States, ", ")
		}
	}
	return ""
}
