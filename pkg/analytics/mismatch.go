package analytics

import (
	"fmt"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/knowledge"
)

// DetectorOptions configures mismatch detection. IncludeMinor also emits
// findings where exactly one required item is missing; those claims stay
// valid and are excluded by default.
type DetectorOptions struct {
	IncludeMinor bool
}

// DetectMismatches validates every claimed capability of every facility
// against the equipment knowledge base and emits one mismatch per
// contradicted claim.
//
// A claim is flagged when its verdict is invalid or any critical-tier item
// is missing. Capabilities without validation rules are skipped entirely;
// a facility with no flagged claims contributes nothing. Critical findings
// additionally queue a verification claim for the external evidence
// stage.
func DetectMismatches(facilities []common.FacilityRecord, opts DetectorOptions) common.MismatchAnalysis {
	mismatches := []common.Mismatch{}
	claims := []common.VerificationClaim{}

	criticalCount := 0
	moderateCount := 0

	for _, facility := range facilities {
		for _, capability := range facility.Capabilities {
			verdict := knowledge.Validate(capability, facility.Equipment)

			flagged := (verdict.Valid != nil && !*verdict.Valid) || len(verdict.MissingCritical) > 0
			if !flagged && opts.IncludeMinor && verdict.Severity == common.SeverityMinor {
				flagged = true
			}
			if !flagged {
				continue
			}

			missing := append([]string{}, verdict.MissingCritical...)
			missing = append(missing, verdict.MissingRequired...)

			mismatch := common.Mismatch{
				FacilityID:            facility.ID,
				FacilityName:          facility.Name,
				ClaimedCapability:     capability,
				MissingInfrastructure: missing,
				Severity:              verdict.Severity,
				Justification:         verdict.Justification,
				Location: common.Location{
					City:   facility.City,
					Region: facility.Region,
				},
			}
			mismatches = append(mismatches, mismatch)

			switch verdict.Severity {
			case common.SeverityCritical:
				criticalCount++
				claims = append(claims, common.VerificationClaim{
					ID:                    "verify_" + facility.ID,
					Procedure:             capability,
					MissingInfrastructure: missing,
					Uncertainty:           "high",
				})
			case common.SeverityModerate:
				moderateCount++
			}
		}
	}

	return common.MismatchAnalysis{
		Mismatches:         mismatches,
		VerificationNeeded: claims,
		FacilitiesAnalyzed: len(facilities),
		Summary: fmt.Sprintf("Found %d mismatches (%d critical, %d moderate) across %d facilities",
			len(mismatches), criticalCount, moderateCount, len(facilities)),
	}
}
