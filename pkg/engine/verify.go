package engine

import (
	"context"
	"fmt"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
)

// maxVerifiedClaims caps how many claims one query sends to external
// search.
const maxVerifiedClaims = 5

// verifyExternally gathers web evidence for the claims critical
// mismatches produced, and fills data gaps when the data stages came
// back empty. Verification is advisory: a failing verifier is recorded
// and never blocks the answer.
func (e *Engine) verifyExternally(ctx context.Context, c AnalysisContext) (Partial, error) {
	var claims []common.VerificationClaim
	if c.Mismatches != nil {
		claims = c.Mismatches.VerificationNeeded
	}
	if len(claims) > maxVerifiedClaims {
		claims = claims[:maxVerifiedClaims]
	}

	result, err := e.verifier.VerifyClaims(ctx, c.Query, claims, insufficientData(c))
	if err != nil {
		logger.Warn("[Engine] External verification failed", "error", err)
		return Partial{
			Verification: &common.VerificationResult{
				Results: common.Verdicts{},
				Summary: "External verification unavailable",
			},
			Errors: []string{fmt.Sprintf("Verification Error: %v", err)},
		}, nil
	}

	logger.Info("[Engine] External verification done", "claims", len(result.Results))

	partial := Partial{Verification: &result}
	if len(result.Results) > 0 {
		partial.Citations = []common.Citation{{
			Agent:          "ExternalVerificationAgent",
			ClaimsVerified: len(result.Results),
			Sources:        result.Sources,
		}}
	}
	return partial, nil
}

// insufficientData reports whether any data stage succeeded but found
// nothing, which is when external search can still fill the gap.
func insufficientData(c AnalysisContext) bool {
	if c.Structured != nil && c.Structured.Success && c.Structured.RowCount == 0 {
		return true
	}
	if c.Similarity != nil && c.Similarity.Success && c.Similarity.Count == 0 {
		return true
	}
	if c.Geo != nil && c.Geo.Success && c.Geo.LocationsAnalyzed == 0 {
		return true
	}
	return false
}
