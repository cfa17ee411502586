package verify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/internal/util"
	"github.com/carelens-health/carelens/backend/pkg/ai"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
)

// gapClaimID keys the data-gap verdict in the results map.
const gapClaimID = "data_gap_filling"

const verdictPrompt = `You are a medical verification expert. Analyze these search results to verify a medical claim.

CLAIM TO VERIFY:
The procedure "%s" requires the following infrastructure: %s

SEARCH RESULTS:
%s

Internal facility data uses USPS state codes while external sources may use full state names; normalize before comparison and never refute a claim over naming format differences alone.

Based on these authoritative sources, determine:
1. Is the claim VERIFIED (the procedure does require this infrastructure)?
2. Is the claim REFUTED (the procedure does NOT require this infrastructure)?
3. Is there INSUFFICIENT evidence to determine?`

type verdictPayload struct {
	Verified       *bool  `json:"verified" jsonschema_description:"True when the sources confirm the infrastructure requirement, false when they contradict it, null when the evidence is insufficient."`
	Refuted        bool   `json:"refuted" jsonschema_description:"True when the sources show the procedure does not require the infrastructure."`
	Confidence     string `json:"confidence" jsonschema:"enum=high,enum=medium,enum=low"`
	Evidence       string `json:"evidence" jsonschema_description:"Brief summary of the evidence from the sources."`
	Recommendation string `json:"recommendation" jsonschema_description:"What this means for the facility."`
}

// Verifier gathers web evidence for critical mismatch claims and turns
// it into per-claim verdicts. It is advisory: every internal failure
// degrades to an inconclusive verdict instead of an error, so a flaky
// search backend never blocks an answer.
type Verifier struct {
	ai       ai.Client
	searcher Searcher
	evidence *evidenceFetcher
}

type Params struct {
	AI       ai.Client
	Searcher Searcher

	// FetchEvidence additionally downloads the top search hit and feeds
	// its extracted article text into verdict analysis.
	FetchEvidence bool
}

func New(params Params) (*Verifier, error) {
	if params.AI == nil {
		return nil, errors.New("ai client is required")
	}
	if params.Searcher == nil {
		return nil, errors.New("search backend is required")
	}

	v := &Verifier{ai: params.AI, searcher: params.Searcher}
	if params.FetchEvidence {
		v.evidence = newEvidenceFetcher()
	}
	return v, nil
}

// NewFromEnv builds a verifier from the configured search API keys,
// preferring Tavily because its search honors the authority domain
// allow-list.
func NewFromEnv(client ai.Client) (*Verifier, error) {
	fetchEvidence := util.GetEnvBool("VERIFY_FETCH_EVIDENCE", false)

	if key := util.GetEnv("TAVILY_API_KEY"); key != "" {
		return New(Params{AI: client, Searcher: NewTavilySearcher(key), FetchEvidence: fetchEvidence})
	}
	if key := util.GetEnv("SERP_API_KEY"); key != "" {
		return New(Params{AI: client, Searcher: NewSerpSearcher(key), FetchEvidence: fetchEvidence})
	}
	return nil, errors.New("no search api key configured (set TAVILY_API_KEY or SERP_API_KEY)")
}

// VerifyClaims resolves every claim to a verdict and, when the data
// stages came back empty, adds a data-gap verdict built from general
// statistics searches. The only error it returns is context
// cancellation.
func (v *Verifier) VerifyClaims(ctx context.Context, question string, claims []common.VerificationClaim, fillGaps bool) (common.VerificationResult, error) {
	results := common.Verdicts{}

	for _, claim := range claims {
		if ctx.Err() != nil {
			return common.VerificationResult{}, ctx.Err()
		}
		results[claim.ID] = v.verifyClaim(ctx, claim)
	}

	if fillGaps {
		if ctx.Err() != nil {
			return common.VerificationResult{}, ctx.Err()
		}
		results[gapClaimID] = v.fillDataGaps(ctx, question)
	}

	verified, refuted := 0, 0
	for _, verdict := range results {
		if verdict.Verified == nil {
			continue
		}
		if *verdict.Verified {
			verified++
		} else {
			refuted++
		}
	}

	result := common.VerificationResult{
		Results: results,
		Sources: []string{v.searcher.Name()},
	}
	if len(results) > 0 {
		result.Summary = fmt.Sprintf("Verified %d claims using external sources. %d confirmed, %d refuted.",
			len(results), verified, refuted)
	}
	return result, nil
}

// verifyClaim searches for evidence on one claim and asks the model for
// a verdict. Claims are never dropped; failures degrade to
// inconclusive.
func (v *Verifier) verifyClaim(ctx context.Context, claim common.VerificationClaim) common.VerificationVerdict {
	infra := claim.MissingInfrastructure
	if len(infra) > 3 {
		infra = infra[:3]
	}
	query := fmt.Sprintf("Does %s require %s medical equipment standards",
		claim.Procedure, strings.Join(infra, ", "))
	logger.Info("[Verify] Verifying claim", "id", claim.ID, "query", query)

	results, err := v.search(ctx, query)
	if err != nil {
		logger.Warn("[Verify] Search failed", "id", claim.ID, "error", err)
	}
	if len(results) == 0 {
		return common.VerificationVerdict{
			Evidence:   "No external evidence found",
			Confidence: "low",
		}
	}

	return v.analyzeResults(ctx, claim, results)
}

// analyzeResults asks the model to judge the claim against the search
// hits, optionally enriched with the extracted text of the top page.
func (v *Verifier) analyzeResults(ctx context.Context, claim common.VerificationClaim, results []SearchResult) common.VerificationVerdict {
	blocks := make([]string, 0, len(results)+1)
	for _, result := range results {
		blocks = append(blocks, fmt.Sprintf("Source: %s\nURL: %s\nContent: %s",
			result.Title, result.URL, result.Snippet))
	}
	if v.evidence != nil {
		text, err := v.evidence.Fetch(ctx, results[0].URL)
		if err != nil {
			logger.Debug("[Verify] Evidence extraction skipped", "url", results[0].URL, "error", err)
		} else if text != "" {
			blocks = append(blocks, "Full text of the top source:\n"+text)
		}
	}

	prompt := fmt.Sprintf(verdictPrompt, claim.Procedure,
		strings.Join(claim.MissingInfrastructure, ", "), strings.Join(blocks, "\n\n"))

	var payload verdictPayload
	err := v.ai.GenerateCompletionWithFormat(ctx, "claim_verdict",
		"Judge a medical infrastructure claim against search evidence.", prompt, &payload)
	if err != nil {
		logger.Warn("[Verify] Verdict analysis failed", "id", claim.ID, "error", err)
		return common.VerificationVerdict{
			Confidence: "low",
			Evidence:   fmt.Sprintf("Error analyzing results: %v", err),
			Reasoning:  "Manual review recommended",
		}
	}

	verdict := common.VerificationVerdict{
		Confidence: payload.Confidence,
		Evidence:   payload.Evidence,
		Reasoning:  payload.Recommendation,
		Source:     results[0].URL,
	}
	switch {
	case payload.Verified != nil && *payload.Verified:
		yes := true
		verdict.Verified = &yes
	case payload.Refuted:
		no := false
		verdict.Verified = &no
	}
	return verdict
}

// fillDataGaps searches for general statistics about the question so
// the answer can cite external context when internal data found
// nothing.
func (v *Verifier) fillDataGaps(ctx context.Context, question string) common.VerificationVerdict {
	query := fmt.Sprintf("%s healthcare facilities United States statistics", question)
	logger.Info("[Verify] Filling data gaps", "query", query)

	results, err := v.search(ctx, query)
	if err != nil {
		logger.Warn("[Verify] Gap search failed", "error", err)
	}
	if len(results) == 0 {
		return common.VerificationVerdict{
			Evidence:   "No external data found to fill gaps",
			Confidence: "low",
		}
	}

	if len(results) > 3 {
		results = results[:3]
	}
	findings := make([]string, 0, len(results))
	for _, result := range results {
		if result.Snippet != "" {
			findings = append(findings, result.Snippet)
		}
	}

	return common.VerificationVerdict{
		Confidence: "medium",
		Evidence:   strings.Join(findings, "\n"),
		Source:     results[0].URL,
	}
}

func (v *Verifier) search(ctx context.Context, query string) ([]SearchResult, error) {
	return util.RetryWithContext(ctx, searchRetries, func(ctx context.Context) ([]SearchResult, error) {
		return v.searcher.Search(ctx, query)
	})
}
