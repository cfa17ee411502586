package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/carelens-health/carelens/backend/internal/util"
	"github.com/carelens-health/carelens/backend/pkg/ai"
	"github.com/carelens-health/carelens/backend/pkg/analytics"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
	"github.com/carelens-health/carelens/backend/pkg/verify"
	"github.com/go-playground/validator"
)

// maxSteps bounds the driver loop. The longest legal path runs well
// under ten stages; hitting the bound means the router looped.
const maxSteps = 32

const defaultClusterThreshold = 10

// ErrStalled is returned when the router fails to reach synthesis
// within the stage budget.
var ErrStalled = errors.New("workflow exceeded its stage budget")

// Verifier gathers external evidence for claims that critical
// mismatches produced. Implementations live outside the engine; the
// verify package provides the web-search-backed one.
type Verifier interface {
	VerifyClaims(ctx context.Context, question string, claims []common.VerificationClaim, fillGaps bool) (common.VerificationResult, error)
}

// Engine runs the analysis workflow: a fixed stage graph driven by an
// explicit routing function over an immutable context value.
type Engine struct {
	ai                 ai.Client
	store              store.Storage
	verifier           Verifier
	validate           *validator.Validate
	enableVerification bool
	clusterThreshold   int
	weights            analytics.Weights
	includeMinor       bool
}

type Params struct {
	AI    ai.Client
	Store store.Storage

	// Verifier is required when EnableVerification is set.
	Verifier           Verifier
	EnableVerification bool

	// ClusterThreshold is the systemic cluster size cutoff; zero means
	// the default of 10.
	ClusterThreshold int

	// Weights for reachability scoring; the zero value means the even
	// 0.5/0.5 split.
	Weights analytics.Weights

	// IncludeMinorMismatches keeps minor findings in mismatch output.
	IncludeMinorMismatches bool
}

func New(params Params) (*Engine, error) {
	if params.AI == nil {
		return nil, errors.New("ai client is required")
	}
	if params.Store == nil {
		return nil, errors.New("facility storage is required")
	}
	if params.EnableVerification && params.Verifier == nil {
		return nil, errors.New("external verification enabled without a verifier")
	}

	threshold := params.ClusterThreshold
	if threshold <= 0 {
		threshold = defaultClusterThreshold
	}
	weights := params.Weights
	if weights.Geographic == 0 && weights.Capability == 0 {
		weights = analytics.DefaultWeights()
	}

	return &Engine{
		ai:                 params.AI,
		store:              params.Store,
		verifier:           params.Verifier,
		validate:           validator.New(),
		enableVerification: params.EnableVerification,
		clusterThreshold:   threshold,
		weights:            weights,
		includeMinor:       params.IncludeMinorMismatches,
	}, nil
}

// NewFromEnv builds an engine configured from the environment. Enabling
// external verification without a search API key is a config error.
func NewFromEnv(client ai.Client, st store.Storage) (*Engine, error) {
	params := Params{
		AI:                     client,
		Store:                  st,
		EnableVerification:     util.GetEnvBool("ENABLE_EXTERNAL_VERIFICATION", false),
		ClusterThreshold:       int(util.GetEnvNumeric("CONTRADICTION_CLUSTER_THRESHOLD", defaultClusterThreshold)),
		IncludeMinorMismatches: util.GetEnvBool("INCLUDE_MINOR_MISMATCHES", false),
		Weights: analytics.Weights{
			Geographic: util.GetEnvFloat("REACHABILITY_WEIGHT_GEOGRAPHIC", 0.5),
			Capability: util.GetEnvFloat("REACHABILITY_WEIGHT_CAPABILITY", 0.5),
		},
	}

	if params.EnableVerification {
		verifier, err := verify.NewFromEnv(client)
		if err != nil {
			return nil, err
		}
		params.Verifier = verifier
	}

	return New(params)
}

// Run answers one question: classify, route through the data and
// analytics stages the intent calls for, synthesize. Collaborator
// failures are recorded in the result's Errors and do not abort the
// run; only malformed classifier or normalizer output is fatal.
func (e *Engine) Run(ctx context.Context, query string) (FinalResult, error) {
	logger.Info("[Engine] Starting analysis", "query", query)
	c := newAnalysisContext(query)

	for range maxSteps {
		stage, more := e.next(c)
		if !more {
			logger.Info("[Engine] Analysis complete",
				"stages", len(c.Executed), "citations", len(c.Citations), "errors", len(c.Errors))
			return FinalResult{Answer: c.Answer, Citations: c.Citations, Errors: c.Errors}, nil
		}

		partial, err := e.dispatch(ctx, stage, c)
		if err != nil {
			logger.Error("[Engine] Stage failed", "stage", stage, "error", err)
			return FinalResult{}, fmt.Errorf("stage %s: %w", stage, err)
		}
		partial.Stage = stage
		c = merge(c, partial)
	}

	logger.Error("[Engine] Router stalled", "executed", len(c.Executed))
	return FinalResult{}, ErrStalled
}

// next is the routing function: given the context so far it names the
// stage to run next, or reports the workflow done. It is a pure
// function of the context and the engine's fixed configuration, so the
// same context always routes the same way.
func (e *Engine) next(c AnalysisContext) (common.Stage, bool) {
	if c.done(common.StageSynthesize) {
		return "", false
	}
	if !c.done(common.StageClassify) {
		return common.StageClassify, true
	}

	switch c.Intent {
	case IntentSQL, IntentHybrid:
		if !c.done(common.StageNormalize) {
			return common.StageNormalize, true
		}
		if !c.done(common.StageStructuredQuery) {
			return common.StageStructuredQuery, true
		}
		if c.Intent == IntentHybrid && !c.done(common.StageSimilarity) {
			return common.StageSimilarity, true
		}
		return e.coreRoute(c)

	case IntentVector:
		if !c.done(common.StageSimilarity) {
			return common.StageSimilarity, true
		}
		return e.coreRoute(c)

	case IntentGeo:
		if !c.done(common.StageGeographic) {
			return common.StageGeographic, true
		}
		return common.StageSynthesize, true

	case IntentAnalytics:
		for _, planned := range c.Plan {
			if !c.done(planned) {
				return planned, true
			}
		}
		if e.enableVerification && c.verificationNeeded() && !c.done(common.StageVerify) {
			return common.StageVerify, true
		}
		return common.StageSynthesize, true

	case IntentCounterfactual:
		if !c.done(common.StageCounterfactual) {
			return common.StageCounterfactual, true
		}
		if !c.done(common.StageGeographic) {
			return common.StageGeographic, true
		}
		return common.StageSynthesize, true
	}

	// Unknown intent states never deadlock; they answer with whatever
	// the context holds.
	return common.StageSynthesize, true
}

// coreRoute decides where the structured and similarity paths go once
// their data stages ran: external verification when it is enabled and
// could add evidence, otherwise straight to synthesis. A data stage
// that succeeded but found nothing also triggers verification, to fill
// the gap from external sources.
func (e *Engine) coreRoute(c AnalysisContext) (common.Stage, bool) {
	if e.enableVerification && !c.done(common.StageVerify) {
		needed := c.verificationNeeded()
		if c.Structured != nil && c.Structured.Success && c.Structured.RowCount == 0 {
			needed = true
		}
		if c.Similarity != nil && c.Similarity.Success && c.Similarity.Count == 0 {
			needed = true
		}
		if needed {
			return common.StageVerify, true
		}
	}
	return common.StageSynthesize, true
}

func (e *Engine) dispatch(ctx context.Context, stage common.Stage, c AnalysisContext) (Partial, error) {
	logger.Debug("[Engine] Running stage", "stage", stage)
	switch stage {
	case common.StageClassify:
		return e.classify(ctx, c)
	case common.StageNormalize:
		return e.normalize(ctx, c)
	case common.StageStructuredQuery:
		return e.structuredQuery(ctx, c)
	case common.StageSimilarity:
		return e.similaritySearch(ctx, c)
	case common.StageGeographic:
		return e.geographic(ctx, c)
	case common.StageMismatch:
		return e.detectMismatches(ctx, c)
	case common.StageContradiction:
		return e.clusterContradictions(ctx, c)
	case common.StageReachability:
		return e.scoreReachability(ctx, c)
	case common.StageDesert:
		return e.classifyDeserts(ctx, c)
	case common.StageVerify:
		return e.verifyExternally(ctx, c)
	case common.StageCounterfactual:
		return e.simulateCounterfactual(ctx, c)
	case common.StageSynthesize:
		return e.synthesize(ctx, c)
	}
	return Partial{}, fmt.Errorf("no implementation for stage %q", stage)
}
