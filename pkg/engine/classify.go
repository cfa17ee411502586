package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/analytics"
	"github.com/carelens-health/carelens/backend/pkg/logger"
)

// ErrUnclassifiable is returned when the classifier produces empty
// output, leaving no routing decision to make.
var ErrUnclassifiable = errors.New("classifier returned empty output")

// classify asks the model for the question's intent label. Unknown
// labels default to SQL_QUERY, as does a transport failure with the
// error recorded in the context. Analytics questions also get their
// stage plan here, so routing stays a pure function of the context.
func (e *Engine) classify(ctx context.Context, c AnalysisContext) (Partial, error) {
	response, err := e.ai.GenerateCompletion(ctx, fmt.Sprintf(classifyPrompt, c.Query))
	if err != nil {
		logger.Warn("[Engine] Intent classification failed", "error", err)
		return Partial{
			Intent: IntentSQL,
			Errors: []string{fmt.Sprintf("Intent classification error: %v", err)},
		}, nil
	}

	label := strings.ToUpper(strings.TrimSpace(response))
	if label == "" {
		return Partial{}, ErrUnclassifiable
	}

	intent := Intent(label)
	switch intent {
	case IntentSQL, IntentVector, IntentGeo, IntentAnalytics, IntentCounterfactual, IntentHybrid:
	default:
		logger.Warn("[Engine] Unknown intent label, defaulting", "label", label)
		intent = IntentSQL
	}

	partial := Partial{Intent: intent}
	if intent == IntentAnalytics {
		partial.Plan = analytics.Plan(c.Query)
	}
	logger.Info("[Engine] Intent classified", "intent", intent)
	return partial, nil
}
