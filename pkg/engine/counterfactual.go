package engine

import (
	"context"
	"fmt"

	"github.com/carelens-health/carelens/backend/pkg/analytics"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// simulateCounterfactual parses the what-if scenario and builds the
// simulated world the geographic stage analyzes next. Simulated
// facilities never touch the store; they exist only in the context. A
// question the model cannot parse as a scenario leaves the workflow on
// the factual path.
func (e *Engine) simulateCounterfactual(ctx context.Context, c AnalysisContext) (Partial, error) {
	var scenario common.CounterfactualScenario
	err := e.ai.GenerateCompletionWithFormat(ctx, "counterfactual_scenario",
		"Extract the parameters of a what-if healthcare scenario.",
		fmt.Sprintf(counterfactualPrompt, c.Query), &scenario)
	if err != nil {
		logger.Warn("[Engine] Could not parse counterfactual scenario", "error", err)
		return Partial{Errors: []string{fmt.Sprintf("Counterfactual Error: %v", err)}}, nil
	}
	if scenario.Action == "" {
		logger.Warn("[Engine] Question is not a counterfactual scenario")
		return Partial{}, nil
	}
	if scenario.Count <= 0 {
		scenario.Count = 1
	}

	region := analytics.ExtractRegionCode(scenario.Location)
	scenarioID, _ := gonanoid.New(8)

	var simulated []common.FacilityRecord
	if scenario.Action == "add" {
		simulated = make([]common.FacilityRecord, 0, scenario.Count)
		for i := range scenario.Count {
			simulated = append(simulated, common.FacilityRecord{
				ID:           fmt.Sprintf("SIM_%s_%d", scenarioID, i+1),
				Name:         fmt.Sprintf("Simulated %s facility %d", scenario.Capability, i+1),
				City:         fmt.Sprintf("%s (simulated location %d)", scenario.Location, i+1),
				Region:       region,
				FacilityType: "hospital",
				Capabilities: []string{scenario.Capability},
			})
		}
	}

	partial := Partial{}
	baseline := 0
	facilities, err := e.store.ListFacilities(ctx, store.FacilityFilter{Region: region})
	if err != nil {
		logger.Warn("[Engine] Baseline facility count unavailable", "error", err)
		partial.Errors = []string{fmt.Sprintf("Counterfactual Baseline Error: %v", err)}
	} else {
		baseline = len(facilities)
	}

	state := &common.CounterfactualState{
		ScenarioID:            scenarioID,
		Scenario:              scenario,
		SimulatedFacilities:   simulated,
		BaselineFacilityCount: baseline,
		IsActive:              true,
		Summary: fmt.Sprintf("%s %d %s facilities in %s",
			scenario.Action, scenario.Count, scenario.Capability, scenario.Location),
	}
	logger.Info("[Engine] Counterfactual simulation created",
		"scenario", state.ScenarioID, "simulated", len(simulated), "baseline", baseline)

	partial.Counterfactual = state
	return partial, nil
}
