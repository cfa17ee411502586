package engine

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

func scenarioClient(t *testing.T, scenario common.CounterfactualScenario) *fakeAI {
	t.Helper()
	return &fakeAI{
		withFormat: func(name string, out any) error {
			if name != "counterfactual_scenario" {
				t.Fatalf("format name = %q, want counterfactual_scenario", name)
			}
			parsed, isScenario := out.(*common.CounterfactualScenario)
			if !isScenario {
				t.Fatalf("withFormat out = %T, want *common.CounterfactualScenario", out)
			}
			*parsed = scenario
			return nil
		},
	}
}

func TestSimulateCounterfactualAdd(t *testing.T) {
	client := scenarioClient(t, common.CounterfactualScenario{
		Action:     "add",
		Capability: "dialysis",
		Location:   "Montana",
		Count:      2,
	})
	backing := &fakeStore{facilities: []common.FacilityRecord{
		{ID: "F1", Region: "MT"},
		{ID: "F2", Region: "MT"},
		{ID: "F3", Region: "MT"},
	}}
	e := newTestEngine(t, Params{AI: client, Store: backing})

	partial, err := e.simulateCounterfactual(context.Background(),
		newAnalysisContext("what if we added 2 dialysis centers in Montana?"))
	if err != nil {
		t.Fatalf("simulateCounterfactual() error = %v, want nil", err)
	}

	state := partial.Counterfactual
	if state == nil || !state.IsActive {
		t.Fatalf("Counterfactual = %+v, want active state", state)
	}
	if len(state.ScenarioID) != 8 {
		t.Fatalf("ScenarioID = %q, want 8 characters", state.ScenarioID)
	}
	if len(state.SimulatedFacilities) != 2 {
		t.Fatalf("simulated facilities = %d, want 2", len(state.SimulatedFacilities))
	}
	for i, facility := range state.SimulatedFacilities {
		if !strings.HasPrefix(facility.ID, "SIM_") {
			t.Fatalf("facility %d ID = %q, want SIM_ prefix", i, facility.ID)
		}
		if facility.Region != "MT" {
			t.Fatalf("facility %d Region = %q, want MT", i, facility.Region)
		}
		if !reflect.DeepEqual(facility.Capabilities, []string{"dialysis"}) {
			t.Fatalf("facility %d Capabilities = %v, want [dialysis]", i, facility.Capabilities)
		}
	}
	if state.SimulatedFacilities[0].ID == state.SimulatedFacilities[1].ID {
		t.Fatalf("simulated IDs collide: %q", state.SimulatedFacilities[0].ID)
	}
	if state.BaselineFacilityCount != 3 {
		t.Fatalf("BaselineFacilityCount = %d, want 3", state.BaselineFacilityCount)
	}
	if state.Summary != "add 2 dialysis facilities in Montana" {
		t.Fatalf("Summary = %q, want scenario summary", state.Summary)
	}
	if len(partial.Citations) != 0 {
		t.Fatalf("Citations = %v, want none for simulation", partial.Citations)
	}
}

func TestSimulateCounterfactualUpgradeHasNoSimulatedRecords(t *testing.T) {
	client := scenarioClient(t, common.CounterfactualScenario{
		Action:     "upgrade",
		Capability: "neurosurgery",
		Location:   "Texas",
	})
	e := newTestEngine(t, Params{AI: client})

	partial, err := e.simulateCounterfactual(context.Background(),
		newAnalysisContext("what if Texas clinics were upgraded for neurosurgery?"))
	if err != nil {
		t.Fatalf("simulateCounterfactual() error = %v, want nil", err)
	}

	state := partial.Counterfactual
	if state == nil || !state.IsActive {
		t.Fatalf("Counterfactual = %+v, want active state", state)
	}
	if len(state.SimulatedFacilities) != 0 {
		t.Fatalf("simulated facilities = %d, want none for upgrade", len(state.SimulatedFacilities))
	}
	if state.Scenario.Count != 1 {
		t.Fatalf("Count = %d, want default 1", state.Scenario.Count)
	}
	if state.Summary != "upgrade 1 neurosurgery facilities in Texas" {
		t.Fatalf("Summary = %q, want scenario summary", state.Summary)
	}
}

func TestSimulateCounterfactualNotAScenario(t *testing.T) {
	client := scenarioClient(t, common.CounterfactualScenario{})
	e := newTestEngine(t, Params{AI: client})

	partial, err := e.simulateCounterfactual(context.Background(),
		newAnalysisContext("how many hospitals are in Ohio?"))
	if err != nil {
		t.Fatalf("simulateCounterfactual() error = %v, want nil", err)
	}
	if partial.Counterfactual != nil {
		t.Fatalf("Counterfactual = %+v, want nil for a factual question", partial.Counterfactual)
	}
	if len(partial.Errors) != 0 {
		t.Fatalf("Errors = %v, want none", partial.Errors)
	}
}

func TestSimulateCounterfactualParseFailureIsAdvisory(t *testing.T) {
	client := &fakeAI{
		withFormat: func(string, any) error { return errors.New("schema mismatch") },
	}
	e := newTestEngine(t, Params{AI: client})

	partial, err := e.simulateCounterfactual(context.Background(),
		newAnalysisContext("what if everything were different?"))
	if err != nil {
		t.Fatalf("simulateCounterfactual() error = %v, want nil", err)
	}
	if partial.Counterfactual != nil {
		t.Fatalf("Counterfactual = %+v, want nil after parse failure", partial.Counterfactual)
	}
	if len(partial.Errors) != 1 || !strings.Contains(partial.Errors[0], "Counterfactual Error") {
		t.Fatalf("Errors = %v, want one counterfactual error", partial.Errors)
	}
}

func TestSimulateCounterfactualBaselineFailureIsAdvisory(t *testing.T) {
	client := scenarioClient(t, common.CounterfactualScenario{
		Action:     "add",
		Capability: "dialysis",
		Location:   "Montana",
		Count:      1,
	})
	backing := &fakeStore{listErr: errors.New("database offline")}
	e := newTestEngine(t, Params{AI: client, Store: backing})

	partial, err := e.simulateCounterfactual(context.Background(),
		newAnalysisContext("what if Montana gained a dialysis center?"))
	if err != nil {
		t.Fatalf("simulateCounterfactual() error = %v, want nil", err)
	}

	state := partial.Counterfactual
	if state == nil || !state.IsActive {
		t.Fatalf("Counterfactual = %+v, want active state despite baseline failure", state)
	}
	if state.BaselineFacilityCount != 0 {
		t.Fatalf("BaselineFacilityCount = %d, want 0", state.BaselineFacilityCount)
	}
	if len(partial.Errors) != 1 || !strings.Contains(partial.Errors[0], "Counterfactual Baseline Error") {
		t.Fatalf("Errors = %v, want one baseline error", partial.Errors)
	}
}

func TestGeographicIncludesSimulatedFacilities(t *testing.T) {
	backing := &fakeStore{facilities: []common.FacilityRecord{
		{ID: "F1", Name: "Real Hospital", Region: "MT"},
	}}
	e := newTestEngine(t, Params{Store: backing})

	c := newAnalysisContext("how are facilities distributed?")
	c.Counterfactual = &common.CounterfactualState{
		IsActive: true,
		SimulatedFacilities: []common.FacilityRecord{
			{ID: "SIM_a", Region: "MT"},
			{ID: "SIM_b", Region: "MT"},
		},
	}

	partial, err := e.geographic(context.Background(), c)
	if err != nil {
		t.Fatalf("geographic() error = %v, want nil", err)
	}
	if partial.Geo == nil || !partial.Geo.Success {
		t.Fatalf("Geo = %+v, want successful analysis", partial.Geo)
	}
	if partial.Geo.LocationsAnalyzed != 3 {
		t.Fatalf("LocationsAnalyzed = %d, want real plus simulated = 3", partial.Geo.LocationsAnalyzed)
	}
	if len(partial.Citations) != 1 || partial.Citations[0].Agent != "GeoAgent" {
		t.Fatalf("Citations = %v, want one geo citation", partial.Citations)
	}
}
