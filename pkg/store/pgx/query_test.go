package pgx

import (
	"reflect"
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/store"
)

func TestBuildFacilityQuery_NoFilters(t *testing.T) {
	sql, args := buildFacilityQuery(store.FacilityQuery{})

	want := "SELECT facility_id, name, city, region, facility_type, capabilities " +
		"FROM facilities ORDER BY region, name LIMIT $1"
	if sql != want {
		t.Fatalf("expected %q, got %q", want, sql)
	}
	if !reflect.DeepEqual(args, []any{100}) {
		t.Fatalf("expected default limit arg, got %v", args)
	}
}

func TestBuildFacilityQuery_StatesAndCities(t *testing.T) {
	sql, args := buildFacilityQuery(store.FacilityQuery{
		States: []string{"MT", "WY"},
		Cities: []string{"Billings"},
		Limit:  10,
	})

	want := "SELECT facility_id, name, city, region, facility_type, capabilities " +
		"FROM facilities WHERE region = ANY($1) AND LOWER(city) = ANY($2) " +
		"ORDER BY region, name LIMIT $3"
	if sql != want {
		t.Fatalf("expected %q, got %q", want, sql)
	}

	wantArgs := []any{[]string{"MT", "WY"}, []string{"billings"}, 10}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("expected args %v, got %v", wantArgs, args)
	}
}

func TestBuildFacilityQuery_Specialties(t *testing.T) {
	sql, args := buildFacilityQuery(store.FacilityQuery{
		States:      []string{"CA"},
		Specialties: []string{"Cardiology", "Neurology"},
	})

	want := "SELECT facility_id, name, city, region, facility_type, capabilities " +
		"FROM facilities WHERE region = ANY($1) AND " +
		"((array_to_string(capabilities, ' ') ILIKE $2 OR description ILIKE $2) OR " +
		"(array_to_string(capabilities, ' ') ILIKE $3 OR description ILIKE $3)) " +
		"ORDER BY region, name LIMIT $4"
	if sql != want {
		t.Fatalf("expected %q, got %q", want, sql)
	}

	wantArgs := []any{[]string{"CA"}, "%Cardiology%", "%Neurology%", 100}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("expected args %v, got %v", wantArgs, args)
	}
}

func TestBuildFacilityQuery_CountOnly(t *testing.T) {
	sql, args := buildFacilityQuery(store.FacilityQuery{
		States:    []string{"MT"},
		CountOnly: true,
	})

	want := "SELECT region, COUNT(DISTINCT facility_id) AS facility_count " +
		"FROM facilities WHERE region = ANY($1) " +
		"GROUP BY region ORDER BY facility_count DESC, region"
	if sql != want {
		t.Fatalf("expected %q, got %q", want, sql)
	}
	if !reflect.DeepEqual(args, []any{[]string{"MT"}}) {
		t.Fatalf("expected single states arg, got %v", args)
	}
}

func TestBuildFacilityQuery_CountOnlyIgnoresLimit(t *testing.T) {
	sql, args := buildFacilityQuery(store.FacilityQuery{CountOnly: true, Limit: 5})

	want := "SELECT region, COUNT(DISTINCT facility_id) AS facility_count " +
		"FROM facilities GROUP BY region ORDER BY facility_count DESC, region"
	if sql != want {
		t.Fatalf("expected %q, got %q", want, sql)
	}
	if len(args) != 0 {
		t.Fatalf("expected no args, got %v", args)
	}
}
