package csv

import (
	"reflect"
	"strings"
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

const facilitiesCSV = `pk_unique_id,name,address_city,address_stateOrRegion,facilityTypeId,specialties,procedure,equipment,latitude,longitude
H001,Mercy General,Billings,Montana,Hospital,"[""cardiology"", ""neurosurgery""]","[""angioplasty""]","['MRI', 'CT Scanner']",45.78,-108.5
H002,St. Luke Clinic,Helena,MT,Clinic,dialysis,,dialysis machine|water treatment,,
,Orphan Row,Nowhere,MT,Clinic,,,,,
H003,Bay Medical,Oakland,CA,Hospital,"cardiology, oncology",,,not-a-number,
`

func floatPtr(f float64) *float64 { return &f }

func TestParseFacilities(t *testing.T) {
	records, err := ParseFacilities([]byte(facilitiesCSV))
	if err != nil {
		t.Fatalf("ParseFacilities: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	want := common.FacilityRecord{
		ID:           "H001",
		Name:         "Mercy General",
		City:         "Billings",
		Region:       "MT",
		FacilityType: "Hospital",
		Capabilities: []string{"cardiology", "neurosurgery", "angioplasty"},
		Equipment:    []string{"MRI", "CT Scanner"},
		Latitude:     floatPtr(45.78),
		Longitude:    floatPtr(-108.5),
	}
	if !reflect.DeepEqual(records[0], want) {
		t.Fatalf("expected %+v, got %+v", want, records[0])
	}

	second := records[1]
	if second.ID != "H002" || second.Region != "MT" {
		t.Fatalf("unexpected second record: %+v", second)
	}
	if !reflect.DeepEqual(second.Capabilities, []string{"dialysis"}) {
		t.Fatalf("expected plain specialty cell parsed, got %v", second.Capabilities)
	}
	if !reflect.DeepEqual(second.Equipment, []string{"dialysis machine", "water treatment"}) {
		t.Fatalf("expected pipe-split equipment, got %v", second.Equipment)
	}
	if second.Latitude != nil || second.Longitude != nil {
		t.Fatalf("expected nil coordinates, got %v/%v", second.Latitude, second.Longitude)
	}

	third := records[2]
	if third.ID != "H003" {
		t.Fatalf("expected id-less row skipped, got %+v", third)
	}
	if !reflect.DeepEqual(third.Capabilities, []string{"cardiology", "oncology"}) {
		t.Fatalf("expected comma-split specialties, got %v", third.Capabilities)
	}
	if third.Latitude != nil {
		t.Fatalf("expected invalid latitude dropped, got %v", third.Latitude)
	}
}

func TestParseFacilitiesEmptyFile(t *testing.T) {
	if _, err := ParseFacilities(nil); err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty file error, got %v", err)
	}
}

func TestParseFacilitiesMissingIDColumn(t *testing.T) {
	content := "name,address_city\nMercy General,Billings\n"
	_, err := ParseFacilities([]byte(content))
	if err == nil || !strings.Contains(err.Error(), "identifier column") {
		t.Fatalf("expected identifier column error, got %v", err)
	}
}

func TestParseFacilitiesHeaderOnly(t *testing.T) {
	content := "unique_id,name\n"
	_, err := ParseFacilities([]byte(content))
	if err == nil || !strings.Contains(err.Error(), "no facility rows") {
		t.Fatalf("expected no rows error, got %v", err)
	}
}

func TestParseListCell(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"empty", "", nil},
		{"json array", `["cardiology", "dialysis"]`, []string{"cardiology", "dialysis"}},
		{"python list", `['MRI', 'CT Scanner']`, []string{"MRI", "CT Scanner"}},
		{"pipes", "a|b|c", []string{"a", "b", "c"}},
		{"commas", "a, b,c", []string{"a", "b", "c"}},
		{"plain", "dialysis", []string{"dialysis"}},
		{"json with empties", `["", "x"]`, []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseListCell(tt.value)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("parseListCell(%q) = %v, want %v", tt.value, got, tt.want)
			}
		})
	}
}

func TestNormalizeRegion(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{"Montana", "MT"},
		{"MT", "MT"},
		{"ca", "CA"},
		{"PR", "PR"},
		{"Atlantis", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeRegion(tt.value); got != tt.want {
			t.Fatalf("normalizeRegion(%q) = %q, want %q", tt.value, got, tt.want)
		}
	}
}
