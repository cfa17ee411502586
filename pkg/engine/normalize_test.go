package engine

import (
	"reflect"
	"testing"
)

func TestQuickNormalize(t *testing.T) {
	tests := []struct {
		name            string
		query           string
		wantConfidence  string
		wantStates      []string
		wantRegionName  string
		wantStateFilter string
		wantSpecialties []string
		wantTerms       []string
	}{
		{
			name:            "region name expands to state list",
			query:           "How many hospitals are there in the southwest?",
			wantConfidence:  "high",
			wantStates:      []string{"TX", "OK", "NM", "AZ"},
			wantRegionName:  "southwest",
			wantStateFilter: "region IN ('TX','OK','NM','AZ')",
		},
		{
			name:            "state name wins over nothing",
			query:           "List facilities in Texas",
			wantConfidence:  "high",
			wantStates:      []string{"TX"},
			wantStateFilter: "region = 'TX'",
		},
		{
			name:            "state overrides region states",
			query:           "Compare the southern us with Texas",
			wantConfidence:  "high",
			wantStates:      []string{"TX"},
			wantRegionName:  "southern_us",
			wantStateFilter: "region = 'TX'",
		},
		{
			name:            "specialty term maps to dataset value",
			query:           "Where can I find a cardiologist?",
			wantConfidence:  "high",
			wantSpecialties: []string{"Cardiology"},
			wantTerms:       []string{"cardiologist"},
		},
		{
			name:            "specialty and state together",
			query:           "Pediatricians in Florida",
			wantConfidence:  "high",
			wantStates:      []string{"FL"},
			wantStateFilter: "region = 'FL'",
			wantSpecialties: []string{"Pediatrics"},
			wantTerms:       []string{"pediatrician"},
		},
		{
			name:           "no table matches",
			query:          "Tell me something about medical coverage",
			wantConfidence: "low",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quickNormalize(tt.query)

			if got.Confidence != tt.wantConfidence {
				t.Fatalf("Confidence = %q, want %q", got.Confidence, tt.wantConfidence)
			}
			if !reflect.DeepEqual(got.Query.Geography.States, tt.wantStates) {
				t.Fatalf("States = %v, want %v", got.Query.Geography.States, tt.wantStates)
			}
			if got.Query.Geography.RegionName != tt.wantRegionName {
				t.Fatalf("RegionName = %q, want %q", got.Query.Geography.RegionName, tt.wantRegionName)
			}
			if got.Query.SQLHints.StateFilter != tt.wantStateFilter {
				t.Fatalf("StateFilter = %q, want %q", got.Query.SQLHints.StateFilter, tt.wantStateFilter)
			}
			if !reflect.DeepEqual(got.Query.Medical.Specialties, tt.wantSpecialties) {
				t.Fatalf("Specialties = %v, want %v", got.Query.Medical.Specialties, tt.wantSpecialties)
			}
			if !reflect.DeepEqual(got.Query.Medical.OriginalTerms, tt.wantTerms) {
				t.Fatalf("OriginalTerms = %v, want %v", got.Query.Medical.OriginalTerms, tt.wantTerms)
			}

			wantUseColumn := len(tt.wantSpecialties) > 0
			if got.Query.SearchStrategy.UseSpecialtyColumn != wantUseColumn {
				t.Fatalf("UseSpecialtyColumn = %v, want %v",
					got.Query.SearchStrategy.UseSpecialtyColumn, wantUseColumn)
			}
		})
	}
}

func TestQuickNormalizeSpecialtyFilter(t *testing.T) {
	got := quickNormalize("Is there an eye doctor nearby?")

	want := "LOWER(specialty) LIKE '%ophthalmology%'"
	if got.Query.SQLHints.SpecialtyFilter != want {
		t.Fatalf("SpecialtyFilter = %q, want %q", got.Query.SQLHints.SpecialtyFilter, want)
	}
}

func TestQuickNormalizeCollectsAllSpecialtyMatches(t *testing.T) {
	got := quickNormalize("Do we need more pediatrician or psychiatrist coverage?")

	wantSpecialties := []string{"Pediatrics", "Psychiatry & Neurology"}
	if !reflect.DeepEqual(got.Query.Medical.Specialties, wantSpecialties) {
		t.Fatalf("Specialties = %v, want %v", got.Query.Medical.Specialties, wantSpecialties)
	}
	wantTerms := []string{"pediatrician", "psychiatrist"}
	if !reflect.DeepEqual(got.Query.Medical.OriginalTerms, wantTerms) {
		t.Fatalf("OriginalTerms = %v, want %v", got.Query.Medical.OriginalTerms, wantTerms)
	}
}

func TestRegionStateList(t *testing.T) {
	if got := regionStateList("southwest"); got != "TX, OK, NM, AZ" {
		t.Fatalf("regionStateList(southwest) = %q", got)
	}
	if got := regionStateList("atlantis"); got != "" {
		t.Fatalf("regionStateList(atlantis) = %q, want empty", got)
	}
}
