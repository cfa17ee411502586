package store

import (
	"testing"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

func TestBuildFacilityDocument(t *testing.T) {
	rec := common.FacilityRecord{
		ID:           "H001",
		Name:         "Mercy General Hospital",
		City:         "Billings",
		Region:       "MT",
		FacilityType: "Hospital",
		Capabilities: []string{"cardiology", "neurosurgery"},
		Equipment:    []string{"MRI", "CT Scanner"},
		Description:  "Regional referral center.",
	}

	want := "Facility: Mercy General Hospital\n" +
		"Type: Hospital\n" +
		"Location: Billings, MT\n" +
		"Capabilities: cardiology, neurosurgery\n" +
		"Equipment: MRI, CT Scanner\n" +
		"Description: Regional referral center."

	got := BuildFacilityDocument(rec)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildFacilityDocument_SparseRecord(t *testing.T) {
	rec := common.FacilityRecord{
		ID:     "H002",
		Name:   "St. Luke Clinic",
		Region: "MT",
	}

	want := "Facility: St. Luke Clinic\nLocation: MT"

	got := BuildFacilityDocument(rec)
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestBuildFacilityDocument_Empty(t *testing.T) {
	if got := BuildFacilityDocument(common.FacilityRecord{}); got != "" {
		t.Fatalf("expected empty document, got %q", got)
	}
}
