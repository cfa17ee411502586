package csv

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/analytics"
	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/store"
)

// columnAliases maps the header spellings seen in government facility
// exports onto canonical field names. Headers are matched lowercased.
var columnAliases = map[string]string{
	"unique_id":             "id",
	"pk_unique_id":          "id",
	"facility_id":           "id",
	"id":                    "id",
	"name":                  "name",
	"facility_name":         "name",
	"address_city":          "city",
	"city":                  "city",
	"address_stateorregion": "region",
	"state":                 "region",
	"region":                "region",
	"facilitytypeid":        "facility_type",
	"facility_type":         "facility_type",
	"specialties":           "specialties",
	"procedure":             "procedure",
	"capability":            "capability",
	"equipment":             "equipment",
	"latitude":              "latitude",
	"longitude":             "longitude",
	"description":           "description",
}

// ParseFacilities parses an uploaded facility CSV into records. The
// specialties, procedure and capability list columns are merged into
// the claimed-capability set; rows without a facility identifier are
// dropped. List cells may be JSON arrays, bracketed quote lists, or
// plain delimited text.
func ParseFacilities(content []byte) ([]common.FacilityRecord, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			continue
		}
		if _, exists := columns[canonical]; !exists {
			columns[canonical] = i
		}
	}
	if _, ok := columns["id"]; !ok {
		return nil, fmt.Errorf("csv is missing a facility identifier column")
	}

	var records []common.FacilityRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		id := cell(row, columns, "id")
		if id == "" {
			continue
		}

		capabilities := parseListCell(cell(row, columns, "specialties"))
		capabilities = append(capabilities, parseListCell(cell(row, columns, "procedure"))...)
		capabilities = append(capabilities, parseListCell(cell(row, columns, "capability"))...)

		records = append(records, common.FacilityRecord{
			ID:           id,
			Name:         cell(row, columns, "name"),
			City:         cell(row, columns, "city"),
			Region:       normalizeRegion(cell(row, columns, "region")),
			FacilityType: cell(row, columns, "facility_type"),
			Capabilities: store.DedupeStrings(capabilities),
			Equipment:    store.DedupeStrings(parseListCell(cell(row, columns, "equipment"))),
			Description:  cell(row, columns, "description"),
			Latitude:     parseCoordinate(cell(row, columns, "latitude")),
			Longitude:    parseCoordinate(cell(row, columns, "longitude")),
		})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv contains no facility rows")
	}
	return records, nil
}

func cell(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseListCell explodes a list-valued cell. JSON arrays are preferred;
// bracketed Python-style lists and plain comma/pipe text fall back to
// splitting.
func parseListCell(value string) []string {
	if value == "" {
		return nil
	}

	if strings.HasPrefix(value, "[") {
		var parsed []any
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			out := make([]string, 0, len(parsed))
			for _, item := range parsed {
				if s := strings.TrimSpace(fmt.Sprintf("%v", item)); s != "" {
					out = append(out, s)
				}
			}
			return out
		}
		value = strings.TrimSuffix(strings.TrimPrefix(value, "["), "]")
	}

	split := strings.Split(value, ",")
	if strings.Contains(value, "|") {
		split = strings.Split(value, "|")
	}

	out := make([]string, 0, len(split))
	for _, item := range split {
		item = strings.Trim(strings.TrimSpace(item), `'"`)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

// normalizeRegion maps a state cell onto its USPS code. Two-letter
// cells outside the recognized set pass through uppercased so
// territories survive.
func normalizeRegion(value string) string {
	if value == "" {
		return ""
	}
	if code := analytics.ExtractRegionCode(value); code != "" {
		return code
	}
	if len(value) == 2 {
		return strings.ToUpper(value)
	}
	return ""
}

func parseCoordinate(value string) *float64 {
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}
