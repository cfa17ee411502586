package base

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/store"

	"github.com/jackc/pgx/v5"
)

// MemoryStorage is an in-memory store.Storage used by the offline demo
// and by tests that need a full storage backend without PostgreSQL. It
// mirrors the SQL store's semantics: queries are case-insensitive where
// the SQL uses ILIKE, similarity search is cosine distance, and missing
// rows surface as pgx.ErrNoRows.
type MemoryStorage struct {
	mu         sync.RWMutex
	facilities map[string]*memoryFacility
	datasets   map[int64]store.Dataset
	nextID     int64
}

type memoryFacility struct {
	record    common.FacilityRecord
	datasetID int64
	document  string
	embedding []float32
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		facilities: make(map[string]*memoryFacility),
		datasets:   make(map[int64]store.Dataset),
	}
}

func (s *MemoryStorage) QueryFacilities(
	ctx context.Context,
	query store.FacilityQuery,
) (store.StructuredRows, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []common.FacilityRecord
	for _, f := range s.facilities {
		if facilityMatches(f.record, query) {
			matched = append(matched, f.record)
		}
	}

	result := store.StructuredRows{
		SQL: fmt.Sprintf("memory scan: states=%v cities=%v specialties=%v count_only=%v",
			query.States, query.Cities, query.Specialties, query.CountOnly),
	}

	if query.CountOnly {
		counts := make(map[string]int)
		for _, rec := range matched {
			counts[rec.Region]++
		}
		regions := make([]string, 0, len(counts))
		for region := range counts {
			regions = append(regions, region)
		}
		sort.Slice(regions, func(i, j int) bool {
			if counts[regions[i]] != counts[regions[j]] {
				return counts[regions[i]] > counts[regions[j]]
			}
			return regions[i] < regions[j]
		})
		result.Columns = []string{"region", "facility_count"}
		for _, region := range regions {
			result.Rows = append(result.Rows, map[string]any{
				"region":         region,
				"facility_count": int64(counts[region]),
			})
		}
		return result, nil
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Region != matched[j].Region {
			return matched[i].Region < matched[j].Region
		}
		return matched[i].Name < matched[j].Name
	})
	limit := query.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	result.Columns = []string{"facility_id", "name", "city", "region", "facility_type", "capabilities"}
	for _, rec := range matched {
		result.Rows = append(result.Rows, map[string]any{
			"facility_id":   rec.ID,
			"name":          rec.Name,
			"city":          rec.City,
			"region":        rec.Region,
			"facility_type": rec.FacilityType,
			"capabilities":  strings.Join(rec.Capabilities, ", "),
		})
	}
	return result, nil
}

func facilityMatches(rec common.FacilityRecord, query store.FacilityQuery) bool {
	if len(query.States) > 0 && !containsString(query.States, rec.Region) {
		return false
	}
	if len(query.Cities) > 0 && !containsFold(query.Cities, rec.City) {
		return false
	}
	if len(query.Specialties) > 0 {
		haystack := strings.ToLower(strings.Join(rec.Capabilities, " ") + " " + rec.Description)
		found := false
		for _, specialty := range query.Specialties {
			if strings.Contains(haystack, strings.ToLower(specialty)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *MemoryStorage) ListFacilities(
	ctx context.Context,
	filter store.FacilityFilter,
) ([]common.FacilityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var records []common.FacilityRecord
	for _, f := range s.facilities {
		rec := f.record
		if filter.Region != "" && rec.Region != filter.Region {
			continue
		}
		if filter.City != "" && !strings.EqualFold(rec.City, filter.City) {
			continue
		}
		if filter.FacilityType != "" && rec.FacilityType != filter.FacilityType {
			continue
		}
		if filter.DatasetID != 0 && f.datasetID != filter.DatasetID {
			continue
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].Region != records[j].Region {
			return records[i].Region < records[j].Region
		}
		return records[i].Name < records[j].Name
	})
	if filter.Limit > 0 && len(records) > filter.Limit {
		records = records[:filter.Limit]
	}
	return records, nil
}

func (s *MemoryStorage) GetFacility(ctx context.Context, id string) (*common.FacilityRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.facilities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	rec := f.record
	return &rec, nil
}

func (s *MemoryStorage) SearchFacilityDocuments(
	ctx context.Context,
	embedding []float32,
	filter store.SimilarityFilter,
	limit int,
) ([]common.SimilarityHit, error) {
	if limit <= 0 {
		limit = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []common.SimilarityHit
	for _, f := range s.facilities {
		if f.embedding == nil {
			continue
		}
		rec := f.record
		if filter.FacilityType != "" && rec.FacilityType != filter.FacilityType {
			continue
		}
		if filter.City != "" && !strings.EqualFold(rec.City, filter.City) {
			continue
		}
		if filter.Region != "" && rec.Region != filter.Region {
			continue
		}
		hits = append(hits, common.SimilarityHit{
			Document: f.document,
			Metadata: common.FacilityMetadata{
				FacilityID:   rec.ID,
				Name:         rec.Name,
				City:         rec.City,
				Region:       rec.Region,
				FacilityType: rec.FacilityType,
			},
			Distance: cosineDistance(embedding, f.embedding),
		})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (s *MemoryStorage) UpsertFacilities(
	ctx context.Context,
	datasetID int64,
	facilities []common.FacilityRecord,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rec := range facilities {
		if rec.ID == "" {
			return fmt.Errorf("facility_id is empty for %q", rec.Name)
		}
		rec.Capabilities = store.DedupeStrings(rec.Capabilities)
		rec.Equipment = store.DedupeStrings(rec.Equipment)
		existing, ok := s.facilities[rec.ID]
		if ok {
			existing.record = rec
			existing.datasetID = datasetID
			continue
		}
		s.facilities[rec.ID] = &memoryFacility{record: rec, datasetID: datasetID}
	}
	return nil
}

func (s *MemoryStorage) UpdateFacilityEmbedding(
	ctx context.Context,
	facilityID string,
	document string,
	embedding []float32,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.facilities[facilityID]
	if !ok {
		return fmt.Errorf("facility not found: %s", facilityID)
	}
	f.document = document
	f.embedding = embedding
	return nil
}

func (s *MemoryStorage) DeleteFacilitiesByDataset(ctx context.Context, datasetID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, f := range s.facilities {
		if f.datasetID == datasetID {
			delete(s.facilities, id)
		}
	}
	return nil
}

func (s *MemoryStorage) CreateDataset(ctx context.Context, name string, objectKey string) (*store.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	now := time.Now()
	d := store.Dataset{
		ID:        s.nextID,
		Name:      name,
		ObjectKey: objectKey,
		Status:    store.DatasetStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.datasets[d.ID] = d
	return &d, nil
}

func (s *MemoryStorage) GetDataset(ctx context.Context, id int64) (*store.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (s *MemoryStorage) ListDatasets(ctx context.Context) ([]store.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	datasets := make([]store.Dataset, 0, len(s.datasets))
	for _, d := range s.datasets {
		datasets = append(datasets, d)
	}
	sort.Slice(datasets, func(i, j int) bool {
		if !datasets[i].CreatedAt.Equal(datasets[j].CreatedAt) {
			return datasets[i].CreatedAt.After(datasets[j].CreatedAt)
		}
		return datasets[i].ID > datasets[j].ID
	})
	return datasets, nil
}

func (s *MemoryStorage) UpdateDatasetStatus(ctx context.Context, id int64, status string, facilityCount int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.datasets[id]
	if !ok {
		return fmt.Errorf("dataset not found: %d", id)
	}
	d.Status = status
	d.FacilityCount = facilityCount
	d.UpdatedAt = time.Now()
	s.datasets[id] = d
	return nil
}

func (s *MemoryStorage) DeleteDataset(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.datasets, id)
	for fid, f := range s.facilities {
		if f.datasetID == id {
			delete(s.facilities, fid)
		}
	}
	return nil
}

func containsString(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, s := range values {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// cosineDistance matches pgvector's <=> operator: 1 - cosine
// similarity. Zero vectors are maximally distant.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 1
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
