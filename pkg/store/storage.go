package store

import (
	"context"
	"time"

	"github.com/carelens-health/carelens/backend/pkg/common"
)

// FacilityQuery is a structured query over the facilities table, built
// deterministically from normalized constraints. All filter values are
// passed as bind parameters; the store owns the SQL text.
type FacilityQuery struct {
	States      []string
	Cities      []string
	Specialties []string
	CountOnly   bool
	Limit       int
}

// StructuredRows is the tabular result of a FacilityQuery, together with
// the SQL that produced it for citation purposes.
type StructuredRows struct {
	SQL     string
	Columns []string
	Rows    []map[string]any
}

// FacilityFilter narrows facility listings. Zero-value fields do not
// filter.
type FacilityFilter struct {
	Region       string
	City         string
	FacilityType string
	DatasetID    int64
	Limit        int
}

// SimilarityFilter narrows a document similarity search by facility
// metadata. Zero-value fields do not filter.
type SimilarityFilter struct {
	FacilityType string
	City         string
	Region       string
}

// Dataset statuses as persisted in the datasets table.
const (
	DatasetStatusPending  = "pending"
	DatasetStatusIngested = "ingested"
	DatasetStatusFailed   = "failed"
)

// Dataset is one uploaded facility dataset and its ingest bookkeeping.
type Dataset struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	ObjectKey     string    `json:"object_key"`
	Status        string    `json:"status"`
	FacilityCount int       `json:"facility_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Storage defines the interface for persisting and querying healthcare
// facilities, their embedded documents, and dataset bookkeeping. Query
// methods serve the analysis workflow; the mutation methods serve the
// ingest pipeline.
type Storage interface {
	QueryFacilities(ctx context.Context, query FacilityQuery) (StructuredRows, error)
	ListFacilities(ctx context.Context, filter FacilityFilter) ([]common.FacilityRecord, error)
	GetFacility(ctx context.Context, id string) (*common.FacilityRecord, error)
	SearchFacilityDocuments(ctx context.Context, embedding []float32, filter SimilarityFilter, limit int) ([]common.SimilarityHit, error)

	UpsertFacilities(ctx context.Context, datasetID int64, facilities []common.FacilityRecord) error
	UpdateFacilityEmbedding(ctx context.Context, facilityID string, document string, embedding []float32) error
	DeleteFacilitiesByDataset(ctx context.Context, datasetID int64) error

	CreateDataset(ctx context.Context, name string, objectKey string) (*Dataset, error)
	GetDataset(ctx context.Context, id int64) (*Dataset, error)
	ListDatasets(ctx context.Context) ([]Dataset, error)
	UpdateDatasetStatus(ctx context.Context, id int64, status string, facilityCount int) error
	DeleteDataset(ctx context.Context, id int64) error
}
