package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/carelens-health/carelens/backend/pkg/common"
	"github.com/carelens-health/carelens/backend/pkg/logger"
	"github.com/carelens-health/carelens/backend/pkg/store"
)

const similarityLimit = 10

// similaritySearch embeds the question and ranks facility documents by
// cosine distance, with a facility-type filter when the question names
// one. Embedding or store failures are recorded and the workflow
// continues.
func (e *Engine) similaritySearch(ctx context.Context, c AnalysisContext) (Partial, error) {
	embedding, err := e.ai.GenerateEmbedding(ctx, []byte(c.Query))
	if err != nil {
		logger.Warn("[Engine] Query embedding failed", "error", err)
		return Partial{
			Similarity: &common.SimilarityResult{Success: false, Error: err.Error(), Query: c.Query},
			Errors:     []string{fmt.Sprintf("Vector Search Error: %v", err)},
		}, nil
	}

	filter := store.SimilarityFilter{}
	lower := strings.ToLower(c.Query)
	if strings.Contains(lower, "hospital") {
		filter.FacilityType = "hospital"
	} else if strings.Contains(lower, "clinic") {
		filter.FacilityType = "clinic"
	}

	hits, err := e.store.SearchFacilityDocuments(ctx, embedding, filter, similarityLimit)
	if err != nil {
		logger.Warn("[Engine] Similarity search failed", "error", err)
		return Partial{
			Similarity: &common.SimilarityResult{Success: false, Error: err.Error(), Query: c.Query},
			Errors:     []string{fmt.Sprintf("Vector Search Error: %v", err)},
		}, nil
	}

	result := &common.SimilarityResult{
		Success: true,
		Query:   c.Query,
		Results: hits,
		Count:   len(hits),
	}
	logger.Info("[Engine] Similarity search done", "hits", result.Count)

	partial := Partial{Similarity: result}
	if result.Count > 0 {
		partial.Citations = []common.Citation{{
			Agent:          "VectorAgent",
			Query:          c.Query,
			DocumentsFound: result.Count,
		}}
	}
	return partial, nil
}
