package verify

import (
	"context"
	"time"
)

// maxSearchResults caps how many hits a search backend returns per
// query.
const maxSearchResults = 5

// searchTimeout bounds every outbound search and evidence request.
const searchTimeout = 10 * time.Second

// searchRetries is how often a failing search call is retried before
// the claim falls back to an inconclusive verdict.
const searchRetries = 2

// authorityDomains restricts backends that support domain filtering to
// sources whose medical guidance is citable.
var authorityDomains = []string{
	"nih.gov", "cdc.gov", "cms.gov", "who.int",
	"mayoclinic.org", "hopkinsmedicine.org",
}

// SearchResult is one web search hit, normalized across backends.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher is a web search backend. Name identifies the backend in
// citations.
type Searcher interface {
	Name() string
	Search(ctx context.Context, query string) ([]SearchResult, error)
}
