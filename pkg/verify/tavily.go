package verify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const tavilyEndpoint = "https://api.tavily.com/search"

// TavilySearcher runs searches through the Tavily HTTP API, restricted
// to the authority domain allow-list.
type TavilySearcher struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewTavilySearcher(apiKey string) *TavilySearcher {
	return &TavilySearcher{
		apiKey:   apiKey,
		endpoint: tavilyEndpoint,
		client:   &http.Client{Timeout: searchTimeout},
	}
}

func (s *TavilySearcher) Name() string { return "Tavily API" }

func (s *TavilySearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	body, err := json.Marshal(struct {
		APIKey         string   `json:"api_key"`
		Query          string   `json:"query"`
		SearchDepth    string   `json:"search_depth"`
		MaxResults     int      `json:"max_results"`
		IncludeDomains []string `json:"include_domains"`
	}{
		APIKey:         s.apiKey,
		Query:          query,
		SearchDepth:    "basic",
		MaxResults:     maxSearchResults,
		IncludeDomains: authorityDomains,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach tavily api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily api returned status %d", resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Title   string `json:"title"`
			URL     string `json:"url"`
			Content string `json:"content"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode tavily response: %w", err)
	}

	results := make([]SearchResult, 0, len(payload.Results))
	for _, item := range payload.Results {
		results = append(results, SearchResult{
			Title:   item.Title,
			URL:     item.URL,
			Snippet: item.Content,
		})
	}
	return results, nil
}
