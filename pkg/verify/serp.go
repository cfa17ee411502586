package verify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

const serpEndpoint = "https://serpapi.com/search"

// SerpSearcher runs Google searches through the SerpApi HTTP API.
type SerpSearcher struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

func NewSerpSearcher(apiKey string) *SerpSearcher {
	return &SerpSearcher{
		apiKey:   apiKey,
		endpoint: serpEndpoint,
		client:   &http.Client{Timeout: searchTimeout},
	}
}

func (s *SerpSearcher) Name() string { return "SERP API" }

func (s *SerpSearcher) Search(ctx context.Context, query string) ([]SearchResult, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("api_key", s.apiKey)
	params.Set("num", strconv.Itoa(maxSearchResults))
	params.Set("engine", "google")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to reach serp api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("serp api returned status %d", resp.StatusCode)
	}

	var payload struct {
		OrganicResults []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode serp response: %w", err)
	}

	results := make([]SearchResult, 0, len(payload.OrganicResults))
	for _, item := range payload.OrganicResults {
		results = append(results, SearchResult{
			Title:   item.Title,
			URL:     item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}
