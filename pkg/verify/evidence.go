package verify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/carelens-health/carelens/backend/internal/util"

	"codeberg.org/readeck/go-readability/v2"
)

// maxEvidenceRunes caps how much extracted page text one claim feeds
// into verdict analysis.
const maxEvidenceRunes = 2000

// evidenceFetcher pulls the readable text out of an evidence page so
// the verdict is grounded on more than the search snippet.
type evidenceFetcher struct {
	client *http.Client
}

func newEvidenceFetcher() *evidenceFetcher {
	return &evidenceFetcher{client: &http.Client{Timeout: searchTimeout}}
}

// Fetch downloads pageURL and extracts its main article text. Non-HTML
// responses are rejected; callers treat every failure as "no extra
// evidence".
func (f *evidenceFetcher) Fetch(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch evidence page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("evidence page returned status %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "text/html") {
		return "", fmt.Errorf("evidence page is not html: %s", resp.Header.Get("Content-Type"))
	}

	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse url: %w", err)
	}

	article, err := readability.FromReader(resp.Body, parsed)
	if err != nil {
		return "", fmt.Errorf("failed to parse html: %w", err)
	}

	var builder strings.Builder
	if err := article.RenderText(&builder); err != nil {
		return "", fmt.Errorf("failed to render article text: %w", err)
	}

	text := strings.TrimSpace(builder.String())
	return util.TruncateRunes(text, maxEvidenceRunes), nil
}
