package europepmc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/meddoc-assistant-api/internal/models"
)

const (
	// DefaultBaseURL is the Europe PMC RESTful search endpoint.
	DefaultBaseURL = "https://www.ebi.ac.uk/europepmc/webservices/rest/search"

	// SourceLabel identifies the origin service on every match record.
	SourceLabel = "EuropePMC"

	// snippetLimit caps the abstract preview length.
	snippetLimit = 400

	requestTimeout = 20 * time.Second
)

// Client queries the Europe PMC literature search API
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a Europe PMC client with the fixed request timeout
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: requestTimeout},
	}
}

// Search queries Europe PMC and returns normalized match records. It fails
// when the call does not complete or returns a non-success status; an absent
// or malformed result list in an otherwise successful response yields an
// empty slice instead of an error.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.MatchRecord, error) {
	params := url.Values{
		"query":    {query},
		"format":   {"json"},
		"pageSize": {fmt.Sprintf("%d", limit)},
	}
	reqURL := c.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("europe PMC request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("europe PMC returned HTTP %d", resp.StatusCode)
	}

	var epr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&epr); err != nil {
		// Tolerant decoding: an unexpected body shape is treated the
		// same as an empty result list.
		return []models.MatchRecord{}, nil
	}

	matches := make([]models.MatchRecord, 0, len(epr.ResultList.Result))
	for _, hit := range epr.ResultList.Result {
		matches = append(matches, mapHit(hit))
	}
	return matches, nil
}

// mapHit normalizes one Europe PMC hit, filling missing fields with empty
// strings or derived fallbacks.
func mapHit(hit searchHit) models.MatchRecord {
	id := hit.PMCID
	if id == "" {
		id = hit.ID
	}

	link := hit.Source
	if link == "" {
		link = fmt.Sprintf("https://europepmc.org/article/pmc/%s", id)
	}

	return models.MatchRecord{
		Title:    hit.Title,
		Abstract: hit.AbstractText,
		Snippet:  Snippet(hit.AbstractText),
		Journal:  hit.JournalTitle,
		Year:     hit.PubYear,
		Source:   SourceLabel,
		URL:      link,
	}
}

// Snippet returns the first 400 characters of the abstract, with an ellipsis
// marker only when the abstract was truncated. Truncation counts runes so a
// multibyte character is never split.
func Snippet(abstract string) string {
	runes := []rune(abstract)
	if len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return abstract
}

// Europe PMC API JSON structures. Unknown fields are ignored and missing
// fields decode to empty strings.
type searchResponse struct {
	ResultList resultList `json:"resultList"`
}

type resultList struct {
	Result []searchHit `json:"result"`
}

type searchHit struct {
	ID           string `json:"id"`
	PMCID        string `json:"pmcid"`
	Title        string `json:"title"`
	AbstractText string `json:"abstractText"`
	JournalTitle string `json:"journalTitle"`
	PubYear      string `json:"pubYear"`
	Source       string `json:"source"`
}
