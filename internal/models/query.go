package models

import "fmt"

// QueryRequest is the request body for the literature query endpoint
type QueryRequest struct {
	Symptoms string `json:"symptoms" validate:"required"`
	TopK     int    `json:"top_k" validate:"min=1,max=50"`
}

// MatchRecord is one literature search hit normalized into a fixed field set
type MatchRecord struct {
	Title    string `json:"title"`
	Abstract string `json:"abstract"`
	Snippet  string `json:"snippet"`
	Journal  string `json:"journal"`
	Year     string `json:"year"`
	Source   string `json:"source"`
	URL      string `json:"url"`
}

// Citation formats the match as a human-readable reference string
func (m MatchRecord) Citation() string {
	return fmt.Sprintf("%s — %s (%s) — %s", m.Title, m.Journal, m.Year, m.URL)
}

// QueryResponse is the response for the literature query endpoint
type QueryResponse struct {
	Summary   string        `json:"summary"`
	Matches   []MatchRecord `json:"matches"`
	Citations []string      `json:"citations"`
}

// ErrorResponse carries the error detail for 4xx/5xx responses
type ErrorResponse struct {
	Detail string `json:"detail"`
}
