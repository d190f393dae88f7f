package services

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/meddoc-assistant-api/internal/europepmc"
	"github.com/meddoc-assistant-api/internal/models"
)

const summaryTemplate = "SUMMARY (placeholder): Found %d articles. Replace this with LLM-generated educational summary that cites sources."

// QueryPipeline orchestrates the symptom query: literature search, optional
// semantic re-rank, and response assembly
type QueryPipeline struct {
	search *europepmc.Client
	ranker Ranker
}

// NewQueryPipeline creates a new query pipeline
func NewQueryPipeline(search *europepmc.Client, ranker Ranker) *QueryPipeline {
	return &QueryPipeline{
		search: search,
		ranker: ranker,
	}
}

// Run searches Europe PMC for the symptoms, re-ranks the matches by semantic
// similarity when ranking is available, and builds the response payload.
// Only a search failure returns an error; an unranked outcome keeps the
// upstream match order.
func (p *QueryPipeline) Run(ctx context.Context, symptoms string, topK int) (*models.QueryResponse, error) {
	matches, err := p.search.Search(ctx, symptoms, topK)
	if err != nil {
		return nil, err
	}

	matches = p.rankMatches(ctx, symptoms, matches)

	citations := make([]string, len(matches))
	for i, m := range matches {
		citations[i] = m.Citation()
	}

	return &models.QueryResponse{
		Summary:   fmt.Sprintf(summaryTemplate, len(matches)),
		Matches:   matches,
		Citations: citations,
	}, nil
}

// rankMatches reorders matches by descending similarity score. Ties keep
// their upstream relative order.
func (p *QueryPipeline) rankMatches(ctx context.Context, symptoms string, matches []models.MatchRecord) []models.MatchRecord {
	docs := make([]string, len(matches))
	for i, m := range matches {
		// Score the abstract, falling back to the title when empty.
		if m.Abstract != "" {
			docs[i] = m.Abstract
		} else {
			docs[i] = m.Title
		}
	}

	outcome := p.ranker.Rank(ctx, symptoms, docs)
	if !outcome.Ranked {
		log.Printf("Semantic ranking skipped: %s", outcome.Reason)
		return matches
	}
	if len(outcome.Scores) != len(matches) {
		log.Printf("Semantic ranking skipped: %d scores for %d matches", len(outcome.Scores), len(matches))
		return matches
	}

	order := make([]int, len(matches))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return outcome.Scores[order[i]] > outcome.Scores[order[j]]
	})

	ranked := make([]models.MatchRecord, len(matches))
	for i, idx := range order {
		ranked[i] = matches[idx]
	}
	return ranked
}
