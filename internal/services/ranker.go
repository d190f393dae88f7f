package services

import (
	"context"
	"fmt"
	"math"

	pkgservices "github.com/meddoc-assistant-api/pkg/schema/services"
)

// cosineEpsilon keeps the denominator non-zero for all-zero vectors
const cosineEpsilon = 1e-10

// RankOutcome is the tagged result of a ranking attempt. Scores is valid
// only when Ranked is true; otherwise Reason says why ranking was skipped.
type RankOutcome struct {
	Scores []float64
	Ranked bool
	Reason string
}

// Ranked wraps similarity scores in a successful outcome
func Ranked(scores []float64) RankOutcome {
	return RankOutcome{Scores: scores, Ranked: true}
}

// Unranked reports that ranking was unavailable
func Unranked(reason string) RankOutcome {
	return RankOutcome{Reason: reason}
}

// Ranker scores candidate documents against a query. Implementations never
// fail the caller; any internal error surfaces as an unranked outcome.
type Ranker interface {
	Rank(ctx context.Context, query string, docs []string) RankOutcome
}

// embeddingsBackend is the slice of the embeddings service the ranker needs
type embeddingsBackend interface {
	EmbedQuery(ctx context.Context, query string) ([]float64, error)
	EmbedAbstracts(ctx context.Context, texts []string) ([][]float64, error)
}

// EmbeddingRanker ranks documents by cosine similarity between the query
// embedding and each document embedding
type EmbeddingRanker struct {
	enabled  bool
	provider func() (embeddingsBackend, error)
}

// NewEmbeddingRanker creates a ranker backed by the process-wide embeddings
// service. When enabled is false the ranker is permanently unavailable and
// the embedding model is never loaded.
func NewEmbeddingRanker(enabled bool) *EmbeddingRanker {
	return &EmbeddingRanker{
		enabled: enabled,
		provider: func() (embeddingsBackend, error) {
			svc := pkgservices.GetEmbeddingsService()
			if err := pkgservices.GetInitError(); err != nil {
				return nil, err
			}
			return svc, nil
		},
	}
}

// Rank embeds the query and every document and returns one cosine similarity
// score per document, in document order
func (r *EmbeddingRanker) Rank(ctx context.Context, query string, docs []string) RankOutcome {
	if !r.enabled {
		return Unranked("embeddings disabled")
	}
	if len(docs) == 0 {
		return Ranked([]float64{})
	}

	svc, err := r.provider()
	if err != nil {
		return Unranked(fmt.Sprintf("embeddings unavailable: %v", err))
	}

	queryEmb, err := svc.EmbedQuery(ctx, query)
	if err != nil {
		return Unranked(fmt.Sprintf("query embedding failed: %v", err))
	}

	docEmbs, err := svc.EmbedAbstracts(ctx, docs)
	if err != nil {
		return Unranked(fmt.Sprintf("document embedding failed: %v", err))
	}
	if len(docEmbs) != len(docs) {
		return Unranked(fmt.Sprintf("got %d embeddings for %d documents", len(docEmbs), len(docs)))
	}

	scores := make([]float64, len(docEmbs))
	for i, emb := range docEmbs {
		scores[i] = cosineSimilarity(queryEmb, emb)
	}
	return Ranked(scores)
}

// cosineSimilarity returns dot(a, b) / (|a| * |b| + epsilon)
func cosineSimilarity(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot float64
	for i := 0; i < n; i++ {
		dot += a[i] * b[i]
	}
	return dot / (vectorNorm(a)*vectorNorm(b) + cosineEpsilon)
}

func vectorNorm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}
