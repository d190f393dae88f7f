package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/meddoc-assistant-api/pkg/schema/config"
)

// EmbeddingsService handles text embedding operations using a pluggable backend
type EmbeddingsService struct {
	embedder   Embedder
	dimensions int
}

// NewEmbeddingsService creates an embeddings service. A positive dimensions
// value is enforced against every vector the backend returns; zero accepts
// any dimensionality.
func NewEmbeddingsService(embedder Embedder, dimensions int) *EmbeddingsService {
	return &EmbeddingsService{
		embedder:   embedder,
		dimensions: dimensions,
	}
}

var (
	embeddingsService *EmbeddingsService
	embeddingsOnce    sync.Once
	initErr           error
)

// GetEmbeddingsService returns the singleton embeddings service. The backend
// is constructed on first call and reused for the process lifetime; an
// initialization failure is captured once and reported by GetInitError.
func GetEmbeddingsService() *EmbeddingsService {
	embeddingsOnce.Do(func() {
		cfg := config.GetConfig()
		ctx := context.Background()

		var embedder Embedder
		switch cfg.EmbeddingProvider {
		case "vertex":
			var err error
			embedder, err = NewVertexEmbedder(ctx, cfg)
			if err != nil {
				initErr = fmt.Errorf("failed to create Vertex AI embedder: %w", err)
				return
			}
		default:
			embedder = NewCustomEmbedder(cfg)
		}

		embeddingsService = NewEmbeddingsService(embedder, cfg.EmbeddingDimensions)
	})
	return embeddingsService
}

// GetInitError returns any error that occurred during initialization
func GetInitError() error {
	return initErr
}

// EmbedQuery embeds a symptom description for retrieval
func (s *EmbeddingsService) EmbedQuery(ctx context.Context, query string) ([]float64, error) {
	embedding, err := s.embedder.Embed(ctx, query, TaskTypeQuery)
	if err != nil {
		return nil, err
	}
	if err := s.checkDimensions(embedding); err != nil {
		return nil, err
	}
	return embedding, nil
}

// EmbedAbstracts embeds article abstracts as documents for retrieval
func (s *EmbeddingsService) EmbedAbstracts(ctx context.Context, texts []string) ([][]float64, error) {
	embeddings, err := s.embedder.EmbedBatch(ctx, texts, TaskTypeDocument)
	if err != nil {
		return nil, err
	}
	for i, embedding := range embeddings {
		if err := s.checkDimensions(embedding); err != nil {
			return nil, fmt.Errorf("abstract %d: %w", i, err)
		}
	}
	return embeddings, nil
}

func (s *EmbeddingsService) checkDimensions(embedding []float64) error {
	if s.dimensions > 0 && len(embedding) != s.dimensions {
		return fmt.Errorf("embedding has %d dimensions, expected %d", len(embedding), s.dimensions)
	}
	return nil
}
