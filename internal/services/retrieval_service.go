package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"faculty-advisor/internal/models"
	"faculty-advisor/internal/repositories"
)

// DefaultTopK is the number of faculty biographies pulled per query
const DefaultTopK = 10

// RetrievalService finds faculty members similar to a free-text description
type RetrievalService struct {
	embedder   Embedder
	vectorRepo repositories.VectorRepository
	collection string
	logger     *log.Logger
}

// NewRetrievalService creates a new retrieval service
func NewRetrievalService(
	embedder Embedder,
	vectorRepo repositories.VectorRepository,
	collection string,
	logger *log.Logger,
) *RetrievalService {
	return &RetrievalService{
		embedder:   embedder,
		vectorRepo: vectorRepo,
		collection: collection,
		logger:     logger,
	}
}

// FindSimilar embeds the query and returns the topK nearest faculty
// biographies in the index's ranked order. Embedding and index failures
// surface unchanged; no partial result list is returned on failure.
func (s *RetrievalService) FindSimilar(ctx context.Context, query string, topK int) ([]models.RetrievedFaculty, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	embedStart := time.Now()
	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("Query embedded in %.2fms (dimension: %d)",
		time.Since(embedStart).Seconds()*1000, len(vector))

	searchStart := time.Now()
	results, err := s.vectorRepo.SearchFaculty(ctx, s.collection, vector, topK)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("Found %d results in %.2fms", len(results), time.Since(searchStart).Seconds()*1000)

	faculty := make([]models.RetrievedFaculty, 0, len(results))
	for _, result := range results {
		faculty = append(faculty, models.RetrievedFaculty{
			Name:     s.metadataString(result, "name"),
			URL:      s.metadataString(result, "url"),
			Document: result.Text,
			Score:    result.Score,
		})
	}

	return faculty, nil
}

// metadataString pulls a string field from result metadata. A missing or
// non-string field is a data-integrity problem in the index, not a reason
// to fail the turn; substitute empty string and log it.
func (s *RetrievalService) metadataString(result *repositories.SearchResult, key string) string {
	value, ok := result.Metadata[key].(string)
	if !ok {
		s.logger.Printf("Warning: index entry %s is missing %q metadata, substituting empty string", result.ID, key)
		return ""
	}
	return value
}
