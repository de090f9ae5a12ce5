package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// Redis key prefix for cached embeddings
	embeddingKeyPrefix = "embedding:"

	// DefaultEmbeddingModel matches the model used to build the faculty index.
	// The dimension is a deployment-time contract with the vector store.
	DefaultEmbeddingModel = "text-embedding-ada-002"
)

// Embedder turns free text into a fixed-length vector usable for
// similarity comparison.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// EmbeddingConfig holds configuration for the embedding provider
type EmbeddingConfig struct {
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// EmbeddingService calls an OpenAI-compatible embeddings endpoint.
// An optional Redis client caches vectors keyed by model and text hash;
// cache failures degrade to a direct provider call, never to an error.
type EmbeddingService struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *log.Logger
}

// NewEmbeddingService creates a new embedding service. cache may be nil.
func NewEmbeddingService(config EmbeddingConfig, cache *redis.Client, logger *log.Logger) *EmbeddingService {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = DefaultEmbeddingModel
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.CacheTTL == 0 {
		config.CacheTTL = 24 * time.Hour
	}

	return &EmbeddingService{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		model:   config.Model,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		cache:    cache,
		cacheTTL: config.CacheTTL,
		logger:   logger,
	}
}

type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embed returns the embedding vector for the given text
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	if cached, ok := s.cacheGet(ctx, text); ok {
		return cached, nil
	}

	jsonBody, err := json.Marshal(embeddingRequest{Input: text, Model: s.model})
	if err != nil {
		return nil, NewEmbeddingError("embed", err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/embeddings", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, NewEmbeddingError("embed", err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NewEmbeddingError("embed", err, "")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, NewEmbeddingError("embed", nil,
			fmt.Sprintf("embedding provider returned status %d: %s", resp.StatusCode, string(body)))
	}

	var parsed embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, NewEmbeddingError("embed", err, "failed to parse response")
	}

	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, NewEmbeddingError("embed", nil, "no embedding returned")
	}

	vector := parsed.Data[0].Embedding
	s.cacheSet(ctx, text, vector)

	return vector, nil
}

func (s *EmbeddingService) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return embeddingKeyPrefix + s.model + ":" + hex.EncodeToString(sum[:])
}

func (s *EmbeddingService) cacheGet(ctx context.Context, text string) ([]float32, bool) {
	if s.cache == nil {
		return nil, false
	}

	raw, err := s.cache.Get(ctx, s.cacheKey(text)).Result()
	if err != nil {
		if err != redis.Nil {
			s.logger.Printf("Embedding cache read failed: %v", err)
		}
		return nil, false
	}

	var vector []float32
	if err := json.Unmarshal([]byte(raw), &vector); err != nil {
		s.logger.Printf("Embedding cache entry malformed, ignoring: %v", err)
		return nil, false
	}

	return vector, true
}

func (s *EmbeddingService) cacheSet(ctx context.Context, text string, vector []float32) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(vector)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, s.cacheKey(text), raw, s.cacheTTL).Err(); err != nil {
		s.logger.Printf("Embedding cache write failed: %v", err)
	}
}
