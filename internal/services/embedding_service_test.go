package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test setup
// ============================================================================

func newTestEmbeddingService(baseURL string) *EmbeddingService {
	return NewEmbeddingService(EmbeddingConfig{
		BaseURL: baseURL,
		APIKey:  "test-key",
		Model:   "test-embedding-model",
	}, nil, testLogger())
}

// ============================================================================
// Embed
// ============================================================================

func TestEmbed_ReturnsVector(t *testing.T) {
	var captured embeddingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"data":[{"embedding":[0.1,0.2,0.3]}]}`)
	}))
	defer server.Close()

	service := newTestEmbeddingService(server.URL)

	vector, err := service.Embed(context.Background(), "machine learning research")

	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vector)
	assert.Equal(t, "machine learning research", captured.Input)
	assert.Equal(t, "test-embedding-model", captured.Model)
}

func TestEmbed_ProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusInternalServerError)
	}))
	defer server.Close()

	service := newTestEmbeddingService(server.URL)

	vector, err := service.Embed(context.Background(), "anything")

	assert.Nil(t, vector)
	var embedErr *EmbeddingError
	require.True(t, errors.As(err, &embedErr))
	assert.Contains(t, embedErr.Error(), "500")
}

func TestEmbed_EmptyResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"data":[]}`)
	}))
	defer server.Close()

	service := newTestEmbeddingService(server.URL)

	vector, err := service.Embed(context.Background(), "anything")

	assert.Nil(t, vector)
	var embedErr *EmbeddingError
	require.True(t, errors.As(err, &embedErr))
}

func TestEmbed_UnreachableProvider(t *testing.T) {
	service := newTestEmbeddingService("http://127.0.0.1:1")

	vector, err := service.Embed(context.Background(), "anything")

	assert.Nil(t, vector)
	var embedErr *EmbeddingError
	require.True(t, errors.As(err, &embedErr))
	assert.NotNil(t, errors.Unwrap(err))
}

func TestCacheKey_VariesByModelAndText(t *testing.T) {
	first := newTestEmbeddingService("http://unused")
	second := NewEmbeddingService(EmbeddingConfig{
		BaseURL: "http://unused",
		Model:   "other-model",
	}, nil, testLogger())

	assert.NotEqual(t, first.cacheKey("same text"), second.cacheKey("same text"))
	assert.NotEqual(t, first.cacheKey("text a"), first.cacheKey("text b"))
	assert.Equal(t, first.cacheKey("stable"), first.cacheKey("stable"))
	assert.Contains(t, first.cacheKey("stable"), embeddingKeyPrefix)
}
