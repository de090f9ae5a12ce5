package services

import (
	"context"
	"testing"

	"faculty-advisor/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Mocks
// ============================================================================

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

type MockVectorRepository struct {
	mock.Mock
}

func (m *MockVectorRepository) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) error {
	args := m.Called(ctx, name, metadata)
	return args.Error(0)
}

func (m *MockVectorRepository) CollectionExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *MockVectorRepository) CountEntries(ctx context.Context, name string) (int, error) {
	args := m.Called(ctx, name)
	return args.Int(0), args.Error(1)
}

func (m *MockVectorRepository) StoreEntries(ctx context.Context, collectionName string, entries []*repositories.FacultyEntry) error {
	args := m.Called(ctx, collectionName, entries)
	return args.Error(0)
}

func (m *MockVectorRepository) SearchFaculty(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*repositories.SearchResult, error) {
	args := m.Called(ctx, collectionName, queryEmbedding, topK)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*repositories.SearchResult), args.Error(1)
}

func (m *MockVectorRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockVectorRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}

// ============================================================================
// Test setup
// ============================================================================

func setupRetrievalService() (*RetrievalService, *MockEmbedder, *MockVectorRepository) {
	embedder := new(MockEmbedder)
	vectorRepo := new(MockVectorRepository)
	service := NewRetrievalService(embedder, vectorRepo, "faculties", testLogger())
	return service, embedder, vectorRepo
}

func rankedResults() []*repositories.SearchResult {
	return []*repositories.SearchResult{
		{
			ID:    "entry-1",
			Text:  "works on machine learning",
			Score: 0.95,
			Metadata: map[string]interface{}{
				"name": "A",
				"url":  "u1",
			},
		},
		{
			ID:    "entry-2",
			Text:  "works on clinical trials",
			Score: 0.90,
			Metadata: map[string]interface{}{
				"name": "B",
				"url":  "u2",
			},
		},
	}
}

// ============================================================================
// Tests
// ============================================================================

func TestFindSimilar_ReturnsRankedFaculty(t *testing.T) {
	service, embedder, vectorRepo := setupRetrievalService()

	vector := []float32{0.1, 0.2, 0.3}
	embedder.On("Embed", mock.Anything, "machine learning").Return(vector, nil)
	vectorRepo.On("SearchFaculty", mock.Anything, "faculties", vector, 10).Return(rankedResults(), nil)

	faculty, err := service.FindSimilar(context.Background(), "machine learning", 10)

	require.NoError(t, err)
	require.Len(t, faculty, 2)
	assert.Equal(t, "A", faculty[0].Name)
	assert.Equal(t, "u1", faculty[0].URL)
	assert.Equal(t, "works on machine learning", faculty[0].Document)
	assert.Equal(t, "B", faculty[1].Name)
	assert.GreaterOrEqual(t, faculty[0].Score, faculty[1].Score)

	embedder.AssertExpectations(t)
	vectorRepo.AssertExpectations(t)
}

func TestFindSimilar_DefaultsTopK(t *testing.T) {
	service, embedder, vectorRepo := setupRetrievalService()

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	vectorRepo.On("SearchFaculty", mock.Anything, "faculties", mock.Anything, DefaultTopK).
		Return([]*repositories.SearchResult{}, nil)

	faculty, err := service.FindSimilar(context.Background(), "anything", 0)

	require.NoError(t, err)
	assert.Empty(t, faculty)
	vectorRepo.AssertExpectations(t)
}

func TestFindSimilar_EmptyQuery(t *testing.T) {
	service, _, _ := setupRetrievalService()

	faculty, err := service.FindSimilar(context.Background(), "", 10)

	assert.Error(t, err)
	assert.Nil(t, faculty)
}

func TestFindSimilar_MissingMetadataBecomesEmptyString(t *testing.T) {
	service, embedder, vectorRepo := setupRetrievalService()

	results := []*repositories.SearchResult{
		{
			ID:       "entry-3",
			Text:     "biography without metadata",
			Score:    0.8,
			Metadata: map[string]interface{}{},
		},
	}

	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	vectorRepo.On("SearchFaculty", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(results, nil)

	faculty, err := service.FindSimilar(context.Background(), "anything", 10)

	require.NoError(t, err)
	require.Len(t, faculty, 1)
	assert.Equal(t, "", faculty[0].Name)
	assert.Equal(t, "", faculty[0].URL)
	assert.Equal(t, "biography without metadata", faculty[0].Document)
}

func TestFindSimilar_EmbeddingErrorPropagates(t *testing.T) {
	service, embedder, _ := setupRetrievalService()

	embedErr := NewEmbeddingError("embed", nil, "provider down")
	embedder.On("Embed", mock.Anything, mock.Anything).Return(nil, embedErr)

	faculty, err := service.FindSimilar(context.Background(), "anything", 10)

	assert.Nil(t, faculty)
	assert.Equal(t, embedErr, err)
}

func TestFindSimilar_IndexErrorPropagates(t *testing.T) {
	service, embedder, vectorRepo := setupRetrievalService()

	indexErr := repositories.CollectionNotFoundError("faculties")
	embedder.On("Embed", mock.Anything, mock.Anything).Return([]float32{0.5}, nil)
	vectorRepo.On("SearchFaculty", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, indexErr)

	faculty, err := service.FindSimilar(context.Background(), "anything", 10)

	assert.Nil(t, faculty)
	assert.Equal(t, indexErr, err)
}
