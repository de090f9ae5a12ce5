package repositories

import (
	"context"
	"fmt"

	"faculty-advisor/internal/db"
)

// ChromaVectorRepository implements VectorRepository using ChromaDB
type ChromaVectorRepository struct {
	client *db.ChromaDBClient
}

// NewChromaVectorRepository creates a new ChromaDB-backed vector repository
func NewChromaVectorRepository(client *db.ChromaDBClient) VectorRepository {
	return &ChromaVectorRepository{
		client: client,
	}
}

// CreateCollection creates a new collection if it does not exist yet
func (r *ChromaVectorRepository) CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) error {
	exists, err := r.CollectionExists(ctx, name)
	if err != nil {
		return NewIndexQueryError("create_collection", err, "")
	}
	if exists {
		return nil
	}

	_, err = r.client.CreateCollection(ctx, name, metadata)
	if err != nil {
		return NewIndexQueryError("create_collection", err, "failed to create collection: "+name)
	}

	return nil
}

// CollectionExists checks if a collection exists
func (r *ChromaVectorRepository) CollectionExists(ctx context.Context, name string) (bool, error) {
	_, err := r.client.GetCollection(ctx, name)
	if err != nil {
		// Assume not found error means collection doesn't exist
		return false, nil
	}
	return true, nil
}

// CountEntries returns the number of indexed entries in a collection
func (r *ChromaVectorRepository) CountEntries(ctx context.Context, name string) (int, error) {
	count, err := r.client.CountCollection(ctx, name)
	if err != nil {
		return 0, NewIndexQueryError("count_entries", err, "failed to count collection: "+name)
	}
	return count, nil
}

// StoreEntries stores faculty entries in a collection
func (r *ChromaVectorRepository) StoreEntries(ctx context.Context, collectionName string, entries []*FacultyEntry) error {
	if len(entries) == 0 {
		return nil
	}

	exists, err := r.CollectionExists(ctx, collectionName)
	if err != nil {
		return NewIndexQueryError("store_entries", err, "")
	}
	if !exists {
		return CollectionNotFoundError(collectionName)
	}

	ids := make([]string, len(entries))
	documents := make([]string, len(entries))
	embeddings := make([][]float32, len(entries))
	metadatas := make([]map[string]interface{}, len(entries))

	for i, entry := range entries {
		ids[i] = entry.ID
		documents[i] = entry.Text
		embeddings[i] = entry.Embedding
		metadatas[i] = entry.Metadata
	}

	err = r.client.AddDocuments(ctx, collectionName, ids, documents, embeddings, metadatas)
	if err != nil {
		return NewIndexQueryError("store_entries", err, fmt.Sprintf("failed to store %d entries", len(entries)))
	}

	return nil
}

// SearchFaculty searches a collection for the biographies nearest to the query embedding
func (r *ChromaVectorRepository) SearchFaculty(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*SearchResult, error) {
	exists, err := r.CollectionExists(ctx, collectionName)
	if err != nil {
		return nil, NewIndexQueryError("search_faculty", err, "")
	}
	if !exists {
		return nil, CollectionNotFoundError(collectionName)
	}

	queryEmbeddings := [][]float32{queryEmbedding}
	results, err := r.client.Query(ctx, collectionName, queryEmbeddings, topK)
	if err != nil {
		return nil, NewIndexQueryError("search_faculty", err, "query failed")
	}

	// Chroma nests every field one level per query embedding; we only
	// ever send one, so everything of interest lives at index 0.
	searchResults := make([]*SearchResult, 0)
	if len(results.IDs) > 0 && len(results.IDs[0]) > 0 {
		for i := 0; i < len(results.IDs[0]); i++ {
			metadata := make(map[string]interface{})
			if len(results.Metadatas) > 0 && len(results.Metadatas[0]) > i {
				metadata = results.Metadatas[0][i]
			}

			var text string
			if len(results.Documents) > 0 && len(results.Documents[0]) > i {
				text = results.Documents[0][i]
			}

			var distance float32
			if len(results.Distances) > 0 && len(results.Distances[0]) > i {
				distance = results.Distances[0][i]
			}

			// Similarity score (1 - distance for cosine)
			score := 1.0 - distance

			searchResults = append(searchResults, &SearchResult{
				ID:       results.IDs[0][i],
				Text:     text,
				Score:    score,
				Distance: distance,
				Metadata: metadata,
			})
		}
	}

	return searchResults, nil
}

// Ping checks if ChromaDB is alive
func (r *ChromaVectorRepository) Ping(ctx context.Context) error {
	err := r.client.Heartbeat(ctx)
	if err != nil {
		return NewIndexQueryError("ping", err, "ChromaDB heartbeat failed")
	}
	return nil
}

// Close closes the ChromaDB client
func (r *ChromaVectorRepository) Close() error {
	r.client.Close()
	return nil
}
