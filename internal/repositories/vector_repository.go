package repositories

import (
	"context"
)

// VectorRepository defines the interface for vector index operations.
// This abstracts ChromaDB and allows for easy testing and implementation swapping.
type VectorRepository interface {
	// Collection management
	CreateCollection(ctx context.Context, name string, metadata map[string]interface{}) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	CountEntries(ctx context.Context, name string) (int, error)

	// Entry operations
	StoreEntries(ctx context.Context, collectionName string, entries []*FacultyEntry) error
	SearchFaculty(ctx context.Context, collectionName string, queryEmbedding []float32, topK int) ([]*SearchResult, error)

	// Health
	Ping(ctx context.Context) error
	Close() error
}

// FacultyEntry is one faculty biography prepared for the vector index
type FacultyEntry struct {
	ID        string                 `json:"id"`
	Text      string                 `json:"text"`
	Embedding []float32              `json:"embedding"`
	Metadata  map[string]interface{} `json:"metadata"` // carries "name" and "url"
}

// SearchResult represents a single nearest-neighbor match.
// Results are kept in the index's returned order; similarity ties are
// broken by whatever order the index natively produces.
type SearchResult struct {
	ID       string                 `json:"id"`
	Text     string                 `json:"text"`
	Score    float32                `json:"score"` // similarity (0-1, higher is better)
	Distance float32                `json:"distance"`
	Metadata map[string]interface{} `json:"metadata"`
}

// IndexQueryError represents a failed vector index operation:
// index unreachable, collection missing, or a malformed query.
type IndexQueryError struct {
	Operation string
	Err       error
	Message   string
}

func (e *IndexQueryError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Operation + ": " + e.Err.Error()
	}
	return e.Operation + ": unknown error"
}

func (e *IndexQueryError) Unwrap() error {
	return e.Err
}

// NewIndexQueryError creates a new index query error
func NewIndexQueryError(operation string, err error, message string) *IndexQueryError {
	return &IndexQueryError{
		Operation: operation,
		Err:       err,
		Message:   message,
	}
}

// CollectionNotFoundError reports a lookup against a missing collection
func CollectionNotFoundError(name string) error {
	return NewIndexQueryError(
		"get_collection",
		nil,
		"collection not found: "+name,
	)
}
