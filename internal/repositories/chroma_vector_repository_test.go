package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"faculty-advisor/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Fake ChromaDB server
// ============================================================================

const apiPrefix = "/api/v2/tenants/default_tenant/databases/default_database"

// fakeChroma serves just enough of the v2 REST surface for the repository
type fakeChroma struct {
	collections map[string]string // name -> id
	count       int
	query       db.QueryResponse
	addCalls    int
	createCalls int
	lastAddBody map[string]interface{}
}

func newFakeChroma() *fakeChroma {
	return &fakeChroma{collections: map[string]string{}}
}

func (f *fakeChroma) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v2/heartbeat":
		fmt.Fprint(w, `{"nanosecond heartbeat":1}`)

	case r.Method == "POST" && r.URL.Path == apiPrefix+"/collections":
		f.createCalls++
		var payload struct {
			Name string `json:"name"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		id := "id-" + payload.Name
		f.collections[payload.Name] = id
		json.NewEncoder(w).Encode(db.Collection{ID: id, Name: payload.Name})

	case r.Method == "GET" && strings.HasSuffix(r.URL.Path, "/count"):
		json.NewEncoder(w).Encode(f.count)

	case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/add"):
		f.addCalls++
		json.NewDecoder(r.Body).Decode(&f.lastAddBody)
		fmt.Fprint(w, `{}`)

	case r.Method == "POST" && strings.HasSuffix(r.URL.Path, "/query"):
		json.NewEncoder(w).Encode(f.query)

	case r.Method == "GET" && strings.HasPrefix(r.URL.Path, apiPrefix+"/collections/"):
		name := strings.TrimPrefix(r.URL.Path, apiPrefix+"/collections/")
		id, ok := f.collections[name]
		if !ok {
			http.Error(w, "collection not found", http.StatusNotFound)
			return
		}
		json.NewEncoder(w).Encode(db.Collection{ID: id, Name: name})

	default:
		http.Error(w, "unexpected path: "+r.URL.Path, http.StatusNotFound)
	}
}

func setupRepository(t *testing.T, fake *fakeChroma) VectorRepository {
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	parsed, err := url.Parse(server.URL)
	require.NoError(t, err)
	port, err := strconv.Atoi(parsed.Port())
	require.NoError(t, err)

	client := db.NewChromaDBClient(db.ChromaDBConfig{
		Host: parsed.Hostname(),
		Port: port,
	})
	return NewChromaVectorRepository(client)
}

// ============================================================================
// SearchFaculty
// ============================================================================

func TestSearchFaculty_MapsResultsAndScores(t *testing.T) {
	fake := newFakeChroma()
	fake.collections["faculties"] = "id-faculties"
	fake.query = db.QueryResponse{
		IDs:       [][]string{{"f1", "f2"}},
		Documents: [][]string{{"bio one", "bio two"}},
		Metadatas: [][]map[string]interface{}{{
			{"name": "A", "url": "u1"},
			{"name": "B", "url": "u2"},
		}},
		Distances: [][]float32{{0.1, 0.3}},
	}

	repo := setupRepository(t, fake)

	results, err := repo.SearchFaculty(context.Background(), "faculties", []float32{0.5, 0.5}, 10)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "f1", results[0].ID)
	assert.Equal(t, "bio one", results[0].Text)
	assert.InDelta(t, 0.9, results[0].Score, 0.0001)
	assert.Equal(t, "A", results[0].Metadata["name"])
	assert.InDelta(t, 0.7, results[1].Score, 0.0001)
	assert.Greater(t, results[0].Score, results[1].Score)
}

func TestSearchFaculty_MissingCollection(t *testing.T) {
	repo := setupRepository(t, newFakeChroma())

	results, err := repo.SearchFaculty(context.Background(), "missing", []float32{0.5}, 10)

	assert.Nil(t, results)
	var indexErr *IndexQueryError
	require.True(t, errors.As(err, &indexErr))
	assert.Contains(t, indexErr.Error(), "missing")
}

func TestSearchFaculty_EmptyIndex(t *testing.T) {
	fake := newFakeChroma()
	fake.collections["faculties"] = "id-faculties"
	fake.query = db.QueryResponse{
		IDs:       [][]string{{}},
		Documents: [][]string{{}},
		Metadatas: [][]map[string]interface{}{{}},
		Distances: [][]float32{{}},
	}

	repo := setupRepository(t, fake)

	results, err := repo.SearchFaculty(context.Background(), "faculties", []float32{0.5}, 10)

	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchFaculty_MissingMetadataColumn(t *testing.T) {
	fake := newFakeChroma()
	fake.collections["faculties"] = "id-faculties"
	fake.query = db.QueryResponse{
		IDs:       [][]string{{"f1"}},
		Documents: [][]string{{"bio one"}},
		Distances: [][]float32{{0.2}},
	}

	repo := setupRepository(t, fake)

	results, err := repo.SearchFaculty(context.Background(), "faculties", []float32{0.5}, 10)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.NotNil(t, results[0].Metadata)
	assert.Empty(t, results[0].Metadata)
}

// ============================================================================
// Collection management
// ============================================================================

func TestCreateCollection_SkipsExisting(t *testing.T) {
	fake := newFakeChroma()
	fake.collections["faculties"] = "id-faculties"

	repo := setupRepository(t, fake)

	err := repo.CreateCollection(context.Background(), "faculties", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, fake.createCalls)
}

func TestCreateCollection_CreatesMissing(t *testing.T) {
	fake := newFakeChroma()
	repo := setupRepository(t, fake)

	err := repo.CreateCollection(context.Background(), "faculties", nil)

	require.NoError(t, err)
	assert.Equal(t, 1, fake.createCalls)

	exists, err := repo.CollectionExists(context.Background(), "faculties")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCountEntries(t *testing.T) {
	fake := newFakeChroma()
	fake.collections["faculties"] = "id-faculties"
	fake.count = 42

	repo := setupRepository(t, fake)

	count, err := repo.CountEntries(context.Background(), "faculties")

	require.NoError(t, err)
	assert.Equal(t, 42, count)
}

// ============================================================================
// StoreEntries
// ============================================================================

func TestStoreEntries_SendsAllFields(t *testing.T) {
	fake := newFakeChroma()
	fake.collections["faculties"] = "id-faculties"

	repo := setupRepository(t, fake)

	entries := []*FacultyEntry{
		{
			ID:        "f1",
			Text:      "bio one",
			Embedding: []float32{0.1, 0.2},
			Metadata:  map[string]interface{}{"name": "A", "url": "u1"},
		},
		{
			ID:        "f2",
			Text:      "bio two",
			Embedding: []float32{0.3, 0.4},
			Metadata:  map[string]interface{}{"name": "B", "url": "u2"},
		},
	}

	err := repo.StoreEntries(context.Background(), "faculties", entries)

	require.NoError(t, err)
	assert.Equal(t, 1, fake.addCalls)
	require.NotNil(t, fake.lastAddBody)
	assert.Len(t, fake.lastAddBody["ids"], 2)
	assert.Len(t, fake.lastAddBody["documents"], 2)
	assert.Len(t, fake.lastAddBody["embeddings"], 2)
	assert.Len(t, fake.lastAddBody["metadatas"], 2)
}

func TestStoreEntries_EmptyBatchIsNoop(t *testing.T) {
	fake := newFakeChroma()
	repo := setupRepository(t, fake)

	err := repo.StoreEntries(context.Background(), "faculties", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, fake.addCalls)
}

func TestStoreEntries_MissingCollection(t *testing.T) {
	repo := setupRepository(t, newFakeChroma())

	err := repo.StoreEntries(context.Background(), "missing", []*FacultyEntry{{ID: "f1"}})

	var indexErr *IndexQueryError
	require.True(t, errors.As(err, &indexErr))
}

// ============================================================================
// Ping
// ============================================================================

func TestPing(t *testing.T) {
	repo := setupRepository(t, newFakeChroma())

	assert.NoError(t, repo.Ping(context.Background()))
}

func TestPing_Unreachable(t *testing.T) {
	client := db.NewChromaDBClient(db.ChromaDBConfig{Host: "127.0.0.1", Port: 1})
	repo := NewChromaVectorRepository(client)

	err := repo.Ping(context.Background())

	var indexErr *IndexQueryError
	require.True(t, errors.As(err, &indexErr))
}
