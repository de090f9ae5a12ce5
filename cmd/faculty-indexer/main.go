// Loads scraped faculty records (JSONL: {name, url, text} per line),
// enriches them with extracted keywords, embeds each biography, and
// stores the entries into the ChromaDB collection the advisor searches.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"faculty-advisor/internal/db"
	"faculty-advisor/internal/models"
	"faculty-advisor/internal/repositories"
	"faculty-advisor/internal/server"
	"faculty-advisor/internal/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

const (
	batchSize   = 50
	maxKeywords = 8
)

func main() {
	inputPath := flag.String("input", "faculty_data.jsonl", "path to the scraped faculty JSONL file")
	collection := flag.String("collection", "", "target collection (default: FACULTY_COLLECTION or 'faculties')")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	logger := log.New(os.Stdout, "[INDEXER] ", log.LstdFlags)
	ctx := context.Background()

	collectionName := *collection
	if collectionName == "" {
		collectionName = server.FacultyCollection()
	}

	records, err := loadRecords(*inputPath, logger)
	if err != nil {
		logger.Fatalf("Failed to load faculty records: %v", err)
	}
	if len(records) == 0 {
		logger.Fatal("No faculty records to index")
	}
	logger.Printf("Loaded %d faculty records from %s", len(records), *inputPath)

	chromaClient := db.NewChromaDBClient(server.ChromaConfigFromEnv())
	if err := chromaClient.Heartbeat(ctx); err != nil {
		logger.Fatalf("ChromaDB is not reachable: %v", err)
	}
	vectorRepo := repositories.NewChromaVectorRepository(chromaClient)

	if err := vectorRepo.CreateCollection(ctx, collectionName, nil); err != nil {
		logger.Fatalf("Failed to create collection %s: %v", collectionName, err)
	}

	embedder := services.NewEmbeddingService(server.EmbeddingConfigFromEnv(), nil, logger)
	extractor := services.NewKeywordExtractor()

	entries := make([]*repositories.FacultyEntry, 0, len(records))
	for i, record := range records {
		vector, err := embedder.Embed(ctx, record.Text)
		if err != nil {
			logger.Fatalf("Failed to embed biography for %q: %v", record.Name, err)
		}

		metadata := map[string]interface{}{
			"name": record.Name,
			"url":  record.URL,
		}
		if keywords, err := extractor.ExtractKeywords(record.Text, maxKeywords); err == nil && len(keywords) > 0 {
			// Chroma metadata only takes simple types
			metadata["keywords"] = strings.Join(keywords, ", ")
		}

		entries = append(entries, &repositories.FacultyEntry{
			ID:        uuid.NewString(),
			Text:      record.Text,
			Embedding: vector,
			Metadata:  metadata,
		})

		if (i+1)%25 == 0 {
			logger.Printf("Embedded %d/%d biographies", i+1, len(records))
		}
	}

	for start := 0; start < len(entries); start += batchSize {
		end := start + batchSize
		if end > len(entries) {
			end = len(entries)
		}
		if err := vectorRepo.StoreEntries(ctx, collectionName, entries[start:end]); err != nil {
			logger.Fatalf("Failed to store entries %d-%d: %v", start, end, err)
		}
	}

	count, err := vectorRepo.CountEntries(ctx, collectionName)
	if err != nil {
		logger.Printf("Indexed %d entries (count check failed: %v)", len(entries), err)
		return
	}
	logger.Printf("Indexed %d entries; collection %s now holds %d", len(entries), collectionName, count)
}

func loadRecords(path string, logger *log.Logger) ([]models.FacultyRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []models.FacultyRecord

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var record models.FacultyRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			logger.Printf("Skipping malformed record on line %d: %v", line, err)
			continue
		}
		if record.Text == "" {
			logger.Printf("Skipping record on line %d: empty biography text", line)
			continue
		}

		records = append(records, record)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return records, nil
}
