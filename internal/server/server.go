package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"faculty-advisor/internal/db"
	"faculty-advisor/internal/handlers"
	"faculty-advisor/internal/repositories"
	"faculty-advisor/internal/routes"
	"faculty-advisor/internal/services"

	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger"
)

// corsMiddleware adds CORS headers to all responses
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewServer wires the advising pipeline and returns the HTTP server
func NewServer() *http.Server {
	logger := log.New(os.Stdout, "[SERVER] ", log.LstdFlags)

	advisor, llmService := BuildAdvisor(logger)

	chatHandler := handlers.NewChatHandler(advisor, llmService, logger)

	h := &routes.Handlers{
		Health: handlers.HealthCheckHandler,
		Home:   handlers.HomeHandler,
		Chat:   chatHandler,
	}

	router := mux.NewRouter()
	routes.RegisterRoutes(router, h)

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}

	return &http.Server{
		Addr:    addr,
		Handler: corsMiddleware(router),
	}
}

// BuildAdvisor constructs the full advising pipeline from environment
// configuration. Shared by the HTTP server and the terminal chat.
func BuildAdvisor(logger *log.Logger) (*services.AdvisorService, *services.LLMService) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Vector index. Unreachable at boot is survivable; it may come up later.
	chromaConfig := ChromaConfigFromEnv()
	logger.Printf("Connecting to ChromaDB: %s:%d", chromaConfig.Host, chromaConfig.Port)

	chromaClient := db.NewChromaDBClient(chromaConfig)
	if err := chromaClient.Heartbeat(ctx); err != nil {
		logger.Printf("ChromaDB connection failed: %v", err)
		logger.Println("Hint: ensure ChromaDB is running (docker run -d -p 8000:8000 chromadb/chroma)")
	} else {
		logger.Println("ChromaDB connected successfully")
	}
	vectorRepo := repositories.NewChromaVectorRepository(chromaClient)

	embeddingService := services.NewEmbeddingService(EmbeddingConfigFromEnv(), embeddingCache(ctx, logger), logger)

	retrievalService := services.NewRetrievalService(
		embeddingService,
		vectorRepo,
		FacultyCollection(),
		logger,
	)

	llmService := services.NewLLMService(LLMConfigFromEnv(), logger)

	return services.NewAdvisorService(retrievalService, llmService, logger), llmService
}

// embeddingCache connects to Redis for the embedding cache. The cache is
// optional; when Redis is down the embedder just calls the provider.
func embeddingCache(ctx context.Context, logger *log.Logger) *redis.Client {
	redisConfig := RedisConfigFromEnv()

	redisClient, err := db.NewRedisClient(redisConfig)
	if err != nil {
		logger.Printf("Failed to create Redis client: %v", err)
		logger.Println("Embedding cache disabled")
		return nil
	}

	if err := redisClient.Ping(ctx); err != nil {
		logger.Printf("Redis connection failed: %v", err)
		logger.Println("Embedding cache disabled")
		logger.Println("Hint: ensure Redis is running (docker run -d -p 6379:6379 redis:7-alpine)")
		return nil
	}

	logger.Println("Redis connected, embedding cache enabled")
	return redisClient.GetClient()
}
