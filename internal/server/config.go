package server

import (
	"os"
	"strconv"
	"time"

	"faculty-advisor/internal/db"
	"faculty-advisor/internal/services"
)

const (
	// DefaultCollection is the Chroma collection holding faculty biographies
	DefaultCollection = "faculties"
)

// FacultyCollection returns the configured vector index collection name
func FacultyCollection() string {
	if name := os.Getenv("FACULTY_COLLECTION"); name != "" {
		return name
	}
	return DefaultCollection
}

// ChromaConfigFromEnv reads ChromaDB configuration from environment variables
func ChromaConfigFromEnv() db.ChromaDBConfig {
	config := db.ChromaDBConfig{
		Host:     "localhost",
		Port:     8000,
		Tenant:   "default_tenant",
		Database: "default_database",
		Timeout:  30 * time.Second,
	}

	if host := os.Getenv("CHROMA_HOST"); host != "" {
		config.Host = host
	}

	if portStr := os.Getenv("CHROMA_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	if tenant := os.Getenv("CHROMA_TENANT"); tenant != "" {
		config.Tenant = tenant
	}

	if database := os.Getenv("CHROMA_DATABASE"); database != "" {
		config.Database = database
	}

	return config
}

// RedisConfigFromEnv reads Redis configuration from environment variables
func RedisConfigFromEnv() db.RedisConfig {
	config := db.DefaultRedisConfig()

	if host := os.Getenv("REDIS_HOST"); host != "" {
		config.Host = host
	}

	if portStr := os.Getenv("REDIS_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil {
			config.Port = port
		}
	}

	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		config.Password = password
	}

	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if dbNum, err := strconv.Atoi(dbStr); err == nil {
			config.DB = dbNum
		}
	}

	return config
}

// EmbeddingConfigFromEnv reads embedding provider configuration from
// environment variables. OPENAI_BASE_URL covers any compatible provider.
func EmbeddingConfigFromEnv() services.EmbeddingConfig {
	return services.EmbeddingConfig{
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("EMBEDDING_MODEL"),
	}
}

// LLMConfigFromEnv reads completion provider configuration from
// environment variables
func LLMConfigFromEnv() services.LLMConfig {
	config := services.LLMConfig{
		BaseURL: os.Getenv("OPENAI_BASE_URL"),
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   os.Getenv("CHAT_MODEL"),
	}

	if seedStr := os.Getenv("CHAT_SEED"); seedStr != "" {
		if seed, err := strconv.Atoi(seedStr); err == nil {
			config.Seed = seed
		}
	}

	return config
}
