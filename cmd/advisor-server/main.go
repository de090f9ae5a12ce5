// Package main Faculty Advisor API Server
//
//	@title			Faculty Advisor API
//	@version		1.0
//	@description	Retrieval-augmented chat API recommending faculty members by research interest
//
//	@host		localhost:8080
//	@BasePath	/
package main

import (
	"log"

	_ "faculty-advisor/docs" // swagger docs registration
	"faculty-advisor/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	log.Println("Starting Faculty Advisor server...")
	srv := server.NewServer()
	if err := srv.ListenAndServe(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
