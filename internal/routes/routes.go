package routes

import (
	"net/http"

	"faculty-advisor/internal/handlers"

	"github.com/gorilla/mux"
)

// Handlers bundles everything the router needs
type Handlers struct {
	Health http.HandlerFunc
	Home   http.HandlerFunc
	Chat   *handlers.ChatHandler
}

// RegisterRoutes sets up all application routes
func RegisterRoutes(router *mux.Router, h *Handlers) {
	// Health endpoints
	router.HandleFunc("/health", h.Health).Methods("GET")
	router.HandleFunc("/llm/health", h.Chat.LLMHealth).Methods("GET")

	// Chat endpoints
	router.HandleFunc("/chat", h.Chat.Chat).Methods("POST", "OPTIONS")
	router.HandleFunc("/chat/stream", h.Chat.ChatStream).Methods("POST", "OPTIONS")

	// Main routes
	router.HandleFunc("/", h.Home).Methods("GET")
}
