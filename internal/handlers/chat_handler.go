package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"faculty-advisor/internal/models"
	"faculty-advisor/internal/services"
)

// Advisor runs one advising turn and streams the answer
type Advisor interface {
	Advise(ctx context.Context, query string, history []models.Turn) (<-chan services.StreamSnapshot, error)
}

// ChatHandler handles HTTP requests for the advising chat
type ChatHandler struct {
	advisor Advisor
	llm     *services.LLMService
	logger  *log.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(advisor Advisor, llm *services.LLMService, logger *log.Logger) *ChatHandler {
	return &ChatHandler{
		advisor: advisor,
		llm:     llm,
		logger:  logger,
	}
}

// Chat handles non-streaming chat requests
// @Summary Ask for faculty recommendations
// @Description Runs one retrieval-augmented advising turn and returns the complete answer
// @Tags chat
// @Accept json
// @Produce json
// @Param request body models.ChatRequest true "Query and optional conversation history"
// @Success 200 {object} models.ChatResponse
// @Failure 400 {object} models.ChatResponse
// @Failure 502 {object} models.ChatResponse
// @Router /chat [post]
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	request, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	snapshots, err := h.advisor.Advise(r.Context(), request.Query, request.History)
	if err != nil {
		h.logger.Printf("Advising turn failed: %v", err)
		h.sendJSON(w, http.StatusBadGateway, models.ChatResponse{
			Message: "Failed to get a recommendation: " + err.Error(),
			Status:  "error",
		})
		return
	}

	// Drain the stream; the last snapshot carries the whole answer
	var answer string
	var streamErr error
	for snapshot := range snapshots {
		if snapshot.Content != "" {
			answer = snapshot.Content
		}
		if snapshot.Err != nil {
			streamErr = snapshot.Err
		}
	}

	if streamErr != nil {
		h.logger.Printf("Stream ended with error: %v", streamErr)
		if answer == "" {
			h.sendJSON(w, http.StatusBadGateway, models.ChatResponse{
				Message: "Failed to get a recommendation: " + streamErr.Error(),
				Status:  "error",
			})
			return
		}
		// Partial answers stay visible but are flagged as truncated
		h.sendJSON(w, http.StatusOK, models.ChatResponse{
			Message: answer,
			Status:  "truncated",
		})
		return
	}

	h.sendJSON(w, http.StatusOK, models.ChatResponse{
		Message: answer,
		Status:  "success",
	})
}

// ChatStream handles streaming chat requests over server-sent events.
// Every event carries the full answer accumulated so far; the final
// event has done=true, or error set when the stream was cut short.
// @Summary Ask for faculty recommendations (streaming)
// @Description Runs one advising turn and streams the growing answer as server-sent events
// @Tags chat
// @Accept json
// @Produce text/event-stream
// @Param request body models.ChatRequest true "Query and optional conversation history"
// @Success 200 {object} models.StreamEvent
// @Failure 400 {object} models.ChatResponse
// @Failure 502 {object} models.ChatResponse
// @Router /chat/stream [post]
func (h *ChatHandler) ChatStream(w http.ResponseWriter, r *http.Request) {
	request, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	flusher, canFlush := w.(http.Flusher)
	if !canFlush {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	snapshots, err := h.advisor.Advise(r.Context(), request.Query, request.History)
	if err != nil {
		h.logger.Printf("Advising turn failed: %v", err)
		h.sendJSON(w, http.StatusBadGateway, models.ChatResponse{
			Message: "Failed to get a recommendation: " + err.Error(),
			Status:  "error",
		})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	var last string
	failed := false
	for snapshot := range snapshots {
		if snapshot.Content != "" {
			last = snapshot.Content
		}
		if snapshot.Err != nil {
			failed = true
			h.writeEvent(w, models.StreamEvent{Content: last, Error: snapshot.Err.Error()})
			flusher.Flush()
			continue
		}
		h.writeEvent(w, models.StreamEvent{Content: snapshot.Content})
		flusher.Flush()
	}

	if !failed {
		h.writeEvent(w, models.StreamEvent{Content: last, Done: true})
		flusher.Flush()
	}
}

// LLMHealth checks if the completion provider is available
// @Summary Check completion provider health
// @Tags chat
// @Produce json
// @Success 200 {object} models.ChatResponse
// @Failure 503 {object} models.ChatResponse
// @Router /llm/health [get]
func (h *ChatHandler) LLMHealth(w http.ResponseWriter, r *http.Request) {
	if err := h.llm.HealthCheck(r.Context()); err != nil {
		h.sendJSON(w, http.StatusServiceUnavailable, models.ChatResponse{
			Message: "Completion provider is not available: " + err.Error(),
			Status:  "error",
		})
		return
	}

	h.sendJSON(w, http.StatusOK, models.ChatResponse{
		Message: "Completion provider is available",
		Status:  "success",
	})
}

func (h *ChatHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (models.ChatRequest, bool) {
	var request models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendJSON(w, http.StatusBadRequest, models.ChatResponse{
			Message: "Invalid request body: " + err.Error(),
			Status:  "error",
		})
		return request, false
	}

	if request.Query == "" {
		h.sendJSON(w, http.StatusBadRequest, models.ChatResponse{
			Message: "Query is required",
			Status:  "error",
		})
		return request, false
	}

	return request, true
}

func (h *ChatHandler) sendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Printf("Failed to encode response: %v", err)
	}
}

func (h *ChatHandler) writeEvent(w http.ResponseWriter, event models.StreamEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Printf("Failed to encode stream event: %v", err)
		return
	}
	if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		h.logger.Printf("Failed to write stream event: %v", err)
	}
}
