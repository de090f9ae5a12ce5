package models

// Role constants for chat messages
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage represents a single message in a conversation
type ChatMessage struct {
	Role    string `json:"role"`    // "user", "assistant", or "system"
	Content string `json:"content"` // The message content
}

// Turn represents one completed user/assistant exchange.
// Turns are immutable once recorded; the caller owns the history.
type Turn struct {
	User      string `json:"user"`
	Assistant string `json:"assistant"`
}

// ChatRequest represents the incoming chat request from the frontend
type ChatRequest struct {
	Query   string `json:"query"`             // The current research-interest description
	History []Turn `json:"history,omitempty"` // Previous conversation turns, oldest first
}

// ChatResponse represents a non-streaming response sent back to the frontend
type ChatResponse struct {
	Message string `json:"message"` // The assistant's response
	Status  string `json:"status"`  // "success" or "error"
}

// StreamEvent is one server-sent event on the streaming chat endpoint.
// Content always carries the full answer accumulated so far, not a delta.
type StreamEvent struct {
	Content string `json:"content"`
	Done    bool   `json:"done,omitempty"`
	Error   string `json:"error,omitempty"`
}
