package services

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"faculty-advisor/internal/models"
)

const (
	// DefaultChatModel is the generative model used for advising
	DefaultChatModel = "gpt-4o-mini"

	// DefaultSeed pins generation so identical inputs reproduce identical
	// answers run-to-run. Best effort; providers may not honor it.
	DefaultSeed = 42
)

// StreamSnapshot is one element of a streamed completion. Content carries
// the full response accumulated so far, never a delta, so consecutive
// snapshots are prefix-extensions of each other. A non-nil Err is terminal:
// the content already delivered is valid but the answer is truncated.
type StreamSnapshot struct {
	Content string
	Err     error
}

// ChatStreamer submits an ordered message sequence to the generative
// model and exposes the response as an incrementally growing text.
type ChatStreamer interface {
	StreamChat(ctx context.Context, messages []models.ChatMessage) (<-chan StreamSnapshot, error)
}

// LLMConfig holds configuration for the completion provider
type LLMConfig struct {
	BaseURL string
	APIKey  string
	Model   string
	Seed    int
	Timeout time.Duration
}

// LLMService handles communication with an OpenAI-compatible
// chat completions API
type LLMService struct {
	baseURL      string
	apiKey       string
	model        string
	seed         int
	httpClient   *http.Client
	streamClient *http.Client
	logger       *log.Logger
}

// NewLLMService creates a new LLM service instance
func NewLLMService(config LLMConfig, logger *log.Logger) *LLMService {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = DefaultChatModel
	}
	if config.Seed == 0 {
		config.Seed = DefaultSeed
	}
	if config.Timeout == 0 {
		config.Timeout = 120 * time.Second // LLMs can be slow
	}

	return &LLMService{
		baseURL: config.BaseURL,
		apiKey:  config.APIKey,
		model:   config.Model,
		seed:    config.Seed,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		// Streamed generations are bounded by the caller's context,
		// not by a whole-request client timeout.
		streamClient: &http.Client{},
		logger:       logger,
	}
}

type chatCompletionRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Seed     int                  `json:"seed"`
	Stream   bool                 `json:"stream"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type chatCompletionChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// Chat sends the messages and returns the complete response in one piece
func (s *LLMService) Chat(ctx context.Context, messages []models.ChatMessage) (string, error) {
	resp, err := s.post(ctx, s.httpClient, messages, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", NewCompletionError("chat", err, "failed to parse response")
	}

	if len(parsed.Choices) == 0 {
		return "", NewCompletionError("chat", nil, "no response from completion provider")
	}

	return parsed.Choices[0].Message.Content, nil
}

// StreamChat submits the messages with incremental delivery requested.
// On success the returned channel carries cumulative snapshots and is
// closed when the model signals completion. A failure before the first
// byte returns a CompletionError and no channel. A failure mid-stream
// delivers one final snapshot carrying the partial text and the error.
// Cancelling ctx stops the network read promptly and closes the channel
// without raising an error from the producer side.
func (s *LLMService) StreamChat(ctx context.Context, messages []models.ChatMessage) (<-chan StreamSnapshot, error) {
	resp, err := s.post(ctx, s.streamClient, messages, true)
	if err != nil {
		return nil, err
	}

	out := make(chan StreamSnapshot)

	go func() {
		defer close(out)
		defer resp.Body.Close()

		var response strings.Builder
		done := false

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if !strings.HasPrefix(line, "data:") {
				continue
			}

			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				done = true
				break
			}

			var chunk chatCompletionChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				// One malformed event does not abort the stream
				s.logger.Printf("Skipping malformed stream event: %v", err)
				continue
			}

			if len(chunk.Choices) == 0 {
				continue
			}
			if reason := chunk.Choices[0].FinishReason; reason != nil && *reason != "" {
				done = true
			}

			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			response.WriteString(delta)

			select {
			case out <- StreamSnapshot{Content: response.String()}:
			case <-ctx.Done():
				return
			}
		}

		if ctx.Err() != nil {
			// The consumer cancelled; nothing to report
			return
		}

		scanErr := scanner.Err()
		if scanErr == nil && !done {
			scanErr = io.ErrUnexpectedEOF
		}
		if scanErr != nil {
			snapshot := StreamSnapshot{
				Content: response.String(),
				Err:     NewCompletionError("stream_chat", scanErr, "stream ended before completion"),
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
			}
		}
	}()

	return out, nil
}

func (s *LLMService) post(ctx context.Context, client *http.Client, messages []models.ChatMessage, stream bool) (*http.Response, error) {
	jsonBody, err := json.Marshal(chatCompletionRequest{
		Model:    s.model,
		Messages: messages,
		Seed:     s.seed,
		Stream:   stream,
	})
	if err != nil {
		return nil, NewCompletionError("chat", err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return nil, NewCompletionError("chat", err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewCompletionError("chat", err, "")
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, NewCompletionError("chat", nil,
			fmt.Sprintf("completion provider returned status %d: %s", resp.StatusCode, string(body)))
	}

	return resp, nil
}

// HealthCheck verifies the completion provider is reachable
func (s *LLMService) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/models", nil)
	if err != nil {
		return err
	}
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("completion provider not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("completion provider returned status %d", resp.StatusCode)
	}

	return nil
}
