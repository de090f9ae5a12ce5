package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"faculty-advisor/internal/models"
)

// contextIntro opens every context passage, with or without results
const contextIntro = "To provide some context, here are some faculty members that might be relevant to your description.\n\n"

// systemPrompt fixes the assistant's role for every turn
const systemPrompt = "You are an academic advisor. You estimate the relevance of faculty members " +
	"to a given description. Suggest relevant faculty members. Don't forget to include a link to " +
	"the faculty member's profile. You should give explanation for your choice in markdown format."

// Retriever finds faculty members similar to a free-text description
type Retriever interface {
	FindSimilar(ctx context.Context, query string, topK int) ([]models.RetrievedFaculty, error)
}

// AdvisorService runs the full per-turn pipeline: retrieve matching
// faculty, fold them into the prompt, and stream the model's answer.
// It holds no per-conversation state; history is supplied by the caller.
type AdvisorService struct {
	retriever Retriever
	llm       ChatStreamer
	topK      int
	logger    *log.Logger
}

// NewAdvisorService creates a new advisor service
func NewAdvisorService(retriever Retriever, llm ChatStreamer, logger *log.Logger) *AdvisorService {
	return &AdvisorService{
		retriever: retriever,
		llm:       llm,
		topK:      DefaultTopK,
		logger:    logger,
	}
}

// BuildContext renders retrieved faculty into a single passage for the
// prompt. Pure formatting: input order preserved, nothing truncated,
// nothing deduplicated. An empty input yields just the introduction.
func BuildContext(faculty []models.RetrievedFaculty) string {
	var passage strings.Builder
	passage.WriteString(contextIntro)

	for _, member := range faculty {
		passage.WriteString("Potentially related faculty:\n")
		passage.WriteString(member.Name)
		passage.WriteString("\n\nwebsite: ")
		passage.WriteString(member.URL)
		passage.WriteString("\n\n")
		passage.WriteString(member.Document)
		passage.WriteString("\n\n")
	}

	return passage.String()
}

// AssembleMessages builds the ordered message sequence for the model:
// one system message, the history flattened in chronological order, and
// one final user message carrying the query plus the context passage.
// Message count is always 2*len(history) + 2.
func AssembleMessages(query, contextPassage string, history []models.Turn) []models.ChatMessage {
	messages := make([]models.ChatMessage, 0, 2*len(history)+2)

	messages = append(messages, models.ChatMessage{
		Role:    models.RoleSystem,
		Content: systemPrompt,
	})

	for _, turn := range history {
		messages = append(messages, models.ChatMessage{
			Role:    models.RoleUser,
			Content: turn.User,
		})
		messages = append(messages, models.ChatMessage{
			Role:    models.RoleAssistant,
			Content: turn.Assistant,
		})
	}

	messages = append(messages, models.ChatMessage{
		Role:    models.RoleUser,
		Content: fmt.Sprintf("Here is my description: %s\n\n%s", query, contextPassage),
	})

	return messages
}

// Advise runs one chat turn and returns the streamed answer as cumulative
// snapshots. Retrieval and completion failures surface as their typed
// errors; a mid-stream failure arrives as the final snapshot's Err after
// whatever partial answer was produced.
func (s *AdvisorService) Advise(ctx context.Context, query string, history []models.Turn) (<-chan StreamSnapshot, error) {
	if query == "" {
		return nil, fmt.Errorf("query is required")
	}

	faculty, err := s.retriever.FindSimilar(ctx, query, s.topK)
	if err != nil {
		return nil, err
	}
	s.logger.Printf("Retrieved %d faculty matches for advising", len(faculty))

	messages := AssembleMessages(query, BuildContext(faculty), history)

	return s.llm.StreamChat(ctx, messages)
}
