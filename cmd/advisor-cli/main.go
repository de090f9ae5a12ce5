// Terminal chat against the advising pipeline. Streams the answer in
// place as it grows and keeps the conversation history for follow-ups.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"faculty-advisor/internal/models"
	"faculty-advisor/internal/server"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment as-is")
	}

	logger := log.New(os.Stderr, "[CLI] ", log.LstdFlags)
	advisor, _ := server.BuildAdvisor(logger)

	prompt := color.New(color.FgCyan, color.Bold)
	answer := color.New(color.FgGreen)
	warn := color.New(color.FgRed)

	fmt.Println("Faculty Advisor - describe a research interest, or 'quit' to exit.")

	var history []models.Turn
	reader := bufio.NewScanner(os.Stdin)

	for {
		prompt.Print("\nYou: ")
		if !reader.Scan() {
			break
		}
		query := strings.TrimSpace(reader.Text())
		if query == "" {
			continue
		}
		if strings.EqualFold(query, "quit") || strings.EqualFold(query, "exit") {
			break
		}

		snapshots, err := advisor.Advise(context.Background(), query, history)
		if err != nil {
			warn.Printf("Error: %v\n", err)
			continue
		}

		prompt.Print("Advisor: ")

		// Snapshots are cumulative; print only the new tail of each
		var full string
		var streamErr error
		for snapshot := range snapshots {
			if snapshot.Err != nil {
				streamErr = snapshot.Err
			}
			if len(snapshot.Content) > len(full) {
				answer.Print(snapshot.Content[len(full):])
				full = snapshot.Content
			}
		}
		fmt.Println()

		if streamErr != nil {
			warn.Printf("(answer truncated: %v)\n", streamErr)
		}
		if full != "" {
			history = append(history, models.Turn{User: query, Assistant: full})
		}
	}
}
