// Command sidekick is an interactive prescription-checking REPL. Each
// line of input runs one supervision superstep and prints the
// assistant's answer followed by the evaluator's feedback.
//
// Configuration is via environment variables (a .env file is loaded if
// present):
//
//	SIDEKICK_PROVIDER - Provider: anthropic, openai, or google (default: openai)
//	SIDEKICK_MODEL    - Model override (optional, uses provider default)
//	ANTHROPIC_API_KEY - Anthropic API key
//	OPENAI_API_KEY    - OpenAI API key
//	GOOGLE_API_KEY    - Google API key
//	OPENFDA_API_KEY   - openFDA API key (optional, raises rate limits)
//
// Usage:
//
//	SIDEKICK_PROVIDER=anthropic go run ./cmd/sidekick
package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	ai "github.com/codypharm/pharma-sidekick"
	"github.com/codypharm/pharma-sidekick/checks"
	"github.com/codypharm/pharma-sidekick/client"
	"github.com/codypharm/pharma-sidekick/fda"
	"github.com/codypharm/pharma-sidekick/loop"
	"github.com/codypharm/pharma-sidekick/store"
)

func main() {
	godotenv.Load()

	providerName := os.Getenv("SIDEKICK_PROVIDER")
	if providerName == "" {
		providerName = "openai"
	}

	c := client.New(client.Config{
		APIKeys: client.APIKeys{
			Anthropic: os.Getenv("ANTHROPIC_API_KEY"),
			OpenAI:    os.Getenv("OPENAI_API_KEY"),
			Google:    os.Getenv("GOOGLE_API_KEY"),
		},
		Models: client.Models{
			Anthropic: os.Getenv("SIDEKICK_MODEL"),
			OpenAI:    os.Getenv("SIDEKICK_MODEL"),
			Google:    os.Getenv("SIDEKICK_MODEL"),
		},
	})

	ctx := context.Background()
	provider, err := c.ChatProvider(ctx, ai.Provider(providerName))
	if err != nil {
		log.Fatalf("Failed to create provider: %v", err)
	}

	var fdaOpts []fda.Option
	if key := os.Getenv("OPENFDA_API_KEY"); key != "" {
		fdaOpts = append(fdaOpts, fda.WithAPIKey(key))
	}
	registry := checks.NewRegistry(fda.NewClient(fdaOpts...))

	sessions := store.NewSessionStore(store.NewMemoryAdapter())
	sidekick := loop.NewSidekick(provider, registry, loop.WithSessionStore(sessions))

	fmt.Println("Pharmacy Sidekick - prescription checking assistant")
	fmt.Printf("Provider: %s | Checks: %d | Session: %s\n", providerName, registry.Len(), sidekick.SessionID())
	fmt.Println("Describe a prescription to validate, or type 'quit' to exit.")

	var history []loop.Entry
	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("\n> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		line = strings.TrimSpace(line)
		if line == "quit" || line == "exit" {
			break
		}
		if line == "" {
			continue
		}

		updated, err := sidekick.Run(ctx, line, "", history)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		history = updated

		// The run appends the user entry, the answer, and the feedback.
		if len(history) >= 2 {
			fmt.Printf("\nSidekick: %s\n", history[len(history)-2].Content)
			fmt.Printf("\n%s\n", history[len(history)-1].Content)
		}
	}

	fmt.Println("\nGoodbye.")
}
