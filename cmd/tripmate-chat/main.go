// README: Terminal chat against the Gemini backend; keeps one in-memory conversation.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"tripmate/internal/ai"
	"tripmate/internal/config"
	"tripmate/internal/logger"
	"tripmate/internal/modules/prompt"
	"tripmate/internal/modules/session"
)

const help = `Commands:
  /prefs      show the current preferences
  /itinerary  generate a day-by-day itinerary
  /clear      start over
  /quit       exit`

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.AI.GeminiKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable not set")
	}

	ctx := context.Background()
	provider, err := ai.NewGeminiProvider(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiModel)
	if err != nil {
		log.Fatalf("Failed to initialize AI provider: %v", err)
	}
	defer provider.Close()

	svc := session.NewService(session.ServiceDeps{
		Store:     session.NewMemoryStore(),
		Generator: provider,
		Logger:    logger.New(cfg.Log.Level, "console"),
	})
	sess, err := svc.Create(ctx, "")
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(prompt.Collection())
	fmt.Println()
	fmt.Println(help)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/quit":
			return
		case "/prefs":
			prefs, err := svc.Preferences(ctx, "", sess.ID)
			if err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println(prompt.Summary(prefs))
		case "/clear":
			if _, err := svc.Reset(ctx, "", sess.ID); err != nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			fmt.Println("Conversation cleared.")
		case "/itinerary":
			text, err := svc.Itinerary(ctx, "", sess.ID)
			switch {
			case errors.Is(err, prompt.ErrDestinationRequired):
				fmt.Println(prompt.DestinationRequiredMessage)
			case err != nil:
				fmt.Printf("error generating itinerary: %v\n", err)
			default:
				fmt.Printf("\n%s\n", text)
			}
		default:
			res, err := svc.Chat(ctx, "", sess.ID, line)
			if res == nil {
				fmt.Printf("error: %v\n", err)
				continue
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "(backend error: %v)\n", err)
			}
			fmt.Printf("Assistant: %s\n", res.Reply)
		}
	}
}
