package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"documind-be/internal/constant"
	"documind-be/pkg/events"
	"documind-be/pkg/nats"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// Tails the EVENTS stream and pretty prints every session lifecycle event.
// Handy for watching a session move through upload, asks and quizzes while
// exercising the API from another terminal.
func main() {
	// 1. Load Environment
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	color.Cyan("🔭 Session Event Tracer")
	fmt.Printf("Connecting to %s, tailing events.>\n\n", natsURL)

	// 2. Connect and attach a durable consumer
	sub, err := nats.NewSubscriber(natsURL)
	if err != nil {
		log.Fatal("Error: Failed to connect to NATS:", err)
	}
	defer sub.Close()

	err = sub.Subscribe("events.>", "event-tracer", func(ctx context.Context, event events.BaseEvent) error {
		printEvent(event)
		return nil
	})
	if err != nil {
		log.Fatal("Error: Failed to subscribe:", err)
	}

	// 3. Block until interrupted
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	fmt.Println("\nBye.")
}

func printEvent(event events.BaseEvent) {
	header := color.New(color.FgCyan, color.Bold)
	switch event.Type {
	case constant.EventDocumentUploaded:
		header = color.New(color.FgGreen, color.Bold)
	case constant.EventSessionReset:
		header = color.New(color.FgRed, color.Bold)
	case constant.EventQuizGenerated, constant.EventAnswerEvaluated:
		header = color.New(color.FgYellow, color.Bold)
	}

	header.Printf("▶ %s", event.Type)
	fmt.Printf("  %s", event.OccurredAt.Format("15:04:05.000"))
	if id := event.SessionID(); id != "" {
		fmt.Printf("  session=%s", id)
	}
	fmt.Println()

	pretty, err := json.MarshalIndent(event.Data, "  ", "  ")
	if err != nil {
		fmt.Printf("  %v\n\n", event.Data)
		return
	}
	fmt.Printf("  %s\n\n", string(pretty))
}
