package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"fidesia-be/pkg/events"
	pktNats "fidesia-be/pkg/nats"
)

// Tails the activity event stream. Useful to watch what the backend
// mirrors onto NATS without opening the admin dashboard.
func main() {
	if err := godotenv.Load(); err != nil {
		// system env is enough
	}

	subject := flag.String("subject", "events.>", "subject filter, e.g. events.question_asked")
	durable := flag.String("durable", "events-tail", "durable consumer name")
	flag.Parse()

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	sub, err := pktNats.NewSubscriber(natsURL)
	if err != nil {
		color.Red("Failed to connect to NATS: %v", err)
		os.Exit(1)
	}
	defer sub.Close()

	err = sub.Subscribe(*subject, *durable, func(ctx context.Context, event events.Event) error {
		payload, _ := json.Marshal(event.Payload())
		color.Yellow("%s", event.Timestamp().Format("15:04:05"))
		color.Cyan("  %s", event.EventType())
		color.White("  %s", payload)
		return nil
	})
	if err != nil {
		color.Red("Failed to subscribe: %v", err)
		os.Exit(1)
	}

	color.Green("✅ Tailing %s on %s (Ctrl+C to stop)", *subject, natsURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
}
