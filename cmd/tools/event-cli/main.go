package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/annel0/cauldron-witchery/internal/eventbus"
	"github.com/annel0/cauldron-witchery/internal/recipe"
	nats "github.com/nats-io/nats.go"
)

const (
	defaultServerAddr = nats.DefaultURL
	timeFormat        = "2006-01-02T15:04:05Z"
)

func main() {
	var (
		serverAddr = flag.String("server", defaultServerAddr, "NATS server address")
		stream     = flag.String("stream", "CAULDRON", "JetStream stream name")
		command    = flag.String("cmd", "tail", "Command: tail, stats")
		eventTypes = flag.String("types", recipe.AttemptEventType, "Event types filter (comma-separated)")
		players    = flag.String("players", "", "Player names filter (comma-separated)")
		since      = flag.String("since", "1h", "Time duration since now (e.g., 1h, 30m)")
		limit      = flag.Int("limit", 100, "Maximum number of events")
		follow     = flag.Bool("follow", false, "Follow new events (like tail -f)")
	)
	flag.Parse()

	nc, err := nats.Connect(*serverAddr, nats.Name("cauldron-event-cli"))
	if err != nil {
		log.Fatalf("❌ Failed to connect to server: %v", err)
	}
	defer nc.Close()

	js, err := nc.JetStream()
	if err != nil {
		log.Fatalf("❌ JetStream unavailable: %v", err)
	}

	switch *command {
	case "tail":
		if err := tailEvents(js, &TailOptions{
			EventTypes: parseStringList(*eventTypes),
			Players:    parseStringList(*players),
			Since:      *since,
			Limit:      *limit,
			Follow:     *follow,
		}); err != nil {
			log.Fatalf("❌ Tail failed: %v", err)
		}

	case "stats":
		if err := showStats(js, *stream); err != nil {
			log.Fatalf("❌ Stats failed: %v", err)
		}

	default:
		fmt.Printf("❌ Unknown command: %s\n", *command)
		fmt.Println("Available commands: tail, stats")
		os.Exit(1)
	}
}

type TailOptions struct {
	EventTypes []string
	Players    []string
	Since      string
	Limit      int
	Follow     bool
}

// tailEvents читает события из стрима начиная с момента since
func tailEvents(js nats.JetStreamContext, opts *TailOptions) error {
	fmt.Printf("🎬 Tailing events (limit: %d, follow: %v)\n", opts.Limit, opts.Follow)

	startTime, err := parseSinceTime(opts.Since, time.Now())
	if err != nil {
		return fmt.Errorf("invalid since time: %v", err)
	}

	subject := eventbus.SubjectPrefix + ".*"
	if len(opts.EventTypes) == 1 {
		subject = eventbus.Subject(opts.EventTypes[0])
	}

	sub, err := js.SubscribeSync(subject, nats.StartTime(startTime), nats.AckNone())
	if err != nil {
		return fmt.Errorf("failed to subscribe: %v", err)
	}
	defer sub.Unsubscribe()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventCount := 0
	for ctx.Err() == nil {
		msg, err := sub.NextMsg(time.Second)
		if err == nats.ErrTimeout {
			if opts.Follow {
				continue
			}
			break
		}
		if err != nil {
			return fmt.Errorf("stream error: %v", err)
		}

		ev, err := eventbus.DecodeMessage(msg.Data)
		if err != nil {
			fmt.Printf("⚠️  skip %s: %v\n", msg.Subject, err)
			continue
		}
		if len(opts.EventTypes) > 0 && !contains(opts.EventTypes, ev.EventType) {
			continue
		}
		if !printEvent(ev, opts.Players) {
			continue
		}
		eventCount++

		if !opts.Follow && eventCount >= opts.Limit {
			break
		}
	}

	fmt.Printf("\n📊 Total events: %d\n", eventCount)
	return nil
}

// showStats выводит состояние стрима
func showStats(js nats.JetStreamContext, stream string) error {
	info, err := js.StreamInfo(stream)
	if err != nil {
		return fmt.Errorf("failed to get stream info: %v", err)
	}

	fmt.Println("📊 Stream statistics")
	fmt.Printf("Stream: %s\n", info.Config.Name)
	fmt.Printf("Subjects: %v\n", info.Config.Subjects)
	fmt.Printf("Messages: %d (%d bytes)\n", info.State.Msgs, info.State.Bytes)
	if info.State.Msgs > 0 {
		fmt.Printf("Period: %s - %s\n", info.State.FirstTime.UTC().Format(timeFormat), info.State.LastTime.UTC().Format(timeFormat))
	}
	fmt.Printf("Consumers: %d\n", info.State.Consumers)
	return nil
}

// printEvent выводит событие в читаемом формате. Возвращает false, если событие отфильтровано.
func printEvent(ev *eventbus.Envelope, players []string) bool {
	if ev.EventType != recipe.AttemptEventType {
		if len(players) > 0 {
			return false
		}
		fmt.Printf("[%s] %s [%s] %s\n", ev.Timestamp.Format("15:04:05"), ev.Source, ev.EventType, ev.ID)
		return true
	}

	var a recipe.Attempt
	if err := json.Unmarshal(ev.Payload, &a); err != nil {
		fmt.Printf("⚠️  bad payload %s: %v\n", ev.ID, err)
		return false
	}
	if len(players) > 0 && !containsFold(players, a.PlayerName) {
		return false
	}

	fmt.Printf("[%s] %s [%s] %s\n", ev.Timestamp.Format("15:04:05"), ev.Source, ev.EventType, ev.ID)
	fmt.Printf("  Player: %s Block: %s (%d,%d,%d) in %s Stick: %s\n",
		a.PlayerName, a.BlockType, a.Position.X, a.Position.Y, a.Position.Z, a.World, a.StickID)
	for _, ing := range a.Ingredients {
		fmt.Printf("    %s x%d\n", ing.Material, ing.Amount)
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func containsFold(list []string, v string) bool {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return true
		}
	}
	return false
}

// parseStringList парсит строку с разделителями-запятыми
func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// parseSinceTime парсит относительное время типа "1h", "30m"
func parseSinceTime(since string, from time.Time) (time.Time, error) {
	if since == "" {
		return from, nil
	}

	duration, err := time.ParseDuration(since)
	if err != nil {
		// Пробуем парсить как абсолютное время
		return time.Parse(timeFormat, since)
	}

	return from.Add(-duration), nil
}
