package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jpalmerr/pulsesync"
	"github.com/jpalmerr/pulsesync/store"
)

func main() {
	// start mock backend (see mock_server.go)
	go StartMockPushServer(":9999")
	time.Sleep(100 * time.Millisecond)

	client, err := pulsesync.New("ws://localhost:9999/ws",
		pulsesync.WithTopics("events", "alerts"),
		pulsesync.WithPreferences(os.TempDir()+"/pulsesync-demo-prefs.json"),
		pulsesync.WithStatusCallback(func(topic string, status pulsesync.Status) {
			slog.Info("channel status", "topic", topic, "status", status.String())
		}),
		pulsesync.WithInvalidateCallback(func(scope string) {
			slog.Info("query cache invalidated", "scope", scope)
		}),
	)
	if err != nil {
		slog.Error("failed to create client", "error", err)
		os.Exit(1)
	}

	// print every notification the store gains; the store schedules
	// their removal after the TTL on its own
	client.Store().OnAction(func(a store.Action) {
		if a.Kind() != store.KindAddNotification {
			return
		}
		state := client.State()
		n := state.Notifications[len(state.Notifications)-1]
		fmt.Printf("  🔔 [%s] %s\n", n.Severity, n.Message)
	})

	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   PulseSync Demo                                      ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Streaming from the mock backend on :9999            ║")
	fmt.Println("  ║   • events topic: periodic fake events                ║")
	fmt.Println("  ║   • alerts topic: fake alerts become notifications   ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ║   Press Ctrl+C to stop                                ║")
	fmt.Println("  ║                                                       ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════╝")
	fmt.Println()

	// set up context with signal handling for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := client.Start(ctx); err != nil {
		slog.Error("pulsesync error", "error", err)
		os.Exit(1)
	}
}
