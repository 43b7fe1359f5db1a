// Standalone mock backend for testing the CLI.
//
// Usage:
//
//	go run ./example/cmd/mockserver
//
// Then in another terminal:
//
//	go run ./cmd/pulsesync tail -c example/config.yaml
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type frame struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

func main() {
	fmt.Println("Mock push backend starting on :9999")
	fmt.Println("Topics: all, events, alerts")
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	var (
		mu    sync.Mutex
		conns = make(map[string][]*websocket.Conn)
	)
	upgrader := websocket.Upgrader{}

	broadcast := func(topic string, f frame) {
		mu.Lock()
		defer mu.Unlock()
		targets := append([]*websocket.Conn(nil), conns[topic]...)
		if topic != "all" {
			targets = append(targets, conns["all"]...)
		}
		for _, conn := range targets {
			_ = conn.WriteJSON(f)
		}
	}

	http.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		topic := strings.TrimPrefix(r.URL.Path, "/ws/")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}

		mu.Lock()
		conns[topic] = append(conns[topic], conn)
		mu.Unlock()
		slog.Info("client subscribed", "topic", topic)

		_ = conn.WriteJSON(frame{
			Type:      "connected",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Data:      map[string]any{"topic": topic},
		})

		go func() {
			defer func() {
				mu.Lock()
				remaining := conns[topic][:0]
				for _, c := range conns[topic] {
					if c != conn {
						remaining = append(remaining, c)
					}
				}
				conns[topic] = remaining
				mu.Unlock()
				_ = conn.Close()
			}()
			for {
				_, data, err := conn.ReadMessage()
				if err != nil {
					return
				}
				if string(data) == "ping" {
					_ = conn.WriteMessage(websocket.TextMessage, []byte("pong"))
				}
			}
		}()
	})

	go func() {
		messages := []string{"user login accepted", "config reloaded", "batch ingest completed"}
		for {
			time.Sleep(time.Duration(2+rand.Intn(4)) * time.Second)
			broadcast("events", frame{
				Type:      "event",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Data:      map[string]any{"message": messages[rand.Intn(len(messages))]},
			})
		}
	}()
	go func() {
		severities := []string{"low", "medium", "high", "critical"}
		for {
			time.Sleep(time.Duration(8+rand.Intn(10)) * time.Second)
			broadcast("alerts", frame{
				Type:      "alert",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Data: map[string]any{
					"rule_name": "Mock alert",
					"severity":  severities[rand.Intn(len(severities))],
				},
			})
		}
	}()
	go func() {
		for {
			time.Sleep(10 * time.Second)
			broadcast("all", frame{
				Type:      "stats",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Data: map[string]any{
					"status":  "healthy",
					"version": "0.1.0-mock",
				},
			})
		}
	}()

	if err := http.ListenAndServe(":9999", nil); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}
