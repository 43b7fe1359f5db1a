package main

import (
	"log/slog"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// frame matches the wire format pushed by the monitoring backend.
type frame struct {
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Data      map[string]any `json:"data"`
}

var mockRules = []struct {
	name     string
	severity string
}{
	{"SSH brute force detected", "high"},
	{"Disk usage above 90%", "medium"},
	{"Repeated auth failures", "critical"},
	{"Unusual outbound traffic", "low"},
}

var mockEventMessages = []string{
	"user login accepted",
	"config reloaded",
	"batch ingest completed",
	"session expired",
}

// StartMockPushServer runs a mock backend that accepts websocket
// connections at /ws/{topic} and pushes fake events, alerts, and stats.
// The "all" topic receives everything; "events" and "alerts" receive
// only their own kind. Call this in a goroutine before starting a
// client against it.
func StartMockPushServer(addr string) {
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
			if err := conn.WriteJSON(f); err != nil {
				slog.Debug("push failed", "topic", topic, "error", err)
			}
		}
	}

	http.HandleFunc("/ws/", func(w http.ResponseWriter, r *http.Request) {
		topic := strings.TrimPrefix(r.URL.Path, "/ws/")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.Error("upgrade failed", "error", err)
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

		// read loop: answer keepalive pings, drop the conn on error
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
				slog.Info("client gone", "topic", topic)
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

	// background pushers
	go func() {
		for {
			time.Sleep(time.Duration(2+rand.Intn(4)) * time.Second)
			broadcast("events", frame{
				Type:      "event",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Data: map[string]any{
					"message": mockEventMessages[rand.Intn(len(mockEventMessages))],
					"source":  "mock",
				},
			})
		}
	}()
	go func() {
		for {
			time.Sleep(time.Duration(8+rand.Intn(10)) * time.Second)
			rule := mockRules[rand.Intn(len(mockRules))]
			broadcast("alerts", frame{
				Type:      "alert",
				Timestamp: time.Now().UTC().Format(time.RFC3339),
				Data: map[string]any{
					"rule_name": rule.name,
					"severity":  rule.severity,
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
					"components": map[string]any{
						"database":  "healthy",
						"collector": "healthy",
					},
				},
			})
		}
	}()

	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("mock server error", "error", err)
	}
}
