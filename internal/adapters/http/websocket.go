package http

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/derniermetro/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to a line's alerts.
type wsMessage struct {
	Action string `json:"action"` // "subscribe" | "unsubscribe"
	Line   string `json:"line"`   // line filter, "" = all lines
}

// WebSocketHandler relays last-train alerts to connected clients.
// The connection starts subscribed to ?line= (all lines when absent); clients then
// send {"action":"subscribe","line":"M7"} or {"action":"unsubscribe","line":"M7"}.
func WebSocketHandler(alerts AlertSource) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		log := slog.Default().With("remote_addr", c.RemoteAddr().String())
		log.Info("ws client connected")

		var mu sync.Mutex
		subs := make(map[string]func() error) // line -> unsubscribe

		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		relay := func(data []byte) {
			_ = writeJSON(json.RawMessage(data))
		}
		label := func(line string) string {
			if line == "" {
				return "*"
			}
			return line
		}

		initial := c.Query("line")
		unsub, err := alerts.SubscribeLastTrain(initial, relay)
		if err != nil {
			log.Error("ws default subscribe failed", "error", err)
			_ = writeJSON(APIError{Error: "alerts unavailable"})
			return
		}
		subs[initial] = unsub

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(APIError{Error: "invalid JSON"})
				continue
			}

			switch m.Action {
			case "subscribe":
				if _, exists := subs[m.Line]; exists {
					_ = writeJSON(map[string]string{"status": "already subscribed", "line": label(m.Line)})
					continue
				}
				u, err := alerts.SubscribeLastTrain(m.Line, relay)
				if err != nil {
					_ = writeJSON(APIError{Error: "subscribe failed: " + err.Error()})
					continue
				}
				subs[m.Line] = u
				_ = writeJSON(map[string]string{"status": "subscribed", "line": label(m.Line)})

			case "unsubscribe":
				if u, exists := subs[m.Line]; exists {
					_ = u()
					delete(subs, m.Line)
					_ = writeJSON(map[string]string{"status": "unsubscribed", "line": label(m.Line)})
				} else {
					_ = writeJSON(APIError{Error: "not subscribed to " + label(m.Line)})
				}

			default:
				_ = writeJSON(APIError{Error: "unknown action: " + m.Action})
			}
		}

		close(done)
		for _, u := range subs {
			_ = u()
		}
		log.Info("ws client disconnected")
	}
}
