package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/derniermetro/internal/core/domain"
	"github.com/samirrijal/derniermetro/internal/pkg/metrics"
)

// Subjects and stream used for last-train alerts.
const (
	AlertStream        = "METRO_ALERTS"
	lastTrainPrefix    = "metro.last_train."
	AllLastTrainsTopic = lastTrainPrefix + ">"
)

// LastTrainSubject returns the subject alerts for line are published on.
// An empty line yields the wildcard covering every line.
func LastTrainSubject(line string) string {
	if line == "" {
		return AllLastTrainsTopic
	}
	return lastTrainPrefix + subjectToken(line)
}

// subjectToken makes s safe to use as a single subject token.
func subjectToken(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '.', '*', '>', ' ', '\t', '\n', '\r':
			return '_'
		}
		return r
	}, s)
}

// DuplicateWindow is how long the stream remembers alert IDs. Every poll of the
// same last train reuses one ID, and a night's last-train window fits inside it.
const DuplicateWindow = 2 * time.Hour

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewPublisher connects to NATS and ensures the alert stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	cfg := nats.StreamConfig{
		Name:       AlertStream,
		Subjects:   []string{"metro.>"},
		Retention:  nats.InterestPolicy,
		MaxAge:     6 * time.Hour,
		Storage:    nats.FileStorage,
		Duplicates: DuplicateWindow,
	}
	if _, err := js.AddStream(&cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(&cfg); err != nil {
			conn.Close()
			return nil, fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}

	return &Publisher{conn: conn, js: js}, nil
}

// PublishLastTrain publishes alert on the subject of its line.
func (p *Publisher) PublishLastTrain(ctx context.Context, alert *domain.LastTrainAlert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return err
	}
	if _, err := p.js.Publish(LastTrainSubject(alert.Line), data, nats.Context(ctx), nats.MsgId(alert.ID)); err != nil {
		return fmt.Errorf("publish last-train alert: %w", err)
	}
	metrics.LastTrainAlerts.WithLabelValues(alert.Line).Inc()
	return nil
}

// Conn exposes the underlying connection, e.g. for the WebSocket relay.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// JetStream exposes the JetStream context the alert stream was set up on.
func (p *Publisher) JetStream() nats.JetStreamContext {
	return p.js
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection.
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("derniermetro"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
