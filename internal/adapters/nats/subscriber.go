package natsadapter

import (
	"github.com/nats-io/nats.go"
)

// Subscriber delivers last-train alerts from the alert stream. Each subscription is
// an ephemeral consumer starting at new messages, so a client only sees alerts
// stored while it listens, and alerts the stream dropped as duplicates never
// reach it.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
}

// NewSubscriber wraps an existing connection and its JetStream context.
func NewSubscriber(conn *nats.Conn, js nats.JetStreamContext) *Subscriber {
	return &Subscriber{conn: conn, js: js}
}

// SubscribeLastTrain calls handler with the raw JSON of every alert for line
// (every line when empty). The returned function cancels the subscription.
func (s *Subscriber) SubscribeLastTrain(line string, handler func(data []byte)) (func() error, error) {
	sub, err := s.js.Subscribe(LastTrainSubject(line), func(msg *nats.Msg) {
		handler(msg.Data)
	},
		nats.BindStream(AlertStream),
		nats.DeliverNew(),
		nats.AckNone(),
	)
	if err != nil {
		return nil, err
	}
	return sub.Unsubscribe, nil
}

// Connected reports whether the connection is up.
func (s *Subscriber) Connected() bool {
	return s.conn != nil && s.conn.IsConnected()
}
