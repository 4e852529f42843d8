package http

import (
	"context"
	"time"

	"github.com/samirrijal/derniermetro/internal/core/usecases"
)

// Pinger is anything whose liveness can be probed.
type Pinger interface {
	Ping(ctx context.Context) error
}

// AlertSource delivers last-train alerts to the WebSocket relay.
type AlertSource interface {
	SubscribeLastTrain(line string, handler func(data []byte)) (func() error, error)
	Connected() bool
}

// Dependencies holds all services needed by HTTP handlers.
// DB is required; Cache and Alerts may be nil.
type Dependencies struct {
	Metro    *usecases.MetroService
	Stations *usecases.StationService
	DB       Pinger
	Cache    Pinger
	Alerts   AlertSource
	// Now is the clock arrivals are computed against. Defaults to time.Now.
	Now func() time.Time
}

func (d *Dependencies) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
