// Package arrivals computes upcoming train arrivals at a station from its headway and
// the daily service window. Everything here is pure: the caller supplies the current
// instant and nothing is read from the environment.
package arrivals

import (
	"time"
)

// Service status values reported in a Batch.
const (
	StatusOpen   = "open"
	StatusClosed = "closed"
)

// DailyStart is the first-train time of every service day.
var DailyStart = Clock{Hour: 5, Minute: 30}

// Window describes the daily service window.
type Window struct {
	// Start is the daily service start, anchored to now's date without rollover.
	Start Clock
	// End is the end of service; rolled to the next day when before now.
	End Clock
	// LastWindowStart opens the last-train window; rolled like End.
	LastWindowStart Clock
	// Location is the civil zone used for anchoring and formatting. Nil keeps now's zone.
	Location *time.Location
	// Timezone is the display label attached to every batch.
	Timezone string
}

// DefaultWindow returns the window used when nothing is configured:
// 05:30 to 01:15, last trains from 00:45, Europe/Paris label.
func DefaultWindow() Window {
	return Window{
		Start:           DailyStart,
		End:             Clock{Hour: 1, Minute: 15},
		LastWindowStart: Clock{Hour: 0, Minute: 45},
		Timezone:        "Europe/Paris",
	}
}

// Arrival is one computed train arrival.
type Arrival struct {
	NextArrival string `json:"nextArrival"`
	IsLast      bool   `json:"isLast"`
}

// Batch is the result of Compute. A closed batch only carries Status and Timezone.
type Batch struct {
	Status         string    `json:"serviceStatus"`
	Arrivals       []Arrival `json:"arrivals,omitempty"`
	HeadwayMinutes int       `json:"headwayMinutes,omitempty"`
	Timezone       string    `json:"timezone"`
}

// Closed reports whether the batch was computed outside the service window.
func (b Batch) Closed() bool {
	return b.Status == StatusClosed
}

// HasLast reports whether any arrival in the batch is flagged as the last train.
func (b Batch) HasLast() (Arrival, bool) {
	for _, a := range b.Arrivals {
		if a.IsLast {
			return a, true
		}
	}
	return Arrival{}, false
}

// Bounds holds the window boundaries resolved against a given instant.
type Bounds struct {
	Start           time.Time
	End             time.Time
	LastWindowStart time.Time
}

// Resolve anchors w to now. Start stays on now's date; End and LastWindowStart move to
// the following day when they would otherwise fall strictly before now.
func (w Window) Resolve(now time.Time) Bounds {
	if w.Location != nil {
		now = now.In(w.Location)
	}
	return Bounds{
		Start:           w.Start.On(now),
		End:             w.End.After(now),
		LastWindowStart: w.LastWindowStart.After(now),
	}
}

// Open reports whether now falls inside the service window.
func (b Bounds) Open(now time.Time) bool {
	return !now.Before(b.Start) && !now.After(b.End)
}

// IsLast reports whether t lies in [LastWindowStart, End], both ends included.
func (b Bounds) IsLast(t time.Time) bool {
	return !t.Before(b.LastWindowStart) && !t.After(b.End)
}

// Compute returns the next count arrivals spaced headwayMinutes apart, or a closed
// batch when now is outside the window. It does not clamp count or validate the
// headway; headwayMinutes must be positive for the arrivals to be increasing.
func Compute(now time.Time, count, headwayMinutes int, w Window) Batch {
	if w.Location != nil {
		now = now.In(w.Location)
	}
	bounds := w.Resolve(now)

	if !bounds.Open(now) {
		return Batch{Status: StatusClosed, Timezone: w.Timezone}
	}

	headway := time.Duration(headwayMinutes) * time.Minute
	out := make([]Arrival, 0, max(count, 0))
	for i := 1; i <= count; i++ {
		candidate := now.Add(headway * time.Duration(i))
		out = append(out, Arrival{
			NextArrival: formatHHMM(candidate),
			IsLast:      bounds.IsLast(candidate),
		})
	}

	return Batch{
		Status:         StatusOpen,
		Arrivals:       out,
		HeadwayMinutes: headwayMinutes,
		Timezone:       w.Timezone,
	}
}
