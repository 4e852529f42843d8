package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by repositories when a station or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidHeadway is returned when a stored headway is not a positive number of minutes.
	ErrInvalidHeadway = errors.New("invalid headway")
)

// Station is a metro station together with its line and scheduled headway.
type Station struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Line           string     `json:"line"`
	HeadwayMinutes int        `json:"headwayMinutes"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// LastDeparture is the recorded departure of the last train of the night at a station.
type LastDeparture struct {
	Station    string `json:"station"`
	DepartedAt string `json:"departedAt"` // HH:MM:SS
}

// LastTrainAlert is emitted when a computed arrival is the last train of the night.
type LastTrainAlert struct {
	ID         string    `json:"id"`
	Station    string    `json:"station"`
	Line       string    `json:"line"`
	ArrivalAt  string    `json:"arrivalAt"` // HH:MM
	Timezone   string    `json:"timezone"`
	ComputedAt time.Time `json:"computedAt"`
}
