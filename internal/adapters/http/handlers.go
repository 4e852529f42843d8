package http

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/derniermetro/internal/core/arrivals"
	"github.com/samirrijal/derniermetro/internal/core/domain"
)

// Bounds of the n query parameter on /next-metro.
const (
	minArrivals = 1
	maxArrivals = 5
)

// nextMetroResponse is the open-service body of /next-metro. A single arrival is
// flattened into NextArrival/IsLast; several are listed under Arrivals.
type nextMetroResponse struct {
	Station        string             `json:"station"`
	Line           string             `json:"line"`
	HeadwayMinutes int                `json:"headwayMinutes"`
	Timezone       string             `json:"timezone"`
	NextArrival    string             `json:"nextArrival,omitempty"`
	IsLast         *bool              `json:"isLast,omitempty"`
	Arrivals       []arrivals.Arrival `json:"arrivals,omitempty"`
}

type closedResponse struct {
	ServiceStatus string `json:"serviceStatus"`
	Timezone      string `json:"timezone"`
}

// parseCount reads n the lenient way: the leading integer of the value, with
// anything unparsable or zero meaning 1, then clamped to [1,5]. Integers too large
// for an int clamp like any other out-of-range value.
func parseCount(raw string) int {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	switch {
	case end == digits:
		n = minArrivals
	case errors.Is(err, strconv.ErrRange):
		if s[0] == '-' {
			return minArrivals
		}
		return maxArrivals
	case err != nil || n == 0:
		n = minArrivals
	}
	return min(max(n, minArrivals), maxArrivals)
}

// NextMetroHandler returns the next arrivals at a station.
func NextMetroHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		station := c.Query("station")
		n := parseCount(c.Query("n"))
		if station == "" {
			return errBadRequest(c, "missing station")
		}

		res, err := deps.Metro.NextMetro(ctx, station, n, deps.now())
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(UnknownStationError{
				Error:       "unknown station",
				Suggestions: deps.Metro.Suggest(ctx, station),
			})
		}
		if err != nil {
			return errInternal(c, "internal server error", err)
		}

		if res.Batch.Closed() {
			return c.JSON(closedResponse{ServiceStatus: arrivals.StatusClosed, Timezone: res.Batch.Timezone})
		}

		body := nextMetroResponse{
			Station:        res.Station.Name,
			Line:           res.Station.Line,
			HeadwayMinutes: res.Batch.HeadwayMinutes,
			Timezone:       res.Batch.Timezone,
		}
		if n == 1 && len(res.Batch.Arrivals) == 1 {
			a := res.Batch.Arrivals[0]
			body.NextArrival = a.NextArrival
			body.IsLast = &a.IsLast
		} else {
			body.Arrivals = res.Batch.Arrivals
		}
		return c.JSON(body)
	}
}

// LastMetroHandler returns the recorded last departure at a station.
func LastMetroHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		station := strings.TrimSpace(c.Query("station"))
		if station == "" {
			return errBadRequest(c, "missing station")
		}

		dep, err := deps.Metro.LastMetro(c.UserContext(), station)
		if errors.Is(err, domain.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(StationNotFoundError{
				Error:   "station not found",
				Code:    "STATION_NOT_FOUND",
				Station: station,
			})
		}
		if err != nil {
			return errInternal(c, "database error", err)
		}
		return c.JSON(dep)
	}
}

// ListStationsHandler returns a page of stations with their headways.
func ListStationsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		offset := max(c.QueryInt("offset", 0), 0)
		limit := c.QueryInt("limit", 50)
		if limit <= 0 || limit > 200 {
			limit = 50
		}

		stations, total, err := deps.Stations.List(c.UserContext(), offset, limit)
		if err != nil {
			return errInternal(c, "internal server error", err)
		}

		pg := Pagination{Offset: offset, Limit: limit, Total: total}
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse[domain.Station]{Data: stations, Pagination: pg})
	}
}
