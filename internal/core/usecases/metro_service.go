package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/derniermetro/internal/core/arrivals"
	"github.com/samirrijal/derniermetro/internal/core/domain"
	"github.com/samirrijal/derniermetro/internal/core/ports"
	"github.com/samirrijal/derniermetro/internal/pkg/metrics"
)

var tracer = otel.Tracer("github.com/samirrijal/derniermetro/internal/core/usecases")

// alertNamespace scopes the name-based UUIDs of last-train alerts.
var alertNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/samirrijal/derniermetro/last-train"))

// LastTrainAlertID identifies one last-train arrival of one service night. Repeated
// requests for the same arrival get the same ID, so the broker can drop duplicates.
func LastTrainAlertID(station, line, serviceDate, arrivalAt string) string {
	key := station + "\x00" + line + "\x00" + serviceDate + "\x00" + arrivalAt
	return uuid.NewSHA1(alertNamespace, []byte(key)).String()
}

// NextMetro is a computed arrival batch for a resolved station.
type NextMetro struct {
	Station domain.Station
	Batch   arrivals.Batch
}

// MetroService answers next-train and last-train questions for a station.
type MetroService struct {
	stations   *StationService
	departures ports.LastDepartureRepository
	publisher  ports.EventPublisher
	window     arrivals.Window
}

// NewMetroService creates a new MetroService. publisher may be nil.
func NewMetroService(
	stations *StationService,
	departures ports.LastDepartureRepository,
	publisher ports.EventPublisher,
	window arrivals.Window,
) *MetroService {
	return &MetroService{
		stations:   stations,
		departures: departures,
		publisher:  publisher,
		window:     window,
	}
}

// Window returns the service window the calculator runs with.
func (s *MetroService) Window() arrivals.Window {
	return s.window
}

// NextMetro resolves the station and computes its next n arrivals as of now.
// n is expected to be clamped by the caller.
func (s *MetroService) NextMetro(ctx context.Context, name string, n int, now time.Time) (*NextMetro, error) {
	ctx, span := tracer.Start(ctx, "MetroService.NextMetro")
	defer span.End()
	span.SetAttributes(attribute.String("station", name), attribute.Int("n", n))

	st, err := s.stations.Get(ctx, name)
	if err != nil {
		if IsNotFound(err) {
			metrics.NextMetroResults.WithLabelValues("unknown").Inc()
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "station lookup failed")
		return nil, err
	}
	if st.HeadwayMinutes <= 0 {
		err := fmt.Errorf("station %q has headway %d: %w", st.Name, st.HeadwayMinutes, domain.ErrInvalidHeadway)
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid headway")
		return nil, err
	}

	batch := arrivals.Compute(now, n, st.HeadwayMinutes, s.window)
	span.SetAttributes(attribute.String("service_status", batch.Status))
	metrics.NextMetroResults.WithLabelValues(batch.Status).Inc()

	if last, ok := batch.HasLast(); ok {
		s.publishLastTrain(ctx, st, last, batch.Timezone, now)
	}

	return &NextMetro{Station: *st, Batch: batch}, nil
}

// LastMetro returns the recorded last departure at the named station.
func (s *MetroService) LastMetro(ctx context.Context, name string) (*domain.LastDeparture, error) {
	ctx, span := tracer.Start(ctx, "MetroService.LastMetro")
	defer span.End()
	span.SetAttributes(attribute.String("station", name))

	if name == "" {
		return nil, fmt.Errorf("station name must not be empty")
	}
	dep, err := s.departures.GetByStation(ctx, name)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return dep, nil
}

// Suggest returns candidate station names for an unknown query.
func (s *MetroService) Suggest(ctx context.Context, query string) []string {
	return s.stations.Suggest(ctx, query)
}

func (s *MetroService) publishLastTrain(ctx context.Context, st *domain.Station, a arrivals.Arrival, tz string, now time.Time) {
	if s.publisher == nil {
		return
	}
	// Arrivals are only computed between 05:30 and midnight, so the local date of now
	// is the service date.
	local := now
	if s.window.Location != nil {
		local = now.In(s.window.Location)
	}
	alert := &domain.LastTrainAlert{
		ID:         LastTrainAlertID(st.Name, st.Line, local.Format(time.DateOnly), a.NextArrival),
		Station:    st.Name,
		Line:       st.Line,
		ArrivalAt:  a.NextArrival,
		Timezone:   tz,
		ComputedAt: now.UTC(),
	}
	if err := s.publisher.PublishLastTrain(ctx, alert); err != nil {
		metrics.LastTrainAlertErrors.Inc()
		slog.WarnContext(ctx, "publish last-train alert failed",
			"station", st.Name, "line", st.Line, "error", err)
	}
}
