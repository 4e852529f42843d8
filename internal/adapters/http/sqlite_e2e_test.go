package http_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/derniermetro/internal/adapters/http"
	"github.com/samirrijal/derniermetro/internal/adapters/sqlite"
	"github.com/samirrijal/derniermetro/internal/core/arrivals"
	"github.com/samirrijal/derniermetro/internal/core/usecases"
)

// setupSQLiteApp wires the router to a seeded in-memory SQLite store with the
// clock fixed at the given Paris wall time.
func setupSQLiteApp(t *testing.T, h, m int) *fiber.App {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	paris, err := time.LoadLocation("Europe/Paris")
	if err != nil {
		t.Fatal(err)
	}
	window := arrivals.DefaultWindow()
	window.Location = paris

	stations := usecases.NewStationService(sqlite.NewStationRepo(db), nil)
	return setupApp(&handler.Dependencies{
		Stations: stations,
		Metro:    usecases.NewMetroService(stations, sqlite.NewLastDepartureRepo(db), nil, window),
		DB:       db,
		Now: func() time.Time {
			// 13:00 UTC is 14:00 in Paris in winter.
			return time.Date(2025, time.January, 15, h-1, m, 0, 0, time.UTC)
		},
	})
}

func TestSQLite_NextMetro(t *testing.T) {
	app := setupSQLiteApp(t, 14, 0)

	resp, err := app.Test(httptest.NewRequest("GET", "/next-metro?station=R%C3%A9publique&n=2", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body := string(readBody(t, resp.Body))
	want := `{"station":"République","line":"M3","headwayMinutes":4,"timezone":"Europe/Paris",` +
		`"arrivals":[{"nextArrival":"14:04","isLast":false},{"nextArrival":"14:08","isLast":false}]}`
	if resp.StatusCode != 200 || body != want {
		t.Errorf("unexpected response %d\n got: %s\nwant: %s", resp.StatusCode, body, want)
	}
}

func TestSQLite_UnknownStationSuggestions(t *testing.T) {
	app := setupSQLiteApp(t, 14, 0)

	resp, err := app.Test(httptest.NewRequest("GET", "/next-metro?station=pont", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body := string(readBody(t, resp.Body))
	if resp.StatusCode != 404 || body != `{"error":"unknown station","suggestions":["Pont Neuf"]}` {
		t.Errorf("unexpected response %d %s", resp.StatusCode, body)
	}
}

func TestSQLite_LastMetro(t *testing.T) {
	app := setupSQLiteApp(t, 14, 0)

	resp, err := app.Test(httptest.NewRequest("GET", "/last-metro?station=Gare%20de%20Lyon", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body := string(readBody(t, resp.Body))
	if resp.StatusCode != 200 || body != `{"station":"Gare de Lyon","departedAt":"01:10:00"}` {
		t.Errorf("unexpected response %d %s", resp.StatusCode, body)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/last-metro?station=Louvre", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 404 {
		t.Errorf("expected 404 for a station without a recorded departure, got %d", resp.StatusCode)
	}
}

func TestSQLite_ClosedBeforeFirstTrain(t *testing.T) {
	app := setupSQLiteApp(t, 5, 0)

	resp, err := app.Test(httptest.NewRequest("GET", "/next-metro?station=Bastille", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	body := string(readBody(t, resp.Body))
	if body != `{"serviceStatus":"closed","timezone":"Europe/Paris"}` {
		t.Errorf("unexpected body %s", body)
	}
}
