package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/samirrijal/derniermetro/internal/pkg/metrics"
)

type fakePool struct{ acquired, idle, total int32 }

func (p fakePool) AcquiredConns() int32 { return p.acquired }
func (p fakePool) IdleConns() int32     { return p.idle }
func (p fakePool) TotalConns() int32    { return p.total }

func TestHandlerExposesRequestMetrics(t *testing.T) {
	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())
	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	if _, err := app.Test(httptest.NewRequest("GET", "/health", nil), -1); err != nil {
		t.Fatalf("request: %v", err)
	}

	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `derniermetro_http_requests_total{method="GET",path="/health",status="200"}`) {
		t.Errorf("request counter missing from exposition:\n%s", body)
	}
}

func TestUpdateDBPoolMetrics(t *testing.T) {
	metrics.UpdateDBPoolMetrics(fakePool{acquired: 2, idle: 3, total: 5})

	if got := testutil.ToFloat64(metrics.DBPoolConnsAcquired); got != 2 {
		t.Errorf("acquired: expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.DBPoolConnsIdle); got != 3 {
		t.Errorf("idle: expected 3, got %v", got)
	}
	if got := testutil.ToFloat64(metrics.DBPoolConnsOpen); got != 5 {
		t.Errorf("open: expected 5, got %v", got)
	}
}
