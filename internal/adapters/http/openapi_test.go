package http_test

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/samirrijal/derniermetro/api"
)

func loadSpec(t *testing.T, data []byte) *openapi3.T {
	t.Helper()
	loader := &openapi3.Loader{IsExternalRefsAllowed: false}
	spec, err := loader.LoadFromData(data)
	if err != nil {
		t.Fatalf("failed to parse OpenAPI spec: %v", err)
	}
	return spec
}

// TestOpenAPISpec validates the OpenAPI document and checks it covers every route.
func TestOpenAPISpec(t *testing.T) {
	spec := loadSpec(t, api.OpenAPI)

	if err := spec.Validate(context.Background()); err != nil {
		t.Fatalf("OpenAPI spec validation failed: %v", err)
	}

	expectedPaths := []string{
		"/next-metro",
		"/last-metro",
		"/stations",
		"/graphql",
		"/health",
		"/db-health",
		"/ready",
	}
	for _, path := range expectedPaths {
		if item := spec.Paths.Find(path); item == nil {
			t.Errorf("expected path %s not found in spec", path)
		}
	}

	expectedSchemas := []string{
		"Arrival",
		"NextMetro",
		"ServiceClosed",
		"LastDeparture",
		"Station",
		"LastTrainAlert",
		"APIError",
		"UnknownStation",
		"StationNotFound",
		"Pagination",
	}
	for _, schema := range expectedSchemas {
		if spec.Components.Schemas[schema] == nil {
			t.Errorf("expected schema %s not found", schema)
		}
	}

	t.Logf("OpenAPI spec valid: %d paths, %d schemas", len(spec.Paths.Map()), len(spec.Components.Schemas))
}

// TestOpenAPIInfo verifies spec metadata.
func TestOpenAPIInfo(t *testing.T) {
	spec := loadSpec(t, api.OpenAPI)

	if spec.Info.Title != "Dernier Métro API" {
		t.Errorf("expected title 'Dernier Métro API', got %q", spec.Info.Title)
	}
	if spec.Info.Version != "1.0.0" {
		t.Errorf("expected version 1.0.0, got %q", spec.Info.Version)
	}
	if len(spec.Servers) == 0 {
		t.Error("expected at least one server")
	}
}

// TestDocsServeSpec checks that the served document is the embedded one.
func TestDocsServeSpec(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != string(api.OpenAPI) {
		t.Error("served document differs from embedded openapi.yaml")
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("expected 200 for Swagger UI, got %d", resp.StatusCode)
	}
}
