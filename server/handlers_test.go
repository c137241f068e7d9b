package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/spektr-org/supplylens/config"
	"github.com/spektr-org/supplylens/engine"
)

// --- Test Fixtures ---

func testServer(cacheEnabled bool) *Server {
	ds := engine.NewDataset([]engine.Record{
		{ProductType: "haircare", Location: "Mumbai", TransportMode: "Road", SupplierName: "Supplier 1",
			Route: "Route A", Revenue: 100, ManufacturingCost: 40, OrderQuantity: 10},
		{ProductType: "skincare", Location: "Delhi", TransportMode: "Air", SupplierName: "Supplier 2",
			Route: "Route B", Revenue: 200, ManufacturingCost: 0, OrderQuantity: 20},
		{ProductType: "haircare", Location: "Delhi", TransportMode: "Road", SupplierName: "Supplier 1",
			Route: "Route A", Revenue: 50, ManufacturingCost: 10, OrderQuantity: 5},
	})
	cfg := &config.Config{ListenAddr: "127.0.0.1:0", CacheEnabled: cacheEnabled}
	filters := []string{engine.ColProductType, engine.ColLocation, engine.ColTransportMode}
	return New(ds, cfg, filters)
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %s: %v", rec.Body.String(), err)
	}
}

// ============================================================================
// HANDLER TESTS
// ============================================================================

func TestHealth(t *testing.T) {
	rec := get(t, testServer(false), "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	if rec.Header().Get("X-Request-Id") == "" {
		t.Error("missing request id header")
	}
}

func TestGetFilters(t *testing.T) {
	rec := get(t, testServer(false), "/api/filters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var opts []engine.FilterOption
	decode(t, rec, &opts)
	if len(opts) != 3 || opts[1].Column != engine.ColLocation {
		t.Fatalf("options: %+v", opts)
	}
	if v := opts[1].Values; len(v) != 3 || v[0] != engine.All || v[1] != "Mumbai" {
		t.Errorf("location values: %v", v)
	}
}

func TestGetSummaryFiltered(t *testing.T) {
	rec := get(t, testServer(false), "/api/summary?location=Delhi&product_type=All")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var s struct {
		Records int    `json:"records"`
		Revenue string `json:"total_revenue"`
		Orders  int64  `json:"total_orders"`
	}
	decode(t, rec, &s)
	if s.Records != 2 || s.Revenue != "250" || s.Orders != 25 {
		t.Errorf("summary: %+v", s)
	}
}

func TestUnknownFilterIsBadRequest(t *testing.T) {
	s := testServer(true)
	for _, target := range []string{
		"/api/summary?warehouse=North",
		"/api/dashboard?warehouse=All",
		"/api/aggregate?group_by=route&op=count&revenue=100",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", target, rec.Code)
		}
	}
}

func TestHTTPErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("group: %w", engine.ErrUnknownColumn), http.StatusBadRequest},
		{engine.ErrUnsupportedOp, http.StatusBadRequest},
		{context.Canceled, http.StatusServiceUnavailable},
		{fmt.Errorf("build: %w", context.DeadlineExceeded), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		var he *echo.HTTPError
		if !errors.As(httpError(tt.err), &he) {
			t.Fatalf("%v: not an *echo.HTTPError", tt.err)
		}
		if he.Code != tt.want {
			t.Errorf("%v: status %d, want %d", tt.err, he.Code, tt.want)
		}
	}
}

func TestCancelledDashboardRequestIsUnavailable(t *testing.T) {
	s := testServer(true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard?location=Delhi", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	// The build may win the race with the cancelled context.
	if rec.Code != http.StatusOK && rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 200 or 503", rec.Code)
	}
}

func TestGetAggregate(t *testing.T) {
	s := testServer(false)

	rec := get(t, s, "/api/aggregate?group_by=supplier_name&op=ratio&measure=revenue&denominator=manufacturing_cost")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body)
	}
	var res struct {
		Rows []struct {
			Key       []string `json:"key"`
			Value     *float64 `json:"value"`
			Undefined bool     `json:"undefined"`
		} `json:"rows"`
	}
	decode(t, rec, &res)
	if len(res.Rows) != 2 {
		t.Fatalf("rows: %+v", res.Rows)
	}
	if res.Rows[0].Key[0] != "Supplier 1" || res.Rows[0].Value == nil || *res.Rows[0].Value != 3 {
		t.Errorf("first row: %+v", res.Rows[0])
	}
	if !res.Rows[1].Undefined || res.Rows[1].Value != nil {
		t.Errorf("undefined row should have null value: %+v", res.Rows[1])
	}

	for _, target := range []string{
		"/api/aggregate?group_by=route&op=median&measure=revenue",
		"/api/aggregate?group_by=route&measure=profit",
		"/api/aggregate?group_by=route&op=count&limit=-1",
		"/api/aggregate?group_by=route&op=count&limit=ten",
	} {
		if rec := get(t, s, target); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", target, rec.Code)
		}
	}
}

func TestGetDashboardUsesCache(t *testing.T) {
	s := testServer(true)

	for _, target := range []string{
		"/api/dashboard?product_type=haircare",
		"/api/dashboard?product_type=haircare&location=All",
	} {
		rec := get(t, s, target)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: status %d: %s", target, rec.Code, rec.Body)
		}
		var d struct {
			Summary struct {
				Records int `json:"records"`
			} `json:"summary"`
			Widgets []json.RawMessage `json:"widgets"`
		}
		decode(t, rec, &d)
		if d.Summary.Records != 2 || len(d.Widgets) != len(engine.DefaultWidgets()) {
			t.Errorf("%s: records=%d widgets=%d", target, d.Summary.Records, len(d.Widgets))
		}
	}
	if s.cache.Len() != 1 {
		t.Errorf("equivalent selections should share one entry, got %d", s.cache.Len())
	}
}

func TestExports(t *testing.T) {
	s := testServer(false)

	rec := get(t, s, "/api/export.xlsx?location=Delhi")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != xlsxContentType {
		t.Errorf("xlsx: status %d type %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	// xlsx is a zip archive.
	if body := rec.Body.Bytes(); len(body) < 2 || body[0] != 'P' || body[1] != 'K' {
		t.Error("xlsx body is not a zip archive")
	}

	rec = get(t, s, "/api/export.arrow")
	if rec.Code != http.StatusOK || rec.Body.Len() == 0 {
		t.Errorf("arrow: status %d, %d bytes", rec.Code, rec.Body.Len())
	}
}

func TestStartStopsOnCancel(t *testing.T) {
	s := testServer(false)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Start(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
