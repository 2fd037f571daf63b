// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newMiddlewareTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	metrics, err := NewMetrics(provider.Meter("test_middleware"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return metrics, reader
}

func findMetric(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestMetricsMiddleware_RecordsRequests(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics, reader := newMiddlewareTestMetrics(t)

	router := gin.New()
	router.Use(MetricsMiddleware(metrics))
	router.GET("/v1/selector/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/selector/health", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("expected status %d, got %d", http.StatusOK, w.Code)
		}
	}

	// An unmatched route still gets counted, labeled by the raw path.
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, w.Code)
	}

	m, ok := findMetric(t, reader, "selector_http_requests_total")
	if !ok {
		t.Fatal("selector_http_requests_total not collected")
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("requests metric has data type %T, want Sum[int64]", m.Data)
	}
	var total int64
	matchedRoute := false
	for _, dp := range sum.DataPoints {
		total += dp.Value
		if v, found := dp.Attributes.Value("path"); found && v.AsString() == "/v1/selector/health" {
			matchedRoute = true
			if dp.Value != 2 {
				t.Errorf("matched route count = %d, want 2", dp.Value)
			}
		}
	}
	if total != 3 {
		t.Errorf("requests total = %d, want 3", total)
	}
	if !matchedRoute {
		t.Error("expected a datapoint labeled with the matched route pattern")
	}

	m, ok = findMetric(t, reader, "selector_http_request_duration_seconds")
	if !ok {
		t.Fatal("selector_http_request_duration_seconds not collected")
	}
	hist, ok := m.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("duration metric has data type %T, want Histogram[float64]", m.Data)
	}
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	if count != 3 {
		t.Errorf("duration count = %d, want 3", count)
	}

	m, ok = findMetric(t, reader, "selector_http_active_requests")
	if !ok {
		t.Fatal("selector_http_active_requests not collected")
	}
	active, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("active metric has data type %T, want Sum[int64]", m.Data)
	}
	var inFlight int64
	for _, dp := range active.DataPoints {
		inFlight += dp.Value
	}
	if inFlight != 0 {
		t.Errorf("active requests after completion = %d, want 0", inFlight)
	}
}
