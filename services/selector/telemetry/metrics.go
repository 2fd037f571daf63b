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
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// Metrics contains pre-defined metrics for the Aleutian Select service.
//
// Description:
//
//	Provides standard counters, histograms, and gauges for HTTP requests,
//	test selection runs, graph traversal, and advisor interactions.
//	All metrics use the "selector_" prefix for consistent naming.
//
// Thread Safety: Safe for concurrent use after creation.
type Metrics struct {
	// --- HTTP Metrics ---

	// HTTPRequestsTotal counts total HTTP requests by method, path, and status.
	HTTPRequestsTotal metric.Int64Counter

	// HTTPRequestDuration records HTTP request duration in seconds.
	HTTPRequestDuration metric.Float64Histogram

	// HTTPActiveRequests tracks currently active HTTP requests.
	HTTPActiveRequests metric.Int64UpDownCounter

	// --- Selection Metrics ---

	// SelectionsTotal counts total selection runs by mode and status.
	SelectionsTotal metric.Int64Counter

	// SelectionDuration records selection run duration in seconds.
	SelectionDuration metric.Float64Histogram

	// SelectedTestsPerRun records the number of tests selected per run.
	SelectedTestsPerRun metric.Int64Histogram

	// TouchedMethodsPerRun records the number of touched methods per run.
	TouchedMethodsPerRun metric.Int64Histogram

	// --- Graph Metrics ---

	// GraphEdgesTotal counts call graph edges processed by status.
	GraphEdgesTotal metric.Int64Counter

	// GraphTraversalDepth records the maximum traversal depth reached per run.
	GraphTraversalDepth metric.Int64Histogram

	// --- Advisor Metrics ---

	// AdvisorRequestsTotal counts advisor invocations by backend and status.
	AdvisorRequestsTotal metric.Int64Counter

	// AdvisorRequestDuration records advisor invocation duration in seconds.
	AdvisorRequestDuration metric.Float64Histogram

	// AdvisorAvailability tracks whether a hybrid advisor is configured (0 or 1).
	AdvisorAvailability metric.Int64ObservableGauge

	// --- Error Metrics ---

	// ErrorsTotal counts total errors by type and component.
	ErrorsTotal metric.Int64Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
//
// Description:
//
//	Registers all pre-defined metrics with the provided meter.
//	Returns an error if any metric registration fails.
//
// Inputs:
//
//	meter - The OTel meter to use for metric registration.
//
// Outputs:
//
//	*Metrics - The metrics instance with all counters and histograms initialized.
//	error - Non-nil if metric registration fails.
//
// Example:
//
//	meter := otel.Meter("selector")
//	metrics, err := telemetry.NewMetrics(meter)
//	if err != nil {
//	    return fmt.Errorf("create metrics: %w", err)
//	}
//	metrics.SelectionsTotal.Add(ctx, 1, ...)
//
// Thread Safety: Safe for concurrent use after creation.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	// --- HTTP Metrics ---
	m.HTTPRequestsTotal, err = meter.Int64Counter(
		"selector_http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total: %w", err)
	}

	m.HTTPRequestDuration, err = meter.Float64Histogram(
		"selector_http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration: %w", err)
	}

	m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"selector_http_active_requests",
		metric.WithDescription("Currently active HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_active_requests: %w", err)
	}

	// --- Selection Metrics ---
	m.SelectionsTotal, err = meter.Int64Counter(
		"selector_selections_total",
		metric.WithDescription("Total test selection runs"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create selections_total: %w", err)
	}

	m.SelectionDuration, err = meter.Float64Histogram(
		"selector_selection_duration_seconds",
		metric.WithDescription("Selection run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 5, 30, 60),
	)
	if err != nil {
		return nil, fmt.Errorf("create selection_duration: %w", err)
	}

	m.SelectedTestsPerRun, err = meter.Int64Histogram(
		"selector_selected_tests_per_run",
		metric.WithDescription("Number of tests selected per run"),
		metric.WithUnit("{test}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100, 250, 500),
	)
	if err != nil {
		return nil, fmt.Errorf("create selected_tests_per_run: %w", err)
	}

	m.TouchedMethodsPerRun, err = meter.Int64Histogram(
		"selector_touched_methods_per_run",
		metric.WithDescription("Number of touched methods per run"),
		metric.WithUnit("{method}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 25, 50, 100),
	)
	if err != nil {
		return nil, fmt.Errorf("create touched_methods_per_run: %w", err)
	}

	// --- Graph Metrics ---
	m.GraphEdgesTotal, err = meter.Int64Counter(
		"selector_graph_edges_total",
		metric.WithDescription("Call graph edges processed"),
		metric.WithUnit("{edge}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create graph_edges_total: %w", err)
	}

	m.GraphTraversalDepth, err = meter.Int64Histogram(
		"selector_graph_traversal_depth",
		metric.WithDescription("Maximum traversal depth reached per run"),
		metric.WithUnit("{hop}"),
		metric.WithExplicitBucketBoundaries(0, 1, 2, 3, 5, 8, 10, 15),
	)
	if err != nil {
		return nil, fmt.Errorf("create graph_traversal_depth: %w", err)
	}

	// --- Advisor Metrics ---
	m.AdvisorRequestsTotal, err = meter.Int64Counter(
		"selector_advisor_requests_total",
		metric.WithDescription("Total advisor invocations"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create advisor_requests_total: %w", err)
	}

	m.AdvisorRequestDuration, err = meter.Float64Histogram(
		"selector_advisor_request_duration_seconds",
		metric.WithDescription("Advisor invocation duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120),
	)
	if err != nil {
		return nil, fmt.Errorf("create advisor_request_duration: %w", err)
	}

	// Note: AdvisorAvailability requires a callback registration, handled separately

	// --- Error Metrics ---
	m.ErrorsTotal, err = meter.Int64Counter(
		"selector_errors_total",
		metric.WithDescription("Total errors by type and component"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create errors_total: %w", err)
	}

	return m, nil
}

// RegisterAdvisorAvailability registers a callback for the advisor availability gauge.
//
// Description:
//
//	Sets up an observable gauge that reports whether a hybrid advisor backend
//	is configured and reachable. The callback is invoked each time metrics
//	are scraped.
//
// Inputs:
//
//	meter - The OTel meter to use for registration.
//	availFunc - A function that returns 1 when an advisor is configured, 0 otherwise.
//
// Outputs:
//
//	metric.Registration - Registration handle for cleanup.
//	error - Non-nil if registration fails.
func (m *Metrics) RegisterAdvisorAvailability(meter metric.Meter, availFunc func() int64) (metric.Registration, error) {
	var err error
	m.AdvisorAvailability, err = meter.Int64ObservableGauge(
		"selector_advisor_availability",
		metric.WithDescription("Whether a hybrid advisor is configured (0 or 1)"),
		metric.WithUnit("{state}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create advisor_availability: %w", err)
	}

	return meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(m.AdvisorAvailability, availFunc())
		return nil
	}, m.AdvisorAvailability)
}
