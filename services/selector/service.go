// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package selector provides the test selection HTTP service.
//
// The service exposes endpoints for:
//   - Selecting affected tests from a structured change set
//   - Health and readiness checks
//
// Selection runs in one of several modes: the deterministic call-graph
// traversal alone, or hybrid modes that merge it with an advisory
// model-backed source (mock, openai, gemini, ollama).
package selector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/AleutianAI/AleutianSelect/services/selector/advisor"
	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/selection"
	"github.com/AleutianAI/AleutianSelect/services/selector/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Selection modes accepted by ServiceConfig.Mode.
const (
	// ModeDeterministic runs the call-graph traversal alone.
	ModeDeterministic = "deterministic"

	// ModeMock merges with the static mock advisor. Useful for pipeline
	// testing without a model backend.
	ModeMock = "mock"

	// ModeHybrid merges with the backend named by HybridBackend.
	ModeHybrid = "hybrid"

	// ModeOpenAI, ModeGemini and ModeOllama merge with that backend directly.
	ModeOpenAI = "openai"
	ModeGemini = "gemini"
	ModeOllama = "ollama"
)

// ServiceConfig configures the selection service.
type ServiceConfig struct {
	// Mode is the selection mode. Default: "deterministic".
	Mode string

	// HybridBackend names the advisory backend used when Mode is "hybrid":
	// "mock", "openai", "gemini" or "ollama". Default: "ollama".
	HybridBackend string

	// MaxTraversalDepth bounds the reverse call-graph traversal.
	// Zero uses the graph package default.
	MaxTraversalDepth int

	// AdvisorTimeout bounds one advisory-source invocation.
	// Zero uses selection.DefaultAdvisorTimeout.
	AdvisorTimeout time.Duration
}

// DefaultServiceConfig returns sensible defaults.
//
// Environment variables override defaults where applicable:
//   - LLM_MODE: selection mode
//   - HYBRID_LLM_BACKEND: advisory backend for hybrid mode
func DefaultServiceConfig() ServiceConfig {
	mode := os.Getenv("LLM_MODE")
	if mode == "" {
		mode = ModeDeterministic
	}
	backend := os.Getenv("HYBRID_LLM_BACKEND")
	if backend == "" {
		backend = ModeOllama
	}
	return ServiceConfig{
		Mode:           mode,
		HybridBackend:  backend,
		AdvisorTimeout: selection.DefaultAdvisorTimeout,
	}
}

// Service is the test selection service.
//
// Thread Safety:
//
//	Service is stateless between requests and safe for concurrent use.
type Service struct {
	config  ServiceConfig
	advisor selection.Advisor
	metrics *telemetry.Metrics
}

// NewService creates a service for the given configuration.
//
// Description:
//
//	Validates the mode and constructs the advisory backend it requires.
//	Deterministic mode needs no backend. Backend construction reads
//	provider credentials from the environment; a missing credential is
//	reported as ErrAdvisorNotConfigured.
//
// Inputs:
//
//	ctx - Context for backend construction (the Gemini client dials out).
//	cfg - Service configuration. Use DefaultServiceConfig() for defaults.
//
// Outputs:
//
//	*Service - The configured service.
//	error - Non-nil for an unknown mode or an unconstructable backend.
func NewService(ctx context.Context, cfg ServiceConfig) (*Service, error) {
	svc := &Service{config: cfg}

	backend := cfg.Mode
	if cfg.Mode == ModeHybrid {
		backend = cfg.HybridBackend
	}

	switch backend {
	case ModeDeterministic:
		// No advisory source.
	case ModeMock:
		svc.advisor = advisor.NewMock()
	case ModeOpenAI:
		adv, err := advisor.NewOpenAI()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAdvisorNotConfigured, err)
		}
		svc.advisor = adv
	case ModeGemini:
		adv, err := advisor.NewGemini(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAdvisorNotConfigured, err)
		}
		svc.advisor = adv
	case ModeOllama:
		adv, err := advisor.NewOllama()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrAdvisorNotConfigured, err)
		}
		svc.advisor = adv
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, cfg.Mode)
	}

	if svc.advisor != nil {
		slog.Info("Advisory backend configured",
			"mode", cfg.Mode, "backend", svc.advisor.Name())
	}

	return svc, nil
}

// WithMetrics attaches service metrics. Returns the service for chaining.
//
// An attached advisory backend is wrapped so each invocation records the
// advisor counter and duration instruments.
func (s *Service) WithMetrics(m *telemetry.Metrics) *Service {
	s.metrics = m
	if s.advisor != nil {
		s.advisor = &instrumentedAdvisor{inner: s.advisor, metrics: m}
	}
	return s
}

// instrumentedAdvisor wraps an advisory backend and records invocation
// metrics around each Select call.
type instrumentedAdvisor struct {
	inner   selection.Advisor
	metrics *telemetry.Metrics
}

func (a *instrumentedAdvisor) Name() string {
	return a.inner.Name()
}

func (a *instrumentedAdvisor) Select(ctx context.Context, payload *datatypes.SelectRequest) (*selection.Result, error) {
	start := time.Now()
	res, err := a.inner.Select(ctx, payload)

	status := "ok"
	if err != nil {
		status = "error"
	}
	attrs := metric.WithAttributes(
		attribute.String("backend", a.inner.Name()),
		attribute.String("status", status),
	)
	a.metrics.AdvisorRequestsTotal.Add(ctx, 1, attrs)
	a.metrics.AdvisorRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	return res, err
}

// Mode returns the configured selection mode.
func (s *Service) Mode() string {
	return s.config.Mode
}

// AdvisorConfigured reports whether an advisory backend is attached.
func (s *Service) AdvisorConfigured() bool {
	return s.advisor != nil
}

// Select runs one selection over the request.
//
// Description:
//
//	Builds the selection input from the wire request and dispatches to
//	the deterministic selector or the hybrid merger depending on the
//	configured mode. Advisor failures degrade to deterministic-only
//	inside the hybrid path and never surface here.
//
// Inputs:
//
//	ctx - Request context; bounds the advisory call in hybrid modes.
//	req - The bound wire request.
//
// Outputs:
//
//	*selection.Result - The selection outcome.
//	error - Only for caller-contract violations in the request.
func (s *Service) Select(ctx context.Context, req *datatypes.SelectRequest) (*selection.Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "selector", "Service.Select",
		trace.WithAttributes(
			attribute.String("repo", req.Repo.Name),
			attribute.String("mode", s.config.Mode),
			attribute.Int("changed_files", len(req.ChangedFiles)),
		),
	)
	defer span.End()

	in := selection.Input{
		Repo:         req.Repo,
		ChangedFiles: req.ChangedFiles,
		CallGraph:    req.CallGraph,
		JdepsGraph:   req.JdepsGraph,
		AllowedTests: req.AllowedTests,
		MaxTests:     req.Settings.MaxTests,
		MaxDepth:     s.config.MaxTraversalDepth,
	}

	start := time.Now()

	var res *selection.Result
	var err error
	if s.advisor == nil {
		res, err = selection.SelectTests(in)
	} else {
		res, err = selection.SelectTestsHybrid(ctx, in, s.advisor, s.config.AdvisorTimeout)
	}

	if err != nil {
		telemetry.RecordError(span, err)
		s.recordSelection(ctx, time.Since(start), req, nil, "error")
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("selected_tests", len(res.SelectedTests)),
		attribute.Float64("confidence", res.Confidence),
	)
	s.recordSelection(ctx, time.Since(start), req, res, "ok")
	return res, nil
}

// recordSelection records run metrics when metrics are attached.
func (s *Service) recordSelection(ctx context.Context, elapsed time.Duration, req *datatypes.SelectRequest, res *selection.Result, status string) {
	if s.metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("mode", s.config.Mode),
		attribute.String("status", status),
	)
	s.metrics.SelectionsTotal.Add(ctx, 1, attrs)
	s.metrics.SelectionDuration.Record(ctx, elapsed.Seconds(), attrs)

	if res == nil {
		return
	}
	s.metrics.SelectedTestsPerRun.Record(ctx, int64(len(res.SelectedTests)))
	s.metrics.GraphEdgesTotal.Add(ctx, int64(len(req.CallGraph)),
		metric.WithAttributes(attribute.String("status", "received")))
	if meta, ok := res.Metadata["graph_analysis"].(*selection.GraphMetadata); ok {
		s.metrics.TouchedMethodsPerRun.Record(ctx, int64(meta.TouchedMethodsCount))
		s.metrics.GraphTraversalDepth.Record(ctx, int64(meta.MaxDepthUsed))
		if meta.SkippedEdges > 0 {
			s.metrics.GraphEdgesTotal.Add(ctx, int64(meta.SkippedEdges),
				metric.WithAttributes(attribute.String("status", "skipped")))
		}
	}
}

// countError increments the error counter when metrics are attached.
func (s *Service) countError(ctx context.Context, component, errType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.ErrorsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("component", component),
		attribute.String("type", errType),
	))
}
