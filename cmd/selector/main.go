// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command selector starts the test selection API server.
//
// Usage:
//
//	go run ./cmd/selector
//	go run ./cmd/selector -port 9090
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8080/v1/selector/health
//
//	# Select tests for a change set
//	curl -X POST http://localhost:8080/v1/selector/select-tests \
//	  -H "Content-Type: application/json" \
//	  -d @request.json
//
// Selection mode is controlled by LLM_MODE (deterministic, mock, hybrid,
// openai, gemini, ollama) and, for hybrid mode, HYBRID_LLM_BACKEND.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/AleutianAI/AleutianSelect/pkg/logging"
	"github.com/AleutianAI/AleutianSelect/services/selector"
	"github.com/AleutianAI/AleutianSelect/services/selector/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	// Set Gin mode
	if *debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Configure logging
	logLevel := logging.LevelInfo
	if *debug {
		logLevel = logging.LevelDebug
	}
	logger := logging.New(logging.Config{
		Level:   logLevel,
		Service: "selector",
	})
	defer logger.Close()
	logger.SetAsDefault()

	ctx := context.Background()

	// Initialize telemetry
	telemetryCfg := telemetry.DefaultConfig()
	shutdown, err := telemetry.Init(ctx, telemetryCfg)
	if err != nil {
		slog.Error("Failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer shutdown(context.Background())

	metrics, err := telemetry.NewMetrics(otel.Meter("selector"))
	if err != nil {
		slog.Error("Failed to create metrics", "error", err)
		os.Exit(1)
	}

	// Create service with default config
	cfg := selector.DefaultServiceConfig()
	svc, err := selector.NewService(ctx, cfg)
	if err != nil {
		slog.Error("Failed to create service", "error", err, "mode", cfg.Mode)
		os.Exit(1)
	}
	svc.WithMetrics(metrics)

	if _, err := metrics.RegisterAdvisorAvailability(otel.Meter("selector"), func() int64 {
		if svc.AdvisorConfigured() {
			return 1
		}
		return 0
	}); err != nil {
		slog.Warn("Failed to register advisor availability gauge", "error", err)
	}

	// Create handlers
	handlers := selector.NewHandlers(svc)

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("selector-service"))
	router.Use(telemetry.MetricsMiddleware(metrics))
	if *debug {
		router.Use(gin.Logger())
	}

	// Register routes
	v1 := router.Group("/v1")
	selector.RegisterRoutes(v1, handlers)

	// Expose Prometheus metrics when the exporter is enabled
	if handler := telemetry.MetricsHandler(); handler != nil {
		router.GET("/metrics", gin.WrapH(handler))
	}

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		slog.Info("Shutting down selector server")
		if err := shutdown(context.Background()); err != nil {
			slog.Warn("Telemetry shutdown failed", "error", err)
		}
		logger.Close()
		os.Exit(0)
	}()

	// Start server
	addr := fmt.Sprintf(":%d", *port)
	slog.Info("Starting selector server",
		slog.String("address", addr),
		slog.String("mode", cfg.Mode))
	if err := router.Run(addr); err != nil {
		slog.Error("Failed to start server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
