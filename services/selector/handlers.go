// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selector

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/selection"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ServiceVersion is the selector service version.
const ServiceVersion = "0.1.0"

// Handlers contains the HTTP handlers for the selector service.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for the given service.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleSelectTests handles POST /v1/selector/select-tests.
//
// Description:
//
//	Runs one test selection over the posted change set. The selection
//	mode is fixed by service configuration; advisory failures degrade
//	the result rather than failing the request.
//
// Request Body:
//
//	datatypes.SelectRequest
//
// Response:
//
//	200 OK: datatypes.SelectResponse
//	400 Bad Request: Validation error
//	500 Internal Server Error: Processing error
func (h *Handlers) HandleSelectTests(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := slog.With("request_id", requestID, "handler", "HandleSelectTests")

	var req datatypes.SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		h.svc.countError(c.Request.Context(), "http", "invalid_request")
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "Invalid request body",
			Code:  "INVALID_REQUEST",
		})
		return
	}

	logger.Info("Selecting tests",
		"repo", req.Repo.Name,
		"changed_files", len(req.ChangedFiles),
		"call_graph_edges", len(req.CallGraph),
		"allowed_tests", len(req.AllowedTests))

	res, err := h.svc.Select(c.Request.Context(), &req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		errCode := "SELECTION_FAILED"

		if errors.Is(err, selection.ErrNegativeMaxTests) {
			statusCode = http.StatusBadRequest
			errCode = "NEGATIVE_MAX_TESTS"
		} else if errors.Is(err, selection.ErrMalformedAllowedTest) {
			statusCode = http.StatusBadRequest
			errCode = "MALFORMED_ALLOWED_TEST"
		}

		logger.Error("Selection failed", "error", err)
		h.svc.countError(c.Request.Context(), "selection", strings.ToLower(errCode))
		c.JSON(statusCode, ErrorResponse{
			Error: err.Error(),
			Code:  errCode,
		})
		return
	}

	logger.Info("Selection complete",
		"selected_tests", len(res.SelectedTests),
		"confidence", res.Confidence)

	c.JSON(http.StatusOK, res.Response())
}

// HandleHealth handles GET /v1/selector/health.
//
// Always returns 200 if the process is running.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: ServiceVersion,
	})
}

// HandleReady handles GET /v1/selector/ready.
//
// The service is stateless and ready as soon as it is serving; the
// response reports the configured mode and advisory backend status.
func (h *Handlers) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, ReadyResponse{
		Ready:     true,
		Mode:      h.svc.Mode(),
		AdvisorOK: h.svc.AdvisorConfigured(),
	})
}

// getOrCreateRequestID returns the X-Request-ID header, creating one if absent.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
