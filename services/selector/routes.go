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
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all selector routes with the router.
//
// Description:
//
//	Registers all /v1/selector/* endpoints with the given Gin router
//	group. The router group should already have any required middleware
//	applied.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST /v1/selector/select-tests - Select affected tests for a change set
//	GET  /v1/selector/health - Health check
//	GET  /v1/selector/ready - Readiness check
//
// Example:
//
//	svc, err := selector.NewService(ctx, selector.DefaultServiceConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	handlers := selector.NewHandlers(svc)
//
//	v1 := router.Group("/v1")
//	selector.RegisterRoutes(v1, handlers)
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	sel := rg.Group("/selector")
	{
		sel.POST("/select-tests", handlers.HandleSelectTests)

		sel.GET("/health", handlers.HandleHealth)
		sel.GET("/ready", handlers.HandleReady)
	}
}
