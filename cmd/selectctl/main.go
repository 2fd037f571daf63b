// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command selectctl is the companion CLI for the selector service.
//
// It assembles selection requests from build artifacts, posts them to a
// running service, and filters results against an allowed-tests list:
//
//	selectctl build-input -diff changes.diff -call-graph cg.txt -out request.json
//	selectctl call http://localhost:8080/v1/selector/select-tests -input request.json
//	selectctl filter -input request.json -results selector_output.json
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "selectctl",
	Short: "A CLI for the Aleutian test selection service",
	Long: `Selectctl assembles selection requests from CI build artifacts
			(diffs, call graphs, jdeps output), calls a running selector
			service, and post-processes the results.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
