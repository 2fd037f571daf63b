// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"encoding/json"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	filterInputPath   string
	filterResultsPath string

	filterCmd = &cobra.Command{
		Use:   "filter",
		Short: "Filter a selection result against the request's allowed tests",
		Long: `Drops selected tests that are not in the request payload's
				allowed-tests list, along with their explanations, and rewrites
				the result file in place. An empty allowed list disables the
				filter.`,
		Run: runFilter,
	}
)

func init() {
	filterCmd.Flags().StringVar(&filterInputPath, "input", "request.json", "Request payload file (source of allowed_tests)")
	filterCmd.Flags().StringVar(&filterResultsPath, "results", "selector_output.json", "Selection result file to filter in place")

	rootCmd.AddCommand(filterCmd)
}

func runFilter(cmd *cobra.Command, args []string) {
	allowed, err := allowedSetFromRequest(filterInputPath)
	if err != nil {
		log.Fatalf("Failed to read request payload: %v", err)
	}

	data, err := os.ReadFile(filterResultsPath)
	if err != nil {
		log.Fatalf("Failed to read results: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		log.Fatalf("Failed to parse results: %v", err)
	}

	filterResult(result, allowed)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode results: %v", err)
	}
	if err := os.WriteFile(filterResultsPath, out, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", filterResultsPath, err)
	}

	log.Printf("Filtered %s against allowed_tests", filterResultsPath)
}

// allowedSetFromRequest loads the allowed_tests list from a request payload.
func allowedSetFromRequest(path string) (map[string]struct{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var req struct {
		AllowedTests []string `json:"allowed_tests"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, err
	}

	allowed := make(map[string]struct{}, len(req.AllowedTests))
	for _, t := range req.AllowedTests {
		allowed[t] = struct{}{}
	}
	return allowed, nil
}

// filterResult drops disallowed tests and their explanations in place.
// An empty allowed set disables the filter.
func filterResult(result map[string]any, allowed map[string]struct{}) {
	rawTests, _ := result["selected_tests"].([]any)

	selected := make([]any, 0, len(rawTests))
	kept := make(map[string]struct{}, len(rawTests))
	for _, raw := range rawTests {
		name, ok := raw.(string)
		if !ok {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[name]; !ok {
				continue
			}
		}
		selected = append(selected, name)
		kept[name] = struct{}{}
	}
	result["selected_tests"] = selected

	if explanations, ok := result["explanations"].(map[string]any); ok {
		for name := range explanations {
			if _, ok := kept[name]; !ok {
				delete(explanations, name)
			}
		}
	}
}
