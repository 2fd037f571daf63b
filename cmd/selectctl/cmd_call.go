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
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	callInputPath  string
	callOutputPath string
	callTimeout    time.Duration

	callCmd = &cobra.Command{
		Use:   "call [service-url]",
		Short: "Post a selection request to a running selector service",
		Long: `Posts the request payload to the service and writes the response.
				A transport or HTTP failure writes an empty selection instead,
				so CI pipelines can always consume the output file and fall
				back to running the full suite.`,
		Args: cobra.ExactArgs(1),
		Run:  runCall,
	}
)

func init() {
	callCmd.Flags().StringVar(&callInputPath, "input", "request.json", "Request payload file")
	callCmd.Flags().StringVar(&callOutputPath, "output", "selector_output.json", "Response output file")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 2*time.Minute, "Request timeout")

	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) {
	url := args[0]

	response, err := postSelection(url, callInputPath, callTimeout)
	if err != nil {
		// Fallback to an empty selection so downstream steps always have
		// a well-formed file to read.
		fallback := map[string]any{
			"selected_tests": []string{},
			"confidence":     0.0,
			"reason":         fmt.Sprintf("service_error:%v", err),
		}
		data, _ := json.MarshalIndent(fallback, "", "  ")
		if writeErr := os.WriteFile(callOutputPath, data, 0644); writeErr != nil {
			log.Fatalf("Failed to write fallback output: %v", writeErr)
		}
		log.Printf("Selector service unavailable; wrote empty selection to %s: %v", callOutputPath, err)
		return
	}

	if err := os.WriteFile(callOutputPath, response, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", callOutputPath, err)
	}
	log.Printf("Wrote %s", callOutputPath)
}

func postSelection(url, inputPath string, timeout time.Duration) ([]byte, error) {
	payload, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("read request payload: %w", err)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("post request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("http:%d %s", resp.StatusCode, body)
	}

	// Re-indent so the output file is readable in CI logs.
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		return body, nil
	}
	return pretty.Bytes(), nil
}
