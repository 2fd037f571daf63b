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
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/AleutianAI/AleutianSelect/services/selector/ingest"
	"github.com/spf13/cobra"
)

var (
	buildDiffPath     string
	buildCallGraph    string
	buildJdeps        string
	buildJdepsPrefix  string
	buildAllowedTests string
	buildTestRoot     string
	buildSourceRoot   string
	buildRepoName     string
	buildBaseCommit   string
	buildHeadCommit   string
	buildMaxTests     int
	buildOutPath      string

	buildInputCmd = &cobra.Command{
		Use:   "build-input",
		Short: "Assemble a selection request from build artifacts",
		Long: `Parses a unified diff, a call-graph dump and jdeps output into the
				selection request payload, optionally scanning test sources for
				the allowed-tests list.`,
		Run: runBuildInput,
	}
)

func init() {
	buildInputCmd.Flags().StringVar(&buildDiffPath, "diff", "", "Unified diff file")
	buildInputCmd.Flags().StringVar(&buildCallGraph, "call-graph", "", "Call graph dump ('caller -> callee' per line)")
	buildInputCmd.Flags().StringVar(&buildJdeps, "jdeps", "", "jdeps output file")
	buildInputCmd.Flags().StringVar(&buildJdepsPrefix, "jdeps-prefix", "", "Package prefix filter for jdeps entries")
	buildInputCmd.Flags().StringVar(&buildAllowedTests, "allowed-tests", "", "Allowed-tests list, one Type#member per line")
	buildInputCmd.Flags().StringVar(&buildTestRoot, "test-root", "", "Project root to scan for Java test methods")
	buildInputCmd.Flags().StringVar(&buildSourceRoot, "source-root", "", "Project root for reading changed Java sources")
	buildInputCmd.Flags().StringVar(&buildRepoName, "repo", "", "Repository name")
	buildInputCmd.Flags().StringVar(&buildBaseCommit, "base", "", "Base commit")
	buildInputCmd.Flags().StringVar(&buildHeadCommit, "head", "", "Head commit")
	buildInputCmd.Flags().IntVar(&buildMaxTests, "max-tests", 0, "Selection cap (0 uses the service default)")
	buildInputCmd.Flags().StringVar(&buildOutPath, "out", "request.json", "Output file for the request payload")

	rootCmd.AddCommand(buildInputCmd)
}

func runBuildInput(cmd *cobra.Command, args []string) {
	req, err := ingest.BuildRequest(context.Background(), ingest.BuildOptions{
		DiffPath:         buildDiffPath,
		CallGraphPath:    buildCallGraph,
		JdepsPath:        buildJdeps,
		JdepsPrefix:      buildJdepsPrefix,
		AllowedTestsPath: buildAllowedTests,
		TestSourceRoot:   buildTestRoot,
		SourceRoot:       buildSourceRoot,
		Repo: datatypes.RepoInfo{
			Name:       buildRepoName,
			BaseCommit: buildBaseCommit,
			HeadCommit: buildHeadCommit,
		},
		Settings: datatypes.Settings{MaxTests: buildMaxTests},
	})
	if err != nil {
		log.Fatalf("Failed to build request: %v", err)
	}

	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode request: %v", err)
	}
	if err := os.WriteFile(buildOutPath, data, 0644); err != nil {
		log.Fatalf("Failed to write %s: %v", buildOutPath, err)
	}

	log.Printf("Wrote %s (%d changed files, %d call edges, %d allowed tests)",
		buildOutPath, len(req.ChangedFiles), len(req.CallGraph), len(req.AllowedTests))
}
