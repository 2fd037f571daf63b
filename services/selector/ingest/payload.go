// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
	"github.com/go-playground/validator/v10"
)

// validate checks assembled payloads against the same binding tags the
// service enforces, so a bad artifact fails at build time instead of at
// the HTTP boundary.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// BuildOptions names the artifact files a request is assembled from.
// Empty paths leave the corresponding request field empty.
type BuildOptions struct {
	DiffPath         string
	CallGraphPath    string
	JdepsPath        string
	JdepsPrefix      string
	AllowedTestsPath string

	// TestSourceRoot, when set, is scanned for Java test methods and
	// the findings are merged into the allowed-tests list.
	TestSourceRoot string

	// SourceRoot, when set, lets the builder read changed Java files to
	// compute touched methods. Without it only path-derived metadata is
	// available.
	SourceRoot string

	Repo     datatypes.RepoInfo
	Settings datatypes.Settings
}

// BuildRequest assembles a selection request from build artifacts.
//
// Description:
//
//	Parses the diff, call-graph and jdeps artifacts, loads or scans the
//	allowed-tests list, and annotates changed Java files with touched
//	methods when their source is readable. Missing optional artifacts
//	produce empty request fields, not errors; the service treats an
//	empty graph as a no-signal condition.
//
// Inputs:
//
//	ctx - Cancels source parsing.
//	opts - Artifact locations and request settings.
//
// Outputs:
//
//	*datatypes.SelectRequest - The assembled payload.
//	error - Unreadable named artifacts or a malformed diff.
func BuildRequest(ctx context.Context, opts BuildOptions) (*datatypes.SelectRequest, error) {
	req := &datatypes.SelectRequest{
		Repo:     opts.Repo,
		Settings: opts.Settings,
	}

	if opts.DiffPath != "" {
		diffText, err := os.ReadFile(opts.DiffPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read diff: %w", err)
		}
		req.ChangedFiles, err = ParseDiff(diffText)
		if err != nil {
			return nil, err
		}
	}

	if opts.CallGraphPath != "" {
		f, err := os.Open(opts.CallGraphPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open call graph: %w", err)
		}
		req.CallGraph, err = ParseCallGraph(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	if opts.JdepsPath != "" {
		f, err := os.Open(opts.JdepsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open jdeps output: %w", err)
		}
		req.JdepsGraph, err = ParseJdeps(f, opts.JdepsPrefix)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	allowed := make(map[string]struct{})
	if opts.AllowedTestsPath != "" {
		f, err := os.Open(opts.AllowedTestsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open allowed tests: %w", err)
		}
		err = readAllowedTests(f, allowed)
		f.Close()
		if err != nil {
			return nil, err
		}
	}
	if opts.TestSourceRoot != "" {
		if err := scanAllowedTests(ctx, opts.TestSourceRoot, allowed); err != nil {
			return nil, err
		}
	}
	if len(allowed) > 0 {
		req.AllowedTests = make([]string, 0, len(allowed))
		for t := range allowed {
			req.AllowedTests = append(req.AllowedTests, t)
		}
		sort.Strings(req.AllowedTests)
	}

	if opts.SourceRoot != "" {
		annotateChangedFiles(ctx, opts.SourceRoot, req.ChangedFiles)
	}

	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("assembled request is invalid: %w", err)
	}

	slog.Info("Assembled selection request",
		"changed_files", len(req.ChangedFiles),
		"call_graph_edges", len(req.CallGraph),
		"jdeps_nodes", len(req.JdepsGraph),
		"allowed_tests", len(req.AllowedTests))
	return req, nil
}

// readAllowedTests loads one test identifier per line, skipping blanks
// and // comments. Identifiers contain "#", so hash lines cannot mark
// comments here.
func readAllowedTests(r io.Reader, out map[string]struct{}) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		out[line] = struct{}{}
	}
	return scanner.Err()
}

// scanAllowedTests walks a source tree for Java test methods under the
// conventional src/test/java layout.
func scanAllowedTests(ctx context.Context, root string, out map[string]struct{}) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(p, ".java") {
			return nil
		}
		if !strings.Contains(filepath.ToSlash(p), "src/test/java/") {
			return nil
		}

		src, err := os.ReadFile(p)
		if err != nil {
			slog.Warn("Skipping unreadable test source", "path", p, "error", err)
			return nil
		}
		info, err := ParseJavaSource(ctx, src, "")
		if err != nil {
			slog.Warn("Skipping unparseable test source", "path", p, "error", err)
			return nil
		}

		for _, m := range info.Methods {
			if m.Name == "<init>" || !isTestDeclaration(m) {
				continue
			}
			out[m.FQN] = struct{}{}
		}
		return nil
	})
}

// isTestDeclaration applies the JUnit conventions: a @Test style
// annotation in the signature, or a JUnit 4 test-prefixed name.
func isTestDeclaration(m datatypes.TouchedMethod) bool {
	if strings.HasPrefix(m.Name, "test") {
		return true
	}
	for _, marker := range []string{"@Test", "@org.junit.Test", "@ParameterizedTest", "@RepeatedTest"} {
		if strings.Contains(m.Signature, marker) {
			return true
		}
	}
	return false
}

// annotateChangedFiles computes touched methods for the Java files of
// the change set whose source is readable under root. Unreadable or
// unparseable files keep their path-derived metadata.
func annotateChangedFiles(ctx context.Context, root string, changed []datatypes.ChangedFile) {
	for i := range changed {
		cf := &changed[i]
		if cf.Lang != "java" || cf.ChangeType == "D" {
			continue
		}
		src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(cf.Path)))
		if err != nil {
			slog.Debug("Changed file source not readable", "path", cf.Path, "error", err)
			continue
		}
		if err := AnnotateTouchedMethods(ctx, cf, src); err != nil {
			slog.Warn("Failed to annotate touched methods", "path", cf.Path, "error", err)
		}
	}
}
