// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package advisor provides the advisory test-selection sources used by
// hybrid mode: a deterministic mock, an OpenAI-compatible backend, a
// Gemini backend, and a local Ollama backend. Every source implements
// selection.Advisor and returns the same four-part result shape as the
// deterministic engine, so the hybrid merge never cares which backend
// produced the second opinion.
//
// Backends degrade rather than fail where the remote side misbehaves:
// transport and HTTP errors produce a low-confidence empty result with
// error metadata. Only an unparseable model response is surfaced as an
// error, which the hybrid layer then downgrades to deterministic-only.
package advisor

// errorConfidence is reported on empty results produced by transport or
// HTTP failures.
const errorConfidence = 0.3

// defaultTemperature and defaultMaxTokens apply when the corresponding
// environment variables are unset.
const (
	defaultTemperature float32 = 0.2
	defaultMaxTokens           = 800
)
