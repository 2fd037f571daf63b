// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest turns build-system artifacts into a selection request:
// unified diffs into changed files with touched methods, call-graph and
// jdeps text dumps into graphs, and test-source trees into the
// allowed-tests list. It is the library behind the selectctl CLI and is
// usable standalone by any pipeline that prepares selector payloads.
package ingest
