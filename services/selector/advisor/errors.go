// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package advisor

import "errors"

var (
	// ErrNotConfigured means a required credential or endpoint for the
	// backend is missing from the environment.
	ErrNotConfigured = errors.New("advisor backend not configured")

	// ErrParseFailed means the model response contained no usable JSON
	// selection object.
	ErrParseFailed = errors.New("failed to parse model response")

	// ErrEmptyResponse means the backend answered without any content.
	ErrEmptyResponse = errors.New("model returned no content")
)
