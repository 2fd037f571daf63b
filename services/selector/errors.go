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

import "errors"

var (
	// ErrUnknownMode indicates a selection mode the service does not support.
	ErrUnknownMode = errors.New("unknown selection mode")

	// ErrAdvisorNotConfigured indicates the configured advisory backend
	// could not be constructed, usually from missing environment variables.
	ErrAdvisorNotConfigured = errors.New("advisor backend not configured")
)
