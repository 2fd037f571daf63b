// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package selection

import "errors"

// Sentinel errors for caller-contract violations. Input absence (no
// touched methods, empty call graph) is not an error and yields a
// well-formed empty result instead.
var (
	// ErrNegativeMaxTests indicates the request asked for a negative cap.
	ErrNegativeMaxTests = errors.New("max_tests must not be negative")

	// ErrMalformedAllowedTest indicates an allowed-tests entry without the
	// "Type#member" separator.
	ErrMalformedAllowedTest = errors.New("allowed test identifier missing '#' separator")
)
