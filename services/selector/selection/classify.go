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

import "strings"

// testClassMarkers are substrings that mark a declaring type as a test
// suite when they appear anywhere in the type segment, case-insensitively.
var testClassMarkers = []string{"test", "spec"}

// IsTestMethod reports whether a call-graph node denotes a test entry
// point, based on naming conventions.
//
// Description:
//
//	A node "Type#member" classifies as a test when the type segment
//	contains a test-suite marker ("test", "spec") or the member segment
//	starts with "test", both case-insensitively. Identifiers without the
//	"#" separator classify as false.
//
//	This is a heuristic, not a guarantee; downstream consumers tolerate
//	false positives and negatives.
func IsTestMethod(method string) bool {
	className, methodName, ok := strings.Cut(method, "#")
	if !ok || method == "" {
		return false
	}

	lowerClass := strings.ToLower(className)
	for _, marker := range testClassMarkers {
		if strings.Contains(lowerClass, marker) {
			return true
		}
	}

	return strings.HasPrefix(strings.ToLower(methodName), "test")
}
