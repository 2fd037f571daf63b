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

import (
	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

// ExtractTouchedMethods derives the touched-identifier set from the
// change description.
//
// Description:
//
//	Emits the FQN of every touched method reported by the diff analyzer.
//	For Java files with a known fully qualified class, two conservative
//	extra identifiers are synthesized: the implicit initializer
//	("Class#<init>") and a constructor named after the class. These
//	absorb constructor and static-initializer edits that a line-range
//	diff can miss.
//
// Inputs:
//
//	changedFiles - The structured change set.
//
// Outputs:
//
//	Set of touched method identifiers. May be empty; the orchestrator
//	short-circuits in that case.
func ExtractTouchedMethods(changedFiles []datatypes.ChangedFile) map[string]struct{} {
	touched := make(map[string]struct{})

	for _, cf := range changedFiles {
		for _, m := range cf.TouchedMethods {
			if m.FQN != "" {
				touched[m.FQN] = struct{}{}
			}
		}

		if cf.Lang == "java" && cf.FullyQualifiedClass != "" {
			touched[cf.FullyQualifiedClass+"#<init>"] = struct{}{}
			if name := simpleClassName(cf); name != "" {
				touched[cf.FullyQualifiedClass+"#"+name] = struct{}{}
			}
		}
	}

	return touched
}

// simpleClassName returns the simple class name of a changed file,
// deriving it from the fully qualified class when not set explicitly.
func simpleClassName(cf datatypes.ChangedFile) string {
	if cf.ClassName != "" {
		return cf.ClassName
	}
	fqc := cf.FullyQualifiedClass
	for i := len(fqc) - 1; i >= 0; i-- {
		if fqc[i] == '.' {
			return fqc[i+1:]
		}
	}
	return fqc
}
