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
	"testing"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

func TestExtractTouchedMethods_FQNs(t *testing.T) {
	changed := []datatypes.ChangedFile{
		{
			Path: "libs/a/src/main/java/com/foo/Service.java",
			TouchedMethods: []datatypes.TouchedMethod{
				{Name: "processData", FQN: "com.foo.Service#processData"},
				{Name: "helper"}, // no FQN, must be ignored
			},
		},
	}

	touched := ExtractTouchedMethods(changed)

	if len(touched) != 1 {
		t.Fatalf("expected 1 touched method, got %d: %v", len(touched), touched)
	}
	if _, ok := touched["com.foo.Service#processData"]; !ok {
		t.Error("expected com.foo.Service#processData in touched set")
	}
}

func TestExtractTouchedMethods_JavaConstructorSynthesis(t *testing.T) {
	changed := []datatypes.ChangedFile{
		{
			Path:                "libs/a/src/main/java/com/foo/Bar.java",
			Lang:                "java",
			ClassName:           "Bar",
			FullyQualifiedClass: "com.foo.Bar",
		},
	}

	touched := ExtractTouchedMethods(changed)

	for _, want := range []string{"com.foo.Bar#<init>", "com.foo.Bar#Bar"} {
		if _, ok := touched[want]; !ok {
			t.Errorf("expected synthesized identifier %q in touched set", want)
		}
	}
}

func TestExtractTouchedMethods_SimpleNameDerivedFromFQC(t *testing.T) {
	changed := []datatypes.ChangedFile{
		{
			Path:                "libs/a/src/main/java/com/foo/Baz.java",
			Lang:                "java",
			FullyQualifiedClass: "com.foo.Baz",
		},
	}

	touched := ExtractTouchedMethods(changed)

	if _, ok := touched["com.foo.Baz#Baz"]; !ok {
		t.Errorf("expected constructor identifier derived from FQC, got %v", touched)
	}
}

func TestExtractTouchedMethods_NonJavaNoSynthesis(t *testing.T) {
	changed := []datatypes.ChangedFile{
		{
			Path:                "web/src/index.ts",
			Lang:                "typescript",
			FullyQualifiedClass: "index",
		},
	}

	if touched := ExtractTouchedMethods(changed); len(touched) != 0 {
		t.Errorf("expected empty touched set, got %v", touched)
	}
}

func TestExtractTouchedMethods_EmptyChangeSet(t *testing.T) {
	if touched := ExtractTouchedMethods(nil); len(touched) != 0 {
		t.Errorf("expected empty touched set, got %v", touched)
	}
}
