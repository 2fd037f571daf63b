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
	"errors"
	"testing"
)

const sampleDiff = `diff --git a/libs/a/src/main/java/com/foo/Service.java b/libs/a/src/main/java/com/foo/Service.java
index 1111111..2222222 100644
--- a/libs/a/src/main/java/com/foo/Service.java
+++ b/libs/a/src/main/java/com/foo/Service.java
@@ -10,2 +10,3 @@ public class Service {
 	context line
-	old line
+	new line
+	another new line
diff --git a/docs/notes.md b/docs/notes.md
new file mode 100644
index 0000000..3333333
--- /dev/null
+++ b/docs/notes.md
@@ -0,0 +1,2 @@
+first
+second
diff --git a/legacy/Old.java b/legacy/Old.java
deleted file mode 100644
index 4444444..0000000
--- a/legacy/Old.java
+++ /dev/null
@@ -1,2 +0,0 @@
-gone
-gone too
`

func TestParseDiff_ModifiedJavaFile(t *testing.T) {
	changed, err := ParseDiff([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("ParseDiff failed: %v", err)
	}
	if len(changed) != 3 {
		t.Fatalf("expected 3 changed files, got %d", len(changed))
	}

	cf := changed[0]
	if cf.Path != "libs/a/src/main/java/com/foo/Service.java" {
		t.Errorf("path = %q", cf.Path)
	}
	if cf.ChangeType != "M" {
		t.Errorf("change type = %q, want M", cf.ChangeType)
	}
	if cf.Lang != "java" {
		t.Errorf("lang = %q, want java", cf.Lang)
	}
	if cf.Package != "com.foo" || cf.ClassName != "Service" || cf.FullyQualifiedClass != "com.foo.Service" {
		t.Errorf("java metadata = %q/%q/%q", cf.Package, cf.ClassName, cf.FullyQualifiedClass)
	}
	if len(cf.Hunks) != 1 {
		t.Fatalf("expected 1 hunk, got %d", len(cf.Hunks))
	}
	if cf.Hunks[0].Start != 10 || cf.Hunks[0].End != 12 {
		t.Errorf("hunk range = [%d, %d], want [10, 12]", cf.Hunks[0].Start, cf.Hunks[0].End)
	}
}

func TestParseDiff_AddedAndDeletedFiles(t *testing.T) {
	changed, err := ParseDiff([]byte(sampleDiff))
	if err != nil {
		t.Fatalf("ParseDiff failed: %v", err)
	}

	added := changed[1]
	if added.Path != "docs/notes.md" || added.ChangeType != "A" {
		t.Errorf("added file = %q (%s)", added.Path, added.ChangeType)
	}
	if added.Lang != "md" {
		t.Errorf("lang = %q, want md", added.Lang)
	}

	deleted := changed[2]
	if deleted.Path != "legacy/Old.java" || deleted.ChangeType != "D" {
		t.Errorf("deleted file = %q (%s)", deleted.Path, deleted.ChangeType)
	}
}

func TestParseDiff_Empty(t *testing.T) {
	changed, err := ParseDiff(nil)
	if err != nil {
		t.Fatalf("ParseDiff failed: %v", err)
	}
	if len(changed) != 0 {
		t.Errorf("expected empty result, got %v", changed)
	}
}

func TestParseDiff_Malformed(t *testing.T) {
	_, err := ParseDiff([]byte("--- broken\n@@ not a hunk header\n"))
	if !errors.Is(err, ErrMalformedDiff) {
		t.Errorf("expected ErrMalformedDiff, got %v", err)
	}
}

func TestEnrichJavaFromPath_NoSourceRootMarker(t *testing.T) {
	changed, err := ParseDiff([]byte(`diff --git a/Standalone.java b/Standalone.java
index 1111111..2222222 100644
--- a/Standalone.java
+++ b/Standalone.java
@@ -1,1 +1,1 @@
-a
+b
`))
	if err != nil {
		t.Fatalf("ParseDiff failed: %v", err)
	}

	cf := changed[0]
	if cf.Package != "" {
		t.Errorf("package = %q, want empty", cf.Package)
	}
	if cf.FullyQualifiedClass != "Standalone" {
		t.Errorf("fqc = %q, want Standalone", cf.FullyQualifiedClass)
	}
}
