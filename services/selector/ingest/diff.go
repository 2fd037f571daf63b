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
	"fmt"
	"path"
	"strings"

	godiff "github.com/sourcegraph/go-diff/diff"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

// ParseDiff converts unified diff text into the changed-file records of
// a selection request.
//
// Description:
//
//	Parses the diff with go-diff, derives the change type from the
//	old/new names (added when the old side is /dev/null, deleted when
//	the new side is), and records each hunk as a 1-based line range in
//	the new file. Java files additionally get package, class and
//	fully-qualified-class fields derived from the conventional
//	src/{main,test}/java layout; touched methods need source access and
//	are filled in by AnnotateTouchedMethods.
//
// Inputs:
//
//	diffText - Unified diff, as produced by git diff.
//
// Outputs:
//
//	[]datatypes.ChangedFile - One record per file in the diff.
//	error - ErrMalformedDiff when the text cannot be parsed.
func ParseDiff(diffText []byte) ([]datatypes.ChangedFile, error) {
	if len(diffText) == 0 {
		return []datatypes.ChangedFile{}, nil
	}

	fileDiffs, err := godiff.ParseMultiFileDiff(diffText)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDiff, err)
	}

	changed := make([]datatypes.ChangedFile, 0, len(fileDiffs))
	for _, fd := range fileDiffs {
		changed = append(changed, changedFileFrom(fd))
	}
	return changed, nil
}

func changedFileFrom(fd *godiff.FileDiff) datatypes.ChangedFile {
	origName := cleanDiffPath(fd.OrigName)
	newName := cleanDiffPath(fd.NewName)

	changeType := "M"
	filePath := newName
	switch {
	case origName == "":
		changeType = "A"
	case newName == "":
		changeType = "D"
		filePath = origName
	}

	cf := datatypes.ChangedFile{
		Path:       filePath,
		ChangeType: changeType,
		FileName:   path.Base(filePath),
		Lang:       detectLang(filePath),
	}

	for _, h := range fd.Hunks {
		start := int(h.NewStartLine)
		end := start + int(h.NewLines) - 1
		if end < start {
			end = start
		}
		cf.Hunks = append(cf.Hunks, datatypes.Hunk{
			Start:    start,
			End:      end,
			NewLines: int(h.NewLines),
			OldLines: int(h.OrigLines),
		})
	}

	if cf.Lang == "java" {
		enrichJavaFromPath(&cf)
	}
	return cf
}

// cleanDiffPath strips the a/ or b/ prefix and maps /dev/null to empty.
func cleanDiffPath(p string) string {
	if p == "" || p == "/dev/null" {
		return ""
	}
	if strings.HasPrefix(p, "a/") || strings.HasPrefix(p, "b/") {
		return p[2:]
	}
	return p
}

func detectLang(p string) string {
	ext := strings.ToLower(path.Ext(p))
	if ext == "" {
		return ""
	}
	return ext[1:]
}

// enrichJavaFromPath fills package, class and FQC from the conventional
// Gradle/Maven source layout, e.g. libs/a/src/main/java/com/foo/Bar.java.
func enrichJavaFromPath(cf *datatypes.ChangedFile) {
	base := path.Base(cf.Path)
	cf.ClassName = strings.TrimSuffix(base, ".java")

	for _, marker := range []string{"src/main/java/", "src/test/java/"} {
		idx := strings.Index(cf.Path, marker)
		if idx == -1 {
			continue
		}
		pkgPath := path.Dir(cf.Path[idx+len(marker):])
		if pkgPath != "" && pkgPath != "." {
			cf.Package = strings.ReplaceAll(pkgPath, "/", ".")
		}
		break
	}

	if cf.Package != "" {
		cf.FullyQualifiedClass = cf.Package + "." + cf.ClassName
	} else {
		cf.FullyQualifiedClass = cf.ClassName
	}
}
