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

import (
	"context"
	"testing"

	"github.com/AleutianAI/AleutianSelect/services/selector/datatypes"
)

func TestMock_EmptyChangeSet(t *testing.T) {
	res, err := NewMock().Select(context.Background(), &datatypes.SelectRequest{})
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if len(res.SelectedTests) != 0 {
		t.Errorf("selected = %v, want empty", res.SelectedTests)
	}
	if res.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", res.Confidence)
	}
	if res.Metadata["reason"] != "no changes" {
		t.Errorf("metadata = %v", res.Metadata)
	}
}

func TestMock_WithChanges(t *testing.T) {
	payload := &datatypes.SelectRequest{
		ChangedFiles: []datatypes.ChangedFile{{Path: "a/b/C.java"}},
	}

	res, err := NewMock().Select(context.Background(), payload)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	if len(res.SelectedTests) != 0 {
		t.Errorf("selected = %v, want empty", res.SelectedTests)
	}
	if res.Confidence != 0.4 {
		t.Errorf("confidence = %v, want 0.4", res.Confidence)
	}
	if res.Metadata["mode"] != "mock" {
		t.Errorf("metadata = %v", res.Metadata)
	}
}
