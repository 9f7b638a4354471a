// Rolltrace - Roller Maintenance History Timeline Service
// Copyright 2026 Rolltrace Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/rolltrace/rolltrace

package timeline

import "testing"

// Test assertion helpers with "check" prefix. t.Helper() keeps failure
// messages pointing at the calling line.

func checkStringEqual(t *testing.T, fieldName, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %q, got %q", fieldName, want, got)
	}
}

func checkIntEqual(t *testing.T, fieldName string, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("%s: expected %d, got %d", fieldName, want, got)
	}
}

func checkSliceLen(t *testing.T, name string, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("%s: expected length %d, got %d", name, want, got)
	}
}

func checkTrue(t *testing.T, description string, condition bool) {
	t.Helper()
	if !condition {
		t.Errorf("expected %s to be true", description)
	}
}
