package errkind

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestKindOfWrapped(t *testing.T) {
	base := New(SourceUnavailable, "file: open data.csv", fs.ErrNotExist)
	wrapped := fmt.Errorf("source telco: %w", base)

	k, ok := KindOf(wrapped)
	if !ok || k != SourceUnavailable {
		t.Fatalf("KindOf() = %q, %v; want %q, true", k, ok, SourceUnavailable)
	}
	if !Is(wrapped, SourceUnavailable) {
		t.Error("Is(wrapped, SourceUnavailable) = false")
	}
	if Is(wrapped, Write) {
		t.Error("Is(wrapped, Write) = true")
	}
	// The driver error stays reachable through Unwrap.
	if !errors.Is(wrapped, fs.ErrNotExist) {
		t.Error("underlying fs.ErrNotExist not reachable")
	}
}

func TestKindOfPlainError(t *testing.T) {
	if _, ok := KindOf(errors.New("plain")); ok {
		t.Error("KindOf(plain) reported a kind")
	}
}

func TestRetryable(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{SourceUnavailable, true},
		{Write, true},
		{SourceFormat, false},
		{SchemaMismatch, false},
	}
	for _, tt := range tests {
		if got := Retryable(tt.kind); got != tt.want {
			t.Errorf("Retryable(%s) = %v, want %v", tt.kind, got, tt.want)
		}
	}
}
