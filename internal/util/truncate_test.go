package util

import "testing"

func TestPreview(t *testing.T) {
	if got := Preview("", 10); got != "" {
		t.Fatalf("expected empty preview, got %q", got)
	}
	if got := Preview("short", 10); got != "short" {
		t.Fatalf("unexpected preview %q", got)
	}
	if got := Preview("first line\nsecond line", 100); got != "first line" {
		t.Fatalf("expected single line, got %q", got)
	}
	if got := Preview("0123456789abcdef", 8); got != "01234567..." {
		t.Fatalf("expected truncated preview, got %q", got)
	}
}
