package correlation

import (
	"context"
	"testing"
)

func TestEnsurePreservesExistingID(t *testing.T) {
	got := Ensure("req-abc-123")
	if got != "req-abc-123" {
		t.Fatalf("expected existing id to be preserved, got %q", got)
	}
}

func TestEnsureGeneratesWhenAbsent(t *testing.T) {
	first := Ensure("")
	second := Ensure("")
	if first == "" || second == "" {
		t.Fatalf("expected generated ids, got %q and %q", first, second)
	}
	if first == second {
		t.Fatalf("expected distinct ids for separate requests, both were %q", first)
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithContext(context.Background(), "corr-1")
	if got := FromContext(ctx); got != "corr-1" {
		t.Fatalf("expected corr-1 from context, got %q", got)
	}
}

func TestFromContextWithoutValue(t *testing.T) {
	if got := FromContext(context.Background()); got != "" {
		t.Fatalf("expected empty id for bare context, got %q", got)
	}
}
