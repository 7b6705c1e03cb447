package tenancy

import (
	"context"
	"testing"
)

func TestBusinessIDRoundTrip(t *testing.T) {
	ctx := WithBusinessID(context.Background(), "biz_123")

	got, ok := BusinessIDFromContext(ctx)
	if !ok {
		t.Fatal("expected business id to be present")
	}
	if got != "biz_123" {
		t.Errorf("expected biz_123, got %s", got)
	}
}

func TestBusinessIDMissing(t *testing.T) {
	if _, ok := BusinessIDFromContext(context.Background()); ok {
		t.Error("expected no business id on empty context")
	}
}

func TestBusinessIDEmptyValue(t *testing.T) {
	ctx := WithBusinessID(context.Background(), "")
	if _, ok := BusinessIDFromContext(ctx); ok {
		t.Error("empty business id should not count as present")
	}
}
