package services_test

import (
	"context"
	"testing"

	"racecarr/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithScheduleID(ctx, 42)
	ctx = services.WithComponent(ctx, "scheduler")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.ScheduleIDFromContext(ctx); !ok || id != 42 {
		t.Fatalf("unexpected schedule id: %v %v", id, ok)
	}
	if component, ok := services.ComponentFromContext(ctx); !ok || component != "scheduler" {
		t.Fatalf("unexpected component: %v %v", component, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestComponentBlankPreservesContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithComponent(ctx, "")
	if _, ok := services.ComponentFromContext(ctx); ok {
		t.Fatal("expected no component value")
	}
}
