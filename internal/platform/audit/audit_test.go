package audit

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLogRecordAssignsIDAndTimestamp(t *testing.T) {
	l := NewLog(zerolog.Nop())
	ctx := context.Background()

	err := l.Record(ctx, Entry{
		EventType: "workflow_created",
		UserID:    "recep-1",
		Data:      map[string]string{"workflow_id": "wf-1"},
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := l.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.ID == "" {
		t.Error("entry should get an ID")
	}
	if e.CreatedAt.IsZero() {
		t.Error("entry should get a timestamp")
	}
	if e.Data["workflow_id"] != "wf-1" {
		t.Errorf("data = %v", e.Data)
	}
}

func TestLogListFiltersAndLimits(t *testing.T) {
	l := NewLog(zerolog.Nop())
	ctx := context.Background()

	base := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		_ = l.Record(ctx, Entry{
			EventType: "workflow_transition",
			UserID:    "nurse-1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}
	_ = l.Record(ctx, Entry{EventType: "workflow_created", UserID: "recep-1", CreatedAt: base})

	byUser, _ := l.List(ctx, "nurse-1", 10)
	if len(byUser) != 3 {
		t.Errorf("filtered = %d, want 3", len(byUser))
	}
	// Newest first.
	if !byUser[0].CreatedAt.After(byUser[2].CreatedAt) {
		t.Error("entries should be sorted newest first")
	}

	limited, _ := l.List(ctx, "", 2)
	if len(limited) != 2 {
		t.Errorf("limited = %d, want 2", len(limited))
	}
}
