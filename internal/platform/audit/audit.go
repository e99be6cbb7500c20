// Package audit records who did what to which workflow. Entries are kept in
// memory behind a Recorder interface so a database-backed recorder can be
// swapped in without touching callers; every entry is also written to the
// structured log.
package audit

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Entry is a single audit log record.
type Entry struct {
	ID        string            `json:"id"`
	EventType string            `json:"event_type"`
	UserID    string            `json:"user_id"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Recorder persists audit entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	List(ctx context.Context, userID string, limit int) ([]Entry, error)
}

// Log is a Recorder that keeps entries in memory and mirrors them to a
// zerolog logger.
type Log struct {
	logger zerolog.Logger

	mu      sync.RWMutex
	entries []Entry
}

func NewLog(logger zerolog.Logger) *Log {
	return &Log{logger: logger}
}

func (l *Log) Record(_ context.Context, e Entry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	l.mu.Lock()
	l.entries = append(l.entries, e)
	l.mu.Unlock()

	evt := l.logger.Info().
		Str("event_type", e.EventType).
		Str("user_id", e.UserID)
	for k, v := range e.Data {
		evt = evt.Str(k, v)
	}
	evt.Msg("audit")

	return nil
}

// List returns entries newest first, filtered by user when userID is
// non-empty.
func (l *Log) List(_ context.Context, userID string, limit int) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if userID != "" && e.UserID != userID {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
