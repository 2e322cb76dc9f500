// Package telemetry keeps a bounded in-memory log of race events and
// exposes it over HTTP.
package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/selvatuple/thumb-race-rally/internal/shared/types"
)

const DefaultCapacity = 1000

type Store struct {
	mu       sync.RWMutex
	capacity int
	recent   []types.TelemetryEvent
	total    int64
	byType   map[string]int64
	now      func() time.Time
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		recent:   make([]types.TelemetryEvent, 0, min(capacity, 512)),
		byType:   make(map[string]int64),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Record adapts a race event; Store satisfies simulation.EventSink.
func (s *Store) Record(ev types.RaceEvent) {
	s.Ingest(types.TelemetryEvent{
		EventType: ev.Type,
		RaceID:    ev.RaceID,
		Lane:      ev.Lane,
		RaceMS:    ev.ElapsedMS,
	})
}

// Ingest stores ev, filling in a missing id and timestamp.
func (s *Store) Ingest(ev types.TelemetryEvent) types.TelemetryEvent {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Timestamp.IsZero() {
		ev.Timestamp = s.now()
	}
	s.total++
	s.byType[ev.EventType]++
	s.recent = append(s.recent, ev)
	if len(s.recent) > s.capacity {
		s.recent = s.recent[len(s.recent)-s.capacity:]
	}
	return ev
}

// Recent returns up to limit of the newest events, oldest first.
// A non-positive limit returns everything retained.
func (s *Store) Recent(limit int) []types.TelemetryEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 || limit > len(s.recent) {
		limit = len(s.recent)
	}
	out := make([]types.TelemetryEvent, limit)
	copy(out, s.recent[len(s.recent)-limit:])
	return out
}

type Summary struct {
	Total  int64            `json:"total"`
	ByType map[string]int64 `json:"by_type"`
}

func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	byType := make(map[string]int64, len(s.byType))
	for k, v := range s.byType {
		byType[k] = v
	}
	return Summary{Total: s.total, ByType: byType}
}
