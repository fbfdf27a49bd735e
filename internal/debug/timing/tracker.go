package timing

import (
	"context"
	"sync"
	"time"
)

type contextKey struct{}

type EventPublisher interface {
	Publish(operation string, duration time.Duration)
}

type span struct {
	operation string
	start     time.Time
}

// Stats summarises the recorded durations of one operation.
type Stats struct {
	Count   int
	Total   time.Duration
	Average time.Duration
	Max     time.Duration
}

// Tracker records how long archive operations take.
type Tracker struct {
	timings  map[string][]time.Duration
	mu       sync.RWMutex
	eventBus EventPublisher
	enabled  bool
	now      func() time.Time
}

func NewTracker(eventBus EventPublisher) *Tracker {
	return &Tracker{
		timings:  make(map[string][]time.Duration),
		eventBus: eventBus,
		enabled:  true,
		now:      time.Now,
	}
}

// StartTiming returns a context carrying the start of operation.
func (tt *Tracker) StartTiming(parent context.Context, operation string) context.Context {
	if parent == nil {
		parent = context.Background()
	}
	if !tt.isEnabled() {
		return parent
	}
	return context.WithValue(parent, contextKey{}, span{operation: operation, start: tt.now()})
}

// EndTiming records the span started on ctx and returns its duration.
func (tt *Tracker) EndTiming(ctx context.Context) time.Duration {
	if ctx == nil || !tt.isEnabled() {
		return 0
	}
	s, ok := ctx.Value(contextKey{}).(span)
	if !ok {
		return 0
	}

	duration := tt.now().Sub(s.start)

	tt.mu.Lock()
	tt.timings[s.operation] = append(tt.timings[s.operation], duration)
	tt.mu.Unlock()

	if tt.eventBus != nil {
		tt.eventBus.Publish(s.operation, duration)
	}
	return duration
}

func (tt *Tracker) GetTimings(operation string) []time.Duration {
	tt.mu.RLock()
	defer tt.mu.RUnlock()

	timings := tt.timings[operation]
	if timings == nil {
		return nil
	}

	result := make([]time.Duration, len(timings))
	copy(result, timings)
	return result
}

func (tt *Tracker) Stats(operation string) Stats {
	timings := tt.GetTimings(operation)
	stats := Stats{Count: len(timings)}
	for _, d := range timings {
		stats.Total += d
		if d > stats.Max {
			stats.Max = d
		}
	}
	if stats.Count > 0 {
		stats.Average = stats.Total / time.Duration(stats.Count)
	}
	return stats
}

func (tt *Tracker) SetEnabled(enabled bool) {
	tt.mu.Lock()
	defer tt.mu.Unlock()
	tt.enabled = enabled
}

func (tt *Tracker) isEnabled() bool {
	tt.mu.RLock()
	defer tt.mu.RUnlock()
	return tt.enabled
}

func (tt *Tracker) Reset(operation string) {
	tt.mu.Lock()
	defer tt.mu.Unlock()

	if operation == "" {
		tt.timings = make(map[string][]time.Duration)
	} else {
		delete(tt.timings, operation)
	}
}
