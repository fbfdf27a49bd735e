package eventbus

import (
	"context"
	"sync"
	"time"
)

// Archive lifecycle event types.
const (
	ArchiveCreated   = "archive_created"
	ArchiveOpened    = "archive_opened"
	ArchiveClosed    = "archive_closed"
	ArchiveModified  = "archive_modified"
	ArchiveExtracted = "archive_extracted"
	ArchiveChanged   = "archive_changed_on_disk"
	FileOpened       = "file_opened"
	FileClosed       = "file_closed"
	TimingCompleted  = "timing_completed"
)

type Event struct {
	Type      string
	Timestamp time.Time
	Data      map[string]interface{}
}

type Handler func(event Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Bus fans events out to subscribers on a background goroutine. Publish
// never blocks; events are dropped when the buffer is full.
type Bus struct {
	subscribers map[string][]subscription
	nextID      uint64
	mu          sync.RWMutex
	buffer      chan Event
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	dropped     uint64
	onPanic     func(eventType string, recovered interface{})
}

func NewBus(bufferSize int) *Bus {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	ctx, cancel := context.WithCancel(context.Background())

	bus := &Bus{
		subscribers: make(map[string][]subscription),
		buffer:      make(chan Event, bufferSize),
		ctx:         ctx,
		cancel:      cancel,
	}

	bus.startWorker()
	return bus
}

// OnPanic installs a hook for handlers that panic.
func (b *Bus) OnPanic(fn func(eventType string, recovered interface{})) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onPanic = fn
}

func (b *Bus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if b.ctx.Err() != nil {
		return
	}
	select {
	case b.buffer <- event:
	default:
		b.mu.Lock()
		b.dropped++
		b.mu.Unlock()
	}
}

// Subscribe registers handler for eventType and returns an id for Unsubscribe.
func (b *Bus) Subscribe(eventType string, handler Handler) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{id: b.nextID, handler: handler})
	return b.nextID
}

func (b *Bus) Unsubscribe(eventType string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subscribers[eventType]
	for i, s := range subs {
		if s.id == id {
			b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Dropped counts events lost to a full buffer.
func (b *Bus) Dropped() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped
}

// Shutdown delivers what is already buffered, then stops the worker.
func (b *Bus) Shutdown() {
	b.cancel()
	b.wg.Wait()
}

func (b *Bus) startWorker() {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()

		for {
			select {
			case event := <-b.buffer:
				b.dispatch(event)
			case <-b.ctx.Done():
				b.drain()
				return
			}
		}
	}()
}

func (b *Bus) drain() {
	for {
		select {
		case event := <-b.buffer:
			b.dispatch(event)
		default:
			return
		}
	}
}

func (b *Bus) dispatch(event Event) {
	b.mu.RLock()
	subs := make([]subscription, len(b.subscribers[event.Type]))
	copy(subs, b.subscribers[event.Type])
	onPanic := b.onPanic
	b.mu.RUnlock()

	for _, s := range subs {
		func() {
			defer func() {
				if r := recover(); r != nil && onPanic != nil {
					onPanic(event.Type, r)
				}
			}()
			s.handler(event)
		}()
	}
}
