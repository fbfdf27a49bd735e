package debug

import (
	"context"
	"os"
	"time"

	"retro-zip/internal/debug/eventbus"
	"retro-zip/internal/debug/filetracker"
	"retro-zip/internal/debug/timing"
	"retro-zip/internal/logger"
)

// timingEvents forwards completed timings onto the bus
type timingEvents struct {
	bus *eventbus.Bus
}

func (t *timingEvents) Publish(operation string, duration time.Duration) {
	t.bus.Publish(eventbus.Event{
		Type: eventbus.TimingCompleted,
		Data: map[string]interface{}{
			"operation":   operation,
			"duration_ms": duration.Milliseconds(),
		},
	})
}

// fileEvents forwards archive handle open/close onto the bus
type fileEvents struct {
	bus *eventbus.Bus
}

func (f *fileEvents) Publish(eventType string, info filetracker.FileInfo, held time.Duration) {
	data := map[string]interface{}{
		"path":   info.Path,
		"handle": info.Handle,
	}
	if held > 0 {
		data["held_ms"] = held.Milliseconds()
	}
	f.bus.Publish(eventbus.Event{Type: eventType, Data: data})
}

type DebugCoordinator struct {
	config Config
	logger logger.Logger
	timing *timing.Tracker
	files  *filetracker.Tracker
	bus    *eventbus.Bus
}

// archiveEvents are logged by the coordinator's own subscriber.
var archiveEvents = []string{
	eventbus.ArchiveCreated,
	eventbus.ArchiveOpened,
	eventbus.ArchiveClosed,
	eventbus.ArchiveModified,
	eventbus.ArchiveExtracted,
	eventbus.ArchiveChanged,
}

func NewCoordinator(config Config) *DebugCoordinator {
	var log logger.Logger
	switch {
	case !config.EnableLogging:
		log = logger.NoOpLogger{}
	case config.UseJSONLogging:
		log = logger.NewJSONLogger(os.Stderr, config.LogLevel)
	default:
		log = logger.NewConsoleLogger(config.LogLevel)
	}
	return newCoordinator(config, log)
}

func newCoordinator(config Config, log logger.Logger) *DebugCoordinator {
	bus := eventbus.NewBus(config.EventBufferSize)

	bus.OnPanic(func(eventType string, recovered interface{}) {
		log.Warning("EventBus", "event handler panicked", map[string]interface{}{
			"event": eventType,
			"panic": recovered,
		})
	})

	files := filetracker.NewTracker(&fileEvents{bus: bus})
	files.SetEnabled(config.EnableFileTracking)
	files.SetStackTraces(config.EnableStackTraces)

	timings := timing.NewTracker(&timingEvents{bus: bus})
	timings.SetEnabled(config.EnableTimingTracking)

	dc := &DebugCoordinator{
		config: config,
		logger: log,
		timing: timings,
		files:  files,
		bus:    bus,
	}
	for _, eventType := range archiveEvents {
		bus.Subscribe(eventType, dc.logEvent)
	}
	if config.EnableFileTracking {
		bus.Subscribe(eventbus.FileOpened, dc.logEvent)
		bus.Subscribe(eventbus.FileClosed, dc.logEvent)
	}
	return dc
}

func (dc *DebugCoordinator) logEvent(event eventbus.Event) {
	fields := make(map[string]interface{}, len(event.Data)+1)
	for k, v := range event.Data {
		fields[k] = v
	}
	fields["event"] = event.Type
	dc.logger.Debug("EventBus", "archive event", fields)
}

func (dc *DebugCoordinator) Logger() logger.Logger {
	return dc.logger
}

func (dc *DebugCoordinator) Timing() *timing.Tracker {
	return dc.timing
}

func (dc *DebugCoordinator) Files() *filetracker.Tracker {
	return dc.files
}

func (dc *DebugCoordinator) StartOperation(ctx context.Context, operation string) context.Context {
	return dc.timing.StartTiming(ctx, operation)
}

// EndOperation records the operation started on ctx and logs its duration at debug level.
func (dc *DebugCoordinator) EndOperation(ctx context.Context) time.Duration {
	d := dc.timing.EndTiming(ctx)
	if d > 0 {
		dc.logger.Debug("Timing", "operation completed", map[string]interface{}{
			"duration_ms": d.Milliseconds(),
		})
	}
	return d
}

func (dc *DebugCoordinator) Publish(eventType string, data map[string]interface{}) {
	dc.bus.Publish(eventbus.Event{Type: eventType, Data: data})
}

func (dc *DebugCoordinator) Subscribe(eventType string, handler eventbus.Handler) uint64 {
	return dc.bus.Subscribe(eventType, handler)
}

// Shutdown reports archive handles still open, then stops the event bus.
func (dc *DebugCoordinator) Shutdown() {
	for _, leak := range dc.files.DetectLeaks(dc.config.LeakThreshold) {
		dc.logger.Warning("FileTracker", "archive handle still open at shutdown", map[string]interface{}{
			"path":      leak.Path,
			"handle":    leak.Handle,
			"opened_at": leak.OpenedAt,
		})
	}
	if dropped := dc.bus.Dropped(); dropped > 0 {
		dc.logger.Debug("EventBus", "events dropped", map[string]interface{}{
			"count": dropped,
		})
	}
	dc.bus.Shutdown()
}

type Config struct {
	EnableLogging        bool
	EnableFileTracking   bool
	EnableTimingTracking bool
	EnableStackTraces    bool
	UseJSONLogging       bool
	LogLevel             logger.LogLevel
	EventBufferSize      int
	LeakThreshold        time.Duration
}

func DefaultConfig() Config {
	return Config{
		EnableLogging:        true,
		EnableFileTracking:   true,
		EnableTimingTracking: true,
		EnableStackTraces:    false,
		UseJSONLogging:       false,
		LogLevel:             logger.InfoLevel,
		EventBufferSize:      1000,
		LeakThreshold:        0,
	}
}

func ProductionConfig() Config {
	return Config{
		EnableLogging:        true,
		EnableFileTracking:   false,
		EnableTimingTracking: false,
		EnableStackTraces:    false,
		UseJSONLogging:       true,
		LogLevel:             logger.ErrorLevel,
		EventBufferSize:      100,
		LeakThreshold:        0,
	}
}

// ConfigFromEnv reads the RETROZIP_* switches on top of the default config.
func ConfigFromEnv() Config {
	if os.Getenv("RETROZIP_PRODUCTION") == "true" {
		return ProductionConfig()
	}

	config := DefaultConfig()
	config.LogLevel = logger.LevelFromEnv()

	if os.Getenv("RETROZIP_DEBUG_ALL") == "true" {
		config.LogLevel = logger.DebugLevel
		config.EnableStackTraces = true
	}

	if os.Getenv("RETROZIP_DEBUG_FILES") == "true" {
		config.EnableFileTracking = true
		config.EnableStackTraces = true
	}

	if os.Getenv("RETROZIP_JSON_LOGS") == "true" {
		config.UseJSONLogging = true
	}

	return config
}
