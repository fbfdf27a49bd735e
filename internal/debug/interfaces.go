package debug

import (
	"context"
	"time"

	"retro-zip/internal/debug/eventbus"
	"retro-zip/internal/debug/filetracker"
	"retro-zip/internal/logger"
)

// Coordinator combines the debug capabilities the application layer uses
type Coordinator interface {
	Logger() logger.Logger
	// StartOperation and EndOperation bracket a timed archive operation.
	StartOperation(ctx context.Context, operation string) context.Context
	EndOperation(ctx context.Context) time.Duration
	Publish(eventType string, data map[string]interface{})
	Subscribe(eventType string, handler eventbus.Handler) uint64
	Files() *filetracker.Tracker
	Shutdown()
}
