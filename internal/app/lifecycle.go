package app

import (
	"retro-zip/internal/logger"
	"retro-zip/internal/shutdown"
)

// Lifecycle owns the ordered shutdown of everything the application started.
// Components stop in reverse registration order.
type Lifecycle struct {
	manager *shutdown.Manager
	logger  logger.Logger
}

func NewLifecycle(log logger.Logger) *Lifecycle {
	return &Lifecycle{
		manager: shutdown.NewManager(log),
		logger:  log,
	}
}

func (l *Lifecycle) Register(name string, component shutdown.Shutdownable) {
	l.manager.Register(name, component)
	l.logger.Debug("Lifecycle", "component registered", map[string]interface{}{
		"component": name,
	})
}

// Listen shuts down on SIGINT/SIGTERM and then calls quit.
func (l *Lifecycle) Listen(quit func()) {
	l.manager.Listen(quit)
}

// Shutdown is safe to call more than once.
func (l *Lifecycle) Shutdown() {
	l.manager.Shutdown()
}

func (l *Lifecycle) Done() <-chan struct{} {
	return l.manager.Done()
}
