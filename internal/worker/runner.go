package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"retro-zip/internal/logger"
)

var (
	ErrBusy    = errors.New("please wait for the current operation to finish")
	ErrStopped = errors.New("worker runner is shut down")
)

// Poster runs fn on the UI goroutine. The GUI passes fyne.Do.
type Poster func(fn func())

// Job is a long operation. report takes a fraction in [0,1] and a status line.
type Job func(ctx context.Context, report func(fraction float64, message string)) error

// Progress is posted while a job runs
type Progress struct {
	JobID    string
	Name     string
	Fraction float64
	Message  string
}

// Result is posted once when a job ends
type Result struct {
	JobID    string
	Name     string
	Err      error
	Duration time.Duration
}

// Runner starts one goroutine per long operation and allows a single
// operation at a time.
type Runner struct {
	post   Poster
	logger logger.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	running string
	stopped bool
	wg      sync.WaitGroup
}

func NewRunner(post Poster, log logger.Logger) *Runner {
	if post == nil {
		post = func(fn func()) { fn() }
	}
	if log == nil {
		log = &logger.NoOpLogger{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{
		post:   post,
		logger: log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches job in the background and returns its id. It fails with
// ErrBusy while another job is running.
func (r *Runner) Start(name string, job Job, onProgress func(Progress), onDone func(Result)) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return "", ErrStopped
	}
	if r.running != "" {
		return "", ErrBusy
	}

	id := uuid.NewString()
	r.running = id
	r.wg.Add(1)

	r.logger.Debug("Worker", "job started", map[string]interface{}{
		"job_id": id,
		"name":   name,
	})

	go r.run(id, name, job, onProgress, onDone)
	return id, nil
}

func (r *Runner) run(id, name string, job Job, onProgress func(Progress), onDone func(Result)) {
	defer r.wg.Done()

	report := func(fraction float64, message string) {
		if onProgress == nil {
			return
		}
		p := Progress{JobID: id, Name: name, Fraction: clamp(fraction), Message: message}
		r.post(func() { onProgress(p) })
	}

	start := time.Now()
	err := r.execute(job, report)
	result := Result{JobID: id, Name: name, Err: err, Duration: time.Since(start)}

	r.mu.Lock()
	r.running = ""
	r.mu.Unlock()

	fields := map[string]interface{}{
		"job_id":      id,
		"name":        name,
		"duration_ms": result.Duration.Milliseconds(),
	}
	if err != nil {
		r.logger.Error("Worker", err, fields)
	} else {
		r.logger.Info("Worker", "job finished", fields)
	}

	if onDone != nil {
		r.post(func() { onDone(result) })
	}
}

func (r *Runner) execute(job Job, report func(float64, string)) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("operation panicked: %v", rec)
		}
	}()
	return job(r.ctx, report)
}

func (r *Runner) Busy() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running != ""
}

// Wait blocks until the running job, if any, has finished.
func (r *Runner) Wait() {
	r.wg.Wait()
}

// Shutdown refuses new jobs, cancels the shared context and waits for the
// running job to return.
func (r *Runner) Shutdown() {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	r.cancel()
	r.wg.Wait()
	r.logger.Info("Worker", "runner stopped", nil)
}

func clamp(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
