// Package worker runs background work on a dedicated OS thread, optionally
// pinning the process to a configured CPU first.
package worker

import (
	"context"
	"log/slog"
	"runtime"

	"github.com/egandro/osbridge/pkg/osquery"
)

// Options configures a worker.
type Options struct {
	Name string
	// CPU to pin the process to before fn runs. osquery.NoProcessorAffinity
	// (or any negative value) skips pinning.
	CPU int
	// Bridge defaults to osquery.New().
	Bridge osquery.OSIdentity
}

// Info describes the thread a worker runs on.
type Info struct {
	Name   string           `json:"name"`
	PID    int32            `json:"pid"`
	TID    osquery.ThreadID `json:"-"`
	CPU    int              `json:"cpu"`
	Pinned bool             `json:"pinned"`
}

// Func is the body of a worker.
type Func func(ctx context.Context, info Info) error

// Run locks the calling goroutine to its OS thread, applies the configured
// affinity and calls fn. A failed pin is logged and fn still runs.
func Run(ctx context.Context, opts Options, fn Func) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	bridge := opts.Bridge
	if bridge == nil {
		bridge = osquery.New()
	}

	info := Info{
		Name: opts.Name,
		PID:  bridge.ProcessID(),
		TID:  bridge.ThreadID(),
		CPU:  opts.CPU,
	}

	if opts.CPU >= 0 {
		res := bridge.SetProcessorAffinity(opts.CPU)
		if res.OK() {
			info.Pinned = true
		} else {
			slog.Warn("Unable to bind worker to processor", "worker", opts.Name, "cpu", opts.CPU, "status", res.Status, "code", res.Code())
		}
	}

	logger := slog.With("worker", opts.Name, "pid", info.PID)
	if tid := info.TID.Int32(); tid != osquery.NoPID {
		logger = logger.With("tid", info.TID)
	}
	logger.Debug("Worker started", "cpu", info.CPU, "pinned", info.Pinned)

	err := fn(ctx, info)
	if err != nil {
		logger.Debug("Worker finished with error", "error", err)
	}
	return err
}

// Handle tracks a worker started with Start.
type Handle struct {
	done chan struct{}
	err  error
}

// Start runs the worker on a new goroutine.
func Start(ctx context.Context, opts Options, fn Func) *Handle {
	h := &Handle{done: make(chan struct{})}
	go func() {
		defer close(h.done)
		h.err = Run(ctx, opts, fn)
	}()
	return h
}

// Wait blocks until the worker returns and yields its error.
func (h *Handle) Wait() error {
	<-h.done
	return h.err
}

// Done is closed when the worker has returned.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
