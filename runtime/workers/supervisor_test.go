package workers

import (
	"context"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// countingWorker panics on every run and counts its invocations.
type countingWorker struct {
	calls atomic.Int32
}

func (w *countingWorker) Run(ctx context.Context) error {
	w.calls.Add(1)
	panic("boom")
}

// oneShotWorker terminates cleanly on the first run.
type oneShotWorker struct{}

func (oneShotWorker) Run(ctx context.Context) error { return nil }

func TestSupervisor_RestartOnPanic(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	worker := &countingWorker{}
	sup := NewSupervisor(log, 10*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	go sup.Add(worker).Run(ctx)

	// Waiting for panics and restarts
	time.Sleep(400 * time.Millisecond)

	req.GreaterOrEqual(worker.calls.Load(), int32(2))
}

func TestSupervisor_StopOnSuccess(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	sup := NewSupervisor(log, 10*time.Millisecond)

	// Given a channel to notify when Run() terminated
	done := make(chan struct{})

	go func() {
		sup.Add(oneShotWorker{}).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
		// Then the supervisor detected a success and stopped without restart
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after worker success")
	}
}

func TestSupervisor_StopCancelsWorkers(t *testing.T) {
	req := require.New(t)
	log := slog.Default()

	// Given a worker blocked on its context
	blocked := make(chan struct{})
	sup := NewSupervisor(log, 10*time.Millisecond)
	sup.Add(workerFunc(func(ctx context.Context) error {
		defer close(blocked)
		<-ctx.Done()
		return nil
	}))

	done := make(chan struct{})
	go func() {
		sup.Run(context.Background())
		close(done)
	}()

	// When stopping the supervisor, then everything unwinds
	time.Sleep(50 * time.Millisecond)
	sup.Stop()

	select {
	case <-done:
		<-blocked
	case <-time.After(500 * time.Millisecond):
		req.Fail("Supervisor should have stopped after Stop()")
	}
}

type workerFunc func(ctx context.Context) error

func (f workerFunc) Run(ctx context.Context) error { return f(ctx) }
