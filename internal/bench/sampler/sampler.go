// Package sampler records a target process's memory usage in the background
// while a run is in progress.
package sampler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// bytesPerMB converts bytes to megabytes (MiB).
const bytesPerMB = 1024 * 1024

// StopReason tells why a sampling loop ended.
type StopReason string

const (
	// ReasonRunning means the loop has not ended yet.
	ReasonRunning StopReason = ""
	// ReasonStopped means Stop was called.
	ReasonStopped StopReason = "stopped"
	// ReasonProcessExited means the target process went away.
	ReasonProcessExited StopReason = "process exited"
	// ReasonQueryError means a memory query failed for another reason.
	ReasonQueryError StopReason = "query error"
	// ReasonCancelled means the parent context was cancelled.
	ReasonCancelled StopReason = "cancelled"
)

// Sampler polls a process's resident memory at a fixed interval and appends
// each reading, in megabytes, to an ordered sequence.
//
// The loop checks for a stop request before every query and waits out the
// interval in a select on the stop channel, so at most one reading can be
// appended after Stop is called and none after the loop exits. A process that
// exits during sampling ends the loop quietly; any other query error also ends
// it early, keeping whatever was collected.
type Sampler struct {
	proc     Process
	interval time.Duration
	logger   *zap.Logger

	mu       sync.Mutex
	readings []float64
	reason   StopReason
	lastErr  error

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithLogger sets the logger used to report why sampling stopped.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Sampler) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Start launches a sampling loop for proc and returns its handle.
// Intervals below one millisecond are raised to one millisecond.
func Start(ctx context.Context, proc Process, interval time.Duration, opts ...Option) *Sampler {
	if interval < time.Millisecond {
		interval = time.Millisecond
	}

	s := &Sampler{
		proc:     proc,
		interval: interval,
		logger:   zap.NewNop(),
		readings: make([]float64, 0, 64),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	go s.loop(ctx)
	return s
}

// loop is the sampling goroutine.
func (s *Sampler) loop(ctx context.Context) {
	defer close(s.doneCh)

	timer := time.NewTimer(s.interval)
	defer timer.Stop()

	for {
		select {
		case <-s.stopCh:
			s.finish(ReasonStopped, nil)
			return
		default:
		}

		bytes, err := s.proc.ResidentMemoryBytes(ctx)
		if err != nil {
			switch {
			case errors.Is(err, ErrProcessNotFound):
				s.finish(ReasonProcessExited, nil)
			case ctx.Err() != nil:
				s.finish(ReasonCancelled, nil)
			default:
				s.finish(ReasonQueryError, err)
			}
			return
		}

		s.mu.Lock()
		s.readings = append(s.readings, bytes/bytesPerMB)
		s.mu.Unlock()

		timer.Reset(s.interval)
		select {
		case <-s.stopCh:
			s.finish(ReasonStopped, nil)
			return
		case <-ctx.Done():
			s.finish(ReasonCancelled, nil)
			return
		case <-timer.C:
		}
	}
}

// finish records why the loop ended.
func (s *Sampler) finish(reason StopReason, err error) {
	s.mu.Lock()
	s.reason = reason
	s.lastErr = err
	count := len(s.readings)
	s.mu.Unlock()

	fields := []zap.Field{
		zap.String("reason", string(reason)),
		zap.Int("samples", count),
		zap.Int32("pid", s.proc.PID()),
	}
	if err != nil {
		s.logger.Warn("memory sampler stopped early", append(fields, zap.Error(err))...)
		return
	}
	s.logger.Debug("memory sampler stopped", fields...)
}

// Stop requests termination, waits for the loop to exit and returns the
// collected readings. It is safe to call more than once.
func (s *Sampler) Stop() []float64 {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
	return s.Readings()
}

// Done is closed once the sampling loop has exited.
func (s *Sampler) Done() <-chan struct{} {
	return s.doneCh
}

// Readings returns a copy of the readings collected so far, in megabytes.
func (s *Sampler) Readings() []float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]float64, len(s.readings))
	copy(out, s.readings)
	return out
}

// Reason returns why the loop ended, or ReasonRunning while it is active.
func (s *Sampler) Reason() StopReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

// Err returns the query error that ended the loop, if any.
func (s *Sampler) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}
