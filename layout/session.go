package layout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Session runs layout computations off the caller's goroutine with at most one
// in flight. Submitting new inputs cancels the previous computation and its
// result, if it still arrives, is discarded.
type Session struct {
	engine *Engine

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu     sync.Mutex
	gen    uint64             // generation of the newest submission
	cancel context.CancelFunc // cancels the in-flight computation
	done   chan struct{}      // closed when the newest submission finishes
	latest *Layout
	fresh  bool // latest has not been returned by Poll yet
	err    error
}

// NewSession creates a session backed by engine.
func NewSession(engine *Engine) *Session {
	ctx, stop := context.WithCancel(context.Background())
	done := make(chan struct{})
	close(done)
	return &Session{
		engine: engine,
		ctx:    ctx,
		stop:   stop,
		done:   done,
	}
}

// Submit starts computing the layout for in, cancelling any computation in flight.
func (s *Session) Submit(in Inputs) {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	ctx, cancel := context.WithCancel(s.ctx)
	s.gen++
	gen := s.gen
	s.cancel = cancel
	done := make(chan struct{})
	s.done = done
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(done)
		defer cancel()

		l, err := s.engine.Compute(ctx, in)

		s.mu.Lock()
		defer s.mu.Unlock()
		if gen != s.gen {
			slog.Debug("discarding stale layout", "generation", gen, "current", s.gen)
			return
		}
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				slog.Warn("layout computation failed", "error", err)
			}
			s.err = err
			return
		}
		s.latest = l
		s.fresh = true
		s.err = nil
	}()
}

// Poll returns the newest completed layout without blocking. ok is true only the
// first time a given layout is returned.
func (s *Session) Poll() (l *Layout, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fresh {
		s.fresh = false
		return s.latest, true
	}
	return s.latest, false
}

// Wait blocks until the newest submission has finished, then returns its layout
// or its error. Submissions made while waiting are waited for too. A failed
// submission returns no layout, even when an older one is still held for Poll.
func (s *Session) Wait(ctx context.Context) (*Layout, error) {
	for {
		s.mu.Lock()
		done := s.done
		s.mu.Unlock()

		select {
		case <-done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		s.mu.Lock()
		if s.done == done {
			defer s.mu.Unlock()
			if s.err != nil {
				return nil, s.err
			}
			s.fresh = false
			return s.latest, nil
		}
		s.mu.Unlock()
	}
}

// Close cancels any computation in flight and waits for it to exit.
func (s *Session) Close() {
	s.stop()
	s.wg.Wait()
}
