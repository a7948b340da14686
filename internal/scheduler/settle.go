package scheduler

import "sync"

// Settler fires a callback once a fixed number of consecutive frames elapse
// with no invalidation in between. Arming an already-armed settler restarts
// the countdown, as does Invalidate.
type Settler struct {
	loop   *Loop
	frames int

	mu        sync.Mutex
	fn        func()
	remaining int
	active    bool
	cancel    func()
}

// NewSettler creates a settler requiring the given number of stable frames.
func NewSettler(loop *Loop, frames int) *Settler {
	return &Settler{loop: loop, frames: frames}
}

// Arm starts (or restarts) the countdown toward fn.
func (s *Settler) Arm(fn func()) {
	s.mu.Lock()
	s.fn = fn
	s.remaining = s.frames
	if !s.active {
		s.active = true
		s.cancel = s.loop.OnFrame(s.tick)
	}
	s.mu.Unlock()
}

// Invalidate restarts the countdown without changing the callback. A no-op
// when the settler is not armed.
func (s *Settler) Invalidate() {
	s.mu.Lock()
	if s.active {
		s.remaining = s.frames
	}
	s.mu.Unlock()
}

// Cancel disarms the settler without firing.
func (s *Settler) Cancel() {
	s.mu.Lock()
	s.disarmLocked()
	s.mu.Unlock()
}

// Armed reports whether a countdown is in progress.
func (s *Settler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

func (s *Settler) tick() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.remaining--
	if s.remaining > 0 {
		s.mu.Unlock()
		return
	}
	fn := s.fn
	s.disarmLocked()
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func (s *Settler) disarmLocked() {
	s.active = false
	s.fn = nil
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Signal is a one-shot completion signal. It resolves or rejects exactly
// once; later calls are no-ops. Err is meaningful only after Done is closed.
type Signal struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewSignal creates a pending signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Done is closed when the signal settles.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Err returns the rejection reason, or nil for fulfillment.
func (s *Signal) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Settled reports whether the signal has resolved or rejected.
func (s *Signal) Settled() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Resolve fulfills the signal.
func (s *Signal) Resolve() {
	s.once.Do(func() { close(s.done) })
}

// Reject settles the signal with err.
func (s *Signal) Reject(err error) {
	s.once.Do(func() {
		s.err = err
		close(s.done)
	})
}
