// Package scheduler provides the virtualizer's cooperative scheduling
// primitives: a single-threaded task loop with microtask coalescing, frame
// callbacks with stable-frame settlement, and one-shot completion signals.
//
// The loop does not spawn goroutines. Whoever owns the engine drives it:
// tests call RunUntilIdle and Frame directly, the terminal integration
// drives it from Bubble Tea's update loop.
package scheduler

import "sync"

// Loop is a cooperative task queue with two tiers. Tasks model macrotasks;
// microtasks drain completely after every task, so all synchronous work
// queued within one task coalesces before the next task runs. Frame
// callbacks model animation-frame boundaries and fire only when the driver
// calls Frame.
type Loop struct {
	mu    sync.Mutex
	tasks []func()
	micro []func()
	frame []*frameSub
}

type frameSub struct {
	fn      func()
	removed bool
}

// NewLoop creates an empty loop.
func NewLoop() *Loop {
	return &Loop{}
}

// Post queues fn as a task for the next RunUntilIdle.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.tasks = append(l.tasks, fn)
	l.mu.Unlock()
}

// Microtask queues fn to run at the current microtask boundary: before the
// next task, and within the current drain if one is in progress.
func (l *Loop) Microtask(fn func()) {
	l.mu.Lock()
	l.micro = append(l.micro, fn)
	l.mu.Unlock()
}

// OnFrame registers a persistent frame callback and returns its cancel.
func (l *Loop) OnFrame(fn func()) func() {
	sub := &frameSub{fn: fn}
	l.mu.Lock()
	l.frame = append(l.frame, sub)
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		sub.removed = true
		l.mu.Unlock()
	}
}

// RunUntilIdle processes queued tasks, draining microtasks after each, until
// both queues are empty.
func (l *Loop) RunUntilIdle() {
	for {
		l.drainMicrotasks()
		l.mu.Lock()
		if len(l.tasks) == 0 {
			l.mu.Unlock()
			return
		}
		task := l.tasks[0]
		l.tasks = l.tasks[1:]
		l.mu.Unlock()

		task()
		l.drainMicrotasks()
	}
}

// Frame fires all live frame callbacks, then runs until idle. It models one
// animation-frame boundary followed by the work it provoked.
func (l *Loop) Frame() {
	l.mu.Lock()
	subs := make([]*frameSub, 0, len(l.frame))
	live := l.frame[:0]
	for _, sub := range l.frame {
		if !sub.removed {
			subs = append(subs, sub)
			live = append(live, sub)
		}
	}
	l.frame = live
	l.mu.Unlock()

	for _, sub := range subs {
		if !sub.removed {
			sub.fn()
		}
	}
	l.RunUntilIdle()
}

func (l *Loop) drainMicrotasks() {
	for {
		l.mu.Lock()
		if len(l.micro) == 0 {
			l.mu.Unlock()
			return
		}
		fn := l.micro[0]
		l.micro = l.micro[1:]
		l.mu.Unlock()
		fn()
	}
}

// Coalescer deduplicates scheduled units of work by identity. Scheduling a
// key that is already pending is a no-op; the unit runs exactly once at the
// next microtask boundary, after which the key may be scheduled again.
type Coalescer struct {
	loop    *Loop
	mu      sync.Mutex
	pending map[string]bool
}

// NewCoalescer creates a coalescer bound to the given loop.
func NewCoalescer(loop *Loop) *Coalescer {
	return &Coalescer{loop: loop, pending: make(map[string]bool)}
}

// Schedule queues the named unit unless it is already pending.
func (c *Coalescer) Schedule(key string, fn func()) {
	c.mu.Lock()
	if c.pending[key] {
		c.mu.Unlock()
		return
	}
	c.pending[key] = true
	c.mu.Unlock()

	c.loop.Microtask(func() {
		c.mu.Lock()
		delete(c.pending, key)
		c.mu.Unlock()
		fn()
	})
}

// Pending reports whether the named unit is scheduled but not yet run.
func (c *Coalescer) Pending(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending[key]
}
