// Package timer drives the focus countdown stored in state.State.
//
// A Driver owns a ticker goroutine while a session runs. The goroutine never
// touches the state itself: each tick is handed to a Dispatcher, which must
// run it on the loop that owns the state (the Bubble Tea program, for the
// TUI).
package timer

import (
	"sync/atomic"
	"time"

	"lever/internal/state"

	"go.uber.org/zap"
)

// Period is the interval between ticks. Each tick adds one second of
// elapsed time.
const Period = time.Second

// Dispatcher runs fn on the goroutine that owns the state.
type Dispatcher func(fn func())

// Option configures a Driver.
type Option func(*Driver)

// WithPeriod overrides the tick interval. Tests use it to run sessions fast.
func WithPeriod(d time.Duration) Option {
	return func(drv *Driver) {
		if d > 0 {
			drv.period = d
		}
	}
}

// WithDispatcher sets how ticks are delivered to the owning loop.
func WithDispatcher(dispatch Dispatcher) Option {
	return func(drv *Driver) {
		if dispatch != nil {
			drv.dispatch = dispatch
		}
	}
}

// WithOnComplete registers fn to run, on the owning loop, when a session
// reaches its full duration.
func WithOnComplete(fn func()) Option {
	return func(drv *Driver) {
		drv.onComplete = fn
	}
}

// WithLogger sets the logger used for session events.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(drv *Driver) {
		if log != nil {
			drv.log = log
		}
	}
}

// Driver starts, pauses, and resets the focus timer and advances it once per
// tick while it runs.
type Driver struct {
	st         *state.State
	period     time.Duration
	dispatch   Dispatcher
	onComplete func()
	log        *zap.SugaredLogger

	// gen identifies the current ticker; ticks from an older one are
	// dropped. Read from the ticker goroutine when the default dispatcher
	// runs ticks inline.
	gen    atomic.Uint64
	stop   chan struct{}
	closed bool
}

// New returns a Driver for st. A nil st yields a driver whose operations do
// nothing. The default dispatcher runs ticks inline on the ticker goroutine,
// which is only safe when nothing else uses st concurrently.
func New(st *state.State, opts ...Option) *Driver {
	d := &Driver{
		st:       st,
		period:   Period,
		dispatch: func(fn func()) { fn() },
		log:      zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.log = d.log.With("component", "timer")
	return d
}

func (d *Driver) usable() bool {
	return !d.closed && d.st != nil && !d.st.Closed()
}

// Running reports whether ticks are currently scheduled.
func (d *Driver) Running() bool {
	return d.stop != nil
}

// Start begins a session. It does nothing if the timer is already running.
func (d *Driver) Start() {
	if !d.usable() || d.st.Timer().IsRunning {
		return
	}
	d.st.SetTimerRunning(true)
	d.startTicking()
	d.log.Debugw("timer started", "elapsed", d.st.Timer().Elapsed)
}

// Resume restarts ticking for a session that was running when the process
// last exited. The state is left as loaded.
func (d *Driver) Resume() {
	if !d.usable() || !d.st.Timer().IsRunning || d.Running() {
		return
	}
	d.startTicking()
	d.log.Debugw("timer resumed", "elapsed", d.st.Timer().Elapsed)
}

// Pause stops ticking and persists the elapsed time. Pausing a stopped timer
// is harmless.
func (d *Driver) Pause() {
	d.stopTicking()
	if !d.usable() {
		return
	}
	d.st.SetTimerRunning(false)
	d.st.Save()
	d.log.Debugw("timer paused", "elapsed", d.st.Timer().Elapsed)
}

// Reset stops ticking and replaces the session with a fresh one.
func (d *Driver) Reset() {
	d.stopTicking()
	if !d.usable() {
		return
	}
	d.st.ResetTimer()
	d.log.Debugw("timer reset")
}

// Toggle pauses a running timer and starts a stopped one.
func (d *Driver) Toggle() {
	if !d.usable() {
		return
	}
	if d.st.Timer().IsRunning {
		d.Pause()
		return
	}
	d.Start()
}

// Tick advances a running timer by one second and finishes the session when
// it reaches its duration.
func (d *Driver) Tick() {
	if !d.usable() || !d.st.Timer().IsRunning {
		return
	}
	d.st.AdvanceTimer(1)
	if !d.st.Timer().IsComplete() {
		return
	}

	d.Pause()
	d.log.Debugw("timer complete", "duration", d.st.Timer().Duration)
	if d.onComplete != nil {
		d.onComplete()
	}
}

// Close stops ticking for good. Later calls do nothing.
func (d *Driver) Close() {
	d.stopTicking()
	d.closed = true
}

func (d *Driver) startTicking() {
	d.stopTicking()

	gen := d.gen.Add(1)
	stop := make(chan struct{})
	d.stop = stop

	go func() {
		ticker := time.NewTicker(d.period)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				d.dispatch(func() { d.tickFrom(gen) })
			}
		}
	}()
}

func (d *Driver) stopTicking() {
	if d.stop == nil {
		return
	}
	close(d.stop)
	d.stop = nil
	d.gen.Add(1)
}

// tickFrom drops ticks that were already in flight when their ticker was
// stopped.
func (d *Driver) tickFrom(gen uint64) {
	if gen != d.gen.Load() {
		return
	}
	d.Tick()
}
