// Package loop schedules animation frames and hosts the terminal session.
package loop

import (
	"context"
	"sync"
	"time"
)

// FrameFunc draws one frame at timestamp, in milliseconds since the animator
// was created. Returning false ends Run.
type FrameFunc func(timestamp float64) bool

// Animator calls a FrameFunc at a fixed rate until stopped.
type Animator struct {
	clock     Clock
	frameTime time.Duration
	frame     FrameFunc
	origin    time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewAnimator creates an animator ticking fps times per second. A nil clock
// uses the system clock.
func NewAnimator(clock Clock, fps int, frame FrameFunc) *Animator {
	if clock == nil {
		clock = SystemClock{}
	}
	if fps <= 0 {
		fps = 60
	}
	return &Animator{
		clock:     clock,
		frameTime: time.Second / time.Duration(fps),
		frame:     frame,
		origin:    clock.Now(),
		stop:      make(chan struct{}),
	}
}

// FrameTime returns the interval between frames.
func (a *Animator) FrameTime() time.Duration {
	return a.frameTime
}

// Now returns the current timestamp in milliseconds.
func (a *Animator) Now() float64 {
	return float64(a.clock.Now().Sub(a.origin)) / float64(time.Millisecond)
}

// Step runs exactly one frame at the current clock time.
func (a *Animator) Step() bool {
	return a.frame(a.Now())
}

// Run draws frames until ctx is cancelled, Stop is called, or the frame
// function returns false.
func (a *Animator) Run(ctx context.Context) {
	ticker := time.NewTicker(a.frameTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		default:
		}

		if !a.Step() {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case <-ticker.C:
		}
	}
}

// Stop ends Run. It is safe to call more than once and from any goroutine.
func (a *Animator) Stop() {
	a.stopOnce.Do(func() { close(a.stop) })
}
