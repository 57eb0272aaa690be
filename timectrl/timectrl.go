// Package timectrl paces episode playback. Training steps the simulator as
// fast as it can; demos and debugging want wall-clock pacing instead.
package timectrl

import (
	"sync"
	"time"
)

// Mode describes how the Pacer advances simulation steps.
type Mode int

const (
	// RealTime advances one step per simulated time-step of wall time, so
	// playback runs at natural speed.
	RealTime Mode = iota
	// Accelerated advances as quickly as the step callbacks can run.
	Accelerated
)

// Pacer drives a step callback at the configured cadence and tracks elapsed
// simulation time.
type Pacer struct {
	mu sync.RWMutex

	StepDuration time.Duration
	Mode         Mode

	elapsed time.Duration

	listeners []func(time.Duration)
}

// NewPacer constructs a pacer stepping by step, paced per mode.
func NewPacer(step time.Duration, mode Mode) *Pacer {
	return &Pacer{StepDuration: step, Mode: mode}
}

// Elapsed returns the simulation time advanced so far.
func (p *Pacer) Elapsed() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.elapsed
}

// AddListener registers a callback invoked on every step with the elapsed
// simulation time after the step.
func (p *Pacer) AddListener(fn func(time.Duration)) {
	p.listeners = append(p.listeners, fn)
}

// Run advances steps until stop returns true, pacing by mode. It returns a
// channel that is closed when the run finishes.
func (p *Pacer) Run(stop func() bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		var ticker *time.Ticker
		if p.Mode == RealTime {
			ticker = time.NewTicker(p.StepDuration)
			defer ticker.Stop()
		}

		for !stop() {
			if ticker != nil {
				<-ticker.C
			}

			p.mu.Lock()
			p.elapsed += p.StepDuration
			elapsed := p.elapsed
			p.mu.Unlock()

			for _, fn := range p.listeners {
				fn(elapsed)
			}
		}
	}()
	return done
}
