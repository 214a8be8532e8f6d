package layout

import (
	"context"

	"github.com/matzehuels/cola/pkg/errors"
)

// Tick advances a started layout by one step.
//
// It returns StatusStopped if Stop was called, and StatusConverged once
// alpha has fallen below the convergence threshold, setting it to 0.
// Every tick invalidates the edge routing graph.
func (l *Layout) Tick() (Status, error) {
	if !l.started {
		return StatusStopped, errors.New(errors.ErrCodeNotReady, "tick before start")
	}
	if l.stopped {
		l.alpha = 0
		return StatusStopped, nil
	}
	if l.descent == nil || l.alpha < l.cfg.ConvergenceThreshold {
		l.alpha = 0
		l.observer.OnConverged(l.tickEvent())
		return StatusConverged, nil
	}

	l.lockFixed()
	disp, err := l.descent.RungeKutta()
	if err != nil {
		l.alpha = 0
		return StatusStopped, projectionError(err, "tick")
	}
	l.alpha = disp
	l.vg = nil
	l.syncPositions()
	l.stress = l.descent.ComputeStress()
	l.observer.OnTick(l.tickEvent())
	return StatusRunning, nil
}

func (l *Layout) tickEvent() TickEvent {
	return TickEvent{Alpha: l.alpha, Stress: l.stress, Positions: l.Positions()}
}

// Resume restarts a layout at rest with a little energy.
func (l *Layout) Resume() {
	l.stopped = false
	if l.alpha == 0 {
		l.alpha = resumeAlpha
	}
}

// Stop makes the next tick return StatusStopped. It never interrupts a
// tick in progress.
func (l *Layout) Stop() { l.stopped = true }

// Run ticks until the layout stops or converges, or ctx is done.
func (l *Layout) Run(ctx context.Context) (Status, error) {
	for {
		if err := ctx.Err(); err != nil {
			return StatusStopped, err
		}
		st, err := l.Tick()
		if err != nil || st != StatusRunning {
			return st, err
		}
	}
}
