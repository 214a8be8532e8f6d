package layout

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/cola/pkg/core/geom"
)

// Status is the outcome of a tick.
type Status int

const (
	StatusRunning Status = iota
	StatusConverged
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusConverged:
		return "converged"
	case StatusStopped:
		return "stopped"
	default:
		return "running"
	}
}

// Phase is a stage of Start.
type Phase int

const (
	PhaseUnconstrained Phase = iota
	PhaseUserConstraints
	PhaseAllConstraints
	PhaseGridSnap
)

func (p Phase) String() string {
	switch p {
	case PhaseUserConstraints:
		return "user-constraints"
	case PhaseAllConstraints:
		return "all-constraints"
	case PhaseGridSnap:
		return "grid-snap"
	default:
		return "unconstrained"
	}
}

// PhaseEvent announces a phase.
type PhaseEvent struct {
	Phase      Phase
	Iterations int
}

// TickEvent reports the state after a tick.
type TickEvent struct {
	Alpha     float64
	Stress    float64
	Positions []geom.Point
}

// Observer receives layout notifications. Calls are synchronous and made
// from the goroutine driving the layout.
type Observer interface {
	OnPhaseStart(PhaseEvent)
	OnTick(TickEvent)
	OnConverged(TickEvent)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnPhaseStart(PhaseEvent) {}
func (NopObserver) OnTick(TickEvent)        {}
func (NopObserver) OnConverged(TickEvent)   {}

// Option configures a Layout.
type Option func(*Layout)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option { return func(lay *Layout) { lay.logger = l } }

// WithObserver sets the observer.
func WithObserver(o Observer) Option { return func(lay *Layout) { lay.observer = o } }
