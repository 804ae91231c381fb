// Package simulation wires the block state, the four actors, the data
// recorder and the monitor together into one runnable simulation.
package simulation

import (
	"context"

	"github.com/sarchlab/memsim/actor"
	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/inspector"
	"github.com/sarchlab/memsim/monitoring"
)

// A Simulation owns everything a run needs. Build one with a Builder.
type Simulation struct {
	id string

	state     *blocks.State
	recorder  datarecording.DataRecorder
	monitor   *monitoring.Monitor
	group     *actor.Group
	actors    []actor.Ticker
	inspector *inspector.Comp
}

// ID returns the unique ID of this run.
func (s *Simulation) ID() string {
	return s.id
}

// State returns the shared block state.
func (s *Simulation) State() *blocks.State {
	return s.state
}

// DataRecorder returns the data recorder used in the simulation.
func (s *Simulation) DataRecorder() datarecording.DataRecorder {
	return s.recorder
}

// Monitor returns the monitor, or nil if monitoring is disabled.
func (s *Simulation) Monitor() *monitoring.Monitor {
	return s.monitor
}

// Group returns the actor group.
func (s *Simulation) Group() *actor.Group {
	return s.group
}

// Run starts the monitor and all actors, then blocks until ctx ends and all
// actors have stopped. The initial partition is reported before any actor
// runs.
func (s *Simulation) Run(ctx context.Context) {
	if s.monitor != nil {
		s.monitor.StartServer()
	}

	s.inspector.Report(s.state.Snapshot())

	s.group.Start(ctx)
	s.group.Wait()
}

// Terminate flushes and closes the data recorder.
func (s *Simulation) Terminate() {
	s.recorder.Close()
}
