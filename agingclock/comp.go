// Package agingclock implements the actor that advances the residency age of
// every allocated block, which is what the reclaimer's oldest-first policy
// keys on.
package agingclock

import (
	"github.com/cockroachdb/errors"
	"github.com/sarchlab/memsim/blocks"
)

// Comp is the aging-clock actor. It performs a pure per-block increment and
// never changes list topology.
type Comp struct {
	name  string
	state *blocks.State
}

// NewComp creates an aging clock over the given state.
func NewComp(name string, state *blocks.State) (*Comp, error) {
	if state == nil {
		return nil, errors.Newf("aging clock %s needs a state", name)
	}

	return &Comp{name: name, state: state}, nil
}

// Name returns the name of the actor.
func (c *Comp) Name() string {
	return c.name
}

// Tick ages every allocated block by one. It returns false if nothing is
// allocated.
func (c *Comp) Tick() bool {
	return c.state.AgeAllocated() > 0
}
