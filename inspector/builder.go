package inspector

import (
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
)

// Builder can build inspection actors.
type Builder struct {
	state    *blocks.State
	recorder datarecording.DataRecorder
	w        io.Writer
}

// MakeBuilder returns a new Builder that reports to stdout.
func MakeBuilder() Builder {
	return Builder{w: os.Stdout}
}

// WithState sets the shared state the actor reports on.
func (b Builder) WithState(state *blocks.State) Builder {
	b.state = state
	return b
}

// WithRecorder sets the data recorder the actor writes summaries to.
func (b Builder) WithRecorder(recorder datarecording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// WithWriter sets the writer the reports are formatted to.
func (b Builder) WithWriter(w io.Writer) Builder {
	b.w = w
	return b
}

// Build builds the inspection actor and creates its recording table.
func (b Builder) Build(name string) (*Comp, error) {
	if b.state == nil {
		return nil, errors.Newf("inspector %s needs a state", name)
	}

	c := &Comp{
		name:     name,
		state:    b.state,
		recorder: b.recorder,
		w:        b.w,
	}

	if c.recorder == nil {
		c.recorder = datarecording.NewNullRecorder()
	}

	if c.w == nil {
		c.w = os.Stdout
	}

	c.recorder.CreateTable(tableName, InspectionRecord{})

	return c, nil
}
