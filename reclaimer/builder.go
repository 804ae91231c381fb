package reclaimer

import (
	"log"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
)

// Builder can build reclamation actors.
type Builder struct {
	state    *blocks.State
	recorder datarecording.DataRecorder
	logger   *log.Logger
}

// MakeBuilder returns a new Builder.
func MakeBuilder() Builder {
	return Builder{}
}

// WithState sets the shared state the actor reclaims from.
func (b Builder) WithState(state *blocks.State) Builder {
	b.state = state
	return b
}

// WithRecorder sets the data recorder the actor writes records to.
func (b Builder) WithRecorder(recorder datarecording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// WithLogger sets the logger for per-tick status lines.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// Build builds the reclamation actor and creates its recording table.
func (b Builder) Build(name string) (*Comp, error) {
	if b.state == nil {
		return nil, errors.Newf("reclaimer %s needs a state", name)
	}

	c := &Comp{
		name:     name,
		state:    b.state,
		recorder: b.recorder,
		logger:   b.logger,
	}

	if c.recorder == nil {
		c.recorder = datarecording.NewNullRecorder()
	}

	if c.logger == nil {
		c.logger = log.New(os.Stdout, "["+name+"] ", log.LstdFlags)
	}

	c.recorder.CreateTable(tableName, ReclamationRecord{})

	return c, nil
}
