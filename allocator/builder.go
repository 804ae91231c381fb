package allocator

import (
	"log"
	"math/rand"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
)

// Builder can build allocation actors.
type Builder struct {
	state      *blocks.State
	recorder   datarecording.DataRecorder
	rng        *rand.Rand
	logger     *log.Logger
	minRequest int64
	maxRequest int64
}

// MakeBuilder returns a Builder with default request bounds of 10-50 units.
func MakeBuilder() Builder {
	return Builder{
		minRequest: 10,
		maxRequest: 50,
	}
}

// WithState sets the shared state the actor allocates from.
func (b Builder) WithState(state *blocks.State) Builder {
	b.state = state
	return b
}

// WithRecorder sets the data recorder the actor writes allocation records to.
func (b Builder) WithRecorder(recorder datarecording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// WithRand sets the random source the request sizes are drawn from.
func (b Builder) WithRand(rng *rand.Rand) Builder {
	b.rng = rng
	return b
}

// WithLogger sets the logger for per-tick status lines.
func (b Builder) WithLogger(logger *log.Logger) Builder {
	b.logger = logger
	return b
}

// WithRequestBounds sets the inclusive bounds of the request distribution.
func (b Builder) WithRequestBounds(min, max int64) Builder {
	b.minRequest = min
	b.maxRequest = max
	return b
}

// Build builds the allocation actor and creates its recording table.
func (b Builder) Build(name string) (*Comp, error) {
	if b.state == nil {
		return nil, errors.Newf("allocator %s needs a state", name)
	}

	if b.minRequest <= 0 || b.maxRequest < b.minRequest {
		return nil, errors.Newf(
			"allocator %s has invalid request bounds [%d, %d]",
			name, b.minRequest, b.maxRequest)
	}

	c := &Comp{
		name:       name,
		state:      b.state,
		recorder:   b.recorder,
		rng:        b.rng,
		logger:     b.logger,
		minRequest: b.minRequest,
		maxRequest: b.maxRequest,
	}

	if c.recorder == nil {
		c.recorder = datarecording.NewNullRecorder()
	}

	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(rand.Int63()))
	}

	if c.logger == nil {
		c.logger = log.New(os.Stdout, "["+name+"] ", log.LstdFlags)
	}

	c.recorder.CreateTable(tableName, AllocationRecord{})

	return c, nil
}
