package simulation

import (
	"io"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/rs/xid"

	"github.com/sarchlab/memsim/actor"
	"github.com/sarchlab/memsim/agingclock"
	"github.com/sarchlab/memsim/allocator"
	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
	"github.com/sarchlab/memsim/inspector"
	"github.com/sarchlab/memsim/monitoring"
	"github.com/sarchlab/memsim/reclaimer"
)

// Builder can be used to build a simulation.
type Builder struct {
	numBlocks int
	blockSize int64

	baseTick   time.Duration
	minRequest int64
	maxRequest int64
	seed       int64

	recordingOn    bool
	outputFileName string

	monitorOn     bool
	monitorPort   int
	launchBrowser bool

	reportWriter io.Writer
	logWriter    io.Writer
}

// MakeBuilder creates a new builder with the classic lab parameters: three
// blocks of 1024 units, tick intervals in the ratio 1:1:2:5 for allocation,
// aging, reclamation and inspection.
func MakeBuilder() Builder {
	return Builder{
		numBlocks:    3,
		blockSize:    1024,
		baseTick:     time.Second,
		minRequest:   10,
		maxRequest:   50,
		recordingOn:  true,
		monitorOn:    true,
		reportWriter: os.Stdout,
		logWriter:    os.Stdout,
	}
}

// WithNumBlocks sets the number of initial blocks.
func (b Builder) WithNumBlocks(n int) Builder {
	b.numBlocks = n
	return b
}

// WithBlockSize sets the uniform size of the initial blocks.
func (b Builder) WithBlockSize(size int64) Builder {
	b.blockSize = size
	return b
}

// WithBaseTick sets the base tick interval. The allocation and aging actors
// tick every base tick, the reclaimer every 2 base ticks, the inspector every
// 5 base ticks.
func (b Builder) WithBaseTick(d time.Duration) Builder {
	b.baseTick = d
	return b
}

// WithRequestBounds sets the inclusive bounds of the allocation request
// distribution.
func (b Builder) WithRequestBounds(min, max int64) Builder {
	b.minRequest = min
	b.maxRequest = max
	return b
}

// WithSeed seeds the request distribution, making runs reproducible. A zero
// seed picks a random one.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	return b
}

// WithoutRecording disables the SQLite data recorder.
func (b Builder) WithoutRecording() Builder {
	b.recordingOn = false
	return b
}

// WithOutputFileName sets the custom output file name for the data recorder.
func (b Builder) WithOutputFileName(filename string) Builder {
	b.outputFileName = filename
	return b
}

// WithoutMonitoring sets the simulation to not use monitoring.
func (b Builder) WithoutMonitoring() Builder {
	b.monitorOn = false
	return b
}

// WithMonitorPort sets the port number for the monitoring server.
func (b Builder) WithMonitorPort(port int) Builder {
	b.monitorPort = port
	return b
}

// WithBrowserLaunch makes the monitor open the state page in the default
// browser on startup.
func (b Builder) WithBrowserLaunch() Builder {
	b.launchBrowser = true
	return b
}

// WithReportWriter sets the writer inspection reports are formatted to.
func (b Builder) WithReportWriter(w io.Writer) Builder {
	b.reportWriter = w
	return b
}

// WithLogWriter sets the writer actor status lines go to.
func (b Builder) WithLogWriter(w io.Writer) Builder {
	b.logWriter = w
	return b
}

func (b Builder) parametersMustBeValid() {
	if !b.monitorOn && b.monitorPort != 0 {
		panic("monitor port cannot be set when monitoring is disabled")
	}

	if !b.monitorOn && b.launchBrowser {
		panic("browser launch cannot be set when monitoring is disabled")
	}

	if !b.recordingOn && b.outputFileName != "" {
		panic("output file name cannot be set when recording is disabled")
	}
}

// Build builds the simulation. Failure to construct the state or one of the
// essential actors is fatal; a failing aging clock only costs the reclaimer
// its age signal, so it is downgraded to a warning.
func (b Builder) Build() (*Simulation, error) {
	b.parametersMustBeValid()

	s := &Simulation{
		id:    xid.New().String(),
		group: actor.NewGroup(),
	}

	var err error
	s.state, err = blocks.NewState(b.numBlocks, b.blockSize)
	if err != nil {
		return nil, errors.Wrap(err, "building initial state")
	}

	s.recorder = b.buildRecorder(s.id)

	err = b.buildActors(s)
	if err != nil {
		return nil, err
	}

	if b.monitorOn {
		s.monitor = b.buildMonitor(s)
	}

	return s, nil
}

func (b Builder) buildRecorder(id string) datarecording.DataRecorder {
	if !b.recordingOn {
		return datarecording.NewNullRecorder()
	}

	outputPath := b.outputFileName
	if outputPath == "" {
		outputPath = "memsim_" + id
	}

	writer := datarecording.NewSQLiteWriter(outputPath)
	err := writer.Init()
	if err != nil {
		panic(err)
	}

	return writer
}

func (b Builder) buildActors(s *Simulation) error {
	seed := b.seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	alloc, err := allocator.MakeBuilder().
		WithState(s.state).
		WithRecorder(s.recorder).
		WithRand(rand.New(rand.NewSource(seed))).
		WithLogger(log.New(b.logWriter, "[Allocator] ", log.LstdFlags)).
		WithRequestBounds(b.minRequest, b.maxRequest).
		Build("Allocator")
	if err != nil {
		return errors.Wrap(err, "building allocator")
	}

	reclaim, err := reclaimer.MakeBuilder().
		WithState(s.state).
		WithRecorder(s.recorder).
		WithLogger(log.New(b.logWriter, "[Reclaimer] ", log.LstdFlags)).
		Build("Reclaimer")
	if err != nil {
		return errors.Wrap(err, "building reclaimer")
	}

	inspect, err := inspector.MakeBuilder().
		WithState(s.state).
		WithRecorder(s.recorder).
		WithWriter(b.reportWriter).
		Build("Inspector")
	if err != nil {
		return errors.Wrap(err, "building inspector")
	}

	s.inspector = inspect
	s.actors = []actor.Ticker{alloc, reclaim, inspect}

	intervals := []time.Duration{b.baseTick, 2 * b.baseTick, 5 * b.baseTick}
	for i, t := range s.actors {
		runner, err := actor.NewRunner(t, intervals[i])
		if err != nil {
			return errors.Wrapf(err, "starting %s", t.Name())
		}

		s.group.Add(runner)
	}

	// The simulation still satisfies its invariants without the aging clock;
	// reclamation just degenerates to arrival order.
	clock, err := agingclock.NewComp("AgingClock", s.state)
	if err == nil {
		var runner *actor.Runner
		runner, err = actor.NewRunner(clock, b.baseTick)
		if err == nil {
			s.actors = append(s.actors, clock)
			s.group.Add(runner)
		}
	}
	if err != nil {
		log.New(os.Stderr, "", log.LstdFlags).
			Printf("warning: aging clock disabled: %s", err)
	}

	return nil
}

func (b Builder) buildMonitor(s *Simulation) *monitoring.Monitor {
	monitor := monitoring.NewMonitor()

	if b.monitorPort > 0 {
		monitor.WithPortNumber(b.monitorPort)
	}

	if b.launchBrowser {
		monitor.WithBrowserLaunch()
	}

	monitor.RegisterState(s.state)
	monitor.RegisterGroup(s.group)
	for _, a := range s.actors {
		monitor.RegisterActor(a)
	}

	return monitor
}
