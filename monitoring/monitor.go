// Package monitoring turns a running simulation into a small web server that
// reports live block state and can pause and resume the actors.
package monitoring

import (
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/memsim/actor"
	"github.com/sarchlab/memsim/blocks"
)

// Monitor exposes a simulation over HTTP for external observation and
// control.
type Monitor struct {
	state  *blocks.State
	group  *actor.Group
	actors []actor.Ticker

	portNumber    int
	launchBrowser bool
	startedAt     time.Time
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowserLaunch makes StartServer open the state page in the default
// browser.
func (m *Monitor) WithBrowserLaunch() *Monitor {
	m.launchBrowser = true
	return m
}

// RegisterState registers the shared block state to report on.
func (m *Monitor) RegisterState(s *blocks.State) {
	m.state = s
}

// RegisterGroup registers the actor group so the monitor can pause and resume
// the simulation.
func (m *Monitor) RegisterGroup(g *actor.Group) {
	m.group = g
}

// RegisterActor registers an actor for introspection.
func (m *Monitor) RegisterActor(t actor.Ticker) {
	m.actors = append(m.actors, t)
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	m.startedAt = time.Now()

	r := mux.NewRouter()
	r.HandleFunc("/api/pause", m.pauseActors)
	r.HandleFunc("/api/continue", m.continueActors)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/blocks", m.listBlocks)
	r.HandleFunc("/api/stats", m.listStats)
	r.HandleFunc("/api/actors", m.listActors)
	r.HandleFunc("/api/actor/{name}", m.listActorDetails)
	r.HandleFunc("/api/resource", m.listResources)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring simulation with %s\n", url)

	go func() {
		err := http.Serve(listener, r)
		dieOnErr(err)
	}()

	if m.launchBrowser {
		err := browser.OpenURL(url + "/api/blocks")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot open browser: %s\n", err)
		}
	}
}

func (m *Monitor) pauseActors(w http.ResponseWriter, _ *http.Request) {
	m.group.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueActors(w http.ResponseWriter, _ *http.Request) {
	m.group.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	uptime := time.Since(m.startedAt).Seconds()
	fmt.Fprintf(w, "{\"uptime\":%.3f}", uptime)
}

func (m *Monitor) listBlocks(w http.ResponseWriter, _ *http.Request) {
	snap := m.state.Snapshot()

	bytes, err := json.Marshal(snap)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listStats(w http.ResponseWriter, _ *http.Request) {
	stats := m.state.Stats()

	bytes, err := json.Marshal(stats)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func (m *Monitor) listActors(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprint(w, "[")
	for i, a := range m.actors {
		if i > 0 {
			fmt.Fprint(w, ",")
		}

		fmt.Fprintf(w, "\"%s\"", a.Name())
	}
	fmt.Fprint(w, "]")
}

func (m *Monitor) listActorDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	a := m.findActorOr404(w, name)
	if a == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(a)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) findActorOr404(
	w http.ResponseWriter,
	name string,
) actor.Ticker {
	for _, a := range m.actors {
		if a.Name() == name {
			return a
		}
	}

	w.WriteHeader(404)

	return nil
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	proc, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memorySize, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	}

	bytes, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
