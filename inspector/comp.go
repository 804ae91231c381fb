// Package inspector implements the read-only actor that periodically reports
// the full state of both block collections.
package inspector

import (
	"fmt"
	"io"

	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
)

const tableName = "inspections"

// An InspectionRecord summarizes one report.
type InspectionRecord struct {
	Tick            int64
	FreeBlocks      int64
	AllocatedBlocks int64
	FreeUnits       int64
	AllocatedUnits  int64
}

// Comp is the inspection actor. It takes a snapshot of the shared state and
// formats it to its writer. It never mutates the state.
type Comp struct {
	name     string
	state    *blocks.State
	recorder datarecording.DataRecorder
	w        io.Writer

	tick int64
}

// Name returns the name of the actor.
func (c *Comp) Name() string {
	return c.name
}

// Tick writes a full report of both collections, free first.
func (c *Comp) Tick() bool {
	c.tick++

	snap := c.state.Snapshot()

	c.Report(snap)

	c.recorder.InsertData(tableName, InspectionRecord{
		Tick:            c.tick,
		FreeBlocks:      int64(len(snap.Free)),
		AllocatedBlocks: int64(len(snap.Allocated)),
		FreeUnits:       snap.FreeUnits(),
		AllocatedUnits:  snap.AllocatedUnits(),
	})

	return true
}

// Report formats one snapshot to the writer.
func (c *Comp) Report(snap blocks.Snapshot) {
	fmt.Fprintf(c.w, "\n==== Free Blocks ====\n")
	reportList(c.w, snap.Free)

	fmt.Fprintf(c.w, "\n==== Allocated Blocks ====\n")
	reportList(c.w, snap.Allocated)
}

func reportList(w io.Writer, infos []blocks.BlockInfo) {
	if len(infos) == 0 {
		fmt.Fprintf(w, "empty\n")
		return
	}

	for _, b := range infos {
		fmt.Fprintf(w, "block %d: base=%d size=%d age=%d\n",
			b.ID, b.Base, b.Size, b.Age)
	}
}
