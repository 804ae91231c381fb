// Package reclaimer implements the garbage-collecting actor. It returns the
// longest-resident allocated block to the free list and folds the free
// fragments that accumulate from splitting back into the reservoir.
package reclaimer

import (
	"log"

	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
)

const tableName = "reclamations"

// A ReclamationRecord is written for every reclaimed block.
type ReclamationRecord struct {
	Tick        int64
	BlockID     int64
	Size        int64
	Age         int64
	Folded      int64
	FoldedUnits int64
}

// Comp is the reclamation actor.
type Comp struct {
	name     string
	state    *blocks.State
	recorder datarecording.DataRecorder
	logger   *log.Logger

	tick int64
}

// Name returns the name of the actor.
func (c *Comp) Name() string {
	return c.name
}

// Tick reclaims the allocated block with the greatest residency age, then
// coalesces. It returns false if nothing is allocated.
func (c *Comp) Tick() bool {
	c.tick++

	res, ok := c.state.Reclaim()
	if !ok {
		c.logger.Printf("nothing to reclaim")
		return false
	}

	c.logger.Printf(
		"reclaimed block %d (%d units) after %d ticks resident, "+
			"folded %d fragments (%d units) into the reservoir",
		res.BlockID, res.Size, res.Age, res.Folded, res.FoldedUnits)

	c.recorder.InsertData(tableName, ReclamationRecord{
		Tick:        c.tick,
		BlockID:     res.BlockID,
		Size:        res.Size,
		Age:         res.Age,
		Folded:      int64(res.Folded),
		FoldedUnits: res.FoldedUnits,
	})

	return true
}
