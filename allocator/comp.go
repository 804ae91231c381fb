// Package allocator implements the actor that services block requests with a
// first-fit scan over the free list.
package allocator

import (
	"log"
	"math/rand"

	"github.com/sarchlab/memsim/blocks"
	"github.com/sarchlab/memsim/datarecording"
)

const tableName = "allocations"

// An AllocationRecord is written for every serviced request.
type AllocationRecord struct {
	Tick    int64
	Want    int64
	BlockID int64
	Base    int64
	Size    int64
	Split   bool
}

// Comp is the allocation actor. On every tick it draws a request size from a
// bounded uniform distribution and services at most one request against the
// shared state. A request that fits nowhere is skipped, not queued.
type Comp struct {
	name     string
	state    *blocks.State
	recorder datarecording.DataRecorder
	rng      *rand.Rand
	logger   *log.Logger

	minRequest int64
	maxRequest int64

	tick int64
}

// Name returns the name of the actor.
func (c *Comp) Name() string {
	return c.name
}

// Tick services one request. It returns false if no free block fits.
func (c *Comp) Tick() bool {
	c.tick++

	want := c.minRequest + c.rng.Int63n(c.maxRequest-c.minRequest+1)

	res, ok := c.state.Allocate(want)
	if !ok {
		c.logger.Printf("no free block fits a request of %d units", want)
		return false
	}

	if res.Split {
		c.logger.Printf(
			"split block %d: %d units at base %d allocated as block %d, "+
				"%d units stay free",
			res.RemainderID, res.Size, res.Base, res.BlockID,
			res.RemainderSize)
	} else {
		c.logger.Printf(
			"allocated whole block %d (%d units at base %d) "+
				"for a request of %d units",
			res.BlockID, res.Size, res.Base, want)
	}

	c.recorder.InsertData(tableName, AllocationRecord{
		Tick:    c.tick,
		Want:    want,
		BlockID: res.BlockID,
		Base:    res.Base,
		Size:    res.Size,
		Split:   res.Split,
	})

	return true
}
