package blocks

import (
	"sync"

	"github.com/cockroachdb/errors"
)

// Stats accumulates counters for the mutations performed on a State.
type Stats struct {
	Allocations        int64
	Splits             int64
	FailedFits         int64
	Reclamations       int64
	CoalescedFragments int64
}

// AllocResult describes the outcome of a successful allocation.
type AllocResult struct {
	BlockID int64
	Base    int64
	Size    int64

	// Split is true if the block was carved out of an oversized candidate. In
	// that case RemainderID and RemainderSize describe the shrunken candidate
	// that stays free.
	Split         bool
	RemainderID   int64
	RemainderSize int64
}

// ReclaimResult describes the outcome of a reclamation, including the
// coalescing pass that follows it.
type ReclaimResult struct {
	BlockID int64
	Size    int64

	// Age is the residency age of the block at the moment it was selected.
	Age int64

	// Folded is the number of fragments the coalescer absorbed into the
	// reservoir; FoldedUnits is their total capacity.
	Folded      int
	FoldedUnits int64
}

// State is the shared resource domain of the simulation: the free and
// allocated block lists plus everything reachable from them, guarded by a
// single mutex. Every exported method takes the lock for the full
// scan-and-mutate sequence it performs, so no partial effect is ever
// observable by another actor.
type State struct {
	mu sync.Mutex

	free      *List
	allocated *List

	totalUnits  int64
	uniformSize int64
	nextID      int64

	stats Stats
}

// NewState partitions numBlocks*blockSize address units into numBlocks equal
// blocks, all free, with IDs 0..numBlocks-1.
func NewState(numBlocks int, blockSize int64) (*State, error) {
	if numBlocks <= 0 {
		return nil, errors.Newf(
			"cannot create state with %d blocks", numBlocks)
	}

	if blockSize <= 0 {
		return nil, errors.Newf(
			"cannot create state with block size %d", blockSize)
	}

	s := &State{
		free:        NewList("free"),
		allocated:   NewList("allocated"),
		totalUnits:  int64(numBlocks) * blockSize,
		uniformSize: blockSize,
		nextID:      int64(numBlocks),
	}

	for i := 0; i < numBlocks; i++ {
		s.free.Append(&Block{
			ID:   int64(i),
			Base: int64(i) * blockSize,
			Size: blockSize,
		})
	}

	return s, nil
}

// TotalUnits returns the size of the simulated address space.
func (s *State) TotalUnits() int64 {
	return s.totalUnits
}

// UniformSize returns the size the initial blocks were created with. Free
// blocks smaller than this are considered fragments by the coalescer.
func (s *State) UniformSize() int64 {
	return s.uniformSize
}

// Allocate services one request of want units with a first-fit scan over the
// free list. The first free block with Size > want is selected. An oversized
// candidate (Size > 2*want) is split: the candidate shrinks in place and a
// new block with a fresh ID takes over the tail end of its extent. Otherwise
// the whole candidate moves to the allocated list. The second return value is
// false if no block fits; that is a normal no-op outcome, not an error.
func (s *State) Allocate(want int64) (AllocResult, bool) {
	if want <= 0 {
		panic("allocation request must be positive")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for b := s.free.Front(); b != nil; b = b.Next() {
		if b.Size <= want {
			continue
		}

		if b.Size > 2*want {
			return s.splitLocked(b, want), true
		}

		b.Age = 0
		s.free.MoveTo(s.allocated, b)
		s.stats.Allocations++

		return AllocResult{BlockID: b.ID, Base: b.Base, Size: b.Size}, true
	}

	s.stats.FailedFits++

	return AllocResult{}, false
}

// splitLocked shrinks candidate by want units and creates a new allocated
// block over the vacated tail-end address range.
func (s *State) splitLocked(candidate *Block, want int64) AllocResult {
	candidate.Size -= want

	derived := &Block{
		ID:   s.nextID,
		Base: candidate.Base + candidate.Size,
		Size: want,
	}
	s.nextID++
	s.allocated.Append(derived)

	s.stats.Allocations++
	s.stats.Splits++

	return AllocResult{
		BlockID:       derived.ID,
		Base:          derived.Base,
		Size:          derived.Size,
		Split:         true,
		RemainderID:   candidate.ID,
		RemainderSize: candidate.Size,
	}
}

// Reclaim moves the longest-resident allocated block back to the free list,
// resetting its age, and then coalesces the free list, all in one critical
// section. It selects by actual maximum age, not by position: split-derived
// insertions break simple FIFO ordering. Returns false if nothing is
// allocated.
func (s *State) Reclaim() (ReclaimResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var oldest *Block
	for b := s.allocated.Front(); b != nil; b = b.Next() {
		if oldest == nil || b.Age > oldest.Age {
			oldest = b
		}
	}

	if oldest == nil {
		return ReclaimResult{}, false
	}

	res := ReclaimResult{
		BlockID: oldest.ID,
		Size:    oldest.Size,
		Age:     oldest.Age,
	}

	oldest.Age = 0
	s.allocated.MoveTo(s.free, oldest)
	s.stats.Reclamations++

	res.Folded, res.FoldedUnits = s.coalesceLocked()

	return res, true
}

// coalesceLocked folds free fragments into the reservoir. The first free
// block is the reservoir; every later member smaller than the uniform block
// size transfers its capacity to the reservoir and disappears. The reservoir
// only grows, so total free capacity is conserved. Fragments are not checked
// for spatial adjacency to the reservoir before merging.
func (s *State) coalesceLocked() (int, int64) {
	reservoir := s.free.Front()
	if reservoir == nil {
		return 0, 0
	}

	folded := 0
	foldedUnits := int64(0)

	b := reservoir.Next()
	for b != nil {
		next := b.Next()

		if b.Size < s.uniformSize {
			reservoir.Size += b.Size
			foldedUnits += b.Size
			s.free.Remove(b)
			folded++
		}

		b = next
	}

	s.stats.CoalescedFragments += int64(folded)

	return folded, foldedUnits
}

// AgeAllocated increments the residency age of every allocated block by one.
// It returns the number of blocks aged.
func (s *State) AgeAllocated() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for b := s.allocated.Front(); b != nil; b = b.Next() {
		b.Age++
		n++
	}

	return n
}
