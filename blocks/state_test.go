package blocks

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// stateWithFreeSizes builds a state whose free list holds blocks of the given
// sizes, in order, packed back to back in the address space.
func stateWithFreeSizes(uniformSize int64, sizes ...int64) *State {
	s := &State{
		free:        NewList("free"),
		allocated:   NewList("allocated"),
		uniformSize: uniformSize,
	}

	base := int64(0)
	for i, size := range sizes {
		s.free.Append(&Block{ID: int64(i), Base: base, Size: size})
		base += size
		s.totalUnits += size
	}
	s.nextID = int64(len(sizes))

	return s
}

func conserved(s *State) int64 {
	snap := s.Snapshot()
	return snap.FreeUnits() + snap.AllocatedUnits()
}

var _ = Describe("State", func() {
	It("should partition the address space into uniform free blocks", func() {
		s, err := NewState(3, 1024)

		Expect(err).To(BeNil())
		snap := s.Snapshot()
		Expect(snap.Free).To(HaveLen(3))
		Expect(snap.Allocated).To(BeEmpty())
		Expect(snap.Free[0]).To(Equal(BlockInfo{ID: 0, Base: 0, Size: 1024}))
		Expect(snap.Free[1]).To(Equal(BlockInfo{ID: 1, Base: 1024, Size: 1024}))
		Expect(snap.Free[2]).To(Equal(BlockInfo{ID: 2, Base: 2048, Size: 1024}))
		Expect(s.TotalUnits()).To(Equal(int64(3072)))
	})

	It("should refuse a non-positive block count", func() {
		_, err := NewState(0, 1024)

		Expect(err).NotTo(BeNil())
	})

	It("should refuse a non-positive block size", func() {
		_, err := NewState(3, 0)

		Expect(err).NotTo(BeNil())
	})

	Context("when allocating", func() {
		It("should split the first fitting oversized block", func() {
			s := stateWithFreeSizes(1024, 5, 100, 30)

			res, ok := s.Allocate(20)

			Expect(ok).To(BeTrue())
			Expect(res.Split).To(BeTrue())
			Expect(res.Size).To(Equal(int64(20)))
			Expect(res.RemainderID).To(Equal(int64(1)))
			Expect(res.RemainderSize).To(Equal(int64(80)))

			snap := s.Snapshot()
			Expect(snap.Free).To(HaveLen(3))
			Expect(snap.Free[1].Size).To(Equal(int64(80)))
			Expect(snap.Allocated).To(HaveLen(1))
			Expect(snap.Allocated[0].Size).To(Equal(int64(20)))
			Expect(snap.Allocated[0].Age).To(Equal(int64(0)))
			Expect(conserved(s)).To(Equal(s.TotalUnits()))
		})

		It("should place the split-derived block over the vacated tail range",
			func() {
				s := stateWithFreeSizes(1024, 5, 100, 30)

				res, _ := s.Allocate(20)

				// The candidate started at base 5 with size 100. After the
				// split it owns [5, 85) and the derived block owns [85, 105).
				Expect(res.Base).To(Equal(int64(85)))
			})

		It("should assign a fresh ID to the split-derived block", func() {
			s := stateWithFreeSizes(1024, 5, 100, 30)

			res, _ := s.Allocate(20)

			Expect(res.BlockID).To(Equal(int64(3)))
		})

		It("should relocate a whole block that is not oversized", func() {
			s := stateWithFreeSizes(1024, 25)

			res, ok := s.Allocate(20)

			Expect(ok).To(BeTrue())
			Expect(res.Split).To(BeFalse())
			Expect(res.BlockID).To(Equal(int64(0)))
			Expect(res.Size).To(Equal(int64(25)))

			snap := s.Snapshot()
			Expect(snap.Free).To(BeEmpty())
			Expect(snap.Allocated).To(HaveLen(1))
			Expect(conserved(s)).To(Equal(s.TotalUnits()))
		})

		It("should reset the age of a relocated block", func() {
			s := stateWithFreeSizes(1024, 25)
			s.free.Front().Age = 9

			s.Allocate(20)

			snap := s.Snapshot()
			Expect(snap.Allocated[0].Age).To(Equal(int64(0)))
		})

		It("should leave both lists untouched when nothing fits", func() {
			s := stateWithFreeSizes(1024, 5, 30, 10)

			_, ok := s.Allocate(60)

			Expect(ok).To(BeFalse())
			snap := s.Snapshot()
			Expect(snap.Free).To(HaveLen(3))
			Expect(snap.Allocated).To(BeEmpty())
			Expect(snap.Stats.FailedFits).To(Equal(int64(1)))
		})

		It("should skip a block whose size equals the request", func() {
			s := stateWithFreeSizes(1024, 20)

			_, ok := s.Allocate(20)

			Expect(ok).To(BeFalse())
		})

		It("should panic on a non-positive request", func() {
			s := stateWithFreeSizes(1024, 25)

			Expect(func() { s.Allocate(0) }).To(Panic())
		})
	})

	Context("when reclaiming", func() {
		It("should do nothing when nothing is allocated", func() {
			s := stateWithFreeSizes(1024, 1024)

			_, ok := s.Reclaim()

			Expect(ok).To(BeFalse())
		})

		It("should select the block with the greatest age", func() {
			s := stateWithFreeSizes(1024, 1024)
			s.allocated.Append(&Block{ID: 10, Size: 1024, Age: 3})
			s.allocated.Append(&Block{ID: 11, Size: 1024, Age: 7})
			s.allocated.Append(&Block{ID: 12, Size: 1024, Age: 1})
			s.totalUnits += 3 * 1024

			res, ok := s.Reclaim()

			Expect(ok).To(BeTrue())
			Expect(res.BlockID).To(Equal(int64(11)))
			Expect(res.Age).To(Equal(int64(7)))

			snap := s.Snapshot()
			Expect(snap.Allocated).To(HaveLen(2))
			Expect(snap.Free[len(snap.Free)-1].ID).To(Equal(int64(11)))
			Expect(snap.Free[len(snap.Free)-1].Age).To(Equal(int64(0)))
			Expect(conserved(s)).To(Equal(s.TotalUnits()))
		})

		It("should coalesce a reclaimed fragment into the reservoir", func() {
			s := stateWithFreeSizes(1024, 1024)
			s.allocated.Append(&Block{ID: 10, Base: 1024, Size: 100, Age: 2})
			s.totalUnits += 100

			res, ok := s.Reclaim()

			Expect(ok).To(BeTrue())
			Expect(res.Folded).To(Equal(1))
			Expect(res.FoldedUnits).To(Equal(int64(100)))

			snap := s.Snapshot()
			Expect(snap.Free).To(HaveLen(1))
			Expect(snap.Free[0].Size).To(Equal(int64(1124)))
			Expect(conserved(s)).To(Equal(s.TotalUnits()))
		})
	})

	Context("when coalescing", func() {
		It("should not absorb the reservoir itself", func() {
			s := stateWithFreeSizes(1024, 100)

			folded, units := func() (int, int64) {
				s.mu.Lock()
				defer s.mu.Unlock()
				return s.coalesceLocked()
			}()

			Expect(folded).To(Equal(0))
			Expect(units).To(Equal(int64(0)))
			Expect(s.Snapshot().Free).To(HaveLen(1))
		})

		It("should absorb every non-reservoir fragment", func() {
			s := stateWithFreeSizes(1024, 100, 50, 1024, 30)

			func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.coalesceLocked()
			}()

			snap := s.Snapshot()
			Expect(snap.Free).To(HaveLen(2))
			Expect(snap.Free[0].Size).To(Equal(int64(180)))
			Expect(snap.Free[1].Size).To(Equal(int64(1024)))
			Expect(conserved(s)).To(Equal(s.TotalUnits()))
		})

		It("should do nothing on an empty free list", func() {
			s := stateWithFreeSizes(1024)

			func() {
				s.mu.Lock()
				defer s.mu.Unlock()
				s.coalesceLocked()
			}()

			Expect(s.Snapshot().Free).To(BeEmpty())
		})
	})

	Context("when aging", func() {
		It("should increment the age of every allocated block", func() {
			s := stateWithFreeSizes(1024, 1024)
			s.allocated.Append(&Block{ID: 10, Size: 10, Age: 3})
			s.allocated.Append(&Block{ID: 11, Size: 10, Age: 0})
			s.totalUnits += 20

			n := s.AgeAllocated()

			Expect(n).To(Equal(2))
			snap := s.Snapshot()
			Expect(snap.Allocated[0].Age).To(Equal(int64(4)))
			Expect(snap.Allocated[1].Age).To(Equal(int64(1)))
		})

		It("should not touch free blocks", func() {
			s := stateWithFreeSizes(1024, 1024)

			n := s.AgeAllocated()

			Expect(n).To(Equal(0))
			Expect(s.Snapshot().Free[0].Age).To(Equal(int64(0)))
		})
	})

	It("should keep IDs unique across splits and reclamations", func() {
		s, _ := NewState(3, 1024)

		for i := 0; i < 20; i++ {
			s.Allocate(100)
			s.AgeAllocated()
			if i%3 == 0 {
				s.Reclaim()
			}
		}

		seen := map[int64]bool{}
		snap := s.Snapshot()
		for _, b := range append(snap.Free, snap.Allocated...) {
			Expect(seen[b.ID]).To(BeFalse())
			seen[b.ID] = true
		}
		Expect(conserved(s)).To(Equal(s.TotalUnits()))
	})
})
