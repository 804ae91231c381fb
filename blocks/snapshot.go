package blocks

// BlockInfo is a copy of one block's fields, detached from the live lists.
type BlockInfo struct {
	ID   int64 `json:"id"`
	Base int64 `json:"base"`
	Size int64 `json:"size"`
	Age  int64 `json:"age"`
}

// Snapshot is a read-only view of the state at one quiescent instant.
type Snapshot struct {
	Free      []BlockInfo `json:"free"`
	Allocated []BlockInfo `json:"allocated"`
	Stats     Stats       `json:"stats"`
}

// FreeUnits returns the total capacity of the free blocks in the snapshot.
func (s Snapshot) FreeUnits() int64 {
	return sumSizes(s.Free)
}

// AllocatedUnits returns the total capacity of the allocated blocks in the
// snapshot.
func (s Snapshot) AllocatedUnits() int64 {
	return sumSizes(s.Allocated)
}

func sumSizes(infos []BlockInfo) int64 {
	total := int64(0)
	for _, b := range infos {
		total += b.Size
	}

	return total
}

// Snapshot copies both lists, in list order, under the lock. The copy shares
// nothing with the live state, so callers can format or serialize it without
// holding anything.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	return Snapshot{
		Free:      copyList(s.free),
		Allocated: copyList(s.allocated),
		Stats:     s.stats,
	}
}

// Stats returns a copy of the mutation counters.
func (s *State) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.stats
}

func copyList(l *List) []BlockInfo {
	infos := make([]BlockInfo, 0, l.Len())
	for b := l.Front(); b != nil; b = b.Next() {
		infos = append(infos, BlockInfo{
			ID:   b.ID,
			Base: b.Base,
			Size: b.Size,
			Age:  b.Age,
		})
	}

	return infos
}
