// Package blocks defines the block model of the simulated address space and
// the shared free/allocated collections that the simulation actors mutate.
package blocks

// A Block is a contiguous range of the simulated address space. A block is a
// member of exactly one List at any time.
type Block struct {
	// ID uniquely identifies the block. IDs are assigned at creation or at
	// split time and are never reused.
	ID int64

	// Base is the offset of the block in the simulated address space.
	Base int64

	// Size is the number of address units the block owns. Always positive.
	Size int64

	// Age counts the aging-clock ticks since the block last entered the
	// allocated list. Reset to 0 on every transition into the allocated list.
	Age int64

	next, prev *Block
	owner      *List
}

// Next returns the block that follows b in its list, or nil if b is the last
// member.
func (b *Block) Next() *Block {
	return b.next
}

// Prev returns the block that precedes b in its list, or nil if b is the
// first member.
func (b *Block) Prev() *Block {
	return b.prev
}
