package blocks

import "fmt"

// A List is an ordered collection of blocks. Insertion appends at the tail.
// Removal of an arbitrary member is O(1). A block can only be a member of one
// list; list operations on a non-member panic rather than corrupt the links.
type List struct {
	name string

	head, tail *Block
	count      int
}

// NewList creates a named, empty list.
func NewList(name string) *List {
	return &List{name: name}
}

// Name returns the name the list was created with.
func (l *List) Name() string {
	return l.name
}

// Len returns the number of members.
func (l *List) Len() int {
	return l.count
}

// Empty returns true if the list has no members.
func (l *List) Empty() bool {
	return l.head == nil
}

// Front returns the first member, or nil if the list is empty.
func (l *List) Front() *Block {
	return l.head
}

// Back returns the last member, or nil if the list is empty.
func (l *List) Back() *Block {
	return l.tail
}

// Append places b at the tail of the list. It panics if b is already a member
// of any list.
func (l *List) Append(b *Block) {
	if b.owner != nil {
		panic(fmt.Sprintf(
			"block %d is already a member of list %s", b.ID, b.owner.name))
	}

	if l.tail != nil {
		l.tail.next = b
		b.prev = l.tail
	} else {
		l.head = b
	}
	l.tail = b

	b.owner = l
	l.count++
}

// Remove detaches b from the list, relinking its neighbors. It panics if b is
// not a member of this list.
func (l *List) Remove(b *Block) {
	if b.owner != l {
		owner := "no list"
		if b.owner != nil {
			owner = "list " + b.owner.name
		}
		panic(fmt.Sprintf(
			"removing block %d from list %s, but it belongs to %s",
			b.ID, l.name, owner))
	}

	if b.prev != nil {
		b.prev.next = b.next
	} else {
		l.head = b.next
	}

	if b.next != nil {
		b.next.prev = b.prev
	} else {
		l.tail = b.prev
	}

	b.next = nil
	b.prev = nil
	b.owner = nil
	l.count--
}

// MoveTo detaches b from this list and appends it to target. The caller must
// hold whatever lock guards both lists so that the intermediate detached
// state is never observable.
func (l *List) MoveTo(target *List, b *Block) {
	l.Remove(b)
	target.Append(b)
}
