// Command memsim runs the block-memory management simulation: a first-fit
// allocator, a garbage collector, an aging clock and an inspector racing over
// one shared pair of block collections.
package main

func main() {
	Execute()
}
