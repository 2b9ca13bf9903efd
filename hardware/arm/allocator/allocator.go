// This file is part of wipiemu.
//
// wipiemu is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// wipiemu is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with wipiemu.  If not, see <https://www.gnu.org/licenses/>.

// Package allocator manages the guest heap region of the emulated
// device. Allocation is first-fit from a free-list of (offset, size)
// blocks; adjacent free blocks are coalesced on free.
//
// The allocator hands out guest addresses only. Zero-filling for calloc
// style allocation is the responsibility of the caller, which has access
// to guest memory.
package allocator

import (
	"github.com/wipi-emu/wipiemu/curated"
)

// sentinel error patterns for the allocator package.
const (
	OutOfMemory = "allocator: out of memory (requested %d bytes)"
	NotAllocated = "allocator: free of unallocated address %08x"
)

// allocations are rounded up to this alignment.
const alignment = 4

type block struct {
	offset uint32
	size   uint32
}

// Allocator carves allocations out of a fixed guest memory region.
type Allocator struct {
	base uint32
	size uint32

	// free blocks ordered by offset
	free []block

	// size of each live allocation, keyed by address
	live map[uint32]uint32
}

// NewAllocator is the preferred method of initialisation for the
// Allocator type. The base and size arguments describe the guest memory
// region to carve allocations from.
func NewAllocator(base uint32, size uint32) *Allocator {
	return &Allocator{
		base: base,
		size: size,
		free: []block{{offset: base, size: size}},
		live: make(map[uint32]uint32),
	}
}

// Alloc returns the guest address of a new allocation of the requested
// size. The size is rounded up to word alignment.
func (al *Allocator) Alloc(size uint32) (uint32, error) {
	if size == 0 {
		size = alignment
	}
	size = (size + alignment - 1) &^ (alignment - 1)

	// first fit
	for i := range al.free {
		if al.free[i].size >= size {
			addr := al.free[i].offset

			if al.free[i].size == size {
				al.free = append(al.free[:i], al.free[i+1:]...)
			} else {
				al.free[i].offset += size
				al.free[i].size -= size
			}

			al.live[addr] = size
			return addr, nil
		}
	}

	return 0, curated.Errorf(OutOfMemory, size)
}

// Free returns an allocation to the free-list. Adjacent free blocks are
// coalesced.
func (al *Allocator) Free(addr uint32) error {
	size, ok := al.live[addr]
	if !ok {
		return curated.Errorf(NotAllocated, addr)
	}
	delete(al.live, addr)

	// insert in offset order
	i := 0
	for i < len(al.free) && al.free[i].offset < addr {
		i++
	}
	al.free = append(al.free, block{})
	copy(al.free[i+1:], al.free[i:])
	al.free[i] = block{offset: addr, size: size}

	// coalesce with the following block
	if i+1 < len(al.free) && al.free[i].offset+al.free[i].size == al.free[i+1].offset {
		al.free[i].size += al.free[i+1].size
		al.free = append(al.free[:i+1], al.free[i+2:]...)
	}

	// coalesce with the preceding block
	if i > 0 && al.free[i-1].offset+al.free[i-1].size == al.free[i].offset {
		al.free[i-1].size += al.free[i].size
		al.free = append(al.free[:i], al.free[i+1:]...)
	}

	return nil
}

// Size returns the size of a live allocation, or zero if the address is
// not a live allocation.
func (al *Allocator) Size(addr uint32) uint32 {
	return al.live[addr]
}

// FreeMemory returns the total number of free bytes in the region.
func (al *Allocator) FreeMemory() uint32 {
	var n uint32
	for _, b := range al.free {
		n += b.size
	}
	return n
}

// TotalMemory returns the size of the managed region.
func (al *Allocator) TotalMemory() uint32 {
	return al.size
}
