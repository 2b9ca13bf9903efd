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

package allocator_test

import (
	"testing"

	"github.com/wipi-emu/wipiemu/hardware/arm/allocator"
	"github.com/wipi-emu/wipiemu/test"
)

func TestFirstFitReuse(t *testing.T) {
	al := allocator.NewAllocator(0x1000, 0x1000)

	a, err := al.Alloc(16)
	test.ExpectSuccess(t, err)
	b, err := al.Alloc(16)
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, a, b)

	test.ExpectSuccess(t, al.Free(a))

	// a freed block of the same size is reused first-fit
	c, err := al.Alloc(16)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, c, a)
}

func TestNoOverlap(t *testing.T) {
	al := allocator.NewAllocator(0x1000, 0x1000)

	type alloc struct {
		addr uint32
		size uint32
	}

	var allocs []alloc
	for _, sz := range []uint32{8, 24, 3, 100, 64, 1} {
		addr, err := al.Alloc(sz)
		test.ExpectSuccess(t, err)

		// every allocation lies in the managed region
		test.ExpectSuccess(t, addr >= 0x1000 && addr+sz <= 0x2000)

		for _, other := range allocs {
			overlap := addr < other.addr+other.size && other.addr < addr+sz
			test.ExpectFailure(t, overlap)
		}
		allocs = append(allocs, alloc{addr: addr, size: sz})
	}
}

func TestAlignment(t *testing.T) {
	al := allocator.NewAllocator(0x1000, 0x1000)

	a, err := al.Alloc(3)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a%4, uint32(0))

	b, err := al.Alloc(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, b%4, uint32(0))
	test.ExpectEquality(t, b-a, uint32(4))
}

func TestExhaustion(t *testing.T) {
	al := allocator.NewAllocator(0x1000, 32)

	_, err := al.Alloc(16)
	test.ExpectSuccess(t, err)
	_, err = al.Alloc(16)
	test.ExpectSuccess(t, err)
	_, err = al.Alloc(16)
	test.ExpectFailure(t, err)
}

func TestCoalescing(t *testing.T) {
	al := allocator.NewAllocator(0x1000, 32)

	a, _ := al.Alloc(16)
	b, _ := al.Alloc(16)

	test.ExpectSuccess(t, al.Free(a))
	test.ExpectSuccess(t, al.Free(b))

	// after coalescing the full region is available again
	c, err := al.Alloc(32)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, c, a)

	// double free is an error
	test.ExpectFailure(t, al.Free(a))
}

func TestFreeMemory(t *testing.T) {
	al := allocator.NewAllocator(0x1000, 0x1000)
	test.ExpectEquality(t, al.FreeMemory(), uint32(0x1000))
	test.ExpectEquality(t, al.TotalMemory(), uint32(0x1000))

	a, _ := al.Alloc(0x100)
	test.ExpectEquality(t, al.FreeMemory(), uint32(0xf00))

	al.Free(a)
	test.ExpectEquality(t, al.FreeMemory(), uint32(0x1000))
}
