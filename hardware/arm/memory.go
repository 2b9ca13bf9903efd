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

package arm

import (
	"bytes"
	"encoding/binary"

	"github.com/wipi-emu/wipiemu/curated"
)

// memory map for the emulated device. addresses outside these regions are
// unmapped and access to them is a guest fault.
const (
	// the application image (plus zero-initialised bss) is loaded here
	ImageBase = 0x00100000

	// the stack occupies the region below StackTop and grows downwards
	StackTop  = 0x00700000
	StackSize = 0x00010000

	// the guest heap region managed by the allocator package
	HeapBase = 0x00800000
	HeapSize = 0x00100000

	// synthetic addresses for host functions. branching into this range
	// traps into the host
	FunctionsBase = 0x71000000
	FunctionsTop  = 0x71fffff0

	// the sentinel return address pushed by RunFunction(). when the
	// guest returns to this address execution ends and the value in r0
	// is the function result
	SentinelReturn = 0x7f000000
)

// sentinel error patterns for guest memory faults.
const (
	IllegalMemoryAccess = "ARM7: %s: unrecognised address %08x (PC: %08x)"
	NullDereference     = "ARM7: %s: probable null pointer dereference of %08x (PC: %08x)"
)

// accesses below this address are treated as null pointer dereferences.
const nullAccessBoundary = 0x00000100

// memory region with a fixed origin.
type region struct {
	name   string
	origin uint32
	data   []byte
}

func (r *region) contains(addr uint32) bool {
	return addr >= r.origin && addr < r.origin+uint32(len(r.data))
}

// Memory is the flat address space of the emulated device.
type Memory struct {
	byteOrder binary.ByteOrder
	regions   []*region
}

// NewMemory is the preferred method of initialisation for the Memory
// type. The stack and heap regions are always present; the image region
// is added by Load().
func NewMemory() *Memory {
	return &Memory{
		byteOrder: binary.LittleEndian,
		regions: []*region{
			{name: "stack", origin: StackTop - StackSize, data: make([]byte, StackSize)},
			{name: "heap", origin: HeapBase, data: make([]byte, HeapSize)},
		},
	}
}

// Load copies the image to the supplied base address. The region is sized
// to totalSize, which must be at least the length of the image; the
// remainder is the zero-initialised bss.
func (mem *Memory) Load(image []byte, base uint32, totalSize int) error {
	if totalSize < len(image) {
		return curated.Errorf("ARM7: load: image larger than allocation (%d > %d)", len(image), totalSize)
	}

	data := make([]byte, totalSize)
	copy(data, image)
	mem.regions = append(mem.regions, &region{name: "image", origin: base, data: data})

	return nil
}

// MapAddress returns the memory block and origin for the supplied
// address. Returns nil if the address is unmapped.
func (mem *Memory) MapAddress(addr uint32) (*[]byte, uint32) {
	for _, r := range mem.regions {
		if r.contains(addr) {
			return &r.data, r.origin
		}
	}
	return nil, 0
}

// ReadBytes copies length bytes from the supplied address.
func (mem *Memory) ReadBytes(addr uint32, length uint32) ([]byte, error) {
	m, origin := mem.MapAddress(addr)
	if m == nil {
		return nil, curated.Errorf(IllegalMemoryAccess, "read bytes", addr, 0)
	}

	idx := addr - origin
	if idx+length > uint32(len(*m)) {
		return nil, curated.Errorf(IllegalMemoryAccess, "read bytes", addr+length, 0)
	}

	b := make([]byte, length)
	copy(b, (*m)[idx:])
	return b, nil
}

// WriteBytes copies the supplied data to the supplied address.
func (mem *Memory) WriteBytes(addr uint32, data []byte) error {
	m, origin := mem.MapAddress(addr)
	if m == nil {
		return curated.Errorf(IllegalMemoryAccess, "write bytes", addr, 0)
	}

	idx := addr - origin
	if idx+uint32(len(data)) > uint32(len(*m)) {
		return curated.Errorf(IllegalMemoryAccess, "write bytes", addr+uint32(len(data)), 0)
	}

	copy((*m)[idx:], data)
	return nil
}

// ReadCString reads a NUL terminated string from the supplied address.
func (mem *Memory) ReadCString(addr uint32) (string, error) {
	m, origin := mem.MapAddress(addr)
	if m == nil {
		return "", curated.Errorf(IllegalMemoryAccess, "read string", addr, 0)
	}

	idx := addr - origin
	end := idx
	for end < uint32(len(*m)) && (*m)[end] != 0 {
		end++
	}

	return string((*m)[idx:end]), nil
}

// ReadGeneric reads a POD value from the supplied address. The value is
// decoded little-endian, matching the guest's view of memory.
func ReadGeneric[T any](mem *Memory, addr uint32) (T, error) {
	var v T

	size := uint32(binary.Size(v))
	b, err := mem.ReadBytes(addr, size)
	if err != nil {
		return v, err
	}

	err = binary.Read(bytes.NewReader(b), mem.byteOrder, &v)
	return v, err
}

// WriteGeneric writes a POD value to the supplied address.
func WriteGeneric[T any](mem *Memory, addr uint32, v T) error {
	w := &bytes.Buffer{}
	if err := binary.Write(w, mem.byteOrder, v); err != nil {
		return err
	}
	return mem.WriteBytes(addr, w.Bytes())
}
