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

// Package wipic implements the WIPI-C vendor ABI: the interface tables of
// host implemented functions that an ARM form application calls into.
//
// Each interface (kernel, graphics, database, media) is an ordered table
// of slots. The slot index is the ABI contract with the application
// binary and must never change. A slot is published to the guest by
// registering its method body as a host function with the ARM core and
// writing the resulting synthetic address into a table in guest memory.
//
// The kernel table is installed at startup. The remaining tables are
// materialised lazily when the application calls the kernel's
// get_wipic_interfaces slot, which also writes the WIPIInterface struct
// (13 guest pointers) and returns its address.
package wipic

import (
	"fmt"

	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/hardware/arm"
	"github.com/wipi-emu/wipiemu/hardware/arm/allocator"
	"github.com/wipi-emu/wipiemu/logger"
	"github.com/wipi-emu/wipiemu/scheduler"
)

// sentinel error patterns for the wipic package.
const (
	GuestString = "WIPI-C: reading guest string: %v"
)

// the value returned by unimplemented slots.
const errValue = 0xffffffff

// MethodBody is a host implementation of a WIPI-C slot. The args slice
// holds the raw argument words decoded from the ARM calling convention;
// the method body is responsible for interpreting them according to its
// declared signature.
type MethodBody func(brd *Bridge, args []uint32) (uint32, error)

// method is a slot in a WIPI-C interface table: a name for logging, the
// number of argument words to decode, and the body.
type method struct {
	name string
	argc int
	body MethodBody
}

// stub produces a method body that logs the unimplemented slot, with its
// index and name, and returns the no-op value. Stub slots are never
// fatal.
func stub(idx int, name string) method {
	return method{
		name: name,
		body: func(_ *Bridge, _ []uint32) (uint32, error) {
			logger.Logf("WIPI-C", "unimplemented slot %d: %s", idx, name)
			return errValue, nil
		},
	}
}

// Bridge connects the WIPI-C interface tables to the ARM core, the guest
// heap allocator, the platform backend and the scheduler.
type Bridge struct {
	core *arm.ARM
	heap *allocator.Allocator
	bck  *backend.Backend
	sch  *scheduler.Scheduler

	// the task currently executing guest code. updated by SetTask()
	// whenever a task starts or resumes running guest code
	task *scheduler.Task

	// timer tasks keyed by guest timer struct address, for unsetTimer
	timers map[uint32]*scheduler.Task

	// open C database handles
	databases map[uint32]dbHandle
	nextDB    uint32

	// media clips keyed by clip handle
	clips    map[uint32][]byte
	nextClip uint32

	// the WIPIInterface struct is written once and the address reused
	interfacesAddr uint32
}

// NewBridge is the preferred method of initialisation for the Bridge
// type.
func NewBridge(core *arm.ARM, heap *allocator.Allocator, bck *backend.Backend, sch *scheduler.Scheduler) *Bridge {
	return &Bridge{
		core:      core,
		heap:      heap,
		bck:       bck,
		sch:       sch,
		timers:    make(map[uint32]*scheduler.Task),
		databases: make(map[uint32]dbHandle),
		nextDB:    1,
		clips:     make(map[uint32][]byte),
		nextClip:  1,
	}
}

// SetTask declares the task that is currently executing guest code.
// Method bodies that sleep or spawn use it.
func (brd *Bridge) SetTask(t *scheduler.Task) {
	brd.task = t
}

// Task returns the task currently executing guest code.
func (brd *Bridge) Task() *scheduler.Task {
	return brd.task
}

// Backend returns the platform backend.
func (brd *Bridge) Backend() *backend.Backend {
	return brd.bck
}

// Alloc carves a block out of the guest heap.
func (brd *Bridge) Alloc(size uint32) (uint32, error) {
	return brd.heap.Alloc(size)
}

// Free returns a block to the guest heap.
func (brd *Bridge) Free(addr uint32) error {
	return brd.heap.Free(addr)
}

// stringArg copies a NUL terminated guest string into a host string.
func (brd *Bridge) stringArg(addr uint32) (string, error) {
	s, err := brd.core.Memory().ReadCString(addr)
	if err != nil {
		return "", curated.Errorf(GuestString, err)
	}
	return s, nil
}

// installTable registers every method of a table as a host function and
// writes the table of synthetic addresses to guest memory. Returns the
// guest address of the table.
func (brd *Bridge) installTable(methods []method) (uint32, error) {
	table, err := brd.heap.Alloc(uint32(4 * len(methods)))
	if err != nil {
		return 0, err
	}

	cursor := table
	for _, m := range methods {
		m := m

		addr, err := brd.core.RegisterFunction(func(core *arm.ARM) (uint32, error) {
			args := make([]uint32, m.argc)
			for i := range args {
				args[i] = core.Arg(i)
			}
			return m.body(brd, args)
		})
		if err != nil {
			return 0, err
		}

		if err := arm.WriteGeneric(brd.core.Memory(), cursor, addr); err != nil {
			return 0, err
		}
		cursor += 4
	}

	return table, nil
}

// InstallKernelInterface publishes the kernel method table to guest
// memory and returns its address. Called once at application startup; the
// address is passed to the WIPI runtime inside the application binary.
func (brd *Bridge) InstallKernelInterface() (uint32, error) {
	return brd.installTable(kernelMethodTable())
}

// CallGuest runs a guest function through the ARM core.
func (brd *Bridge) CallGuest(entry uint32, args ...uint32) (uint32, error) {
	return brd.core.RunFunction(entry, args...)
}

func fmtArgs(args []uint32) string {
	s := ""
	for i, a := range args {
		if i > 0 {
			s += ", "
		}
		s += fmt.Sprintf("%#x", a)
	}
	return s
}
