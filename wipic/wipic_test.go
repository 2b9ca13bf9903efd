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

package wipic_test

import (
	"testing"

	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/hardware/arm"
	"github.com/wipi-emu/wipiemu/hardware/arm/allocator"
	"github.com/wipi-emu/wipiemu/recorddb"
	"github.com/wipi-emu/wipiemu/scheduler"
	"github.com/wipi-emu/wipiemu/test"
	"github.com/wipi-emu/wipiemu/wipic"
)

// slot indices in the kernel interface table.
const (
	slotAlloc      = 20
	slotCalloc     = 21
	slotFree       = 22
	slotDefTimer   = 25
	slotSetTimer   = 26
	slotUnsetTimer = 27
	slotReserved1  = 33
)

type fixture struct {
	sch    *scheduler.Scheduler
	core   *arm.ARM
	heap   *allocator.Allocator
	bridge *wipic.Bridge
	kernel uint32
}

func prepare(t *testing.T) *fixture {
	t.Helper()

	sch := scheduler.NewScheduler()
	mem := arm.NewMemory()
	core := arm.NewARM(mem)
	heap := allocator.NewAllocator(arm.HeapBase, arm.HeapSize)

	bck := backend.NewHeadless(nil, recorddb.NewRepository(""))
	bck.Now = sch.Now

	bridge := wipic.NewBridge(core, heap, bck, sch)

	kernel, err := bridge.InstallKernelInterface()
	test.ExpectSuccess(t, err)

	return &fixture{
		sch:    sch,
		core:   core,
		heap:   heap,
		bridge: bridge,
		kernel: kernel,
	}
}

// slot returns the synthetic address installed in the kernel table.
func (fx *fixture) slot(t *testing.T, idx int) uint32 {
	t.Helper()
	addr, err := arm.ReadGeneric[uint32](fx.core.Memory(), fx.kernel+uint32(idx*4))
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, addr, uint32(0))
	return addr
}

func TestKernelAllocFree(t *testing.T) {
	fx := prepare(t)

	a, err := fx.core.RunFunction(fx.slot(t, slotAlloc), 16)
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, a, uint32(0))

	b, err := fx.core.RunFunction(fx.slot(t, slotAlloc), 16)
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, b, a)

	_, err = fx.core.RunFunction(fx.slot(t, slotFree), a)
	test.ExpectSuccess(t, err)

	// first-fit reuses the freed block
	c, err := fx.core.RunFunction(fx.slot(t, slotAlloc), 16)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, c, a)
}

func TestKernelCallocZeroes(t *testing.T) {
	fx := prepare(t)

	// dirty the heap so that calloc has something to clear
	a, err := fx.core.RunFunction(fx.slot(t, slotAlloc), 16)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, fx.core.Memory().WriteBytes(a, []byte{0xde, 0xad, 0xbe, 0xef}))
	_, err = fx.core.RunFunction(fx.slot(t, slotFree), a)
	test.ExpectSuccess(t, err)

	b, err := fx.core.RunFunction(fx.slot(t, slotCalloc), 16)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, b, a)

	data, err := fx.core.Memory().ReadBytes(b, 16)
	test.ExpectSuccess(t, err)
	for _, v := range data {
		test.ExpectEquality(t, v, uint8(0))
	}
}

func TestTimer(t *testing.T) {
	fx := prepare(t)

	// the timer callback is a host function, as any guest function
	// address would be
	var fired int
	var firedParam uint32
	var firedAt uint64

	callback, err := fx.core.RegisterFunction(func(core *arm.ARM) (uint32, error) {
		fired++
		firedParam = core.Arg(0)
		firedAt = fx.sch.Now()
		return 0, nil
	})
	test.ExpectSuccess(t, err)

	ptrTimer, err := fx.heap.Alloc(32)
	test.ExpectSuccess(t, err)

	_, err = fx.core.RunFunction(fx.slot(t, slotDefTimer), ptrTimer, callback)
	test.ExpectSuccess(t, err)

	// timeout of 100 ticks at scheduler clock 0
	_, err = fx.core.RunFunction(fx.slot(t, slotSetTimer), ptrTimer, 100, 0, 7)
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, fx.sch.Run())

	// the callback ran exactly once, with the supplied param, no
	// earlier than the timeout
	test.ExpectEquality(t, fired, 1)
	test.ExpectEquality(t, firedParam, uint32(7))
	test.ExpectSuccess(t, firedAt >= 100)
}

func TestUnsetTimer(t *testing.T) {
	fx := prepare(t)

	var fired int
	callback, err := fx.core.RegisterFunction(func(core *arm.ARM) (uint32, error) {
		fired++
		return 0, nil
	})
	test.ExpectSuccess(t, err)

	ptrTimer, err := fx.heap.Alloc(32)
	test.ExpectSuccess(t, err)

	_, err = fx.core.RunFunction(fx.slot(t, slotDefTimer), ptrTimer, callback)
	test.ExpectSuccess(t, err)
	_, err = fx.core.RunFunction(fx.slot(t, slotSetTimer), ptrTimer, 100, 0, 0)
	test.ExpectSuccess(t, err)
	_, err = fx.core.RunFunction(fx.slot(t, slotUnsetTimer), ptrTimer)
	test.ExpectSuccess(t, err)

	test.ExpectSuccess(t, fx.sch.Run())
	test.ExpectEquality(t, fired, 0)
}

func TestGetWIPICInterfaces(t *testing.T) {
	fx := prepare(t)

	addr, err := fx.core.RunFunction(fx.slot(t, slotReserved1))
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, addr, uint32(0))

	iface, err := arm.ReadGeneric[wipic.WIPIInterface](fx.core.Memory(), addr)
	test.ExpectSuccess(t, err)

	// indices 2, 6 and 9 are the graphics, database and media tables.
	// everything else is zero until implemented
	test.ExpectInequality(t, iface.Interface2, uint32(0))
	test.ExpectInequality(t, iface.Interface6, uint32(0))
	test.ExpectInequality(t, iface.Interface9, uint32(0))
	test.ExpectEquality(t, iface.Interface0, uint32(0))
	test.ExpectEquality(t, iface.Interface12, uint32(0))

	// the struct is materialised once and the address reused
	addr2, err := fx.core.RunFunction(fx.slot(t, slotReserved1))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, addr2, addr)
}

func TestDatabaseInterface(t *testing.T) {
	fx := prepare(t)

	ifaceAddr, err := fx.core.RunFunction(fx.slot(t, slotReserved1))
	test.ExpectSuccess(t, err)
	iface, err := arm.ReadGeneric[wipic.WIPIInterface](fx.core.Memory(), ifaceAddr)
	test.ExpectSuccess(t, err)

	dbSlot := func(idx int) uint32 {
		addr, err := arm.ReadGeneric[uint32](fx.core.Memory(), iface.Interface6+uint32(idx*4))
		test.ExpectSuccess(t, err)
		return addr
	}

	// write a database name into guest memory
	namePtr, err := fx.heap.Alloc(8)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, fx.core.Memory().WriteBytes(namePtr, []byte("scores\x00")))

	h, err := fx.core.RunFunction(dbSlot(0), namePtr, 0, 1)
	test.ExpectSuccess(t, err)
	test.ExpectInequality(t, h, uint32(0))

	recPtr, err := fx.heap.Alloc(4)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, fx.core.Memory().WriteBytes(recPtr, []byte{1, 2, 3}))

	id, err := fx.core.RunFunction(dbSlot(3), h, recPtr, 3)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, id, uint32(1))

	n, err := fx.core.RunFunction(dbSlot(8), h)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, n, uint32(1))

	outPtr, err := fx.heap.Alloc(8)
	test.ExpectSuccess(t, err)
	sz, err := fx.core.RunFunction(dbSlot(4), h, id, outPtr, 8)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, sz, uint32(3))

	data, err := fx.core.Memory().ReadBytes(outPtr, 3)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, data[0], uint8(1))
	test.ExpectEquality(t, data[2], uint8(3))
}
