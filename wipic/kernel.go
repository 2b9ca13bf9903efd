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

package wipic

import (
	"github.com/wipi-emu/wipiemu/hardware/arm"
	"github.com/wipi-emu/wipiemu/logger"
	"github.com/wipi-emu/wipiemu/scheduler"
)

// Timer is the guest visible timer struct written by defTimer and read
// back by setTimer. The layout (including the unknown words) matches what
// vendor binaries expect; only the callback field is read by the
// emulator. The Time field is left as defTimer wrote it: setTimer takes
// the timeout from its arguments.
type Timer struct {
	Unk1       uint32
	Unk2       uint32
	Unk3       uint32
	Time       uint64
	Param      uint32
	Unk4       uint32
	FnCallback uint32
}

// kernelMethodTable returns the ordered kernel interface. The slot order
// is the public ABI toward the application binary and must be preserved
// across versions.
func kernelMethodTable() []method {
	return []method{
		{name: "MC_knlPrintk", argc: 1, body: printk},
		{name: "MC_knlSprintk", argc: 2, body: sprintk},
		stub(2, "MC_knlGetExecNames"),
		stub(3, "MC_knlExecute"),
		stub(4, "MC_knlMExecute"),
		stub(5, "MC_knlLoad"),
		stub(6, "MC_knlMLoad"),
		stub(7, "MC_knlExit"),
		stub(8, "MC_knlProgramStop"),
		stub(9, "MC_knlGetCurProgramID"),
		stub(10, "MC_knlGetParentProgramID"),
		stub(11, "MC_knlGetAppManagerID"),
		stub(12, "MC_knlGetProgramInfo"),
		stub(13, "MC_knlGetAccessLevel"),
		stub(14, "MC_knlGetProgramName"),
		stub(15, "MC_knlCreateSharedBuf"),
		stub(16, "MC_knlDestroySharedBuf"),
		stub(17, "MC_knlGetSharedBuf"),
		stub(18, "MC_knlGetSharedBufSize"),
		stub(19, "MC_knlResizeSharedBuf"),
		{name: "MC_knlAlloc", argc: 1, body: knlAlloc},
		{name: "MC_knlCalloc", argc: 1, body: knlCalloc},
		{name: "MC_knlFree", argc: 1, body: knlFree},
		{name: "MC_knlGetTotalMemory", argc: 0, body: getTotalMemory},
		{name: "MC_knlGetFreeMemory", argc: 0, body: getFreeMemory},
		{name: "MC_knlDefTimer", argc: 2, body: defTimer},
		{name: "MC_knlSetTimer", argc: 4, body: setTimer},
		{name: "MC_knlUnsetTimer", argc: 1, body: unsetTimer},
		{name: "MC_knlCurrentTime", argc: 0, body: currentTime},
		{name: "MC_knlGetSystemProperty", argc: 3, body: getSystemProperty},
		stub(30, "MC_knlSetSystemProperty"),
		{name: "MC_knlGetResourceID", argc: 2, body: getResourceID},
		{name: "MC_knlGetResource", argc: 3, body: getResource},
		{name: "MC_knlReserved1", argc: 0, body: getWIPICInterfaces},
	}
}

func printk(brd *Bridge, args []uint32) (uint32, error) {
	s, err := brd.stringArg(args[0])
	if err != nil {
		return 0, err
	}

	logger.Logf("printk", "%s", s)
	return 0, nil
}

// sprintk copies the format string to the output buffer. format
// directives are not expanded; no observed application passes any.
func sprintk(brd *Bridge, args []uint32) (uint32, error) {
	s, err := brd.stringArg(args[1])
	if err != nil {
		return 0, err
	}

	if err := brd.core.Memory().WriteBytes(args[0], append([]byte(s), 0)); err != nil {
		return 0, err
	}

	return uint32(len(s)), nil
}

func knlAlloc(brd *Bridge, args []uint32) (uint32, error) {
	addr, err := brd.heap.Alloc(args[0])
	if err != nil {
		// allocation failure is returned to the caller, not propagated
		logger.Logf("WIPI-C", "MC_knlAlloc(%#x): %v", args[0], err)
		return 0, nil
	}
	return addr, nil
}

func knlCalloc(brd *Bridge, args []uint32) (uint32, error) {
	addr, err := brd.heap.Alloc(args[0])
	if err != nil {
		logger.Logf("WIPI-C", "MC_knlCalloc(%#x): %v", args[0], err)
		return 0, nil
	}

	if err := brd.core.Memory().WriteBytes(addr, make([]byte, args[0])); err != nil {
		return 0, err
	}

	return addr, nil
}

func knlFree(brd *Bridge, args []uint32) (uint32, error) {
	if err := brd.heap.Free(args[0]); err != nil {
		logger.Logf("WIPI-C", "MC_knlFree(%#x): %v", args[0], err)
	}
	return args[0], nil
}

func getTotalMemory(brd *Bridge, _ []uint32) (uint32, error) {
	return brd.heap.TotalMemory(), nil
}

func getFreeMemory(brd *Bridge, _ []uint32) (uint32, error) {
	return brd.heap.FreeMemory(), nil
}

func defTimer(brd *Bridge, args []uint32) (uint32, error) {
	ptrTimer := args[0]

	timer := Timer{
		FnCallback: args[1],
	}

	if err := arm.WriteGeneric(brd.core.Memory(), ptrTimer, timer); err != nil {
		return 0, err
	}

	return 0, nil
}

func setTimer(brd *Bridge, args []uint32) (uint32, error) {
	ptrTimer := args[0]
	timeout := uint64(args[2])<<32 | uint64(args[1])
	param := args[3]

	timer, err := arm.ReadGeneric[Timer](brd.core.Memory(), ptrTimer)
	if err != nil {
		return 0, err
	}

	t := brd.sch.Spawn("timer", func(t *scheduler.Task) error {
		if err := t.SleepFor(timeout); err != nil {
			return err
		}

		// the task now owns guest execution
		prev := brd.task
		brd.SetTask(t)
		defer func() {
			brd.SetTask(prev)
			delete(brd.timers, ptrTimer)
		}()

		_, err := brd.CallGuest(timer.FnCallback, param)
		return err
	})

	brd.timers[ptrTimer] = t

	return 0, nil
}

func unsetTimer(brd *Bridge, args []uint32) (uint32, error) {
	ptrTimer := args[0]

	t, ok := brd.timers[ptrTimer]
	if !ok {
		logger.Logf("WIPI-C", "MC_knlUnsetTimer(%#x): no timer armed", ptrTimer)
		return 0, nil
	}

	t.Cancel()
	delete(brd.timers, ptrTimer)
	return 0, nil
}

func currentTime(brd *Bridge, _ []uint32) (uint32, error) {
	return uint32(brd.bck.Now()), nil
}

func getSystemProperty(_ *Bridge, args []uint32) (uint32, error) {
	logger.Logf("WIPI-C", "stub MC_knlGetSystemProperty(%s)", fmtArgs(args))
	return 0, nil
}

func getResourceID(brd *Bridge, args []uint32) (uint32, error) {
	name, err := brd.stringArg(args[0])
	if err != nil {
		return 0, err
	}

	id, ok := brd.bck.Resources.IDOf(name)
	if !ok {
		logger.Logf("WIPI-C", "MC_knlGetResourceID(%s): not found", name)
		return errValue, nil
	}

	size, _ := brd.bck.Resources.SizeOf(id)
	if err := arm.WriteGeneric(brd.core.Memory(), args[1], uint32(size)); err != nil {
		return 0, err
	}

	return uint32(id), nil
}

func getResource(brd *Bridge, args []uint32) (uint32, error) {
	id := int(args[0])
	buf := args[1]
	bufSize := args[2]

	data, ok := brd.bck.Resources.DataOf(id)
	if !ok {
		logger.Logf("WIPI-C", "MC_knlGetResource(%d): not found", id)
		return errValue, nil
	}

	if uint32(len(data)) > bufSize {
		return errValue, nil
	}

	if err := brd.core.Memory().WriteBytes(buf, data); err != nil {
		return 0, err
	}

	return 0, nil
}
