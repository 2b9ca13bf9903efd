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

package arm_test

import (
	"encoding/binary"
	"testing"

	"github.com/wipi-emu/wipiemu/hardware/arm"
	"github.com/wipi-emu/wipiemu/test"
)

func TestLoadWithBSS(t *testing.T) {
	mem := arm.NewMemory()

	// a four byte image with a four byte bss
	err := mem.Load([]byte{0x01, 0x02, 0x03, 0x04}, arm.ImageBase, 8)
	test.ExpectSuccess(t, err)

	b, err := mem.ReadBytes(arm.ImageBase, 8)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(b), 8)
	for i, v := range []byte{0x01, 0x02, 0x03, 0x04, 0x00, 0x00, 0x00, 0x00} {
		test.ExpectEquality(t, b[i], v)
	}
}

func TestMemoryRoundTrip(t *testing.T) {
	mem := arm.NewMemory()

	data := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x55}
	test.ExpectSuccess(t, mem.WriteBytes(arm.HeapBase+0x80, data))

	b, err := mem.ReadBytes(arm.HeapBase+0x80, uint32(len(data)))
	test.ExpectSuccess(t, err)
	for i := range data {
		test.ExpectEquality(t, b[i], data[i])
	}

	// unmapped addresses are errors
	_, err = mem.ReadBytes(0x00000010, 4)
	test.ExpectFailure(t, err)
	test.ExpectFailure(t, mem.WriteBytes(0x9ffffff0, []byte{0x01}))
}

func TestGenericReadWrite(t *testing.T) {
	mem := arm.NewMemory()

	type record struct {
		A uint32
		B uint64
		C uint16
	}

	w := record{A: 0x11223344, B: 0x5566778899aabbcc, C: 0xddee}
	test.ExpectSuccess(t, arm.WriteGeneric(mem, arm.HeapBase, w))

	r, err := arm.ReadGeneric[record](mem, arm.HeapBase)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, w)

	// values are written little-endian
	b, err := mem.ReadBytes(arm.HeapBase, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, b[0], uint8(0x44))
}

func TestRunFunctionARM(t *testing.T) {
	mem := arm.NewMemory()

	// add r0, r0, r1 / bx lr
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code[0:], 0xe0800001)
	binary.LittleEndian.PutUint32(code[4:], 0xe12fff1e)
	test.ExpectSuccess(t, mem.Load(code, arm.ImageBase, len(code)))

	core := arm.NewARM(mem)

	r, err := core.RunFunction(arm.ImageBase, 3, 4)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, uint32(7))
}

func TestRunFunctionThumb(t *testing.T) {
	mem := arm.NewMemory()

	// sum of 5..1 in a loop:
	//   mov r0, #0
	//   mov r1, #5
	// loop:
	//   add r0, r0, r1
	//   sub r1, #1
	//   bne loop
	//   bx lr
	code := make([]byte, 12)
	for i, opcode := range []uint16{0x2000, 0x2105, 0x1840, 0x3901, 0xd1fc, 0x4770} {
		binary.LittleEndian.PutUint16(code[i*2:], opcode)
	}
	test.ExpectSuccess(t, mem.Load(code, arm.ImageBase, len(code)))

	core := arm.NewARM(mem)

	// bit zero of the entry address selects Thumb state
	r, err := core.RunFunction(arm.ImageBase|0x01, 0, 0)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, uint32(15))
}

func TestHostFunctionTrap(t *testing.T) {
	mem := arm.NewMemory()
	core := arm.NewARM(mem)

	var sawR0, sawR1 uint32

	addr, err := core.RegisterFunction(func(core *arm.ARM) (uint32, error) {
		sawR0 = core.Arg(0)
		sawR1 = core.Arg(1)
		return sawR0 + sawR1, nil
	})
	test.ExpectSuccess(t, err)

	// guest code that calls the host function through a register:
	//   stmfd sp!, {lr}
	//   ldr r4, [pc, #4]
	//   blx r4
	//   ldmfd sp!, {pc}
	//   .word <synthetic address>
	code := make([]byte, 20)
	binary.LittleEndian.PutUint32(code[0:], 0xe92d4000)
	binary.LittleEndian.PutUint32(code[4:], 0xe59f4004)
	binary.LittleEndian.PutUint32(code[8:], 0xe12fff34)
	binary.LittleEndian.PutUint32(code[12:], 0xe8bd8000)
	binary.LittleEndian.PutUint32(code[16:], addr)
	test.ExpectSuccess(t, mem.Load(code, arm.ImageBase, len(code)))

	r, err := core.RunFunction(arm.ImageBase, 3, 4)
	test.ExpectSuccess(t, err)

	// the host callback sees the guest's r0..r3 as its arguments and
	// its return value appears in r0 on resume
	test.ExpectEquality(t, sawR0, uint32(3))
	test.ExpectEquality(t, sawR1, uint32(4))
	test.ExpectEquality(t, r, uint32(7))
}

func TestCallingConvention(t *testing.T) {
	mem := arm.NewMemory()
	core := arm.NewARM(mem)

	var args [5]uint32

	addr, err := core.RegisterFunction(func(core *arm.ARM) (uint32, error) {
		for i := range args {
			args[i] = core.Arg(i)
		}
		return 0, nil
	})
	test.ExpectSuccess(t, err)

	// a synthetic address can be called directly. the fifth argument
	// must appear in the first stack slot
	_, err = core.RunFunction(addr, 10, 20, 30, 40, 50)
	test.ExpectSuccess(t, err)

	for i, v := range []uint32{10, 20, 30, 40, 50} {
		test.ExpectEquality(t, args[i], v)
	}
}

func TestHostFunctionReentrancy(t *testing.T) {
	mem := arm.NewMemory()

	// add r0, r0, r1 / bx lr
	code := make([]byte, 8)
	binary.LittleEndian.PutUint32(code[0:], 0xe0800001)
	binary.LittleEndian.PutUint32(code[4:], 0xe12fff1e)
	test.ExpectSuccess(t, mem.Load(code, arm.ImageBase, len(code)))

	core := arm.NewARM(mem)

	// the host callback makes a nested RunFunction() call
	addr, err := core.RegisterFunction(func(core *arm.ARM) (uint32, error) {
		a := core.Arg(0)
		r, err := core.RunFunction(arm.ImageBase, a, 100)
		if err != nil {
			return 0, err
		}
		return r * 2, nil
	})
	test.ExpectSuccess(t, err)

	r, err := core.RunFunction(addr, 11)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, r, uint32(222))
}

func TestIllegalInstruction(t *testing.T) {
	mem := arm.NewMemory()

	// a software interrupt is a guest fault. there is no operating
	// system underneath the application
	code := make([]byte, 4)
	binary.LittleEndian.PutUint32(code[0:], 0xef000000)
	test.ExpectSuccess(t, mem.Load(code, arm.ImageBase, len(code)))

	core := arm.NewARM(mem)

	_, err := core.RunFunction(arm.ImageBase)
	test.ExpectFailure(t, err)
}

func TestUnmappedExecution(t *testing.T) {
	mem := arm.NewMemory()
	core := arm.NewARM(mem)

	_, err := core.RunFunction(0x00300000)
	test.ExpectFailure(t, err)
}
