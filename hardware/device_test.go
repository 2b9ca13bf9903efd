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

package hardware_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/wipi-emu/wipiemu/archive"
	"github.com/wipi-emu/wipiemu/backend"
	"github.com/wipi-emu/wipiemu/hardware"
	"github.com/wipi-emu/wipiemu/recorddb"
	"github.com/wipi-emu/wipiemu/test"
)

// buildARMArchive writes an archive holding a minimal ARM form binary
// that honours the published start contract:
//
//	start:  ldr r0, [pc, #0]    ; return the wipi_exe pointer
//	        bx lr
//	        .word exe            ; wipi_exe
//	exe:    .word init           ; fn_init
//	        .word 0              ; fn_name
//	init:   mov r0, #0           ; init succeeds
//	        bx lr
func buildARMArchive(t *testing.T) string {
	t.Helper()

	const base = 0x00100000

	code := make([]byte, 28)
	words := []uint32{
		0xe59f0000,  // ldr r0, [pc, #0]
		0xe12fff1e,  // bx lr
		base + 0x0c, // wipi_exe
		base + 0x14, // fn_init
		0x00000000,  // fn_name
		0xe3a00000,  // mov r0, #0
		0xe12fff1e,  // bx lr
	}
	for i, w := range words {
		binary.LittleEndian.PutUint32(code[i*4:], w)
	}

	dir := t.TempDir()
	test.ExpectSuccess(t, os.WriteFile(filepath.Join(dir, "client.bin0"), code, 0600))
	return dir
}

func TestARMFormStartSequence(t *testing.T) {
	arc, err := archive.Load(buildARMArchive(t))
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, arc.Form(), archive.FormARM)

	dev := hardware.NewDevice(arc, backend.NewHeadless(arc, recorddb.NewRepository("")))

	test.ExpectSuccess(t, dev.Start())
	test.ExpectSuccess(t, dev.Run())
}

func TestARMFormInitFailure(t *testing.T) {
	dir := buildARMArchive(t)

	// corrupt the init function: mov r0, #1 makes init report failure
	p := filepath.Join(dir, "client.bin0")
	code, err := os.ReadFile(p)
	test.ExpectSuccess(t, err)
	binary.LittleEndian.PutUint32(code[20:], 0xe3a00001)
	test.ExpectSuccess(t, os.WriteFile(p, code, 0600))

	arc, err := archive.Load(dir)
	test.ExpectSuccess(t, err)

	dev := hardware.NewDevice(arc, backend.NewHeadless(arc, recorddb.NewRepository("")))

	test.ExpectSuccess(t, dev.Start())
	test.ExpectFailure(t, dev.Run())
}

// buildJletClass assembles a minimal Jlet subclass:
//
//	public class App extends org.kwis.msp.lcdui.Jlet {
//	    public void startApp() { }
//	}
func buildJletClass() []byte {
	var b []byte

	u2 := func(v uint16) {
		b = binary.BigEndian.AppendUint16(b, v)
	}
	u4 := func(v uint32) {
		b = binary.BigEndian.AppendUint32(b, v)
	}
	utf8 := func(s string) {
		b = append(b, 1) // CONSTANT_Utf8
		u2(uint16(len(s)))
		b = append(b, s...)
	}

	u4(0xcafebabe)
	u2(0)  // minor
	u2(47) // major

	u2(11) // constant pool count
	utf8("App")                     // 1
	b = append(b, 7)                // 2: CONSTANT_Class
	u2(1)
	utf8("org/kwis/msp/lcdui/Jlet") // 3
	b = append(b, 7)                // 4: CONSTANT_Class
	u2(3)
	utf8("<init>")                  // 5
	utf8("()V")                     // 6
	utf8("Code")                    // 7
	b = append(b, 12)               // 8: CONSTANT_NameAndType
	u2(5)
	u2(6)
	b = append(b, 10)               // 9: CONSTANT_Methodref
	u2(4)
	u2(8)
	utf8("startApp")                // 10

	u2(0x0021) // access flags
	u2(2)      // this class
	u2(4)      // super class
	u2(0)      // interfaces
	u2(0)      // fields

	u2(2) // methods

	// <init>()V: aload_0, invokespecial Jlet.<init>, return
	u2(0x0001)
	u2(5)
	u2(6)
	u2(1)
	u2(7)
	u4(17)
	u2(2) // max stack
	u2(1) // max locals
	u4(5)
	b = append(b, 0x2a, 0xb7, 0x00, 0x09, 0xb1)
	u2(0)
	u2(0)

	// startApp()V: return
	u2(0x0001)
	u2(10)
	u2(6)
	u2(1)
	u2(7)
	u4(13)
	u2(1)
	u2(1)
	u4(1)
	b = append(b, 0xb1)
	u2(0)
	u2(0)

	u2(0) // class attributes

	return b
}

func TestJavaFormStartSequence(t *testing.T) {
	dir := t.TempDir()
	test.ExpectSuccess(t, os.WriteFile(filepath.Join(dir, "App.class"), buildJletClass(), 0600))

	arc, err := archive.Load(dir)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, arc.Form(), archive.FormJava)
	test.ExpectEquality(t, arc.MainClass(), "App")

	dev := hardware.NewDevice(arc, backend.NewHeadless(arc, recorddb.NewRepository("")))

	// the startApp([Ljava/lang/String;)V descriptor is absent from
	// this application. the launcher falls back to startApp()V
	test.ExpectSuccess(t, dev.Start())
	test.ExpectSuccess(t, dev.Run())
}
