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

// Package debugger is the interactive terminal debugger of the DEBUG
// mode. It inspects a prepared device before and after the application
// run: registers, guest memory, the Java heap and the central log.
//
// Available commands:
//
//	RUN          start the application and drive it to completion
//	REGS         print the ARM register file
//	MEM <addr>   hex dump of 64 bytes of guest memory
//	HEAP <file>  write a graphviz rendering of the Java heap
//	LOG          print the tail of the central log
//	QUIT         leave the debugger
package debugger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/wipi-emu/wipiemu/debugger/easyterm"
	"github.com/wipi-emu/wipiemu/hardware"
	"github.com/wipi-emu/wipiemu/logger"
)

// Debugger is the interactive debugger.
type Debugger struct {
	dev    *hardware.Device
	output io.Writer
}

// NewDebugger is the preferred method of initialisation for the
// Debugger type.
func NewDebugger(dev *hardware.Device, output io.Writer) *Debugger {
	return &Debugger{
		dev:    dev,
		output: output,
	}
}

// Loop runs the debugger until QUIT or end of input.
func (dbg *Debugger) Loop() error {
	et, err := easyterm.NewEasyTerm()
	if err != nil {
		return err
	}
	defer et.Restore()

	for {
		line, ok := et.ReadLine("[wipiemu] ")
		if !ok {
			return nil
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		switch strings.ToUpper(fields[0]) {
		case "RUN":
			if err := dbg.dev.Start(); err != nil {
				fmt.Fprintf(dbg.output, "%v\n", err)
				continue
			}
			if err := dbg.dev.Run(); err != nil {
				fmt.Fprintf(dbg.output, "%v\n", err)
				fmt.Fprintln(dbg.output, dbg.dev.CrashDump())
			}

		case "REGS":
			fmt.Fprintln(dbg.output, dbg.dev.Core.String())

		case "MEM":
			if len(fields) < 2 {
				fmt.Fprintln(dbg.output, "MEM requires an address")
				continue
			}
			addr, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
			if err != nil {
				fmt.Fprintf(dbg.output, "bad address: %s\n", fields[1])
				continue
			}
			dbg.memDump(uint32(addr))

		case "HEAP":
			if len(fields) < 2 {
				fmt.Fprintln(dbg.output, "HEAP requires a filename")
				continue
			}
			f, err := os.Create(fields[1])
			if err != nil {
				fmt.Fprintf(dbg.output, "%v\n", err)
				continue
			}
			dbg.dev.VM.DumpHeap(f)
			f.Close()
			fmt.Fprintf(dbg.output, "heap graph written to %s\n", fields[1])

		case "LOG":
			logger.Tail(dbg.output, 20)

		case "QUIT", "EXIT":
			return nil

		default:
			fmt.Fprintf(dbg.output, "unrecognised command: %s\n", fields[0])
		}
	}
}

func (dbg *Debugger) memDump(addr uint32) {
	data, err := dbg.dev.Core.Memory().ReadBytes(addr, 64)
	if err != nil {
		fmt.Fprintf(dbg.output, "%v\n", err)
		return
	}

	for i := 0; i < len(data); i += 16 {
		fmt.Fprintf(dbg.output, "%08x: ", addr+uint32(i))
		for j := 0; j < 16; j++ {
			fmt.Fprintf(dbg.output, "%02x ", data[i+j])
		}
		fmt.Fprintln(dbg.output)
	}
}
