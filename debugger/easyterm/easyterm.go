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

// Package easyterm is a wrapper for "github.com/pkg/term/termios". It
// provides raw-mode keypress input for the interactive debugger without
// dragging in a full readline implementation.
package easyterm

import (
	"os"
	"strings"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// EasyTerm is a raw-mode line reader over the process's controlling
// terminal.
type EasyTerm struct {
	input  *os.File
	output *os.File

	canAttr unix.Termios
	rawAttr unix.Termios
}

// NewEasyTerm is the preferred method of initialisation for the
// EasyTerm type.
func NewEasyTerm() (*EasyTerm, error) {
	et := &EasyTerm{
		input:  os.Stdin,
		output: os.Stdout,
	}

	// prepare the attributes for the terminal modes we switch between
	if err := termios.Tcgetattr(et.input.Fd(), &et.canAttr); err != nil {
		return nil, err
	}
	et.rawAttr = et.canAttr
	termios.Cfmakeraw(&et.rawAttr)

	return et, nil
}

// Restore the terminal to canonical mode.
func (et *EasyTerm) Restore() {
	termios.Tcsetattr(et.input.Fd(), termios.TCIFLUSH, &et.canAttr)
}

// rawMode puts the terminal into raw mode.
func (et *EasyTerm) rawMode() {
	termios.Tcsetattr(et.input.Fd(), termios.TCIFLUSH, &et.rawAttr)
}

// canonicalMode puts the terminal into canonical mode.
func (et *EasyTerm) canonicalMode() {
	termios.Tcsetattr(et.input.Fd(), termios.TCIFLUSH, &et.canAttr)
}

// ReadLine reads one line of input in raw mode, echoing as it goes.
// Backspace is handled; everything else is taken literally. The second
// return value is false on end of input (ctrl-d or ctrl-c).
func (et *EasyTerm) ReadLine(prompt string) (string, bool) {
	et.output.WriteString(prompt)

	et.rawMode()
	defer et.canonicalMode()

	s := strings.Builder{}
	b := make([]byte, 1)

	for {
		if _, err := et.input.Read(b); err != nil {
			return s.String(), s.Len() > 0
		}

		switch b[0] {
		case 0x04, 0x03: // ctrl-d, ctrl-c
			et.output.WriteString("\r\n")
			return "", false
		case '\r', '\n':
			et.output.WriteString("\r\n")
			return s.String(), true
		case 0x7f, 0x08: // backspace
			if s.Len() > 0 {
				cur := s.String()
				s.Reset()
				s.WriteString(cur[:len(cur)-1])
				et.output.WriteString("\b \b")
			}
		default:
			if b[0] >= 0x20 && b[0] < 0x7f {
				s.WriteByte(b[0])
				et.output.Write(b)
			}
		}
	}
}
