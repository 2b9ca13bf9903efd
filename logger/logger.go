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

// Package logger is the central logging facility for the emulator. Every
// package logs through it with a short tag identifying the subsystem
// ("ARM7", "WIPI-C", "JVM", etc.)
//
// Entries accumulate in a bounded central buffer and can be written out in
// full with Write() or partially with Tail(). The SetEcho() function
// attaches an io.Writer that receives every new entry as it arrives, which
// is how the -log flag of the main emulator executable works.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// the maximum number of entries in the central logger.
const maxCentral = 256

type entry struct {
	tag    string
	detail string
}

func (e entry) String() string {
	return fmt.Sprintf("%s: %s", e.tag, e.detail)
}

type logger struct {
	crit    sync.Mutex
	entries []entry
	echo    io.Writer
}

// the central logger instance.
var central = &logger{
	entries: make([]entry, 0, maxCentral),
}

// Log adds a new entry to the central logger. The detail argument can be
// an error type, a fmt.Stringer or a plain string.
func Log(tag string, detail interface{}) {
	central.crit.Lock()
	defer central.crit.Unlock()

	var s string
	switch d := detail.(type) {
	case error:
		s = d.Error()
	case fmt.Stringer:
		s = d.String()
	default:
		s = fmt.Sprintf("%v", detail)
	}

	// a multi-line detail is split into separate entries with the same tag
	for _, l := range strings.Split(s, "\n") {
		if l == "" {
			continue
		}

		e := entry{tag: tag, detail: l}

		if len(central.entries) >= maxCentral {
			central.entries = central.entries[1:]
		}
		central.entries = append(central.entries, e)

		if central.echo != nil {
			central.echo.Write([]byte(e.String()))
			central.echo.Write([]byte("\n"))
		}
	}
}

// Logf adds a new formatted entry to the central logger.
func Logf(tag string, format string, args ...interface{}) {
	Log(tag, fmt.Sprintf(format, args...))
}

// Clear all entries from the central logger.
func Clear() {
	central.crit.Lock()
	defer central.crit.Unlock()

	central.entries = central.entries[:0]
}

// Write contents of central logger to io.Writer.
func Write(output io.Writer) {
	central.crit.Lock()
	defer central.crit.Unlock()

	for _, e := range central.entries {
		io.WriteString(output, e.String())
		io.WriteString(output, "\n")
	}
}

// Tail writes the last N entries to io.Writer.
func Tail(output io.Writer, number int) {
	central.crit.Lock()
	defer central.crit.Unlock()

	t := len(central.entries) - number
	if t < 0 {
		t = 0
	}

	for _, e := range central.entries[t:] {
		io.WriteString(output, e.String())
		io.WriteString(output, "\n")
	}
}

// SetEcho to print new entries to io.Writer as they arrive. A nil argument
// turns the echo off.
func SetEcho(output io.Writer) {
	central.crit.Lock()
	defer central.crit.Unlock()

	central.echo = output
}
