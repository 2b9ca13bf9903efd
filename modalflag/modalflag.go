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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides mode based parsing of command line arguments: a
// mode is a command line argument that changes which flags and sub-modes
// are available. For example:
//
//	wipiemu -log RUN -sdl=false app.zip
//
// In the above, RUN is a mode. The -log flag belongs to the top level mode
// and the -sdl flag to the RUN mode.
package modalflag

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// Modes provides mode based parsing of command line arguments.
type Modes struct {
	// Output is where help text is written. must be set before Parse()
	Output io.Writer

	args []string

	flags *flag.FlagSet

	// the list of valid sub-modes for the current mode. the first entry
	// is the default
	submodes []string

	// the mode selected by the most recent Parse()
	mode string

	// the modes already descended through via NewMode()
	path []string

	// arguments remaining after Parse()
	remaining []string
}

// ParseResult is the result of the Parse() function.
type ParseResult int

// List of valid ParseResult values.
const (
	ParseContinue ParseResult = iota
	ParseHelp
	ParseError
)

// NewArgs supplies the command line arguments to be parsed. Typically
// called once with os.Args[1:].
func (md *Modes) NewArgs(args []string) {
	md.args = args
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.flags.SetOutput(io.Discard)
	md.submodes = md.submodes[:0]
	md.mode = ""
}

// NewMode descends into the mode selected by the previous Parse(). Flags
// and sub-modes added after NewMode() belong to the new mode.
func (md *Modes) NewMode() {
	if md.mode != "" {
		md.path = append(md.path, md.mode)
	}
	md.args = md.remaining
	md.flags = flag.NewFlagSet("", flag.ContinueOnError)
	md.flags.SetOutput(io.Discard)
	md.submodes = md.submodes[:0]
	md.mode = ""
}

// AddSubModes adds the list of valid sub-modes for the current mode. The
// first entry is the default, selected when no mode argument is present.
func (md *Modes) AddSubModes(submodes ...string) {
	md.submodes = append(md.submodes, submodes...)
}

// AddBool adds a boolean flag to the current mode.
func (md *Modes) AddBool(name string, value bool, usage string) *bool {
	return md.flags.Bool(name, value, usage)
}

// AddString adds a string flag to the current mode.
func (md *Modes) AddString(name string, value string, usage string) *string {
	return md.flags.String(name, value, usage)
}

// AddInt adds an integer flag to the current mode.
func (md *Modes) AddInt(name string, value int, usage string) *int {
	return md.flags.Int(name, value, usage)
}

// Parse the current arguments. The returned ParseResult indicates whether
// the program should continue or stop (because help has been printed or
// because of a parsing error).
func (md *Modes) Parse() (ParseResult, error) {
	err := md.flags.Parse(md.args)
	if err != nil {
		if err == flag.ErrHelp {
			md.printHelp()
			return ParseHelp, nil
		}
		return ParseError, err
	}

	md.remaining = md.flags.Args()

	// match first remaining argument against the list of sub-modes
	if len(md.submodes) > 0 {
		md.mode = md.submodes[0]
		if len(md.remaining) > 0 {
			arg := strings.ToUpper(md.remaining[0])
			for _, m := range md.submodes {
				if strings.ToUpper(m) == arg {
					md.mode = m
					md.remaining = md.remaining[1:]
					break
				}
			}
		}
	}

	return ParseContinue, nil
}

// Mode returns the mode selected by the most recent Parse(). The empty
// string is returned if the current mode has no sub-modes.
func (md *Modes) Mode() string {
	return md.mode
}

// Path returns the modes already descended through, separated by "/".
func (md *Modes) Path() string {
	return strings.Join(md.path, "/")
}

// RemainingArgs returns the arguments remaining after the most recent
// Parse(), less any sub-mode argument.
func (md *Modes) RemainingArgs() []string {
	return md.remaining
}

func (md *Modes) printHelp() {
	numFlags := 0
	md.flags.VisitAll(func(_ *flag.Flag) {
		numFlags++
	})

	if numFlags == 0 && len(md.submodes) == 0 {
		fmt.Fprintln(md.Output, "No help available")
		return
	}

	fmt.Fprintln(md.Output, "Usage:")

	if numFlags > 0 {
		md.flags.SetOutput(md.Output)
		md.flags.PrintDefaults()
		md.flags.SetOutput(io.Discard)
	}

	if len(md.submodes) > 0 {
		if numFlags > 0 {
			fmt.Fprintln(md.Output)
		}
		fmt.Fprintf(md.Output, "  available sub-modes: %s\n", strings.Join(md.submodes, ", "))
		fmt.Fprintf(md.Output, "    default: %s\n", md.submodes[0])
	}
}
