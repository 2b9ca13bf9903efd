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

// Package prefs is the disk-backed preferences system. Individual
// preference values (Bool, Int, String) are registered with a Disk
// instance against a key name. Load() and Save() transfer all registered
// values between memory and the prefs file.
//
// The prefs file is a plain text file of key/value pairs, one per line,
// separated by the string " ::: ". The first line of the file is the
// WarningBoilerPlate string.
package prefs

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/wipi-emu/wipiemu/curated"
)

// WarningBoilerPlate is the first line in a prefs file. It is checked for
// on Load() and written on Save().
const WarningBoilerPlate = "*** do not edit this file by hand ***"

// the string that separates a key from its value in the prefs file.
const keySep = " ::: "

// pref is the interface implemented by all preference value types.
type pref interface {
	fmt.Stringer

	// Set the value from any supported concrete type. an unsupported
	// type results in an error
	Set(v interface{}) error
}

// sentinel error patterns for the prefs package.
const (
	InvalidPrefsFile = "prefs: invalid prefs file: %s"
	NoPrefsFile      = "prefs: no prefs file: %s"
)

// Disk represents the prefs file on disk. Prefs values are registered with
// Add() and moved between disk and memory with Load() and Save().
type Disk struct {
	path    string
	entries map[string]pref

	// keys in registration order so that the file is deterministic
	keys []string
}

// NewDisk is the preferred method of initialisation for the Disk type.
func NewDisk(path string) (*Disk, error) {
	return &Disk{
		path:    path,
		entries: make(map[string]pref),
	}, nil
}

// Add registers a prefs value with the Disk instance.
func (dsk *Disk) Add(key string, p pref) error {
	if strings.Contains(key, keySep) {
		return curated.Errorf("prefs: invalid key: %s", key)
	}
	if _, ok := dsk.entries[key]; !ok {
		dsk.keys = append(dsk.keys, key)
	}
	dsk.entries[key] = p
	return nil
}

// Save all registered prefs values to disk. Values registered with other
// Disk instances on the same file are preserved.
func (dsk *Disk) Save() error {
	// load entries from the existing file so that keys belonging to other
	// Disk instances are not lost
	existing, _ := readPrefsFile(dsk.path)

	for _, k := range dsk.keys {
		existing[k] = dsk.entries[k].String()
	}

	s := strings.Builder{}
	s.WriteString(WarningBoilerPlate)
	s.WriteString("\n")

	keys := make([]string, 0, len(existing))
	for k := range existing {
		keys = append(keys, k)
	}
	sortStrings(keys)

	for _, k := range keys {
		s.WriteString(k)
		s.WriteString(keySep)
		s.WriteString(existing[k])
		s.WriteString("\n")
	}

	return os.WriteFile(dsk.path, []byte(s.String()), 0600)
}

// Load all registered prefs values from disk. A missing prefs file is not
// an error unless strict is true.
func (dsk *Disk) Load(strict bool) error {
	existing, err := readPrefsFile(dsk.path)
	if err != nil {
		if strict {
			return err
		}
		return nil
	}

	for k, v := range existing {
		if p, ok := dsk.entries[k]; ok {
			if err := p.Set(v); err != nil {
				return curated.Errorf(InvalidPrefsFile, err)
			}
		}
	}

	return nil
}

func readPrefsFile(path string) (map[string]string, error) {
	entries := make(map[string]string)

	data, err := os.ReadFile(path)
	if err != nil {
		return entries, curated.Errorf(NoPrefsFile, path)
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || lines[0] != WarningBoilerPlate {
		return entries, curated.Errorf(InvalidPrefsFile, path)
	}

	for _, l := range lines[1:] {
		if l == "" {
			continue
		}
		p := strings.SplitN(l, keySep, 2)
		if len(p) != 2 {
			return entries, curated.Errorf(InvalidPrefsFile, path)
		}
		entries[p[0]] = p[1]
	}

	return entries, nil
}

// insertion sort. the number of keys is always small
func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j] < s[j-1]; j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}

// Bool implements a boolean prefs value.
type Bool struct {
	value bool

	// callback on every change of value
	hook func(value bool) error
}

// Set the value. Accepts bool or string types.
func (p *Bool) Set(v interface{}) error {
	switch v := v.(type) {
	case bool:
		p.value = v
	case string:
		switch strings.ToLower(v) {
		case "true":
			p.value = true
		default:
			p.value = false
		}
	default:
		return curated.Errorf("prefs: cannot convert %T to prefs.Bool", v)
	}

	if p.hook != nil {
		return p.hook(p.value)
	}

	return nil
}

// Get returns the current value.
func (p *Bool) Get() bool {
	return p.value
}

func (p *Bool) String() string {
	return strconv.FormatBool(p.value)
}

// SetHookPost registers a callback to be run after every change of value.
func (p *Bool) SetHookPost(hook func(value bool) error) {
	p.hook = hook
}

// Int implements an integer prefs value.
type Int struct {
	value int
}

// Set the value. Accepts int or string types.
func (p *Int) Set(v interface{}) error {
	switch v := v.(type) {
	case int:
		p.value = v
	case string:
		i, err := strconv.Atoi(v)
		if err != nil {
			return curated.Errorf("prefs: cannot convert %s to prefs.Int", v)
		}
		p.value = i
	default:
		return curated.Errorf("prefs: cannot convert %T to prefs.Int", v)
	}
	return nil
}

// Get returns the current value.
func (p *Int) Get() int {
	return p.value
}

func (p *Int) String() string {
	return strconv.Itoa(p.value)
}

// String implements a string prefs value.
type String struct {
	value string
}

// Set the value.
func (p *String) Set(v interface{}) error {
	p.value = fmt.Sprintf("%v", v)
	return nil
}

// Get returns the current value.
func (p *String) Get() string {
	return p.value
}

func (p *String) String() string {
	return p.value
}
