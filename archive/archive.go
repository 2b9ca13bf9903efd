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

// Package archive loads WIPI application archives. An archive is a
// directory shaped resource namespace, supplied either as an actual
// directory or as a zip file.
//
// Applications ship in one of two forms and the archive identifies which:
//
//   - ARM form: the archive contains a file named "client.bin<NNN>" where
//     NNN is the decimal byte count of the binary's bss section
//   - Java form: the archive contains compiled "*.class" files
//
// The archive doubles as the resource filesystem visible to the running
// application, with resource ids assigned in sorted filename order.
package archive

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wipi-emu/wipiemu/curated"
)

// sentinel error patterns for the archive package.
const (
	NotFound        = "archive: resource not found: %s"
	InvalidArchive  = "archive: invalid archive: %v"
	UnknownAppForm  = "archive: no client.bin or class files in archive"
)

// Form of the application in the archive.
type Form int

// List of valid Form values.
const (
	FormARM Form = iota
	FormJava
)

func (f Form) String() string {
	switch f {
	case FormARM:
		return "ARM"
	case FormJava:
		return "Java"
	}
	panic("unknown application form")
}

// Archive is a loaded application archive.
type Archive struct {
	path  string
	files map[string][]byte

	// filenames in sorted order. the index into this slice is the
	// resource id exposed through the WIPI-C kernel interface
	names []string

	form Form

	// for FormARM archives: the name of the binary and the size of the
	// bss section encoded in its filename
	binName string
	bssSize int
}

// Load reads the application archive at the supplied path. The path can
// be a directory or a zip file.
func Load(path string) (*Archive, error) {
	arc := &Archive{
		path:  path,
		files: make(map[string][]byte),
	}

	fi, err := os.Stat(path)
	if err != nil {
		return nil, curated.Errorf(InvalidArchive, err)
	}

	if fi.IsDir() {
		err = arc.loadDir(path)
	} else {
		err = arc.loadZip(path)
	}
	if err != nil {
		return nil, err
	}

	for n := range arc.files {
		arc.names = append(arc.names, n)
	}
	sort.Strings(arc.names)

	if err := arc.identify(); err != nil {
		return nil, err
	}

	return arc, nil
}

func (arc *Archive) loadDir(path string) error {
	return filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return curated.Errorf(InvalidArchive, err)
		}
		if info.IsDir() {
			return nil
		}

		data, err := os.ReadFile(p)
		if err != nil {
			return curated.Errorf(InvalidArchive, err)
		}

		rel, err := filepath.Rel(path, p)
		if err != nil {
			return curated.Errorf(InvalidArchive, err)
		}

		arc.files[filepath.ToSlash(rel)] = data
		return nil
	})
}

func (arc *Archive) loadZip(path string) error {
	z, err := zip.OpenReader(path)
	if err != nil {
		return curated.Errorf(InvalidArchive, err)
	}
	defer z.Close()

	for _, f := range z.File {
		if f.FileInfo().IsDir() {
			continue
		}

		r, err := f.Open()
		if err != nil {
			return curated.Errorf(InvalidArchive, err)
		}
		data, err := io.ReadAll(r)
		r.Close()
		if err != nil {
			return curated.Errorf(InvalidArchive, err)
		}

		arc.files[f.Name] = data
	}

	return nil
}

// identify the application form from the archive contents.
func (arc *Archive) identify() error {
	for _, n := range arc.names {
		base := filepath.Base(n)
		if strings.HasPrefix(base, "client.bin") {
			sz, err := strconv.Atoi(base[len("client.bin"):])
			if err != nil {
				return curated.Errorf("archive: malformed bss size in %s", base)
			}
			arc.form = FormARM
			arc.binName = n
			arc.bssSize = sz
			return nil
		}
	}

	for _, n := range arc.names {
		if strings.HasSuffix(n, ".class") {
			arc.form = FormJava
			return nil
		}
	}

	return curated.Errorf(UnknownAppForm)
}

// Form of the application in the archive.
func (arc *Archive) Form() Form {
	return arc.form
}

// Binary returns the ARM binary and its bss size. Valid for FormARM
// archives only.
func (arc *Archive) Binary() ([]byte, int) {
	return arc.files[arc.binName], arc.bssSize
}

// MainClass guesses the application's entry class: the class file
// shallowest in the archive. Between class files of equal depth the first
// in sorted order wins; the file name itself carries no weight. A
// launcher flag can override the guess.
func (arc *Archive) MainClass() string {
	best := ""
	bestDepth := -1
	for _, n := range arc.names {
		if !strings.HasSuffix(n, ".class") {
			continue
		}
		depth := strings.Count(n, "/")
		if bestDepth == -1 || depth < bestDepth {
			best = n
			bestDepth = depth
		}
	}
	return strings.TrimSuffix(best, ".class")
}

// Files returns the names of all files in the archive, sorted.
func (arc *Archive) Files() []string {
	return arc.names
}

// Exists checks for the named file.
func (arc *Archive) Exists(name string) bool {
	_, ok := arc.files[name]
	return ok
}

// Data returns the content of the named file.
func (arc *Archive) Data(name string) ([]byte, error) {
	data, ok := arc.files[name]
	if !ok {
		return nil, curated.Errorf(NotFound, name)
	}
	return data, nil
}

// IDOf returns the resource id of the named file. Resource ids are the
// index of the filename in sorted order.
func (arc *Archive) IDOf(name string) (int, bool) {
	// resource paths can arrive with a leading slash
	name = strings.TrimPrefix(name, "/")
	for i, n := range arc.names {
		if n == name {
			return i, true
		}
	}
	return 0, false
}

// SizeOf returns the size of the resource with the supplied id.
func (arc *Archive) SizeOf(id int) (int, bool) {
	if id < 0 || id >= len(arc.names) {
		return 0, false
	}
	return len(arc.files[arc.names[id]]), true
}

// DataOf returns the content of the resource with the supplied id.
func (arc *Archive) DataOf(id int) ([]byte, bool) {
	if id < 0 || id >= len(arc.names) {
		return nil, false
	}
	return arc.files[arc.names[id]], true
}
