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

package archive_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wipi-emu/wipiemu/archive"
	"github.com/wipi-emu/wipiemu/test"
)

func makeArchiveDir(t *testing.T, files map[string][]byte) string {
	t.Helper()
	dir := t.TempDir()
	for n, data := range files {
		p := filepath.Join(dir, filepath.FromSlash(n))
		test.ExpectSuccess(t, os.MkdirAll(filepath.Dir(p), 0700))
		test.ExpectSuccess(t, os.WriteFile(p, data, 0600))
	}
	return dir
}

func TestARMForm(t *testing.T) {
	dir := makeArchiveDir(t, map[string][]byte{
		"client.bin1024": {0x01, 0x02},
		"image.png":      {0xff},
	})

	arc, err := archive.Load(dir)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, arc.Form(), archive.FormARM)

	bin, bss := arc.Binary()
	test.ExpectEquality(t, len(bin), 2)
	test.ExpectEquality(t, bss, 1024)
}

func TestJavaForm(t *testing.T) {
	dir := makeArchiveDir(t, map[string][]byte{
		"MainApp.class":     {0xca, 0xfe, 0xba, 0xbe},
		"pkg/Helper.class":  {0xca, 0xfe, 0xba, 0xbe},
		"resources/img.png": {0x00},
	})

	arc, err := archive.Load(dir)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, arc.Form(), archive.FormJava)

	// the shallowest class file is the entry class guess
	test.ExpectEquality(t, arc.MainClass(), "MainApp")
}

func TestResourceIDs(t *testing.T) {
	dir := makeArchiveDir(t, map[string][]byte{
		"client.bin0": {0x01},
		"a.dat":       {0x01, 0x02, 0x03},
		"b.dat":       {0x04},
	})

	arc, err := archive.Load(dir)
	test.ExpectSuccess(t, err)

	// ids follow sorted filename order
	id, ok := arc.IDOf("a.dat")
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, id, 0)

	sz, ok := arc.SizeOf(id)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, sz, 3)

	// a leading slash in the resource path is accepted
	id2, ok := arc.IDOf("/b.dat")
	test.ExpectSuccess(t, ok)
	data, ok := arc.DataOf(id2)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, data[0], uint8(0x04))

	_, ok = arc.IDOf("missing.dat")
	test.ExpectFailure(t, ok)
}

func TestEmptyArchive(t *testing.T) {
	dir := makeArchiveDir(t, map[string][]byte{
		"readme.txt": {0x00},
	})

	_, err := archive.Load(dir)
	test.ExpectFailure(t, err)
}
