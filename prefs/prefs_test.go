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

package prefs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/wipi-emu/wipiemu/prefs"
	"github.com/wipi-emu/wipiemu/test"
)

func tmpPrefsFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "wipiemu_prefs_test")
}

func TestBool(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.ExpectSuccess(t, err)

	var v prefs.Bool
	var w prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Add("testB", &w))

	test.ExpectSuccess(t, v.Set(true))
	test.ExpectSuccess(t, w.Set("foo"))
	test.ExpectEquality(t, v.Get(), true)
	test.ExpectEquality(t, w.Get(), false)

	test.ExpectSuccess(t, dsk.Save())

	// reset values and load them back from disk
	test.ExpectSuccess(t, v.Set(false))
	test.ExpectSuccess(t, dsk.Load(true))
	test.ExpectEquality(t, v.Get(), true)
}

func TestIntAndString(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.ExpectSuccess(t, err)

	var i prefs.Int
	var s prefs.String
	test.ExpectSuccess(t, dsk.Add("int", &i))
	test.ExpectSuccess(t, dsk.Add("str", &s))

	test.ExpectSuccess(t, i.Set(100))
	test.ExpectSuccess(t, s.Set("hello"))
	test.ExpectSuccess(t, dsk.Save())

	test.ExpectSuccess(t, i.Set(0))
	test.ExpectSuccess(t, s.Set(""))
	test.ExpectSuccess(t, dsk.Load(true))
	test.ExpectEquality(t, i.Get(), 100)
	test.ExpectEquality(t, s.Get(), "hello")
}

func TestBoilerPlate(t *testing.T) {
	fn := tmpPrefsFile(t)

	dsk, err := prefs.NewDisk(fn)
	test.ExpectSuccess(t, err)

	var v prefs.Bool
	test.ExpectSuccess(t, dsk.Add("test", &v))
	test.ExpectSuccess(t, dsk.Save())

	data, err := os.ReadFile(fn)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, string(data), prefs.WarningBoilerPlate+"\ntest ::: false\n")
}

func TestInvalidFile(t *testing.T) {
	fn := tmpPrefsFile(t)
	test.ExpectSuccess(t, os.WriteFile(fn, []byte("not a prefs file\n"), 0600))

	dsk, err := prefs.NewDisk(fn)
	test.ExpectSuccess(t, err)
	test.ExpectFailure(t, dsk.Load(true))
}
