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

package recorddb_test

import (
	"testing"

	"github.com/wipi-emu/wipiemu/recorddb"
	"github.com/wipi-emu/wipiemu/test"
)

func TestRecordIDs(t *testing.T) {
	rep := recorddb.NewRepository("")
	db := rep.Open("X")

	id := db.Add([]byte{1, 2, 3})
	test.ExpectEquality(t, id, 1)

	data, err := db.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, len(data), 3)
	test.ExpectEquality(t, data[0], uint8(1))
	test.ExpectEquality(t, data[2], uint8(3))

	test.ExpectEquality(t, db.NumRecords(), 1)

	// ids are monotonic and never reused
	id2 := db.Add([]byte{4})
	test.ExpectEquality(t, id2, 2)
	test.ExpectSuccess(t, db.Delete(2))
	id3 := db.Add([]byte{5})
	test.ExpectEquality(t, id3, 3)

	_, err = db.Get(2)
	test.ExpectFailure(t, err)
}

func TestSameInstance(t *testing.T) {
	rep := recorddb.NewRepository("")
	a := rep.Open("shared")
	b := rep.Open("shared")

	a.Add([]byte{0xff})
	test.ExpectEquality(t, b.NumRecords(), 1)
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()

	rep := recorddb.NewRepository(dir)
	db := rep.Open("persisted")
	db.Add([]byte{10, 20})
	db.Add([]byte{30})

	// a fresh repository on the same path sees the records
	rep2 := recorddb.NewRepository(dir)
	db2 := rep2.Open("persisted")
	test.ExpectEquality(t, db2.NumRecords(), 2)

	data, err := db2.Get(1)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, data[1], uint8(20))

	// id assignment continues after the highest persisted id
	test.ExpectEquality(t, db2.Add([]byte{40}), 3)
}
