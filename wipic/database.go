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

package wipic

import (
	"github.com/wipi-emu/wipiemu/logger"
	"github.com/wipi-emu/wipiemu/recorddb"
)

// dbHandle is an open C database handle.
type dbHandle struct {
	db *recorddb.Database
}

// databaseMethodTable returns the ordered database interface.
func databaseMethodTable() []method {
	return []method{
		{name: "MC_dbOpenDataBase", argc: 3, body: dbOpen},
		{name: "MC_dbCloseDataBase", argc: 1, body: dbClose},
		stub(2, "MC_dbDestroyDataBase"),
		{name: "MC_dbInsertRecord", argc: 3, body: dbInsertRecord},
		{name: "MC_dbSelectRecord", argc: 4, body: dbSelectRecord},
		stub(5, "MC_dbUpdateRecord"),
		{name: "MC_dbDeleteRecord", argc: 2, body: dbDeleteRecord},
		stub(7, "MC_dbListRecords"),
		{name: "MC_dbGetNumberOfRecords", argc: 1, body: dbNumRecords},
		{name: "MC_dbGetRecordSize", argc: 2, body: dbRecordSize},
		stub(10, "MC_dbSelectAllRecords"),
	}
}

func dbOpen(brd *Bridge, args []uint32) (uint32, error) {
	name, err := brd.stringArg(args[0])
	if err != nil {
		return 0, err
	}

	h := brd.nextDB
	brd.nextDB++
	brd.databases[h] = dbHandle{db: brd.bck.Records.Open(name)}

	return h, nil
}

func dbClose(brd *Bridge, args []uint32) (uint32, error) {
	if _, ok := brd.databases[args[0]]; !ok {
		logger.Logf("WIPI-C", "MC_dbCloseDataBase(%#x): not open", args[0])
		return errValue, nil
	}
	delete(brd.databases, args[0])
	return 0, nil
}

func dbInsertRecord(brd *Bridge, args []uint32) (uint32, error) {
	h, ok := brd.databases[args[0]]
	if !ok {
		return errValue, nil
	}

	data, err := brd.core.Memory().ReadBytes(args[1], args[2])
	if err != nil {
		return 0, err
	}

	return uint32(h.db.Add(data)), nil
}

func dbSelectRecord(brd *Bridge, args []uint32) (uint32, error) {
	h, ok := brd.databases[args[0]]
	if !ok {
		return errValue, nil
	}

	data, err := h.db.Get(int(args[1]))
	if err != nil {
		logger.Log("WIPI-C", err)
		return errValue, nil
	}

	if uint32(len(data)) > args[3] {
		return errValue, nil
	}

	if err := brd.core.Memory().WriteBytes(args[2], data); err != nil {
		return 0, err
	}

	return uint32(len(data)), nil
}

func dbDeleteRecord(brd *Bridge, args []uint32) (uint32, error) {
	h, ok := brd.databases[args[0]]
	if !ok {
		return errValue, nil
	}

	if err := h.db.Delete(int(args[1])); err != nil {
		logger.Log("WIPI-C", err)
		return errValue, nil
	}

	return 0, nil
}

func dbNumRecords(brd *Bridge, args []uint32) (uint32, error) {
	h, ok := brd.databases[args[0]]
	if !ok {
		return errValue, nil
	}
	return uint32(h.db.NumRecords()), nil
}

func dbRecordSize(brd *Bridge, args []uint32) (uint32, error) {
	h, ok := brd.databases[args[0]]
	if !ok {
		return errValue, nil
	}

	data, err := h.db.Get(int(args[1]))
	if err != nil {
		logger.Log("WIPI-C", err)
		return errValue, nil
	}

	return uint32(len(data)), nil
}
