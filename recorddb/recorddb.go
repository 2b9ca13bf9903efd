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

// Package recorddb is the record store behind the WIPI database APIs
// (both the org.kwis.msp.db classes and the WIPI-C database interface).
//
// A Repository holds any number of named databases. A database is a set
// of records keyed by a positive integer id; ids are assigned
// monotonically within a database and are never reused during a run.
//
// Databases persist to disk as one file per database under the
// repository path. The file format is line oriented: a header line
// followed by one "id,hex-data" line per record.
package recorddb

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/wipi-emu/wipiemu/curated"
	"github.com/wipi-emu/wipiemu/logger"
)

// sentinel error patterns for the recorddb package.
const (
	NoSuchRecord   = "recorddb: %s: no such record: %d"
	InvalidDBFile  = "recorddb: invalid database file: %s"
	PersistFailure = "recorddb: cannot persist %s: %v"
)

const fileHeader = "wipiemu database"

// Repository is a collection of named databases rooted at a directory.
type Repository struct {
	// path of the directory the databases persist to. an empty path
	// means the repository is memory only
	path string

	open map[string]*Database
}

// NewRepository is the preferred method of initialisation for the
// Repository type. The path argument is the directory to persist
// databases to; the empty string creates a memory-only repository.
func NewRepository(path string) *Repository {
	return &Repository{
		path: path,
		open: make(map[string]*Database),
	}
}

// Open returns the named database, creating it if necessary. The same
// *Database instance is returned for every Open() of the same name.
func (rep *Repository) Open(name string) *Database {
	if db, ok := rep.open[name]; ok {
		return db
	}

	db := &Database{
		rep:     rep,
		name:    name,
		records: make(map[int][]byte),
		nextID:  1,
	}

	if rep.path != "" {
		// a missing file is the common case for a new database.
		// anything else is logged once
		if err := db.load(); err != nil && !os.IsNotExist(err) {
			logger.Log("recorddb", err)
		}
	}

	rep.open[name] = db
	return db
}

// Database is a single named record store.
type Database struct {
	rep     *Repository
	name    string
	records map[int][]byte
	nextID  int
}

// Name returns the name the database was opened with.
func (db *Database) Name() string {
	return db.name
}

// Add appends a record and returns the assigned id. Ids are positive and
// assigned monotonically.
func (db *Database) Add(data []byte) int {
	id := db.nextID
	db.nextID++

	c := make([]byte, len(data))
	copy(c, data)
	db.records[id] = c

	db.persist()
	return id
}

// Get returns the record with the supplied id.
func (db *Database) Get(id int) ([]byte, error) {
	data, ok := db.records[id]
	if !ok {
		return nil, curated.Errorf(NoSuchRecord, db.name, id)
	}
	c := make([]byte, len(data))
	copy(c, data)
	return c, nil
}

// Set replaces the record with the supplied id.
func (db *Database) Set(id int, data []byte) error {
	if _, ok := db.records[id]; !ok {
		return curated.Errorf(NoSuchRecord, db.name, id)
	}
	c := make([]byte, len(data))
	copy(c, data)
	db.records[id] = c
	db.persist()
	return nil
}

// Delete removes the record with the supplied id. The id is not reused.
func (db *Database) Delete(id int) error {
	if _, ok := db.records[id]; !ok {
		return curated.Errorf(NoSuchRecord, db.name, id)
	}
	delete(db.records, id)
	db.persist()
	return nil
}

// IDs returns the ids of all records in ascending order.
func (db *Database) IDs() []int {
	ids := make([]int, 0, len(db.records))
	for id := range db.records {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// NumRecords returns the number of records in the database.
func (db *Database) NumRecords() int {
	return len(db.records)
}

func (db *Database) filename() string {
	// database names can contain characters that are awkward in a
	// filename
	n := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, db.name)
	return filepath.Join(db.rep.path, n+".db")
}

func (db *Database) persist() {
	if db.rep.path == "" {
		return
	}

	s := strings.Builder{}
	s.WriteString(fileHeader)
	s.WriteString("\n")

	for _, id := range db.IDs() {
		s.WriteString(fmt.Sprintf("%d,%s\n", id, hex.EncodeToString(db.records[id])))
	}

	if err := os.WriteFile(db.filename(), []byte(s.String()), 0600); err != nil {
		logger.Log("recorddb", curated.Errorf(PersistFailure, db.name, err))
	}
}

func (db *Database) load() error {
	data, err := os.ReadFile(db.filename())
	if err != nil {
		return err
	}

	lines := strings.Split(string(data), "\n")
	if len(lines) == 0 || lines[0] != fileHeader {
		return curated.Errorf(InvalidDBFile, db.filename())
	}

	for _, l := range lines[1:] {
		if l == "" {
			continue
		}
		p := strings.SplitN(l, ",", 2)
		if len(p) != 2 {
			return curated.Errorf(InvalidDBFile, db.filename())
		}
		id, err := strconv.Atoi(p[0])
		if err != nil {
			return curated.Errorf(InvalidDBFile, db.filename())
		}
		rec, err := hex.DecodeString(p[1])
		if err != nil {
			return curated.Errorf(InvalidDBFile, db.filename())
		}
		db.records[id] = rec
		if id >= db.nextID {
			db.nextID = id + 1
		}
	}

	return nil
}
