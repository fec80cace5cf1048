// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package sqlitedb implements kv.Store on a single sqlite table.
package sqlitedb

import (
	"database/sql"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/posledger/kv"
)

const kvTableSchema = `
CREATE TABLE IF NOT EXISTS kv (
	k BLOB PRIMARY KEY,
	v BLOB NOT NULL
) WITHOUT ROWID;
`

const (
	getQuery    = "SELECT v FROM kv WHERE k = ?"
	hasQuery    = "SELECT 1 FROM kv WHERE k = ?"
	putQuery    = "INSERT OR REPLACE INTO kv(k, v) VALUES (?, ?)"
	deleteQuery = "DELETE FROM kv WHERE k = ?"
)

// ErrNotFound is returned by Get when the key is absent.
var ErrNotFound = errors.New("sqlitedb: not found")

var _ kv.StoreCloser = (*SQLiteDB)(nil)

// SQLiteDB is a kv store in a sqlite database.
type SQLiteDB struct {
	path          string
	db            *sql.DB
	stmtCache     *stmtCache
	driverVersion string
}

// New create or open the db at given path.
func New(path string) (sdb *SQLiteDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if sdb == nil {
			db.Close()
		}
	}()
	// an in-memory database lives in one connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(kvTableSchema); err != nil {
		return nil, errors.Wrap(err, "create kv table")
	}

	driverVer, _, _ := sqlite3.Version()
	return &SQLiteDB{
		path:          path,
		db:            db,
		stmtCache:     newStmtCache(db),
		driverVersion: driverVer,
	}, nil
}

// NewMem create a db in ram.
func NewMem() (*SQLiteDB, error) {
	return New(":memory:")
}

// Path returns the path the db was opened at.
func (s *SQLiteDB) Path() string {
	return s.path
}

// DriverVersion returns the sqlite library version.
func (s *SQLiteDB) DriverVersion() string {
	return s.driverVersion
}

// Close close the db.
func (s *SQLiteDB) Close() error {
	s.stmtCache.Clear()
	return s.db.Close()
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (s *SQLiteDB) IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

type queryer interface {
	QueryRow(args ...any) *sql.Row
}

func get(q queryer, key []byte) ([]byte, error) {
	var val []byte
	if err := q.QueryRow(key).Scan(&val); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if val == nil {
		val = []byte{}
	}
	return val, nil
}

func has(q queryer, key []byte) (bool, error) {
	var one int
	if err := q.QueryRow(key).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Get retrieve value for given key.
func (s *SQLiteDB) Get(key []byte) ([]byte, error) {
	stmt, err := s.stmtCache.Prepare(getQuery)
	if err != nil {
		return nil, err
	}
	return get(stmt, key)
}

// Has returns whether a key exists.
func (s *SQLiteDB) Has(key []byte) (bool, error) {
	stmt, err := s.stmtCache.Prepare(hasQuery)
	if err != nil {
		return false, err
	}
	return has(stmt, key)
}

// Put save value for given key.
func (s *SQLiteDB) Put(key, val []byte) error {
	stmt, err := s.stmtCache.Prepare(putQuery)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(key, nonNil(val))
	return err
}

// Delete deletes the given key and its value.
func (s *SQLiteDB) Delete(key []byte) error {
	stmt, err := s.stmtCache.Prepare(deleteQuery)
	if err != nil {
		return err
	}
	_, err = stmt.Exec(key)
	return err
}

func (s *SQLiteDB) execInTx(proc func(*sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

type txStmt struct {
	tx    *sql.Tx
	query string
}

func (t txStmt) QueryRow(args ...any) *sql.Row {
	return t.tx.QueryRow(t.query, args...)
}

// Snapshot implements kv.Store. The db is not usable from outside fn until
// it returns.
func (s *SQLiteDB) Snapshot(fn func(kv.Getter) error) error {
	return s.execInTx(func(tx *sql.Tx) error {
		return fn(&struct {
			kv.GetFunc
			kv.HasFunc
			kv.IsNotFoundFunc
		}{
			func(key []byte) ([]byte, error) { return get(txStmt{tx, getQuery}, key) },
			func(key []byte) (bool, error) { return has(txStmt{tx, hasQuery}, key) },
			s.IsNotFound,
		})
	})
}

// Batch implements kv.Store. Writes go into a transaction that is committed
// on Flush and when fn returns nil.
func (s *SQLiteDB) Batch(fn func(kv.PutFlusher) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if tx != nil {
			tx.Rollback()
		}
	}()

	flush := func() error {
		if err := tx.Commit(); err != nil {
			tx = nil
			return err
		}
		next, err := s.db.Begin()
		if err != nil {
			tx = nil
			return err
		}
		tx = next
		return nil
	}

	if err := fn(&struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.FlushFunc
	}{
		func(key, val []byte) error {
			_, err := tx.Exec(putQuery, key, nonNil(val))
			return err
		},
		func(key []byte) error {
			_, err := tx.Exec(deleteQuery, key)
			return err
		},
		flush,
	}); err != nil {
		return err
	}

	err = tx.Commit()
	tx = nil
	return err
}

type pair struct {
	k, v []byte
}

func (p *pair) Key() []byte   { return p.k }
func (p *pair) Value() []byte { return p.v }

// Iterate implements kv.Store. The range is read before fn is called, so fn
// may access the db.
func (s *SQLiteDB) Iterate(rng kv.Range, fn func(kv.Pair) bool) error {
	query := "SELECT k, v FROM kv WHERE k >= ?"
	args := []any{nonNil(rng.Start)}
	if len(rng.Limit) > 0 {
		query += " AND k < ?"
		args = append(args, rng.Limit)
	}
	query += " ORDER BY k ASC"

	pairs, err := s.queryPairs(query, args...)
	if err != nil {
		return err
	}
	for _, p := range pairs {
		if !fn(p) {
			break
		}
	}
	return nil
}

func (s *SQLiteDB) queryPairs(query string, args ...any) ([]*pair, error) {
	stmt, err := s.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.Query(args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []*pair
	for rows.Next() {
		p := &pair{}
		if err := rows.Scan(&p.k, &p.v); err != nil {
			return nil, err
		}
		if p.v == nil {
			p.v = []byte{}
		}
		pairs = append(pairs, p)
	}
	return pairs, rows.Err()
}

// sqlite stores a nil slice as NULL
func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}
