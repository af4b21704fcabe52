// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/stakevault/builtin/staker"
	"github.com/vechain/stakevault/log"
	"github.com/vechain/stakevault/thor"
)

var logger = log.WithContext("pkg", "logdb")

const memPath = ":memory:"

// LogDB stores the history of engine events in sqlite.
type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	dsn := path
	if path != memPath {
		dsn += "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a memory database only lives as long as its connection
	if path == memPath {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(eventTableSchema); err != nil {
		return nil, errors.Wrap(err, "create schema")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(memPath)
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// FilterEvents returns the stored events matching filter.
func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	if filter == nil {
		return db.queryEvents(ctx, eventSelect+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	var (
		args  []any
		query = eventSelect + " WHERE 1"
	)
	if filter.Range != nil {
		query += " AND time >= ?"
		args = append(args, filter.Range.From)
		if filter.Range.To >= filter.Range.From {
			query += " AND time <= ?"
			args = append(args, filter.Range.To)
		}
	}
	for i, c := range filter.CriteriaSet {
		cond, cargs := eventCriteriaToWhereCondition(c)
		if i == 0 {
			query += " AND ((" + cond + ")"
		} else {
			query += " OR (" + cond + ")"
		}
		if i == len(filter.CriteriaSet)-1 {
			query += ")"
		}
		args = append(args, cargs...)
	}

	if filter.Order == DESC {
		query += " ORDER BY seq DESC"
	} else {
		query += " ORDER BY seq ASC"
	}
	if filter.Options != nil {
		query += " LIMIT ?, ?"
		args = append(args, filter.Options.Offset, filter.Options.Limit)
	}
	return db.queryEvents(ctx, query, args...)
}

func eventCriteriaToWhereCondition(c *EventCriteria) (cond string, args []any) {
	cond = "1"
	if c.Asset != nil {
		cond += " AND asset = ?"
		args = append(args, c.Asset.Bytes())
	}
	if c.Account != nil {
		cond += " AND account = ?"
		args = append(args, c.Account.Bytes())
	}
	if c.Kind != nil {
		cond += " AND kind = ?"
		args = append(args, string(*c.Kind))
	}
	return
}

func (db *LogDB) queryEvents(ctx context.Context, query string, args ...any) ([]*Event, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq          int64
			kind         string
			asset        []byte
			account      []byte
			amount       []byte
			principal    []byte
			reward       []byte
			stakedAmount []byte
			vaultClosed  bool
			time         int64
		)
		if err := rows.Scan(
			&seq,
			&kind,
			&asset,
			&account,
			&amount,
			&principal,
			&reward,
			&stakedAmount,
			&vaultClosed,
			&time,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			Seq: seq,
			Event: &staker.Event{
				Kind:         staker.EventKind(kind),
				Asset:        thor.BytesToAddress(asset),
				Account:      thor.BytesToAddress(account),
				Amount:       decodeAmount(amount),
				Principal:    decodeAmount(principal),
				Reward:       decodeAmount(reward),
				StakedAmount: decodeAmount(stakedAmount),
				VaultClosed:  vaultClosed,
				Time:         uint64(time),
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) lastSequence() (sequence, error) {
	var seq sql.NullInt64
	if err := db.db.QueryRow("SELECT MAX(seq) FROM event").Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return -1, nil
	}
	return sequence(seq.Int64), nil
}

// NewWriter creates a log writer. Only one writer should be active at a time.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db}
}

// Writer appends events in transactions.
type Writer struct {
	db   *LogDB
	tx   *sql.Tx
	last sequence
	len  int
}

// Write stages events in the current transaction, opening one if needed.
func (w *Writer) Write(events ...*staker.Event) error {
	// prepared outside the transaction, which may hold the only connection
	stmt, err := w.db.stmtCache.Prepare(eventInsert)
	if err != nil {
		return err
	}
	if w.tx == nil {
		last, err := w.db.lastSequence()
		if err != nil {
			return errors.Wrap(err, "last sequence")
		}
		tx, err := w.db.db.Begin()
		if err != nil {
			return err
		}
		w.tx, w.last = tx, last
	}

	stmt = w.tx.Stmt(stmt)
	for _, ev := range events {
		seq, err := w.next(ev.Time)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(
			int64(seq),
			string(ev.Kind),
			ev.Asset.Bytes(),
			ev.Account.Bytes(),
			encodeAmount(ev.Amount),
			encodeAmount(ev.Principal),
			encodeAmount(ev.Reward),
			encodeAmount(ev.StakedAmount),
			ev.VaultClosed,
			int64(seq.Time()),
		); err != nil {
			return err
		}
		w.last = seq
		w.len++
	}
	return nil
}

func (w *Writer) next(time uint64) (sequence, error) {
	if w.last < 0 {
		return newSequence(time, 0)
	}
	seq, err := w.last.next(time)
	if err != nil {
		return 0, fmt.Errorf("sequence after %d at time %d: %w", w.last, time, err)
	}
	return seq, nil
}

// Commit commits accumulated events.
func (w *Writer) Commit() error {
	if w.tx == nil {
		return nil
	}
	defer w.reset()
	if err := w.tx.Commit(); err != nil {
		return err
	}
	metricWrittenEvents().Add(int64(w.len))
	return nil
}

// Rollback drops all uncommitted events.
func (w *Writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	defer w.reset()
	return w.tx.Rollback()
}

// UncommittedCount returns the count of uncommitted events.
func (w *Writer) UncommittedCount() int {
	return w.len
}

func (w *Writer) reset() {
	w.tx = nil
	w.len = 0
}

func encodeAmount(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func decodeAmount(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
