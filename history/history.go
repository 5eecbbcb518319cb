// Package history keeps a local audit trail of completed operations in
// a SQLite database under the user's config directory.
package history

import (
	"database/sql"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tailtray/tailtray/common"
)

const schema = `
CREATE TABLE IF NOT EXISTS operations (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	ts       INTEGER NOT NULL,
	op       TEXT    NOT NULL,
	detail   TEXT    NOT NULL DEFAULT '',
	ok       INTEGER NOT NULL,
	error    TEXT    NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_operations_ts ON operations(ts);
`

// Entry is one recorded operation.
type Entry struct {
	ID     int64
	Time   time.Time
	Op     string
	Detail string
	OK     bool
	Error  string
}

// Log records operations. It satisfies the orchestrator's Recorder
// interface; recording failures are logged and swallowed so an audit
// problem never breaks a user action.
type Log struct {
	db *sql.DB
}

// Open opens the history database in the config directory, creating it
// and its schema when missing.
func Open() (*Log, error) {
	configDir, err := common.GetConfigDir()
	if err != nil {
		return nil, common.WrapError(err, "resolve history path")
	}
	return OpenAt(filepath.Join(configDir, common.HistoryFileName))
}

// OpenAt opens the history database at an explicit path.
func OpenAt(path string) (*Log, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, common.WrapError(err, "open history database")
	}
	// The applet is the only writer; a single connection avoids
	// SQLITE_BUSY between the orchestrator and CLI queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, common.WrapError(err, "create history schema")
	}
	return &Log{db: db}, nil
}

// Record stores one completed operation.
func (l *Log) Record(op, detail string, opErr error) {
	ok := 1
	errText := ""
	if opErr != nil {
		ok = 0
		errText = opErr.Error()
	}

	_, err := l.db.Exec(
		"INSERT INTO operations (ts, op, detail, ok, error) VALUES (?, ?, ?, ?, ?)",
		time.Now().Unix(), op, detail, ok, errText,
	)
	if err != nil {
		common.LogWarn("Failed to record operation %s: %v", op, err)
	}
}

// Recent returns up to limit entries, newest first.
func (l *Log) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := l.db.Query(
		"SELECT id, ts, op, detail, ok, error FROM operations ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, common.WrapError(err, "query history")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var ts int64
		var ok int
		if err := rows.Scan(&e.ID, &ts, &e.Op, &e.Detail, &ok, &e.Error); err != nil {
			return nil, common.WrapError(err, "scan history row")
		}
		e.Time = time.Unix(ts, 0)
		e.OK = ok == 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than the retention window.
func (l *Log) Prune(retain time.Duration) error {
	cutoff := time.Now().Add(-retain).Unix()
	_, err := l.db.Exec("DELETE FROM operations WHERE ts < ?", cutoff)
	if err != nil {
		return common.WrapError(err, "prune history")
	}
	return nil
}

// Close closes the underlying database.
func (l *Log) Close() error {
	return l.db.Close()
}
