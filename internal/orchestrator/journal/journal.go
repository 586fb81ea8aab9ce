// Package journal persists every applied mutation as an append-only record
// so the orchestrator can rebuild identical in-memory state on restart by
// replaying the log through the same code paths.
package journal

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS ops (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	height      INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	payload     TEXT NOT NULL,
	recorded_at TEXT NOT NULL
);
`

// Kind names the operation a journal entry replays.
type Kind string

const (
	KindJobSubmit         Kind = "job_submit"
	KindJobTransition     Kind = "job_transition"
	KindJobRemove         Kind = "job_remove"
	KindProofSubmit       Kind = "proof_submit"
	KindProofVerify       Kind = "proof_verify"
	KindMarkVerified      Kind = "mark_verified"
	KindEventSubmit       Kind = "event_submit"
	KindTriggerRegister   Kind = "trigger_register"
	KindEventProcess      Kind = "event_process"
	KindTriggerDeactivate Kind = "trigger_deactivate"
)

// Entry is one journaled operation. Payload holds the operation's arguments
// as JSON; the concrete shape is owned by the service layer.
type Entry struct {
	Seq     int64
	Height  uint64
	Kind    Kind
	Payload json.RawMessage
}

// Journal is an append-only operation log backed by SQLite.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path. WAL mode and a single
// writer connection keep appends cheap and avoid SQLITE_BUSY under the
// orchestrator's serialized write pattern.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect journal: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("apply %q: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append records one applied operation. The payload must marshal to JSON.
func (j *Journal) Append(height uint64, kind Kind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	_, err = j.db.Exec(
		`INSERT INTO ops (height, kind, payload, recorded_at) VALUES (?, ?, ?, ?)`,
		int64(height), string(kind), string(raw), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("append %s: %w", kind, err)
	}
	return nil
}

// Replay streams every entry in append order. The callback must return nil
// for replay to continue; its error aborts and is returned unchanged.
func (j *Journal) Replay(fn func(Entry) error) error {
	rows, err := j.db.Query(`SELECT seq, height, kind, payload FROM ops ORDER BY seq`)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			entry   Entry
			kind    string
			payload string
		)
		if err := rows.Scan(&entry.Seq, &entry.Height, &kind, &payload); err != nil {
			return fmt.Errorf("scan journal entry: %w", err)
		}
		entry.Kind = Kind(kind)
		entry.Payload = json.RawMessage(payload)
		if err := fn(entry); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Len returns the number of journaled operations.
func (j *Journal) Len() (int64, error) {
	var n int64
	if err := j.db.QueryRow(`SELECT COUNT(*) FROM ops`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return n, nil
}
