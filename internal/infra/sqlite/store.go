// Package sqlite keeps funnel hits, known chats and broadcast stats in a SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

const (
	opTimeout    = 5 * time.Second
	maxKeptStats = 100
)

const schema = `
CREATE TABLE IF NOT EXISTS visitors (
    chat_id    INTEGER PRIMARY KEY,
    first_seen TIMESTAMP NOT NULL
);
CREATE TABLE IF NOT EXISTS funnel_hits (
    chat_id  INTEGER NOT NULL,
    stage    TEXT NOT NULL,
    first_at TIMESTAMP NOT NULL,
    PRIMARY KEY (stage, chat_id)
);
CREATE TABLE IF NOT EXISTS broadcast_stats (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    total      INTEGER NOT NULL,
    sent       INTEGER NOT NULL,
    failed     INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL
);
`

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dsn and applies the schema.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "migrate sqlite")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveUser registers a chat; the first time it was seen is kept.
func (s *Store) SaveUser(chatID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors(chat_id, first_seen) VALUES(?, ?) ON CONFLICT(chat_id) DO NOTHING`,
		chatID, time.Now().UTC())
	return errors.Wrap(err, "save visitor")
}

func (s *Store) ListChatIDs() ([]int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id FROM visitors ORDER BY chat_id`)
	if err != nil {
		return nil, errors.Wrap(err, "list visitors")
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scan visitor")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "list visitors")
}

// Hit records that chatID reached stage; repeated hits are ignored.
func (s *Store) Hit(stage usecase.Stage, chatID int64) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO funnel_hits(chat_id, stage, first_at) VALUES(?, ?, ?) ON CONFLICT(stage, chat_id) DO NOTHING`,
		chatID, string(stage), time.Now().UTC())
	return errors.Wrap(err, "insert funnel hit")
}

func (s *Store) Counts() (map[usecase.Stage]int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT stage, COUNT(*) FROM funnel_hits GROUP BY stage`)
	if err != nil {
		return nil, errors.Wrap(err, "query funnel counts")
	}
	defer rows.Close()
	out := map[usecase.Stage]int{}
	for rows.Next() {
		var stage string
		var n int
		if err := rows.Scan(&stage, &n); err != nil {
			return nil, errors.Wrap(err, "scan funnel count")
		}
		out[usecase.Stage(stage)] = n
	}
	return out, errors.Wrap(rows.Err(), "query funnel counts")
}

// Save stores a broadcast run and drops all but the newest maxKeptStats runs.
func (s *Store) Save(stat usecase.BroadcastStat) error {
	if stat.CreatedAt.IsZero() {
		stat.CreatedAt = time.Now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin broadcast stat")
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO broadcast_stats(total, sent, failed, created_at) VALUES(?, ?, ?, ?)`,
		stat.Total, stat.Sent, stat.Failed, stat.CreatedAt.UTC()); err != nil {
		return errors.Wrap(err, "save broadcast stat")
	}
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM broadcast_stats WHERE id NOT IN (SELECT id FROM broadcast_stats ORDER BY id DESC LIMIT ?)`,
		maxKeptStats); err != nil {
		return errors.Wrap(err, "trim broadcast stats")
	}
	return errors.Wrap(tx.Commit(), "commit broadcast stat")
}

// ListRecent returns up to n stats, newest first; n <= 0 means all kept stats.
func (s *Store) ListRecent(n int) ([]usecase.BroadcastStat, error) {
	if n <= 0 {
		n = maxKeptStats
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	rows, err := s.db.QueryContext(ctx,
		`SELECT total, sent, failed, created_at FROM broadcast_stats ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, errors.Wrap(err, "list broadcast stats")
	}
	defer rows.Close()
	var out []usecase.BroadcastStat
	for rows.Next() {
		var st usecase.BroadcastStat
		if err := rows.Scan(&st.Total, &st.Sent, &st.Failed, &st.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan broadcast stat")
		}
		out = append(out, st)
	}
	return out, errors.Wrap(rows.Err(), "list broadcast stats")
}
