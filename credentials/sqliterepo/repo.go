// Package sqliterepo persists the console's credential cache in a SQLite
// file so a signed-in operator survives restarts.
package sqliterepo

import (
	"database/sql"
	"path/filepath"
	"strings"

	"github.com/jrsteele09/kogase-admin/credentials"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS credentials (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

var _ credentials.Repo = (*Repo)(nil)

type Repo struct {
	db *sql.DB
}

// Open opens (creating if needed) the SQLite credential cache at path.
func Open(path string) (*Repo, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("[sqliterepo.Open] storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "sqliterepo.Open sql.Open")
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "sqliterepo.Open Ping")
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "sqliterepo.Open create table")
	}
	return &Repo{db: db}, nil
}

func (r *Repo) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *Repo) Get(key string) (string, bool, error) {
	var value string
	err := r.db.QueryRow(`SELECT value FROM credentials WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "Repo.Get %s", key)
	}
	return value, true, nil
}

func (r *Repo) SetMany(values map[string]string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "Repo.SetMany Begin")
	}
	defer func() { _ = tx.Rollback() }()

	for k, v := range values {
		if _, err := tx.Exec(
			`INSERT INTO credentials (key, value) VALUES (?, ?)
			 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, k, v); err != nil {
			return errors.Wrapf(err, "Repo.SetMany %s", k)
		}
	}
	return errors.Wrap(tx.Commit(), "Repo.SetMany Commit")
}

func (r *Repo) Delete(keys ...string) error {
	tx, err := r.db.Begin()
	if err != nil {
		return errors.Wrap(err, "Repo.Delete Begin")
	}
	defer func() { _ = tx.Rollback() }()

	for _, k := range keys {
		if _, err := tx.Exec(`DELETE FROM credentials WHERE key = ?`, k); err != nil {
			return errors.Wrapf(err, "Repo.Delete %s", k)
		}
	}
	return errors.Wrap(tx.Commit(), "Repo.Delete Commit")
}
