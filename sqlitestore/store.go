// Package sqlitestore provides a SQLite-backed lifedb.Storage.
package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/andreyvit/lifedb"
	_ "modernc.org/sqlite"
)

var tableNameRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store persists the encoded records of one entity kind in a SQLite table.
type Store struct {
	mu    sync.Mutex
	sqlDB *sql.DB
	table string

	insertSQL string
	deleteSQL string
	selectSQL string
	getSQL    string
}

// Open opens (creating if necessary) a SQLite file at path and ensures the
// given table exists. Use ":memory:" for a transient database.
func Open(path, table string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	if !tableNameRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	dsn := path
	if path != ":memory:" {
		dsn = filepath.Clean(path)
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	// SQLite only supports one writer at a time, and an in-memory database
	// exists only within its connection.
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := applyPragmas(sqlDB, path == ":memory:"); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	create := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (key TEXT PRIMARY KEY NOT NULL, data BLOB NOT NULL) WITHOUT ROWID", table)
	if _, err := sqlDB.Exec(create); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create table %s: %w", table, err)
	}

	return &Store{
		sqlDB:     sqlDB,
		table:     table,
		insertSQL: fmt.Sprintf("INSERT INTO %s (key, data) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET data = excluded.data", table),
		deleteSQL: fmt.Sprintf("DELETE FROM %s WHERE key = ?", table),
		selectSQL: fmt.Sprintf("SELECT key, data FROM %s ORDER BY key", table),
		getSQL:    fmt.Sprintf("SELECT data FROM %s WHERE key = ?", table),
	}, nil
}

func applyPragmas(db *sql.DB, inMemory bool) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	if !inMemory {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

func (s *Store) db() (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return nil, lifedb.ErrClosed
	}
	return s.sqlDB, nil
}

func (s *Store) Insert(key string, data []byte) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if _, err := db.Exec(s.insertSQL, key, data); err != nil {
		return fmt.Errorf("insert %s/%s: %w", s.table, key, err)
	}
	return nil
}

func (s *Store) Delete(key string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	if _, err := db.Exec(s.deleteSQL, key); err != nil {
		return fmt.Errorf("delete %s/%s: %w", s.table, key, err)
	}
	return nil
}

func (s *Store) QueryAll() ([]lifedb.RawRecord, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(s.selectSQL)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var result []lifedb.RawRecord
	for rows.Next() {
		var raw lifedb.RawRecord
		if err := rows.Scan(&raw.Key, &raw.Data); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		result = append(result, raw)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return result, nil
}

func (s *Store) QueryByKey(key string) ([]byte, bool, error) {
	db, err := s.db()
	if err != nil {
		return nil, false, err
	}
	var data []byte
	err = db.QueryRow(s.getSQL, key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s/%s: %w", s.table, key, err)
	}
	return data, true, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sqlDB == nil {
		return nil
	}
	err := s.sqlDB.Close()
	s.sqlDB = nil
	return err
}

var _ lifedb.Storage = (*Store)(nil)
