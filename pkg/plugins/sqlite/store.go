package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
)

// Store writes configuration rows in the layout the plugin reads.
//
// Store is thread-safe and can be used concurrently.
type Store struct {
	db        *sql.DB
	table     string
	closeOnce sync.Once
}

// OpenStore opens (creating if needed) the database at path and ensures the
// table exists.
func OpenStore(driver, path, table string) (*Store, error) {
	opts := Options{Path: path, Driver: driver, Table: table}
	opts.applyDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}

	db, err := open(opts.Driver, path, opts.BusyTimeout, false)
	if err != nil {
		return nil, err
	}

	s := &Store{db: db, table: opts.Table}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initSchema() error {
	_, err := s.db.Exec(fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS %s (
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		profile TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (profile, key)
	)`, s.table))
	return err
}

// Put upserts the value for key. An empty profile applies to every profile.
func (s *Store) Put(ctx context.Context, profile, key, value string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (key, value, profile) VALUES (?, ?, ?)
		ON CONFLICT (profile, key) DO UPDATE SET value = excluded.value`, s.table),
		key, value, profile,
	)
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Delete removes key for profile.
func (s *Store) Delete(ctx context.Context, profile, key string) error {
	_, err := s.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE profile = ? AND key = ?`, s.table), profile, key)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database. It is safe to call more than once.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
	})
	return err
}
