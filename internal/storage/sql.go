package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/db"
)

// SQLStore is the local-storage flavoured backend: one row per key in
// client_state, on sqlite (modernc) or postgres (pgx).
type SQLStore struct {
	db  *sql.DB
	now Clock
}

func NewSQLStore(dbh *sql.DB, now Clock) *SQLStore {
	if now == nil {
		now = time.Now
	}
	return &SQLStore{db: dbh, now: now}
}

// OpenSQLStore opens the database through internal/db and wraps it.
func OpenSQLStore(ctx context.Context, driver db.Driver, dsn string) (*SQLStore, error) {
	dbh, err := db.Open(ctx, driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewSQLStore(dbh, nil), nil
}

func (s *SQLStore) Close() error { return s.db.Close() }

func (s *SQLStore) Get(ctx context.Context, key string) (Entry, bool, error) {
	var (
		val string
		exp int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT value, expires_at FROM client_state WHERE key=$1`, key).Scan(&val, &exp)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, err
	}
	e := Entry{Key: key, Value: val}
	if exp > 0 {
		e.Expires = time.Unix(exp, 0)
	}
	if e.Expired(s.now()) {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM client_state WHERE key=$1`, key)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *SQLStore) Put(ctx context.Context, e Entry) error {
	if e.Key == "" {
		return ErrEmptyKey
	}
	var exp int64
	if !e.Expires.IsZero() {
		exp = e.Expires.Unix()
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO client_state (key, value, expires_at, updated_at) VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE SET value=excluded.value, expires_at=excluded.expires_at, updated_at=excluded.updated_at`,
		e.Key, e.Value, exp, s.now().Unix())
	return err
}

func (s *SQLStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, k := range keys {
		if _, err := tx.ExecContext(ctx, `DELETE FROM client_state WHERE key=$1`, k); err != nil {
			return err
		}
	}
	return tx.Commit()
}
