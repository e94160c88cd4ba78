package storage

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/config"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/db"
)

// Open picks the backend named by cfg.StateDriver. The returned closer is
// never nil.
func Open(ctx context.Context, cfg config.Config) (Store, io.Closer, error) {
	switch cfg.StateDriver {
	case "", "cookie":
		s, err := NewCookieStore(cfg.StateDir, nil)
		return s, nopCloser{}, err
	case "memory":
		return NewMemoryStore(nil), nopCloser{}, nil
	case string(db.DriverSQLite), string(db.DriverPostgres):
		dsn := cfg.StateDSN
		if dsn == "" && cfg.StateDriver == string(db.DriverSQLite) && cfg.StateDir != "" {
			if err := os.MkdirAll(cfg.StateDir, 0o700); err != nil {
				return nil, nopCloser{}, err
			}
			dsn = "file:" + cfg.StateDir + "/state.db?mode=rwc&_pragma=busy_timeout(5000)"
		}
		s, err := OpenSQLStore(ctx, db.Driver(cfg.StateDriver), dsn)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	case "redis":
		s, err := DialRedis(ctx, cfg.RedisAddr, cfg.RedisPrefix)
		if err != nil {
			return nil, nopCloser{}, err
		}
		return s, s, nil
	default:
		return nil, nopCloser{}, fmt.Errorf("unsupported state driver: %s", cfg.StateDriver)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
