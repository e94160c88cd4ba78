package storage_test

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/db"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/storage"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

// exercise runs the behaviour every backend must share.
func exercise(t *testing.T, s storage.Store, clk *fakeClock) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}
	if err := s.Put(ctx, storage.Entry{Key: ""}); err != storage.ErrEmptyKey {
		t.Fatalf("expected ErrEmptyKey, got %v", err)
	}

	exp := clk.Now().Add(2 * time.Hour)
	if err := s.Put(ctx, storage.Entry{Key: "accessToken", Value: "a.b.c", Expires: exp}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := s.Put(ctx, storage.Entry{Key: "note", Value: "has spaces; and = signs"}); err != nil {
		t.Fatalf("put: %v", err)
	}

	e, ok, err := s.Get(ctx, "accessToken")
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if e.Value != "a.b.c" || !e.Expires.Equal(exp) {
		t.Fatalf("got %+v", e)
	}
	e, ok, _ = s.Get(ctx, "note")
	if !ok || e.Value != "has spaces; and = signs" {
		t.Fatalf("value not preserved: %+v", e)
	}

	// overwrite
	if err := s.Put(ctx, storage.Entry{Key: "accessToken", Value: "x.y.z", Expires: exp}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if e, _, _ := s.Get(ctx, "accessToken"); e.Value != "x.y.z" {
		t.Fatalf("overwrite lost: %+v", e)
	}

	clk.Advance(2 * time.Hour)
	if _, ok, _ := s.Get(ctx, "accessToken"); ok {
		t.Fatalf("expired entry should read as absent")
	}
	if _, ok, _ := s.Get(ctx, "note"); !ok {
		t.Fatalf("entry without expiry should survive")
	}

	if err := s.Delete(ctx, "note", "accessToken", "never-set"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "note"); ok {
		t.Fatalf("deleted entry still present")
	}
}

func TestMemoryStore(t *testing.T) {
	clk := newClock()
	exercise(t, storage.NewMemoryStore(clk.Now), clk)
}

func TestCookieStore(t *testing.T) {
	clk := newClock()
	dir := t.TempDir()
	s, err := storage.NewCookieStore(dir, clk.Now)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	exercise(t, s, clk)

	if _, err := os.Stat(s.Path()); !os.IsNotExist(err) {
		t.Fatalf("cookie file should be removed once empty, stat err=%v", err)
	}
}

func TestCookieStoreAttributesAndReload(t *testing.T) {
	clk := newClock()
	dir := t.TempDir()
	s, _ := storage.NewCookieStore(dir, clk.Now)
	ctx := context.Background()

	if err := s.Put(ctx, storage.Entry{Key: "refreshToken", Value: "r1", Expires: clk.Now().Add(7 * 24 * time.Hour)}); err != nil {
		t.Fatalf("put: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "cookies.txt"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	line := string(raw)
	for _, want := range []string{"refreshToken=r1", "Secure", "SameSite=Strict", "Expires="} {
		if !strings.Contains(line, want) {
			t.Fatalf("cookie line %q missing %q", line, want)
		}
	}

	// a second store on the same directory sees the write (page reload)
	s2, _ := storage.NewCookieStore(dir, clk.Now)
	e, ok, err := s2.Get(ctx, "refreshToken")
	if err != nil || !ok || e.Value != "r1" {
		t.Fatalf("reload: %+v ok=%v err=%v", e, ok, err)
	}

	cookies, err := s2.Cookies()
	if err != nil || len(cookies) != 1 {
		t.Fatalf("cookies: %v %v", cookies, err)
	}
	if cookies[0].SameSite != http.SameSiteStrictMode || !cookies[0].Secure {
		t.Fatalf("attributes lost: %+v", cookies[0])
	}
}

func TestSQLStoreSQLite(t *testing.T) {
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "state.db") + "?mode=rwc"
	dbh, err := db.Open(ctx, db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer dbh.Close()

	clk := newClock()
	exercise(t, storage.NewSQLStore(dbh, clk.Now), clk)
}
