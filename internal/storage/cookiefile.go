package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// CookieStore keeps entries as Set-Cookie lines in a single file, one cookie
// per key, each marked Secure and SameSite=Strict with an explicit expiry.
// Values are query-escaped the way browser cookie helpers encode them.
type CookieStore struct {
	mu   sync.Mutex
	path string
	now  Clock
}

func NewCookieStore(dir string, now Clock) (*CookieStore, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, err
	}
	if now == nil {
		now = time.Now
	}
	return &CookieStore{path: filepath.Join(dir, "cookies.txt"), now: now}, nil
}

func (s *CookieStore) Path() string { return s.path }

func (s *CookieStore) Get(_ context.Context, key string) (Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return Entry{}, false, err
	}
	c, ok := all[key]
	if !ok {
		return Entry{}, false, nil
	}
	e, err := entryFromCookie(c)
	if err != nil {
		return Entry{}, false, err
	}
	if e.Expired(s.now()) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (s *CookieStore) Put(_ context.Context, e Entry) error {
	if e.Key == "" {
		return ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return err
	}
	all[e.Key] = cookieFromEntry(e)
	return s.save(all)
}

func (s *CookieStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(all, k)
	}
	return s.save(all)
}

// Cookies returns the live cookies, e.g. for seeding an http.CookieJar.
func (s *CookieStore) Cookies() ([]*http.Cookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all, err := s.load()
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]*http.Cookie, 0, len(all))
	for _, c := range all {
		if !c.Expires.IsZero() && !now.Before(c.Expires) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *CookieStore) load() (map[string]*http.Cookie, error) {
	out := map[string]*http.Cookie{}
	b, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	sc := bufio.NewScanner(bytes.NewReader(b))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := http.ParseSetCookie(line)
		if err != nil {
			return nil, fmt.Errorf("cookie file %s: %w", s.path, err)
		}
		out[c.Name] = c
	}
	return out, sc.Err()
}

// save drops expired cookies, then replaces the file atomically.
func (s *CookieStore) save(all map[string]*http.Cookie) error {
	if len(all) == 0 {
		if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		return nil
	}
	names := make([]string, 0, len(all))
	for k := range all {
		names = append(names, k)
	}
	sort.Strings(names)

	now := s.now()
	var buf bytes.Buffer
	buf.WriteString("# assessctl cookie store\n")
	for _, k := range names {
		c := all[k]
		if !c.Expires.IsZero() && !now.Before(c.Expires) {
			continue
		}
		buf.WriteString(c.String())
		buf.WriteByte('\n')
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".cookies-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func cookieFromEntry(e Entry) *http.Cookie {
	return &http.Cookie{
		Name:     e.Key,
		Value:    url.QueryEscape(e.Value),
		Path:     "/",
		Expires:  e.Expires.UTC(),
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func entryFromCookie(c *http.Cookie) (Entry, error) {
	v, err := url.QueryUnescape(c.Value)
	if err != nil {
		return Entry{}, fmt.Errorf("cookie %s: %w", c.Name, err)
	}
	return Entry{Key: c.Name, Value: v, Expires: c.Expires}, nil
}
