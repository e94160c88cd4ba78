package credentials

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/storage"
)

// Persisted field names.
const (
	KeyAccessToken        = "accessToken"
	KeyRefreshToken       = "refreshToken"
	KeyRole               = "role"
	KeySupervisorApproved = "supervisorApproved"
	KeyIsApproved         = "isApproved"
)

const (
	AccessTTL  = 2 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour
)

var allKeys = []string{KeyAccessToken, KeyRefreshToken, KeyRole, KeySupervisorApproved, KeyIsApproved}

// Store is the credential context object shared by the executor and the
// client facade. Every Set/Clear is written through before it returns.
type Store struct {
	mu      sync.RWMutex
	cur     Credentials
	backend storage.Store
	now     storage.Clock
}

func NewStore(backend storage.Store, now storage.Clock) *Store {
	if backend == nil {
		backend = storage.NewMemoryStore(now)
	}
	if now == nil {
		now = time.Now
	}
	return &Store{backend: backend, now: now}
}

// Init loads the persisted copy, replacing whatever is in memory.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var c Credentials
	get := func(k string) (string, error) {
		e, ok, err := s.backend.Get(ctx, k)
		if err != nil || !ok {
			return "", err
		}
		return e.Value, nil
	}
	var err error
	if c.AccessToken, err = get(KeyAccessToken); err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if c.RefreshToken, err = get(KeyRefreshToken); err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	role, err := get(KeyRole)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}
	if r, perr := model.ParseRole(role); perr == nil {
		c.Role = r
	}
	for k, dst := range map[string]**bool{KeySupervisorApproved: &c.SupervisorApproved, KeyIsApproved: &c.IsApproved} {
		v, err := get(k)
		if err != nil {
			return fmt.Errorf("load credentials: %w", err)
		}
		if b, perr := strconv.ParseBool(v); perr == nil {
			*dst = &b
		}
	}
	s.cur = c.normalize()
	return nil
}

func (s *Store) Get() Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

func (s *Store) State() AuthState {
	return StateOf(s.Get())
}

// AccessToken is a convenience for the executor.
func (s *Store) AccessToken() string {
	return s.Get().AccessToken
}

// Set merges p into the current credentials and persists the changed fields.
// The in-memory copy only changes once the backend accepted the write.
func (s *Store) Set(ctx context.Context, p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cur.apply(p).normalize()
	if !next.HasTokens() {
		if err := s.backend.Delete(ctx, allKeys...); err != nil {
			return fmt.Errorf("persist credentials: %w", err)
		}
		s.cur = next
		return nil
	}

	now := s.now()
	var entries []storage.Entry
	if p.AccessToken != nil {
		entries = append(entries, storage.Entry{Key: KeyAccessToken, Value: next.AccessToken, Expires: accessExpiry(next.AccessToken, now)})
	}
	if p.RefreshToken != nil {
		entries = append(entries, storage.Entry{Key: KeyRefreshToken, Value: next.RefreshToken, Expires: now.Add(RefreshTTL)})
	}
	if p.Role != nil {
		entries = append(entries, storage.Entry{Key: KeyRole, Value: string(next.Role), Expires: now.Add(RefreshTTL)})
	}
	if p.SupervisorApproved != nil {
		entries = append(entries, storage.Entry{Key: KeySupervisorApproved, Value: strconv.FormatBool(*next.SupervisorApproved), Expires: now.Add(RefreshTTL)})
	}
	if p.IsApproved != nil {
		entries = append(entries, storage.Entry{Key: KeyIsApproved, Value: strconv.FormatBool(*next.IsApproved), Expires: now.Add(RefreshTTL)})
	}
	for _, e := range entries {
		if e.Value == "" {
			if err := s.backend.Delete(ctx, e.Key); err != nil {
				return fmt.Errorf("persist credentials: %w", err)
			}
			continue
		}
		if err := s.backend.Put(ctx, e); err != nil {
			return fmt.Errorf("persist credentials: %w", err)
		}
	}
	s.cur = next
	return nil
}

// Clear drops every credential field, in memory and in storage.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cur = Credentials{}
	if err := s.backend.Delete(ctx, allKeys...); err != nil {
		return fmt.Errorf("clear credentials: %w", err)
	}
	return nil
}

// accessExpiry is AccessTTL from now, or the token's own exp claim when that
// comes first. The claim is read without verification; tokens stay opaque.
func accessExpiry(tok string, now time.Time) time.Time {
	def := now.Add(AccessTTL)
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil || claims.ExpiresAt == nil {
		return def
	}
	if exp := claims.ExpiresAt.Time; exp.Before(def) {
		return exp
	}
	return def
}
