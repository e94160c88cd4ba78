package devapi

import (
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

const (
	statusInProgress  = "in_progress"
	statusSubmitted   = "submitted"
	statusInvalidated = "invalidated"
)

type userRecord struct {
	model.User
	PasswordHash string
	OTPSecret    string
}

func (u *userRecord) approved() bool {
	return u.Role != model.RoleSupervisor || (u.SupervisorApproved != nil && *u.SupervisorApproved)
}

type attemptRecord struct {
	model.AssessmentAttempt
	UserID    string
	Answers   map[string]string
	Reason    string
	started   time.Time
	submitted time.Time
}

type refreshRecord struct {
	UserID  string
	Expires time.Time
}

// Store is the in-memory database of the stub server.
type Store struct {
	mu           sync.RWMutex
	now          func() time.Time
	users        map[string]*userRecord
	byEmail      map[string]string
	questions    map[string]model.Question
	qorder       []string
	attempts     map[string]*attemptRecord
	refresh      map[string]refreshRecord
	certificates map[string]model.Certificate // by user id
}

func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		now:          now,
		users:        map[string]*userRecord{},
		byEmail:      map[string]string{},
		questions:    map[string]model.Question{},
		attempts:     map[string]*attemptRecord{},
		refresh:      map[string]refreshRecord{},
		certificates: map[string]model.Certificate{},
	}
}

func (s *Store) stamp() string { return s.now().UTC().Format(time.RFC3339) }

func normEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// ---- users ----

func (s *Store) CreateUser(u *userRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.Email = normEmail(u.Email)
	if _, ok := s.byEmail[u.Email]; ok {
		return ErrDuplicate
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt, u.UpdatedAt = s.stamp(), s.stamp()
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	return nil
}

func (s *Store) UserByID(id string) (*userRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *Store) UserByEmail(email string) (*userRecord, error) {
	s.mu.RLock()
	id, ok := s.byEmail[normEmail(email)]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	return s.UserByID(id)
}

// UpdateUser applies fn to the stored user under the write lock.
func (s *Store) UpdateUser(id string, fn func(u *userRecord)) (*userRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	fn(u)
	u.UpdatedAt = s.stamp()
	cp := *u
	return &cp, nil
}

func (s *Store) DeleteUser(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	delete(s.byEmail, u.Email)
	delete(s.certificates, id)
	for tok, r := range s.refresh {
		if r.UserID == id {
			delete(s.refresh, tok)
		}
	}
	return nil
}

// ListUsers filters by role and approval, newest first.
func (s *Store) ListUsers(role model.Role, approved *bool) []model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.User
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		if approved != nil {
			if u.Role != model.RoleSupervisor || u.approved() != *approved {
				continue
			}
		}
		out = append(out, u.User)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].Email < out[j].Email
	})
	return out
}

func (s *Store) CountByRole() (int, []model.RoleCount) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := map[model.Role]int{}
	for _, u := range s.users {
		counts[u.Role]++
	}
	var out []model.RoleCount
	for r, n := range counts {
		out = append(out, model.RoleCount{Role: r, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Role < out[j].Role })
	return len(s.users), out
}

// ---- refresh tokens ----

func (s *Store) IssueRefresh(userID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	tok := uuid.NewString()
	s.refresh[tok] = refreshRecord{UserID: userID, Expires: s.now().Add(RefreshTTL)}
	return tok
}

// RotateRefresh consumes tok and returns the owner plus a replacement.
func (s *Store) RotateRefresh(tok string) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.refresh[tok]
	delete(s.refresh, tok)
	if !ok || !s.now().Before(r.Expires) {
		return "", "", ErrNotFound
	}
	if _, ok := s.users[r.UserID]; !ok {
		return "", "", ErrNotFound
	}
	next := uuid.NewString()
	s.refresh[next] = refreshRecord{UserID: r.UserID, Expires: s.now().Add(RefreshTTL)}
	return r.UserID, next, nil
}

func (s *Store) RevokeRefresh(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, r := range s.refresh {
		if r.UserID == userID {
			delete(s.refresh, tok)
		}
	}
}

// ---- questions ----

func (s *Store) PutQuestion(q model.Question) model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	if old, ok := s.questions[q.ID]; ok {
		q.CreatedAt = old.CreatedAt
	} else {
		q.CreatedAt = s.stamp()
		s.qorder = append(s.qorder, q.ID)
	}
	q.UpdatedAt = s.stamp()
	s.questions[q.ID] = q
	return q
}

func (s *Store) Question(id string) (model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.questions[id]
	if !ok {
		return model.Question{}, ErrNotFound
	}
	return q, nil
}

func (s *Store) DeleteQuestion(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return ErrNotFound
	}
	delete(s.questions, id)
	for i, v := range s.qorder {
		if v == id {
			s.qorder = append(s.qorder[:i], s.qorder[i+1:]...)
			break
		}
	}
	return nil
}

// Questions lists in insertion order, optionally filtered.
func (s *Store) Questions(levels []model.Level, competency string) []model.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Question
	for _, id := range s.qorder {
		q := s.questions[id]
		if len(levels) > 0 && !hasLevel(levels, q.Level) {
			continue
		}
		if competency != "" && !strings.EqualFold(q.Competency, competency) {
			continue
		}
		out = append(out, q)
	}
	return out
}

func hasLevel(levels []model.Level, l model.Level) bool {
	for _, v := range levels {
		if v == l {
			return true
		}
	}
	return false
}

// ---- attempts ----

func (s *Store) CreateAttempt(a *attemptRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = uuid.NewString()
	a.Status = statusInProgress
	a.started = s.now()
	a.StartedAt = s.stamp()
	s.attempts[a.ID] = a
}

func (s *Store) Attempt(id string) (*attemptRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

// UpdateAttempt applies fn under the write lock.
func (s *Store) UpdateAttempt(id string, fn func(a *attemptRecord) error) (*attemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(a); err != nil {
		return nil, err
	}
	cp := *a
	return &cp, nil
}

// UserAttempts returns the user's attempts, oldest first.
func (s *Store) UserAttempts(userID string) []attemptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []attemptRecord
	for _, a := range s.attempts {
		if a.UserID == userID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].started.Before(out[j].started) || (out[i].started.Equal(out[j].started) && out[i].ID < out[j].ID) })
	return out
}

func (s *Store) AllAttempts() []attemptRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]attemptRecord, 0, len(s.attempts))
	for _, a := range s.attempts {
		out = append(out, *a)
	}
	return out
}

// ---- certificates ----

func (s *Store) PutCertificate(userID string, c model.Certificate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certificates[userID] = c
}

func (s *Store) Certificate(userID string) (model.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.certificates[userID]
	if !ok {
		return model.Certificate{}, ErrNotFound
	}
	return c, nil
}

// PurgeExpired drops refresh tokens past their expiry and reports how many.
func (s *Store) PurgeExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now, n := s.now(), 0
	for tok, r := range s.refresh {
		if !now.Before(r.Expires) {
			delete(s.refresh, tok)
			n++
		}
	}
	return n
}
