package credentials_test

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/storage"
)

var t0 = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

func clock() time.Time { return t0 }

func boolp(b bool) *bool { return &b }

func login(t *testing.T, s *credentials.Store, role model.Role) {
	t.Helper()
	err := s.Set(context.Background(), credentials.FromLogin(model.AuthLoginResponse{
		AccessToken: "acc-1", RefreshToken: "ref-1", Role: role,
	}))
	if err != nil {
		t.Fatalf("set: %v", err)
	}
}

func TestSetPersistsAndReloads(t *testing.T) {
	backend := storage.NewMemoryStore(clock)
	s := credentials.NewStore(backend, clock)
	login(t, s, model.RoleStudent)

	// fresh store over the same backend = page reload
	reloaded := credentials.NewStore(backend, clock)
	if err := reloaded.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	got := reloaded.Get()
	if got.AccessToken != "acc-1" || got.RefreshToken != "ref-1" || got.Role != model.RoleStudent {
		t.Fatalf("reloaded = %+v", got)
	}

	e, ok, _ := backend.Get(context.Background(), credentials.KeyAccessToken)
	if !ok || !e.Expires.Equal(t0.Add(credentials.AccessTTL)) {
		t.Fatalf("access expiry = %v", e.Expires)
	}
	e, _, _ = backend.Get(context.Background(), credentials.KeyRefreshToken)
	if !e.Expires.Equal(t0.Add(credentials.RefreshTTL)) {
		t.Fatalf("refresh expiry = %v", e.Expires)
	}
}

func TestSetMergesPartialUpdate(t *testing.T) {
	s := credentials.NewStore(nil, clock)
	login(t, s, model.RoleSupervisor)

	if err := s.Set(context.Background(), credentials.FromRefresh(model.RefreshResponse{AccessToken: "acc-2"})); err != nil {
		t.Fatalf("set: %v", err)
	}
	got := s.Get()
	if got.AccessToken != "acc-2" || got.RefreshToken != "ref-1" || got.Role != model.RoleSupervisor {
		t.Fatalf("merge lost fields: %+v", got)
	}
}

func TestClearRemovesEverything(t *testing.T) {
	backend := storage.NewMemoryStore(clock)
	s := credentials.NewStore(backend, clock)
	login(t, s, model.RoleAdmin)
	if err := s.Set(context.Background(), credentials.Patch{SupervisorApproved: boolp(true)}); err != nil {
		t.Fatalf("set: %v", err)
	}

	if err := s.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if got := s.Get(); got != (credentials.Credentials{}) {
		t.Fatalf("get after clear = %+v", got)
	}
	if backend.Len() != 0 {
		t.Fatalf("persisted entries left: %d", backend.Len())
	}
	if _, ok := s.State().(credentials.LoggedOut); !ok {
		t.Fatalf("state after clear = %#v", s.State())
	}
}

func TestRoleNeverVisibleWithoutTokens(t *testing.T) {
	s := credentials.NewStore(nil, clock)
	r := model.RoleAdmin
	if err := s.Set(context.Background(), credentials.Patch{Role: &r}); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got := s.Get(); got.Role != "" {
		t.Fatalf("role without tokens: %+v", got)
	}
}

func TestAccessExpiryFollowsJWTExp(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(t0.Add(30 * time.Minute)),
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	backend := storage.NewMemoryStore(clock)
	s := credentials.NewStore(backend, clock)
	ref := "r"
	if err := s.Set(context.Background(), credentials.Patch{AccessToken: &tok, RefreshToken: &ref}); err != nil {
		t.Fatalf("set: %v", err)
	}
	e, _, _ := backend.Get(context.Background(), credentials.KeyAccessToken)
	if !e.Expires.Equal(t0.Add(30 * time.Minute)) {
		t.Fatalf("expiry = %v, want exp claim", e.Expires)
	}
}

func TestStateOf(t *testing.T) {
	cases := []struct {
		name string
		c    credentials.Credentials
		want credentials.AuthState
	}{
		{"empty", credentials.Credentials{}, credentials.LoggedOut{}},
		{"no role", credentials.Credentials{AccessToken: "a", RefreshToken: "r"}, credentials.LoggedOut{}},
		{"student", credentials.Credentials{AccessToken: "a", RefreshToken: "r", Role: model.RoleStudent},
			credentials.LoggedIn{Role: model.RoleStudent, Approval: credentials.ApprovalNotRequired}},
		{"refresh only", credentials.Credentials{RefreshToken: "r", Role: model.RoleAdmin},
			credentials.LoggedIn{Role: model.RoleAdmin, Approval: credentials.ApprovalNotRequired}},
		{"supervisor pending", credentials.Credentials{AccessToken: "a", RefreshToken: "r", Role: model.RoleSupervisor},
			credentials.LoggedIn{Role: model.RoleSupervisor, Approval: credentials.ApprovalPending}},
		{"supervisor approved via isApproved", credentials.Credentials{AccessToken: "a", RefreshToken: "r", Role: model.RoleSupervisor, IsApproved: boolp(true)},
			credentials.LoggedIn{Role: model.RoleSupervisor, Approval: credentials.ApprovalGranted}},
		{"supervisorApproved wins", credentials.Credentials{AccessToken: "a", RefreshToken: "r", Role: model.RoleSupervisor, SupervisorApproved: boolp(false), IsApproved: boolp(true)},
			credentials.LoggedIn{Role: model.RoleSupervisor, Approval: credentials.ApprovalPending}},
	}
	for _, tc := range cases {
		if got := credentials.StateOf(tc.c); got != tc.want {
			t.Errorf("%s: got %#v want %#v", tc.name, got, tc.want)
		}
	}
}
