package devapi_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/api"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/devapi"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/quiz"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type env struct {
	clk   *fakeClock
	srv   *devapi.Server
	ts    *httptest.Server
	mu    sync.Mutex
	codes map[string]string
}

func newEnv(t *testing.T) *env {
	t.Helper()
	e := &env{clk: &fakeClock{t: time.Now()}, codes: map[string]string{}}
	e.srv = devapi.NewServer(devapi.Options{
		Secret: "test-secret",
		Now:    e.clk.Now,
		Quiet:  true,
		Mailer: func(email, _, code string) {
			e.mu.Lock()
			e.codes[email] = code
			e.mu.Unlock()
		},
	})
	if err := devapi.Seed(e.srv.Store, 1, 0); err != nil {
		t.Fatalf("seed: %v", err)
	}
	e.ts = httptest.NewServer(e.srv)
	t.Cleanup(e.ts.Close)
	return e
}

func (e *env) code(email string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.codes[email]
}

func (e *env) client(t *testing.T) *api.Client {
	t.Helper()
	c, err := api.New(credentials.NewStore(nil, e.clk.Now), api.Options{BaseURL: e.ts.URL, HTTPClient: e.ts.Client()})
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	return c
}

func (e *env) login(t *testing.T, email, password string) *api.Client {
	t.Helper()
	c := e.client(t)
	if _, err := c.Login(context.Background(), model.LoginPayload{Email: email, Password: password}); err != nil {
		t.Fatalf("login %s: %v", email, err)
	}
	return c
}

func (e *env) answerKey(t *testing.T, id string) string {
	t.Helper()
	q, err := e.srv.Store.Question(id)
	if err != nil {
		t.Fatalf("question %s: %v", id, err)
	}
	return q.CorrectOptionKey
}

func TestRegisterVerifyLogin(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.client(t)

	reg, err := c.Register(ctx, model.RegisterPayload{Email: "new@example.com", Password: "secret1", Role: model.RoleStudent, Profile: model.UserProfile{Name: "New"}})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if reg.UserID == "" || reg.SupervisorApprovalRequired {
		t.Fatalf("register = %+v", reg)
	}
	if _, err := c.Register(ctx, model.RegisterPayload{Email: "new@example.com", Password: "secret1"}); api.StatusCode(err) != 409 {
		t.Fatalf("duplicate register: %v", err)
	}

	_, err = c.Login(ctx, model.LoginPayload{Email: "new@example.com", Password: "secret1"})
	if api.StatusCode(err) != 403 {
		t.Fatalf("unverified login: %v", err)
	}
	if _, err := c.VerifyEmail(ctx, model.VerifyEmailPayload{Email: "new@example.com", OTP: "000000x"}); api.StatusCode(err) != 400 {
		t.Fatalf("bad otp: %v", err)
	}
	if _, err := c.VerifyEmail(ctx, model.VerifyEmailPayload{Email: "new@example.com", OTP: e.code("new@example.com")}); err != nil {
		t.Fatalf("verify: %v", err)
	}
	if _, err := c.Login(ctx, model.LoginPayload{Email: "new@example.com", Password: "secret1"}); err != nil {
		t.Fatalf("login: %v", err)
	}
	if st, ok := c.Credentials().State().(credentials.LoggedIn); !ok || st.Role != model.RoleStudent {
		t.Fatalf("state = %#v", c.Credentials().State())
	}
	me, err := c.Me(ctx)
	if err != nil || me.Email != "new@example.com" || me.Profile.Name != "New" {
		t.Fatalf("me = %+v, %v", me, err)
	}
}

func TestResetPassword(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.client(t)
	if _, err := c.ForgotPassword(ctx, "nobody@example.com"); err != nil {
		t.Fatalf("unknown email should still succeed: %v", err)
	}
	if _, err := c.ForgotPassword(ctx, "student@example.com"); err != nil {
		t.Fatal(err)
	}
	_, err := c.ResetPassword(ctx, model.ResetPasswordPayload{Email: "student@example.com", OTP: e.code("student@example.com"), NewPassword: "changed1"})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if _, err := c.Login(ctx, model.LoginPayload{Email: "student@example.com", Password: "student123"}); api.StatusCode(err) != 401 {
		t.Fatalf("old password: %v", err)
	}
	e.login(t, "student@example.com", "changed1")
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.login(t, "student@example.com", "student123")
	before := c.Credentials().Get()

	e.clk.Advance(devapi.AccessTTL + time.Minute)
	me, err := c.Me(ctx)
	if err != nil {
		t.Fatalf("me after expiry: %v", err)
	}
	if me.Email != "student@example.com" {
		t.Fatalf("me = %+v", me)
	}
	after := c.Credentials().Get()
	if after.AccessToken == before.AccessToken || after.RefreshToken == before.RefreshToken {
		t.Fatal("tokens were not rotated")
	}

	// the old refresh token is spent
	other := e.client(t)
	_ = other.Credentials().Set(ctx, credentials.FromLogin(model.AuthLoginResponse{AccessToken: before.AccessToken, RefreshToken: before.RefreshToken, Role: model.RoleStudent}))
	var ended *api.SessionEndedError
	if _, err := other.Me(ctx); !errors.As(err, &ended) {
		t.Fatalf("reused refresh token: %v", err)
	}
	if _, ok := other.Credentials().State().(credentials.LoggedOut); !ok {
		t.Fatal("session not cleared")
	}
}

func TestLogoutRevokesRefreshToken(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.login(t, "student@example.com", "student123")
	rt := c.Credentials().Get().RefreshToken
	if _, err := c.Logout(ctx); err != nil {
		t.Fatal(err)
	}
	other := e.client(t)
	_ = other.Credentials().Set(ctx, credentials.FromLogin(model.AuthLoginResponse{AccessToken: "stale", RefreshToken: rt, Role: model.RoleStudent}))
	if _, err := other.RefreshToken(ctx); err == nil {
		t.Fatal("refresh after logout succeeded")
	}
}

func TestStepOneWithRunner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.login(t, "student@example.com", "student123")

	r := quiz.NewRunner(c, quiz.APIBank{API: c}, nil)
	v, err := r.Start(ctx)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if v.Step != 1 || v.Len != quiz.QuestionsPerStep || v.TimeLimit != quiz.QuestionsPerStep*quiz.SecondsPerQuestion {
		t.Fatalf("view = %+v", v)
	}
	if v.Question.CorrectOptionKey != "" {
		t.Fatal("answer key sent to a student")
	}
	var out *quiz.Outcome
	for out == nil {
		v, _ := r.View()
		if out, err = r.Answer(ctx, e.answerKey(t, v.Question.ID)); err != nil {
			t.Fatalf("answer %d: %v", v.Index, err)
		}
	}
	if out.Err != nil {
		t.Fatalf("submit: %v", out.Err)
	}
	a := out.Attempt
	if a.Status != "submitted" || a.ScorePercent == nil || *a.ScorePercent != 100 || a.LevelAwarded != "A2" || a.AdvancedToNext == nil || !*a.AdvancedToNext {
		t.Fatalf("attempt = %+v", a)
	}
	cert, err := c.Certificate(ctx)
	if err != nil || cert.Level != "A2" || cert.Serial == "" {
		t.Fatalf("certificate = %+v, %v", cert, err)
	}
	hist, err := c.AssessmentHistory(ctx)
	if err != nil || len(hist) != 1 {
		t.Fatalf("history = %+v, %v", hist, err)
	}

	next, err := c.StartAssessment(ctx)
	if err != nil || next.Step != 2 {
		t.Fatalf("next start = %+v, %v", next, err)
	}
	for _, ref := range next.Questions {
		if ref.Level != "B1" && ref.Level != "B2" {
			t.Fatalf("step 2 question at level %s", ref.Level)
		}
	}
}

func TestFailingStepOneEndsAssessment(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.login(t, "student@example.com", "student123")
	start, err := c.StartAssessment(ctx)
	if err != nil {
		t.Fatal(err)
	}
	a, err := c.SubmitAssessment(ctx, model.SubmitAssessmentPayload{AttemptID: start.AttemptID})
	if err != nil {
		t.Fatal(err)
	}
	if *a.ScorePercent != 0 || a.LevelAwarded != "" || *a.AdvancedToNext {
		t.Fatalf("attempt = %+v", a)
	}
	if _, err := c.SubmitAssessment(ctx, model.SubmitAssessmentPayload{AttemptID: start.AttemptID}); api.StatusCode(err) != 400 {
		t.Fatalf("second submit: %v", err)
	}
	if _, err := c.StartAssessment(ctx); api.StatusCode(err) != 400 {
		t.Fatalf("retake after failing step 1: %v", err)
	}
	if _, err := c.Certificate(ctx); api.StatusCode(err) != 404 {
		t.Fatalf("certificate: %v", err)
	}
}

func TestStudentQuestionAccess(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	c := e.login(t, "student@example.com", "student123")
	if _, err := c.ListQuestions(ctx, model.QuestionListQuery{}); api.StatusCode(err) != 403 {
		t.Fatalf("student listed the bank: %v", err)
	}
	start, err := c.StartAssessment(ctx)
	if err != nil {
		t.Fatal(err)
	}
	q, err := c.GetQuestion(ctx, start.Questions[0].QuestionID)
	if err != nil || q.CorrectOptionKey != "" || len(q.Options) == 0 {
		t.Fatalf("question = %+v, %v", q, err)
	}
	c3 := e.srv.Store.Questions([]model.Level{model.LevelC1}, "")
	if _, err := c.GetQuestion(ctx, c3[0].ID); api.StatusCode(err) != 403 {
		t.Fatalf("question outside the attempt: %v", err)
	}

	admin := e.login(t, "admin@example.com", "admin123")
	full, err := admin.GetQuestion(ctx, c3[0].ID)
	if err != nil || full.CorrectOptionKey == "" {
		t.Fatalf("admin question = %+v, %v", full, err)
	}
}

func TestAdminQuestionsAndUsers(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	admin := e.login(t, "admin@example.com", "admin123")

	page, err := admin.ListQuestions(ctx, model.QuestionListQuery{Level: model.LevelB2, Limit: 5})
	if err != nil || page.Total != quiz.QuestionsPerStep/2 || len(page.Items) != 5 || page.Pages != 5 {
		t.Fatalf("page = %+v, %v", page, err)
	}
	q, err := admin.CreateQuestion(ctx, model.Question{
		Competency: "Safety", Level: model.LevelA1, Text: "Strong password?",
		Options:          []model.QuestionOption{{Key: "a", Value: "123456"}, {Key: "b", Value: "correct horse battery staple"}},
		CorrectOptionKey: "b",
	})
	if err != nil || q.ID == "" {
		t.Fatalf("create = %+v, %v", q, err)
	}
	upd, err := admin.UpdateQuestion(ctx, q.ID, map[string]any{"text": "Which password is strong?"})
	if err != nil || upd.Text != "Which password is strong?" || upd.CorrectOptionKey != "b" {
		t.Fatalf("update = %+v, %v", upd, err)
	}
	if _, err := admin.UpdateQuestion(ctx, q.ID, map[string]any{"correctOptionKey": "z"}); api.StatusCode(err) != 400 {
		t.Fatalf("bad key accepted: %v", err)
	}
	if _, err := admin.DeleteQuestion(ctx, q.ID); err != nil {
		t.Fatal(err)
	}
	bulk, err := admin.BulkQuestions(ctx, []model.Question{{
		Competency: "Safety", Level: model.LevelC2, Text: "Bulk",
		Options: []model.QuestionOption{{Key: "a", Value: "x"}, {Key: "b", Value: "y"}}, CorrectOptionKey: "a",
	}})
	if err != nil || bulk.Count != 1 {
		t.Fatalf("bulk = %+v, %v", bulk, err)
	}

	users, err := admin.ListUsers(ctx, model.UserListQuery{Role: model.RoleSupervisor})
	if err != nil || users.Total != 2 {
		t.Fatalf("supervisors = %+v, %v", users, err)
	}
	no := false
	pending, err := admin.ListUsers(ctx, model.UserListQuery{SupervisorApproved: &no})
	if err != nil || pending.Total != 1 || pending.Items[0].Email != "pending@example.com" {
		t.Fatalf("pending = %+v, %v", pending, err)
	}
	u, err := admin.GetUser(ctx, pending.Items[0].ID)
	if err != nil || u.Role != model.RoleSupervisor {
		t.Fatalf("user = %+v, %v", u, err)
	}
	if _, err := admin.DeleteUser(ctx, u.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := admin.GetUser(ctx, u.ID); api.StatusCode(err) != 404 {
		t.Fatalf("deleted user: %v", err)
	}
}

func TestPendingSupervisorNeedsApproval(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sup := e.login(t, "pending@example.com", "pending123")
	if st := sup.Credentials().State().(credentials.LoggedIn); st.Approval != credentials.ApprovalPending {
		t.Fatalf("approval = %v", st.Approval)
	}
	if _, err := sup.AnalyticsUsers(ctx); api.StatusCode(err) != 403 {
		t.Fatalf("pending analytics: %v", err)
	}
	if _, err := sup.Me(ctx); err != nil {
		t.Fatalf("pending profile: %v", err)
	}

	admin := e.login(t, "admin@example.com", "admin123")
	me, _ := sup.Me(ctx)
	if _, err := admin.ApproveSupervisor(ctx, me.ID); err != nil {
		t.Fatal(err)
	}
	stats, err := sup.AnalyticsUsers(ctx)
	if err != nil {
		t.Fatalf("approved analytics: %v", err)
	}
	if stats.Data.Total != 4 {
		t.Fatalf("total users = %d", stats.Data.Total)
	}
}

func TestSupervisorMonitorAndInvalidate(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	stu := e.login(t, "student@example.com", "student123")
	sup := e.login(t, "supervisor@example.com", "supervisor123")
	me, err := stu.Me(ctx)
	if err != nil {
		t.Fatal(err)
	}

	idle, err := sup.MonitorUser(ctx, me.ID)
	if err != nil || idle.Attempt != nil {
		t.Fatalf("idle monitor = %+v, %v", idle, err)
	}
	start, err := stu.StartAssessment(ctx)
	if err != nil {
		t.Fatal(err)
	}
	e.clk.Advance(90 * time.Second)
	sup.Cache().Invalidate(api.TagSupervisor) // a monitoring screen re-polls
	mon, err := sup.MonitorUser(ctx, me.ID)
	if err != nil || mon.Attempt == nil || mon.Attempt.ID != start.AttemptID || mon.Attempt.QuestionCount != len(start.Questions) {
		t.Fatalf("monitor = %+v, %v", mon, err)
	}
	if got := mon.Attempt.Telemetry["elapsedSeconds"]; got != float64(90) {
		t.Fatalf("elapsed = %v", got)
	}

	inv, err := sup.InvalidateAttempt(ctx, me.ID, "")
	if err != nil || inv.NewStatus != "invalidated" || inv.Reason != "Manual invalidation" {
		t.Fatalf("invalidate = %+v, %v", inv, err)
	}
	if _, err := stu.SubmitAssessment(ctx, model.SubmitAssessmentPayload{AttemptID: start.AttemptID}); api.StatusCode(err) != 400 {
		t.Fatalf("submit invalidated: %v", err)
	}
	again, err := stu.StartAssessment(ctx)
	if err != nil || again.Step != 1 || again.AttemptID == start.AttemptID {
		t.Fatalf("restart = %+v, %v", again, err)
	}

	steps, err := sup.AnalyticsAssessments(ctx)
	if err != nil || len(steps.Data) != 3 || steps.Data[0].Total != 2 || steps.Data[0].CompletionRate != 0 {
		t.Fatalf("assessments = %+v, %v", steps, err)
	}
}
