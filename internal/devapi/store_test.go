package devapi

import (
	"testing"
	"time"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/quiz"
)

func TestRefreshRotationAndPurge(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	s := NewStore(func() time.Time { return now })
	u := &userRecord{User: model.User{Email: "A@Example.com ", Role: model.RoleStudent}}
	if err := s.CreateUser(u); err != nil {
		t.Fatal(err)
	}
	if _, err := s.UserByEmail("a@example.com"); err != nil {
		t.Fatalf("email not normalised: %v", err)
	}

	tok := s.IssueRefresh(u.ID)
	owner, next, err := s.RotateRefresh(tok)
	if err != nil || owner != u.ID || next == tok {
		t.Fatalf("rotate = %q %q %v", owner, next, err)
	}
	if _, _, err := s.RotateRefresh(tok); err == nil {
		t.Fatal("spent token accepted")
	}

	stale := s.IssueRefresh(u.ID)
	now = now.Add(RefreshTTL)
	if _, _, err := s.RotateRefresh(stale); err == nil {
		t.Fatal("expired token accepted")
	}
	if n := s.PurgeExpired(); n != 1 { // next; stale was consumed above
		t.Fatalf("purged %d", n)
	}
}

func TestNextStep(t *testing.T) {
	yes, no := true, false
	done := func(step int, level string, adv *bool) attemptRecord {
		a := attemptRecord{}
		a.Step, a.Status, a.LevelAwarded, a.AdvancedToNext = step, statusSubmitted, level, adv
		return a
	}
	voided := attemptRecord{}
	voided.Step, voided.Status = 2, statusInvalidated

	cases := []struct {
		name     string
		attempts []attemptRecord
		want     int
	}{
		{"first", nil, 1},
		{"advanced", []attemptRecord{done(1, "A2", &yes)}, 2},
		{"invalidated ignored", []attemptRecord{done(1, "A2", &yes), voided}, 2},
		{"failed step 1", []attemptRecord{done(1, "", &no)}, 0},
		{"stopped at B1", []attemptRecord{done(1, "A2", &yes), done(2, "B1", &no)}, 0},
		{"finished", []attemptRecord{done(1, "A2", &yes), done(2, "B2", &yes), done(3, "C2", &no)}, 0},
	}
	for _, tc := range cases {
		got, reason := nextStep(tc.attempts)
		if got != tc.want {
			t.Errorf("%s: step %d, want %d", tc.name, got, tc.want)
		}
		if (got == 0) != (reason != "") {
			t.Errorf("%s: reason %q with step %d", tc.name, reason, got)
		}
	}
}

func TestPickQuestionsBalancesLevels(t *testing.T) {
	s := NewStore(nil)
	add := func(l model.Level, n int) {
		for i := 0; i < n; i++ {
			s.PutQuestion(model.Question{Level: l, Competency: "Safety", Text: "q"})
		}
	}
	add(model.LevelA1, 30)
	add(model.LevelA2, 10)
	refs, err := pickQuestions(s, 1)
	if err != nil {
		t.Fatal(err)
	}
	counts := map[string]int{}
	for _, r := range refs {
		counts[r.Level]++
	}
	if len(refs) != 40 || counts["A2"] != 10 || counts["A1"] != 30 {
		t.Fatalf("counts = %v", counts)
	}

	add(model.LevelA2, 30)
	refs, _ = pickQuestions(s, 1)
	counts = map[string]int{}
	for _, r := range refs {
		counts[r.Level]++
	}
	if len(refs) != quiz.QuestionsPerStep || counts["A1"] != 22 || counts["A2"] != 22 {
		t.Fatalf("counts = %v", counts)
	}
}

func TestSeedIsComplete(t *testing.T) {
	s := NewStore(nil)
	if err := Seed(s, 7, 3); err != nil {
		t.Fatal(err)
	}
	total, _ := s.CountByRole()
	if total < len(DefaultAccounts)+1 || total > len(DefaultAccounts)+3 {
		t.Fatalf("users = %d", total)
	}
	for step := 1; step <= quiz.Steps; step++ {
		refs, err := pickQuestions(s, step)
		if err != nil || len(refs) != quiz.QuestionsPerStep {
			t.Fatalf("step %d: %d questions, %v", step, len(refs), err)
		}
	}
	for _, q := range s.Questions(nil, "") {
		if err := validQuestion(q); err != nil {
			t.Fatalf("seeded question %s: %v", q.ID, err)
		}
	}
}
