package quiz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

// questions returns n questions whose correct key is always "a".
func questions(n int) []model.Question {
	qs := make([]model.Question, n)
	for i := range qs {
		qs[i] = model.Question{
			ID:               fmt.Sprintf("q%02d", i),
			Level:            model.LevelA1,
			Text:             fmt.Sprintf("question %d", i),
			Options:          []model.QuestionOption{{Key: "a", Value: "yes"}, {Key: "b", Value: "no"}},
			CorrectOptionKey: "a",
		}
	}
	return qs
}

func started(t *testing.T, step, n int) *Session {
	t.Helper()
	s := NewSession()
	if err := s.Start(step, questions(n)); err != nil {
		t.Fatalf("start: %v", err)
	}
	return s
}

func TestStartSetsTimeLimit(t *testing.T) {
	s := started(t, 1, 44)
	if s.Status() != InProgress || !s.Running() || s.Index() != 0 {
		t.Fatalf("status=%v running=%v index=%d", s.Status(), s.Running(), s.Index())
	}
	if s.TimeLimit() != 44*60 || s.TimeRemaining() != 44*60 {
		t.Fatalf("limit=%d remaining=%d", s.TimeLimit(), s.TimeRemaining())
	}
	if err := s.Start(1, questions(2)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("second start: %v", err)
	}
	if err := NewSession().Start(4, questions(1)); err == nil {
		t.Fatal("step 4 accepted")
	}
	if err := NewSession().Start(1, nil); err == nil {
		t.Fatal("empty question set accepted")
	}
}

func TestCompleteWithoutAnswersScoresZero(t *testing.T) {
	s := started(t, 2, 10)
	res, err := s.Complete()
	if err != nil {
		t.Fatal(err)
	}
	if res.Score != 0 || res.Answered != 0 {
		t.Fatalf("result = %+v", res)
	}
	// step 2 under the pass mark keeps A2
	if res.Passed || res.Level != model.LevelA2 {
		t.Fatalf("certification = %+v", res.Certification)
	}
}

func TestHiddenKeysNeverScore(t *testing.T) {
	qs := questions(2)
	for i := range qs {
		qs[i] = qs[i].Public()
	}
	s := NewSession()
	if err := s.Start(1, qs); err != nil {
		t.Fatal(err)
	}
	s.Answer("a")
	res, err := s.Answer("a")
	if err != nil || res == nil {
		t.Fatalf("answer: %v %v", res, err)
	}
	if res.Correct != 0 || res.Score != 0 || res.Answered != 2 || res.Passed {
		t.Fatalf("result = %+v", res)
	}
}

func TestScoreRounding(t *testing.T) {
	cases := []struct{ q, c, want int }{
		{44, 11, 25},
		{44, 0, 0},
		{44, 44, 100},
		{3, 1, 33},
		{3, 2, 67},
		{8, 1, 13}, // 12.5 rounds up
	}
	for _, tc := range cases {
		if got := Score(tc.c, tc.q); got != tc.want {
			t.Errorf("Score(%d, %d) = %d, want %d", tc.c, tc.q, got, tc.want)
		}
		if tc.c == tc.q {
			continue
		}
		s := started(t, 1, tc.q)
		for i := 0; i < tc.c; i++ {
			if _, err := s.Answer("a"); err != nil {
				t.Fatal(err)
			}
		}
		res, err := s.Complete()
		if err != nil {
			t.Fatal(err)
		}
		if res.Score != tc.want || res.Correct != tc.c || res.Total != tc.q {
			t.Errorf("Q=%d C=%d: result %+v, want score %d", tc.q, tc.c, res, tc.want)
		}
	}
}

func TestTickCompletesExactlyOnce(t *testing.T) {
	s := started(t, 1, 2)
	completions := 0
	for i := 0; i < 200; i++ {
		res, err := s.Tick()
		if res != nil {
			completions++
		}
		if err != nil && !errors.Is(err, ErrInvalidState) {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if completions != 1 {
		t.Fatalf("%d completions, want 1", completions)
	}
	if s.TimeRemaining() != 0 || s.Status() != Completed {
		t.Fatalf("remaining=%d status=%v", s.TimeRemaining(), s.Status())
	}
	if _, err := s.Complete(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("complete after timeout: %v", err)
	}
}

func TestAnswerOnLastQuestionCompletes(t *testing.T) {
	s := started(t, 1, 2)
	if res, err := s.Answer("a"); err != nil || res != nil {
		t.Fatalf("first answer: %v %v", res, err)
	}
	res, err := s.Answer("a")
	if err != nil || res == nil {
		t.Fatalf("last answer: %v %v", res, err)
	}
	if s.Status() != Completed || res.Score != 100 || !res.Passed || res.Level != model.LevelA2 || !res.Proceed {
		t.Fatalf("result = %+v", res)
	}
}

func TestAnswerAfterCompletedIsRejected(t *testing.T) {
	s := started(t, 1, 3)
	if _, err := s.Answer("a"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Complete(); err != nil {
		t.Fatal(err)
	}
	before := s.Answers()
	_, err := s.Answer("a")
	var ise *InvalidStateError
	if !errors.As(err, &ise) || ise.Op != "answer" || ise.Status != Completed {
		t.Fatalf("err = %v", err)
	}
	if len(s.Answers()) != len(before) {
		t.Fatalf("answers mutated: %v -> %v", before, s.Answers())
	}
}

func TestPauseResume(t *testing.T) {
	s := started(t, 1, 3)
	if err := s.Pause(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Tick(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("tick while paused: %v", err)
	}
	if err := s.Pause(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double pause: %v", err)
	}
	// answering while paused is allowed and keeps the timer paused
	if _, err := s.Answer("b"); err != nil {
		t.Fatal(err)
	}
	if s.Index() != 1 || s.Running() {
		t.Fatalf("index=%d running=%v", s.Index(), s.Running())
	}
	if err := s.Resume(); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Tick(); err != nil {
		t.Fatal(err)
	}
	if s.TimeRemaining() != 3*60-1 {
		t.Fatalf("remaining = %d", s.TimeRemaining())
	}
}

func TestTimeSpentIsPerQuestionAndCapped(t *testing.T) {
	s := started(t, 1, 3)
	for i := 0; i < 7; i++ {
		s.Tick()
	}
	s.Answer("a")
	for i := 0; i < 95; i++ {
		s.Tick()
	}
	s.Answer("b")
	got := s.Answers()
	if got["q00"].TimeSpent != 7 || !got["q00"].Correct {
		t.Fatalf("q00 = %+v", got["q00"])
	}
	if got["q01"].TimeSpent != 60 || got["q01"].Correct {
		t.Fatalf("q01 = %+v", got["q01"])
	}
}

func TestPreviousOverwritesAnswer(t *testing.T) {
	s := started(t, 1, 3)
	if err := s.Previous(); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("previous on first question: %v", err)
	}
	s.Answer("b")
	if err := s.Previous(); err != nil {
		t.Fatal(err)
	}
	if q, _ := s.Current(); q.ID != "q00" {
		t.Fatalf("current = %s", q.ID)
	}
	s.Answer("a")
	if a := s.Answers()["q00"]; a.SelectedKey != "a" || !a.Correct {
		t.Fatalf("q00 = %+v", a)
	}
	if len(s.Answers()) != 1 || s.Index() != 1 {
		t.Fatalf("answers=%d index=%d", len(s.Answers()), s.Index())
	}
}

func TestHiddenKeyNeverMatches(t *testing.T) {
	qs := questions(1)
	qs[0] = qs[0].Public()
	s := NewSession()
	if err := s.Start(1, qs); err != nil {
		t.Fatal(err)
	}
	res, _ := s.Answer("")
	if res.Correct != 0 {
		t.Fatalf("hidden key matched: %+v", res)
	}
}
