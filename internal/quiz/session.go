// Package quiz runs one timed assessment step: a state machine fed with
// discrete events (start, tick, answer, complete), a thin timer that produces
// ticks, and a runner that talks to the API.
package quiz

import (
	"errors"
	"fmt"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

type Status int

const (
	NotStarted Status = iota
	InProgress
	Completed
)

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Completed:
		return "completed"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

var ErrInvalidState = errors.New("invalid quiz state")

// InvalidStateError reports an event the session cannot accept in its
// current state. The session is left unchanged.
type InvalidStateError struct {
	Op      string
	Status  Status
	Running bool
}

func (e *InvalidStateError) Error() string {
	if e.Status == InProgress && !e.Running {
		return fmt.Sprintf("quiz: %s while paused", e.Op)
	}
	return fmt.Sprintf("quiz: %s while %s", e.Op, e.Status)
}

func (e *InvalidStateError) Is(target error) bool { return target == ErrInvalidState }

type Answer struct {
	QuestionID  string
	SelectedKey string
	Correct     bool
	TimeSpent   int // seconds
}

// Result is scored against the keys the session was given. A hidden key never
// matches, so Certification is only meaningful for keyed questions.
type Result struct {
	Certification
	Correct  int
	Total    int
	Answered int
	Answers  []Answer // in question order
}

// Session is not safe for concurrent use; Runner serialises access.
type Session struct {
	status    Status
	step      int
	questions []model.Question
	answers   map[string]Answer
	index     int
	timeLimit int
	remaining int
	running   bool
	shownAt   int // remaining seconds when the current question was shown
	result    *Result
}

func NewSession() *Session { return &Session{} }

func (s *Session) invalid(op string) error {
	return &InvalidStateError{Op: op, Status: s.status, Running: s.running}
}

// Start begins a step with its question set; the clock starts running.
func (s *Session) Start(step int, questions []model.Question) error {
	if s.status != NotStarted {
		return s.invalid("start")
	}
	if _, ok := bands[step]; !ok {
		return fmt.Errorf("quiz: step %d out of range 1..%d", step, Steps)
	}
	if len(questions) == 0 {
		return errors.New("quiz: no questions for step")
	}
	s.step = step
	s.questions = append([]model.Question(nil), questions...)
	s.answers = make(map[string]Answer, len(questions))
	s.index = 0
	s.timeLimit = len(questions) * SecondsPerQuestion
	s.remaining = s.timeLimit
	s.shownAt = s.remaining
	s.running = true
	s.status = InProgress
	return nil
}

// Tick advances the clock by one second. When time runs out the session
// completes and the result is returned.
func (s *Session) Tick() (*Result, error) {
	if s.status != InProgress || !s.running {
		return nil, s.invalid("tick")
	}
	s.remaining--
	if s.remaining > 0 {
		return nil, nil
	}
	s.remaining = 0
	return s.complete(), nil
}

func (s *Session) Pause() error {
	if s.status != InProgress || !s.running {
		return s.invalid("pause")
	}
	s.running = false
	return nil
}

func (s *Session) Resume() error {
	if s.status != InProgress || s.running {
		return s.invalid("resume")
	}
	s.running = true
	return nil
}

// Answer records key for the current question and moves on. Answering the
// last question completes the session.
func (s *Session) Answer(key string) (*Result, error) {
	if s.status != InProgress {
		return nil, s.invalid("answer")
	}
	q := s.questions[s.index]
	spent := s.shownAt - s.remaining
	if spent > SecondsPerQuestion {
		spent = SecondsPerQuestion
	}
	s.answers[q.ID] = Answer{
		QuestionID:  q.ID,
		SelectedKey: key,
		Correct:     q.CorrectOptionKey != "" && key == q.CorrectOptionKey,
		TimeSpent:   spent,
	}
	if s.index == len(s.questions)-1 {
		return s.complete(), nil
	}
	s.index++
	s.shownAt = s.remaining
	return nil, nil
}

// Previous goes back one question; answering it again replaces the earlier
// answer.
func (s *Session) Previous() error {
	if s.status != InProgress || s.index == 0 {
		return s.invalid("previous")
	}
	s.index--
	s.shownAt = s.remaining
	return nil
}

// Complete ends the session early. A second call fails; the result is only
// ever produced once.
func (s *Session) Complete() (*Result, error) {
	if s.status != InProgress {
		return nil, s.invalid("complete")
	}
	return s.complete(), nil
}

func (s *Session) complete() *Result {
	r := &Result{Total: len(s.questions)}
	for _, q := range s.questions {
		a, ok := s.answers[q.ID]
		if !ok {
			continue
		}
		r.Answered++
		if a.Correct {
			r.Correct++
		}
		r.Answers = append(r.Answers, a)
	}
	// step was validated in Start
	r.Certification, _ = Certify(s.step, Score(r.Correct, r.Total))
	s.status = Completed
	s.running = false
	s.result = r
	return r
}

func (s *Session) Status() Status     { return s.status }
func (s *Session) Step() int          { return s.step }
func (s *Session) Running() bool      { return s.status == InProgress && s.running }
func (s *Session) Index() int         { return s.index }
func (s *Session) TimeLimit() int     { return s.timeLimit }
func (s *Session) TimeRemaining() int { return s.remaining }
func (s *Session) Len() int           { return len(s.questions) }

// Result is nil until the session completed.
func (s *Session) Result() *Result { return s.result }

// Current returns the question being shown.
func (s *Session) Current() (model.Question, bool) {
	if s.status != InProgress {
		return model.Question{}, false
	}
	return s.questions[s.index], true
}

// Answers returns a copy of the recorded answers keyed by question id.
func (s *Session) Answers() map[string]Answer {
	out := make(map[string]Answer, len(s.answers))
	for k, v := range s.answers {
		out[k] = v
	}
	return out
}
