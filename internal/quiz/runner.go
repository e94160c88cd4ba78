package quiz

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

// ErrStaleResponse is returned by Start when a newer Start superseded it
// while it waited for the server. The newer session is untouched.
var ErrStaleResponse = errors.New("quiz: superseded by a newer session")

// ErrNoSession is returned for events sent before any session started.
var ErrNoSession = errors.New("quiz: no session")

// Assessments is the part of the API client the runner needs.
type Assessments interface {
	StartAssessment(ctx context.Context) (*model.StartAssessmentResponse, error)
	SubmitAssessment(ctx context.Context, p model.SubmitAssessmentPayload) (*model.AssessmentAttempt, error)
}

// Outcome is reported once per session, when it completes.
//
// Result is the local tally. Its score and certification only mean something
// when the questions carried their answer keys (admin or file banks); for a
// candidate the keys are hidden and Attempt holds the real result.
type Outcome struct {
	SessionID uuid.UUID
	AttemptID string
	Result    *Result
	Attempt   *model.AssessmentAttempt // server's verdict; nil when Err is set
	Err       error                    // submission failure
}

// View is a read-only snapshot for rendering.
type View struct {
	SessionID uuid.UUID
	Step      int
	Status    Status
	Running   bool
	Index     int
	Len       int
	Remaining int
	TimeLimit int
	Question  model.Question
	Answered  int
}

// Runner owns the current session. Every event goes through its lock, and
// responses that arrive for a superseded session are dropped.
type Runner struct {
	api   Assessments
	bank  QuestionBank
	timer *Timer

	mu        sync.Mutex
	gen       uint64 // bumped by Start and Stop
	epoch     uint64 // bumped whenever the timer starts or stops
	id        uuid.UUID
	attemptID string
	sess      *Session

	// OnComplete receives the outcome of every completed session, including
	// those completed by the timer.
	OnComplete func(Outcome)
	// OnTick runs after each timer tick that did not complete the session.
	OnTick func(View)
}

// NewRunner wires the runner. A nil timer means ticks are driven by the
// caller through Tick.
func NewRunner(api Assessments, bank QuestionBank, timer *Timer) *Runner {
	return &Runner{api: api, bank: bank, timer: timer}
}

// Start opens a new attempt and replaces any current session.
func (r *Runner) Start(ctx context.Context) (View, error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.stopTimer()
	r.mu.Unlock()

	start, err := r.api.StartAssessment(ctx)
	if err != nil {
		r.restartTimer(gen)
		return View{}, err
	}
	questions, err := r.bank.Questions(ctx, start.Step, start.Questions)
	if err != nil {
		r.restartTimer(gen)
		return View{}, fmt.Errorf("load questions: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return View{}, ErrStaleResponse
	}
	sess := NewSession()
	if err := sess.Start(start.Step, questions); err != nil {
		return View{}, err
	}
	r.sess = sess
	r.id = uuid.New()
	r.attemptID = start.AttemptID
	if err := r.startTimer(gen); err != nil {
		return View{}, err
	}
	return r.view(), nil
}

// Tick feeds one second into the current session.
func (r *Runner) Tick() {
	r.mu.Lock()
	r.tickLocked(r.gen, r.epoch)
}

func (r *Runner) tick(gen, epoch uint64) {
	r.mu.Lock()
	r.tickLocked(gen, epoch)
}

// tickLocked releases r.mu.
func (r *Runner) tickLocked(gen, epoch uint64) {
	if gen != r.gen || epoch != r.epoch || r.sess == nil || !r.sess.Running() {
		// a tick delivered after pause, completion or replacement
		r.mu.Unlock()
		return
	}
	res, err := r.sess.Tick()
	if err != nil || res == nil {
		v := r.view()
		r.mu.Unlock()
		if err == nil && r.OnTick != nil {
			r.OnTick(v)
		}
		return
	}
	r.finishLocked(context.Background(), res)
}

func (r *Runner) Pause() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return ErrNoSession
	}
	if err := r.sess.Pause(); err != nil {
		return err
	}
	r.stopTimer()
	return nil
}

func (r *Runner) Resume() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return ErrNoSession
	}
	if err := r.sess.Resume(); err != nil {
		return err
	}
	return r.startTimer(r.gen)
}

func (r *Runner) Previous() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return ErrNoSession
	}
	return r.sess.Previous()
}

// Answer records key for the current question. The outcome is non-nil when
// this answer completed the session.
func (r *Runner) Answer(ctx context.Context, key string) (*Outcome, error) {
	r.mu.Lock()
	if r.sess == nil {
		r.mu.Unlock()
		return nil, ErrNoSession
	}
	res, err := r.sess.Answer(key)
	if err != nil || res == nil {
		r.mu.Unlock()
		return nil, err
	}
	out := r.finishLocked(ctx, res)
	return &out, nil
}

// Complete ends the session now and submits it.
func (r *Runner) Complete(ctx context.Context) (*Outcome, error) {
	r.mu.Lock()
	if r.sess == nil {
		r.mu.Unlock()
		return nil, ErrNoSession
	}
	res, err := r.sess.Complete()
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	out := r.finishLocked(ctx, res)
	return &out, nil
}

// finishLocked submits a freshly completed session and releases r.mu before
// the network call. The session can only complete once, so this runs once
// per session.
func (r *Runner) finishLocked(ctx context.Context, res *Result) Outcome {
	r.stopTimer()
	out := Outcome{SessionID: r.id, AttemptID: r.attemptID, Result: res}
	payload := model.SubmitAssessmentPayload{AttemptID: r.attemptID, Answers: make(map[string]string, len(res.Answers))}
	for _, a := range res.Answers {
		payload.Answers[a.QuestionID] = a.SelectedKey
	}
	r.mu.Unlock()

	out.Attempt, out.Err = r.api.SubmitAssessment(ctx, payload)
	if out.Err != nil {
		log.Printf("quiz: submit attempt %s: %v", out.AttemptID, out.Err)
	}
	if r.OnComplete != nil {
		r.OnComplete(out)
	}
	return out
}

// Stop tears the runner down; pending responses and ticks are dropped.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.stopTimer()
}

// View snapshots the current session. ok is false before the first Start.
func (r *Runner) View() (View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sess == nil {
		return View{}, false
	}
	return r.view(), true
}

func (r *Runner) view() View {
	s := r.sess
	v := View{
		SessionID: r.id,
		Step:      s.Step(),
		Status:    s.Status(),
		Running:   s.Running(),
		Index:     s.Index(),
		Len:       s.Len(),
		Remaining: s.TimeRemaining(),
		TimeLimit: s.TimeLimit(),
		Answered:  len(s.answers),
	}
	v.Question, _ = s.Current()
	return v
}

func (r *Runner) startTimer(gen uint64) error {
	r.epoch++
	if r.timer == nil {
		return nil
	}
	epoch := r.epoch
	return r.timer.Start(func() { r.tick(gen, epoch) })
}

// restartTimer puts the current session back on the clock after a Start
// that never replaced it.
func (r *Runner) restartTimer(gen uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen || r.sess == nil || !r.sess.Running() {
		return
	}
	if err := r.startTimer(gen); err != nil {
		log.Printf("quiz: restart timer: %v", err)
	}
}

func (r *Runner) stopTimer() {
	r.epoch++
	if r.timer != nil {
		r.timer.Stop()
	}
}
