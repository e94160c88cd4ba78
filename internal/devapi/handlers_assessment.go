package devapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/quiz"
)

var (
	errAlreadySubmitted = errors.New("attempt is no longer in progress")
	errNotOwner         = errors.New("not your attempt")
)

// nextStep works out which step the candidate may take from their
// submitted attempts. Invalidated attempts do not count. A zero step comes
// with the reason the candidate cannot continue.
func nextStep(attempts []attemptRecord) (int, string) {
	var last *attemptRecord
	for i := range attempts {
		if attempts[i].Status == statusSubmitted {
			last = &attempts[i]
		}
	}
	switch {
	case last == nil:
		return 1, ""
	case last.AdvancedToNext != nil && *last.AdvancedToNext:
		return last.Step + 1, ""
	case last.LevelAwarded == "":
		return 0, fmt.Sprintf("You did not pass step %d. Retakes are not allowed.", last.Step)
	default:
		return 0, "Assessment complete. Final level: " + last.LevelAwarded
	}
}

func openAttempt(attempts []attemptRecord) *attemptRecord {
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].Status == statusInProgress {
			return &attempts[i]
		}
	}
	return nil
}

// pickQuestions draws half of a step from each of its two levels and tops up
// from whichever level has more.
func pickQuestions(s *Store, step int) ([]model.AssessmentQuestion, error) {
	levels, err := quiz.StepLevels(step)
	if err != nil {
		return nil, err
	}
	half := quiz.QuestionsPerStep / 2
	lower, upper := s.Questions(levels[:1], ""), s.Questions(levels[1:], "")
	nl, nu := min(half, len(lower)), min(half, len(upper))
	for nl+nu < quiz.QuestionsPerStep && (nl < len(lower) || nu < len(upper)) {
		if nl < len(lower) {
			nl++
		} else {
			nu++
		}
	}
	var out []model.AssessmentQuestion
	for _, q := range append(lower[:nl:nl], upper[:nu]...) {
		out = append(out, model.AssessmentQuestion{QuestionID: q.ID, Competency: q.Competency, Level: string(q.Level)})
	}
	return out, nil
}

// StartAssessmentHandler resumes the caller's open attempt or opens one for
// the next step.
func StartAssessmentHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := caller(r).UserID
		attempts := s.UserAttempts(uid)
		if a := openAttempt(attempts); a != nil {
			respondJSON(w, http.StatusOK, model.StartAssessmentResponse{AttemptID: a.ID, Step: a.Step, Questions: a.Questions})
			return
		}
		step, reason := nextStep(attempts)
		if step == 0 {
			respondError(w, http.StatusBadRequest, reason)
			return
		}
		refs, err := pickQuestions(s, step)
		if err != nil {
			respondError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if len(refs) == 0 {
			respondError(w, http.StatusServiceUnavailable, fmt.Sprintf("No questions available for step %d", step))
			return
		}
		a := &attemptRecord{UserID: uid}
		a.Step, a.Questions = step, refs
		s.CreateAttempt(a)
		respondJSON(w, http.StatusOK, model.StartAssessmentResponse{AttemptID: a.ID, Step: step, Questions: refs})
	}
}

// SubmitAssessmentHandler scores the attempt and awards a level. Only the
// first submission of an attempt is accepted.
func SubmitAssessmentHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.SubmitAssessmentPayload
		if !decode(w, r, &p) {
			return
		}
		uid := caller(r).UserID
		a, err := s.Attempt(p.AttemptID)
		if err != nil {
			respondStoreError(w, err, "attempt")
			return
		}
		if a.UserID != uid {
			respondError(w, http.StatusForbidden, errNotOwner.Error())
			return
		}
		keys := make(map[string]string, len(a.Questions))
		for _, ref := range a.Questions {
			if q, err := s.Question(ref.QuestionID); err == nil {
				keys[ref.QuestionID] = q.CorrectOptionKey
			}
		}
		var cert quiz.Certification
		updated, err := s.UpdateAttempt(a.ID, func(a *attemptRecord) error {
			if a.Status != statusInProgress {
				return errAlreadySubmitted
			}
			a.Answers = map[string]string{}
			correct := 0
			for _, ref := range a.Questions {
				key, ok := p.Answers[ref.QuestionID]
				if !ok {
					continue
				}
				a.Answers[ref.QuestionID] = key
				if want := keys[ref.QuestionID]; want != "" && key == want {
					correct++
				}
			}
			score := quiz.Score(correct, len(a.Questions))
			c, err := quiz.Certify(a.Step, score)
			if err != nil {
				return err
			}
			cert = c
			pct, adv := float64(score), c.Proceed
			a.Status = statusSubmitted
			a.ScorePercent, a.AdvancedToNext = &pct, &adv
			a.LevelAwarded = string(c.Level)
			a.submitted = s.now()
			a.SubmittedAt = a.submitted.UTC().Format(time.RFC3339)
			return nil
		})
		if errors.Is(err, errAlreadySubmitted) {
			respondError(w, http.StatusBadRequest, "Attempt already submitted or invalidated")
			return
		}
		if err != nil {
			respondStoreError(w, err, "attempt")
			return
		}
		if cert.Level != "" {
			level := string(cert.Level)
			_, _ = s.UpdateUser(uid, func(u *userRecord) { u.CurrentLevel = level })
			s.PutCertificate(uid, model.Certificate{
				ID:     uuid.NewString(),
				Serial: "DCA-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12]),
				Level:  level,
			})
		}
		respondJSON(w, http.StatusOK, model.AttemptEnvelope{Attempt: updated.AssessmentAttempt})
	}
}

func publicAttempts(attempts []attemptRecord, keep func(a attemptRecord) bool) []model.AssessmentAttempt {
	out := []model.AssessmentAttempt{}
	for _, a := range attempts {
		if keep(a) {
			out = append(out, a.AssessmentAttempt)
		}
	}
	return out
}

// AssessmentStatusHandler lists every attempt of the caller, oldest first.
func AssessmentStatusHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := publicAttempts(s.UserAttempts(caller(r).UserID), func(attemptRecord) bool { return true })
		respondJSON(w, http.StatusOK, model.AttemptsEnvelope{Attempts: all})
	}
}

// AssessmentHistoryHandler lists submitted attempts only.
func AssessmentHistoryHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		done := publicAttempts(s.UserAttempts(caller(r).UserID), func(a attemptRecord) bool { return a.Status == statusSubmitted })
		respondJSON(w, http.StatusOK, model.AttemptsEnvelope{Attempts: done})
	}
}

func CertificateHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := s.Certificate(caller(r).UserID)
		if err != nil {
			respondError(w, http.StatusNotFound, "No certificate yet")
			return
		}
		respondJSON(w, http.StatusOK, model.CertificateEnvelope{Certificate: c})
	}
}
