package devapi

import (
	"errors"
	"math"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/quiz"
)

func round1(v float64) float64 { return math.Round(v*10) / 10 }

func AnalyticsUsersHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var out model.AnalyticsUsers
		out.Data.Total, out.Data.ByRole = s.CountByRole()
		if out.Data.ByRole == nil {
			out.Data.ByRole = []model.RoleCount{}
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// AnalyticsCompetencyHandler reports answer accuracy (percent) per
// competency and level over submitted attempts.
func AnalyticsCompetencyHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		type bucket struct{ answered, correct int }
		type key struct{ competency, level string }
		buckets := map[key]*bucket{}
		keys := map[string]string{}
		for _, q := range s.Questions(nil, "") {
			keys[q.ID] = q.CorrectOptionKey
		}
		for _, a := range s.AllAttempts() {
			if a.Status != statusSubmitted {
				continue
			}
			for _, ref := range a.Questions {
				k := key{ref.Competency, ref.Level}
				b := buckets[k]
				if b == nil {
					b = &bucket{}
					buckets[k] = b
				}
				b.answered++
				if got, ok := a.Answers[ref.QuestionID]; ok && got != "" && got == keys[ref.QuestionID] {
					b.correct++
				}
			}
		}
		rows := []model.CompetencyPerformanceRow{}
		for k, b := range buckets {
			rows = append(rows, model.CompetencyPerformanceRow{
				Competency: k.competency,
				Level:      k.level,
				Accuracy:   round1(100 * float64(b.correct) / float64(b.answered)),
			})
		}
		sort.Slice(rows, func(i, j int) bool {
			if rows[i].Competency != rows[j].Competency {
				return rows[i].Competency < rows[j].Competency
			}
			return rows[i].Level < rows[j].Level
		})
		respondJSON(w, http.StatusOK, model.CompetencyAnalytics{Data: rows})
	}
}

// AnalyticsAssessmentsHandler reports attempts per step and the share that
// were submitted.
func AnalyticsAssessmentsHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total := make([]int, quiz.Steps+1)
		done := make([]int, quiz.Steps+1)
		for _, a := range s.AllAttempts() {
			if a.Step < 1 || a.Step > quiz.Steps {
				continue
			}
			total[a.Step]++
			if a.Status == statusSubmitted {
				done[a.Step]++
			}
		}
		rows := make([]model.AssessmentsAnalyticsRow, 0, quiz.Steps)
		for step := 1; step <= quiz.Steps; step++ {
			row := model.AssessmentsAnalyticsRow{Step: step, Total: total[step]}
			if total[step] > 0 {
				row.CompletionRate = round1(100 * float64(done[step]) / float64(total[step]))
			}
			rows = append(rows, row)
		}
		respondJSON(w, http.StatusOK, model.AssessmentsAnalytics{Data: rows})
	}
}

// MonitorHandler shows a candidate's open attempt, if any.
func MonitorHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uid := chi.URLParam(r, "userId")
		if _, err := s.UserByID(uid); err != nil {
			respondStoreError(w, err, "user")
			return
		}
		a := openAttempt(s.UserAttempts(uid))
		if a == nil {
			respondJSON(w, http.StatusOK, model.MonitorResponse{Message: "No active attempt"})
			return
		}
		respondJSON(w, http.StatusOK, model.MonitorResponse{Attempt: &model.MonitoredAttempt{
			ID:            a.ID,
			Step:          a.Step,
			StartedAt:     a.StartedAt,
			Status:        a.Status,
			QuestionCount: len(a.Questions),
			Telemetry:     map[string]any{"elapsedSeconds": int(s.now().Sub(a.started).Seconds())},
		}})
	}
}

// InvalidateHandler voids a candidate's open attempt.
func InvalidateHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.InvalidatePayload
		if r.ContentLength != 0 && !decode(w, r, &p) {
			return
		}
		reason := strings.TrimSpace(p.Reason)
		if reason == "" {
			reason = "Manual invalidation"
		}
		uid := chi.URLParam(r, "userId")
		open := openAttempt(s.UserAttempts(uid))
		if open == nil {
			respondError(w, http.StatusNotFound, "No active attempt to invalidate")
			return
		}
		_, err := s.UpdateAttempt(open.ID, func(a *attemptRecord) error {
			if a.Status != statusInProgress {
				return errAlreadySubmitted
			}
			a.Status, a.Reason = statusInvalidated, reason
			return nil
		})
		if errors.Is(err, errAlreadySubmitted) {
			respondError(w, http.StatusConflict, "Attempt is no longer in progress")
			return
		}
		if err != nil {
			respondStoreError(w, err, "attempt")
			return
		}
		respondJSON(w, http.StatusOK, model.InvalidateResponse{
			Message:        "Attempt invalidated",
			AttemptID:      open.ID,
			PreviousStatus: statusInProgress,
			NewStatus:      statusInvalidated,
			Reason:         reason,
		})
	}
}
