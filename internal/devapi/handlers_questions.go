package devapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/rbac"
)

var questionReaders = rbac.NewChecker(nil)

func validQuestion(q model.Question) error {
	if strings.TrimSpace(q.Text) == "" {
		return errors.New("text is required")
	}
	if strings.TrimSpace(q.Competency) == "" {
		return errors.New("competency is required")
	}
	if _, err := model.ParseLevel(string(q.Level)); err != nil {
		return err
	}
	if len(q.Options) < 2 {
		return errors.New("at least two options are required")
	}
	if !q.HasOption(q.CorrectOptionKey) {
		return fmt.Errorf("correct key %q is not an option", q.CorrectOptionKey)
	}
	return nil
}

// ListQuestionsHandler: GET /admin/questions?page&limit&level&competency
func ListQuestionsHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var levels []model.Level
		if v := r.URL.Query().Get("level"); v != "" {
			l, err := model.ParseLevel(v)
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			levels = []model.Level{l}
		}
		page, limit := pageParams(r)
		respondJSON(w, http.StatusOK, paginate(s.Questions(levels, r.URL.Query().Get("competency")), page, limit))
	}
}

// GetQuestionHandler serves the full question to readers of the bank and the
// public form (no answer key) to a candidate whose open attempt includes it.
func GetQuestionHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := s.Question(chi.URLParam(r, "id"))
		if err != nil {
			respondStoreError(w, err, "question")
			return
		}
		if !questionReaders.Has(caller(r).Role, rbac.PermQuestionsRead) {
			q = q.Public()
		}
		respondJSON(w, http.StatusOK, model.QuestionEnvelope{Question: q})
	}
}

// inOpenAttempt reports whether the {id} question belongs to the caller's
// in-progress attempt.
func inOpenAttempt(s *Store) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		id := chi.URLParam(r, "id")
		for _, a := range s.UserAttempts(caller(r).UserID) {
			if a.Status != statusInProgress {
				continue
			}
			for _, ref := range a.Questions {
				if ref.QuestionID == id {
					return true
				}
			}
		}
		return false
	}
}

func CreateQuestionHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var q model.Question
		if !decode(w, r, &q) {
			return
		}
		if err := validQuestion(q); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		if q.ID != "" {
			if _, err := s.Question(q.ID); err == nil {
				respondStoreError(w, ErrDuplicate, "question")
				return
			}
		}
		q.CreatedBy = caller(r).UserID
		respondJSON(w, http.StatusCreated, model.QuestionEnvelope{Question: s.PutQuestion(q)})
	}
}

// UpdateQuestionHandler applies a partial document on top of the stored
// question.
func UpdateQuestionHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		q, err := s.Question(id)
		if err != nil {
			respondStoreError(w, err, "question")
			return
		}
		body, err := io.ReadAll(r.Body)
		if err != nil || json.Unmarshal(body, &q) != nil {
			respondError(w, http.StatusBadRequest, "bad json")
			return
		}
		q.ID = id
		if err := validQuestion(q); err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		respondJSON(w, http.StatusOK, model.QuestionEnvelope{Question: s.PutQuestion(q)})
	}
}

func DeleteQuestionHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.DeleteQuestion(chi.URLParam(r, "id")); err != nil {
			respondStoreError(w, err, "question")
			return
		}
		respondJSON(w, http.StatusOK, model.MessageResponse{Message: "Question deleted"})
	}
}

// BulkQuestionsHandler upserts a JSON array; the whole batch is rejected when
// any item is invalid.
func BulkQuestionsHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var qs []model.Question
		if !decode(w, r, &qs) {
			return
		}
		if len(qs) == 0 {
			respondError(w, http.StatusBadRequest, "expected a non-empty JSON array")
			return
		}
		for i, q := range qs {
			if err := validQuestion(q); err != nil {
				respondError(w, http.StatusBadRequest, fmt.Sprintf("item %d: %v", i, err))
				return
			}
		}
		by := caller(r).UserID
		for _, q := range qs {
			q.CreatedBy = by
			s.PutQuestion(q)
		}
		respondJSON(w, http.StatusCreated, model.BulkResponse{Count: len(qs)})
	}
}
