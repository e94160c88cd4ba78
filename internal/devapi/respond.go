package devapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, model.MessageResponse{Message: msg})
}

func respondStoreError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respondError(w, http.StatusNotFound, what+" not found")
	case errors.Is(err, ErrDuplicate):
		respondError(w, http.StatusConflict, what+" already exists")
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "bad json")
		return false
	}
	return true
}

// pageParams reads ?page&limit with the defaults the client uses.
func pageParams(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 20
	}
	return page, limit
}

func paginate[T any](all []T, page, limit int) model.Pagination[T] {
	out := model.Pagination[T]{Items: []T{}, Page: page, Total: len(all)}
	out.Pages = (len(all) + limit - 1) / limit
	start := (page - 1) * limit
	if start < len(all) {
		end := start + limit
		if end > len(all) {
			end = len(all)
		}
		out.Items = all[start:end]
	}
	return out
}
