package devapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/rbac"
)

func caller(r *http.Request) rbac.Principal {
	p, _ := rbac.PrincipalFromContext(r.Context())
	return p
}

func MeHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.UserByID(caller(r).UserID)
		if err != nil {
			respondStoreError(w, err, "user")
			return
		}
		respondJSON(w, http.StatusOK, model.UserEnvelope{User: u.User})
	}
}

func UpdateMeHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.ProfileUpdate
		if !decode(w, r, &p) {
			return
		}
		if p.Name != nil && strings.TrimSpace(*p.Name) == "" {
			respondError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		u, err := s.UpdateUser(caller(r).UserID, func(u *userRecord) {
			if p.Name != nil {
				u.Profile.Name = strings.TrimSpace(*p.Name)
			}
			if p.AvatarURL != nil {
				u.Profile.AvatarURL = *p.AvatarURL
			}
			if p.Phone != nil {
				u.Profile.Phone = *p.Phone
			}
		})
		if err != nil {
			respondStoreError(w, err, "user")
			return
		}
		respondJSON(w, http.StatusOK, model.UserEnvelope{User: u.User})
	}
}

// ListUsersHandler: GET /admin/users?page&limit&role&supervisorApproved
func ListUsersHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var role model.Role
		if v := q.Get("role"); v != "" {
			var err error
			if role, err = model.ParseRole(v); err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
		}
		var approved *bool
		if v := q.Get("supervisorApproved"); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				respondError(w, http.StatusBadRequest, "supervisorApproved must be true or false")
				return
			}
			approved = &b
		}
		page, limit := pageParams(r)
		respondJSON(w, http.StatusOK, paginate(s.ListUsers(role, approved), page, limit))
	}
}

func GetUserHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := s.UserByID(chi.URLParam(r, "id"))
		if err != nil {
			respondStoreError(w, err, "user")
			return
		}
		respondJSON(w, http.StatusOK, model.UserEnvelope{User: u.User})
	}
}

func DeleteUserHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if id == caller(r).UserID {
			respondError(w, http.StatusBadRequest, "cannot delete your own account")
			return
		}
		if err := s.DeleteUser(id); err != nil {
			respondStoreError(w, err, "user")
			return
		}
		respondJSON(w, http.StatusOK, model.MessageResponse{Message: "User deleted"})
	}
}

func ApproveSupervisorHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		u, err := s.UserByID(id)
		if err != nil {
			respondStoreError(w, err, "user")
			return
		}
		if u.Role != model.RoleSupervisor {
			respondError(w, http.StatusBadRequest, "user is not a supervisor")
			return
		}
		if _, err := s.UpdateUser(id, func(u *userRecord) {
			t := true
			u.SupervisorApproved = &t
		}); err != nil {
			respondStoreError(w, err, "user")
			return
		}
		respondJSON(w, http.StatusOK, model.ApproveSupervisorResponse{Message: "Supervisor approved", UserID: id})
	}
}
