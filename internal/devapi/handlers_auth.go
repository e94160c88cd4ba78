package devapi

import (
	"log"
	"net/http"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
)

const minPasswordLen = 6

// Mailer delivers one-time codes.
type Mailer func(email, purpose, code string)

// LogMailer writes the code to the server log instead of sending mail.
func LogMailer(email, purpose, code string) {
	log.Printf("devapi: %s code for %s: %s", purpose, email, code)
}

func sendCode(s *Store, mail Mailer, u *userRecord, purpose string) error {
	code, err := otpCode(u.OTPSecret, s.now())
	if err != nil {
		return err
	}
	mail(u.Email, purpose, code)
	return nil
}

func RegisterHandler(s *Store, mail Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.RegisterPayload
		if !decode(w, r, &p) {
			return
		}
		if !strings.Contains(p.Email, "@") {
			respondError(w, http.StatusBadRequest, "valid email required")
			return
		}
		if len(p.Password) < minPasswordLen {
			respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}
		if p.Role == "" {
			p.Role = model.RoleStudent
		}
		if p.Role != model.RoleStudent && p.Role != model.RoleSupervisor {
			respondError(w, http.StatusBadRequest, "role must be student or supervisor")
			return
		}
		hash, err := hashPassword(p.Password)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "hash error")
			return
		}
		secret, err := newOTPSecret(p.Email)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "otp error")
			return
		}
		u := &userRecord{
			User:         model.User{Email: p.Email, Role: p.Role, Profile: p.Profile},
			PasswordHash: hash,
			OTPSecret:    secret,
		}
		if p.Role == model.RoleSupervisor {
			f := false
			u.SupervisorApproved = &f
		}
		if err := s.CreateUser(u); err != nil {
			respondStoreError(w, err, "user")
			return
		}
		if err := sendCode(s, mail, u, "verification"); err != nil {
			respondError(w, http.StatusInternalServerError, "otp error")
			return
		}
		respondJSON(w, http.StatusCreated, model.RegisterResponse{
			Message:                    "Registration successful. Check your email for the verification code.",
			UserID:                     u.ID,
			SupervisorApprovalRequired: p.Role == model.RoleSupervisor,
		})
	}
}

func VerifyEmailHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.VerifyEmailPayload
		if !decode(w, r, &p) {
			return
		}
		u, err := s.UserByEmail(p.Email)
		if err != nil {
			respondStoreError(w, err, "user")
			return
		}
		if u.IsEmailVerified {
			respondJSON(w, http.StatusOK, model.MessageResponse{Message: "Email already verified"})
			return
		}
		if !otpValid(strings.TrimSpace(p.OTP), u.OTPSecret, s.now()) {
			respondError(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		if _, err := s.UpdateUser(u.ID, func(u *userRecord) { u.IsEmailVerified = true }); err != nil {
			respondStoreError(w, err, "user")
			return
		}
		respondJSON(w, http.StatusOK, model.MessageResponse{Message: "Email verified"})
	}
}

func ResendOTPHandler(s *Store, mail Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.EmailPayload
		if !decode(w, r, &p) {
			return
		}
		u, err := s.UserByEmail(p.Email)
		if err != nil {
			respondStoreError(w, err, "user")
			return
		}
		if u.IsEmailVerified {
			respondError(w, http.StatusBadRequest, "Email already verified")
			return
		}
		if err := sendCode(s, mail, u, "verification"); err != nil {
			respondError(w, http.StatusInternalServerError, "otp error")
			return
		}
		respondJSON(w, http.StatusOK, model.MessageResponse{Message: "Verification code sent"})
	}
}

func LoginHandler(s *Store, a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.LoginPayload
		if !decode(w, r, &p) {
			return
		}
		u, err := s.UserByEmail(p.Email)
		if err != nil || !checkPassword(u.PasswordHash, p.Password) {
			respondError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		if !u.IsEmailVerified {
			respondError(w, http.StatusForbidden, "Please verify your email first")
			return
		}
		tok, err := a.IssueJWT(u)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "token error")
			return
		}
		out := model.AuthLoginResponse{AccessToken: tok, RefreshToken: s.IssueRefresh(u.ID), Role: u.Role}
		if u.Role == model.RoleSupervisor {
			ok := u.approved()
			out.SupervisorApproved, out.IsApproved = &ok, &ok
		}
		respondJSON(w, http.StatusOK, out)
	}
}

// LogoutHandler revokes the caller's refresh tokens when a valid bearer is
// sent. It never fails, so an expired session can still log out.
func LogoutHandler(s *Store, a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
			if c, err := a.Parse(strings.TrimPrefix(h, "Bearer ")); err == nil {
				s.RevokeRefresh(c.Subject)
			}
		}
		respondJSON(w, http.StatusOK, model.MessageResponse{Message: "Logged out"})
	}
}

func ForgotPasswordHandler(s *Store, mail Mailer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.EmailPayload
		if !decode(w, r, &p) {
			return
		}
		if u, err := s.UserByEmail(p.Email); err == nil {
			if err := sendCode(s, mail, u, "password reset"); err != nil {
				respondError(w, http.StatusInternalServerError, "otp error")
				return
			}
		}
		respondJSON(w, http.StatusOK, model.MessageResponse{Message: "If the account exists, a reset code has been sent"})
	}
}

func ResetPasswordHandler(s *Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.ResetPasswordPayload
		if !decode(w, r, &p) {
			return
		}
		u, err := s.UserByEmail(p.Email)
		if err != nil || !otpValid(strings.TrimSpace(p.OTP), u.OTPSecret, s.now()) {
			respondError(w, http.StatusBadRequest, "Invalid or expired OTP")
			return
		}
		if len(p.NewPassword) < minPasswordLen {
			respondError(w, http.StatusBadRequest, "password must be at least 6 characters")
			return
		}
		hash, err := hashPassword(p.NewPassword)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "hash error")
			return
		}
		if _, err := s.UpdateUser(u.ID, func(u *userRecord) { u.PasswordHash = hash }); err != nil {
			respondStoreError(w, err, "user")
			return
		}
		s.RevokeRefresh(u.ID)
		respondJSON(w, http.StatusOK, model.MessageResponse{Message: "Password reset"})
	}
}

// RefreshHandler rotates the refresh token and issues a new access token.
func RefreshHandler(s *Store, a *AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var p model.RefreshPayload
		if !decode(w, r, &p) {
			return
		}
		userID, next, err := s.RotateRefresh(p.RefreshToken)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		u, err := s.UserByID(userID)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Invalid refresh token")
			return
		}
		tok, err := a.IssueJWT(u)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "token error")
			return
		}
		respondJSON(w, http.StatusOK, model.RefreshResponse{AccessToken: tok, RefreshToken: next, Role: u.Role})
	}
}
