package devapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/model"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/rbac"
)

const (
	AccessTTL  = 2 * time.Hour
	RefreshTTL = 7 * 24 * time.Hour
	otpPeriod  = 600 // seconds an emailed code stays valid
	issuer     = "assessment-devapi"
)

// AuthService issues and checks access tokens.
type AuthService struct {
	hmac []byte
	now  func() time.Time
}

func NewAuthService(secret string, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}
	return &AuthService{hmac: []byte(secret), now: now}
}

type Claims struct {
	Role     model.Role `json:"role"`
	Approved bool       `json:"approved,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(u *userRecord) (string, error) {
	now := a.now()
	claims := &Claims{
		Role:     u.Role,
		Approved: u.approved(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTTL)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now), jwt.WithIssuer(issuer))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, _ := token.Claims.(*Claims)
	return c, nil
}

// JWTMiddleware puts the caller into the request context. Approval and role
// are re-read from the store so an approval takes effect without a new token.
func JWTMiddleware(a *AuthService, users *Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				respondError(w, http.StatusUnauthorized, "No token provided")
				return
			}
			c, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}
			u, err := users.UserByID(c.Subject)
			if err != nil {
				respondError(w, http.StatusUnauthorized, "User no longer exists")
				return
			}
			p := rbac.Principal{UserID: u.ID, Role: u.Role, Approved: u.approved()}
			next.ServeHTTP(w, r.WithContext(rbac.WithPrincipal(r.Context(), p)))
		})
	}
}

func hashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func checkPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

var otpOpts = totp.ValidateOpts{Period: otpPeriod, Digits: otp.DigitsSix, Algorithm: otp.AlgorithmSHA1}

func newOTPSecret(email string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{Issuer: issuer, AccountName: email, Period: otpPeriod})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}

func otpCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, otpOpts)
}

func otpValid(code, secret string, at time.Time) bool {
	ok, err := totp.ValidateCustom(code, secret, at, otpOpts)
	return err == nil && ok
}
