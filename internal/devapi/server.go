// Package devapi is an in-memory stand-in for the assessment REST backend,
// used for local runs and end-to-end tests of the client.
package devapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/rbac"
)

type Options struct {
	Secret      string
	CORSOrigins []string
	Mailer      Mailer           // LogMailer when nil
	Now         func() time.Time // time.Now when nil
	Quiet       bool             // no request log
}

// Server bundles the router with the state behind it.
type Server struct {
	Store  *Store
	Auth   *AuthService
	Router chi.Router
}

func NewServer(opts Options) *Server {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Mailer == nil {
		opts.Mailer = LogMailer
	}
	s := NewStore(opts.Now)
	a := NewAuthService(opts.Secret, opts.Now)
	return &Server{Store: s, Auth: a, Router: NewRouter(s, a, opts)}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.Router.ServeHTTP(w, r) }

func NewRouter(s *Store, a *AuthService, opts Options) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP)
	if !opts.Quiet {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/auth", func(ar chi.Router) {
		ar.Post("/register", RegisterHandler(s, opts.Mailer))
		ar.Post("/verify-email", VerifyEmailHandler(s))
		ar.Post("/resend-otp", ResendOTPHandler(s, opts.Mailer))
		ar.Post("/login", LoginHandler(s, a))
		ar.Post("/logout", LogoutHandler(s, a))
		ar.Post("/forgot-password", ForgotPasswordHandler(s, opts.Mailer))
		ar.Post("/reset-password", ResetPasswordHandler(s))
		ar.Post("/refresh-token", RefreshHandler(s, a))
	})

	// Protected API (JWT → principal in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(JWTMiddleware(a, s))

		pr.With(rbac.Require(rbac.PermProfile)).Get("/users/me", MeHandler(s))
		pr.With(rbac.Require(rbac.PermProfile)).Put("/users/me", UpdateMeHandler(s))

		pr.With(rbac.Require(rbac.PermUsersList)).Get("/admin/users", ListUsersHandler(s))
		pr.With(rbac.Require(rbac.PermUsersList)).Get("/admin/users/{id}", GetUserHandler(s))
		pr.With(rbac.Require(rbac.PermUsersDelete)).Delete("/admin/users/{id}", DeleteUserHandler(s))
		pr.With(rbac.Require(rbac.PermUsersApprove)).Patch("/admin/users/{id}/approve-supervisor", ApproveSupervisorHandler(s))

		pr.With(rbac.Require(rbac.PermQuestionsRead)).Get("/admin/questions", ListQuestionsHandler(s))
		pr.With(rbac.RequireOwnerOr(rbac.PermQuestionsRead, inOpenAttempt(s))).Get("/admin/questions/{id}", GetQuestionHandler(s))
		pr.With(rbac.Require(rbac.PermQuestionsWrite)).Post("/admin/questions", CreateQuestionHandler(s))
		pr.With(rbac.Require(rbac.PermQuestionsWrite)).Post("/admin/questions/bulk", BulkQuestionsHandler(s))
		pr.With(rbac.Require(rbac.PermQuestionsWrite)).Put("/admin/questions/{id}", UpdateQuestionHandler(s))
		pr.With(rbac.Require(rbac.PermQuestionsWrite)).Delete("/admin/questions/{id}", DeleteQuestionHandler(s))

		pr.With(rbac.Require(rbac.PermAssessmentTake)).Get("/assessment/start", StartAssessmentHandler(s))
		pr.With(rbac.Require(rbac.PermAssessmentTake)).Post("/assessment/submit", SubmitAssessmentHandler(s))
		pr.With(rbac.Require(rbac.PermAssessmentHistory)).Get("/assessment/status", AssessmentStatusHandler(s))
		pr.With(rbac.Require(rbac.PermAssessmentHistory)).Get("/assessment/history", AssessmentHistoryHandler(s))
		pr.With(rbac.Require(rbac.PermCertificateView)).Get("/assessment/certificate", CertificateHandler(s))

		pr.With(rbac.Require(rbac.PermAnalyticsView)).Get("/analytics/users", AnalyticsUsersHandler(s))
		pr.With(rbac.Require(rbac.PermAnalyticsView)).Get("/analytics/competency", AnalyticsCompetencyHandler(s))
		pr.With(rbac.Require(rbac.PermAnalyticsView)).Get("/analytics/assessments", AnalyticsAssessmentsHandler(s))

		pr.With(rbac.Require(rbac.PermSupervisorMonitor)).Get("/supervisor/monitor/{userId}", MonitorHandler(s))
		pr.With(rbac.Require(rbac.PermSupervisorInvalidate)).Post("/supervisor/invalidate/{userId}", InvalidateHandler(s))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	return r
}
