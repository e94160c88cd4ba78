// Command assessctl is the terminal front end of the digital competency
// assessment: sign-up and login, the timed quiz, results and the admin and
// supervisor screens.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/api"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/config"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/credentials"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/rbac"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/storage"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/theme"
)

type command struct {
	usage string
	perm  string // "" = any session; "-" = no session needed
	run   func(ctx context.Context, a *app, args []string) error
}

var commands = map[string]command{
	"register":    {"register -email E -password P [-role student|supervisor] [-name N]", "-", cmdRegister},
	"verify":      {"verify -email E -otp CODE", "-", cmdVerify},
	"resend-otp":  {"resend-otp -email E", "-", cmdResendOTP},
	"login":       {"login -email E [-password P]", "-", cmdLogin},
	"logout":      {"logout", "-", cmdLogout},
	"forgot":      {"forgot -email E", "-", cmdForgot},
	"reset":       {"reset -email E -otp CODE -password NEW", "-", cmdReset},
	"whoami":      {"whoami", "-", cmdWhoami},
	"me":          {"me", rbac.PermProfile, cmdMe},
	"profile":     {"profile [-name N] [-avatar URL] [-phone P]", rbac.PermProfile, cmdProfile},
	"quiz":        {"quiz [-bank FILE] [-interval 1s]", rbac.PermAssessmentTake, cmdQuiz},
	"status":      {"status", rbac.PermAssessmentHistory, cmdStatus},
	"history":     {"history", rbac.PermAssessmentHistory, cmdHistory},
	"certificate": {"certificate", rbac.PermCertificateView, cmdCertificate},
	"users":       {"users list|get|delete|approve ...", rbac.PermUsersList, cmdUsers},
	"questions":   {"questions list|get|create|delete|import|export ...", rbac.PermQuestionsRead, cmdQuestions},
	"analytics":   {"analytics [users|competency|assessments]", rbac.PermAnalyticsView, cmdAnalytics},
	"monitor":     {"monitor USER_ID", rbac.PermSupervisorMonitor, cmdMonitor},
	"invalidate":  {"invalidate USER_ID [-reason R]", rbac.PermSupervisorInvalidate, cmdInvalidate},
	"theme":       {"theme [light|dark|system|toggle]", "-", cmdTheme},
}

// app is what every command gets: the API client and the persisted state.
type app struct {
	cfg     config.Config
	client  *api.Client
	creds   *credentials.Store
	theme   *theme.Preference
	metrics *api.Metrics
	in      *bufio.Reader
	out     io.Writer
}

func main() {
	log.SetFlags(0)
	cfg := config.FromEnv()
	flag.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "API base URL")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", cfg.MetricsAddr, "serve prometheus metrics on this address")
	flag.StringVar(&cfg.StateDriver, "state", cfg.StateDriver, "state backend: cookie|sqlite|postgres|redis|memory")
	flag.Usage = usage
	flag.Parse()
	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}
	cmd, ok := commands[flag.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", flag.Arg(0))
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a, closeFn, err := newApp(ctx, cfg)
	if err != nil {
		log.Fatalf("assessctl: %v", err)
	}
	defer closeFn()

	if cmd.perm != "-" {
		if err := guard(a.creds.State(), cmd.perm); err != nil {
			closeFn()
			log.Fatalf("assessctl %s: %v", flag.Arg(0), err)
		}
	}
	if err := cmd.run(ctx, a, flag.Args()[1:]); err != nil {
		closeFn()
		log.Fatalf("assessctl %s: %v", flag.Arg(0), describe(err))
	}
}

func newApp(ctx context.Context, cfg config.Config) (*app, func(), error) {
	backend, closer, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open state: %w", err)
	}
	creds := credentials.NewStore(backend, nil)
	if err := creds.Init(ctx); err != nil {
		closer.Close()
		return nil, nil, err
	}
	pref, err := theme.Load(ctx, backend, nil)
	if err != nil {
		closer.Close()
		return nil, nil, err
	}
	pref.SetSystemTheme(theme.DetectSystem())

	metrics := api.NewMetrics()
	client, err := api.New(creds, api.Options{
		BaseURL:  cfg.APIBaseURL,
		Timeout:  cfg.HTTPTimeout,
		CacheTTL: cfg.CacheTTL,
		Metrics:  metrics,
		OnSessionEnded: func(cause error) {
			log.Printf("session ended, please log in again (%v)", cause)
		},
	})
	if err != nil {
		closer.Close()
		return nil, nil, err
	}

	var srv *http.Server
	if cfg.MetricsAddr != "" {
		srv = &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("metrics: %v", err)
			}
		}()
	}
	a := &app{cfg: cfg, client: client, creds: creds, theme: pref, metrics: metrics, in: bufio.NewReader(os.Stdin), out: os.Stdout}
	closeFn := func() {
		if srv != nil {
			_ = srv.Close()
		}
		if err := closer.Close(); err != nil {
			log.Printf("close state: %v", err)
		}
	}
	return a, closeFn, nil
}

// guard turns a route guard refusal into the message the user sees.
func guard(state credentials.AuthState, perm string) error {
	switch err := rbac.Guard(state, perm); {
	case errors.Is(err, rbac.ErrUnauthenticated):
		return errors.New("not logged in (run: assessctl login)")
	case errors.Is(err, rbac.ErrPendingApproval):
		return errors.New("your supervisor account is waiting for admin approval")
	case err != nil:
		return fmt.Errorf("%w: your role cannot open this screen", err)
	}
	return nil
}

func describe(err error) error {
	var ended *api.SessionEndedError
	if errors.As(err, &ended) {
		return errors.New("your session has expired, please log in again")
	}
	var he *api.HTTPError
	if errors.As(err, &he) {
		if msg := he.Message(); msg != "" {
			return fmt.Errorf("%s (HTTP %d)", msg, he.StatusCode)
		}
	}
	return err
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: assessctl [-api URL] [-state DRIVER] [-metrics-addr ADDR] COMMAND [args]")
	fmt.Fprintln(os.Stderr)
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[n].usage)
	}
}

// prompt reads one line from stdin after printing label.
func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func newFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
