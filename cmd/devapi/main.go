package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/config"
	"github.com/Rokon-Khan/digital-competency-assessment-frontend/internal/devapi"
)

func main() {
	cfg := config.FromEnv()
	addr := flag.String("addr", cfg.HTTPAddr, "listen address")
	seed := flag.Int64("seed", 1, "fake data seed")
	students := flag.Int("students", 10, "extra fake students to create")
	flag.Parse()

	srv := devapi.NewServer(devapi.Options{
		Secret:      cfg.HMACSecret,
		CORSOrigins: cfg.CORSOrigins,
	})
	if cfg.DevSeed {
		if err := devapi.Seed(srv.Store, *seed, *students); err != nil {
			log.Fatalf("seed failed: %v", err)
		}
		for _, a := range devapi.DefaultAccounts {
			log.Printf("account %s / %s (%s)", a.Email, a.Password, a.Role)
		}
	}

	// --- housekeeping ---
	sched := gocron.NewScheduler(time.UTC)
	if _, err := sched.Every(10 * time.Minute).Do(func() {
		if n := srv.Store.PurgeExpired(); n > 0 {
			log.Printf("purged %d expired refresh tokens", n)
		}
	}); err != nil {
		log.Fatalf("scheduler: %v", err)
	}
	sched.StartAsync()
	defer sched.Stop()

	log.Printf("devapi listening on %s (mode=%s, seed=%v)", *addr, cfg.Mode, cfg.DevSeed)
	log.Fatal(http.ListenAndServe(*addr, srv))
}
