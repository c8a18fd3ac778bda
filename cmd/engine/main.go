package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"talentsol-engine/internal/cache"
	"talentsol-engine/internal/config"
	"talentsol-engine/internal/events"
	"talentsol-engine/internal/httpapi"
	"talentsol-engine/internal/intake"
	"talentsol-engine/internal/rank"
	"talentsol-engine/internal/ratelimit"
	"talentsol-engine/internal/scheduler"
	"talentsol-engine/internal/secrets"
	"talentsol-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("TALENTSOL_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite.
	lock := flock.New(filepath.Join(dataDir, "talentsol.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("level=error msg=\"instance lock\" err=%v", err)
	}
	if !locked {
		log.Fatalf("level=error msg=\"another engine is already running\" dir=%s", dataDir)
	}
	defer func() { _ = lock.Unlock() }()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("level=error msg=\"config bootstrap\" err=%v", err)
	}

	// Load config and keep it reloadable
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("level=error msg=\"config load\" path=%s err=%v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "talentsol.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("level=error msg=\"db open\" path=%s err=%v", dbPath, err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatalf("level=error msg=\"db migrate\" err=%v", err)
	}

	hub := events.NewHub()

	mgr := cache.NewManager(cache.New(cfg.CacheDefaultTTL(), cfg.CacheCleanupInterval()), cfg.CacheDefaultTTL())
	for _, s := range cfg.Cache.Strategies {
		mgr.SetStrategy(s.Prefix, time.Duration(s.TTLSeconds)*time.Second)
	}
	registerWarmers(mgr, db.Pool)

	limiter := ratelimit.NewClientLimiter(cfg.Server.RateLimitPerSec, cfg.Server.RateLimitBurst)

	scorer := rank.RuleScorer{Cfg: cfg}

	var intakeStatus atomic.Value
	intakeStatus.Store(httpapi.IntakeStatus{})

	runIntake := func(ctx context.Context, pool *sql.DB, c config.Config, onImported func(appID int64)) (int, error) {
		password, err := secrets.GetIMAPPassword(secrets.IMAPKeyringAccount(c))
		if err != nil {
			return 0, fmt.Errorf("imap password: %w", err)
		}
		sc := rank.RuleScorer{Cfg: c}
		return intake.RunOnce(ctx, pool, c, password, sc, onImported)
	}

	mux := httpapi.NewMux(httpapi.Deps{
		DB:           db.Pool,
		Hub:          hub,
		Cache:        mgr,
		Scorer:       scorer,
		CfgVal:       &cfgVal,
		IntakeStatus: &intakeStatus,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		RunIntake:    runIntake,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Background cache warming keeps the dashboard cheap even after TTLs lapse.
	if cfg.Cache.WarmOnStart || cfg.Cache.WarmIntervalSeconds > 0 {
		interval := time.Duration(cfg.Cache.WarmIntervalSeconds) * time.Second
		if interval <= 0 {
			interval = 10 * time.Minute
		}
		go scheduler.Every(ctx, interval, "cache_warm", func(ctx context.Context) error {
			_, err := mgr.Warm(ctx)
			return err
		})
	}

	// Periodic email intake; each tick re-reads the live config so a settings
	// change applies without a restart.
	if cfg.Intake.Enabled && cfg.Intake.PollSeconds > 0 {
		interval := time.Duration(cfg.Intake.PollSeconds) * time.Second
		go scheduler.Every(ctx, interval, "email_intake", func(ctx context.Context) error {
			c := cfgVal.Load().(config.Config)
			if !c.Intake.Enabled {
				return nil
			}
			added, err := runIntake(ctx, db.Pool, c, func(appID int64) {
				mgr.OnWrite("application")
				hub.Publish(events.MakeEvent("", events.TypeIntakeImported, 1, map[string]any{"applicationId": appID}))
			})
			if added > 0 {
				log.Printf("level=info msg=\"email intake\" added=%d", added)
			}
			return err
		})
	}

	handler := httpapi.Chain(mux,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Recover,
		httpapi.Cors,
		httpapi.RateLimit(limiter),
	)

	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(cfg.App.Port))
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("level=info msg=\"engine listening\" addr=http://%s db=%s", addr, dbPath)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Fatal(srv.Serve(ln))
}

// registerWarmers pins the analytics entries the dashboard hits on first
// paint. Keys must match what the handlers ask for.
func registerWarmers(mgr *cache.Manager, pool *sql.DB) {
	mgr.RegisterWarmer(cache.Warmer{Prefix: "dashboard", Load: func(ctx context.Context) (any, error) {
		return store.Dashboard(ctx, pool)
	}})
	mgr.RegisterWarmer(cache.Warmer{Prefix: "dashboard", Parts: []string{"pipeline"}, Load: func(ctx context.Context) (any, error) {
		return store.Pipeline(ctx, pool)
	}})
	mgr.RegisterWarmer(cache.Warmer{Prefix: "dashboard", Parts: []string{"sources"}, Load: func(ctx context.Context) (any, error) {
		return store.Sources(ctx, pool)
	}})
	mgr.RegisterWarmer(cache.Warmer{Prefix: "trend", Parts: []string{"apps-over-time", "30"}, Load: func(ctx context.Context) (any, error) {
		return store.ApplicationsOverTime(ctx, pool, 30)
	}})
	mgr.RegisterWarmer(cache.Warmer{Prefix: "trend", Parts: []string{"time-to-hire"}, Load: func(ctx context.Context) (any, error) {
		return store.TimeToHireStats(ctx, pool)
	}})
	mgr.RegisterWarmer(cache.Warmer{Prefix: "list", Parts: []string{"interviews-week"}, Load: func(ctx context.Context) (any, error) {
		return store.InterviewsThisWeek(ctx, pool)
	}})
}
