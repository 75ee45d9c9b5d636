package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yukyu/ledger/internal/api"
	"github.com/yukyu/ledger/internal/audit"
	"github.com/yukyu/ledger/internal/auth"
	"github.com/yukyu/ledger/internal/database"
	"github.com/yukyu/ledger/internal/fiscalpolicy"
	"github.com/yukyu/ledger/internal/ingestion"
	"github.com/yukyu/ledger/internal/ledger"
	"github.com/yukyu/ledger/internal/notify"
	"github.com/yukyu/ledger/internal/registry"
	"github.com/yukyu/ledger/internal/scheduler"
	"github.com/yukyu/ledger/internal/workflow"
)

// Config is every environment-sourced setting main needs. Mirrors the
// teacher's cmd/api/main.go Config, collapsed to this system's
// single-tenant shape (no per-tenant schema/DSN resolution).
type Config struct {
	Port           string
	DatabaseURL    string
	JWTSecret      string
	AccessExpiry   time.Duration
	DevMode        bool
	AllowedOrigins []string
	CSRFHeaderName string
}

func loadConfig() Config {
	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		JWTSecret:      os.Getenv("JWT_SECRET"),
		AccessExpiry:   8 * time.Hour,
		DevMode:        os.Getenv("DEV_MODE") == "true",
		CSRFHeaderName: getEnv("CSRF_HEADER_NAME", "X-CSRF-Token"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			o = strings.TrimSpace(o)
			if o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{"http://localhost:3000"}
		log.Warn().Msg("ALLOWED_ORIGINS not set, defaulting to http://localhost:3000")
	}

	if v := os.Getenv("ACCESS_TOKEN_EXPIRY_MINUTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AccessExpiry = time.Duration(n) * time.Minute
		}
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg := loadConfig()
	if cfg.DevMode {
		log.Warn().Msg("running in development mode")
	}

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		log.Fatal().Msg("DATABASE_URL is required")
	}

	gormDB, err := database.NewGormDB(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer gormDB.Close()

	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create connection pool")
	}
	defer pool.Close()

	policy, err := fiscalpolicy.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid fiscal policy configuration")
	}

	jwtSecret := cfg.JWTSecret
	if jwtSecret == "" {
		if !cfg.DevMode {
			log.Fatal().Msg("JWT_SECRET is required outside development mode")
		}
		jwtSecret = auth.GenerateDevSigningKey()
	}
	tokens, err := auth.NewTokenService(jwtSecret, cfg.AccessExpiry, cfg.DevMode)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct token service")
	}

	userRepo := auth.NewGORMUserRepository(gormDB.DB)
	authSvc := auth.NewService(userRepo, tokens)
	buckets := auth.NewBuckets()

	directory := registry.NewDirectory(gormDB.DB)
	search := registry.NewSearch(pool)
	auditSvc := audit.NewService(gormDB.DB)

	ledgerRepo := ledger.NewGORMRepository(gormDB.DB)
	ledgerEngine := ledger.NewEngine(gormDB, ledgerRepo, policy, auditSvc)

	notifyCfg := notify.LoadConfig()
	notifier := notify.New(notifyCfg)
	if !notifyCfg.IsConfigured() {
		log.Warn().Msg("SMTP not configured, notifications are a no-op")
	}

	workflowRepo := workflow.NewGORMRepository(gormDB.DB)
	workflowSvc := workflow.NewService(workflowRepo, ledgerEngine, directory, ledgerRepo, auditSvc, notifier)

	ingestor := ingestion.NewIngestor(directory, ledgerEngine, policy)

	sched := scheduler.NewScheduler(ledgerEngine, notifier, policy, scheduler.DefaultConfig())
	if err := sched.Start(); err != nil {
		log.Fatal().Err(err).Msg("failed to start scheduler")
	}

	handlers := &api.Handlers{
		Tokens:    tokens,
		AuthSvc:   authSvc,
		Buckets:   buckets,
		Ledger:    ledgerEngine,
		Workflow:  workflowSvc,
		Directory: directory,
		Search:    search,
		Audit:     auditSvc,
		Ingestor:  ingestor,
		Policy:    policy,
	}
	router := api.NewRouter(handlers, api.RouterConfig{
		AllowedOrigins: cfg.AllowedOrigins,
		CSRFHeaderName: cfg.CSRFHeaderName,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	sched.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
