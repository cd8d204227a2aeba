package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/mlahtinen/gumshoe/internal/db"
	"github.com/mlahtinen/gumshoe/internal/envstruct"
	"github.com/mlahtinen/gumshoe/internal/errors"
	"github.com/mlahtinen/gumshoe/internal/game"
	"github.com/mlahtinen/gumshoe/internal/logging"
	"github.com/mlahtinen/gumshoe/internal/nlp"
	"github.com/mlahtinen/gumshoe/internal/pprofserver"
	"github.com/mlahtinen/gumshoe/internal/repositories"
	"github.com/mlahtinen/gumshoe/internal/scoring"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	validate       *validator.Validate
	service        *game.Service
	scenarios      *repositories.ScenarioRepository
	sessions       *repositories.SessionRepository
	results        *repositories.ResultRepository
}

type config struct {
	// Addr is the address to listen on. Port 0 picks a random free port.
	Addr string `env:"GUMSHOE_ADDR" envDefault:"localhost:4000"`
	// SQLiteURL is the SQLite database file path or ":memory:".
	SQLiteURL string `env:"GUMSHOE_SQLITE_URL" envDefault:"./gumshoe.sqlite"`
	// NLPURL is the base URL of the NLP sidecar.
	NLPURL string `env:"GUMSHOE_NLP_URL" envDefault:"http://localhost:8000"`
	// ReportThreshold is the default threshold for the similarity report.
	ReportThreshold string `env:"GUMSHOE_REPORT_THRESHOLD" envDefault:"0.72"`
	// OXThreshold is the finish-time O/X cutoff.
	OXThreshold string `env:"GUMSHOE_OX_THRESHOLD" envDefault:"0.75"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "parse environment")
	}
	reportThreshold, err := strconv.ParseFloat(cfg.ReportThreshold, 64)
	if err != nil {
		return errors.Wrap(err, "parse report threshold", slog.String("value", cfg.ReportThreshold))
	}
	oxThreshold, err := strconv.ParseFloat(cfg.OXThreshold, 64)
	if err != nil {
		return errors.Wrap(err, "parse O/X threshold", slog.String("value", cfg.OXThreshold))
	}

	database, err := db.New(cfg.SQLiteURL)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SQLiteURL))
	}
	defer func() {
		if closeErr := database.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close database", errors.SlogError(closeErr))
		}
	}()
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to database", slog.String("url", cfg.SQLiteURL))

	go database.StartOptimizer(ctx, logger)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(database.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = 12 * time.Hour

	scenarios := repositories.NewScenarioRepository(database, logger)
	sessions := repositories.NewSessionRepository(database, logger)
	results := repositories.NewResultRepository(database, logger)
	nlpClient := nlp.NewClient(cfg.NLPURL, logger)

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		validate:       validator.New(validator.WithRequiredStructEnabled()),
		service: game.NewService(
			scenarios, sessions, results,
			nlpClient,
			scoring.NewEngine(nlpClient, logger),
			game.Config{ReportThreshold: reportThreshold, OXThreshold: oxThreshold},
			logger,
		),
		scenarios: scenarios,
		sessions:  sessions,
		results:   results,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}

func main() {
	loggerHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	})
	logger := slog.New(logging.NewContextHandler(loggerHandler))

	// A missing .env file is fine, environment variables still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Error("load .env", errors.SlogError(err))
		os.Exit(1)
	}

	// pprof listens on localhost only so it is not open to the world.
	pprofPort := os.Getenv("GUMSHOE_PPROF_PORT")
	if pprofPort == "" {
		pprofPort = ":6060"
	}
	pprofserver.Launch(pprofPort, logger)

	if err := run(context.Background(), logger, os.LookupEnv); err != nil {
		logger.Error("server exited", errors.SlogError(err))
		os.Exit(1)
	}
}
