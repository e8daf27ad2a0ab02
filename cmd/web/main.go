package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/cleansweep/litterwatch/internal/detect"
	"github.com/cleansweep/litterwatch/internal/envstruct"
	"github.com/cleansweep/litterwatch/internal/errors"
	"github.com/cleansweep/litterwatch/internal/imagestore"
	"github.com/cleansweep/litterwatch/internal/lifecycle"
	"github.com/cleansweep/litterwatch/internal/logging"
	"github.com/cleansweep/litterwatch/internal/pprofserver"
	"github.com/cleansweep/litterwatch/internal/repositories"
	"github.com/cleansweep/litterwatch/internal/sqlite"
	"github.com/joho/godotenv"
)

type application struct {
	logger         *slog.Logger
	sessionManager *scs.SessionManager
	engine         *lifecycle.Engine
	users          *repositories.UserRepository
	reports        *repositories.ReportRepository
	images         *imagestore.Store
}

type config struct {
	Addr                 string `env:"LITTERWATCH_ADDR" envDefault:"localhost:4000"`
	PprofPort            string `env:"LITTERWATCH_PPROF_PORT" envDefault:":6060"`
	SqliteURL            string `env:"LITTERWATCH_SQLITE_URL" envDefault:"./litterwatch.sqlite"`
	UploadDir            string `env:"LITTERWATCH_UPLOAD_DIR" envDefault:"./uploads"`
	InferenceURL         string `env:"LITTERWATCH_INFERENCE_URL" envDefault:"http://localhost:5000"`
	SessionLifetimeHours int    `env:"LITTERWATCH_SESSION_LIFETIME_HOURS" envDefault:"12"`
}

func main() {
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   true,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	ctx := context.Background()

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.LogAttrs(ctx, slog.LevelError, "failed to load .env", errors.SlogError(err))
		os.Exit(1)
	}

	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server error", errors.SlogError(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var cfg config
	if err := envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	// pprof listens on localhost so that it's not open to the world.
	pprofserver.Launch(cfg.PprofPort, logger)

	dbs, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open database", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if err = dbs.Close(); err != nil {
			logger.LogAttrs(ctx, slog.LevelError, "failed to close database", errors.SlogError(err))
		}
	}()
	go dbs.StartDatabaseOptimizer(ctx)
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to database")

	images, err := imagestore.New(cfg.UploadDir, logger)
	if err != nil {
		return errors.Wrap(err, "initialize image store")
	}

	// The detector is loaded once and injected; a dead inference service
	// should not block startup since submissions degrade to rejections.
	detector := detect.NewClient(cfg.InferenceURL, logger)
	if err = detector.CheckHealth(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "inference service not available", errors.SlogError(err))
	}

	users := repositories.NewUserRepository(dbs, logger)
	reports := repositories.NewReportRepository(dbs, logger)

	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite.DB, 24*time.Hour)
	sessionManager.Lifetime = time.Duration(cfg.SessionLifetimeHours) * time.Hour
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	app := application{
		logger:         logger,
		sessionManager: sessionManager,
		engine:         lifecycle.NewEngine(detector, images, reports, logger),
		users:          users,
		reports:        reports,
		images:         images,
	}

	return app.configureAndStartServer(ctx, cfg.Addr)
}
