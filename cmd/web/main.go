package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"ironlog/internal/envstruct"
	"ironlog/internal/errors"
	"ironlog/internal/exercise"
	"ironlog/internal/logging"
	"ironlog/internal/sqlite"
	"ironlog/internal/trainer"
	"ironlog/internal/user"
	"ironlog/internal/workoutlog"
)

type application struct {
	logger          *slog.Logger
	sessionManager  *scs.SessionManager
	userService     *user.Service
	exerciseService *exercise.Service
	logService      *workoutlog.Service
	trainerService  *trainer.Service
	importer        *exercise.Importer
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"IRONLOG_ADDR" envDefault:"localhost:8080"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"IRONLOG_SQLITE_URL" envDefault:"./ironlog.sqlite3"`
	// OpenAIAPIKey enables AI-backed program generation. When empty, all
	// programs are generated with the rule-based engine.
	OpenAIAPIKey string `env:"IRONLOG_OPENAI_API_KEY" envDefault:""`
	// WgerAPIURL is the base URL of the wger exercise database API.
	WgerAPIURL string `env:"IRONLOG_WGER_API_URL" envDefault:"https://wger.de/api/v2"`
}

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		cancel context.CancelFunc
		err    error
	)

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	db, err := sqlite.NewDatabase(ctx, cfg.SqliteURL, logger)
	if err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	logger.LogAttrs(ctx, slog.LevelInfo, "connected to db")

	sessionManager := initializeSessionManager(db)

	userService := user.NewService(db, logger)
	exerciseService := exercise.NewService(db, logger)
	logService := workoutlog.NewService(db, logger)

	app := application{
		logger:          logger,
		sessionManager:  sessionManager,
		userService:     userService,
		exerciseService: exerciseService,
		logService:      logService,
		trainerService:  trainer.NewService(db, logger, exerciseService, userService, logService, cfg.OpenAIAPIKey),
		importer:        exercise.NewImporter(exerciseService, cfg.WgerAPIURL, logger),
	}

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func initializeSessionManager(dbs *sqlite.Database) *scs.SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = sqlite3store.NewWithCleanupInterval(dbs.ReadWrite, 24*time.Hour) //nolint:mnd // day
	sessionManager.Lifetime = 12 * time.Hour                                                //nolint:mnd // half a day
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.Secure = true
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteStrictMode
	return sessionManager
}

func main() {
	ctx := context.Background()
	loggerHandler := logging.NewContextHandler(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		AddSource:   false,
		Level:       slog.LevelDebug,
		ReplaceAttr: nil,
	}))
	logger := slog.New(loggerHandler)
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}
