package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alexanderramin/focuslog/internal/cli"
	"github.com/alexanderramin/focuslog/internal/config"
	"github.com/alexanderramin/focuslog/internal/db"
	"github.com/alexanderramin/focuslog/internal/journal"
	"github.com/alexanderramin/focuslog/internal/notify"
	"github.com/alexanderramin/focuslog/internal/repository"
	"github.com/alexanderramin/focuslog/internal/service"
	"github.com/alexanderramin/focuslog/internal/timer"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("finding home directory: %w", err)
	}
	dataDir := filepath.Join(home, ".focuslog")

	// Determine DB path: env var or default ~/.focuslog/focuslog.db
	dbPath := os.Getenv("FOCUSLOG_DB")
	if dbPath == "" {
		dbPath = filepath.Join(dataDir, "focuslog.db")
	}

	logger, closeLog, err := openLogger(dataDir)
	if err != nil {
		return err
	}
	defer closeLog()

	settingsPath, err := config.DefaultPath()
	if err != nil {
		return fmt.Errorf("locating settings: %w", err)
	}
	settings := config.NewFileStore(settingsPath)
	cfg, err := settings.Load()
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	database, err := db.OpenDB(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)
	observer := service.NewLogUseCaseObserver(logger)

	notifiers := notify.Multi{notify.NewLogNotifier(logger.With("component", "notify"))}
	if cfg.DesktopNotifications {
		desktop := notify.NewDesktopNotifier(logger.With("component", "notify"))
		defer desktop.Close()
		notifiers = append(notifiers, desktop)
	}

	app := &cli.App{
		Settings: settings,
		Sessions: repository.NewSQLiteSessionRepo(database),
		History:  service.NewTaskHistoryService(repository.NewSQLiteTaskHistoryRepo(database), uow, observer),
		Journal:  journal.NewSynchronizer(logger.With("component", "journal")),
		Probe:    journal.FileProbe{},
		Notifier: notifiers,
		Clock:    timer.RealClock{},
		Logger:   logger,
	}

	// Detect interactive terminal for the timer view and task prompt.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

// openLogger writes the application log to ~/.focuslog/focuslog.log, to
// FOCUSLOG_LOG, or to stderr when FOCUSLOG_LOG is "-". FOCUSLOG_LOG_LEVEL
// takes slog level names.
func openLogger(dataDir string) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if v := strings.TrimSpace(os.Getenv("FOCUSLOG_LOG_LEVEL")); v != "" {
		if err := level.UnmarshalText([]byte(v)); err != nil {
			return nil, nil, fmt.Errorf("FOCUSLOG_LOG_LEVEL: %w", err)
		}
	}
	opts := &slog.HandlerOptions{Level: level}

	path := os.Getenv("FOCUSLOG_LOG")
	if path == "-" {
		return slog.New(slog.NewTextHandler(os.Stderr, opts)), func() {}, nil
	}
	if path == "" {
		path = filepath.Join(dataDir, "focuslog.log")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return slog.New(slog.NewTextHandler(f, opts)), func() { f.Close() }, nil
}
