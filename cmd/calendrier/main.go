package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/d3ntaltech/calendrier/internal/auth"
	"github.com/d3ntaltech/calendrier/internal/calendar"
	"github.com/d3ntaltech/calendrier/internal/config"
	"github.com/d3ntaltech/calendrier/internal/db"
	"github.com/d3ntaltech/calendrier/internal/log"
	"github.com/d3ntaltech/calendrier/internal/notify"
	"github.com/d3ntaltech/calendrier/internal/recap"
	"github.com/d3ntaltech/calendrier/internal/web"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Error("calendrier failed", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "calendrier",
		Usage: "Shared team calendar for D3NTAL TECH.",
		Flags: serveFlags(),
		// Running without a subcommand serves.
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the web calendar.",
				Flags:  serveFlags(),
				Action: serve,
			},
			{
				Name:  "init-db",
				Usage: "Create the schema, seed the configured users and exit.",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "config", Usage: "config file path"},
					&cli.StringFlag{Name: "db", Usage: "sqlite db path"},
				},
				Action: initDB,
			},
		},
	}
}

func serveFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "config file path"},
		&cli.StringFlag{Name: "db", Usage: "sqlite db path"},
		&cli.StringFlag{Name: "listen", Usage: "HTTP listen address"},
		&cli.BoolFlag{Name: "secure-cookies", Usage: "mark the session cookie Secure (use behind TLS)"},
	}
}

func serve(c *cli.Context) error {
	cfg, _, err := loadConfig(c)
	if err != nil {
		return err
	}
	if listen := c.String("listen"); listen != "" {
		cfg.Listen = listen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	verifier, err := auth.NewCredentialVerifier(cfg.PasswordSalt)
	if err != nil {
		return err
	}
	sessions, err := auth.NewSessions(cfg.SessionSecret, cfg.SessionTTL)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(c.Context, cfg, verifier)
	if err != nil {
		return err
	}
	defer closeStore()

	if cfg.MutationScope == config.ScopeShared {
		store.SetScope(db.ScopeShared)
	}

	dispatcher := notify.NewDispatcher(notify.NewSMTPTransport(cfg.SMTP), cfg.Recipients, cfg.SMTP.Timeout)
	store.OnChange(dispatcher.Hook())
	if cfg.SMTP.Host == "" || len(cfg.Recipients) == 0 {
		log.Warn("smtp host or recipients missing, notifications will fail and be dropped")
	}

	loc := cfg.Location()
	tagger := calendar.NewTagger(cfg.CategoryRules, cfg.FallbackTag)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.RecapCron != "" {
		scheduler, err := recap.New(cfg.RecapCron, loc, store, dispatcher, tagger)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
		log.Info("daily recap scheduled", "cron", cfg.RecapCron, "timezone", loc.String())
	}

	server := web.NewServer(store, verifier, sessions, tagger, loc)
	server.SecureCookies = c.Bool("secure-cookies")

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		log.Info("web server running", "addr", "http://"+cfg.Listen)
		errs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("web server: %w", err)
		}
	case <-ctx.Done():
		log.Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("web server shutdown", err)
	}
	dispatcher.Wait()
	return nil
}

func initDB(c *cli.Context) error {
	cfg, cfgPath, err := loadConfig(c)
	if err != nil {
		return err
	}

	verifier, err := auth.NewCredentialVerifier(cfg.PasswordSalt)
	if err != nil {
		return err
	}

	store, closeStore, err := openStore(c.Context, cfg, verifier)
	if err != nil {
		return err
	}
	defer closeStore()

	users, err := store.ListUsers(c.Context)
	if err != nil {
		return err
	}
	log.Info("database ready", "path", cfg.DBPath, "users", len(users))

	if _, err := os.Stat(cfgPath); errors.Is(err, os.ErrNotExist) {
		if err := config.Save(cfgPath, starterConfig(cfg.DBPath)); err != nil {
			return err
		}
		log.Info("wrote default config", "path", cfgPath)
	}
	return nil
}

// starterConfig is the file written on first init. Secrets stay in the
// environment and are never copied into it.
func starterConfig(dbPath string) config.Config {
	cfg := config.Default()
	cfg.DBPath = dbPath
	return cfg
}

func loadConfig(c *cli.Context) (config.Config, string, error) {
	cfgPath, err := resolveConfigPath(c.String("config"))
	if err != nil {
		return config.Config{}, "", err
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return config.Config{}, "", err
	}
	log.SetLevel(cfg.LogLevel)

	if dbPath := c.String("db"); dbPath != "" {
		cfg.DBPath = dbPath
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "calendrier.db")
	}
	return cfg, cfgPath, nil
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

// openStore opens the database, applies migrations and refreshes the seed
// users, so rotating a configured password takes effect on restart.
func openStore(ctx context.Context, cfg config.Config, verifier *auth.CredentialVerifier) (*db.Store, func(), error) {
	if err := config.EnsureDir(cfg.DBPath); err != nil {
		return nil, nil, err
	}

	sqlDB, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := sqlDB.Close(); err != nil {
			log.Error("close database", err)
		}
	}

	store := db.NewStore(sqlDB)
	if err := store.SeedUsers(ctx, verifier, cfg.SeedUsers); err != nil {
		closeDB()
		return nil, nil, err
	}
	return store, closeDB, nil
}
