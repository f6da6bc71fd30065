package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/bryanwahyu/audit-compliance/internal/application"
	appcompliance "github.com/bryanwahyu/audit-compliance/internal/application/compliance"
	"github.com/bryanwahyu/audit-compliance/internal/config"
	"github.com/bryanwahyu/audit-compliance/internal/domain/ai"
	"github.com/bryanwahyu/audit-compliance/internal/domain/controls"
	"github.com/bryanwahyu/audit-compliance/internal/domain/interactions"
	aiopenai "github.com/bryanwahyu/audit-compliance/internal/infra/ai/openai"
	mysqlp "github.com/bryanwahyu/audit-compliance/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/audit-compliance/internal/infra/db/postgres"
	"github.com/bryanwahyu/audit-compliance/internal/infra/httpserver"
	minioStore "github.com/bryanwahyu/audit-compliance/internal/infra/storage"
	"github.com/bryanwahyu/audit-compliance/internal/infra/store/memory"
	"github.com/bryanwahyu/audit-compliance/internal/middleware"
	"github.com/bryanwahyu/audit-compliance/internal/version"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "audit-compliance",
	Short: "ISO/IEC 27001 audit compliance assistant",
	Long:  "Web service for browsing ISO/IEC 27001:2022 Annex A controls, AI assessments, chat and gap analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var controlsCmd = &cobra.Command{
	Use:   "controls",
	Short: "Print the control catalogue",
	Run: func(cmd *cobra.Command, args []string) {
		for _, c := range controls.Default().List() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-6s %-14s %s\n", c.ID, c.Category, c.Name)
		}
	},
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the interactions stored in the SQL journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return history(cmd.Context(), cmd.OutOrStdout())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "audit-compliance %s\n", version.GetVersion())
	},
}

func init() {
	rootCmd.AddCommand(controlsCmd, historyCmd, versionCmd)
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to config.yaml (default $CONFIG_PATH or ./config.yaml)")
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return "config.yaml"
}

func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil || cfg.Log.Level == "" {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.Log.Pretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stdout)
	}
	return logger.Level(level).With().Timestamp().Str("service", "audit-compliance").Logger()
}

// maskKey keeps the first 8 characters for the startup log.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "********"
	}
	return key[:8] + "..."
}

// openJournal connects the SQL journal named by storage.driver.
// It returns a nil db and journal for the memory driver.
func openJournal(ctx context.Context, cfg *config.Config) (*sql.DB, interactions.Log, error) {
	switch cfg.Storage.Driver {
	case config.DriverMySQL:
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("mysql connect error: %w", err)
		}
		repo := mysqlp.NewInteractionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("mysql schema: %w", err)
		}
		return db, repo, nil
	case config.DriverPostgres:
		db, err := pgp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect error: %w", err)
		}
		repo := pgp.NewInteractionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return db, repo, nil
	}
	return nil, nil, nil
}

// journalOrNil keeps a nil Log from becoming a non-nil Appender.
func journalOrNil(l interactions.Log) interactions.Appender {
	if l == nil {
		return nil
	}
	return l
}

// writeHistory prints the journal contents as indented JSON.
func writeHistory(ctx context.Context, w io.Writer, log interactions.Log) error {
	snap, err := log.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read journal: %w", err)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func history(ctx context.Context, w io.Writer) error {
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	db, journal, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	if journal == nil {
		return fmt.Errorf("history needs storage.driver %s or %s, got %q", config.DriverMySQL, config.DriverPostgres, cfg.Storage.Driver)
	}
	defer db.Close()
	return writeHistory(ctx, w, journal)
}

func serve(ctx context.Context) error {
	// load config
	cfg, err := config.Load(configPath())
	if err != nil {
		return fmt.Errorf("config load error: %w", err)
	}
	logger := newLogger(cfg)

	// completion backend
	backend := ai.Select(cfg.AI.APIKey, func(key string) ai.Completer {
		return aiopenai.NewClient(key, cfg.AI.BaseURL, nil)
	})
	switch b := backend.(type) {
	case ai.Disabled:
		logger.Warn().Msg(b.Message())
	case ai.Configured:
		logger.Info().Str("api_key", maskKey(cfg.AI.APIKey)).Msg("groq api key loaded")
	}

	checkers := map[string]middleware.HealthChecker{
		"completion": middleware.BackendHealthChecker{Backend: backend},
	}

	// interaction journal
	db, journal, err := openJournal(ctx, cfg)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
		checkers["database"] = &middleware.DatabaseHealthChecker{DB: db}
		logger.Info().Str("driver", cfg.Storage.Driver).Msg("interaction journal enabled")
	}

	// init minio
	var artifacts interactions.ArtifactStore
	if cfg.Minio.Enabled {
		store, err := minioStore.New(ctx,
			cfg.Minio.Endpoint,
			cfg.Minio.Region,
			cfg.Minio.BucketName,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			return fmt.Errorf("minio init error: %w", err)
		}
		artifacts = store
		checkers["archive"] = middleware.CheckerFunc(store.Ping)
	}

	metrics := middleware.NewMetrics()

	// init service
	svc := &appcompliance.Service{
		Catalogue: controls.Default(),
		Backend:   backend,
		Log:       memory.NewStore(),
		Journal:   journalOrNil(journal),
		Artifacts: artifacts,
		Observer:  metrics,
		Clock:     application.SystemClock{},
		Timeout:   cfg.AI.Timeout,
		Logger:    logger.With().Str("component", "compliance").Logger(),
	}

	handler := httpserver.NewRouter(svc, httpserver.Options{
		Logger:         logger,
		Metrics:        metrics,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		HealthCheckers: checkers,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// run server
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Str("version", version.GetVersion()).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-stop:
	}
	logger.Info().Msg("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
	return nil
}
