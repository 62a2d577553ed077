package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"todoapi/internal/config"
	"todoapi/internal/handlers"
	"todoapi/internal/logging"
	"todoapi/internal/server"
	"todoapi/internal/store"
)

// ServeOptions holds flags for the serve command. They override the config
// file and environment when set.
type ServeOptions struct {
	Addr            string
	Env             string
	Store           string
	DBPath          string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadServeConfig(cmd, rootOpts, opts)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServe(ctx, cmd, cfg)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.Addr, "addr", "", "listen address (e.g. :8080)")
	flags.StringVar(&opts.Env, "env", "", "environment (development|production)")
	flags.StringVar(&opts.Store, "store", "", "store backend (memory|sqlite)")
	flags.StringVar(&opts.DBPath, "db-path", "", "SQLite database path")
	flags.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	flags.StringVar(&opts.LogFormat, "log-format", "", "log format (text|json|logfmt)")
	flags.DurationVar(&opts.ShutdownTimeout, "shutdown-timeout", 0, "grace period for in-flight requests on shutdown")

	return cmd
}

// loadServeConfig loads the config and applies the flags that were set.
func loadServeConfig(cmd *cobra.Command, rootOpts *RootOptions, opts *ServeOptions) (*config.Config, error) {
	cfg, err := config.Load(rootOpts.ConfigFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Addr = opts.Addr
	}
	if flags.Changed("env") {
		cfg.Env = opts.Env
	}
	if flags.Changed("store") {
		cfg.Store = opts.Store
	}
	if flags.Changed("db-path") {
		cfg.DBPath = opts.DBPath
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = opts.LogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = opts.LogFormat
	}
	if flags.Changed("shutdown-timeout") {
		cfg.ShutdownTimeout = opts.ShutdownTimeout
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	s, err := store.Open(ctx, cfg.Store, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer s.Close()

	h := handlers.New(s, logger)
	router := server.NewRouter(h, logger, server.Options{Docs: cfg.Development()})

	logger.Info("configured", "env", cfg.Env, "store", cfg.Store)
	return server.New(cfg.Addr, router, logger, cfg.ShutdownTimeout).Run(ctx)
}
