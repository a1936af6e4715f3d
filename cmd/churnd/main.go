package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"churnd/internal/config"
	"churnd/internal/httpapi"
	"churnd/internal/model"
)

type options struct {
	configPath        string
	addr              string
	churnModel        string
	nextPurchaseModel string
	maxBodyBytes      int64
	maxBatchSize      int
	logLevel          string
	corsEnabled       bool
	corsOrigins       []string
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "churnd",
		Short:         "Customer behavior prediction server",
		Long:          "churnd serves churn probability and next-purchase-day predictions\nfrom pre-trained model artifacts over a JSON HTTP API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	fl := root.Flags()
	fl.StringVar(&opts.configPath, "config", os.Getenv("CHURND_CONFIG"), "Optional config file (.yaml/.yml/.json/.toml)")
	fl.StringVar(&opts.addr, "addr", envDefault("CHURND_ADDR", ":8000"), "HTTP listen address, e.g. :8000")
	fl.StringVar(&opts.churnModel, "churn-model", envDefault("CHURND_CHURN_MODEL", "churn_model.xgb"), "Path to the churn classifier artifact")
	fl.StringVar(&opts.nextPurchaseModel, "next-purchase-model", envDefault("CHURND_NEXT_PURCHASE_MODEL", "next_purchase_stack.json"), "Path to the next-purchase stack manifest")
	fl.Int64Var(&opts.maxBodyBytes, "max-body-bytes", 0, "Maximum request body size in bytes (0 = default 1MiB)")
	fl.IntVar(&opts.maxBatchSize, "max-batch", 0, "Maximum customers per batch request (0 = default 1000)")
	fl.StringVar(&opts.logLevel, "log-level", envDefault("CHURND_LOG_LEVEL", "info"), "Log level: debug|info|warn|error")
	fl.BoolVar(&opts.corsEnabled, "cors", false, "Enable CORS middleware")
	fl.StringSliceVar(&opts.corsOrigins, "cors-origin", nil, "Allowed CORS origins (repeatable)")
	root.AddCommand(newDoctorCmd())
	return root
}

// resolveConfig merges the optional config file with command-line flags.
// Explicit flags win over file values; file values win over defaults.
func resolveConfig(cmd *cobra.Command, opts *options) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}
	fl := cmd.Flags()
	if fl.Changed("addr") || cfg.Addr == "" {
		cfg.Addr = opts.addr
	}
	if fl.Changed("churn-model") || cfg.ChurnModel == "" {
		cfg.ChurnModel = opts.churnModel
	}
	if fl.Changed("next-purchase-model") || cfg.NextPurchaseModel == "" {
		cfg.NextPurchaseModel = opts.nextPurchaseModel
	}
	if fl.Changed("max-body-bytes") || cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = opts.maxBodyBytes
	}
	if fl.Changed("max-batch") || cfg.MaxBatchSize == 0 {
		cfg.MaxBatchSize = opts.maxBatchSize
	}
	if fl.Changed("log-level") || cfg.LogLevel == "" {
		cfg.LogLevel = opts.logLevel
	}
	if fl.Changed("cors") {
		cfg.CORSEnabled = opts.corsEnabled
	}
	if fl.Changed("cors-origin") {
		cfg.CORSOrigins = opts.corsOrigins
	}
	return cfg, nil
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(lvl).With().Timestamp().Str("service", "churnd").Logger()
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, err := resolveConfig(cmd, opts)
	if err != nil {
		return err
	}
	logger := newLogger(cfg.LogLevel)

	httpapi.SetLogger(logger)
	httpapi.SetMaxBodyBytes(cfg.MaxBodyBytes)
	httpapi.SetMaxBatchSize(cfg.MaxBatchSize)
	httpapi.SetCORSOptions(cfg.CORSEnabled, cfg.CORSOrigins, cfg.CORSMethods, cfg.CORSHeaders)

	// Model-load failure is fatal; there is no degraded mode.
	predictor, err := model.Load(model.Config{
		ChurnModelPath:        cfg.ChurnModel,
		NextPurchaseModelPath: cfg.NextPurchaseModel,
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to load model artifacts")
		return err
	}
	logger.Info().
		Str("churn_model", cfg.ChurnModel).
		Str("next_purchase_model", cfg.NextPurchaseModel).
		Msg("model artifacts loaded")

	baseCtx, baseCancel := context.WithCancel(context.Background())
	defer baseCancel()
	httpapi.SetBaseContext(baseCtx)

	mux := httpapi.NewMux(predictor)
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("churnd listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown (Ctrl+C / SIGTERM)
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info().Str("signal", sig.String()).Msg("shutting down")
	}
	baseCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown error")
		return err
	}
	return nil
}

func main() {
	// Populate the environment from a local .env before flags read it.
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
