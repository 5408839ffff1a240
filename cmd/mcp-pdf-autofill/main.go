package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mimitechai/mcp-pdf-autofill/internal/config"
	"github.com/mimitechai/mcp-pdf-autofill/internal/fallback"
	"github.com/mimitechai/mcp-pdf-autofill/internal/intelligence"
	"github.com/mimitechai/mcp-pdf-autofill/internal/logging"
	"github.com/mimitechai/mcp-pdf-autofill/internal/mcp"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf"
	"github.com/mimitechai/mcp-pdf-autofill/internal/pdf/fill"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

func main() {
	// A missing .env file is fine; variables may come from the real environment
	_ = godotenv.Load()

	cfg, err := config.LoadFromFlags()
	if errors.Is(err, config.ErrVersionRequested) {
		printVersion(os.Stdout)
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if version != "dev" {
		cfg.Version = version
	}

	logger, err := logging.New(logging.Options{
		Level: cfg.LogLevel,
		Stdio: cfg.IsStdioMode(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", zap.Error(err))
		stop()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// run wires the service and the MCP server and blocks until ctx is done or
// the transport fails
func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Debug("starting", zap.String("config", cfg.String()))

	pdfService, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	server, err := mcp.NewServer(cfg, pdfService, logger)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	return server.Run(ctx)
}

// newService builds the autofill service from cfg
func newService(cfg *config.Config, logger *zap.Logger) (*pdf.Service, error) {
	var matcher fallback.Matcher
	if cfg.FallbackEnabled() {
		matcher = fallback.NewHTTPMatcher(cfg.FallbackURL)
		logger.Info("semantic matching enabled", zap.String("endpoint", cfg.FallbackURL))
	}

	classifier := intelligence.NewClassifier()
	if cfg.RulesFile != "" {
		if err := classifier.LoadCustomRules(cfg.RulesFile); err != nil {
			return nil, err
		}
		logger.Info("custom classifier rules loaded",
			zap.String("file", cfg.RulesFile), zap.Int("rules", len(classifier.Rules())))
	}

	service, err := pdf.NewService(pdf.Options{
		MaxFileSize: cfg.MaxFileSize,
		Directory:   cfg.PDFDirectory,
		Concurrency: cfg.Concurrency,
		Defaults: fill.Options{
			Flatten:       cfg.Flatten,
			WatermarkText: cfg.WatermarkText,
		},
		Classifier: classifier,
		Escalator:  fallback.NewEscalator(matcher, cfg.FallbackTimeout, logger),
		Logger:     logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF service: %w", err)
	}
	return service, nil
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP PDF Autofill\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
