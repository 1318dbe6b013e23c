package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/claimsight/hcfa-ocr/internal/config"
	"github.com/claimsight/hcfa-ocr/internal/document"
	"github.com/claimsight/hcfa-ocr/internal/extract"
	"github.com/claimsight/hcfa-ocr/internal/hcfa"
	"github.com/claimsight/hcfa-ocr/internal/logging"
	"github.com/claimsight/hcfa-ocr/internal/mcp"
	"github.com/claimsight/hcfa-ocr/internal/ocr"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// serviceOptions maps the flat configuration onto pipeline options.
func serviceOptions(cfg *config.Config) hcfa.Options {
	return hcfa.Options{
		MaxFileSize: cfg.MaxFileSize,
		Strategy:    document.Strategy(cfg.Strategy),
		Fractions: document.Fractions{
			DOBX1:  cfg.DOBX1,
			DOBX2:  cfg.DOBX2,
			DOBY1:  cfg.DOBY1,
			DOBY2:  cfg.DOBY2,
			BodyY1: cfg.BodyY1,
			BodyY2: cfg.BodyY2,
		},
		ModifierPolicy:   extract.ModifierPolicy(cfg.ModifierPolicy),
		PointerPolicy:    extract.PointerPolicy(cfg.PointerPolicy),
		PreferNativeText: cfg.PreferNativeText,
		RecognizeTimeout: cfg.OCRTimeout,
	}
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, logger zerolog.Logger) {
	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	// Start server in a goroutine
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	// Wait for shutdown signal or server error
	select {
	case sig := <-signalCh:
		logger.Info().Str("signal", sig.String()).Msg("initiating graceful shutdown")
		cancel()

		// Wait for server to shutdown
		if err := <-serverErrCh; err != nil {
			logger.Error().Err(err).Msg("server shutdown with error")
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}

	logger.Info().Msg("server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, server *mcp.Server, logger zerolog.Logger) {
	// In stdio mode, the parent process controls our lifecycle
	// We should exit cleanly when stdin is closed or we get an error
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Logs go to stderr so stdio transport stays clean
	logger := logging.Setup(cfg.LogFormat, cfg.LogLevel)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() {
		logger.Debug().Str("config", cfg.String()).Msg("starting")
	}

	// Create the OCR recognizer
	recognizer, err := ocr.NewRecognizer(ocr.Config{
		Engine:    ocr.Engine(cfg.OCREngine),
		Languages: cfg.OCRLanguages,
		DPI:       cfg.OCRDPI,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create recognizer")
	}

	// Create the claim pipeline service
	hcfaService, err := hcfa.NewService(serviceOptions(cfg), recognizer, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create claim service")
	}

	// Create MCP server
	server, err := mcp.NewServer(cfg, hcfaService, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create MCP server")
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle different modes
	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server, logger)
	} else {
		runStdioMode(ctx, server, logger)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("HCFA OCR Server\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
