package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Region strategies
	StrategyCropped   = "cropped"
	StrategyWholePage = "whole-page"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"
	DefaultMaxFileSize = 25 * 1024 * 1024 // 25MB
	DefaultOCREngine   = "tesseract"
	DefaultOCRLang     = "eng"
	DefaultOCRDPI      = 200
	DefaultOCRTimeout  = 60 * time.Second
)

// Config holds all configuration for the HCFA OCR server.
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	LogFormat   string
	MaxFileSize int64 // Maximum upload size in bytes

	// Recognition configuration
	OCREngine    string
	OCRLanguages []string
	OCRDPI       int
	OCRTimeout   time.Duration

	// Pipeline configuration. Strategy "cropped" keeps the PHI-heavy top of
	// the form away from the recognizer; "whole-page" trades that privacy
	// guarantee for layout robustness.
	Strategy         string
	ModifierPolicy   string
	PointerPolicy    string
	PreferNativeText bool

	// Region crop fractions of page width/height, tunable per scanner.
	DOBX1  float64
	DOBX2  float64
	DOBY1  float64
	DOBY2  float64
	BodyY1 float64
	BodyY2 float64
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Mode:             ModeStdio, // Default to stdio mode for MCP compatibility
		Host:             DefaultHost,
		Port:             DefaultPort,
		Version:          "1.0.0",
		ServerName:       "hcfa-ocr",
		LogLevel:         DefaultLogLevel,
		LogFormat:        DefaultLogFormat,
		MaxFileSize:      DefaultMaxFileSize,
		OCREngine:        DefaultOCREngine,
		OCRLanguages:     []string{DefaultOCRLang},
		OCRDPI:           DefaultOCRDPI,
		OCRTimeout:       DefaultOCRTimeout,
		Strategy:         StrategyCropped,
		ModifierPolicy:   "numeric",
		PointerPolicy:    "none",
		PreferNativeText: true,
		DOBX1:            0.28,
		DOBX2:            0.55,
		DOBY1:            0.18,
		DOBY2:            0.26,
		BodyY1:           0.40,
		BodyY2:           0.92,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	if showVersion, _ := pflag.CommandLine.GetBool("version"); showVersion {
		fmt.Printf("%s version %s\n", cfg.ServerName, cfg.Version)
		return nil, errors.New("version requested")
	}

	populateConfigFromViper(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("HCFA_OCR")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("logformat", cfg.LogFormat)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("ocrengine", cfg.OCREngine)
	viper.SetDefault("ocrlanguages", strings.Join(cfg.OCRLanguages, ","))
	viper.SetDefault("ocrdpi", cfg.OCRDPI)
	viper.SetDefault("ocrtimeout", cfg.OCRTimeout)
	viper.SetDefault("strategy", cfg.Strategy)
	viper.SetDefault("modifierpolicy", cfg.ModifierPolicy)
	viper.SetDefault("pointerpolicy", cfg.PointerPolicy)
	viper.SetDefault("prefernativetext", cfg.PreferNativeText)
	viper.SetDefault("dobx1", cfg.DOBX1)
	viper.SetDefault("dobx2", cfg.DOBX2)
	viper.SetDefault("doby1", cfg.DOBY1)
	viper.SetDefault("doby2", cfg.DOBY2)
	viper.SetDefault("bodyy1", cfg.BodyY1)
	viper.SetDefault("bodyy2", cfg.BodyY2)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for network server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.String("logformat", cfg.LogFormat, "Log format (json, text)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum upload size in bytes")
	pflag.String("ocrengine", cfg.OCREngine, "OCR engine (tesseract)")
	pflag.String("ocrlanguages", strings.Join(cfg.OCRLanguages, ","), "Comma-separated OCR languages")
	pflag.Int("ocrdpi", cfg.OCRDPI, "DPI reported to the OCR engine for density-less images")
	pflag.Duration("ocrtimeout", cfg.OCRTimeout, "Per-document recognition timeout")
	pflag.String("strategy", cfg.Strategy, "Region strategy: 'cropped' or 'whole-page'")
	pflag.String("modifierpolicy", cfg.ModifierPolicy, "Modifier detection: 'numeric' or 'enumerated'")
	pflag.String("pointerpolicy", cfg.PointerPolicy, "Diagnosis pointer assignment: 'none' or 'default-a'")
	pflag.Bool("prefernativetext", cfg.PreferNativeText, "Extract from a PDF text layer when present, skipping OCR")
	pflag.Float64("dobx1", cfg.DOBX1, "DOB region left edge as a fraction of page width")
	pflag.Float64("dobx2", cfg.DOBX2, "DOB region right edge as a fraction of page width")
	pflag.Float64("doby1", cfg.DOBY1, "DOB region top edge as a fraction of page height")
	pflag.Float64("doby2", cfg.DOBY2, "DOB region bottom edge as a fraction of page height")
	pflag.Float64("bodyy1", cfg.BodyY1, "Diagnosis/procedure region top edge as a fraction of page height")
	pflag.Float64("bodyy2", cfg.BodyY2, "Diagnosis/procedure region bottom edge as a fraction of page height")
	pflag.Bool("version", false, "Show version information and exit")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "loglevel", "logformat", "maxfilesize",
		"ocrengine", "ocrlanguages", "ocrdpi", "ocrtimeout",
		"strategy", "modifierpolicy", "pointerpolicy", "prefernativetext",
		"dobx1", "dobx2", "doby1", "doby2", "bodyy1", "bodyy2",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message.
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nHCFA OCR - extract billing data from CMS-1500 claim forms\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # stdio mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --strategy=whole-page            # recognize the full page\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --pointerpolicy=default-a        # link every line to diagnosis A\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (prefix HCFA_OCR_):\n")
		fmt.Fprintf(os.Stderr, "  HCFA_OCR_MODE, HCFA_OCR_LOGLEVEL, HCFA_OCR_OCRENGINE,\n")
		fmt.Fprintf(os.Stderr, "  HCFA_OCR_STRATEGY, HCFA_OCR_MAXFILESIZE, ...\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.LogFormat = viper.GetString("logformat")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.OCREngine = viper.GetString("ocrengine")
	cfg.OCRLanguages = splitLanguages(viper.GetString("ocrlanguages"))
	cfg.OCRDPI = viper.GetInt("ocrdpi")
	cfg.OCRTimeout = viper.GetDuration("ocrtimeout")
	cfg.Strategy = viper.GetString("strategy")
	cfg.ModifierPolicy = viper.GetString("modifierpolicy")
	cfg.PointerPolicy = viper.GetString("pointerpolicy")
	cfg.PreferNativeText = viper.GetBool("prefernativetext")
	cfg.DOBX1 = viper.GetFloat64("dobx1")
	cfg.DOBX2 = viper.GetFloat64("dobx2")
	cfg.DOBY1 = viper.GetFloat64("doby1")
	cfg.DOBY2 = viper.GetFloat64("doby2")
	cfg.BodyY1 = viper.GetFloat64("bodyy1")
	cfg.BodyY2 = viper.GetFloat64("bodyy2")
}

func splitLanguages(s string) []string {
	var langs []string
	for _, lang := range strings.Split(s, ",") {
		if lang = strings.TrimSpace(lang); lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.OCREngine == "" {
		return errors.New("OCR engine cannot be empty")
	}

	if len(c.OCRLanguages) == 0 {
		return errors.New("at least one OCR language is required")
	}

	if c.OCRDPI < 0 {
		return errors.New("OCR DPI cannot be negative")
	}

	if c.OCRTimeout < 0 {
		return errors.New("OCR timeout cannot be negative")
	}

	if c.Strategy != StrategyCropped && c.Strategy != StrategyWholePage {
		return fmt.Errorf("invalid strategy: %s (must be 'cropped' or 'whole-page')", c.Strategy)
	}

	if c.ModifierPolicy != "numeric" && c.ModifierPolicy != "enumerated" {
		return fmt.Errorf("invalid modifier policy: %s (must be 'numeric' or 'enumerated')", c.ModifierPolicy)
	}

	if c.PointerPolicy != "none" && c.PointerPolicy != "default-a" {
		return fmt.Errorf("invalid pointer policy: %s (must be 'none' or 'default-a')", c.PointerPolicy)
	}

	for _, band := range []struct {
		name   string
		lo, hi float64
	}{
		{"dobx", c.DOBX1, c.DOBX2},
		{"doby", c.DOBY1, c.DOBY2},
		{"bodyy", c.BodyY1, c.BodyY2},
	} {
		if band.lo < 0 || band.hi > 1 || band.lo >= band.hi {
			return fmt.Errorf("invalid %s crop fractions: [%v, %v]", band.name, band.lo, band.hi)
		}
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.LogFormat != "json" && c.LogFormat != "text" {
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'text')", c.LogFormat)
	}

	return nil
}

// Address returns the server address as host:port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// IsServerMode returns true if the server runs in network server mode.
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server runs in stdio mode.
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// String returns a string representation of the configuration.
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Strategy: %s, OCREngine: %s, ModifierPolicy: %s, PointerPolicy: %s, MaxFileSize: %d}",
		c.Mode, c.Strategy, c.OCREngine, c.ModifierPolicy, c.PointerPolicy, c.MaxFileSize)
}
