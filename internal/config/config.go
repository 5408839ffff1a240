package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort            = 8080
	DefaultHost            = "127.0.0.1"
	DefaultLogLevel        = "info"
	DefaultMaxFileSize     = 100 * 1024 * 1024 // 100MB
	DefaultFallbackTimeout = 15 * time.Second
	DefaultConcurrency     = 4
	MaxConcurrency         = 64

	// EnvPrefix prefixes every environment variable
	EnvPrefix = "PDF_AUTOFILL"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// ErrVersionRequested is returned by LoadFromFlags when --version is passed
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the autofill server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDFDirectory bounds every file path a tool call may touch
	PDFDirectory string

	// Fill defaults
	Flatten       bool
	WatermarkText string
	Concurrency   int // batch worker limit

	// Semantic matching fallback; empty URL disables it
	FallbackURL     string
	FallbackTimeout time.Duration

	// RulesFile adds classifier rules from a JSON or YAML file
	RulesFile string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:            ModeStdio,
		Host:            DefaultHost,
		Port:            DefaultPort,
		PDFDirectory:    currentDir,
		Concurrency:     DefaultConcurrency,
		FallbackTimeout: DefaultFallbackTimeout,
		Version:         "1.0.0",
		ServerName:      "mcp-pdf-autofill",
		LogLevel:        DefaultLogLevel,
		MaxFileSize:     DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("flatten", cfg.Flatten)
	viper.SetDefault("watermark", cfg.WatermarkText)
	viper.SetDefault("concurrency", cfg.Concurrency)
	viper.SetDefault("fallbackurl", cfg.FallbackURL)
	viper.SetDefault("fallbacktimeout", cfg.FallbackTimeout)
	viper.SetDefault("rules", cfg.RulesFile)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP/SSE server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF forms and receiving filled output")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.Bool("flatten", cfg.Flatten, "Flatten filled forms by default")
	pflag.String("watermark", cfg.WatermarkText, "Default watermark text stamped on filled forms")
	pflag.Int("concurrency", cfg.Concurrency, "Maximum documents processed in parallel by batch fills")
	pflag.String("fallbackurl", cfg.FallbackURL, "Endpoint of the semantic matching service (empty disables it)")
	pflag.Duration("fallbacktimeout", cfg.FallbackTimeout, "Timeout for one semantic matching request")
	pflag.String("rules", cfg.RulesFile, "Additional classifier rules (JSON or YAML)")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range []string{
		"mode", "host", "port", "dir", "loglevel", "maxfilesize",
		"flatten", "watermark", "concurrency", "fallbackurl", "fallbacktimeout", "rules",
	} {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP PDF Autofill - reads AcroForm fields and fills them from a user profile\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/forms                    "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/forms      # SSE server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --fallbackurl=http://matcher:9000/match  # enable suggestions\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  %s_MODE             Server mode\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_HOST             Server host\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_PORT             Server port\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_DIR              PDF directory\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_LOGLEVEL         Log level\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_MAXFILESIZE      Maximum file size\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_FALLBACKURL      Semantic matching endpoint\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_FALLBACKTIMEOUT  Semantic matching timeout\n", EnvPrefix)
		fmt.Fprintf(os.Stderr, "  %s_RULES            Additional classifier rules file\n", EnvPrefix)
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return ErrVersionRequested
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Flatten = viper.GetBool("flatten")
	cfg.WatermarkText = viper.GetString("watermark")
	cfg.Concurrency = viper.GetInt("concurrency")
	cfg.FallbackURL = viper.GetString("fallbackurl")
	cfg.FallbackTimeout = viper.GetDuration("fallbacktimeout")
	cfg.RulesFile = viper.GetString("rules")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Port only matters in server mode
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		return fmt.Errorf("concurrency must be between 1 and %d", MaxConcurrency)
	}

	if c.FallbackURL != "" {
		u, err := url.Parse(c.FallbackURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("fallback URL must be an absolute http(s) URL: %q", c.FallbackURL)
		}
		if c.FallbackTimeout <= 0 {
			return errors.New("fallback timeout must be positive")
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

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// FallbackEnabled reports whether a semantic matching endpoint is configured
func (c *Config) FallbackEnabled() bool {
	return c.FallbackURL != ""
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"Flatten: %t, Concurrency: %d, FallbackURL: %s, FallbackTimeout: %s, RulesFile: %s}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.Flatten, c.Concurrency, c.FallbackURL, c.FallbackTimeout, c.RulesFile)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
