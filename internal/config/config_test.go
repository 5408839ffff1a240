package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	return &Config{
		Mode:            "stdio",
		Host:            "127.0.0.1",
		Port:            8080,
		PDFDirectory:    t.TempDir(),
		LogLevel:        "info",
		MaxFileSize:     1024,
		Concurrency:     2,
		FallbackTimeout: time.Second,
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}
	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}
	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}
	if cfg.ServerName != "mcp-pdf-autofill" {
		t.Errorf("Expected default server name to be 'mcp-pdf-autofill', got '%s'", cfg.ServerName)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("Expected default concurrency %d, got %d", DefaultConcurrency, cfg.Concurrency)
	}
	if cfg.FallbackTimeout != DefaultFallbackTimeout {
		t.Errorf("Expected default fallback timeout %s, got %s", DefaultFallbackTimeout, cfg.FallbackTimeout)
	}
	if cfg.FallbackEnabled() {
		t.Error("Expected fallback to be disabled by default")
	}
	if cfg.Flatten || cfg.WatermarkText != "" {
		t.Error("Expected no flatten or watermark by default")
	}

	currentDir, _ := os.Getwd()
	if cfg.PDFDirectory != currentDir {
		t.Errorf("Expected default PDF directory to be '%s', got '%s'", currentDir, cfg.PDFDirectory)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "valid stdio config",
			mutate: func(c *Config) {},
		},
		{
			name:   "valid server config",
			mutate: func(c *Config) { c.Mode = "server" },
		},
		{
			name:    "invalid mode",
			mutate:  func(c *Config) { c.Mode = "invalid" },
			wantErr: "mode must be either",
		},
		{
			name:    "port too low in server mode",
			mutate:  func(c *Config) { c.Mode = "server"; c.Port = 0 },
			wantErr: "port must be between",
		},
		{
			name:    "port too high in server mode",
			mutate:  func(c *Config) { c.Mode = "server"; c.Port = 70000 },
			wantErr: "port must be between",
		},
		{
			name:   "port ignored in stdio mode",
			mutate: func(c *Config) { c.Port = 0 },
		},
		{
			name:    "empty PDF directory",
			mutate:  func(c *Config) { c.PDFDirectory = "" },
			wantErr: "PDF directory cannot be empty",
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.LogLevel = "trace" },
			wantErr: "invalid log level",
		},
		{
			name:    "invalid max file size",
			mutate:  func(c *Config) { c.MaxFileSize = 0 },
			wantErr: "maximum file size must be positive",
		},
		{
			name:    "zero concurrency",
			mutate:  func(c *Config) { c.Concurrency = 0 },
			wantErr: "concurrency must be between",
		},
		{
			name:    "excessive concurrency",
			mutate:  func(c *Config) { c.Concurrency = MaxConcurrency + 1 },
			wantErr: "concurrency must be between",
		},
		{
			name:   "valid fallback URL",
			mutate: func(c *Config) { c.FallbackURL = "https://matcher.internal/v1/match" },
		},
		{
			name:    "relative fallback URL",
			mutate:  func(c *Config) { c.FallbackURL = "/match" },
			wantErr: "fallback URL must be an absolute",
		},
		{
			name:    "unsupported fallback scheme",
			mutate:  func(c *Config) { c.FallbackURL = "ftp://matcher/match" },
			wantErr: "fallback URL must be an absolute",
		},
		{
			name: "fallback without timeout",
			mutate: func(c *Config) {
				c.FallbackURL = "http://matcher:9000/match"
				c.FallbackTimeout = 0
			},
			wantErr: "fallback timeout must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t)
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Config.Validate() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidateCreatesDirectory(t *testing.T) {
	cfg := validConfig(t)
	cfg.PDFDirectory = filepath.Join(t.TempDir(), "nested", "forms")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error: %v", err)
	}
	info, err := os.Stat(cfg.PDFDirectory)
	if err != nil {
		t.Fatalf("expected directory to be created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", cfg.PDFDirectory)
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	validLevels := []string{"debug", "info", "warn", "error"}
	invalidLevels := []string{"DEBUG", "INFO", "trace", "fatal", ""}

	for _, level := range validLevels {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Config.Validate() should accept log level '%s', got error: %v", level, err)
			}
		})
	}

	for _, level := range invalidLevels {
		t.Run("invalid_"+level, func(t *testing.T) {
			cfg := validConfig(t)
			cfg.LogLevel = level
			if err := cfg.Validate(); err == nil {
				t.Errorf("Config.Validate() should reject log level '%s'", level)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{Host: "192.168.1.1", Port: 9090}

	if got := cfg.Address(); got != "192.168.1.1:9090" {
		t.Errorf("Config.Address() = %v, want %v", got, "192.168.1.1:9090")
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{"debug", true},
		{"info", false},
		{"warn", false},
		{"error", false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:            "server",
		Host:            "localhost",
		Port:            8080,
		PDFDirectory:    "/home/user/forms",
		LogLevel:        "debug",
		MaxFileSize:     1024,
		Concurrency:     3,
		FallbackURL:     "http://matcher:9000/match",
		FallbackTimeout: 5 * time.Second,
	}

	result := cfg.String()

	expectedSubstrings := []string{
		"Mode: server",
		"Host: localhost",
		"Port: 8080",
		"PDFDirectory: /home/user/forms",
		"LogLevel: debug",
		"MaxFileSize: 1024",
		"Concurrency: 3",
		"FallbackURL: http://matcher:9000/match",
		"FallbackTimeout: 5s",
	}

	for _, substr := range expectedSubstrings {
		if !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode       string
		wantServer bool
		wantStdio  bool
	}{
		{"server", true, false},
		{"stdio", false, true},
		{"other", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsServerMode(); got != tt.wantServer {
				t.Errorf("Config.IsServerMode() = %v, want %v", got, tt.wantServer)
			}
			if got := cfg.IsStdioMode(); got != tt.wantStdio {
				t.Errorf("Config.IsStdioMode() = %v, want %v", got, tt.wantStdio)
			}
		})
	}
}
