package config

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var envKeys = []string{
	"MODE", "HOST", "PORT", "DIR", "LOGLEVEL", "MAXFILESIZE",
	"FLATTEN", "WATERMARK", "CONCURRENCY", "FALLBACKURL", "FALLBACKTIMEOUT",
	"RULES",
}

// resetFlags gives every test a fresh flag set and viper instance
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ContinueOnError)
	viper.Reset()
}

func clearEnvVars() {
	for _, k := range envKeys {
		os.Unsetenv(EnvPrefix + "_" + k)
	}
}

// withArgs runs LoadFromFlags with args and restores global state afterwards
func withArgs(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	originalArgs := os.Args
	t.Cleanup(func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	})

	os.Args = append([]string{"mcp-pdf-autofill"}, args...)
	resetFlags()
	return LoadFromFlags()
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	clearEnvVars()
	cfg, err := withArgs(t, "--dir="+t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "stdio")
	}
	if cfg.Port != 8080 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 8080)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "info")
	}
	if cfg.Concurrency != DefaultConcurrency {
		t.Errorf("LoadFromFlags() Concurrency = %v, want %v", cfg.Concurrency, DefaultConcurrency)
	}
	if cfg.FallbackTimeout != DefaultFallbackTimeout {
		t.Errorf("LoadFromFlags() FallbackTimeout = %v, want %v", cfg.FallbackTimeout, DefaultFallbackTimeout)
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		check func(t *testing.T, cfg *Config)
	}{
		{
			name: "server mode with custom host and port",
			args: []string{"--mode=server", "--host=0.0.0.0", "--port=9090"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Mode != "server" || cfg.Host != "0.0.0.0" || cfg.Port != 9090 {
					t.Errorf("unexpected server settings: %s", cfg)
				}
			},
		},
		{
			name: "debug logging",
			args: []string{"--loglevel=debug"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.IsDebug() {
					t.Errorf("LoadFromFlags() LogLevel = %v, want debug", cfg.LogLevel)
				}
			},
		},
		{
			name: "custom max file size",
			args: []string{"--maxfilesize=50000000"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.MaxFileSize != 50000000 {
					t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 50000000)
				}
			},
		},
		{
			name: "fill defaults",
			args: []string{"--flatten", "--watermark=MUSTER", "--concurrency=8"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Flatten || cfg.WatermarkText != "MUSTER" || cfg.Concurrency != 8 {
					t.Errorf("unexpected fill settings: %s", cfg)
				}
			},
		},
		{
			name: "fallback endpoint",
			args: []string{"--fallbackurl=http://matcher:9000/match", "--fallbacktimeout=3s"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.FallbackEnabled() || cfg.FallbackTimeout != 3*time.Second {
					t.Errorf("unexpected fallback settings: %s", cfg)
				}
			},
		},
		{
			name: "rules file",
			args: []string{"--rules=/etc/autofill/rules.yaml"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.RulesFile != "/etc/autofill/rules.yaml" {
					t.Errorf("LoadFromFlags() RulesFile = %q", cfg.RulesFile)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			cfg, err := withArgs(t, append(tt.args, "--dir="+t.TempDir())...)
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	tempDir := t.TempDir()
	t.Setenv(EnvPrefix+"_MODE", "server")
	t.Setenv(EnvPrefix+"_HOST", "192.168.1.1")
	t.Setenv(EnvPrefix+"_PORT", "3000")
	t.Setenv(EnvPrefix+"_DIR", tempDir)
	t.Setenv(EnvPrefix+"_LOGLEVEL", "warn")
	t.Setenv(EnvPrefix+"_MAXFILESIZE", "200000000")
	t.Setenv(EnvPrefix+"_FALLBACKURL", "https://matcher.example/match")
	t.Setenv(EnvPrefix+"_FALLBACKTIMEOUT", "2s")

	cfg, err := withArgs(t)
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "server" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v", cfg.Mode, "server")
	}
	if cfg.Host != "192.168.1.1" {
		t.Errorf("LoadFromFlags() Host = %v, want %v", cfg.Host, "192.168.1.1")
	}
	if cfg.Port != 3000 {
		t.Errorf("LoadFromFlags() Port = %v, want %v", cfg.Port, 3000)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MaxFileSize != 200000000 {
		t.Errorf("LoadFromFlags() MaxFileSize = %v, want %v", cfg.MaxFileSize, 200000000)
	}
	if cfg.FallbackURL != "https://matcher.example/match" {
		t.Errorf("LoadFromFlags() FallbackURL = %v", cfg.FallbackURL)
	}
	if cfg.FallbackTimeout != 2*time.Second {
		t.Errorf("LoadFromFlags() FallbackTimeout = %v, want 2s", cfg.FallbackTimeout)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	t.Setenv(EnvPrefix+"_MODE", "server")
	t.Setenv(EnvPrefix+"_HOST", "192.168.1.1")
	t.Setenv(EnvPrefix+"_PORT", "3000")

	cfg, err := withArgs(t, "--mode=stdio", "--host=localhost", "--port=8888", "--dir="+t.TempDir())
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Mode != "stdio" {
		t.Errorf("LoadFromFlags() Mode = %v, want %v (should override env)", cfg.Mode, "stdio")
	}
	if cfg.Host != "localhost" {
		t.Errorf("LoadFromFlags() Host = %v, want %v (should override env)", cfg.Host, "localhost")
	}
	if cfg.Port != 8888 {
		t.Errorf("LoadFromFlags() Port = %v, want %v (should override env)", cfg.Port, 8888)
	}
}

func TestLoadFromFlags_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either 'stdio' or 'server'"},
		{"invalid port", []string{"--mode=server", "--port=99999"}, "port must be between 1 and 65535"},
		{"invalid log level", []string{"--loglevel=invalid"}, "invalid log level"},
		{"invalid concurrency", []string{"--concurrency=0"}, "concurrency must be between"},
		{"invalid fallback URL", []string{"--fallbackurl=matcher"}, "fallback URL must be an absolute"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnvVars()
			_, err := withArgs(t, append(tt.args, "--dir="+t.TempDir())...)
			if err == nil {
				t.Fatalf("LoadFromFlags() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("LoadFromFlags() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	clearEnvVars()
	_, err := withArgs(t, "--version")
	if !errors.Is(err, ErrVersionRequested) {
		t.Errorf("LoadFromFlags() error = %v, want ErrVersionRequested", err)
	}
}
