package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/msto63/rallyscore/pkg/core/apperror"
)

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Duration
		wantErr  bool
	}{
		{"seconds", "30s", 30 * time.Second, false},
		{"minutes", "5m", 5 * time.Minute, false},
		{"complex", "1h30m", 90 * time.Minute, false},
		{"invalid", "invalid", 0, true},
		{"empty", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.input))

			if (err != nil) != tt.wantErr {
				t.Errorf("UnmarshalText() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr && d.Duration != tt.expected {
				t.Errorf("UnmarshalText() = %v, want %v", d.Duration, tt.expected)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.General.Name != "rallyscore" {
		t.Errorf("General.Name = %v, want rallyscore", cfg.General.Name)
	}
	if cfg.Notation.AwayPrefix != "@" || cfg.Notation.HomePrefix != "!" {
		t.Errorf("Notation = %+v, want @ and !", cfg.Notation)
	}
	if cfg.Store.Path != filepath.Join("./data", "rallyscore.db") {
		t.Errorf("Store.Path = %v", cfg.Store.Path)
	}
	if cfg.Store.CacheSize != 1000 || cfg.Store.CacheTTL.Duration != 10*time.Minute {
		t.Errorf("Store cache = %d, %v", cfg.Store.CacheSize, cfg.Store.CacheTTL)
	}
	if cfg.GRPCAddress() != "0.0.0.0:9300" || cfg.HTTPAddress() != "0.0.0.0:9380" {
		t.Errorf("Addresses = %s, %s", cfg.GRPCAddress(), cfg.HTTPAddress())
	}
	if cfg.Server.ReadTimeout.Duration != 30*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config invalid: %v", err)
	}
}

func TestLoad_TOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rallyscore.toml")
	content := `
[general]
data_dir = "` + dir + `"
log_level = "debug"

[notation]
away_prefix = "<"
home_prefix = ">"

[server]
grpc_port = 9400
read_timeout = "5s"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.General.LogLevel)
	}
	if cfg.Server.GRPCPort != 9400 || cfg.Server.HTTPPort != 9380 {
		t.Errorf("Ports = %d/%d", cfg.Server.GRPCPort, cfg.Server.HTTPPort)
	}
	if cfg.Server.ReadTimeout.Duration != 5*time.Second {
		t.Errorf("ReadTimeout = %v", cfg.Server.ReadTimeout)
	}
	if cfg.Store.Path != filepath.Join(dir, "rallyscore.db") {
		t.Errorf("Store.Path = %v", cfg.Store.Path)
	}

	notation, err := cfg.NotationConfig()
	if err != nil {
		t.Fatalf("NotationConfig() error = %v", err)
	}
	if notation.AwayPrefix != '<' || notation.HomePrefix != '>' {
		t.Errorf("NotationConfig() = %+v", notation)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rallyscore.yaml")
	content := `
general:
  log_format: json
store:
  path: /tmp/matches.db
server:
  http_port: 8088
  write_timeout: 1m
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.General.LogFormat != "json" || cfg.Store.Path != "/tmp/matches.db" {
		t.Errorf("Unexpected config: %+v", cfg)
	}
	if cfg.Server.HTTPPort != 8088 || cfg.Server.WriteTimeout.Duration != time.Minute {
		t.Errorf("Server = %+v", cfg.Server)
	}
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := Load(filepath.Join(dir, "missing.toml")); !apperror.HasCode(err, apperror.CodeConfigError) {
		t.Errorf("Missing file error = %v, want CONFIG_ERROR", err)
	}

	broken := filepath.Join(dir, "broken.toml")
	if err := os.WriteFile(broken, []byte("[general\nname="), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(broken); !apperror.HasCode(err, apperror.CodeConfigError) {
		t.Errorf("Broken file error = %v, want CONFIG_ERROR", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"same prefixes", func(c *Config) { c.Notation.HomePrefix = c.Notation.AwayPrefix }},
		{"two characters", func(c *Config) { c.Notation.AwayPrefix = "@@" }},
		{"whitespace", func(c *Config) { c.Notation.AwayPrefix = " " }},
		{"letter", func(c *Config) { c.Notation.HomePrefix = "H" }},
		{"digit", func(c *Config) { c.Notation.HomePrefix = "7" }},
		{"port range", func(c *Config) { c.Server.GRPCPort = 70000 }},
		{"same ports", func(c *Config) { c.Server.HTTPPort = c.Server.GRPCPort }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !apperror.HasCode(err, apperror.CodeInvalidConfig) {
				t.Errorf("Validate() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"CONFIG", "")
	t.Setenv(EnvPrefix+"HOME_PREFIX", "#")
	t.Setenv(EnvPrefix+"GRPC_PORT", "9555")
	t.Setenv(EnvPrefix+"LOG_LEVEL", "warn")
	t.Setenv("HOME", t.TempDir())

	wd, _ := os.Getwd()
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.Notation.HomePrefix != "#" || cfg.Server.GRPCPort != 9555 || cfg.General.LogLevel != "warn" {
		t.Errorf("Overrides not applied: %+v", cfg)
	}
	if cfg.Notation.AwayPrefix != "@" {
		t.Errorf("AwayPrefix = %q, want default", cfg.Notation.AwayPrefix)
	}
}

func TestLoadFromEnv_ExplicitFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[general]\nname = \"gym\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvPrefix+"CONFIG", path)

	cfg, err := LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv() error = %v", err)
	}
	if cfg.General.Name != "gym" {
		t.Errorf("Name = %v, want gym", cfg.General.Name)
	}
}
