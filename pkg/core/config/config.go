package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/msto63/rallyscore/internal/volley/domain"
	"github.com/msto63/rallyscore/pkg/core/apperror"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "RALLYSCORE_"

// Config holds the complete application configuration
type Config struct {
	General  GeneralConfig  `toml:"general" yaml:"general"`
	Notation NotationConfig `toml:"notation" yaml:"notation"`
	Store    StoreConfig    `toml:"store" yaml:"store"`
	Server   ServerConfig   `toml:"server" yaml:"server"`
}

// GeneralConfig holds general application settings
type GeneralConfig struct {
	Name        string `toml:"name" yaml:"name"`
	Environment string `toml:"environment" yaml:"environment"`
	DataDir     string `toml:"data_dir" yaml:"data_dir"`
	LogLevel    string `toml:"log_level" yaml:"log_level"`
	LogFormat   string `toml:"log_format" yaml:"log_format"`
}

// NotationConfig holds the team prefix characters of the rally notation
type NotationConfig struct {
	AwayPrefix string `toml:"away_prefix" yaml:"away_prefix"`
	HomePrefix string `toml:"home_prefix" yaml:"home_prefix"`
}

// StoreConfig holds the match database settings
type StoreConfig struct {
	Path      string   `toml:"path" yaml:"path"`
	CacheSize int      `toml:"cache_size" yaml:"cache_size"`
	CacheTTL  Duration `toml:"cache_ttl" yaml:"cache_ttl"`
}

// ServerConfig holds the gRPC and WebSocket listener settings
type ServerConfig struct {
	Host         string   `toml:"host" yaml:"host"`
	GRPCPort     int      `toml:"grpc_port" yaml:"grpc_port"`
	HTTPPort     int      `toml:"http_port" yaml:"http_port"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// Duration wraps time.Duration for TOML and YAML parsing
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// UnmarshalYAML parses a duration scalar
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.UnmarshalText([]byte(value.Value))
}

// Default returns the configuration used when no file is present
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from a TOML or YAML file, chosen by extension
func Load(path string) (*Config, error) {
	// Expand environment variables in path
	path = os.ExpandEnv(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, apperror.Newf("config file not found: %s", path).WithCode(apperror.CodeConfigError)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to read config").WithCode(apperror.CodeConfigError)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return nil, apperror.Wrap(err, "failed to parse config").
			WithCode(apperror.CodeConfigError).
			WithDetail("path", path)
	}

	return finish(&cfg)
}

// LoadFromEnv loads configuration from RALLYSCORE_CONFIG or the default
// locations. Without any file the defaults are used.
func LoadFromEnv() (*Config, error) {
	path := os.Getenv(EnvPrefix + "CONFIG")
	if path == "" {
		for _, p := range defaultPaths() {
			if _, err := os.Stat(p); err == nil {
				path = p
				break
			}
		}
	}

	if path == "" {
		return finish(&Config{})
	}
	return Load(path)
}

func defaultPaths() []string {
	paths := []string{
		"./configs/rallyscore.toml",
		"./rallyscore.toml",
		"./rallyscore.yaml",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config/rallyscore/config.toml"))
	}
	return paths
}

func finish(cfg *Config) (*Config, error) {
	cfg.applyEnvOverrides()
	cfg.applyDefaults()
	cfg.expandEnvVars()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// General
	if c.General.Name == "" {
		c.General.Name = "rallyscore"
	}
	if c.General.Environment == "" {
		c.General.Environment = "development"
	}
	if c.General.DataDir == "" {
		c.General.DataDir = "./data"
	}
	if c.General.LogLevel == "" {
		c.General.LogLevel = "info"
	}
	if c.General.LogFormat == "" {
		c.General.LogFormat = "text"
	}

	// Notation
	def := domain.DefaultConfig()
	if c.Notation.AwayPrefix == "" {
		c.Notation.AwayPrefix = string(def.AwayPrefix)
	}
	if c.Notation.HomePrefix == "" {
		c.Notation.HomePrefix = string(def.HomePrefix)
	}

	// Store
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.General.DataDir, "rallyscore.db")
	}
	if c.Store.CacheSize == 0 {
		c.Store.CacheSize = 1000
	}
	if c.Store.CacheTTL.Duration == 0 {
		c.Store.CacheTTL.Duration = 10 * time.Minute
	}

	// Server
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.GRPCPort == 0 {
		c.Server.GRPCPort = 9300
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = 9380
	}
	if c.Server.ReadTimeout.Duration == 0 {
		c.Server.ReadTimeout.Duration = 30 * time.Second
	}
	if c.Server.WriteTimeout.Duration == 0 {
		c.Server.WriteTimeout.Duration = 30 * time.Second
	}
}

// applyEnvOverrides lets RALLYSCORE_* variables replace file values
func (c *Config) applyEnvOverrides() {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}

	str("ENVIRONMENT", &c.General.Environment)
	str("DATA_DIR", &c.General.DataDir)
	str("LOG_LEVEL", &c.General.LogLevel)
	str("LOG_FORMAT", &c.General.LogFormat)
	str("AWAY_PREFIX", &c.Notation.AwayPrefix)
	str("HOME_PREFIX", &c.Notation.HomePrefix)
	str("STORE_PATH", &c.Store.Path)
	str("HOST", &c.Server.Host)
	num("GRPC_PORT", &c.Server.GRPCPort)
	num("HTTP_PORT", &c.Server.HTTPPort)
}

// expandEnvVars expands environment variables in path values
func (c *Config) expandEnvVars() {
	c.General.DataDir = os.ExpandEnv(c.General.DataDir)
	c.Store.Path = os.ExpandEnv(c.Store.Path)
}

// Validate checks the configuration for values no component can work with
func (c *Config) Validate() error {
	if _, err := c.NotationConfig(); err != nil {
		return err
	}
	for name, port := range map[string]int{"grpc_port": c.Server.GRPCPort, "http_port": c.Server.HTTPPort} {
		if port < 1 || port > 65535 {
			return invalid(fmt.Sprintf("server.%s out of range: %d", name, port))
		}
	}
	if c.Server.GRPCPort == c.Server.HTTPPort {
		return invalid("server.grpc_port and server.http_port must differ")
	}
	return nil
}

// NotationConfig converts the notation section into the parser configuration
func (c *Config) NotationConfig() (domain.Config, error) {
	away, err := prefixRune("away_prefix", c.Notation.AwayPrefix)
	if err != nil {
		return domain.Config{}, err
	}
	home, err := prefixRune("home_prefix", c.Notation.HomePrefix)
	if err != nil {
		return domain.Config{}, err
	}

	cfg := domain.Config{AwayPrefix: away, HomePrefix: home}
	if err := cfg.Validate(); err != nil {
		return domain.Config{}, apperror.Wrap(err, "invalid notation prefixes").WithCode(apperror.CodeInvalidConfig)
	}
	return cfg, nil
}

func prefixRune(name, value string) (rune, error) {
	if utf8.RuneCountInString(value) != 1 {
		return 0, invalid(fmt.Sprintf("notation.%s must be a single character, got %q", name, value))
	}
	r, _ := utf8.DecodeRuneInString(value)
	if unicode.IsSpace(r) {
		return 0, invalid(fmt.Sprintf("notation.%s must not be whitespace", name))
	}
	return r, nil
}

func invalid(msg string) error {
	return apperror.New(msg).WithCode(apperror.CodeInvalidConfig)
}

// GRPCAddress returns the gRPC listen address
func (c *Config) GRPCAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.GRPCPort)
}

// HTTPAddress returns the WebSocket listen address
func (c *Config) HTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.HTTPPort)
}
