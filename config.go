package goarg

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by LoadConfigFromEnvironment.
const (
	EnvLanguage    = "GOARG_LANGUAGE"
	EnvLogLevel    = "GOARG_LOG_LEVEL"
	EnvUnknownKeys = "GOARG_UNKNOWN_KEYS"
	EnvWeakTypes   = "GOARG_WEAK_TYPES"
	EnvMaxDepth    = "GOARG_MAX_DEPTH"
)

// DefaultLanguage is the message language used when none is configured.
const DefaultLanguage = "en"

// Config holds the process-wide settings of the package.
type Config struct {
	Language    string `yaml:"language"`     // message language of the rules package
	LogLevel    string `yaml:"log_level"`    // debug, info, warn, error; empty keeps the current logger
	UnknownKeys string `yaml:"unknown_keys"` // strip, strict, passthrough
	WeakTypes   bool   `yaml:"weak_types"`
	MaxDepth    int    `yaml:"max_depth"`
}

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		Language:    DefaultLanguage,
		UnknownKeys: UnknownStrip.String(),
		MaxDepth:    DefaultMaxDepth,
	}
}

// Validate checks the values and fills in defaults.
func (c *Config) Validate() error {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.UnknownKeys == "" {
		c.UnknownKeys = UnknownStrip.String()
	}
	if _, err := ParseUnknownPolicy(c.UnknownKeys); err != nil {
		return err
	}
	if c.LogLevel != "" {
		if _, err := parseLevel(c.LogLevel); err != nil {
			return err
		}
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return nil
}

// BindOpt returns the default bind options described by c.
func (c Config) BindOpt() BindOpt {
	p, _ := ParseUnknownPolicy(c.UnknownKeys)
	return BindOpt{Unknown: p, WeakTypes: c.WeakTypes, MaxDepth: c.MaxDepth}
}

// Apply installs c: message language, default bind options, and a stderr
// text logger when LogLevel is set.
func (c Config) Apply() error {
	if err := c.Validate(); err != nil {
		return err
	}
	SetLanguage(c.Language)
	SetDefaultBindOpt(c.BindOpt())
	if c.LogLevel != "" {
		lvl, _ := parseLevel(c.LogLevel)
		SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	}
	logger().Info("goarg: configuration applied",
		"language", c.Language, "unknown_keys", c.UnknownKeys,
		"weak_types", c.WeakTypes, "max_depth", c.MaxDepth)
	return nil
}

// LoadConfigFromEnvironment reads the GOARG_* variables. Unset variables
// keep their defaults.
//
//	export GOARG_LANGUAGE=ja
//	export GOARG_UNKNOWN_KEYS=strict
//
//	cfg, err := goarg.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	_ = cfg.Apply()
func LoadConfigFromEnvironment() (Config, error) {
	cfg := DefaultConfig()
	cfg.Language = getEnvOrDefault(EnvLanguage, cfg.Language)
	cfg.LogLevel = getEnvOrDefault(EnvLogLevel, cfg.LogLevel)
	cfg.UnknownKeys = getEnvOrDefault(EnvUnknownKeys, cfg.UnknownKeys)
	if v := os.Getenv(EnvWeakTypes); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvWeakTypes, err)
		}
		cfg.WeakTypes = b
	}
	if v := os.Getenv(EnvMaxDepth); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvMaxDepth, err)
		}
		cfg.MaxDepth = n
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadConfigFile reads a YAML configuration file. Keys left out keep their
// defaults.
func LoadConfigFile(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads .env files into the process environment without
// overriding variables that are already set. With no argument it loads
// ".env"; a missing default file is not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		if _, err := os.Stat(".env"); err != nil {
			return nil
		}
	}
	return godotenv.Load(files...)
}

// ParseUnknownPolicy parses "strip", "strict" or "passthrough".
func ParseUnknownPolicy(s string) (UnknownPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strip", "":
		return UnknownStrip, nil
	case "strict":
		return UnknownStrict, nil
	case "passthrough":
		return UnknownPassthrough, nil
	}
	return UnknownStrip, fmt.Errorf("unknown keys policy %q", s)
}

func parseLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", s, err)
	}
	return lvl, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

var (
	languageMu      sync.RWMutex
	currentLanguage = DefaultLanguage
)

// SetLanguage sets the message language used by validators that translate
// their messages. Empty restores DefaultLanguage.
func SetLanguage(lang string) {
	if lang == "" {
		lang = DefaultLanguage
	}
	languageMu.Lock()
	currentLanguage = lang
	languageMu.Unlock()
}

// Language returns the configured message language.
func Language() string {
	languageMu.RLock()
	defer languageMu.RUnlock()
	return currentLanguage
}
