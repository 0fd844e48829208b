// Package config handles the global ssrn configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/blucap/ssrnbib/internal/retry"
)

// GlobalConfig represents configuration stored in ~/.config/ssrn/config.yml.
type GlobalConfig struct {
	UserAgent  string      `yaml:"user_agent,omitempty"`
	Journal    string      `yaml:"journal,omitempty"`
	Publisher  string      `yaml:"publisher,omitempty"`
	BibFile    string      `yaml:"bib_file,omitempty"`    // Default target for --append
	LibraryDir string      `yaml:"library_dir,omitempty"` // Where saved records live
	Timeout    Duration    `yaml:"timeout,omitempty"`     // Per-attempt HTTP timeout
	RateLimit  float64     `yaml:"rate_limit,omitempty"`  // Requests per second
	Retry      RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig mirrors retry.Policy in the config file.
type RetryConfig struct {
	MaxAttempts int      `yaml:"max_attempts,omitempty"`
	BaseDelay   Duration `yaml:"base_delay,omitempty"`
	MaxDelay    Duration `yaml:"max_delay,omitempty"`
	Multiplier  float64  `yaml:"multiplier,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME and XDG_DATA_HOME.
	GlobalConfigDir = "ssrn"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that take priority over the config file.
const (
	EnvUserAgent  = "SSRN_USER_AGENT"
	EnvLibraryDir = "SSRN_LIBRARY_DIR"
	EnvBibFile    = "SSRN_BIB_FILE"
)

// Defaults applied to unset fields.
const (
	DefaultUserAgent = "Mozilla/5.0"
	DefaultJournal   = "SSRN Electronic Journal"
	DefaultPublisher = "Elsevier BV"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 1.0
)

// ErrUnknownKey is returned by Get and Set for keys the config does not have.
var ErrUnknownKey = errors.New("unknown configuration key")

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/ssrn/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// DefaultLibraryDir returns $XDG_DATA_HOME/ssrn, or ~/.local/share/ssrn.
func DefaultLibraryDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, GlobalConfigDir)
}

// LoadGlobalConfig loads the global configuration file, applies environment
// overrides and fills defaults. A missing file is not an error.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	cfg, err := readGlobalConfig(GlobalConfigPath())
	if err != nil {
		return nil, err
	}

	cfg.UserAgent = GetConfigValue(EnvUserAgent, cfg.UserAgent)
	cfg.LibraryDir = GetConfigValue(EnvLibraryDir, cfg.LibraryDir)
	cfg.BibFile = GetConfigValue(EnvBibFile, cfg.BibFile)
	cfg.applyDefaults()

	globalConfigCache = cfg
	return cfg, nil
}

// readGlobalConfig reads the file as written, without defaults.
func readGlobalConfig(path string) (*GlobalConfig, error) {
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable if set, else configValue.
func GetConfigValue(envKey, configValue string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return configValue
}

func (c *GlobalConfig) applyDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Journal == "" {
		c.Journal = DefaultJournal
	}
	if c.Publisher == "" {
		c.Publisher = DefaultPublisher
	}
	if c.LibraryDir == "" {
		c.LibraryDir = DefaultLibraryDir()
	}
	c.LibraryDir = ExpandPath(c.LibraryDir)
	c.BibFile = ExpandPath(c.BibFile)
	if c.Timeout.IsZero() {
		c.Timeout = DurationFrom(DefaultTimeout)
	}
	if c.RateLimit == 0 {
		c.RateLimit = DefaultRateLimit
	}

	def := retry.DefaultPolicy()
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = def.MaxAttempts
	}
	if c.Retry.BaseDelay.IsZero() {
		c.Retry.BaseDelay = DurationFrom(def.BaseDelay)
	}
	if c.Retry.MaxDelay.IsZero() {
		c.Retry.MaxDelay = DurationFrom(def.MaxDelay)
	}
	if c.Retry.Multiplier == 0 {
		c.Retry.Multiplier = def.Multiplier
	}
}

// RetryPolicy returns the configured backoff policy.
func (c *GlobalConfig) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxAttempts: c.Retry.MaxAttempts,
		BaseDelay:   c.Retry.BaseDelay.Duration,
		Multiplier:  c.Retry.Multiplier,
		MaxDelay:    c.Retry.MaxDelay.Duration,
	}
}

// Keys lists the settings reachable through Get and Set, in display order.
var Keys = []string{
	"user-agent",
	"journal",
	"publisher",
	"bib-file",
	"library-dir",
	"timeout",
	"rate-limit",
	"retry-max-attempts",
	"retry-base-delay",
	"retry-max-delay",
	"retry-multiplier",
}

// NormalizeKey converts key formats (bib_file, Bib-File) to bib-file.
func NormalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.ReplaceAll(key, "_", "-")
}

// Get returns the string form of a setting.
func (c *GlobalConfig) Get(key string) (string, error) {
	switch NormalizeKey(key) {
	case "user-agent":
		return c.UserAgent, nil
	case "journal":
		return c.Journal, nil
	case "publisher":
		return c.Publisher, nil
	case "bib-file":
		return c.BibFile, nil
	case "library-dir":
		return c.LibraryDir, nil
	case "timeout":
		return c.Timeout.String(), nil
	case "rate-limit":
		return strconv.FormatFloat(c.RateLimit, 'g', -1, 64), nil
	case "retry-max-attempts":
		return strconv.Itoa(c.Retry.MaxAttempts), nil
	case "retry-base-delay":
		return c.Retry.BaseDelay.String(), nil
	case "retry-max-delay":
		return c.Retry.MaxDelay.String(), nil
	case "retry-multiplier":
		return strconv.FormatFloat(c.Retry.Multiplier, 'g', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
}

// Set parses value and stores it under key.
func (c *GlobalConfig) Set(key, value string) error {
	value = strings.TrimSpace(value)

	switch NormalizeKey(key) {
	case "user-agent":
		c.UserAgent = value
	case "journal":
		c.Journal = value
	case "publisher":
		c.Publisher = value
	case "bib-file":
		c.BibFile = ExpandPath(value)
	case "library-dir":
		c.LibraryDir = ExpandPath(value)
	case "timeout":
		return c.Timeout.UnmarshalText([]byte(value))
	case "rate-limit":
		f, err := strconv.ParseFloat(value, 64)
		// Zero would be dropped on save and read back as the default
		if err != nil || !(f > 0) {
			return fmt.Errorf("invalid rate-limit %q: must be a positive number", value)
		}
		c.RateLimit = f
	case "retry-max-attempts":
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid retry-max-attempts %q: must be a positive integer", value)
		}
		c.Retry.MaxAttempts = n
	case "retry-base-delay":
		return c.Retry.BaseDelay.UnmarshalText([]byte(value))
	case "retry-max-delay":
		return c.Retry.MaxDelay.UnmarshalText([]byte(value))
	case "retry-multiplier":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 1 {
			return fmt.Errorf("invalid retry-multiplier %q: must be at least 1", value)
		}
		c.Retry.Multiplier = f
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return nil
}

// SetGlobalValue updates one key in the config file on disk. Only the file's
// own values are rewritten; defaults and environment overrides are not
// persisted.
func SetGlobalValue(key, value string) error {
	path := GlobalConfigPath()
	if path == "" {
		return errors.New("cannot determine config path")
	}

	cfg, err := readGlobalConfig(path)
	if err != nil {
		return err
	}
	if err := cfg.Set(key, value); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	ResetGlobalConfigCache()
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
