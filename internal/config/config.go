package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"winfs/internal/pathnorm"
	"winfs/internal/safety"
	"winfs/internal/scope"
)

// FileName is the config file looked up in the user config directory.
const FileName = "winfs.yaml"

// ForbiddenConfig extends the built-in forbidden path table. Entries are
// added to the defaults; they can never remove a built-in rule.
type ForbiddenConfig struct {
	// Segments match anywhere in a path, e.g. "/jim/OneDrive".
	Segments []string `yaml:"segments"`

	// Prefixes match at the start of a path, e.g. "/Games".
	Prefixes []string `yaml:"prefixes"`
}

// Config represents winfs configuration options
type Config struct {
	// PrimaryVolume is the system drive letter. Empty means detect.
	PrimaryVolume string `yaml:"primary_volume"`

	// BashRoot is what Git Bash substitutes for "/". Empty means detect.
	BashRoot string `yaml:"bash_root"`

	// LogLevel sets the logging verbosity (debug, info, warn, error)
	LogLevel string `yaml:"log_level"`

	// ProfileUser names the profile whose special folders are forbidden.
	// Empty means the current user.
	ProfileUser string `yaml:"profile_user"`

	// Forbidden adds rules to the safety table
	Forbidden ForbiddenConfig `yaml:"forbidden"`

	// Exclude adds globs the engine never matches
	Exclude []string `yaml:"exclude"`
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "warn",
	}
}

// DefaultPath is the config file in the user config directory, or "" when
// the host has none.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "winfs", FileName)
}

// LoadConfig loads configuration from the specified file path
// If the file doesn't exist, returns default configuration without error
// If the file exists but is malformed, returns an error
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	var fileCfg Config
	if err := yaml.Unmarshal(data, &fileCfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}
	cfg.merge(fileCfg)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// merge applies non-zero values from other.
func (c *Config) merge(other Config) {
	if other.PrimaryVolume != "" {
		c.PrimaryVolume = other.PrimaryVolume
	}
	if other.BashRoot != "" {
		c.BashRoot = other.BashRoot
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ProfileUser != "" {
		c.ProfileUser = other.ProfileUser
	}
	c.Forbidden.Segments = append(c.Forbidden.Segments, other.Forbidden.Segments...)
	c.Forbidden.Prefixes = append(c.Forbidden.Prefixes, other.Forbidden.Prefixes...)
	c.Exclude = append(c.Exclude, other.Exclude...)
}

// Validate checks the configuration for errors
func (c *Config) Validate() error {
	if v := strings.TrimSuffix(strings.TrimSpace(c.PrimaryVolume), ":"); v != "" {
		if r := []rune(v); len(r) != 1 || !pathnorm.IsCasedLetter(r[0]) {
			return errors.Errorf("primary_volume must be a single drive letter, got %q", c.PrimaryVolume)
		}
	}

	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return errors.Errorf("invalid log_level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}

	for _, p := range c.Forbidden.Prefixes {
		if !strings.HasPrefix(strings.TrimSpace(p), "/") {
			return errors.Errorf("forbidden prefix %q must start with /", p)
		}
	}
	return nil
}

// Detect fills the empty host-dependent fields from the environment.
func (c *Config) Detect(getenv func(string) string) {
	if c.PrimaryVolume == "" {
		c.PrimaryVolume = pathnorm.DetectPrimaryVolume(getenv)
	}
	c.BashRoot = pathnorm.DetectBashRoot(c.BashRoot, getenv)
	if c.ProfileUser == "" {
		c.ProfileUser = currentUser(getenv)
	}
}

// SafetyTable builds the immutable forbidden path table.
func (c *Config) SafetyTable() safety.Table {
	segments := append(safety.ProfileSegments(c.ProfileUser), c.Forbidden.Segments...)
	prefixes := append(append([]string(nil), safety.DefaultPrefixes...), c.Forbidden.Prefixes...)
	return safety.NewTable(segments, prefixes)
}

// Exclusions is the default exclusion list plus the configured extras.
func (c *Config) Exclusions() []string {
	return append(append([]string(nil), scope.DefaultExclusions...), c.Exclude...)
}

// Level is the parsed log level; Validate guarantees it parses.
func (c *Config) Level() log.Level {
	lvl, err := log.ParseLevel(c.LogLevel)
	if err != nil {
		return log.WarnLevel
	}
	return lvl
}

func currentUser(getenv func(string) string) string {
	if name := getenv("USERNAME"); name != "" {
		return name
	}
	u, err := user.Current()
	if err != nil {
		return ""
	}
	// DOMAIN\jim on Windows
	name := u.Username
	if i := strings.LastIndexAny(name, `\/`); i >= 0 {
		name = name[i+1:]
	}
	return name
}
