package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/oshokin/release-manifest/internal/domain/manifest"
	"github.com/oshokin/release-manifest/internal/logger"
)

// Config holds the settings of a manifest generation run.
type Config struct {
	// Repository is the "owner/name" identifier whose releases are listed.
	Repository string `mapstructure:"repository" yaml:"repository"`
	// Token is an optional API token. It is never written to disk.
	Token string `mapstructure:"token" yaml:"-"`
	// Output is the path of the generated manifest.
	Output string `mapstructure:"output" yaml:"output"`
	// BaseURL is the REST API root.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`
	// PerPage is the page size requested from the API.
	PerPage int `mapstructure:"per_page" yaml:"per_page"`
	// Timeout bounds each HTTP request; zero disables it.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Include lists filename globs an asset must match; empty accepts all.
	Include []string `mapstructure:"include" yaml:"include"`
	// Exclude lists filename globs that drop an asset.
	Exclude []string `mapstructure:"exclude" yaml:"exclude"`
	// KeepEmpty keeps releases without any classified file.
	KeepEmpty bool `mapstructure:"keep_empty" yaml:"keep_empty"`
	// LogLevel is the minimum level of emitted log messages.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`
}

const (
	// DefaultConfigFilename is looked up in the working directory when no path is given.
	DefaultConfigFilename = "release-manifest.yaml"

	// DefaultRepository is the repository whose releases are listed by default.
	DefaultRepository = "PyO3/maturin"

	// DefaultOutput is the default manifest path.
	DefaultOutput = "versions-manifest.json"

	// DefaultBaseURL is the public GitHub REST API root.
	DefaultBaseURL = "https://api.github.com/"

	// DefaultPerPage is the page size used for listing releases.
	DefaultPerPage = 50

	// MaxPerPage is the largest page size the API honours.
	MaxPerPage = 100

	// DefaultLogLevel is used when no level is configured.
	DefaultLogLevel = "info"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errInvalidRepository is returned when the repository is not "owner/name".
	errInvalidRepository = errors.New("repository must be in owner/name form")
	// errInvalidPerPage is returned for a page size outside 1..MaxPerPage.
	errInvalidPerPage = errors.New("per_page out of range")
	// errNegativeTimeout is returned for a negative timeout.
	errNegativeTimeout = errors.New("timeout must not be negative")
	// errUnknownLogLevel is returned for an unparseable log level.
	errUnknownLogLevel = errors.New("unknown log level")
)

// envBindings maps config keys to the environment variables that set them.
//
//nolint:gochecknoglobals // Static lookup table.
var envBindings = map[string][]string{
	"repository": {"REPOSITORY"},
	"token":      {"GITHUB_TOKEN"},
	"output":     {"OUTPUT"},
	"base_url":   {"GITHUB_API_URL"},
	"log_level":  {"LOG_LEVEL"},
}

// flagBindings maps config keys to command-line flag names.
//
//nolint:gochecknoglobals // Static lookup table.
var flagBindings = map[string]string{
	"repository": "repository",
	"output":     "output",
	"base_url":   "base-url",
	"per_page":   "per-page",
	"timeout":    "timeout",
	"keep_empty": "keep-empty",
	"log_level":  "log-level",
}

// Default returns a configuration populated with defaults only.
func Default() *Config {
	return &Config{
		Repository: DefaultRepository,
		Output:     DefaultOutput,
		BaseURL:    DefaultBaseURL,
		PerPage:    DefaultPerPage,
		Include:    append([]string(nil), manifest.DefaultIncludePatterns...),
		Exclude:    append([]string(nil), manifest.DefaultExcludePatterns...),
		LogLevel:   DefaultLogLevel,
	}
}

// Load builds the configuration from defaults, the YAML file at path,
// the environment and the changed flags in fs, in increasing priority.
// An empty path looks for DefaultConfigFilename and tolerates its absence.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	defaults := Default()
	v.SetDefault("repository", defaults.Repository)
	v.SetDefault("token", "")
	v.SetDefault("output", defaults.Output)
	v.SetDefault("base_url", defaults.BaseURL)
	v.SetDefault("per_page", defaults.PerPage)
	v.SetDefault("timeout", defaults.Timeout)
	v.SetDefault("include", defaults.Include)
	v.SetDefault("exclude", defaults.Exclude)
	v.SetDefault("keep_empty", defaults.KeepEmpty)
	v.SetDefault("log_level", defaults.LogLevel)

	if err := readConfigFile(v, path); err != nil {
		return nil, err
	}

	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", key, err)
		}
	}

	if fs != nil {
		for key, name := range flagBindings {
			flag := fs.Lookup(name)
			if flag == nil {
				continue
			}

			if err := v.BindPFlag(key, flag); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// readConfigFile merges the YAML file into v.
func readConfigFile(v *viper.Viper, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFilename
	}

	path = filepath.Clean(path)

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read settings: %w", err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	return nil
}

// Save writes the configuration to the provided path. The token is omitted.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for zero values.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	settings.Repository = strings.TrimSpace(settings.Repository)
	if settings.Repository == "" {
		settings.Repository = DefaultRepository
	}

	owner, repo, found := strings.Cut(settings.Repository, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return fmt.Errorf("%q: %w", settings.Repository, errInvalidRepository)
	}

	if settings.Output == "" {
		settings.Output = DefaultOutput
	}

	if settings.BaseURL == "" {
		settings.BaseURL = DefaultBaseURL
	}

	if _, err := url.ParseRequestURI(settings.BaseURL); err != nil {
		return fmt.Errorf("invalid base url: %w", err)
	}

	if settings.PerPage == 0 {
		settings.PerPage = DefaultPerPage
	}

	if settings.PerPage < 1 || settings.PerPage > MaxPerPage {
		return fmt.Errorf("%d: %w", settings.PerPage, errInvalidPerPage)
	}

	if settings.Timeout < 0 {
		return errNegativeTimeout
	}

	for _, pattern := range append(append([]string(nil), settings.Include...), settings.Exclude...) {
		if err := manifest.ValidatePattern(pattern); err != nil {
			return err
		}
	}

	if settings.LogLevel == "" {
		settings.LogLevel = DefaultLogLevel
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%q: %w", settings.LogLevel, errUnknownLogLevel)
	}

	return nil
}
