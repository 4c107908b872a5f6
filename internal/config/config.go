// Package config loads the action's inputs.
//
// The runner passes each declared input as an INPUT_<NAME> environment
// variable. Inputs are read through viper with that prefix, so the same
// values can also come from command-line flags or an optional YAML file
// when running outside a workflow.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/tflint-actions/setup-tflint/internal/logging"
)

// EnvPrefix is the prefix the runner puts on action inputs.
const EnvPrefix = "INPUT"

// Input names.
const (
	KeyVersion         = "tflint_version"
	KeyChecksums       = "checksums"
	KeyWrapper         = "tflint_wrapper"
	KeyGitHubToken     = "github_token"
	KeyCache           = "cache"
	KeyConfigPath      = "tflint_config_path"
	KeyPluginDir       = "plugin_dir"
	KeySigningKey      = "signing_key"
	KeyDownloadBaseURL = "download_base_url"
	KeyAPIURL          = "api_url"
	KeyWrapperPath     = "wrapper_path"
	KeyLogLevel        = "log_level"
	KeyLogFormat       = "log_format"
	KeyLogFile         = "log_file"
)

// Defaults.
const (
	DefaultVersion         = "latest"
	DefaultConfigPath      = ".tflint.hcl"
	DefaultDownloadBaseURL = "https://github.com/terraform-linters/tflint/releases/download"
	DefaultAPIURL          = "https://api.github.com"
)

// Config holds all inputs of one invocation
type Config struct {
	Version         string `mapstructure:"tflint_version"`
	Checksums       string `mapstructure:"checksums"`
	Wrapper         bool   `mapstructure:"tflint_wrapper"`
	GitHubToken     string `mapstructure:"github_token"`
	Cache           bool   `mapstructure:"cache"`
	ConfigPath      string `mapstructure:"tflint_config_path"`
	PluginDir       string `mapstructure:"plugin_dir"`
	SigningKey      string `mapstructure:"signing_key"`
	DownloadBaseURL string `mapstructure:"download_base_url"`
	APIURL          string `mapstructure:"api_url"`
	WrapperPath     string `mapstructure:"wrapper_path"`

	Logging logging.Config `mapstructure:",squash"`
}

// LoadOptions controls where Load reads from.
type LoadOptions struct {
	// File is an optional YAML file with the same keys.
	File string
	// Flags are bound on top of the environment when set.
	Flags *pflag.FlagSet
}

// Load reads the configuration from the environment, the optional file and
// flags, applies defaults and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	v.SetDefault(KeyVersion, DefaultVersion)
	v.SetDefault(KeyChecksums, "")
	v.SetDefault(KeyWrapper, false)
	v.SetDefault(KeyCache, false)
	v.SetDefault(KeyConfigPath, DefaultConfigPath)
	v.SetDefault(KeyPluginDir, "")
	v.SetDefault(KeySigningKey, "")
	v.SetDefault(KeyDownloadBaseURL, DefaultDownloadBaseURL)
	v.SetDefault(KeyWrapperPath, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, logging.FormatActions)
	v.SetDefault(KeyLogFile, "")
	v.SetDefault("log_max_size", 10)
	v.SetDefault("log_max_age", 7)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("log_compress", false)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	// Inputs with a fallback to the runner's own variables. The first
	// non-empty variable wins.
	if err := v.BindEnv(KeyGitHubToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind %s: %w", KeyGitHubToken, err)
	}
	if err := v.BindEnv(KeyAPIURL, EnvPrefix+"_API_URL", "GITHUB_API_URL"); err != nil {
		return nil, fmt.Errorf("bind %s: %w", KeyAPIURL, err)
	}

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	if config.APIURL == "" {
		config.APIURL = DefaultAPIURL
	}
	if strings.TrimSpace(config.Version) == "" {
		config.Version = DefaultVersion
	}
	if strings.TrimSpace(config.ConfigPath) == "" {
		config.ConfigPath = DefaultConfigPath
	}
	config.Logging.Debug = os.Getenv("RUNNER_DEBUG") == "1"

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks values that would otherwise fail late in the run.
func (c *Config) Validate() error {
	for key, raw := range map[string]string{
		KeyDownloadBaseURL: c.DownloadBaseURL,
		KeyAPIURL:          c.APIURL,
	} {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		if u.Scheme != "https" && u.Scheme != "http" {
			return fmt.Errorf("invalid %s %q: must be an http(s) URL", key, raw)
		}
	}

	switch strings.ToLower(c.Logging.Format) {
	case logging.FormatActions, logging.FormatText, logging.FormatJSON:
	default:
		return fmt.Errorf("invalid %s %q: must be one of actions, text, json", KeyLogFormat, c.Logging.Format)
	}

	if c.SigningKey != "" {
		if _, err := os.Stat(c.SigningKey); err != nil {
			return fmt.Errorf("invalid %s: %w", KeySigningKey, err)
		}
	}

	return nil
}

// bindFlags binds kebab-case flags (--tflint-version) to their snake_case
// input keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(f *pflag.Flag) {
		if bindErr != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("bind flag %s: %w", f.Name, err)
		}
	})
	return bindErr
}
