package common

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read when SHARE_API_CONFIG is not set. A missing
// default file is not an error.
const DefaultConfigFile = "share-mcp.toml"

// ErrNoBaseURL is returned when neither the tool argument nor the
// configuration supplies a base URL.
var ErrNoBaseURL = errors.New("No base_url provided. Set SHARE_API_BASE_URL or pass base_url argument.")

// Config represents the settings for one tool invocation.
// A Config is built by LoadConfig and is not mutated afterwards; overrides
// produce a copy via WithOverrides.
type Config struct {
	Share    ShareConfig    `toml:"share" yaml:"share"`
	Markdown MarkdownConfig `toml:"markdown" yaml:"markdown"`
	Logging  LoggingConfig  `toml:"logging" yaml:"logging"`
}

// ShareConfig holds the connection settings for the share API
type ShareConfig struct {
	BaseURL          string        `toml:"base_url" yaml:"base_url" validate:"omitempty,url"`
	DownloadDir      string        `toml:"download_dir" yaml:"download_dir" validate:"required"`
	AuthUser         string        `toml:"auth_user" yaml:"auth_user"`
	AuthPassword     string        `toml:"auth_password" yaml:"auth_password"`
	ProjectID        string        `toml:"project_id" yaml:"project_id" validate:"omitempty,numeric"`
	RewriteLocalhost bool          `toml:"rewrite_localhost" yaml:"rewrite_localhost"` // Rewrite ://localhost to ://127.0.0.1
	Timeout          time.Duration `toml:"timeout" yaml:"timeout"`                     // 0 = no client timeout
}

// MarkdownConfig controls the content.md side artifacts
type MarkdownConfig struct {
	ConvertHTML bool `toml:"convert_html" yaml:"convert_html"` // Convert HTML body values to markdown
	RenderHTML  bool `toml:"render_html" yaml:"render_html"`   // Also write content.html next to content.md
}

// LoggingConfig has one level per sink: the log file and stderr
type LoggingConfig struct {
	Level        string `toml:"level" yaml:"level" validate:"oneof=debug info warn error"`
	File         string `toml:"file" yaml:"file"` // Empty = share-mcp.log next to the executable
	Console      bool   `toml:"console" yaml:"console"`
	ConsoleLevel string `toml:"console_level" yaml:"console_level" validate:"oneof=debug info warn error"`
}

// NewDefaultConfig creates a configuration with default values
func NewDefaultConfig() *Config {
	return &Config{
		Share: ShareConfig{
			DownloadDir:      "./downloads",
			RewriteLocalhost: true,
		},
		Logging: LoggingConfig{
			Level:        "info",
			Console:      true,
			ConsoleLevel: "warn",
		},
	}
}

// LoadConfig loads configuration with priority: defaults -> file -> env.
// An empty path falls back to SHARE_API_CONFIG, then DefaultConfigFile.
func LoadConfig(path string) (*Config, error) {
	config := NewDefaultConfig()

	explicit := true
	if path == "" {
		path = os.Getenv("SHARE_API_CONFIG")
	}
	if path == "" {
		path = DefaultConfigFile
		explicit = false
	}

	if err := loadConfigFile(config, path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			err = nil
		}
		if err != nil {
			return nil, err
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// loadConfigFile merges a TOML or YAML file into config, by extension
func loadConfigFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, config)
	default:
		err = toml.Unmarshal(data, config)
	}
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) error {
	if v, ok := os.LookupEnv("SHARE_API_BASE_URL"); ok {
		config.Share.BaseURL = v
	}
	if v := os.Getenv("SHARE_API_DOWNLOAD_DIR"); v != "" {
		config.Share.DownloadDir = v
	}
	if v, ok := os.LookupEnv("SHARE_API_AUTH_USER"); ok {
		config.Share.AuthUser = v
	}
	if v, ok := os.LookupEnv("SHARE_API_AUTH_PASSWORD"); ok {
		config.Share.AuthPassword = v
	}
	if v, ok := os.LookupEnv("SHARE_API_PROJECT_ID"); ok {
		config.Share.ProjectID = strings.TrimSpace(v)
	}
	if v := os.Getenv("SHARE_API_REWRITE_LOCALHOST"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SHARE_API_REWRITE_LOCALHOST %q: %w", v, err)
		}
		config.Share.RewriteLocalhost = b
	}
	if v := os.Getenv("SHARE_API_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid SHARE_API_TIMEOUT %q: %w", v, err)
		}
		config.Share.Timeout = d
	}

	if v := os.Getenv("SHARE_API_CONVERT_HTML"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SHARE_API_CONVERT_HTML %q: %w", v, err)
		}
		config.Markdown.ConvertHTML = b
	}
	if v := os.Getenv("SHARE_API_RENDER_HTML"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SHARE_API_RENDER_HTML %q: %w", v, err)
		}
		config.Markdown.RenderHTML = b
	}

	if v := os.Getenv("SHARE_API_LOG_LEVEL"); v != "" {
		config.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("SHARE_API_LOG_CONSOLE_LEVEL"); v != "" {
		config.Logging.ConsoleLevel = strings.ToLower(v)
	}
	if v := os.Getenv("SHARE_API_LOG_FILE"); v != "" {
		config.Logging.File = v
	}
	if v := os.Getenv("SHARE_API_LOG_CONSOLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid SHARE_API_LOG_CONSOLE %q: %w", v, err)
		}
		config.Logging.Console = b
	}
	return nil
}

// Validate checks the configuration using go-playground/validator tags
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// WithOverrides returns a copy of the config with the non-empty call-site
// overrides applied. The receiver is left untouched.
func (c *Config) WithOverrides(baseURL, downloadDir string) *Config {
	clone := *c
	if baseURL != "" {
		clone.Share.BaseURL = baseURL
	}
	if downloadDir != "" {
		clone.Share.DownloadDir = downloadDir
	}
	return &clone
}

// ResolveBaseURL returns the tool argument if set, else the configured base URL
func (c *Config) ResolveBaseURL(arg string) (string, error) {
	if arg != "" {
		return arg, nil
	}
	if c.Share.BaseURL != "" {
		return c.Share.BaseURL, nil
	}
	return "", ErrNoBaseURL
}

// HasBasicAuth reports whether both basic-auth credentials are configured
func (c *Config) HasBasicAuth() bool {
	return c.Share.AuthUser != "" && c.Share.AuthPassword != ""
}

// DefaultProjectID returns the configured project id used to filter entry
// listings. ok is false when none is configured.
func (c *Config) DefaultProjectID() (id int, ok bool, err error) {
	if c.Share.ProjectID == "" {
		return 0, false, nil
	}
	id, err = strconv.Atoi(c.Share.ProjectID)
	if err != nil {
		return 0, false, fmt.Errorf("invalid SHARE_API_PROJECT_ID %q: %w", c.Share.ProjectID, err)
	}
	return id, true, nil
}
