// internal/config/config.go
//
// Configuration for the onboarding client. Settings resolve in three
// layers: built-in defaults, then onboard.yaml in the working directory,
// then ONBOARD_* environment variables. The per-field attachment strategy
// table lives here so the inline-vs-eager split is explicit configuration
// rather than an accidental code path.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigFileName is the YAML file read from the working directory.
const ConfigFileName = "onboard.yaml"

// Attachment strategies. Inline fields travel as raw binary parts inside
// the terminal signup submission; eager fields are uploaded to the object
// store as soon as they are selected and only the durable reference is
// submitted.
const (
	StrategyInline = "inline"
	StrategyEager  = "eager"
)

const (
	defaultBackendURL  = "http://localhost:8000"
	defaultUploadURL   = "https://api.cloudinary.com/v1_1/%s/auto/upload"
	defaultFolder      = "cv"
	defaultMaxSizeMB   = 15
	defaultCVStrategy  = StrategyEager
	defaultPtfStrategy = StrategyInline
)

const defaultConfigYAML = `# onboard client configuration
version: 1

backend:
  # Owning backend for user records (signup, login, step updates).
  base_url: http://localhost:8000

cloud:
  # Object store namespace. The secret stays local: it is only used by the
  # in-process edge server to sign upload credentials.
  name: ""
  api_key: ""
  secret: ""
  folder: cv
  # upload_url may contain one %s, replaced with the cloud name.
  upload_url: https://api.cloudinary.com/v1_1/%s/auto/upload
  # Set signature_url to use a remote credential endpoint instead of the
  # in-process edge server.
  signature_url: ""

edge:
  enabled: true
  host: 127.0.0.1
  port: 8787

upload:
  max_size_mb: 15
  # Per file field: inline (raw bytes inside the final submission) or
  # eager (upload to the store on selection, link the URL).
  strategies:
    cv_file: eager
    portfolio_file: inline
`

// BackendConfig locates the owning backend.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
}

// CloudConfig identifies the object store namespace and, optionally, a
// remote credential endpoint.
type CloudConfig struct {
	Name         string `yaml:"name"`
	APIKey       string `yaml:"api_key"`
	Secret       string `yaml:"secret,omitempty"`
	Folder       string `yaml:"folder"`
	UploadURL    string `yaml:"upload_url"`
	SignatureURL string `yaml:"signature_url,omitempty"`
}

// EdgeConfig controls the in-process credential issuer.
type EdgeConfig struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	Host    string `yaml:"host,omitempty"`
	Port    int    `yaml:"port,omitempty"`
}

// UploadConfig bounds direct uploads and tags each file field with its
// attachment strategy.
type UploadConfig struct {
	MaxSizeMB  int               `yaml:"max_size_mb"`
	Strategies map[string]string `yaml:"strategies"`
}

// FileConfig models onboard.yaml.
type FileConfig struct {
	Version int           `yaml:"version"`
	Backend BackendConfig `yaml:"backend"`
	Cloud   CloudConfig   `yaml:"cloud"`
	Edge    EdgeConfig    `yaml:"edge"`
	Upload  UploadConfig  `yaml:"upload"`
}

// Config holds the resolved runtime configuration.
type Config struct {
	// Dir is the directory the client was started from; onboard.yaml and
	// the session log live here.
	Dir string

	File FileConfig
}

// EnsureConfigFile writes a commented starter config if none exists.
func EnsureConfigFile(dir string) error {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// New loads configuration for the given directory.
func New(dir string) (*Config, error) {
	cfg := &Config{
		Dir:  dir,
		File: defaultFileConfig(),
	}
	if err := cfg.load(); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	cfg.File.normalize()
	if err := cfg.File.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// Path returns the on-disk location of onboard.yaml.
func (c *Config) Path() string {
	return filepath.Join(c.Dir, ConfigFileName)
}

// LogPath returns the session log location.
func (c *Config) LogPath() string {
	return filepath.Join(c.Dir, "logs", "onboard.log")
}

// Strategy returns the attachment strategy for a file field.
func (c *Config) Strategy(field string) string {
	if s, ok := c.File.Upload.Strategies[field]; ok {
		return s
	}
	return StrategyInline
}

// SetStrategy updates a field's attachment strategy and persists the
// change so the dual path stays auditable across sessions.
func (c *Config) SetStrategy(field, strategy string) error {
	field = strings.TrimSpace(field)
	if field == "" {
		return fmt.Errorf("config: field name is required")
	}
	strategy = strings.ToLower(strings.TrimSpace(strategy))
	if strategy != StrategyInline && strategy != StrategyEager {
		return fmt.Errorf("config: strategy must be %q or %q", StrategyInline, StrategyEager)
	}
	if c.File.Upload.Strategies == nil {
		c.File.Upload.Strategies = map[string]string{}
	}
	c.File.Upload.Strategies[field] = strategy
	return c.Save()
}

// MaxUploadBytes returns the client-side upload ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.File.Upload.MaxSizeMB) * 1024 * 1024
}

// Save writes the current configuration back to onboard.yaml.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.File.normalize()
	if err := c.File.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	data, err := yaml.Marshal(c.File)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if err := os.WriteFile(c.Path(), data, 0o644); err != nil {
		return fmt.Errorf("config: write: %w", err)
	}
	return nil
}

func (c *Config) load() error {
	path := c.Path()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}
	var parsed FileConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	parsed.applyDefaults()
	c.File = parsed
	return nil
}

func (c *Config) applyEnvOverrides() {
	overrides := []struct {
		env    string
		target *string
	}{
		{"ONBOARD_BACKEND_URL", &c.File.Backend.BaseURL},
		{"ONBOARD_CLOUD_NAME", &c.File.Cloud.Name},
		{"ONBOARD_CLOUD_API_KEY", &c.File.Cloud.APIKey},
		{"ONBOARD_CLOUD_SECRET", &c.File.Cloud.Secret},
		{"ONBOARD_CLOUD_FOLDER", &c.File.Cloud.Folder},
		{"ONBOARD_UPLOAD_URL", &c.File.Cloud.UploadURL},
		{"ONBOARD_SIGNATURE_URL", &c.File.Cloud.SignatureURL},
	}
	for _, o := range overrides {
		if value := strings.TrimSpace(os.Getenv(o.env)); value != "" {
			*o.target = value
		}
	}
	if value := strings.TrimSpace(os.Getenv("ONBOARD_MAX_UPLOAD_MB")); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			c.File.Upload.MaxSizeMB = parsed
		}
	}
}

func defaultFileConfig() FileConfig {
	fc := FileConfig{}
	fc.applyDefaults()
	return fc
}

func (fc *FileConfig) applyDefaults() {
	if fc.Version == 0 {
		fc.Version = 1
	}
	if fc.Backend.BaseURL == "" {
		fc.Backend.BaseURL = defaultBackendURL
	}
	if fc.Cloud.UploadURL == "" {
		fc.Cloud.UploadURL = defaultUploadURL
	}
	if fc.Cloud.Folder == "" {
		fc.Cloud.Folder = defaultFolder
	}
	if fc.Upload.MaxSizeMB == 0 {
		fc.Upload.MaxSizeMB = defaultMaxSizeMB
	}
	if fc.Upload.Strategies == nil {
		fc.Upload.Strategies = map[string]string{}
	}
	if _, ok := fc.Upload.Strategies["cv_file"]; !ok {
		fc.Upload.Strategies["cv_file"] = defaultCVStrategy
	}
	if _, ok := fc.Upload.Strategies["portfolio_file"]; !ok {
		fc.Upload.Strategies["portfolio_file"] = defaultPtfStrategy
	}
}

func (fc *FileConfig) normalize() {
	fc.applyDefaults()
	fc.Backend.BaseURL = strings.TrimRight(strings.TrimSpace(fc.Backend.BaseURL), "/")
	fc.Cloud.Name = strings.TrimSpace(fc.Cloud.Name)
	fc.Cloud.APIKey = strings.TrimSpace(fc.Cloud.APIKey)
	fc.Cloud.Folder = strings.TrimSpace(fc.Cloud.Folder)
	fc.Cloud.UploadURL = strings.TrimSpace(fc.Cloud.UploadURL)
	fc.Cloud.SignatureURL = strings.TrimSpace(fc.Cloud.SignatureURL)
	for field, strategy := range fc.Upload.Strategies {
		fc.Upload.Strategies[field] = strings.ToLower(strings.TrimSpace(strategy))
	}
}

func (fc FileConfig) validate() error {
	if fc.Version < 1 {
		return fmt.Errorf("version must be >= 1")
	}
	if fc.Backend.BaseURL == "" {
		return fmt.Errorf("backend.base_url is required")
	}
	if fc.Upload.MaxSizeMB <= 0 {
		return fmt.Errorf("upload.max_size_mb must be positive")
	}
	for field, strategy := range fc.Upload.Strategies {
		if strategy != StrategyInline && strategy != StrategyEager {
			return fmt.Errorf("upload.strategies[%s]: unknown strategy %q", field, strategy)
		}
	}
	return nil
}
