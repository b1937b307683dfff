package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/runger/tubedash/internal/youtube"
)

// Config represents the tubedash configuration.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Search  SearchConfig  `yaml:"search"`
	Export  ExportConfig  `yaml:"export"`
	UI      UIConfig      `yaml:"ui"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
}

// APIConfig holds upstream API settings.
type APIConfig struct {
	BaseURL           string  `yaml:"base_url"`            // YouTube Data API v3 root
	TimeoutMs         int     `yaml:"timeout_ms"`          // Per-request HTTP timeout
	RequestsPerSecond float64 `yaml:"requests_per_second"` // Client-side rate limit (0 = unlimited)
}

// SearchConfig holds search defaults.
type SearchConfig struct {
	DefaultOrder string `yaml:"default_order"` // date, rating, relevance, title, viewCount
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	Dir      string `yaml:"dir"`       // Target directory (empty = working directory)
	FileName string `yaml:"file_name"` // CSV file name
}

// UIConfig holds presentation settings.
type UIConfig struct {
	TagLimit    int `yaml:"tag_limit"`    // Tags shown per card (0 = all)
	TableHeight int `yaml:"table_height"` // Rows in the table view (0 = fit terminal)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file for the dashboard (overrides default)
}

// StorageConfig holds local state settings.
type StorageConfig struct {
	DBPath string `yaml:"db_path"` // SQLite database path (overrides default)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           youtube.DefaultBaseURL,
			TimeoutMs:         15000,
			RequestsPerSecond: 5,
		},
		Search: SearchConfig{
			DefaultOrder: string(youtube.OrderRelevance),
		},
		Export: ExportConfig{
			FileName: "youtube_results.csv",
		},
		UI: UIConfig{
			TagLimit: 6,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file.
// If the file doesn't exist, returns default configuration.
// Environment variable overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key.
// For example: "api.timeout_ms" or "ui.tag_limit"
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "api":
		return c.getAPIField(field)
	case "search":
		return c.getSearchField(field)
	case "export":
		return c.getExportField(field)
	case "ui":
		return c.getUIField(field)
	case "log":
		return c.getLogField(field)
	case "storage":
		return c.getStorageField(field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "api":
		return c.setAPIField(field, value)
	case "search":
		return c.setSearchField(field, value)
	case "export":
		return c.setExportField(field, value)
	case "ui":
		return c.setUIField(field, value)
	case "log":
		return c.setLogField(field, value)
	case "storage":
		return c.setStorageField(field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (string, string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

func (c *Config) getAPIField(field string) (string, error) {
	switch field {
	case "base_url":
		return c.API.BaseURL, nil
	case "timeout_ms":
		return strconv.Itoa(c.API.TimeoutMs), nil
	case "requests_per_second":
		return strconv.FormatFloat(c.API.RequestsPerSecond, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unknown field: api.%s", field)
	}
}

func (c *Config) setAPIField(field, value string) error {
	switch field {
	case "base_url":
		c.API.BaseURL = value
	case "timeout_ms":
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for timeout_ms: %w", err)
		}
		if v < 0 {
			return errors.New("timeout_ms must be >= 0")
		}
		c.API.TimeoutMs = v
	case "requests_per_second":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid value for requests_per_second: %w", err)
		}
		if v < 0 {
			return errors.New("requests_per_second must be >= 0")
		}
		c.API.RequestsPerSecond = v
	default:
		return fmt.Errorf("unknown field: api.%s", field)
	}
	return nil
}

func (c *Config) getSearchField(field string) (string, error) {
	switch field {
	case "default_order":
		return c.Search.DefaultOrder, nil
	default:
		return "", fmt.Errorf("unknown field: search.%s", field)
	}
}

func (c *Config) setSearchField(field, value string) error {
	switch field {
	case "default_order":
		o, err := youtube.ParseOrder(value)
		if err != nil {
			return err
		}
		c.Search.DefaultOrder = string(o)
	default:
		return fmt.Errorf("unknown field: search.%s", field)
	}
	return nil
}

func (c *Config) getExportField(field string) (string, error) {
	switch field {
	case "dir":
		return c.Export.Dir, nil
	case "file_name":
		return c.Export.FileName, nil
	default:
		return "", fmt.Errorf("unknown field: export.%s", field)
	}
}

func (c *Config) setExportField(field, value string) error {
	switch field {
	case "dir":
		c.Export.Dir = value
	case "file_name":
		if strings.TrimSpace(value) == "" {
			return errors.New("file_name must not be empty")
		}
		c.Export.FileName = value
	default:
		return fmt.Errorf("unknown field: export.%s", field)
	}
	return nil
}

func (c *Config) getUIField(field string) (string, error) {
	switch field {
	case "tag_limit":
		return strconv.Itoa(c.UI.TagLimit), nil
	case "table_height":
		return strconv.Itoa(c.UI.TableHeight), nil
	default:
		return "", fmt.Errorf("unknown field: ui.%s", field)
	}
}

func (c *Config) setUIField(field, value string) error {
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", field, err)
	}
	if v < 0 {
		return fmt.Errorf("%s must be >= 0", field)
	}
	switch field {
	case "tag_limit":
		c.UI.TagLimit = v
	case "table_height":
		c.UI.TableHeight = v
	default:
		return fmt.Errorf("unknown field: ui.%s", field)
	}
	return nil
}

func (c *Config) getLogField(field string) (string, error) {
	switch field {
	case "level":
		return c.Log.Level, nil
	case "file":
		return c.Log.File, nil
	default:
		return "", fmt.Errorf("unknown field: log.%s", field)
	}
}

func (c *Config) setLogField(field, value string) error {
	switch field {
	case "level":
		if !isValidLogLevel(value) {
			return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", value)
		}
		c.Log.Level = value
	case "file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown field: log.%s", field)
	}
	return nil
}

func (c *Config) getStorageField(field string) (string, error) {
	switch field {
	case "db_path":
		return c.Storage.DBPath, nil
	default:
		return "", fmt.Errorf("unknown field: storage.%s", field)
	}
}

func (c *Config) setStorageField(field, value string) error {
	switch field {
	case "db_path":
		c.Storage.DBPath = value
	default:
		return fmt.Errorf("unknown field: storage.%s", field)
	}
	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("api.base_url must not be empty")
	}

	if c.API.TimeoutMs < 0 {
		return errors.New("api.timeout_ms must be >= 0")
	}

	if c.API.RequestsPerSecond < 0 {
		return errors.New("api.requests_per_second must be >= 0")
	}

	if _, err := youtube.ParseOrder(c.Search.DefaultOrder); err != nil {
		return fmt.Errorf("search.default_order: %w", err)
	}

	if strings.TrimSpace(c.Export.FileName) == "" {
		return errors.New("export.file_name must not be empty")
	}

	if c.UI.TagLimit < 0 {
		return errors.New("ui.tag_limit must be >= 0")
	}

	if c.UI.TableHeight < 0 {
		return errors.New("ui.table_height must be >= 0")
	}

	if !isValidLogLevel(c.Log.Level) {
		return fmt.Errorf("log.level must be debug, info, warn, or error (got: %s)", c.Log.Level)
	}

	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("TUBEDASH_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Log.Level = "debug"
		}
	}
	if v := os.Getenv("TUBEDASH_LOG_LEVEL"); v != "" {
		if isValidLogLevel(v) {
			c.Log.Level = v
		}
	}
	if v := os.Getenv("TUBEDASH_API_BASE_URL"); v != "" {
		c.API.BaseURL = v
	}
}

// ListKeys returns the configuration keys accepted by Get and Set.
func ListKeys() []string {
	return []string{
		"api.base_url",
		"api.timeout_ms",
		"api.requests_per_second",
		"search.default_order",
		"export.dir",
		"export.file_name",
		"ui.tag_limit",
		"ui.table_height",
		"log.level",
		"log.file",
		"storage.db_path",
	}
}

// ExportPath joins the export directory and file name.
func (c *Config) ExportPath() string {
	if c.Export.Dir == "" {
		return c.Export.FileName
	}
	return filepath.Join(c.Export.Dir, c.Export.FileName)
}

// DBPath returns the configured database path or the default under paths.
func (c *Config) DBPath(paths *Paths) string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return paths.DatabaseFile()
}

// LogFile returns the configured dashboard log file or the default under paths.
func (c *Config) LogFile(paths *Paths) string {
	if c.Log.File != "" {
		return c.Log.File
	}
	return paths.LogFile()
}
