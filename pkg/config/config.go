package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Write modes accepted by the spreadsheet values API.
const (
	WriteModeRaw         = "RAW"
	WriteModeUserEntered = "USER_ENTERED"
)

// Sheet schema versions. The legacy schema has no "Posteado en" column.
const (
	SchemaVersionLegacy  = 8
	SchemaVersionCurrent = 9
)

// Config holds all configuration options for the post tracker
type Config struct {
	// Scraping actor settings
	Apify ApifyConfig `yaml:"apify" json:"apify"`

	// Spreadsheet record store settings
	Sheets SheetsConfig `yaml:"sheets" json:"sheets"`

	// Image upload settings
	FTP FTPConfig `yaml:"ftp" json:"ftp"`

	// Web server settings
	Server ServerConfig `yaml:"server" json:"server"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// ApifyConfig holds the scraping actor client configuration
type ApifyConfig struct {
	Token           string        `yaml:"token" json:"token"`
	BaseURL         string        `yaml:"base_url" json:"base_url"`
	Actor           string        `yaml:"actor" json:"actor"`
	ResultsLimit    int           `yaml:"results_limit" json:"results_limit"`
	SkipPinnedPosts bool          `yaml:"skip_pinned_posts" json:"skip_pinned_posts"`
	PollInterval    time.Duration `yaml:"poll_interval" json:"poll_interval"`
	MaxPollAttempts int           `yaml:"max_poll_attempts" json:"max_poll_attempts"`
	RequestTimeout  time.Duration `yaml:"request_timeout" json:"request_timeout"`
	MaxRetries      int           `yaml:"max_retries" json:"max_retries"`
}

// SheetsConfig holds the spreadsheet store configuration
type SheetsConfig struct {
	CredentialsPath string `yaml:"credentials_path" json:"credentials_path"`
	SpreadsheetID   string `yaml:"spreadsheet_id" json:"spreadsheet_id"`
	DataSheet       string `yaml:"data_sheet" json:"data_sheet"`
	URLSheet        string `yaml:"url_sheet" json:"url_sheet"`
	SchemaVersion   int    `yaml:"schema_version" json:"schema_version"`
	WriteMode       string `yaml:"write_mode" json:"write_mode"`
}

// FTPConfig holds the image store configuration
type FTPConfig struct {
	Host      string        `yaml:"host" json:"host"`
	Port      int           `yaml:"port" json:"port"`
	User      string        `yaml:"user" json:"user"`
	Password  string        `yaml:"password" json:"password"`
	RemoteDir string        `yaml:"remote_dir" json:"remote_dir"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout"`
}

// ServerConfig holds the web entry point configuration
type ServerConfig struct {
	Port     string `yaml:"port" json:"port"`
	Debug    bool   `yaml:"debug" json:"debug"`
	Schedule string `yaml:"schedule" json:"schedule"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Apify: ApifyConfig{
			BaseURL:         "https://api.apify.com",
			Actor:           "apify~instagram-post-scraper",
			ResultsLimit:    1,
			SkipPinnedPosts: false,
			PollInterval:    5 * time.Second,
			MaxPollAttempts: 60,
			RequestTimeout:  5 * time.Minute,
			MaxRetries:      3,
		},
		Sheets: SheetsConfig{
			CredentialsPath: "credentials.json",
			DataSheet:       "Posts",
			URLSheet:        "Urls",
			SchemaVersion:   SchemaVersionCurrent,
			WriteMode:       WriteModeUserEntered,
		},
		FTP: FTPConfig{
			Port:      21,
			RemoteDir: "posts",
			Timeout:   30 * time.Second,
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if token := os.Getenv("IGTRACKER_APIFY_TOKEN"); token != "" {
		c.Apify.Token = token
	}
	if baseURL := os.Getenv("IGTRACKER_APIFY_BASE_URL"); baseURL != "" {
		c.Apify.BaseURL = baseURL
	}
	if actor := os.Getenv("IGTRACKER_APIFY_ACTOR"); actor != "" {
		c.Apify.Actor = actor
	}

	if creds := os.Getenv("IGTRACKER_SHEETS_CREDENTIALS"); creds != "" {
		c.Sheets.CredentialsPath = creds
	}
	if id := os.Getenv("IGTRACKER_SPREADSHEET_ID"); id != "" {
		c.Sheets.SpreadsheetID = id
	}
	if sheet := os.Getenv("IGTRACKER_DATA_SHEET"); sheet != "" {
		c.Sheets.DataSheet = sheet
	}
	if sheet := os.Getenv("IGTRACKER_URL_SHEET"); sheet != "" {
		c.Sheets.URLSheet = sheet
	}
	if schema := os.Getenv("IGTRACKER_SCHEMA_VERSION"); schema != "" {
		if val, err := strconv.Atoi(schema); err == nil {
			c.Sheets.SchemaVersion = val
		}
	}

	if host := os.Getenv("IGTRACKER_FTP_HOST"); host != "" {
		c.FTP.Host = host
	}
	if user := os.Getenv("IGTRACKER_FTP_USER"); user != "" {
		c.FTP.User = user
	}
	if pass := os.Getenv("IGTRACKER_FTP_PASSWORD"); pass != "" {
		c.FTP.Password = pass
	}

	if port := os.Getenv("IGTRACKER_PORT"); port != "" {
		c.Server.Port = port
	}
	if schedule := os.Getenv("IGTRACKER_SCHEDULE"); schedule != "" {
		c.Server.Schedule = schedule
	}

	if logLevel := os.Getenv("IGTRACKER_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	// Check in order of precedence
	locations := []string{
		".igtracker.yaml",
		".igtracker.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igtracker", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igtracker", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igtracker.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igtracker.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Apify.Token == "" {
		errs = append(errs, errors.New("Apify API token is required"))
	}
	if c.Apify.Actor == "" {
		errs = append(errs, errors.New("Apify actor name is required"))
	}
	if c.Apify.PollInterval <= 0 {
		errs = append(errs, errors.New("poll interval must be positive"))
	}
	if c.Apify.MaxPollAttempts <= 0 {
		errs = append(errs, errors.New("max poll attempts must be positive"))
	}
	if c.Apify.MaxRetries < 0 {
		errs = append(errs, errors.New("max retries cannot be negative"))
	}

	if c.Sheets.SpreadsheetID == "" {
		errs = append(errs, errors.New("spreadsheet ID is required"))
	}
	if c.Sheets.CredentialsPath == "" {
		errs = append(errs, errors.New("Google credentials path is required"))
	}
	if c.Sheets.DataSheet == "" {
		errs = append(errs, errors.New("data sheet name is required"))
	}
	if c.Sheets.SchemaVersion != SchemaVersionLegacy && c.Sheets.SchemaVersion != SchemaVersionCurrent {
		errs = append(errs, errors.New("schema version must be 8 or 9"))
	}
	switch c.Sheets.WriteMode {
	case WriteModeRaw, WriteModeUserEntered:
	default:
		errs = append(errs, errors.New("write mode must be RAW or USER_ENTERED"))
	}

	if c.FTP.Host == "" {
		errs = append(errs, errors.New("FTP host is required"))
	}
	if c.FTP.User == "" {
		errs = append(errs, errors.New("FTP user is required"))
	}
	if c.FTP.Port <= 0 {
		errs = append(errs, errors.New("FTP port must be positive"))
	}

	// Validate logging
	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if token, ok := flags["apify-token"].(string); ok && token != "" {
		c.Apify.Token = token
	}
	if id, ok := flags["spreadsheet-id"].(string); ok && id != "" {
		c.Sheets.SpreadsheetID = id
	}
	if creds, ok := flags["credentials"].(string); ok && creds != "" {
		c.Sheets.CredentialsPath = creds
	}
	if host, ok := flags["ftp-host"].(string); ok && host != "" {
		c.FTP.Host = host
	}
	if port, ok := flags["port"].(string); ok && port != "" {
		c.Server.Port = port
	}
	if schedule, ok := flags["schedule"].(string); ok && schedule != "" {
		c.Server.Schedule = schedule
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence
// Precedence order: Command line flags > Environment variables > .env file > Config file > Defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// Try to load .env files (don't fail if they don't exist)
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igtracker.env"))

	// Start with defaults
	config := DefaultConfig()

	// Load from config file
	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	// Override with environment variables (includes values from .env)
	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Override with command line flags
	config.MergeCommandLineFlags(flags)

	// Validate final configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
