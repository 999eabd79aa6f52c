// Package config loads and validates the rigsrv configuration file. The
// file is TOML with one section per subsystem; values are validated at load
// time so the rest of the service can read them without checking.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// ImportConfig holds ingestion-related configuration.
type ImportConfig struct {
	MaxBatchRows     int    `toml:"max_batch_rows"`    // Upper bound on rows per batch
	PlaceholderImage string `toml:"placeholder_image"` // Image URL used when a part has none
	DefaultVendor    string `toml:"default_vendor"`    // Vendor label when the source has none
	ArchivePayloads  bool   `toml:"archive_payloads"`  // Keep compressed copies of imported payloads
}

// ScraperConfig holds the client configuration for the external scraping
// service.
type ScraperConfig struct {
	BaseURL           string `toml:"base_url"`            // Scraper service endpoint
	UserAgent         string `toml:"user_agent"`          // User-Agent sent with scrape calls
	RequestTimeout    string `toml:"request_timeout"`     // Per-request timeout
	RequestsPerMinute int    `toml:"requests_per_minute"` // Politeness rate limit
	MaxPages          int    `toml:"max_pages"`           // Upper bound on pages per scrape
}

// GetRequestTimeout returns the per-request timeout as time.Duration.
func (s *ScraperConfig) GetRequestTimeout() (time.Duration, error) {
	return ParseDuration(s.RequestTimeout)
}

// GetRequestTimeoutOrDefault returns the per-request timeout, panicking on
// an invalid value. Validation at load time makes the panic unreachable.
func (s *ScraperConfig) GetRequestTimeoutOrDefault() time.Duration {
	duration, err := s.GetRequestTimeout()
	if err != nil {
		panic(fmt.Sprintf("invalid scraper request timeout: %v", err))
	}
	return duration
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	AdminPasswordHash string `toml:"admin_password_hash"` // bcrypt hash of the admin password
	TokenSecret       string `toml:"token_secret"`        // HMAC secret for admin tokens
	TokenValidity     string `toml:"token_validity"`      // Token lifetime
	ClockSkew         string `toml:"clock_skew"`          // Allowed clock skew for time claims
	TestAdminToken    string `toml:"test_admin_token"`    // Fixed token honored only under TestInit
}

// GetTokenValidity returns the token lifetime as time.Duration.
func (a *AuthConfig) GetTokenValidity() (time.Duration, error) {
	return ParseDuration(a.TokenValidity)
}

// GetTokenValidityOrDefault returns the token lifetime, panicking on an
// invalid value.
func (a *AuthConfig) GetTokenValidityOrDefault() time.Duration {
	duration, err := a.GetTokenValidity()
	if err != nil {
		panic(fmt.Sprintf("invalid token validity: %v", err))
	}
	return duration
}

// GetClockSkew returns the allowed clock skew as time.Duration.
func (a *AuthConfig) GetClockSkew() (time.Duration, error) {
	return ParseDuration(a.ClockSkew)
}

// GetClockSkewOrDefault returns the allowed clock skew, panicking on an
// invalid value.
func (a *AuthConfig) GetClockSkewOrDefault() time.Duration {
	duration, err := a.GetClockSkew()
	if err != nil {
		panic(fmt.Sprintf("invalid clock skew: %v", err))
	}
	return duration
}

// LoginEnabled reports whether the admin login is configured.
func (a *AuthConfig) LoginEnabled() bool {
	return a.AdminPasswordHash != "" && a.TokenSecret != ""
}

// ConfigParam holds all configuration parameters for the catalog service.
type ConfigParam struct {
	FormatVersion string `toml:"format_version"` // Version of this configuration file format

	// Server configuration
	ServerHostName     string `toml:"server_hostname"`       // Hostname for the server
	ServerPort         string `toml:"server_port"`           // Port for the API server
	HandleCORS         bool   `toml:"handle_cors"`           // Whether to handle CORS
	MaxRequestBodySize int64  `toml:"max_request_body_size"` // Maximum size of request body in bytes
	DefaultLogLevel    string `toml:"default_log_level"`     // Log level applied at startup

	// Database configuration
	DB struct {
		Backend  string `toml:"backend"`  // "postgresql" or "memory"
		Host     string `toml:"host"`     // Database host
		Port     int    `toml:"port"`     // Database port
		DBName   string `toml:"dbname"`   // Database name
		User     string `toml:"user"`     // Database user
		Password string `toml:"password"` // Database password
		SSLMode  string `toml:"sslmode"`  // SSL mode for database connection
	} `toml:"db"`

	Import  ImportConfig  `toml:"import"`
	Scraper ScraperConfig `toml:"scraper"`
	Auth    AuthConfig    `toml:"auth"`
}

var cfg *ConfigParam

// Config returns the current configuration.
func Config() *ConfigParam {
	return cfg
}

// DSN returns the database connection string.
func (c *ConfigParam) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host, c.DB.Port, c.DB.User, c.DB.Password, c.DB.DBName, c.DB.SSLMode)
}

// ParseDuration parses a duration string in the format "<number><unit>"
// where unit is one of s, m, h, d, or y.
func ParseDuration(input string) (time.Duration, error) {
	if len(input) < 2 {
		return 0, fmt.Errorf("invalid input format")
	}

	unit := input[len(input)-1:]
	valueStr := input[:len(input)-1]
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", err)
	}

	var duration time.Duration
	switch unit {
	case "s":
		duration = time.Duration(value) * time.Second
	case "m":
		duration = time.Duration(value) * time.Minute
	case "h":
		duration = time.Duration(value) * time.Hour
	case "d":
		duration = time.Duration(value) * 24 * time.Hour
	case "y":
		duration = time.Duration(value) * 365 * 24 * time.Hour
	default:
		return 0, fmt.Errorf("unknown time unit: %s", unit)
	}

	return duration, nil
}

// ValidateConfig checks that all required configuration values are present
// and valid, filling documented defaults where the file leaves them out.
func ValidateConfig(cfg *ConfigParam) error {
	if err := validateConfigFormatVersion(cfg); err != nil {
		return err
	}
	if err := validateServerConfig(cfg); err != nil {
		return err
	}
	if err := validateDBConfig(cfg); err != nil {
		return err
	}
	if err := validateImportConfig(cfg); err != nil {
		return err
	}
	if err := validateScraperConfig(cfg); err != nil {
		return err
	}
	if err := validateAuthConfig(cfg); err != nil {
		return err
	}
	return nil
}

func validateConfigFormatVersion(cfg *ConfigParam) error {
	if !IsVersionCompatible(cfg.FormatVersion) {
		return fmt.Errorf("unsupported config file format version: %s", cfg.FormatVersion)
	}
	return nil
}

func validateServerConfig(cfg *ConfigParam) error {
	if cfg.ServerPort == "" {
		return fmt.Errorf("server_port is required")
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = 2 << 20
	}
	if cfg.DefaultLogLevel == "" {
		cfg.DefaultLogLevel = "info"
	}
	return nil
}

func validateDBConfig(cfg *ConfigParam) error {
	switch cfg.DB.Backend {
	case "", "postgresql":
		cfg.DB.Backend = "postgresql"
	case "memory":
		return nil
	default:
		return fmt.Errorf("unsupported db.backend: %s", cfg.DB.Backend)
	}
	if cfg.DB.Host == "" {
		return fmt.Errorf("db.host is required")
	}
	if cfg.DB.Port <= 0 {
		return fmt.Errorf("db.port must be positive")
	}
	if cfg.DB.DBName == "" {
		return fmt.Errorf("db.dbname is required")
	}
	if cfg.DB.User == "" {
		return fmt.Errorf("db.user is required")
	}
	if cfg.DB.SSLMode == "" {
		return fmt.Errorf("db.sslmode is required")
	}
	return nil
}

func validateImportConfig(cfg *ConfigParam) error {
	if cfg.Import.MaxBatchRows < 0 {
		return fmt.Errorf("import.max_batch_rows must not be negative")
	}
	if cfg.Import.MaxBatchRows == 0 {
		cfg.Import.MaxBatchRows = 200
	}
	if cfg.Import.PlaceholderImage == "" {
		cfg.Import.PlaceholderImage = "https://placehold.co/400x300?text=No+Image"
	}
	if cfg.Import.DefaultVendor == "" {
		cfg.Import.DefaultVendor = "catalog-import"
	}
	return nil
}

func validateScraperConfig(cfg *ConfigParam) error {
	if cfg.Scraper.RequestTimeout == "" {
		cfg.Scraper.RequestTimeout = "20s"
	}
	if _, err := ParseDuration(cfg.Scraper.RequestTimeout); err != nil {
		return fmt.Errorf("invalid scraper.request_timeout: %v", err)
	}
	if cfg.Scraper.RequestsPerMinute <= 0 {
		cfg.Scraper.RequestsPerMinute = 60
	}
	if cfg.Scraper.MaxPages <= 0 {
		cfg.Scraper.MaxPages = 5
	}
	if cfg.Scraper.UserAgent == "" {
		cfg.Scraper.UserAgent = "rigforge-scraper/" + Version
	}
	return nil
}

func validateAuthConfig(cfg *ConfigParam) error {
	if cfg.Auth.TokenValidity == "" {
		cfg.Auth.TokenValidity = "12h"
	}
	if _, err := ParseDuration(cfg.Auth.TokenValidity); err != nil {
		return fmt.Errorf("invalid auth.token_validity: %v", err)
	}
	if cfg.Auth.ClockSkew == "" {
		cfg.Auth.ClockSkew = "2m"
	}
	if _, err := ParseDuration(cfg.Auth.ClockSkew); err != nil {
		return fmt.Errorf("invalid auth.clock_skew: %v", err)
	}
	if cfg.Auth.TokenSecret != "" && len(cfg.Auth.TokenSecret) < 32 {
		return fmt.Errorf("auth.token_secret must be at least 32 bytes")
	}
	return nil
}

// LoadConfig loads configuration from a file.
func LoadConfig(filename string) error {
	if filename == "" {
		return fmt.Errorf("config filename is required")
	}

	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	cfg = &ConfigParam{}
	if _, err := toml.Decode(string(content), cfg); err != nil {
		return fmt.Errorf("error parsing config file: %v", err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	return nil
}

var isTest = false

// IsTest reports whether the process is running under TestInit.
func IsTest() bool {
	return isTest
}

// SetTestMode overrides the test flag.
func SetTestMode(test bool) {
	isTest = test
}

// TestInit loads the checked-in default configuration by walking up from
// the working directory to the module root. Tests call it before touching
// any configured subsystem.
func TestInit() {
	isTest = true
	wd, err := os.Getwd()
	if err != nil {
		panic(err)
	}

	projectRoot := wd
	for {
		if _, err := os.Stat(filepath.Join(projectRoot, "go.mod")); err == nil {
			break
		}
		parent := filepath.Dir(projectRoot)
		if parent == projectRoot {
			panic("could not find project root (go.mod)")
		}
		projectRoot = parent
	}
	if err := LoadConfig(filepath.Join(projectRoot, "rigsrv.conf")); err != nil {
		panic(fmt.Errorf("error loading config: %v", err))
	}
}
