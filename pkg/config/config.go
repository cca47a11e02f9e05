package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigPath = "/etc/rolesync/config"
	ConfigFileName    = "rolesync.yml"
)

// Config holds all role sync service configuration settings
type Config struct {
	// PlatformURL is the base URL of the community platform API
	PlatformURL string `yaml:"platform_url" json:"platform_url"`

	// PlatformToken is the bot token used against the platform API
	PlatformToken string `yaml:"platform_token" json:"platform_token"`

	// APITokenSecret signs bearer tokens accepted by the HTTP API
	APITokenSecret string `yaml:"api_token_secret" json:"api_token_secret"`

	// BindAddress is the address the HTTP API listens on
	BindAddress string `yaml:"bind_address" json:"bind_address"`

	// Port is the HTTP API listen port
	Port int `yaml:"port" json:"port"`

	// SyncConcurrency bounds concurrent member syncs during a guild run
	SyncConcurrency int `yaml:"sync_concurrency" json:"sync_concurrency"`

	// JoinDelaySeconds is the wait before syncing a freshly joined member
	JoinDelaySeconds int `yaml:"join_delay_seconds" json:"join_delay_seconds"`

	// ReminderAfterDays is when a re-verification reminder becomes due
	ReminderAfterDays int `yaml:"reminder_after_days" json:"reminder_after_days"`

	// ExpireAfterDays is when a verified identity expires
	ExpireAfterDays int `yaml:"expire_after_days" json:"expire_after_days"`

	// CleanupIntervalHours is the period of the expiration sweep
	CleanupIntervalHours int `yaml:"cleanup_interval_hours" json:"cleanup_interval_hours"`

	// AuditEnabled enables RFC5424 audit logging
	AuditEnabled bool `yaml:"audit_enabled" json:"audit_enabled"`

	// sources tracks where each value came from
	sources map[string]string

	// configFilePath is the path to the config file
	configFilePath string
}

// Attribute represents a configuration attribute with its value and source
type Attribute struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Source string `json:"source"`
}

// Global singleton config
var (
	globalConfig *Config
	configMu     sync.RWMutex
)

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	configMu.RLock()
	if globalConfig != nil {
		configMu.RUnlock()
		return globalConfig
	}
	configMu.RUnlock()

	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig == nil {
		cfg, err := Load()
		if err != nil {
			// Return defaults on error
			globalConfig = newDefault()
		} else {
			globalConfig = cfg
		}
	}
	return globalConfig
}

// Reload reloads the configuration from file and environment
func Reload() error {
	cfg, err := Load()
	if err != nil {
		return err
	}

	configMu.Lock()
	globalConfig = cfg
	configMu.Unlock()
	return nil
}

// newDefault returns a config with default values
func newDefault() *Config {
	return &Config{
		BindAddress:          "0.0.0.0",
		Port:                 8080,
		SyncConcurrency:      4,
		JoinDelaySeconds:     2,
		ReminderAfterDays:    365,
		ExpireAfterDays:      395,
		CleanupIntervalHours: 24,
		AuditEnabled:         true,
		sources:              make(map[string]string),
	}
}

// Load loads configuration from file and environment variables
// Environment variables take precedence over file values
func Load() (*Config, error) {
	config := newDefault()

	for _, name := range attributeNames() {
		config.sources[name] = "default"
	}

	configPath := os.Getenv("ROLESYNC_CONFIG_PATH")
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	config.configFilePath = filepath.Join(configPath, ConfigFileName)

	if data, err := os.ReadFile(config.configFilePath); err == nil {
		var fileConfig Config
		if err := yaml.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", config.configFilePath, err)
		}
		config.applyFileConfig(&fileConfig)
	}

	config.applyEnvConfig()

	return config, nil
}

func attributeNames() []string {
	return []string{
		"platform_url", "platform_token", "api_token_secret",
		"bind_address", "port", "sync_concurrency", "join_delay_seconds",
		"reminder_after_days", "expire_after_days", "cleanup_interval_hours",
		"audit_enabled",
	}
}

func (c *Config) applyFileConfig(file *Config) {
	if file.PlatformURL != "" {
		c.PlatformURL = file.PlatformURL
		c.sources["platform_url"] = "file"
	}
	if file.PlatformToken != "" {
		c.PlatformToken = file.PlatformToken
		c.sources["platform_token"] = "file"
	}
	if file.APITokenSecret != "" {
		c.APITokenSecret = file.APITokenSecret
		c.sources["api_token_secret"] = "file"
	}
	if file.BindAddress != "" {
		c.BindAddress = file.BindAddress
		c.sources["bind_address"] = "file"
	}
	if file.Port != 0 {
		c.Port = file.Port
		c.sources["port"] = "file"
	}
	if file.SyncConcurrency != 0 {
		c.SyncConcurrency = file.SyncConcurrency
		c.sources["sync_concurrency"] = "file"
	}
	if file.JoinDelaySeconds != 0 {
		c.JoinDelaySeconds = file.JoinDelaySeconds
		c.sources["join_delay_seconds"] = "file"
	}
	if file.ReminderAfterDays != 0 {
		c.ReminderAfterDays = file.ReminderAfterDays
		c.sources["reminder_after_days"] = "file"
	}
	if file.ExpireAfterDays != 0 {
		c.ExpireAfterDays = file.ExpireAfterDays
		c.sources["expire_after_days"] = "file"
	}
	if file.CleanupIntervalHours != 0 {
		c.CleanupIntervalHours = file.CleanupIntervalHours
		c.sources["cleanup_interval_hours"] = "file"
	}
}

func (c *Config) applyEnvConfig() {
	if val := os.Getenv("ROLESYNC_PLATFORM_URL"); val != "" {
		c.PlatformURL = val
		c.sources["platform_url"] = "environment"
	}
	if val := os.Getenv("ROLESYNC_PLATFORM_TOKEN"); val != "" {
		c.PlatformToken = val
		c.sources["platform_token"] = "environment"
	}
	if val := os.Getenv("ROLESYNC_API_TOKEN_SECRET"); val != "" {
		c.APITokenSecret = val
		c.sources["api_token_secret"] = "environment"
	}
	if val := os.Getenv("ROLESYNC_BIND_ADDRESS"); val != "" {
		c.BindAddress = val
		c.sources["bind_address"] = "environment"
	}
	if val := os.Getenv("PORT"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.Port = i
			c.sources["port"] = "environment"
		}
	}
	if val := os.Getenv("ROLESYNC_SYNC_CONCURRENCY"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.SyncConcurrency = i
			c.sources["sync_concurrency"] = "environment"
		}
	}
	if val := os.Getenv("ROLESYNC_JOIN_DELAY_SECONDS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.JoinDelaySeconds = i
			c.sources["join_delay_seconds"] = "environment"
		}
	}
	if val := os.Getenv("ROLESYNC_REMINDER_AFTER_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ReminderAfterDays = i
			c.sources["reminder_after_days"] = "environment"
		}
	}
	if val := os.Getenv("ROLESYNC_EXPIRE_AFTER_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.ExpireAfterDays = i
			c.sources["expire_after_days"] = "environment"
		}
	}
	if val := os.Getenv("ROLESYNC_CLEANUP_INTERVAL_HOURS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			c.CleanupIntervalHours = i
			c.sources["cleanup_interval_hours"] = "environment"
		}
	}
	if val := os.Getenv("ROLESYNC_AUDIT_ENABLED"); val != "" {
		c.AuditEnabled = val == "true" || val == "1"
		c.sources["audit_enabled"] = "environment"
	}
}

// ConfigFilePath returns the path to the config file
func (c *Config) ConfigFilePath() string {
	return c.configFilePath
}

// Source returns the source of a configuration attribute
func (c *Config) Source(name string) string {
	if c.sources == nil {
		return "default"
	}
	if s, ok := c.sources[name]; ok {
		return s
	}
	return "default"
}

// ListenAddr returns the address:port the HTTP API binds to
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.BindAddress, c.Port)
}

// JoinDelay returns the join delay as a duration
func (c *Config) JoinDelay() time.Duration {
	return time.Duration(c.JoinDelaySeconds) * time.Second
}

// ReminderAfter returns the reminder window as a duration
func (c *Config) ReminderAfter() time.Duration {
	return time.Duration(c.ReminderAfterDays) * 24 * time.Hour
}

// ExpireAfter returns the expiration window as a duration
func (c *Config) ExpireAfter() time.Duration {
	return time.Duration(c.ExpireAfterDays) * 24 * time.Hour
}

// CleanupInterval returns the expiration sweep period as a duration
func (c *Config) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalHours) * time.Hour
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.PlatformURL != "" {
		u, err := url.Parse(c.PlatformURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid platform_url: %s", c.PlatformURL)
		}
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.SyncConcurrency < 1 {
		return fmt.Errorf("invalid sync_concurrency: %d", c.SyncConcurrency)
	}
	if c.ExpireAfterDays <= c.ReminderAfterDays {
		return fmt.Errorf("expire_after_days (%d) must exceed reminder_after_days (%d)",
			c.ExpireAfterDays, c.ReminderAfterDays)
	}
	return nil
}

// Attributes returns all configuration attributes with their values and sources
func (c *Config) Attributes() []Attribute {
	return []Attribute{
		{Name: "platform_url", Value: c.PlatformURL, Source: c.Source("platform_url")},
		{Name: "platform_token", Value: redact(c.PlatformToken), Source: c.Source("platform_token")},
		{Name: "api_token_secret", Value: redact(c.APITokenSecret), Source: c.Source("api_token_secret")},
		{Name: "bind_address", Value: c.BindAddress, Source: c.Source("bind_address")},
		{Name: "port", Value: strconv.Itoa(c.Port), Source: c.Source("port")},
		{Name: "sync_concurrency", Value: strconv.Itoa(c.SyncConcurrency), Source: c.Source("sync_concurrency")},
		{Name: "join_delay_seconds", Value: strconv.Itoa(c.JoinDelaySeconds), Source: c.Source("join_delay_seconds")},
		{Name: "reminder_after_days", Value: strconv.Itoa(c.ReminderAfterDays), Source: c.Source("reminder_after_days")},
		{Name: "expire_after_days", Value: strconv.Itoa(c.ExpireAfterDays), Source: c.Source("expire_after_days")},
		{Name: "cleanup_interval_hours", Value: strconv.Itoa(c.CleanupIntervalHours), Source: c.Source("cleanup_interval_hours")},
		{Name: "audit_enabled", Value: strconv.FormatBool(c.AuditEnabled), Source: c.Source("audit_enabled")},
	}
}

// FormatText returns a text representation of the configuration
func (c *Config) FormatText() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Config file: %s\n\n", c.configFilePath))
	sb.WriteString(fmt.Sprintf("%-26s %-30s %s\n", "NAME", "VALUE", "SOURCE"))
	sb.WriteString(fmt.Sprintf("%-26s %-30s %s\n", "----", "-----", "------"))

	for _, attr := range c.Attributes() {
		value := attr.Value
		if value == "" {
			value = "(not set)"
		}
		sb.WriteString(fmt.Sprintf("%-26s %-30s %s\n", attr.Name, value, attr.Source))
	}
	return sb.String()
}

// FormatJSON returns a JSON representation of the configuration
func (c *Config) FormatJSON() (string, error) {
	result := map[string]interface{}{
		"config_file": c.configFilePath,
		"attributes":  c.Attributes(),
	}
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "(redacted)"
}
