package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"halawa/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Event      EventConfig      `yaml:"event"`
	Storage    StorageConfig    `yaml:"storage"`
	Redis      RedisConfig      `yaml:"redis"`
	Backup     BackupConfig     `yaml:"backup"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

// EventConfig holds the content values of the recurring buffet.
type EventConfig struct {
	Name          string   `yaml:"name"`
	Price         int64    `yaml:"price"`
	Currency      string   `yaml:"currency"`
	Capacity      int      `yaml:"capacity"`
	MaxPartySize  int      `yaml:"max_party_size"`
	Weekdays      []string `yaml:"weekdays"`
	StartDate     string   `yaml:"start_date"`
	EndDate       string   `yaml:"end_date"`
	Timezone      string   `yaml:"timezone"`
	RetentionDays int      `yaml:"retention_days"`
}

type StorageConfig struct {
	Primary    string `yaml:"primary"` // sqlite, redis, memory
	Session    string `yaml:"session"` // memory, redis
	SQLitePath string `yaml:"sqlite_path"`
	QuotaBytes int    `yaml:"quota_bytes"`
	SessionTTL string `yaml:"session_ttl"`
	KeyPrefix  string `yaml:"key_prefix"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
	Channel  string `yaml:"channel"`
}

type BackupConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`
	RetentionDays int    `yaml:"retention_days"`
	StoragePath   string `yaml:"storage_path"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Port int `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

const (
	StorageSQLite = "sqlite"
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

func Load(configPath string) (*Config, error) {
	// .env is optional
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if err := c.Event.Validate(); err != nil {
		return err
	}

	switch c.Storage.Primary {
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for sqlite storage")
		}
	case StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage.primary %q", c.Storage.Primary)
	}

	switch c.Storage.Session {
	case StorageRedis, StorageMemory:
	default:
		return fmt.Errorf("unknown storage.session %q", c.Storage.Session)
	}

	if (c.Storage.Primary == StorageRedis || c.Storage.Session == StorageRedis) && c.Redis.Address == "" {
		return errors.New("redis.address is required when a redis storage is selected")
	}

	if _, err := time.ParseDuration(c.Storage.SessionTTL); err != nil {
		return fmt.Errorf("invalid storage.session_ttl: %w", err)
	}

	return nil
}

// Validate checks the event content values.
func (e EventConfig) Validate() error {
	if e.Capacity <= 0 {
		return errors.New("event.capacity must be positive")
	}
	if e.Price < 0 {
		return errors.New("event.price must not be negative")
	}
	if e.MaxPartySize < 1 || e.MaxPartySize > e.Capacity {
		return fmt.Errorf("event.max_party_size must be between 1 and %d", e.Capacity)
	}
	if _, err := e.ParsedWeekdays(); err != nil {
		return err
	}
	start, end, err := e.Window()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return errors.New("event.end_date is before event.start_date")
	}
	return nil
}

// Location resolves the event timezone, UTC when unset.
func (e EventConfig) Location() (*time.Location, error) {
	if e.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(e.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid event.timezone: %w", err)
	}
	return loc, nil
}

// Window returns the campaign start and end as midnight in the event location.
func (e EventConfig) Window() (time.Time, time.Time, error) {
	loc, err := e.Location()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start, err := models.DateKey(e.StartDate).Time(loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid event.start_date: %w", err)
	}
	end, err := models.DateKey(e.EndDate).Time(loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid event.end_date: %w", err)
	}
	return start, end, nil
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

func (e EventConfig) ParsedWeekdays() ([]time.Weekday, error) {
	if len(e.Weekdays) == 0 {
		return nil, errors.New("event.weekdays must not be empty")
	}
	out := make([]time.Weekday, 0, len(e.Weekdays))
	for _, name := range e.Weekdays {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		out = append(out, wd)
	}
	return out, nil
}

// SessionTTLDuration returns the parsed session TTL.
func (s StorageConfig) SessionTTLDuration() time.Duration {
	d, err := time.ParseDuration(s.SessionTTL)
	if err != nil {
		return models.DefaultSessionTTL * time.Second
	}
	return d
}

func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "halawa"
	}

	// Event defaults follow the published buffet content
	if c.Event.Name == "" {
		c.Event.Name = "Open Buffet"
	}
	if c.Event.Price == 0 {
		c.Event.Price = models.DefaultPrice
	}
	if c.Event.Currency == "" {
		c.Event.Currency = models.DefaultCurrency
	}
	if c.Event.Capacity == 0 {
		c.Event.Capacity = models.DefaultCapacity
	}
	if c.Event.MaxPartySize == 0 {
		c.Event.MaxPartySize = models.DefaultMaxPartySize
	}
	if len(c.Event.Weekdays) == 0 {
		c.Event.Weekdays = []string{"thursday", "friday", "saturday"}
	}
	if c.Event.StartDate == "" {
		c.Event.StartDate = "2026-01-20"
	}
	if c.Event.EndDate == "" {
		c.Event.EndDate = "2026-02-14"
	}
	if c.Event.RetentionDays == 0 {
		c.Event.RetentionDays = models.DefaultRetentionDays
	}

	if c.Storage.Primary == "" {
		c.Storage.Primary = StorageSQLite
	}
	if c.Storage.Session == "" {
		c.Storage.Session = StorageMemory
	}
	if c.Storage.SQLitePath == "" && c.Storage.Primary == StorageSQLite {
		c.Storage.SQLitePath = "data/halawa.db"
	}
	if c.Storage.QuotaBytes == 0 {
		c.Storage.QuotaBytes = models.DefaultQuotaBytes
	}
	if c.Storage.SessionTTL == "" {
		c.Storage.SessionTTL = fmt.Sprintf("%ds", models.DefaultSessionTTL)
	}
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = "halawa"
	}

	if c.Redis.Channel == "" {
		c.Redis.Channel = "halawa:storage"
	}

	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
}
