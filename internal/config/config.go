package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath names the config file when --config is not given.
const EnvConfigPath = "BUSCAJOB_CONFIG"

// DefaultPath is used when neither --config nor BUSCAJOB_CONFIG is set.
const DefaultPath = "config.yaml"

// Config is the root configuration for BuscaJob.
type Config struct {
	Server      ServerConfig
	Pipeline    PipelineConfig
	Output      OutputConfig
	Schedule    ScheduleConfig
	Store       StoreConfig
	Cache       CacheConfig
	Email       EmailConfig
	Slack       SlackConfig
	CustomSites []CustomSiteConfig
	Report      ReportConfig
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr        string
	CORSOrigins []string
}

// PipelineConfig controls the search fan-out.
type PipelineConfig struct {
	Workers        int
	AdapterTimeout time.Duration
	DefaultSites   []string
	Synthetic      bool // register the built-in generated sites
	Retry          RetryConfig
}

// RetryConfig controls page fetch retries for custom sites.
type RetryConfig struct {
	Attempts int
	MinDelay time.Duration
	MaxDelay time.Duration
}

// OutputConfig controls where snapshots go and how long undated ones stay.
type OutputConfig struct {
	Dir       string
	Retention time.Duration
}

// ScheduleConfig controls the daily scheduled runs.
type ScheduleConfig struct {
	Enabled       bool     `yaml:"enabled"`
	Times         []string `yaml:"times"`
	ReportEnabled bool     `yaml:"report_enabled"`
}

// StoreConfig points at the SQLite database. An empty Path disables
// persistence.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// CacheConfig selects the latest-result cache.
type CacheConfig struct {
	Type     string // "memory" or "redis"
	RedisURL string
	TTL      time.Duration
}

// EmailConfig controls report emails.
type EmailConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Transport string   `yaml:"transport"` // "smtp" or "ses"
	Host      string   `yaml:"host"`
	Port      int      `yaml:"port"`
	Username  string   `yaml:"username"`
	Password  string   `yaml:"password"`
	From      string   `yaml:"from"`
	To        []string `yaml:"to"`
	Region    string   `yaml:"region"` // ses only
}

// SlackConfig enables Slack report summaries when WebhookURL is set.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// CustomSiteConfig describes an HTML job board scraped with CSS selectors.
type CustomSiteConfig struct {
	ID           string
	Name         string
	SearchURL    string
	Selectors    SelectorConfig
	ContractType string
	Timeout      time.Duration
	MinInterval  time.Duration
}

// SelectorConfig are the CSS selectors of a custom site.
type SelectorConfig struct {
	Item        string `yaml:"item"`
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	Salary      string `yaml:"salary"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	Published   string `yaml:"published"`
}

// ReportConfig overrides the fixed report queries. Empty lists keep the
// built-in ones.
type ReportConfig struct {
	Roles         []string `yaml:"roles"`
	Cities        []string `yaml:"cities"`
	ContractTypes []string `yaml:"contract_types"`
}

// rawConfig is used for YAML unmarshaling (snake_case fields and durations as strings).
type rawConfig struct {
	Server      rawServerConfig   `yaml:"server"`
	Pipeline    rawPipelineConfig `yaml:"pipeline"`
	Output      rawOutputConfig   `yaml:"output"`
	Schedule    ScheduleConfig    `yaml:"schedule"`
	Store       StoreConfig       `yaml:"store"`
	Cache       rawCacheConfig    `yaml:"cache"`
	Email       EmailConfig       `yaml:"email"`
	Slack       SlackConfig       `yaml:"slack"`
	CustomSites []rawCustomSite   `yaml:"custom_sites"`
	Report      ReportConfig      `yaml:"report"`
}

type rawServerConfig struct {
	Addr        string   `yaml:"addr"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type rawPipelineConfig struct {
	Workers        int            `yaml:"workers"`
	AdapterTimeout string         `yaml:"adapter_timeout"`
	DefaultSites   []string       `yaml:"default_sites"`
	Synthetic      *bool          `yaml:"synthetic"`
	Retry          rawRetryConfig `yaml:"retry"`
}

type rawRetryConfig struct {
	Attempts int    `yaml:"attempts"`
	MinDelay string `yaml:"min_delay"`
	MaxDelay string `yaml:"max_delay"`
}

type rawOutputConfig struct {
	Dir       string `yaml:"dir"`
	Retention string `yaml:"retention"`
}

type rawCacheConfig struct {
	Type     string `yaml:"type"`
	RedisURL string `yaml:"redis_url"`
	TTL      string `yaml:"ttl"`
}

type rawCustomSite struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	SearchURL    string         `yaml:"search_url"`
	Selectors    SelectorConfig `yaml:"selectors"`
	ContractType string         `yaml:"contract_type"`
	Timeout      string         `yaml:"timeout"`
	MinInterval  string         `yaml:"min_interval"`
}

// ResolvePath picks the config file: the flag value, then BUSCAJOB_CONFIG,
// then DefaultPath.
func ResolvePath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv(EnvConfigPath); env != "" {
		return env
	}
	return DefaultPath
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	cfg, err := fromRaw(rawConfig{})
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config. A missing file yields Default(). EMAIL_ENABLED, when set,
// overrides email.enabled.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return applyEnv(Default())
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := fromRaw(raw)
	if err != nil {
		return nil, err
	}
	return applyEnv(cfg)
}

func applyEnv(cfg *Config) (*Config, error) {
	if v, ok := os.LookupEnv("EMAIL_ENABLED"); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes":
			cfg.Email.Enabled = true
		default:
			cfg.Email.Enabled = false
		}
	}
	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func fromRaw(raw rawConfig) (*Config, error) {
	adapterTimeout, err := parseDuration("pipeline.adapter_timeout", raw.Pipeline.AdapterTimeout, 30*time.Second)
	if err != nil {
		return nil, err
	}
	retryMin, err := parseDuration("pipeline.retry.min_delay", raw.Pipeline.Retry.MinDelay, time.Second)
	if err != nil {
		return nil, err
	}
	retryMax, err := parseDuration("pipeline.retry.max_delay", raw.Pipeline.Retry.MaxDelay, 5*time.Second)
	if err != nil {
		return nil, err
	}
	retention, err := parseDuration("output.retention", raw.Output.Retention, 24*time.Hour)
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parseDuration("cache.ttl", raw.Cache.TTL, 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:        orDefault(raw.Server.Addr, ":5000"),
			CORSOrigins: raw.Server.CORSOrigins,
		},
		Pipeline: PipelineConfig{
			Workers:        raw.Pipeline.Workers,
			AdapterTimeout: adapterTimeout,
			DefaultSites:   raw.Pipeline.DefaultSites,
			Synthetic:      raw.Pipeline.Synthetic == nil || *raw.Pipeline.Synthetic,
			Retry: RetryConfig{
				Attempts: raw.Pipeline.Retry.Attempts,
				MinDelay: retryMin,
				MaxDelay: retryMax,
			},
		},
		Output: OutputConfig{
			Dir:       orDefault(raw.Output.Dir, "."),
			Retention: retention,
		},
		Schedule: raw.Schedule,
		Store:    raw.Store,
		Cache: CacheConfig{
			Type:     strings.ToLower(orDefault(raw.Cache.Type, "memory")),
			RedisURL: raw.Cache.RedisURL,
			TTL:      cacheTTL,
		},
		Email:  raw.Email,
		Slack:  raw.Slack,
		Report: raw.Report,
	}

	if cfg.Server.CORSOrigins == nil {
		cfg.Server.CORSOrigins = []string{"*"}
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 4
	}
	if cfg.Pipeline.Retry.Attempts == 0 {
		cfg.Pipeline.Retry.Attempts = 3
	}
	if len(cfg.Schedule.Times) == 0 {
		cfg.Schedule.Times = []string{"09:00", "18:00"}
	}
	cfg.Email.Transport = strings.ToLower(orDefault(cfg.Email.Transport, "smtp"))
	if cfg.Email.Port == 0 {
		cfg.Email.Port = 587
	}

	for i, s := range raw.CustomSites {
		timeout, err := parseDuration(fmt.Sprintf("custom_sites[%d].timeout", i), s.Timeout, 15*time.Second)
		if err != nil {
			return nil, err
		}
		interval, err := parseDuration(fmt.Sprintf("custom_sites[%d].min_interval", i), s.MinInterval, 2*time.Second)
		if err != nil {
			return nil, err
		}
		cfg.CustomSites = append(cfg.CustomSites, CustomSiteConfig{
			ID:           strings.ToLower(strings.TrimSpace(s.ID)),
			Name:         s.Name,
			SearchURL:    s.SearchURL,
			Selectors:    s.Selectors,
			ContractType: s.ContractType,
			Timeout:      timeout,
			MinInterval:  interval,
		})
	}

	return cfg, nil
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func validate(cfg *Config) error {
	if cfg.Pipeline.Workers < 0 {
		return fmt.Errorf("pipeline.workers must be positive, got %d", cfg.Pipeline.Workers)
	}
	if cfg.Pipeline.AdapterTimeout < 0 {
		return fmt.Errorf("pipeline.adapter_timeout must not be negative, got %v", cfg.Pipeline.AdapterTimeout)
	}
	if cfg.Pipeline.Retry.MinDelay > cfg.Pipeline.Retry.MaxDelay {
		return fmt.Errorf("pipeline.retry.min_delay %v exceeds max_delay %v", cfg.Pipeline.Retry.MinDelay, cfg.Pipeline.Retry.MaxDelay)
	}

	switch cfg.Cache.Type {
	case "memory":
	case "redis":
		if cfg.Cache.RedisURL == "" {
			return fmt.Errorf("cache.redis_url is required when cache.type is \"redis\"")
		}
	default:
		return fmt.Errorf("cache.type must be \"memory\" or \"redis\", got %q", cfg.Cache.Type)
	}

	if cfg.Email.Enabled {
		if cfg.Email.From == "" || len(cfg.Email.To) == 0 {
			return fmt.Errorf("email.from and email.to are required when email is enabled")
		}
		switch cfg.Email.Transport {
		case "smtp":
			if cfg.Email.Host == "" {
				return fmt.Errorf("email.host is required for the smtp transport")
			}
		case "ses":
			if cfg.Email.Region == "" {
				return fmt.Errorf("email.region is required for the ses transport")
			}
		default:
			return fmt.Errorf("email.transport must be \"smtp\" or \"ses\", got %q", cfg.Email.Transport)
		}
	}

	if cfg.Slack.WebhookURL != "" && !strings.HasPrefix(cfg.Slack.WebhookURL, "https://hooks.slack.com/") {
		return fmt.Errorf("slack.webhook_url must start with https://hooks.slack.com/")
	}

	seen := make(map[string]bool)
	for i, s := range cfg.CustomSites {
		if s.ID == "" {
			return fmt.Errorf("custom_sites[%d].id is required", i)
		}
		if seen[s.ID] {
			return fmt.Errorf("custom_sites[%d].id %q is duplicated", i, s.ID)
		}
		seen[s.ID] = true
		if !strings.HasPrefix(s.SearchURL, "http://") && !strings.HasPrefix(s.SearchURL, "https://") {
			return fmt.Errorf("custom_sites[%d].search_url must be an http(s) URL", i)
		}
		if s.Selectors.Item == "" || s.Selectors.Title == "" {
			return fmt.Errorf("custom_sites[%d].selectors.item and selectors.title are required", i)
		}
	}

	return nil
}
