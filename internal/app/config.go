package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/raysh454/vexora/internal/history"
	"github.com/raysh454/vexora/internal/webclient"
)

// EnvPrefix prefixes every environment override, e.g. VEXORA_LISTEN_ADDR.
const EnvPrefix = "VEXORA_"

// Config contains the runtime configuration shared by the CLI and the API
// server. The zero value is not usable; start from DefaultConfig.
type Config struct {
	// DataDir holds the default sqlite history database.
	DataDir string `yaml:"data_dir"`

	Server  ServerConfig   `yaml:"server"`
	Probe   ProbeConfig    `yaml:"probe"`
	History history.Config `yaml:"history"`
	Policy  PolicyConfig   `yaml:"policy"`
	Logging LoggingConfig  `yaml:"logging"`
	Batch   BatchConfig    `yaml:"batch"`
}

type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`

	// RateLimit is the per-client request rate in requests per second.
	// Zero disables limiting.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	// MaxUploadBytes caps multipart uploads for image and video analysis.
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ProbeConfig configures the web client used for URL reachability checks.
type ProbeConfig struct {
	Client    string        `yaml:"client"` // nethttp | chromedp
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	Headless  *bool         `yaml:"headless,omitempty"`
}

type PolicyConfig struct {
	// Path to a YAML policy. Empty uses the embedded defaults.
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type BatchConfig struct {
	Concurrency int `yaml:"concurrency"`
	MaxItems    int `yaml:"max_items"`

	// JobRetention is how long finished jobs stay listed.
	JobRetention time.Duration `yaml:"job_retention"`
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir: "~/.config/vexora",
		Server: ServerConfig{
			ListenAddr:     ":8080",
			RateLimit:      10,
			RateBurst:      20,
			MaxUploadBytes: 110 << 20,
			AllowedOrigins: []string{"*"},
		},
		Probe: ProbeConfig{
			Client:  string(webclient.ClientNetHTTP),
			Timeout: 10 * time.Second,
		},
		History: history.Config{
			Driver:   history.DriverSQLite,
			MaxItems: history.DefaultMaxItems,
		},
		Logging: LoggingConfig{Level: "info"},
		Batch: BatchConfig{
			Concurrency:  4,
			MaxItems:     100,
			JobRetention: time.Hour,
		},
	}
}

// WebClientConfig converts the probe section into the webclient package's config.
func (c *Config) WebClientConfig() webclient.Config {
	return webclient.Config{
		Client:    webclient.Client(c.Probe.Client),
		Timeout:   c.Probe.Timeout,
		UserAgent: c.Probe.UserAgent,
		Headless:  c.Probe.Headless,
	}
}

// HistoryConfig returns the history section with the sqlite DSN defaulted to
// a file under DataDir.
func (c *Config) HistoryConfig() (history.Config, error) {
	hc := c.History
	if hc.DSN != "" || (hc.Driver != "" && hc.Driver != history.DriverSQLite) {
		return hc, nil
	}
	dir, err := expandPath(c.DataDir)
	if err != nil {
		return hc, fmt.Errorf("expanding data dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return hc, fmt.Errorf("creating data dir: %w", err)
	}
	hc.DSN = "file:" + filepath.Join(dir, "history.db")
	return hc, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.ListenAddr) == "" {
		errs = append(errs, errors.New("server.listen_addr is required"))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, errors.New("server.rate_burst must be at least 1 when rate limiting"))
	}
	if c.Server.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("server.max_upload_bytes must be positive"))
	}
	switch webclient.Client(strings.ToLower(c.Probe.Client)) {
	case webclient.ClientNetHTTP, webclient.ClientChromedp, "":
	default:
		errs = append(errs, fmt.Errorf("probe.client %q is not one of nethttp, chromedp", c.Probe.Client))
	}
	if c.Probe.Timeout < 0 {
		errs = append(errs, errors.New("probe.timeout must not be negative"))
	}
	switch strings.ToLower(c.History.Driver) {
	case "", history.DriverSQLite, history.DriverPostgres, "postgresql", history.DriverMySQL:
	default:
		errs = append(errs, fmt.Errorf("history.driver %q is not one of sqlite, postgres, mysql", c.History.Driver))
	}
	if c.History.MaxItems < 0 {
		errs = append(errs, errors.New("history.max_items must not be negative"))
	}
	if c.Policy.Watch && c.Policy.Path == "" {
		errs = append(errs, errors.New("policy.watch requires policy.path"))
	}
	if c.Batch.Concurrency < 1 {
		errs = append(errs, errors.New("batch.concurrency must be at least 1"))
	}
	if c.Batch.MaxItems < 1 {
		errs = append(errs, errors.New("batch.max_items must be at least 1"))
	}
	return errors.Join(errs...)
}

// Loader builds a Config from defaults, an optional YAML file, the
// environment and finally explicit overrides, in that order.
type Loader struct {
	// Path of the YAML file. A missing file is not an error.
	Path string

	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(key string) (string, bool)

	// Overrides run last, typically set from CLI flags.
	Overrides []func(*Config)
}

// Load returns a validated Config.
func (l Loader) Load() (*Config, error) {
	cfg := DefaultConfig()

	if l.Path != "" {
		data, err := os.ReadFile(l.Path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", l.Path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	lookup := l.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	if err := applyEnv(cfg, lookup); err != nil {
		return nil, err
	}

	for _, o := range l.Overrides {
		if o != nil {
			o(cfg)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	var errs []error
	num := func(name string, set func(string) error) {
		if v, ok := lookup(EnvPrefix + name); ok && strings.TrimSpace(v) != "" {
			if err := set(strings.TrimSpace(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
		}
	}

	str("DATA_DIR", &cfg.DataDir)
	str("LISTEN_ADDR", &cfg.Server.ListenAddr)
	num("RATE_LIMIT", func(v string) (err error) {
		cfg.Server.RateLimit, err = strconv.ParseFloat(v, 64)
		return err
	})
	num("RATE_BURST", func(v string) (err error) {
		cfg.Server.RateBurst, err = strconv.Atoi(v)
		return err
	})
	str("PROBE_CLIENT", &cfg.Probe.Client)
	num("PROBE_TIMEOUT", func(v string) (err error) {
		cfg.Probe.Timeout, err = time.ParseDuration(v)
		return err
	})
	str("HISTORY_DRIVER", &cfg.History.Driver)
	str("HISTORY_DSN", &cfg.History.DSN)
	num("HISTORY_MAX_ITEMS", func(v string) (err error) {
		cfg.History.MaxItems, err = strconv.Atoi(v)
		return err
	})
	str("POLICY_PATH", &cfg.Policy.Path)
	num("POLICY_WATCH", func(v string) (err error) {
		cfg.Policy.Watch, err = strconv.ParseBool(v)
		return err
	})
	str("LOG_LEVEL", &cfg.Logging.Level)
	num("BATCH_CONCURRENCY", func(v string) (err error) {
		cfg.Batch.Concurrency, err = strconv.Atoi(v)
		return err
	})
	return errors.Join(errs...)
}

func expandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
