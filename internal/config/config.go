package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/superhyuk/statics-mc/internal/aggregation/core/domain"

	"go.yaml.in/yaml/v3"
)

// Config holds every runtime setting of the counter binary. Values are
// layered: defaults, then the optional YAML file, then environment.
type Config struct {
	Bucket   string           `yaml:"bucket"`
	Region   string           `yaml:"region"`
	Endpoint string           `yaml:"endpoint"`
	Machines []domain.Machine `yaml:"machines"`

	RescanMode          string `yaml:"rescan_mode"`
	EnableMinuteBuckets bool   `yaml:"enable_minute_buckets"`
	TimeZone            string `yaml:"time_zone"`
	AnchorPolicy        string `yaml:"anchor_policy"`
	OnCorruptState      string `yaml:"on_corrupt_state"`
	Workers             int    `yaml:"workers"`
	ReconcileDays       int    `yaml:"reconcile_days"`
	ReconcileWeeks      int    `yaml:"reconcile_weeks"`
	DatePrefixedKeys    bool   `yaml:"date_prefixed_keys"`
	InitialWatermark    string `yaml:"initial_watermark"`

	StateBackend string `yaml:"state_backend"`
	StateDir     string `yaml:"state_dir"`
	PostgresDSN  string `yaml:"postgres_dsn"`

	ListenAddr  string        `yaml:"listen_addr"`
	RunInterval time.Duration `yaml:"run_interval"`
	LogLevel    string        `yaml:"log_level"`
}

const (
	BackendFile     = "file"
	BackendPostgres = "postgres"

	// ConfigFileEnv names the environment variable holding the YAML path.
	ConfigFileEnv = "COUNTS_CONFIG_FILE"
)

func Default() Config {
	return Config{
		Region:              "ap-northeast-2",
		RescanMode:          "incremental",
		EnableMinuteBuckets: true,
		TimeZone:            "UTC",
		AnchorPolicy:        "when_missing",
		OnCorruptState:      "fail",
		Workers:             4,
		ReconcileDays:       14,
		ReconcileWeeks:      4,
		DatePrefixedKeys:    true,
		InitialWatermark:    "20240101_000000",
		StateBackend:        BackendFile,
		StateDir:            ".",
		ListenAddr:          ":8080",
		LogLevel:            "info",
	}
}

// Load reads the YAML file named by COUNTS_CONFIG_FILE, if any, and the
// process environment.
func Load() (Config, error) {
	return LoadFrom(os.Getenv(ConfigFileEnv), os.LookupEnv)
}

// LoadFrom is Load with an explicit file path and environment lookup.
func LoadFrom(path string, lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	integer := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}
	boolean := func(key string, dst *bool) error {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return nil
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
		return nil
	}

	str("BUCKET_NAME", &cfg.Bucket)
	str("AWS_REGION", &cfg.Region)
	str("S3_ENDPOINT", &cfg.Endpoint)
	str("RESCAN_MODE", &cfg.RescanMode)
	str("TIME_ZONE", &cfg.TimeZone)
	str("ANCHOR_POLICY", &cfg.AnchorPolicy)
	str("ON_CORRUPT_STATE", &cfg.OnCorruptState)
	str("INITIAL_WATERMARK", &cfg.InitialWatermark)
	str("STATE_BACKEND", &cfg.StateBackend)
	str("STATE_DIR", &cfg.StateDir)
	str("POSTGRES_DSN", &cfg.PostgresDSN)
	str("LISTEN_ADDR", &cfg.ListenAddr)
	str("LOG_LEVEL", &cfg.LogLevel)

	if err := integer("SCAN_WORKERS", &cfg.Workers); err != nil {
		return err
	}
	if err := integer("RECONCILE_DAYS", &cfg.ReconcileDays); err != nil {
		return err
	}
	if err := integer("RECONCILE_WEEKS", &cfg.ReconcileWeeks); err != nil {
		return err
	}
	if err := boolean("ENABLE_MINUTE_BUCKETS", &cfg.EnableMinuteBuckets); err != nil {
		return err
	}
	if err := boolean("DATE_PREFIXED_KEYS", &cfg.DatePrefixedKeys); err != nil {
		return err
	}

	if v, ok := lookup("RUN_INTERVAL"); ok && strings.TrimSpace(v) != "" {
		d, err := time.ParseDuration(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("RUN_INTERVAL: %w", err)
		}
		cfg.RunInterval = d
	}

	if v, ok := lookup("MACHINE_IDS"); ok && strings.TrimSpace(v) != "" {
		var ids []string
		if err := json.Unmarshal([]byte(v), &ids); err != nil {
			return fmt.Errorf("MACHINE_IDS must be a JSON array of strings: %w", err)
		}
		cfg.Machines = mergeMachines(ids, cfg.Machines)
	}
	return nil
}

// mergeMachines takes the id list from the environment and keeps display
// names already known from the YAML file.
func mergeMachines(ids []string, known []domain.Machine) []domain.Machine {
	names := make(map[string]string, len(known))
	for _, m := range known {
		names[m.ID] = m.DisplayName
	}
	out := make([]domain.Machine, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.Machine{ID: id, DisplayName: names[id]})
	}
	return out
}

// Validate checks the settings a pass or the server cannot start without.
func (c Config) Validate() error {
	var errs []error

	switch c.RescanMode {
	case "incremental", "full":
	default:
		errs = append(errs, fmt.Errorf("rescan_mode %q: want incremental or full", c.RescanMode))
	}
	switch c.AnchorPolicy {
	case "first_run", "when_missing":
	default:
		errs = append(errs, fmt.Errorf("anchor_policy %q: want first_run or when_missing", c.AnchorPolicy))
	}
	switch c.OnCorruptState {
	case "fail", "reset":
	default:
		errs = append(errs, fmt.Errorf("on_corrupt_state %q: want fail or reset", c.OnCorruptState))
	}
	switch c.StateBackend {
	case BackendFile:
	case BackendPostgres:
		if c.PostgresDSN == "" {
			errs = append(errs, errors.New("postgres_dsn is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("state_backend %q: want file or postgres", c.StateBackend))
	}

	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.ReconcileDays < 0 || c.ReconcileWeeks < 0 {
		errs = append(errs, errors.New("reconcile_days and reconcile_weeks must not be negative"))
	}
	if c.RunInterval < 0 {
		errs = append(errs, errors.New("run_interval must not be negative"))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.InitialWatermarkTime(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateRun adds the settings only an aggregation pass needs.
func (c Config) ValidateRun() error {
	var errs []error
	if err := c.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Bucket == "" {
		errs = append(errs, errors.New("bucket is required"))
	}
	if len(c.Machines) == 0 {
		errs = append(errs, errors.New("at least one machine id is required"))
	}
	return errors.Join(errs...)
}

func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("time_zone %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

func (c Config) InitialWatermarkTime() (time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(domain.TimestampLayout, c.InitialWatermark, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("initial_watermark %q: %w", c.InitialWatermark, err)
	}
	return t, nil
}

func (c Config) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level %q: %w", c.LogLevel, err)
	}
	return lvl, nil
}

func (c Config) Registry() *domain.MachineRegistry {
	return domain.NewMachineRegistry(c.Machines)
}
