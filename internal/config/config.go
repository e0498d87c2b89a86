package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/claude/fitcount/internal/exercise"
	"github.com/claude/fitcount/internal/workout"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig       `yaml:"server"`
	Auth       AuthConfig         `yaml:"auth"`
	Tailscale  TailscaleConfig    `yaml:"tailscale"`
	Log        LogConfig          `yaml:"log"`
	SessionLog SessionLogConfig   `yaml:"session_log"`
	Database   DatabaseConfig     `yaml:"database"`
	Exercises  []ExerciseConfig   `yaml:"exercises"`
	Plan       []workout.PlanItem `yaml:"plan"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// LogConfig controls process logging. With File set, logs are also written
// to a size-rotated file.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// SessionLogConfig selects where completed sets are written. The CSV file is
// always written; SQLiteDir enables the local queryable history.
type SessionLogConfig struct {
	CSVPath   string `yaml:"csv_path"`
	SQLiteDir string `yaml:"sqlite_dir"`
}

type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

// ExerciseConfig is one exercise table row. A row whose key matches a
// built-in exercise replaces it.
type ExerciseConfig struct {
	Key             string  `yaml:"key"`
	Name            string  `yaml:"name"`
	Joints          [3]int  `yaml:"joints"`
	Initial         string  `yaml:"initial"`
	ContractBelow   float64 `yaml:"contract_below"`
	ExtendAbove     float64 `yaml:"extend_above"`
	ExtendedLabel   string  `yaml:"extended_label"`
	ContractedLabel string  `yaml:"contracted_label"`
}

// DefaultCSVPath is used when session_log.csv_path is empty.
const DefaultCSVPath = "logs/session_log.csv"

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Kind converts the row to an exercise.Kind.
func (e ExerciseConfig) Kind() (exercise.Kind, error) {
	initial := e.Initial
	if initial == "" {
		initial = "extended"
	}
	stage, err := exercise.ParseStage(initial)
	if err != nil {
		return exercise.Kind{}, fmt.Errorf("exercise %s: %w", e.Key, err)
	}
	k := exercise.Kind{
		Key:             e.Key,
		Name:            e.Name,
		Joints:          exercise.Triple{A: e.Joints[0], Vertex: e.Joints[1], C: e.Joints[2]},
		Initial:         stage,
		Thresholds:      exercise.Thresholds{ContractBelow: e.ContractBelow, ExtendAbove: e.ExtendAbove},
		ExtendedLabel:   e.ExtendedLabel,
		ContractedLabel: e.ContractedLabel,
	}
	if k.ExtendedLabel == "" {
		k.ExtendedLabel = "up"
	}
	if k.ContractedLabel == "" {
		k.ContractedLabel = "down"
	}
	return k, k.Validate()
}

// Catalog builds the exercise catalog: built-ins with the configured rows applied.
func (c *Config) Catalog() (*exercise.Catalog, error) {
	var overrides []exercise.Kind
	for _, e := range c.Exercises {
		k, err := e.Kind()
		if err != nil {
			return nil, err
		}
		overrides = append(overrides, k)
	}
	return exercise.NewCatalog(exercise.Merge(exercise.Builtin(), overrides)...)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix FITCOUNT_ and underscore-separated paths:
//
//	FITCOUNT_SERVER_HOST, FITCOUNT_SERVER_PORT, FITCOUNT_AUTH_API_KEY,
//	FITCOUNT_TAILSCALE_ENABLED, FITCOUNT_TAILSCALE_HOSTNAME,
//	FITCOUNT_LOG_LEVEL, FITCOUNT_LOG_FILE,
//	FITCOUNT_SESSION_LOG_CSV_PATH, FITCOUNT_SESSION_LOG_SQLITE_DIR,
//	FITCOUNT_DB_ENABLED, FITCOUNT_DB_HOST, FITCOUNT_DB_PORT, FITCOUNT_DB_NAME,
//	FITCOUNT_DB_USER, FITCOUNT_DB_PASSWORD, FITCOUNT_DB_SSLMODE
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("FITCOUNT_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("FITCOUNT_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("FITCOUNT_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("FITCOUNT_TAILSCALE_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = b
		}
	}
	if v := os.Getenv("FITCOUNT_TAILSCALE_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("FITCOUNT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("FITCOUNT_LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
	if v := os.Getenv("FITCOUNT_SESSION_LOG_CSV_PATH"); v != "" {
		cfg.SessionLog.CSVPath = v
	}
	if v := os.Getenv("FITCOUNT_SESSION_LOG_SQLITE_DIR"); v != "" {
		cfg.SessionLog.SQLiteDir = v
	}
	if v := os.Getenv("FITCOUNT_DB_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.Enabled = b
		}
	}
	if v := os.Getenv("FITCOUNT_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("FITCOUNT_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("FITCOUNT_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("FITCOUNT_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("FITCOUNT_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("FITCOUNT_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.SessionLog.CSVPath == "" {
		cfg.SessionLog.CSVPath = DefaultCSVPath
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.File != "" && cfg.Log.MaxSizeMB == 0 {
		cfg.Log.MaxSizeMB = 50
	}
	if cfg.Tailscale.Enabled && cfg.Tailscale.Hostname == "" {
		cfg.Tailscale.Hostname = "fitcount"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is invalid (want debug, info, warn or error)", c.Log.Level)
	}
	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	}
	if _, err := c.Catalog(); err != nil {
		return fmt.Errorf("exercises: %w", err)
	}
	return nil
}
