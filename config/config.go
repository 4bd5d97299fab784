// Package config loads and validates run configuration from a JSON or YAML
// file plus SEEDGEN_* environment overrides. The generation engine treats
// these values as required inputs and fails fast on anything invalid.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"seedgen/gen"
)

type SqliteConfig struct {
	Path string `json:"path" yaml:"path"`
}

type PostgresConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	User     string `json:"user" yaml:"user"`
}

type MysqlConfig struct {
	Host     string `json:"host" yaml:"host"`
	Port     int    `json:"port" yaml:"port"`
	Database string `json:"database" yaml:"database"`
	User     string `json:"user" yaml:"user"`
	Password string `json:"password" yaml:"password"`
}

type KafkaConfig struct {
	Brokers            string `json:"brokers" yaml:"brokers"`
	NoRecreateIfExists bool   `json:"no_recreate" yaml:"no_recreate"`
}

type S3Config struct {
	Bucket string `json:"bucket" yaml:"bucket"`
	Region string `json:"region" yaml:"region"`
}

// Config is the full run configuration.
type Config struct {
	Seed int64 `json:"seed" yaml:"seed"`

	// WindowDays is how far back the generation window reaches from now.
	WindowDays int `json:"window_days" yaml:"window_days"`

	Users         int     `json:"users" yaml:"users"`
	EventsPerUser float64 `json:"events_per_user" yaml:"events_per_user"`
	OrdersPerUser float64 `json:"orders_per_user" yaml:"orders_per_user"`

	BatchSize     int  `json:"batch_size" yaml:"batch_size"`
	Parallel      bool `json:"parallel" yaml:"parallel"`
	RowsPerSecond int  `json:"rows_per_second" yaml:"rows_per_second"`

	Sink     string         `json:"sink" yaml:"sink"`
	Sqlite   SqliteConfig   `json:"sqlite" yaml:"sqlite"`
	Postgres PostgresConfig `json:"postgres" yaml:"postgres"`
	Mysql    MysqlConfig    `json:"mysql" yaml:"mysql"`
	Kafka    KafkaConfig    `json:"kafka" yaml:"kafka"`
	S3       S3Config       `json:"s3" yaml:"s3"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Seed:          1,
		WindowDays:    730,
		Users:         10000,
		EventsPerUser: 5.0,
		OrdersPerUser: 2.0,
		BatchSize:     1000,
		// Sequential by default so order generation sees the purchase and
		// cart signals in the event stream; parallel trades that coupling
		// for throughput.
		Parallel: false,
		Sink:     "sqlite",
		Sqlite:        SqliteConfig{Path: "data/seedgen.db"},
		Postgres:      PostgresConfig{Host: "localhost", Port: 5432, Database: "dev", User: "postgres"},
		Mysql:         MysqlConfig{Host: "localhost", Port: 3306, Database: "dev", User: "root"},
	}
}

// Load reads the file at path into the defaults and applies environment
// overrides. YAML is a JSON superset, so one decoder covers both formats.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, gen.Configurationf("failed to read config file %s: %v", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, gen.Configurationf("failed to parse config file %s: %v", path, err)
	}
	cfg.ApplyEnv()
	return &cfg, nil
}

// ApplyEnv overrides volumes and seed from SEEDGEN_* variables, mirroring
// the knobs a developer most often tweaks between runs.
func (c *Config) ApplyEnv() {
	if v, ok := envInt64("SEEDGEN_SEED"); ok {
		c.Seed = v
	}
	if v, ok := envInt64("SEEDGEN_USERS"); ok {
		c.Users = int(v)
	}
	if v, ok := envFloat("SEEDGEN_EVENTS_PER_USER"); ok {
		c.EventsPerUser = v
	}
	if v, ok := envFloat("SEEDGEN_ORDERS_PER_USER"); ok {
		c.OrdersPerUser = v
	}
	if v, ok := envInt64("SEEDGEN_BATCH_SIZE"); ok {
		c.BatchSize = int(v)
	}
}

// Validate fails fast, before any batch is produced.
func (c *Config) Validate() error {
	if c.Users <= 0 {
		return gen.Configurationf("users must be positive, got %d", c.Users)
	}
	if c.EventsPerUser <= 0 {
		return gen.Configurationf("events_per_user must be positive, got %f", c.EventsPerUser)
	}
	if c.OrdersPerUser <= 0 {
		return gen.Configurationf("orders_per_user must be positive, got %f", c.OrdersPerUser)
	}
	if c.BatchSize <= 0 {
		return gen.Configurationf("batch_size must be positive, got %d", c.BatchSize)
	}
	if c.WindowDays <= 0 {
		return gen.Configurationf("window_days must be positive, got %d", c.WindowDays)
	}
	switch c.Sink {
	case "sqlite", "postgres", "mysql", "kafka", "s3":
	case "":
		return gen.Configurationf("sink is required")
	default:
		return gen.Configurationf("unknown sink %q", c.Sink)
	}
	if c.Sink == "sqlite" && c.Sqlite.Path == "" {
		return gen.Configurationf("sqlite sink requires a path")
	}
	if c.Sink == "kafka" && c.Kafka.Brokers == "" {
		return gen.Configurationf("kafka sink requires brokers")
	}
	if c.Sink == "s3" && (c.S3.Bucket == "" || c.S3.Region == "") {
		return gen.Configurationf("s3 sink requires bucket and region")
	}
	return nil
}

// Window derives the generation window ending at now.
func (c *Config) Window(now time.Time) gen.TimeWindow {
	end := now.Truncate(time.Second)
	return gen.TimeWindow{
		Start: end.AddDate(0, 0, -c.WindowDays),
		End:   end,
	}
}

func envInt64(key string) (int64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring %s=%q: %v\n", key, s, err)
		return 0, false
	}
	return v, true
}

func envFloat(key string) (float64, bool) {
	s := os.Getenv(key)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ignoring %s=%q: %v\n", key, s, err)
		return 0, false
	}
	return v, true
}
