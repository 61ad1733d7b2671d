// Package config loads frontdesk settings from defaults, an optional YAML
// file and FRONTDESK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the optional YAML file.
const EnvConfigFile = "FRONTDESK_CONFIG"

// Storage drivers.
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
	StorageBlob     = "blob"
	StorageRedis    = "redis"
)

// Config is the full process configuration.
type Config struct {
	Service string        `yaml:"service"`
	Storage StorageConfig `yaml:"storage"`
	Blob    BlobConfig    `yaml:"blob"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Desk    DeskConfig    `yaml:"desk"`
	NATS    NATSConfig    `yaml:"nats"`
}

// StorageConfig selects the snapshot gateway.
type StorageConfig struct {
	Driver      string `yaml:"driver"`
	SQLitePath  string `yaml:"sqlitePath"`
	PostgresDSN string `yaml:"postgresDSN"`
}

// BlobConfig configures the blob store used by the blob gateway and exports.
type BlobConfig struct {
	Driver      string   `yaml:"driver"`
	FSRoot      string   `yaml:"fsRoot"`
	SnapshotKey string   `yaml:"snapshotKey"`
	S3          S3Config `yaml:"s3"`
}

// S3Config holds S3 / MinIO settings. Credentials come from the AWS chain.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	Prefix    string `yaml:"prefix"`
	PathStyle bool   `yaml:"pathStyle"`
}

// RedisConfig configures the redis gateway.
type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// LogConfig configures zap.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DeskConfig holds front-desk policy knobs.
type DeskConfig struct {
	ProximityWindow time.Duration `yaml:"proximityWindow"`
	Actor           string        `yaml:"actor"`
}

// NATSConfig enables movement notifications when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject"`
}

// Default returns the built-in configuration: a local sqlite file and
// console logging at info level.
func Default() Config {
	return Config{
		Service: "frontdesk",
		Storage: StorageConfig{Driver: StorageSQLite, SQLitePath: "frontdesk.db"},
		Blob:    BlobConfig{Driver: "fs", FSRoot: "./frontdesk-data", SnapshotKey: "snapshots/frontdesk.json", S3: S3Config{Region: "us-east-1"}},
		Redis:   RedisConfig{Addr: "localhost:6379", KeyPrefix: "frontdesk"},
		Log:     LogConfig{Level: "info", Format: "console"},
		Desk:    DeskConfig{ProximityWindow: 3 * time.Hour},
		NATS:    NATSConfig{Subject: "frontdesk.movements"},
	}
}

// Load builds the configuration from defaults, the file named by
// FRONTDESK_CONFIG (when set) and the environment.
func Load() (Config, error) {
	return LoadFile(os.Getenv(EnvConfigFile))
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg, os.LookupEnv); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks driver names and required settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case StorageMemory, StorageSQLite, StorageBlob, StorageRedis:
	case StoragePostgres:
		if c.Storage.PostgresDSN == "" {
			errs = append(errs, errors.New("storage: postgres driver requires a DSN"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage: unknown driver %q", c.Storage.Driver))
	}
	switch c.Blob.Driver {
	case "fs", "memory":
	case "s3":
		if c.Blob.S3.Bucket == "" {
			errs = append(errs, errors.New("blob: s3 driver requires a bucket"))
		}
	default:
		errs = append(errs, fmt.Errorf("blob: unknown driver %q", c.Blob.Driver))
	}
	if c.Desk.ProximityWindow <= 0 {
		errs = append(errs, errors.New("desk: proximity window must be positive"))
	}
	switch strings.ToLower(c.Log.Format) {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

type lookupFunc func(string) (string, bool)

func applyEnv(cfg *Config, lookup lookupFunc) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	str("FRONTDESK_SERVICE_NAME", &cfg.Service)
	str("FRONTDESK_STORAGE_DRIVER", &cfg.Storage.Driver)
	str("FRONTDESK_SQLITE_PATH", &cfg.Storage.SQLitePath)
	str("FRONTDESK_POSTGRES_DSN", &cfg.Storage.PostgresDSN)
	str("FRONTDESK_BLOB_DRIVER", &cfg.Blob.Driver)
	str("FRONTDESK_BLOB_FS_ROOT", &cfg.Blob.FSRoot)
	str("FRONTDESK_BLOB_KEY", &cfg.Blob.SnapshotKey)
	str("FRONTDESK_BLOB_S3_BUCKET", &cfg.Blob.S3.Bucket)
	str("FRONTDESK_BLOB_S3_REGION", &cfg.Blob.S3.Region)
	str("FRONTDESK_BLOB_S3_ENDPOINT", &cfg.Blob.S3.Endpoint)
	str("FRONTDESK_BLOB_S3_PREFIX", &cfg.Blob.S3.Prefix)
	str("FRONTDESK_REDIS_ADDR", &cfg.Redis.Addr)
	str("FRONTDESK_REDIS_PASSWORD", &cfg.Redis.Password)
	str("FRONTDESK_REDIS_KEY", &cfg.Redis.KeyPrefix)
	str("FRONTDESK_LOG_LEVEL", &cfg.Log.Level)
	str("FRONTDESK_LOG_FORMAT", &cfg.Log.Format)
	str("FRONTDESK_ACTOR", &cfg.Desk.Actor)
	str("FRONTDESK_NATS_URL", &cfg.NATS.URL)
	str("FRONTDESK_NATS_SUBJECT", &cfg.NATS.Subject)

	if v, ok := lookup("FRONTDESK_BLOB_S3_PATH_STYLE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FRONTDESK_BLOB_S3_PATH_STYLE: %w", err)
		}
		cfg.Blob.S3.PathStyle = b
	}
	if v, ok := lookup("FRONTDESK_REDIS_DB"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("FRONTDESK_REDIS_DB: %w", err)
		}
		cfg.Redis.DB = n
	}
	if v, ok := lookup("FRONTDESK_PROXIMITY_WINDOW"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FRONTDESK_PROXIMITY_WINDOW: %w", err)
		}
		cfg.Desk.ProximityWindow = d
	}
	return nil
}
