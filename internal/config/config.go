// Package config loads runtime settings from the environment, optionally
// seeded from a .env file and a YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
	DriverLocal    = "local"
	DriverMinio    = "minio"
)

// Config is the full application configuration.
type Config struct {
	Env      string
	LogLevel string

	// Protocol and Host form the public origin used in cursor links.
	Protocol string
	Host     string
	Port     string

	JWTSecret  string
	HashRounds int
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	DefaultTake int
	MaxTake     int

	StorageDriver string
	Database      DatabaseConfig

	UploadDriver string
	PublicDir    string
	Minio        MinioConfig

	RedisURL string
	CacheTTL time.Duration

	// AuthRate is the sustained number of auth requests per second per client.
	AuthRate  float64
	AuthBurst int
}

// DatabaseConfig holds PostgreSQL settings. URL wins over the discrete fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	Name     string
	Username string
	Password string
	SSLMode  string
	MaxConns int32
}

// MinioConfig holds object storage settings.
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("PROTOCOL", "http")
	v.SetDefault("HOST", "localhost:3000")
	v.SetDefault("APP_PORT", "3000")
	v.SetDefault("HASH_ROUNDS", 10)
	v.SetDefault("JWT_ACCESS_TTL", "300s")
	v.SetDefault("JWT_REFRESH_TTL", "3600s")
	v.SetDefault("DEFAULT_TAKE", 20)
	v.SetDefault("MAX_TAKE", 0)
	v.SetDefault("STORAGE_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "postboard")
	v.SetDefault("DB_USERNAME", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("UPLOAD_DRIVER", DriverLocal)
	v.SetDefault("PUBLIC_DIR", "public")
	v.SetDefault("MINIO_BUCKET", "postboard")
	v.SetDefault("CACHE_TTL", "5m")
	v.SetDefault("AUTH_RATE", 5.0)
	v.SetDefault("AUTH_BURST", 10)
}

// Load reads envFiles (missing files are skipped) and then the process
// environment. Environment variables override file values.
func Load(envFiles ...string) (*Config, error) {
	return LoadFile("", envFiles...)
}

// LoadFile is Load with an additional YAML file whose keys are the
// environment variable names, e.g. "jwt_secret: ...". An empty path skips it.
func LoadFile(path string, envFiles ...string) (*Config, error) {
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !isNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	v.AutomaticEnv()
	defaults(v)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{
		Env:         v.GetString("APP_ENV"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Protocol:    v.GetString("PROTOCOL"),
		Host:        v.GetString("HOST"),
		Port:        v.GetString("APP_PORT"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		HashRounds:  v.GetInt("HASH_ROUNDS"),
		AccessTTL:   v.GetDuration("JWT_ACCESS_TTL"),
		RefreshTTL:  v.GetDuration("JWT_REFRESH_TTL"),
		DefaultTake: v.GetInt("DEFAULT_TAKE"),
		MaxTake:     v.GetInt("MAX_TAKE"),

		StorageDriver: strings.ToLower(v.GetString("STORAGE_DRIVER")),
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			Name:     v.GetString("DB_NAME"),
			Username: v.GetString("DB_USERNAME"),
			Password: v.GetString("DB_PASSWORD"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			MaxConns: v.GetInt32("DB_MAX_CONNS"),
		},

		UploadDriver: strings.ToLower(v.GetString("UPLOAD_DRIVER")),
		PublicDir:    v.GetString("PUBLIC_DIR"),
		Minio: MinioConfig{
			Endpoint:  v.GetString("MINIO_ENDPOINT"),
			AccessKey: v.GetString("MINIO_ACCESS_KEY"),
			SecretKey: v.GetString("MINIO_SECRET_KEY"),
			Bucket:    v.GetString("MINIO_BUCKET"),
			UseSSL:    v.GetBool("MINIO_USE_SSL"),
		},

		RedisURL: v.GetString("REDIS_URL"),
		CacheTTL: v.GetDuration("CACHE_TTL"),

		AuthRate:  v.GetFloat64("AUTH_RATE"),
		AuthBurst: v.GetInt("AUTH_BURST"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	}
	if c.DefaultTake < 1 {
		errs = append(errs, fmt.Errorf("DEFAULT_TAKE must be positive, got %d", c.DefaultTake))
	}
	if c.MaxTake != 0 && c.MaxTake < c.DefaultTake {
		errs = append(errs, fmt.Errorf("MAX_TAKE %d is below DEFAULT_TAKE %d", c.MaxTake, c.DefaultTake))
	}
	switch c.StorageDriver {
	case DriverPostgres, DriverMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	switch c.UploadDriver {
	case DriverLocal, DriverMemory:
	case DriverMinio:
		if c.Minio.Endpoint == "" {
			errs = append(errs, errors.New("MINIO_ENDPOINT is required for the minio upload driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown UPLOAD_DRIVER %q", c.UploadDriver))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Origin is the public scheme://host of the API.
func (c *Config) Origin() string {
	return c.Protocol + "://" + c.Host
}

// PostsURL is the absolute URL of the post listing.
func (c *Config) PostsURL() string {
	return c.Origin() + "/posts"
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
