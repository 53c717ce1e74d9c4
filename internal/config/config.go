// Package config wires .env loading, defaults, an optional JSON config file
// and ATTRACTIONS_* environment overrides into a single Config value.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	fileName  = "attractions.cfg.json"
	envPrefix = "ATTRACTIONS"
)

// Source kinds understood by the dataset loader.
const (
	SourceFile     = "file"
	SourceHTTP     = "http"
	SourceS3       = "s3"
	SourcePostgres = "postgres"
)

type HTTPConfig struct {
	Addr string `mapstructure:"addr"`
}

type DatasetConfig struct {
	Source  string `mapstructure:"source"`
	Path    string `mapstructure:"path"`
	BaseURL string `mapstructure:"baseUrl"`
}

type S3Config struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"accessKey"`
	SecretKey string `mapstructure:"secretKey"`
	UseSSL    bool   `mapstructure:"useSSL"`
	Bucket    string `mapstructure:"bucket"`
	Object    string `mapstructure:"object"`
}

type PostgresConfig struct {
	DSN   string `mapstructure:"dsn"`
	Table string `mapstructure:"table"`
}

type KafkaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Broker  string `mapstructure:"broker"`
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"groupId"`
}

// MapConfig holds the settings handed to the browser map widget.
type MapConfig struct {
	TileURL     string `mapstructure:"tileUrl"`
	Attribution string `mapstructure:"attribution"`
	MaxZoom     int    `mapstructure:"maxZoom"`
}

type RateLimitConfig struct {
	PerSecond float64 `mapstructure:"perSecond"`
	Burst     int     `mapstructure:"burst"`
}

type Config struct {
	LogLevel  string          `mapstructure:"logLevel"`
	LogFormat string          `mapstructure:"logFormat"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	S3        S3Config        `mapstructure:"s3"`
	Postgres  PostgresConfig  `mapstructure:"postgres"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Map       MapConfig       `mapstructure:"map"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logFormat", "console")

	v.SetDefault("http.addr", ":8080")

	v.SetDefault("dataset.source", SourceFile)
	v.SetDefault("dataset.path", "attractions.json")
	v.SetDefault("dataset.baseUrl", "http://localhost:8000/")

	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.accessKey", "")
	v.SetDefault("s3.secretKey", "")
	v.SetDefault("s3.useSSL", false)
	v.SetDefault("s3.bucket", "attractions")
	v.SetDefault("s3.object", "datasets/attractions.json")

	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.table", "attractions")

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.broker", "localhost:9092")
	v.SetDefault("kafka.topic", "attractions.diagnostics")
	v.SetDefault("kafka.groupId", "attractions-diagwatch")

	v.SetDefault("map.tileUrl", "https://{s}.tile.openstreetmap.org/{z}/{x}/{y}.png")
	v.SetDefault("map.attribution", `&copy; <a href="https://www.openstreetmap.org/copyright">OpenStreetMap</a> contributors`)
	v.SetDefault("map.maxZoom", 19)

	v.SetDefault("rateLimit.perSecond", 5)
	v.SetDefault("rateLimit.burst", 10)
}

// Load reads configuration from configDir (when non-empty) and the
// environment. A missing config file is not an error.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configDir != "" {
		v.SetConfigName(fileName)
		v.SetConfigType("json")
		v.AddConfigPath(configDir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings required by the selected dataset source.
func (c *Config) Validate() error {
	switch c.Dataset.Source {
	case SourceFile:
		if c.Dataset.Path == "" {
			return errors.New("dataset.path is required for the file source")
		}
	case SourceHTTP:
		if c.Dataset.BaseURL == "" {
			return errors.New("dataset.baseUrl is required for the http source")
		}
	case SourceS3:
		if c.S3.Endpoint == "" || c.S3.AccessKey == "" || c.S3.SecretKey == "" {
			return errors.New("missing one or more required settings: s3.endpoint, s3.accessKey, s3.secretKey")
		}
	case SourcePostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres source")
		}
	default:
		return fmt.Errorf("unknown dataset source %q", c.Dataset.Source)
	}
	return nil
}
