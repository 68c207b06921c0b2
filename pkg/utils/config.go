package utils

import (
	"embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	TrustedProxies []string `yaml:"trusted_proxies"`
}

type CatalogConfig struct {
	// Source is a path, file://, http(s):// or s3://bucket/key URI.
	Source string `yaml:"source"`
	S3     struct {
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
		PathStyle bool   `yaml:"path_style"`
	} `yaml:"s3"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite3, pgx or memory
	DSN    string `yaml:"dsn"`
}

type ProfileConfig struct {
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
	TTLHours int    `yaml:"ttl_hours"`
}

type Config struct {
	LogLevel string        `yaml:"log_level"`
	Server   ServerConfig  `yaml:"server"`
	Catalog  CatalogConfig `yaml:"catalog"`
	Storage  StorageConfig `yaml:"storage"`
	Profile  ProfileConfig `yaml:"profile"`
}

func (c ProfileConfig) Duration() time.Duration {
	if c.TTLHours <= 0 {
		return 365 * 24 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse embedded config: %w", err)
	}
	return &cfg, nil
}

// LoadConfig layers the embedded defaults, an optional YAML file and
// REVIEWHUB_* environment variables, in that order.
func LoadConfig(path string) (*Config, error) {
	cfg, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = os.Getenv("REVIEWHUB_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	setString(&cfg.LogLevel, "REVIEWHUB_LOG_LEVEL")
	setString(&cfg.Server.Addr, "REVIEWHUB_ADDR")
	setString(&cfg.Catalog.Source, "REVIEWHUB_CATALOG_SOURCE")
	setString(&cfg.Catalog.S3.Region, "REVIEWHUB_S3_REGION")
	setString(&cfg.Catalog.S3.Endpoint, "REVIEWHUB_S3_ENDPOINT")
	if v := os.Getenv("REVIEWHUB_S3_PATH_STYLE"); v != "" {
		cfg.Catalog.S3.PathStyle = strings.EqualFold(v, "true")
	}
	setString(&cfg.Storage.Driver, "REVIEWHUB_DB_DRIVER")
	setString(&cfg.Storage.DSN, "REVIEWHUB_DB_DSN")
	setString(&cfg.Profile.Secret, "REVIEWHUB_PROFILE_SECRET")
	setString(&cfg.Profile.Issuer, "REVIEWHUB_PROFILE_ISSUER")
}

func setString(dst *string, env string) {
	if v := strings.TrimSpace(os.Getenv(env)); v != "" {
		*dst = v
	}
}

func validate(cfg *Config) error {
	switch cfg.Storage.Driver {
	case "sqlite3", "pgx", "memory":
	default:
		return fmt.Errorf("storage.driver %q: must be one of sqlite3, pgx, memory", cfg.Storage.Driver)
	}
	if cfg.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if cfg.Catalog.Source == "" {
		return fmt.Errorf("catalog.source is required")
	}
	if cfg.Profile.Secret == "" {
		return fmt.Errorf("profile.secret is required")
	}
	return nil
}
