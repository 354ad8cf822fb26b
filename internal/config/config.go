package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_PATH is not set.
const DefaultPath = "config.yaml"

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Log struct {
		Mode string `yaml:"mode"` // dev | prod
	} `yaml:"log"`

	Database struct {
		Driver   string `yaml:"driver"` // sqlite | mysql | postgres | memory
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		Name     string `yaml:"name"`
		Path     string `yaml:"path"` // sqlite file
		DSN      string `yaml:"dsn"`  // overrides host/port/user/password/name
	} `yaml:"database"`

	Storage struct {
		Driver string `yaml:"driver"` // local | minio
		Dir    string `yaml:"dir"`
	} `yaml:"storage"`

	Minio struct {
		Endpoint   string `yaml:"endpoint"`
		AccessKey  string `yaml:"accessKey"`
		SecretKey  string `yaml:"secretKey"`
		BucketName string `yaml:"bucketName"`
		Region     string `yaml:"region"`
		UseSSL     bool   `yaml:"useSSL"`
	} `yaml:"minio"`

	Prompts struct {
		MasterPath   string `yaml:"master_path"`
		RegistryPath string `yaml:"registry_path"`
	} `yaml:"prompts"`

	Budget struct {
		DocumentChars int `yaml:"document_chars"`
		ResultChars   int `yaml:"result_chars"`
	} `yaml:"budget"`

	LLM struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"llm"`

	Limits struct {
		RateEvery      time.Duration `yaml:"rate_every"`
		RateBurst      int           `yaml:"rate_burst"`
		MaxConcurrent  int64         `yaml:"max_concurrent"`
		MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	} `yaml:"limits"`
}

// Load reads the YAML file at path, then applies environment overrides and defaults.
// A missing file is not an error: the service runs on defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, err
	}
	cfg.applyEnv(os.Getenv)
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Path returns CONFIG_PATH or DefaultPath.
func Path() string {
	if p := strings.TrimSpace(os.Getenv("CONFIG_PATH")); p != "" {
		return p
	}
	return DefaultPath
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv("PORT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Server.Port = n
		}
	}
	if v := strings.TrimSpace(getenv("DB_DRIVER")); v != "" {
		c.Database.Driver = v
	}
	if v := strings.TrimSpace(getenv("DB_DSN")); v != "" {
		c.Database.DSN = v
	}
	if v := strings.TrimSpace(getenv("STORAGE_DRIVER")); v != "" {
		c.Storage.Driver = v
	}
	if v := strings.TrimSpace(getenv("LOG_MODE")); v != "" {
		c.Log.Mode = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	if c.Log.Mode == "" {
		c.Log.Mode = "dev"
	}
	c.Database.Driver = strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if c.Database.Driver == "" {
		c.Database.Driver = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "docmind.db"
	}
	if c.Database.Port <= 0 {
		switch c.Database.Driver {
		case "mysql":
			c.Database.Port = 3306
		case "postgres":
			c.Database.Port = 5432
		}
	}
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = "local"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "uploads"
	}
	if c.Minio.BucketName == "" {
		c.Minio.BucketName = "documents"
	}
	if c.Prompts.MasterPath == "" {
		c.Prompts.MasterPath = "docs/AI_MAGIC_PROMPT.md"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 120 * time.Second
	}
	if c.Limits.RateEvery <= 0 {
		c.Limits.RateEvery = time.Second
	}
	if c.Limits.RateBurst <= 0 {
		c.Limits.RateBurst = 20
	}
	if c.Limits.MaxConcurrent <= 0 {
		c.Limits.MaxConcurrent = 4
	}
	if c.Limits.MaxUploadBytes <= 0 {
		c.Limits.MaxUploadBytes = 20 << 20
	}
}

// Validate rejects unknown drivers.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "mysql", "postgres", "memory":
	default:
		return fmt.Errorf("config: unknown database driver %q", c.Database.Driver)
	}
	switch c.Storage.Driver {
	case "local", "minio":
	default:
		return fmt.Errorf("config: unknown storage driver %q", c.Storage.Driver)
	}
	if c.Storage.Driver == "minio" && c.Minio.Endpoint == "" {
		return errors.New("config: minio.endpoint is required for the minio storage driver")
	}
	return nil
}

// MySQLDSN builds the go-sql-driver DSN unless database.dsn is set.
func (c *Config) MySQLDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
	)
}

// PostgresDSN builds a lib/pq connection string unless database.dsn is set.
func (c *Config) PostgresDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
	)
}

// SQLitePath returns database.dsn when set, else database.path.
func (c *Config) SQLitePath() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return c.Database.Path
}
