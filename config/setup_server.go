package config

import (
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	ServerAddr     string          `yaml:"serverAddr"`
	BaseURL        string          `yaml:"baseUrl"`
	DatabaseConfig DatabaseConfig  `yaml:"databaseConfig"`
	RedisConfig    RedisConfig     `yaml:"redisConfig"`
	JWT            JWTConfig       `yaml:"jwt"`
	Storage        StorageConfig   `yaml:"storage"`
	SMTP           SMTPConfig      `yaml:"smtp"`
	Upload         UploadConfig    `yaml:"upload"`
	Auth           AuthConfig      `yaml:"auth"`
	RateLimit      RateLimitConfig `yaml:"rateLimit"`
	Sweep          SweepConfig     `yaml:"sweep"`
}

func LoadConfig(path string) (*AppConfig, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg AppConfig
	if err := yaml.Unmarshal(file, &cfg); err != nil {
		return nil, err
	}

	// Secrets may come from the environment instead of the yaml file.
	if v := os.Getenv("DATABASE_DSN"); v != "" {
		cfg.DatabaseConfig.DSN = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.JWT.SecretKey = v
	}
	if v := os.Getenv("EMAIL_USER"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("EMAIL_PASS"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		cfg.BaseURL = v
	}

	cfg.applyDefaults()

	return &cfg, nil
}

func (cfg *AppConfig) applyDefaults() {
	if cfg.Upload.MaxFiles == 0 {
		cfg.Upload.MaxFiles = 10
	}
	if cfg.Upload.MaxFileSizeGiB == 0 {
		cfg.Upload.MaxFileSizeGiB = 100
	}
	if cfg.Upload.TransferTimeout == "" {
		cfg.Upload.TransferTimeout = "2h"
	}
	if cfg.RateLimit.UploadsPerHour == 0 {
		cfg.RateLimit.UploadsPerHour = 5
	}
	if cfg.RateLimit.AuthPerQuarterHour == 0 {
		cfg.RateLimit.AuthPerQuarterHour = 10
	}
	if cfg.Sweep.ShareInterval == "" {
		cfg.Sweep.ShareInterval = "1h"
	}
	if cfg.Sweep.UnverifiedInterval == "" {
		cfg.Sweep.UnverifiedInterval = "24h"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "disk"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "uploads"
	}
	if cfg.JWT.AccessTokenTTL == "" {
		cfg.JWT.AccessTokenTTL = "24h"
	}
	if cfg.DatabaseConfig.MigrationsPath == "" {
		cfg.DatabaseConfig.MigrationsPath = "migrations"
	}
}

// MaxFileSizeBytes : per-file upload cap in bytes
func (cfg *AppConfig) MaxFileSizeBytes() int64 {
	return cfg.Upload.MaxFileSizeGiB * 1024 * 1024 * 1024
}

// TransferTimeout : aggregate deadline for one upload or download request
func (cfg *AppConfig) TransferTimeout() time.Duration {
	d, err := time.ParseDuration(cfg.Upload.TransferTimeout)
	if err != nil {
		return 2 * time.Hour
	}
	return d
}

func SetupServer(serverAddress string) (*http.Server, *chi.Mux) {
	router := chi.NewRouter()
	server := &http.Server{
		Addr:    serverAddress,
		Handler: router,
	}

	return server, router
}

func SetupDatabase(cfg *DatabaseConfig) (*Database, error) {
	db, err := NewDatabaseConnection("postgres", cfg.DSN)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db, cfg.MigrationsPath); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func SetupRedis(cfg *RedisConfig) (*RedisClient, error) {
	return NewRedisClient(cfg)
}
