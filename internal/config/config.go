package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultStorageDir     = "data/uploads"
	defaultMaxUploadBytes = 5 << 20
	defaultScoringTimeout = 20
	defaultSessionTTL     = 7 * 24 * time.Hour
)

// ConfigPath is used when RESXAI_CONFIG is unset.
var ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseURL string `yaml:"databaseURL"`
	JWTSecret   string `yaml:"jwtSecret"`
	SessionTTL  string `yaml:"sessionTTL"`

	AIServiceURL          string `yaml:"aiServiceURL"`
	ScoringTimeoutSeconds int    `yaml:"scoringTimeoutSeconds"`
	DefaultJobDescription string `yaml:"defaultJobDescription"`

	StorageDir     string `yaml:"storageDir"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`

	AllowedOrigins    []string `yaml:"allowedOrigins"`
	TrustedProxyCIDRs []string `yaml:"trustedProxyCidrs"`

	RedisAddr                  string `yaml:"redisAddr"`
	RedisPassword              string `yaml:"redisPassword"`
	EventsChannel              string `yaml:"eventsChannel"`
	RegisterRateLimitPerMinute int    `yaml:"registerRateLimitPerMinute"`
	LoginRateLimitPerMinute    int    `yaml:"loginRateLimitPerMinute"`

	AMQPURL      string `yaml:"amqpURL"`
	AMQPExchange string `yaml:"amqpExchange"`

	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
}

// Load reads .env, then the YAML file at path, then applies environment
// overrides. A missing YAML file is not an error so the service can be
// configured from the environment alone.
func Load(path string) (FileConfig, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := FileConfig{}
	if path == "" {
		path = os.Getenv("RESXAI_CONFIG")
	}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	overrideString(&cfg.Port, "PORT")
	overrideString(&cfg.LogLevel, "LOG_LEVEL")
	overrideString(&cfg.DatabaseURL, "DATABASE_URL")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.SessionTTL, "RESXAI_SESSION_TTL")
	overrideString(&cfg.AIServiceURL, "AI_SERVICE_URL")
	overrideInt(&cfg.ScoringTimeoutSeconds, "RESXAI_SCORING_TIMEOUT_SECONDS")
	overrideString(&cfg.DefaultJobDescription, "RESXAI_DEFAULT_JOB_DESCRIPTION")
	overrideString(&cfg.StorageDir, "RESXAI_STORAGE_DIR")
	if v := os.Getenv("RESXAI_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("RESXAI_ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitCSV(v)
	}
	if v := os.Getenv("RESXAI_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	overrideString(&cfg.RedisAddr, "REDIS_ADDR")
	overrideString(&cfg.RedisPassword, "REDIS_PASSWORD")
	overrideString(&cfg.EventsChannel, "RESXAI_EVENTS_CHANNEL")
	overrideInt(&cfg.RegisterRateLimitPerMinute, "RESXAI_REGISTER_RATE_LIMIT_PER_MINUTE")
	overrideInt(&cfg.LoginRateLimitPerMinute, "RESXAI_LOGIN_RATE_LIMIT_PER_MINUTE")
	overrideString(&cfg.AMQPURL, "AMQP_URL")
	overrideString(&cfg.AMQPExchange, "AMQP_EXCHANGE")
	overrideString(&cfg.MinioEndpoint, "MINIO_ENDPOINT")
	overrideString(&cfg.MinioAccessKey, "MINIO_ACCESS_KEY")
	overrideString(&cfg.MinioSecretKey, "MINIO_SECRET_KEY")
	overrideString(&cfg.MinioBucket, "MINIO_BUCKET")
	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(v)); err == nil {
			cfg.MinioUseSSL = b
		}
	}

	applyDefaults(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyDefaults(cfg *FileConfig) {
	if cfg.StorageDir == "" {
		cfg.StorageDir = defaultStorageDir
	}
	if cfg.MaxUploadBytes == 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.ScoringTimeoutSeconds == 0 {
		cfg.ScoringTimeoutSeconds = defaultScoringTimeout
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required (set in config.yaml or PORT)")
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		return errors.New("config: jwtSecret is required (set in config.yaml or JWT_SECRET)")
	}
	if strings.TrimSpace(cfg.AIServiceURL) == "" {
		return errors.New("config: aiServiceURL is required (set in config.yaml or AI_SERVICE_URL)")
	}
	if cfg.RegisterRateLimitPerMinute < 0 || cfg.LoginRateLimitPerMinute < 0 {
		return errors.New("config: rate limits must be >= 0")
	}
	if cfg.MaxUploadBytes < 0 {
		return errors.New("config: maxUploadBytes must be >= 0")
	}
	if cfg.ScoringTimeoutSeconds < 0 {
		return errors.New("config: scoringTimeoutSeconds must be >= 0")
	}
	if cfg.MinioEndpoint != "" && cfg.MinioBucket == "" {
		return errors.New("config: minioBucket is required when minioEndpoint is set")
	}
	if _, err := ParseSessionTTL(cfg.SessionTTL); err != nil {
		return err
	}
	return nil
}

// ParseSessionTTL parses the optional session lifetime, defaulting to seven days.
func ParseSessionTTL(ttl string) (time.Duration, error) {
	if strings.TrimSpace(ttl) == "" {
		return defaultSessionTTL, nil
	}
	dur, err := time.ParseDuration(strings.TrimSpace(ttl))
	if err != nil {
		return 0, fmt.Errorf("invalid sessionTTL duration: %w", err)
	}
	if dur <= 0 {
		return 0, errors.New("config: sessionTTL must be positive")
	}
	return dur, nil
}

// ScoringTimeout returns the scoring request deadline.
func (c FileConfig) ScoringTimeout() time.Duration {
	return time.Duration(c.ScoringTimeoutSeconds) * time.Second
}

func overrideString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = strings.TrimSpace(v)
	}
}

func overrideInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			*dst = n
		}
	}
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
