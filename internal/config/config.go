// Package config assembles the API server configuration from an optional
// .env file, an optional YAML file and the process environment, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"sitecms/internal/domain/entity"
	"sitecms/internal/service/auth"
	"sitecms/internal/usecase/media"
	env "sitecms/pkg/config"
)

// MinSecretLength is the shortest accepted JWT_SECRET.
const MinSecretLength = 32

// Storage backends.
const (
	StorageS3     = "s3"
	StorageMemory = "memory"
)

type Config struct {
	Server      ServerConfig
	Log         LogConfig
	DatabaseURL string
	Auth        AuthConfig
	Storage     StorageConfig
	AI          AIConfig

	CORSOrigins []string
	RateLimit   RateLimitConfig

	// MaxUploadBytes lowers the per-image cap; zero keeps the uploader
	// default, which is also the ceiling.
	MaxUploadBytes int64
	// CacheTTL is how long public reads are served from memory.
	CacheTTL time.Duration
	// SuccessDelay is how long a saved draft stays on screen; zero keeps the default.
	SuccessDelay     time.Duration
	TraceSampleRatio float64
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LogConfig struct {
	Level  string
	Format string // "json" or "text"
}

type AuthConfig struct {
	Secret          string
	SessionTTL      time.Duration
	SignInPerMinute int
	Editors         []auth.Account
}

// StorageConfig describes the object store. Covers and Logos are logical
// bucket names; on S3 they become key prefixes inside Bucket.
type StorageConfig struct {
	Backend         string `yaml:"backend"`
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	PublicBaseURL   string `yaml:"public_base_url"`
	CoversBucket    string `yaml:"covers_bucket"`
	LogosBucket     string `yaml:"logos_bucket"`
	AccessKeyID     string `yaml:"-"`
	SecretAccessKey string `yaml:"-"`
}

type AIConfig struct {
	Provider  string
	APIKey    string
	Model     string
	MaxTokens int
	Timeout   time.Duration
}

type RateLimitConfig struct {
	PublicPerMinute int
	PublicBurst     int
}

// fileConfig is the YAML layout. Values may reference the environment as ${VAR}.
type fileConfig struct {
	Editors     []auth.Account `yaml:"editors"`
	Storage     StorageConfig  `yaml:"storage"`
	CORSOrigins []string       `yaml:"cors_origins"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    90 * time.Second,
			IdleTimeout:     60 * time.Second,
			RequestTimeout:  75 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Log:  LogConfig{Level: "info", Format: "json"},
		Auth: AuthConfig{SessionTTL: 8 * time.Hour, SignInPerMinute: 5},
		Storage: StorageConfig{
			Backend:      StorageS3,
			Region:       "us-east-1",
			CoversBucket: "covers",
			LogosBucket:  "logos",
		},
		AI:               AIConfig{Timeout: 60 * time.Second},
		RateLimit:        RateLimitConfig{PublicPerMinute: 120, PublicBurst: 30},
		CacheTTL:         30 * time.Second,
		TraceSampleRatio: 1.0,
	}
}

// Load reads the configuration. path names the YAML file; when empty,
// CONFIG_FILE is consulted and the file is optional. A .env file in the
// working directory is loaded first without overriding the environment.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		fc, err := readFile(path)
		if err != nil {
			return nil, err
		}
		cfg.applyFile(fc)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readFile(path string) (*fileConfig, error) {
	// #nosec G304 -- path comes from the command line or CONFIG_FILE
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func (c *Config) applyFile(fc *fileConfig) {
	c.Auth.Editors = append(c.Auth.Editors, fc.Editors...)
	if len(fc.CORSOrigins) > 0 {
		c.CORSOrigins = fc.CORSOrigins
	}

	s := fc.Storage
	setIfNotEmpty(&c.Storage.Backend, s.Backend)
	setIfNotEmpty(&c.Storage.Bucket, s.Bucket)
	setIfNotEmpty(&c.Storage.Region, s.Region)
	setIfNotEmpty(&c.Storage.Endpoint, s.Endpoint)
	setIfNotEmpty(&c.Storage.PublicBaseURL, s.PublicBaseURL)
	setIfNotEmpty(&c.Storage.CoversBucket, s.CoversBucket)
	setIfNotEmpty(&c.Storage.LogosBucket, s.LogosBucket)
	c.Storage.UsePathStyle = c.Storage.UsePathStyle || s.UsePathStyle
}

func setIfNotEmpty(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func (c *Config) applyEnv() {
	srv := &c.Server
	srv.Port = env.GetEnvString("PORT", srv.Port)
	srv.ReadTimeout = env.GetEnvDuration("HTTP_READ_TIMEOUT", srv.ReadTimeout)
	srv.WriteTimeout = env.GetEnvDuration("HTTP_WRITE_TIMEOUT", srv.WriteTimeout)
	srv.IdleTimeout = env.GetEnvDuration("HTTP_IDLE_TIMEOUT", srv.IdleTimeout)
	srv.RequestTimeout = env.GetEnvDuration("HTTP_REQUEST_TIMEOUT", srv.RequestTimeout)
	srv.ShutdownTimeout = env.GetEnvDuration("SHUTDOWN_TIMEOUT", srv.ShutdownTimeout)

	c.Log.Level = env.GetEnvString("LOG_LEVEL", c.Log.Level)
	c.Log.Format = strings.ToLower(env.GetEnvString("LOG_FORMAT", c.Log.Format))

	c.DatabaseURL = env.GetEnvString("DATABASE_URL", c.DatabaseURL)

	c.Auth.Secret = env.GetEnvString("JWT_SECRET", c.Auth.Secret)
	c.Auth.SessionTTL = env.GetEnvDuration("SESSION_TTL", c.Auth.SessionTTL)
	c.Auth.SignInPerMinute = env.GetEnvInt("SIGNIN_RATE_PER_MINUTE", c.Auth.SignInPerMinute)
	if email := strings.TrimSpace(os.Getenv("EDITOR_EMAIL")); email != "" {
		c.addEditor(auth.Account{
			Email:    email,
			Password: os.Getenv("EDITOR_PASSWORD"),
			Role:     env.GetEnvString("EDITOR_ROLE", auth.RoleEditor),
		})
	}

	st := &c.Storage
	st.Backend = strings.ToLower(env.GetEnvString("STORAGE_BACKEND", st.Backend))
	st.Bucket = env.GetEnvString("S3_BUCKET", st.Bucket)
	st.Region = env.GetEnvString("S3_REGION", st.Region)
	st.Endpoint = env.GetEnvString("S3_ENDPOINT", st.Endpoint)
	st.UsePathStyle = env.GetEnvBool("S3_USE_PATH_STYLE", st.UsePathStyle)
	st.PublicBaseURL = env.GetEnvString("STORAGE_PUBLIC_BASE_URL", st.PublicBaseURL)
	st.CoversBucket = env.GetEnvString("COVERS_BUCKET", st.CoversBucket)
	st.LogosBucket = env.GetEnvString("LOGOS_BUCKET", st.LogosBucket)
	st.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	st.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")

	ai := &c.AI
	ai.Provider = strings.ToLower(env.GetEnvString("AI_PROVIDER", ai.Provider))
	switch ai.Provider {
	case "claude", "anthropic":
		ai.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		ai.Model = env.GetEnvString("CLAUDE_MODEL", ai.Model)
	case "openai":
		ai.APIKey = os.Getenv("OPENAI_API_KEY")
		ai.Model = env.GetEnvString("OPENAI_MODEL", ai.Model)
	}
	ai.MaxTokens = env.GetEnvInt("AI_MAX_TOKENS", ai.MaxTokens)
	ai.Timeout = env.GetEnvDuration("AI_TIMEOUT", ai.Timeout)

	c.CORSOrigins = env.GetEnvStringList("CORS_ALLOWED_ORIGINS", c.CORSOrigins)
	c.RateLimit.PublicPerMinute = env.GetEnvInt("PUBLIC_RATE_LIMIT_PER_MINUTE", c.RateLimit.PublicPerMinute)
	c.RateLimit.PublicBurst = env.GetEnvInt("PUBLIC_RATE_LIMIT_BURST", c.RateLimit.PublicBurst)
	c.MaxUploadBytes = env.GetEnvInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.CacheTTL = env.GetEnvDuration("CONTENT_CACHE_TTL", c.CacheTTL)
	c.SuccessDelay = env.GetEnvDuration("SAVE_SUCCESS_DELAY", c.SuccessDelay)
	c.TraceSampleRatio = env.GetEnvFloat("TRACE_SAMPLE_RATIO", c.TraceSampleRatio)
}

// addEditor replaces an account with the same email or appends a new one.
func (c *Config) addEditor(a auth.Account) {
	for i, existing := range c.Auth.Editors {
		if strings.EqualFold(existing.Email, a.Email) {
			c.Auth.Editors[i] = a
			return
		}
	}
	c.Auth.Editors = append(c.Auth.Editors, a)
}

// Validate reports every missing or malformed required setting as a
// ConfigurationError, joined into one error.
func (c *Config) Validate() error {
	var errs []error
	add := func(setting, msg string) {
		errs = append(errs, &entity.ConfigurationError{Setting: setting, Message: msg})
	}

	if c.DatabaseURL == "" {
		add("DATABASE_URL", "not set")
	}
	if len(c.Auth.Secret) < MinSecretLength {
		add("JWT_SECRET", fmt.Sprintf("must be at least %d characters", MinSecretLength))
	}
	if len(c.Auth.Editors) == 0 {
		add("EDITOR_EMAIL", "no editor accounts configured")
	}
	for _, a := range c.Auth.Editors {
		if strings.TrimSpace(a.Email) == "" || a.Password == "" {
			add("editors", "every editor needs an email and a password")
			break
		}
	}

	switch c.Storage.Backend {
	case StorageS3:
		if c.Storage.Bucket == "" {
			add("S3_BUCKET", "not set")
		}
		if c.Storage.PublicBaseURL == "" {
			add("STORAGE_PUBLIC_BASE_URL", "not set")
		}
	case StorageMemory:
	default:
		add("STORAGE_BACKEND", fmt.Sprintf("unknown backend %q", c.Storage.Backend))
	}
	if c.Storage.CoversBucket == "" || c.Storage.LogosBucket == "" {
		add("COVERS_BUCKET", "covers and logos buckets must be named")
	}

	if c.Log.Format != "json" && c.Log.Format != "text" {
		add("LOG_FORMAT", fmt.Sprintf("unknown format %q", c.Log.Format))
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		add("TRACE_SAMPLE_RATIO", "must be between 0 and 1")
	}
	if c.RateLimit.PublicPerMinute <= 0 {
		add("PUBLIC_RATE_LIMIT_PER_MINUTE", "must be positive")
	}
	if c.MaxUploadBytes < 0 || c.MaxUploadBytes > media.DefaultMaxSize {
		add("MAX_UPLOAD_BYTES", fmt.Sprintf("must be between 0 and %d", media.DefaultMaxSize))
	}

	return errors.Join(errs...)
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return ":" + strings.TrimPrefix(c.Server.Port, ":")
}
