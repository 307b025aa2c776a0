// Package config loads service configuration from the environment.
//
// A .env file in the working directory is read first when present; real
// environment variables always win over it. Every value has a default except
// SESSION_SECRET outside development.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environments.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"
)

// devSessionSecret is only used when APP_ENV=development and SESSION_SECRET is unset.
const devSessionSecret = "dev-only-session-secret-change-me"

// Config is the validated service configuration. The env tag names the
// variable each field is read from; validation errors report that name.
type Config struct {
	Env     string `env:"APP_ENV"  validate:"oneof=development production test"`
	Port    string `env:"PORT"     validate:"required,numeric"`
	BaseURL string `env:"BASE_URL" validate:"required,url"`

	DatabaseDriver string `env:"DATABASE_DRIVER" validate:"oneof=sqlite postgres"`
	DatabaseDSN    string `env:"DATABASE_DSN"    validate:"required"`

	SessionSecret     string        `env:"SESSION_SECRET"      validate:"required,min=16"`
	SessionCookieName string        `env:"SESSION_COOKIE_NAME" validate:"required"`
	SessionTTL        time.Duration `env:"SESSION_TTL"         validate:"gt=0"`
	SessionStore      string        `env:"SESSION_STORE"       validate:"oneof=memory redis"`

	RedisAddr     string `env:"REDIS_ADDR"     validate:"required_if=SessionStore redis"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB"       validate:"gte=0"`

	// A provider is enabled when its client id is set.
	GoogleClientID     string   `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string   `env:"GOOGLE_CLIENT_SECRET" validate:"required_with=GoogleClientID"`
	GoogleScopes       []string `env:"GOOGLE_SCOPES"`
	KakaoClientID      string   `env:"KAKAO_CLIENT_ID"`
	KakaoClientSecret  string   `env:"KAKAO_CLIENT_SECRET"`
	KakaoScopes        []string `env:"KAKAO_SCOPES"`

	OAuthTimeout time.Duration `env:"OAUTH_TIMEOUT" validate:"gt=0"`

	SeedData bool `env:"SEED_DATA"`
}

// Load reads .env (if any) and the environment, then validates the result.
func Load() (*Config, error) {
	// A missing .env is normal in production.
	_ = godotenv.Load()

	env := getEnv("APP_ENV", EnvDevelopment)
	secret := getEnv("SESSION_SECRET", "")
	if secret == "" && env == EnvDevelopment {
		secret = devSessionSecret
	}

	cfg := &Config{
		Env:     env,
		Port:    getEnv("PORT", "8080"),
		BaseURL: strings.TrimSuffix(getEnv("BASE_URL", "http://localhost:8080"), "/"),

		DatabaseDriver: getEnv("DATABASE_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("DATABASE_DSN", "data/boardsvc.db"),

		SessionSecret:     secret,
		SessionCookieName: getEnv("SESSION_COOKIE_NAME", "BOARDSESSION"),
		SessionTTL:        getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionStore:      getEnv("SESSION_STORE", "memory"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleScopes:       getEnvSlice("GOOGLE_SCOPES", nil),
		KakaoClientID:      getEnv("KAKAO_CLIENT_ID", ""),
		KakaoClientSecret:  getEnv("KAKAO_CLIENT_SECRET", ""),
		KakaoScopes:        getEnvSlice("KAKAO_SCOPES", nil),

		OAuthTimeout: getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),

		SeedData: getEnvBool("SEED_DATA", true),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("env"); name != "" {
			return name
		}
		return f.Name
	})
	return v
}

// Validate checks every field and reports all problems at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("config: invalid configuration: %s", strings.Join(msgs, "; "))
}

// Addr is the listen address, e.g. ":8080".
func (c *Config) Addr() string { return ":" + c.Port }

// IsDevelopment reports whether APP_ENV is development.
func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }

// SecureCookies reports whether the public URL is HTTPS.
func (c *Config) SecureCookies() bool { return strings.HasPrefix(c.BaseURL, "https://") }

// CallbackURL is the OAuth redirect URI to register with provider.
func (c *Config) CallbackURL(provider string) string {
	return c.BaseURL + "/login/oauth2/code/" + provider
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvSlice splits a comma-separated value, dropping empty parts.
func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var parts []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return defaultValue
	}
	return parts
}
