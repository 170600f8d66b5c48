package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3000"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
	// APIKey protects the notify endpoints when set.
	APIKey string `envconfig:"API_KEY"`
}

type StorageEnv struct {
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:"data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"leavepush/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-southeast-1"`
	// Redis settings (used when Type == "redis")
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
	RedisPrefix   string `envconfig:"REDIS_PREFIX" default:"leavepush:"`

	UsersSeedFile string `envconfig:"USERS_SEED_FILE"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY" required:"true"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY" required:"true"`
	VAPIDSubject    string `envconfig:"VAPID_SUBJECT" default:"mailto:admin@example.com"`
}

type PushEnv struct {
	TTL       int           `envconfig:"PUSH_TTL" default:"86400"`
	Timeout   time.Duration `envconfig:"PUSH_TIMEOUT" default:"10s"`
	RateLimit float64       `envconfig:"PUSH_RATE_LIMIT" default:"0"`
}

type ClientEnv struct {
	CacheVersion int `envconfig:"CACHE_VERSION" default:"1"`
}

type Env struct {
	BaseEnv
	StorageEnv
	VAPIDEnv
	PushEnv
	ClientEnv
}

// Variables are read as LEAVEPUSH_<NAME>, falling back to the bare <NAME>
// (e.g. VAPID_PUBLIC_KEY) when the prefixed form is unset.
const namespace = "LEAVEPUSH"

// LoadEnv loads the full server environment. It fails when the VAPID key pair
// is missing.
func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.VAPIDEnv.Validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

// LoadStorageEnv loads only what the offline commands need.
func LoadStorageEnv() (*StorageEnv, error) {
	var env StorageEnv
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load storage env: %w", err)
	}
	return &env, nil
}

// Validate rejects an empty key pair. envconfig only checks that the variables
// are present, not that they hold a value.
func (e *VAPIDEnv) Validate() error {
	var errs []error
	if e.VAPIDPublicKey == "" {
		errs = append(errs, errors.New("VAPID_PUBLIC_KEY is empty"))
	}
	if e.VAPIDPrivateKey == "" {
		errs = append(errs, errors.New("VAPID_PRIVATE_KEY is empty"))
	}
	return errors.Join(errs...)
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelInfo
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}

func PushEnvFromEnv(env *Env) *PushEnv {
	return &env.PushEnv
}
