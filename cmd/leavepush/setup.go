package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/kazz187/leavepush/internal/config"
	"github.com/kazz187/leavepush/internal/user"
	"github.com/kazz187/leavepush/pkg/clog"
	"github.com/kazz187/leavepush/pkg/storage"
)

func setupLogger(base *config.BaseEnv) {
	level := base.SlogLevel()
	var handler slog.Handler
	if base.Env == "local" {
		handler = clog.NewTextHandler(os.Stderr, clog.WithLevel(level), clog.WithColor(true))
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	}
	slog.SetDefault(slog.New(clog.NewAttributesHandler(handler)))
}

// openStorage returns the configured backend and a function releasing it.
func openStorage(ctx context.Context, env *config.StorageEnv) (storage.Storage, func(), error) {
	noop := func() {}
	switch env.Type {
	case "s3":
		s, err := storage.NewS3Storage(ctx, env.S3Bucket, env.S3Prefix, env.S3Region)
		if err != nil {
			return nil, noop, fmt.Errorf("create S3 storage: %w", err)
		}
		return s, noop, nil
	case "redis":
		s, err := storage.NewRedisStorage(ctx, &redis.Options{
			Addr:     env.RedisAddr,
			Password: env.RedisPassword,
			DB:       env.RedisDB,
		}, env.RedisPrefix)
		if err != nil {
			return nil, noop, fmt.Errorf("create redis storage: %w", err)
		}
		return s, func() {
			if err := s.Close(); err != nil {
				slog.Warn("failed to close redis client", "error", err)
			}
		}, nil
	case "local", "":
		s, err := storage.NewLocalStorage(env.BaseDir)
		if err != nil {
			return nil, noop, fmt.Errorf("create local storage: %w", err)
		}
		return s, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown storage type %q", env.Type)
	}
}

func seedUsers(ctx context.Context, repo user.Repository, seedFile string) error {
	users := user.DefaultUsers()
	if seedFile != "" {
		var err error
		users, err = user.LoadSeedFile(seedFile)
		if err != nil {
			return err
		}
	}
	seeded, err := repo.Seed(ctx, users)
	if err != nil {
		return err
	}
	if !seeded {
		slog.Debug("users table already present, not seeding")
	}
	return nil
}
