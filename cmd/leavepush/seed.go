package main

import (
	"context"
	"log/slog"

	"github.com/kazz187/leavepush/internal/config"
	userrepo "github.com/kazz187/leavepush/internal/user/repositoryimpl"
)

func runSeedUsers(seedFile string) error {
	env, err := config.LoadStorageEnv()
	if err != nil {
		return err
	}
	setupLogger(&config.BaseEnv{Env: "local", LogLevel: "debug"})

	ctx := context.Background()
	store, closeStore, err := openStorage(ctx, env)
	if err != nil {
		return err
	}
	defer closeStore()

	if seedFile == "" {
		seedFile = env.UsersSeedFile
	}
	repo := userrepo.NewJSONRepository(store)
	if err := seedUsers(ctx, repo, seedFile); err != nil {
		return err
	}
	n, err := repo.Count(ctx)
	if err != nil {
		return err
	}
	slog.Info("users table ready", "users", n)
	return nil
}
