package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sourcegraph/conc/pool"

	server "github.com/kazz187/leavepush/internal"
	"github.com/kazz187/leavepush/internal/api"
	"github.com/kazz187/leavepush/internal/clientworker"
	"github.com/kazz187/leavepush/internal/config"
	"github.com/kazz187/leavepush/internal/pushnotification"
	"github.com/kazz187/leavepush/internal/pushsubscription"
	pushsubrepo "github.com/kazz187/leavepush/internal/pushsubscription/repositoryimpl"
	userrepo "github.com/kazz187/leavepush/internal/user/repositoryimpl"
	"github.com/kazz187/leavepush/pkg/panicerr"
	"github.com/kazz187/leavepush/web"
)

const shutdownTimeout = 10 * time.Second

func runServe() error {
	env, err := config.LoadEnv()
	if err != nil {
		return err
	}
	setupLogger(&env.BaseEnv)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	store, closeStore, err := openStorage(ctx, &env.StorageEnv)
	if err != nil {
		return err
	}
	defer closeStore()

	userRepo := userrepo.NewJSONRepository(store)
	if err := seedUsers(ctx, userRepo, env.UsersSeedFile); err != nil {
		return fmt.Errorf("seed users: %w", err)
	}
	pushSubRepo := pushsubrepo.NewJSONRepository(store)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	vapidEnv := config.VAPIDEnvFromEnv(env)
	pushEnv := config.PushEnvFromEnv(env)
	dispatcher := pushnotification.NewDispatcher(
		pushSubRepo,
		pushnotification.NewWebPushTransport(vapidEnv, pushEnv.TTL),
		pushnotification.WithTimeout(pushEnv.Timeout),
		pushnotification.WithRateLimit(pushEnv.RateLimit),
		pushnotification.WithMetrics(pushnotification.NewMetrics(reg)),
	)
	registry := pushsubscription.NewRegistry(pushSubRepo, userRepo)
	apiHandler := api.NewHandler(vapidEnv, env.APIKey, registry, dispatcher, userRepo)

	worker, err := clientworker.New(env.CacheVersion, nil)
	if err != nil {
		return err
	}

	srv := server.NewServer(env, apiHandler, worker, web.Static(), reg)

	p := pool.New().WithContext(ctx).WithCancelOnError()
	p.Go(panicerr.SafeContext(func(ctx context.Context) error {
		if err := srv.ListenAndServe(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	}))
	p.Go(func(ctx context.Context) error {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})
	return p.Wait()
}
