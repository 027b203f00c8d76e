package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cbodonnell/tabletop/pkg/api"
	authproviders "github.com/cbodonnell/tabletop/pkg/auth/providers"
	"github.com/cbodonnell/tabletop/pkg/config"
	"github.com/cbodonnell/tabletop/pkg/game"
	"github.com/cbodonnell/tabletop/pkg/game/rules"
	"github.com/cbodonnell/tabletop/pkg/log"
	"github.com/cbodonnell/tabletop/pkg/metrics"
	"github.com/cbodonnell/tabletop/pkg/network"
	"github.com/cbodonnell/tabletop/pkg/queue"
	"github.com/cbodonnell/tabletop/pkg/repositories"
	"github.com/cbodonnell/tabletop/pkg/version"
	"github.com/cbodonnell/tabletop/pkg/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	parsedLogLevel, err := log.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse log level: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, parsedLogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", parsedLogLevel)

	log.Info("Starting server version %s", version.Get())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	repository, err := repositories.NewRepositoryFromURL(ctx, cfg.DatabaseURL)
	if err != nil {
		panic(fmt.Sprintf("Failed to create repository: %v", err))
	}
	defer repository.Close(ctx)

	ruleset, err := rules.New(cfg.Ruleset, cfg.MaxTurns)
	if err != nil {
		panic(fmt.Sprintf("Failed to create ruleset: %v", err))
	}
	log.Info("Using ruleset %s", ruleset.Name())

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	events := queue.NewInMemoryQueue(cfg.EventQueueSize)
	hub := network.NewHub(m)

	registry := game.NewRegistry(game.NewRegistryOptions{
		Repository:     repository,
		Ruleset:        ruleset,
		Events:         events,
		Metrics:        m,
		PersistTimeout: cfg.PersistTimeout,
	})

	broadcastWorker := workers.NewBroadcastWorker(workers.NewBroadcastWorkerOptions{
		Hub:      hub,
		Events:   events,
		Interval: cfg.BroadcastInterval,
	})
	go broadcastWorker.Start(ctx)

	evictionWorker := workers.NewEvictionWorker(workers.NewEvictionWorkerOptions{
		Evictor:  registry,
		Interval: cfg.EvictionInterval,
		MaxIdle:  cfg.ActorIdleTimeout,
	})
	go evictionWorker.Start(ctx)

	apiServerOpts := api.NewAPIServerOptions{
		Port:        cfg.Port,
		AllowOrigin: cfg.AllowOrigin,
		Router:      game.NewRouter(registry),
		Hub:         hub,
		Gatherer:    reg,
	}
	if cfg.AuthEnabled() {
		authProvider, err := authproviders.NewFirebaseAuthProvider(ctx, authproviders.NewFirebaseAuthProviderOptions{
			ProjectID:       cfg.FirebaseProjectID,
			APIKey:          cfg.FirebaseAPIKey,
			CredentialsFile: cfg.FirebaseCredentialsFile,
		})
		if err != nil {
			panic(fmt.Sprintf("Failed to create Firebase auth provider: %v", err))
		}
		apiServerOpts.AuthProvider = authProvider
		log.Info("Token verification enabled for project %s", cfg.FirebaseProjectID)
	}
	if cfg.TLSEnabled() {
		apiServerOpts.TLS = &api.TLSConfig{
			CertFile: cfg.TLSCertFile,
			KeyFile:  cfg.TLSKeyFile,
		}
	}
	server := api.NewAPIServer(apiServerOpts)
	go server.Start()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)
	<-interrupt
	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop server: %v", err)
	}
	cancel()
	registry.Stop()
	// subscriptions are hijacked connections that Stop does not wait for
	hub.Close()
}
