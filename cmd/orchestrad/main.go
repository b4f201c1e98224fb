// Command orchestrad runs the hierarchical agent team orchestrator as a
// standalone HTTP service: config → logger → state store → event bus →
// team builder → execution engine → HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"goa.design/hierarchical-agents/internal/collaborators"
	"goa.design/hierarchical-agents/internal/config"
	"goa.design/hierarchical-agents/internal/engine"
	"goa.design/hierarchical-agents/internal/eventbus"
	"goa.design/hierarchical-agents/internal/httpapi"
	"goa.design/hierarchical-agents/internal/statestore"
	"goa.design/hierarchical-agents/internal/teambuilder"
	"goa.design/hierarchical-agents/internal/telemetry"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file overlay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "orchestrad: loading config:", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "orchestrad: invalid config:", err)
		os.Exit(1)
	}

	logger := telemetry.NewClueLogger()
	metrics := telemetry.NewClueMetrics()
	tracer := telemetry.NewClueTracer()

	ctx := context.Background()
	logger.Info(ctx, "starting orchestrad", "config", cfg.String())

	store, err := buildStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "orchestrad: building state store:", err)
		os.Exit(1)
	}

	bus := eventbus.New(cfg.Bus, logger, metrics)
	defer bus.Shutdown()

	teams := teambuilder.NewInMemStore()

	// No real LLM backend is wired here: collaborators.AgentRunner and
	// collaborators.SupervisorRouter are the explicit external-collaborator
	// boundary (spec.md §1). A deployment with a real provider supplies its
	// own implementations; these reference ones keep the service runnable
	// standalone.
	eng := engine.New(store, bus, collaborators.EchoRunner{}, collaborators.NewStaticRouter(), logger, tracer)

	router := httpapi.New(teams, eng, bus, store, logger, cfg.DefaultMaxTotalExecutionSeconds)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info(ctx, "http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "http server shutdown error", "error", err)
	}
	eng.Shutdown()
}

func buildStore(cfg config.Config) (statestore.Store, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return statestore.NewRedisStore(client, cfg.Store), nil
	default:
		return statestore.NewInMemStore(cfg.Store), nil
	}
}
