// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-hclog"

	"pickleball/internal/api"
	"pickleball/internal/config"
	"pickleball/internal/events"
	"pickleball/internal/game/match"
	"pickleball/internal/game/shot"
	"pickleball/internal/network"
	"pickleball/internal/services/cluster"
	"pickleball/internal/services/sweeper"
	"pickleball/internal/session"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 1. CONFIG AND LOGGING
	cfg, err := config.Load()
	if err != nil {
		hclog.Default().Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:       cfg.ServiceName,
		Level:      hclog.LevelFromString(cfg.LogLevel),
		JSONFormat: cfg.LogJSON,
	})
	logger.Info("configuration loaded", "port", cfg.Port, "consul", cfg.ConsulAddrs,
		"nats", cfg.NATSURL, "winningScore", cfg.WinningScore, "winMargin", cfg.WinMargin)

	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger hclog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. GAME ENGINE
	rules := shot.DefaultRules()
	if cfg.RulesFile != "" {
		loaded, err := shot.LoadRules(cfg.RulesFile)
		if err != nil {
			return err
		}
		rules = loaded
		logger.Info("rule table loaded", "file", cfg.RulesFile, "shots", rules.Shots())
	}
	registry := match.NewRegistry(rules, match.Settings{
		WinningScore:       cfg.WinningScore,
		WinMargin:          cfg.WinMargin,
		PendingTTL:         cfg.PendingTTL,
		CompletedRetention: cfg.CompletedRetention,
	}, logger.Named("registry"))

	// 3. EVENTS
	ready := cluster.NewHealthAggregator()
	var publisher events.Publisher = events.NewLogPublisher(logger.Named("events"))
	if cfg.NATSURL != "" {
		nc, err := events.ConnectNATS(cfg.NATSURL, cfg.ServiceName+"-"+cfg.AdvertiseHost, cfg.EventsSubject, logger.Named("events"))
		if err != nil {
			return err
		}
		ready.AddCheck("nats", nc.Check)
		publisher = events.Fanout{publisher, nc}
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("failed to close event publisher", "error", err)
		}
	}()

	// 4. BACKGROUND CLEANUP
	sweep := sweeper.New(registry, publisher, cfg.SweepInterval, logger.Named("sweeper"))
	if err := sweep.Start(); err != nil {
		return err
	}
	defer func() {
		if err := sweep.Stop(); err != nil {
			logger.Warn("failed to stop sweeper", "error", err)
		}
	}()

	// 5. TRANSPORTS
	wsServer := network.NewServer(session.NewGameHandler(registry, publisher, logger.Named("session")), logger.Named("network"))
	wsServer.Start(ctx)

	mux := http.NewServeMux()
	mux.Handle("GET /ws", wsServer)
	mux.HandleFunc("GET /health", cluster.NewBasicHealthHandler())
	mux.HandleFunc("GET /ready", ready.Handler())
	api.RegisterHandlers(mux, registry, publisher, logger.Named("api"))

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// 6. SERVICE REGISTRATION
	if cfg.ConsulAddrs != "" {
		consulClient, err := cluster.NewConsulClient(cfg.ConsulAddrs, logger.Named("cluster"))
		if err != nil {
			return err
		}
		reg := cluster.Registration{
			ServiceName: cfg.ServiceName,
			Host:        cfg.AdvertiseHost,
			Port:        cfg.Port,
			Tags:        []string{"ws", "http"},
		}
		if err := cluster.RegisterService(consulClient, reg); err != nil {
			return err
		}
		logger.Info("registered in consul", "id", reg.ServiceID())
		defer func() {
			if err := cluster.DeregisterService(consulClient, reg); err != nil {
				logger.Warn("consul deregistration failed", "error", err)
			}
		}()
	}

	// 7. WAIT FOR SHUTDOWN
	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down", "stats", registry.Stats())

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
