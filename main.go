package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/karasuno/gridfire/server/api/rest"
	"github.com/karasuno/gridfire/server/config"
	"github.com/karasuno/gridfire/server/game/combat"
	"github.com/karasuno/gridfire/server/game/nav"
	"github.com/karasuno/gridfire/server/game/physics"
	"github.com/karasuno/gridfire/server/game/world"
	"github.com/karasuno/gridfire/server/resource"
	"github.com/karasuno/gridfire/server/scheduler"
)

func main() {
	configPath := flag.String("config", "./config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	loader := resource.NewLoader(cfg.Level.Path, logger)
	lv, err := loader.Load()
	if err != nil {
		logger.Fatal("load level", zap.Error(err))
	}

	grid := nav.NewGrid(lv, cfg.Nav)
	space := physics.NewSpace(lv, logger)
	follower := nav.NewFollower(cfg.Nav.ArrivalRadius, cfg.Nav.RecomputeSeconds)
	machine := combat.NewMachine(combat.TuningFromConfig(cfg.Combat, cfg.Game, cfg.Nav), follower, logger)
	arena := world.NewArena(lv, grid, space, machine, cfg.Game, logger)
	spawner := world.NewSpawner(arena, lv, cfg.Game.RespawnDelay.Seconds(), logger)
	spawner.SpawnAll(lv)

	if cfg.Level.Watch {
		err = loader.Watch(func(fresh *resource.Level) {
			arena.ReplaceLevel(fresh, nav.NewGrid(fresh, cfg.Nav))
		})
		if err != nil {
			logger.Warn("level watch unavailable", zap.Error(err))
		}
	}

	sched := scheduler.New(logger)
	sched.Every("respawn-check",
		time.Duration(cfg.Game.RespawnCheckS)*time.Second,
		func() { spawner.CheckRespawns(loader.Level()) })

	go arena.Run()

	api := rest.NewServer(cfg, arena, spawner, loader, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: api.Router(),
	}
	go func() {
		logger.Info("debug api listening", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	sched.Stop()
	loader.Stop()
	arena.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	logger.Info("stopped")
}
