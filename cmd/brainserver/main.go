package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/npcbrain/internal/ai"
	"github.com/udisondev/npcbrain/internal/config"
	"github.com/udisondev/npcbrain/internal/db"
	"github.com/udisondev/npcbrain/internal/geo"
	"github.com/udisondev/npcbrain/internal/spawn"
	"github.com/udisondev/npcbrain/internal/world"
)

const statsInterval = 30 * time.Second

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := config.DefaultConfigPath
	if p := os.Getenv(config.EnvConfigPath); p != "" {
		cfgPath = p
	}

	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	setupLogging(cfg.LogLevel)
	slog.Info("config loaded", "path", cfgPath, "spawnSource", cfg.Spawn.Source)

	w := world.New()
	slog.Info("world grid initialized", "regions", w.RegionCount())

	grid, err := geo.LoadGrid(cfg.Geo.ObstaclesFile)
	if err != nil {
		return fmt.Errorf("loading obstacles: %w", err)
	}
	slog.Info("obstacles loaded", "blockedCells", grid.BlockedCount())
	los := geo.NewLOSService(grid, cfg.Geo.Workers, cfg.Geo.QueueSize)

	sched := ai.NewScheduler(cfg.Scheduler.Resolution, cfg.Scheduler.WheelSlots, cfg.Scheduler.Workers)
	bus := ai.NewBus()

	loader := spawn.NewLoader(spawn.Config{
		World:     w,
		Registry:  spawn.NewDefaultRegistry(),
		Scheduler: sched,
		Bus:       bus,
		LOS:       los,
		Tuning:    cfg.AI.Tuning(),
	})
	defer func() {
		loader.Shutdown()
		sched.Stop()
		slog.Info("brain server stopped")
	}()

	repo, closeRepo, err := openSpawnRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	report, err := loader.LoadFrom(ctx, repo)
	if err != nil {
		return err
	}
	slog.Info("spawn table applied",
		"spawned", report.Spawned,
		"skipped", report.Skipped,
		"brains", loader.BrainCount(),
		"active", loader.ActiveCount())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sched.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("brain scheduler: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		slog.Info("starting LOS service", "workers", cfg.Geo.Workers, "queue", cfg.Geo.QueueSize)
		if err := los.Run(gctx); err != nil {
			return fmt.Errorf("LOS service: %w", err)
		}
		return nil
	})

	if cfg.HotReload {
		g.Go(func() error {
			obstacles := cfg.Geo.ObstaclesFile
			err := config.Watch(gctx, cfgPath, func(next config.Server) {
				setupLogging(next.LogLevel)
				loader.SetTuning(next.AI.Tuning())

				if next.Geo.ObstaclesFile != obstacles {
					reloaded, err := geo.LoadGrid(next.Geo.ObstaclesFile)
					if err != nil {
						slog.Error("obstacles reload failed", "path", next.Geo.ObstaclesFile, "err", err)
						return
					}
					los.SetGrid(reloaded)
					obstacles = next.Geo.ObstaclesFile
					slog.Info("obstacles reloaded", "blockedCells", reloaded.BlockedCount())
				}
			})
			if err != nil {
				return fmt.Errorf("config watcher: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				st := sched.Stats()
				slog.Info("brain stats",
					"brains", loader.BrainCount(),
					"active", loader.ActiveCount(),
					"tasks", st.Live,
					"fired", st.Fired,
					"panics", st.Panics,
					"respawns", loader.RespawnCount(),
					"losServed", los.Served(),
					"losDropped", los.Dropped())
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// openSpawnRepository returns the configured spawn source and a func releasing it.
func openSpawnRepository(ctx context.Context, cfg config.Server) (spawn.Repository, func(), error) {
	switch cfg.Spawn.Source {
	case config.SourcePostgres:
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return nil, nil, fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		slog.Info("connected to database", "host", cfg.Database.Host, "db", cfg.Database.DBName)
		return database.Spawns(), database.Close, nil

	case config.SourceSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.Spawn.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("opened spawn database", "path", cfg.Spawn.SQLitePath)
		return db.NewSQLiteSpawnRepository(sqlDB), func() { _ = sqlDB.Close() }, nil

	default:
		return spawn.NewFileRepository(cfg.Spawn.File), func() {}, nil
	}
}

func setupLogging(level string) {
	logLevel := parseLogLevel(level)
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	ai.EnableDebugLogging(logLevel == slog.LevelDebug)
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
