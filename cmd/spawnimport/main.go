// Command spawnimport copies a YAML spawn table into the SQLite or PostgreSQL spawn store.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/udisondev/npcbrain/internal/config"
	"github.com/udisondev/npcbrain/internal/db"
	"github.com/udisondev/npcbrain/internal/model"
	"github.com/udisondev/npcbrain/internal/spawn"
)

type spawnWriter interface {
	Save(ctx context.Context, def model.SpawnDef) (int64, error)
}

func main() {
	from := flag.String("from", "config/spawns.yaml", "YAML spawn table")
	to := flag.String("to", config.SourceSQLite, "target store: sqlite | postgres")
	cfgPath := flag.String("config", config.DefaultConfigPath, "server config with database settings")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	if err := run(context.Background(), *from, *to, *cfgPath); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, from, to, cfgPath string) error {
	cfg, err := config.LoadServer(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	defs, err := spawn.NewFileRepository(from).LoadAll(ctx)
	if err != nil {
		return err
	}

	var w spawnWriter
	switch to {
	case config.SourceSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.Spawn.SQLitePath)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		w = db.NewSQLiteSpawnRepository(sqlDB)
	case config.SourcePostgres:
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return err
		}
		database, err := db.New(ctx, dsn)
		if err != nil {
			return err
		}
		defer database.Close()
		w = database.Spawns()
	default:
		return fmt.Errorf("unknown target %q", to)
	}

	for _, def := range defs {
		if _, err := w.Save(ctx, def); err != nil {
			return err
		}
	}
	slog.Info("spawns imported", "from", from, "to", to, "count", len(defs))
	return nil
}
