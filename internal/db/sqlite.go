package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/udisondev/npcbrain/internal/model"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (creating if needed) an embedded spawn database and migrates it.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty sqlite path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating sqlite dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := sqlDB.ExecContext(ctx, p); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("applying %q: %w", p, err)
		}
	}

	if err := RunSQLiteMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return sqlDB, nil
}

// SQLiteSpawnRepository reads and writes spawn points in an embedded SQLite file.
type SQLiteSpawnRepository struct {
	db *sql.DB
}

// NewSQLiteSpawnRepository wraps a database opened with OpenSQLite.
func NewSQLiteSpawnRepository(db *sql.DB) *SQLiteSpawnRepository {
	return &SQLiteSpawnRepository{db: db}
}

// LoadAll loads all spawns ordered by ID.
func (r *SQLiteSpawnRepository) LoadAll(ctx context.Context) ([]model.SpawnDef, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+spawnColumns+` FROM spawns ORDER BY spawn_id`)
	if err != nil {
		return nil, fmt.Errorf("loading all spawns: %w", err)
	}
	defer rows.Close()

	var defs []model.SpawnDef
	for rows.Next() {
		def, err := scanSpawnDef(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating spawn rows: %w", err)
	}
	return defs, nil
}

// Save inserts def, or replaces the row with the same SpawnID. Returns the spawn ID.
func (r *SQLiteSpawnRepository) Save(ctx context.Context, def model.SpawnDef) (int64, error) {
	params, err := encodeParams(def.Params)
	if err != nil {
		return 0, err
	}

	var id any
	if def.SpawnID > 0 {
		id = def.SpawnID
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO spawns (`+spawnColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, def.TemplateID, def.Name, def.Title, def.Brain,
		def.X, def.Y, def.Z, int32(def.Heading),
		def.Count, def.Level, def.MaxHP, def.AggroRange, def.MoveSpeed, def.Faction,
		params,
	)
	if err != nil {
		return 0, fmt.Errorf("saving spawn for template %d: %w", def.TemplateID, err)
	}
	if def.SpawnID > 0 {
		return def.SpawnID, nil
	}

	newID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading spawn id: %w", err)
	}
	return newID, nil
}
