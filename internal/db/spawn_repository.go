package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/npcbrain/internal/model"
)

const spawnColumns = `spawn_id, template_id, name, title, brain, x, y, z, heading,
	count, level, max_hp, aggro_range, move_speed, faction, params`

// rowScanner is satisfied by pgx.Rows and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSpawnDef(row rowScanner) (model.SpawnDef, error) {
	var (
		def     model.SpawnDef
		heading int32
		params  []byte
	)
	err := row.Scan(
		&def.SpawnID, &def.TemplateID, &def.Name, &def.Title, &def.Brain,
		&def.X, &def.Y, &def.Z, &heading,
		&def.Count, &def.Level, &def.MaxHP, &def.AggroRange, &def.MoveSpeed, &def.Faction,
		&params,
	)
	if err != nil {
		return def, fmt.Errorf("scanning spawn row: %w", err)
	}
	def.Heading = uint16(heading)

	if def.Params, err = decodeParams(params); err != nil {
		return def, fmt.Errorf("spawn %d: %w", def.SpawnID, err)
	}
	return def, nil
}

// decodeParams parses a JSON object of string brain parameters. Empty means none.
func decodeParams(raw []byte) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var params map[string]string
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decoding params: %w", err)
	}
	if len(params) == 0 {
		return nil, nil
	}
	return params, nil
}

func encodeParams(params map[string]string) (string, error) {
	if len(params) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encoding params: %w", err)
	}
	return string(b), nil
}

// PgSpawnRepository reads and writes spawn points in PostgreSQL.
type PgSpawnRepository struct {
	pool *pgxpool.Pool
}

// NewPgSpawnRepository creates a new spawn repository
func NewPgSpawnRepository(pool *pgxpool.Pool) *PgSpawnRepository {
	return &PgSpawnRepository{pool: pool}
}

// LoadAll loads all spawns from database
func (r *PgSpawnRepository) LoadAll(ctx context.Context) ([]model.SpawnDef, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+spawnColumns+` FROM spawns ORDER BY spawn_id`)
	if err != nil {
		return nil, fmt.Errorf("loading all spawns: %w", err)
	}
	defer rows.Close()

	defs := make([]model.SpawnDef, 0, 64)
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
func (r *PgSpawnRepository) Save(ctx context.Context, def model.SpawnDef) (int64, error) {
	params, err := encodeParams(def.Params)
	if err != nil {
		return 0, err
	}

	args := []any{
		def.TemplateID, def.Name, def.Title, def.Brain,
		def.X, def.Y, def.Z, int32(def.Heading),
		def.Count, def.Level, def.MaxHP, def.AggroRange, def.MoveSpeed, def.Faction,
		params,
	}

	var id int64
	if def.SpawnID > 0 {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO spawns (`+spawnColumns+`)
			VALUES ($16, $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb)
			ON CONFLICT (spawn_id) DO UPDATE SET
				template_id = EXCLUDED.template_id, name = EXCLUDED.name, title = EXCLUDED.title,
				brain = EXCLUDED.brain, x = EXCLUDED.x, y = EXCLUDED.y, z = EXCLUDED.z,
				heading = EXCLUDED.heading, count = EXCLUDED.count, level = EXCLUDED.level,
				max_hp = EXCLUDED.max_hp, aggro_range = EXCLUDED.aggro_range,
				move_speed = EXCLUDED.move_speed, faction = EXCLUDED.faction, params = EXCLUDED.params
			RETURNING spawn_id`,
			append(args, def.SpawnID)...,
		).Scan(&id)
		if err == nil {
			// Keep BIGSERIAL ahead of explicit IDs.
			_, err = r.pool.Exec(ctx,
				`SELECT setval(pg_get_serial_sequence('spawns', 'spawn_id'), (SELECT MAX(spawn_id) FROM spawns))`)
		}
	} else {
		err = r.pool.QueryRow(ctx, `
			INSERT INTO spawns (template_id, name, title, brain, x, y, z, heading,
				count, level, max_hp, aggro_range, move_speed, faction, params)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15::jsonb)
			RETURNING spawn_id`,
			args...,
		).Scan(&id)
	}
	if err != nil {
		return 0, fmt.Errorf("saving spawn for template %d: %w", def.TemplateID, err)
	}
	return id, nil
}
