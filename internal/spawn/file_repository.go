package spawn

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/npcbrain/internal/model"
)

// FileRepository reads spawn definitions from a YAML file:
//
//	spawns:
//	  - id: 1
//	    template: 1000
//	    name: Wolf
//	    brain: aggressive
//	    x: 17000
//	    y: 170000
//	    z: -3500
//	    count: 3
//	    level: 5
//	    max_hp: 1500
//	    faction: monster
//	    params:
//	      respawn_delay: 30s
type FileRepository struct {
	path string
}

type spawnFile struct {
	Spawns []spawnEntry `yaml:"spawns"`
}

type spawnEntry struct {
	ID         int64             `yaml:"id"`
	Template   int32             `yaml:"template"`
	Name       string            `yaml:"name"`
	Title      string            `yaml:"title"`
	Brain      string            `yaml:"brain"`
	X          int32             `yaml:"x"`
	Y          int32             `yaml:"y"`
	Z          int32             `yaml:"z"`
	Heading    uint16            `yaml:"heading"`
	Count      int32             `yaml:"count"`
	Level      int32             `yaml:"level"`
	MaxHP      int32             `yaml:"max_hp"`
	AggroRange int32             `yaml:"aggro_range"`
	MoveSpeed  int32             `yaml:"move_speed"`
	Faction    string            `yaml:"faction"`
	Params     map[string]string `yaml:"params"`
}

// NewFileRepository creates a repository over path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

// LoadAll reads the file. Entries without an id get their 1-based position;
// a missing count means one NPC.
func (r *FileRepository) LoadAll(ctx context.Context) ([]model.SpawnDef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("reading spawn file: %w", err)
	}

	var f spawnFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing spawn file %s: %w", r.path, err)
	}

	defs := make([]model.SpawnDef, 0, len(f.Spawns))
	for i, e := range f.Spawns {
		id := e.ID
		if id == 0 {
			id = int64(i + 1)
		}
		count := e.Count
		if count <= 0 {
			count = 1
		}

		defs = append(defs, model.SpawnDef{
			SpawnID:    id,
			TemplateID: e.Template,
			Name:       e.Name,
			Title:      e.Title,
			Brain:      e.Brain,
			X:          e.X,
			Y:          e.Y,
			Z:          e.Z,
			Heading:    e.Heading,
			Count:      count,
			Level:      e.Level,
			MaxHP:      e.MaxHP,
			AggroRange: e.AggroRange,
			MoveSpeed:  e.MoveSpeed,
			Faction:    e.Faction,
			Params:     e.Params,
		})
	}
	return defs, nil
}
