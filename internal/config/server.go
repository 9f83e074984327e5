package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/udisondev/npcbrain/internal/ai"
)

// EnvConfigPath overrides the default config path.
const EnvConfigPath = "NPCBRAIN_CONFIG"

// DefaultConfigPath is read when EnvConfigPath is unset.
const DefaultConfigPath = "config/brainserver.yaml"

// Spawn sources.
const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
	SourceSQLite   = "sqlite"
)

// AIConfig holds brain tuning. Zero values fall back to the built-in defaults.
type AIConfig struct {
	ThinkInterval       time.Duration `yaml:"think_interval"`
	AttackThinkInterval time.Duration `yaml:"attack_think_interval"`
	FearThinkInterval   time.Duration `yaml:"fear_think_interval"`
	NoPlayersStopDelay  time.Duration `yaml:"no_players_stop_delay"`

	VisibilityRadius  int32 `yaml:"visibility_radius"`
	AggroRadius       int32 `yaml:"aggro_radius"`
	FleeDistance      int32 `yaml:"flee_distance"`
	ChaseRange        int32 `yaml:"chase_range"`
	FactionCallRange  int32 `yaml:"faction_call_range"`
	MeleeRange        int32 `yaml:"melee_range"`
	PetFollowDistance int32 `yaml:"pet_follow_distance"`

	SpawnImmunityTicks int32 `yaml:"spawn_immunity_ticks"`
	HateForgetChance   int32 `yaml:"hate_forget_chance"`
	RandomWalkChance   int32 `yaml:"random_walk_chance"`
	MaxDriftRange      int32 `yaml:"max_drift_range"`

	LifecycleNotifications bool `yaml:"lifecycle_notifications"`
}

// SchedulerConfig configures the shared timer wheel.
type SchedulerConfig struct {
	Resolution time.Duration `yaml:"resolution"`
	WheelSlots int           `yaml:"wheel_slots"`
	Workers    int           `yaml:"workers"`
}

// SpawnConfig selects where spawn points are read from.
type SpawnConfig struct {
	Source     string `yaml:"source"` // file | postgres | sqlite
	File       string `yaml:"file"`
	SQLitePath string `yaml:"sqlite_path"`
}

// GeoConfig configures line of sight checks.
type GeoConfig struct {
	ObstaclesFile string `yaml:"obstacles_file"` // empty means open terrain
	Workers       int    `yaml:"workers"`
	QueueSize     int    `yaml:"queue_size"`
}

// Server holds all configuration for the brain server.
type Server struct {
	LogLevel  string          `yaml:"log_level"`
	HotReload bool            `yaml:"hot_reload"`
	AI        AIConfig        `yaml:"ai"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Spawn     SpawnConfig     `yaml:"spawn"`
	Database  DatabaseConfig  `yaml:"database"`
	Geo       GeoConfig       `yaml:"geo"`
}

// DefaultServer returns Server config with sensible defaults.
func DefaultServer() Server {
	t := ai.DefaultTuning()
	return Server{
		LogLevel:  "info",
		HotReload: true,
		AI: AIConfig{
			ThinkInterval:          t.ThinkInterval,
			AttackThinkInterval:    t.AttackThinkInterval,
			FearThinkInterval:      t.FearThinkInterval,
			NoPlayersStopDelay:     t.NoPlayersStopDelay,
			VisibilityRadius:       t.VisibilityRadius,
			AggroRadius:            t.AggroRadius,
			FleeDistance:           t.FleeDistance,
			ChaseRange:             t.ChaseRange,
			FactionCallRange:       t.FactionCallRange,
			MeleeRange:             t.MeleeRange,
			PetFollowDistance:      t.PetFollowDistance,
			SpawnImmunityTicks:     t.SpawnImmunityTicks,
			HateForgetChance:       t.HateForgetChance,
			RandomWalkChance:       t.RandomWalkChance,
			MaxDriftRange:          t.MaxDriftRange,
			LifecycleNotifications: t.LifecycleNotifications,
		},
		Scheduler: SchedulerConfig{
			Resolution: ai.DefaultResolution,
			WheelSlots: ai.DefaultWheelSlots,
			Workers:    4,
		},
		Spawn: SpawnConfig{
			Source: SourceFile,
			File:   "config/spawns.yaml",
		},
		Database: DefaultDatabase(),
		Geo: GeoConfig{
			Workers:   2,
			QueueSize: 1024,
		},
	}
}

// LoadServer reads config from a YAML file over the defaults.
// If the file does not exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()
	if err := loadYAML(path, &cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("validating config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports every invalid field at once.
func (s Server) Validate() error {
	var errs []error

	durations := []struct {
		name string
		v    time.Duration
	}{
		{"ai.think_interval", s.AI.ThinkInterval},
		{"ai.attack_think_interval", s.AI.AttackThinkInterval},
		{"ai.fear_think_interval", s.AI.FearThinkInterval},
		{"ai.no_players_stop_delay", s.AI.NoPlayersStopDelay},
		{"scheduler.resolution", s.Scheduler.Resolution},
	}
	for _, d := range durations {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %s", d.name, d.v))
		}
	}

	radii := []struct {
		name string
		v    int32
	}{
		{"ai.visibility_radius", s.AI.VisibilityRadius},
		{"ai.aggro_radius", s.AI.AggroRadius},
		{"ai.flee_distance", s.AI.FleeDistance},
		{"ai.chase_range", s.AI.ChaseRange},
		{"ai.faction_call_range", s.AI.FactionCallRange},
		{"ai.melee_range", s.AI.MeleeRange},
		{"ai.pet_follow_distance", s.AI.PetFollowDistance},
		{"ai.spawn_immunity_ticks", s.AI.SpawnImmunityTicks},
		{"ai.hate_forget_chance", s.AI.HateForgetChance},
		{"ai.random_walk_chance", s.AI.RandomWalkChance},
		{"ai.max_drift_range", s.AI.MaxDriftRange},
	}
	for _, r := range radii {
		if r.v < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %d", r.name, r.v))
		}
	}

	if s.Scheduler.WheelSlots <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.wheel_slots must be positive, got %d", s.Scheduler.WheelSlots))
	}
	if s.Scheduler.Workers <= 0 {
		errs = append(errs, fmt.Errorf("scheduler.workers must be positive, got %d", s.Scheduler.Workers))
	}

	switch s.Spawn.Source {
	case SourceFile:
		if s.Spawn.File == "" {
			errs = append(errs, errors.New("spawn.file is required for file source"))
		}
	case SourceSQLite:
		if s.Spawn.SQLitePath == "" {
			errs = append(errs, errors.New("spawn.sqlite_path is required for sqlite source"))
		}
	case SourcePostgres:
	default:
		errs = append(errs, fmt.Errorf("unknown spawn.source %q", s.Spawn.Source))
	}

	if s.Geo.Workers <= 0 {
		errs = append(errs, fmt.Errorf("geo.workers must be positive, got %d", s.Geo.Workers))
	}
	if s.Geo.QueueSize <= 0 {
		errs = append(errs, fmt.Errorf("geo.queue_size must be positive, got %d", s.Geo.QueueSize))
	}

	return errors.Join(errs...)
}

// Tuning converts the ai section into brain tuning.
func (c AIConfig) Tuning() ai.Tuning {
	return ai.Tuning{
		ThinkInterval:          c.ThinkInterval,
		AttackThinkInterval:    c.AttackThinkInterval,
		FearThinkInterval:      c.FearThinkInterval,
		NoPlayersStopDelay:     c.NoPlayersStopDelay,
		VisibilityRadius:       c.VisibilityRadius,
		AggroRadius:            c.AggroRadius,
		FleeDistance:           c.FleeDistance,
		ChaseRange:             c.ChaseRange,
		FactionCallRange:       c.FactionCallRange,
		MeleeRange:             c.MeleeRange,
		PetFollowDistance:      c.PetFollowDistance,
		SpawnImmunityTicks:     c.SpawnImmunityTicks,
		HateForgetChance:       c.HateForgetChance,
		RandomWalkChance:       c.RandomWalkChance,
		MaxDriftRange:          c.MaxDriftRange,
		LifecycleNotifications: c.LifecycleNotifications,
	}
}
