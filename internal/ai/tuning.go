package ai

import "time"

// Default brain tuning.
const (
	DefaultThinkInterval       = 2500 * time.Millisecond
	DefaultAttackThinkInterval = 1000 * time.Millisecond
	DefaultFearThinkInterval   = 1500 * time.Millisecond
	DefaultNoPlayersStopDelay  = 45 * time.Second

	DefaultVisibilityRadius = 3600
	DefaultAggroRadius      = 400
	DefaultFleeDistance     = 300
	DefaultChaseRange       = 1500
	DefaultFactionCallRange = 600
	DefaultMeleeRange       = 100

	DefaultPetFollowDistance = 100
	DefaultSpawnImmunity     = 5
	DefaultHateForgetChance  = 500
	DefaultRandomWalkChance  = 30
	DefaultMaxDriftRange     = 300
)

// Tuning holds the per-brain constants. Values are copied into each brain
// at construction, so a reload only affects brains created afterwards.
type Tuning struct {
	ThinkInterval       time.Duration
	AttackThinkInterval time.Duration
	FearThinkInterval   time.Duration
	NoPlayersStopDelay  time.Duration

	VisibilityRadius int32
	AggroRadius      int32
	FleeDistance     int32
	ChaseRange       int32 // 0 disables return home
	FactionCallRange int32 // 0 disables faction call
	MeleeRange       int32

	PetFollowDistance int32

	// Thinks after Start during which an aggressive brain does not scan.
	SpawnImmunityTicks int32
	// 1/N chance per think to forget all hate at full HP; 0 disables.
	HateForgetChance int32
	// 1/N chance per idle think to wander near home; 0 disables.
	RandomWalkChance int32
	MaxDriftRange    int32

	LifecycleNotifications bool
}

// DefaultTuning returns the built-in tuning.
func DefaultTuning() Tuning {
	return Tuning{
		ThinkInterval:       DefaultThinkInterval,
		AttackThinkInterval: DefaultAttackThinkInterval,
		FearThinkInterval:   DefaultFearThinkInterval,
		NoPlayersStopDelay:  DefaultNoPlayersStopDelay,
		VisibilityRadius:    DefaultVisibilityRadius,
		AggroRadius:         DefaultAggroRadius,
		FleeDistance:        DefaultFleeDistance,
		ChaseRange:          DefaultChaseRange,
		FactionCallRange:    DefaultFactionCallRange,
		MeleeRange:          DefaultMeleeRange,
		PetFollowDistance:   DefaultPetFollowDistance,
		SpawnImmunityTicks:  DefaultSpawnImmunity,
		HateForgetChance:    DefaultHateForgetChance,
		RandomWalkChance:    DefaultRandomWalkChance,
		MaxDriftRange:       DefaultMaxDriftRange,
	}
}

// normalized replaces non-positive intervals with defaults.
func (t Tuning) normalized() Tuning {
	if t.ThinkInterval <= 0 {
		t.ThinkInterval = DefaultThinkInterval
	}
	if t.AttackThinkInterval <= 0 {
		t.AttackThinkInterval = DefaultAttackThinkInterval
	}
	if t.FearThinkInterval <= 0 {
		t.FearThinkInterval = DefaultFearThinkInterval
	}
	if t.NoPlayersStopDelay <= 0 {
		t.NoPlayersStopDelay = DefaultNoPlayersStopDelay
	}
	return t
}
