package spawn

import (
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/udisondev/npcbrain/internal/ai"
	"github.com/udisondev/npcbrain/internal/model"
)

// Factory builds the brain for one spawned body. opts arrives with the
// scheduler, bus, line of sight and tuning filled in.
type Factory func(body ai.Body, spawn *model.Spawn, opts ai.Options) (*ai.Brain, error)

// Built-in brain type names.
const (
	BrainAggressive = "aggressive"
	BrainPassive    = "passive"
	BrainGuard      = "guard"
	BrainBoss       = "boss"
	BrainPet        = "pet"
)

// Registry maps brain type names to factories. It is filled at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// NewDefaultRegistry creates a registry with the built-in brain types.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.mustRegister(BrainAggressive, aggressiveFactory)
	r.mustRegister(BrainPassive, passiveFactory)
	r.mustRegister(BrainGuard, aggressiveFactory)
	r.mustRegister(BrainBoss, bossFactory)
	r.mustRegister(BrainPet, petFactory)
	return r
}

// Register adds a factory under name.
func (r *Registry) Register(name string, f Factory) error {
	if name == "" {
		return fmt.Errorf("registering brain type: empty name")
	}
	if f == nil {
		return fmt.Errorf("registering brain type %q: nil factory", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("registering brain type %q: already registered", name)
	}
	r.factories[name] = f
	return nil
}

func (r *Registry) mustRegister(name string, f Factory) {
	if err := r.Register(name, f); err != nil {
		panic(err)
	}
}

// Lookup returns the factory registered under name.
func (r *Registry) Lookup(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ai.ErrUnknownBrainType, name)
	}
	return f, nil
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// aggressiveFactory: hunts hostiles, sleeps when no players are around.
// Guards use it too; their faction makes monsters the hostiles.
func aggressiveFactory(body ai.Body, spawn *model.Spawn, opts ai.Options) (*ai.Brain, error) {
	opts.Activation = ai.NewVicinityDormancy()
	opts.Policy = ai.NewAggressivePolicy()
	return newBrain(body, spawn, opts)
}

func passiveFactory(body ai.Body, spawn *model.Spawn, opts ai.Options) (*ai.Brain, error) {
	opts.Activation = ai.NewVicinityDormancy()
	opts.Policy = ai.NewPassivePolicy()
	return newBrain(body, spawn, opts)
}

// bossFactory: aggressive and never dormant.
func bossFactory(body ai.Body, spawn *model.Spawn, opts ai.Options) (*ai.Brain, error) {
	opts.Activation = ai.AlwaysActive{}
	opts.Policy = ai.NewAggressivePolicy()
	return newBrain(body, spawn, opts)
}

// petFactory: passive until bound to an owner, never dormant.
// Param spell_id selects the ranged spell.
func petFactory(body ai.Body, spawn *model.Spawn, opts ai.Options) (*ai.Brain, error) {
	if v, ok := spawn.Param("spell_id"); ok {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil || id < 0 {
			return nil, fmt.Errorf("%w: spell_id %q", ErrInvalidEntry, v)
		}
		opts.PetSpellID = int32(id)
	}
	opts.Activation = ai.AlwaysActive{}
	opts.Policy = ai.NewPassivePolicy()
	return newBrain(body, spawn, opts)
}

// newBrain applies the parameters every brain type understands.
func newBrain(body ai.Body, spawn *model.Spawn, opts ai.Options) (*ai.Brain, error) {
	var interval time.Duration
	if v, ok := spawn.Param("think_interval"); ok {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: think_interval %q", ErrInvalidEntry, v)
		}
		interval = d
	}

	b := ai.NewBrain(body, opts)
	if interval > 0 {
		b.SetThinkInterval(interval)
	}
	return b, nil
}
