package spawn

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/udisondev/npcbrain/internal/ai"
	"github.com/udisondev/npcbrain/internal/model"
	"github.com/udisondev/npcbrain/internal/world"
)

// ErrInvalidEntry marks a spawn definition that cannot be spawned.
var ErrInvalidEntry = errors.New("invalid spawn entry")

// Repository loads spawn definitions from a spawn source.
type Repository interface {
	LoadAll(ctx context.Context) ([]model.SpawnDef, error)
}

// LoadReport summarizes a Load call.
type LoadReport struct {
	Spawned int   // NPCs placed in the world with a brain attached
	Skipped int   // entries dropped because of errors
	Err     error // joined per-entry errors, nil if none
}

// Config wires a Loader.
type Config struct {
	World     *world.World
	IDs       *world.ObjectIDGenerator // nil = private generator
	Registry  *Registry                // nil = NewDefaultRegistry()
	Scheduler *ai.Scheduler
	Bus       *ai.Bus
	LOS       ai.LineOfSight
	Actions   Actions // nil = IntentActions
	Tuning    ai.Tuning
}

// Loader places NPCs from spawn definitions into the world and attaches a
// brain to each of them.
type Loader struct {
	world    *world.World
	ids      *world.ObjectIDGenerator
	registry *Registry
	sched    *ai.Scheduler
	bus      *ai.Bus
	los      ai.LineOfSight
	actions  Actions
	tuning   atomic.Pointer[ai.Tuning]

	spawns     sync.Map // map[int64]*model.Spawn: spawnID → spawn
	brains     sync.Map // map[uint32]attached: objectID → NPC and brain
	spawnCount atomic.Int32
	brainCount atomic.Int32

	respawnMu sync.Mutex
	respawns  map[int64][]*ai.Task
}

// attached pairs a spawned NPC with its brain. Factories may wrap the body,
// so the NPC is kept here rather than recovered from Brain.Body.
type attached struct {
	npc   *model.Npc
	brain *ai.Brain
}

// NewLoader creates a loader.
func NewLoader(cfg Config) *Loader {
	if cfg.IDs == nil {
		cfg.IDs = world.NewObjectIDGenerator()
	}
	if cfg.Registry == nil {
		cfg.Registry = NewDefaultRegistry()
	}
	if cfg.Actions == nil {
		cfg.Actions = IntentActions{}
	}

	l := &Loader{
		world:    cfg.World,
		ids:      cfg.IDs,
		registry: cfg.Registry,
		sched:    cfg.Scheduler,
		bus:      cfg.Bus,
		los:      cfg.LOS,
		actions:  cfg.Actions,
		respawns: make(map[int64][]*ai.Task),
	}
	l.SetTuning(cfg.Tuning)
	return l
}

// SetTuning replaces the tuning used for brains created from now on.
// Running brains keep theirs. A zero Tuning means ai.DefaultTuning.
func (l *Loader) SetTuning(t ai.Tuning) {
	if t == (ai.Tuning{}) {
		t = ai.DefaultTuning()
	}
	l.tuning.Store(&t)
}

// Tuning returns the tuning for new brains.
func (l *Loader) Tuning() ai.Tuning {
	return *l.tuning.Load()
}

// LoadFrom reads every definition from repo and loads them.
func (l *Loader) LoadFrom(ctx context.Context, repo Repository) (LoadReport, error) {
	defs, err := repo.LoadAll(ctx)
	if err != nil {
		return LoadReport{}, fmt.Errorf("loading spawns: %w", err)
	}
	return l.Load(ctx, defs), nil
}

// Load validates each definition, spawns its NPCs and attaches brains.
// Bad entries are logged and skipped; the rest still load.
func (l *Loader) Load(ctx context.Context, defs []model.SpawnDef) LoadReport {
	var (
		report LoadReport
		errs   []error
	)

	for i, def := range defs {
		if err := ctx.Err(); err != nil {
			report.Skipped += len(defs) - i
			errs = append(errs, fmt.Errorf("loading spawns: %w", err))
			break
		}

		n, err := l.loadEntry(def)
		report.Spawned += n
		if err != nil {
			report.Skipped++
			errs = append(errs, err)
			slog.Error("skipping spawn entry",
				"spawnID", def.SpawnID,
				"templateID", def.TemplateID,
				"brain", def.Brain,
				"err", err)
		}
	}

	report.Err = errors.Join(errs...)
	slog.Info("spawns loaded", "spawned", report.Spawned, "skipped", report.Skipped)
	return report
}

func (l *Loader) loadEntry(def model.SpawnDef) (int, error) {
	if err := l.validate(def); err != nil {
		return 0, fmt.Errorf("spawn %d: %w", def.SpawnID, err)
	}
	if _, loaded := l.spawns.Load(def.SpawnID); loaded {
		return 0, fmt.Errorf("spawn %d: %w: duplicate spawn id", def.SpawnID, ErrInvalidEntry)
	}

	spawn := model.NewSpawn(def)
	l.spawns.Store(def.SpawnID, spawn)
	l.spawnCount.Add(1)

	spawned := 0
	for range spawn.MaximumCount() {
		if _, _, err := l.DoSpawn(spawn); err != nil {
			return spawned, fmt.Errorf("spawn %d: %w", def.SpawnID, err)
		}
		spawned++
	}
	return spawned, nil
}

func (l *Loader) validate(def model.SpawnDef) error {
	var errs []error
	if def.TemplateID <= 0 {
		errs = append(errs, fmt.Errorf("%w: template id %d", ErrInvalidEntry, def.TemplateID))
	}
	if def.Count < 1 {
		errs = append(errs, fmt.Errorf("%w: count %d", ErrInvalidEntry, def.Count))
	}
	if def.Level < 1 {
		errs = append(errs, fmt.Errorf("%w: level %d", ErrInvalidEntry, def.Level))
	}
	if def.MaxHP < 1 {
		errs = append(errs, fmt.Errorf("%w: max hp %d", ErrInvalidEntry, def.MaxHP))
	}
	if l.world.GetRegion(def.X, def.Y) == nil {
		errs = append(errs, fmt.Errorf("%w: coordinates (%d, %d) outside the world", ErrInvalidEntry, def.X, def.Y))
	}
	if _, err := l.registry.Lookup(def.Brain); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// DoSpawn places one NPC of spawn into the world and starts its brain.
// Brains with vicinity dormancy stay idle until a player shows up.
func (l *Loader) DoSpawn(spawn *model.Spawn) (*model.Npc, *ai.Brain, error) {
	if spawn.CurrentCount() >= spawn.MaximumCount() {
		return nil, nil, fmt.Errorf("spawn %d is full (%d/%d)", spawn.SpawnID(), spawn.CurrentCount(), spawn.MaximumCount())
	}
	return l.place(spawn, spawn.Location(), 0)
}

func (l *Loader) place(spawn *model.Spawn, loc model.Location, ownerID uint32) (*model.Npc, *ai.Brain, error) {
	factory, err := l.registry.Lookup(spawn.BrainType())
	if err != nil {
		return nil, nil, err
	}

	npc := model.NewNpc(l.ids.NextNpcID(), spawn.TemplateID(), spawn.Template())
	npc.SetSpawn(spawn)
	npc.SetLocation(loc)
	npc.SetOwnerID(ownerID)

	body := newNpcBody(npc, l.world, l.actions)
	brain, err := factory(body, spawn, l.brainOptions(spawn))
	if err != nil {
		return nil, nil, fmt.Errorf("creating %q brain: %w", spawn.BrainType(), err)
	}

	if err := l.world.AddObject(npc.WorldObject); err != nil {
		brain.Detach()
		return nil, nil, fmt.Errorf("adding NPC to world: %w", err)
	}
	npc.SetInWorld(true)
	spawn.AddNpc(npc)

	npc.SetController(brain)
	l.brains.Store(npc.ObjectID(), attached{npc: npc, brain: brain})
	l.brainCount.Add(1)

	if ownerID != 0 {
		brain.Control(ownerID)
	}
	brain.Start()

	if ai.IsDebugEnabled() {
		slog.Debug("NPC spawned",
			"npc", npc.Name(),
			"objectID", npc.ObjectID(),
			"spawnID", spawn.SpawnID(),
			"brain", spawn.BrainType(),
			"active", brain.IsActive())
	}
	return npc, brain, nil
}

func (l *Loader) brainOptions(spawn *model.Spawn) ai.Options {
	t := l.Tuning()
	if r := spawn.Template().AggroRange(); r > 0 {
		t.AggroRadius = r
	}
	return ai.Options{
		Scheduler: l.sched,
		Bus:       l.bus,
		LOS:       l.los,
		Tuning:    t,
	}
}

// SpawnPet places a pet next to owner and binds its brain to the owner.
// An empty def.Brain means the built-in pet type.
func (l *Loader) SpawnPet(owner *model.Player, def model.SpawnDef) (*model.Npc, *ai.Brain, error) {
	if owner == nil || !owner.IsActive() {
		return nil, nil, fmt.Errorf("spawning pet: %w: owner not in world", ErrInvalidEntry)
	}
	if def.Brain == "" {
		def.Brain = BrainPet
	}
	loc := owner.Location()
	def.X, def.Y, def.Z, def.Heading = loc.X, loc.Y, loc.Z, loc.Heading
	if def.Count < 1 {
		def.Count = 1
	}
	if def.Faction == "" {
		def.Faction = owner.Faction()
	}
	if err := l.validate(def); err != nil {
		return nil, nil, fmt.Errorf("spawning pet: %w", err)
	}

	npc, brain, err := l.place(model.NewSpawn(def), loc, owner.ObjectID())
	if err != nil {
		return nil, nil, fmt.Errorf("spawning pet: %w", err)
	}
	return npc, brain, nil
}

// PlayerAppeared wakes the brains around a player who entered the world or
// moved into a new area. Returns the number of brains notified.
func (l *Loader) PlayerAppeared(p *model.Player) int {
	radius := l.Tuning().VisibilityRadius
	if radius <= 0 {
		radius = ai.DefaultVisibilityRadius
	}

	notified := 0
	for npc := range l.world.NPCsInRadius(p.Location(), radius) {
		if l.bus != nil {
			notified += l.bus.PublishTo(npc.ObjectID(), ai.EventPlayerEnteredVicinity, p)
			continue
		}
		if b, ok := l.Brain(npc.ObjectID()); ok {
			b.Notify(ai.Event{Tag: ai.EventPlayerEnteredVicinity, Sender: p})
			notified++
		}
	}
	return notified
}

// Despawn removes an NPC from the world and drops its brain.
func (l *Loader) Despawn(objectID uint32) bool {
	value, ok := l.brains.LoadAndDelete(objectID)
	if !ok {
		return false
	}
	l.brainCount.Add(-1)

	a := value.(attached)
	a.brain.Detach()

	npc := a.npc
	npc.SetController(nil)
	npc.SetInWorld(false)
	l.world.RemoveObject(objectID)
	if spawn := npc.Spawn(); spawn != nil {
		spawn.RemoveNpc(npc)
	}

	if ai.IsDebugEnabled() {
		slog.Debug("NPC despawned", "npc", npc.Name(), "objectID", objectID)
	}
	return true
}

// Brain returns the brain attached to objectID.
func (l *Loader) Brain(objectID uint32) (*ai.Brain, bool) {
	value, ok := l.brains.Load(objectID)
	if !ok {
		return nil, false
	}
	return value.(attached).brain, true
}

// NPC returns the spawned NPC with objectID.
func (l *Loader) NPC(objectID uint32) (*model.Npc, bool) {
	value, ok := l.brains.Load(objectID)
	if !ok {
		return nil, false
	}
	return value.(attached).npc, true
}

// Brains iterates over all attached brains.
func (l *Loader) Brains(fn func(objectID uint32, b *ai.Brain) bool) {
	l.brains.Range(func(key, value any) bool {
		return fn(key.(uint32), value.(attached).brain)
	})
}

// GetSpawn returns spawn by ID
func (l *Loader) GetSpawn(spawnID int64) (*model.Spawn, bool) {
	value, ok := l.spawns.Load(spawnID)
	if !ok {
		return nil, false
	}
	return value.(*model.Spawn), true
}

// SpawnCount returns number of loaded spawn points.
func (l *Loader) SpawnCount() int {
	return int(l.spawnCount.Load())
}

// BrainCount returns number of attached brains.
func (l *Loader) BrainCount() int {
	return int(l.brainCount.Load())
}

// ActiveCount returns number of brains with a live think chain. O(N).
func (l *Loader) ActiveCount() int {
	n := 0
	l.Brains(func(_ uint32, b *ai.Brain) bool {
		if b.IsActive() {
			n++
		}
		return true
	})
	return n
}

// Shutdown detaches every brain and cancels pending respawns.
func (l *Loader) Shutdown() {
	l.cancelRespawns()

	n := 0
	l.Brains(func(_ uint32, b *ai.Brain) bool {
		b.Detach()
		n++
		return true
	})
	slog.Info("brains detached", "count", n)
}
