package ai

import (
	"iter"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/udisondev/npcbrain/internal/model"
)

// testWorld is a flat creature registry standing in for the region grid.
type testWorld struct {
	mu        sync.Mutex
	creatures map[uint32]Creature
}

func newTestWorld() *testWorld {
	return &testWorld{creatures: make(map[uint32]Creature)}
}

func (w *testWorld) add(cs ...Creature) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, c := range cs {
		w.creatures[c.ObjectID()] = c
	}
}

func (w *testWorld) remove(id uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.creatures, id)
}

func (w *testWorld) resolve(id uint32) (Creature, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.creatures[id]
	return c, ok
}

func (w *testWorld) inRadius(center model.Location, radius int32, players bool) iter.Seq[Creature] {
	w.mu.Lock()
	var snapshot []Creature
	for _, c := range w.creatures {
		if c.IsPlayer() == players && center.InRange(c.Location(), radius) {
			snapshot = append(snapshot, c)
		}
	}
	w.mu.Unlock()

	return func(yield func(Creature) bool) {
		for _, c := range snapshot {
			if !yield(c) {
				return
			}
		}
	}
}

// testBody records the orders a brain gives.
type testBody struct {
	*model.Npc
	world *testWorld
	home  model.Location

	mu          sync.Mutex
	attacking   uint32
	attacks     []uint32
	stopAttacks int
	walks       []model.Location
	paths       []model.Location
	following   uint32
	stopFollows int
	casts       []uint32
}

func newTestBody(w *testWorld, id uint32, faction string, loc model.Location) *testBody {
	tmpl := model.NewNpcTemplate(1000, "wolf", "", 10, 500, 400, 100, faction)
	npc := model.NewNpc(id, 1000, tmpl)
	npc.SetLocation(loc)
	npc.SetInWorld(true)

	b := &testBody{Npc: npc, world: w, home: loc}
	w.add(b)
	return b
}

func (b *testBody) Home() model.Location { return b.home }

func (b *testBody) PlayersInRadius(r int32) iter.Seq[Creature] {
	return b.world.inRadius(b.Location(), r, true)
}

func (b *testBody) NPCsInRadius(r int32) iter.Seq[Creature] {
	return b.world.inRadius(b.Location(), r, false)
}

func (b *testBody) Resolve(id uint32) (Creature, bool) { return b.world.resolve(id) }

func (b *testBody) StartAttack(target Creature) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attacking = target.ObjectID()
	b.attacks = append(b.attacks, target.ObjectID())
}

func (b *testBody) StopAttack() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.attacking = 0
	b.stopAttacks++
}

func (b *testBody) PathTo(loc model.Location) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.paths = append(b.paths, loc)
}

func (b *testBody) WalkTo(loc model.Location) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.walks = append(b.walks, loc)
}

func (b *testBody) Follow(target Creature) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.following = target.ObjectID()
}

func (b *testBody) StopFollowing() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.following = 0
	b.stopFollows++
}

func (b *testBody) CastSpell(_ int32, target Creature) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.casts = append(b.casts, target.ObjectID())
}

func (b *testBody) currentAttack() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.attacking
}

func (b *testBody) castCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.casts)
}

func (b *testBody) lastWalk() (model.Location, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.walks) == 0 {
		return model.Location{}, false
	}
	return b.walks[len(b.walks)-1], true
}

func newTestPlayer(t testing.TB, w *testWorld, id uint32, x, y int32) *model.Player {
	t.Helper()
	p, err := model.NewPlayer(id, int64(id), "hero", 20)
	require.NoError(t, err)
	p.SetLocation(model.NewLocation(x, y, 0, 0))
	p.SetInWorld(true)
	w.add(p)
	return p
}

func newTestNpc(w *testWorld, id uint32, faction string, x, y int32) *model.Npc {
	tmpl := model.NewNpcTemplate(2000, "npc", "", 10, 500, 400, 100, faction)
	n := model.NewNpc(id, 2000, tmpl)
	n.SetLocation(model.NewLocation(x, y, 0, 0))
	n.SetInWorld(true)
	w.add(n)
	return n
}

// quietTuning disables randomness so thinks are deterministic.
func quietTuning() Tuning {
	t := DefaultTuning()
	t.SpawnImmunityTicks = 0
	t.HateForgetChance = 0
	t.RandomWalkChance = 0
	t.MaxDriftRange = 0
	t.ChaseRange = 0
	return t
}

func newTestScheduler() *Scheduler {
	return NewScheduler(100*time.Millisecond, 64, 4)
}

// advance runs the wheel for d of simulated time.
func advance(s *Scheduler, d time.Duration) {
	for range int(d / s.Resolution()) {
		s.Advance()
	}
}
