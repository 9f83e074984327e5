package spawn

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/udisondev/npcbrain/internal/ai"
	"github.com/udisondev/npcbrain/internal/model"
)

// RespawnDelay returns how long a dead NPC of spawn stays away, from the
// respawn_delay and respawn_random params. 0 means the spawn does not respawn.
func RespawnDelay(spawn *model.Spawn) (time.Duration, error) {
	v, ok := spawn.Param("respawn_delay")
	if !ok {
		return 0, nil
	}
	delay, err := time.ParseDuration(v)
	if err != nil || delay <= 0 {
		return 0, fmt.Errorf("%w: respawn_delay %q", ErrInvalidEntry, v)
	}

	if v, ok := spawn.Param("respawn_random"); ok {
		spread, err := time.ParseDuration(v)
		if err != nil || spread < 0 {
			return 0, fmt.Errorf("%w: respawn_random %q", ErrInvalidEntry, v)
		}
		if spread > 0 {
			delay += rand.N(spread + 1)
		}
	}
	return delay, nil
}

// HandleDeath despawns a dead NPC and schedules its return when the spawn
// is configured to respawn.
func (l *Loader) HandleDeath(objectID uint32) bool {
	npc, ok := l.NPC(objectID)
	if !ok {
		return false
	}
	spawn := npc.Spawn()
	if !l.Despawn(objectID) || spawn == nil {
		return true
	}

	delay, err := RespawnDelay(spawn)
	if err != nil {
		slog.Error("respawn not scheduled", "spawnID", spawn.SpawnID(), "err", err)
		return true
	}
	if delay > 0 {
		if err := l.ScheduleRespawn(spawn, delay); err != nil {
			slog.Error("respawn not scheduled", "spawnID", spawn.SpawnID(), "err", err)
		}
	}
	return true
}

// ScheduleRespawn spawns one NPC of spawn after delay on the shared scheduler.
func (l *Loader) ScheduleRespawn(spawn *model.Spawn, delay time.Duration) error {
	if l.sched == nil {
		return fmt.Errorf("scheduling respawn of spawn %d: %w", spawn.SpawnID(), ai.ErrSchedulerStopped)
	}

	l.respawnMu.Lock()
	defer l.respawnMu.Unlock()

	var task *ai.Task
	task, err := l.sched.Schedule(delay, func() time.Duration {
		l.respawnMu.Lock()
		l.dropRespawnLocked(spawn.SpawnID(), task)
		l.respawnMu.Unlock()

		l.respawn(spawn)
		return 0
	})
	if err != nil {
		return fmt.Errorf("scheduling respawn of spawn %d: %w", spawn.SpawnID(), err)
	}
	l.respawns[spawn.SpawnID()] = append(l.respawns[spawn.SpawnID()], task)

	if ai.IsDebugEnabled() {
		slog.Debug("respawn scheduled", "spawnID", spawn.SpawnID(), "delay", delay)
	}
	return nil
}

func (l *Loader) respawn(spawn *model.Spawn) {
	if spawn.CurrentCount() >= spawn.MaximumCount() {
		slog.Debug("respawn skipped (spawn full)",
			"spawnID", spawn.SpawnID(),
			"currentCount", spawn.CurrentCount(),
			"maximumCount", spawn.MaximumCount())
		return
	}

	npc, _, err := l.DoSpawn(spawn)
	if err != nil {
		slog.Error("respawn failed", "spawnID", spawn.SpawnID(), "templateID", spawn.TemplateID(), "err", err)
		return
	}
	slog.Info("NPC respawned", "npc", npc.Name(), "objectID", npc.ObjectID(), "spawnID", spawn.SpawnID())
}

func (l *Loader) dropRespawnLocked(spawnID int64, task *ai.Task) {
	tasks := slices.DeleteFunc(l.respawns[spawnID], func(t *ai.Task) bool { return t == task })
	if len(tasks) == 0 {
		delete(l.respawns, spawnID)
		return
	}
	l.respawns[spawnID] = tasks
}

// CancelRespawn cancels every pending respawn of spawnID.
func (l *Loader) CancelRespawn(spawnID int64) int {
	l.respawnMu.Lock()
	defer l.respawnMu.Unlock()

	n := 0
	for _, t := range l.respawns[spawnID] {
		if t.Cancel() {
			n++
		}
	}
	delete(l.respawns, spawnID)
	return n
}

// RespawnCount returns number of pending respawns.
func (l *Loader) RespawnCount() int {
	l.respawnMu.Lock()
	defer l.respawnMu.Unlock()

	n := 0
	for _, tasks := range l.respawns {
		n += len(tasks)
	}
	return n
}

func (l *Loader) cancelRespawns() {
	l.respawnMu.Lock()
	defer l.respawnMu.Unlock()

	for id, tasks := range l.respawns {
		for _, t := range tasks {
			t.Cancel()
		}
		delete(l.respawns, id)
	}
}
