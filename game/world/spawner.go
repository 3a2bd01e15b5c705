package world

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/karasuno/gridfire/server/game/combat"
	"github.com/karasuno/gridfire/server/resource"
)

// spawnSlot tracks one level spawn point and the agent occupying it.
type spawnSlot struct {
	spawn   resource.Spawn
	agentID string
	diedAt  float64 // logical seconds; valid when agentID is empty
	hasDied bool
}

// Spawner owns the spawn slots of a level: it fills them at startup and
// refills them after the respawn delay once an agent is removed.
type Spawner struct {
	arena  *Arena
	delay  float64 // respawn delay in logical seconds
	logger *zap.Logger

	mu    sync.Mutex
	slots []*spawnSlot
	seq   int
}

// NewSpawner builds a spawner over the arena's level spawns.
func NewSpawner(arena *Arena, lv *resource.Level, delay float64, logger *zap.Logger) *Spawner {
	s := &Spawner{arena: arena, delay: delay, logger: logger}
	if lv != nil {
		for _, sp := range lv.Spawns {
			s.slots = append(s.slots, &spawnSlot{spawn: sp})
		}
	}
	return s
}

// SpawnAll fills every empty slot immediately. Call once at startup.
func (s *Spawner) SpawnAll(lv *resource.Level) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.agentID == "" {
			s.spawnLocked(slot, lv)
		}
	}
}

func (s *Spawner) spawnLocked(slot *spawnSlot, lv *resource.Level) {
	s.seq++
	a := combat.NewAgent(fmt.Sprintf("guard-%d", s.seq), slot.spawn.X, slot.spawn.Z, nil)
	if slot.spawn.Route != "" && lv != nil {
		if route := lv.Route(slot.spawn.Route); route != nil {
			a.Waypoints = route.Points
		} else {
			s.logger.Warn("spawn references unknown route",
				zap.String("route", slot.spawn.Route))
		}
	}
	slot.agentID = a.ID
	slot.hasDied = false
	s.arena.AddAgent(a)
}

// NotifyRemoved marks the slot owning the agent as vacant, starting its
// respawn countdown on the arena's logical clock.
func (s *Spawner) NotifyRemoved(agentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, slot := range s.slots {
		if slot.agentID == agentID {
			slot.agentID = ""
			slot.diedAt = s.arena.Now()
			slot.hasDied = true
			return
		}
	}
}

// CheckRespawns refills vacant slots whose delay has elapsed. Meant to run
// from a periodic scheduler task.
func (s *Spawner) CheckRespawns(lv *resource.Level) int {
	now := s.arena.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, slot := range s.slots {
		if slot.agentID != "" || !slot.hasDied {
			continue
		}
		if now-slot.diedAt < s.delay {
			continue
		}
		s.spawnLocked(slot, lv)
		n++
	}
	if n > 0 {
		s.logger.Info("agents respawned", zap.Int("count", n))
	}
	return n
}
