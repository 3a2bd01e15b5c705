package world

import (
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/karasuno/gridfire/server/config"
	"github.com/karasuno/gridfire/server/game/combat"
	"github.com/karasuno/gridfire/server/game/nav"
	"github.com/karasuno/gridfire/server/game/physics"
	"github.com/karasuno/gridfire/server/resource"
)

// playerState is the arena's view of the player: a position pushed in from
// the outside (input/network layer) plus a moving flag derived per frame.
type playerState struct {
	X, Z         float64
	prevX, prevZ float64
	moving       bool
}

// FireEvent records one weapon-fire request issued by an agent.
type FireEvent struct {
	AgentID string
	At      float64 // logical seconds
}

// Arena hosts the agents of one level and implements combat.World for them.
// The frame loop is single-threaded: combat.World methods are only called
// from inside Tick and take no locks; the mutex guards the boundary between
// the loop and outside readers (debug API, tests).
type Arena struct {
	cfg     config.GameConfig
	machine *combat.Machine
	logger  *zap.Logger

	mu     sync.RWMutex
	level  *resource.Level
	grid   *nav.Grid
	space  *physics.Space
	agents map[string]*combat.Agent
	player playerState
	now    float64 // logical clock in seconds, advanced by Tick

	perceptions map[string]combat.Perception
	fires       []FireEvent
	onFire      func(*combat.Agent)

	cmdQ   chan func()
	stopCh chan struct{}
}

// NewArena wires a level, its navigation grid and its physics space into a
// running-ready arena. Call SpawnAll (or add agents manually) before Run.
func NewArena(lv *resource.Level, grid *nav.Grid, space *physics.Space, machine *combat.Machine, cfg config.GameConfig, logger *zap.Logger) *Arena {
	a := &Arena{
		cfg:         cfg,
		machine:     machine,
		logger:      logger,
		level:       lv,
		grid:        grid,
		space:       space,
		agents:      make(map[string]*combat.Agent),
		perceptions: make(map[string]combat.Perception),
		cmdQ:        make(chan func(), 64),
		stopCh:      make(chan struct{}),
	}
	if lv != nil {
		a.player.X, a.player.Z = lv.Player.X, lv.Player.Z
		a.player.prevX, a.player.prevZ = lv.Player.X, lv.Player.Z
	}
	return a
}

// Run drives the frame loop at the configured tick rate. Call in a
// goroutine; Stop shuts it down.
func (ar *Arena) Run() {
	interval := time.Duration(ar.cfg.TickMs) * time.Millisecond
	if interval <= 0 {
		interval = 50 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	dt := interval.Seconds()
	for {
		select {
		case <-ticker.C:
			ar.Tick(dt)
		case <-ar.stopCh:
			return
		}
	}
}

// Stop signals the frame loop to exit.
func (ar *Arena) Stop() {
	select {
	case <-ar.stopCh:
	default:
		close(ar.stopCh)
	}
}

// StopChan returns a channel closed when the arena stops.
func (ar *Arena) StopChan() <-chan struct{} { return ar.stopCh }

// Do enqueues fn to run between frames, where grid mutation and other
// structural changes are safe. Drops the command if the queue is full.
func (ar *Arena) Do(fn func()) {
	select {
	case ar.cmdQ <- fn:
	default:
		ar.logger.Warn("arena command queue full, dropping command")
	}
}

// Tick advances the world one frame: run queued commands, refresh the
// player's moving flag, compute one perception snapshot per agent, update
// every agent's state machine, then step physics. dt is in seconds.
func (ar *Arena) Tick(dt float64) {
	ar.mu.Lock()
	defer ar.mu.Unlock()

	for {
		select {
		case fn := <-ar.cmdQ:
			fn()
			continue
		default:
		}
		break
	}

	ar.now += dt

	ar.player.moving = nav.Dist(ar.player.X, ar.player.Z, ar.player.prevX, ar.player.prevZ) > 1e-6
	ar.player.prevX, ar.player.prevZ = ar.player.X, ar.player.Z

	// One immutable perception snapshot per agent per frame.
	for id, agent := range ar.agents {
		ar.perceptions[id] = ar.perceive(agent)
	}

	for _, agent := range ar.agents {
		ar.machine.Update(agent, ar, dt, ar.now)
	}

	ar.space.Step(dt)
}

// perceive computes sight and hearing for one agent. Sight needs range, a
// facing cone and grid line of sight; hearing needs the player to be moving
// within earshot.
func (ar *Arena) perceive(a *combat.Agent) combat.Perception {
	dist := nav.Dist(a.X, a.Z, ar.player.X, ar.player.Z)
	p := combat.Perception{DistanceToPlayer: dist}

	if dist <= ar.cfg.SightRange {
		toPlayer := math.Atan2(ar.player.Z-a.Z, ar.player.X-a.X)
		diff := math.Abs(angleDiff(toPlayer, a.Facing))
		halfFOV := ar.cfg.SightFOVDeg * math.Pi / 180 / 2
		if diff <= halfFOV && ar.lineOfSight(a.X, a.Z, ar.player.X, ar.player.Z) {
			p.CanSeePlayer = true
		}
	}
	if ar.player.moving && dist <= ar.cfg.HearingRange {
		p.CanHearPlayer = true
	}
	return p
}

// lineOfSight samples the segment between two points against the grid.
// Any non-walkable cell on the way blocks sight.
func (ar *Arena) lineOfSight(x0, z0, x1, z1 float64) bool {
	if !ar.grid.IsBuilt() {
		return true
	}
	dist := nav.Dist(x0, z0, x1, z1)
	if dist < 1e-9 {
		return true
	}
	step := ar.grid.CellSize() / 2
	dx, dz := (x1-x0)/dist, (z1-z0)/dist
	for t := step; t < dist; t += step {
		gx, gz := ar.grid.WorldToGrid(x0+dx*t, z0+dz*t)
		if c, ok := ar.grid.CellAt(gx, gz); !ok || !c.Walkable {
			return false
		}
	}
	return true
}

func angleDiff(a, b float64) float64 {
	d := math.Mod(a-b, 2*math.Pi)
	if d > math.Pi {
		d -= 2 * math.Pi
	} else if d < -math.Pi {
		d += 2 * math.Pi
	}
	return d
}

// ---- combat.World ----

// Perception returns the agent's frame snapshot. Only valid during Tick.
func (ar *Arena) Perception(a *combat.Agent) combat.Perception {
	return ar.perceptions[a.ID]
}

// PlayerPosition returns the player's current position.
func (ar *Arena) PlayerPosition() (float64, float64) {
	return ar.player.X, ar.player.Z
}

// NavGrid returns the level's navigation grid (may be an unbuilt grid).
func (ar *Arena) NavGrid() *nav.Grid { return ar.grid }

// RepulsionForce returns the separation vector keeping agents apart.
func (ar *Arena) RepulsionForce(a *combat.Agent) nav.Vec2 {
	return ar.space.Repulsion(a.ID, ar.cfg.RepulsionRange)
}

// SyncPhysicsBody pushes the agent's authoritative position into physics.
func (ar *Arena) SyncPhysicsBody(a *combat.Agent) {
	ar.space.SyncBody(a.ID, a.X, a.Z)
}

// PropagateAlert raises nearby idle or patrolling agents to alert, handing
// them the caller's last known player position. Agents already alerted or
// attacking are left alone, which also bounds the propagation cascade.
func (ar *Arena) PropagateAlert(src *combat.Agent) {
	for _, other := range ar.agents {
		if other.ID == src.ID {
			continue
		}
		if other.StateID() != combat.StateIdle && other.StateID() != combat.StatePatrol {
			continue
		}
		if nav.Dist(src.X, src.Z, other.X, other.Z) > ar.cfg.AlertRadius {
			continue
		}
		if src.HasLastKnown {
			other.RememberPlayer(src.LastKnownX, src.LastKnownZ)
		}
		ar.machine.Transition(other, ar, combat.StateAlert)
	}
}

// FireAtPlayer records a weapon-fire request. Damage resolution is the
// combat-resolution layer's job, reached through the OnFire hook.
func (ar *Arena) FireAtPlayer(a *combat.Agent) {
	ar.fires = append(ar.fires, FireEvent{AgentID: a.ID, At: ar.now})
	if ar.onFire != nil {
		ar.onFire(a)
	}
	ar.logger.Debug("agent fired", zap.String("agent", a.ID), zap.Float64("t", ar.now))
}

// ---- outside-the-loop API ----

// SetOnFire installs the fire-request hook. Call before Run.
func (ar *Arena) SetOnFire(fn func(*combat.Agent)) { ar.onFire = fn }

// AddAgent registers an agent, creates its physics body and starts its
// state machine: patrolling with a route of two or more waypoints, idle
// otherwise.
func (ar *Arena) AddAgent(a *combat.Agent) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	ar.addAgentLocked(a)
}

func (ar *Arena) addAgentLocked(a *combat.Agent) {
	ar.agents[a.ID] = a
	ar.space.AddAgent(a.ID, a.X, a.Z)
	initial := combat.StateIdle
	if len(a.Waypoints) >= 2 {
		initial = combat.StatePatrol
	}
	ar.machine.Start(a, ar, initial)
	ar.logger.Info("agent added",
		zap.String("agent", a.ID),
		zap.String("name", a.Name),
		zap.Stringer("state", a.StateID()))
}

// RemoveAgent drops an agent and its physics body.
func (ar *Arena) RemoveAgent(id string) {
	ar.mu.Lock()
	defer ar.mu.Unlock()
	ar.removeAgentLocked(id)
}

func (ar *Arena) removeAgentLocked(id string) {
	if _, ok := ar.agents[id]; !ok {
		return
	}
	delete(ar.agents, id)
	delete(ar.perceptions, id)
	ar.space.RemoveAgent(id)
}

// SetPlayerPosition teleports the player between frames.
func (ar *Arena) SetPlayerPosition(x, z float64) {
	ar.Do(func() {
		ar.player.X, ar.player.Z = x, z
	})
}

// DestroyProp removes a destructible prop between frames: its physics shape
// goes away and the cells it blocked are reopened. Static geometry is never
// affected because UnblockAt only touches prop-blocked cells.
func (ar *Arena) DestroyProp(id string) {
	ar.Do(func() {
		prop := ar.findProp(id)
		if prop == nil {
			ar.logger.Warn("destroy of unknown prop", zap.String("prop", id))
			return
		}
		if !prop.Destructible {
			ar.logger.Warn("destroy of non-destructible prop", zap.String("prop", id))
			return
		}
		scale := prop.Scale
		if scale <= 0 {
			scale = 1
		}
		ar.space.RemoveProp(id)
		ar.grid.UnblockAt(prop.X, prop.Z, 0.9*scale+ar.grid.CellSize())
		ar.logger.Info("prop destroyed", zap.String("prop", id))
	})
}

func (ar *Arena) findProp(id string) *resource.Prop {
	if ar.level == nil {
		return nil
	}
	for i := range ar.level.Props {
		if ar.level.Props[i].ID == id {
			return &ar.level.Props[i]
		}
	}
	return nil
}

// ReplaceLevel swaps in a freshly reloaded level between frames, rebuilding
// the grid. Agents keep their positions; stale waypoints are the level
// designer's problem, not a crash.
func (ar *Arena) ReplaceLevel(lv *resource.Level, grid *nav.Grid) {
	ar.Do(func() {
		ar.level = lv
		ar.grid = grid
		ar.logger.Info("level replaced", zap.String("name", lv.Name))
	})
}

// Now returns the logical clock in seconds.
func (ar *Arena) Now() float64 {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return ar.now
}

// Fires returns a copy of all fire events so far.
func (ar *Arena) Fires() []FireEvent {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	out := make([]FireEvent, len(ar.fires))
	copy(out, ar.fires)
	return out
}

// AgentCount returns the number of live agents.
func (ar *Arena) AgentCount() int {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return len(ar.agents)
}

// AgentSnapshot is the debug-API view of one agent.
type AgentSnapshot struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Facing float64 `json:"facing"`
	State  string  `json:"state"`
	Anim   string  `json:"anim"`
}

// Snapshot returns the debug-API view of every agent.
func (ar *Arena) Snapshot() []AgentSnapshot {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	out := make([]AgentSnapshot, 0, len(ar.agents))
	for _, a := range ar.agents {
		out = append(out, AgentSnapshot{
			ID:     a.ID,
			Name:   a.Name,
			X:      a.X,
			Z:      a.Z,
			Facing: a.Facing,
			State:  a.StateID().String(),
			Anim:   a.Anim,
		})
	}
	return out
}

// GridSnapshot returns the walkability grid for the debug API.
func (ar *Arena) GridSnapshot() map[string]any {
	ar.mu.RLock()
	defer ar.mu.RUnlock()
	return ar.grid.Snapshot()
}
