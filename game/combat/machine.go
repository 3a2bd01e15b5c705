package combat

import (
	"math"

	"go.uber.org/zap"

	"github.com/karasuno/gridfire/server/config"
	"github.com/karasuno/gridfire/server/game/nav"
)

// StateID enumerates the behavior states of the combat state machine.
type StateID int

const (
	StateIdle StateID = iota
	StatePatrol
	StateAlert
	StateAttack
)

// String returns a human-readable state name.
func (s StateID) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StatePatrol:
		return "PATROL"
	case StateAlert:
		return "ALERT"
	case StateAttack:
		return "ATTACK"
	default:
		return "UNKNOWN"
	}
}

// State is one behavior. Implementations are stateless singletons: all
// mutable data lives on the Agent, so a state instance can serve any number
// of agents at once.
type State interface {
	ID() StateID
	Enter(a *Agent, w World)
	Update(a *Agent, w World, dt, now float64)
	Exit(a *Agent)
}

// Tuning carries every combat knob, resolved from config once at startup.
type Tuning struct {
	MoveSpeed        float64
	ArrivalRadius    float64
	SightConfirm     float64
	AlertDuration    float64
	LoseSightTimeout float64
	PreferredRange   float64
	RangeBand        float64
	FireInterval     float64
	ShootAnimHold    float64
	StrafeMin        float64
	StrafeMax        float64
	RetreatSpeed     float64
	RepulsionWeight  float64
	SearchTurnRate   float64
}

// TuningFromConfig resolves Tuning from the loaded configuration.
func TuningFromConfig(c config.CombatConfig, g config.GameConfig, n config.NavConfig) Tuning {
	return Tuning{
		MoveSpeed:        g.AgentSpeed,
		ArrivalRadius:    n.ArrivalRadius,
		SightConfirm:     c.SightConfirmS,
		AlertDuration:    c.AlertDurationS,
		LoseSightTimeout: c.LoseSightS,
		PreferredRange:   c.PreferredRange,
		RangeBand:        c.RangeBand,
		FireInterval:     c.FireIntervalS,
		ShootAnimHold:    c.ShootAnimHoldS,
		StrafeMin:        c.StrafeMinS,
		StrafeMax:        c.StrafeMaxS,
		RetreatSpeed:     c.RetreatSpeed,
		RepulsionWeight:  c.RepulsionWeight,
		SearchTurnRate:   c.SearchTurnRate,
	}
}

// Machine dispatches per-agent behavior updates and owns the shared,
// immutable pieces: tuning, the path follower and the state singletons.
type Machine struct {
	tuning   Tuning
	follower *nav.Follower
	states   map[StateID]State
	logger   *zap.Logger
}

// NewMachine builds a Machine with the standard four states registered.
func NewMachine(t Tuning, follower *nav.Follower, logger *zap.Logger) *Machine {
	m := &Machine{
		tuning:   t,
		follower: follower,
		states:   make(map[StateID]State),
		logger:   logger,
	}
	for _, s := range []State{
		&idleState{m: m},
		&patrolState{m: m},
		&alertState{m: m},
		&attackState{m: m},
	} {
		m.states[s.ID()] = s
	}
	return m
}

// Tuning returns the machine's resolved tuning values.
func (m *Machine) Tuning() Tuning { return m.tuning }

// Start puts an agent into its initial state, invoking Enter.
func (m *Machine) Start(a *Agent, w World, initial StateID) {
	a.state = initial
	a.resetBehavior()
	m.states[initial].Enter(a, w)
}

// Update runs one frame of the agent's active state. dt and now are logical
// seconds; the machine never reads a wall clock.
func (m *Machine) Update(a *Agent, w World, dt, now float64) {
	m.states[a.state].Update(a, w, dt, now)
}

// Transition switches an agent to another state, running Exit and Enter in
// order. A self-transition is a no-op.
func (m *Machine) Transition(a *Agent, w World, to StateID) {
	if a.state == to {
		return
	}
	from := a.state
	m.states[from].Exit(a)
	a.state = to
	a.resetBehavior()
	m.states[to].Enter(a, w)
	m.logger.Debug("state transition",
		zap.String("agent", a.ID),
		zap.Stringer("from", from),
		zap.Stringer("to", to))
}

// step integrates one frame of movement in direction dir, updates facing
// and pushes the new position into the physics system. A zero direction
// means no movement this frame.
func (m *Machine) step(a *Agent, w World, dir nav.Vec2, speed, dt float64) {
	if dir.IsZero() {
		return
	}
	a.X += dir.X * speed * dt
	a.Z += dir.Z * speed * dt
	a.Facing = math.Atan2(dir.Z, dir.X)
	w.SyncPhysicsBody(a)
}

// faceToward turns the agent to look at a point without moving it.
func faceToward(a *Agent, x, z float64) {
	dx, dz := x-a.X, z-a.Z
	if dx*dx+dz*dz < 1e-12 {
		return
	}
	a.Facing = math.Atan2(dz, dx)
}
