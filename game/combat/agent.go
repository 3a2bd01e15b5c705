package combat

import (
	"math/rand"

	"github.com/google/uuid"

	"github.com/karasuno/gridfire/server/game/nav"
	"github.com/karasuno/gridfire/server/resource"
)

// Animation names consumed by the external animation system.
const (
	AnimIdle  = "idle"
	AnimWalk  = "walk"
	AnimAlert = "alert"
	AnimShoot = "shoot"
)

// Perception is the per-frame sight/hearing snapshot supplied by the agent
// manager. It is read once per frame and treated as immutable for that
// frame's state update.
type Perception struct {
	CanSeePlayer     bool
	CanHearPlayer    bool
	DistanceToPlayer float64
}

// World is the agent-manager collaborator every state consults. The combat
// package only reads perception and issues requests through it; damage,
// audio and animation resolution happen on the other side.
type World interface {
	Perception(a *Agent) Perception
	PlayerPosition() (x, z float64)
	NavGrid() *nav.Grid
	RepulsionForce(a *Agent) nav.Vec2
	SyncPhysicsBody(a *Agent)
	PropagateAlert(a *Agent)
	FireAtPlayer(a *Agent)
}

// Agent is one AI combatant. Every mutable per-behavior field (timers,
// strafe direction, path cache) lives here rather than on the state
// objects, so two agents in the same state never share state.
type Agent struct {
	ID        string
	Name      string
	X, Z      float64
	Facing    float64 // radians on the XZ plane
	Anim      string
	Waypoints []resource.Point

	// Last position the player was seen or heard at.
	LastKnownX, LastKnownZ float64
	HasLastKnown           bool

	// Fire control, in logical seconds.
	NextFireAt     float64
	ShootHoldUntil float64

	// Per-behavior state, reset on state entry.
	Follow       nav.FollowState
	WaypointIdx  int
	sightConfirm float64
	alertTimer   float64
	loseSight    float64
	strafeDir    float64 // +1 or -1
	strafeTimer  float64

	state StateID
	rng   *rand.Rand
}

// NewAgent creates an agent at a position. The rng drives strafe decisions
// and is injected so tests stay deterministic; nil gets a default source.
func NewAgent(name string, x, z float64, rng *rand.Rand) *Agent {
	if rng == nil {
		rng = rand.New(rand.NewSource(int64(uuid.New().ID())))
	}
	return &Agent{
		ID:    uuid.New().String(),
		Name:  name,
		X:     x,
		Z:     z,
		Anim:  AnimIdle,
		state: StateIdle,
		rng:   rng,
	}
}

// StateID returns the agent's current behavior state.
func (a *Agent) StateID() StateID { return a.state }

// RememberPlayer records the player's position as the last known one.
func (a *Agent) RememberPlayer(x, z float64) {
	a.LastKnownX, a.LastKnownZ = x, z
	a.HasLastKnown = true
}

// resetBehavior clears every field owned by a single behavior run. Called on
// state entry so no timer or cached path leaks across states.
func (a *Agent) resetBehavior() {
	a.Follow = nav.FollowState{}
	a.sightConfirm = 0
	a.alertTimer = 0
	a.loseSight = 0
	a.strafeTimer = 0
}
