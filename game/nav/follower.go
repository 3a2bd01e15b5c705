package nav

import "github.com/karasuno/gridfire/server/resource"

// FollowState is the per-agent path cache a Follower advances. One state
// belongs to exactly one agent and one behavior run; it is replaced
// wholesale on recompute, never shared between agents.
type FollowState struct {
	Path          []resource.Point
	Index         int
	LastRecompute float64 // logical seconds of the last FindPath call
}

// Follower converts a navigation target into a per-frame movement direction,
// hiding the path cache and recompute policy from the caller. The zero cost
// of recomputing is bounded by RecomputeSeconds regardless of call rate.
type Follower struct {
	ArrivalRadius    float64
	RecomputeSeconds float64
}

// NewFollower creates a Follower with the given tuning.
func NewFollower(arrivalRadius, recomputeSeconds float64) *Follower {
	return &Follower{ArrivalRadius: arrivalRadius, RecomputeSeconds: recomputeSeconds}
}

// MoveDirection returns the unit direction the agent should move this frame,
// or ok=false when it has arrived at the target. The caller must keep the
// FollowState and pass it back on the next call; now is logical time in
// seconds supplied by the frame loop.
func (f *Follower) MoveDirection(grid *Grid, x, z, targetX, targetZ float64, st *FollowState, now float64) (Vec2, bool) {
	if Dist(x, z, targetX, targetZ) <= f.ArrivalRadius {
		return Vec2{}, false
	}

	// Degrade to straight-line movement when there is no grid to path on.
	if !grid.IsBuilt() {
		return Direction(x, z, targetX, targetZ), true
	}

	if st.Path == nil || st.Index >= len(st.Path) || now-st.LastRecompute > f.RecomputeSeconds {
		st.Path = grid.FindPath(x, z, targetX, targetZ)
		st.Index = 0
		st.LastRecompute = now
	}
	if len(st.Path) == 0 {
		// No route; direct movement for this call only.
		return Direction(x, z, targetX, targetZ), true
	}

	// Skip waypoints the agent is already standing on. A fresh path's first
	// point can be behind or beside the agent after endpoint snapping.
	for st.Index < len(st.Path) && Dist(x, z, st.Path[st.Index].X, st.Path[st.Index].Z) <= f.ArrivalRadius {
		st.Index++
	}

	// Past the last waypoint: head for the true target, since simplification
	// may have dropped the exact endpoint.
	if st.Index >= len(st.Path) {
		if Dist(x, z, targetX, targetZ) <= f.ArrivalRadius {
			return Vec2{}, false
		}
		return Direction(x, z, targetX, targetZ), true
	}

	wp := st.Path[st.Index]
	return Direction(x, z, wp.X, wp.Z), true
}
