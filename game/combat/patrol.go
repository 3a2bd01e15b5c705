package combat

// patrolState cycles the agent through its waypoint list, wrapping at the
// end. Sight of the player must hold for the confirmation window before the
// agent commits to attack; hearing alerts it immediately.
type patrolState struct {
	m *Machine
}

func (s *patrolState) ID() StateID { return StatePatrol }

func (s *patrolState) Enter(a *Agent, w World) {
	a.WaypointIdx = 0
	a.Anim = AnimWalk
}

func (s *patrolState) Update(a *Agent, w World, dt, now float64) {
	p := w.Perception(a)

	if confirmSight(a, w, p, dt, s.m.tuning.SightConfirm) {
		s.m.Transition(a, w, StateAttack)
		return
	}
	if p.CanHearPlayer {
		px, pz := w.PlayerPosition()
		a.RememberPlayer(px, pz)
		s.m.Transition(a, w, StateAlert)
		return
	}

	// Nothing to patrol between.
	if len(a.Waypoints) < 2 {
		s.m.Transition(a, w, StateIdle)
		return
	}

	wp := a.Waypoints[a.WaypointIdx]
	dir, moving := s.m.follower.MoveDirection(w.NavGrid(), a.X, a.Z, wp.X, wp.Z, &a.Follow, now)
	if !moving {
		a.WaypointIdx = (a.WaypointIdx + 1) % len(a.Waypoints)
		a.Follow.Path = nil
		return
	}
	a.Anim = AnimWalk
	s.m.step(a, w, dir, s.m.tuning.MoveSpeed, dt)
}

func (s *patrolState) Exit(a *Agent) {}

// confirmSight accumulates continuous sight time and reports whether the
// confirmation window has been met. Momentary flickers reset the counter so
// a glimpse through a doorway doesn't trigger an attack.
func confirmSight(a *Agent, w World, p Perception, dt, window float64) bool {
	if !p.CanSeePlayer {
		a.sightConfirm = 0
		return false
	}
	a.sightConfirm += dt
	if a.sightConfirm < window {
		return false
	}
	px, pz := w.PlayerPosition()
	a.RememberPlayer(px, pz)
	return true
}
