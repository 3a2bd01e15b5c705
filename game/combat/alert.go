package combat

// alertState sends the agent to the last known player position. Hearing the
// player refreshes the countdown; once the position is reached the agent
// scans in place until the timer runs out, then stands down.
type alertState struct {
	m *Machine
}

func (s *alertState) ID() StateID { return StateAlert }

func (s *alertState) Enter(a *Agent, w World) {
	a.alertTimer = s.m.tuning.AlertDuration
	a.Anim = AnimAlert
	w.PropagateAlert(a)
}

func (s *alertState) Update(a *Agent, w World, dt, now float64) {
	p := w.Perception(a)

	if confirmSight(a, w, p, dt, s.m.tuning.SightConfirm) {
		s.m.Transition(a, w, StateAttack)
		return
	}
	if p.CanHearPlayer {
		px, pz := w.PlayerPosition()
		a.RememberPlayer(px, pz)
		a.alertTimer = s.m.tuning.AlertDuration
	}

	a.alertTimer -= dt
	if a.alertTimer <= 0 {
		a.HasLastKnown = false
		s.m.Transition(a, w, StateIdle)
		return
	}

	if !a.HasLastKnown {
		// Nowhere to investigate; scan from where we stand.
		a.Facing += s.m.tuning.SearchTurnRate * dt
		a.Anim = AnimAlert
		return
	}

	dir, moving := s.m.follower.MoveDirection(
		w.NavGrid(), a.X, a.Z, a.LastKnownX, a.LastKnownZ, &a.Follow, now)
	if moving {
		a.Anim = AnimWalk
		s.m.step(a, w, dir, s.m.tuning.MoveSpeed, dt)
		return
	}
	// Arrived at the last known position: rotate in place, searching,
	// while the alert timer keeps running down.
	a.Facing += s.m.tuning.SearchTurnRate * dt
	a.Anim = AnimAlert
}

func (s *alertState) Exit(a *Agent) {}
