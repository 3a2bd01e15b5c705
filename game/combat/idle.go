package combat

// idleState is the rest state: stand still, watch and listen. Agents with
// fewer than two waypoints end up here instead of patrolling.
type idleState struct {
	m *Machine
}

func (s *idleState) ID() StateID { return StateIdle }

func (s *idleState) Enter(a *Agent, w World) {
	a.Anim = AnimIdle
}

func (s *idleState) Update(a *Agent, w World, dt, now float64) {
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
	if len(a.Waypoints) >= 2 {
		s.m.Transition(a, w, StatePatrol)
	}
}

func (s *idleState) Exit(a *Agent) {}
