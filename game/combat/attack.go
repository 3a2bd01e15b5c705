package combat

import "github.com/karasuno/gridfire/server/game/nav"

// attackState is the engagement behavior: keep the player inside the
// preferred-range band, strafe while in it, fire on cooldown, and fall back
// to alert once sight has been lost for the timeout with nothing heard.
type attackState struct {
	m *Machine
}

func (s *attackState) ID() StateID { return StateAttack }

func (s *attackState) Enter(a *Agent, w World) {
	a.strafeDir = pickStrafeDir(a)
	a.strafeTimer = 0
	a.Anim = AnimIdle
	w.PropagateAlert(a)
}

func (s *attackState) Update(a *Agent, w World, dt, now float64) {
	t := s.m.tuning
	p := w.Perception(a)
	px, pz := w.PlayerPosition()

	if p.CanSeePlayer {
		a.loseSight = 0
		a.RememberPlayer(px, pz)
		s.fireControl(a, w, now)
	} else {
		a.loseSight += dt
		if p.CanHearPlayer {
			// Hearing keeps the engagement alive and refreshes the trail.
			a.loseSight = 0
			a.RememberPlayer(px, pz)
		}
		if a.loseSight > t.LoseSightTimeout {
			s.m.Transition(a, w, StateAlert)
			return
		}
	}

	if a.HasLastKnown {
		faceToward(a, a.LastKnownX, a.LastKnownZ)
	}

	var dir nav.Vec2
	speed := t.MoveSpeed
	if p.CanSeePlayer {
		switch {
		case p.DistanceToPlayer > t.PreferredRange+t.RangeBand:
			// Too far: close in.
			d, moving := s.m.follower.MoveDirection(w.NavGrid(), a.X, a.Z, px, pz, &a.Follow, now)
			if moving {
				dir = d
			}
		case p.DistanceToPlayer < t.PreferredRange-t.RangeBand:
			// Too close: back off at half speed.
			away := nav.Direction(px, pz, a.X, a.Z)
			rx := a.X + away.X*t.PreferredRange
			rz := a.Z + away.Z*t.PreferredRange
			d, moving := s.m.follower.MoveDirection(w.NavGrid(), a.X, a.Z, rx, rz, &a.Follow, now)
			if moving {
				dir = d
			}
			speed *= t.RetreatSpeed
		default:
			// In the band: circle the player.
			a.strafeTimer -= dt
			if a.strafeTimer <= 0 {
				a.strafeDir = pickStrafeDir(a)
				a.strafeTimer = t.StrafeMin + a.rng.Float64()*(t.StrafeMax-t.StrafeMin)
			}
			dir = nav.Direction(a.X, a.Z, px, pz).Perp().Scale(a.strafeDir)
		}
	} else if a.HasLastKnown {
		// Sight lost: press toward where the player last was.
		d, moving := s.m.follower.MoveDirection(
			w.NavGrid(), a.X, a.Z, a.LastKnownX, a.LastKnownZ, &a.Follow, now)
		if moving {
			dir = d
		}
	}

	// Separation from nearby agents is blended into every movement branch.
	dir = dir.Add(w.RepulsionForce(a).Scale(t.RepulsionWeight)).Normalized()

	if !dir.IsZero() {
		a.X += dir.X * speed * dt
		a.Z += dir.Z * speed * dt
		w.SyncPhysicsBody(a)
	}

	// The shoot pose is held independently of the fire cooldown so fast
	// weapons still read on screen.
	switch {
	case now < a.ShootHoldUntil:
		a.Anim = AnimShoot
	case !dir.IsZero():
		a.Anim = AnimWalk
	default:
		a.Anim = AnimIdle
	}
}

func (s *attackState) Exit(a *Agent) {}

// fireControl issues a fire request when the cooldown allows it.
func (s *attackState) fireControl(a *Agent, w World, now float64) {
	if now < a.NextFireAt {
		return
	}
	w.FireAtPlayer(a)
	a.NextFireAt = now + s.m.tuning.FireInterval
	a.ShootHoldUntil = now + s.m.tuning.ShootAnimHold
}

func pickStrafeDir(a *Agent) float64 {
	if a.rng.Intn(2) == 0 {
		return 1
	}
	return -1
}
