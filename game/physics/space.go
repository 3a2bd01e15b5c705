package physics

import (
	"github.com/jakecoffman/cp"
	"go.uber.org/zap"

	"github.com/karasuno/gridfire/server/game/nav"
	"github.com/karasuno/gridfire/server/resource"
)

const (
	agentRadius    = 0.45
	agentMass      = 80.0
	propBaseRadius = 0.9
)

// Space owns the chipmunk collision space mirroring the core's authoritative
// positions. The AI layer writes positions in; the space answers separation
// queries and keeps bodies from tunnelling through props. Driven from the
// arena's frame loop only — no internal locking.
type Space struct {
	space  *cp.Space
	agents map[string]*cp.Body
	props  map[string]*cp.Shape
	logger *zap.Logger
}

// NewSpace builds a space with one static circle shape per level prop.
func NewSpace(lv *resource.Level, logger *zap.Logger) *Space {
	s := &Space{
		space:  cp.NewSpace(),
		agents: make(map[string]*cp.Body),
		props:  make(map[string]*cp.Shape),
		logger: logger,
	}
	if lv != nil {
		for i := range lv.Props {
			s.addProp(&lv.Props[i])
		}
	}
	return s
}

func (s *Space) addProp(p *resource.Prop) {
	scale := p.Scale
	if scale <= 0 {
		scale = 1
	}
	shape := cp.NewCircle(s.space.StaticBody, propBaseRadius*scale, cp.Vector{X: p.X, Y: p.Z})
	s.space.AddShape(shape)
	s.props[p.ID] = shape
}

// AddAgent registers a kinematic circle body for an agent.
func (s *Space) AddAgent(id string, x, z float64) {
	if _, ok := s.agents[id]; ok {
		return
	}
	body := cp.NewKinematicBody()
	body.SetPosition(cp.Vector{X: x, Y: z})
	s.space.AddBody(body)
	s.space.AddShape(cp.NewCircle(body, agentRadius, cp.Vector{}))
	s.agents[id] = body
}

// RemoveAgent drops an agent's body and shapes from the space.
func (s *Space) RemoveAgent(id string) {
	body, ok := s.agents[id]
	if !ok {
		return
	}
	body.EachShape(func(shape *cp.Shape) {
		s.space.RemoveShape(shape)
	})
	s.space.RemoveBody(body)
	delete(s.agents, id)
}

// SyncBody pushes a core-owned position into the physics body.
func (s *Space) SyncBody(id string, x, z float64) {
	if body, ok := s.agents[id]; ok {
		body.SetPosition(cp.Vector{X: x, Y: z})
	}
}

// RemoveProp removes a destroyed prop's collision shape. Returns false when
// the prop is unknown (already destroyed, or not a prop with a body).
func (s *Space) RemoveProp(id string) bool {
	shape, ok := s.props[id]
	if !ok {
		return false
	}
	s.space.RemoveShape(shape)
	delete(s.props, id)
	s.logger.Debug("prop shape removed", zap.String("prop", id))
	return true
}

// Repulsion returns the separation vector for an agent: the sum of
// inverse-falloff pushes away from every other agent within rangeR. The
// result is not normalized; callers weight it into their movement.
func (s *Space) Repulsion(id string, rangeR float64) nav.Vec2 {
	self, ok := s.agents[id]
	if !ok || rangeR <= 0 {
		return nav.Vec2{}
	}
	pos := self.Position()
	var out nav.Vec2
	for otherID, other := range s.agents {
		if otherID == id {
			continue
		}
		op := other.Position()
		d := pos.Sub(op)
		dist := d.Length()
		if dist >= rangeR {
			continue
		}
		if dist < 1e-6 {
			// Exactly overlapping; push along X so the pair separates.
			out.X += 1
			continue
		}
		falloff := 1 - dist/rangeR
		out.X += d.X / dist * falloff
		out.Z += d.Y / dist * falloff
	}
	return out
}

// Step advances the collision space. The AI layer is authoritative over
// positions, so the step only resolves residual contacts.
func (s *Space) Step(dt float64) {
	s.space.Step(dt)
}

// AgentCount returns the number of registered agent bodies.
func (s *Space) AgentCount() int { return len(s.agents) }
