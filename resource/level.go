package resource

// ---- Level Data Structures ----
//
// A level is a flat arrangement of axis-aligned rectangular rooms joined by
// door openings, with circular-footprint props scattered inside. Geometry
// lives on the XZ plane; Y is up and never appears in navigation data.

// Room is an axis-aligned rectangle. X/Z is the center of the floor.
type Room struct {
	Name  string  `json:"name"`
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Width float64 `json:"width"`
	Depth float64 `json:"depth"`
}

// ContainsXZ reports whether the point lies inside the room rectangle.
func (r *Room) ContainsXZ(x, z float64) bool {
	hw, hd := r.Width/2, r.Depth/2
	return x >= r.X-hw && x <= r.X+hw && z >= r.Z-hd && z <= r.Z+hd
}

// Door is a rectangular opening between two rooms. X/Z is the center of the
// opening; Width spans the gap along whichever wall the door sits in.
type Door struct {
	X     float64 `json:"x"`
	Z     float64 `json:"z"`
	Width float64 `json:"width"`
}

// Prop is a destructible or static obstacle with a circular footprint.
// Scale multiplies the base blocking radius.
type Prop struct {
	ID           string  `json:"id"`
	Kind         string  `json:"kind"`
	X            float64 `json:"x"`
	Z            float64 `json:"z"`
	Scale        float64 `json:"scale"`
	Destructible bool    `json:"destructible"`
}

// PatrolRoute is a named loop of waypoints assigned to agent spawns.
type PatrolRoute struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

// Point is a 2D world-space position.
type Point struct {
	X float64 `json:"x"`
	Z float64 `json:"z"`
}

// Spawn places an agent in the level.
type Spawn struct {
	X      float64 `json:"x"`
	Z      float64 `json:"z"`
	Route  string  `json:"route"` // PatrolRoute name; empty = idle guard
	Weapon string  `json:"weapon"`
}

// Level is the parsed level file. The navigation grid, the physics space and
// the arena all build from this one structure.
type Level struct {
	Name   string        `json:"name"`
	Rooms  []Room        `json:"rooms"`
	Doors  []Door        `json:"doors"`
	Props  []Prop        `json:"props"`
	Routes []PatrolRoute `json:"routes"`
	Spawns []Spawn       `json:"spawns"`
	Player Point         `json:"player"`
}

// Route returns the named patrol route, or nil.
func (l *Level) Route(name string) *PatrolRoute {
	for i := range l.Routes {
		if l.Routes[i].Name == name {
			return &l.Routes[i]
		}
	}
	return nil
}
