package nav

import (
	"container/heap"
	"math"

	"github.com/karasuno/gridfire/server/config"
	"github.com/karasuno/gridfire/server/resource"
)

// propBaseRadius is the blocking footprint of a scale-1.0 prop, in world units.
const propBaseRadius = 0.9

// Cell is one walkability cell. A cell outside the grid bounds is implicitly
// non-walkable.
type Cell struct {
	Walkable    bool
	PropBlocked bool
}

// Grid is a uniform walkability grid over the level's XZ plane, stored as a
// flat row-major array anchored at the padded bounding box of all rooms.
type Grid struct {
	cellSize      float64
	originX       float64 // world X of the grid's min corner
	originZ       float64
	width, height int
	cells         []Cell
	maxSnapCells  int
}

// NewGrid builds a walkability grid from level geometry. Marking order
// matters: rooms first, doors second (doors only add walkability), props
// last (props only subtract). A door pass never re-opens a prop-blocked
// cell because props run after it.
func NewGrid(lv *resource.Level, cfg config.NavConfig) *Grid {
	g := &Grid{
		cellSize:     cfg.CellSize,
		maxSnapCells: cfg.MaxSnapCells,
	}
	if g.cellSize <= 0 {
		g.cellSize = 1.0
	}
	if g.maxSnapCells <= 0 {
		g.maxSnapCells = 20
	}
	if lv == nil || len(lv.Rooms) == 0 {
		return g
	}

	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	for _, r := range lv.Rooms {
		minX = math.Min(minX, r.X-r.Width/2)
		maxX = math.Max(maxX, r.X+r.Width/2)
		minZ = math.Min(minZ, r.Z-r.Depth/2)
		maxZ = math.Max(maxZ, r.Z+r.Depth/2)
	}
	g.originX = minX - cfg.Padding
	g.originZ = minZ - cfg.Padding
	g.width = int(math.Ceil((maxX+cfg.Padding-g.originX)/g.cellSize)) + 1
	g.height = int(math.Ceil((maxZ+cfg.Padding-g.originZ)/g.cellSize)) + 1
	g.cells = make([]Cell, g.width*g.height)

	g.markRooms(lv)
	g.markDoors(lv, cfg.DoorClearance)
	g.markProps(lv)
	return g
}

func (g *Grid) markRooms(lv *resource.Level) {
	for gz := 0; gz < g.height; gz++ {
		for gx := 0; gx < g.width; gx++ {
			cx, cz := g.GridToWorld(gx, gz)
			for i := range lv.Rooms {
				if lv.Rooms[i].ContainsXZ(cx, cz) {
					g.cells[gz*g.width+gx].Walkable = true
					break
				}
			}
		}
	}
}

// markDoors force-opens each door's widened opening and carves a corridor
// from the opening to its two nearest rooms, so rooms stay connected even
// when door markup and room markup disagree at the boundary.
func (g *Grid) markDoors(lv *resource.Level, clearance float64) {
	for _, d := range lv.Doors {
		half := d.Width/2 + clearance
		g.openBox(d.X, d.Z, half)
		for _, room := range nearestRooms(lv, d.X, d.Z, 2) {
			tx, tz := closestPointOnRoom(room, d.X, d.Z)
			g.openCorridor(d.X, d.Z, tx, tz, half)
		}
	}
}

// openBox force-marks walkable every cell whose center lies within a
// Chebyshev half-extent of (x, z).
func (g *Grid) openBox(x, z float64, half float64) {
	minGx, minGz := g.WorldToGrid(x-half, z-half)
	maxGx, maxGz := g.WorldToGrid(x+half, z+half)
	for gz := minGz; gz <= maxGz; gz++ {
		for gx := minGx; gx <= maxGx; gx++ {
			if !g.inBounds(gx, gz) {
				continue
			}
			cx, cz := g.GridToWorld(gx, gz)
			if math.Abs(cx-x) <= half && math.Abs(cz-z) <= half {
				g.cells[gz*g.width+gx] = Cell{Walkable: true}
			}
		}
	}
}

// openCorridor opens boxes along the segment from (x0,z0) to (x1,z1).
func (g *Grid) openCorridor(x0, z0, x1, z1, half float64) {
	dx, dz := x1-x0, z1-z0
	dist := math.Hypot(dx, dz)
	if dist < 1e-9 {
		return
	}
	step := g.cellSize / 2
	for t := 0.0; t <= dist+step; t += step {
		f := math.Min(t/dist, 1)
		g.openBox(x0+dx*f, z0+dz*f, half)
	}
}

func nearestRooms(lv *resource.Level, x, z float64, n int) []*resource.Room {
	type cand struct {
		room *resource.Room
		dist float64
	}
	var cands []cand
	for i := range lv.Rooms {
		cx, cz := closestPointOnRoom(&lv.Rooms[i], x, z)
		cands = append(cands, cand{&lv.Rooms[i], math.Hypot(cx-x, cz-z)})
	}
	// Selection sort; room counts are tiny.
	for i := 0; i < len(cands) && i < n; i++ {
		best := i
		for j := i + 1; j < len(cands); j++ {
			if cands[j].dist < cands[best].dist {
				best = j
			}
		}
		cands[i], cands[best] = cands[best], cands[i]
	}
	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]*resource.Room, len(cands))
	for i, c := range cands {
		out[i] = c.room
	}
	return out
}

func closestPointOnRoom(r *resource.Room, x, z float64) (float64, float64) {
	hw, hd := r.Width/2, r.Depth/2
	return clamp(x, r.X-hw, r.X+hw), clamp(z, r.Z-hd, r.Z+hd)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (g *Grid) markProps(lv *resource.Level) {
	for _, p := range lv.Props {
		scale := p.Scale
		if scale <= 0 {
			scale = 1
		}
		g.blockCircle(p.X, p.Z, propBaseRadius*scale)
	}
}

// blockCircle prop-blocks every walkable cell whose center lies within
// radius of (x, z).
func (g *Grid) blockCircle(x, z, radius float64) {
	minGx, minGz := g.WorldToGrid(x-radius, z-radius)
	maxGx, maxGz := g.WorldToGrid(x+radius, z+radius)
	for gz := minGz; gz <= maxGz; gz++ {
		for gx := minGx; gx <= maxGx; gx++ {
			if !g.inBounds(gx, gz) {
				continue
			}
			cx, cz := g.GridToWorld(gx, gz)
			if math.Hypot(cx-x, cz-z) > radius {
				continue
			}
			c := &g.cells[gz*g.width+gx]
			if c.Walkable {
				c.Walkable = false
				c.PropBlocked = true
			}
		}
	}
}

// UnblockAt re-opens cells within radius of (x, z) that were blocked by a
// prop. Cells blocked by static geometry are never reopened. Called when a
// destructible prop is removed; must run between frames, never during one.
func (g *Grid) UnblockAt(x, z, radius float64) {
	minGx, minGz := g.WorldToGrid(x-radius, z-radius)
	maxGx, maxGz := g.WorldToGrid(x+radius, z+radius)
	for gz := minGz; gz <= maxGz; gz++ {
		for gx := minGx; gx <= maxGx; gx++ {
			if !g.inBounds(gx, gz) {
				continue
			}
			cx, cz := g.GridToWorld(gx, gz)
			if math.Hypot(cx-x, cz-z) > radius {
				continue
			}
			c := &g.cells[gz*g.width+gx]
			if c.PropBlocked {
				c.Walkable = true
				c.PropBlocked = false
			}
		}
	}
}

// IsBuilt reports whether the grid holds any cells. Consumers fall back to
// direct movement when it doesn't.
func (g *Grid) IsBuilt() bool {
	return g != nil && len(g.cells) > 0
}

// WorldToGrid maps a world position to grid coordinates.
func (g *Grid) WorldToGrid(x, z float64) (int, int) {
	return int(math.Floor((x - g.originX) / g.cellSize)),
		int(math.Floor((z - g.originZ) / g.cellSize))
}

// GridToWorld returns the world-space center of a cell.
func (g *Grid) GridToWorld(gx, gz int) (float64, float64) {
	return g.originX + (float64(gx)+0.5)*g.cellSize,
		g.originZ + (float64(gz)+0.5)*g.cellSize
}

func (g *Grid) inBounds(gx, gz int) bool {
	return gx >= 0 && gx < g.width && gz >= 0 && gz < g.height
}

// CellAt returns the cell at grid coordinates, false if out of bounds.
func (g *Grid) CellAt(gx, gz int) (Cell, bool) {
	if !g.inBounds(gx, gz) {
		return Cell{}, false
	}
	return g.cells[gz*g.width+gx], true
}

func (g *Grid) walkable(gx, gz int) bool {
	return g.inBounds(gx, gz) && g.cells[gz*g.width+gx].Walkable
}

// Size returns the grid dimensions in cells.
func (g *Grid) Size() (int, int) { return g.width, g.height }

// Origin returns the world position of the grid's min corner.
func (g *Grid) Origin() (float64, float64) { return g.originX, g.originZ }

// CellSize returns the edge length of one cell in world units.
func (g *Grid) CellSize() float64 { return g.cellSize }

// NearestWalkable snaps (x, z) to the nearest walkable cell center. The
// search expands in Chebyshev rings up to a fixed cell radius so the worst
// case stays bounded; false means nothing walkable is within range.
func (g *Grid) NearestWalkable(x, z float64) (resource.Point, bool) {
	gx, gz := g.WorldToGrid(x, z)
	if g.walkable(gx, gz) {
		return resource.Point{X: x, Z: z}, true
	}
	for ring := 1; ring <= g.maxSnapCells; ring++ {
		for dz := -ring; dz <= ring; dz++ {
			for dx := -ring; dx <= ring; dx++ {
				if max(abs(dx), abs(dz)) != ring {
					continue // interior already visited in a smaller ring
				}
				if g.walkable(gx+dx, gz+dz) {
					wx, wz := g.GridToWorld(gx+dx, gz+dz)
					return resource.Point{X: wx, Z: wz}, true
				}
			}
		}
	}
	return resource.Point{}, false
}

// ---- A* ----

type pathNode struct {
	gx, gz  int
	g, f    float64
	seq     int // insertion sequence; breaks f-ties deterministically
	parent  *pathNode
	openIdx int // index in the open heap, -1 once popped
}

type openHeap []*pathNode

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].openIdx, h[j].openIdx = i, j
}
func (h *openHeap) Push(x any) {
	n := x.(*pathNode)
	n.openIdx = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := old[len(old)-1]
	n.openIdx = -1
	*h = old[:len(old)-1]
	return n
}

var neighborSteps = [8]struct {
	dx, dz int
	cost   float64
}{
	{1, 0, 1}, {-1, 0, 1}, {0, 1, 1}, {0, -1, 1},
	{1, 1, math.Sqrt2}, {1, -1, math.Sqrt2}, {-1, 1, math.Sqrt2}, {-1, -1, math.Sqrt2},
}

// FindPath runs A* between two world positions and returns a simplified
// waypoint list. Both endpoints are snapped to walkable cells first; an
// empty result means no route exists. Never panics, never errors.
func (g *Grid) FindPath(fromX, fromZ, toX, toZ float64) []resource.Point {
	if !g.IsBuilt() {
		return nil
	}
	start, ok := g.NearestWalkable(fromX, fromZ)
	if !ok {
		return nil
	}
	goal, ok := g.NearestWalkable(toX, toZ)
	if !ok {
		return nil
	}
	sx, sz := g.WorldToGrid(start.X, start.Z)
	tx, tz := g.WorldToGrid(goal.X, goal.Z)
	if sx == tx && sz == tz {
		return []resource.Point{start}
	}

	h := func(gx, gz int) float64 {
		return math.Hypot(float64(gx-tx), float64(gz-tz))
	}

	seq := 0
	startNode := &pathNode{gx: sx, gz: sz, f: h(sx, sz)}
	open := &openHeap{}
	heap.Init(open)
	heap.Push(open, startNode)
	nodes := map[[2]int]*pathNode{{sx, sz}: startNode}
	closed := map[[2]int]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*pathNode)
		key := [2]int{cur.gx, cur.gz}
		if closed[key] {
			continue
		}
		closed[key] = true

		if cur.gx == tx && cur.gz == tz {
			return g.reconstruct(cur)
		}

		for _, s := range neighborSteps {
			nx, nz := cur.gx+s.dx, cur.gz+s.dz
			if !g.walkable(nx, nz) {
				continue
			}
			// Diagonal moves need both orthogonal neighbors open so agents
			// never clip a blocked corner.
			if s.dx != 0 && s.dz != 0 &&
				(!g.walkable(cur.gx+s.dx, cur.gz) || !g.walkable(cur.gx, cur.gz+s.dz)) {
				continue
			}
			nkey := [2]int{nx, nz}
			if closed[nkey] {
				continue
			}
			ng := cur.g + s.cost
			if old, exists := nodes[nkey]; exists {
				if ng < old.g {
					old.g = ng
					old.f = ng + h(nx, nz)
					old.parent = cur
					if old.openIdx >= 0 {
						heap.Fix(open, old.openIdx)
					} else {
						heap.Push(open, old)
					}
				}
				continue
			}
			seq++
			next := &pathNode{gx: nx, gz: nz, g: ng, f: ng + h(nx, nz), seq: seq, parent: cur}
			nodes[nkey] = next
			heap.Push(open, next)
		}
	}
	return nil
}

// reconstruct walks parent pointers from goal to start, converts to world
// space and drops collinear interior waypoints.
func (g *Grid) reconstruct(goal *pathNode) []resource.Point {
	var rev []resource.Point
	for n := goal; n != nil; n = n.parent {
		x, z := g.GridToWorld(n.gx, n.gz)
		rev = append(rev, resource.Point{X: x, Z: z})
	}
	path := make([]resource.Point, len(rev))
	for i, p := range rev {
		path[len(rev)-1-i] = p
	}
	return simplifyPath(path)
}

// simplifyPath removes interior points that are collinear with their
// neighbors, keeping only the endpoints and true direction changes.
func simplifyPath(path []resource.Point) []resource.Point {
	if len(path) <= 2 {
		return path
	}
	const eps = 1e-6
	out := []resource.Point{path[0]}
	for i := 1; i < len(path)-1; i++ {
		prev := out[len(out)-1]
		next := path[i+1]
		ax, az := path[i].X-prev.X, path[i].Z-prev.Z
		bx, bz := next.X-path[i].X, next.Z-path[i].Z
		if math.Abs(ax*bz-az*bx) > eps {
			out = append(out, path[i])
		}
	}
	return append(out, path[len(path)-1])
}

// Snapshot returns a debug-friendly view of the grid: 0 = blocked,
// 1 = walkable, 2 = prop-blocked.
func (g *Grid) Snapshot() map[string]any {
	if !g.IsBuilt() {
		return nil
	}
	tiles := make([]int, len(g.cells))
	for i, c := range g.cells {
		switch {
		case c.Walkable:
			tiles[i] = 1
		case c.PropBlocked:
			tiles[i] = 2
		}
	}
	return map[string]any{
		"width":     g.width,
		"height":    g.height,
		"origin_x":  g.originX,
		"origin_z":  g.originZ,
		"cell_size": g.cellSize,
		"tiles":     tiles,
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
