package grid

const (
	unvisited = -1
	blocked   = -2
)

// FindPath returns a shortest 4-connected route from one cell to another
// using Lee's wave algorithm. The route excludes from and ends at to.
//
// The start cell is always stamped as the wave origin even when it is blocked
// (it usually holds the mover itself). The destination must be passable.
// Among several shortest routes one is picked at random, so callers must not
// rely on a particular one. ok is false when to is blocked or unreachable.
func (g *Grid) FindPath(from, to Coord) (path []Coord, ok bool) {
	if !g.CoordinatesValid(from.X, from.Y) || !g.CellPassable(to.X, to.Y) {
		return nil, false
	}
	if from == to {
		return []Coord{}, true
	}

	dist := g.waveMap()
	g.wave(dist, from, to)
	return g.backtrack(dist, to)
}

// waveMap marks every blocked cell and leaves passable cells unvisited.
func (g *Grid) waveMap() [][]int {
	dist := make([][]int, g.height)
	for y := range dist {
		row := make([]int, g.length)
		for x := range row {
			if g.CellPassable(x, y) {
				row[x] = unvisited
			} else {
				row[x] = blocked
			}
		}
		dist[y] = row
	}
	return dist
}

// wave stamps each reachable cell with its step distance from the origin,
// stopping as soon as the destination is reached.
func (g *Grid) wave(dist [][]int, from, to Coord) {
	dist[from.Y][from.X] = 0
	frontier := []Coord{from}

	for len(frontier) > 0 && dist[to.Y][to.X] == unvisited {
		var next []Coord
		for _, c := range frontier {
			step := dist[c.Y][c.X] + 1
			for _, n := range c.Neighbors() {
				if !g.CoordinatesValid(n.X, n.Y) || dist[n.Y][n.X] != unvisited {
					continue
				}
				dist[n.Y][n.X] = step
				next = append(next, n)
			}
		}
		frontier = next
	}
}

// backtrack walks from the destination down the distance gradient.
func (g *Grid) backtrack(dist [][]int, to Coord) ([]Coord, bool) {
	steps := dist[to.Y][to.X]
	if steps <= 0 {
		return nil, false
	}

	path := make([]Coord, steps)
	path[steps-1] = to
	cur := to
	var options []Coord
	for k := steps - 1; k > 0; k-- {
		options = options[:0]
		for _, n := range cur.Neighbors() {
			if g.CoordinatesValid(n.X, n.Y) && dist[n.Y][n.X] == k {
				options = append(options, n)
			}
		}
		cur = options[g.rng.Intn(len(options))]
		path[k-1] = cur
	}
	return path, true
}
