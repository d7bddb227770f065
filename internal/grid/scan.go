package grid

// FindAllCoordinatesByKind returns every cell holding an entity of the given
// kind, in raster order.
func (g *Grid) FindAllCoordinatesByKind(kind Kind) []Coord {
	var found []Coord
	g.eachCell(func(x, y int, cell []Entity) {
		for _, e := range cell {
			if e.Core().kind == kind {
				found = append(found, Coord{X: x, Y: y})
				return
			}
		}
	})
	return found
}

// FindAllCoordinatesBySubstance returns every cell where some occupant
// carries at least one unit of s, in raster order.
func (g *Grid) FindAllCoordinatesBySubstance(s Substance) []Coord {
	var found []Coord
	g.eachCell(func(x, y int, cell []Entity) {
		for _, e := range cell {
			if e.Core().inventory.Contains(s) {
				found = append(found, Coord{X: x, Y: y})
				return
			}
		}
	})
	return found
}

// FindAllEntitiesByKind returns every entity of the given kind, in raster
// order and bottom-up within a cell.
func (g *Grid) FindAllEntitiesByKind(kind Kind) []Entity {
	var found []Entity
	g.eachCell(func(_, _ int, cell []Entity) {
		for _, e := range cell {
			if e.Core().kind == kind {
				found = append(found, e)
			}
		}
	})
	return found
}

// CountKind returns the number of entities of the given kind.
func (g *Grid) CountKind(kind Kind) int {
	n := 0
	for _, e := range g.arena {
		if e.Core().kind == kind {
			n++
		}
	}
	return n
}

// Stats counts placed entities per kind.
func (g *Grid) Stats() map[Kind]int {
	stats := make(map[Kind]int, NumKinds)
	g.eachCell(func(_, _ int, cell []Entity) {
		for _, e := range cell {
			stats[e.Core().kind]++
		}
	})
	return stats
}

// Rows renders the topmost occupant of every cell, one string per row.
func (g *Grid) Rows() []string {
	rows := make([]string, g.height)
	buf := make([]byte, g.length)
	for y := 0; y < g.height; y++ {
		for x := 0; x < g.length; x++ {
			buf[x] = ' '
			if top := g.Top(x, y); top != nil {
				buf[x] = top.Symbol()
			}
		}
		rows[y] = string(buf)
	}
	return rows
}

// String renders the grid as newline-separated rows.
func (g *Grid) String() string {
	out := make([]byte, 0, (g.length+1)*g.height)
	for _, row := range g.Rows() {
		out = append(out, row...)
		out = append(out, '\n')
	}
	return string(out)
}

func (g *Grid) eachCell(fn func(x, y int, cell []Entity)) {
	for y, row := range g.cells {
		for x, cell := range row {
			fn(x, y, cell)
		}
	}
}
