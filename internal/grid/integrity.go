package grid

import "fmt"

// IntegrityCheck walks every cell and reports structural violations. It
// never corrects anything. An empty result means the grid is consistent.
//
// Between ticks every placed entity must carry the current epoch as its
// local time; an entity inserted with a positive shift is reported until the
// clock catches up with it.
func (g *Grid) IntegrityCheck() []string {
	var violations []string
	report := func(format string, args ...any) {
		violations = append(violations, fmt.Sprintf(format, args...))
	}

	if len(g.cells) != g.height {
		report("grid height %d does not match row count %d", g.height, len(g.cells))
	}

	seen := make(map[Entity]Coord)
	for y, row := range g.cells {
		if len(row) != g.length {
			report("grid length %d does not match cell count %d in row %d", g.length, len(row), y)
		}
		for x, cell := range row {
			if len(cell) == 0 {
				report("empty cell at (%d,%d)", x, y)
			}
			for _, e := range cell {
				b := e.Core()
				if prev, dup := seen[e]; dup {
					report("%s %d appears at (%d,%d) and (%d,%d)", b.kind, b.id, prev.X, prev.Y, x, y)
					continue
				}
				seen[e] = Coord{X: x, Y: y}

				if b.pos.X != x || b.pos.Y != y {
					report("%s %d at (%d,%d) thinks it is at (%d,%d)", b.kind, b.id, x, y, b.pos.X, b.pos.Y)
				}
				if b.localTime != g.epoch {
					report("%s %d at (%d,%d) travels in time: epoch %d, local time %d", b.kind, b.id, x, y, g.epoch, b.localTime)
				}
				if b.grid != g {
					report("%s %d at (%d,%d) does not reference this grid", b.kind, b.id, x, y)
				}
				if registered, ok := g.arena[b.id]; !ok || registered != e {
					report("%s %d at (%d,%d) is missing from the arena", b.kind, b.id, x, y)
				}
			}
		}
	}

	if len(g.arena) != len(seen) {
		report("arena holds %d entities, cells hold %d", len(g.arena), len(seen))
	}
	return violations
}
