// Package grid provides the rectangular world: layered cells, the global clock,
// pathfinding and the scenery entities every world is built from.
package grid

import "math"

// Coord is a cell position. X grows to the right, Y grows downward.
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// NeighborOffsets lists the four orthogonal directions in the order every
// search and placement routine visits them.
var NeighborOffsets = [4]Coord{
	{X: 0, Y: 1},
	{X: 0, Y: -1},
	{X: 1, Y: 0},
	{X: -1, Y: 0},
}

// Neighbors returns the four orthogonally adjacent coordinates.
// Some of them may be outside the grid.
func (c Coord) Neighbors() [4]Coord {
	var result [4]Coord
	for i, d := range NeighborOffsets {
		result[i] = Coord{X: c.X + d.X, Y: c.Y + d.Y}
	}
	return result
}

// Manhattan returns the 4-connected step distance between two coordinates.
func Manhattan(a, b Coord) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// Euclidean returns the straight-line distance between two coordinates.
func Euclidean(a, b Coord) float64 {
	dx := float64(a.X - b.X)
	dy := float64(a.Y - b.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Nearest returns the coordinate in candidates closest to from by Euclidean
// distance. Ties go to the later candidate, matching the full-scan order.
func Nearest(from Coord, candidates []Coord) (Coord, bool) {
	if len(candidates) == 0 {
		return Coord{}, false
	}
	best := candidates[0]
	bestDist := math.Inf(1)
	for _, c := range candidates {
		d := Euclidean(from, c)
		if d <= bestDist {
			bestDist = d
			best = c
		}
	}
	return best, true
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
