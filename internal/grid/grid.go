package grid

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	// ErrOutOfBounds is returned for coordinates outside the grid.
	ErrOutOfBounds = errors.New("grid: coordinates out of bounds")
	// ErrVetoed is returned when the gatekeeper refuses an insertion.
	ErrVetoed = errors.New("grid: insertion vetoed")
	// ErrNotPlaced is returned when moving an entity that is not on this grid.
	ErrNotPlaced = errors.New("grid: entity not placed")
)

// maxPopulateAttempts bounds the random cell draws Populate makes per entity.
const maxPopulateAttempts = 100

// Gatekeeper is consulted on every insertion. It may configure the new entity
// (wiring memories, models, planning callbacks) or veto it.
type Gatekeeper interface {
	HandleCreation(e Entity) (veto bool)
}

// GatekeeperFunc adapts a function to the Gatekeeper interface.
type GatekeeperFunc func(e Entity) bool

// HandleCreation calls f(e).
func (f GatekeeperFunc) HandleCreation(e Entity) bool { return f(e) }

// Tuning holds the scenery constants the grid hands to its entities.
type Tuning struct {
	SpawnChance    float64   // Per-tick chance a blank grows one unit of substance
	SpawnSubstance Substance // What blanks grow
}

// DefaultTuning returns the stock scenery constants.
func DefaultTuning() Tuning {
	return Tuning{
		SpawnChance:    0.0004,
		SpawnSubstance: SubstanceNectar,
	}
}

// Grid is a length × height matrix of cells. Each cell is a stack of
// occupants, bottom first; any number of scenery occupants may lie beneath a
// single topmost occupant.
type Grid struct {
	length int
	height int
	cells  [][][]Entity // [y][x] → stack
	epoch  uint64
	paused bool

	gatekeeper Gatekeeper
	rng        *rand.Rand
	tuning     Tuning

	nextID EntityID
	arena  map[EntityID]Entity

	events  []Event
	scratch []Entity
}

// Option configures a Grid at construction.
type Option func(*Grid)

// WithSeed seeds the grid's random source.
func WithSeed(seed int64) Option {
	return func(g *Grid) { g.rng = rand.New(rand.NewSource(seed)) }
}

// WithRand installs an existing random source.
func WithRand(rng *rand.Rand) Option {
	return func(g *Grid) { g.rng = rng }
}

// WithTuning overrides the scenery constants.
func WithTuning(t Tuning) Option {
	return func(g *Grid) { g.tuning = t }
}

// WithEpoch starts the clock at the given tick. Used when restoring snapshots.
func WithEpoch(epoch uint64) Option {
	return func(g *Grid) { g.epoch = epoch }
}

// New creates a grid whose border cells hold a Block and whose interior cells
// hold a Blank.
func New(length, height int, opts ...Option) *Grid {
	g := NewBare(length, height, opts...)
	for y := 0; y < height; y++ {
		for x := 0; x < length; x++ {
			var e Entity
			if y == 0 || x == 0 || y == height-1 || x == length-1 {
				e = NewBlock()
			} else {
				e = NewBlank()
			}
			g.place(x, y, e, g.epoch)
		}
	}
	return g
}

// NewBare creates a grid with empty cells. Callers fill it with Restore.
func NewBare(length, height int, opts ...Option) *Grid {
	g := &Grid{
		length: length,
		height: height,
		tuning: DefaultTuning(),
		nextID: 1,
		arena:  make(map[EntityID]Entity),
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewSource(1))
	}

	g.cells = make([][][]Entity, height)
	for y := range g.cells {
		g.cells[y] = make([][]Entity, length)
	}
	return g
}

func (g *Grid) Length() int            { return g.length }
func (g *Grid) Height() int            { return g.height }
func (g *Grid) Epoch() uint64          { return g.epoch }
func (g *Grid) Rand() *rand.Rand       { return g.rng }
func (g *Grid) Tuning() Tuning         { return g.tuning }
func (g *Grid) Gatekeeper() Gatekeeper { return g.gatekeeper }

// SetGatekeeper registers the creation gatekeeper. nil removes it.
func (g *Grid) SetGatekeeper(gk Gatekeeper) { g.gatekeeper = gk }

// Pause makes AdvanceTick a no-op until Resume is called.
func (g *Grid) Pause()       { g.paused = true }
func (g *Grid) Resume()      { g.paused = false }
func (g *Grid) Paused() bool { return g.paused }

// CoordinatesValid reports whether (x, y) lies inside the grid.
func (g *Grid) CoordinatesValid(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.length && y < g.height
}

// Cell returns the occupant stack at (x, y), bottom first, or nil when out of
// bounds. The returned slice must not be modified.
func (g *Grid) Cell(x, y int) []Entity {
	if !g.CoordinatesValid(x, y) {
		return nil
	}
	return g.cells[y][x]
}

// Top returns the topmost occupant at (x, y), or nil.
func (g *Grid) Top(x, y int) Entity {
	cell := g.Cell(x, y)
	if len(cell) == 0 {
		return nil
	}
	return cell[len(cell)-1]
}

// CellPassable reports whether the topmost occupant at (x, y) is passable.
// Out-of-bounds and empty cells are not passable.
func (g *Grid) CellPassable(x, y int) bool {
	top := g.Top(x, y)
	return top != nil && top.Core().passable
}

// Entity looks up a placed entity by handle.
func (g *Grid) Entity(id EntityID) (Entity, bool) {
	e, ok := g.arena[id]
	return e, ok
}

// Population returns the number of entities currently placed.
func (g *Grid) Population() int {
	return len(g.arena)
}

// Insert places e at (x, y) with its local time set to the current epoch.
func (g *Grid) Insert(x, y int, e Entity) error {
	return g.InsertShifted(x, y, e, 0)
}

// InsertShifted places e at (x, y) with local time epoch+shift. A shift of 1
// keeps an entity created mid-tick from acting until the next tick.
//
// If the topmost occupant is scenery, e is pushed on top of it; otherwise e
// replaces the topmost occupant.
func (g *Grid) InsertShifted(x, y int, e Entity, shift uint64) error {
	if !g.CoordinatesValid(x, y) {
		return fmt.Errorf("insert at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if g.gatekeeper != nil && g.gatekeeper.HandleCreation(e) {
		return ErrVetoed
	}
	g.place(x, y, e, g.epoch+shift)
	return nil
}

// Restore places e exactly as recorded in a snapshot: pushed on the stack
// with the given handle and local time, without consulting the gatekeeper.
func (g *Grid) Restore(x, y int, e Entity, id EntityID, localTime uint64) error {
	if !g.CoordinatesValid(x, y) {
		return fmt.Errorf("restore at (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	if _, taken := g.arena[id]; taken && id != 0 {
		return fmt.Errorf("restore entity %d: handle already in use", id)
	}
	b := e.Core()
	b.id = id
	b.pos = Coord{X: x, Y: y}
	b.localTime = localTime
	b.grid = g
	g.register(e)
	g.cells[y][x] = append(g.cells[y][x], e)
	return nil
}

// place puts e on the cell stack following the scenery rule and stamps it.
func (g *Grid) place(x, y int, e Entity, localTime uint64) {
	cell := g.cells[y][x]
	if n := len(cell); n > 0 && !cell[n-1].Core().scenery {
		g.forget(cell[n-1])
		cell[n-1] = e
	} else {
		cell = append(cell, e)
	}
	g.cells[y][x] = cell

	b := e.Core()
	b.pos = Coord{X: x, Y: y}
	b.localTime = localTime
	b.grid = g
	g.register(e)
}

func (g *Grid) register(e Entity) {
	b := e.Core()
	if b.id == 0 {
		b.id = g.nextID
	}
	if b.id >= g.nextID {
		g.nextID = b.id + 1
	}
	g.arena[b.id] = e
}

func (g *Grid) forget(e Entity) {
	b := e.Core()
	delete(g.arena, b.id)
	b.grid = nil
}

// Move relocates an already placed entity to another cell. It does not
// consult the gatekeeper and keeps the entity's local time.
func (g *Grid) Move(e Entity, to Coord) error {
	b := e.Core()
	if b.grid != g {
		return ErrNotPlaced
	}
	if !g.CoordinatesValid(to.X, to.Y) {
		return fmt.Errorf("move to (%d,%d): %w", to.X, to.Y, ErrOutOfBounds)
	}
	if !g.detach(e, b.pos.X, b.pos.Y) {
		return ErrNotPlaced
	}
	g.place(to.X, to.Y, e, b.localTime)
	return nil
}

// Remove deletes e from whichever cell holds it. It is a no-op when e is not
// on the grid.
func (g *Grid) Remove(e Entity) bool {
	b := e.Core()
	if b.grid == g && g.RemoveAt(e, b.pos.X, b.pos.Y) {
		return true
	}
	for y := range g.cells {
		for x := range g.cells[y] {
			if g.RemoveAt(e, x, y) {
				return true
			}
		}
	}
	return false
}

// RemoveAt deletes e from the cell at (x, y). It is a no-op when e is not there.
func (g *Grid) RemoveAt(e Entity, x, y int) bool {
	if !g.detach(e, x, y) {
		return false
	}
	g.forget(e)
	return true
}

// detach pulls e out of the cell stack without touching the arena.
func (g *Grid) detach(e Entity, x, y int) bool {
	if !g.CoordinatesValid(x, y) {
		return false
	}
	cell := g.cells[y][x]
	for i, occupant := range cell {
		if occupant == e {
			g.cells[y][x] = append(cell[:i], cell[i+1:]...)
			return true
		}
	}
	return false
}

// AdvanceTick runs one tick: every occupant whose local time equals the
// epoch lives, in row-major order, then the epoch increments. Errors from
// Live are collected and returned after the tick completes.
func (g *Grid) AdvanceTick() error {
	if g.paused {
		return nil
	}

	tick := g.epoch
	var errs []error

	for y := 0; y < g.height; y++ {
		for x := 0; x < g.length; x++ {
			// Live may rearrange this cell; iterate over a snapshot.
			g.scratch = append(g.scratch[:0], g.cells[y][x]...)
			for _, e := range g.scratch {
				b := e.Core()
				if b.grid != g || b.localTime != tick {
					continue
				}
				if err := e.Live(tick); err != nil {
					errs = append(errs, fmt.Errorf("%s %d at (%d,%d): %w", b.kind, b.id, x, y, err))
				}
			}
		}
	}

	g.epoch++
	return errors.Join(errs...)
}

// Populate inserts up to n entities built by factory on random passable
// cells. A vetoed insertion uses up its slot. It returns the number placed.
func (g *Grid) Populate(factory func() Entity, n int) int {
	placed, vetoed := 0, 0
	for attempts := 0; placed+vetoed < n && attempts < n*maxPopulateAttempts; attempts++ {
		x := g.rng.Intn(g.length)
		y := g.rng.Intn(g.height)
		if !g.CellPassable(x, y) {
			continue
		}
		switch err := g.Insert(x, y, factory()); {
		case err == nil:
			placed++
		case errors.Is(err, ErrVetoed):
			vetoed++
		}
	}
	return placed
}
