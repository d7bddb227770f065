package grid

// EntityID is a stable handle issued by the grid when an entity is first placed.
type EntityID uint64

// Kind enumerates every entity variant that can occupy a cell.
type Kind uint8

const (
	KindBlank          Kind = iota // Passable background, may spawn nectar
	KindBlock                      // Static obstacle
	KindCreature                   // Mobile agent
	KindBreedingGround             // Passable background that emits creatures
)

// NumKinds is the total number of entity kinds.
const NumKinds = 4

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindBlank:
		return "Blank"
	case KindBlock:
		return "Block"
	case KindCreature:
		return "Creature"
	case KindBreedingGround:
		return "Breeding ground"
	default:
		return "Unknown"
	}
}

// Entity is anything that can occupy a cell.
//
// Live is invoked once per tick while the entity's local time equals the
// grid epoch. An error returned from Live is a configuration failure; ordinary
// behavioral failures are handled inside the entity.
type Entity interface {
	Core() *Base
	Live(tick uint64) error
	Symbol() byte
}

// Base holds the state shared by all entities. Embed it by value.
type Base struct {
	id        EntityID
	kind      Kind
	pos       Coord
	localTime uint64
	age       uint64
	passable  bool
	scenery   bool
	grid      *Grid // non-owning; nil while the entity is not placed
	inventory Inventory
}

// NewBase creates the shared entity state for the given kind.
func NewBase(kind Kind, passable, scenery bool) Base {
	return Base{kind: kind, passable: passable, scenery: scenery}
}

// Core returns the shared state. Promoted to every embedding entity.
func (b *Base) Core() *Base { return b }

func (b *Base) ID() EntityID          { return b.id }
func (b *Base) Kind() Kind            { return b.kind }
func (b *Base) Position() Coord       { return b.pos }
func (b *Base) X() int                { return b.pos.X }
func (b *Base) Y() int                { return b.pos.Y }
func (b *Base) LocalTime() uint64     { return b.localTime }
func (b *Base) Age() uint64           { return b.age }
func (b *Base) Passable() bool        { return b.passable }
func (b *Base) Scenery() bool         { return b.scenery }
func (b *Base) Grid() *Grid           { return b.grid }
func (b *Base) Placed() bool          { return b.grid != nil }
func (b *Base) Inventory() *Inventory { return &b.inventory }

// SetAge overrides the age counter. Used when restoring snapshots.
func (b *Base) SetAge(age uint64) { b.age = age }

// Advance moves the entity one tick forward in its own time.
func (b *Base) Advance() {
	b.age++
	b.localTime++
}

// Contains reports whether the entity carries at least one unit of s.
func (b *Base) Contains(s Substance) bool {
	return b.inventory.Contains(s)
}

// CountSubstance returns how many units of s the entity carries.
func (b *Base) CountSubstance(s Substance) int {
	return b.inventory.Count(s)
}
