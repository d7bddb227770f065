package grid

// Blank is passable ground. Once in a while it grows a unit of substance.
type Blank struct {
	Base
}

// NewBlank creates an empty patch of ground.
func NewBlank() *Blank {
	return &Blank{Base: NewBase(KindBlank, true, true)}
}

// Live spawns substance with the grid's configured chance.
func (b *Blank) Live(tick uint64) error {
	b.Advance()

	g := b.Grid()
	if g == nil {
		return nil
	}
	t := g.Tuning()
	if t.SpawnChance > 0 && g.Rand().Float64() <= t.SpawnChance {
		b.inventory.Pocket(t.SpawnSubstance, 1)
	}
	return nil
}

// Symbol renders ground as '.'.
func (b *Blank) Symbol() byte { return '.' }

// Block is an impassable obstacle. It never acts beyond keeping time.
type Block struct {
	Base
}

// NewBlock creates an obstacle.
func NewBlock() *Block {
	return &Block{Base: NewBase(KindBlock, false, true)}
}

// Live only advances the block's clock.
func (b *Block) Live(tick uint64) error {
	b.Advance()
	return nil
}

// Symbol renders obstacles as '#'.
func (b *Block) Symbol() byte { return '#' }
