package grid

// Substance enumerates the collectable materials entities can carry.
type Substance uint8

const (
	SubstanceNectar Substance = iota // Mating currency, spawned by blank ground
	SubstanceOre                     // Inert deposit, placed by terrain generation
)

// NumSubstances is the total number of substance types.
const NumSubstances = 2

// String returns a human-readable substance name.
func (s Substance) String() string {
	switch s {
	case SubstanceNectar:
		return "nectar"
	case SubstanceOre:
		return "ore"
	default:
		return "unknown"
	}
}

// ParseSubstance converts a substance name into a Substance.
func ParseSubstance(name string) (Substance, bool) {
	for s := Substance(0); s < NumSubstances; s++ {
		if s.String() == name {
			return s, true
		}
	}
	return 0, false
}

// Valid reports whether s is a known substance.
func (s Substance) Valid() bool {
	return int(s) < NumSubstances
}

// Inventory is a fixed-size array of unit counts per substance type.
type Inventory [NumSubstances]int

// Contains reports whether at least one unit of s is held.
func (inv *Inventory) Contains(s Substance) bool {
	return s.Valid() && inv[s] > 0
}

// Count returns the number of units of s held.
func (inv *Inventory) Count(s Substance) int {
	if !s.Valid() {
		return 0
	}
	return inv[s]
}

// Pocket adds n units of s.
func (inv *Inventory) Pocket(s Substance, n int) {
	if !s.Valid() || n <= 0 {
		return
	}
	inv[s] += n
}

// Extract removes one unit of s. It returns false when none is held.
func (inv *Inventory) Extract(s Substance) bool {
	if !inv.Contains(s) {
		return false
	}
	inv[s]--
	return true
}

// IsEmpty returns true if all quantities are zero.
func (inv *Inventory) IsEmpty() bool {
	for _, qty := range inv {
		if qty != 0 {
			return false
		}
	}
	return true
}

// Total returns the number of units across all substances.
func (inv *Inventory) Total() int {
	total := 0
	for _, qty := range inv {
		total += qty
	}
	return total
}
