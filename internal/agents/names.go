package agents

import (
	"math/rand"

	"github.com/talgya/gridlife/internal/entropy"
	"github.com/talgya/gridlife/internal/grid"
)

// RandomCreature creates a creature of random sex with a generated name,
// drawing from rng.
func RandomCreature(rng *rand.Rand, tuning Tuning) *Creature {
	sex := SexMale
	if rng.Float32() < 0.5 {
		sex = SexFemale
	}
	c := NewCreature(sex)
	c.SetTuning(tuning)
	c.Name = generateName(rng, sex)
	return c
}

func randomSex(g *grid.Grid) Sex {
	if g.Rand().Float32() < 0.5 {
		return SexFemale
	}
	return SexMale
}

func generateName(rng *rand.Rand, sex Sex) string {
	firsts := maleNames
	if sex == SexFemale {
		firsts = femaleNames
	}
	first, _ := entropy.Choice(rng, firsts)
	last, _ := entropy.Choice(rng, lastNames)
	return first + " " + last
}

// Name pools for procedural generation.
var maleNames = []string{
	"Aldric", "Bram", "Cedric", "Doran", "Erik", "Finn", "Gareth",
	"Halvard", "Ivan", "Jasper", "Kael", "Leif", "Magnus", "Nils",
	"Oswin", "Per", "Quinn", "Rowan", "Stellan", "Theron", "Ulric",
}

var femaleNames = []string{
	"Astrid", "Brenna", "Calla", "Daria", "Elara", "Freya", "Greta",
	"Helene", "Iris", "Juno", "Kira", "Lena", "Mira", "Nessa",
	"Olwen", "Petra", "Runa", "Senna", "Thea", "Una", "Vera",
}

var lastNames = []string{
	"Fieldmouse", "Burrows", "Thistle", "Moss", "Nettle", "Bramble",
	"Hollow", "Clover", "Sedge", "Rushwick", "Fernby", "Marsh",
	"Pebble", "Acorn", "Hazel", "Willow", "Sorrel", "Tansy",
}
