// Package terrain lays out walls, nectar deposits and breeding grounds on a
// freshly built grid.
package terrain

import (
	"errors"
	"fmt"
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/entropy"
	"github.com/talgya/gridlife/internal/grid"
)

// ErrTooSmall is returned when a layout does not fit the grid.
var ErrTooSmall = errors.New("terrain: grid too small for layout")

// Layout names a terrain builder in configuration files.
type Layout string

const (
	LayoutOpen    Layout = "open"    // Border only
	LayoutClassic Layout = "classic" // Three walls forming a pen
	LayoutNoise   Layout = "noise"   // Simplex noise walls and deposits
)

// Config holds noise generation parameters.
type Config struct {
	Layout          Layout  `yaml:"layout"`
	Seed            int64   `yaml:"seed"`             // Noise seed (0 = random)
	Frequency       float64 `yaml:"frequency"`        // Base noise frequency
	WallThreshold   float64 `yaml:"wall_threshold"`   // Normalized noise above this becomes a wall
	NectarThreshold float64 `yaml:"nectar_threshold"` // Normalized noise above this holds nectar
	NectarAmount    int     `yaml:"nectar_amount"`    // Units seeded per deposit cell
	BreedingGrounds int     `yaml:"breeding_grounds"` // Breeding grounds scattered on free cells
}

// DefaultConfig returns the stock generation parameters.
func DefaultConfig() Config {
	return Config{
		Layout:          LayoutClassic,
		Frequency:       0.12,
		WallThreshold:   0.72,
		NectarThreshold: 0.78,
		NectarAmount:    3,
		BreedingGrounds: 0,
	}
}

// Report summarizes what a builder placed.
type Report struct {
	Walls           int
	Deposits        int
	Nectar          int
	BreedingGrounds int
}

// Apply builds the configured layout on g.
func Apply(g *grid.Grid, cfg Config, breeding agents.BreedingTuning) (Report, error) {
	switch cfg.Layout {
	case LayoutOpen, "":
		return scatterBreeding(g, cfg, breeding, rand.New(rand.NewSource(seedOf(cfg))))
	case LayoutClassic:
		r, err := ClassicWalls(g)
		if err != nil {
			return r, err
		}
		b, err := scatterBreeding(g, cfg, breeding, rand.New(rand.NewSource(seedOf(cfg))))
		r.BreedingGrounds = b.BreedingGrounds
		return r, err
	case LayoutNoise:
		return Generate(g, cfg, breeding)
	default:
		return Report{}, fmt.Errorf("terrain: unknown layout %q", cfg.Layout)
	}
}

// ClassicWalls raises two vertical walls at x=20 and x=40 spanning y 10..29
// and joins them along y=10, leaving a pen open to the south.
func ClassicWalls(g *grid.Grid) (Report, error) {
	if g.Length() < 42 || g.Height() < 31 {
		return Report{}, fmt.Errorf("%w: classic walls need 42x31, have %dx%d", ErrTooSmall, g.Length(), g.Height())
	}
	var r Report
	wall := func(x, y int) error {
		if err := g.Insert(x, y, grid.NewBlock()); err != nil {
			return fmt.Errorf("wall at (%d,%d): %w", x, y, err)
		}
		r.Walls++
		return nil
	}
	for y := 10; y < 30; y++ {
		if err := wall(20, y); err != nil {
			return r, err
		}
	}
	for x := 21; x < 40; x++ {
		if err := wall(x, 10); err != nil {
			return r, err
		}
	}
	for y := 10; y < 30; y++ {
		if err := wall(40, y); err != nil {
			return r, err
		}
	}
	return r, nil
}

// Generate samples two independent noise layers over the interior of g.
// High wall noise raises blocks; high nectar noise seeds the ground of free
// cells. Breeding grounds are then scattered on free cells.
func Generate(g *grid.Grid, cfg Config, breeding agents.BreedingTuning) (Report, error) {
	seed := seedOf(cfg)
	wallNoise := opensimplex.NewNormalized(seed)
	nectarNoise := opensimplex.NewNormalized(seed + 1)

	var r Report
	for y := 1; y < g.Height()-1; y++ {
		for x := 1; x < g.Length()-1; x++ {
			fx, fy := float64(x), float64(y)
			if octaveNoise(wallNoise, fx, fy, 3, cfg.Frequency, 0.5) > cfg.WallThreshold {
				if err := g.Insert(x, y, grid.NewBlock()); err != nil {
					return r, fmt.Errorf("wall at (%d,%d): %w", x, y, err)
				}
				r.Walls++
				continue
			}
			if cfg.NectarAmount > 0 && octaveNoise(nectarNoise, fx, fy, 2, cfg.Frequency*1.5, 0.5) > cfg.NectarThreshold {
				g.Cell(x, y)[0].Core().Inventory().Pocket(grid.SubstanceNectar, cfg.NectarAmount)
				r.Deposits++
				r.Nectar += cfg.NectarAmount
			}
		}
	}

	b, err := scatterBreeding(g, cfg, breeding, rand.New(rand.NewSource(seed+2)))
	r.BreedingGrounds = b.BreedingGrounds
	return r, err
}

// scatterBreeding puts breeding grounds on random passable cells that do not
// already host one.
func scatterBreeding(g *grid.Grid, cfg Config, breeding agents.BreedingTuning, rng *rand.Rand) (Report, error) {
	var r Report
	for attempts := 0; r.BreedingGrounds < cfg.BreedingGrounds && attempts < cfg.BreedingGrounds*100; attempts++ {
		x := 1 + rng.Intn(max(g.Length()-2, 1))
		y := 1 + rng.Intn(max(g.Height()-2, 1))
		if !g.CellPassable(x, y) || hasKind(g.Cell(x, y), grid.KindBreedingGround) {
			continue
		}
		b := agents.NewBreedingGround()
		b.SetTuning(breeding)
		if err := g.Insert(x, y, b); err != nil {
			return r, fmt.Errorf("breeding ground at (%d,%d): %w", x, y, err)
		}
		r.BreedingGrounds++
	}
	return r, nil
}

func hasKind(cell []grid.Entity, kind grid.Kind) bool {
	for _, e := range cell {
		if e.Core().Kind() == kind {
			return true
		}
	}
	return false
}

func seedOf(cfg Config) int64 {
	return entropy.ResolveSeed(cfg.Seed)
}

// octaveNoise sums octaves of noise, doubling frequency each time.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
