// Package config loads simulation settings from YAML. Every field has a
// default, so a file only needs the values it changes.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/grid"
	"github.com/talgya/gridlife/internal/planner"
	"github.com/talgya/gridlife/internal/policy"
	"github.com/talgya/gridlife/internal/terrain"
)

// AdminKeyEnv names the environment variable holding the admin API key.
const AdminKeyEnv = "GRIDLIFE_ADMIN_KEY"

type Config struct {
	World       World          `yaml:"world"`
	Terrain     terrain.Config `yaml:"terrain"`
	Scenery     Scenery        `yaml:"scenery"`
	Creature    Creature       `yaml:"creature"`
	Breeding    Breeding       `yaml:"breeding"`
	Learning    Learning       `yaml:"learning"`
	Engine      Engine         `yaml:"engine"`
	Persistence Persistence    `yaml:"persistence"`
	EventLog    EventLog       `yaml:"eventlog"`
	API         API            `yaml:"api"`
}

type World struct {
	Length     int   `yaml:"length"`
	Height     int   `yaml:"height"`
	Seed       int64 `yaml:"seed"`       // 0 = random
	Population int   `yaml:"population"` // Creatures placed at start
}

type Scenery struct {
	SpawnChance    float64 `yaml:"spawn_chance"`
	SpawnSubstance string  `yaml:"spawn_substance"`
}

type Creature struct {
	Mortality       float64 `yaml:"mortality"`
	MinDeathAge     uint64  `yaml:"min_death_age"`
	DeathGrace      uint64  `yaml:"death_grace"`
	PregnancyTicks  int     `yaml:"pregnancy_ticks"`
	CooldownTicks   int     `yaml:"cooldown_ticks"`
	AcceptanceBias  float64 `yaml:"acceptance_bias"`
	MatingSubstance string  `yaml:"mating_substance"`
	MaxChain        int     `yaml:"max_chain"`
	LogSize         int     `yaml:"log_size"`
}

type Breeding struct {
	Chance float64 `yaml:"chance"`
}

type Learning struct {
	BatchSize      int                   `yaml:"batch_size"`
	MemoryScope    string                `yaml:"memory_scope"`
	ModelScope     string                `yaml:"model_scope"`
	MemoryCapacity int                   `yaml:"memory_capacity"`
	MaxPopulation  int                   `yaml:"max_population"`
	Substance      string                `yaml:"substance"`
	Logistic       policy.LogisticConfig `yaml:"logistic"`
}

type Engine struct {
	IntervalMs    int     `yaml:"interval_ms"`
	Speed         float64 `yaml:"speed"`
	ReportEvery   uint64  `yaml:"report_every"`
	SnapshotEvery uint64  `yaml:"snapshot_every"` // 0 disables periodic snapshots
}

type Persistence struct {
	Path string `yaml:"path"` // Empty disables the database
}

type EventLog struct {
	Dir    string `yaml:"dir"` // Empty disables the journal
	Prefix string `yaml:"prefix"`
}

type API struct {
	Addr          string `yaml:"addr"` // Empty disables the HTTP server
	AdminRate     int    `yaml:"admin_rate"`
	AdminWindowS  int    `yaml:"admin_window_s"`
	EventsDefault int    `yaml:"events_default"`
	AdminKey      string `yaml:"-"`
}

// Default returns the 60x40 classic demo: twenty creatures, three walls,
// shared learning.
func Default() Config {
	ct := agents.DefaultTuning()
	st := grid.DefaultTuning()
	pc := planner.DefaultConfig()
	return Config{
		World:   World{Length: 60, Height: 40, Population: 20},
		Terrain: terrain.DefaultConfig(),
		Scenery: Scenery{
			SpawnChance:    st.SpawnChance,
			SpawnSubstance: st.SpawnSubstance.String(),
		},
		Creature: Creature{
			Mortality:       ct.Mortality,
			MinDeathAge:     ct.MinDeathAge,
			DeathGrace:      ct.DeathGrace,
			PregnancyTicks:  ct.PregnancyTicks,
			CooldownTicks:   ct.CooldownTicks,
			AcceptanceBias:  ct.AcceptanceBias,
			MatingSubstance: ct.MatingSubstance.String(),
			MaxChain:        ct.MaxChain,
			LogSize:         ct.LogSize,
		},
		Breeding: Breeding{Chance: agents.DefaultBreedingTuning().Chance},
		Learning: Learning{
			BatchSize:      pc.BatchSize,
			MemoryScope:    pc.MemoryScope.String(),
			ModelScope:     pc.ModelScope.String(),
			MemoryCapacity: pc.MemoryCapacity,
			Substance:      pc.Substance.String(),
			Logistic:       pc.Logistic,
		},
		Engine: Engine{
			IntervalMs:  100,
			Speed:       1,
			ReportEvery: 100,
		},
		EventLog: EventLog{Prefix: "events"},
		API: API{
			AdminRate:     10,
			AdminWindowS:  60,
			EventsDefault: 50,
		},
	}
}

// Load reads path on top of Default, applies the environment and validates
// the result.
func Load(path string) (Config, error) {
	cfg := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv fills secrets from the environment.
func (c *Config) ApplyEnv() {
	if key := os.Getenv(AdminKeyEnv); key != "" {
		c.API.AdminKey = key
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if c.World.Length < 3 || c.World.Height < 3 {
		bad("world: %dx%d leaves no interior", c.World.Length, c.World.Height)
	}
	if c.World.Population < 0 {
		bad("world: negative population %d", c.World.Population)
	}
	switch c.Terrain.Layout {
	case terrain.LayoutOpen, terrain.LayoutClassic, terrain.LayoutNoise, "":
	default:
		bad("terrain: unknown layout %q", c.Terrain.Layout)
	}
	if c.Terrain.BreedingGrounds < 0 {
		bad("terrain: negative breeding_grounds %d", c.Terrain.BreedingGrounds)
	}
	if !probability(c.Scenery.SpawnChance) {
		bad("scenery: spawn_chance %v outside [0,1]", c.Scenery.SpawnChance)
	}
	if _, ok := grid.ParseSubstance(c.Scenery.SpawnSubstance); !ok {
		bad("scenery: unknown substance %q", c.Scenery.SpawnSubstance)
	}
	if !probability(c.Creature.Mortality) {
		bad("creature: mortality %v outside [0,1]", c.Creature.Mortality)
	}
	if c.Creature.PregnancyTicks < 1 || c.Creature.CooldownTicks < 1 {
		bad("creature: pregnancy_ticks and cooldown_ticks must be positive")
	}
	if c.Creature.AcceptanceBias < 0 {
		bad("creature: negative acceptance_bias %v", c.Creature.AcceptanceBias)
	}
	if _, ok := grid.ParseSubstance(c.Creature.MatingSubstance); !ok {
		bad("creature: unknown substance %q", c.Creature.MatingSubstance)
	}
	if c.Creature.MaxChain < 1 {
		bad("creature: max_chain must be positive")
	}
	if !probability(c.Breeding.Chance) {
		bad("breeding: chance %v outside [0,1]", c.Breeding.Chance)
	}
	if c.Learning.BatchSize < 1 {
		bad("learning: batch_size must be positive")
	}
	if _, ok := agents.ParseScope(c.Learning.MemoryScope); !ok {
		bad("learning: unknown memory_scope %q", c.Learning.MemoryScope)
	}
	if _, ok := agents.ParseScope(c.Learning.ModelScope); !ok {
		bad("learning: unknown model_scope %q", c.Learning.ModelScope)
	}
	if _, ok := grid.ParseSubstance(c.Learning.Substance); !ok {
		bad("learning: unknown substance %q", c.Learning.Substance)
	}
	if c.Learning.MaxPopulation < 0 {
		bad("learning: negative max_population %d", c.Learning.MaxPopulation)
	}
	if c.Engine.IntervalMs < 1 {
		bad("engine: interval_ms must be positive")
	}
	if c.API.Addr != "" && c.API.AdminRate < 1 {
		bad("api: admin_rate must be positive")
	}
	return errors.Join(errs...)
}

func probability(p float64) bool { return p >= 0 && p <= 1 }

// GridTuning converts the scenery section.
func (c Config) GridTuning() grid.Tuning {
	s, _ := grid.ParseSubstance(c.Scenery.SpawnSubstance)
	return grid.Tuning{SpawnChance: c.Scenery.SpawnChance, SpawnSubstance: s}
}

// CreatureTuning converts the creature section.
func (c Config) CreatureTuning() agents.Tuning {
	s, _ := grid.ParseSubstance(c.Creature.MatingSubstance)
	return agents.Tuning{
		Mortality:       c.Creature.Mortality,
		MinDeathAge:     c.Creature.MinDeathAge,
		DeathGrace:      c.Creature.DeathGrace,
		PregnancyTicks:  c.Creature.PregnancyTicks,
		CooldownTicks:   c.Creature.CooldownTicks,
		AcceptanceBias:  c.Creature.AcceptanceBias,
		MatingSubstance: s,
		MaxChain:        c.Creature.MaxChain,
		LogSize:         c.Creature.LogSize,
	}
}

// BreedingTuning converts the breeding section.
func (c Config) BreedingTuning() agents.BreedingTuning {
	return agents.BreedingTuning{Chance: c.Breeding.Chance, Creature: c.CreatureTuning()}
}

// PlannerConfig converts the learning section.
func (c Config) PlannerConfig() planner.Config {
	memScope, _ := agents.ParseScope(c.Learning.MemoryScope)
	modelScope, _ := agents.ParseScope(c.Learning.ModelScope)
	s, _ := grid.ParseSubstance(c.Learning.Substance)
	t := c.CreatureTuning()
	return planner.Config{
		BatchSize:      c.Learning.BatchSize,
		Substance:      s,
		MaxPopulation:  c.Learning.MaxPopulation,
		MemoryScope:    memScope,
		ModelScope:     modelScope,
		MemoryCapacity: c.Learning.MemoryCapacity,
		Logistic:       c.Learning.Logistic,
		CreatureTuning: &t,
	}
}
