// Package config holds the run parameters: horizon, capital, demand and
// forecast tuning, damage constants, and the company profile table.
// Defaults reproduce the reference market; a TOML file overlays them.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the complete parameter set for one simulation run.
type Config struct {
	Simulation SimulationConfig `toml:"simulation"`
	Demand     DemandConfig     `toml:"demand"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Damage     DamageConfig     `toml:"damage"`
	Companies  []CompanyProfile `toml:"companies"`
}

// SimulationConfig controls the day loop and the publisher's capital.
type SimulationConfig struct {
	Days           int   `toml:"days"`
	InitialCapital int   `toml:"initial_capital"` // Per-day allowance, no carryover
	Seed           int64 `toml:"seed"`            // 0 = random
	TotalCapacity  int   `toml:"total_capacity"`  // Split across companies each day
}

// DemandConfig shapes the latent consumer demand signal.
type DemandConfig struct {
	Base               float64 `toml:"base"`
	Trend              float64 `toml:"trend"` // Units per day
	SeasonalAmplitude  float64 `toml:"seasonal_amplitude"`
	SeasonalPeriod     float64 `toml:"seasonal_period"`
	NoiseStd           float64 `toml:"noise_std"`
	Min                int     `toml:"min"`
	Max                int     `toml:"max"`
	ReductionPerDefect int     `toml:"reduction_per_defect"` // Purchases suppressed per prior-day defect
	DriftAmplitude     float64 `toml:"drift_amplitude"`      // 0 disables simplex drift
	DriftFrequency     float64 `toml:"drift_frequency"`
}

// ForecastConfig tunes the publisher's demand predictor.
type ForecastConfig struct {
	Base             int     `toml:"base"`
	Window           int     `toml:"window"`
	TrendWeight      float64 `toml:"trend_weight"`
	SeasonalWeight   float64 `toml:"seasonal_weight"`
	MovingAvgWeight  float64 `toml:"moving_avg_weight"`
	MaxUncertainty   float64 `toml:"max_uncertainty"`
	MinUncertainty   float64 `toml:"min_uncertainty"`
	UncertaintyDecay float64 `toml:"uncertainty_decay"` // Observations per unit of shrink
	SeasonLength     int     `toml:"season_length"`
}

// DamageConfig prices defects and settles them.
type DamageConfig struct {
	LostSalesPerDefect int     `toml:"lost_sales_per_defect"`
	AvgProfitPerTask   int     `toml:"avg_profit_per_task"`
	PenaltyRate        float64 `toml:"penalty_rate"`
}

// CompanyProfile is the static description of one producing company.
// The last company in the table receives whatever capacity is left after
// the others roll; its CapacityMin is the floor reserved for it.
type CompanyProfile struct {
	ID            string  `toml:"id"`
	Name          string  `toml:"name"`
	Quality       string  `toml:"quality"`
	DefectRate    float64 `toml:"defect_rate"` // Informational only
	Price         int     `toml:"price"`
	Profit        int     `toml:"profit"`
	DefectTrigger int     `toml:"defect_trigger"` // Units produced per guaranteed defect
	CapacityMin   int     `toml:"capacity_min"`
	CapacityMax   int     `toml:"capacity_max"`
	Tag           string  `toml:"tag"`
}

// DefaultConfig returns the reference three-company market.
func DefaultConfig() *Config {
	return &Config{
		Simulation: SimulationConfig{
			Days:           30,
			InitialCapital: 800,
			Seed:           42,
			TotalCapacity:  120,
		},
		Demand: DemandConfig{
			Base:               95,
			Trend:              0.1,
			SeasonalAmplitude:  3,
			SeasonalPeriod:     7,
			NoiseStd:           2,
			Min:                90,
			Max:                110,
			ReductionPerDefect: 10,
			DriftAmplitude:     0,
			DriftFrequency:     0.15,
		},
		Forecast: ForecastConfig{
			Base:             95,
			Window:           7,
			TrendWeight:      0.3,
			SeasonalWeight:   0.5,
			MovingAvgWeight:  0.2,
			MaxUncertainty:   10,
			MinUncertainty:   3,
			UncertaintyDecay: 3,
			SeasonLength:     7,
		},
		Damage: DamageConfig{
			LostSalesPerDefect: 10,
			AvgProfitPerTask:   4,
			PenaltyRate:        0.9,
		},
		Companies: DefaultCompanies(),
	}
}

// DefaultCompanies returns the high/medium/low quality supplier table.
func DefaultCompanies() []CompanyProfile {
	return []CompanyProfile{
		{
			ID: "A", Name: "Apex Works", Quality: "high", DefectRate: 0.01,
			Price: 10, Profit: 5, DefectTrigger: 100,
			CapacityMin: 30, CapacityMax: 50, Tag: "blue",
		},
		{
			ID: "B", Name: "Balanced Solutions", Quality: "medium", DefectRate: 0.02,
			Price: 8, Profit: 4, DefectTrigger: 50,
			CapacityMin: 30, CapacityMax: 50, Tag: "green",
		},
		{
			ID: "C", Name: "Costwise", Quality: "low", DefectRate: 0.10,
			Price: 5, Profit: 3, DefectTrigger: 10,
			CapacityMin: 10, CapacityMax: 0, Tag: "yellow",
		},
	}
}

// Load reads a TOML file over the defaults and validates the result.
// A [[companies]] table in the file replaces the default company list.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(file.Companies) > 0 {
		cfg.Companies = nil
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// CompanyIDs returns company ids in table order.
func (c *Config) CompanyIDs() []string {
	ids := make([]string, len(c.Companies))
	for i, p := range c.Companies {
		ids[i] = p.ID
	}
	return ids
}

// Validate rejects configurations that cannot drive a run.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.Days < 1 {
		return invalid("simulation.days must be >= 1, got %d", s.Days)
	}
	if s.InitialCapital < 0 {
		return invalid("simulation.initial_capital must be >= 0, got %d", s.InitialCapital)
	}
	if s.TotalCapacity < 0 {
		return invalid("simulation.total_capacity must be >= 0, got %d", s.TotalCapacity)
	}

	d := c.Demand
	if d.Min > d.Max {
		return invalid("demand.min %d exceeds demand.max %d", d.Min, d.Max)
	}
	if d.SeasonalPeriod <= 0 {
		return invalid("demand.seasonal_period must be > 0")
	}
	if d.NoiseStd < 0 || d.DriftAmplitude < 0 {
		return invalid("demand noise and drift must be >= 0")
	}
	if d.ReductionPerDefect < 0 {
		return invalid("demand.reduction_per_defect must be >= 0")
	}

	f := c.Forecast
	if f.Window < 1 {
		return invalid("forecast.window must be >= 1, got %d", f.Window)
	}
	if f.SeasonLength < 1 {
		return invalid("forecast.season_length must be >= 1, got %d", f.SeasonLength)
	}
	if sum := f.TrendWeight + f.SeasonalWeight + f.MovingAvgWeight; math.Abs(sum-1) > 1e-9 {
		return invalid("forecast weights must sum to 1, got %.4f", sum)
	}
	if f.MinUncertainty < 0 || f.MaxUncertainty < f.MinUncertainty {
		return invalid("forecast uncertainty bounds inverted")
	}
	if f.UncertaintyDecay <= 0 {
		return invalid("forecast.uncertainty_decay must be > 0")
	}

	if c.Damage.PenaltyRate < 0 || c.Damage.LostSalesPerDefect < 0 || c.Damage.AvgProfitPerTask < 0 {
		return invalid("damage parameters must be >= 0")
	}

	return c.validateCompanies()
}

func (c *Config) validateCompanies() error {
	if len(c.Companies) == 0 {
		return invalid("at least one company is required")
	}

	seen := make(map[string]bool, len(c.Companies))
	minTotal := 0
	last := len(c.Companies) - 1
	for i, p := range c.Companies {
		if p.ID == "" {
			return invalid("company %d has empty id", i)
		}
		if seen[p.ID] {
			return invalid("duplicate company id %q", p.ID)
		}
		seen[p.ID] = true

		if p.Price <= 0 {
			return invalid("company %s: price must be > 0, got %d", p.ID, p.Price)
		}
		if p.Profit < 0 {
			return invalid("company %s: profit must be >= 0, got %d", p.ID, p.Profit)
		}
		if p.DefectTrigger <= 0 {
			return invalid("company %s: defect_trigger must be > 0, got %d", p.ID, p.DefectTrigger)
		}
		if p.CapacityMin < 0 {
			return invalid("company %s: capacity_min must be >= 0", p.ID)
		}
		if i != last && p.CapacityMax < p.CapacityMin {
			return invalid("company %s: capacity range [%d,%d] inverted", p.ID, p.CapacityMin, p.CapacityMax)
		}
		minTotal += p.CapacityMin
	}

	if minTotal > c.Simulation.TotalCapacity {
		return invalid("capacity minima sum to %d, exceeding total capacity %d",
			minTotal, c.Simulation.TotalCapacity)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}
