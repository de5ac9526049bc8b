package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Simulation.Days != 30 || cfg.Simulation.InitialCapital != 800 || cfg.Simulation.TotalCapacity != 120 {
		t.Errorf("unexpected simulation defaults: %+v", cfg.Simulation)
	}

	ids := cfg.CompanyIDs()
	if len(ids) != 3 || ids[0] != "A" || ids[1] != "B" || ids[2] != "C" {
		t.Errorf("unexpected company ids %v", ids)
	}
}

func TestValidate_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no companies", func(c *Config) { c.Companies = nil }},
		{"zero days", func(c *Config) { c.Simulation.Days = 0 }},
		{"negative capital", func(c *Config) { c.Simulation.InitialCapital = -1 }},
		{"empty id", func(c *Config) { c.Companies[0].ID = "" }},
		{"duplicate id", func(c *Config) { c.Companies[1].ID = "A" }},
		{"zero price", func(c *Config) { c.Companies[2].Price = 0 }},
		{"negative profit", func(c *Config) { c.Companies[0].Profit = -1 }},
		{"zero trigger", func(c *Config) { c.Companies[1].DefectTrigger = 0 }},
		{"inverted capacity", func(c *Config) { c.Companies[0].CapacityMax = 10 }},
		{"minima over total", func(c *Config) { c.Simulation.TotalCapacity = 50 }},
		{"weights", func(c *Config) { c.Forecast.TrendWeight = 0.5 }},
		{"demand bounds", func(c *Config) { c.Demand.Min = 120 }},
		{"window", func(c *Config) { c.Forecast.Window = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.toml")
	data := `
[simulation]
days = 5
seed = 7
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Simulation.Days != 5 || cfg.Simulation.Seed != 7 {
		t.Errorf("overrides not applied: %+v", cfg.Simulation)
	}
	if cfg.Simulation.InitialCapital != 800 {
		t.Errorf("default capital lost: %d", cfg.Simulation.InitialCapital)
	}
	if len(cfg.Companies) != 3 {
		t.Errorf("default companies lost: %d", len(cfg.Companies))
	}
}

func TestLoad_ReplacesCompanies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "two.toml")
	data := `
[simulation]
total_capacity = 60

[[companies]]
id = "X"
price = 4
profit = 2
defect_trigger = 20
capacity_min = 20
capacity_max = 40

[[companies]]
id = "Y"
price = 3
profit = 1
defect_trigger = 5
capacity_min = 5
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	ids := cfg.CompanyIDs()
	if len(ids) != 2 || ids[0] != "X" || ids[1] != "Y" {
		t.Errorf("companies not replaced: %v", ids)
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[simulation]\ndays = 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected error for missing file")
	}
}
