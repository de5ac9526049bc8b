// Package company models the producing suppliers: their lifetime counters,
// the counter-triggered defect process, and daily capacity-bound production.
package company

import (
	"github.com/talgya/task-market/internal/config"
)

// DefectRecord is one production call's defect outcome.
type DefectRecord struct {
	Seq        int `json:"seq"` // 1-based count of production calls
	Production int `json:"production"`
	Defects    int `json:"defects"`
}

// State is the per-run mutable record of one company. One instance per
// company, owned by the simulation that created it.
type State struct {
	Profile config.CompanyProfile `json:"profile"`

	// Units produced since the last triggered defect. Always in [0, trigger).
	DefectCounter int `json:"defect_counter"`

	// Lifetime aggregates.
	TotalProduction int `json:"total_production"`
	TotalDefects    int `json:"total_defects"`
	TotalIncome     int `json:"total_income"` // Booked on production, not on sale

	DefectHistory []DefectRecord `json:"defect_history"`
}

// NewState creates a fresh state for a profile.
func NewState(p config.CompanyProfile) *State {
	return &State{Profile: p}
}

// ID returns the company id.
func (s *State) ID() string {
	return s.Profile.ID
}

// DefectPercent returns lifetime defects as a percentage of production.
func (s *State) DefectPercent() float64 {
	if s.TotalProduction == 0 {
		return 0
	}
	return float64(s.TotalDefects) / float64(s.TotalProduction) * 100
}

// LossConfig prices a day's defects as lost downstream sales.
type LossConfig struct {
	LostSalesPerDefect int
	AvgProfitPerTask   int
}
