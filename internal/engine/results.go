package engine

import (
	"maps"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talgya/task-market/internal/company"
	"github.com/talgya/task-market/internal/demand"
	"github.com/talgya/task-market/internal/ledger"
)

// CompanyDay is one company's line in a day's result.
type CompanyDay struct {
	Capacity int `json:"capacity"`
	Assigned int `json:"assigned"`
	Produced int `json:"produced"`
	Good     int `json:"good"`
	Defects  int `json:"defects"`
	Damage   int `json:"damage"`
}

// DayResult is the immutable snapshot of one simulated day.
type DayResult struct {
	Day             int            `json:"day"`
	PredictedDemand int            `json:"predicted_demand"`
	TrueDemand      int            `json:"true_demand"`
	Capacities      map[string]int `json:"capacities"`

	BudgetStart     int            `json:"budget_start"`
	TasksPublished  int            `json:"tasks_published"`
	UnmetDemand     int            `json:"unmet_demand"`
	Allocation      map[string]int `json:"allocation"`
	AllocationCost  int            `json:"allocation_cost"`
	BudgetRemaining int            `json:"budget_remaining"`

	Production        map[string]CompanyDay `json:"production"`
	TotalGoodProducts int                   `json:"total_good_products"`
	DefectsToday      int                   `json:"defects_today"` // Take effect tomorrow

	PurchaseReduction int `json:"purchase_reduction"`
	ActualPurchase    int `json:"actual_purchase"`
	ActualProfit      int `json:"actual_profit"`
	ActualCost        int `json:"actual_cost"`
	ExpectedProfit    int `json:"expected_profit"`

	// Set on the final day only.
	Penalties map[string]ledger.Penalty `json:"penalties,omitempty"`
}

// clone returns a copy whose maps are not shared with d.
func (d DayResult) clone() DayResult {
	d.Capacities = maps.Clone(d.Capacities)
	d.Allocation = maps.Clone(d.Allocation)
	d.Production = maps.Clone(d.Production)
	d.Penalties = maps.Clone(d.Penalties)
	return d
}

// CompanySummary is a company's lifetime record at the end of a run.
type CompanySummary struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Quality         string                 `json:"quality"`
	Tag             string                 `json:"tag"`
	TotalProduction int                    `json:"total_production"`
	TotalDefects    int                    `json:"total_defects"`
	DefectPercent   float64                `json:"defect_percent"`
	TotalIncome     int                    `json:"total_income"`
	TotalDamage     decimal.Decimal        `json:"total_damage"`
	DefectCounter   int                    `json:"defect_counter"`
	DefectHistory   []company.DefectRecord `json:"defect_history"`
}

// RunResult is everything a finished run hands to its consumers.
type RunResult struct {
	RunID          uuid.UUID                 `json:"run_id"`
	Seed           int64                     `json:"seed"`
	InitialCapital int                       `json:"initial_capital"`
	Days           []DayResult               `json:"days"`
	Penalties      map[string]ledger.Penalty `json:"penalties"`
	Companies      []CompanySummary          `json:"companies"`
	Strategies     []Strategy                `json:"strategies"`
	Predictions    []demand.Prediction       `json:"predictions"`
}

// Result snapshots the run so far. Nothing in it is shared with the
// simulation.
func (s *Simulation) Result() *RunResult {
	companies := make([]CompanySummary, len(s.Companies))
	for i, u := range s.Companies {
		st := u.State
		companies[i] = CompanySummary{
			ID:              st.ID(),
			Name:            st.Profile.Name,
			Quality:         st.Profile.Quality,
			Tag:             st.Profile.Tag,
			TotalProduction: st.TotalProduction,
			TotalDefects:    st.TotalDefects,
			DefectPercent:   st.DefectPercent(),
			TotalIncome:     st.TotalIncome,
			TotalDamage:     s.Ledger.Total(st.ID()),
			DefectCounter:   st.DefectCounter,
			DefectHistory:   append([]company.DefectRecord(nil), st.DefectHistory...),
		}
	}

	days := make([]DayResult, len(s.Results))
	for i, d := range s.Results {
		days[i] = d.clone()
	}
	strategies := make([]Strategy, len(s.Publisher.StrategyHistory))
	for i, st := range s.Publisher.StrategyHistory {
		st.Allocation = maps.Clone(st.Allocation)
		strategies[i] = st
	}

	return &RunResult{
		RunID:          s.RunID,
		Seed:           s.Seed,
		InitialCapital: s.Config.Simulation.InitialCapital,
		Days:           days,
		Penalties:      maps.Clone(s.Penalties),
		Companies:      companies,
		Strategies:     strategies,
		Predictions:    append([]demand.Prediction(nil), s.Forecaster.Predictions...),
	}
}
