// Simulation ties the market components together and runs them each day.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/talgya/task-market/internal/allocation"
	"github.com/talgya/task-market/internal/company"
	"github.com/talgya/task-market/internal/config"
	"github.com/talgya/task-market/internal/demand"
	"github.com/talgya/task-market/internal/entropy"
	"github.com/talgya/task-market/internal/ledger"
)

// Simulation holds the complete state of one run. Nothing in it is shared
// with other runs.
type Simulation struct {
	Config *config.Config
	RunID  uuid.UUID
	Seed   int64

	Clock      *Clock
	Publisher  *Publisher
	Companies  []*company.Unit
	Consumer   *demand.Consumer
	Forecaster *demand.Forecaster
	Ledger     *ledger.Ledger

	// Defects produced on the previous day; they suppress today's purchases.
	YesterdayDefects int

	Results   []DayResult
	Penalties map[string]ledger.Penalty

	capacityRNG *entropy.Source
	err         error
}

// NewSimulation validates cfg and builds a fresh run. Seed 0 draws a random
// seed, recorded on the simulation.
func NewSimulation(cfg *config.Config) (*Simulation, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: nil config", config.ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = entropy.RandomSeed()
	}
	root := entropy.New(seed)

	loss := company.LossConfig{
		LostSalesPerDefect: cfg.Damage.LostSalesPerDefect,
		AvgProfitPerTask:   cfg.Damage.AvgProfitPerTask,
	}
	units := make([]*company.Unit, len(cfg.Companies))
	for i, p := range cfg.Companies {
		units[i] = company.NewUnit(company.NewState(p), loss)
	}

	sim := &Simulation{
		Config:      cfg,
		RunID:       uuid.New(),
		Seed:        seed,
		Clock:       NewClock(cfg.Simulation.Days),
		Publisher:   NewPublisher(cfg.Simulation.InitialCapital),
		Companies:   units,
		Consumer:    demand.NewConsumer(cfg.Demand, root.Fork(entropy.StreamDemand), seed+entropy.StreamDrift),
		Forecaster:  demand.NewForecaster(cfg.Forecast, cfg.Demand, root.Fork(entropy.StreamForecast)),
		Ledger:      ledger.New(cfg.CompanyIDs(), cfg.Simulation.Days, decimal.NewFromFloat(cfg.Damage.PenaltyRate)),
		capacityRNG: root.Fork(entropy.StreamCapacity),
	}

	sim.Clock.OnDay = sim.tickDay
	sim.Clock.OnWeek = sim.tickWeek
	sim.Clock.OnFinal = sim.tickFinal

	slog.Info("simulation created",
		"run_id", sim.RunID,
		"seed", seed,
		"days", cfg.Simulation.Days,
		"companies", len(units),
		"settles_on", sim.Ledger.FinalDay(),
	)
	return sim, nil
}

// RunDay advances one day and returns its result.
func (s *Simulation) RunDay() (DayResult, error) {
	if s.err != nil {
		return DayResult{}, s.err
	}
	if s.Clock.Done() {
		return DayResult{}, errors.New("simulation horizon reached")
	}

	s.Clock.Step()
	if s.err != nil {
		return DayResult{}, s.err
	}
	return s.Results[len(s.Results)-1].clone(), nil
}

// Run steps every remaining day and returns the full run.
func (s *Simulation) Run() (*RunResult, error) {
	for !s.Clock.Done() {
		if _, err := s.RunDay(); err != nil {
			return nil, err
		}
	}
	return s.Result(), nil
}

func (s *Simulation) tickDay(day int) {
	if s.err != nil {
		return
	}
	res, err := s.runDay(day)
	if err != nil {
		s.err = fmt.Errorf("day %d: %w", day, err)
		return
	}
	s.Results = append(s.Results, res)
}

// runDay is the fixed daily pipeline. Each step consumes the previous
// step's output.
func (s *Simulation) runDay(day int) (DayResult, error) {
	predicted := s.Forecaster.Predict(day)

	s.Publisher.ResetDaily()
	budget := s.Publisher.Capital
	caps := RollCapacities(s.capacityRNG, s.Config.Simulation.TotalCapacity, s.Config.Companies)

	suppliers := make([]allocation.Supplier, len(s.Companies))
	for i, u := range s.Companies {
		p := u.State.Profile
		u.SetCapacity(caps[p.ID])
		suppliers[i] = allocation.Supplier{ID: p.ID, Capacity: caps[p.ID], Price: p.Price, Profit: p.Profit}
	}

	plan, err := s.Publisher.Publish(day, predicted, suppliers)
	if err != nil {
		return DayResult{}, fmt.Errorf("allocate: %w", err)
	}

	production := make(map[string]CompanyDay, len(s.Companies))
	totalGood, totalDefects := 0, 0
	for _, u := range s.Companies {
		id := u.State.ID()
		cd := CompanyDay{Capacity: u.DailyCapacity, Assigned: plan.Plan[id]}
		if cd.Assigned > 0 {
			good, defects := u.Produce(cd.Assigned)
			cd.Produced = u.ActualProduction
			cd.Good = good
			cd.Defects = defects
			totalGood += good
			totalDefects += defects

			if defects > 0 {
				cd.Damage = u.DailyLoss(defects)
				s.Ledger.Record(id, day, decimal.NewFromInt(int64(cd.Damage)))
			}
			slog.Debug("production",
				"day", day,
				"company", id,
				"assigned", cd.Assigned,
				"good", good,
				"defects", defects,
			)
		}
		production[id] = cd
	}

	purchase := s.Consumer.ActualPurchase(day, totalGood, s.YesterdayDefects)
	actualProfit, actualCost := s.attributeSales(plan.Plan, purchase.Actual)

	s.Forecaster.Observe(day, purchase.Actual, s.YesterdayDefects)
	s.YesterdayDefects = totalDefects

	res := DayResult{
		Day:               day,
		PredictedDemand:   predicted,
		TrueDemand:        purchase.TrueDemand,
		Capacities:        maps.Clone(caps),
		BudgetStart:       budget,
		TasksPublished:    plan.Tasks,
		UnmetDemand:       predicted - plan.Tasks,
		Allocation:        maps.Clone(plan.Plan),
		AllocationCost:    plan.Cost,
		BudgetRemaining:   s.Publisher.Capital,
		Production:        production,
		TotalGoodProducts: totalGood,
		DefectsToday:      totalDefects,
		PurchaseReduction: purchase.Reduction,
		ActualPurchase:    purchase.Actual,
		ActualProfit:      actualProfit,
		ActualCost:        actualCost,
		ExpectedProfit:    plan.Profit,
	}

	if penalties := s.Ledger.Settle(day); penalties != nil {
		s.Penalties = penalties
		res.Penalties = maps.Clone(penalties)
	}

	slog.Info("daily report",
		"day", day,
		"predicted", predicted,
		"true_demand", purchase.TrueDemand,
		"published", plan.Tasks,
		"cost", plan.Cost,
		"good", totalGood,
		"defects", totalDefects,
		"reduction", purchase.Reduction,
		"purchased", purchase.Actual,
		"profit", actualProfit,
	)
	return res, nil
}

// attributeSales books the day's purchases against companies in table
// order, each selling up to what it was allocated.
func (s *Simulation) attributeSales(plan map[string]int, purchased int) (profit, cost int) {
	remaining := purchased
	for _, u := range s.Companies {
		p := u.State.Profile
		sold := min(plan[p.ID], remaining)
		remaining -= sold
		profit += sold * p.Profit
		cost += sold * p.Price
	}
	return profit, cost
}

func (s *Simulation) tickWeek(day int) {
	start := max(0, len(s.Results)-DaysPerWeek)
	purchased, profit, defects := 0, 0, 0
	for _, r := range s.Results[start:] {
		purchased += r.ActualPurchase
		profit += r.ActualProfit
		defects += r.DefectsToday
	}
	slog.Info("weekly summary",
		"day", day,
		"purchased", purchased,
		"profit", profit,
		"defects", defects,
	)
}

func (s *Simulation) tickFinal(day int) {
	for _, id := range s.Config.CompanyIDs() {
		p := s.Penalties[id]
		if p.TotalDamage.IsZero() {
			continue
		}
		slog.Info("settlement",
			"day", day,
			"company", id,
			"total_damage", p.TotalDamage.StringFixed(1),
			"penalty", p.PenaltyAmount.StringFixed(1),
			"rate", p.PenaltyRate.String(),
		)
	}
}
