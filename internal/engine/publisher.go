// The task publisher: daily capital and the allocation it publishes.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"

	"github.com/talgya/task-market/internal/allocation"
)

// ErrOverspend is returned when a debit exceeds the remaining capital.
var ErrOverspend = errors.New("spend exceeds remaining capital")

// Strategy is the publisher's record of one day's published plan.
type Strategy struct {
	Day            int            `json:"day"`
	Allocation     map[string]int `json:"allocation"`
	TasksNeeded    int            `json:"tasks_needed"`
	TotalTasks     int            `json:"total_tasks"`
	TotalCost      int            `json:"total_cost"`
	ExpectedProfit int            `json:"expected_profit"`
	UnmetDemand    int            `json:"unmet_demand"`
}

// Publisher buys tasks from companies with a fixed daily allowance.
// Unspent capital does not carry over to the next day.
type Publisher struct {
	DailyCapital int `json:"daily_capital"`
	Capital      int `json:"capital"` // Remaining today

	StrategyHistory []Strategy `json:"strategy_history"`
}

// NewPublisher creates a publisher with a full day's capital.
func NewPublisher(dailyCapital int) *Publisher {
	return &Publisher{DailyCapital: dailyCapital, Capital: dailyCapital}
}

// ResetDaily restores the full allowance.
func (p *Publisher) ResetDaily() {
	p.Capital = p.DailyCapital
}

// Spend debits capital. A debit larger than what remains is rejected and
// leaves capital unchanged.
func (p *Publisher) Spend(amount int) error {
	if amount < 0 || amount > p.Capital {
		return fmt.Errorf("%w: spend %d, capital %d", ErrOverspend, amount, p.Capital)
	}
	p.Capital -= amount
	return nil
}

// Publish solves the day's allocation against the remaining capital, debits
// its cost and records the strategy.
func (p *Publisher) Publish(day, tasksNeeded int, suppliers []allocation.Supplier) (allocation.Result, error) {
	budget := p.Capital
	res, err := allocation.Solve(allocation.Request{
		TasksNeeded: tasksNeeded,
		Budget:      budget,
		Suppliers:   suppliers,
	})
	if err != nil {
		return allocation.Result{}, err
	}

	if err := p.Spend(res.Cost); err != nil {
		return allocation.Result{}, fmt.Errorf("day %d: %w", day, err)
	}

	unmet := tasksNeeded - res.Tasks
	if unmet > 0 {
		slog.Warn("capital short of demand", "day", day, "unmet", unmet, "capital", budget)
	}

	p.StrategyHistory = append(p.StrategyHistory, Strategy{
		Day:            day,
		Allocation:     maps.Clone(res.Plan),
		TasksNeeded:    tasksNeeded,
		TotalTasks:     res.Tasks,
		TotalCost:      res.Cost,
		ExpectedProfit: res.Profit,
		UnmetDemand:    unmet,
	})

	return res, nil
}
