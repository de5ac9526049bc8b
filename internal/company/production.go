// Capacity-bound daily production.
package company

// Unit is a company's production line for the current day. The day fields
// are overwritten every day; lifetime totals live on State.
type Unit struct {
	State *State
	Loss  LossConfig

	DailyCapacity    int `json:"daily_capacity"`
	AssignedTasks    int `json:"assigned_tasks"`
	ActualProduction int `json:"actual_production"`
	DefectsProduced  int `json:"defects_produced"`
}

// NewUnit wraps a company state with its daily production fields.
func NewUnit(state *State, loss LossConfig) *Unit {
	return &Unit{State: state, Loss: loss}
}

// SetCapacity starts a new day with the given capacity and clears the
// previous day's production.
func (u *Unit) SetCapacity(capacity int) {
	u.DailyCapacity = capacity
	u.AssignedTasks = 0
	u.ActualProduction = 0
	u.DefectsProduced = 0
}

// Produce runs assigned tasks through the line. Tasks beyond the day's
// capacity are dropped. Returns good units and defects.
func (u *Unit) Produce(assigned int) (good, defects int) {
	if assigned < 0 {
		assigned = 0
	}
	u.AssignedTasks = min(assigned, u.DailyCapacity)
	u.ActualProduction = u.AssignedTasks
	u.DefectsProduced = u.State.GenerateDefects(u.ActualProduction)

	u.State.TotalProduction += u.ActualProduction
	u.State.TotalIncome += u.ActualProduction * u.State.Profile.Price

	return u.ActualProduction - u.DefectsProduced, u.DefectsProduced
}

// DailyLoss prices a day's defects as lost downstream sales. The per-task
// profit is the market-wide average, not this company's own margin.
func (u *Unit) DailyLoss(defects int) int {
	if defects == 0 {
		return 0
	}
	return defects * u.Loss.LostSalesPerDefect * u.Loss.AvgProfitPerTask
}
