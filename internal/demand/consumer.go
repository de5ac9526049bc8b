// Package demand models the end consumer's latent demand and the
// publisher's forecast of it.
package demand

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/task-market/internal/config"
	"github.com/talgya/task-market/internal/entropy"
)

// DemandPoint is one generated true-demand value.
type DemandPoint struct {
	Day    int `json:"day"`
	Demand int `json:"demand"`
}

// Purchase is a realized day of consumer buying.
type Purchase struct {
	Day        int `json:"day"`
	Actual     int `json:"actual"`
	TrueDemand int `json:"true_demand"`
	Reduction  int `json:"reduction"` // Suppressed by prior-day defects
}

// Consumer generates true demand and realizes purchases against it.
type Consumer struct {
	cfg   config.DemandConfig
	rng   *entropy.Source
	drift opensimplex.Noise

	DemandHistory   []DemandPoint `json:"demand_history"`
	PurchaseHistory []Purchase    `json:"purchase_history"`
}

// NewConsumer creates the demand process. The drift field is only sampled
// when cfg.DriftAmplitude > 0.
func NewConsumer(cfg config.DemandConfig, rng *entropy.Source, driftSeed int64) *Consumer {
	return &Consumer{
		cfg:   cfg,
		rng:   rng,
		drift: opensimplex.New(driftSeed),
	}
}

// GenerateTrueDemand draws the day's latent demand: base plus linear trend,
// a weekly sine, optional simplex drift and Gaussian noise, clamped to the
// configured bounds and truncated to an integer.
func (c *Consumer) GenerateTrueDemand(day int) int {
	d := float64(day)
	trend := c.cfg.Trend * d
	season := c.cfg.SeasonalAmplitude * math.Sin(2*math.Pi*d/c.cfg.SeasonalPeriod)
	noise := c.rng.Gauss(0, c.cfg.NoiseStd)

	raw := c.cfg.Base + trend + season + c.driftAt(day) + noise
	raw = math.Max(float64(c.cfg.Min), math.Min(float64(c.cfg.Max), raw))
	demand := int(raw)

	c.DemandHistory = append(c.DemandHistory, DemandPoint{Day: day, Demand: demand})
	return demand
}

func (c *Consumer) driftAt(day int) float64 {
	if c.cfg.DriftAmplitude == 0 {
		return 0
	}
	return c.cfg.DriftAmplitude * c.drift.Eval2(float64(day)*c.cfg.DriftFrequency, 0)
}

// ActualPurchase draws the day's true demand and buys from the goods on
// offer. Each defect from the previous day suppresses ReductionPerDefect
// purchases today.
func (c *Consumer) ActualPurchase(day, availableGoods, priorDefects int) Purchase {
	trueDemand := c.GenerateTrueDemand(day)
	actual, reduction := Realize(trueDemand, availableGoods, priorDefects, c.cfg.ReductionPerDefect)

	p := Purchase{
		Day:        day,
		Actual:     actual,
		TrueDemand: trueDemand,
		Reduction:  reduction,
	}
	c.PurchaseHistory = append(c.PurchaseHistory, p)
	return p
}

// Realize applies defect suppression and the supply limit to a demand
// value. actual is non-decreasing in availableGoods and non-increasing in
// priorDefects.
func Realize(trueDemand, availableGoods, priorDefects, perDefect int) (actual, reduction int) {
	reduction = priorDefects * perDefect
	desired := max(0, trueDemand-reduction)
	actual = max(0, min(desired, availableGoods))
	return actual, reduction
}
