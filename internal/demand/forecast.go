// Publisher-side demand forecasting from observed purchases.
package demand

import (
	"math"

	"github.com/talgya/task-market/internal/config"
	"github.com/talgya/task-market/internal/entropy"
)

// Observation is what the publisher saw on one day.
type Observation struct {
	Day          int `json:"day"`
	Actual       int `json:"actual"`
	PriorDefects int `json:"prior_defects"`
}

// Prediction is one forecaster log entry. Raw is the noisy estimate before
// clamping.
type Prediction struct {
	Day        int `json:"day"`
	Raw        int `json:"raw"`
	Prediction int `json:"prediction"`
}

// Forecaster predicts next-day demand from a rolling window of observations.
type Forecaster struct {
	cfg       config.ForecastConfig
	min, max  int
	perDefect int
	rng       *entropy.Source

	Observations []Observation `json:"observations"`
	Predictions  []Prediction  `json:"predictions"`
}

// NewForecaster creates a forecaster. Predictions are clamped to the demand
// bounds, and prior-day defects are added back at perDefect units each.
func NewForecaster(cfg config.ForecastConfig, bounds config.DemandConfig, rng *entropy.Source) *Forecaster {
	return &Forecaster{
		cfg:       cfg,
		min:       bounds.Min,
		max:       bounds.Max,
		perDefect: bounds.ReductionPerDefect,
		rng:       rng,
	}
}

// Observe records a day's realized purchase and the defects that
// suppressed it.
func (f *Forecaster) Observe(day, actual, priorDefects int) {
	f.Observations = append(f.Observations, Observation{
		Day:          day,
		Actual:       actual,
		PriorDefects: priorDefects,
	})
}

// Predict estimates demand for day as a weighted blend of a linear trend,
// a same-weekday mean, and a moving average over the window, plus noise
// that shrinks as history accumulates. Always within the demand bounds.
func (f *Forecaster) Predict(day int) int {
	if day <= 1 || len(f.Observations) == 0 {
		return f.clamp(f.cfg.Base)
	}

	window := f.Observations[max(0, len(f.Observations)-min(day-1, f.cfg.Window)):]
	xs := make([]float64, len(window))
	ys := make([]float64, len(window))
	for i, o := range window {
		xs[i] = float64(o.Day)
		ys[i] = f.adjusted(o)
	}

	movingAvg := mean(ys)
	trend := movingAvg
	if slope, intercept, ok := fitLine(xs, ys); ok {
		trend = slope*float64(day) + intercept
	}

	seasonal := trend
	var sameDay []float64
	for _, o := range f.Observations {
		if o.Day%f.cfg.SeasonLength == day%f.cfg.SeasonLength {
			sameDay = append(sameDay, f.adjusted(o))
		}
	}
	if len(sameDay) > 0 {
		seasonal = mean(sameDay)
	}

	combined := f.cfg.TrendWeight*trend + f.cfg.SeasonalWeight*seasonal + f.cfg.MovingAvgWeight*movingAvg

	uncertainty := math.Max(f.cfg.MinUncertainty,
		f.cfg.MaxUncertainty-float64(len(f.Observations))/f.cfg.UncertaintyDecay)
	raw := int(combined + f.rng.Gauss(0, uncertainty))
	prediction := f.clamp(raw)

	f.Predictions = append(f.Predictions, Prediction{Day: day, Raw: raw, Prediction: prediction})
	return prediction
}

// adjusted undoes defect suppression to recover underlying demand.
func (f *Forecaster) adjusted(o Observation) float64 {
	return float64(o.Actual + o.PriorDefects*f.perDefect)
}

func (f *Forecaster) clamp(v int) int {
	return max(f.min, min(f.max, v))
}

// fitLine is a degree-1 least-squares fit. ok is false with fewer than two
// points or when every x is the same.
func fitLine(xs, ys []float64) (slope, intercept float64, ok bool) {
	if len(xs) < 2 {
		return 0, 0, false
	}

	mx, my := mean(xs), mean(ys)
	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - mx
		sxx += dx * dx
		sxy += dx * (ys[i] - my)
	}
	if sxx == 0 {
		return 0, 0, false
	}

	slope = sxy / sxx
	return slope, my - slope*mx, true
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
