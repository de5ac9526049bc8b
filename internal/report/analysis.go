// Package report turns a finished run into summary figures, log lines and
// a workbook.
package report

import (
	"log/slog"
	"math"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"github.com/talgya/task-market/internal/engine"
)

// CompanyPerformance is one company's line in the analysis.
type CompanyPerformance struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Tag           string          `json:"tag"`
	Production    int             `json:"production"`
	Income        int             `json:"income"`
	Defects       int             `json:"defects"`
	DefectPercent float64         `json:"defect_percent"`
	Damage        decimal.Decimal `json:"damage"`
	Penalty       decimal.Decimal `json:"penalty"`
}

// Analysis summarizes a run.
type Analysis struct {
	Days              int                  `json:"days"`
	MeanAbsError      float64              `json:"mean_abs_error"`
	TotalDefects      int                  `json:"total_defects"`
	TotalPurchased    int                  `json:"total_purchased"`
	TotalProfit       int                  `json:"total_profit"`
	TotalPossible     int                  `json:"total_possible"`
	EfficiencyPercent float64              `json:"efficiency_percent"`
	UnmetDemandDays   int                  `json:"unmet_demand_days"`
	Companies         []CompanyPerformance `json:"companies"`
	TotalPenalties    decimal.Decimal      `json:"total_penalties"`
}

// Analyze computes forecast accuracy, defect totals, per-company
// performance and system efficiency. Efficiency compares realized profit to
// true demand valued at avgProfitPerTask.
func Analyze(run *engine.RunResult, avgProfitPerTask int) Analysis {
	a := Analysis{
		Days:           len(run.Days),
		TotalPenalties: decimal.Zero,
	}

	absErr := 0.0
	trueDemand := 0
	for _, d := range run.Days {
		absErr += math.Abs(float64(d.PredictedDemand - d.TrueDemand))
		trueDemand += d.TrueDemand
		a.TotalDefects += d.DefectsToday
		a.TotalPurchased += d.ActualPurchase
		a.TotalProfit += d.ActualProfit
		if d.UnmetDemand > 0 {
			a.UnmetDemandDays++
		}
	}
	if a.Days > 0 {
		a.MeanAbsError = absErr / float64(a.Days)
	}

	a.TotalPossible = trueDemand * avgProfitPerTask
	if a.TotalPossible > 0 {
		a.EfficiencyPercent = float64(a.TotalProfit) / float64(a.TotalPossible) * 100
	}

	for _, c := range run.Companies {
		perf := CompanyPerformance{
			ID:            c.ID,
			Name:          c.Name,
			Tag:           c.Tag,
			Production:    c.TotalProduction,
			Income:        c.TotalIncome,
			Defects:       c.TotalDefects,
			DefectPercent: c.DefectPercent,
			Damage:        c.TotalDamage,
			Penalty:       decimal.Zero,
		}
		if p, ok := run.Penalties[c.ID]; ok {
			perf.Penalty = p.PenaltyAmount
			a.TotalPenalties = a.TotalPenalties.Add(p.PenaltyAmount)
		}
		a.Companies = append(a.Companies, perf)
	}

	return a
}

// Log writes the analysis through the default logger.
func Log(a Analysis) {
	slog.Info("forecast performance",
		"days", a.Days,
		"mean_abs_error", humanize.FtoaWithDigits(a.MeanAbsError, 1),
	)
	slog.Info("defects", "total", a.TotalDefects, "unmet_demand_days", a.UnmetDemandDays)

	for _, c := range a.Companies {
		slog.Info("company performance",
			"company", c.ID,
			"name", c.Name,
			"tag", c.Tag,
			"production", humanize.Comma(int64(c.Production)),
			"income", humanize.Comma(int64(c.Income)),
			"defects", c.Defects,
			"defect_pct", humanize.FtoaWithDigits(c.DefectPercent, 1),
			"damage", c.Damage.StringFixed(1),
			"penalty", c.Penalty.StringFixed(1),
		)
	}

	slog.Info("system efficiency",
		"purchased", humanize.Comma(int64(a.TotalPurchased)),
		"profit", humanize.Comma(int64(a.TotalProfit)),
		"possible", humanize.Comma(int64(a.TotalPossible)),
		"efficiency_pct", humanize.FtoaWithDigits(a.EfficiencyPercent, 1),
		"penalties", a.TotalPenalties.StringFixed(1),
	)
}
