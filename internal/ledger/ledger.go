// Package ledger accrues the damage each company's defects cause and
// settles it into penalties on the final day of the run.
package ledger

import (
	"github.com/shopspring/decimal"
)

// DamageRecord is one day of damage attributed to a company.
type DamageRecord struct {
	CompanyID string          `json:"company_id"`
	Day       int             `json:"day"`
	Amount    decimal.Decimal `json:"amount"`
}

// Penalty is a company's settlement outcome.
type Penalty struct {
	TotalDamage   decimal.Decimal `json:"total_damage"`
	PenaltyAmount decimal.Decimal `json:"penalty_amount"`
	PenaltyRate   decimal.Decimal `json:"penalty_rate"`
	DamageDays    int             `json:"damage_days"`
}

// Ledger is the append-only damage record for one run. Totals per company
// never decrease.
type Ledger struct {
	companies []string
	finalDay  int
	rate      decimal.Decimal

	records map[string][]DamageRecord
	totals  map[string]decimal.Decimal
}

// New creates a ledger that settles on finalDay at the given penalty rate.
// companies fixes the settlement order.
func New(companies []string, finalDay int, rate decimal.Decimal) *Ledger {
	l := &Ledger{
		companies: append([]string(nil), companies...),
		finalDay:  finalDay,
		rate:      rate,
		records:   make(map[string][]DamageRecord, len(companies)),
		totals:    make(map[string]decimal.Decimal, len(companies)),
	}
	for _, id := range companies {
		l.totals[id] = decimal.Zero
	}
	return l
}

// FinalDay returns the settlement day.
func (l *Ledger) FinalDay() int {
	return l.finalDay
}

// Record appends damage for a company. Negative amounts are ignored.
func (l *Ledger) Record(companyID string, day int, amount decimal.Decimal) {
	if amount.IsNegative() {
		return
	}
	l.records[companyID] = append(l.records[companyID], DamageRecord{
		CompanyID: companyID,
		Day:       day,
		Amount:    amount,
	})
	l.totals[companyID] = l.Total(companyID).Add(amount)
}

// Total returns a company's accumulated damage.
func (l *Ledger) Total(companyID string) decimal.Decimal {
	if t, ok := l.totals[companyID]; ok {
		return t
	}
	return decimal.Zero
}

// Records returns a company's damage records in the order recorded.
func (l *Ledger) Records(companyID string) []DamageRecord {
	return l.records[companyID]
}

// Settle computes every company's penalty when day is the final day and
// returns nil on any other day.
func (l *Ledger) Settle(day int) map[string]Penalty {
	if day != l.finalDay {
		return nil
	}

	penalties := make(map[string]Penalty, len(l.companies))
	for _, id := range l.companies {
		total := l.Total(id)
		penalties[id] = Penalty{
			TotalDamage:   total,
			PenaltyAmount: total.Mul(l.rate),
			PenaltyRate:   l.rate,
			DamageDays:    len(l.records[id]),
		}
	}
	return penalties
}
