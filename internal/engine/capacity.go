// Daily capacity roll.
package engine

import (
	"github.com/talgya/task-market/internal/config"
	"github.com/talgya/task-market/internal/entropy"
)

// RollCapacities splits total capacity across companies. Each company but
// the last draws uniformly from its range, capped so that the minima of the
// companies after it still fit; the last takes the remainder. The result
// always sums to total.
func RollCapacities(rng *entropy.Source, total int, profiles []config.CompanyProfile) map[string]int {
	caps := make(map[string]int, len(profiles))
	if len(profiles) == 0 {
		return caps
	}

	// reserve[i] is the capacity that must stay available for companies after i.
	reserve := make([]int, len(profiles))
	for i := len(profiles) - 2; i >= 0; i-- {
		reserve[i] = reserve[i+1] + profiles[i+1].CapacityMin
	}

	remaining := total
	last := len(profiles) - 1
	for i, p := range profiles[:last] {
		hi := min(p.CapacityMax, remaining-reserve[i])
		c := rng.IntRange(p.CapacityMin, hi)
		caps[p.ID] = c
		remaining -= c
	}
	caps[profiles[last].ID] = remaining

	return caps
}
