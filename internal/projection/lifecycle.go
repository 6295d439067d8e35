package projection

import "github.com/theirongolddev/mrrcast/internal/model"

// TrialCrossover is the fraction of a month's trial cohort whose trial runs
// past the end of that month.
func TrialCrossover(freeTrialDays, daysInMonth int) float64 {
	if daysInMonth <= 0 {
		return 1
	}
	f := float64(freeTrialDays) / float64(daysInMonth)
	if f > 1 {
		return 1
	}
	if f < 0 {
		return 0
	}
	return f
}

// advanceLifecycle fills TrialToPaid and Renewals for row from its own
// acquisitions and the previous row.
//
// Trials that resolve inside their acquisition month convert this month; the
// crossover share of last month's cohort converts now as well. Every paying
// subscriber from last month renews with probability 1 - churn.
func advanceLifecycle(p model.ParameterSet, prev, row *model.MonthRow) {
	row.TrialToPaid = row.NewSubs * (1 - row.TrialCrossover) * p.TrialToPaidRate
	if prev == nil {
		row.Renewals = 0
		return
	}
	row.TrialToPaid += prev.NewSubs * prev.TrialCrossover * p.TrialToPaidRate
	row.Renewals = (prev.TrialToPaid + prev.Renewals) * (1 - p.ChurnRate)
}
