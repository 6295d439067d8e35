package projection

import (
	"math"

	"github.com/theirongolddev/mrrcast/internal/model"
)

const (
	// LTVCoverage is the share of lifetime value the cumulative table covers.
	LTVCoverage = 0.999
	// MaxLTVPeriods caps the cumulative table for very low churn.
	MaxLTVPeriods = 600
	// AvgDaysPerMonth converts trial days into a month fraction.
	AvgDaysPerMonth = 365.0 / 12
)

// LifetimeValue returns price x trial-to-paid / churn, the closed form of the
// geometric renewal series. Zero churn, or churn so small the quotient
// overflows, makes the series unbounded.
func LifetimeValue(price, trialToPaid, churn float64) model.Metric {
	first := price * trialToPaid
	if first == 0 {
		return model.Defined(0)
	}
	ltv := first / churn
	if churn == 0 || math.IsInf(ltv, 0) {
		return model.Infinite()
	}
	return model.Defined(ltv)
}

// CumulativeLTV builds the per-period contribution table. Each period keeps
// (1 - churn) of the previous contribution; the table stops once the running
// total reaches LTVCoverage of the lifetime value. With zero churn the series
// never converges and the table covers the projection horizon instead.
func CumulativeLTV(price, trialToPaid, churn float64) []model.LTVPeriod {
	contribution := price * trialToPaid
	ltv := LifetimeValue(price, trialToPaid, churn)

	limit := MaxLTVPeriods
	if !ltv.IsDefined() {
		limit = model.ProjectionMonths
	}

	table := make([]model.LTVPeriod, 0, 16)
	cumulative := 0.0
	for k := 0; k < limit; k++ {
		cumulative += contribution
		table = append(table, model.LTVPeriod{
			Index:        k,
			Contribution: contribution,
			Cumulative:   cumulative,
		})
		if ltv.IsDefined() && cumulative >= LTVCoverage*ltv.Value {
			break
		}
		contribution *= 1 - churn
	}
	return table
}

// PaybackFor finds when cumulative contributions recover cost.
//
// A cost above the lifetime value, or equal to it while churn is positive,
// is never recovered. A cost covered by the first period is immediate.
// Otherwise the smallest period whose cumulative total reaches the cost is
// reported, offset by the free-trial share of a month. Costs past the end of
// the table are resolved with the closed-form geometric inverse.
func PaybackFor(cost float64, table []model.LTVPeriod, ltv model.Metric, churn float64, freeTrialDays int) model.Payback {
	trialOffset := float64(freeTrialDays) / AvgDaysPerMonth

	if len(table) == 0 || table[0].Contribution <= 0 {
		if cost <= 0 {
			return model.Payback{Outcome: model.PaybackImmediate, Months: trialOffset}
		}
		return model.Payback{Outcome: model.PaybackNever}
	}

	first := table[0].Contribution
	if cost <= first {
		return model.Payback{Outcome: model.PaybackImmediate, Months: trialOffset}
	}
	if ltv.IsDefined() && cost >= ltv.Value {
		return model.Payback{Outcome: model.PaybackNever}
	}

	for _, period := range table {
		if period.Cumulative >= cost {
			return monthsPayback(period.Index, trialOffset)
		}
	}

	// With infinite LTV, or churn too small for the log quotient to be
	// finite, contributions are effectively constant.
	periods := cost / first
	if ltv.IsDefined() {
		// first * (1 - q^(k+1)) / churn >= cost
		if n := math.Log1p(-cost/ltv.Value) / math.Log1p(-churn); !math.IsNaN(n) && !math.IsInf(n, 0) {
			periods = n
		}
	}
	k := clampPeriod(math.Ceil(periods)) - 1
	if k < len(table) {
		k = len(table)
	}
	return monthsPayback(k, trialOffset)
}

// clampPeriod converts a period count to int, saturating at MaxInt32.
func clampPeriod(n float64) int {
	if n >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(n)
}

func monthsPayback(period int, trialOffset float64) model.Payback {
	return model.Payback{
		Outcome: model.PaybackMonths,
		Period:  period,
		Months:  float64(period) + trialOffset,
	}
}
