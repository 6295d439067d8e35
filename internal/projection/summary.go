package projection

import (
	"math"

	"github.com/samber/lo"

	"github.com/theirongolddev/mrrcast/internal/model"
)

// Summarize derives the scalar metrics for a computed set of rows.
func Summarize(p model.ParameterSet, rows []model.MonthRow, ltv model.Metric, table []model.LTVPeriod) model.Summary {
	s := model.Summary{
		LTV:      ltv,
		Channels: make([]model.ChannelSummary, len(p.Channels)),
		Years:    YearlyTotals(rows),
	}

	var totalSubs, totalSpend float64
	for c, ch := range p.Channels {
		cs := model.ChannelSummary{
			Name:    ch.Name,
			CPA:     ch.CPA,
			ROI:     ReturnOnAcquisition(ltv, ch.CPA),
			Payback: PaybackFor(ch.CPA, table, ltv, p.ChurnRate, p.FreeTrialDays),
		}
		for _, r := range rows {
			cs.NewSubs += r.Channels[c].NewSubs
			cs.Spend += r.Channels[c].Marketing
		}
		totalSubs += cs.NewSubs
		totalSpend += cs.Spend
		s.Channels[c] = cs
	}
	if totalSubs == 0 {
		s.BlendedCAC = model.Undefined()
	} else {
		s.BlendedCAC = model.Defined(totalSpend / totalSubs)
	}

	minCash := 0.0
	for i, r := range rows {
		if s.BreakEvenMonth == nil && r.EBT >= 0 {
			s.BreakEvenMonth = lo.ToPtr(i)
		}
		minCash = math.Min(minCash, r.CumulativeCash)
	}
	s.PeakFundingNeed = math.Max(0, -minCash)
	s.CashBreakEvenMonth = cashBreakEven(rows)

	if len(rows) > 0 {
		s.EndingSubscribers = rows[len(rows)-1].PayingSubscribers()
	}
	return s
}

// ReturnOnAcquisition is (LTV - CPA) / CPA.
func ReturnOnAcquisition(ltv model.Metric, cpa float64) model.Metric {
	if cpa == 0 {
		return model.Undefined()
	}
	if !ltv.IsDefined() {
		return ltv
	}
	return model.Defined((ltv.Value - cpa) / cpa)
}

// cashBreakEven returns the first month from which cumulative cash stays
// non-negative through the end of the projection, or nil.
func cashBreakEven(rows []model.MonthRow) *int {
	month := -1
	for i := len(rows) - 1; i >= 0; i-- {
		if rows[i].CumulativeCash < 0 {
			break
		}
		month = i
	}
	if month < 0 {
		return nil
	}
	return &month
}

// YearlyTotals groups rows into projection years.
func YearlyTotals(rows []model.MonthRow) []model.YearTotals {
	years := make([]model.YearTotals, 0, model.YearsProjected)
	for start := 0; start < len(rows); start += model.MonthsPerYear {
		end := min(start+model.MonthsPerYear, len(rows))
		chunk := rows[start:end]
		years = append(years, model.YearTotals{
			Year:        start/model.MonthsPerYear + 1,
			NewSubs:     lo.SumBy(chunk, func(r model.MonthRow) float64 { return r.NewSubs }),
			TrialToPaid: lo.SumBy(chunk, func(r model.MonthRow) float64 { return r.TrialToPaid }),
			Revenue:     lo.SumBy(chunk, func(r model.MonthRow) float64 { return r.TotalMRR }),
			Marketing:   lo.SumBy(chunk, func(r model.MonthRow) float64 { return r.Marketing }),
			EBT:         lo.SumBy(chunk, func(r model.MonthRow) float64 { return r.EBT }),
			EndingCash:  chunk[len(chunk)-1].CumulativeCash,
		})
	}
	return years
}
