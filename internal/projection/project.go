// Package projection computes the 60-month subscription, revenue and cash
// projection for a ParameterSet.
//
// Every row is a function of the parameters, its own calendar month and the
// row before it. Project holds no state between calls and is safe for
// concurrent use.
package projection

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/theirongolddev/mrrcast/internal/model"
)

// Project validates p and computes the full projection. Invalid parameters
// are rejected before any row is computed; the error wraps
// ErrInvalidParameter.
func Project(p model.ParameterSet) (model.Projection, error) {
	if err := Validate(p); err != nil {
		return model.Projection{}, fmt.Errorf("validating parameters: %w", err)
	}

	p = p.Clone()
	p.KickOff = model.MonthStart(p.KickOff)

	rows := make([]model.MonthRow, model.ProjectionMonths)
	var prev *model.MonthRow
	for i := range rows {
		rows[i] = nextRow(p, prev, i)
		prev = &rows[i]
	}

	ltv := LifetimeValue(p.Price, p.TrialToPaidRate, p.ChurnRate)
	table := CumulativeLTV(p.Price, p.TrialToPaidRate, p.ChurnRate)

	return model.Projection{
		Params:   p,
		Rows:     rows,
		LTVTable: table,
		Summary:  Summarize(p, rows, ltv, table),
	}, nil
}

// nextRow computes row i from the previous row, which is nil for i == 0.
func nextRow(p model.ParameterSet, prev *model.MonthRow, i int) model.MonthRow {
	month := p.KickOff.AddDate(0, i, 0)
	days := model.DaysIn(month)

	row := model.MonthRow{
		Index:          i,
		Month:          month,
		DaysInMonth:    days,
		TrialCrossover: TrialCrossover(p.FreeTrialDays, days),
	}

	var prevChannels []model.ChannelMonth
	var prevRevenue []model.RevenueMonth
	if prev != nil {
		prevChannels = prev.Channels
		prevRevenue = prev.RevenueChannels
	}
	row.Channels = advanceChannels(p.Channels, prevChannels, i)
	row.RevenueChannels = advanceRevenueChannels(p.RevenueChannels, prevRevenue, i)
	row.NewSubs = lo.SumBy(row.Channels, func(ch model.ChannelMonth) float64 { return ch.NewSubs })

	advanceLifecycle(p, prev, &row)
	rollup(p, prev, &row)
	return row
}
