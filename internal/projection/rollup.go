package projection

import (
	"math"

	"github.com/samber/lo"

	"github.com/theirongolddev/mrrcast/internal/model"
)

// rollup turns the row's counts into revenue, cost and cash lines.
func rollup(p model.ParameterSet, prev, row *model.MonthRow) {
	c := p.Costs

	row.NewMRR = row.TrialToPaid * p.Price
	row.RenewalMRR = row.Renewals * p.Price
	row.OtherRevenue = lo.SumBy(row.RevenueChannels, func(r model.RevenueMonth) float64 {
		return r.Revenue
	})
	row.TotalMRR = row.NewMRR + row.RenewalMRR + row.OtherRevenue

	row.Chargebacks = row.TotalMRR * c.ChargebackRate
	row.Refunds = row.TotalMRR * c.RefundRate
	row.Income = row.TotalMRR - row.Refunds - row.Chargebacks
	row.COGS = row.TotalMRR*c.CardProcessingRate + c.Hosting
	row.GrossIncome = row.Income - row.COGS

	row.Marketing = lo.SumBy(row.Channels, func(ch model.ChannelMonth) float64 {
		return ch.Marketing
	})
	row.Labor = c.Labor
	row.TechSoftware = c.TechSoftware
	row.EBT = row.GrossIncome - row.Labor - row.Marketing - row.TechSoftware

	row.CumulativeCash = row.EBT
	if prev != nil {
		row.CumulativeCash += prev.CumulativeCash
	}

	row.WeightedCAC = weightedCAC(row.Channels)
}

// weightedCAC is marketing spend per acquired subscription across channels.
func weightedCAC(channels []model.ChannelMonth) model.Metric {
	subs := lo.SumBy(channels, func(ch model.ChannelMonth) float64 { return ch.NewSubs })
	if subs == 0 {
		return model.Undefined()
	}
	spend := lo.SumBy(channels, func(ch model.ChannelMonth) float64 { return ch.Marketing })
	cac := spend / subs
	if math.IsNaN(cac) || math.IsInf(cac, 0) {
		return model.Undefined()
	}
	return model.Defined(cac)
}
