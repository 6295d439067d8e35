package projection

import "github.com/theirongolddev/mrrcast/internal/model"

// advanceChannels projects every acquisition channel for row i. prev is the
// previous row's channel slice and is nil for row 0, where each channel starts
// at its initial value with no growth applied.
//
// Growth compounds monthly at the flat annual rate: every month of year n
// multiplies by (1 + growth[n]).
func advanceChannels(channels []model.Channel, prev []model.ChannelMonth, i int) []model.ChannelMonth {
	out := make([]model.ChannelMonth, len(channels))
	month := i + 1
	for c, ch := range channels {
		traffic := ch.Initial
		if prev != nil {
			traffic = prev[c].Traffic * RateFor(month, ch.Growth, Growth)
		}

		newSubs := traffic
		if ch.Kind == model.ChannelTraffic {
			newSubs = traffic * RateFor(month, ch.Conversion, Probability)
		}

		out[c] = model.ChannelMonth{
			Name:      ch.Name,
			Traffic:   traffic,
			NewSubs:   newSubs,
			Marketing: newSubs * ch.CPA,
		}
	}
	return out
}

// advanceRevenueChannels applies the same recurrence to revenue channels.
func advanceRevenueChannels(channels []model.RevenueChannel, prev []model.RevenueMonth, i int) []model.RevenueMonth {
	if len(channels) == 0 {
		return nil
	}
	out := make([]model.RevenueMonth, len(channels))
	month := i + 1
	for c, rc := range channels {
		volume := rc.Initial
		if prev != nil {
			volume = prev[c].Volume * RateFor(month, rc.Growth, Growth)
		}
		out[c] = model.RevenueMonth{
			Name:    rc.Name,
			Volume:  volume,
			Revenue: volume * RateFor(month, rc.Yield, Probability) * rc.PayoutPerUnit,
		}
	}
	return out
}
