package model

import "time"

// ChannelMonth is one acquisition channel's figures for one month.
type ChannelMonth struct {
	Name      string  `json:"name"`
	Traffic   float64 `json:"traffic"` // subscriptions for subscription channels
	NewSubs   float64 `json:"new_subs"`
	Marketing float64 `json:"marketing"`
}

// RevenueMonth is one revenue channel's figures for one month.
type RevenueMonth struct {
	Name    string  `json:"name"`
	Volume  float64 `json:"volume"`
	Revenue float64 `json:"revenue"`
}

// MonthRow holds every projected line for one calendar month.
type MonthRow struct {
	Index          int       `json:"index"`
	Month          time.Time `json:"month"`
	DaysInMonth    int       `json:"days_in_month"`
	TrialCrossover float64   `json:"trial_crossover"`

	Channels        []ChannelMonth `json:"channels"`
	RevenueChannels []RevenueMonth `json:"revenue_channels,omitempty"`
	NewSubs         float64        `json:"new_subs"`

	TrialToPaid float64 `json:"trial_to_paid"`
	Renewals    float64 `json:"renewals"`

	NewMRR       float64 `json:"new_mrr"`
	RenewalMRR   float64 `json:"renewal_mrr"`
	OtherRevenue float64 `json:"other_revenue"`
	TotalMRR     float64 `json:"total_mrr"`

	Chargebacks  float64 `json:"chargebacks"`
	Refunds      float64 `json:"refunds"`
	Income       float64 `json:"income"`
	COGS         float64 `json:"cogs"`
	GrossIncome  float64 `json:"gross_income"`
	Marketing    float64 `json:"marketing"`
	Labor        float64 `json:"labor"`
	TechSoftware float64 `json:"tech_software"`
	EBT          float64 `json:"ebt"`

	CumulativeCash float64 `json:"cumulative_cash"`
	WeightedCAC    Metric  `json:"weighted_cac"`
}

// PayingSubscribers is the number of subscribers billed in the month.
func (r MonthRow) PayingSubscribers() float64 {
	return r.TrialToPaid + r.Renewals
}

// LTVPeriod is one row of the cumulative lifetime-value table.
type LTVPeriod struct {
	Index        int     `json:"index"`
	Contribution float64 `json:"contribution"`
	Cumulative   float64 `json:"cumulative"`
}

// ChannelSummary holds the lifetime metrics for one acquisition channel.
type ChannelSummary struct {
	Name    string  `json:"name"`
	CPA     float64 `json:"cpa"`
	NewSubs float64 `json:"new_subs"`
	Spend   float64 `json:"spend"`
	ROI     Metric  `json:"roi"`
	Payback Payback `json:"payback"`
}

// YearTotals aggregates twelve consecutive rows.
type YearTotals struct {
	Year        int     `json:"year"`
	NewSubs     float64 `json:"new_subs"`
	TrialToPaid float64 `json:"trial_to_paid"`
	Revenue     float64 `json:"revenue"`
	Marketing   float64 `json:"marketing"`
	EBT         float64 `json:"ebt"`
	EndingCash  float64 `json:"ending_cash"`
}

// Summary holds the scalar metrics derived from a projection.
type Summary struct {
	LTV                Metric           `json:"ltv"`
	BlendedCAC         Metric           `json:"blended_cac"`
	Channels           []ChannelSummary `json:"channels"`
	BreakEvenMonth     *int             `json:"break_even_month"`
	CashBreakEvenMonth *int             `json:"cash_break_even_month"`
	PeakFundingNeed    float64          `json:"peak_funding_need"`
	EndingSubscribers  float64          `json:"ending_subscribers"`
	Years              []YearTotals     `json:"years"`
}

// Projection is the complete output for one ParameterSet.
type Projection struct {
	Params   ParameterSet `json:"params"`
	Rows     []MonthRow   `json:"rows"`
	LTVTable []LTVPeriod  `json:"ltv_table"`
	Summary  Summary      `json:"summary"`
}
