package projection

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/theirongolddev/mrrcast/internal/model"
)

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-6*math.Max(1, math.Abs(want)) {
		t.Fatalf("%s = %.6f, want %.6f", name, got, want)
	}
}

// semOnly is a single SEM channel with 100,000 visits, 4% conversion and no
// growth, priced at $40 with 25% trial-to-paid and 5% churn.
func semOnly() model.ParameterSet {
	return model.ParameterSet{
		KickOff:         time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC),
		Price:           40,
		TrialToPaidRate: 0.25,
		ChurnRate:       0.05,
		Channels: []model.Channel{{
			Name:       "SEM",
			Kind:       model.ChannelTraffic,
			Initial:    100_000,
			Conversion: model.FlatSchedule(0.04),
			CPA:        26,
		}},
	}
}

func mustProject(t *testing.T, p model.ParameterSet) model.Projection {
	t.Helper()
	proj, err := Project(p)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	return proj
}

func TestProjectProducesSixtyIncreasingMonths(t *testing.T) {
	proj := mustProject(t, semOnly())
	if len(proj.Rows) != model.ProjectionMonths {
		t.Fatalf("rows = %d, want %d", len(proj.Rows), model.ProjectionMonths)
	}
	for i := 1; i < len(proj.Rows); i++ {
		if !proj.Rows[i].Month.After(proj.Rows[i-1].Month) {
			t.Fatalf("row %d month %s not after %s", i, proj.Rows[i].Month, proj.Rows[i-1].Month)
		}
		if proj.Rows[i].Index != i {
			t.Fatalf("row %d has Index %d", i, proj.Rows[i].Index)
		}
	}
	last := proj.Rows[len(proj.Rows)-1].Month
	if want := time.Date(2029, time.December, 1, 0, 0, 0, 0, time.UTC); !last.Equal(want) {
		t.Fatalf("last month = %s, want %s", last, want)
	}
}

func TestProjectNormalizesKickOffToMonthStart(t *testing.T) {
	p := semOnly()
	p.KickOff = time.Date(2025, time.March, 17, 15, 4, 0, 0, time.UTC)
	proj := mustProject(t, p)
	if want := time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC); !proj.Rows[0].Month.Equal(want) {
		t.Fatalf("first month = %s, want %s", proj.Rows[0].Month, want)
	}
	if proj.Rows[0].DaysInMonth != 31 || proj.Rows[1].DaysInMonth != 30 {
		t.Fatalf("days = %d,%d, want 31,30", proj.Rows[0].DaysInMonth, proj.Rows[1].DaysInMonth)
	}
}

func TestRenewalsStartAtZeroAndStayNonNegative(t *testing.T) {
	p := semOnly()
	p.FreeTrialDays = 21
	p.Channels[0].Growth = model.Schedule{0.1, 0.05, 0, 0, 0}
	proj := mustProject(t, p)

	if proj.Rows[0].Renewals != 0 {
		t.Fatalf("renewal[0] = %f, want 0", proj.Rows[0].Renewals)
	}
	for i, r := range proj.Rows {
		if r.TrialToPaid < 0 || r.Renewals < 0 {
			t.Fatalf("row %d: trial_to_paid=%f renewals=%f", i, r.TrialToPaid, r.Renewals)
		}
	}
}

func TestFullChurnLeavesNoRenewals(t *testing.T) {
	p := semOnly()
	p.ChurnRate = 1
	proj := mustProject(t, p)
	for i, r := range proj.Rows[1:] {
		if r.Renewals != 0 {
			t.Fatalf("row %d renewals = %f, want 0", i+1, r.Renewals)
		}
	}
}

func TestRenewalRecurrence(t *testing.T) {
	proj := mustProject(t, semOnly())
	for i := 1; i < len(proj.Rows); i++ {
		prev, cur := proj.Rows[i-1], proj.Rows[i]
		approx(t, "renewals", cur.Renewals, (prev.TrialToPaid+prev.Renewals)*0.95)
	}
}

func TestZeroGrowthKeepsTrafficConstant(t *testing.T) {
	proj := mustProject(t, semOnly())
	for i, r := range proj.Rows {
		if r.Channels[0].Traffic != 100_000 {
			t.Fatalf("row %d traffic = %f, want 100000", i, r.Channels[0].Traffic)
		}
	}
}

func TestSEMNewSubscriptions(t *testing.T) {
	proj := mustProject(t, semOnly())
	approx(t, "month 0 new subs", proj.Rows[0].Channels[0].NewSubs, 4000)
	approx(t, "month 1 new subs", proj.Rows[1].Channels[0].NewSubs, 4000)
	approx(t, "month 0 total new subs", proj.Rows[0].NewSubs, 4000)
}

func TestGrowthUsesYearBuckets(t *testing.T) {
	p := semOnly()
	p.Channels[0].Growth = model.Schedule{0.1, 0, 0.2, 0, 0}
	p.Channels[0].Conversion = model.Schedule{0.04, 0.05, 0.04, 0.04, 0.04}
	proj := mustProject(t, p)

	approx(t, "row 1 traffic", proj.Rows[1].Channels[0].Traffic, 110_000)
	year1End := 100_000 * math.Pow(1.1, 11)
	approx(t, "row 11 traffic", proj.Rows[11].Channels[0].Traffic, year1End)
	// Month 13 is the first month of year 2, which has no growth.
	approx(t, "row 12 traffic", proj.Rows[12].Channels[0].Traffic, year1End)
	approx(t, "row 12 new subs", proj.Rows[12].Channels[0].NewSubs, year1End*0.05)
	approx(t, "row 24 traffic", proj.Rows[24].Channels[0].Traffic, year1End*1.2)
}

func TestSubscriptionChannelGrowsDirectly(t *testing.T) {
	p := semOnly()
	p.Channels = append(p.Channels, model.Channel{
		Name:    "Affiliate",
		Kind:    model.ChannelSubscriptions,
		Initial: 500,
		Growth:  model.FlatSchedule(0.02),
		CPA:     30,
	})
	proj := mustProject(t, p)

	aff := proj.Rows[2].Channels[1]
	approx(t, "affiliate subs", aff.NewSubs, 500*1.02*1.02)
	approx(t, "affiliate marketing", aff.Marketing, aff.NewSubs*30)
	approx(t, "total new subs", proj.Rows[2].NewSubs, 4000+aff.NewSubs)
}

func TestNoTrialHasNoCrossover(t *testing.T) {
	proj := mustProject(t, semOnly())
	for i, r := range proj.Rows {
		if r.TrialCrossover != 0 {
			t.Fatalf("row %d crossover = %f, want 0", i, r.TrialCrossover)
		}
		approx(t, "trial_to_paid", r.TrialToPaid, r.NewSubs*0.25)
	}
}

func TestTrialCrossoverShiftsConversions(t *testing.T) {
	p := semOnly()
	p.FreeTrialDays = 14
	proj := mustProject(t, p)

	jan, feb := proj.Rows[0], proj.Rows[1]
	approx(t, "jan crossover", jan.TrialCrossover, 14.0/31)
	approx(t, "feb crossover", feb.TrialCrossover, 0.5)
	approx(t, "jan trial_to_paid", jan.TrialToPaid, 4000*(1-14.0/31)*0.25)
	approx(t, "feb trial_to_paid", feb.TrialToPaid, 4000*0.5*0.25+4000*(14.0/31)*0.25)
}

func TestTrialCrossoverClamps(t *testing.T) {
	if got := TrialCrossover(28, 28); got != 1 {
		t.Fatalf("TrialCrossover(28, 28) = %f, want 1", got)
	}
	if got := TrialCrossover(40, 30); got != 1 {
		t.Fatalf("TrialCrossover(40, 30) = %f, want 1", got)
	}
	if got := TrialCrossover(0, 31); got != 0 {
		t.Fatalf("TrialCrossover(0, 31) = %f, want 0", got)
	}
}

func TestRollupFirstMonth(t *testing.T) {
	p := semOnly()
	p.Costs = model.CostAssumptions{
		CardProcessingRate: 0.03,
		RefundRate:         0.02,
		ChargebackRate:     0.01,
		Hosting:            500,
		TechSoftware:       1000,
		Labor:              10_000,
	}
	proj := mustProject(t, p)
	r := proj.Rows[0]

	approx(t, "new_mrr", r.NewMRR, 40_000)
	approx(t, "renewal_mrr", r.RenewalMRR, 0)
	approx(t, "total_mrr", r.TotalMRR, 40_000)
	approx(t, "chargebacks", r.Chargebacks, 400)
	approx(t, "refunds", r.Refunds, 800)
	approx(t, "income", r.Income, 38_800)
	approx(t, "cogs", r.COGS, 1_700)
	approx(t, "gross_income", r.GrossIncome, 37_100)
	approx(t, "marketing", r.Marketing, 104_000)
	approx(t, "ebt", r.EBT, -77_900)
	approx(t, "cumulative_cash", r.CumulativeCash, -77_900)
	if !r.WeightedCAC.IsDefined() {
		t.Fatal("weighted CAC undefined with acquisitions present")
	}
	approx(t, "weighted_cac", r.WeightedCAC.Value, 26)

	r1 := proj.Rows[1]
	approx(t, "cumulative_cash[1]", r1.CumulativeCash, r.CumulativeCash+r1.EBT)
	approx(t, "renewal_mrr[1]", r1.RenewalMRR, 1000*0.95*40)
}

func TestWeightedCACUndefinedWithoutAcquisitions(t *testing.T) {
	p := semOnly()
	p.Channels[0].Initial = 0
	proj := mustProject(t, p)
	for i, r := range proj.Rows {
		if r.WeightedCAC.State != model.MetricUndefined {
			t.Fatalf("row %d weighted CAC = %s, want undefined", i, r.WeightedCAC)
		}
	}
	if proj.Summary.BlendedCAC.State != model.MetricUndefined {
		t.Fatalf("blended CAC = %s, want undefined", proj.Summary.BlendedCAC)
	}
}

func TestLargestInputsStayFinite(t *testing.T) {
	p := semOnly()
	p.Channels[0].Initial = MaxAmount
	p.Channels[0].Growth = model.FlatSchedule(1)
	proj := mustProject(t, p)
	for i, r := range proj.Rows {
		if math.IsInf(r.EBT, 0) || math.IsNaN(r.EBT) || math.IsInf(r.CumulativeCash, 0) {
			t.Fatalf("row %d: ebt %v, cumulative cash %v", i, r.EBT, r.CumulativeCash)
		}
		if r.WeightedCAC.IsDefined() && (math.IsInf(r.WeightedCAC.Value, 0) || math.IsNaN(r.WeightedCAC.Value)) {
			t.Fatalf("row %d weighted CAC = %v", i, r.WeightedCAC.Value)
		}
	}
	if _, err := json.Marshal(proj); err != nil {
		t.Fatalf("marshal: %v", err)
	}
}

func TestWeightedCACOverflowIsUndefined(t *testing.T) {
	got := weightedCAC([]model.ChannelMonth{{NewSubs: 1e-300, Marketing: 1e300}})
	if got.State != model.MetricUndefined {
		t.Fatalf("weighted CAC = %s, want undefined", got)
	}
}

func TestRevenueChannelsAddToTotalMRR(t *testing.T) {
	p := semOnly()
	p.RevenueChannels = []model.RevenueChannel{{
		Name:          "Ad Network",
		Initial:       1_000_000,
		Growth:        model.FlatSchedule(0.1),
		Yield:         model.FlatSchedule(0.01),
		PayoutPerUnit: 0.5,
	}}
	proj := mustProject(t, p)

	approx(t, "other revenue[0]", proj.Rows[0].OtherRevenue, 5_000)
	approx(t, "other revenue[1]", proj.Rows[1].OtherRevenue, 5_500)
	approx(t, "total_mrr[0]", proj.Rows[0].TotalMRR, 40_000+5_000)
}

func TestProjectIsDeterministic(t *testing.T) {
	p := semOnly()
	p.FreeTrialDays = 7
	a := mustProject(t, p)
	b := mustProject(t, p)
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two projections of the same parameters differ")
	}
}

func TestProjectDoesNotAliasInputs(t *testing.T) {
	p := semOnly()
	proj := mustProject(t, p)
	p.Channels[0].CPA = 999
	if proj.Params.Channels[0].CPA != 26 {
		t.Fatalf("projection params changed through caller slice: CPA = %f", proj.Params.Channels[0].CPA)
	}
}

func TestProjectRejectsInvalidParameters(t *testing.T) {
	p := semOnly()
	p.ChurnRate = 1.5
	p.FreeTrialDays = 30
	p.Channels[0].Conversion[2] = -0.1

	_, err := Project(p)
	if !errors.Is(err, ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
	fields := map[string]bool{}
	for _, pe := range ParameterErrors(err) {
		fields[pe.Field] = true
	}
	for _, want := range []string{"churn_rate", "free_trial_days", "channels[0].conversion[3]"} {
		if !fields[want] {
			t.Fatalf("missing error for %s in %v", want, err)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.ParameterSet)
		field string
	}{
		{"missing kick-off", func(p *model.ParameterSet) { p.KickOff = time.Time{} }, "kick_off"},
		{"zero price", func(p *model.ParameterSet) { p.Price = 0 }, "price"},
		{"nan trial rate", func(p *model.ParameterSet) { p.TrialToPaidRate = math.NaN() }, "trial_to_paid_rate"},
		{"negative trial days", func(p *model.ParameterSet) { p.FreeTrialDays = -1 }, "free_trial_days"},
		{"unknown kind", func(p *model.ParameterSet) { p.Channels[0].Kind = "tv" }, "channels[0].kind"},
		{"duplicate channel", func(p *model.ParameterSet) { p.Channels = append(p.Channels, p.Channels[0]) }, "channels[1].name"},
		{"negative cpa", func(p *model.ParameterSet) { p.Channels[0].CPA = -1 }, "channels[0].cpa"},
		{"huge initial", func(p *model.ParameterSet) { p.Channels[0].Initial = 1e300 }, "channels[0].initial"},
		{"huge price", func(p *model.ParameterSet) { p.Price = MaxAmount * 10 }, "price"},
		{"growth above one", func(p *model.ParameterSet) { p.Channels[0].Growth[4] = 1.2 }, "channels[0].growth[5]"},
		{"refund rate", func(p *model.ParameterSet) { p.Costs.RefundRate = 2 }, "costs.refund_rate"},
		{"negative labor", func(p *model.ParameterSet) { p.Costs.Labor = -5 }, "costs.labor"},
		{"revenue payout", func(p *model.ParameterSet) {
			p.RevenueChannels = []model.RevenueChannel{{Name: "Ads", PayoutPerUnit: math.Inf(1)}}
		}, "revenue_channels[0].payout_per_unit"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := semOnly()
			tt.edit(&p)
			errs := ParameterErrors(Validate(p))
			if len(errs) != 1 || errs[0].Field != tt.field {
				t.Fatalf("errors = %v, want exactly one for %s", errs, tt.field)
			}
		})
	}

	if err := Validate(semOnly()); err != nil {
		t.Fatalf("valid parameters rejected: %v", err)
	}
}

func TestTwentyEightDayTrialIsValid(t *testing.T) {
	p := semOnly()
	p.FreeTrialDays = 28
	proj := mustProject(t, p)
	if proj.Rows[1].TrialCrossover != 1 {
		t.Fatalf("february crossover = %f, want 1", proj.Rows[1].TrialCrossover)
	}
}

func TestSummaryChannelMetrics(t *testing.T) {
	proj := mustProject(t, semOnly())
	s := proj.Summary

	if !s.LTV.IsDefined() {
		t.Fatalf("LTV = %s, want defined", s.LTV)
	}
	approx(t, "ltv", s.LTV.Value, 200)
	if len(s.Channels) != 1 {
		t.Fatalf("channel summaries = %d, want 1", len(s.Channels))
	}
	sem := s.Channels[0]
	approx(t, "roi", sem.ROI.Value, (200-26)/26.0)
	approx(t, "new subs", sem.NewSubs, 4000*60)
	approx(t, "spend", sem.Spend, 4000*60*26)
	if sem.Payback.Outcome != model.PaybackMonths || sem.Payback.Period != 2 {
		t.Fatalf("payback = %+v, want period 2", sem.Payback)
	}
	approx(t, "blended cac", s.BlendedCAC.Value, 26)
	if len(s.Years) != model.YearsProjected {
		t.Fatalf("years = %d, want %d", len(s.Years), model.YearsProjected)
	}
	approx(t, "year 1 new subs", s.Years[0].NewSubs, 48_000)
	approx(t, "year 5 ending cash", s.Years[4].EndingCash, proj.Rows[59].CumulativeCash)
	approx(t, "ending subscribers", s.EndingSubscribers, proj.Rows[59].TrialToPaid+proj.Rows[59].Renewals)
}

func TestSummaryBreakEven(t *testing.T) {
	p := semOnly()
	p.Channels[0].CPA = 5
	p.Costs.Labor = 30_000
	proj := mustProject(t, p)
	s := proj.Summary

	if s.BreakEvenMonth == nil {
		t.Fatal("expected an operating break-even month")
	}
	be := *s.BreakEvenMonth
	if proj.Rows[be].EBT < 0 || (be > 0 && proj.Rows[be-1].EBT >= 0) {
		t.Fatalf("break-even month %d is not the first non-negative EBT", be)
	}
	if s.PeakFundingNeed <= 0 {
		t.Fatalf("peak funding need = %f, want > 0", s.PeakFundingNeed)
	}
	if s.CashBreakEvenMonth != nil {
		for _, r := range proj.Rows[*s.CashBreakEvenMonth:] {
			if r.CumulativeCash < 0 {
				t.Fatalf("cumulative cash negative after cash break-even month %d", *s.CashBreakEvenMonth)
			}
		}
	}
}

func TestSummaryWithoutLosses(t *testing.T) {
	p := semOnly()
	p.Channels[0].CPA = 0
	proj := mustProject(t, p)
	s := proj.Summary

	if s.PeakFundingNeed != 0 {
		t.Fatalf("peak funding need = %f, want 0", s.PeakFundingNeed)
	}
	if s.CashBreakEvenMonth == nil || *s.CashBreakEvenMonth != 0 {
		t.Fatalf("cash break-even = %v, want 0", s.CashBreakEvenMonth)
	}
	if s.Channels[0].ROI.State != model.MetricUndefined {
		t.Fatalf("ROI with zero CPA = %s, want undefined", s.Channels[0].ROI)
	}
}

func BenchmarkProject(b *testing.B) {
	p := semOnly()
	p.FreeTrialDays = 14
	p.RevenueChannels = []model.RevenueChannel{{Name: "Ads", Initial: 1e6, Yield: model.FlatSchedule(0.01), PayoutPerUnit: 0.4}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Project(p); err != nil {
			b.Fatal(err)
		}
	}
}
