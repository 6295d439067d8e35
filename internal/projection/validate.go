package projection

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/mrrcast/internal/model"
)

// ErrInvalidParameter is wrapped by every ParameterError.
var ErrInvalidParameter = errors.New("projection: invalid parameter")

// MaxAmount bounds every volume and money input. Sixty months of doubling
// from MaxAmount stays far inside float64 range.
const MaxAmount = 1e15

// ParameterError describes one input that violates the model's invariants.
type ParameterError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s=%v: %s", e.Field, e.Value, e.Reason)
}

// Unwrap lets errors.Is match ErrInvalidParameter.
func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

// ParameterErrors extracts every ParameterError from err, which may be a
// joined or wrapped error returned by Validate.
func ParameterErrors(err error) []*ParameterError {
	switch e := err.(type) {
	case nil:
		return nil
	case *ParameterError:
		return []*ParameterError{e}
	case interface{ Unwrap() []error }:
		var out []*ParameterError
		for _, inner := range e.Unwrap() {
			out = append(out, ParameterErrors(inner)...)
		}
		return out
	default:
		return ParameterErrors(errors.Unwrap(err))
	}
}

type validator struct {
	errs []error
}

func (v *validator) fail(field string, value any, reason string) {
	v.errs = append(v.errs, &ParameterError{Field: field, Value: value, Reason: reason})
}

func (v *validator) rate(field string, r float64) {
	if !(r >= 0 && r <= 1) {
		v.fail(field, r, "must be within [0,1]")
	}
}

func (v *validator) nonNegative(field string, x float64) {
	if !(x >= 0 && x <= MaxAmount) {
		v.fail(field, x, "must be within [0,1e15]")
	}
}

func (v *validator) schedule(field string, s model.Schedule) {
	for i, r := range s {
		v.rate(fmt.Sprintf("%s[%d]", field, i+1), r)
	}
}

// Validate checks every invariant of p and returns all violations joined
// together, or nil.
func Validate(p model.ParameterSet) error {
	var v validator

	if p.KickOff.IsZero() {
		v.fail("kick_off", p.KickOff, "is required")
	}
	if !(p.Price > 0 && p.Price <= MaxAmount) {
		v.fail("price", p.Price, "must be within (0,1e15]")
	}
	if p.FreeTrialDays < 0 || p.FreeTrialDays > model.MaxFreeTrialDays {
		v.fail("free_trial_days", p.FreeTrialDays, fmt.Sprintf("must be within [0,%d]", model.MaxFreeTrialDays))
	} else if !p.KickOff.IsZero() {
		if m, days := shortestMonth(p.KickOff); p.FreeTrialDays > days {
			v.fail("free_trial_days", p.FreeTrialDays, fmt.Sprintf("exceeds the %d days of %s", days, m.Format("2006-01")))
		}
	}
	v.rate("trial_to_paid_rate", p.TrialToPaidRate)
	v.rate("churn_rate", p.ChurnRate)

	seen := make(map[string]struct{}, len(p.Channels))
	for i, ch := range p.Channels {
		prefix := fmt.Sprintf("channels[%d]", i)
		if ch.Name == "" {
			v.fail(prefix+".name", ch.Name, "is required")
		} else if _, dup := seen[ch.Name]; dup {
			v.fail(prefix+".name", ch.Name, "is duplicated")
		}
		seen[ch.Name] = struct{}{}

		switch ch.Kind {
		case model.ChannelTraffic:
			v.schedule(prefix+".conversion", ch.Conversion)
		case model.ChannelSubscriptions:
		default:
			v.fail(prefix+".kind", ch.Kind, "must be traffic or subscriptions")
		}
		v.nonNegative(prefix+".initial", ch.Initial)
		v.schedule(prefix+".growth", ch.Growth)
		v.nonNegative(prefix+".cpa", ch.CPA)
	}

	for i, rc := range p.RevenueChannels {
		prefix := fmt.Sprintf("revenue_channels[%d]", i)
		if rc.Name == "" {
			v.fail(prefix+".name", rc.Name, "is required")
		}
		v.nonNegative(prefix+".initial", rc.Initial)
		v.schedule(prefix+".growth", rc.Growth)
		v.schedule(prefix+".yield", rc.Yield)
		v.nonNegative(prefix+".payout_per_unit", rc.PayoutPerUnit)
	}

	c := p.Costs
	v.rate("costs.card_processing_rate", c.CardProcessingRate)
	v.rate("costs.refund_rate", c.RefundRate)
	v.rate("costs.chargeback_rate", c.ChargebackRate)
	v.nonNegative("costs.hosting", c.Hosting)
	v.nonNegative("costs.tech_software", c.TechSoftware)
	v.nonNegative("costs.labor", c.Labor)

	return errors.Join(v.errs...)
}

// shortestMonth returns the projected month with the fewest days.
func shortestMonth(kickOff time.Time) (time.Time, int) {
	start := model.MonthStart(kickOff)
	best, bestDays := start, model.DaysIn(start)
	for i := 1; i < model.ProjectionMonths; i++ {
		m := start.AddDate(0, i, 0)
		if d := model.DaysIn(m); d < bestDays {
			best, bestDays = m, d
		}
	}
	return best, bestDays
}
