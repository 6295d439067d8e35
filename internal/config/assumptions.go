package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/theirongolddev/mrrcast/internal/model"
)

// kickOffLayouts are the accepted spellings of kick_off.
var kickOffLayouts = []string{"2006-01", "2006-01-02"}

// Assumptions is the on-disk form of a model.ParameterSet.
//
// Money is read through decimal so "39.99", 39.99 and 40 all decode, and is
// rounded to cents. Schedules take one to five yearly entries; missing later
// years repeat the last entry.
type Assumptions struct {
	KickOff         string               `toml:"kick_off"`
	Price           decimal.Decimal      `toml:"price"`
	FreeTrialDays   int                  `toml:"free_trial_days"`
	TrialToPaidRate float64              `toml:"trial_to_paid_rate"`
	ChurnRate       float64              `toml:"churn_rate"`
	Costs           CostAssumptions      `toml:"costs"`
	Channels        []ChannelAssumptions `toml:"channels"`
	RevenueChannels []RevenueAssumptions `toml:"revenue_channels,omitempty"`
}

// CostAssumptions is the [costs] table.
type CostAssumptions struct {
	CardProcessingRate float64         `toml:"card_processing_rate"`
	RefundRate         float64         `toml:"refund_rate"`
	ChargebackRate     float64         `toml:"chargeback_rate"`
	Hosting            decimal.Decimal `toml:"hosting"`
	TechSoftware       decimal.Decimal `toml:"tech_software"`
	Labor              decimal.Decimal `toml:"labor"`
}

// ChannelAssumptions is one [[channels]] entry. Fields left unset are taken
// from Preset when one is named.
type ChannelAssumptions struct {
	Name       string           `toml:"name"`
	Preset     string           `toml:"preset,omitempty"`
	Kind       string           `toml:"kind,omitempty"`
	Initial    float64          `toml:"initial"`
	Growth     []float64        `toml:"growth,omitempty"`
	Conversion []float64        `toml:"conversion,omitempty"`
	CPA        *decimal.Decimal `toml:"cpa,omitempty"`
}

// RevenueAssumptions is one [[revenue_channels]] entry.
type RevenueAssumptions struct {
	Name          string           `toml:"name"`
	Preset        string           `toml:"preset,omitempty"`
	Initial       float64          `toml:"initial"`
	Growth        []float64        `toml:"growth,omitempty"`
	Yield         []float64        `toml:"yield,omitempty"`
	PayoutPerUnit *decimal.Decimal `toml:"payout_per_unit,omitempty"`
}

// LoadAssumptions reads an assumptions file into a ParameterSet. It checks
// the file's shape only; model invariants are enforced by the projection.
func LoadAssumptions(path string) (model.ParameterSet, error) {
	var a Assumptions
	if _, err := toml.DecodeFile(path, &a); err != nil {
		return model.ParameterSet{}, fmt.Errorf("parsing assumptions %s: %w", path, err)
	}
	p, err := a.ParameterSet()
	if err != nil {
		return model.ParameterSet{}, fmt.Errorf("assumptions %s: %w", path, err)
	}
	return p, nil
}

// DecodeAssumptions parses assumptions from TOML text.
func DecodeAssumptions(data string) (model.ParameterSet, error) {
	var a Assumptions
	if _, err := toml.Decode(data, &a); err != nil {
		return model.ParameterSet{}, fmt.Errorf("parsing assumptions: %w", err)
	}
	return a.ParameterSet()
}

// SaveAssumptions writes p as an assumptions file, creating parent dirs.
func SaveAssumptions(path string, p model.ParameterSet) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating assumptions dir: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("creating assumptions file: %w", err)
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(FromParameterSet(p))
}

// ParameterSet converts the file form into model inputs.
func (a Assumptions) ParameterSet() (model.ParameterSet, error) {
	kickOff, err := parseKickOff(a.KickOff)
	if err != nil {
		return model.ParameterSet{}, err
	}

	p := model.ParameterSet{
		KickOff:         kickOff,
		Price:           cents(a.Price),
		FreeTrialDays:   a.FreeTrialDays,
		TrialToPaidRate: a.TrialToPaidRate,
		ChurnRate:       a.ChurnRate,
		Costs: model.CostAssumptions{
			CardProcessingRate: a.Costs.CardProcessingRate,
			RefundRate:         a.Costs.RefundRate,
			ChargebackRate:     a.Costs.ChargebackRate,
			Hosting:            cents(a.Costs.Hosting),
			TechSoftware:       cents(a.Costs.TechSoftware),
			Labor:              cents(a.Costs.Labor),
		},
	}

	for i, c := range a.Channels {
		ch, err := c.channel()
		if err != nil {
			return model.ParameterSet{}, fmt.Errorf("channels[%d]: %w", i, err)
		}
		p.Channels = append(p.Channels, ch)
	}
	for i, r := range a.RevenueChannels {
		rc, err := r.channel()
		if err != nil {
			return model.ParameterSet{}, fmt.Errorf("revenue_channels[%d]: %w", i, err)
		}
		p.RevenueChannels = append(p.RevenueChannels, rc)
	}
	return p, nil
}

func (c ChannelAssumptions) channel() (model.Channel, error) {
	ch := model.Channel{Name: c.Name, Kind: model.ChannelKind(c.Kind), Initial: c.Initial}
	if c.Preset != "" {
		preset, ok := LookupPreset(c.Preset)
		if !ok {
			return ch, fmt.Errorf("unknown channel preset %q", c.Preset)
		}
		if ch.Name == "" {
			ch.Name = preset.DisplayName
		}
		if ch.Kind == "" {
			ch.Kind = preset.Kind
		}
		ch.Growth, ch.Conversion, ch.CPA = preset.Growth, preset.Conversion, preset.CPA
	}
	if ch.Kind == "" {
		ch.Kind = model.ChannelTraffic
	}

	var err error
	if c.Growth != nil {
		if ch.Growth, err = padSchedule("growth", c.Growth); err != nil {
			return ch, err
		}
	}
	if c.Conversion != nil {
		if ch.Conversion, err = padSchedule("conversion", c.Conversion); err != nil {
			return ch, err
		}
	}
	if c.CPA != nil {
		ch.CPA = cents(*c.CPA)
	}
	return ch, nil
}

func (r RevenueAssumptions) channel() (model.RevenueChannel, error) {
	rc := model.RevenueChannel{Name: r.Name, Initial: r.Initial}
	if r.Preset != "" {
		preset, ok := LookupRevenuePreset(r.Preset)
		if !ok {
			return rc, fmt.Errorf("unknown revenue preset %q", r.Preset)
		}
		if rc.Name == "" {
			rc.Name = preset.DisplayName
		}
		rc.Growth, rc.Yield, rc.PayoutPerUnit = preset.Growth, preset.Yield, preset.PayoutPerUnit
	}

	var err error
	if r.Growth != nil {
		if rc.Growth, err = padSchedule("growth", r.Growth); err != nil {
			return rc, err
		}
	}
	if r.Yield != nil {
		if rc.Yield, err = padSchedule("yield", r.Yield); err != nil {
			return rc, err
		}
	}
	if r.PayoutPerUnit != nil {
		// Per-unit payouts are often fractions of a cent; keep full precision.
		rc.PayoutPerUnit = r.PayoutPerUnit.InexactFloat64()
	}
	return rc, nil
}

// FromParameterSet converts model inputs into the file form, writing every
// schedule out in full.
func FromParameterSet(p model.ParameterSet) Assumptions {
	a := Assumptions{
		KickOff:         model.MonthStart(p.KickOff).Format("2006-01"),
		Price:           decimal.NewFromFloat(p.Price).Round(2),
		FreeTrialDays:   p.FreeTrialDays,
		TrialToPaidRate: p.TrialToPaidRate,
		ChurnRate:       p.ChurnRate,
		Costs: CostAssumptions{
			CardProcessingRate: p.Costs.CardProcessingRate,
			RefundRate:         p.Costs.RefundRate,
			ChargebackRate:     p.Costs.ChargebackRate,
			Hosting:            decimal.NewFromFloat(p.Costs.Hosting).Round(2),
			TechSoftware:       decimal.NewFromFloat(p.Costs.TechSoftware).Round(2),
			Labor:              decimal.NewFromFloat(p.Costs.Labor).Round(2),
		},
	}
	for _, ch := range p.Channels {
		cpa := decimal.NewFromFloat(ch.CPA).Round(2)
		c := ChannelAssumptions{
			Name:    ch.Name,
			Kind:    string(ch.Kind),
			Initial: ch.Initial,
			Growth:  ch.Growth[:],
			CPA:     &cpa,
		}
		if ch.Kind == model.ChannelTraffic {
			c.Conversion = ch.Conversion[:]
		}
		a.Channels = append(a.Channels, c)
	}
	for _, rc := range p.RevenueChannels {
		payout := decimal.NewFromFloat(rc.PayoutPerUnit)
		a.RevenueChannels = append(a.RevenueChannels, RevenueAssumptions{
			Name:          rc.Name,
			Initial:       rc.Initial,
			Growth:        rc.Growth[:],
			Yield:         rc.Yield[:],
			PayoutPerUnit: &payout,
		})
	}
	return a
}

func parseKickOff(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range kickOffLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.MonthStart(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("kick_off %q: want YYYY-MM or YYYY-MM-DD", s)
}

// padSchedule expands one to five yearly values into a full schedule.
func padSchedule(field string, values []float64) (model.Schedule, error) {
	var s model.Schedule
	if len(values) == 0 || len(values) > len(s) {
		return s, fmt.Errorf("%s: want 1 to %d yearly values, got %d", field, len(s), len(values))
	}
	for i := range s {
		s[i] = values[min(i, len(values)-1)]
	}
	return s, nil
}

func cents(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
